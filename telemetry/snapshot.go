package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/spatial/r2"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// PositionSnapshot is a one-shot export of particle positions. It is not a
// save file: velocities and temperatures are left out and nothing reads it
// back into a running field.
type PositionSnapshot struct {
	Version int   `json:"version"`
	Seed    int64 `json:"seed"`
	Tick    int32 `json:"tick"`

	DomainWidth  float32 `json:"domain_width"`
	DomainHeight float32 `json:"domain_height"`

	Layers []LayerPositions `json:"layers"`
}

// LayerPositions holds the positions of one layer.
type LayerPositions struct {
	Name      string           `json:"name"`
	Positions []PositionRecord `json:"positions"`
}

// PositionRecord is one particle position.
type PositionRecord struct {
	Layer string  `json:"-" csv:"layer"`
	Index int     `json:"i" csv:"index"`
	X     float64 `json:"x" csv:"x"`
	Y     float64 `json:"y" csv:"y"`
}

// NewLayerPositions converts a position copy into records.
func NewLayerPositions(name string, positions []r2.Vec) LayerPositions {
	records := make([]PositionRecord, len(positions))
	for i, p := range positions {
		records[i] = PositionRecord{Layer: name, Index: i, X: p.X, Y: p.Y}
	}
	return LayerPositions{Name: name, Positions: records}
}

// SavePositions writes a snapshot to dir.
// Returns the filepath where it was saved.
func SavePositions(snapshot *PositionSnapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("positions_%d.json", snapshot.Tick))

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal positions: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write positions: %w", err)
	}

	return path, nil
}

// LoadPositions reads a snapshot from disk.
func LoadPositions(path string) (*PositionSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read positions: %w", err)
	}

	var snapshot PositionSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal positions: %w", err)
	}

	// Layer names are implied by nesting in JSON
	for i := range snapshot.Layers {
		l := &snapshot.Layers[i]
		for j := range l.Positions {
			l.Positions[j].Layer = l.Name
		}
	}

	return &snapshot, nil
}

// PositionsCSV renders every layer of a snapshot as CSV text, suitable for
// the clipboard.
func PositionsCSV(snapshot *PositionSnapshot) (string, error) {
	var rows []PositionRecord
	for _, l := range snapshot.Layers {
		rows = append(rows, l.Positions...)
	}
	if len(rows) == 0 {
		return "", nil
	}
	out, err := gocsv.MarshalString(rows)
	if err != nil {
		return "", fmt.Errorf("marshal positions csv: %w", err)
	}
	return strings.TrimRight(out, "\n"), nil
}
