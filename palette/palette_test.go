package palette

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	warm = [2]string{"#ff0000", "#0000ff"}
	cool = [2]string{"#00ff00", "#ffffff"}
)

func TestParseMode(t *testing.T) {
	for _, s := range []string{"", "static", "cycle_a", "cycle_b"} {
		_, err := ParseMode(s)
		assert.NoError(t, err, s)
	}
	_, err := ParseMode("rainbow")
	assert.Error(t, err)
}

func TestStaticIgnoresTime(t *testing.T) {
	p, err := New(ModeStatic, "#336699", 1, warm, cool, 10)
	require.NoError(t, err)

	want := color.RGBA{R: 0x33, G: 0x66, B: 0x99, A: 255}
	assert.Equal(t, want, p.At(0))
	assert.Equal(t, want, p.At(123.4))
}

func TestCycleEndpoints(t *testing.T) {
	p, err := New(ModeCycleA, "#ffffff", 1, warm, cool, 10)
	require.NoError(t, err)

	assert.Equal(t, color.RGBA{R: 255, A: 255}, p.At(0), "start of cycle")
	assert.Equal(t, color.RGBA{B: 255, A: 255}, p.At(5), "half period is the far endpoint")
	assert.Equal(t, p.At(0), p.At(10), "full period returns to the start")
	assert.Equal(t, p.At(2), p.At(8), "cycle is symmetric")
}

func TestCycleBUsesSecondPair(t *testing.T) {
	p, err := New(ModeCycleB, "#ffffff", 1, warm, cool, 10)
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{G: 255, A: 255}, p.At(0))
}

func TestOpacity(t *testing.T) {
	p, err := New(ModeStatic, "#ffffff", 0.6, warm, cool, 10)
	require.NoError(t, err)
	assert.Equal(t, uint8(153), p.At(0).A)

	p, err = New(ModeStatic, "#ffffff", 4, warm, cool, 10)
	require.NoError(t, err)
	assert.Equal(t, uint8(255), p.At(0).A)
}

func TestZeroPeriodHoldsStart(t *testing.T) {
	p, err := New(ModeCycleA, "#ffffff", 1, warm, cool, 0)
	require.NoError(t, err)
	assert.Equal(t, p.At(0), p.At(3.3))
}

func TestBadColors(t *testing.T) {
	_, err := New(ModeStatic, "white", 1, warm, cool, 10)
	assert.Error(t, err)

	_, err = New(ModeCycleA, "#ffffff", 1, [2]string{"#ff0000", "nope"}, cool, 10)
	assert.Error(t, err)

	_, err = New(Mode("plaid"), "#ffffff", 1, warm, cool, 10)
	assert.Error(t, err)
}
