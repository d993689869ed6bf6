package game

import (
	"runtime"
	"sync"

	"github.com/pthm-cable/convect/input"
)

// parallelThreshold is the minimum total particle count to step layers on
// the worker pool. Below this, stepping them in turn is faster due to
// goroutine overhead.
const parallelThreshold = 4096

// stepJob is one layer to advance.
type stepJob struct {
	layer *Layer
	snap  input.Snapshot
	dt    float32
}

// stepPool advances independent layers on persistent workers. Layers share
// nothing mutable: each owns its arrays and RNG, and the snapshot is a value.
type stepPool struct {
	numWorkers int
	capacity   int

	workChan chan stepJob   // sends work to workers
	doneChan chan struct{}  // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool           // true if workers are running
}

// newStepPool creates a pool able to take layers jobs per round.
func newStepPool(layers int) *stepPool {
	n := runtime.GOMAXPROCS(0)
	if layers < n {
		n = layers
	}
	if n < 1 {
		n = 1
	}
	return &stepPool{numWorkers: n, capacity: max(layers, 1)}
}

// start launches the workers if they are not running yet.
func (p *stepPool) start() {
	if p.running {
		return
	}

	// Buffered for a whole round so neither side blocks mid-round
	p.workChan = make(chan stepJob, p.capacity)
	p.doneChan = make(chan struct{}, p.capacity)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// stop signals all workers to exit and waits for them.
func (p *stepPool) stop() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

// worker processes jobs until stopped.
func (p *stepPool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case job, ok := <-p.workChan:
			if !ok {
				return
			}
			job.layer.step(job.snap, job.dt)
			p.doneChan <- struct{}{}
		}
	}
}

// run steps every layer and waits for all of them to finish.
func (p *stepPool) run(layers []*Layer, snap input.Snapshot, dt float32) {
	p.start()
	for _, l := range layers {
		p.workChan <- stepJob{layer: l, snap: snap, dt: dt}
	}
	for range layers {
		<-p.doneChan
	}
}

// stepLayers advances every layer, in parallel when there is enough work.
func (g *Game) stepLayers(snap input.Snapshot, dt float32) {
	if len(g.layers) > 1 && g.particleCount() >= parallelThreshold {
		g.pool.run(g.layers, snap, dt)
		return
	}
	for _, l := range g.layers {
		l.step(snap, dt)
	}
}

// particleCount returns the total number of particles across layers.
func (g *Game) particleCount() int {
	n := 0
	for _, l := range g.layers {
		n += l.Ensemble.Count()
	}
	return n
}
