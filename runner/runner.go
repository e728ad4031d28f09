package runner

import (
	"context"
	"fmt"
	"sync"

	conq "github.com/enriquebris/goconcurrentqueue"
	"github.com/google/uuid"
	"github.com/qpatch-dev/smartlayout/core"
	"go.uber.org/zap"
)

// Request asks for one patch selection against the runner's graph. A zero
// Seed keeps the base hyperparameter seed; per-request determinism comes
// from the (PatchSize, Seed) pair alone.
type Request struct {
	ID        string
	PatchSize int
	Seed      int64
}

type Outcome struct {
	ID     string
	Result *core.SelectionResult
	Err    error
}

type fifo interface {
	Enqueue(*Request) error
	Dequeue() (*Request, error)
	DequeueOrWaitForNextElementContext(ctx context.Context) (*Request, error)
	GetLen() int
}

type conqFIFO struct {
	conq.FIFO
}

func newConqFIFO() *conqFIFO {
	return &conqFIFO{
		FIFO: *conq.NewFIFO(),
	}
}

func (c *conqFIFO) Enqueue(r *Request) error {
	return c.FIFO.Enqueue(r)
}

func (c *conqFIFO) Dequeue() (*Request, error) {
	tmp, err := c.FIFO.Dequeue()
	if err != nil {
		return nil, err
	}
	return tmp.(*Request), nil
}

func (c *conqFIFO) DequeueOrWaitForNextElementContext(ctx context.Context) (*Request, error) {
	tmp, err := c.FIFO.DequeueOrWaitForNextElementContext(ctx)
	if err != nil {
		return nil, err
	}
	return tmp.(*Request), nil
}

func (c *conqFIFO) GetLen() int {
	return c.FIFO.GetLen()
}

// Runner serves batches of independent selection requests against one
// prepared noise graph. Requests share the graph read-only, so workers can
// run them concurrently without affecting each other's results.
type Runner struct {
	fifo     fifo
	maxSize  int
	selector core.PatchSelector
	graph    core.NoiseGraph
	hyper    core.HyperParameters
}

func NewRunner(sel core.PatchSelector, g core.NoiseGraph,
	h core.HyperParameters, maxSize int) *Runner {
	return &Runner{
		fifo:     newConqFIFO(),
		maxSize:  maxSize,
		selector: sel,
		graph:    g,
		hyper:    h,
	}
}

func (r *Runner) Enqueue(req Request) (string, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if r.maxSize > 0 && r.maxSize <= r.fifo.GetLen() {
		zap.L().Info(fmt.Sprintf("Failed to put %s. Selection queue is full.", req.ID))
		return "", fmt.Errorf("selection queue is full (max %d)", r.maxSize)
	}
	zap.L().Debug(fmt.Sprintf("Putting %s to selection queue", req.ID))
	if err := r.fifo.Enqueue(&req); err != nil {
		zap.L().Error(fmt.Sprintf("Failed to put %s to selection queue. Reason:%s", req.ID, err))
		return "", err
	}
	return req.ID, nil
}

func (r *Runner) GetCurrentSize() int {
	return r.fifo.GetLen()
}

// Drain processes every queued request in FIFO order on the calling
// goroutine and returns the outcomes in that order.
func (r *Runner) Drain() []Outcome {
	outcomes := make([]Outcome, 0, r.fifo.GetLen())
	for {
		req, err := r.fifo.Dequeue()
		if err != nil {
			return outcomes
		}
		outcomes = append(outcomes, r.process(req))
	}
}

// Serve runs workers until ctx is cancelled, delivering outcomes to out.
// Completion order depends on scheduling; each outcome carries its request
// ID so callers can correlate.
func (r *Runner) Serve(ctx context.Context, workers int, out chan<- Outcome) {
	if workers < 1 {
		workers = 1
	}
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				req, err := r.fifo.DequeueOrWaitForNextElementContext(ctx)
				if err != nil {
					zap.L().Debug("selection queue worker stopping", zap.Error(err))
					return
				}
				select {
				case out <- r.process(req):
				case <-ctx.Done():
					return
				}
			}
		}()
	}
	wg.Wait()
}

func (r *Runner) process(req *Request) Outcome {
	h := r.hyper
	if req.Seed != 0 {
		h.Seed = req.Seed
	}
	res, err := r.selector.Select(r.graph, req.PatchSize, h)
	if err != nil {
		zap.L().Error(fmt.Sprintf("Failed to select %d-qubit patch for %s. Reason:%s",
			req.PatchSize, req.ID, err))
		return Outcome{ID: req.ID, Err: err}
	}
	zap.L().Debug(fmt.Sprintf("Selected patch %v for %s (cost=%g)",
		res.Best.Qubits, req.ID, res.Best.Cost))
	return Outcome{ID: req.ID, Result: res}
}
