package orchestrator

import (
	"context"
	"sort"
	"sync"

	"github.com/specialistvlad/provisiongrid/internal/ctxlog"
	"github.com/specialistvlad/provisiongrid/internal/dag"
	"github.com/specialistvlad/provisiongrid/internal/identity"
	"github.com/specialistvlad/provisiongrid/internal/plan"
	"github.com/specialistvlad/provisiongrid/internal/provision"
	"github.com/specialistvlad/provisiongrid/internal/scheduler"
)

type job struct {
	index int
	req   provision.Request
}

type jobResult struct {
	index int
	id    identity.Identity
	err   error
}

// runConcurrent drives a fixed worker pool. All bookkeeping (registry
// commits, scheduling, outcomes) happens on this goroutine; workers only
// perform provisioning calls.
func (o *Orchestrator) runConcurrent(ctx context.Context, p *plan.Plan, res *Result) error {
	logger := ctxlog.FromContext(ctx)

	g, err := dag.FromPlan(p)
	if err != nil {
		return err
	}
	sched, err := scheduler.New(g)
	if err != nil {
		return err
	}

	jobs := make(chan job)
	results := make(chan jobResult, p.Len())
	var wg sync.WaitGroup

	logger.Debug("Starting worker pool.", "workers", o.workers)
	for w := 0; w < o.workers; w++ {
		wg.Add(1)
		go o.worker(ctx, w, jobs, results, &wg)
	}
	defer func() {
		close(jobs)
		wg.Wait()
		logger.Debug("Worker pool stopped.")
	}()

	queue := sched.Roots()
	inflight := 0
	var runErr error

	for {
		for runErr == nil && len(queue) > 0 && inflight < o.workers {
			name := queue[0]
			if ctx.Err() != nil {
				runErr = o.cancelled(ctx, name)
				break
			}
			queue = queue[1:]

			i := p.Index(name)
			req, err := o.prepare(ctx, p, res, i)
			if err != nil {
				runErr = err
				break
			}
			jobs <- job{index: i, req: req}
			inflight++
		}

		if inflight == 0 {
			break
		}

		r := <-results
		inflight--
		if err := o.commit(ctx, p, res, r.index, r.id, r.err); err != nil {
			if runErr == nil {
				runErr = err
			}
			continue
		}
		if runErr != nil {
			// Draining in-flight steps only; nothing new is scheduled.
			continue
		}
		ready, err := sched.Complete(p.Steps[r.index].Name)
		if err != nil {
			runErr = err
			continue
		}
		queue = append(queue, ready...)
		sort.SliceStable(queue, func(a, b int) bool { return sched.Less(queue[a], queue[b]) })
	}

	if runErr != nil {
		if skipped := undispatched(sched, queue); len(skipped) > 0 {
			logger.Warn("Stopped dispatching, steps left unprovisioned.", "steps", skipped)
		}
	}
	return runErr
}

// undispatched lists, in plan order, the ready steps still queued and the
// steps the scheduler never released.
func undispatched(sched *scheduler.Scheduler, queue []string) []string {
	out := append(append([]string(nil), queue...), sched.Remaining()...)
	sort.SliceStable(out, func(a, b int) bool { return sched.Less(out[a], out[b]) })
	return out
}

func (o *Orchestrator) worker(ctx context.Context, workerID int, jobs <-chan job, results chan<- jobResult, wg *sync.WaitGroup) {
	defer wg.Done()
	logger := ctxlog.FromContext(ctx).With("worker_id", workerID)
	logger.Debug("Worker started.")

	for j := range jobs {
		id, err := o.invoke(ctx, j.req)
		results <- jobResult{index: j.index, id: id, err: err}
	}
	logger.Debug("Worker finished.")
}
