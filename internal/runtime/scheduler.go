package runtime

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/aretw0/vivarium/pkg/domain"
	"github.com/aretw0/vivarium/pkg/store"
)

// epsilon absorbs float drift when fronts are compared with the horizon.
const epsilon = 1e-9

// front tracks how far one process has been simulated within a tick and
// the update it computed for that span.
type front struct {
	path    domain.Path
	time    float64
	update  map[string]any
	pending bool
}

// Update advances the experiment by timestep.
//
// Every process runs over its own interval, capped at the end of the tick,
// and holds the update it computed until the horizon reaches its front. The
// horizon is the earliest pending front: updates of processes whose fronts
// reached it are applied as one batch, then derivers run against the merged
// state. A process runs again only once its previous update was applied.
// Processes created during the tick start at the current horizon; processes
// removed during the tick are dropped with their pending update. One history
// record is emitted when the tick completes.
func (e *Experiment) Update(ctx context.Context, timestep float64) error {
	if !(timestep > 0) {
		return fmt.Errorf("%w: tick of %v", domain.ErrInvalidTimestep, timestep)
	}
	started := time.Now()
	fronts := make(map[string]*front)
	now := 0.0
	rounds := 0

	for now < timestep {
		rounds++
		processes := e.liveProcesses()
		for key := range fronts {
			if _, ok := processes[key]; !ok {
				delete(fronts, key)
			}
		}

		for _, key := range domain.SortedKeys(processes) {
			entry := processes[key]
			f, ok := fronts[key]
			if !ok {
				f = &front{path: entry.Path, time: now}
				fronts[key] = f
			}
			if f.pending || f.time > now+epsilon {
				continue
			}
			if err := checkTimestep(entry); err != nil {
				return err
			}
			p, _ := entry.Store.Process()
			future := math.Min(f.time+p.LocalTimestep(), timestep)
			if timestep-future < epsilon {
				future = timestep
			}

			update, err := e.processUpdate(ctx, entry, future-f.time, e.localTime+f.time)
			if err != nil {
				return err
			}
			f.time = future
			f.update = update
			f.pending = true
		}

		// Nothing pending means nothing is left to run: jump to the end.
		horizon := timestep
		for _, f := range fronts {
			if f.pending && f.time < horizon {
				horizon = f.time
			}
		}
		if timestep-horizon < epsilon {
			horizon = timestep
		}

		batch := 0
		for _, key := range domain.SortedKeys(fronts) {
			f := fronts[key]
			if !f.pending || f.time > horizon+epsilon {
				continue
			}
			f.time = horizon
			if err := e.applyUpdate(f.update); err != nil {
				return fmt.Errorf("applying update of %s: %w", f.path.String(), err)
			}
			f.update = nil
			f.pending = false
			batch++
		}
		if batch > 0 {
			if err := e.runDerivers(ctx); err != nil {
				return err
			}
			if e.hooks.OnBatchApplied != nil {
				e.hooks.OnBatchApplied(ctx, &domain.BatchEvent{
					EventBase: e.event(domain.EventBatchApplied),
					Horizon:   e.localTime + horizon,
					Size:      batch,
				})
			}
		}
		now = horizon
	}

	for _, key := range domain.SortedKeys(fronts) {
		f := fronts[key]
		if f.pending || math.Abs(f.time-timestep) > epsilon {
			return &domain.SchedulingError{Process: f.path, FrontTime: f.time, Timestep: timestep, Pending: f.pending}
		}
	}

	e.localTime += timestep
	e.emitHistory(ctx)

	elapsed := time.Since(started)
	e.logger.Debug("tick completed", "time", e.localTime, "rounds", rounds, "elapsed", elapsed)
	if e.hooks.OnTick != nil {
		e.hooks.OnTick(ctx, &domain.TickEvent{
			EventBase: e.event(domain.EventTick),
			Time:      e.localTime,
			Timestep:  timestep,
			Rounds:    rounds,
			Elapsed:   elapsed,
		})
	}
	return nil
}

// UpdateInterval runs ticks of interval until the experiment time reaches
// until. The context is checked between ticks only; a tick always runs to
// completion.
func (e *Experiment) UpdateInterval(ctx context.Context, until, interval float64) error {
	for until-e.localTime > epsilon {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.Update(ctx, interval); err != nil {
			return err
		}
	}
	return nil
}

// liveProcesses maps the path key of every non-deriver process in the tree
// to its entry.
func (e *Experiment) liveProcesses() map[string]store.Entry {
	out := make(map[string]store.Entry)
	for _, entry := range e.state.Processes() {
		p, _ := entry.Store.Process()
		if p.IsDeriver() {
			continue
		}
		out[entry.Path.String()] = entry
	}
	return out
}

func (e *Experiment) event(kind domain.EventType) domain.EventBase {
	return domain.EventBase{
		Timestamp:    time.Now(),
		Type:         kind,
		ExperimentID: e.id,
	}
}
