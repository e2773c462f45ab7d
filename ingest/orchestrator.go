package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/rs/xid"
	"github.com/sig-0/iq"
)

var (
	errInvalidProvider = errors.New("invalid provider")
	errInvalidInterval = errors.New("invalid interval")
)

// registration is a single named provider registration
type registration struct {
	provider Provider
	id       xid.ID
}

// Orchestrator is the main job scheduler for registered providers.
// Each provider is run on its own fixed cadence, with collected rates
// handed to the reconciler
type Orchestrator struct {
	reconciler Reconciler
	logger     *slog.Logger

	registrations sync.Map // provider name -> *registration

	q             iq.Queue[scheduledRun]
	queryInterval time.Duration
	qMux          sync.Mutex
}

// New creates a new Orchestrator instance
func New(reconciler Reconciler, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		reconciler:    reconciler,
		q:             iq.NewQueue[scheduledRun](),
		queryInterval: time.Second, // every second
	}

	// Apply the options
	for _, opt := range opts {
		opt(o)
	}

	return o
}

// Register registers a provider with the orchestrator, under the provider's
// name. Re-registering a name replaces the previous registration, and any
// still-queued runs of the old registration are dropped when they come due.
// The provider is immediately queued up for execution
func (o *Orchestrator) Register(p Provider) error {
	if p == nil || p.Name() == "" {
		return errInvalidProvider
	}

	if p.Interval() <= 0 {
		return errInvalidInterval
	}

	// Register the provider, replacing a previous
	// registration under the same name
	reg := &registration{
		provider: p,
		id:       xid.New(),
	}

	_, replaced := o.registrations.Swap(p.Name(), reg)

	o.logger.Info(
		"registered provider",
		"name", p.Name(),
		"replaced", replaced,
	)

	// Schedule the first run
	o.scheduleRun(time.Now().UTC(), p.Name(), reg.id)

	return nil
}

// Start starts the provider orchestration service loop [BLOCKING]
func (o *Orchestrator) Start(ctx context.Context) error {
	collectorCh := make(chan *workerResponse, 100)

	// inFlight guards against overlapping runs of the same provider
	inFlight := make(map[string]xid.ID)

	// Start a listener for monitoring runs
	ticker := time.NewTicker(o.queryInterval)
	defer ticker.Stop()

	// handleDue spawns workers for all runs that are executable (due)
	handleDue := func() {
		for {
			select {
			case <-ctx.Done():
				return
			default:
				run := o.nextRun()
				if run == nil {
					return // nothing due
				}

				reg := o.registration(run.name)
				if reg == nil || reg.id != run.regID {
					// The run belongs to a replaced registration
					continue
				}

				// Keep the fixed cadence, regardless of
				// how long the run itself takes
				o.scheduleRun(run.at.Add(reg.provider.Interval()), run.name, run.regID)

				if _, ok := inFlight[run.name]; ok {
					o.logger.Warn(
						"skipping overlapping run",
						"name", run.name,
					)

					continue
				}

				inFlight[run.name] = run.regID

				o.logger.Info(
					"scheduling collection",
					"name", run.name,
				)

				// Spawn worker
				info := &workerInfo{
					provider: reg.provider,
					regID:    run.regID,
					resCh:    collectorCh,
				}

				go handleJob(ctx, info)
			}
		}
	}

	// Initialize the first set of due runs (on boot)
	handleDue()

	for {
		select {
		case <-ctx.Done():
			o.logger.Info("orchestrator service shut down")

			return nil
		case <-ticker.C:
			handleDue()
		case response := <-collectorCh:
			if current, ok := inFlight[response.name]; ok && current == response.regID {
				delete(inFlight, response.name)
			}

			reg := o.registration(response.name)
			if reg == nil || reg.id != response.regID {
				o.logger.Warn(
					"dropping stale collection response",
					"name", response.name,
				)

				continue
			}

			if response.error != nil {
				o.logger.Error(
					"error encountered during rate collection",
					"name", response.name,
					"err", response.error.Error(),
				)

				continue
			}

			// Reconcile the collected rates
			updated, err := o.reconciler.Reconcile(ctx, response.rates)
			if err != nil {
				o.logger.Error(
					"unable to reconcile rates",
					"name", response.name,
					"err", err.Error(),
				)

				continue
			}

			o.logger.Info(
				"collection cycle complete",
				"name", response.name,
				"collected", len(response.rates),
				"updated", updated,
			)
		}
	}
}

// registration returns the current registration for the name, if any
func (o *Orchestrator) registration(name string) *registration {
	value, ok := o.registrations.Load(name)
	if !ok {
		return nil
	}

	reg, _ := value.(*registration)

	return reg
}

// scheduleRun queues a provider run at the given time
func (o *Orchestrator) scheduleRun(at time.Time, name string, regID xid.ID) {
	o.qMux.Lock()
	defer o.qMux.Unlock()

	o.q.Push(scheduledRun{
		at:    at,
		name:  name,
		regID: regID,
	})
}

// nextRun fetches the next due run, as of the moment of calling
func (o *Orchestrator) nextRun() *scheduledRun {
	o.qMux.Lock()
	defer o.qMux.Unlock()

	now := time.Now().UTC()

	// Check if anything needs to be scheduled
	if o.q.Len() == 0 {
		return nil // nothing queued
	}

	// Check if the top element is due
	if o.q.Index(0).at.After(now) {
		return nil // nothing due yet
	}

	// Grab the next run
	return o.q.PopFront()
}
