package poller

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"crewwatch/internal/eventbus"
	"crewwatch/internal/logger"
	"crewwatch/internal/realtime"
	"crewwatch/internal/transport"
)

const (
	DefaultInterval  = 5 * time.Second
	DefaultThreshold = 3
)

// Source is the read side of the realtime API.
type Source interface {
	GetCrewLocations(ctx context.Context) realtime.CrewLocationsResult
	GetActiveJobs(ctx context.Context) realtime.ActiveJobsResult
	GetDashboardStats(ctx context.Context) realtime.DashboardStatsResult
}

type Emitter interface {
	Emit(topic eventbus.Topic, payload any)
}

type State string

const (
	StateIdle        State = "idle"
	StateRunning     State = "running"
	StateCircuitOpen State = "circuit_open"
)

type ticker interface {
	C() <-chan time.Time
	Stop()
}

type stdTicker struct{ t *time.Ticker }

func (s stdTicker) C() <-chan time.Time { return s.t.C }
func (s stdTicker) Stop()               { s.t.Stop() }

func newStdTicker(d time.Duration) ticker { return stdTicker{time.NewTicker(d)} }

// run is one Start generation.
type run struct {
	ticker ticker
	stop   chan struct{}
	done   chan struct{}
}

// Scheduler polls crew locations, active jobs and dashboard stats on a
// fixed interval and emits the results on the bus. After threshold
// consecutive failed ticks it stops reading until the counter is reset,
// either by ResetErrorCounter, Stop, or a successful cycle.
type Scheduler struct {
	source    Source
	bus       Emitter
	conn      transport.Connectivity
	threshold int
	newTicker func(time.Duration) ticker
	log       *zap.Logger

	mu         sync.Mutex
	current    *run
	interval   time.Duration
	errorCount int
	observers  []func(TickReport)

	inFlight atomic.Bool
}

type Option func(*Scheduler)

func WithThreshold(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.threshold = n
		}
	}
}

// WithConnectivity sets the per-tick offline check.
func WithConnectivity(conn transport.Connectivity) Option {
	return func(s *Scheduler) { s.conn = conn }
}

func New(source Source, bus Emitter, opts ...Option) *Scheduler {
	s := &Scheduler{
		source:    source,
		bus:       bus,
		conn:      transport.AlwaysOnline{},
		threshold: DefaultThreshold,
		newTicker: newStdTicker,
		log:       logger.Named("poller"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Observe registers fn to receive a report after every timer firing.
func (s *Scheduler) Observe(fn func(TickReport)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// Start begins polling every interval. A running scheduler is stopped first,
// so there is never more than one timer. The first tick fires after interval.
func (s *Scheduler) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultInterval
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		s.stopLocked()
	}

	r := &run{
		ticker: s.newTicker(interval),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	s.current = r
	s.interval = interval

	s.log.Info("✅ polling started",
		zap.Duration("interval", interval),
		zap.Int("threshold", s.threshold),
		zap.Int("consecutive_errors", s.errorCount),
	)

	go s.loop(ctx, r)
}

// Stop clears the timer and resets the error counter. A tick already in
// flight is not cancelled and may still emit once.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		s.errorCount = 0
		return
	}
	s.stopLocked()
	s.log.Info("🛑 polling stopped")
}

func (s *Scheduler) stopLocked() {
	s.current.ticker.Stop()
	close(s.current.stop)
	s.current = nil
	s.errorCount = 0
}

// ResetErrorCounter closes the circuit; the next tick runs a full cycle.
func (s *Scheduler) ResetErrorCounter() {
	s.mu.Lock()
	prev := s.errorCount
	s.errorCount = 0
	s.mu.Unlock()

	if prev > 0 {
		s.log.Info("🔄 error counter reset", zap.Int("previous", prev))
	}
}

func (s *Scheduler) ErrorCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errorCount
}

func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Scheduler) stateLocked() State {
	switch {
	case s.current == nil:
		return StateIdle
	case s.errorCount >= s.threshold:
		return StateCircuitOpen
	default:
		return StateRunning
	}
}

// Status is a point-in-time view of the scheduler.
type Status struct {
	State             State         `json:"state"`
	ConsecutiveErrors int           `json:"consecutive_errors"`
	Threshold         int           `json:"threshold"`
	Interval          time.Duration `json:"interval_ns"`
	TickInFlight      bool          `json:"tick_in_flight"`
}

func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		State:             s.stateLocked(),
		ConsecutiveErrors: s.errorCount,
		Threshold:         s.threshold,
		Interval:          s.interval,
		TickInFlight:      s.inFlight.Load(),
	}
}

func (s *Scheduler) loop(ctx context.Context, r *run) {
	defer close(r.done)

	for {
		select {
		case <-ctx.Done():
			s.mu.Lock()
			if s.current == r {
				s.stopLocked()
			}
			s.mu.Unlock()
			return
		case <-r.stop:
			return
		case <-r.ticker.C():
			// Stop may have raced with the firing
			select {
			case <-r.stop:
				return
			default:
			}
			s.Tick(ctx)
		}
	}
}

// Tick runs one poll cycle. Ticks never overlap: if one is still in flight
// this call is skipped.
func (s *Scheduler) Tick(ctx context.Context) TickReport {
	started := time.Now()

	if !s.inFlight.CompareAndSwap(false, true) {
		report := TickReport{StartedAt: started, Outcome: OutcomeSkipped, ConsecutiveErrors: s.ErrorCount()}
		s.log.Warn("⚠️  previous tick still in flight, skipping")
		s.notify(report)
		return report
	}
	defer s.inFlight.Store(false)

	report := s.cycle(ctx, started)
	report.StartedAt = started
	report.Duration = time.Since(started)
	s.notify(report)
	return report
}

func (s *Scheduler) cycle(ctx context.Context, started time.Time) TickReport {
	if count := s.ErrorCount(); count >= s.threshold {
		msg := fmt.Sprintf("live updates paused after %d consecutive errors", count)
		s.bus.Emit(eventbus.TopicError, ErrorEvent{
			Kind:              KindCircuitOpen,
			Message:           msg,
			ConsecutiveErrors: count,
			At:                started,
		})
		s.log.Debug("⏸️  circuit open, skipping reads", zap.Int("consecutive_errors", count))
		return TickReport{Outcome: OutcomeCircuitOpen, ConsecutiveErrors: count, ErrorKind: KindCircuitOpen, Message: msg}
	}

	if !s.conn.Online() {
		count := s.incrementErrors()
		msg := "network offline: live updates skipped"
		s.bus.Emit(eventbus.TopicError, ErrorEvent{
			Kind:              transport.KindOffline,
			Message:           msg,
			Err:               transport.ErrOffline,
			ConsecutiveErrors: count,
			At:                started,
		})
		s.log.Warn("🔌 offline, tick skipped", zap.Int("consecutive_errors", count))
		return TickReport{Outcome: OutcomeOffline, ConsecutiveErrors: count, ErrorKind: transport.KindOffline, Message: msg}
	}

	crews := s.source.GetCrewLocations(ctx)
	if !crews.Success {
		return s.failed("crew-locations", crews.Result, started)
	}
	s.bus.Emit(eventbus.TopicCrewLocations, CrewLocationsEvent{
		Crews:      crews.Crews,
		Timestamp:  crews.Timestamp,
		ReceivedAt: time.Now(),
	})

	jobs := s.source.GetActiveJobs(ctx)
	if !jobs.Success {
		return s.failed("active-jobs", jobs.Result, started)
	}
	s.bus.Emit(eventbus.TopicActiveJobs, ActiveJobsEvent{
		Jobs:       jobs.Jobs,
		Timestamp:  jobs.Timestamp,
		ReceivedAt: time.Now(),
	})

	stats := s.source.GetDashboardStats(ctx)
	if !stats.Success {
		return s.failed("dashboard-stats", stats.Result, started)
	}
	s.bus.Emit(eventbus.TopicDashboardStats, DashboardStatsEvent{
		Stats:      stats.Stats,
		Timestamp:  stats.Timestamp,
		ReceivedAt: time.Now(),
	})

	if prev := s.resetErrors(); prev > 0 {
		s.log.Info("✅ polling recovered", zap.Int("previous_errors", prev))
	}
	return TickReport{Outcome: OutcomeOK}
}

func (s *Scheduler) failed(resource string, res realtime.Result, started time.Time) TickReport {
	count := s.incrementErrors()
	kind := res.Kind()
	s.bus.Emit(eventbus.TopicError, ErrorEvent{
		Kind:              kind,
		Resource:          resource,
		Message:           res.Error,
		Err:               res.Err,
		ConsecutiveErrors: count,
		At:                started,
	})
	s.log.Warn("❌ poll cycle failed",
		zap.String("resource", resource),
		zap.String("kind", string(kind)),
		zap.String("error", res.Error),
		zap.Int("consecutive_errors", count),
	)
	return TickReport{Outcome: OutcomeFailed, ConsecutiveErrors: count, ErrorKind: kind, Message: res.Error}
}

func (s *Scheduler) incrementErrors() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errorCount++
	return s.errorCount
}

func (s *Scheduler) resetErrors() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.errorCount
	s.errorCount = 0
	return prev
}

func (s *Scheduler) notify(report TickReport) {
	s.mu.Lock()
	observers := s.observers
	s.mu.Unlock()

	for _, fn := range observers {
		fn(report)
	}
}
