package notify

import (
	"context"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"crewwatch/internal/logger"
	"crewwatch/internal/poller"
)

const sendTimeout = 10 * time.Second

// Sender is the push channel used for alerts; *FCMService implements it.
type Sender interface {
	SendMulticast(ctx context.Context, tokens []string, title, body string, data map[string]string) error
}

// Alerter pushes a notification when live tracking pauses because the
// poller's circuit opened, and another when it resumes.
type Alerter struct {
	sender Sender
	tokens []string
	log    *zap.Logger

	mu     sync.Mutex
	paused bool

	// sends run in the background; wg lets callers wait for them
	wg sync.WaitGroup
}

func NewAlerter(sender Sender, tokens []string) *Alerter {
	return &Alerter{
		sender: sender,
		tokens: tokens,
		log:    logger.Named("alerts"),
	}
}

// Observe matches poller.Scheduler.Observe.
func (a *Alerter) Observe(r poller.TickReport) {
	a.mu.Lock()
	var title, body, kind string
	switch {
	case r.Outcome == poller.OutcomeCircuitOpen && !a.paused:
		a.paused = true
		kind = "tracking_paused"
		title = "Live tracking paused"
		body = "Crew and job updates stopped after " + strconv.Itoa(r.ConsecutiveErrors) + " consecutive errors."
	case r.Outcome == poller.OutcomeOK && a.paused:
		a.paused = false
		kind = "tracking_resumed"
		title = "Live tracking resumed"
		body = "Crew and job updates are flowing again."
	}
	a.mu.Unlock()

	if kind == "" {
		return
	}
	if len(a.tokens) == 0 {
		a.log.Debug("no alert tokens configured", zap.String("alert", kind))
		return
	}

	data := map[string]string{
		"type":               kind,
		"consecutive_errors": strconv.Itoa(r.ConsecutiveErrors),
		"at":                 r.StartedAt.UTC().Format(time.RFC3339),
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		if err := a.sender.SendMulticast(ctx, a.tokens, title, body, data); err != nil {
			a.log.Warn("⚠️  failed to send alert", zap.String("alert", kind), zap.Error(err))
			return
		}
		a.log.Info("📣 alert sent", zap.String("alert", kind), zap.Int("tokens", len(a.tokens)))
	}()
}

// Wait blocks until in-flight alerts finish.
func (a *Alerter) Wait() {
	a.wg.Wait()
}
