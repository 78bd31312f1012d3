package worker

import (
	"context"
	"time"

	"card-bank-api/logger"
)

// CardExpirer moves cards past their expiry date to EXPIRED.
// *service.CardService satisfies it.
type CardExpirer interface {
	ExpireCards(ctx context.Context, asOf time.Time) (int, error)
}

// ExpirySweeper periodically expires cards until its context is cancelled.
type ExpirySweeper struct {
	cards    CardExpirer
	interval time.Duration
	now      func() time.Time
}

func NewExpirySweeper(cards CardExpirer, interval time.Duration) *ExpirySweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &ExpirySweeper{cards: cards, interval: interval, now: time.Now}
}

// Start runs the sweeper in its own goroutine. The returned channel is closed
// once the sweeper has stopped.
func (s *ExpirySweeper) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx)
	}()
	return done
}

// Run sweeps once immediately and then on every tick. It blocks until ctx is done.
func (s *ExpirySweeper) Run(ctx context.Context) {
	logger.Log.WithField("interval", s.interval.String()).Info("Card expiry sweeper started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		s.RunOnce(ctx)
		select {
		case <-ctx.Done():
			logger.Log.Info("Card expiry sweeper stopped")
			return
		case <-ticker.C:
		}
	}
}

// RunOnce expires every ACTIVE card whose expiry date is before today (UTC).
func (s *ExpirySweeper) RunOnce(ctx context.Context) int {
	asOf := s.now().UTC().Truncate(24 * time.Hour)

	n, err := s.cards.ExpireCards(ctx, asOf)
	if err != nil {
		if ctx.Err() == nil {
			logger.Log.WithError(err).Error("Card expiry sweep failed")
		}
		return 0
	}
	if n > 0 {
		logger.Log.WithField("expired", n).Info("Cards marked as expired")
	}
	return n
}
