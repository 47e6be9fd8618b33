package adapters

import (
	"context"
	"errors"
	"log/slog"

	"lotto/internal/lottery/models"
	"lotto/pkg/platform/circuit"
)

// ErrVenueUnavailable is returned without calling the venue while its
// breaker is open.
var ErrVenueUnavailable = errors.New("venue circuit open")

// Venue is the yield venue surface the breaker guards.
type Venue interface {
	Deposit(ctx context.Context, currency, from models.Address, amount models.Amount) error
	Withdraw(ctx context.Context, currency, to models.Address) (models.Amount, error)
}

// GuardedVenue fails fast while the venue keeps erroring, so admin retries do
// not pile onto a venue that is down.
type GuardedVenue struct {
	venue   Venue
	breaker *circuit.Breaker
	logger  *slog.Logger
}

func NewGuardedVenue(venue Venue, breaker *circuit.Breaker, logger *slog.Logger) *GuardedVenue {
	if logger == nil {
		logger = slog.Default()
	}
	return &GuardedVenue{venue: venue, breaker: breaker, logger: logger}
}

func (g *GuardedVenue) Deposit(ctx context.Context, currency, from models.Address, amount models.Amount) error {
	if !g.breaker.Allow() {
		return ErrVenueUnavailable
	}
	err := g.venue.Deposit(ctx, currency, from, amount)
	g.record(ctx, "deposit", err)
	return err
}

func (g *GuardedVenue) Withdraw(ctx context.Context, currency, to models.Address) (models.Amount, error) {
	if !g.breaker.Allow() {
		return 0, ErrVenueUnavailable
	}
	received, err := g.venue.Withdraw(ctx, currency, to)
	g.record(ctx, "withdraw", err)
	return received, err
}

func (g *GuardedVenue) record(ctx context.Context, op string, err error) {
	if err == nil {
		if _, change := g.breaker.RecordSuccess(); change.Closed {
			g.logger.InfoContext(ctx, "venue circuit closed", "breaker", g.breaker.Name(), "operation", op)
		}
		return
	}
	if _, change := g.breaker.RecordFailure(); change.Opened {
		g.logger.WarnContext(ctx, "venue circuit opened", "breaker", g.breaker.Name(), "operation", op, "error", err)
	}
}
