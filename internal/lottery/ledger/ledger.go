// Package ledger records who staked what. Tickets accumulate during Sale and
// are cleared when their principal is refunded.
package ledger

import (
	"context"
	"fmt"

	"lotto/internal/lottery/models"
	"lotto/internal/lottery/phase"
	"lotto/internal/lottery/store"
	dErrors "lotto/pkg/domain-errors"
)

// Escrow is the subset of the escrow coordinator the ledger moves funds with.
type Escrow interface {
	PullFunds(ctx context.Context, r store.Reader, from models.Address, amount models.Amount) error
	PushFunds(ctx context.Context, r store.Reader, to models.Address, amount models.Amount) error
}

// claimPhases are the phases in which principal can be refunded. Claims stay
// open past the first one so late claimants are never locked out.
var claimPhases = []models.Phase{models.PhasePayback, models.PhaseRaffle, models.PhaseEnded}

// Ledger issues and refunds tickets.
type Ledger struct {
	escrow Escrow
	phases *phase.Machine
}

func New(escrow Escrow, phases *phase.Machine) *Ledger {
	return &Ledger{escrow: escrow, phases: phases}
}

// Refund describes a completed principal refund.
type Refund struct {
	Ticket *models.Ticket
	// OpenedRaffle is set when this refund was the round's first and moved the
	// lottery from Payback to Raffle.
	OpenedRaffle bool
}

// Issue pulls size's stake from participant and adds it to their ticket. The
// ledger is written only after the pull succeeds.
func (l *Ledger) Issue(ctx context.Context, kv store.KV, participant models.Address, size models.TicketSize) (*models.Ticket, error) {
	if participant.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "participant is required")
	}
	if !size.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("invalid ticket size %d", uint8(size)))
	}
	if err := l.phases.Require(ctx, kv, models.PhaseSale); err != nil {
		return nil, err
	}

	round, err := store.LoadRound(ctx, kv)
	if err != nil {
		return nil, err
	}
	ticket, err := store.LoadTicket(ctx, kv, participant)
	switch {
	case dErrors.HasCode(err, dErrors.CodeNoTicket):
		ticket = models.NewTicket(participant, round.Number)
	case err != nil:
		return nil, err
	case ticket.Round != round.Number:
		return nil, dErrors.New(dErrors.CodeInvariantViolation,
			fmt.Sprintf("participant %s holds an unrefunded ticket from round %d", participant, ticket.Round))
	}

	amount := size.Amount()
	if err := l.escrow.PullFunds(ctx, kv, participant, amount); err != nil {
		return nil, err
	}

	ticket.Accumulate(size)
	round.AddStake(participant, amount)
	if err := store.SaveTicket(ctx, kv, ticket); err != nil {
		return nil, err
	}
	if err := store.SaveRound(ctx, kv, round); err != nil {
		return nil, err
	}
	return ticket, nil
}

// Refund pays participant's accumulated stake back and clears their ticket.
// The round's first refund flips Payback to Raffle; the flag recording it is
// written in the same transaction.
func (l *Ledger) Refund(ctx context.Context, kv store.KV, participant models.Address) (*Refund, error) {
	current, err := l.phases.RequireAny(ctx, kv, claimPhases...)
	if err != nil {
		return nil, err
	}
	ticket, err := store.LoadTicket(ctx, kv, participant)
	if err != nil {
		return nil, err
	}
	round, err := store.LoadRound(ctx, kv)
	if err != nil {
		return nil, err
	}

	if err := l.escrow.PushFunds(ctx, kv, participant, ticket.Stake); err != nil {
		return nil, err
	}

	if err := store.DeleteTicket(ctx, kv, participant); err != nil {
		return nil, err
	}
	round.Release(ticket.Stake)

	opened := false
	if current == models.PhasePayback && !round.FirstClaimDone {
		round.FirstClaimDone = true
		if err := l.phases.Transition(ctx, kv, models.PhasePayback, models.PhaseRaffle); err != nil {
			return nil, err
		}
		opened = true
	}
	if err := store.SaveRound(ctx, kv, round); err != nil {
		return nil, err
	}
	return &Refund{Ticket: ticket, OpenedRaffle: opened}, nil
}

// Lookup returns participant's current ticket.
func (l *Ledger) Lookup(ctx context.Context, r store.Reader, participant models.Address) (*models.Ticket, error) {
	return store.LoadTicket(ctx, r, participant)
}
