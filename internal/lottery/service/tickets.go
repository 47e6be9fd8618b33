package service

import (
	"context"

	"lotto/internal/lottery/ledger"
	"lotto/internal/lottery/models"
	"lotto/internal/lottery/store"
	"lotto/pkg/platform/audit"
)

// BuyTicket pulls the stake for size from participant and records it on
// their ticket. Only the participant may buy for themselves.
func (s *Service) BuyTicket(ctx context.Context, caller, participant models.Address, size models.TicketSize) (*models.Ticket, error) {
	var ticket *models.Ticket
	var round *models.Round
	err := s.observe(ctx, "buy_ticket", func(ctx context.Context) error {
		if err := requireOwner(caller, participant); err != nil {
			return err
		}
		err := s.store.RunInTx(ctx, func(kv store.KV) error {
			var err error
			ticket, err = s.ledger.Issue(ctx, kv, participant, size)
			if err != nil {
				return err
			}
			round, err = store.LoadRound(ctx, kv)
			return err
		})
		if err != nil {
			return err
		}

		if s.metrics != nil {
			s.metrics.IncrementTicketsSold(size, size.Amount())
		}
		s.recordOutstanding(round)
		s.logAudit(ctx, audit.EventTicketPurchased, ticket.Round, size.Amount(),
			"participant", participant.String(),
			"size", size.String(),
			"stake", int64(ticket.Stake),
			"count", ticket.Count)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

// ClaimPrincipal refunds participant's whole stake and clears their ticket.
// The round's first claim opens the raffle.
func (s *Service) ClaimPrincipal(ctx context.Context, caller, participant models.Address) (models.Amount, error) {
	var refund *ledger.Refund
	var round *models.Round
	err := s.observe(ctx, "claim_principal", func(ctx context.Context) error {
		if err := requireOwner(caller, participant); err != nil {
			return err
		}
		err := s.store.RunInTx(ctx, func(kv store.KV) error {
			var err error
			refund, err = s.ledger.Refund(ctx, kv, participant)
			if err != nil {
				return err
			}
			round, err = store.LoadRound(ctx, kv)
			return err
		})
		if err != nil {
			return err
		}

		if s.metrics != nil {
			s.metrics.AddRefunded(refund.Ticket.Stake)
		}
		s.recordOutstanding(round)
		s.logAudit(ctx, audit.EventPrincipalClaimed, refund.Ticket.Round, refund.Ticket.Stake,
			"participant", participant.String())
		if refund.OpenedRaffle {
			s.recordTransition(models.PhaseRaffle)
			s.logAudit(ctx, audit.EventRaffleOpened, round.Number, 0,
				"participant", participant.String(),
				"phase", models.PhaseRaffle.String(),
				"reason", "first_claim")
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return refund.Ticket.Stake, nil
}

// Ticket returns participant's current ticket.
func (s *Service) Ticket(ctx context.Context, participant models.Address) (*models.Ticket, error) {
	var ticket *models.Ticket
	err := s.observe(ctx, "get_ticket", func(ctx context.Context) error {
		return s.store.View(ctx, func(r store.Reader) error {
			var err error
			ticket, err = s.ledger.Lookup(ctx, r, participant)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return ticket, nil
}
