package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"lotto/internal/lottery/models"
	"lotto/internal/lottery/phase"
	"lotto/internal/lottery/store"
	dErrors "lotto/pkg/domain-errors"
)

// fakeEscrow records movements and can be told to reject the next one.
type fakeEscrow struct {
	pulled map[models.Address]models.Amount
	pushed map[models.Address]models.Amount
	fail   bool
}

func newFakeEscrow() *fakeEscrow {
	return &fakeEscrow{pulled: map[models.Address]models.Amount{}, pushed: map[models.Address]models.Amount{}}
}

func (f *fakeEscrow) PullFunds(_ context.Context, _ store.Reader, from models.Address, amount models.Amount) error {
	if f.fail {
		return dErrors.New(dErrors.CodeTransferFailed, "rejected")
	}
	f.pulled[from] += amount
	return nil
}

func (f *fakeEscrow) PushFunds(_ context.Context, _ store.Reader, to models.Address, amount models.Amount) error {
	if f.fail {
		return dErrors.New(dErrors.CodeTransferFailed, "rejected")
	}
	f.pushed[to] += amount
	return nil
}

type LedgerSuite struct {
	suite.Suite
	ctx    context.Context
	store  *store.Store
	escrow *fakeEscrow
	phases *phase.Machine
	ledger *Ledger
}

func TestLedgerSuite(t *testing.T) {
	suite.Run(t, new(LedgerSuite))
}

func (s *LedgerSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = store.NewInMemory(nil)
	s.escrow = newFakeEscrow()
	s.phases = phase.NewMachine(time.Second)
	s.ledger = New(s.escrow, s.phases)
	s.setPhase(models.PhaseSale)
	s.Require().NoError(s.store.RunInTx(s.ctx, func(kv store.KV) error {
		return store.SaveRound(s.ctx, kv, models.NewRound(1))
	}))
}

func (s *LedgerSuite) setPhase(p models.Phase) {
	s.Require().NoError(s.store.RunInTx(s.ctx, func(kv store.KV) error {
		return s.phases.Reset(s.ctx, kv, p)
	}))
}

func (s *LedgerSuite) issue(p models.Address, size models.TicketSize) (*models.Ticket, error) {
	var ticket *models.Ticket
	err := s.store.RunInTx(s.ctx, func(kv store.KV) error {
		var err error
		ticket, err = s.ledger.Issue(s.ctx, kv, p, size)
		return err
	})
	return ticket, err
}

func (s *LedgerSuite) refund(p models.Address) (*Refund, error) {
	var refund *Refund
	err := s.store.RunInTx(s.ctx, func(kv store.KV) error {
		var err error
		refund, err = s.ledger.Refund(s.ctx, kv, p)
		return err
	})
	return refund, err
}

func (s *LedgerSuite) round() *models.Round {
	var round *models.Round
	s.Require().NoError(s.store.View(s.ctx, func(r store.Reader) error {
		var err error
		round, err = store.LoadRound(s.ctx, r)
		return err
	}))
	return round
}

func (s *LedgerSuite) TestIssueAccumulates() {
	_, err := s.issue("p1", models.TicketMedium)
	s.Require().NoError(err)
	ticket, err := s.issue("p1", models.TicketSmall)
	s.Require().NoError(err)

	s.Equal(models.Amount(110_000_000), ticket.Stake)
	s.Equal(2, ticket.Count)
	s.Equal(uint64(1), ticket.Round)
	s.Equal(ticket.Stake, s.escrow.pulled["p1"], "ledger must match what was pulled")

	round := s.round()
	s.Equal(models.Amount(110_000_000), round.TotalPrincipal)
	s.Equal(models.Amount(110_000_000), round.Roster["p1"])
}

func (s *LedgerSuite) TestIssueRejected() {
	s.Run("invalid size", func() {
		_, err := s.issue("p1", models.TicketSize(7))
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("failed pull leaves no ticket", func() {
		s.escrow.fail = true
		defer func() { s.escrow.fail = false }()

		_, err := s.issue("p2", models.TicketLarge)
		s.True(dErrors.HasCode(err, dErrors.CodeTransferFailed))
		err = s.store.View(s.ctx, func(r store.Reader) error {
			_, err := s.ledger.Lookup(s.ctx, r, "p2")
			return err
		})
		s.True(dErrors.HasCode(err, dErrors.CodeNoTicket))
		s.Zero(s.round().TotalPrincipal)
	})

	s.Run("outside sale", func() {
		s.setPhase(models.PhaseYielding)
		_, err := s.issue("p1", models.TicketSmall)
		s.True(dErrors.HasCode(err, dErrors.CodeWrongPhase))
		s.Empty(s.escrow.pulled)
	})
}

func (s *LedgerSuite) TestRefund() {
	_, err := s.issue("p1", models.TicketMedium)
	s.Require().NoError(err)
	_, err = s.issue("p2", models.TicketSmall)
	s.Require().NoError(err)

	s.Run("not during yielding", func() {
		s.setPhase(models.PhaseYielding)
		_, err := s.refund("p1")
		s.True(dErrors.HasCode(err, dErrors.CodeWrongPhase))
	})

	s.setPhase(models.PhasePayback)

	s.Run("first refund opens the raffle", func() {
		refund, err := s.refund("p1")
		s.Require().NoError(err)
		s.True(refund.OpenedRaffle)
		s.Equal(models.Amount(100_000_000), refund.Ticket.Stake)
		s.Equal(models.Amount(100_000_000), s.escrow.pushed["p1"])

		round := s.round()
		s.True(round.FirstClaimDone)
		s.Equal(models.Amount(10_000_000), round.Outstanding)
		s.Equal(models.Amount(100_000_000), round.Roster["p1"], "roster keeps refunded stake for the draw")

		s.Require().NoError(s.store.View(s.ctx, func(r store.Reader) error {
			return s.phases.Require(s.ctx, r, models.PhaseRaffle)
		}))
	})

	s.Run("second claim for the same participant", func() {
		_, err := s.refund("p1")
		s.True(dErrors.HasCode(err, dErrors.CodeNoTicket))
		s.Equal(models.Amount(100_000_000), s.escrow.pushed["p1"])
	})

	s.Run("late claim in raffle does not transition again", func() {
		refund, err := s.refund("p2")
		s.Require().NoError(err)
		s.False(refund.OpenedRaffle)
		s.Zero(s.round().Outstanding)
	})
}

func (s *LedgerSuite) TestRefundFailureKeepsTicket() {
	_, err := s.issue("p1", models.TicketSmall)
	s.Require().NoError(err)
	s.setPhase(models.PhasePayback)

	s.escrow.fail = true
	_, err = s.refund("p1")
	s.True(dErrors.HasCode(err, dErrors.CodeTransferFailed))

	s.Require().NoError(s.store.View(s.ctx, func(r store.Reader) error {
		ticket, err := s.ledger.Lookup(s.ctx, r, "p1")
		s.Require().NoError(err)
		s.Equal(models.Amount(10_000_000), ticket.Stake)
		return s.phases.Require(s.ctx, r, models.PhasePayback)
	}))
	s.False(s.round().FirstClaimDone)
}
