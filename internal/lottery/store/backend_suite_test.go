package store

import (
	"context"
	"errors"
	"time"

	"github.com/stretchr/testify/suite"

	"lotto/internal/lottery/models"
	dErrors "lotto/pkg/domain-errors"
	"lotto/pkg/platform/sentinel"
)

// BackendSuite is run against every Backend implementation.
type BackendSuite struct {
	suite.Suite
	ctx        context.Context
	newBackend func() Backend
	backend    Backend
	store      *Store
}

func (s *BackendSuite) SetupTest() {
	s.ctx = context.Background()
	s.backend = s.newBackend()
	s.store = New(s.backend)
}

func (s *BackendSuite) TestGetMissing() {
	_, err := s.backend.Get(s.ctx, AdminKey())
	s.ErrorIs(err, sentinel.ErrNotFound)

	ok, err := s.backend.Has(s.ctx, AdminKey())
	s.Require().NoError(err)
	s.False(ok)

	_, err = s.backend.Expiry(s.ctx, PhaseKey())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *BackendSuite) TestApply() {
	s.Run("set is readable and has no expiry", func() {
		s.Require().NoError(s.backend.Apply(s.ctx, []Mutation{
			{Op: OpSet, Key: CurrencyKey(), Value: []byte(`"usdc"`)},
		}))
		got, err := s.backend.Get(s.ctx, CurrencyKey())
		s.Require().NoError(err)
		s.Equal(`"usdc"`, string(got))

		exp, err := s.backend.Expiry(s.ctx, CurrencyKey())
		s.Require().NoError(err)
		s.True(exp.IsZero())
	})

	s.Run("extend sets an expiry ttl from now", func() {
		s.Require().NoError(s.backend.Apply(s.ctx, []Mutation{
			{Op: OpSet, Key: PhaseKey(), Value: []byte(`"sale"`)},
			{Op: OpExtend, Key: PhaseKey(), TTL: time.Hour},
		}))
		exp, err := s.backend.Expiry(s.ctx, PhaseKey())
		s.Require().NoError(err)
		s.WithinDuration(time.Now().Add(time.Hour), exp, 5*time.Second)
	})

	s.Run("set clears a previous expiry", func() {
		s.Require().NoError(s.backend.Apply(s.ctx, []Mutation{
			{Op: OpSet, Key: PhaseKey(), Value: []byte(`"yielding"`)},
		}))
		exp, err := s.backend.Expiry(s.ctx, PhaseKey())
		s.Require().NoError(err)
		s.True(exp.IsZero())
	})

	s.Run("delete removes the record", func() {
		s.Require().NoError(s.backend.Apply(s.ctx, []Mutation{
			{Op: OpDelete, Key: CurrencyKey()},
		}))
		ok, err := s.backend.Has(s.ctx, CurrencyKey())
		s.Require().NoError(err)
		s.False(ok)
	})
}

func (s *BackendSuite) TestApplyIsAllOrNothing() {
	err := s.backend.Apply(s.ctx, []Mutation{
		{Op: OpSet, Key: AdminKey(), Value: []byte(`"admin"`)},
		{Op: OpExtend, Key: TicketKey("nobody"), TTL: time.Minute},
	})
	s.Require().Error(err)
	s.True(errors.Is(err, sentinel.ErrNotFound))

	ok, err := s.backend.Has(s.ctx, AdminKey())
	s.Require().NoError(err)
	s.False(ok, "a failed batch must not leave partial writes")
}

func (s *BackendSuite) TestRunInTx() {
	s.Run("staged writes are visible inside the transaction", func() {
		err := s.store.RunInTx(s.ctx, func(kv KV) error {
			s.Require().NoError(SaveAdmin(s.ctx, kv, "admin"))
			got, err := LoadAdmin(s.ctx, kv)
			s.Require().NoError(err)
			s.Equal(models.Address("admin"), got)
			return nil
		})
		s.Require().NoError(err)
	})

	s.Run("committed writes are visible to views", func() {
		err := s.store.View(s.ctx, func(r Reader) error {
			got, err := LoadAdmin(s.ctx, r)
			s.Require().NoError(err)
			s.Equal(models.Address("admin"), got)
			return nil
		})
		s.Require().NoError(err)
	})

	s.Run("a failing transaction writes nothing", func() {
		boom := dErrors.New(dErrors.CodeTransferFailed, "transfer rejected")
		err := s.store.RunInTx(s.ctx, func(kv KV) error {
			s.Require().NoError(SaveCurrency(s.ctx, kv, "usdc"))
			s.Require().NoError(SaveTicket(s.ctx, kv, models.NewTicket("alice", 1)))
			return boom
		})
		s.Equal(boom, err)

		_, err = LoadCurrency(s.ctx, s.backend)
		s.True(dErrors.HasCode(err, dErrors.CodeNoStateFound))
		_, err = LoadTicket(s.ctx, s.backend, "alice")
		s.True(dErrors.HasCode(err, dErrors.CodeNoTicket))
	})

	s.Run("delete inside a transaction hides the record", func() {
		s.Require().NoError(s.store.RunInTx(s.ctx, func(kv KV) error {
			return SaveTicket(s.ctx, kv, models.NewTicket("bob", 1))
		}))
		err := s.store.RunInTx(s.ctx, func(kv KV) error {
			s.Require().NoError(DeleteTicket(s.ctx, kv, "bob"))
			_, err := LoadTicket(s.ctx, kv, "bob")
			s.True(dErrors.HasCode(err, dErrors.CodeNoTicket))
			return nil
		})
		s.Require().NoError(err)
		_, err = LoadTicket(s.ctx, s.backend, "bob")
		s.True(dErrors.HasCode(err, dErrors.CodeNoTicket))
	})

	s.Run("extending a missing record fails inside the transaction", func() {
		err := s.store.RunInTx(s.ctx, func(kv KV) error {
			return kv.Extend(s.ctx, PhaseKey(), time.Minute)
		})
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *BackendSuite) TestRoundTripRecords() {
	round := models.NewRound(4)
	round.AddStake("alice", models.TicketMedium.Amount())
	round.AddStake("bob", models.TicketSmall.Amount())
	round.Withdrawn = 121_000_000

	ticket := models.NewTicket("alice", 4)
	ticket.Accumulate(models.TicketMedium)
	ticket.Accumulate(models.TicketSmall)

	s.Require().NoError(s.store.RunInTx(s.ctx, func(kv KV) error {
		if err := SavePhase(s.ctx, kv, models.PhasePayback); err != nil {
			return err
		}
		if err := SaveRound(s.ctx, kv, round); err != nil {
			return err
		}
		return SaveTicket(s.ctx, kv, ticket)
	}))

	gotPhase, err := LoadPhase(s.ctx, s.backend)
	s.Require().NoError(err)
	s.Equal(models.PhasePayback, gotPhase)

	gotRound, err := LoadRound(s.ctx, s.backend)
	s.Require().NoError(err)
	s.Equal(round, gotRound)

	gotTicket, err := LoadTicket(s.ctx, s.backend, "alice")
	s.Require().NoError(err)
	s.Equal(ticket, gotTicket)
}
