package service

import (
	"context"
	"fmt"

	"lotto/internal/lottery/models"
	"lotto/internal/lottery/store"
	dErrors "lotto/pkg/domain-errors"
	"lotto/pkg/platform/audit"
)

// Initialize records the admin and currency and parks the lottery in Ended.
// It succeeds once per deployment.
func (s *Service) Initialize(ctx context.Context, admin, currency models.Address) error {
	return s.observe(ctx, "initialize", func(ctx context.Context) error {
		if admin.IsZero() {
			return dErrors.New(dErrors.CodeValidation, "admin is required")
		}
		if currency.IsZero() {
			return dErrors.New(dErrors.CodeValidation, "currency is required")
		}

		err := s.store.RunInTx(ctx, func(kv store.KV) error {
			exists, err := store.HasAdmin(ctx, kv)
			if err != nil {
				return err
			}
			if exists {
				return dErrors.New(dErrors.CodeAlreadyInitialized, "lottery is already initialized")
			}
			if err := store.SaveAdmin(ctx, kv, admin); err != nil {
				return err
			}
			if err := store.SaveCurrency(ctx, kv, currency); err != nil {
				return err
			}
			if err := store.SaveRound(ctx, kv, models.NewRound(0)); err != nil {
				return err
			}
			return s.phases.Reset(ctx, kv, models.PhaseEnded)
		})
		if err != nil {
			return err
		}

		s.recordTransition(models.PhaseEnded)
		s.logAudit(ctx, audit.EventLotteryInitialized, 0, 0,
			"admin", admin.String(),
			"currency", currency.String(),
			"phase", models.PhaseEnded.String())
		return nil
	})
}

// StartSale opens a new round. It fails with CodeOutstandingPrincipal while
// any participant of the previous round is still owed their stake.
func (s *Service) StartSale(ctx context.Context, caller models.Address) (*models.Round, error) {
	var round *models.Round
	err := s.observe(ctx, "start_sale", func(ctx context.Context) error {
		err := s.store.RunInTx(ctx, func(kv store.KV) error {
			if err := s.requireAdmin(ctx, kv, caller); err != nil {
				return err
			}
			if err := s.phases.Require(ctx, kv, models.PhaseEnded); err != nil {
				return err
			}
			prev, err := store.LoadRound(ctx, kv)
			if err != nil {
				return err
			}
			if prev.Outstanding > 0 {
				return dErrors.New(dErrors.CodeOutstandingPrincipal,
					fmt.Sprintf("round %d still owes %d in unclaimed principal", prev.Number, prev.Outstanding))
			}
			round = models.NewRound(prev.Number + 1)
			if err := store.SaveRound(ctx, kv, round); err != nil {
				return err
			}
			return s.phases.Transition(ctx, kv, models.PhaseEnded, models.PhaseSale)
		})
		if err != nil {
			return err
		}

		s.recordTransition(models.PhaseSale)
		s.recordOutstanding(round)
		s.logAudit(ctx, audit.EventSaleStarted, round.Number, 0,
			"admin", caller.String(),
			"phase", models.PhaseSale.String())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return round, nil
}

// DepositToVenue lends the round's pool to the yield venue and moves the
// lottery to Yielding. An empty pool skips the venue call.
func (s *Service) DepositToVenue(ctx context.Context, caller models.Address) (models.Amount, error) {
	var deposited models.Amount
	var roundNumber uint64
	err := s.observe(ctx, "deposit_to_venue", func(ctx context.Context) error {
		err := s.store.RunInTx(ctx, func(kv store.KV) error {
			if err := s.requireAdmin(ctx, kv, caller); err != nil {
				return err
			}
			if err := s.phases.Require(ctx, kv, models.PhaseSale); err != nil {
				return err
			}
			round, err := store.LoadRound(ctx, kv)
			if err != nil {
				return err
			}
			if round.TotalPrincipal > 0 {
				if err := s.escrow.DepositToVenue(ctx, kv, round.TotalPrincipal); err != nil {
					return err
				}
			}
			round.Deposited = round.TotalPrincipal
			if err := store.SaveRound(ctx, kv, round); err != nil {
				return err
			}
			deposited, roundNumber = round.Deposited, round.Number
			return s.phases.Transition(ctx, kv, models.PhaseSale, models.PhaseYielding)
		})
		if err != nil {
			return err
		}

		s.recordTransition(models.PhaseYielding)
		s.logAudit(ctx, audit.EventPoolDeposited, roundNumber, deposited,
			"admin", caller.String(),
			"phase", models.PhaseYielding.String())
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deposited, nil
}

// WithdrawFromVenue recalls the pool and moves the lottery to Payback. A
// round with nothing left to claim goes straight on to Raffle.
func (s *Service) WithdrawFromVenue(ctx context.Context, caller models.Address) (models.Amount, error) {
	var round *models.Round
	openedRaffle := false
	err := s.observe(ctx, "withdraw_from_venue", func(ctx context.Context) error {
		err := s.store.RunInTx(ctx, func(kv store.KV) error {
			if err := s.requireAdmin(ctx, kv, caller); err != nil {
				return err
			}
			if err := s.phases.Require(ctx, kv, models.PhaseYielding); err != nil {
				return err
			}
			var err error
			round, err = store.LoadRound(ctx, kv)
			if err != nil {
				return err
			}
			var received models.Amount
			if round.Deposited > 0 {
				received, err = s.escrow.WithdrawFromVenue(ctx, kv)
				if err != nil {
					return err
				}
			}
			round.Withdrawn = received
			round.Recalled = true
			if err := s.phases.Transition(ctx, kv, models.PhaseYielding, models.PhasePayback); err != nil {
				return err
			}
			if round.Outstanding == 0 && !round.FirstClaimDone {
				round.FirstClaimDone = true
				if err := s.phases.Transition(ctx, kv, models.PhasePayback, models.PhaseRaffle); err != nil {
					return err
				}
				openedRaffle = true
			}
			return store.SaveRound(ctx, kv, round)
		})
		if err != nil {
			return err
		}

		if short := round.Shortfall(); short > 0 {
			s.logger.WarnContext(ctx, "venue returned less than round principal",
				"round", round.Number,
				"principal", int64(round.TotalPrincipal),
				"withdrawn", int64(round.Withdrawn),
				"shortfall", int64(short))
		}
		s.recordTransition(models.PhasePayback)
		s.logAudit(ctx, audit.EventPoolWithdrawn, round.Number, round.Withdrawn,
			"admin", caller.String(),
			"phase", models.PhasePayback.String())
		if openedRaffle {
			s.recordTransition(models.PhaseRaffle)
			s.logAudit(ctx, audit.EventRaffleOpened, round.Number, 0,
				"admin", caller.String(),
				"phase", models.PhaseRaffle.String(),
				"reason", "no_outstanding_principal")
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return round.Withdrawn, nil
}

// DrawWinnerAndPay picks the round's winner from seed, pays the yield and
// ends the round. With no participants the round still ends and the call
// returns CodeNoParticipants.
func (s *Service) DrawWinnerAndPay(ctx context.Context, caller models.Address, seed []byte) (*models.DrawResult, error) {
	var result *models.DrawResult
	err := s.observe(ctx, "draw_winner", func(ctx context.Context) error {
		err := s.store.RunInTx(ctx, func(kv store.KV) error {
			if err := s.requireAdmin(ctx, kv, caller); err != nil {
				return err
			}
			var err error
			result, err = s.selector.Draw(ctx, kv, seed)
			return err
		})
		if err != nil {
			return err
		}

		s.recordTransition(models.PhaseEnded)
		if result.NoParticipants {
			s.logAudit(ctx, audit.EventWinnerDrawn, result.Round, 0,
				"admin", caller.String(),
				"phase", models.PhaseEnded.String(),
				"decision", "no_participants",
				"seed_digest", result.SeedDigest)
			return dErrors.New(dErrors.CodeNoParticipants,
				fmt.Sprintf("round %d ended with no participants", result.Round))
		}
		if s.metrics != nil {
			s.metrics.AddYieldPaid(result.Payout)
		}
		s.logAudit(ctx, audit.EventWinnerDrawn, result.Round, result.Payout,
			"winner", result.Winner.String(),
			"phase", models.PhaseEnded.String(),
			"decision", "paid",
			"seed_digest", result.SeedDigest)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ExtendPhase refreshes the current phase record's expiry without changing
// the phase.
func (s *Service) ExtendPhase(ctx context.Context, caller models.Address) (models.Phase, error) {
	var current models.Phase
	err := s.observe(ctx, "extend_phase", func(ctx context.Context) error {
		err := s.store.RunInTx(ctx, func(kv store.KV) error {
			if err := s.requireAdmin(ctx, kv, caller); err != nil {
				return err
			}
			var err error
			current, err = s.phases.Extend(ctx, kv)
			return err
		})
		if err != nil {
			return err
		}
		s.logAudit(ctx, audit.EventPhaseExtended, 0, 0,
			"admin", caller.String(),
			"phase", current.String())
		return nil
	})
	if err != nil {
		return 0, err
	}
	return current, nil
}

// RestorePhase rewrites an expired phase record at the phase the current
// round had reached, leaving the admin, currency and tickets as stored. It
// fails with CodeConflict while the phase record is still live.
func (s *Service) RestorePhase(ctx context.Context, caller models.Address) (models.Phase, error) {
	var restored models.Phase
	var roundNumber uint64
	err := s.observe(ctx, "restore_phase", func(ctx context.Context) error {
		err := s.store.RunInTx(ctx, func(kv store.KV) error {
			if err := s.requireAdmin(ctx, kv, caller); err != nil {
				return err
			}
			missing, err := s.phases.Missing(ctx, kv)
			if err != nil {
				return err
			}
			if !missing {
				return dErrors.New(dErrors.CodeConflict, "phase record is still live")
			}
			round, err := store.LoadRound(ctx, kv)
			if err != nil {
				return err
			}
			restored, roundNumber = round.Resumes(), round.Number
			return s.phases.Reset(ctx, kv, restored)
		})
		if err != nil {
			return err
		}

		s.recordTransition(restored)
		s.logAudit(ctx, audit.EventPhaseRestored, roundNumber, 0,
			"admin", caller.String(),
			"phase", restored.String())
		return nil
	})
	if err != nil {
		return 0, err
	}
	return restored, nil
}
