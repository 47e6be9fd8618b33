package service

import (
	"context"

	"lotto/internal/lottery/models"
	"lotto/internal/lottery/store"
)

// Status returns a read-only snapshot. The custody balance is best effort;
// a failed lookup is logged and leaves it unset.
func (s *Service) Status(ctx context.Context) (*models.Status, error) {
	var status *models.Status
	err := s.observe(ctx, "status", func(ctx context.Context) error {
		return s.store.View(ctx, func(r store.Reader) error {
			admin, err := store.LoadAdmin(ctx, r)
			if err != nil {
				return err
			}
			currency, err := store.LoadCurrency(ctx, r)
			if err != nil {
				return err
			}
			current, err := s.phases.Current(ctx, r)
			if err != nil {
				return err
			}
			expiresAt, err := s.phases.Expiry(ctx, r)
			if err != nil {
				return err
			}
			round, err := store.LoadRound(ctx, r)
			if err != nil {
				return err
			}

			status = &models.Status{
				Admin:          admin,
				Currency:       currency,
				Phase:          current,
				PhaseExpiresAt: expiresAt,
				Round:          round.Number,
				Participants:   len(round.Roster),
				TotalPrincipal: round.TotalPrincipal,
				Outstanding:    round.Outstanding,
				Withdrawn:      round.Withdrawn,
				Yield:          round.Yield(),
				LastDraw:       round.LastDraw,
			}
			balance, err := s.escrow.CustodyBalance(ctx, r)
			if err != nil {
				s.logger.WarnContext(ctx, "custody balance unavailable", "error", err)
				return nil
			}
			status.CustodyBalance = &balance
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return status, nil
}
