// Package escrow moves funds between participants, the pool's custody account
// and the yield venue. Both collaborators are trusted black boxes; their
// failures surface as CodeTransferFailed or CodeVenueError and are never
// retried here.
package escrow

//go:generate mockgen -source=escrow.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"fmt"

	"lotto/internal/lottery/models"
	"lotto/internal/lottery/store"
	dErrors "lotto/pkg/domain-errors"
)

// Token is the fungible-asset ledger used for every transfer.
type Token interface {
	Transfer(ctx context.Context, currency, from, to models.Address, amount models.Amount) error
	Balance(ctx context.Context, currency, owner models.Address) (models.Amount, error)
}

// Venue is the yield-generating venue the pool is lent to.
type Venue interface {
	Deposit(ctx context.Context, currency, from models.Address, amount models.Amount) error
	// Withdraw returns principal plus yield to `to` and reports the amount.
	Withdraw(ctx context.Context, currency, to models.Address) (models.Amount, error)
}

// Coordinator binds the collaborators to the pool's custody account. The
// currency is read from durable state on every call.
type Coordinator struct {
	token   Token
	venue   Venue
	custody models.Address
}

// New returns a Coordinator for the custody account.
func New(token Token, venue Venue, custody models.Address) (*Coordinator, error) {
	if token == nil {
		return nil, fmt.Errorf("token client is required")
	}
	if venue == nil {
		return nil, fmt.Errorf("yield venue is required")
	}
	if custody.IsZero() {
		return nil, fmt.Errorf("custody address is required")
	}
	return &Coordinator{token: token, venue: venue, custody: custody}, nil
}

// Custody is the pool's account.
func (c *Coordinator) Custody() models.Address {
	return c.custody
}

// PullFunds moves amount from a participant into custody.
func (c *Coordinator) PullFunds(ctx context.Context, r store.Reader, from models.Address, amount models.Amount) error {
	currency, err := c.currency(ctx, r, amount)
	if err != nil {
		return err
	}
	if err := c.token.Transfer(ctx, currency, from, c.custody, amount); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTransferFailed, fmt.Sprintf("pull %d from %s failed", amount, from))
	}
	return nil
}

// PushFunds moves amount from custody to a participant.
func (c *Coordinator) PushFunds(ctx context.Context, r store.Reader, to models.Address, amount models.Amount) error {
	currency, err := c.currency(ctx, r, amount)
	if err != nil {
		return err
	}
	if err := c.token.Transfer(ctx, currency, c.custody, to, amount); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTransferFailed, fmt.Sprintf("push %d to %s failed", amount, to))
	}
	return nil
}

// DepositToVenue lends the whole pool to the venue.
func (c *Coordinator) DepositToVenue(ctx context.Context, r store.Reader, total models.Amount) error {
	currency, err := c.currency(ctx, r, total)
	if err != nil {
		return err
	}
	if err := c.venue.Deposit(ctx, currency, c.custody, total); err != nil {
		return dErrors.Wrap(err, dErrors.CodeVenueError, fmt.Sprintf("deposit %d to venue failed", total))
	}
	return nil
}

// WithdrawFromVenue recalls the pool into custody and returns what came back.
func (c *Coordinator) WithdrawFromVenue(ctx context.Context, r store.Reader) (models.Amount, error) {
	currency, err := store.LoadCurrency(ctx, r)
	if err != nil {
		return 0, err
	}
	received, err := c.venue.Withdraw(ctx, currency, c.custody)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeVenueError, "withdraw from venue failed")
	}
	if received < 0 {
		return 0, dErrors.New(dErrors.CodeVenueError, fmt.Sprintf("venue reported negative withdrawal %d", received))
	}
	return received, nil
}

// CustodyBalance reports the pool account's balance on the token ledger.
func (c *Coordinator) CustodyBalance(ctx context.Context, r store.Reader) (models.Amount, error) {
	currency, err := store.LoadCurrency(ctx, r)
	if err != nil {
		return 0, err
	}
	bal, err := c.token.Balance(ctx, currency, c.custody)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeTransferFailed, "custody balance lookup failed")
	}
	return bal, nil
}

func (c *Coordinator) currency(ctx context.Context, r store.Reader, amount models.Amount) (models.Address, error) {
	if amount <= 0 {
		return "", dErrors.New(dErrors.CodeInvariantViolation, fmt.Sprintf("transfer amount must be positive, got %d", amount))
	}
	return store.LoadCurrency(ctx, r)
}
