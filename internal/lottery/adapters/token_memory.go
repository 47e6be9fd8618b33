// Package adapters holds in-process stand-ins for the lottery's external
// collaborators: a fungible-asset ledger and a yield venue. They back local
// development and tests; production deployments bind real clients to the
// escrow ports instead.
package adapters

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"lotto/internal/lottery/models"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAmount     = errors.New("amount must be positive")
)

// TokenLedger is an in-memory multi-currency balance sheet.
type TokenLedger struct {
	mu       sync.RWMutex
	balances map[models.Address]map[models.Address]models.Amount
}

type TokenOption func(*TokenLedger)

// WithInitialBalance credits owner with amount of currency at construction.
func WithInitialBalance(currency, owner models.Address, amount models.Amount) TokenOption {
	return func(l *TokenLedger) {
		l.credit(currency, owner, amount)
	}
}

func NewTokenLedger(opts ...TokenOption) *TokenLedger {
	l := &TokenLedger{balances: make(map[models.Address]map[models.Address]models.Amount)}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Mint credits owner out of thin air. It is the development faucet.
func (l *TokenLedger) Mint(_ context.Context, currency, owner models.Address, amount models.Amount) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.credit(currency, owner, amount)
	return nil
}

func (l *TokenLedger) Transfer(ctx context.Context, currency, from, to models.Address, amount models.Amount) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if amount <= 0 {
		return ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if have := l.balances[currency][from]; have < amount {
		return fmt.Errorf("%w: %s holds %d %s, needs %d", ErrInsufficientFunds, from, have, currency, amount)
	}
	l.balances[currency][from] -= amount
	l.credit(currency, to, amount)
	return nil
}

func (l *TokenLedger) Balance(ctx context.Context, currency, owner models.Address) (models.Amount, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balances[currency][owner], nil
}

func (l *TokenLedger) credit(currency, owner models.Address, amount models.Amount) {
	if l.balances[currency] == nil {
		l.balances[currency] = make(map[models.Address]models.Amount)
	}
	l.balances[currency][owner] += amount
}
