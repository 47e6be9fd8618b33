package adapters

import (
	"context"
	"fmt"
	"sync"

	"lotto/internal/lottery/models"
)

const basisPoints = 10_000

// SimulatedVenue lends deposits nowhere and pays a fixed return on withdraw.
// Yield is minted on the token ledger into the venue's account; a negative
// rate simulates a loss.
type SimulatedVenue struct {
	mu       sync.Mutex
	token    *TokenLedger
	account  models.Address
	yieldBps int64
	deposits map[models.Address]models.Amount
}

// NewSimulatedVenue pays yieldBps basis points on every withdrawal.
func NewSimulatedVenue(token *TokenLedger, account models.Address, yieldBps int64) (*SimulatedVenue, error) {
	if token == nil {
		return nil, fmt.Errorf("token ledger is required")
	}
	if account.IsZero() {
		return nil, fmt.Errorf("venue account is required")
	}
	if yieldBps < -basisPoints {
		return nil, fmt.Errorf("yield of %d bps would return a negative amount", yieldBps)
	}
	return &SimulatedVenue{
		token:    token,
		account:  account,
		yieldBps: yieldBps,
		deposits: make(map[models.Address]models.Amount),
	}, nil
}

func (v *SimulatedVenue) Deposit(ctx context.Context, currency, from models.Address, amount models.Amount) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.token.Transfer(ctx, currency, from, v.account, amount); err != nil {
		return fmt.Errorf("venue deposit: %w", err)
	}
	v.deposits[currency] += amount
	return nil
}

// Withdraw returns every deposit in currency plus the configured return.
func (v *SimulatedVenue) Withdraw(ctx context.Context, currency, to models.Address) (models.Amount, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	principal := v.deposits[currency]
	if principal == 0 {
		return 0, nil
	}
	ret := principal * models.Amount(v.yieldBps) / basisPoints
	payout := principal + ret
	if ret > 0 {
		if err := v.token.Mint(ctx, currency, v.account, ret); err != nil {
			return 0, fmt.Errorf("venue harvest: %w", err)
		}
	}
	if payout > 0 {
		if err := v.token.Transfer(ctx, currency, v.account, to, payout); err != nil {
			return 0, fmt.Errorf("venue withdraw: %w", err)
		}
	}
	delete(v.deposits, currency)
	return payout, nil
}

// Deposited reports the principal currently held for currency.
func (v *SimulatedVenue) Deposited(currency models.Address) models.Amount {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.deposits[currency]
}
