// Package phase is the single authority on the lottery's lifecycle position.
// Every mutating operation checks its precondition here and every phase
// write refreshes the record's expiry.
package phase

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"lotto/internal/lottery/models"
	"lotto/internal/lottery/store"
	dErrors "lotto/pkg/domain-errors"
	"lotto/pkg/platform/sentinel"
)

// Machine reads and advances the phase record inside a store transaction.
type Machine struct {
	tick time.Duration
}

// NewMachine converts phase TTLs from ticks at the given tick duration.
func NewMachine(tick time.Duration) *Machine {
	if tick <= 0 {
		tick = models.DefaultTickDuration
	}
	return &Machine{tick: tick}
}

// Current returns the phase, or CodeNoStateFound when the record is missing
// or has expired.
func (m *Machine) Current(ctx context.Context, r store.Reader) (models.Phase, error) {
	p, err := store.LoadPhase(ctx, r)
	if err != nil {
		return 0, err
	}
	if !p.IsValid() {
		return 0, dErrors.New(dErrors.CodeInvariantViolation, fmt.Sprintf("stored phase %d is not a lifecycle phase", uint8(p)))
	}
	return p, nil
}

// Require fails with CodeWrongPhase unless the current phase is expected.
func (m *Machine) Require(ctx context.Context, r store.Reader, expected models.Phase) error {
	_, err := m.RequireAny(ctx, r, expected)
	return err
}

// RequireAny fails with CodeWrongPhase unless the current phase is one of allowed.
func (m *Machine) RequireAny(ctx context.Context, r store.Reader, allowed ...models.Phase) (models.Phase, error) {
	current, err := m.Current(ctx, r)
	if err != nil {
		return 0, err
	}
	if !slices.Contains(allowed, current) {
		return current, wrongPhase(current, allowed...)
	}
	return current, nil
}

// Transition moves from -> to. to must be from's successor; the current phase
// must equal from. The new record's expiry is to's TTL from now.
func (m *Machine) Transition(ctx context.Context, kv store.KV, from, to models.Phase) error {
	next, err := from.Next()
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvariantViolation, "illegal transition")
	}
	if next != to {
		return dErrors.New(dErrors.CodeInvariantViolation, fmt.Sprintf("illegal transition %s -> %s", from, to))
	}
	if err := m.Require(ctx, kv, from); err != nil {
		return err
	}
	return m.write(ctx, kv, to)
}

// Reset writes p unconditionally. Initialization and restore use it.
func (m *Machine) Reset(ctx context.Context, kv store.KV, p models.Phase) error {
	if !p.IsValid() {
		return dErrors.New(dErrors.CodeInvariantViolation, "reset to invalid phase")
	}
	return m.write(ctx, kv, p)
}

// Extend refreshes the current phase's expiry without changing it.
func (m *Machine) Extend(ctx context.Context, kv store.KV) (models.Phase, error) {
	current, err := m.Current(ctx, kv)
	if err != nil {
		return 0, err
	}
	if err := kv.Extend(ctx, store.PhaseKey(), current.TTL().Duration(m.tick)); err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to extend phase expiry")
	}
	return current, nil
}

// Missing reports whether the phase record is absent or expired.
func (m *Machine) Missing(ctx context.Context, r store.Reader) (bool, error) {
	_, err := m.Current(ctx, r)
	switch {
	case err == nil:
		return false, nil
	case dErrors.HasCode(err, dErrors.CodeNoStateFound):
		return true, nil
	default:
		return false, err
	}
}

// Expiry returns when the phase record lapses.
func (m *Machine) Expiry(ctx context.Context, r store.Reader) (time.Time, error) {
	t, err := r.Expiry(ctx, store.PhaseKey())
	if errors.Is(err, sentinel.ErrNotFound) {
		return time.Time{}, dErrors.Wrap(err, dErrors.CodeNoStateFound, "phase not found")
	}
	if err != nil {
		return time.Time{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read phase expiry")
	}
	return t, nil
}

func (m *Machine) write(ctx context.Context, kv store.KV, p models.Phase) error {
	if err := store.SavePhase(ctx, kv, p); err != nil {
		return err
	}
	if err := kv.Extend(ctx, store.PhaseKey(), p.TTL().Duration(m.tick)); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to set phase expiry")
	}
	return nil
}

func wrongPhase(current models.Phase, allowed ...models.Phase) error {
	names := make([]string, len(allowed))
	for i, p := range allowed {
		names[i] = p.String()
	}
	return dErrors.New(dErrors.CodeWrongPhase, fmt.Sprintf("operation requires phase %v, lottery is in %s", names, current))
}
