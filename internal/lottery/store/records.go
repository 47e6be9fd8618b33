package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"lotto/internal/lottery/models"
	dErrors "lotto/pkg/domain-errors"
	"lotto/pkg/platform/sentinel"
)

// Typed accessors over a Reader/KV. Missing singleton records surface as
// CodeNoStateFound; store failures as CodeInternal.

func getJSON(ctx context.Context, r Reader, key Key, out any) error {
	raw, err := r.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func setJSON(ctx context.Context, kv KV, key Key, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode "+key.String())
	}
	if err := kv.Set(ctx, key, raw); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to write "+key.String())
	}
	return nil
}

func translateSingleton(err error, key Key) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeNoStateFound, key.String()+" not found: lottery not initialized or state expired")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to read "+key.String())
}

// HasAdmin reports whether initialization has happened.
func HasAdmin(ctx context.Context, r Reader) (bool, error) {
	ok, err := r.Has(ctx, AdminKey())
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read admin")
	}
	return ok, nil
}

func LoadAdmin(ctx context.Context, r Reader) (models.Address, error) {
	var admin models.Address
	if err := getJSON(ctx, r, AdminKey(), &admin); err != nil {
		return "", translateSingleton(err, AdminKey())
	}
	return admin, nil
}

func SaveAdmin(ctx context.Context, kv KV, admin models.Address) error {
	return setJSON(ctx, kv, AdminKey(), admin)
}

func LoadCurrency(ctx context.Context, r Reader) (models.Address, error) {
	var currency models.Address
	if err := getJSON(ctx, r, CurrencyKey(), &currency); err != nil {
		return "", translateSingleton(err, CurrencyKey())
	}
	return currency, nil
}

func SaveCurrency(ctx context.Context, kv KV, currency models.Address) error {
	return setJSON(ctx, kv, CurrencyKey(), currency)
}

func LoadPhase(ctx context.Context, r Reader) (models.Phase, error) {
	var phase models.Phase
	if err := getJSON(ctx, r, PhaseKey(), &phase); err != nil {
		return 0, translateSingleton(err, PhaseKey())
	}
	return phase, nil
}

func SavePhase(ctx context.Context, kv KV, phase models.Phase) error {
	return setJSON(ctx, kv, PhaseKey(), phase)
}

func LoadRound(ctx context.Context, r Reader) (*models.Round, error) {
	round := &models.Round{}
	if err := getJSON(ctx, r, RoundKey(), round); err != nil {
		return nil, translateSingleton(err, RoundKey())
	}
	if round.Roster == nil {
		round.Roster = make(map[models.Address]models.Amount)
	}
	return round, nil
}

func SaveRound(ctx context.Context, kv KV, round *models.Round) error {
	return setJSON(ctx, kv, RoundKey(), round)
}

// LoadTicket returns CodeNoTicket when participant holds no outstanding stake.
func LoadTicket(ctx context.Context, r Reader, participant models.Address) (*models.Ticket, error) {
	ticket := &models.Ticket{}
	if err := getJSON(ctx, r, TicketKey(participant), ticket); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeNoTicket, "no ticket for "+participant.String())
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read ticket")
	}
	return ticket, nil
}

func SaveTicket(ctx context.Context, kv KV, ticket *models.Ticket) error {
	return setJSON(ctx, kv, TicketKey(ticket.Participant), ticket)
}

func DeleteTicket(ctx context.Context, kv KV, participant models.Address) error {
	if err := kv.Delete(ctx, TicketKey(participant)); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to clear ticket")
	}
	return nil
}
