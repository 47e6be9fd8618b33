// Package raffle picks the round's winner by stake weight from an externally
// supplied seed and pays out the harvested yield.
package raffle

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math/big"
	"slices"
	"time"

	"golang.org/x/crypto/blake2b"

	"lotto/internal/lottery/models"
	"lotto/internal/lottery/phase"
	"lotto/internal/lottery/store"
	dErrors "lotto/pkg/domain-errors"
)

// Payer pays the winner out of custody.
type Payer interface {
	PushFunds(ctx context.Context, r store.Reader, to models.Address, amount models.Amount) error
}

// Selector draws winners.
type Selector struct {
	payer  Payer
	phases *phase.Machine
	clock  func() time.Time
}

func New(payer Payer, phases *phase.Machine, clock func() time.Time) *Selector {
	if clock == nil {
		clock = time.Now
	}
	return &Selector{payer: payer, phases: phases, clock: clock}
}

// Draw selects the winner for the current round and pays them the yield, then
// ends the round. With an empty roster the round still ends; the result has
// NoParticipants set and nothing is paid.
func (s *Selector) Draw(ctx context.Context, kv store.KV, seed []byte) (*models.DrawResult, error) {
	if len(seed) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "randomness seed is required")
	}
	if err := s.phases.Require(ctx, kv, models.PhaseRaffle); err != nil {
		return nil, err
	}
	round, err := store.LoadRound(ctx, kv)
	if err != nil {
		return nil, err
	}

	digest := Digest(seed, round.Number)
	result := &models.DrawResult{
		Round:      round.Number,
		SeedDigest: hex.EncodeToString(digest[:]),
		DrawnAt:    s.clock(),
	}

	if len(round.Roster) == 0 {
		result.NoParticipants = true
	} else {
		winner, err := Pick(round.Roster, digest[:])
		if err != nil {
			return nil, err
		}
		result.Winner = winner
		result.Payout = round.Yield()
		if result.Payout > 0 {
			if err := s.payer.PushFunds(ctx, kv, winner, result.Payout); err != nil {
				return nil, err
			}
		}
	}

	round.LastDraw = result
	if err := store.SaveRound(ctx, kv, round); err != nil {
		return nil, err
	}
	if err := s.phases.Transition(ctx, kv, models.PhaseRaffle, models.PhaseEnded); err != nil {
		return nil, err
	}
	return result, nil
}

// Digest binds the seed to the round so a reused seed does not repeat the
// same draw position across rounds.
func Digest(seed []byte, round uint64) [32]byte {
	buf := make([]byte, 0, len(seed)+8)
	buf = append(buf, seed...)
	buf = binary.BigEndian.AppendUint64(buf, round)
	return blake2b.Sum256(buf)
}

// Pick walks the roster in ascending participant order and returns the
// participant whose cumulative stake range contains digest mod total stake.
// Zero-weight entries can never be picked.
func Pick(roster map[models.Address]models.Amount, digest []byte) (models.Address, error) {
	participants := make([]models.Address, 0, len(roster))
	total := new(big.Int)
	for p, w := range roster {
		if w <= 0 {
			continue
		}
		participants = append(participants, p)
		total.Add(total, big.NewInt(int64(w)))
	}
	if len(participants) == 0 {
		return "", dErrors.New(dErrors.CodeNoParticipants, "no staked participants")
	}
	slices.Sort(participants)

	target := new(big.Int).Mod(new(big.Int).SetBytes(digest), total)
	for _, p := range participants {
		w := big.NewInt(int64(roster[p]))
		if target.Cmp(w) < 0 {
			return p, nil
		}
		target.Sub(target, w)
	}
	return "", dErrors.New(dErrors.CodeInvariantViolation, fmt.Sprintf("draw position beyond total stake %s", total))
}
