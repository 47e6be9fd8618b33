package models

import "time"

// Round is the bookkeeping for one sale-to-draw cycle.
//
// Roster holds each participant's stake as bought and is not reduced by
// refunds; it is the raffle's weighting. Outstanding is the principal still
// owed to participants who have not claimed.
type Round struct {
	Number         uint64             `json:"number"`
	TotalPrincipal Amount             `json:"total_principal"`
	Outstanding    Amount             `json:"outstanding"`
	Deposited      Amount             `json:"deposited"`
	Withdrawn      Amount             `json:"withdrawn"`
	Recalled       bool               `json:"recalled"`
	Refunded       Amount             `json:"refunded"`
	FirstClaimDone bool               `json:"first_claim_done"`
	Roster         map[Address]Amount `json:"roster"`
	LastDraw       *DrawResult        `json:"last_draw,omitempty"`
}

// NewRound starts bookkeeping for round number n.
func NewRound(n uint64) *Round {
	return &Round{Number: n, Roster: make(map[Address]Amount)}
}

// AddStake records principal pulled from participant.
func (r *Round) AddStake(participant Address, amount Amount) {
	if r.Roster == nil {
		r.Roster = make(map[Address]Amount)
	}
	r.Roster[participant] += amount
	r.TotalPrincipal += amount
	r.Outstanding += amount
}

// Release records principal paid back to a participant.
func (r *Round) Release(amount Amount) {
	r.Outstanding -= amount
	r.Refunded += amount
}

// Yield is what the venue returned above the round's principal. Principal not
// yet claimed stays reserved, so the result does not depend on claim order.
func (r *Round) Yield() Amount {
	y := r.Withdrawn - r.TotalPrincipal
	if y < 0 {
		return 0
	}
	return y
}

// Resumes is the phase this round's bookkeeping had reached, for restoring a
// phase record that expired. Principal still at the venue resumes Yielding; a
// recalled but undrawn pool resumes Payback or Raffle; anything else is Ended,
// where every remaining stake in custody can be claimed.
func (r *Round) Resumes() Phase {
	switch {
	case r.LastDraw != nil:
		return PhaseEnded
	case r.Deposited > 0 && !r.Recalled:
		return PhaseYielding
	case r.Recalled && !r.FirstClaimDone:
		return PhasePayback
	case r.Recalled:
		return PhaseRaffle
	default:
		return PhaseEnded
	}
}

// Shortfall is how far the venue's return fell below principal.
func (r *Round) Shortfall() Amount {
	s := r.TotalPrincipal - r.Withdrawn
	if s < 0 {
		return 0
	}
	return s
}

// DrawResult records the outcome of a raffle.
type DrawResult struct {
	Round          uint64    `json:"round"`
	Winner         Address   `json:"winner,omitempty"`
	Payout         Amount    `json:"payout"`
	SeedDigest     string    `json:"seed_digest,omitempty"`
	NoParticipants bool      `json:"no_participants"`
	DrawnAt        time.Time `json:"drawn_at"`
}

// Status is a read-only snapshot of the lottery.
type Status struct {
	Admin          Address     `json:"admin"`
	Currency       Address     `json:"currency"`
	Phase          Phase       `json:"phase"`
	PhaseExpiresAt time.Time   `json:"phase_expires_at"`
	Round          uint64      `json:"round"`
	Participants   int         `json:"participants"`
	TotalPrincipal Amount      `json:"total_principal"`
	Outstanding    Amount      `json:"outstanding"`
	Withdrawn      Amount      `json:"withdrawn"`
	Yield          Amount      `json:"yield"`
	CustodyBalance *Amount     `json:"custody_balance,omitempty"`
	LastDraw       *DrawResult `json:"last_draw,omitempty"`
}
