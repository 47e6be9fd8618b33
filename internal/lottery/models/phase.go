package models

import (
	"fmt"
	"time"
)

// Ticks counts ledger ticks, the unit record expiry is expressed in.
type Ticks uint32

const (
	// TTLShort keeps Sale, Payback, Raffle and Ended records for ~1.5 days.
	TTLShort Ticks = 25_920
	// TTLLong spans the yield venue's lock-up, ~7 days.
	TTLLong Ticks = 120_960

	// DefaultTickDuration is the assumed ledger close time.
	DefaultTickDuration = 5 * time.Second
)

// Duration converts ticks to wall time at the given tick rate.
func (t Ticks) Duration(tick time.Duration) time.Duration {
	return time.Duration(t) * tick
}

// Phase is the lifecycle position of the lottery. The zero value is invalid so
// a missing record never decodes into a usable phase.
type Phase uint8

const (
	PhaseSale Phase = iota + 1
	PhaseYielding
	PhasePayback
	PhaseRaffle
	PhaseEnded
)

// Phases lists every phase in lifecycle order starting from Sale.
var Phases = []Phase{PhaseSale, PhaseYielding, PhasePayback, PhaseRaffle, PhaseEnded}

func (p Phase) String() string {
	switch p {
	case PhaseSale:
		return "sale"
	case PhaseYielding:
		return "yielding"
	case PhasePayback:
		return "payback"
	case PhaseRaffle:
		return "raffle"
	case PhaseEnded:
		return "ended"
	default:
		return fmt.Sprintf("phase(%d)", uint8(p))
	}
}

// IsValid reports whether p is one of the declared phases.
func (p Phase) IsValid() bool {
	switch p {
	case PhaseSale, PhaseYielding, PhasePayback, PhaseRaffle, PhaseEnded:
		return true
	default:
		return false
	}
}

// Next returns the single legal successor of p.
func (p Phase) Next() (Phase, error) {
	switch p {
	case PhaseEnded:
		return PhaseSale, nil
	case PhaseSale:
		return PhaseYielding, nil
	case PhaseYielding:
		return PhasePayback, nil
	case PhasePayback:
		return PhaseRaffle, nil
	case PhaseRaffle:
		return PhaseEnded, nil
	default:
		return 0, fmt.Errorf("no successor for %s", p)
	}
}

// TTL is the expiry applied whenever the phase record is written as p.
func (p Phase) TTL() Ticks {
	switch p {
	case PhaseYielding:
		return TTLLong
	case PhaseSale, PhasePayback, PhaseRaffle, PhaseEnded:
		return TTLShort
	default:
		return TTLShort
	}
}

func (p Phase) MarshalText() ([]byte, error) {
	if !p.IsValid() {
		return nil, fmt.Errorf("invalid phase %d", uint8(p))
	}
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(text []byte) error {
	parsed, err := ParsePhase(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParsePhase parses the lower-case phase name.
func ParsePhase(s string) (Phase, error) {
	for _, p := range Phases {
		if p.String() == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown phase %q", s)
}
