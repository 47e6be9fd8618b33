package models

import (
	"fmt"
	"strings"
)

// Address identifies an account on the transfer medium: a participant, the
// admin, the currency contract or the pool's custody account.
type Address string

func (a Address) IsZero() bool { return strings.TrimSpace(string(a)) == "" }

func (a Address) String() string { return string(a) }

// Amount is a quantity in the transfer medium's smallest unit.
type Amount int64

// TicketSize is the stake class of a ticket.
type TicketSize uint8

const (
	TicketSmall TicketSize = iota + 1
	TicketMedium
	TicketLarge
)

// TicketSizes lists the stake classes from smallest to largest.
var TicketSizes = []TicketSize{TicketSmall, TicketMedium, TicketLarge}

// Amount is the fixed stake pulled for one ticket of this size.
func (s TicketSize) Amount() Amount {
	switch s {
	case TicketSmall:
		return 10_000_000
	case TicketMedium:
		return 100_000_000
	case TicketLarge:
		return 1_000_000_000
	default:
		return 0
	}
}

func (s TicketSize) String() string {
	switch s {
	case TicketSmall:
		return "small"
	case TicketMedium:
		return "medium"
	case TicketLarge:
		return "large"
	default:
		return fmt.Sprintf("size(%d)", uint8(s))
	}
}

func (s TicketSize) IsValid() bool {
	return s.Amount() > 0
}

func (s TicketSize) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("invalid ticket size %d", uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *TicketSize) UnmarshalText(text []byte) error {
	parsed, err := ParseTicketSize(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseTicketSize accepts the size name in any case.
func ParseTicketSize(raw string) (TicketSize, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	for _, s := range TicketSizes {
		if s.String() == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown ticket size %q", raw)
}

// Ticket is a participant's accumulated stake for one round. Buying again
// adds to the same record.
type Ticket struct {
	Participant Address            `json:"participant"`
	Round       uint64             `json:"round"`
	Stake       Amount             `json:"stake"`
	Count       int                `json:"count"`
	BySize      map[TicketSize]int `json:"by_size"`
}

// NewTicket returns an empty ticket for participant in round.
func NewTicket(participant Address, round uint64) *Ticket {
	return &Ticket{
		Participant: participant,
		Round:       round,
		BySize:      make(map[TicketSize]int),
	}
}

// Accumulate records one more ticket of size.
func (t *Ticket) Accumulate(size TicketSize) {
	if t.BySize == nil {
		t.BySize = make(map[TicketSize]int)
	}
	t.Stake += size.Amount()
	t.Count++
	t.BySize[size]++
}
