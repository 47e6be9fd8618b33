// Package store is the durable substrate for lottery state: a small keyed
// record space with per-record expiry and all-or-nothing transactions.
//
// Backends (memory, Redis, PostgreSQL) only need to read single records and
// apply a batch of mutations atomically; transaction staging lives here.
package store

import (
	"context"
	"time"

	"lotto/internal/lottery/models"
)

// Kind names a record family.
type Kind string

const (
	KindAdmin    Kind = "admin"
	KindCurrency Kind = "currency"
	KindPhase    Kind = "phase"
	KindRound    Kind = "round"
	KindTicket   Kind = "ticket"
)

// Key addresses one record. ID is only set for per-participant records.
type Key struct {
	Kind Kind
	ID   string
}

func (k Key) String() string {
	if k.ID == "" {
		return string(k.Kind)
	}
	return string(k.Kind) + ":" + k.ID
}

func AdminKey() Key    { return Key{Kind: KindAdmin} }
func CurrencyKey() Key { return Key{Kind: KindCurrency} }
func PhaseKey() Key    { return Key{Kind: KindPhase} }
func RoundKey() Key    { return Key{Kind: KindRound} }

func TicketKey(participant models.Address) Key {
	return Key{Kind: KindTicket, ID: string(participant)}
}

// Reader is the read half shared by backends and transactions. Missing and
// expired records both return sentinel.ErrNotFound.
type Reader interface {
	Get(ctx context.Context, key Key) ([]byte, error)
	Has(ctx context.Context, key Key) (bool, error)
	// Expiry returns the zero time for records without an expiry.
	Expiry(ctx context.Context, key Key) (time.Time, error)
}

// KV is the view an operation gets of durable state. Writes are staged and
// become visible to other operations only when the transaction commits.
type KV interface {
	Reader
	Set(ctx context.Context, key Key, value []byte) error
	Delete(ctx context.Context, key Key) error
	// Extend sets the record's expiry to ttl from now.
	Extend(ctx context.Context, key Key, ttl time.Duration) error
}

// Op is a mutation kind.
type Op uint8

const (
	OpSet Op = iota + 1
	OpDelete
	OpExtend
)

// Mutation is one staged write. Set clears any expiry on the record; an Extend
// that follows it in the same batch applies to the new value.
type Mutation struct {
	Op    Op
	Key   Key
	Value []byte
	TTL   time.Duration
}

// Backend is implemented by each storage substrate.
type Backend interface {
	Reader
	// Apply performs every mutation or none of them.
	Apply(ctx context.Context, muts []Mutation) error
}
