package audit

import (
	"context"
	"time"
)

// EventCategory classifies audit events by retention needs.
type EventCategory string

const (
	// CategoryCompliance covers money movement and custody changes. These are
	// kept for reconciliation against the transfer medium.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers lifecycle bookkeeping with no funds attached.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        string
	Category  EventCategory
	Timestamp time.Time
	Round     uint64
	// Subject is the account the action concerns: a participant, or the admin
	// for lifecycle actions.
	Subject string
	Action  string
	Amount  int64
	Phase   string
	// ActorID is the authenticated caller when different from Subject.
	ActorID   string
	Decision  string
	RequestID string
}

type AuditEvent string

const (
	EventLotteryInitialized AuditEvent = "lottery_initialized"
	EventSaleStarted        AuditEvent = "sale_started"
	EventTicketPurchased    AuditEvent = "ticket_purchased"
	EventPoolDeposited      AuditEvent = "pool_deposited"
	EventPoolWithdrawn      AuditEvent = "pool_withdrawn"
	EventPrincipalClaimed   AuditEvent = "principal_claimed"
	EventRaffleOpened       AuditEvent = "raffle_opened"
	EventWinnerDrawn        AuditEvent = "winner_drawn"
	EventPhaseExtended      AuditEvent = "phase_extended"
	EventPhaseRestored      AuditEvent = "phase_restored"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventTicketPurchased:  CategoryCompliance,
	EventPoolDeposited:    CategoryCompliance,
	EventPoolWithdrawn:    CategoryCompliance,
	EventPrincipalClaimed: CategoryCompliance,
	EventWinnerDrawn:      CategoryCompliance,

	EventLotteryInitialized: CategoryOperations,
	EventSaleStarted:        CategoryOperations,
	EventRaffleOpened:       CategoryOperations,
	EventPhaseExtended:      CategoryOperations,
	EventPhaseRestored:      CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store is any sink audit events are appended to.
type Store interface {
	Append(ctx context.Context, event Event) error
}
