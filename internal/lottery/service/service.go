// Package service is the lottery's public operation surface. Each operation
// authenticates its caller, runs in a single store transaction and emits its
// audit record only after the transaction commits.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"lotto/internal/lottery/ledger"
	"lotto/internal/lottery/metrics"
	"lotto/internal/lottery/models"
	"lotto/internal/lottery/phase"
	"lotto/internal/lottery/raffle"
	"lotto/internal/lottery/store"
	"lotto/pkg/attrs"
	dErrors "lotto/pkg/domain-errors"
	"lotto/pkg/platform/audit"
	"lotto/pkg/requestcontext"
)

const tracerName = "lotto/internal/lottery/service"

// Store runs operations with exclusive access to durable state.
type Store interface {
	RunInTx(ctx context.Context, fn func(kv store.KV) error) error
	View(ctx context.Context, fn func(r store.Reader) error) error
}

// Escrow moves funds between participants, custody and the yield venue.
type Escrow interface {
	PullFunds(ctx context.Context, r store.Reader, from models.Address, amount models.Amount) error
	PushFunds(ctx context.Context, r store.Reader, to models.Address, amount models.Amount) error
	DepositToVenue(ctx context.Context, r store.Reader, total models.Amount) error
	WithdrawFromVenue(ctx context.Context, r store.Reader) (models.Amount, error)
	CustodyBalance(ctx context.Context, r store.Reader) (models.Amount, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service orchestrates the lottery lifecycle.
type Service struct {
	store  Store
	escrow Escrow

	phases   *phase.Machine
	ledger   *ledger.Ledger
	selector *raffle.Selector

	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	tracer         trace.Tracer
	tick           time.Duration
	clock          func() time.Time
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTickDuration sets the wall-clock length of one tick used to convert
// phase TTLs.
func WithTickDuration(d time.Duration) Option {
	return func(s *Service) {
		s.tick = d
	}
}

func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		s.clock = clock
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

// New constructs a Service over the given store and escrow coordinator.
func New(st Store, escrow Escrow, opts ...Option) (*Service, error) {
	if st == nil {
		return nil, fmt.Errorf("store is required")
	}
	if escrow == nil {
		return nil, fmt.Errorf("escrow is required")
	}
	s := &Service{
		store:  st,
		escrow: escrow,
		tick:   models.DefaultTickDuration,
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(tracerName)
	}
	s.phases = phase.NewMachine(s.tick)
	s.ledger = ledger.New(escrow, s.phases)
	s.selector = raffle.New(escrow, s.phases, s.clock)
	return s, nil
}

// requireAdmin authenticates caller as the configured admin.
func (s *Service) requireAdmin(ctx context.Context, r store.Reader, caller models.Address) error {
	admin, err := store.LoadAdmin(ctx, r)
	if err != nil {
		return err
	}
	if caller.IsZero() || caller != admin {
		return dErrors.New(dErrors.CodeUnauthorized, "caller is not the lottery admin")
	}
	return nil
}

func requireOwner(caller, participant models.Address) error {
	if participant.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "participant is required")
	}
	if caller != participant {
		return dErrors.New(dErrors.CodeUnauthorized, "caller must be the participant")
	}
	return nil
}

// observe wraps an operation in a span, records its latency and classifies
// its error. Errors that carry no domain code leave as CodeInternal.
func (s *Service) observe(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	ctx, span := s.tracer.Start(ctx, "lottery."+op, trace.WithAttributes(
		attribute.String("request_id", requestcontext.RequestID(ctx)),
	))
	defer span.End()

	start := time.Now()
	err := classify(fn(ctx))
	if s.metrics != nil {
		s.metrics.ObserveDuration(op, time.Since(start).Seconds())
	}
	if err != nil {
		code := dErrors.GetCode(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, string(code))
		if s.metrics != nil {
			s.metrics.IncrementError(op, string(code))
		}
	}
	return err
}

func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case dErrors.IsDomain(err):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return dErrors.Wrap(err, dErrors.CodeTimeout, "operation timed out")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "lottery operation failed")
	}
}

// logAudit writes the audit log line and publishes the matching event. The
// event's subject is taken from the participant, winner or admin attribute.
func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, round uint64, amount models.Amount, attributes ...any) {
	requestID := requestcontext.RequestID(ctx)
	if requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	args := append(attributes, "event", string(event), "log_type", "audit", "round", round)
	if amount != 0 {
		args = append(args, "amount", int64(amount))
	}
	s.logger.InfoContext(ctx, string(event), args...)

	if s.auditPublisher == nil {
		return
	}
	err := s.auditPublisher.Emit(ctx, audit.Event{
		Action:    string(event),
		Timestamp: requestcontext.Now(ctx),
		Round:     round,
		Subject:   attrs.ExtractFirst(attributes, "participant", "winner", "admin"),
		Amount:    int64(amount),
		Phase:     attrs.ExtractString(attributes, "phase"),
		ActorID:   requestcontext.Subject(ctx),
		Decision:  attrs.ExtractString(attributes, "decision"),
		RequestID: requestID,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "event", string(event), "error", err)
	}
}

func (s *Service) recordTransition(to models.Phase) {
	if s.metrics != nil {
		s.metrics.IncrementTransition(to)
	}
}

func (s *Service) recordOutstanding(round *models.Round) {
	if s.metrics != nil && round != nil {
		s.metrics.SetOutstanding(round.Outstanding)
	}
}
