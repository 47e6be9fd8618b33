package handler

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"lotto/internal/lottery/models"
	"lotto/internal/platform/middleware"
	dErrors "lotto/pkg/domain-errors"
	"lotto/pkg/platform/httputil"
	"lotto/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/service_mocks.go -package=mocks Service

// Service defines the lottery operations exposed over HTTP.
type Service interface {
	Initialize(ctx context.Context, admin, currency models.Address) error
	StartSale(ctx context.Context, caller models.Address) (*models.Round, error)
	BuyTicket(ctx context.Context, caller, participant models.Address, size models.TicketSize) (*models.Ticket, error)
	DepositToVenue(ctx context.Context, caller models.Address) (models.Amount, error)
	WithdrawFromVenue(ctx context.Context, caller models.Address) (models.Amount, error)
	ClaimPrincipal(ctx context.Context, caller, participant models.Address) (models.Amount, error)
	DrawWinnerAndPay(ctx context.Context, caller models.Address, seed []byte) (*models.DrawResult, error)
	ExtendPhase(ctx context.Context, caller models.Address) (models.Phase, error)
	RestorePhase(ctx context.Context, caller models.Address) (models.Phase, error)
	Ticket(ctx context.Context, participant models.Address) (*models.Ticket, error)
	Status(ctx context.Context) (*models.Status, error)
}

// Handler handles lottery endpoints.
type Handler struct {
	logger       *slog.Logger
	lottery      Service
	jwtValidator middleware.JWTValidator
}

// New creates a new lottery Handler.
func New(lottery Service, logger *slog.Logger, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		lottery:      lottery,
		jwtValidator: jwtValidator,
	}
}

// Register registers the lottery routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/status", h.handleStatus)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))

		r.Post("/admin/initialize", h.handleInitialize)
		r.Post("/admin/sale", h.handleStartSale)
		r.Post("/admin/venue/deposit", h.handleDeposit)
		r.Post("/admin/venue/withdraw", h.handleWithdraw)
		r.Post("/admin/raffle", h.handleDraw)
		r.Post("/admin/phase/extend", h.handleExtendPhase)
		r.Post("/admin/phase/restore", h.handleRestorePhase)

		r.Post("/tickets", h.handleBuyTicket)
		r.Post("/tickets/claim", h.handleClaim)
		r.Get("/tickets/me", h.handleMyTicket)
	})
}

type initializeRequest struct {
	Currency string `json:"currency"`
}

type buyTicketRequest struct {
	Size string `json:"size"`
}

type drawRequest struct {
	// Seed is hex-encoded randomness from the external beacon.
	Seed string `json:"seed"`
}

func (h *Handler) handleInitialize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	var req initializeRequest
	if !h.decode(w, r, &req) {
		return
	}
	currency := models.Address(strings.TrimSpace(req.Currency))
	if err := h.lottery.Initialize(ctx, caller, currency); err != nil {
		h.fail(ctx, w, "initialize", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]any{
		"admin":    caller,
		"currency": currency,
		"phase":    models.PhaseEnded,
	})
}

func (h *Handler) handleStartSale(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	round, err := h.lottery.StartSale(ctx, caller)
	if err != nil {
		h.fail(ctx, w, "start sale", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"round": round.Number,
		"phase": models.PhaseSale,
	})
}

func (h *Handler) handleDeposit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	deposited, err := h.lottery.DepositToVenue(ctx, caller)
	if err != nil {
		h.fail(ctx, w, "deposit to venue", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"deposited": deposited,
		"phase":     models.PhaseYielding,
	})
}

func (h *Handler) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	withdrawn, err := h.lottery.WithdrawFromVenue(ctx, caller)
	if err != nil {
		h.fail(ctx, w, "withdraw from venue", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"withdrawn": withdrawn})
}

func (h *Handler) handleDraw(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	var req drawRequest
	if !h.decode(w, r, &req) {
		return
	}
	seed, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(req.Seed), "0x"))
	if err != nil || len(seed) == 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "seed must be non-empty hex"))
		return
	}
	result, err := h.lottery.DrawWinnerAndPay(ctx, caller, seed)
	if err != nil {
		h.fail(ctx, w, "draw winner", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleExtendPhase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	current, err := h.lottery.ExtendPhase(ctx, caller)
	if err != nil {
		h.fail(ctx, w, "extend phase", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"phase": current})
}

func (h *Handler) handleRestorePhase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	restored, err := h.lottery.RestorePhase(ctx, caller)
	if err != nil {
		h.fail(ctx, w, "restore phase", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"phase": restored})
}

func (h *Handler) handleBuyTicket(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	var req buyTicketRequest
	if !h.decode(w, r, &req) {
		return
	}
	size, err := models.ParseTicketSize(req.Size)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "size must be one of small, medium, large"))
		return
	}
	ticket, err := h.lottery.BuyTicket(ctx, caller, caller, size)
	if err != nil {
		h.fail(ctx, w, "buy ticket", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, ticket)
}

func (h *Handler) handleClaim(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	refunded, err := h.lottery.ClaimPrincipal(ctx, caller, caller)
	if err != nil {
		h.fail(ctx, w, "claim principal", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"refunded": refunded})
}

func (h *Handler) handleMyTicket(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	ticket, err := h.lottery.Ticket(ctx, caller)
	if err != nil {
		h.fail(ctx, w, "get ticket", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ticket)
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	status, err := h.lottery.Status(ctx)
	if err != nil {
		h.fail(ctx, w, "status", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, status)
}

// caller returns the authenticated subject. RequireAuth guarantees one; a
// missing subject means the route was mounted without it.
func (h *Handler) caller(w http.ResponseWriter, r *http.Request) (models.Address, bool) {
	ctx := r.Context()
	subject := requestcontext.Subject(ctx)
	if subject == "" {
		h.logger.ErrorContext(ctx, "subject missing from context despite auth middleware",
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return "", false
	}
	return models.Address(subject), true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.logger.WarnContext(r.Context(), "invalid request body",
			"request_id", requestcontext.RequestID(r.Context()),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return false
	}
	return true
}

// fail logs at error level only for failures the caller cannot fix.
func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, op string, err error) {
	code := dErrors.GetCode(err)
	args := []any{
		"operation", op,
		"code", string(code),
		"request_id", requestcontext.RequestID(ctx),
		"error", err.Error(),
	}
	if dErrors.ToHTTPStatus(code) >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, "lottery operation failed", args...)
	} else {
		h.logger.WarnContext(ctx, "lottery operation rejected", args...)
	}
	httputil.WriteError(w, err)
}
