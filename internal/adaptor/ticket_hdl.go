package adaptor

import (
	"encoding/json"
	"errors"
	"net/http"

	"movie-ticketing/internal/dto/request"
	"movie-ticketing/internal/usecase"
	"movie-ticketing/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// IdempotencyKeyHeader carries the client-supplied key for safe
// issuance retries.
const IdempotencyKeyHeader = "Idempotency-Key"

type TicketHandler struct {
	service usecase.TicketService
	log     *zap.Logger
}

func NewTicketHandler(service usecase.TicketService, log *zap.Logger) *TicketHandler {
	return &TicketHandler{
		service: service,
		log:     log.With(zap.String("handler", "ticket")),
	}
}

// IssueTickets handles POST /tickets/issue
func (h *TicketHandler) IssueTickets(w http.ResponseWriter, r *http.Request) {
	var req request.IssueTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	idempotencyKey := r.Header.Get(IdempotencyKeyHeader)

	resp, replayed, err := h.service.IssueTickets(r.Context(), &req, idempotencyKey)
	if err != nil {
		h.handleServiceError(w, err, "issue tickets")
		return
	}

	if replayed {
		// Retried request: return the original body with 200.
		utils.ResponseSuccess(w, "replayed", resp)
		return
	}

	utils.ResponseCreated(w, "success", resp)
}

// RefundTickets handles POST /tickets/refund
func (h *TicketHandler) RefundTickets(w http.ResponseWriter, r *http.Request) {
	var req request.RefundTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	resp, err := h.service.RefundTickets(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err, "refund tickets")
		return
	}

	utils.ResponseSuccess(w, "success", resp)
}

// GetTicket handles GET /tickets/{id}
func (h *TicketHandler) GetTicket(w http.ResponseWriter, r *http.Request) {
	ticketID := chi.URLParam(r, "id")
	if ticketID == "" {
		utils.ResponseBadRequest(w, "Ticket ID is required", nil)
		return
	}

	ticket, err := h.service.GetTicket(r.Context(), ticketID)
	if err != nil {
		h.handleServiceError(w, err, "get ticket")
		return
	}

	utils.ResponseSuccess(w, "success", ticket)
}

// ListTickets handles GET /tickets
func (h *TicketHandler) ListTickets(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	req := &request.ListTicketsRequest{
		TheaterName: query.Get("theater_name"),
		UserID:      query.Get("user_id"),
		MovieTitle:  query.Get("movie_title"),
		Status:      query.Get("status"),
		Limit:       utils.ParseBoundedInt(query.Get("limit"), 100, 1, 1000),
		Offset:      utils.ParseInt(query.Get("offset"), 0),
	}

	resp, err := h.service.ListTickets(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, err, "list tickets")
		return
	}

	utils.ResponseSuccess(w, "success", resp)
}

// handleServiceError maps the service error taxonomy to status codes
func (h *TicketHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	switch {
	case errors.Is(err, usecase.ErrTicketNotFound):
		h.log.Warn(operation+" failed - not found",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseNotFound(w, err.Error())

	case errors.Is(err, usecase.ErrIdempotencyConflict):
		h.log.Warn(operation+" failed - idempotency conflict",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseConflict(w, err.Error())

	case errors.Is(err, usecase.ErrValidation):
		h.log.Warn(operation+" validation failed",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseBadRequest(w, err.Error(), nil)

	default:
		h.log.Error("Failed to "+operation,
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
