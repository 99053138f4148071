package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"movie-ticketing/internal/data/entity"
	"movie-ticketing/internal/data/repository"
	"movie-ticketing/internal/dto/request"
	"movie-ticketing/internal/dto/response"
	"movie-ticketing/pkg/idempotency"
	"movie-ticketing/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TicketService interface {
	// IssueTickets creates req.Quantity tickets in one transaction.
	// The returned bool is true when the response was replayed from the
	// idempotency cache instead of being executed.
	IssueTickets(ctx context.Context, req *request.IssueTicketRequest, idempotencyKey string) (*response.IssueTicketResponse, bool, error)

	// RefundTickets classifies every id in the (deduplicated) batch
	// into exactly one of refunded / already_canceled / not_found.
	RefundTickets(ctx context.Context, req *request.RefundTicketRequest) (*response.RefundTicketResponse, error)

	GetTicket(ctx context.Context, ticketID string) (*response.TicketResponse, error)
	ListTickets(ctx context.Context, req *request.ListTicketsRequest) (*response.TicketListResponse, error)
}

type ticketService struct {
	repo repository.TicketRepository
	idem idempotency.Store
	log  *zap.Logger
	now  func() time.Time
}

func NewTicketService(repo repository.TicketRepository, idem idempotency.Store, log *zap.Logger) TicketService {
	return &ticketService{
		repo: repo,
		idem: idem,
		log:  log.With(zap.String("service", "ticket")),
		now:  time.Now,
	}
}

func (s *ticketService) IssueTickets(ctx context.Context, req *request.IssueTicketRequest, idempotencyKey string) (*response.IssueTicketResponse, bool, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Issue tickets validation failed", zap.Any("errors", errs))
		return nil, false, fmt.Errorf("%w: %s", ErrValidation, utils.FormatValidationErrors(errs))
	}

	// No key supplied: the cache is bypassed entirely.
	if idempotencyKey != "" {
		fingerprint := idempotency.Fingerprint(req)

		outcome, cached, err := s.idem.Begin(ctx, idempotencyKey, fingerprint)
		if err != nil {
			return nil, false, fmt.Errorf("idempotency begin: %w", err)
		}

		switch outcome {
		case idempotency.Replay:
			var resp response.IssueTicketResponse
			if err := json.Unmarshal(cached.Body, &resp); err != nil {
				return nil, false, fmt.Errorf("decode cached issue response: %w", err)
			}
			s.log.Info("Issue replayed from idempotency cache",
				zap.String("idempotency_key", idempotencyKey),
				zap.Int("count", resp.Count),
			)
			return &resp, true, nil

		case idempotency.Conflict:
			s.log.Warn("Idempotency key conflict",
				zap.String("idempotency_key", idempotencyKey),
			)
			return nil, false, ErrIdempotencyConflict
		}
	}

	resp, err := s.executeIssue(ctx, req)
	if err != nil {
		if idempotencyKey != "" {
			// Release the reservation so a retry can execute.
			if aerr := s.idem.Abort(ctx, idempotencyKey); aerr != nil {
				s.log.Warn("Failed to abort idempotency reservation",
					zap.Error(aerr),
					zap.String("idempotency_key", idempotencyKey),
				)
			}
		}
		return nil, false, err
	}

	if idempotencyKey != "" {
		body, err := json.Marshal(resp)
		if err != nil {
			return nil, false, fmt.Errorf("encode issue response: %w", err)
		}
		cached := &idempotency.CachedResponse{StatusCode: http.StatusCreated, Body: body}
		if err := s.idem.Commit(ctx, idempotencyKey, cached); err != nil {
			s.log.Warn("Failed to commit idempotency record",
				zap.Error(err),
				zap.String("idempotency_key", idempotencyKey),
			)
		}
	}

	return resp, false, nil
}

func (s *ticketService) executeIssue(ctx context.Context, req *request.IssueTicketRequest) (*response.IssueTicketResponse, error) {
	now := s.now()

	tickets := make([]*entity.Ticket, req.Quantity)
	for i := range tickets {
		tickets[i] = &entity.Ticket{
			ID:          utils.GenerateUUID(),
			TheaterName: req.TheaterName,
			UserID:      req.UserID,
			MovieTitle:  req.MovieTitle,
			PriceKRW:    req.PriceKRW,
			Status:      entity.TicketStatusIssued,
			Memo:        req.Memo,
			IssuedAt:    now,
			UpdatedAt:   now,
		}
	}

	if err := s.repo.CreateBatch(ctx, tickets); err != nil {
		s.log.Error("Failed to issue tickets",
			zap.Error(err),
			zap.String("user_id", req.UserID),
			zap.Int("quantity", req.Quantity),
		)
		return nil, fmt.Errorf("issue tickets: %w", err)
	}

	ticketIDs := make([]string, len(tickets))
	for i, ticket := range tickets {
		ticketIDs[i] = ticket.ID.String()
	}

	s.log.Info("Tickets issued",
		zap.Strings("ticket_ids", ticketIDs),
		zap.String("user_id", req.UserID),
		zap.String("movie_title", req.MovieTitle),
		zap.Int("price_krw", req.PriceKRW),
	)

	return &response.IssueTicketResponse{
		TicketIDs: ticketIDs,
		Count:     len(ticketIDs),
		Summary: response.IssueTicketSummary{
			TheaterName: req.TheaterName,
			MovieTitle:  req.MovieTitle,
			PriceKRW:    req.PriceKRW,
		},
	}, nil
}

func (s *ticketService) RefundTickets(ctx context.Context, req *request.RefundTicketRequest) (*response.RefundTicketResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Refund tickets validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("%w: %s", ErrValidation, utils.FormatValidationErrors(errs))
	}

	// Deduplicate preserving first-occurrence order so every id lands
	// in exactly one bucket exactly once.
	seen := make(map[string]struct{}, len(req.TicketIDs))
	ticketIDs := make([]string, 0, len(req.TicketIDs))
	for _, id := range req.TicketIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ticketIDs = append(ticketIDs, id)
	}

	parsed := make(map[string]uuid.UUID, len(ticketIDs))
	var lookupIDs []uuid.UUID
	for _, id := range ticketIDs {
		uid, err := utils.ParseUUID(id)
		if err != nil {
			// Malformed ids cannot exist in the store.
			continue
		}
		parsed[id] = uid
		lookupIDs = append(lookupIDs, uid)
	}

	found, err := s.repo.FindByIDs(ctx, lookupIDs)
	if err != nil {
		return nil, fmt.Errorf("refund lookup: %w", err)
	}

	byID := make(map[uuid.UUID]*entity.Ticket, len(found))
	for _, ticket := range found {
		byID[ticket.ID] = ticket
	}

	resp := &response.RefundTicketResponse{
		Refunded:        []string{},
		AlreadyCanceled: []string{},
		NotFound:        []string{},
	}

	for _, id := range ticketIDs {
		uid, ok := parsed[id]
		if !ok {
			resp.NotFound = append(resp.NotFound, id)
			continue
		}

		ticket, ok := byID[uid]
		if !ok {
			resp.NotFound = append(resp.NotFound, id)
			continue
		}

		if ticket.Status == entity.TicketStatusCanceled {
			resp.AlreadyCanceled = append(resp.AlreadyCanceled, id)
			continue
		}

		canceled, err := s.repo.CancelIfIssued(ctx, uid, s.now())
		if err != nil {
			return nil, fmt.Errorf("refund ticket %s: %w", id, err)
		}
		if canceled {
			resp.Refunded = append(resp.Refunded, id)
		} else {
			// Lost the race against a concurrent refund.
			resp.AlreadyCanceled = append(resp.AlreadyCanceled, id)
		}
	}

	s.log.Info("Tickets refunded",
		zap.Int("refunded", len(resp.Refunded)),
		zap.Int("already_canceled", len(resp.AlreadyCanceled)),
		zap.Int("not_found", len(resp.NotFound)),
	)

	return resp, nil
}

func (s *ticketService) GetTicket(ctx context.Context, ticketID string) (*response.TicketResponse, error) {
	uid, err := utils.ParseUUID(ticketID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrTicketNotFound, ticketID)
	}

	ticket, err := s.repo.FindByID(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("get ticket: %w", err)
	}
	if ticket == nil {
		return nil, fmt.Errorf("%w: %s", ErrTicketNotFound, ticketID)
	}

	resp := response.TicketToResponse(ticket)
	return &resp, nil
}

func (s *ticketService) ListTickets(ctx context.Context, req *request.ListTicketsRequest) (*response.TicketListResponse, error) {
	status := entity.TicketStatus(req.Status)
	if status != "" && status != entity.TicketStatusIssued && status != entity.TicketStatusCanceled {
		return nil, fmt.Errorf("%w: status must be issued or canceled", ErrValidation)
	}

	limit := req.Limit
	if limit < 1 {
		limit = 100
	}
	if limit > 1000 {
		limit = 1000
	}
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}

	filter := repository.TicketFilter{
		TheaterName: req.TheaterName,
		UserID:      req.UserID,
		MovieTitle:  req.MovieTitle,
		Status:      status,
	}

	tickets, total, err := s.repo.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}

	items := make([]response.TicketResponse, len(tickets))
	for i, ticket := range tickets {
		items[i] = response.TicketToResponse(ticket)
	}

	return &response.TicketListResponse{
		Tickets: items,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
	}, nil
}
