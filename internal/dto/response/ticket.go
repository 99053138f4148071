package response

import (
	"time"

	"movie-ticketing/internal/data/entity"
)

type IssueTicketSummary struct {
	TheaterName string `json:"theater_name"`
	MovieTitle  string `json:"movie_title"`
	PriceKRW    int    `json:"price_krw"`
}

type IssueTicketResponse struct {
	TicketIDs []string           `json:"ticket_ids"`
	Count     int                `json:"count"`
	Summary   IssueTicketSummary `json:"summary"`
}

type RefundTicketResponse struct {
	Refunded        []string `json:"refunded"`
	AlreadyCanceled []string `json:"already_canceled"`
	NotFound        []string `json:"not_found"`
}

type TicketResponse struct {
	ID          string              `json:"id"`
	TheaterName string              `json:"theater_name"`
	UserID      string              `json:"user_id"`
	MovieTitle  string              `json:"movie_title"`
	PriceKRW    int                 `json:"price_krw"`
	Status      entity.TicketStatus `json:"status"`
	Memo        *string             `json:"memo,omitempty"`
	IssuedAt    time.Time           `json:"issued_at"`
	CanceledAt  *time.Time          `json:"canceled_at,omitempty"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

type TicketListResponse struct {
	Tickets []TicketResponse `json:"tickets"`
	Total   int64            `json:"total"`
	Limit   int              `json:"limit"`
	Offset  int              `json:"offset"`
}

// Helper converter
func TicketToResponse(ticket *entity.Ticket) TicketResponse {
	return TicketResponse{
		ID:          ticket.ID.String(),
		TheaterName: ticket.TheaterName,
		UserID:      ticket.UserID,
		MovieTitle:  ticket.MovieTitle,
		PriceKRW:    ticket.PriceKRW,
		Status:      ticket.Status,
		Memo:        ticket.Memo,
		IssuedAt:    ticket.IssuedAt,
		CanceledAt:  ticket.CanceledAt,
		UpdatedAt:   ticket.UpdatedAt,
	}
}
