package wire

import (
	"movie-ticketing/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireTicket(r chi.Router, ticketHandler *adaptor.TicketHandler) {
	// POST /tickets/issue - Issue quantity tickets (Idempotency-Key header optional)
	r.Post("/tickets/issue", ticketHandler.IssueTickets)

	// POST /tickets/refund - Refund a batch of tickets
	r.Post("/tickets/refund", ticketHandler.RefundTickets)

	// GET /tickets - List tickets with filters and paging
	r.Get("/tickets", ticketHandler.ListTickets)

	// GET /tickets/{id} - Fetch a single ticket
	r.Get("/tickets/{id}", ticketHandler.GetTicket)
}
