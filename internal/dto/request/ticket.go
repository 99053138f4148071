package request

type IssueTicketRequest struct {
	TheaterName string  `json:"theater_name" validate:"required,min=1,max=100"`
	UserID      string  `json:"user_id" validate:"required,min=1,max=100"`
	MovieTitle  string  `json:"movie_title" validate:"required,min=1,max=200"`
	PriceKRW    int     `json:"price_krw" validate:"required,min=1,max=1000000"`
	Quantity    int     `json:"quantity" validate:"required,min=1,max=10"`
	Memo        *string `json:"memo,omitempty"`
}

// RefundTicketRequest ids are not validated as UUIDs here: a malformed
// id cannot reference a ticket, so the refund classifies it not_found
// instead of rejecting the whole batch.
type RefundTicketRequest struct {
	TicketIDs []string `json:"ticket_ids" validate:"required,min=1"`
	Reason    *string  `json:"reason,omitempty"`
}

type ListTicketsRequest struct {
	TheaterName string
	UserID      string
	MovieTitle  string
	Status      string
	Limit       int
	Offset      int
}
