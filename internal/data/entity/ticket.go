package entity

import (
	"time"

	"github.com/google/uuid"
)

type TicketStatus string

const (
	TicketStatusIssued   TicketStatus = "issued"
	TicketStatusCanceled TicketStatus = "canceled"
)

// Ticket is an unassigned-seating movie ticket. Status only ever moves
// issued -> canceled; CanceledAt is set exactly once on that transition.
type Ticket struct {
	ID          uuid.UUID    `db:"id"`
	TheaterName string       `db:"theater_name"`
	UserID      string       `db:"user_id"`
	MovieTitle  string       `db:"movie_title"`
	PriceKRW    int          `db:"price_krw"`
	Status      TicketStatus `db:"status"`
	Memo        *string      `db:"memo"`
	IssuedAt    time.Time    `db:"issued_at"`
	CanceledAt  *time.Time   `db:"canceled_at"`
	UpdatedAt   time.Time    `db:"updated_at"`
}
