package repository

import (
	"movie-ticketing/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	Ticket TicketRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		Ticket: NewTicketRepository(db, log),
	}
}
