package usecase

import (
	"movie-ticketing/internal/data/repository"
	"movie-ticketing/pkg/idempotency"

	"go.uber.org/zap"
)

type Service struct {
	Ticket TicketService
}

func NewService(repo *repository.Repository, idem idempotency.Store, log *zap.Logger) *Service {
	return &Service{
		Ticket: NewTicketService(repo.Ticket, idem, log),
	}
}
