package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"movie-ticketing/internal/data/entity"
	"movie-ticketing/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// TicketFilter holds optional equality filters for listing. Zero values
// mean "no constraint".
type TicketFilter struct {
	TheaterName string
	UserID      string
	MovieTitle  string
	Status      entity.TicketStatus
}

type TicketRepository interface {
	// CreateBatch inserts all tickets in a single transaction;
	// either every row is written or none is.
	CreateBatch(ctx context.Context, tickets []*entity.Ticket) error

	FindByID(ctx context.Context, id uuid.UUID) (*entity.Ticket, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Ticket, error)

	// CancelIfIssued transitions a ticket to canceled only when it is
	// still issued. Returns false when the ticket was already canceled
	// (or disappeared), so concurrent refunds resolve to one winner.
	CancelIfIssued(ctx context.Context, id uuid.UUID, canceledAt time.Time) (bool, error)

	// List returns a page ordered by issued_at DESC plus the total
	// count of all matching rows.
	List(ctx context.Context, filter TicketFilter, limit, offset int) ([]*entity.Ticket, int64, error)
}

type ticketRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewTicketRepository(db database.PgxIface, log *zap.Logger) TicketRepository {
	return &ticketRepository{
		db:  db,
		log: log.With(zap.String("repository", "ticket")),
	}
}

const ticketColumns = "id, theater_name, user_id, movie_title, price_krw, status, memo, issued_at, canceled_at, updated_at"

func scanTicket(row pgx.Row) (*entity.Ticket, error) {
	var ticket entity.Ticket
	err := row.Scan(
		&ticket.ID,
		&ticket.TheaterName,
		&ticket.UserID,
		&ticket.MovieTitle,
		&ticket.PriceKRW,
		&ticket.Status,
		&ticket.Memo,
		&ticket.IssuedAt,
		&ticket.CanceledAt,
		&ticket.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) CreateBatch(ctx context.Context, tickets []*entity.Ticket) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.log.Error("Failed to begin ticket transaction", zap.Error(err))
		return fmt.Errorf("begin ticket transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO tickets (id, theater_name, user_id, movie_title, price_krw, status, memo, issued_at, canceled_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	for _, ticket := range tickets {
		_, err := tx.Exec(ctx, query,
			ticket.ID,
			ticket.TheaterName,
			ticket.UserID,
			ticket.MovieTitle,
			ticket.PriceKRW,
			ticket.Status,
			ticket.Memo,
			ticket.IssuedAt,
			ticket.CanceledAt,
			ticket.UpdatedAt,
		)
		if err != nil {
			r.log.Error("Failed to create ticket",
				zap.Error(err),
				zap.String("ticket_id", ticket.ID.String()),
				zap.String("user_id", ticket.UserID),
			)
			return fmt.Errorf("create ticket %s: %w", ticket.ID.String(), err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		r.log.Error("Failed to commit ticket batch",
			zap.Error(err),
			zap.Int("count", len(tickets)),
		)
		return fmt.Errorf("commit ticket batch: %w", err)
	}

	return nil
}

func (r *ticketRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id = $1`, ticketColumns)

	ticket, err := scanTicket(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find ticket by ID",
			zap.Error(err),
			zap.String("ticket_id", id.String()),
		)
		return nil, fmt.Errorf("find ticket by ID %s: %w", id.String(), err)
	}

	return ticket, nil
}

func (r *ticketRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Ticket, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id = ANY($1)`, ticketColumns)

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		r.log.Error("Failed to find tickets by IDs",
			zap.Error(err),
			zap.Int("count", len(ids)),
		)
		return nil, fmt.Errorf("find tickets by IDs: %w", err)
	}
	defer rows.Close()

	var tickets []*entity.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			r.log.Error("Failed to scan ticket row", zap.Error(err))
			return nil, fmt.Errorf("scan ticket row: %w", err)
		}
		tickets = append(tickets, ticket)
	}

	return tickets, rows.Err()
}

func (r *ticketRepository) CancelIfIssued(ctx context.Context, id uuid.UUID, canceledAt time.Time) (bool, error) {
	query := `
		UPDATE tickets
		SET status = $2, canceled_at = $3, updated_at = $3
		WHERE id = $1 AND status = $4
	`

	result, err := r.db.Exec(ctx, query, id, entity.TicketStatusCanceled, canceledAt, entity.TicketStatusIssued)
	if err != nil {
		r.log.Error("Failed to cancel ticket",
			zap.Error(err),
			zap.String("ticket_id", id.String()),
		)
		return false, fmt.Errorf("cancel ticket %s: %w", id.String(), err)
	}

	return result.RowsAffected() == 1, nil
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter, limit, offset int) ([]*entity.Ticket, int64, error) {
	var conditions []string
	var args []any

	addCondition := func(column, value string) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if filter.TheaterName != "" {
		addCondition("theater_name", filter.TheaterName)
	}
	if filter.UserID != "" {
		addCondition("user_id", filter.UserID)
	}
	if filter.MovieTitle != "" {
		addCondition("movie_title", filter.MovieTitle)
	}
	if filter.Status != "" {
		addCondition("status", string(filter.Status))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT COUNT(*) FROM tickets" + where

	var total int64
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		r.log.Error("Failed to count tickets", zap.Error(err))
		return nil, 0, fmt.Errorf("count tickets: %w", err)
	}

	// Ordering contract: newest issuance first.
	pageQuery := fmt.Sprintf(
		"SELECT %s FROM tickets%s ORDER BY issued_at DESC LIMIT $%d OFFSET $%d",
		ticketColumns, where, len(args)+1, len(args)+2,
	)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, pageQuery, args...)
	if err != nil {
		r.log.Error("Failed to list tickets",
			zap.Error(err),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, 0, fmt.Errorf("list tickets: %w", err)
	}
	defer rows.Close()

	var tickets []*entity.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			r.log.Error("Failed to scan ticket row", zap.Error(err))
			return nil, 0, fmt.Errorf("scan ticket row: %w", err)
		}
		tickets = append(tickets, ticket)
	}

	return tickets, total, rows.Err()
}
