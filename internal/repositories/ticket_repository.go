package repositories

import (
	"context"
	"database/sql"

	"goaltips/internal/models"
)

type TicketRepository struct {
	DB *sql.DB
}

func (r *TicketRepository) CreateTicket(ctx context.Context, ticket models.Ticket) (models.Ticket, error) {
	query := `INSERT INTO tickets (user_id, subject, message, status) VALUES (?, ?, ?, ?)`
	res, err := r.DB.ExecContext(ctx, query, ticket.UserID, ticket.Subject, ticket.Message, models.TicketStatusOpen)
	if err != nil {
		return models.Ticket{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Ticket{}, err
	}
	return r.GetTicketByID(ctx, int(id))
}

func (r *TicketRepository) GetTicketByID(ctx context.Context, id int) (models.Ticket, error) {
	query := `SELECT id, user_id, subject, message, status, attachment_url, created_at, updated_at FROM tickets WHERE id = ?`
	var ticket models.Ticket
	var attachment sql.NullString
	var updated sql.NullTime
	err := r.DB.QueryRowContext(ctx, query, id).
		Scan(&ticket.ID, &ticket.UserID, &ticket.Subject, &ticket.Message, &ticket.Status, &attachment, &ticket.CreatedAt, &updated)
	if err == sql.ErrNoRows {
		return models.Ticket{}, models.ErrTicketNotFound
	}
	if err != nil {
		return models.Ticket{}, err
	}
	ticket.AttachmentURL = attachment.String
	if updated.Valid {
		t := updated.Time
		ticket.UpdatedAt = &t
	}

	replies, err := r.getReplies(ctx, id)
	if err != nil {
		return models.Ticket{}, err
	}
	ticket.Replies = replies
	return ticket, nil
}

func (r *TicketRepository) getReplies(ctx context.Context, ticketID int) ([]models.TicketReply, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id, ticket_id, user_id, message, created_at FROM ticket_replies WHERE ticket_id = ? ORDER BY created_at ASC`, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var replies []models.TicketReply
	for rows.Next() {
		var reply models.TicketReply
		if err := rows.Scan(&reply.ID, &reply.TicketID, &reply.UserID, &reply.Message, &reply.CreatedAt); err != nil {
			return nil, err
		}
		replies = append(replies, reply)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return replies, nil
}

func (r *TicketRepository) GetTicketsByUser(ctx context.Context, userID int) ([]models.Ticket, error) {
	return r.listTickets(ctx, `SELECT id, user_id, subject, message, status, attachment_url, created_at, updated_at FROM tickets WHERE user_id = ? ORDER BY created_at DESC`, userID)
}

func (r *TicketRepository) GetAllTickets(ctx context.Context) ([]models.Ticket, error) {
	return r.listTickets(ctx, `SELECT id, user_id, subject, message, status, attachment_url, created_at, updated_at FROM tickets ORDER BY created_at DESC`)
}

func (r *TicketRepository) listTickets(ctx context.Context, query string, args ...any) ([]models.Ticket, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []models.Ticket
	for rows.Next() {
		var ticket models.Ticket
		var attachment sql.NullString
		var updated sql.NullTime
		if err := rows.Scan(&ticket.ID, &ticket.UserID, &ticket.Subject, &ticket.Message, &ticket.Status, &attachment, &ticket.CreatedAt, &updated); err != nil {
			return nil, err
		}
		ticket.AttachmentURL = attachment.String
		if updated.Valid {
			t := updated.Time
			ticket.UpdatedAt = &t
		}
		tickets = append(tickets, ticket)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tickets, nil
}

func (r *TicketRepository) AddReply(ctx context.Context, reply models.TicketReply) (models.TicketReply, error) {
	res, err := r.DB.ExecContext(ctx, `INSERT INTO ticket_replies (ticket_id, user_id, message) VALUES (?, ?, ?)`, reply.TicketID, reply.UserID, reply.Message)
	if err != nil {
		return models.TicketReply{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.TicketReply{}, err
	}
	reply.ID = int(id)
	return reply, nil
}

func (r *TicketRepository) UpdateStatus(ctx context.Context, id int, status string) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE tickets SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrTicketNotFound
	}
	return nil
}

func (r *TicketRepository) SetAttachment(ctx context.Context, id int, url string) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE tickets SET attachment_url = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, url, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrTicketNotFound
	}
	return nil
}
