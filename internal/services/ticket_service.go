package services

import (
	"context"

	"goaltips/internal/models"
	"goaltips/internal/repositories"
)

type TicketService struct {
	TicketRepo *repositories.TicketRepository
}

func (s *TicketService) CreateTicket(ctx context.Context, ticket models.Ticket) (models.Ticket, error) {
	return s.TicketRepo.CreateTicket(ctx, ticket)
}

func (s *TicketService) GetTicketByID(ctx context.Context, id int) (models.Ticket, error) {
	return s.TicketRepo.GetTicketByID(ctx, id)
}

func (s *TicketService) GetTicketsByUser(ctx context.Context, userID int) ([]models.Ticket, error) {
	return s.TicketRepo.GetTicketsByUser(ctx, userID)
}

func (s *TicketService) GetAllTickets(ctx context.Context) ([]models.Ticket, error) {
	return s.TicketRepo.GetAllTickets(ctx)
}

// Reply records a message on the ticket. A reply from anyone who is not the
// ticket owner marks the ticket answered.
func (s *TicketService) Reply(ctx context.Context, reply models.TicketReply) (models.TicketReply, error) {
	ticket, err := s.TicketRepo.GetTicketByID(ctx, reply.TicketID)
	if err != nil {
		return models.TicketReply{}, err
	}

	saved, err := s.TicketRepo.AddReply(ctx, reply)
	if err != nil {
		return models.TicketReply{}, err
	}

	if reply.UserID != ticket.UserID && ticket.Status == models.TicketStatusOpen {
		if err := s.TicketRepo.UpdateStatus(ctx, ticket.ID, models.TicketStatusAnswered); err != nil {
			return models.TicketReply{}, err
		}
	}
	return saved, nil
}

func (s *TicketService) Close(ctx context.Context, id int) error {
	return s.TicketRepo.UpdateStatus(ctx, id, models.TicketStatusClosed)
}

func (s *TicketService) AttachFile(ctx context.Context, id int, url string) error {
	return s.TicketRepo.SetAttachment(ctx, id, url)
}
