package services

import (
	"context"

	"goaltips/internal/models"
	"goaltips/internal/repositories"
)

type MatchService struct {
	MatchRepo *repositories.MatchRepository
}

func (s *MatchService) CreateMatch(ctx context.Context, match models.Match) (models.Match, error) {
	if match.Status == "" {
		match.Status = models.MatchStatusScheduled
	}
	return s.MatchRepo.CreateMatch(ctx, match)
}

func (s *MatchService) GetMatchByID(ctx context.Context, id int) (models.Match, error) {
	return s.MatchRepo.GetMatchByID(ctx, id)
}

func (s *MatchService) GetMatches(ctx context.Context) ([]models.Match, error) {
	return s.MatchRepo.GetMatches(ctx)
}

func (s *MatchService) UpdateMatch(ctx context.Context, match models.Match) (models.Match, error) {
	return s.MatchRepo.UpdateMatch(ctx, match)
}

func (s *MatchService) DeleteMatch(ctx context.Context, id int) error {
	return s.MatchRepo.DeleteMatch(ctx, id)
}
