package services

import (
	"context"
	"errors"
	"time"

	"goaltips/internal/models"
	"goaltips/internal/repositories"
)

type SubscriptionService struct {
	SubscriptionRepo *repositories.SubscriptionRepository
	PackageRepo      *repositories.PackageRepository
}

// GetSummary reports the caller's current subscription, if any, with the
// package it came from and the remaining days.
func (s *SubscriptionService) GetSummary(ctx context.Context, userID int) (models.SubscriptionSummary, error) {
	sub, err := s.SubscriptionRepo.GetActiveByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNoActiveSubscription) {
			return models.SubscriptionSummary{}, nil
		}
		return models.SubscriptionSummary{}, err
	}

	summary := models.SubscriptionSummary{
		Active:  true,
		EndDate: &sub.EndDate,
	}
	remaining := int(time.Until(sub.EndDate).Hours() / 24)
	if remaining < 1 {
		remaining = 1
	}
	summary.RemainingDays = remaining

	pkg, err := s.PackageRepo.GetPackageByID(ctx, sub.PackageID)
	if err == nil {
		summary.Package = &pkg
	} else if !errors.Is(err, models.ErrPackageNotFound) {
		return models.SubscriptionSummary{}, err
	}
	return summary, nil
}

func (s *SubscriptionService) IsSubscribed(ctx context.Context, userID int) (bool, error) {
	return s.SubscriptionRepo.HasActiveSubscription(ctx, userID)
}
