package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"goaltips/internal/models"
	"goaltips/internal/repositories"
)

const (
	tipCacheKey = "tips:feed"
	tipCacheTTL = 5 * time.Minute
)

type TipService struct {
	TipRepo          *repositories.TipRepository
	SubscriptionRepo *repositories.SubscriptionRepository
	Redis            *redis.Client
	ErrorLog         *log.Logger
}

func (s *TipService) CreateTip(ctx context.Context, tip models.Tip) (models.Tip, error) {
	return s.TipRepo.CreateTip(ctx, tip)
}

// Publish makes the tip visible in the feed and drops the cached feed so the
// next request picks it up.
func (s *TipService) Publish(ctx context.Context, id int) (models.Tip, error) {
	tip, err := s.TipRepo.PublishTip(ctx, id)
	if err != nil {
		return models.Tip{}, err
	}
	s.invalidateFeed(ctx)
	return tip, nil
}

// GetFeed returns upcoming published tips with premium content masked for
// non-subscribers. The unmasked feed is cached in redis; masking happens per
// caller after the cache read.
func (s *TipService) GetFeed(ctx context.Context, userID int) ([]models.Tip, error) {
	tips, err := s.cachedFeed(ctx)
	if err != nil {
		return nil, err
	}

	subscribed := false
	if userID > 0 {
		subscribed, err = s.SubscriptionRepo.HasActiveSubscription(ctx, userID)
		if err != nil {
			return nil, err
		}
	}
	if subscribed {
		return tips, nil
	}
	return maskPremiumTips(tips), nil
}

func (s *TipService) cachedFeed(ctx context.Context) ([]models.Tip, error) {
	if s.Redis != nil {
		cached, err := s.Redis.Get(ctx, tipCacheKey).Bytes()
		if err == nil {
			var tips []models.Tip
			if err := json.Unmarshal(cached, &tips); err == nil {
				return tips, nil
			}
		} else if err != redis.Nil && s.ErrorLog != nil {
			s.ErrorLog.Printf("tip feed cache read: %v", err)
		}
	}

	today := time.Now().Truncate(24 * time.Hour)
	tips, err := s.TipRepo.GetPublishedTips(ctx, today)
	if err != nil {
		return nil, err
	}

	if s.Redis != nil {
		if data, err := json.Marshal(tips); err == nil {
			if err := s.Redis.Set(ctx, tipCacheKey, data, tipCacheTTL).Err(); err != nil && s.ErrorLog != nil {
				s.ErrorLog.Printf("tip feed cache write: %v", err)
			}
		}
	}
	return tips, nil
}

func (s *TipService) invalidateFeed(ctx context.Context) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(ctx, tipCacheKey).Err(); err != nil && s.ErrorLog != nil {
		s.ErrorLog.Printf("tip feed cache invalidate: %v", err)
	}
}

func (s *TipService) GetTipByID(ctx context.Context, id, userID int) (models.Tip, error) {
	tip, err := s.TipRepo.GetTipByID(ctx, id)
	if err != nil {
		return models.Tip{}, err
	}
	if tip.IsFree {
		return tip, nil
	}
	subscribed := false
	if userID > 0 {
		subscribed, err = s.SubscriptionRepo.HasActiveSubscription(ctx, userID)
		if err != nil {
			return models.Tip{}, err
		}
	}
	if !subscribed {
		return maskTip(tip), nil
	}
	return tip, nil
}

func (s *TipService) GetAllTips(ctx context.Context) ([]models.Tip, error) {
	return s.TipRepo.GetAllTips(ctx)
}

func (s *TipService) UpdateTip(ctx context.Context, tip models.Tip) (models.Tip, error) {
	updated, err := s.TipRepo.UpdateTip(ctx, tip)
	if err != nil {
		return models.Tip{}, err
	}
	s.invalidateFeed(ctx)
	return updated, nil
}

func (s *TipService) SetTipResult(ctx context.Context, id int, result string) error {
	if err := s.TipRepo.SetTipResult(ctx, id, result); err != nil {
		return err
	}
	s.invalidateFeed(ctx)
	return nil
}

func (s *TipService) SetTipImage(ctx context.Context, id int, imageURL string) error {
	if err := s.TipRepo.SetTipImage(ctx, id, imageURL); err != nil {
		return err
	}
	s.invalidateFeed(ctx)
	return nil
}

func (s *TipService) DeleteTip(ctx context.Context, id int) error {
	if err := s.TipRepo.DeleteTip(ctx, id); err != nil {
		return err
	}
	s.invalidateFeed(ctx)
	return nil
}

// maskPremiumTips strips the prediction and odds from premium tips so a
// non-subscriber sees that a tip exists for the match without its content.
func maskPremiumTips(tips []models.Tip) []models.Tip {
	masked := make([]models.Tip, len(tips))
	for i, tip := range tips {
		if tip.IsFree {
			masked[i] = tip
			continue
		}
		masked[i] = maskTip(tip)
	}
	return masked
}

func maskTip(tip models.Tip) models.Tip {
	tip.Prediction = ""
	tip.Odds = 0
	tip.Locked = true
	return tip
}
