package main

import (
	"context"
	"log"
	"time"

	"goaltips/internal/repositories"
)

const subscriptionCleanerTimeout = 1 * time.Minute

// startSubscriptionCleaner expires overdue subscriptions and purges stale
// refresh sessions once at startup and then every 24 hours. End dates are
// interpreted in Nairobi time, where the customer base lives.
func startSubscriptionCleaner(ctx context.Context, repo *repositories.SubscriptionRepository, userRepo *repositories.UserRepository, infoLog, errorLog *log.Logger) {
	if repo == nil {
		return
	}

	loc, err := time.LoadLocation("Africa/Nairobi")
	if err != nil {
		if errorLog != nil {
			errorLog.Printf("subscription cleaner: failed to load location Africa/Nairobi: %v", err)
		}
		loc = time.FixedZone("Africa/Nairobi", 3*60*60)
	}

	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()

		runOnce := func() {
			runCtx, cancel := context.WithTimeout(ctx, subscriptionCleanerTimeout)
			expired, err := repo.ExpireOverdue(runCtx, time.Now().In(loc))
			cancel()
			if err != nil {
				if errorLog != nil {
					errorLog.Printf("subscription cleaner: failed to expire subscriptions: %v", err)
				}
			} else if expired > 0 && infoLog != nil {
				infoLog.Printf("subscription cleaner: expired %d subscriptions", expired)
			}

			if userRepo != nil {
				runCtx, cancel = context.WithTimeout(ctx, subscriptionCleanerTimeout)
				err = userRepo.DeleteExpiredSessions(runCtx, time.Now())
				cancel()
				if err != nil && errorLog != nil {
					errorLog.Printf("subscription cleaner: failed to delete expired sessions: %v", err)
				}
			}
		}

		runOnce()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				runOnce()
			}
		}
	}()
}
