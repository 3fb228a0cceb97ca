package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"goaltips/internal/models"
	"goaltips/internal/repositories"
	"goaltips/utils"
)

const (
	accessTokenTTL  = 20 * time.Hour
	refreshTokenTTL = 30 * 24 * time.Hour
)

type UserService struct {
	UserRepo *repositories.UserRepository
	Tokens   *utils.Manager
}

func (s *UserService) SignUp(ctx context.Context, user models.User) (models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}
	user.Password = string(hash)
	if user.Role == "" {
		user.Role = "user"
	}

	created, err := s.UserRepo.CreateUser(ctx, user)
	if err != nil {
		return models.User{}, err
	}
	created.Password = ""
	return created, nil
}

func (s *UserService) SignIn(ctx context.Context, req models.SignInRequest) (models.User, models.Tokens, error) {
	var user models.User
	var err error
	if strings.TrimSpace(req.Phone) != "" {
		user, err = s.UserRepo.GetUserByPhone(ctx, req.Phone)
	} else {
		user, err = s.UserRepo.GetUserByEmail(ctx, req.Email)
	}
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return models.User{}, models.Tokens{}, models.ErrInvalidCredentials
		}
		return models.User{}, models.Tokens{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return models.User{}, models.Tokens{}, models.ErrInvalidCredentials
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return models.User{}, models.Tokens{}, err
	}
	user.Password = ""
	return user, tokens, nil
}

// Refresh exchanges a stored refresh token for a new token pair.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (models.Tokens, error) {
	session, err := s.UserRepo.GetSessionByToken(ctx, refreshToken)
	if err != nil {
		return models.Tokens{}, err
	}
	if session == (models.Session{}) || session.ExpiresAt.Before(time.Now()) {
		return models.Tokens{}, models.ErrInvalidCredentials
	}
	user, err := s.UserRepo.GetUserByID(ctx, session.UserID)
	if err != nil {
		return models.Tokens{}, err
	}
	return s.issueTokens(ctx, user)
}

func (s *UserService) issueTokens(ctx context.Context, user models.User) (models.Tokens, error) {
	access, err := s.Tokens.NewJWT(user.ID, user.Role, accessTokenTTL)
	if err != nil {
		return models.Tokens{}, err
	}
	refresh, err := s.Tokens.NewRefreshToken()
	if err != nil {
		return models.Tokens{}, err
	}
	session := models.Session{
		UserID:       user.ID,
		Role:         user.Role,
		RefreshToken: refresh,
		ExpiresAt:    time.Now().Add(refreshTokenTTL),
	}
	if err := s.UserRepo.CreateSession(ctx, session); err != nil {
		return models.Tokens{}, err
	}
	return models.Tokens{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id int) (models.User, error) {
	user, err := s.UserRepo.GetUserByID(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	user.Password = ""
	return user, nil
}

func (s *UserService) UpdateUser(ctx context.Context, user models.User) (models.User, error) {
	updated, err := s.UserRepo.UpdateUser(ctx, user)
	if err != nil {
		return models.User{}, err
	}
	updated.Password = ""
	return updated, nil
}

func (s *UserService) GetUsers(ctx context.Context) ([]models.User, error) {
	return s.UserRepo.GetUsers(ctx)
}
