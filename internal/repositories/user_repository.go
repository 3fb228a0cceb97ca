package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"goaltips/internal/models"
)

type UserRepository struct {
	DB *sql.DB
}

func (r *UserRepository) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	query := `INSERT INTO users (name, phone, email, password, role) VALUES (?, ?, ?, ?, ?)`
	res, err := r.DB.ExecContext(ctx, query, user.Name, user.Phone, user.Email, user.Password, user.Role)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			if strings.Contains(mysqlErr.Message, "email") {
				return models.User{}, models.ErrDuplicateEmail
			}
			return models.User{}, models.ErrDuplicatePhone
		}
		return models.User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.User{}, err
	}
	return r.GetUserByID(ctx, int(id))
}

func (r *UserRepository) GetUserByID(ctx context.Context, id int) (models.User, error) {
	query := `SELECT id, name, phone, email, password, role, created_at, updated_at FROM users WHERE id = ?`
	row := r.DB.QueryRowContext(ctx, query, id)
	return scanUser(row)
}

func (r *UserRepository) GetUserByPhone(ctx context.Context, phone string) (models.User, error) {
	query := `SELECT id, name, phone, email, password, role, created_at, updated_at FROM users WHERE phone = ?`
	row := r.DB.QueryRowContext(ctx, query, phone)
	return scanUser(row)
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	query := `SELECT id, name, phone, email, password, role, created_at, updated_at FROM users WHERE email = ?`
	row := r.DB.QueryRowContext(ctx, query, email)
	return scanUser(row)
}

func scanUser(row *sql.Row) (models.User, error) {
	var user models.User
	var updated sql.NullTime
	err := row.Scan(&user.ID, &user.Name, &user.Phone, &user.Email, &user.Password, &user.Role, &user.CreatedAt, &updated)
	if err == sql.ErrNoRows {
		return models.User{}, models.ErrUserNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	if updated.Valid {
		t := updated.Time
		user.UpdatedAt = &t
	}
	return user, nil
}

func (r *UserRepository) UpdateUser(ctx context.Context, user models.User) (models.User, error) {
	query := `UPDATE users SET name = ?, phone = ?, email = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	res, err := r.DB.ExecContext(ctx, query, user.Name, user.Phone, user.Email, user.ID)
	if err != nil {
		return models.User{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return models.User{}, err
	}
	if affected == 0 {
		return models.User{}, models.ErrUserNotFound
	}
	return r.GetUserByID(ctx, user.ID)
}

func (r *UserRepository) GetUsers(ctx context.Context) ([]models.User, error) {
	query := `SELECT id, name, phone, email, role, created_at FROM users ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Name, &user.Phone, &user.Email, &user.Role, &user.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) CreateSession(ctx context.Context, session models.Session) error {
	query := `INSERT INTO sessions (user_id, role, refresh_token, expires_at) VALUES (?, ?, ?, ?)
	          ON DUPLICATE KEY UPDATE refresh_token = VALUES(refresh_token), expires_at = VALUES(expires_at)`
	_, err := r.DB.ExecContext(ctx, query, session.UserID, session.Role, session.RefreshToken, session.ExpiresAt)
	return err
}

func (r *UserRepository) GetSessionByToken(ctx context.Context, refreshToken string) (models.Session, error) {
	query := `SELECT user_id, role, refresh_token, expires_at FROM sessions WHERE refresh_token = ?`
	var session models.Session
	err := r.DB.QueryRowContext(ctx, query, refreshToken).Scan(&session.UserID, &session.Role, &session.RefreshToken, &session.ExpiresAt)
	if err == sql.ErrNoRows {
		return models.Session{}, nil
	}
	return session, err
}

func (r *UserRepository) DeleteExpiredSessions(ctx context.Context, now time.Time) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, now)
	return err
}
