package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"firebase.google.com/go/messaging"

	"goaltips/internal/models"
)

// FCMHandler manages device push tokens and broadcasts new-tip alerts.
type FCMHandler struct {
	Client   *messaging.Client
	DB       *sql.DB
	ErrorLog *log.Logger
}

type DeviceToken struct {
	UserID int    `json:"user_id"`
	Token  string `json:"token"`
}

func NewFCMHandler(client *messaging.Client, db *sql.DB, errorLog *log.Logger) *FCMHandler {
	return &FCMHandler{Client: client, DB: db, ErrorLog: errorLog}
}

// SendTipAlert pushes a notification about a freshly published tip to every
// registered device. Per-token failures are logged and skipped; a stale token
// must not block the rest of the fan-out.
func (h *FCMHandler) SendTipAlert(ctx context.Context, tip models.Tip) {
	if h.Client == nil {
		return
	}

	tokens, err := h.getAllTokens()
	if err != nil {
		h.ErrorLog.Printf("tip alert: fetching tokens: %v", err)
		return
	}

	title := "New tip published"
	body := "A new betting tip is live. Open the app to see it."
	if tip.IsFree && tip.Match != nil {
		body = fmt.Sprintf("%s vs %s: %s @ %.2f", tip.Match.HomeTeam, tip.Match.AwayTeam, tip.Prediction, tip.Odds)
	}

	for _, token := range tokens {
		if err := h.sendMessage(ctx, token, title, body, tip.ID); err != nil {
			h.ErrorLog.Printf("tip alert: token %s: %v", token, err)
		}
	}
}

func (h *FCMHandler) sendMessage(ctx context.Context, token, title, body string, tipID int) error {
	message := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: map[string]string{
			"tip_id": fmt.Sprintf("%d", tipID),
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "high_priority_channel",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority": "10",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Alert: &messaging.ApsAlert{
						Title: title,
						Body:  body,
					},
					Sound: "default",
				},
			},
		},
	}

	_, err := h.Client.Send(ctx, message)
	return err
}

func (h *FCMHandler) CreateToken(w http.ResponseWriter, r *http.Request) {
	var newToken DeviceToken
	if err := json.NewDecoder(r.Body).Decode(&newToken); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if userID, ok := contextUserID(r); ok {
		newToken.UserID = userID
	}
	if newToken.Token == "" {
		http.Error(w, "token is required", http.StatusBadRequest)
		return
	}

	if err := h.insertToken(r.Context(), newToken.UserID, newToken.Token); err != nil {
		http.Error(w, "Failed to save token", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

func (h *FCMHandler) DeleteToken(w http.ResponseWriter, r *http.Request) {
	token := getParam(r, "token")
	if token == "" {
		http.Error(w, "token is required", http.StatusBadRequest)
		return
	}

	if err := h.deleteToken(r.Context(), token); err != nil {
		http.Error(w, "Failed to delete token", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *FCMHandler) insertToken(ctx context.Context, userID int, token string) error {
	stmt := `
        INSERT INTO notify_tokens (user_id, token)
        VALUES (?, ?)
        ON DUPLICATE KEY UPDATE user_id = VALUES(user_id)`
	_, err := h.DB.ExecContext(ctx, stmt, userID, token)
	return err
}

func (h *FCMHandler) deleteToken(ctx context.Context, token string) error {
	stmt := `DELETE FROM notify_tokens WHERE token = ?`
	_, err := h.DB.ExecContext(ctx, stmt, token)
	return err
}

func (h *FCMHandler) getAllTokens() ([]string, error) {
	if h.DB == nil {
		return nil, fmt.Errorf("database connection is not initialized")
	}

	rows, err := h.DB.Query(`SELECT token FROM notify_tokens`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}
	return tokens, rows.Err()
}
