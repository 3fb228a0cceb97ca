package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

type MpesaConfig struct {
	ConsumerKey    string
	ConsumerSecret string
	ShortCode      string

	// Acquiring base, e.g. https://api.safaricom.co.ke
	BaseURL string

	// Where the provider posts the payment result (this backend).
	CallbackURL string

	Client *http.Client
	Logger *slog.Logger
}

// MpesaService is a stateless client for the mobile-money gateway. It holds
// no session: Authenticate returns an AccessToken value and the caller keeps
// and refreshes it.
type MpesaService struct {
	consumerKey    string
	consumerSecret string
	shortCode      string
	baseURL        *url.URL
	callbackURL    string

	httpClient *http.Client
	logger     *slog.Logger
}

func NewMpesaService(cfg MpesaConfig) (*MpesaService, error) {
	if strings.TrimSpace(cfg.ConsumerKey) == "" ||
		strings.TrimSpace(cfg.ConsumerSecret) == "" ||
		strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("mpesa: consumer_key/consumer_secret/base_url are required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}

	s := &MpesaService{
		consumerKey:    cfg.ConsumerKey,
		consumerSecret: cfg.ConsumerSecret,
		shortCode:      cfg.ShortCode,
		baseURL:        u,
		callbackURL:    cfg.CallbackURL,
		httpClient:     client,
		logger:         logger,
	}
	logger.Info("mpesa gateway initialized",
		"baseURL", s.baseURL.String(),
		"callbackURL_set", s.callbackURL != "",
	)
	return s, nil
}

// ------- AUTH -------

// AccessToken is a bearer credential for the gateway. Callers hold it and
// re-authenticate when Valid reports false.
type AccessToken struct {
	Token     string
	ExpiresAt time.Time
}

// Valid reports whether the token can still be used, with a two minute
// safety margin for clock skew and in-flight requests.
func (t AccessToken) Valid() bool {
	return t.Token != "" && time.Until(t.ExpiresAt) > 2*time.Minute
}

func (s *MpesaService) Authenticate(ctx context.Context) (AccessToken, error) {
	endpoint := *s.baseURL
	endpoint.Path = path.Join(endpoint.Path, "/oauth/v1/generate")
	q := endpoint.Query()
	q.Set("grant_type", "client_credentials")
	endpoint.RawQuery = q.Encode()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	req.SetBasicAuth(s.consumerKey, s.consumerSecret)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return AccessToken{}, fmt.Errorf("auth request: %w", err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return AccessToken{}, &MpesaError{StatusCode: resp.StatusCode, Status: resp.Status, Body: string(b)}
	}

	var out struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   string `json:"expires_in"`
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return AccessToken{}, fmt.Errorf("auth decode: %w", err)
	}
	if strings.TrimSpace(out.AccessToken) == "" {
		return AccessToken{}, fmt.Errorf("auth: empty access_token")
	}

	ttl := 55 * time.Minute
	if d, err := time.ParseDuration(strings.TrimSpace(out.ExpiresIn) + "s"); err == nil && d > 0 {
		ttl = d
	}
	return AccessToken{Token: out.AccessToken, ExpiresAt: time.Now().Add(ttl)}, nil
}

// ------- STK PUSH -------

type STKPushRequest struct {
	Reference   string  `json:"external_reference"`
	Amount      float64 `json:"amount"`
	Phone       string  `json:"phone"` // 2547XXXXXXXX
	Description string  `json:"description,omitempty"`
}

type STKPushResponse struct {
	MerchantRequestID string `json:"MerchantRequestID"`
	ResponseCode      string `json:"ResponseCode"`
	CustomerMessage   string `json:"CustomerMessage"`
}

// STKPush asks the gateway to prompt the customer's phone for payment. The
// payment outcome arrives later on the callback URL with the same reference.
func (s *MpesaService) STKPush(ctx context.Context, token AccessToken, push STKPushRequest) (*STKPushResponse, error) {
	logger := s.logger.With("op", "STKPush", "reference", push.Reference)

	endpoint := *s.baseURL
	endpoint.Path = path.Join(endpoint.Path, "/mpesa/stkpush/v1/processrequest")

	body, _ := json.Marshal(map[string]any{
		"BusinessShortCode": s.shortCode,
		"Amount":            push.Amount,
		"PhoneNumber":       push.Phone,
		"CallBackURL":       s.callbackURL,
		"AccountReference":  push.Reference,
		"TransactionDesc":   push.Description,
	})

	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stk push request: %w", err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	logger.Debug("stk push raw", "status", resp.Status, "body", trimBody(string(b), 2000))

	if resp.StatusCode != http.StatusOK {
		return nil, &MpesaError{StatusCode: resp.StatusCode, Status: resp.Status, Body: string(b)}
	}

	var out STKPushResponse
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode stk push: %w", err)
	}
	return &out, nil
}

// ------- CALLBACK (webhook) -------

// CallbackResult is the normalized outcome of a payment attempt. ResultCode 0
// denotes success, anything else failure.
type CallbackResult struct {
	ExternalReference string `json:"external_reference"`
	ResultCode        int    `json:"result_code"`
	ResultDesc        string `json:"result_description"`
}

// ParseCallback extracts a CallbackResult from a raw webhook body. The
// provider wraps the real payload as element 0 of a JSON array, itself a
// JSON-encoded string carrying a nested Body.stkCallback object. Every
// decode or shape failure returns nil; this function never fails loudly.
func ParseCallback(body []byte) *CallbackResult {
	var elems []json.RawMessage
	if err := json.Unmarshal(body, &elems); err != nil || len(elems) == 0 {
		return nil
	}

	var inner string
	if err := json.Unmarshal(elems[0], &inner); err != nil {
		return nil
	}

	var wrapper struct {
		Body struct {
			StkCallback *struct {
				ExternalReference string `json:"ExternalReference"`
				ResultCode        *int   `json:"ResultCode"`
				ResultDesc        string `json:"ResultDesc"`
			} `json:"stkCallback"`
		} `json:"Body"`
	}
	if err := json.Unmarshal([]byte(inner), &wrapper); err != nil {
		return nil
	}
	cb := wrapper.Body.StkCallback
	if cb == nil || cb.ResultCode == nil {
		return nil
	}
	return &CallbackResult{
		ExternalReference: cb.ExternalReference,
		ResultCode:        *cb.ResultCode,
		ResultDesc:        cb.ResultDesc,
	}
}

// ---------- helpers ----------

func trimBody(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}

// MpesaError is a non-2xx gateway response surfaced as a typed error so
// callers can never mistake an error body for payload data.
type MpesaError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *MpesaError) Error() string {
	if e == nil {
		return "<nil>"
	}
	bt := strings.TrimSpace(e.Body)
	if bt == "" {
		return fmt.Sprintf("mpesa error: %s", e.Status)
	}
	return fmt.Sprintf("mpesa error: %s: %s", e.Status, bt)
}
