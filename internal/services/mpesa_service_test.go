package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestParseCallback_Valid(t *testing.T) {
	body := []byte(`["{\"Body\":{\"stkCallback\":{\"ExternalReference\":\"REF123\",\"ResultCode\":0,\"ResultDesc\":\"Success\"}}}"]`)

	result := ParseCallback(body)
	if result == nil {
		t.Fatal("expected a parsed result, got nil")
	}
	if result.ExternalReference != "REF123" {
		t.Errorf("reference mismatch: %q", result.ExternalReference)
	}
	if result.ResultCode != 0 {
		t.Errorf("result code mismatch: %d", result.ResultCode)
	}
	if result.ResultDesc != "Success" {
		t.Errorf("result desc mismatch: %q", result.ResultDesc)
	}
}

func TestParseCallback_Malformed(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"empty array", `[]`},
		{"not json", `not json at all`},
		{"element not a string", `[{"Body":{}}]`},
		{"element not json", `["garbage"]`},
		{"missing stkCallback", `["{\"Body\":{}}"]`},
		{"missing result code", `["{\"Body\":{\"stkCallback\":{\"ExternalReference\":\"REF123\"}}}"]`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if result := ParseCallback([]byte(tc.body)); result != nil {
				t.Fatalf("expected nil, got %+v", result)
			}
		})
	}
}

func TestAuthenticate_ReturnsHeldToken(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, _, ok := r.BasicAuth(); !ok {
			t.Error("expected basic auth credentials")
		}
		_, _ = w.Write([]byte(`{"access_token":"tok-1","expires_in":"3599"}`))
	}))
	defer ts.Close()

	svc, err := NewMpesaService(MpesaConfig{
		ConsumerKey:    "key",
		ConsumerSecret: "secret",
		BaseURL:        ts.URL,
	})
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	token, err := svc.Authenticate(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token.Token != "tok-1" {
		t.Errorf("token mismatch: %q", token.Token)
	}
	if !token.Valid() {
		t.Error("expected freshly issued token to be valid")
	}
}

func TestAccessToken_ZeroValueIsInvalid(t *testing.T) {
	var token AccessToken
	if token.Valid() {
		t.Error("zero token must not be valid")
	}
}

func TestSTKPush_Non2xxReturnsMpesaError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errorMessage":"invalid phone"}`))
	}))
	defer ts.Close()

	svc, err := NewMpesaService(MpesaConfig{
		ConsumerKey:    "key",
		ConsumerSecret: "secret",
		BaseURL:        ts.URL,
	})
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	_, err = svc.STKPush(context.Background(), AccessToken{Token: "tok"}, STKPushRequest{
		Reference: "REF123",
		Amount:    100,
		Phone:     "254700000000",
	})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	apiErr, ok := err.(*MpesaError)
	if !ok {
		t.Fatalf("expected MpesaError, got %T", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Errorf("unexpected status code: %d", apiErr.StatusCode)
	}
	if apiErr.Body == "" {
		t.Error("expected body to be populated")
	}
}
