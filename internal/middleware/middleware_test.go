package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func TestSessionAuth_RoundTrip(t *testing.T) {
	auth := NewSessionAuth("secret")
	id := uuid.New()

	token, err := auth.IssueToken(id)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	got, err := auth.ParseToken(token)
	if err != nil {
		t.Fatalf("failed to parse token: %v", err)
	}
	if got != id {
		t.Fatalf("expected %s, got %s", id, got)
	}
}

func TestSessionAuth_HandleOutlivesIdleTTL(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	auth := NewSessionAuth("secret")
	auth.now = func() time.Time { return now }
	id := uuid.New()

	token, err := auth.IssueToken(id)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		t.Fatalf("failed to read claims: %v", err)
	}
	if _, ok := claims["exp"]; ok {
		t.Fatalf("expected no exp claim, got %v", claims["exp"])
	}

	// An active session lives as long as it keeps being used.
	for i := 0; i < 6; i++ {
		now = now.Add(30 * time.Minute)
		got, err := auth.ParseToken(token)
		if err != nil {
			t.Fatalf("after %s: expected handle to stay valid, got %v", time.Duration(i+1)*30*time.Minute, err)
		}
		if got != id {
			t.Fatalf("expected %s, got %s", id, got)
		}
	}
}

func TestSessionAuth_Rejects(t *testing.T) {
	auth := NewSessionAuth("secret")
	other := NewSessionAuth("other-secret")
	token, _ := other.IssueToken(uuid.New())

	if _, err := auth.ParseToken(token); err != ErrTokenInvalid {
		t.Errorf("expected ErrTokenInvalid for foreign signature, got %v", err)
	}

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"session_id": uuid.NewString(),
		"exp":        time.Now().Add(-time.Minute).Unix(),
	})
	expiredStr, _ := expired.SignedString(auth.Secret)
	if _, err := auth.ParseToken(expiredStr); err != ErrTokenExpired {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}

	noID := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"iat": time.Now().Unix()})
	noIDStr, _ := noID.SignedString(auth.Secret)
	if _, err := auth.ParseToken(noIDStr); err != ErrTokenInvalid {
		t.Errorf("expected ErrTokenInvalid for missing claim, got %v", err)
	}
}

func TestSessionAuth_Middleware(t *testing.T) {
	auth := NewSessionAuth("secret")
	id := uuid.New()
	token, _ := auth.IssueToken(id)

	var seen uuid.UUID
	h := auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetSessionID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		status int
		code   string
	}{
		{"valid", "Bearer " + token, http.StatusNoContent, ""},
		{"missing", "", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"wrong scheme", "Token " + token, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"garbage", "Bearer abc.def.ghi", http.StatusUnauthorized, "UNAUTHORIZED"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
			if tc.code == "" {
				if seen != id {
					t.Errorf("expected session %s in context, got %s", id, seen)
				}
				return
			}
			var body struct {
				Error struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			json.NewDecoder(rec.Body).Decode(&body)
			if body.Error.Code != tc.code {
				t.Errorf("expected code %s, got %s", tc.code, body.Error.Code)
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get(RequestIDHeader)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if seen == "" || rec.Header().Get(RequestIDHeader) != seen {
		t.Fatalf("expected generated id on request and response, got %q / %q", seen, rec.Header().Get(RequestIDHeader))
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if seen != "abc-123" || rec.Header().Get(RequestIDHeader) != "abc-123" {
		t.Fatalf("expected client id to be kept, got %q", seen)
	}
}

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) })

	tests := []struct {
		name        string
		allowed     []string
		origin      string
		method      string
		status      int
		allowOrigin string
		credentials string
	}{
		{"explicit origin", []string{"http://localhost:5173"}, "http://localhost:5173", http.MethodGet, http.StatusTeapot, "http://localhost:5173", "true"},
		{"wildcard", []string{"*"}, "http://evil.test", http.MethodGet, http.StatusTeapot, "http://evil.test", ""},
		{"not allowed", []string{"http://localhost:5173"}, "http://evil.test", http.MethodGet, http.StatusTeapot, "", ""},
		{"preflight", []string{"http://localhost:5173"}, "http://localhost:5173", http.MethodOptions, http.StatusOK, "http://localhost:5173", "true"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, "/", nil)
			req.Header.Set("Origin", tc.origin)
			rec := httptest.NewRecorder()
			CORS(tc.allowed)(next).ServeHTTP(rec, req)

			if rec.Code != tc.status {
				t.Errorf("expected status %d, got %d", tc.status, rec.Code)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tc.allowOrigin {
				t.Errorf("expected allow origin %q, got %q", tc.allowOrigin, got)
			}
			if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != tc.credentials {
				t.Errorf("expected credentials %q, got %q", tc.credentials, got)
			}
		})
	}
}
