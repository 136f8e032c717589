package middleware

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"timetracker/internal/config"
)

func TestLimitBodySize(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				http.Error(w, "Request too large", http.StatusRequestEntityTooLarge)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name           string
		maxSize        int64
		bodySize       int
		expectedStatus int
	}{
		{"Small body (1KB)", 1024 * 1024, 1024, http.StatusOK},
		{"Large body (2MB) - should fail", 1024 * 1024, 2 * 1024 * 1024, http.StatusRequestEntityTooLarge},
		{"Limit disabled", 0, 2 * 1024 * 1024, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := bytes.Repeat([]byte("a"), tt.bodySize)
			req := httptest.NewRequest("POST", "/test", bytes.NewReader(body))
			rr := httptest.NewRecorder()

			LimitBodySize(tt.maxSize)(handler).ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, rr.Code)
			}
		})
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(GetRequestID(r)))
	})

	t.Run("generates an id", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		rr := httptest.NewRecorder()
		RequestIDMiddleware(handler).ServeHTTP(rr, req)

		id := rr.Body.String()
		if len(id) != 36 {
			t.Errorf("Expected a UUID request id, got %q", id)
		}
		if rr.Header().Get(RequestIDHeader) != id {
			t.Errorf("Expected response header %q, got %q", id, rr.Header().Get(RequestIDHeader))
		}
	})

	t.Run("reuses the caller id", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set(RequestIDHeader, "caller-123")
		rr := httptest.NewRecorder()
		RequestIDMiddleware(handler).ServeHTTP(rr, req)

		if rr.Body.String() != "caller-123" {
			t.Errorf("Expected caller-123, got %q", rr.Body.String())
		}
	})

	t.Run("no id outside the middleware", func(t *testing.T) {
		if id := GetRequestID(httptest.NewRequest("GET", "/", nil)); id != "" {
			t.Errorf("Expected empty id, got %q", id)
		}
	})
}

func TestAuthMiddleware(t *testing.T) {
	cfg := config.APIConfig{Users: []config.APIUser{{Name: "alice", Key: "key-alice"}, {Name: "bob", Key: "key-bob"}}}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name, ok := GetUser(r)
		if !ok {
			name = "anonymous"
		}
		w.Write([]byte(name))
	})

	tests := []struct {
		name           string
		allowAnon      bool
		authHeader     string
		expectedStatus int
		expectedUser   string
	}{
		{"Valid key", false, "Bearer key-alice", http.StatusOK, "alice"},
		{"Valid key without Bearer", false, "key-bob", http.StatusOK, "bob"},
		{"Invalid key", false, "Bearer nope", http.StatusUnauthorized, ""},
		{"Missing key", false, "", http.StatusUnauthorized, ""},
		{"Missing key, anonymous allowed", true, "", http.StatusOK, "anonymous"},
		{"Invalid key, anonymous allowed", true, "Bearer nope", http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := cfg
			c.AllowAnonymous = tt.allowAnon
			req := httptest.NewRequest("GET", "/api/v1/tracker", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rr := httptest.NewRecorder()

			NewAuthMiddleware(c).Middleware(handler).ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, rr.Code)
			}
			if tt.expectedStatus == http.StatusOK && rr.Body.String() != tt.expectedUser {
				t.Errorf("Expected user %q, got %q", tt.expectedUser, rr.Body.String())
			}
		})
	}
}

func TestActorFromRequest(t *testing.T) {
	tests := []struct {
		name        string
		remoteAddr  string
		xff         string
		session     string
		cookie      string
		wantIP      string
		wantSession string
	}{
		{"remote address", "192.0.2.10:5555", "", "", "", "192.0.2.10", ""},
		{"forwarded first hop", "10.0.0.1:80", "203.0.113.5, 10.0.0.2", "", "", "203.0.113.5", ""},
		{"session header", "192.0.2.10:5555", "", "hdr-session", "cookie-session", "192.0.2.10", "hdr-session"},
		{"session cookie", "192.0.2.10:5555", "", "", "cookie-session", "192.0.2.10", "cookie-session"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/", nil)
			req.RemoteAddr = tt.remoteAddr
			req.Header.Set("User-Agent", "curl/8.0")
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.session != "" {
				req.Header.Set(SessionHeader, tt.session)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: SessionCookie, Value: tt.cookie})
			}

			actor := ActorFromRequest(req)
			if actor.IP != tt.wantIP || actor.SessionKey != tt.wantSession || actor.UserAgent != "curl/8.0" {
				t.Errorf("Unexpected actor: %+v", actor)
			}
			if actor.UserID != nil {
				t.Errorf("Expected anonymous actor, got %q", *actor.UserID)
			}
		})
	}
}

func TestAccessLog_PassesStatus(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	})
	rr := httptest.NewRecorder()
	AccessLog(handler).ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
	if rr.Code != http.StatusTeapot || rr.Body.String() != "short and stout" {
		t.Errorf("Unexpected response %d %q", rr.Code, rr.Body.String())
	}
}
