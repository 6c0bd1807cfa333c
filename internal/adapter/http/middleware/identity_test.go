package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestIdentity(t *testing.T) {
	cases := []struct {
		name       string
		header     string
		wantStatus int
		wantUserID int64
	}{
		{"valid user id", "42", http.StatusOK, 42},
		{"missing header", "", http.StatusUnauthorized, 0},
		{"non-numeric", "abc", http.StatusUnauthorized, 0},
		{"zero", "0", http.StatusUnauthorized, 0},
		{"negative", "-5", http.StatusUnauthorized, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/balance", nil)
			if tc.header != "" {
				req.Header.Set("X-User-Id", tc.header)
			}
			rr := httptest.NewRecorder()

			var gotUserID int64
			Identity(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUserID, _ = UserIDFromContext(r.Context())
			})).ServeHTTP(rr, req)

			if rr.Code != tc.wantStatus {
				t.Fatalf("expected status %d, got %d", tc.wantStatus, rr.Code)
			}
			if gotUserID != tc.wantUserID {
				t.Fatalf("expected user id %d, got %d", tc.wantUserID, gotUserID)
			}
		})
	}
}

func TestUserIDFromContextMissing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := UserIDFromContext(req.Context()); ok {
		t.Fatalf("expected no user id in a bare context")
	}
}
