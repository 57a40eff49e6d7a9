package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/olegiv/oblog-go/internal/model"
)

func TestCreateToken(t *testing.T) {
	h, db := newTestHandler(t)
	user := createTestUser(t, db, "joy@example.com", "joy", model.RoleNameUser)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tokens", nil)
	req = requestWithUser(t, db, req, user)
	rr := httptest.NewRecorder()

	h.CreateToken(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d; want %d", rr.Code, http.StatusOK)
	}

	var resp TokenResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp.Token == "" {
		t.Error("empty token")
	}
	if resp.Expiration != 3600 {
		t.Errorf("expiration = %d; want 3600", resp.Expiration)
	}

	// The minted token verifies for the issuing user.
	userID, err := h.tokens.VerifyAPI(resp.Token)
	if err != nil {
		t.Fatalf("VerifyAPI: %v", err)
	}
	if userID != user.ID {
		t.Errorf("token subject = %d; want %d", userID, user.ID)
	}
}

func TestCreateToken_RefusesTokenAuth(t *testing.T) {
	h, db := newTestHandler(t)
	user := createTestUser(t, db, "kit@example.com", "kit", model.RoleNameUser)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tokens", nil)
	req = requestWithUser(t, db, req, user)
	req = requestWithTokenAuth(req)
	rr := httptest.NewRecorder()

	h.CreateToken(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d; want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestCreateToken_Anonymous(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tokens", nil)
	rr := httptest.NewRecorder()

	h.CreateToken(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d; want %d", rr.Code, http.StatusUnauthorized)
	}
}
