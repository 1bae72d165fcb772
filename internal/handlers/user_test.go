package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/lastchancecy/apiserver/types"
)

func TestGetProfileReturnsSubset(t *testing.T) {
	env := newTestEnv()
	userID, token := env.signupAndSignin(t, "a@b.com", "pw")

	rec := env.doGet(t, fmt.Sprintf("/profile/%d", userID), token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}

	var payload map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	for _, key := range []string{"firstname", "lastname", "email"} {
		if _, ok := payload[key]; !ok {
			t.Fatalf("profile missing %q field (body %s)", key, rec.Body.String())
		}
	}
	if len(payload) != 3 {
		t.Fatalf("profile has %d fields, want exactly firstname/lastname/email", len(payload))
	}
}

func TestGetUserReturnsFullRecordWithoutHash(t *testing.T) {
	env := newTestEnv()
	userID, token := env.signupAndSignin(t, "a@b.com", "pw")

	rec := env.doGet(t, fmt.Sprintf("/users/%d", userID), token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var user types.User
	if err := json.Unmarshal(rec.Body.Bytes(), &user); err != nil {
		t.Fatalf("decode user: %v", err)
	}
	if user.ID != userID || user.Email != "a@b.com" {
		t.Fatalf("user = %+v, want id %d email a@b.com", user, userID)
	}

	var raw map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode raw user: %v", err)
	}
	for _, key := range []string{"password", "password_hash"} {
		if _, ok := raw[key]; ok {
			t.Fatalf("response leaks %q field", key)
		}
	}
}

func TestIdentityScopedReadsRejectOtherUsers(t *testing.T) {
	env := newTestEnv()
	env.signupAndSignin(t, "first@b.com", "pw")
	secondID, secondToken := env.signupAndSignin(t, "second@b.com", "pw")

	otherID := secondID - 1
	for _, path := range []string{
		fmt.Sprintf("/profile/%d", otherID),
		fmt.Sprintf("/users/%d", otherID),
	} {
		rec := env.doGet(t, path, secondToken)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("GET %s status = %d, want %d", path, rec.Code, http.StatusForbidden)
		}
	}
}

func TestUserLookupsRequireToken(t *testing.T) {
	env := newTestEnv()
	userID, _ := env.signupAndSignin(t, "a@b.com", "pw")

	for _, path := range []string{
		fmt.Sprintf("/profile/%d", userID),
		fmt.Sprintf("/users/%d", userID),
	} {
		rec := env.doGet(t, path, "")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("GET %s status = %d, want %d", path, rec.Code, http.StatusUnauthorized)
		}
	}
}

func TestGetMissingUserIs404(t *testing.T) {
	env := newTestEnv()
	userID, token := env.signupAndSignin(t, "a@b.com", "pw")

	// Delete from the fake store so the token subject still matches the path.
	delete(env.userRepo.users, userID)

	rec := env.doGet(t, fmt.Sprintf("/users/%d", userID), token)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	if msg := decodeMessage(t, rec); msg == "" {
		t.Fatalf("404 response missing message field")
	}
}
