package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/storefront-next/internal/auth"
	"github.com/storefront-next/internal/constants"

	"github.com/golang-jwt/jwt/v5"
)

func signedTestToken(t *testing.T, username string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  1,
		"user": username,
	})
	signed, err := token.SignedString([]byte("external-secret"))
	if err != nil {
		t.Fatalf("sign test token failed: %v", err)
	}
	return signed
}

func newAuthServer(t *testing.T, token string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if req.Password != "83r5^_" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"username or password is incorrect"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"token": token})
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestSession(t *testing.T, kv *memoryKV, baseURL string) *SessionStore {
	t.Helper()
	client, err := auth.New(auth.Config{BaseURL: baseURL})
	if err != nil {
		t.Fatalf("new auth client failed: %v", err)
	}
	session, err := NewSessionStore(kv, client)
	if err != nil {
		t.Fatalf("new session store failed: %v", err)
	}
	return session
}

func TestLoginSuccessPersistsToken(t *testing.T) {
	token := signedTestToken(t, "mor_2314")
	server := newAuthServer(t, token)
	kv := newMemoryKV()
	session := newTestSession(t, kv, server.URL)

	if session.IsAuthenticated() {
		t.Fatalf("fresh session must be unauthenticated")
	}

	ok, err := session.Login(context.Background(), "mor_2314", "83r5^_")
	if err != nil {
		t.Fatalf("login persist failed: %v", err)
	}
	if !ok {
		t.Fatalf("login should succeed")
	}
	if !session.IsAuthenticated() {
		t.Fatalf("session must be authenticated after login")
	}
	if session.User() != "mor_2314" {
		t.Fatalf("user want mor_2314 got %s", session.User())
	}
	if session.Err() != "" {
		t.Fatalf("error message must be cleared on success, got %q", session.Err())
	}
	if string(kv.data[constants.StorageKeyToken]) != token {
		t.Fatalf("token must be persisted verbatim")
	}
}

func TestLoginFailureKeepsUnauthenticated(t *testing.T) {
	server := newAuthServer(t, signedTestToken(t, "mor_2314"))
	kv := newMemoryKV()
	session := newTestSession(t, kv, server.URL)

	ok, err := session.Login(context.Background(), "mor_2314", "wrong")
	if err != nil {
		t.Fatalf("login failure should not surface an error: %v", err)
	}
	if ok {
		t.Fatalf("login should fail")
	}
	if session.IsAuthenticated() {
		t.Fatalf("failed login must leave session unauthenticated")
	}
	if session.Err() != "username or password is incorrect" {
		t.Fatalf("unexpected login error message: %q", session.Err())
	}
	if _, exists := kv.data[constants.StorageKeyToken]; exists {
		t.Fatalf("failed login must not persist a token")
	}
}

func TestLoginUnreachableEndpoint(t *testing.T) {
	kv := newMemoryKV()
	session := newTestSession(t, kv, "http://127.0.0.1:1")

	ok, err := session.Login(context.Background(), "mor_2314", "83r5^_")
	if err != nil {
		t.Fatalf("network failure should not surface an error: %v", err)
	}
	if ok || session.IsAuthenticated() {
		t.Fatalf("network failure must leave session unauthenticated")
	}
	if session.Err() != loginFailedMessage {
		t.Fatalf("network failure should use fallback message, got %q", session.Err())
	}
}

func TestSessionRehydration(t *testing.T) {
	token := signedTestToken(t, "mor_2314")
	kv := newMemoryKV()
	kv.data[constants.StorageKeyToken] = []byte(token)

	session := newTestSession(t, kv, "http://127.0.0.1:1")
	if !session.IsAuthenticated() {
		t.Fatalf("persisted token must rehydrate as authenticated")
	}
	if session.Token() != token {
		t.Fatalf("token must rehydrate verbatim")
	}
	if session.User() != "mor_2314" {
		t.Fatalf("display name should decode from token claims, got %q", session.User())
	}
}

func TestLogoutDropsCredential(t *testing.T) {
	token := signedTestToken(t, "mor_2314")
	server := newAuthServer(t, token)
	kv := newMemoryKV()
	session := newTestSession(t, kv, server.URL)

	if ok, _ := session.Login(context.Background(), "mor_2314", "83r5^_"); !ok {
		t.Fatalf("login should succeed")
	}
	if err := session.Logout(context.Background()); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if session.IsAuthenticated() || session.User() != "" || session.Token() != "" {
		t.Fatalf("logout must clear the session")
	}
	if _, exists := kv.data[constants.StorageKeyToken]; exists {
		t.Fatalf("logout must delete the persisted token")
	}
}
