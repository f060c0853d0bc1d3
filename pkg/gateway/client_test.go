package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fridaykickers/kickers/pkg/auth"
)

type user struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestRequestInjectsBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(user{ID: "u1", Name: "Kalle"})
	}))
	defer srv.Close()

	c := New(srv.URL, auth.NewMemoryTokens("tok"))
	var u user
	if err := c.Get(context.Background(), "/v1/user/u1", &u); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if gotAuth != "Bearer tok" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer tok")
	}
	if u.ID != "u1" || u.Name != "Kalle" {
		t.Errorf("decoded %+v", u)
	}
}

func TestRequestWithoutToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
	}))
	defer srv.Close()

	c := New(srv.URL, auth.NewMemoryTokens(""))
	if err := c.Get(context.Background(), "/v1/stats", nil); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if gotAuth != "" {
		t.Errorf("expected no Authorization header, got %q", gotAuth)
	}
}

func TestRequestSendsJSONBody(t *testing.T) {
	var got map[string]int
	var contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		json.NewDecoder(r.Body).Decode(&got)
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	body := map[string]int{"oldGoals": 3, "youngGoals": 2}
	if err := c.Post(context.Background(), "/v1/match", body, nil); err != nil {
		t.Fatalf("Post: %v", err)
	}
	if contentType != "application/json" {
		t.Errorf("Content-Type = %q", contentType)
	}
	if got["oldGoals"] != 3 || got["youngGoals"] != 2 {
		t.Errorf("server received %v", got)
	}
}

func TestEmptySuccessLeavesOutUntouched(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	var u user
	if err := c.Put(context.Background(), "/v1/user/u1/drink", nil, &u); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if u.ID != "" {
		t.Errorf("expected zero user, got %+v", u)
	}
}

func TestServerErrorNormalized(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
	}{
		{
			name:        "message from body",
			status:      http.StatusBadRequest,
			body:        `{"message":"Betrag ungültig"}`,
			wantMessage: "Betrag ungültig",
		},
		{
			name:        "status text fallback",
			status:      http.StatusInternalServerError,
			body:        `oops`,
			wantMessage: "Request failed with status code 500 (Internal Server Error)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			err := New(srv.URL, nil).Get(context.Background(), "/v1/user", nil)
			var gerr *Error
			if !errors.As(err, &gerr) {
				t.Fatalf("expected *Error, got %T (%v)", err, err)
			}
			if gerr.Kind != KindServer {
				t.Errorf("Kind = %v, want server", gerr.Kind)
			}
			if gerr.Status != tt.status {
				t.Errorf("Status = %d, want %d", gerr.Status, tt.status)
			}
			if gerr.Message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", gerr.Message, tt.wantMessage)
			}
		})
	}
}

func TestUnauthorizedClearsTokenAndSignals(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	tokens := auth.NewMemoryTokens("expired")
	signalled := 0
	c := New(srv.URL, tokens, WithUnauthenticated(func() { signalled++ }))

	err := c.Get(context.Background(), "/v1/user", nil)
	var gerr *Error
	if !errors.As(err, &gerr) || !gerr.Unauthenticated() {
		t.Fatalf("expected unauthenticated error, got %v", err)
	}
	if tokens.Token() != "" {
		t.Error("token should be removed after 401")
	}
	if signalled != 1 {
		t.Errorf("unauthenticated callback fired %d times, want 1", signalled)
	}
}

type failingDoer struct{ err error }

func (f failingDoer) Do(*http.Request) (*http.Response, error) { return nil, f.err }

func TestTransportErrorNormalized(t *testing.T) {
	c := New("http://example.invalid", nil, WithDoer(failingDoer{err: errors.New("dial tcp: refused")}))

	err := c.Get(context.Background(), "/v1/user", nil)
	var gerr *Error
	if !errors.As(err, &gerr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if gerr.Kind != KindTransport {
		t.Errorf("Kind = %v, want transport", gerr.Kind)
	}
	if gerr.Message != MsgNoResponse {
		t.Errorf("Message = %q", gerr.Message)
	}
	if !strings.Contains(gerr.Error(), "transport") {
		t.Errorf("Error() = %q", gerr.Error())
	}
}

func TestDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "{not json")
	}))
	defer srv.Close()

	var u user
	err := New(srv.URL, nil).Get(context.Background(), "/v1/user/u1", &u)
	var gerr *Error
	if !errors.As(err, &gerr) || gerr.Kind != KindDecode {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestPostForm(t *testing.T) {
	var email, password string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
		}
		email = r.FormValue("email")
		password = r.FormValue("password")
		io.WriteString(w, `{"token":"t"}`)
	}))
	defer srv.Close()

	var out struct {
		Token string `json:"token"`
	}
	fields := map[string]string{"email": "a@b.de", "password": "secret"}
	if err := New(srv.URL, nil).PostForm(context.Background(), "/login", fields, &out); err != nil {
		t.Fatalf("PostForm: %v", err)
	}
	if email != "a@b.de" || password != "secret" {
		t.Errorf("form fields = %q, %q", email, password)
	}
	if out.Token != "t" {
		t.Errorf("token = %q", out.Token)
	}
}

func TestMessage(t *testing.T) {
	if got := Message(&Error{Kind: KindServer, Message: "nope"}, "fallback"); got != "nope" {
		t.Errorf("Message(gateway error) = %q", got)
	}
	if got := Message(errors.New("plain"), "fallback"); got != "plain" {
		t.Errorf("Message(plain) = %q", got)
	}
	if got := Message(nil, "fallback"); got != "fallback" {
		t.Errorf("Message(nil) = %q", got)
	}
}
