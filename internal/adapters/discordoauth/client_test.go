package discordoauth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New("cid", "secret", "http://localhost/callback", WithBaseURL(srv.URL))
}

func TestExchangeCode(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/oauth2/token" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatal(err)
		}
		if got := r.PostForm.Get("grant_type"); got != "authorization_code" {
			t.Errorf("grant_type = %q", got)
		}
		if got := r.PostForm.Get("code"); got != "abc" {
			t.Errorf("code = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at","refresh_token":"rt","expires_in":604800}`))
	})

	tok, err := c.ExchangeCode(context.Background(), "abc")
	if err != nil {
		t.Fatal(err)
	}
	if tok.AccessToken != "at" || tok.RefreshToken != "rt" {
		t.Fatalf("token = %+v", tok)
	}
	if tok.ExpiresAt().Before(time.Now().Add(time.Hour)) {
		t.Fatal("ExpiresAt tendría que estar en el futuro lejano")
	}
}

func TestGetUserSendsBearer(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer at" {
			t.Errorf("Authorization = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"123","username":"mario","global_name":"Mario","avatar":"abc"}`))
	})

	u, err := c.GetUser(context.Background(), "at")
	if err != nil {
		t.Fatal(err)
	}
	if u.ID != "123" || u.Username != "mario" {
		t.Fatalf("user = %+v", u)
	}
}

func TestAPIErrorOnNon2xx(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"401: Unauthorized"}`, http.StatusUnauthorized)
	})

	_, err := c.GetUser(context.Background(), "bad")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, quiero *APIError", err)
	}
	if apiErr.Status != http.StatusUnauthorized {
		t.Fatalf("status = %d", apiErr.Status)
	}
}

func TestNotFound(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	_, err := c.GetUser(context.Background(), "at")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, quiero ErrNotFound", err)
	}
}

func TestHasAdmin(t *testing.T) {
	cases := []struct {
		perms string
		want  bool
	}{
		{"8", true},          // Administrator
		{"32", true},         // Manage Guild
		{"2147483647", true}, // todo
		{"0", false},
		{"4", false},
		{"garbage", false},
	}
	for _, tc := range cases {
		g := UserGuild{Permissions: tc.perms}
		if got := g.HasAdmin(); got != tc.want {
			t.Errorf("HasAdmin(%q) = %v, quiero %v", tc.perms, got, tc.want)
		}
	}
}

func TestIsTokenExpired(t *testing.T) {
	if IsTokenExpired(time.Now().Add(time.Hour)) {
		t.Error("una hora de margen no está vencido")
	}
	if !IsTokenExpired(time.Now().Add(time.Minute)) {
		t.Error("dentro del colchón de 5 minutos cuenta como vencido")
	}
	if !IsTokenExpired(time.Now().Add(-time.Hour)) {
		t.Error("vencido hace una hora es vencido")
	}
}
