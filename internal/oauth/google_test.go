package oauth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/magabrotheeeer/quickmarket/internal/config"
)

func newTestGoogle(t *testing.T, userinfo http.HandlerFunc) *Google {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.Form.Get("code") != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at-1","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", userinfo)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	g := NewGoogle(config.GoogleOAuth{
		ClientID:     "client",
		ClientSecret: "secret",
		CallbackURL:  "http://localhost:5000/api/auth/google/callback",
	})
	g.cfg.Endpoint = oauth2.Endpoint{
		AuthURL:   srv.URL + "/auth",
		TokenURL:  srv.URL + "/token",
		AuthStyle: oauth2.AuthStyleInParams,
	}
	g.userInfoURL = srv.URL + "/userinfo"
	return g
}

func TestGoogle_Exchange(t *testing.T) {
	g := newTestGoogle(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer at-1", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"id":"g-1","email":"ada@example.com","given_name":"Ada","family_name":"Obi"}`))
	})

	profile, err := g.Exchange(context.Background(), "good-code")
	require.NoError(t, err)
	assert.Equal(t, "g-1", profile.ID)
	assert.Equal(t, "ada@example.com", profile.Email)
	assert.Equal(t, "Ada", profile.GivenName)
	assert.Equal(t, "Obi", profile.FamilyName)
}

func TestGoogle_Exchange_Errors(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		userinfo http.HandlerFunc
		wantErr  error
	}{
		{
			name:     "bad code",
			code:     "bad-code",
			userinfo: func(_ http.ResponseWriter, _ *http.Request) {},
		},
		{
			name: "userinfo failure",
			code: "good-code",
			userinfo: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			},
		},
		{
			name: "no email",
			code: "good-code",
			userinfo: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"id":"g-1"}`))
			},
			wantErr: ErrNoEmail,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGoogle(t, tt.userinfo)

			_, err := g.Exchange(context.Background(), tt.code)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestGoogle_AuthCodeURL(t *testing.T) {
	g := NewGoogle(config.GoogleOAuth{ClientID: "client", CallbackURL: "http://cb"})

	u, err := url.Parse(g.AuthCodeURL("state-1"))
	require.NoError(t, err)
	assert.Equal(t, "accounts.google.com", u.Host)
	assert.Equal(t, "state-1", u.Query().Get("state"))
	assert.Equal(t, "client", u.Query().Get("client_id"))
	assert.Equal(t, "http://cb", u.Query().Get("redirect_uri"))
	assert.Equal(t, "profile email", u.Query().Get("scope"))
}
