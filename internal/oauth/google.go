// Package oauth реализует вход через Google по схеме authorization code.
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/magabrotheeeer/quickmarket/internal/config"
	"github.com/magabrotheeeer/quickmarket/internal/models"
)

const defaultUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// ErrNoEmail возвращается, если Google не отдал email пользователя.
var ErrNoEmail = errors.New("google profile has no email")

// Google обменивает authorization code на токен и получает профиль пользователя.
type Google struct {
	cfg         *oauth2.Config
	userInfoURL string
}

// NewGoogle создаёт провайдера с областями profile и email.
func NewGoogle(cfg config.GoogleOAuth) *Google {
	return &Google{
		cfg: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Scopes:       []string{"profile", "email"},
			Endpoint:     endpoints.Google,
		},
		userInfoURL: defaultUserInfoURL,
	}
}

// AuthCodeURL возвращает адрес страницы согласия Google.
func (g *Google) AuthCodeURL(state string) string {
	return g.cfg.AuthCodeURL(state)
}

type userInfo struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
}

// Exchange обменивает code на токен и возвращает профиль пользователя.
func (g *Google) Exchange(ctx context.Context, code string) (*models.GoogleProfile, error) {
	const op = "oauth.Google.Exchange"

	token, err := g.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	resp, err := g.cfg.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: userinfo: unexpected status %s", op, resp.Status)
	}

	var info userInfo
	if err = json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if info.Email == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrNoEmail)
	}

	return &models.GoogleProfile{
		ID:         info.ID,
		Email:      info.Email,
		GivenName:  info.GivenName,
		FamilyName: info.FamilyName,
	}, nil
}
