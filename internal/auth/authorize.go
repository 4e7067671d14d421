package auth

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gdg-garage/convention-booking/internal/models"
)

// AuthInput is embedded in the input of every protected operation.
type AuthInput struct {
	Cookie string `header:"Cookie" doc:"Session cookie"`
	APIKey string `header:"X-API-KEY" doc:"API key for scripted access"`
}

// Authorize resolves the caller of a huma operation. A user attached by the
// middleware wins over the raw headers.
func (h *AuthHandler) Authorize(ctx context.Context, input AuthInput) (*models.User, error) {
	if user, ok := UserFromContext(ctx); ok {
		return user, nil
	}

	if input.APIKey != "" {
		user, err := h.userForAPIKey(input.APIKey)
		if err != nil {
			return nil, huma.Error401Unauthorized("Unauthorized: " + err.Error())
		}
		return user, nil
	}

	token := sessionToken(input.Cookie)
	if token == "" {
		return nil, huma.Error401Unauthorized("Unauthorized: No token found")
	}
	user, _, err := h.userForToken(token)
	if err != nil {
		return nil, huma.Error401Unauthorized("Unauthorized: Invalid token")
	}
	return user, nil
}

func sessionToken(header string) string {
	if header == "" {
		return ""
	}
	cookies, err := http.ParseCookie(header)
	if err != nil {
		return ""
	}
	for _, c := range cookies {
		if c.Name == CookieName {
			return c.Value
		}
	}
	return ""
}

type MeOutput struct {
	Body struct {
		ID          uint   `json:"id"`
		DiscordID   string `json:"discord_id"`
		Username    string `json:"username"`
		Email       string `json:"email"`
		Avatar      string `json:"avatar"`
		IsSuperuser bool   `json:"is_superuser"`
	}
}

func (h *AuthHandler) HandleMe(ctx context.Context, input *AuthInput) (*MeOutput, error) {
	user, err := h.Authorize(ctx, *input)
	if err != nil {
		return nil, err
	}

	res := &MeOutput{}
	res.Body.ID = user.ID
	res.Body.DiscordID = user.DiscordID
	res.Body.Username = user.Username
	res.Body.Email = user.Email
	res.Body.Avatar = user.Avatar
	res.Body.IsSuperuser = user.IsSuperuser
	return res, nil
}
