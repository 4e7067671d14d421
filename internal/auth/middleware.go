package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gdg-garage/convention-booking/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

type contextKey string

const UserKey contextKey = "user"

var (
	ErrNoCredentials = errors.New("no credentials")
	ErrInvalidToken  = errors.New("invalid token")
	ErrKeyExpired    = errors.New("api key expired")
)

// UserFromContext returns the user attached by one of the middlewares.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(UserKey).(*models.User)
	return user, ok && user != nil
}

func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, UserKey, user)
}

// AuthMiddleware rejects requests without a valid API key or session cookie.
func (h *AuthHandler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := h.authenticateRequest(w, r)
		if err != nil {
			http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

// OptionalMiddleware attaches the user when the request carries valid
// credentials and lets anonymous requests through.
func (h *AuthHandler) OptionalMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := h.authenticateRequest(w, r)
		if err != nil {
			if !errors.Is(err, ErrNoCredentials) {
				logrus.WithError(err).Debug("Ignoring invalid credentials")
			}
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

func (h *AuthHandler) authenticateRequest(w http.ResponseWriter, r *http.Request) (*models.User, error) {
	if key := r.Header.Get("X-API-KEY"); key != "" {
		return h.userForAPIKey(key)
	}

	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil, ErrNoCredentials
	}
	user, exp, err := h.userForToken(cookie.Value)
	if err != nil {
		return nil, err
	}

	// Sliding session: refresh the token once it is past half its lifetime
	if time.Until(exp) < TokenDuration/2 {
		if newToken, err := h.GenerateToken(user.ID); err == nil {
			h.setSessionCookie(w, newToken)
		}
	}
	return user, nil
}

func (h *AuthHandler) userForAPIKey(key string) (*models.User, error) {
	var keyModel models.APIKey
	if err := h.db.Preload("User").Where("key = ?", key).First(&keyModel).Error; err != nil {
		return nil, ErrInvalidToken
	}
	if keyModel.ExpiresAt != nil && time.Now().After(*keyModel.ExpiresAt) {
		return nil, ErrKeyExpired
	}
	h.db.Model(&keyModel).Update("last_used_at", time.Now())
	return &keyModel.User, nil
}

func (h *AuthHandler) userForToken(tokenString string) (*models.User, time.Time, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(h.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, time.Time{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, time.Time{}, ErrInvalidToken
	}
	userIDFloat, ok := claims["user_id"].(float64)
	if !ok {
		return nil, time.Time{}, ErrInvalidToken
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, time.Time{}, ErrInvalidToken
	}

	var user models.User
	if err := h.db.First(&user, uint(userIDFloat)).Error; err != nil {
		return nil, time.Time{}, ErrInvalidToken
	}
	return &user, exp.Time, nil
}
