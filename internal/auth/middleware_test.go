package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gdg-garage/convention-booking/internal/config"
	"github.com/gdg-garage/convention-booking/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, secret string, userID uint, expiresIn time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(expiresIn).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return tokenString
}

func TestAuthMiddleware_SlidingSession(t *testing.T) {
	db := setupDB(t)
	user := models.User{DiscordID: "1", Username: "ada"}
	db.Create(&user)

	cfg := &config.Config{JWTSecret: "test-secret"}
	handler := NewAuthHandler(cfg, db)

	var seen *models.User
	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	t.Run("TokenRenewed", func(t *testing.T) {
		// expires in 11 hours, less than TokenDuration/2
		tokenString := signedToken(t, cfg.JWTSecret, user.ID, 11*time.Hour)

		req, _ := http.NewRequest("GET", "/", nil)
		req.AddCookie(&http.Cookie{Name: "auth_token", Value: tokenString})
		rr := httptest.NewRecorder()

		handler.AuthMiddleware(nextHandler).ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Errorf("expected status OK, got %v", rr.Code)
		}
		if seen == nil || seen.ID != user.ID {
			t.Errorf("expected user %d in context", user.ID)
		}

		found := false
		for _, c := range rr.Result().Cookies() {
			if c.Name == "auth_token" {
				found = true
				if c.Value == tokenString {
					t.Errorf("expected new token value, but got the old one")
				}
				break
			}
		}
		if !found {
			t.Errorf("expected new auth_token cookie to be set")
		}
	})

	t.Run("TokenNotRenewed", func(t *testing.T) {
		tokenString := signedToken(t, cfg.JWTSecret, user.ID, 13*time.Hour)

		req, _ := http.NewRequest("GET", "/", nil)
		req.AddCookie(&http.Cookie{Name: "auth_token", Value: tokenString})
		rr := httptest.NewRecorder()

		handler.AuthMiddleware(nextHandler).ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Errorf("expected status OK, got %v", rr.Code)
		}
		for _, c := range rr.Result().Cookies() {
			if c.Name == "auth_token" {
				t.Errorf("did not expect a new auth_token cookie to be set")
			}
		}
	})

	t.Run("Rejected", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/", nil)
		rr := httptest.NewRecorder()
		handler.AuthMiddleware(nextHandler).ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("expected status Unauthorized, got %v", rr.Code)
		}
	})
}

func TestOptionalMiddleware(t *testing.T) {
	db := setupDB(t)
	user := models.User{DiscordID: "1", Username: "ada"}
	db.Create(&user)
	cfg := &config.Config{JWTSecret: "test-secret"}
	handler := NewAuthHandler(cfg, db)

	var seen *models.User
	var ok bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, ok = UserFromContext(r.Context())
	})

	for name, cookie := range map[string]string{
		"Anonymous": "",
		"Garbage":   "not-a-jwt",
	} {
		t.Run(name, func(t *testing.T) {
			req, _ := http.NewRequest("POST", "/graphql", nil)
			if cookie != "" {
				req.AddCookie(&http.Cookie{Name: "auth_token", Value: cookie})
			}
			rr := httptest.NewRecorder()
			handler.OptionalMiddleware(next).ServeHTTP(rr, req)
			if rr.Code != http.StatusOK {
				t.Errorf("expected status OK, got %v", rr.Code)
			}
			if ok {
				t.Errorf("did not expect a user, got %v", seen)
			}
		})
	}

	t.Run("Authenticated", func(t *testing.T) {
		req, _ := http.NewRequest("POST", "/graphql", nil)
		req.AddCookie(&http.Cookie{Name: "auth_token", Value: signedToken(t, cfg.JWTSecret, user.ID, TokenDuration)})
		handler.OptionalMiddleware(next).ServeHTTP(httptest.NewRecorder(), req)
		if !ok || seen.ID != user.ID {
			t.Errorf("expected user %d in context", user.ID)
		}
	})
}
