package auth

import (
	"context"
	"testing"
	"time"

	"github.com/gdg-garage/convention-booking/internal/config"
	"github.com/gdg-garage/convention-booking/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.APIKey{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	sqlDB, _ := db.DB()
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func TestHandleMe(t *testing.T) {
	db := setupDB(t)

	user := models.User{
		DiscordID:   "123456",
		Username:    "testuser",
		Email:       "test@example.com",
		Avatar:      "avatar_url",
		IsSuperuser: true,
	}
	db.Create(&user)

	cfg := &config.Config{JWTSecret: "test-secret"}
	handler := NewAuthHandler(cfg, db)

	t.Run("Authenticated", func(t *testing.T) {
		token, _ := handler.GenerateToken(user.ID)
		input := &AuthInput{
			Cookie: "theme=dark; auth_token=" + token,
		}
		resp, err := handler.HandleMe(context.Background(), input)
		if err != nil {
			t.Fatalf("HandleMe returned error: %v", err)
		}

		if resp.Body.Username != user.Username {
			t.Errorf("expected username %s, got %s", user.Username, resp.Body.Username)
		}
		if resp.Body.Email != user.Email {
			t.Errorf("expected email %s, got %s", user.Email, resp.Body.Email)
		}
		if !resp.Body.IsSuperuser {
			t.Error("expected superuser flag")
		}
	})

	t.Run("APIKey", func(t *testing.T) {
		db.Create(&models.APIKey{UserID: user.ID, Key: "secret-key", Name: "script"})
		resp, err := handler.HandleMe(context.Background(), &AuthInput{APIKey: "secret-key"})
		if err != nil {
			t.Fatalf("HandleMe returned error: %v", err)
		}
		if resp.Body.ID != user.ID {
			t.Errorf("expected user %d, got %d", user.ID, resp.Body.ID)
		}

		var key models.APIKey
		db.Where("key = ?", "secret-key").First(&key)
		if key.LastUsedAt == nil {
			t.Error("expected last_used_at to be set")
		}
	})

	t.Run("ExpiredAPIKey", func(t *testing.T) {
		past := time.Now().Add(-time.Hour)
		db.Create(&models.APIKey{UserID: user.ID, Key: "old-key", ExpiresAt: &past})
		if _, err := handler.HandleMe(context.Background(), &AuthInput{APIKey: "old-key"}); err == nil {
			t.Fatal("expected error for expired key, got nil")
		}
	})

	t.Run("FromContext", func(t *testing.T) {
		ctx := WithUser(context.Background(), &user)
		resp, err := handler.HandleMe(ctx, &AuthInput{})
		if err != nil {
			t.Fatalf("HandleMe returned error: %v", err)
		}
		if resp.Body.DiscordID != "123456" {
			t.Errorf("expected discord id 123456, got %s", resp.Body.DiscordID)
		}
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		input := &AuthInput{}
		_, err := handler.HandleMe(context.Background(), input)
		if err == nil {
			t.Fatal("expected error for unauthenticated request, got nil")
		}
	})

	t.Run("WrongSecret", func(t *testing.T) {
		other := NewAuthHandler(&config.Config{JWTSecret: "other-secret"}, db)
		token, _ := other.GenerateToken(user.ID)
		if _, err := handler.HandleMe(context.Background(), &AuthInput{Cookie: "auth_token=" + token}); err == nil {
			t.Fatal("expected error for foreign token, got nil")
		}
	})
}

func TestUpsertUserFollowsSuperuserConfig(t *testing.T) {
	db := setupDB(t)
	cfg := &config.Config{JWTSecret: "test-secret", SuperuserDiscordIDs: []string{"42"}}
	handler := NewAuthHandler(cfg, db)

	admin, err := handler.upsertUser(&discordProfile{ID: "42", Username: "root", Email: "root@example.com"})
	if err != nil {
		t.Fatalf("upsertUser returned error: %v", err)
	}
	if !admin.IsSuperuser {
		t.Error("expected configured id to be superuser")
	}

	user, err := handler.upsertUser(&discordProfile{ID: "7", Username: "ada", Email: "ada@example.com"})
	if err != nil {
		t.Fatalf("upsertUser returned error: %v", err)
	}
	if user.IsSuperuser {
		t.Error("did not expect superuser")
	}

	cfg.SuperuserDiscordIDs = nil
	again, err := handler.upsertUser(&discordProfile{ID: "42", Username: "root", Email: "root@example.com", Avatar: "new-avatar"})
	if err != nil {
		t.Fatalf("upsertUser returned error: %v", err)
	}
	if again.ID != admin.ID {
		t.Errorf("expected the same user %d, got %d", admin.ID, again.ID)
	}
	if again.IsSuperuser {
		t.Error("expected superuser to be revoked")
	}
}
