package handlers

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gdg-garage/convention-booking/internal/auth"
	"github.com/gdg-garage/convention-booking/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const apiKeyPrefix = "cb_"

// APIKeyHandler manages keys for scripted access to the admin API. Keys act
// with the permissions of the user who created them.
type APIKeyHandler struct {
	db          *gorm.DB
	authHandler *auth.AuthHandler
}

func NewAPIKeyHandler(db *gorm.DB, authHandler *auth.AuthHandler) *APIKeyHandler {
	return &APIKeyHandler{db: db, authHandler: authHandler}
}

type CreateAPIKeyInput struct {
	auth.AuthInput
	Body struct {
		Name      string     `json:"name" minLength:"1" maxLength:"100"`
		ExpiresAt *time.Time `json:"expires_at,omitempty"`
	}
}

type APIKeyResponse struct {
	ID         uint       `json:"id"`
	Name       string     `json:"name"`
	Key        string     `json:"key" doc:"Only shown in full right after creation"`
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  *time.Time `json:"expires_at"`
	LastUsedAt *time.Time `json:"last_used_at"`
}

func apiKeyResponse(k models.APIKey, key string) APIKeyResponse {
	return APIKeyResponse{
		ID:         k.ID,
		Name:       k.Name,
		Key:        key,
		CreatedAt:  k.CreatedAt,
		ExpiresAt:  k.ExpiresAt,
		LastUsedAt: k.LastUsedAt,
	}
}

func maskKey(key string) string {
	if len(key) <= 4 {
		return key
	}
	return "..." + key[len(key)-4:]
}

type APIKeyOutput struct {
	Body APIKeyResponse
}

func (h *APIKeyHandler) HandleCreate(ctx context.Context, input *CreateAPIKeyInput) (*APIKeyOutput, error) {
	user, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}
	if input.Body.ExpiresAt != nil && input.Body.ExpiresAt.Before(time.Now()) {
		return nil, invalidField("expires_at", "The expiry date lies in the past.", input.Body.ExpiresAt)
	}

	keyBytes := make([]byte, 32)
	if _, err := rand.Read(keyBytes); err != nil {
		return nil, huma.Error500InternalServerError("Failed to generate key")
	}
	apiKey := models.APIKey{
		UserID:    user.ID,
		Key:       apiKeyPrefix + hex.EncodeToString(keyBytes),
		Name:      input.Body.Name,
		ExpiresAt: input.Body.ExpiresAt,
	}
	if err := h.db.WithContext(ctx).Create(&apiKey).Error; err != nil {
		logrus.WithError(err).Error("Failed to create API key")
		return nil, huma.Error500InternalServerError("Failed to create API key")
	}
	logrus.WithFields(logrus.Fields{"user": user.Username, "name": apiKey.Name}).Info("API key created")
	return &APIKeyOutput{Body: apiKeyResponse(apiKey, apiKey.Key)}, nil
}

type ListAPIKeysInput struct {
	auth.AuthInput
}

type ListAPIKeysOutput struct {
	Body []APIKeyResponse
}

func (h *APIKeyHandler) HandleList(ctx context.Context, input *ListAPIKeysInput) (*ListAPIKeysOutput, error) {
	user, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	var apiKeys []models.APIKey
	if err := h.db.WithContext(ctx).Where("user_id = ?", user.ID).Order("created_at").Find(&apiKeys).Error; err != nil {
		logrus.WithError(err).Error("Failed to list API keys")
		return nil, huma.Error500InternalServerError("Failed to list API keys")
	}

	res := &ListAPIKeysOutput{Body: make([]APIKeyResponse, 0, len(apiKeys))}
	for _, k := range apiKeys {
		res.Body = append(res.Body, apiKeyResponse(k, maskKey(k.Key)))
	}
	return res, nil
}

func (h *APIKeyHandler) HandleDelete(ctx context.Context, input *ItemIDInput) (*struct{}, error) {
	user, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	res := h.db.WithContext(ctx).Unscoped().Where("id = ? AND user_id = ?", input.ID, user.ID).Delete(&models.APIKey{})
	if res.Error != nil {
		logrus.WithError(res.Error).Error("Failed to delete API key")
		return nil, huma.Error500InternalServerError("Failed to delete API key")
	}
	if res.RowsAffected == 0 {
		return nil, huma.Error404NotFound("API key not found")
	}
	return nil, nil
}
