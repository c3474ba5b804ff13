package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/urbantwin/citytwin-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, username string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:       uuid.New(),
		Username: username,
		Email:    username + "@example.com",
		Password: "pw",
		IsActive: true,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedProvider(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, code string, isDefault bool) *types.ProviderCredential {
	tb.Helper()
	p := &types.ProviderCredential{
		ID:              uuid.New(),
		UserID:          userID,
		ProviderCode:    code,
		ProviderName:    code,
		APIKeyEncrypted: "sk-test",
		IsEnabled:       true,
		IsDefault:       isDefault,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed provider: %v", err)
	}
	return p
}

func SeedConversation(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, sessionID, role, content string) *types.Conversation {
	tb.Helper()
	c := &types.Conversation{
		ID:        uuid.New(),
		UserID:    userID,
		SessionID: sessionID,
		Role:      role,
		Content:   content,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed conversation: %v", err)
	}
	return c
}

func SeedBuilding(tb testing.TB, ctx context.Context, tx *gorm.DB, name, category string, lon, lat, height float64) *types.Building {
	tb.Helper()
	b := &types.Building{
		ID:        uuid.New(),
		Name:      name,
		Category:  category,
		Height:    height,
		Longitude: lon,
		Latitude:  lat,
		City:      "北京",
		Status:    "normal",
		Floors:    1,
	}
	if err := tx.WithContext(ctx).Create(b).Error; err != nil {
		tb.Fatalf("seed building: %v", err)
	}
	return b
}
