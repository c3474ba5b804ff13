package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/urbantwin/citytwin-backend/internal/ai"
	"github.com/urbantwin/citytwin-backend/internal/ai/catalog"
	"github.com/urbantwin/citytwin-backend/internal/ai/registry"
	"github.com/urbantwin/citytwin-backend/internal/data/repos"
	types "github.com/urbantwin/citytwin-backend/internal/domain"
	"github.com/urbantwin/citytwin-backend/internal/pkg/dbctx"
	"github.com/urbantwin/citytwin-backend/internal/platform/apierr"
	"github.com/urbantwin/citytwin-backend/internal/platform/logger"
	"github.com/urbantwin/citytwin-backend/internal/platform/secrets"
)

type AddProviderInput struct {
	ProviderCode string `json:"provider_code" binding:"required"`
	APIKey       string `json:"api_key"`
	BaseURL      string `json:"base_url"`
	DefaultModel string `json:"default_model"`
	IsDefault    bool   `json:"is_default"`
	Priority     int    `json:"priority"`
}

type UpdateProviderInput struct {
	APIKey       *string `json:"api_key"`
	BaseURL      *string `json:"base_url"`
	DefaultModel *string `json:"default_model"`
	IsEnabled    *bool   `json:"is_enabled"`
	Priority     *int    `json:"priority"`
}

// ProviderView is the credential as exposed to clients: the key is
// reduced to its last four characters.
type ProviderView struct {
	ID           uuid.UUID `json:"id"`
	ProviderCode string    `json:"provider_code"`
	ProviderName string    `json:"provider_name"`
	APIKeyTail   string    `json:"api_key_tail"`
	BaseURL      string    `json:"base_url"`
	DefaultModel string    `json:"default_model"`
	IsEnabled    bool      `json:"is_enabled"`
	IsDefault    bool      `json:"is_default"`
	Priority     int       `json:"priority"`
	CreatedAt    time.Time `json:"created_at"`
}

type ProviderModels struct {
	ProviderCode string         `json:"provider_code"`
	Models       []ai.ModelInfo `json:"models"`
	Error        string         `json:"error,omitempty"`
}

// ResolvedProvider pairs a live adapter with the credential it was
// built from so callers know which model and code were selected.
type ResolvedProvider struct {
	Provider   ai.Provider
	Credential *types.ProviderCredential
	Model      string
}

type ProviderService interface {
	Vendors() []catalog.Vendor
	List(ctx context.Context, userID uuid.UUID) ([]ProviderView, error)
	Add(ctx context.Context, userID uuid.UUID, in AddProviderInput) (*ProviderView, error)
	Update(ctx context.Context, userID, id uuid.UUID, in UpdateProviderInput) (*ProviderView, error)
	SetDefault(ctx context.Context, userID, id uuid.UUID) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	ListModels(ctx context.Context, userID uuid.UUID) ([]ProviderModels, error)
	Usage(ctx context.Context, userID uuid.UUID, since time.Time) ([]*types.UsageStat, error)
	// Resolve builds the provider a chat request should run on. When
	// code is empty the user's default credential is used.
	Resolve(ctx context.Context, userID uuid.UUID, code, model string) (*ResolvedProvider, error)
}

type providerService struct {
	db        *gorm.DB
	log       *logger.Logger
	providers repos.ProviderRepo
	usage     repos.UsageRepo
	cipher    *secrets.Cipher
}

func NewProviderService(db *gorm.DB, log *logger.Logger, providers repos.ProviderRepo, usage repos.UsageRepo, cipher *secrets.Cipher) ProviderService {
	return &providerService{
		db:        db,
		log:       log.With("service", "ProviderService"),
		providers: providers,
		usage:     usage,
		cipher:    cipher,
	}
}

func (s *providerService) Vendors() []catalog.Vendor {
	return catalog.All()
}

func (s *providerService) List(ctx context.Context, userID uuid.UUID) ([]ProviderView, error) {
	rows, err := s.providers.ListByUser(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return nil, err
	}
	out := make([]ProviderView, 0, len(rows))
	for _, row := range rows {
		out = append(out, s.view(row))
	}
	return out, nil
}

func (s *providerService) Add(ctx context.Context, userID uuid.UUID, in AddProviderInput) (*ProviderView, error) {
	code := strings.TrimSpace(strings.ToLower(in.ProviderCode))
	vendor, ok := catalog.Get(code)
	if !ok {
		return nil, apierr.New(http.StatusBadRequest, "UNKNOWN_PROVIDER", fmt.Errorf("unsupported provider: %s", code))
	}
	apiKey := strings.TrimSpace(in.APIKey)
	if vendor.RequiresKey && apiKey == "" {
		return nil, apierr.New(http.StatusBadRequest, "MISSING_API_KEY", fmt.Errorf("provider %s requires an api key", code))
	}

	encrypted, err := s.cipher.EncryptString(apiKey)
	if err != nil {
		return nil, fmt.Errorf("encrypt api key: %w", err)
	}

	model := strings.TrimSpace(in.DefaultModel)
	if model == "" {
		model = vendor.DefaultModel
	}

	row := &types.ProviderCredential{
		ID:              uuid.New(),
		UserID:          userID,
		ProviderCode:    code,
		ProviderName:    vendor.Name,
		APIKeyEncrypted: encrypted,
		BaseURL:         strings.TrimSpace(in.BaseURL),
		DefaultModel:    model,
		IsEnabled:       true,
		IsDefault:       in.IsDefault,
		Priority:        in.Priority,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}

		if _, err := s.providers.GetByUserAndCode(dbc, userID, code); err == nil {
			return apierr.New(http.StatusConflict, "PROVIDER_EXISTS", fmt.Errorf("provider %s already configured", code))
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if in.IsDefault {
			if err := s.providers.ClearDefaults(dbc, userID); err != nil {
				return err
			}
		}
		_, err := s.providers.Create(dbc, row)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Provider added", "user_id", userID.String(), "provider", code)
	v := s.view(row)
	return &v, nil
}

func (s *providerService) Update(ctx context.Context, userID, id uuid.UUID, in UpdateProviderInput) (*ProviderView, error) {
	dbc := dbctx.Context{Ctx: ctx}

	row, err := s.getOwned(dbc, userID, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.APIKey != nil {
		encrypted, err := s.cipher.EncryptString(strings.TrimSpace(*in.APIKey))
		if err != nil {
			return nil, fmt.Errorf("encrypt api key: %w", err)
		}
		updates["api_key_encrypted"] = encrypted
	}
	if in.BaseURL != nil {
		updates["base_url"] = strings.TrimSpace(*in.BaseURL)
	}
	if in.DefaultModel != nil {
		updates["default_model"] = strings.TrimSpace(*in.DefaultModel)
	}
	if in.IsEnabled != nil {
		updates["is_enabled"] = *in.IsEnabled
	}
	if in.Priority != nil {
		updates["priority"] = *in.Priority
	}

	if err := s.providers.UpdateFields(dbc, row.ID, updates); err != nil {
		return nil, err
	}
	row, err = s.providers.GetByID(dbc, row.ID)
	if err != nil {
		return nil, err
	}
	v := s.view(row)
	return &v, nil
}

// SetDefault makes one credential the default and clears the flag on
// every other credential the user owns, inside one transaction.
func (s *providerService) SetDefault(ctx context.Context, userID, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}

		if _, err := s.getOwned(dbc, userID, id); err != nil {
			return err
		}
		if err := s.providers.ClearDefaults(dbc, userID); err != nil {
			return err
		}
		return s.providers.UpdateFields(dbc, id, map[string]interface{}{"is_default": true})
	})
}

func (s *providerService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	err := s.providers.Delete(dbctx.Context{Ctx: ctx}, userID, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apierr.NotFound("PROVIDER_NOT_FOUND", "provider not found")
	}
	return err
}

// ListModels queries every enabled credential concurrently. A vendor
// failure is reported inline rather than failing the whole listing.
func (s *providerService) ListModels(ctx context.Context, userID uuid.UUID) ([]ProviderModels, error) {
	rows, err := s.providers.ListByUser(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return nil, err
	}

	out := make([]ProviderModels, 0, len(rows))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for _, row := range rows {
		if !row.IsEnabled {
			continue
		}
		row := row
		g.Go(func() error {
			entry := ProviderModels{ProviderCode: row.ProviderCode}
			p, err := s.build(row)
			if err != nil {
				entry.Error = err.Error()
			} else if models, err := p.ListModels(gctx); err != nil {
				entry.Error = err.Error()
			} else {
				entry.Models = models
			}
			mu.Lock()
			out = append(out, entry)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *providerService) Usage(ctx context.Context, userID uuid.UUID, since time.Time) ([]*types.UsageStat, error) {
	return s.usage.ListByUser(dbctx.Context{Ctx: ctx}, userID, since)
}

func (s *providerService) Resolve(ctx context.Context, userID uuid.UUID, code, model string) (*ResolvedProvider, error) {
	dbc := dbctx.Context{Ctx: ctx}

	var row *types.ProviderCredential
	var err error
	if code != "" {
		row, err = s.providers.GetByUserAndCode(dbc, userID, strings.ToLower(code))
	} else {
		row, err = s.providers.GetDefault(dbc, userID)
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierr.New(http.StatusPreconditionFailed, "NO_PROVIDER", errors.New("no enabled provider configured"))
	}
	if err != nil {
		return nil, err
	}
	if !row.IsEnabled {
		return nil, apierr.New(http.StatusPreconditionFailed, "PROVIDER_DISABLED", fmt.Errorf("provider %s is disabled", row.ProviderCode))
	}

	p, err := s.build(row)
	if err != nil {
		return nil, err
	}

	if model == "" {
		model = row.DefaultModel
	}
	if model == "" {
		if vendor, ok := catalog.Get(row.ProviderCode); ok {
			model = vendor.DefaultModel
		}
	}

	return &ResolvedProvider{Provider: p, Credential: row, Model: model}, nil
}

func (s *providerService) build(row *types.ProviderCredential) (ai.Provider, error) {
	apiKey := s.cipher.DecryptString(row.APIKeyEncrypted)
	return registry.Build(row.ProviderCode, apiKey, row.BaseURL)
}

func (s *providerService) getOwned(dbc dbctx.Context, userID, id uuid.UUID) (*types.ProviderCredential, error) {
	row, err := s.providers.GetByID(dbc, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierr.NotFound("PROVIDER_NOT_FOUND", "provider not found")
	}
	if err != nil {
		return nil, err
	}
	if row.UserID != userID {
		return nil, apierr.NotFound("PROVIDER_NOT_FOUND", "provider not found")
	}
	return row, nil
}

func (s *providerService) view(row *types.ProviderCredential) ProviderView {
	return ProviderView{
		ID:           row.ID,
		ProviderCode: row.ProviderCode,
		ProviderName: row.ProviderName,
		APIKeyTail:   keyTail(s.cipher.DecryptString(row.APIKeyEncrypted)),
		BaseURL:      row.BaseURL,
		DefaultModel: row.DefaultModel,
		IsEnabled:    row.IsEnabled,
		IsDefault:    row.IsDefault,
		Priority:     row.Priority,
		CreatedAt:    row.CreatedAt,
	}
}

func keyTail(key string) string {
	if len(key) <= 4 {
		return key
	}
	return "****" + key[len(key)-4:]
}
