package ai

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/urbantwin/citytwin-backend/internal/domain"
	"github.com/urbantwin/citytwin-backend/internal/pkg/dbctx"
	"github.com/urbantwin/citytwin-backend/internal/platform/logger"
)

type UsageRepo interface {
	// Accumulate upserts the per-day counter row for (user, provider,
	// model), adding one request and the given token counts.
	Accumulate(dbc dbctx.Context, userID uuid.UUID, providerCode, modelName string, day time.Time, tokensIn, tokensOut int) error
	ListByUser(dbc dbctx.Context, userID uuid.UUID, since time.Time) ([]*types.UsageStat, error)
}

type usageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUsageRepo(db *gorm.DB, log *logger.Logger) UsageRepo {
	return &usageRepo{db: db, log: log.With("repo", "UsageRepo")}
}

func (r *usageRepo) Accumulate(dbc dbctx.Context, userID uuid.UUID, providerCode, modelName string, day time.Time, tokensIn, tokensOut int) error {
	if userID == uuid.Nil {
		return fmt.Errorf("missing user_id")
	}
	if providerCode == "" || modelName == "" {
		return fmt.Errorf("missing provider_code or model_name")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	row := &types.UsageStat{
		UserID:       userID,
		ProviderCode: providerCode,
		ModelName:    modelName,
		StatDate:     day.UTC().Truncate(24 * time.Hour),
		RequestCount: 1,
		TokensInput:  tokensIn,
		TokensOutput: tokensOut,
	}
	return txx.WithContext(dbc.Ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_id"}, {Name: "provider_code"}, {Name: "model_name"}, {Name: "stat_date"},
		},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"request_count": gorm.Expr("ai_usage_stat.request_count + 1"),
			"tokens_input":  gorm.Expr("ai_usage_stat.tokens_input + ?", tokensIn),
			"tokens_output": gorm.Expr("ai_usage_stat.tokens_output + ?", tokensOut),
			"updated_at":    gorm.Expr("now()"),
		}),
	}).Create(row).Error
}

func (r *usageRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, since time.Time) ([]*types.UsageStat, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("missing user_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.UsageStat
	q := txx.WithContext(dbc.Ctx).Where("user_id = ?", userID)
	if !since.IsZero() {
		q = q.Where("stat_date >= ?", since.UTC().Truncate(24*time.Hour))
	}
	if err := q.Order("stat_date DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
