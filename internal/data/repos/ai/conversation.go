package ai

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/urbantwin/citytwin-backend/internal/domain"
	"github.com/urbantwin/citytwin-backend/internal/pkg/dbctx"
	"github.com/urbantwin/citytwin-backend/internal/platform/logger"
)

// SessionSummary is one row of the session list: the session id plus
// the first user message and last activity used to label it in the UI.
type SessionSummary struct {
	SessionID     string    `json:"session_id"`
	Title         string    `json:"title"`
	MessageCount  int       `json:"message_count"`
	LastMessageAt time.Time `json:"last_message_at"`
}

type ConversationRepo interface {
	Create(dbc dbctx.Context, row *types.Conversation) (*types.Conversation, error)
	// ListRecent returns up to limit turns of a session, newest first.
	ListRecent(dbc dbctx.Context, userID uuid.UUID, sessionID string, limit int) ([]*types.Conversation, error)
	ListBySession(dbc dbctx.Context, userID uuid.UUID, sessionID string, limit int) ([]*types.Conversation, error)
	ListSessions(dbc dbctx.Context, userID uuid.UUID, limit int) ([]SessionSummary, error)
	DeleteSession(dbc dbctx.Context, userID uuid.UUID, sessionID string) (int64, error)
}

type conversationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConversationRepo(db *gorm.DB, log *logger.Logger) ConversationRepo {
	return &conversationRepo{db: db, log: log.With("repo", "ConversationRepo")}
}

func (r *conversationRepo) Create(dbc dbctx.Context, row *types.Conversation) (*types.Conversation, error) {
	if row == nil || row.UserID == uuid.Nil {
		return nil, fmt.Errorf("missing user_id")
	}
	if row.SessionID == "" {
		return nil, fmt.Errorf("missing session_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	if err := txx.WithContext(dbc.Ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *conversationRepo) ListRecent(dbc dbctx.Context, userID uuid.UUID, sessionID string, limit int) ([]*types.Conversation, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("missing user_id")
	}
	if sessionID == "" {
		return nil, fmt.Errorf("missing session_id")
	}
	if limit <= 0 || limit > 200 {
		limit = 20
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.Conversation
	if err := txx.WithContext(dbc.Ctx).
		Where("user_id = ? AND session_id = ?", userID, sessionID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *conversationRepo) ListBySession(dbc dbctx.Context, userID uuid.UUID, sessionID string, limit int) ([]*types.Conversation, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("missing user_id")
	}
	if sessionID == "" {
		return nil, fmt.Errorf("missing session_id")
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.Conversation
	if err := txx.WithContext(dbc.Ctx).
		Where("user_id = ? AND session_id = ?", userID, sessionID).
		Order("created_at ASC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *conversationRepo) ListSessions(dbc dbctx.Context, userID uuid.UUID, limit int) ([]SessionSummary, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("missing user_id")
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []SessionSummary
	err := txx.WithContext(dbc.Ctx).Raw(`
		SELECT c.session_id,
		       COALESCE((
		           SELECT f.content FROM ai_conversation f
		           WHERE f.user_id = c.user_id AND f.session_id = c.session_id AND f.role = 'user'
		           ORDER BY f.created_at ASC LIMIT 1
		       ), '') AS title,
		       COUNT(*) AS message_count,
		       MAX(c.created_at) AS last_message_at
		FROM ai_conversation c
		WHERE c.user_id = ?
		GROUP BY c.user_id, c.session_id
		ORDER BY last_message_at DESC
		LIMIT ?`, userID, limit).Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *conversationRepo) DeleteSession(dbc dbctx.Context, userID uuid.UUID, sessionID string) (int64, error) {
	if userID == uuid.Nil {
		return 0, fmt.Errorf("missing user_id")
	}
	if sessionID == "" {
		return 0, fmt.Errorf("missing session_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	res := txx.WithContext(dbc.Ctx).
		Where("user_id = ? AND session_id = ?", userID, sessionID).
		Delete(&types.Conversation{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
