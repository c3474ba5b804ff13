package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/urbantwin/citytwin-backend/internal/ai"
	"github.com/urbantwin/citytwin-backend/internal/data/repos"
	types "github.com/urbantwin/citytwin-backend/internal/domain"
	"github.com/urbantwin/citytwin-backend/internal/pkg/dbctx"
	"github.com/urbantwin/citytwin-backend/internal/platform/apierr"
	"github.com/urbantwin/citytwin-backend/internal/platform/logger"
)

const historyWindow = 20

const systemPrompt = `你是智慧城市数字孪生平台的AI助手。你可以控制三维城市场景：移动相机、查询和高亮建筑、做空间分析、查询和设置天气。
当用户的请求可以通过工具完成时，调用合适的工具；否则用简洁的中文回答。坐标使用 WGS84 经纬度。`

type SendMessageInput struct {
	SessionID    string   `json:"session_id"`
	Message      string   `json:"message" binding:"required"`
	ProviderCode string   `json:"provider_code"`
	Model        string   `json:"model"`
	Temperature  *float64 `json:"temperature"`
}

type ChatReply struct {
	SessionID  string   `json:"session_id"`
	Content    string   `json:"content"`
	Actions    []Action `json:"actions"`
	ModelName  string   `json:"model_name,omitempty"`
	TokensUsed int      `json:"tokens_used"`
	Fallback   bool     `json:"fallback"`
}

type ChatService interface {
	SendMessage(ctx context.Context, userID uuid.UUID, in SendMessageInput) (*ChatReply, error)
	History(ctx context.Context, userID uuid.UUID, sessionID string, limit int) ([]*types.Conversation, error)
	Sessions(ctx context.Context, userID uuid.UUID, limit int) ([]repos.SessionSummary, error)
	DeleteSession(ctx context.Context, userID uuid.UUID, sessionID string) (int64, error)
}

type chatService struct {
	db            *gorm.DB
	log           *logger.Logger
	conversations repos.ConversationRepo
	usage         repos.UsageRepo
	configs       repos.UserConfigRepo
	providers     ProviderService
}

func NewChatService(db *gorm.DB, log *logger.Logger, conversations repos.ConversationRepo, usage repos.UsageRepo, configs repos.UserConfigRepo, providers ProviderService) ChatService {
	return &chatService{
		db:            db,
		log:           log.With("service", "ChatService"),
		conversations: conversations,
		usage:         usage,
		configs:       configs,
		providers:     providers,
	}
}

// SendMessage runs one chat turn: persist the user message, assemble
// history, call the user's provider with the tool catalog, decode the
// tool calls into UI actions and persist the reply. When no provider
// is configured the keyword rules answer instead, so the scene keeps
// working offline.
func (s *chatService) SendMessage(ctx context.Context, userID uuid.UUID, in SendMessageInput) (*ChatReply, error) {
	if in.Temperature != nil && (*in.Temperature < 0 || *in.Temperature > 2) {
		return nil, apierr.BadRequest("INVALID_TEMPERATURE", "temperature must be between 0 and 2")
	}

	sessionID := in.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	dbc := dbctx.Context{Ctx: ctx}
	userMsg, err := s.conversations.Create(dbc, &types.Conversation{
		ID:        uuid.New(),
		UserID:    userID,
		SessionID: sessionID,
		Role:      "user",
		Content:   in.Message,
	})
	if err != nil {
		return nil, fmt.Errorf("persist user message: %w", err)
	}

	model, temperature := s.resolvePreferences(ctx, userID, in)

	resolved, err := s.providers.Resolve(ctx, userID, in.ProviderCode, model)
	if err != nil {
		var apiErr *apierr.Error
		if errors.As(err, &apiErr) && (apiErr.Code == "NO_PROVIDER" || apiErr.Code == "PROVIDER_DISABLED") {
			return s.fallbackReply(ctx, userID, sessionID, in.Message)
		}
		return nil, err
	}

	messages, err := s.assembleMessages(ctx, userID, sessionID, userMsg.ID, in.Message)
	if err != nil {
		return nil, err
	}

	completion, err := resolved.Provider.ChatCompletion(ctx, ai.ChatRequest{
		Model:       resolved.Model,
		Messages:    messages,
		Tools:       ChatTools(),
		Temperature: temperature,
	})
	if err != nil {
		s.log.Error("Provider call failed", "provider", resolved.Provider.Code(), "error", err)
		s.persistAssistant(ctx, userID, sessionID, "抱歉，AI服务暂时不可用，请稍后再试。", nil, resolved.Model, 0)
		return nil, apierr.New(http.StatusBadGateway, "PROVIDER_ERROR", fmt.Errorf("provider %s: %w", resolved.Provider.Code(), err))
	}

	actions := DecodeActions(completion.ToolCalls)
	content := completion.Content
	if content == "" && len(actions) > 0 {
		content = "好的，正在为你执行。"
	}

	s.persistAssistant(ctx, userID, sessionID, content, actions, completion.Model, completion.Usage.TotalTokens)

	if err := s.usage.Accumulate(dbc, userID, resolved.Credential.ProviderCode, completion.Model, time.Now(),
		completion.Usage.PromptTokens, completion.Usage.CompletionTokens); err != nil {
		s.log.Warn("Failed to record usage", "error", err)
	}

	return &ChatReply{
		SessionID:  sessionID,
		Content:    content,
		Actions:    actions,
		ModelName:  completion.Model,
		TokensUsed: completion.Usage.TotalTokens,
	}, nil
}

// resolvePreferences fills model and temperature from the user's stored
// chat config when the request omits them. A missing or unreadable
// config falls back to defaults rather than failing the turn.
func (s *chatService) resolvePreferences(ctx context.Context, userID uuid.UUID, in SendMessageInput) (string, float64) {
	model := in.Model
	temperature := 0.7
	if in.Temperature != nil {
		temperature = *in.Temperature
	}
	if model != "" && in.Temperature != nil {
		return model, temperature
	}

	cfg, err := s.configs.GetByUserID(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Warn("Failed to load user config", "error", err)
		}
		return model, temperature
	}
	if model == "" {
		model = cfg.ModelName
	}
	if in.Temperature == nil && cfg.Temperature > 0 {
		temperature = cfg.Temperature
	}
	return model, temperature
}

// assembleMessages builds system prompt + chronological history +
// current message. The just-persisted user row is excluded from the
// history so the message is not sent twice. The system prompt rides
// along only once the session has history.
func (s *chatService) assembleMessages(ctx context.Context, userID uuid.UUID, sessionID string, currentID uuid.UUID, current string) ([]ai.Message, error) {
	rows, err := s.conversations.ListRecent(dbctx.Context{Ctx: ctx}, userID, sessionID, historyWindow)
	if err != nil {
		return nil, err
	}

	history := make([]ai.Message, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		if rows[i].ID == currentID {
			continue
		}
		history = append(history, ai.Message{Role: rows[i].Role, Content: rows[i].Content})
	}

	messages := make([]ai.Message, 0, len(history)+2)
	if len(history) > 0 {
		messages = append(messages, ai.Message{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, history...)
	messages = append(messages, ai.Message{Role: "user", Content: current})
	return messages, nil
}

func (s *chatService) fallbackReply(ctx context.Context, userID uuid.UUID, sessionID, message string) (*ChatReply, error) {
	reply, matched := matchRules(message)
	if !matched {
		reply = &ruleReply{
			Content: "尚未配置AI服务商。请在设置中添加服务商密钥，或使用简单指令，例如：飞到北京、查询附近的医院、上海天气怎么样。",
			Actions: []Action{},
		}
	}

	s.persistAssistant(ctx, userID, sessionID, reply.Content, reply.Actions, "rules", 0)

	return &ChatReply{
		SessionID: sessionID,
		Content:   reply.Content,
		Actions:   reply.Actions,
		ModelName: "rules",
		Fallback:  true,
	}, nil
}

// persistAssistant is best-effort: the reply was already produced, so
// a failed write must not turn it into a user-facing error.
func (s *chatService) persistAssistant(ctx context.Context, userID uuid.UUID, sessionID, content string, actions []Action, model string, tokens int) {
	var actionsJSON datatypes.JSON
	if len(actions) > 0 {
		if raw, err := json.Marshal(actions); err == nil {
			actionsJSON = datatypes.JSON(raw)
		}
	}

	_, err := s.conversations.Create(dbctx.Context{Ctx: ctx}, &types.Conversation{
		ID:         uuid.New(),
		UserID:     userID,
		SessionID:  sessionID,
		Role:       "assistant",
		Content:    content,
		ModelName:  model,
		TokensUsed: tokens,
		Actions:    actionsJSON,
	})
	if err != nil {
		s.log.Warn("Failed to persist assistant message", "error", err)
	}
}

func (s *chatService) History(ctx context.Context, userID uuid.UUID, sessionID string, limit int) ([]*types.Conversation, error) {
	return s.conversations.ListBySession(dbctx.Context{Ctx: ctx}, userID, sessionID, limit)
}

func (s *chatService) Sessions(ctx context.Context, userID uuid.UUID, limit int) ([]repos.SessionSummary, error) {
	return s.conversations.ListSessions(dbctx.Context{Ctx: ctx}, userID, limit)
}

func (s *chatService) DeleteSession(ctx context.Context, userID uuid.UUID, sessionID string) (int64, error) {
	return s.conversations.DeleteSession(dbctx.Context{Ctx: ctx}, userID, sessionID)
}
