package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/urbantwin/citytwin-backend/internal/ai"
	aiRepo "github.com/urbantwin/citytwin-backend/internal/data/repos/ai"
	types "github.com/urbantwin/citytwin-backend/internal/domain"
	"github.com/urbantwin/citytwin-backend/internal/pkg/dbctx"
	"github.com/urbantwin/citytwin-backend/internal/platform/apierr"
)

type fakeConversationRepo struct {
	rows []*types.Conversation
}

func (f *fakeConversationRepo) Create(_ dbctx.Context, row *types.Conversation) (*types.Conversation, error) {
	row.CreatedAt = time.Now().Add(time.Duration(len(f.rows)) * time.Millisecond)
	f.rows = append(f.rows, row)
	return row, nil
}

func (f *fakeConversationRepo) ListRecent(_ dbctx.Context, userID uuid.UUID, sessionID string, limit int) ([]*types.Conversation, error) {
	out := []*types.Conversation{}
	for i := len(f.rows) - 1; i >= 0 && len(out) < limit; i-- {
		if f.rows[i].UserID == userID && f.rows[i].SessionID == sessionID {
			out = append(out, f.rows[i])
		}
	}
	return out, nil
}

func (f *fakeConversationRepo) ListBySession(_ dbctx.Context, userID uuid.UUID, sessionID string, _ int) ([]*types.Conversation, error) {
	out := []*types.Conversation{}
	for _, r := range f.rows {
		if r.UserID == userID && r.SessionID == sessionID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeConversationRepo) ListSessions(_ dbctx.Context, _ uuid.UUID, _ int) ([]aiRepo.SessionSummary, error) {
	return nil, nil
}

func (f *fakeConversationRepo) DeleteSession(_ dbctx.Context, userID uuid.UUID, sessionID string) (int64, error) {
	kept := f.rows[:0]
	var deleted int64
	for _, r := range f.rows {
		if r.UserID == userID && r.SessionID == sessionID {
			deleted++
			continue
		}
		kept = append(kept, r)
	}
	f.rows = kept
	return deleted, nil
}

type fakeUserConfigRepo struct {
	cfg *types.UserConfig
}

func (f *fakeUserConfigRepo) Create(_ dbctx.Context, row *types.UserConfig) (*types.UserConfig, error) {
	f.cfg = row
	return row, nil
}

func (f *fakeUserConfigRepo) GetByUserID(_ dbctx.Context, _ uuid.UUID) (*types.UserConfig, error) {
	if f.cfg == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.cfg, nil
}

func (f *fakeUserConfigRepo) UpdateFields(_ dbctx.Context, _ uuid.UUID, _ map[string]interface{}) error {
	return nil
}

type usageCall struct {
	provider, model string
	in, out         int
}

type fakeUsageRepo struct {
	calls []usageCall
}

func (f *fakeUsageRepo) Accumulate(_ dbctx.Context, _ uuid.UUID, providerCode, modelName string, _ time.Time, tokensIn, tokensOut int) error {
	f.calls = append(f.calls, usageCall{provider: providerCode, model: modelName, in: tokensIn, out: tokensOut})
	return nil
}

func (f *fakeUsageRepo) ListByUser(_ dbctx.Context, _ uuid.UUID, _ time.Time) ([]*types.UsageStat, error) {
	return nil, nil
}

type fakeProvider struct {
	completion *ai.ChatCompletion
	err        error
	lastReq    ai.ChatRequest
}

func (f *fakeProvider) Code() string { return "zhipu" }
func (f *fakeProvider) Name() string { return "智谱AI" }

func (f *fakeProvider) ChatCompletion(_ context.Context, req ai.ChatRequest) (*ai.ChatCompletion, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.completion, nil
}

func (f *fakeProvider) ListModels(context.Context) ([]ai.ModelInfo, error) { return nil, nil }

type fakeProviderService struct {
	ProviderService
	provider   *fakeProvider
	resolveErr error
	lastModel  string
}

func (f *fakeProviderService) Resolve(_ context.Context, _ uuid.UUID, _ string, model string) (*ResolvedProvider, error) {
	f.lastModel = model
	if f.resolveErr != nil {
		return nil, f.resolveErr
	}
	resolvedModel := model
	if resolvedModel == "" {
		resolvedModel = "glm-4-flash"
	}
	return &ResolvedProvider{
		Provider:   f.provider,
		Credential: &types.ProviderCredential{ProviderCode: "zhipu"},
		Model:      resolvedModel,
	}, nil
}

type chatFixture struct {
	svc       ChatService
	conv      *fakeConversationRepo
	usage     *fakeUsageRepo
	configs   *fakeUserConfigRepo
	providers *fakeProviderService
}

func newChatFixture(t *testing.T, provider *fakeProvider, resolveErr error) chatFixture {
	conv := &fakeConversationRepo{}
	usage := &fakeUsageRepo{}
	configs := &fakeUserConfigRepo{}
	providers := &fakeProviderService{provider: provider, resolveErr: resolveErr}
	svc := NewChatService(nil, newTestLogger(t), conv, usage, configs, providers)
	return chatFixture{svc: svc, conv: conv, usage: usage, configs: configs, providers: providers}
}

func TestSendMessagePersistsTurnAndUsage(t *testing.T) {
	provider := &fakeProvider{completion: &ai.ChatCompletion{
		Content: "正在飞往北京",
		ToolCalls: []ai.ToolCall{{Function: ai.ToolCallFunction{
			Name:      ActionCameraFlyTo,
			Arguments: `{"city":"北京","longitude":116.4074,"latitude":39.9042}`,
		}}},
		FinishReason: "tool_calls",
		Model:        "glm-4-flash",
		Usage:        ai.Usage{PromptTokens: 100, CompletionTokens: 20, TotalTokens: 120},
	}}
	fx := newChatFixture(t, provider, nil)
	conv, usage := fx.conv, fx.usage

	userID := uuid.New()
	reply, err := fx.svc.SendMessage(context.Background(), userID, SendMessageInput{Message: "飞到北京"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if reply.SessionID == "" {
		t.Fatal("expected generated session id")
	}
	if len(reply.Actions) != 1 || reply.Actions[0].Type != ActionCameraFlyTo {
		t.Fatalf("actions=%+v", reply.Actions)
	}
	if reply.TokensUsed != 120 {
		t.Fatalf("tokens=%d", reply.TokensUsed)
	}
	if reply.Fallback {
		t.Fatal("should not be fallback")
	}

	if len(conv.rows) != 2 {
		t.Fatalf("persisted rows=%d", len(conv.rows))
	}
	if conv.rows[0].Role != "user" || conv.rows[1].Role != "assistant" {
		t.Fatalf("roles=%s,%s", conv.rows[0].Role, conv.rows[1].Role)
	}
	if len(conv.rows[1].Actions) == 0 {
		t.Fatal("assistant actions not persisted")
	}

	if len(usage.calls) != 1 {
		t.Fatalf("usage calls=%d", len(usage.calls))
	}
	if usage.calls[0].provider != "zhipu" || usage.calls[0].in != 100 || usage.calls[0].out != 20 {
		t.Fatalf("usage=%+v", usage.calls[0])
	}
}

func TestSendMessageHistoryExcludesCurrentAndIsChronological(t *testing.T) {
	provider := &fakeProvider{completion: &ai.ChatCompletion{Content: "ok", Model: "glm-4-flash"}}
	fx := newChatFixture(t, provider, nil)

	userID := uuid.New()
	testSeed := func(role, content string) {
		_, _ = fx.conv.Create(dbctx.Context{}, &types.Conversation{
			ID: uuid.New(), UserID: userID, SessionID: "s1", Role: role, Content: content,
		})
	}
	testSeed("user", "第一条")
	testSeed("assistant", "第一条回复")

	if _, err := fx.svc.SendMessage(context.Background(), userID, SendMessageInput{SessionID: "s1", Message: "第二条"}); err != nil {
		t.Fatalf("send: %v", err)
	}

	msgs := provider.lastReq.Messages
	if msgs[0].Role != "system" {
		t.Fatalf("first=%s", msgs[0].Role)
	}
	// system + two history turns + current.
	if len(msgs) != 4 {
		t.Fatalf("len=%d: %+v", len(msgs), msgs)
	}
	if msgs[1].Content != "第一条" || msgs[2].Content != "第一条回复" {
		t.Fatalf("history out of order: %+v", msgs)
	}
	if msgs[3].Content != "第二条" {
		t.Fatalf("current=%q", msgs[3].Content)
	}
	if len(provider.lastReq.Tools) == 0 {
		t.Fatal("tool catalog not sent")
	}
}

func TestSendMessageFallbackWithoutProvider(t *testing.T) {
	resolveErr := apierr.New(http.StatusPreconditionFailed, "NO_PROVIDER", errors.New("none"))
	fx := newChatFixture(t, nil, resolveErr)
	conv := fx.conv

	reply, err := fx.svc.SendMessage(context.Background(), uuid.New(), SendMessageInput{Message: "飞到上海"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if !reply.Fallback {
		t.Fatal("expected fallback reply")
	}
	if len(reply.Actions) != 1 || reply.Actions[0].Type != ActionCameraFlyTo {
		t.Fatalf("actions=%+v", reply.Actions)
	}
	if len(conv.rows) != 2 {
		t.Fatalf("rows=%d", len(conv.rows))
	}
	if conv.rows[1].ModelName != "rules" {
		t.Fatalf("model=%q", conv.rows[1].ModelName)
	}
}

func TestSendMessageProviderErrorPersistsApology(t *testing.T) {
	provider := &fakeProvider{err: fmt.Errorf("upstream down")}
	fx := newChatFixture(t, provider, nil)
	conv := fx.conv

	_, err := fx.svc.SendMessage(context.Background(), uuid.New(), SendMessageInput{Message: "你好"})
	var apiErr *apierr.Error
	if !errors.As(err, &apiErr) || apiErr.Code != "PROVIDER_ERROR" {
		t.Fatalf("err=%v", err)
	}

	if len(conv.rows) != 2 {
		t.Fatalf("rows=%d", len(conv.rows))
	}
	if conv.rows[1].Role != "assistant" || conv.rows[1].Content == "" {
		t.Fatalf("assistant row=%+v", conv.rows[1])
	}
}

func TestSendMessageFirstTurnHasNoSystemPrompt(t *testing.T) {
	provider := &fakeProvider{completion: &ai.ChatCompletion{Content: "你好", Model: "glm-4-flash"}}
	fx := newChatFixture(t, provider, nil)

	if _, err := fx.svc.SendMessage(context.Background(), uuid.New(), SendMessageInput{Message: "你好"}); err != nil {
		t.Fatalf("send: %v", err)
	}

	msgs := provider.lastReq.Messages
	if len(msgs) != 1 {
		t.Fatalf("len=%d: %+v", len(msgs), msgs)
	}
	if msgs[0].Role != "user" || msgs[0].Content != "你好" {
		t.Fatalf("first turn message=%+v", msgs[0])
	}
}

func TestSendMessageUsesStoredPreferences(t *testing.T) {
	provider := &fakeProvider{completion: &ai.ChatCompletion{Content: "ok", Model: "glm-4-plus"}}
	fx := newChatFixture(t, provider, nil)
	fx.configs.cfg = &types.UserConfig{ModelName: "glm-4-plus", Temperature: 0.3}

	if _, err := fx.svc.SendMessage(context.Background(), uuid.New(), SendMessageInput{Message: "你好"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if fx.providers.lastModel != "glm-4-plus" {
		t.Fatalf("model=%q", fx.providers.lastModel)
	}
	if provider.lastReq.Temperature != 0.3 {
		t.Fatalf("temperature=%f", provider.lastReq.Temperature)
	}
}

func TestSendMessageRequestOverridesStoredPreferences(t *testing.T) {
	provider := &fakeProvider{completion: &ai.ChatCompletion{Content: "ok", Model: "glm-4-flash"}}
	fx := newChatFixture(t, provider, nil)
	fx.configs.cfg = &types.UserConfig{ModelName: "glm-4-plus", Temperature: 0.3}

	temp := 1.2
	in := SendMessageInput{Message: "你好", Model: "glm-4-flash", Temperature: &temp}
	if _, err := fx.svc.SendMessage(context.Background(), uuid.New(), in); err != nil {
		t.Fatalf("send: %v", err)
	}
	if fx.providers.lastModel != "glm-4-flash" {
		t.Fatalf("model=%q", fx.providers.lastModel)
	}
	if provider.lastReq.Temperature != 1.2 {
		t.Fatalf("temperature=%f", provider.lastReq.Temperature)
	}
}

func TestSendMessageRejectsOutOfRangeTemperature(t *testing.T) {
	fx := newChatFixture(t, &fakeProvider{}, nil)

	temp := 3.0
	_, err := fx.svc.SendMessage(context.Background(), uuid.New(), SendMessageInput{Message: "你好", Temperature: &temp})
	var apiErr *apierr.Error
	if !errors.As(err, &apiErr) || apiErr.Code != "INVALID_TEMPERATURE" {
		t.Fatalf("err=%v", err)
	}
}

func TestSendMessageDefaultsWithoutStoredConfig(t *testing.T) {
	provider := &fakeProvider{completion: &ai.ChatCompletion{Content: "ok", Model: "glm-4-flash"}}
	fx := newChatFixture(t, provider, nil)

	if _, err := fx.svc.SendMessage(context.Background(), uuid.New(), SendMessageInput{Message: "你好"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if fx.providers.lastModel != "" {
		t.Fatalf("model=%q should be left to the credential default", fx.providers.lastModel)
	}
	if provider.lastReq.Temperature != 0.7 {
		t.Fatalf("temperature=%f", provider.lastReq.Temperature)
	}
}
