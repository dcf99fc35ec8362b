package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai2sql/internal/adapter/llm"
	"ai2sql/internal/dto"
	"ai2sql/internal/pkg/auth"
	"ai2sql/pkg/constants"
	pkgErrors "ai2sql/pkg/errors"
)

func TestChatVisibility(t *testing.T) {
	env := newTestEnv(t)
	p := env.project(t, "Analytics")
	alice := env.member(t, p.ID, "alice@corp.io", auth.ProjectRoleViewer)
	bob := env.member(t, p.ID, "bob@corp.io", auth.ProjectRoleViewer)
	lead := env.member(t, p.ID, "lead@corp.io", auth.ProjectRoleAdmin)

	chat, err := env.svc.Chat.Create(alice.ID, p.ID, &dto.CreateChatRequest{Name: "  "})
	require.NoError(t, err)
	assert.Equal(t, constants.DefaultChatName, chat.Name)
	_, err = env.svc.Chat.Create(bob.ID, p.ID, &dto.CreateChatRequest{Name: "Bob's"})
	require.NoError(t, err)

	mine, err := env.svc.Chat.List(alice.ID, p.ID, &dto.ChatListQuery{})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, chat.ID, mine[0].ID)

	_, err = env.svc.Chat.List(alice.ID, p.ID, &dto.ChatListQuery{Scope: "all"})
	assert.ErrorIs(t, err, pkgErrors.ErrForbidden)

	all, err := env.svc.Chat.List(lead.ID, p.ID, &dto.ChatListQuery{Scope: "all"})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = env.svc.Chat.Get(bob.ID, p.ID, chat.ID)
	assert.Equal(t, pkgErrors.CodeNotFound, pkgErrors.CodeOf(err))
	_, err = env.svc.Chat.Rename(bob.ID, p.ID, chat.ID, &dto.RenameChatRequest{Name: "mine now"})
	assert.Equal(t, pkgErrors.CodeNotFound, pkgErrors.CodeOf(err))

	detail, err := env.svc.Chat.Get(lead.ID, p.ID, chat.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, detail.UserID)

	// admins may read but never write into someone else's chat
	_, err = env.svc.Chat.SendMessage(context.Background(), lead.ID, p.ID, chat.ID, &dto.SendMessageRequest{Content: "hi"})
	assert.Equal(t, pkgErrors.CodeNotFound, pkgErrors.CodeOf(err))

	renamed, err := env.svc.Chat.Rename(alice.ID, p.ID, chat.ID, &dto.RenameChatRequest{Name: " Revenue "})
	require.NoError(t, err)
	assert.Equal(t, "Revenue", renamed.Name)

	other := env.project(t, "Billing")
	_, err = env.svc.Chat.Get(env.root.ID, other.ID, chat.ID)
	assert.Equal(t, pkgErrors.CodeNotFound, pkgErrors.CodeOf(err))

	require.NoError(t, env.svc.Chat.Delete(alice.ID, p.ID, chat.ID))
	_, err = env.svc.Chat.Get(alice.ID, p.ID, chat.ID)
	assert.Equal(t, pkgErrors.CodeNotFound, pkgErrors.CodeOf(err))
}

func TestSendMessageBuildsContext(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.project(t, "Analytics")
	alice := env.member(t, p.ID, "alice@corp.io", auth.ProjectRoleViewer)
	bob := env.member(t, p.ID, "bob@corp.io", auth.ProjectRoleViewer)

	createConnection(t, env, p.ID)
	env.inspector.tables = shopTables
	_, err := env.svc.Metadata.Extract(ctx, env.root.ID, p.ID)
	require.NoError(t, err)

	seedExamples(t, env, p.ID,
		"total order amount per user", "SELECT user_id, sum(amount) FROM orders GROUP BY 1",
		"list tables", "SELECT 1",
	)
	note, err := env.svc.Note.Create(alice.ID, p.ID, &dto.NoteRequest{Title: "Amounts", Content: "stored in cents"})
	require.NoError(t, err)
	foreign, err := env.svc.Note.Create(bob.ID, p.ID, &dto.NoteRequest{Title: "Bob", Content: "private"})
	require.NoError(t, err)

	chat, err := env.svc.Chat.Create(alice.ID, p.ID, &dto.CreateChatRequest{})
	require.NoError(t, err)

	resp, err := env.svc.Chat.SendMessage(ctx, alice.ID, p.ID, chat.ID, &dto.SendMessageRequest{
		Content: " order amount per user ",
		NoteIDs: []int64{note.ID, note.ID, foreign.ID},
	})
	require.NoError(t, err)

	require.NotNil(t, resp.UserMessage)
	assert.Equal(t, "order amount per user", resp.UserMessage.Content)
	assert.Equal(t, constants.MessageRoleUser, resp.UserMessage.Role)
	assert.Equal(t, constants.MessageRoleAssistant, resp.AssistantMessage.Role)
	assert.Equal(t, "answer", resp.AssistantMessage.Content)
	require.NotNil(t, resp.AssistantMessage.SQLQuery)
	assert.Equal(t, "SELECT 1", *resp.AssistantMessage.SQLQuery)

	req := env.generator.last()
	require.NotNil(t, req)
	assert.Equal(t, "order amount per user", req.Question)
	assert.Equal(t, constants.DriverPostgres, req.Dialect)
	assert.Empty(t, req.History)
	assert.Equal(t, []llm.Note{{Title: "Amounts", Content: "stored in cents"}}, req.Notes)
	require.Len(t, req.Examples, 1)
	assert.Equal(t, "total order amount per user", req.Examples[0].Question)
	assert.Len(t, req.Tables, 2)
	orders, ok := lo.Find(req.Tables, func(tb llm.Table) bool { return tb.Name == "public.orders" })
	require.True(t, ok)
	assert.Equal(t, "public.users.id", orders.Columns[1].References)

	require.NotNil(t, resp.Debug)
	assert.Equal(t, RetrievalLexical, resp.Debug.Method)
	assert.Equal(t, "fake", resp.Debug.Generator)
	assert.Equal(t, 1, resp.Debug.Notes)
	assert.Equal(t, 2, resp.Debug.Tables)
	assert.Len(t, resp.Debug.Examples, 1)

	_, err = env.svc.Settings.Update(alice.ID, &dto.UpdateAppSettingsRequest{DebugMode: lo.ToPtr(false)})
	require.NoError(t, err)
	resp, err = env.svc.Chat.SendMessage(ctx, alice.ID, p.ID, chat.ID, &dto.SendMessageRequest{Content: "and per month?"})
	require.NoError(t, err)
	assert.Nil(t, resp.Debug)

	req = env.generator.last()
	assert.Equal(t, []llm.Turn{
		{Role: constants.MessageRoleUser, Content: "order amount per user"},
		{Role: constants.MessageRoleAssistant, Content: "answer"},
	}, req.History)
	assert.Empty(t, req.Notes)
}

func TestSendMessageHistoryIsBounded(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.project(t, "Analytics")
	chat, err := env.svc.Chat.Create(env.root.ID, p.ID, &dto.CreateChatRequest{})
	require.NoError(t, err)

	for i := 1; i <= 4; i++ {
		_, err := env.svc.Chat.SendMessage(ctx, env.root.ID, p.ID, chat.ID, &dto.SendMessageRequest{Content: fmt.Sprintf("q%d", i)})
		require.NoError(t, err)
	}

	req := env.generator.last()
	require.Len(t, req.History, env.cfg.LLM.HistorySize)
	assert.Equal(t, "q2", req.History[0].Content)
	assert.Equal(t, "q4", req.Question)
}

func TestSendMessageKeepsQuestionOnFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.project(t, "Analytics")
	chat, err := env.svc.Chat.Create(env.root.ID, p.ID, &dto.CreateChatRequest{})
	require.NoError(t, err)

	_, err = env.svc.Chat.SendMessage(ctx, env.root.ID, p.ID, chat.ID, &dto.SendMessageRequest{Content: "   "})
	assert.Equal(t, pkgErrors.CodeValidationError, pkgErrors.CodeOf(err))

	env.generator.err = errors.New("quota exceeded")
	_, err = env.svc.Chat.SendMessage(ctx, env.root.ID, p.ID, chat.ID, &dto.SendMessageRequest{Content: "count users"})
	assert.Equal(t, pkgErrors.CodeUpstreamError, pkgErrors.CodeOf(err))

	detail, err := env.svc.Chat.Get(env.root.ID, p.ID, chat.ID)
	require.NoError(t, err)
	require.Len(t, detail.Messages, 1)
	assert.Equal(t, "count users", detail.Messages[0].Content)

	// regenerate answers the dangling question
	env.generator.err = nil
	resp, err := env.svc.Chat.Regenerate(ctx, env.root.ID, p.ID, chat.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, resp.UserMessage)
	assert.Equal(t, "answer", resp.AssistantMessage.Content)
	assert.Equal(t, "count users", env.generator.last().Question)

	// and replaces the trailing answer on the next call
	env.generator.result = &llm.Result{Content: "better answer", SQL: "SELECT count(*) FROM users"}
	resp, err = env.svc.Chat.Regenerate(ctx, env.root.ID, p.ID, chat.ID, &dto.RegenerateRequest{})
	require.NoError(t, err)
	assert.Equal(t, "better answer", resp.AssistantMessage.Content)
	assert.Empty(t, env.generator.last().History)

	detail, err = env.svc.Chat.Get(env.root.ID, p.ID, chat.ID)
	require.NoError(t, err)
	require.Len(t, detail.Messages, 2)
	assert.Equal(t, "better answer", detail.Messages[1].Content)
}

func TestRegenerateEmptyChat(t *testing.T) {
	env := newTestEnv(t)
	p := env.project(t, "Analytics")
	chat, err := env.svc.Chat.Create(env.root.ID, p.ID, &dto.CreateChatRequest{})
	require.NoError(t, err)

	_, err = env.svc.Chat.Regenerate(context.Background(), env.root.ID, p.ID, chat.ID, nil)
	assert.Equal(t, pkgErrors.CodeBadRequest, pkgErrors.CodeOf(err))
}
