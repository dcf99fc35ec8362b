package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"ai2sql/internal/adapter/llm"
	"ai2sql/internal/dto"
	"ai2sql/internal/model"
	"ai2sql/internal/pkg/auth"
	"ai2sql/internal/pkg/logger"
	"ai2sql/internal/repository"
	"ai2sql/pkg/constants"
	pkgErrors "ai2sql/pkg/errors"
)

const (
	chatNameMaxLen       = 100
	messageContentMaxLen = 10000
	chatScopeAll         = "all"
)

type ChatService interface {
	// List returns the caller's chats, or every chat of the project for scope=all
	List(userID, projectID int64, query *dto.ChatListQuery) ([]*dto.ChatResponse, error)
	Create(userID, projectID int64, req *dto.CreateChatRequest) (*dto.ChatResponse, error)
	Get(userID, projectID, chatID int64) (*dto.ChatDetailResponse, error)
	Rename(userID, projectID, chatID int64, req *dto.RenameChatRequest) (*dto.ChatResponse, error)
	Delete(userID, projectID, chatID int64) error
	// SendMessage stores the question and the generated answer. The question is kept when generation fails.
	SendMessage(ctx context.Context, userID, projectID, chatID int64, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error)
	// Regenerate drops the trailing answer and answers the last question again
	Regenerate(ctx context.Context, userID, projectID, chatID int64, req *dto.RegenerateRequest) (*dto.SendMessageResponse, error)
}

type chatService struct {
	authz       AuthorizationService
	repo        repository.ChatRepository
	messageRepo repository.MessageRepository
	noteRepo    repository.NoteRepository
	tableRepo   repository.TableMetadataRepository
	connRepo    repository.ConnectionRepository
	examples    SQLExampleService
	settings    SettingsService
	generator   llm.Generator
	historySize int
}

func NewChatService(
	authz AuthorizationService,
	repo repository.ChatRepository,
	messageRepo repository.MessageRepository,
	noteRepo repository.NoteRepository,
	tableRepo repository.TableMetadataRepository,
	connRepo repository.ConnectionRepository,
	examples SQLExampleService,
	settings SettingsService,
	generator llm.Generator,
	historySize int,
) ChatService {
	return &chatService{
		authz:       authz,
		repo:        repo,
		messageRepo: messageRepo,
		noteRepo:    noteRepo,
		tableRepo:   tableRepo,
		connRepo:    connRepo,
		examples:    examples,
		settings:    settings,
		generator:   generator,
		historySize: historySize,
	}
}

func (s *chatService) List(userID, projectID int64, query *dto.ChatListQuery) ([]*dto.ChatResponse, error) {
	pa, err := s.authz.RequireProject(userID, projectID, auth.PermChatView)
	if err != nil {
		return nil, err
	}

	owner := &userID
	if query != nil && query.Scope == chatScopeAll {
		if !pa.Access.Allows(auth.PermChatViewAll) {
			return nil, pkgErrors.ErrForbidden
		}
		owner = nil
	}

	chats, err := s.repo.List(projectID, owner)
	if err != nil {
		return nil, err
	}

	return lo.Map(chats, func(c *model.Chat, _ int) *dto.ChatResponse {
		return toChatResponse(c)
	}), nil
}

func (s *chatService) Create(userID, projectID int64, req *dto.CreateChatRequest) (*dto.ChatResponse, error) {
	if _, err := s.authz.RequireProject(userID, projectID, auth.PermChatCreate); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = constants.DefaultChatName
	}
	if utf8.RuneCountInString(name) > chatNameMaxLen {
		return nil, pkgErrors.New(pkgErrors.CodeValidationError, "chat name must be at most 100 characters")
	}

	chat := &model.Chat{
		ProjectID: projectID,
		UserID:    userID,
		Name:      name,
	}
	if err := s.repo.Create(chat); err != nil {
		return nil, err
	}

	return toChatResponse(chat), nil
}

func (s *chatService) Get(userID, projectID, chatID int64) (*dto.ChatDetailResponse, error) {
	pa, err := s.authz.RequireProject(userID, projectID, auth.PermChatView)
	if err != nil {
		return nil, err
	}

	chat, err := s.visible(pa, chatID)
	if err != nil {
		return nil, err
	}

	messages, err := s.messageRepo.ListByChat(chat.ID)
	if err != nil {
		return nil, err
	}

	return &dto.ChatDetailResponse{
		ChatResponse: *toChatResponse(chat),
		Messages:     toMessageResponses(messages),
	}, nil
}

func (s *chatService) Rename(userID, projectID, chatID int64, req *dto.RenameChatRequest) (*dto.ChatResponse, error) {
	pa, err := s.authz.RequireProject(userID, projectID, auth.PermChatUpdate)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, pkgErrors.New(pkgErrors.CodeValidationError, "chat name is required")
	}
	if utf8.RuneCountInString(name) > chatNameMaxLen {
		return nil, pkgErrors.New(pkgErrors.CodeValidationError, "chat name must be at most 100 characters")
	}

	chat, err := s.visible(pa, chatID)
	if err != nil {
		return nil, err
	}

	chat.Name = name
	if err := s.repo.Update(chat); err != nil {
		return nil, err
	}

	return toChatResponse(chat), nil
}

func (s *chatService) Delete(userID, projectID, chatID int64) error {
	pa, err := s.authz.RequireProject(userID, projectID, auth.PermChatDelete)
	if err != nil {
		return err
	}

	chat, err := s.visible(pa, chatID)
	if err != nil {
		return err
	}

	return s.repo.Delete(chat.ID)
}

func (s *chatService) SendMessage(ctx context.Context, userID, projectID, chatID int64, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error) {
	pa, err := s.authz.RequireProject(userID, projectID, auth.PermChatUpdate)
	if err != nil {
		return nil, err
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, pkgErrors.New(pkgErrors.CodeValidationError, "message content is required")
	}
	if utf8.RuneCountInString(content) > messageContentMaxLen {
		return nil, pkgErrors.New(pkgErrors.CodeValidationError, "message content must be at most 10000 characters")
	}

	chat, err := s.owned(pa, chatID)
	if err != nil {
		return nil, err
	}

	question := &model.Message{
		ChatID:  chat.ID,
		Role:    constants.MessageRoleUser,
		Content: content,
	}
	if err := s.messageRepo.Create(question); err != nil {
		return nil, err
	}
	s.touch(chat.ID)

	history, err := s.messageRepo.Last(chat.ID, s.historySize+1)
	if err != nil {
		return nil, err
	}
	history = lo.Filter(history, func(m *model.Message, _ int) bool { return m.ID != question.ID })

	resp, err := s.answer(ctx, pa, chat, question, history, req.NoteIDs)
	if err != nil {
		return nil, err
	}
	resp.UserMessage = toMessageResponse(question)
	return resp, nil
}

func (s *chatService) Regenerate(ctx context.Context, userID, projectID, chatID int64, req *dto.RegenerateRequest) (*dto.SendMessageResponse, error) {
	pa, err := s.authz.RequireProject(userID, projectID, auth.PermChatUpdate)
	if err != nil {
		return nil, err
	}

	chat, err := s.owned(pa, chatID)
	if err != nil {
		return nil, err
	}

	messages, err := s.messageRepo.ListByChat(chat.ID)
	if err != nil {
		return nil, err
	}

	if n := len(messages); n > 0 && messages[n-1].Role == constants.MessageRoleAssistant {
		if err := s.messageRepo.Delete(messages[n-1].ID); err != nil {
			return nil, err
		}
		messages = messages[:n-1]
	}

	_, idx, found := lo.FindLastIndexOf(messages, func(m *model.Message) bool {
		return m.Role == constants.MessageRoleUser
	})
	if !found {
		return nil, pkgErrors.New(pkgErrors.CodeBadRequest, "chat has no question to answer")
	}

	var noteIDs []int64
	if req != nil {
		noteIDs = req.NoteIDs
	}
	return s.answer(ctx, pa, chat, messages[idx], messages[:idx], noteIDs)
}

// answer builds the generation request for question and stores the reply
func (s *chatService) answer(
	ctx context.Context,
	pa *ProjectAccess,
	chat *model.Chat,
	question *model.Message,
	history []*model.Message,
	noteIDs []int64,
) (*dto.SendMessageResponse, error) {
	userID := pa.Subject.ID
	projectID := pa.Project.ID

	if len(history) > s.historySize {
		history = history[len(history)-s.historySize:]
	}

	settings, err := s.settings.Effective(userID)
	if err != nil {
		return nil, err
	}

	notes, err := s.noteRepo.FindByIDs(projectID, userID, lo.Uniq(noteIDs))
	if err != nil {
		return nil, err
	}

	ranked, method, err := s.examples.Retrieve(ctx, projectID, question.Content, settings)
	if err != nil {
		return nil, err
	}

	tables, err := s.tableRepo.ListByProject(projectID)
	if err != nil {
		return nil, err
	}

	req := &llm.Request{
		Question: question.Content,
		Dialect:  s.dialect(projectID),
		History: lo.Map(history, func(m *model.Message, _ int) llm.Turn {
			return llm.Turn{Role: m.Role, Content: m.Content}
		}),
		Notes: lo.Map(notes, func(n *model.Note, _ int) llm.Note {
			return llm.Note{Title: n.Title, Content: n.Content}
		}),
		Tables: lo.Map(tables, func(t *model.TableMetadata, _ int) llm.Table {
			return toLLMTable(t)
		}),
	}
	for _, r := range ranked {
		req.Examples = append(req.Examples, llm.Example{
			Question: r.Item.NaturalLanguageQuery,
			SQL:      r.Item.SQLQuery,
			Score:    r.Score,
		})
	}

	result, err := s.generator.Generate(ctx, req)
	if err != nil {
		logger.Error("generate sql failed",
			zap.Int64("chat_id", chat.ID),
			zap.String("generator", s.generator.Name()),
			zap.Error(err))
		return nil, pkgErrors.Wrap(pkgErrors.CodeUpstreamError, "generate sql failed", err)
	}

	reply := &model.Message{
		ChatID:  chat.ID,
		Role:    constants.MessageRoleAssistant,
		Content: result.Content,
	}
	if sql := strings.TrimSpace(result.SQL); sql != "" {
		reply.SQLQuery = &sql
	}
	if err := s.messageRepo.Create(reply); err != nil {
		return nil, err
	}
	s.touch(chat.ID)

	resp := &dto.SendMessageResponse{AssistantMessage: toMessageResponse(reply)}
	if settings.DebugMode {
		resp.Debug = &dto.RetrievalDebug{
			Method:    method,
			Threshold: settings.RagSimilarityThreshold,
			Limit:     settings.RagExamplesCount,
			Examples:  toScoredExamples(ranked),
			Notes:     len(notes),
			Tables:    len(tables),
			History:   len(history),
			Generator: s.generator.Name(),
		}
	}
	return resp, nil
}

// visible returns a chat of the project that the caller owns or may see as admin
func (s *chatService) visible(pa *ProjectAccess, chatID int64) (*model.Chat, error) {
	chat, err := s.find(pa.Project.ID, chatID)
	if err != nil {
		return nil, err
	}
	if chat.UserID != pa.Subject.ID && !pa.Access.Allows(auth.PermChatViewAll) {
		return nil, chatNotFound()
	}
	return chat, nil
}

// owned only admits the chat's owner; messages are always written by the owner
func (s *chatService) owned(pa *ProjectAccess, chatID int64) (*model.Chat, error) {
	chat, err := s.find(pa.Project.ID, chatID)
	if err != nil {
		return nil, err
	}
	if chat.UserID != pa.Subject.ID {
		return nil, chatNotFound()
	}
	return chat, nil
}

func (s *chatService) find(projectID, chatID int64) (*model.Chat, error) {
	chat, err := s.repo.FindByID(chatID)
	if err != nil {
		if errors.Is(err, pkgErrors.ErrRecordNotFound) {
			return nil, chatNotFound()
		}
		return nil, err
	}
	if chat.ProjectID != projectID {
		return nil, chatNotFound()
	}
	return chat, nil
}

func (s *chatService) dialect(projectID int64) string {
	conn, err := s.connRepo.FindByProject(projectID)
	if err != nil {
		return ""
	}
	return conn.Driver
}

func toLLMTable(t *model.TableMetadata) llm.Table {
	table := llm.Table{Name: t.QualifiedName()}
	if t.Description != nil {
		table.Comment = *t.Description
	}
	for _, c := range t.Columns {
		table.Columns = append(table.Columns, llm.Column{
			Name:       c.Name,
			Type:       c.Type,
			Nullable:   c.Nullable,
			PrimaryKey: c.IsPrimaryKey,
			References: c.References,
			Comment:    c.Description,
		})
	}
	return table
}

func chatNotFound() error {
	return pkgErrors.New(pkgErrors.CodeNotFound, "chat not found")
}

func toChatResponse(chat *model.Chat) *dto.ChatResponse {
	return &dto.ChatResponse{
		ID:        chat.ID,
		ProjectID: chat.ProjectID,
		UserID:    chat.UserID,
		Name:      chat.Name,
		CreatedAt: chat.CreatedAt,
		UpdatedAt: chat.UpdatedAt,
	}
}

func toMessageResponse(message *model.Message) *dto.MessageResponse {
	return &dto.MessageResponse{
		ID:        message.ID,
		ChatID:    message.ChatID,
		Role:      message.Role,
		Content:   message.Content,
		SQLQuery:  message.SQLQuery,
		CreatedAt: message.CreatedAt,
	}
}

func toMessageResponses(messages []*model.Message) []*dto.MessageResponse {
	return lo.Map(messages, func(m *model.Message, _ int) *dto.MessageResponse {
		return toMessageResponse(m)
	})
}

// touch bumps the chat's updated_at; a failure only affects list ordering
func (s *chatService) touch(chatID int64) {
	if err := s.repo.Touch(chatID); err != nil {
		logger.Warn("touch chat failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}
