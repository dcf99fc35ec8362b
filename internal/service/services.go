package service

import (
	"gorm.io/gorm"

	"ai2sql/internal/adapter/dbinspect"
	"ai2sql/internal/adapter/llm"
	"ai2sql/internal/adapter/notification"
	"ai2sql/internal/pkg/auth"
	"ai2sql/internal/pkg/config"
	"ai2sql/internal/pkg/jwt"
	"ai2sql/internal/repository"
)

// Deps are the adapters shared by every service
type Deps struct {
	JWT       *jwt.Manager
	Generator llm.Generator
	Embedder  llm.Embedder // optional
	Inspector dbinspect.Inspector
	Notifier  notification.Notifier
	LDAP      LDAPService // built from auth.ldap when nil
}

// Services is the wired service layer, shared by the HTTP server, the scheduler and the admin CLI
type Services struct {
	Authorization AuthorizationService
	Auth          AuthService
	User          UserService
	Project       ProjectService
	Member        ProjectMemberService
	Settings      SettingsService
	Note          NoteService
	Example       SQLExampleService
	Connection    ConnectionService
	Metadata      MetadataService
	Chat          ChatService
}

func NewServices(db *gorm.DB, cfg *config.Config, deps Deps) *Services {
	resolver := auth.NewResolver(cfg.Auth.SuperuserEmails)

	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	memberRepo := repository.NewProjectMemberRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	noteRepo := repository.NewNoteRepository(db)
	exampleRepo := repository.NewSQLExampleRepository(db)
	connRepo := repository.NewConnectionRepository(db)
	tableRepo := repository.NewTableMetadataRepository(db)
	chatRepo := repository.NewChatRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	authz := NewAuthorizationService(resolver, userRepo, projectRepo, memberRepo)
	ldapService := deps.LDAP
	if ldapService == nil {
		ldapService = NewLDAPService(&cfg.Auth.LDAP)
	}
	settings := NewSettingsService(settingsRepo)
	examples := NewSQLExampleService(authz, exampleRepo, settings, deps.Embedder)
	connections := NewConnectionService(authz, connRepo, projectRepo, deps.Inspector, deps.Notifier, cfg.Crypto.AESKey)

	return &Services{
		Authorization: authz,
		Auth:          NewAuthService(&cfg.Auth, deps.JWT, resolver, userRepo, ldapService),
		User:          NewUserService(authz, resolver, userRepo, memberRepo),
		Project:       NewProjectService(authz, projectRepo, userRepo, deps.Notifier),
		Member:        NewProjectMemberService(authz, memberRepo, userRepo, deps.Notifier),
		Settings:      settings,
		Note:          NewNoteService(authz, noteRepo),
		Example:       examples,
		Connection:    connections,
		Metadata:      NewMetadataService(authz, tableRepo, connRepo, connections, deps.Inspector),
		Chat: NewChatService(authz, chatRepo, messageRepo, noteRepo, tableRepo, connRepo,
			examples, settings, deps.Generator, cfg.LLM.HistorySize),
	}
}
