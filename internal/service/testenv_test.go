package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"ai2sql/internal/adapter/dbinspect"
	"ai2sql/internal/adapter/llm"
	"ai2sql/internal/adapter/notification"
	"ai2sql/internal/dto"
	"ai2sql/internal/model"
	"ai2sql/internal/pkg/auth"
	"ai2sql/internal/pkg/config"
	"ai2sql/internal/pkg/crypto"
	"ai2sql/internal/pkg/database"
	"ai2sql/internal/pkg/jwt"
	"ai2sql/pkg/constants"
	pkgErrors "ai2sql/pkg/errors"
)

const (
	testAESKey   = "0123456789abcdef0123456789abcdef"
	testPassword = "secret123"
	rootEmail    = "root@example.com"
)

type fakeGenerator struct {
	mu       sync.Mutex
	requests []*llm.Request
	result   *llm.Result
	err      error
}

func (g *fakeGenerator) Name() string { return "fake" }

func (g *fakeGenerator) Generate(_ context.Context, req *llm.Request) (*llm.Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)
	if g.err != nil {
		return nil, g.err
	}
	if g.result != nil {
		return g.result, nil
	}
	return &llm.Result{Content: "answer", SQL: "SELECT 1"}, nil
}

func (g *fakeGenerator) last() *llm.Request {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.requests) == 0 {
		return nil
	}
	return g.requests[len(g.requests)-1]
}

// fakeEmbedder maps known texts to fixed vectors and fails on anything else
type fakeEmbedder struct {
	vectors map[string][]float32
}

func (e *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if v, ok := e.vectors[text]; ok {
		return v, nil
	}
	return nil, errors.New("no vector")
}

type fakeInspector struct {
	mu      sync.Mutex
	pingErr error
	tables  []dbinspect.Table
	targets []dbinspect.Target
}

func (i *fakeInspector) Ping(_ context.Context, t dbinspect.Target) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.targets = append(i.targets, t)
	return i.pingErr
}

func (i *fakeInspector) Tables(_ context.Context, t dbinspect.Target) ([]dbinspect.Table, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.targets = append(i.targets, t)
	return i.tables, nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []*notification.ProjectEvent
}

func (n *recordingNotifier) Send(context.Context, *notification.NotificationMessage) error {
	return nil
}

func (n *recordingNotifier) SendProjectEvent(_ context.Context, event *notification.ProjectEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return nil
}

func (n *recordingNotifier) types() []notification.NotificationType {
	n.mu.Lock()
	defer n.mu.Unlock()
	types := make([]notification.NotificationType, len(n.events))
	for i, e := range n.events {
		types[i] = e.Type
	}
	return types
}

// fakeDirectory accepts any password equal to its entry for the email
type fakeDirectory struct {
	passwords map[string]string
	names     map[string]string
}

func (d *fakeDirectory) Authenticate(email, password string) (*LDAPUser, error) {
	email = normalizeEmail(email)
	if want, ok := d.passwords[email]; !ok || want != password {
		return nil, pkgErrors.ErrInvalidCredentials
	}
	return &LDAPUser{Email: email, Name: d.names[email]}, nil
}

type testEnv struct {
	db        *gorm.DB
	cfg       *config.Config
	svc       *Services
	generator *fakeGenerator
	inspector *fakeInspector
	notifier  *recordingNotifier
	root      *model.User
}

type envOption func(*config.Config, *Deps)

func withEmbedder(e llm.Embedder) envOption {
	return func(_ *config.Config, d *Deps) { d.Embedder = e }
}

func withLDAP(l LDAPService) envOption {
	return func(c *config.Config, d *Deps) {
		c.Auth.LDAP.Enabled = true
		d.LDAP = l
	}
}

func withConfig(fn func(*config.Config)) envOption {
	return func(c *config.Config, _ *Deps) { fn(c) }
}

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWT: config.JWTConfig{
				Secret:             "test-secret",
				AccessTokenExpire:  3600,
				RefreshTokenExpire: 7200,
			},
			Local:           config.LocalConfig{Enabled: true, AllowRegistration: true},
			SuperuserEmails: []string{"admin@example.com"},
		},
		Crypto: config.CryptoConfig{AESKey: testAESKey},
		LLM:    config.LLMConfig{HistorySize: 4},
	}
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	db, err := database.Open(&config.DatabaseConfig{
		Driver:   "sqlite",
		Database: filepath.Join(t.TempDir(), "ai2sql.db"),
		LogLevel: "silent",
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	cfg := testConfig()
	env := &testEnv{
		db:        db,
		cfg:       cfg,
		generator: &fakeGenerator{},
		inspector: &fakeInspector{},
		notifier:  &recordingNotifier{},
	}
	deps := Deps{
		JWT:       jwt.NewManager(cfg.Auth.JWT),
		Generator: env.generator,
		Inspector: env.inspector,
		Notifier:  env.notifier,
	}
	for _, opt := range opts {
		opt(cfg, &deps)
	}

	env.svc = NewServices(db, cfg, deps)
	env.root = env.user(t, rootEmail, auth.GlobalRoleSuperuser)
	return env
}

// user stores an enabled local account with testPassword
func (e *testEnv) user(t *testing.T, email string, role auth.GlobalRole) *model.User {
	t.Helper()
	hash, err := crypto.HashPassword(testPassword)
	require.NoError(t, err)

	u := &model.User{
		BaseStatus:   model.BaseStatus{Status: constants.StatusEnabled},
		AuthProvider: constants.AuthTypeLocal,
		Email:        email,
		Name:         email,
		Password:     hash,
		Role:         string(role),
	}
	require.NoError(t, e.db.Create(u).Error)
	return u
}

func (e *testEnv) project(t *testing.T, name string) *dto.ProjectResponse {
	t.Helper()
	p, err := e.svc.Project.Create(e.root.ID, &dto.CreateProjectRequest{Name: name})
	require.NoError(t, err)
	return p
}

// member adds a fresh user to projectID with role
func (e *testEnv) member(t *testing.T, projectID int64, email string, role auth.ProjectRole) *model.User {
	t.Helper()
	u := e.user(t, email, auth.GlobalRoleUser)
	_, err := e.svc.Member.Add(e.root.ID, projectID, &dto.AddMemberRequest{UserID: u.ID, Role: string(role)})
	require.NoError(t, err)
	return u
}
