package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ai2sql/internal/adapter/dbinspect"
	"ai2sql/internal/adapter/llm"
	"ai2sql/internal/adapter/notification"
	"ai2sql/internal/admin"
	"ai2sql/internal/pkg/config"
	"ai2sql/internal/pkg/database"
	"ai2sql/internal/pkg/jwt"
	"ai2sql/internal/service"
	"ai2sql/pkg/constants"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	engine *gin.Engine
	admin  *admin.Admin
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Server: config.ServerConfig{Mode: "test"},
		Auth: config.AuthConfig{
			JWT:             config.JWTConfig{Secret: "router-secret", AccessTokenExpire: 600, RefreshTokenExpire: 1200},
			Local:           config.LocalConfig{Enabled: true, AllowRegistration: true},
			SuperuserEmails: []string{"admin@example.com"},
		},
		Crypto: config.CryptoConfig{AESKey: "0123456789abcdef0123456789abcdef"},
		LLM:    config.LLMConfig{Provider: "static", HistorySize: 10, Timeout: 5},
	}

	db, err := database.Open(&config.DatabaseConfig{
		Driver:   "sqlite",
		Database: filepath.Join(t.TempDir(), "router.db"),
		LogLevel: "silent",
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	jwtManager := jwt.NewManager(cfg.Auth.JWT)
	services := service.NewServices(db, cfg, service.Deps{
		JWT:       jwtManager,
		Generator: llm.NewStaticGenerator(),
		Inspector: dbinspect.New(time.Second),
		Notifier:  notification.New("lark", "", false, zap.NewNop()),
	})

	return &testServer{engine: Setup(cfg, services, jwtManager), admin: admin.New(db)}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(constants.HeaderAuthorization, constants.HeaderBearerPrefix+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var env envelope
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	_, env := s.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": email, "password": password})
	require.Equal(t, 200, env.Code, env.Message)

	var data struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data.AccessToken
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w, _ := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(constants.HeaderRequestID))
}

func TestProjectFlow(t *testing.T) {
	s := newTestServer(t)

	_, env := s.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"email": "dev@corp.io", "name": "Dev", "password": "secret123", "confirm_password": "secret123",
	})
	require.Equal(t, 200, env.Code, env.Message)

	_, env = s.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, env.Code)

	_, env = s.do(t, http.MethodGet, "/api/v1/projects", "", nil)
	assert.Equal(t, http.StatusUnauthorized, env.Code)

	devToken := s.login(t, "dev@corp.io", "secret123")
	_, env = s.do(t, http.MethodPost, "/api/v1/projects", devToken, gin.H{"name": "Analytics"})
	assert.Equal(t, http.StatusForbidden, env.Code)

	_, err := s.admin.CreateUser("root@corp.io", "Root", "rootpass", "superuser")
	require.NoError(t, err)
	rootToken := s.login(t, "root@corp.io", "rootpass")

	_, env = s.do(t, http.MethodPost, "/api/v1/projects", rootToken, gin.H{"name": "Analytics"})
	require.Equal(t, 200, env.Code, env.Message)
	var project struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &project))
	assert.Equal(t, "Analytics", project.Name)

	// not a member yet
	_, env = s.do(t, http.MethodPut, "/api/v1/projects/current", devToken, gin.H{"project_id": project.ID})
	assert.Equal(t, http.StatusForbidden, env.Code)

	_, err = s.admin.AddMember(project.ID, "dev@corp.io", "viewer")
	require.NoError(t, err)

	_, env = s.do(t, http.MethodPut, "/api/v1/projects/current", devToken, gin.H{"project_id": project.ID})
	require.Equal(t, 200, env.Code, env.Message)

	_, env = s.do(t, http.MethodGet, "/api/v1/projects/current", devToken, nil)
	require.Equal(t, 200, env.Code, env.Message)
	var current struct {
		Project struct {
			ID   int64  `json:"id"`
			Role string `json:"role"`
		} `json:"project"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &current))
	assert.Equal(t, project.ID, current.Project.ID)
	assert.Equal(t, "viewer", current.Project.Role)

	w, _ := s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/projects/%d/examples/export?format=yaml", project.ID), devToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/x-yaml; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, fmt.Sprintf(`attachment; filename="sql_examples_%d.yaml"`, project.ID), w.Header().Get("Content-Disposition"))

	_, env = s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/projects/%d/examples", project.ID), devToken, gin.H{
		"natural_language_query": "count users", "sql_query": "SELECT count(*) FROM users",
	})
	assert.Equal(t, http.StatusForbidden, env.Code)

	_, env = s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/projects/%d/chats", project.ID), devToken, gin.H{"name": "First"})
	assert.Equal(t, 200, env.Code, env.Message)
}
