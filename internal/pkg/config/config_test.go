package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseYAML = `
server:
  port: 9000
  mode: test
database:
  driver: sqlite
  database: /tmp/ai2sql.db
auth:
  jwt:
    secret: s3cret
crypto:
  aes_key: 0123456789abcdef0123456789abcdef
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, baseYAML))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "test", cfg.Server.Mode)
	assert.Equal(t, "0.0.0.0:9000", cfg.Server.Addr())
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "/tmp/ai2sql.db", cfg.Database.GetDSN())
	assert.Equal(t, 7200, cfg.Auth.JWT.AccessTokenExpire)
	assert.True(t, cfg.Auth.Local.AllowRegistration)
	assert.Empty(t, cfg.Auth.SuperuserEmails)
	assert.Equal(t, "static", cfg.LLM.Provider)
	assert.Equal(t, 10, cfg.LLM.HistorySize)
	assert.Equal(t, 5, cfg.Scheduler.ConnectionTimeout)
	assert.Same(t, cfg, GlobalConfig)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("AI2SQL_SERVER_PORT", "9100")
	t.Setenv("AI2SQL_AUTH_JWT_SECRET", "from-env")

	cfg, err := Load(writeConfig(t, baseYAML))
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "from-env", cfg.Auth.JWT.Secret)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	cases := map[string][2]string{
		"short aes key":  {"aes_key: 0123456789abcdef0123456789abcdef", "aes_key: tooshort"},
		"unknown driver": {"driver: sqlite", "driver: oracle"},
		"bad mode":       {"mode: test", "mode: prod"},
		"no jwt secret":  {"secret: s3cret", "secret: \"\""},
	}
	for name, replace := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, strings.Replace(baseYAML, replace[0], replace[1], 1)))
			assert.Error(t, err)
		})
	}

	_, err := Load(writeConfig(t, baseYAML+"llm:\n  provider: openai\n"))
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestGetDSN(t *testing.T) {
	mysql := DatabaseConfig{Driver: "mysql", Host: "db", Port: 3306, Username: "u", Password: "p", Database: "x"}
	assert.Equal(t, "u:p@tcp(db:3306)/x?charset=utf8mb4&parseTime=True&loc=Local", mysql.GetDSN())

	pg := DatabaseConfig{Driver: "postgres", Host: "db", Port: 5432, Username: "u", Password: "p", Database: "x", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=x sslmode=disable TimeZone=UTC", pg.GetDSN())
}
