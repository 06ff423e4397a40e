package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
server:
  port: "9090"
  mode: debug
database:
  driver: sqlite
  sqlite_path: test.db
jwt:
  secret: test-secret
  expire_hours: 2
report:
  monthly_policy: Average
accounts:
  - email: teacher@school.com
    password: teacher123
    role: teacher
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644))
	return dir
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "test.db", cfg.Database.SQLitePath)
	assert.Equal(t, 2*time.Hour, cfg.JWT.ExpireTime)
	assert.Equal(t, MonthlyPolicyAverage, cfg.Report.MonthlyPolicy)
	require.Len(t, cfg.Accounts, 1)
	assert.Equal(t, "teacher", cfg.Accounts[0].Role)

	// 未配置时使用默认值
	assert.Equal(t, 600, cfg.RateLimit.MaxRequests)
	assert.Equal(t, 10*time.Minute, cfg.RedisTTL())
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("REPORT_MONTHLY_POLICY", "latest")
	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)
	assert.Equal(t, MonthlyPolicyLatest, cfg.Report.MonthlyPolicy)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:   ServerConfig{Mode: "debug"},
			Database: DatabaseConfig{Driver: "sqlite"},
			JWT:      JWTConfig{Secret: "short"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"empty mode becomes debug", func(c *Config) { c.Server.Mode = "" }, false},
		{"unknown mode", func(c *Config) { c.Server.Mode = "prod" }, true},
		{"short secret in release", func(c *Config) { c.Server.Mode = "release" }, true},
		{"unknown policy", func(c *Config) { c.Report.MonthlyPolicy = "median" }, true},
		{"unknown driver", func(c *Config) { c.Database.Driver = "postgres" }, true},
		{"admin account", func(c *Config) {
			c.Accounts = []AccountConfig{{Email: "a@b.c", Password: "x", Role: "admin"}}
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, MonthlyPolicyLatest, c.Report.MonthlyPolicy)
			assert.Equal(t, "debug", c.Server.Mode)
		})
	}
}
