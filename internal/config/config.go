package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Tracing   TracingConfig `mapstructure:"tracing"`
	Redis     RedisConfig
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Report    ReportConfig    `mapstructure:"report"`
	Accounts  []AccountConfig `mapstructure:"accounts"`

	// 运行时标志（非配置文件，通过命令行参数设置）
	ForceMigrate bool `mapstructure:"-"`
	MigrateOnly  bool `mapstructure:"-"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	Driver     string `mapstructure:"driver"`
	Host       string
	Port       int
	User       string
	Password   string
	DBName     string
	Charset    string
	ParseTime  bool
	SQLitePath string `mapstructure:"sqlite_path"`
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	ExpireTime time.Duration `mapstructure:"expire_hours"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type RedisConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	Host       string
	Port       int
	Password   string
	DB         int
	TTLMinutes int `mapstructure:"ttl_minutes"`
}

// ReportConfig 报表生成策略
type ReportConfig struct {
	// latest: 每科取最后一次成绩; average: 每科跨周取平均
	MonthlyPolicy string `mapstructure:"monthly_policy"`
}

// AccountConfig 启动时写入的教师/家长账号
type AccountConfig struct {
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
	Role     string `mapstructure:"role"`
}

const (
	MonthlyPolicyLatest  = "latest"
	MonthlyPolicyAverage = "average"
)

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("PERF_REPORT")
	v.AutomaticEnv()

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.charset", "utf8mb4")
	v.SetDefault("database.parsetime", true)
	v.SetDefault("database.sqlite_path", "student_performance.db")
	v.SetDefault("jwt.expire_hours", 24)
	v.SetDefault("redis.ttl_minutes", 10)
	v.SetDefault("rate_limit.max_requests", 600)
	v.SetDefault("rate_limit.window_minutes", 1)
	v.SetDefault("report.monthly_policy", MonthlyPolicyLatest)

	// Database
	v.BindEnv("database.driver", "DATABASE_DRIVER")
	v.BindEnv("database.host", "DATABASE_HOST")
	v.BindEnv("database.port", "DATABASE_PORT")
	v.BindEnv("database.user", "DATABASE_USER")
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("database.dbname", "DATABASE_NAME")
	v.BindEnv("database.sqlite_path", "DATABASE_SQLITE_PATH")

	// JWT
	v.BindEnv("jwt.secret", "JWT_SECRET")

	// Redis
	v.BindEnv("redis.enabled", "REDIS_ENABLED")
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// Server
	v.BindEnv("server.mode", "SERVER_MODE")
	v.BindEnv("server.port", "SERVER_PORT")

	// Tracing
	v.BindEnv("tracing.enabled", "TRACING_ENABLED")
	v.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	// Report
	v.BindEnv("report.monthly_policy", "REPORT_MONTHLY_POLICY")

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.JWT.ExpireTime = cfg.JWT.ExpireTime * time.Hour

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Server.Mode {
	case "":
		c.Server.Mode = "debug"
	case "debug", "release", "test":
	default:
		return fmt.Errorf("unknown server.mode %q", c.Server.Mode)
	}

	// 生产环境校验 JWT Secret 强度
	if c.Server.Mode == "release" && len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(c.JWT.Secret))
	}

	c.Report.MonthlyPolicy = strings.ToLower(strings.TrimSpace(c.Report.MonthlyPolicy))
	switch c.Report.MonthlyPolicy {
	case "":
		c.Report.MonthlyPolicy = MonthlyPolicyLatest
	case MonthlyPolicyLatest, MonthlyPolicyAverage:
	default:
		return fmt.Errorf("unknown report.monthly_policy %q", c.Report.MonthlyPolicy)
	}

	switch c.Database.Driver {
	case "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	for _, a := range c.Accounts {
		if a.Role != "teacher" && a.Role != "parent" {
			return fmt.Errorf("account %s: role must be teacher or parent", a.Email)
		}
	}

	return nil
}

// RedisTTL 报表缓存过期时间
func (c *Config) RedisTTL() time.Duration {
	if c.Redis.TTLMinutes <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(c.Redis.TTLMinutes) * time.Minute
}
