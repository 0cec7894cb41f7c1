package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig
	Logger      LoggerConfig
	DB          DBConfig
	Redis       RedisConfig
	Store       StoreConfig
	JWT         JWTConfig
	GoogleOAuth GoogleOAuthConfig
	LLM         LLMConfig
	Interview   InterviewConfig
	Admin       AdminConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	BodyLimit    int
	AllowOrigins string
}

type LoggerConfig struct {
	Level string
	Env   string
}

type DBConfig struct {
	Driver   string // sqlite3, postgres or oracle
	Path     string // sqlite3 file
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

type StoreConfig struct {
	Backend string // sql, redis or memory
}

type JWTConfig struct {
	SecretKey       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

type GoogleOAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Enabled reports whether Google sign-in is configured.
func (g GoogleOAuthConfig) Enabled() bool {
	return g.ClientID != "" && g.ClientSecret != ""
}

type LLMConfig struct {
	Provider  string // genai, googleai or ollama
	APIKey    string
	Model     string
	ServerURL string // ollama only
	Timeout   time.Duration
}

type InterviewConfig struct {
	AnalysisDelay    time.Duration
	SessionTTL       time.Duration
	FeedbackCacheTTL time.Duration
	MaxResumeBytes   int
}

type AdminConfig struct {
	Password string
}

func setDefaults() {
	viper.SetDefault("server.port", 8090)
	viper.SetDefault("server.read_timeout", 20*time.Second)
	viper.SetDefault("server.write_timeout", 120*time.Second)
	viper.SetDefault("server.idle_timeout", 60*time.Second)
	viper.SetDefault("server.body_limit", 10*1024*1024)
	viper.SetDefault("server.allow_origins", "*")

	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.env", "development")

	viper.SetDefault("db.driver", "sqlite3")
	viper.SetDefault("db.path", "interview-coach.db")
	viper.SetDefault("db.sslmode", "disable")

	viper.SetDefault("store.backend", "sql")

	viper.SetDefault("jwt.access_token_ttl", 24*time.Hour)
	viper.SetDefault("jwt.refresh_token_ttl", 30*24*time.Hour)

	viper.SetDefault("llm.provider", "genai")
	viper.SetDefault("llm.model", "gemini-2.5-flash")
	viper.SetDefault("llm.server_url", "http://localhost:11434")
	viper.SetDefault("llm.timeout", 60*time.Second)

	viper.SetDefault("interview.analysis_delay", 300*time.Millisecond)
	viper.SetDefault("interview.session_ttl", 7*24*time.Hour)
	viper.SetDefault("interview.feedback_cache_ttl", 24*time.Hour)
	viper.SetDefault("interview.max_resume_bytes", 5*1024*1024)

	viper.SetDefault("admin.password", "admin")
}

func LoadConfig() (*Config, error) {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	if os.Getenv("ENV") == "test" {
		viper.AddConfigPath("../../config")
		viper.AddConfigPath("../../")
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if configFile := viper.ConfigFileUsed(); configFile != "" {
		absPath, _ := filepath.Abs(configFile)
		fmt.Printf("Using config file: %s\n", absPath)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         viper.GetInt("server.port"),
			ReadTimeout:  viper.GetDuration("server.read_timeout"),
			WriteTimeout: viper.GetDuration("server.write_timeout"),
			IdleTimeout:  viper.GetDuration("server.idle_timeout"),
			BodyLimit:    viper.GetInt("server.body_limit"),
			AllowOrigins: viper.GetString("server.allow_origins"),
		},
		Logger: LoggerConfig{
			Level: viper.GetString("logger.level"),
			Env:   viper.GetString("logger.env"),
		},
		DB: DBConfig{
			Driver:   viper.GetString("db.driver"),
			Path:     viper.GetString("db.path"),
			Host:     viper.GetString("db.host"),
			Port:     viper.GetInt("db.port"),
			User:     viper.GetString("db.user"),
			Password: viper.GetString("db.password"),
			DBName:   viper.GetString("db.name"),
			SSLMode:  viper.GetString("db.sslmode"),
		},
		Redis: RedisConfig{
			Address:  viper.GetString("redis.address"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		Store: StoreConfig{
			Backend: viper.GetString("store.backend"),
		},
		JWT: JWTConfig{
			SecretKey:       viper.GetString("jwt.secret_key"),
			AccessTokenTTL:  viper.GetDuration("jwt.access_token_ttl"),
			RefreshTokenTTL: viper.GetDuration("jwt.refresh_token_ttl"),
		},
		GoogleOAuth: GoogleOAuthConfig{
			ClientID:     viper.GetString("google_oauth.client_id"),
			ClientSecret: viper.GetString("google_oauth.client_secret"),
			RedirectURL:  viper.GetString("google_oauth.redirect_url"),
		},
		LLM: LLMConfig{
			Provider:  viper.GetString("llm.provider"),
			APIKey:    viper.GetString("llm.api_key"),
			Model:     viper.GetString("llm.model"),
			ServerURL: viper.GetString("llm.server_url"),
			Timeout:   viper.GetDuration("llm.timeout"),
		},
		Interview: InterviewConfig{
			AnalysisDelay:    viper.GetDuration("interview.analysis_delay"),
			SessionTTL:       viper.GetDuration("interview.session_ttl"),
			FeedbackCacheTTL: viper.GetDuration("interview.feedback_cache_ttl"),
			MaxResumeBytes:   viper.GetInt("interview.max_resume_bytes"),
		},
		Admin: AdminConfig{
			Password: viper.GetString("admin.password"),
		},
	}

	// Well-known variable names win over the config file.
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		cfg.LLM.APIKey = key
	}
	if key := os.Getenv("API_KEY"); key != "" && cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = key
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.JWT.SecretKey = secret
	}
	if redisAddress := os.Getenv("REDIS_ADDRESS"); redisAddress != "" {
		cfg.Redis.Address = redisAddress
	}
	if dbPassword := os.Getenv("DB_PASSWORD"); dbPassword != "" {
		cfg.DB.Password = dbPassword
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that have no usable default.
func (c *Config) Validate() error {
	if len(c.JWT.SecretKey) < 32 {
		return fmt.Errorf("jwt.secret_key must be at least 32 bytes long")
	}
	switch c.Store.Backend {
	case "sql", "redis", "memory":
	default:
		return fmt.Errorf("unsupported store.backend %q", c.Store.Backend)
	}
	switch c.DB.Driver {
	case "sqlite3", "postgres", "oracle":
	default:
		return fmt.Errorf("unsupported db.driver %q", c.DB.Driver)
	}
	return nil
}

// GetDSN builds the connection string for the configured driver.
func (c *Config) GetDSN() string {
	switch c.DB.Driver {
	case "postgres":
		return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
			c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.DBName, c.DB.SSLMode)
	case "oracle":
		return fmt.Sprintf("oracle://%s:%s@%s:%d/%s",
			c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.DBName)
	default:
		return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", c.DB.Path)
	}
}
