package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server ServerConfig
	DB     DBConfig
	S3     S3Config
	OCR    OCRConfig
	LLM    LLMConfig
	Tags   TagsConfig
	Export ExportConfig
	CORS   CORSConfig
	Log    LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// S3Config holds object storage settings.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PublicBaseURL string `mapstructure:"public_base_url"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// OCRConfig holds settings for the external OCR recognition service.
type OCRConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

// LLMConfig holds settings for the chat completion provider.
type LLMConfig struct {
	BaseURL     string  `mapstructure:"base_url"`
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
	TimeoutSecs int     `mapstructure:"timeout_secs"`
}

// TagsConfig holds the controlled tag vocabulary fallback. The seeded
// tags table takes precedence when it is non-empty.
type TagsConfig struct {
	Vocabulary []string `mapstructure:"vocabulary"`
}

// ExportConfig holds limits for question export rendering.
type ExportConfig struct {
	MaxQuestions int `mapstructure:"max_questions"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// defaultVocabulary is the stock set of gaokao math topic tags, used until
// the tags table has been seeded.
var defaultVocabulary = []string{
	"立体几何",
	"导数题",
	"极值点偏移",
	"三角函数",
	"数列",
	"概率统计",
	"解析几何",
	"函数与方程",
	"不等式",
	"向量",
	"复数",
	"算法与程序框图",
}

// Load reads configuration from environment variables with the TIKU_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TIKU")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "tiku")
	v.SetDefault("db.password", "tiku_secret")
	v.SetDefault("db.name", "tiku_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "tiku-uploads")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.public_base_url", "")
	v.SetDefault("s3.max_file_size_mb", 16)
	v.SetDefault("s3.presign_expiry", 3600)

	// OCR defaults
	v.SetDefault("ocr.base_url", "http://localhost:5000")
	v.SetDefault("ocr.timeout_secs", 120)

	// LLM defaults
	v.SetDefault("llm.base_url", "https://api.deepseek.com")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "deepseek-chat")
	v.SetDefault("llm.max_tokens", 4000)
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.timeout_secs", 60)

	// Tag vocabulary fallback (comma-separated override)
	v.SetDefault("tags.vocabulary", strings.Join(defaultVocabulary, ","))

	// Export defaults
	v.SetDefault("export.max_questions", 200)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":          "TIKU_SERVER_PORT",
		"server.read_timeout":  "TIKU_SERVER_READ_TIMEOUT",
		"server.write_timeout": "TIKU_SERVER_WRITE_TIMEOUT",
		"server.environment":   "TIKU_SERVER_ENVIRONMENT",
		"db.host":              "TIKU_DB_HOST",
		"db.port":              "TIKU_DB_PORT",
		"db.user":              "TIKU_DB_USER",
		"db.password":          "TIKU_DB_PASSWORD",
		"db.name":              "TIKU_DB_NAME",
		"db.sslmode":           "TIKU_DB_SSLMODE",
		"db.max_open":          "TIKU_DB_MAX_OPEN",
		"db.max_idle":          "TIKU_DB_MAX_IDLE",
		"s3.region":            "TIKU_S3_REGION",
		"s3.bucket":            "TIKU_S3_BUCKET",
		"s3.endpoint":          "TIKU_S3_ENDPOINT",
		"s3.access_key":        "TIKU_S3_ACCESS_KEY",
		"s3.secret_key":        "TIKU_S3_SECRET_KEY",
		"s3.public_base_url":   "TIKU_S3_PUBLIC_BASE_URL",
		"s3.max_file_size_mb":  "TIKU_S3_MAX_FILE_SIZE_MB",
		"s3.presign_expiry":    "TIKU_S3_PRESIGN_EXPIRY",
		"ocr.base_url":         "TIKU_OCR_BASE_URL",
		"ocr.timeout_secs":     "TIKU_OCR_TIMEOUT_SECS",
		"llm.base_url":         "TIKU_LLM_BASE_URL",
		"llm.api_key":          "TIKU_LLM_API_KEY",
		"llm.model":            "TIKU_LLM_MODEL",
		"llm.max_tokens":       "TIKU_LLM_MAX_TOKENS",
		"llm.temperature":      "TIKU_LLM_TEMPERATURE",
		"llm.timeout_secs":     "TIKU_LLM_TIMEOUT_SECS",
		"tags.vocabulary":      "TIKU_TAGS_VOCABULARY",
		"export.max_questions": "TIKU_EXPORT_MAX_QUESTIONS",
		"log.level":            "TIKU_LOG_LEVEL",
		"log.format":           "TIKU_LOG_FORMAT",
		"cors.allowed_origins": "TIKU_CORS_ALLOWED_ORIGINS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if TIKU_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("TIKU_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		PublicBaseURL: strings.TrimRight(v.GetString("s3.public_base_url"), "/"),
		MaxFileSizeMB: v.GetInt64("s3.max_file_size_mb"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.OCR = OCRConfig{
		BaseURL:     strings.TrimRight(v.GetString("ocr.base_url"), "/"),
		TimeoutSecs: v.GetInt("ocr.timeout_secs"),
	}
	cfg.LLM = LLMConfig{
		BaseURL:     strings.TrimRight(v.GetString("llm.base_url"), "/"),
		APIKey:      v.GetString("llm.api_key"),
		Model:       v.GetString("llm.model"),
		MaxTokens:   v.GetInt("llm.max_tokens"),
		Temperature: v.GetFloat64("llm.temperature"),
		TimeoutSecs: v.GetInt("llm.timeout_secs"),
	}
	cfg.Tags = TagsConfig{
		Vocabulary: splitCSV(v.GetString("tags.vocabulary")),
	}
	cfg.Export = ExportConfig{
		MaxQuestions: v.GetInt("export.max_questions"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitCSV(v.GetString("cors.allowed_origins")),
	}

	return cfg, nil
}

func splitCSV(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
