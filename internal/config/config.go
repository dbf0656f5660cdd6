package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"smartstudy/internal/domain"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Logger     LoggerConfig
	Gemini     GeminiConfig
	Generation GenerationConfig
	Extractor  ExtractorConfig
	Redis      RedisConfig
	CacheTTLs  CacheTTLConfig
	OpenAI     OpenAIConfig
	Ollama     OllamaConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	BodyLimit    int
}

type LoggerConfig struct {
	Level string
	Env   string
}

type GeminiConfig struct {
	APIKey string
	Models []domain.ModelDescriptor
}

// GenerationConfig holds the batching and retry policy of the generator.
type GenerationConfig struct {
	BatchSize        int
	SingleRequestMax int
	MaxBatchAttempts int
	MaxCallRetries   int
	BackoffBase      time.Duration
	InterBatchDelay  time.Duration
	MaxContentChars  int
	ContentOverlap   float64
}

type ExtractorConfig struct {
	BaseURL      string
	Timeout      time.Duration
	MaxFileBytes int64
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type CacheTTLConfig struct {
	Extraction string
	Job        string
}

type OpenAIConfig struct {
	APIKey  string
	BaseURL string
}

type OllamaConfig struct {
	ServerURL string
	Timeout   time.Duration
}

// DefaultModels mirrors the Gemini models the web client offers.
func DefaultModels() []domain.ModelDescriptor {
	return []domain.ModelDescriptor{
		{
			Name:            "gemini-1.5-flash",
			Kind:            domain.ModelKindGemini,
			Endpoint:        "https://generativelanguage.googleapis.com/v1beta/models/gemini-1.5-flash:generateContent",
			MaxOutputTokens: 4096,
			Temperature:     0.7,
			Priority:        1,
		},
		{
			Name:            "gemini-1.5-pro",
			Kind:            domain.ModelKindGemini,
			Endpoint:        "https://generativelanguage.googleapis.com/v1beta/models/gemini-1.5-pro:generateContent",
			MaxOutputTokens: 8192,
			Temperature:     0.7,
			Priority:        2,
		},
		{
			Name:            "gemini-1.0-pro",
			Kind:            domain.ModelKindGemini,
			Endpoint:        "https://generativelanguage.googleapis.com/v1beta/models/gemini-1.0-pro:generateContent",
			MaxOutputTokens: 3072,
			Temperature:     0.7,
			Priority:        3,
		},
	}
}

// DefaultGeneration is the batching policy used when nothing is configured.
func DefaultGeneration() GenerationConfig {
	return GenerationConfig{
		BatchSize:        5,
		SingleRequestMax: 8,
		MaxBatchAttempts: 3,
		MaxCallRetries:   3,
		BackoffBase:      time.Second,
		InterBatchDelay:  3 * time.Second,
		MaxContentChars:  8000,
		ContentOverlap:   0.1,
	}
}

func setDefaults(v *viper.Viper) {
	gen := DefaultGeneration()
	v.SetDefault("server.port", 8090)
	v.SetDefault("server.read_timeout", 20)
	v.SetDefault("server.write_timeout", 120)
	v.SetDefault("server.body_limit", 50*1024*1024)
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.env", "development")
	v.SetDefault("generation.batch_size", gen.BatchSize)
	v.SetDefault("generation.single_request_max", gen.SingleRequestMax)
	v.SetDefault("generation.max_batch_attempts", gen.MaxBatchAttempts)
	v.SetDefault("generation.max_call_retries", gen.MaxCallRetries)
	v.SetDefault("generation.backoff_base", gen.BackoffBase)
	v.SetDefault("generation.inter_batch_delay", gen.InterBatchDelay)
	v.SetDefault("generation.max_content_chars", gen.MaxContentChars)
	v.SetDefault("generation.content_overlap", gen.ContentOverlap)
	v.SetDefault("extractor.base_url", "http://localhost:8000")
	v.SetDefault("extractor.timeout", 60*time.Second)
	v.SetDefault("extractor.max_file_bytes", int64(20*1024*1024))
	v.SetDefault("cache_ttls.extraction", "1h")
	v.SetDefault("cache_ttls.job", "30m")
	v.SetDefault("ollama.timeout", 60*time.Second)
}

func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Add config paths based on environment
	if os.Getenv("ENV") == "test" {
		v.AddConfigPath("../../config")
		v.AddConfigPath("../../")
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	setDefaults(v)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if configFile := v.ConfigFileUsed(); configFile != "" {
		absPath, _ := filepath.Abs(configFile)
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", absPath)
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetInt("server.port"),
			ReadTimeout:  v.GetDuration("server.read_timeout") * time.Second,
			WriteTimeout: v.GetDuration("server.write_timeout") * time.Second,
			BodyLimit:    v.GetInt("server.body_limit"),
		},
		Logger: LoggerConfig{
			Level: v.GetString("logger.level"),
			Env:   v.GetString("logger.env"),
		},
		Gemini: GeminiConfig{
			APIKey: v.GetString("gemini.api_key"),
		},
		Generation: GenerationConfig{
			BatchSize:        v.GetInt("generation.batch_size"),
			SingleRequestMax: v.GetInt("generation.single_request_max"),
			MaxBatchAttempts: v.GetInt("generation.max_batch_attempts"),
			MaxCallRetries:   v.GetInt("generation.max_call_retries"),
			BackoffBase:      v.GetDuration("generation.backoff_base"),
			InterBatchDelay:  v.GetDuration("generation.inter_batch_delay"),
			MaxContentChars:  v.GetInt("generation.max_content_chars"),
			ContentOverlap:   v.GetFloat64("generation.content_overlap"),
		},
		Extractor: ExtractorConfig{
			BaseURL:      v.GetString("extractor.base_url"),
			Timeout:      v.GetDuration("extractor.timeout"),
			MaxFileBytes: v.GetInt64("extractor.max_file_bytes"),
		},
		Redis: RedisConfig{
			Address:  v.GetString("redis.address"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		CacheTTLs: CacheTTLConfig{
			Extraction: v.GetString("cache_ttls.extraction"),
			Job:        v.GetString("cache_ttls.job"),
		},
		OpenAI: OpenAIConfig{
			APIKey:  v.GetString("openai.api_key"),
			BaseURL: v.GetString("openai.base_url"),
		},
		Ollama: OllamaConfig{
			ServerURL: v.GetString("ollama.server_url"),
			Timeout:   v.GetDuration("ollama.timeout"),
		},
	}

	if v.IsSet("gemini.models") {
		if err := v.UnmarshalKey("gemini.models", &cfg.Gemini.Models); err != nil {
			return nil, fmt.Errorf("failed to decode gemini.models: %w", err)
		}
	}
	if len(cfg.Gemini.Models) == 0 {
		cfg.Gemini.Models = DefaultModels()
	}

	// Override with environment variables if set
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		cfg.Gemini.APIKey = apiKey
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		var p int
		if _, err := fmt.Sscanf(port, "%d", &p); err == nil {
			cfg.Server.Port = p
		}
	}
	if redisAddress := os.Getenv("REDIS_ADDRESS"); redisAddress != "" {
		cfg.Redis.Address = redisAddress
	}
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		cfg.Redis.Password = redisPassword
	}
	if extractorURL := os.Getenv("EXTRACTOR_BASE_URL"); extractorURL != "" {
		cfg.Extractor.BaseURL = extractorURL
	}
	if openAIKey := os.Getenv("OPENAI_API_KEY"); openAIKey != "" {
		cfg.OpenAI.APIKey = openAIKey
	}
	if ollamaURL := os.Getenv("OLLAMA_SERVER_URL"); ollamaURL != "" {
		cfg.Ollama.ServerURL = ollamaURL
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Logger.Level = level
	}
	if env := os.Getenv("ENV"); env != "" {
		cfg.Logger.Env = env
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects generation policies the batch runner cannot execute.
func (c *Config) Validate() error {
	g := c.Generation
	switch {
	case g.BatchSize <= 0:
		return fmt.Errorf("generation.batch_size must be positive")
	case g.SingleRequestMax < 0:
		return fmt.Errorf("generation.single_request_max cannot be negative")
	case g.MaxBatchAttempts <= 0:
		return fmt.Errorf("generation.max_batch_attempts must be positive")
	case g.MaxCallRetries < 0:
		return fmt.Errorf("generation.max_call_retries cannot be negative")
	case g.BackoffBase < 0 || g.InterBatchDelay < 0:
		return fmt.Errorf("generation delays cannot be negative")
	case g.MaxContentChars <= 0:
		return fmt.Errorf("generation.max_content_chars must be positive")
	case g.ContentOverlap < 0 || g.ContentOverlap >= 1:
		return fmt.Errorf("generation.content_overlap must be in [0, 1)")
	}
	_, err := c.ModelRegistry()
	return err
}

// ModelRegistry builds the immutable model table from configuration.
func (c *Config) ModelRegistry() (*domain.ModelRegistry, error) {
	registry, err := domain.NewModelRegistry(c.Gemini.Models)
	if err != nil {
		return nil, fmt.Errorf("invalid model registry: %w", err)
	}
	return registry, nil
}

// ParseTTLStringOrDefault parses a duration string, falling back to def.
func (c *Config) ParseTTLStringOrDefault(ttl string, def time.Duration) time.Duration {
	if ttl == "" {
		return def
	}
	d, err := time.ParseDuration(ttl)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
