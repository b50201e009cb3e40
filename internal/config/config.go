package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config aggregates every runtime setting for the service.
type Config struct {
	Server ServerConfig
	LLM    LLMConfig
	Chat   ChatConfig
	Mood   MoodConfig
	Log    LogConfig
}

// Load reads the full configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	llm, err := loadLLMConfig()
	if err != nil {
		return nil, err
	}

	chat, err := loadChatConfig()
	if err != nil {
		return nil, err
	}

	mood, err := loadMoodConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server: server,
		LLM:    llm,
		Chat:   chat,
		Mood:   mood,
		Log:    loadLogConfig(),
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Accept ":8080" or "127.0.0.1:8080" verbatim.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// Supported LLM provider names.
const (
	ProviderOpenAI = "openai"
	ProviderArk    = "ark"
)

// LLMConfig describes the external completion collaborator.
type LLMConfig struct {
	Provider string

	// OpenAI-compatible endpoints (OpenAI, OpenRouter, Together).
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	// Volcengine Ark.
	ArkAPIKey    string
	ArkAccessKey string
	ArkSecretKey string
	ArkModel     string
	ArkBaseURL   string
	ArkRegion    string

	Temperature    *float64
	TopP           *float64
	MaxTokens      *int
	TimeoutSeconds int
	StreamResponse bool
}

// Enabled reports whether the selected provider has usable credentials.
func (c LLMConfig) Enabled() bool {
	switch c.Provider {
	case ProviderArk:
		return c.ArkEnabled()
	case ProviderOpenAI:
		return c.OpenAIEnabled()
	default:
		return false
	}
}

// OpenAIEnabled reports whether the OpenAI-compatible provider is configured.
func (c LLMConfig) OpenAIEnabled() bool {
	return c.OpenAIAPIKey != "" && c.OpenAIModel != ""
}

// ArkEnabled reports whether Ark credentials are present.
func (c LLMConfig) ArkEnabled() bool {
	return c.ArkModel != "" && (c.ArkAPIKey != "" || (c.ArkAccessKey != "" && c.ArkSecretKey != ""))
}

// NewArkChatModel creates an eino chat model from the Ark settings.
func (c LLMConfig) NewArkChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.ArkEnabled() {
		return nil, fmt.Errorf("ark credentials missing: provide ARK_API_KEY + Model, or the AK/SK pair")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.ArkBaseURL,
		Region:      c.ArkRegion,
		APIKey:      c.ArkAPIKey,
		AccessKey:   c.ArkAccessKey,
		SecretKey:   c.ArkSecretKey,
		Model:       c.ArkModel,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadLLMConfig() (LLMConfig, error) {
	temperature, err := parseOptionalFloatEnv("LLM_TEMPERATURE")
	if err != nil {
		return LLMConfig{}, err
	}
	if temperature == nil {
		val := 0.6
		temperature = &val
	}

	topP, err := parseOptionalFloatEnv("LLM_TOP_P")
	if err != nil {
		return LLMConfig{}, err
	}
	if topP == nil {
		val := 0.9
		topP = &val
	}

	maxTokens, err := parseOptionalIntEnv("LLM_MAX_TOKENS")
	if err != nil {
		return LLMConfig{}, err
	}
	if maxTokens == nil {
		val := 300
		maxTokens = &val
	}

	timeout, err := parseOptionalIntEnv("LLM_TIMEOUT_SECONDS")
	if err != nil {
		return LLMConfig{}, err
	}
	timeoutSeconds := 30
	if timeout != nil && *timeout > 0 {
		timeoutSeconds = *timeout
	}

	stream, err := parseBoolEnv("LLM_STREAM", true)
	if err != nil {
		return LLMConfig{}, err
	}

	provider := strings.ToLower(getEnvOrDefault("LLM_PROVIDER", ProviderOpenAI))

	return LLMConfig{
		Provider:       provider,
		OpenAIAPIKey:   strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		OpenAIBaseURL:  getEnvOrDefault("OPENAI_BASE_URL", "https://openrouter.ai/api/v1"),
		OpenAIModel:    getEnvOrDefault("OPENAI_MODEL", "openai/gpt-3.5-turbo"),
		ArkAPIKey:      strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		ArkAccessKey:   strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		ArkSecretKey:   strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		ArkModel:       strings.TrimSpace(os.Getenv("Model")),
		ArkBaseURL:     getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		ArkRegion:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature:    temperature,
		TopP:           topP,
		MaxTokens:      maxTokens,
		TimeoutSeconds: timeoutSeconds,
		StreamResponse: stream,
	}, nil
}

// ChatConfig tunes the conversation core.
type ChatConfig struct {
	MaxTurns     int
	SystemPrompt string
}

func loadChatConfig() (ChatConfig, error) {
	maxTurns := 16
	if override, err := parseOptionalIntEnv("CHAT_MAX_TURNS"); err != nil {
		return ChatConfig{}, err
	} else if override != nil {
		if *override < 1 {
			maxTurns = 1
		} else {
			maxTurns = *override
		}
	}

	return ChatConfig{
		MaxTurns:     maxTurns,
		SystemPrompt: strings.TrimSpace(os.Getenv("CHAT_SYSTEM_PROMPT")),
	}, nil
}

// MoodConfig tunes the mood observation store.
type MoodConfig struct {
	SmoothingAlpha float64
	RecentLimit    int
}

func loadMoodConfig() (MoodConfig, error) {
	alpha := 1.0
	if override, err := parseOptionalFloatEnv("MOOD_SMOOTHING_ALPHA"); err != nil {
		return MoodConfig{}, err
	} else if override != nil {
		alpha = *override
	}
	if alpha < 0 || alpha > 1 {
		return MoodConfig{}, fmt.Errorf("MOOD_SMOOTHING_ALPHA must be within [0,1], got %v", alpha)
	}

	limit := 64
	if override, err := parseOptionalIntEnv("MOOD_RECENT_LIMIT"); err != nil {
		return MoodConfig{}, err
	} else if override != nil && *override > 0 {
		limit = *override
	}

	return MoodConfig{SmoothingAlpha: alpha, RecentLimit: limit}, nil
}

// LogConfig describes log output.
type LogConfig struct {
	FilePath string
	Prod     bool
}

func loadLogConfig() LogConfig {
	return LogConfig{
		FilePath: getEnvOrDefault("LOG_FILE", "logs/calmana.log"),
		Prod:     strings.EqualFold(getEnvOrDefault("APP_ENV", "dev"), "prod"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
