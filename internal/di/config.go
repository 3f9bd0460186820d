package di

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud-agent/internal/application/port/output"
)

const (
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderOpenAI     = "openai"
	ProviderAnthropic  = "anthropic"
)

const (
	defaultHTTPAddr          = ":8000"
	defaultShutdownTimeout   = 10 * time.Second
	defaultPlannerProvider   = ProviderGemini
	defaultPlannerModel      = "gemini-2.5-flash"
	defaultMaxIterations     = 25
	defaultFormatterModel    = "gemini-2.5-flash-lite"
	defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"
	defaultRegion            = "us-east-1"
	defaultAMI               = "ami-020cba7c55df1f615"
	defaultSGPrefix          = "cloud-agent-sg"
	defaultWaitTimeout       = 5 * time.Minute
	defaultBucketSuffix      = "-cloud-agent"
)

type Config struct {
	HTTPAddr        string
	ShutdownTimeout time.Duration
	LogLevel        string
	LogFormat       string

	PlannerProvider  string
	PlannerModel     string
	PlannerAPIKey    string
	PlannerBaseURL   string
	MaxIterations    int
	GoogleAPIKey     string
	FormatterModel   string
	SystemPrompt     string
	SummarizeOutputs bool

	AWSRegion      string
	EC2AMI         string
	EC2KeyName     string
	EC2SGPrefix    string
	EC2WaitTimeout time.Duration
	S3BucketSuffix string
}

// LoadConfig reads the service configuration from env. Provider keys are
// resolved for the selected planner provider only.
func LoadConfig(env output.ConfigPort) (Config, error) {
	cfg := Config{
		HTTPAddr:        env.GetWithDefault("HTTP_ADDR", defaultHTTPAddr),
		ShutdownTimeout: env.GetDuration("SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		LogLevel:        env.GetWithDefault("LOG_LEVEL", "info"),
		LogFormat:       env.GetWithDefault("LOG_FORMAT", "json"),

		PlannerProvider:  strings.ToLower(env.GetWithDefault("PLANNER_PROVIDER", defaultPlannerProvider)),
		PlannerModel:     env.GetWithDefault("PLANNER_MODEL", defaultPlannerModel),
		MaxIterations:    env.GetInt("PLANNER_MAX_ITERATIONS", defaultMaxIterations),
		GoogleAPIKey:     env.GetWithDefault("GOOGLE_API_KEY", env.Get("GEMINI_API_KEY")),
		FormatterModel:   env.GetWithDefault("FORMATTER_MODEL", defaultFormatterModel),
		SystemPrompt:     env.Get("PLANNER_SYSTEM_PROMPT"),
		SummarizeOutputs: env.GetBool("SUMMARIZE_OUTPUTS", true),

		AWSRegion:      env.GetWithDefault("AWS_REGION", defaultRegion),
		EC2AMI:         env.GetWithDefault("EC2_AMI_ID", defaultAMI),
		EC2KeyName:     env.Get("EC2_KEY_NAME"),
		EC2SGPrefix:    env.GetWithDefault("EC2_SECURITY_GROUP_PREFIX", defaultSGPrefix),
		EC2WaitTimeout: env.GetDuration("EC2_WAIT_TIMEOUT", defaultWaitTimeout),
		S3BucketSuffix: env.GetWithDefault("S3_BUCKET_SUFFIX", defaultBucketSuffix),
	}

	switch cfg.PlannerProvider {
	case ProviderGemini:
		cfg.PlannerAPIKey = cfg.GoogleAPIKey
	case ProviderOpenRouter:
		cfg.PlannerAPIKey = env.Get("OPENROUTER_API_KEY")
		cfg.PlannerBaseURL = env.GetWithDefault("OPENROUTER_BASE_URL", defaultOpenRouterBaseURL)
	case ProviderOpenAI:
		cfg.PlannerAPIKey = env.Get("OPENAI_API_KEY")
		cfg.PlannerBaseURL = env.Get("OPENAI_BASE_URL")
	case ProviderAnthropic:
		cfg.PlannerAPIKey = env.Get("ANTHROPIC_API_KEY")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.HTTPAddr == "" {
		errs = append(errs, errors.New("HTTP_ADDR must not be empty"))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_TIMEOUT must be > 0"))
	}
	switch c.PlannerProvider {
	case ProviderGemini, ProviderOpenRouter, ProviderOpenAI, ProviderAnthropic:
	default:
		errs = append(errs, fmt.Errorf("unknown PLANNER_PROVIDER %q", c.PlannerProvider))
	}
	if c.PlannerAPIKey == "" {
		errs = append(errs, fmt.Errorf("missing API key for planner provider %q", c.PlannerProvider))
	}
	if c.GoogleAPIKey == "" {
		errs = append(errs, errors.New("missing GOOGLE_API_KEY or GEMINI_API_KEY for the formatter"))
	}
	if c.MaxIterations <= 0 {
		errs = append(errs, errors.New("PLANNER_MAX_ITERATIONS must be > 0"))
	}
	if c.EC2WaitTimeout <= 0 {
		errs = append(errs, errors.New("EC2_WAIT_TIMEOUT must be > 0"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
