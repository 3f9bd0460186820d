package di

import (
	"context"
	"fmt"
	"net/http"

	"cloud-agent/internal/adapter/httpapi"
	"cloud-agent/internal/adapter/tool"
	"cloud-agent/internal/application/port/input"
	"cloud-agent/internal/application/port/output"
	"cloud-agent/internal/application/service"
	"cloud-agent/internal/infrastructure/awscloud"
	"cloud-agent/internal/infrastructure/llm/anthropic"
	"cloud-agent/internal/infrastructure/llm/gemini"
	"cloud-agent/internal/infrastructure/llm/openrouter"
	"cloud-agent/internal/infrastructure/logger"
	"cloud-agent/internal/infrastructure/prompts"
	"cloud-agent/internal/usecase/chatstream"
	"cloud-agent/internal/usecase/planner"

	"github.com/google/generative-ai-go/genai"
)

type Container struct {
	Config  Config
	Logger  output.LoggerPort
	Tools   output.ToolRegistry
	Planner input.Planner
	Chat    input.ChatStreamer
	Handler http.Handler

	genai *genai.Client
}

func NewContainer(ctx context.Context, cfg Config) (*Container, error) {
	log, err := logger.NewLoggerAdapter(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	c := &Container{Config: cfg, Logger: log}

	clients, err := awscloud.LoadSDKClients(ctx, cfg.AWSRegion)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to create aws clients: %w", err)
	}
	compute := awscloud.NewCompute(clients, awscloud.ComputeConfig{
		DefaultRegion: cfg.AWSRegion,
		AMI:           cfg.EC2AMI,
		KeyName:       cfg.EC2KeyName,
		SGPrefix:      cfg.EC2SGPrefix,
		WaitTimeout:   cfg.EC2WaitTimeout,
	}, log)
	storage := awscloud.NewStorage(clients, awscloud.StorageConfig{
		DefaultRegion: cfg.AWSRegion,
		BucketSuffix:  cfg.S3BucketSuffix,
	}, log)

	c.genai, err = gemini.NewClient(ctx, cfg.GoogleAPIKey)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	formatter := gemini.NewFormatter(c.genai, cfg.FormatterModel, prompts.FormatterPrompt, log)

	llm, err := c.newPlannerLLM(log)
	if err != nil {
		c.Close()
		return nil, err
	}

	registry := service.NewToolRegistry()
	defaults := tool.Defaults{Region: cfg.AWSRegion, InstanceType: awscloud.DefaultInstanceType, KeyName: cfg.EC2KeyName}
	for _, t := range append(tool.CloudTools(compute, storage, defaults), tool.NewFormatResponseTool(formatter)) {
		if err := registry.Register(t); err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to register tool: %w", err)
		}
	}
	c.Tools = registry

	template := cfg.SystemPrompt
	if template == "" {
		template = prompts.PlannerPrompt
	}
	renderPrompt := func(tools output.ToolRegistry) (string, error) {
		return prompts.GeneratePlannerPrompt(template, tools, cfg.AWSRegion)
	}

	c.Planner = planner.New(llm, formatter, renderPrompt, log.WithField("component", "planner"), planner.Config{
		MaxIterations: cfg.MaxIterations,
		Summarize:     cfg.SummarizeOutputs,
	})
	c.Chat = chatstream.New(c.Planner, registry, log.WithField("component", "chatstream"))

	c.Handler = httpapi.NewRouter(httpapi.Deps{
		Chat:    c.Chat,
		Tools:   registry,
		Storage: storage,
		Logger:  log,
	}, httpapi.Config{
		AccessLog: true,
		LogLevel:  cfg.LogLevel,
		JSONLogs:  cfg.LogFormat != logger.FormatConsole,
	})

	log.Info("Container ready",
		"planner_provider", cfg.PlannerProvider,
		"planner_model", cfg.PlannerModel,
		"tools", len(registry.All()),
		"region", cfg.AWSRegion,
	)
	return c, nil
}

func (c *Container) newPlannerLLM(log output.LoggerPort) (output.LLMPort, error) {
	cfg := c.Config
	switch cfg.PlannerProvider {
	case ProviderGemini:
		return gemini.NewGeminiAdapter(c.genai, cfg.PlannerModel, log), nil
	case ProviderOpenRouter, ProviderOpenAI:
		return openrouter.NewOpenRouterAdapter(openrouter.Config{
			APIKey:  cfg.PlannerAPIKey,
			Model:   cfg.PlannerModel,
			BaseURL: cfg.PlannerBaseURL,
			Logger:  log,
		}), nil
	case ProviderAnthropic:
		return anthropic.NewAnthropicAdapter(anthropic.Config{
			APIKey: cfg.PlannerAPIKey,
			Model:  cfg.PlannerModel,
			Logger: log,
		}), nil
	default:
		return nil, fmt.Errorf("unknown planner provider %q", cfg.PlannerProvider)
	}
}

func (c *Container) Close() {
	if c.genai != nil {
		if err := c.genai.Close(); err != nil && c.Logger != nil {
			c.Logger.Warn("Failed to close gemini client", "error", err)
		}
	}
	if c.Logger != nil {
		c.Logger.Close()
	}
}
