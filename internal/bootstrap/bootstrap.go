package bootstrap

import (
	"context"
	"fmt"

	"voicebank-server/internal/agent"
	agentHandler "voicebank-server/internal/agent/handler"
	"voicebank-server/internal/clients/banking"
	"voicebank-server/internal/clients/googlevoice"
	openaiClient "voicebank-server/internal/clients/openai"
	redisClient "voicebank-server/internal/clients/redis"
	"voicebank-server/internal/config"
	"voicebank-server/internal/intent"
	"voicebank-server/internal/lang"
	"voicebank-server/internal/observability"
	phoneHandler "voicebank-server/internal/phone/handler"
	phoneProcessor "voicebank-server/internal/phone/processor"
	"voicebank-server/internal/ratelimit"
	sessionHandler "voicebank-server/internal/session/handler"
	sessionProcessor "voicebank-server/internal/session/processor"
	"voicebank-server/internal/store"
	"voicebank-server/internal/temperature"
	transferProcessor "voicebank-server/internal/transfer/processor"

	"github.com/gin-gonic/gin"
)

// Dependencies holds all initialized application dependencies
type Dependencies struct {
	// Core
	Store  *store.Store
	Logger *observability.Logger

	// Handlers
	SessionHandler sessionHandler.Handler
	AgentHandler   agentHandler.Handler
	PhoneHandler   phoneHandler.Handler

	// Middleware services
	RateLimiter *ratelimit.Service
	SessionAuth gin.HandlerFunc

	// Clients kept for cleanup
	RedisClient *redisClient.Client
}

// Initialize sets up all application dependencies
func Initialize(ctx context.Context, cfg *config.Config, logger *observability.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: logger}

	// Database store
	st, err := store.New(cfg.Database.ConnectionString(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	deps.Store = &st

	// Language pack, with optional overlay file
	pack := lang.NewPack()
	if cfg.Services.LanguagePackPath != "" {
		if err := pack.LoadFile(cfg.Services.LanguagePackPath); err != nil {
			return nil, fmt.Errorf("failed to load language pack overlay: %w", err)
		}
	}
	classifier := intent.New(pack, intent.CancelWins)

	// Zone state: Redis when configured, process memory otherwise
	deps.RedisClient, err = redisClient.NewClient(cfg.Redis, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create redis client: %w", err)
	}
	var zones temperature.ZoneStore
	if deps.RedisClient != nil {
		zones = temperature.NewRedisStore(deps.RedisClient)
	} else {
		zones = temperature.NewMemoryStore()
	}

	// Banking API client and transfer processor
	bankingClient := banking.NewClient(cfg.Banking.BaseURL, logger)
	transfers := transferProcessor.New(bankingClient, deps.Store, logger)

	// Conversation engine
	chatModel := agent.NewOpenAIChatModel(cfg.Services.OpenAIAPIKey)
	conversationAgent := agent.New(chatModel, pack, classifier, transfers, zones, deps.Store, logger)
	deps.AgentHandler = agentHandler.New(conversationAgent, deps.Store, logger)

	// Session tokens
	sessionProc := sessionProcessor.New(cfg.Auth.SessionJWTSecret, logger)
	deps.SessionHandler = sessionHandler.New(sessionProc, deps.Store, logger)
	deps.SessionAuth = sessionProc.Middleware()
	deps.RateLimiter = ratelimit.NewService(deps.RedisClient, cfg.Server.TokenRateLimitRPM, logger)

	// Phone channel: native dialog voice when a Google AI key is present,
	// otherwise transcription plus the tool-calling agent over OpenAI.
	var provider phoneProcessor.VoiceProvider
	if cfg.Services.GoogleAIAPIKey != "" {
		liveClient, err := googlevoice.NewLiveClient(cfg.Services.GoogleAIAPIKey, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create live voice client: %w", err)
		}
		provider = liveClient
	} else {
		realtimeClient, err := openaiClient.NewRealtimeClient(cfg.Services.OpenAIAPIKey, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create realtime client: %w", err)
		}
		provider = phoneProcessor.NewAgentVoiceProvider(realtimeClient, conversationAgent, logger)
	}
	phoneProc := phoneProcessor.New(provider, pack, deps.Store, logger)
	deps.PhoneHandler = phoneHandler.New(phoneProc, deps.Store, cfg.Phone.StreamURL, logger)

	logger.Info(ctx, "dependencies initialized")
	return deps, nil
}

// Close releases held connections.
func (d *Dependencies) Close() {
	if d.Store != nil {
		_ = d.Store.Close()
	}
	if d.RedisClient != nil {
		_ = d.RedisClient.Close()
	}
}
