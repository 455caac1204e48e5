package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/orbrick/taskorchestrator/internal/agent"
	"github.com/orbrick/taskorchestrator/internal/cache"
	"github.com/orbrick/taskorchestrator/internal/config"
	"github.com/orbrick/taskorchestrator/internal/executor"
	"github.com/orbrick/taskorchestrator/internal/httpapi"
	"github.com/orbrick/taskorchestrator/internal/planner"
	"github.com/orbrick/taskorchestrator/internal/providers/gateway"
	"github.com/orbrick/taskorchestrator/internal/providers/gemini"
	"github.com/orbrick/taskorchestrator/internal/ratelimit"
	"github.com/orbrick/taskorchestrator/internal/telemetry"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("godotenv: %v", err)
	}

	logger, err := telemetry.NewLogger(os.Getenv("ENV") != "production")
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		logger.Fatal("config load failed", zap.Error(err))
	}

	registry := agent.NewRegistry()
	gatewayClient := newGatewayClient()
	registerDefaultAgents(registry, gatewayClient)

	exec := &executor.Executor{
		Registry:    registry,
		Cache:       cache.New(cfg.Cache.Enabled, time.Duration(cfg.Cache.TTLMs)*time.Millisecond),
		RateLimiter: ratelimit.New(cfg.RateLimit.Enabled, cfg.RateLimit.RequestsPerInterval, cfg.RateLimit.IntervalMs),
		Logger:      logger,
	}

	agentNames := make([]string, 0, len(registry.List()))
	for _, a := range registry.List() {
		agentNames = append(agentNames, a.Name())
	}
	plan := &planner.Planner{Gateway: gatewayClient, AgentNames: agentNames}

	server := httpapi.NewServer(plan, exec, cfg, logger)

	httpServer := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: server.Routes(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("listening", zap.String("addr", cfg.HTTP.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// newGatewayClient picks the Gemini backend when it's the requested or only
// configured provider, otherwise defers to gateway.NewFromEnv's
// openai/anthropic/mock selection. It lives here rather than in
// gateway.NewFromEnv because internal/providers/gemini imports gateway for
// the Client type; a branch back to gemini from inside gateway would cycle.
func newGatewayClient() gateway.Client {
	provider := strings.ToLower(strings.TrimSpace(os.Getenv("GATEWAY_PROVIDER")))
	if provider == "gemini" || (provider == "" && os.Getenv("GOOGLE_API_KEY") != "") {
		return gemini.NewFromEnv()
	}
	return gateway.NewFromEnv()
}

// registerDefaultAgents wires the full adapter roster ground truthed on
// the teacher's internal/tools package (see internal/agent).
func registerDefaultAgents(registry *agent.Registry, client gateway.Client) {
	adapters := []agent.Adapter{
		&agent.LLMAnswerAgent{Client: client},
		&agent.EchoAgent{},
		&agent.HTTPFetchAgent{},
		&agent.HTMLToTextAgent{},
		&agent.ExtractLinksAgent{},
		&agent.SummarizeAgent{Client: client},
		&agent.SummarizeChunkedAgent{Client: client},
		&agent.JSONPrettyAgent{},
		&agent.RegexExtractAgent{},
		&agent.CSVParseAgent{},
		&agent.HTTPPostJSONAgent{},
		&agent.FileExtractAgent{},
		&agent.PDFExtractAgent{},
	}
	for _, a := range adapters {
		if err := registry.Register(a); err != nil {
			log.Fatalf("register agent %s: %v", a.Name(), err)
		}
	}
	if err := registry.Register(&agent.CallAgent{Registry: registry}); err != nil {
		log.Fatalf("register agent call: %v", err)
	}
}
