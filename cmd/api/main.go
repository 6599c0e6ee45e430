package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	_ "github.com/redmonkez12/healthmate-api/docs" // Swagger docs
	"github.com/redmonkez12/healthmate-api/internal/auth"
	"github.com/redmonkez12/healthmate-api/internal/chatbot"
	"github.com/redmonkez12/healthmate-api/internal/config"
	"github.com/redmonkez12/healthmate-api/internal/database"
	httpServer "github.com/redmonkez12/healthmate-api/internal/http"
	"github.com/redmonkez12/healthmate-api/internal/logging"
	"github.com/redmonkez12/healthmate-api/internal/report"
	"github.com/redmonkez12/healthmate-api/internal/user"
)

// @title           HealthMate API
// @version         1.0
// @description     Authentication, medical report parsing and a health assistant chatbot for HealthMate.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.NewLogger(cfg.Server.IsDevelopment())
	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
		"token_format", cfg.Auth.TokenFormat,
		"session_revocation", cfg.Auth.Revocation,
	)

	ctx := context.Background()

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	userRepo := user.NewRepository(db)
	if err := userRepo.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("failed to prepare schema: %w", err)
	}

	tokens, err := newTokenService(cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}

	hasher, err := auth.NewPasswordHasher(auth.DefaultHashCost)
	if err != nil {
		return fmt.Errorf("failed to initialize password hasher: %w", err)
	}

	// the denylist is opt-in; without it signout only clears the cookie
	var revoked auth.RevocationList
	if cfg.Auth.Revocation {
		redisClient, err := initRedis(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("failed to initialize Redis: %w", err)
		}
		defer redisClient.Close()
		revoked = auth.NewRedisRevocationList(redisClient)
	}

	authService := auth.NewService(userRepo, tokens, hasher, revoked)
	cookies := auth.NewCookieManager(cfg.Server.IsProduction(), cfg.Auth.TokenTTL)

	// summary tokens are always JWTs signed with the shared secret
	reportHandler := report.NewHandler(auth.NewJWTService(cfg.Auth.Secret, cfg.Auth.TokenTTL), nil)

	var gemini chatbot.Generator
	if cfg.Gemini.APIKey != "" {
		gemini = chatbot.NewGeminiClient(cfg.Gemini.APIKey, cfg.Gemini.BaseURL)
	} else {
		logger.Warn("GEMINI_API_KEY is not set; /chatbot will answer 500")
	}
	assistant := chatbot.NewService(gemini, chatbot.Config{Model: cfg.Gemini.Model}, logger)

	router := httpServer.NewRouter(cfg, httpServer.Handlers{
		Auth:    auth.NewHandler(authService, cookies),
		Report:  reportHandler,
		Chatbot: chatbot.NewHandler(assistant),
	}, auth.NewMiddleware(authService), logger)

	server := httpServer.NewServer(cfg.Server, router, logger)

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Run(runCtx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func newTokenService(cfg config.AuthConfig) (auth.TokenService, error) {
	if cfg.TokenFormat == "paseto" {
		return auth.NewPasetoService([]byte(cfg.Secret), cfg.TokenTTL)
	}
	return auth.NewJWTService(cfg.Secret, cfg.TokenTTL), nil
}

// initRedis connects to Redis and verifies the connection
func initRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}
