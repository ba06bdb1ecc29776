package main

import (
	"fmt"
	"log"

	"go.uber.org/zap"

	"github.com/taskrelay/taskrelay-api/internal/handler"
	"github.com/taskrelay/taskrelay-api/internal/repository"
	"github.com/taskrelay/taskrelay-api/internal/service"
	"github.com/taskrelay/taskrelay-api/pkg/cache"
	"github.com/taskrelay/taskrelay-api/pkg/config"
	"github.com/taskrelay/taskrelay-api/pkg/database"
	"github.com/taskrelay/taskrelay-api/pkg/logger"
)

func main() {
	// Load refuses to run without JWT_SECRET; the process must not come up
	// without a signing key.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	// The cache is optional: without Redis the directory listing falls
	// back to the database on every request.
	var cacheRepo *repository.CacheRepository
	if redisClient, err := cache.NewRedis(cfg.Redis); err != nil {
		logr.Warn("redis unavailable, directory cache disabled", zap.Error(err))
	} else {
		cacheRepo = repository.NewCacheRepository(redisClient)
		defer cacheRepo.Close()
	}

	userRepo := repository.NewUserRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)

	tokens := service.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.Expiration)
	resolver := service.NewIdentityResolver(userRepo, adminRepo, logr)

	svcs := handler.Services{
		Tokens:      tokens,
		UserAuth:    service.NewAuthService(userRepo, tokens, nil, logr),
		AdminAuth:   service.NewAuthService(adminRepo, tokens, nil, logr),
		Assignments: service.NewAssignmentService(assignmentRepo, userRepo, adminRepo, nil, logr),
		Directory:   service.NewDirectoryService(adminRepo, cacheRepo, cfg.Directory.CacheTTL, logr),
		OAuth:       service.NewOAuthService(cfg.OAuth, resolver, tokens, logr),
		Metrics:     service.NewMetricsService(),
	}

	r := handler.NewRouter(cfg, logr, svcs)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
