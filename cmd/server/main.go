package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/planMaster/backend/internal/codegen"
	"github.com/planMaster/backend/internal/config"
	"github.com/planMaster/backend/internal/handler"
	"github.com/planMaster/backend/internal/notify"
	"github.com/planMaster/backend/internal/router"
	"github.com/planMaster/backend/internal/service"
	"github.com/planMaster/backend/internal/store"
	"github.com/planMaster/backend/pkg/codegenapi"
	"github.com/planMaster/backend/pkg/encrypt"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			cfgPath = "config.yaml"
		}
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	kv, err := buildKV(cfg)
	if err != nil {
		log.Fatalf("init storage: %v", err)
	}
	if cfg.Storage.AESKey != "" {
		if err := encrypt.ValidateKey(cfg.Storage.AESKey); err != nil {
			log.Fatalf("storage.aes_key: %v", err)
		}
		kv = store.NewEncryptedKV(kv, cfg.Storage.AESKey)
	}
	st := store.New(kv)

	// Remote agent service client and poll machinery.
	apiClient := codegenapi.NewClient(cfg.Codegen.BaseURL, cfg.Codegen.Token)
	pool := codegen.NewPool(cfg.Codegen.MaxPollers)

	// Services
	notificationService := service.NewNotificationService(st)
	notifier := notify.NewStoreNotifier(notificationService)

	poller := codegen.NewPoller(apiClient, st, notifier, pool,
		pollConfig(cfg.Codegen.PlanInitialDelay, cfg.Codegen.PlanInterval, cfg.Codegen.PlanMaxAttempts),
		pollConfig(cfg.Codegen.ImplInitialDelay, cfg.Codegen.ImplInterval, cfg.Codegen.ImplMaxAttempts),
	)

	projectService := service.NewProjectService(st)
	projectService.SetJobCanceller(poller)
	reqService := service.NewRequirementService(st)
	planService := service.NewPlanService(st, apiClient, poller, notifier, cfg.Codegen.OrgID)

	// Handlers
	authHandler := handler.NewAuthHandler(cfg.JWT.Secret, cfg.JWT.AccessKey,
		time.Duration(cfg.JWT.ExpireHours)*time.Hour)
	projectHandler := handler.NewProjectHandler(projectService)
	requirementHandler := handler.NewRequirementHandler(reqService)
	planHandler := handler.NewPlanHandler(planService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	agentRunHandler := handler.NewAgentRunHandler(apiClient, cfg.Codegen.OrgID)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := router.Setup(router.Deps{
		JWTSecret:    cfg.JWT.Secret,
		Auth:         authHandler,
		Project:      projectHandler,
		Requirement:  requirementHandler,
		Plan:         planHandler,
		Notification: notificationHandler,
		AgentRun:     agentRunHandler,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		log.Printf("Server starting on %s (storage backend %s)", addr, cfg.Storage.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server run: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}

	// Let in-flight poll chains record their outcome before exiting.
	poller.Wait()
	pool.Shutdown()
}

// buildKV selects the persistence primitive behind the entity store.
func buildKV(cfg *config.Config) (store.KV, error) {
	switch cfg.Storage.Backend {
	case "memory", "":
		return store.NewMemoryKV(), nil
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		return store.NewRedisKV(rdb, cfg.Storage.KeyPrefix), nil
	case "mysql":
		db, err := gorm.Open(mysql.Open(cfg.Database.DSN()), &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		return store.NewGormKV(db)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func pollConfig(initialDelay, interval, maxAttempts int) codegen.PollConfig {
	return codegen.PollConfig{
		InitialDelay: time.Duration(initialDelay) * time.Second,
		Interval:     time.Duration(interval) * time.Second,
		MaxAttempts:  uint64(maxAttempts),
	}
}
