package main

import (
	"context"
	"log"
	"time"

	"github.com/MikeGii/medunacy-sub000/internal/config"
	"github.com/MikeGii/medunacy-sub000/internal/database"
	"github.com/MikeGii/medunacy-sub000/internal/event"
	"github.com/MikeGii/medunacy-sub000/internal/repository"
	"github.com/MikeGii/medunacy-sub000/internal/repository/cache"
	"github.com/MikeGii/medunacy-sub000/internal/repository/memory"
	"github.com/MikeGii/medunacy-sub000/internal/server"
	"github.com/MikeGii/medunacy-sub000/internal/services"
	"github.com/MikeGii/medunacy-sub000/internal/ws"

	"github.com/google/uuid"
)

// @title           Medunacy Test Engine API
// @version         1.0
// @description     Test-taking, attempt quotas and scoring for the medical education platform
// @host            localhost:8080
// @BasePath        /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Enter "Bearer {token}"

type stores struct {
	users    services.UserStore
	tests    services.TestStore
	attempts services.AttemptStore
	sessions services.SessionStore
	results  services.ResultStore
}

func openStores(cfg *config.Config) stores {
	if cfg.StoreDriver == config.StoreDriverMemory {
		log.Println("using in-memory store, data is lost on restart")
		m := memory.NewStore()
		return stores{users: m, tests: m, attempts: m, sessions: m, results: m}
	}

	db := database.Connect(cfg)
	database.AutoMigrate(db)
	return stores{
		users:    repository.NewUserRepository(db),
		tests:    repository.NewTestRepository(db),
		attempts: repository.NewAttemptRepository(db),
		sessions: repository.NewSessionRepository(db),
		results:  repository.NewResultRepository(db),
	}
}

func main() {
	cfg := config.Load()
	clock := services.SystemClock{}

	st := openStores(cfg)

	var warmer services.ResultWarmer
	if cfg.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		client, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword)
		cancel()
		if err != nil {
			log.Printf("result cache disabled: %v", err)
		} else {
			defer client.Close()
			rc := cache.NewResultCache(st.results, client, cfg.ResultCacheTTL)
			st.results = rc
			warmer = rc
			log.Printf("result cache enabled (%s, ttl %s)", cfg.RedisAddr, cfg.ResultCacheTTL)
		}
	}

	publisher, err := event.NewPublisher(cfg.RabbitMQURI, cfg.RabbitMQExchange)
	if err != nil {
		log.Fatalf("failed to set up event publisher: %v", err)
	}
	defer publisher.Close()

	hub := ws.NewHub()

	authService := services.NewAuthService(st.users, cfg.JWTSecret, clock)
	userService := services.NewUserService(st.users)
	testService := services.NewTestService(st.tests, st.users)
	quotaService := services.NewQuotaService(st.attempts, clock, cfg.TrainingDailyLimit, cfg.ExamDailyLimit)
	scoringService := services.NewScoringService()
	sessionService := services.NewSessionService(
		st.users, st.tests, st.sessions, st.results, quotaService, scoringService, clock,
	).WithEvents(publisher)
	if warmer != nil {
		sessionService.WithResultWarmer(warmer)
	}

	if cfg.SessionRetention > 0 {
		sweeper := services.NewSessionSweeper(st.sessions, clock, cfg.SessionRetention, cfg.SweepInterval).
			WithEvents(publisher).
			OnAbandon(func(id uuid.UUID) {
				hub.Close(id, &ws.WSMessage{Type: ws.MessageSessionAbandoned, Data: map[string]string{"session_id": id.String()}})
			})
		sweeper.Start()
		defer sweeper.Stop()
	} else {
		log.Println("SESSION_RETENTION not set, stale session sweeper disabled")
	}

	r := server.NewRouter(server.Services{
		Auth:     authService,
		Users:    userService,
		Tests:    testService,
		Quota:    quotaService,
		Sessions: sessionService,
		Clock:    clock,
		Hub:      hub,
	}, cfg.CORSOrigins)

	log.Printf("server starting on :%s", cfg.ServerPort)
	if err := r.Run(":" + cfg.ServerPort); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
