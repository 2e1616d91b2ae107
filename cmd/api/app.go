package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/clario-app/clario/internal/adapters/cache"
	adapterHTTP "github.com/clario-app/clario/internal/adapters/handler/http"
	"github.com/clario-app/clario/internal/adapters/repository"
	"github.com/clario-app/clario/internal/config"
	"github.com/clario-app/clario/internal/core/domain"
	"github.com/clario-app/clario/internal/core/services"
	"github.com/clario-app/clario/internal/core/workers"
)

type repositories struct {
	users      domain.UserRepository
	profiles   domain.ProfileRepository
	records    domain.SessionRecordRepository
	categories domain.CategoryRepository
	habits     domain.HabitRepository
}

type app struct {
	router    *gin.Engine
	worker    *workers.StreakWorker
	scheduler *workers.Scheduler
	db        *sqlx.DB
	redis     *redis.Client
}

func openPostgres(ctx context.Context, cfg config.DBConfig) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "pgx", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := repository.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func postgresRepositories(db *sqlx.DB) repositories {
	return repositories{
		users:      repository.NewPostgresUserRepository(db),
		profiles:   repository.NewPostgresProfileRepository(db),
		records:    repository.NewPostgresSessionRecordRepository(db),
		categories: repository.NewPostgresCategoryRepository(db),
		habits:     repository.NewPostgresHabitRepository(db),
	}
}

func memoryRepositories() repositories {
	return repositories{
		users:      repository.NewInMemoryUserRepository(),
		profiles:   repository.NewInMemoryProfileRepository(),
		records:    repository.NewInMemorySessionRecordRepository(),
		categories: repository.NewInMemoryCategoryRepository(),
		habits:     repository.NewInMemoryHabitRepository(),
	}
}

// newApp wires storage, services, workers and the HTTP router from cfg.
// Redis is optional: when it cannot be reached the service runs without
// caching and rate limiting.
func newApp(ctx context.Context, cfg *config.Config, startTime time.Time) (*app, error) {
	a := &app{}

	var repos repositories
	switch cfg.Storage {
	case config.StorageMemory:
		log.Println("[STORAGE] using in-memory repositories, data is lost on restart")
		repos = memoryRepositories()
	default:
		log.Println("Connecting to database...")
		db, err := openPostgres(ctx, cfg.DB)
		if err != nil {
			return nil, err
		}
		log.Println("Database connected successfully.")
		a.db = db
		repos = postgresRepositories(db)
	}

	if cfg.Redis.Enabled {
		rdb, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Printf("[CACHE] redis unavailable, running without cache: %v", err)
		} else {
			a.redis = rdb
			repos.habits = repository.NewCachedHabitRepository(repos.habits, rdb)
			repos.profiles = repository.NewCachedProfileRepository(repos.profiles, rdb)
		}
	}

	loc := cfg.Location

	a.worker = workers.NewStreakWorker(repos.habits, loc)
	scheduler, err := workers.NewScheduler(repos.habits, a.worker, cfg.StreakRefreshAt, loc)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.scheduler = scheduler

	authService := services.NewAuthService(repos.users)
	tokenService := services.NewTokenService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL, repos.users)
	categoryService := services.NewCategoryService(repos.categories)
	timerService := services.NewTimerService(repos.profiles, repos.records, categoryService, loc)
	statsService := services.NewStatsService(repos.profiles, repos.records, loc)
	habitService := services.NewHabitService(repos.habits, a.worker, loc)

	a.router = adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		AuthHandler:     adapterHTTP.NewAuthHandler(authService, tokenService),
		TimerHandler:    adapterHTTP.NewTimerHandler(timerService),
		CategoryHandler: adapterHTTP.NewCategoryHandler(categoryService),
		StatsHandler:    adapterHTTP.NewStatsHandler(statsService),
		HabitHandler:    adapterHTTP.NewHabitHandler(habitService),
		TokenService:    tokenService,
		DB:              a.db,
		Redis:           a.redis,
		RateLimit:       cfg.RateLimit,
		StartTime:       startTime,
	})

	return a, nil
}

// start launches the background streak refresh. Both stop with ctx.
func (a *app) start(ctx context.Context) error {
	a.worker.Start(ctx)
	return a.scheduler.Start(ctx)
}

func (a *app) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			log.Printf("[CACHE] close: %v", err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			log.Printf("[STORAGE] close: %v", err)
		}
	}
}
