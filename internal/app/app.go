// Package app инициализирует все компоненты приложения.
// app.go — точка сборки: создаёт БД-пул, репозитории, сервисы,
// обработчики, HTTP-сервер и планировщик.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"vibehub.ru/vibe-points/internal/api"
	"vibehub.ru/vibe-points/internal/config"
	"vibehub.ru/vibe-points/internal/db/postgres"
	"vibehub.ru/vibe-points/internal/features/admin"
	"vibehub.ru/vibe-points/internal/features/notifications"
	"vibehub.ru/vibe-points/internal/features/points"
	"vibehub.ru/vibe-points/internal/features/ratings"
	"vibehub.ru/vibe-points/internal/features/votes"
	"vibehub.ru/vibe-points/internal/jobs"
	"vibehub.ru/vibe-points/internal/server"
)

// App содержит все компоненты приложения.
type App struct {
	Server    *http.Server
	Scheduler *jobs.Scheduler
	DB        *pgxpool.Pool
}

// New создаёт и инициализирует приложение.
// Порядок инициализации важен — компоненты зависят друг от друга.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// === 1. База данных ===
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}

	if err := runMigrations(ctx, pool); err != nil {
		return nil, fmt.Errorf("ошибка миграций: %w", err)
	}

	// === 2. Уведомления ===
	var notifier notifications.Notifier
	if cfg.TelegramBotToken != "" {
		notifier, err = notifications.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramNotifyChatID)
		if err != nil {
			return nil, fmt.Errorf("ошибка инициализации уведомлений: %w", err)
		}
	} else {
		notifier = notifications.NewLogNotifier()
	}

	// === 3. Репозитории ===
	rules := points.RulesFromConfig(cfg)
	pointsRepo := points.NewRepository(pool, rules)
	ratingsRepo := ratings.NewRepository(pool)
	votesRepo := votes.NewRepository(pool, pointsRepo, ratingsRepo, rules)

	// === 4. Сервисы ===
	pointsService := points.NewService(pointsRepo)
	ratingsService := ratings.NewService(ratingsRepo)
	votesService := votes.NewService(votesRepo, notifier)
	adminService := admin.NewService(cfg)

	// === 5. HTTP и планировщик ===
	handlers := api.New(ratingsService, votesService, pointsService, adminService)
	httpServer := server.New(cfg, handlers)
	scheduler := jobs.NewScheduler(pointsRepo, cfg)

	return &App{
		Server:    httpServer,
		Scheduler: scheduler,
		DB:        pool,
	}, nil
}

// runMigrations выполняет все SQL-миграции по порядку.
func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return err
	}

	migrations := []struct {
		version int
		sql     string
	}{
		{1, migration001Ratings},
		{2, migration002Points},
		{3, migration003Votes},
		{4, migration004Snapshots},
	}

	for _, m := range migrations {
		if err := postgres.ExecMigrationSQL(ctx, pool, m.version, m.sql); err != nil {
			return fmt.Errorf("миграция %d: %w", m.version, err)
		}
		log.Infof("Миграция %d применена", m.version)
	}

	return nil
}
