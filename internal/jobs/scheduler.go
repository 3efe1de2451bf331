// Package jobs управляет фоновыми задачами (cron).
// scheduler.go настраивает расписание: ночной сброс дневных счётчиков
// и ежедневные срезы балансов.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"vibehub.ru/vibe-points/internal/common"
	"vibehub.ru/vibe-points/internal/config"
	"vibehub.ru/vibe-points/internal/features/points"
)

// Scheduler управляет фоновыми задачами.
type Scheduler struct {
	cron       *cron.Cron
	pointsRepo *points.Repository
	cfg        *config.Config
}

// NewScheduler создаёт планировщик задач с московским часовым поясом.
func NewScheduler(pointsRepo *points.Repository, cfg *config.Config) *Scheduler {
	loc, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		log.WithError(err).Warn("Не удалось загрузить Europe/Moscow, используем UTC+3")
		loc = time.FixedZone("MSK", 3*60*60)
	}

	return &Scheduler{
		cron:       cron.New(cron.WithLocation(loc)),
		pointsRepo: pointsRepo,
		cfg:        cfg,
	}
}

// Start запускает все фоновые задачи.
func (s *Scheduler) Start(ctx context.Context) {
	// Ночной сброс дневных счётчиков в 00:00 по Москве.
	// Ленивый сброс при чтении корректен и без джобы —
	// она лишь выравнивает счётчики для срезов и статистики.
	s.cron.AddFunc("0 0 * * *", func() {
		log.Info("[CRON] Ночной сброс дневных счётчиков")
		n, err := s.pointsRepo.SweepDailyCounters(ctx, common.MoscowDate())
		if err != nil {
			log.WithError(err).Error("[CRON] Ошибка сброса счётчиков")
			return
		}
		log.WithField("accounts", n).Info("[CRON] Счётчики сброшены")
	})

	// Ежедневный срез балансов (по умолчанию 00:05)
	s.cron.AddFunc(s.cfg.SnapshotCronSpec, func() {
		log.Info("[CRON] Срез балансов")
		n, err := s.pointsRepo.SnapshotDaily(ctx, common.MoscowDate())
		if err != nil {
			log.WithError(err).Error("[CRON] Ошибка среза балансов")
			return
		}
		log.WithField("accounts", n).Info("[CRON] Срез записан")
	})

	s.cron.Start()
	log.Info("Планировщик задач запущен (Europe/Moscow)")
}

// Stop останавливает планировщик и ждёт завершения задач.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Планировщик задач остановлен")
}
