// Package points — service.go содержит бизнес-логику счетов поинтов:
// выдача/изъятие, история, проверка журнала реплеем.
package points

import (
	"context"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"vibehub.ru/vibe-points/internal/common"
)

// Service управляет счетами поинтов.
type Service struct {
	repo *Repository
}

// NewService создаёт сервис поинтов.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// EnsureLedger создаёт счёт пользователя, если его ещё нет.
// Вызывается в начале каждой экономической операции —
// стартовые значения задаются в одном месте, а не по всем вызовам.
func (s *Service) EnsureLedger(ctx context.Context, userID uuid.UUID) error {
	return s.repo.EnsureLedger(ctx, userID)
}

// GetLedger возвращает счёт пользователя, создавая его при первом обращении.
func (s *Service) GetLedger(ctx context.Context, userID uuid.UUID) (*UserPoints, error) {
	if err := s.repo.EnsureLedger(ctx, userID); err != nil {
		return nil, err
	}
	return s.repo.GetByUserID(ctx, userID)
}

// GetHistory возвращает последние транзакции пользователя.
func (s *Service) GetHistory(ctx context.Context, userID uuid.UUID, limit int) ([]*PointTransaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.GetTransactions(ctx, userID, limit)
}

// Grant начисляет поинты пользователю (админская операция).
func (s *Service) Grant(ctx context.Context, userID uuid.UUID, amount int64, reason string) (int64, error) {
	if amount <= 0 {
		return 0, common.ErrInvalidAmount
	}
	balance, err := s.repo.Adjust(ctx, userID, amount, ActionAdminGrant, map[string]any{"reason": reason})
	if err != nil {
		return 0, err
	}
	log.WithFields(log.Fields{
		"user_id": userID,
		"amount":  amount,
	}).Info("Поинты выданы администратором")
	return balance, nil
}

// Deduct изымает поинты у пользователя (админская операция).
// Изъять больше, чем есть на счёте, нельзя.
func (s *Service) Deduct(ctx context.Context, userID uuid.UUID, amount int64, reason string) (int64, error) {
	if amount <= 0 {
		return 0, common.ErrInvalidAmount
	}
	balance, err := s.repo.Adjust(ctx, userID, -amount, ActionAdminDeduct, map[string]any{"reason": reason})
	if err != nil {
		return 0, err
	}
	log.WithFields(log.Fields{
		"user_id": userID,
		"amount":  amount,
	}).Info("Поинты изъяты администратором")
	return balance, nil
}

// VerifyReplay сверяет текущий баланс с реплеем журнала транзакций.
// Расхождение означает повреждение журнала — такое логируем как ошибку.
func (s *Service) VerifyReplay(ctx context.Context, userID uuid.UUID) (bool, error) {
	u, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return false, err
	}
	replayed, err := s.repo.ReplayBalance(ctx, userID)
	if err != nil {
		return false, err
	}
	if replayed != u.CurrentBalance {
		log.WithFields(log.Fields{
			"user_id":  userID,
			"balance":  u.CurrentBalance,
			"replayed": replayed,
		}).Error("Журнал транзакций расходится с балансом")
		return false, nil
	}
	return true, nil
}
