// Package points управляет экономикой поинтов: счета пользователей,
// защищённый минимум, уровни, карма и журнал транзакций.
// models.go описывает структуры для счетов и транзакций.
package points

import (
	"time"

	"github.com/google/uuid"
)

// UserPoints представляет счёт поинтов пользователя.
// Каждый пользователь имеет ровно одну запись в таблице user_points.
type UserPoints struct {
	ID               int64      `db:"id"`
	UserID           uuid.UUID  `db:"user_id"`            // ID пользователя из платформы
	CurrentBalance   int64      `db:"current_balance"`    // Текущий баланс (никогда не отрицательный)
	TotalEarned      int64      `db:"total_earned"`       // Сколько всего заработано (только растёт)
	ProtectedPoints  int64      `db:"protected_points"`   // Минимум, ниже которого дампены не опускают
	Level            int        `db:"level"`              // Уровень, растёт от total_earned
	KarmaScore       int        `db:"karma_score"`        // Карма: масштабирует штрафы дампенов
	DailyDampenCount int        `db:"daily_dampen_count"` // Сколько дампенов выдано сегодня
	CurrentStreak    int        `db:"current_streak"`     // Дней подряд с активностью
	LastActiveDate   *time.Time `db:"last_active_date"`   // Последний день активности
	LastResetDate    time.Time  `db:"last_reset_date"`    // Якорь ленивого сброса счётчиков
	CreatedAt        time.Time  `db:"created_at"`         // Используется для окна защиты новичков
	UpdatedAt        time.Time  `db:"updated_at"`
}

// EffectiveBalance возвращает часть баланса выше защищённого минимума.
// Только эта часть доступна для штрафов дампенов.
func (u *UserPoints) EffectiveBalance() int64 {
	eff := u.CurrentBalance - u.ProtectedPoints
	if eff < 0 {
		return 0
	}
	return eff
}

// PointTransaction — неизменяемая запись одного изменения баланса.
// Записывается для КАЖДОЙ стороны перевода с балансом на момент операции,
// поэтому журнал самопроверяемый: история восстанавливается простым реплеем.
type PointTransaction struct {
	ID             int64          `db:"id"`
	UserID         uuid.UUID      `db:"user_id"`         // Чей баланс изменился
	CounterpartyID *uuid.UUID     `db:"counterparty_id"` // Вторая сторона перевода (nil для системных)
	Amount         int64          `db:"amount"`          // Сумма со знаком
	BalanceAfter   int64          `db:"balance_after"`   // Баланс сразу после операции
	Action         string         `db:"action"`          // Тип действия (boost, dampen, ...)
	RatingID       *uuid.UUID     `db:"rating_id"`       // Оценка, вызвавшая операцию
	Metadata       map[string]any `db:"metadata"`        // Произвольные детали (JSONB)
	CreatedAt      time.Time      `db:"created_at"`
}

// Допустимые типы действий в журнале транзакций
const (
	ActionBoost         = "boost"          // Передача поинтов за буст
	ActionBoostReverse  = "boost_reverse"  // Возврат буста (un-boost или переключение)
	ActionDampen        = "dampen"         // Штраф автору за дампен
	ActionDampenRestore = "dampen_restore" // Возврат штрафа (un-dampen или переключение)
	ActionStarterGrant  = "starter_grant"  // Стартовое начисление при создании счёта
	ActionAdminGrant    = "admin_grant"    // Выдача админом
	ActionAdminDeduct   = "admin_deduct"   // Изъятие админом
)

// DailySnapshot — срез счёта на конец дня для аудита и аналитики.
type DailySnapshot struct {
	ID              int64     `db:"id"`
	UserID          uuid.UUID `db:"user_id"`
	SnapshotDate    time.Time `db:"snapshot_date"`
	Balance         int64     `db:"balance"`
	TotalEarned     int64     `db:"total_earned"`
	ProtectedPoints int64     `db:"protected_points"`
	Level           int       `db:"level"`
	KarmaScore      int       `db:"karma_score"`
	CurrentStreak   int       `db:"current_streak"`
	CreatedAt       time.Time `db:"created_at"`
}
