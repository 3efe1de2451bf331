// Package points — repository.go выполняет все операции с таблицами
// user_points, point_transactions и point_daily_snapshots.
// Все денежные операции выполняются в транзакциях БД для целостности данных.
package points

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"vibehub.ru/vibe-points/internal/common"
	"vibehub.ru/vibe-points/internal/db/postgres"
)

// Repository предоставляет методы для работы со счетами и журналом транзакций.
type Repository struct {
	db    *pgxpool.Pool
	rules Rules
}

// NewRepository создаёт новый репозиторий поинтов.
func NewRepository(db *pgxpool.Pool, rules Rules) *Repository {
	return &Repository{db: db, rules: rules}
}

const userPointsColumns = `
	id, user_id, current_balance, total_earned, protected_points,
	level, karma_score, daily_dampen_count, current_streak,
	last_active_date, last_reset_date, created_at, updated_at`

func scanUserPoints(row pgx.Row) (*UserPoints, error) {
	var u UserPoints
	err := row.Scan(
		&u.ID, &u.UserID, &u.CurrentBalance, &u.TotalEarned, &u.ProtectedPoints,
		&u.Level, &u.KarmaScore, &u.DailyDampenCount, &u.CurrentStreak,
		&u.LastActiveDate, &u.LastResetDate, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// EnsureLedgerTx гарантирует, что у пользователя есть счёт поинтов.
// Если счёта нет — создаёт со стартовыми значениями и записывает
// стартовое начисление в журнал, чтобы реплей журнала сходился
// с балансом с самой первой операции. Идемпотентно.
func (r *Repository) EnsureLedgerTx(ctx context.Context, q postgres.Querier, userID uuid.UUID) error {
	var id int64
	err := q.QueryRow(ctx, `
		INSERT INTO user_points (user_id, current_balance, total_earned, protected_points, level)
		VALUES ($1, $2, $2, $3, 1)
		ON CONFLICT (user_id) DO NOTHING
		RETURNING id
	`, userID, r.rules.StartingBalance, r.rules.StartingProtected).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		// Счёт уже существует
		return nil
	}
	if err != nil {
		return fmt.Errorf("ошибка создания счёта: %w", err)
	}

	// Новый счёт — фиксируем стартовое начисление в журнале
	_, err = q.Exec(ctx, `
		INSERT INTO point_transactions (user_id, amount, balance_after, action)
		VALUES ($1, $2, $2, $3)
	`, userID, r.rules.StartingBalance, ActionStarterGrant)
	if err != nil {
		return fmt.Errorf("ошибка записи стартовой транзакции: %w", err)
	}
	return nil
}

// EnsureLedger — вариант EnsureLedgerTx со своей транзакцией.
func (r *Repository) EnsureLedger(ctx context.Context, userID uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := r.EnsureLedgerTx(ctx, tx, userID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// GetByUserID возвращает счёт пользователя с ленивым сбросом дневных счётчиков.
func (r *Repository) GetByUserID(ctx context.Context, userID uuid.UUID) (*UserPoints, error) {
	u, err := scanUserPoints(r.db.QueryRow(ctx,
		`SELECT `+userPointsColumns+` FROM user_points WHERE user_id = $1`, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrLedgerNotReady
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка получения счёта: %w", err)
	}

	now := common.MoscowTime()
	if NeedsDailyReset(u.LastResetDate, now) {
		ApplyDailyReset(u, now)
		_, err = r.db.Exec(ctx, `
			UPDATE user_points
			SET daily_dampen_count = 0, last_reset_date = $2, updated_at = NOW()
			WHERE user_id = $1
		`, userID, u.LastResetDate)
		if err != nil {
			return nil, fmt.Errorf("ошибка сброса дневных счётчиков: %w", err)
		}
	}
	return u, nil
}

// GetForUpdateTx читает счёт с блокировкой строки (FOR UPDATE)
// и лениво сбрасывает дневные счётчики внутри той же транзакции.
// Все изменения баланса начинаются с этого вызова — так конкурирующие
// операции над одним счётом сериализуются на уровне строки.
func (r *Repository) GetForUpdateTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*UserPoints, error) {
	u, err := scanUserPoints(tx.QueryRow(ctx,
		`SELECT `+userPointsColumns+` FROM user_points WHERE user_id = $1 FOR UPDATE`, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrLedgerNotReady
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка получения счёта: %w", err)
	}

	now := common.MoscowTime()
	if NeedsDailyReset(u.LastResetDate, now) {
		ApplyDailyReset(u, now)
		_, err = tx.Exec(ctx, `
			UPDATE user_points
			SET daily_dampen_count = 0, last_reset_date = $2, updated_at = NOW()
			WHERE user_id = $1
		`, userID, u.LastResetDate)
		if err != nil {
			return nil, fmt.Errorf("ошибка сброса дневных счётчиков: %w", err)
		}
	}
	return u, nil
}

// AdjustTx — единственный примитив изменения баланса.
// Инварианты, которые он держит:
//   - current_balance >= 0 (условие прямо в UPDATE);
//   - total_earned растёт только при положительной дельте;
//   - уровень пересчитывается от total_earned;
//   - каждая дельта получает запись в журнале с балансом после операции.
//
// Возвращает баланс после операции.
func (r *Repository) AdjustTx(
	ctx context.Context,
	tx pgx.Tx,
	userID uuid.UUID,
	delta int64,
	action string,
	counterpartyID *uuid.UUID,
	ratingID *uuid.UUID,
	metadata map[string]any,
) (int64, error) {
	earnedDelta := int64(0)
	if delta > 0 {
		earnedDelta = delta
	}

	var balanceAfter, totalEarned int64
	var level int
	err := tx.QueryRow(ctx, `
		UPDATE user_points
		SET current_balance = current_balance + $2,
		    total_earned = total_earned + $3,
		    updated_at = NOW()
		WHERE user_id = $1 AND current_balance + $2 >= 0
		RETURNING current_balance, total_earned, level
	`, userID, delta, earnedDelta).Scan(&balanceAfter, &totalEarned, &level)
	if errors.Is(err, pgx.ErrNoRows) {
		// Либо счёта нет, либо дельта увела бы баланс в минус
		var exists bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM user_points WHERE user_id = $1)`, userID,
		).Scan(&exists); err != nil {
			return 0, fmt.Errorf("ошибка проверки счёта: %w", err)
		}
		if !exists {
			return 0, common.ErrLedgerNotReady
		}
		return 0, fmt.Errorf("%w: требуется %s", common.ErrInsufficientBalance, common.FormatPoints(-delta))
	}
	if err != nil {
		return 0, fmt.Errorf("ошибка изменения баланса: %w", err)
	}

	// Пересчитываем уровень от суммы заработанного
	if newLevel := LevelForTotalEarned(totalEarned); newLevel != level {
		if _, err := tx.Exec(ctx,
			`UPDATE user_points SET level = $2 WHERE user_id = $1`, userID, newLevel,
		); err != nil {
			return 0, fmt.Errorf("ошибка обновления уровня: %w", err)
		}
	}

	if err := r.recordTx(ctx, tx, userID, counterpartyID, delta, balanceAfter, action, ratingID, metadata); err != nil {
		return 0, err
	}
	return balanceAfter, nil
}

// recordTx добавляет запись в журнал транзакций. Журнал append-only:
// записи никогда не изменяются и не удаляются.
func (r *Repository) recordTx(
	ctx context.Context,
	tx pgx.Tx,
	userID uuid.UUID,
	counterpartyID *uuid.UUID,
	amount, balanceAfter int64,
	action string,
	ratingID *uuid.UUID,
	metadata map[string]any,
) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO point_transactions
			(user_id, counterparty_id, amount, balance_after, action, rating_id, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, userID, counterpartyID, amount, balanceAfter, action, ratingID, metadata)
	if err != nil {
		return fmt.Errorf("ошибка записи транзакции: %w", err)
	}
	return nil
}

// IncrementDampenCountTx увеличивает дневной счётчик дампенов.
// Вызывается в той же транзакции, что и сам дампен.
func (r *Repository) IncrementDampenCountTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID) error {
	_, err := tx.Exec(ctx, `
		UPDATE user_points
		SET daily_dampen_count = daily_dampen_count + 1, updated_at = NOW()
		WHERE user_id = $1
	`, userID)
	if err != nil {
		return fmt.Errorf("ошибка обновления счётчика дампенов: %w", err)
	}
	return nil
}

// TouchActivityTx отмечает активность пользователя и обновляет стрик.
func (r *Repository) TouchActivityTx(ctx context.Context, tx pgx.Tx, u *UserPoints) error {
	if !TouchActivity(u, common.MoscowTime()) {
		return nil
	}
	_, err := tx.Exec(ctx, `
		UPDATE user_points
		SET current_streak = $2, last_active_date = $3, updated_at = NOW()
		WHERE user_id = $1
	`, u.UserID, u.CurrentStreak, u.LastActiveDate)
	if err != nil {
		return fmt.Errorf("ошибка обновления стрика: %w", err)
	}
	return nil
}

// Adjust — вариант AdjustTx со своей транзакцией (админские операции).
func (r *Repository) Adjust(
	ctx context.Context,
	userID uuid.UUID,
	delta int64,
	action string,
	metadata map[string]any,
) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := r.EnsureLedgerTx(ctx, tx, userID); err != nil {
		return 0, err
	}
	if _, err := r.GetForUpdateTx(ctx, tx, userID); err != nil {
		return 0, err
	}
	balanceAfter, err := r.AdjustTx(ctx, tx, userID, delta, action, nil, nil, metadata)
	if err != nil {
		return 0, err
	}
	return balanceAfter, tx.Commit(ctx)
}

// GetTransactions возвращает последние N транзакций пользователя.
func (r *Repository) GetTransactions(ctx context.Context, userID uuid.UUID, limit int) ([]*PointTransaction, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, counterparty_id, amount, balance_after, action, rating_id, metadata, created_at
		FROM point_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения транзакций: %w", err)
	}
	defer rows.Close()

	var txs []*PointTransaction
	for rows.Next() {
		var t PointTransaction
		var rawMeta []byte
		err := rows.Scan(
			&t.ID, &t.UserID, &t.CounterpartyID, &t.Amount, &t.BalanceAfter,
			&t.Action, &t.RatingID, &rawMeta, &t.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования транзакции: %w", err)
		}
		if len(rawMeta) > 0 {
			if err := json.Unmarshal(rawMeta, &t.Metadata); err != nil {
				return nil, fmt.Errorf("ошибка разбора метаданных: %w", err)
			}
		}
		txs = append(txs, &t)
	}
	return txs, rows.Err()
}

// ReplayBalance восстанавливает баланс пользователя реплеем журнала.
// Журнал содержит стартовое начисление, поэтому сумма всех дельт
// обязана совпадать с current_balance — свойство самопроверяемости.
func (r *Repository) ReplayBalance(ctx context.Context, userID uuid.UUID) (int64, error) {
	var sum int64
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM point_transactions WHERE user_id = $1
	`, userID).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("ошибка реплея журнала: %w", err)
	}
	return sum, nil
}

// SnapshotDaily записывает срез всех счетов на указанную дату.
// Повторный запуск за ту же дату ничего не перезаписывает.
func (r *Repository) SnapshotDaily(ctx context.Context, date time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO point_daily_snapshots
			(user_id, snapshot_date, balance, total_earned, protected_points, level, karma_score, current_streak)
		SELECT user_id, $1, current_balance, total_earned, protected_points, level, karma_score, current_streak
		FROM user_points
		ON CONFLICT (user_id, snapshot_date) DO NOTHING
	`, common.Midnight(date))
	if err != nil {
		return 0, fmt.Errorf("ошибка записи срезов: %w", err)
	}
	return tag.RowsAffected(), nil
}

// SweepDailyCounters принудительно сбрасывает дневные счётчики всем,
// у кого якорь сброса отстал. Ленивый сброс корректен и без этого —
// джоба лишь выравнивает статистику для срезов.
func (r *Repository) SweepDailyCounters(ctx context.Context, today time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE user_points
		SET daily_dampen_count = 0, last_reset_date = $1, updated_at = NOW()
		WHERE last_reset_date < $1
	`, common.Midnight(today))
	if err != nil {
		return 0, fmt.Errorf("ошибка сброса счётчиков: %w", err)
	}
	return tag.RowsAffected(), nil
}
