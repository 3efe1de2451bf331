// Package votes — repository.go исполняет переходы машины состояний.
// Весь переход — строка голоса, движения поинтов, журнал и пересчёт
// агрегатов — выполняется в ОДНОЙ транзакции БД: либо всё, либо ничего.
package votes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"vibehub.ru/vibe-points/internal/common"
	"vibehub.ru/vibe-points/internal/db/postgres"
	"vibehub.ru/vibe-points/internal/features/points"
	"vibehub.ru/vibe-points/internal/features/ratings"
)

// Сколько раз повторяем транзакцию при конфликте сериализации/дедлоке.
const maxTxAttempts = 3

// Repository исполняет голосования поверх таблиц rating_votes,
// user_points, point_transactions и ratings.
type Repository struct {
	db          *pgxpool.Pool
	pointsRepo  *points.Repository
	ratingsRepo *ratings.Repository
	rules       points.Rules
}

// NewRepository создаёт репозиторий голосований.
func NewRepository(db *pgxpool.Pool, pointsRepo *points.Repository, ratingsRepo *ratings.Repository, rules points.Rules) *Repository {
	return &Repository{
		db:          db,
		pointsRepo:  pointsRepo,
		ratingsRepo: ratingsRepo,
		rules:       rules,
	}
}

// ApplyVote применяет намерение голосующего к паре (оценка, голосующий).
// Конфликты транзакций повторяются прозрачно — это конкуренция,
// а не доменная ошибка. Доменные ошибки не повторяются никогда.
func (r *Repository) ApplyVote(ctx context.Context, ratingID, voterID uuid.UUID, intent VoteKind) (*VoteResult, error) {
	var lastErr error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		result, err := r.applyVoteOnce(ctx, ratingID, voterID, intent)
		if err == nil {
			return result, nil
		}
		if !postgres.IsRetryableTxError(err) {
			return nil, err
		}
		lastErr = err
		log.WithFields(log.Fields{
			"rating_id": ratingID,
			"voter_id":  voterID,
			"attempt":   attempt,
		}).Warn("Конфликт транзакции голосования, повторяем")
		time.Sleep(time.Duration(attempt) * 50 * time.Millisecond)
	}
	return nil, fmt.Errorf("голосование не применено после %d попыток: %w", maxTxAttempts, lastErr)
}

func (r *Repository) applyVoteOnce(ctx context.Context, ratingID, voterID uuid.UUID, intent VoteKind) (*VoteResult, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	// Оценка должна существовать; автора берём из неё же
	rating, err := r.ratingsRepo.GetTx(ctx, tx, ratingID)
	if err != nil {
		return nil, err
	}
	if rating.AuthorID == voterID {
		return nil, common.ErrSelfVote
	}

	// Счета создаются лениво при первом экономическом действии
	if err := r.pointsRepo.EnsureLedgerTx(ctx, tx, voterID); err != nil {
		return nil, err
	}
	if err := r.pointsRepo.EnsureLedgerTx(ctx, tx, rating.AuthorID); err != nil {
		return nil, err
	}

	// Блокируем оба счёта в порядке возрастания UUID — одинаковый
	// порядок во всех транзакциях исключает дедлоки между парами
	voter, author, err := r.lockLedgers(ctx, tx, voterID, rating.AuthorID)
	if err != nil {
		return nil, err
	}

	// Текущий голос перечитывается под блокировкой внутри транзакции:
	// два конкурирующих голоса одной пары не могут вставиться дважды
	current, err := r.getVoteForUpdate(ctx, tx, ratingID, voterID)
	if err != nil {
		return nil, err
	}

	plan, err := PlanTransition(PlanInput{
		Intent:   intent,
		Current:  current,
		RatingID: ratingID,
		AuthorID: rating.AuthorID,
		Voter:    voter,
		Author:   author,
		Now:      common.MoscowTime(),
		Rules:    r.rules,
	})
	if err != nil {
		return nil, err
	}

	if err := r.execPlan(ctx, tx, ratingID, voterID, voter, plan); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}

	log.WithFields(log.Fields{
		"rating_id": ratingID,
		"voter_id":  voterID,
		"action":    plan.Result.Action,
		"points":    plan.Result.Points,
	}).Info("Голос применён")

	result := plan.Result
	return &result, nil
}

// lockLedgers читает оба счёта FOR UPDATE в порядке возрастания UUID.
func (r *Repository) lockLedgers(ctx context.Context, tx pgx.Tx, voterID, authorID uuid.UUID) (voter, author *points.UserPoints, err error) {
	first, second := voterID, authorID
	if second.String() < first.String() {
		first, second = second, first
	}

	firstLedger, err := r.pointsRepo.GetForUpdateTx(ctx, tx, first)
	if err != nil {
		return nil, nil, err
	}
	secondLedger, err := r.pointsRepo.GetForUpdateTx(ctx, tx, second)
	if err != nil {
		return nil, nil, err
	}

	if firstLedger.UserID == voterID {
		return firstLedger, secondLedger, nil
	}
	return secondLedger, firstLedger, nil
}

func (r *Repository) getVoteForUpdate(ctx context.Context, tx pgx.Tx, ratingID, voterID uuid.UUID) (*Vote, error) {
	var v Vote
	err := tx.QueryRow(ctx, `
		SELECT id, rating_id, voter_id, vote_kind, points, created_at, updated_at
		FROM rating_votes
		WHERE rating_id = $1 AND voter_id = $2
		FOR UPDATE
	`, ratingID, voterID).Scan(
		&v.ID, &v.RatingID, &v.VoterID, &v.Kind, &v.Points, &v.CreatedAt, &v.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения голоса: %w", err)
	}
	return &v, nil
}

// execPlan исполняет план перехода внутри транзакции.
func (r *Repository) execPlan(ctx context.Context, tx pgx.Tx, ratingID, voterID uuid.UUID, voter *points.UserPoints, plan *TransitionPlan) error {
	// 1. Строка голоса. Upsert по уникальной паре гарантирует
	// «не больше одного голоса» даже при гонке двух вставок.
	switch plan.Op {
	case OpUpsert:
		_, err := tx.Exec(ctx, `
			INSERT INTO rating_votes (rating_id, voter_id, vote_kind, points)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (rating_id, voter_id) DO UPDATE
			SET vote_kind = EXCLUDED.vote_kind, points = EXCLUDED.points, updated_at = NOW()
		`, ratingID, voterID, plan.Kind, plan.Points)
		if err != nil {
			return fmt.Errorf("ошибка записи голоса: %w", err)
		}
	case OpDelete:
		_, err := tx.Exec(ctx,
			`DELETE FROM rating_votes WHERE rating_id = $1 AND voter_id = $2`,
			ratingID, voterID)
		if err != nil {
			return fmt.Errorf("ошибка удаления голоса: %w", err)
		}
	}

	// 2. Движения поинтов: каждое — отдельная запись в журнале
	// с балансом после операции и ссылкой на оценку
	rid := ratingID
	for _, mv := range plan.Moves {
		meta := map[string]any{"action": plan.Result.Action}
		if _, err := r.pointsRepo.AdjustTx(ctx, tx, mv.UserID, mv.Delta, mv.Action, mv.CounterpartyID, &rid, meta); err != nil {
			return err
		}
	}

	// 3. Дневной счётчик дампенов и стрик активности голосующего
	if plan.CountDampen {
		if err := r.pointsRepo.IncrementDampenCountTx(ctx, tx, voterID); err != nil {
			return err
		}
	}
	if err := r.pointsRepo.TouchActivityTx(ctx, tx, voter); err != nil {
		return err
	}

	// 4. Агрегатор: пересчёт от ПОЛНОГО набора голосов, не инкремент
	return r.recountScoreTx(ctx, tx, ratingID)
}

func (r *Repository) recountScoreTx(ctx context.Context, tx pgx.Tx, ratingID uuid.UUID) error {
	rows, err := tx.Query(ctx,
		`SELECT vote_kind FROM rating_votes WHERE rating_id = $1`, ratingID)
	if err != nil {
		return fmt.Errorf("ошибка чтения голосов: %w", err)
	}
	var kinds []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			rows.Close()
			return fmt.Errorf("ошибка сканирования голоса: %w", err)
		}
		kinds = append(kinds, k)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	boosts, dampens := ratings.Tally(kinds)
	return r.ratingsRepo.UpdateScoreTx(ctx, tx, ratingID, boosts, dampens)
}

// GetVote возвращает голос пользователя по оценке (nil — голоса нет).
func (r *Repository) GetVote(ctx context.Context, ratingID, voterID uuid.UUID) (*Vote, error) {
	var v Vote
	err := r.db.QueryRow(ctx, `
		SELECT id, rating_id, voter_id, vote_kind, points, created_at, updated_at
		FROM rating_votes
		WHERE rating_id = $1 AND voter_id = $2
	`, ratingID, voterID).Scan(
		&v.ID, &v.RatingID, &v.VoterID, &v.Kind, &v.Points, &v.CreatedAt, &v.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения голоса: %w", err)
	}
	return &v, nil
}

// GetVotesByVoter возвращает голоса пользователя по набору оценок
// одним запросом (для лент).
func (r *Repository) GetVotesByVoter(ctx context.Context, ratingIDs []uuid.UUID, voterID uuid.UUID) (map[uuid.UUID]VoteKind, error) {
	rows, err := r.db.Query(ctx, `
		SELECT rating_id, vote_kind
		FROM rating_votes
		WHERE voter_id = $1 AND rating_id = ANY($2)
	`, voterID, ratingIDs)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения голосов: %w", err)
	}
	defer rows.Close()

	result := make(map[uuid.UUID]VoteKind, len(ratingIDs))
	for rows.Next() {
		var id uuid.UUID
		var kind VoteKind
		if err := rows.Scan(&id, &kind); err != nil {
			return nil, fmt.Errorf("ошибка сканирования голоса: %w", err)
		}
		result[id] = kind
	}
	return result, rows.Err()
}
