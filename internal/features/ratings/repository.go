// Package ratings — repository.go выполняет операции с таблицей ratings.
package ratings

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"vibehub.ru/vibe-points/internal/common"
	"vibehub.ru/vibe-points/internal/db/postgres"
)

// Repository предоставляет методы для работы с оценками.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт новый репозиторий оценок.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const ratingColumns = `
	id, vibe_id, author_id, emoji, value, review,
	boost_count, dampen_count, net_score, created_at, updated_at`

func scanRating(row pgx.Row) (*Rating, error) {
	var rt Rating
	err := row.Scan(
		&rt.ID, &rt.VibeID, &rt.AuthorID, &rt.Emoji, &rt.Value, &rt.Review,
		&rt.BoostCount, &rt.DampenCount, &rt.NetScore, &rt.CreatedAt, &rt.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rt, nil
}

// Create сохраняет новую оценку. Повторная оценка того же вайба
// тем же автором обновляет существующую (upsert по паре vibe+author).
func (r *Repository) Create(ctx context.Context, rt *Rating) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO ratings (id, vibe_id, author_id, emoji, value, review)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (vibe_id, author_id) DO UPDATE
		SET emoji = EXCLUDED.emoji, value = EXCLUDED.value,
		    review = EXCLUDED.review, updated_at = NOW()
		RETURNING id, created_at, updated_at
	`, rt.ID, rt.VibeID, rt.AuthorID, rt.Emoji, rt.Value, rt.Review).
		Scan(&rt.ID, &rt.CreatedAt, &rt.UpdatedAt)
	if err != nil {
		return fmt.Errorf("ошибка сохранения оценки: %w", err)
	}
	return nil
}

// GetByID возвращает оценку по идентификатору.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Rating, error) {
	return r.getByID(ctx, r.db, id)
}

// GetTx — вариант GetByID внутри внешней транзакции.
func (r *Repository) GetTx(ctx context.Context, q postgres.Querier, id uuid.UUID) (*Rating, error) {
	return r.getByID(ctx, q, id)
}

func (r *Repository) getByID(ctx context.Context, q postgres.Querier, id uuid.UUID) (*Rating, error) {
	rt, err := scanRating(q.QueryRow(ctx,
		`SELECT `+ratingColumns+` FROM ratings WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrRatingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка получения оценки: %w", err)
	}
	return rt, nil
}

// UpdateScoreTx записывает пересчитанные агрегаты на оценку.
// Вызывается только агрегатором внутри транзакции голосования.
func (r *Repository) UpdateScoreTx(ctx context.Context, q postgres.Querier, ratingID uuid.UUID, boosts, dampens int) error {
	_, err := q.Exec(ctx, `
		UPDATE ratings
		SET boost_count = $2, dampen_count = $3, net_score = $2 - $3, updated_at = NOW()
		WHERE id = $1
	`, ratingID, boosts, dampens)
	if err != nil {
		return fmt.Errorf("ошибка обновления агрегатов: %w", err)
	}
	return nil
}

// GetScores возвращает агрегаты для набора оценок одним запросом.
func (r *Repository) GetScores(ctx context.Context, ids []uuid.UUID) ([]Score, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, net_score, boost_count, dampen_count
		FROM ratings
		WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения агрегатов: %w", err)
	}
	defer rows.Close()

	var scores []Score
	for rows.Next() {
		var s Score
		if err := rows.Scan(&s.RatingID, &s.NetScore, &s.BoostCount, &s.DampenCount); err != nil {
			return nil, fmt.Errorf("ошибка сканирования агрегатов: %w", err)
		}
		scores = append(scores, s)
	}
	return scores, rows.Err()
}

// RecountScore пересчитывает агрегаты от полного набора голосов.
// Отдельная операция для починки счётчиков; в обычном потоке
// пересчёт происходит в транзакции голосования.
func (r *Repository) RecountScore(ctx context.Context, ratingID uuid.UUID) (*Score, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx,
		`SELECT vote_kind FROM rating_votes WHERE rating_id = $1`, ratingID)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения голосов: %w", err)
	}
	var kinds []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			rows.Close()
			return nil, fmt.Errorf("ошибка сканирования голоса: %w", err)
		}
		kinds = append(kinds, k)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	boosts, dampens := Tally(kinds)
	if err := r.UpdateScoreTx(ctx, tx, ratingID, boosts, dampens); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &Score{
		RatingID:    ratingID,
		NetScore:    boosts - dampens,
		BoostCount:  boosts,
		DampenCount: dampens,
	}, nil
}
