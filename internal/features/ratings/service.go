// Package ratings — service.go содержит бизнес-логику оценок.
package ratings

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Service управляет оценками и их агрегатами.
type Service struct {
	repo *Repository
}

// NewService создаёт сервис оценок.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// Create валидирует и сохраняет оценку.
func (s *Service) Create(ctx context.Context, vibeID, authorID uuid.UUID, emoji string, value int, review string) (*Rating, error) {
	emoji = strings.TrimSpace(emoji)
	if emoji == "" {
		return nil, fmt.Errorf("эмодзи обязательно")
	}
	if value < 1 || value > 5 {
		return nil, fmt.Errorf("балл должен быть от 1 до 5")
	}
	rt := &Rating{
		ID:       uuid.New(),
		VibeID:   vibeID,
		AuthorID: authorID,
		Emoji:    emoji,
		Value:    value,
		Review:   strings.TrimSpace(review),
	}
	if err := s.repo.Create(ctx, rt); err != nil {
		return nil, err
	}
	return rt, nil
}

// Get возвращает оценку по идентификатору.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Rating, error) {
	return s.repo.GetByID(ctx, id)
}

// GetScore возвращает агрегаты голосов одной оценки.
func (s *Service) GetScore(ctx context.Context, id uuid.UUID) (*Score, error) {
	rt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Score{
		RatingID:    rt.ID,
		NetScore:    rt.NetScore,
		BoostCount:  rt.BoostCount,
		DampenCount: rt.DampenCount,
	}, nil
}

// GetScoresBulk возвращает агрегаты для набора оценок одним запросом.
// Оптимизация для лент: алгоритм тот же, что и у GetScore.
func (s *Service) GetScoresBulk(ctx context.Context, ids []uuid.UUID) ([]Score, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if len(ids) > 100 {
		return nil, fmt.Errorf("слишком много оценок в одном запросе (максимум 100)")
	}
	return s.repo.GetScores(ctx, ids)
}

// Recount пересчитывает агрегаты оценки от полного набора голосов.
func (s *Service) Recount(ctx context.Context, id uuid.UUID) (*Score, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.RecountScore(ctx, id)
}
