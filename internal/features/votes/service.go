// Package votes — service.go содержит публичные точки входа голосования.
// Boost и Dampen — тонкие обёртки над общим applyVote: вся таблица
// переходов живёт в state.go, атомарность — в repository.go.
package votes

import (
	"context"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"vibehub.ru/vibe-points/internal/common"
	"vibehub.ru/vibe-points/internal/features/notifications"
)

// Service управляет голосованием по оценкам.
type Service struct {
	repo     *Repository
	notifier notifications.Notifier
}

// NewService создаёт сервис голосования.
func NewService(repo *Repository, notifier notifications.Notifier) *Service {
	return &Service{repo: repo, notifier: notifier}
}

// Boost применяет намерение «буст» к паре (оценка, голосующий).
func (s *Service) Boost(ctx context.Context, ratingID, voterID uuid.UUID) (*VoteResult, error) {
	return s.applyVote(ctx, ratingID, voterID, KindBoost)
}

// Dampen применяет намерение «дампен» к паре (оценка, голосующий).
func (s *Service) Dampen(ctx context.Context, ratingID, voterID uuid.UUID) (*VoteResult, error) {
	return s.applyVote(ctx, ratingID, voterID, KindDampen)
}

func (s *Service) applyVote(ctx context.Context, ratingID, voterID uuid.UUID, intent VoteKind) (*VoteResult, error) {
	if voterID == uuid.Nil {
		return nil, common.ErrUnauthenticated
	}

	result, err := s.repo.ApplyVote(ctx, ratingID, voterID, intent)
	if err != nil {
		return nil, err
	}

	// Уведомление — fire-and-forget: ошибки доставки только логируем,
	// голосование к этому моменту уже зафиксировано
	if result.Action == ActionBoosted || result.Action == ActionSwitchToBoost {
		if err := s.notifier.RatingBoosted(ctx, ratingID, result.Points); err != nil {
			log.WithError(err).WithField("rating_id", ratingID).
				Warn("Не удалось отправить уведомление о бусте")
		}
	}
	return result, nil
}

// VoterStatus возвращает текущий голос пользователя по оценке.
func (s *Service) VoterStatus(ctx context.Context, ratingID, voterID uuid.UUID) (*VoterStatus, error) {
	if voterID == uuid.Nil {
		return nil, common.ErrUnauthenticated
	}
	v, err := s.repo.GetVote(ctx, ratingID, voterID)
	if err != nil {
		return nil, err
	}
	status := &VoterStatus{RatingID: ratingID}
	if v != nil {
		kind := v.Kind
		status.VoteType = &kind
	}
	return status, nil
}

// VoterStatusBulk возвращает голоса пользователя по набору оценок.
// Оптимизация для лент — один запрос вместо N.
func (s *Service) VoterStatusBulk(ctx context.Context, ratingIDs []uuid.UUID, voterID uuid.UUID) ([]VoterStatus, error) {
	if voterID == uuid.Nil {
		return nil, common.ErrUnauthenticated
	}
	if len(ratingIDs) == 0 {
		return nil, nil
	}
	votes, err := s.repo.GetVotesByVoter(ctx, ratingIDs, voterID)
	if err != nil {
		return nil, err
	}
	statuses := make([]VoterStatus, 0, len(ratingIDs))
	for _, id := range ratingIDs {
		st := VoterStatus{RatingID: id}
		if kind, ok := votes[id]; ok {
			k := kind
			st.VoteType = &k
		}
		statuses = append(statuses, st)
	}
	return statuses, nil
}
