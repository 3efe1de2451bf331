// Package votes реализует машину состояний голосования по оценкам:
// буст передаёт поинты автору, дампен штрафует автора.
// models.go описывает голоса, состояния и результат операции.
package votes

import (
	"time"

	"github.com/google/uuid"
)

// VoteKind — намерение голосующего.
type VoteKind string

const (
	KindBoost  VoteKind = "boost"
	KindDampen VoteKind = "dampen"
)

// VoteState — состояние пары (оценка, голосующий).
type VoteState int

const (
	StateNone VoteState = iota
	StateBoosted
	StateDampened
)

// String — для логов и сообщений об ошибках.
func (s VoteState) String() string {
	switch s {
	case StateBoosted:
		return "boosted"
	case StateDampened:
		return "dampened"
	default:
		return "none"
	}
}

// Vote — голос одного пользователя по одной оценке.
// Инвариант: не больше одного голоса на пару (rating_id, voter_id) —
// держится уникальным ключом в БД, повторный голос обновляет строку.
// Points хранит сумму исходного перевода/штрафа: реверс всегда
// возвращает ровно её, даже если уровни и карма успели измениться.
type Vote struct {
	ID        int64     `db:"id"`
	RatingID  uuid.UUID `db:"rating_id"`
	VoterID   uuid.UUID `db:"voter_id"`
	Kind      VoteKind  `db:"vote_kind"`
	Points    int64     `db:"points"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// State возвращает состояние машины для найденного голоса (nil → NONE).
func (v *Vote) State() VoteState {
	if v == nil {
		return StateNone
	}
	if v.Kind == KindBoost {
		return StateBoosted
	}
	return StateDampened
}

// Действия в результате перехода (для клиента и журнала)
const (
	ActionBoosted        = "boosted"
	ActionUnboosted      = "unboosted"
	ActionDampened       = "dampened"
	ActionUndampened     = "undampened"
	ActionSwitchToBoost  = "switched_to_boost"
	ActionSwitchToDampen = "switched_to_dampen"
)

// VoteResult — итог операции голосования, отдаётся вызывающему.
type VoteResult struct {
	Active  bool   `json:"active"`  // Остался ли голос после операции
	Action  string `json:"action"`  // Что произошло (boosted, unboosted, ...)
	Points  int64  `json:"points"`  // Сколько поинтов передано/оштрафовано
	Message string `json:"message"` // Человекочитаемое описание
}

// VoterStatus — текущий голос пользователя по оценке (nil — голоса нет).
type VoterStatus struct {
	RatingID uuid.UUID `json:"rating_id"`
	VoteType *VoteKind `json:"vote_type"`
}
