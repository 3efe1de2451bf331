// Package ratings управляет оценками вайбов и их агрегатами голосов.
// models.go описывает структуры оценок и агрегированных счётчиков.
package ratings

import (
	"time"

	"github.com/google/uuid"
)

// Rating — оценка вайба: эмодзи, балл 1–5 и текстовый отзыв.
// Счётчики голосов денормализованы и пересчитываются агрегатором
// от полного набора голосов — инкрементов «на глаз» здесь нет.
type Rating struct {
	ID          uuid.UUID `db:"id"`
	VibeID      uuid.UUID `db:"vibe_id"`   // Оцениваемый вайб (контент живёт в другой системе)
	AuthorID    uuid.UUID `db:"author_id"` // Автор оценки
	Emoji       string    `db:"emoji"`
	Value       int       `db:"value"` // Балл от 1 до 5
	Review      string    `db:"review"`
	BoostCount  int       `db:"boost_count"`
	DampenCount int       `db:"dampen_count"`
	NetScore    int       `db:"net_score"` // boost_count - dampen_count
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// Score — агрегаты голосов одной оценки.
type Score struct {
	RatingID    uuid.UUID `json:"rating_id"`
	NetScore    int       `json:"net_score"`
	BoostCount  int       `json:"boost_count"`
	DampenCount int       `json:"dampen_count"`
}

// Виды голосов в терминах агрегатора. Дублируют votes.VoteKind,
// чтобы не заводить циклическую зависимость пакетов.
const (
	KindBoost  = "boost"
	KindDampen = "dampen"
)

// Tally пересчитывает счётчики от полного набора голосов.
// Идемпотентно: два вызова подряд без изменения голосов дают одно и то же.
func Tally(kinds []string) (boosts, dampens int) {
	for _, k := range kinds {
		switch k {
		case KindBoost:
			boosts++
		case KindDampen:
			dampens++
		}
	}
	return boosts, dampens
}
