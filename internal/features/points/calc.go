// Package points — calc.go содержит чистые расчёты экономики:
// сумма буста, штраф дампена, защита авторов, уровни и ленивый сброс.
// Никаких обращений к БД — всё считается по переданным значениям.
package points

import (
	"math"
	"time"

	"vibehub.ru/vibe-points/internal/common"
	"vibehub.ru/vibe-points/internal/config"
)

// Rules — набор констант экономики, выделенный из конфигурации.
// Передаётся по значению: расчёты не имеют состояния.
type Rules struct {
	StartingBalance   int64
	StartingProtected int64

	BoostBase        float64
	BoostLevelFactor float64

	DampenBasePenalty     int64
	DampenMaxPenalty      int64
	DampenLowBalanceBound int64
	DampenFloorMultiplier float64
	DampenKarmaStep       float64
	DampenDailyLimit      int

	MinProtectedPoints    int64
	NewUserProtectionDays int
}

// RulesFromConfig собирает правила экономики из конфигурации.
func RulesFromConfig(cfg *config.Config) Rules {
	return Rules{
		StartingBalance:       cfg.PointsStartingBalance,
		StartingProtected:     cfg.PointsStartingProtected,
		BoostBase:             cfg.BoostBaseAmount,
		BoostLevelFactor:      cfg.BoostLevelFactor,
		DampenBasePenalty:     cfg.DampenBasePenalty,
		DampenMaxPenalty:      cfg.DampenMaxPenalty,
		DampenLowBalanceBound: cfg.DampenLowBalanceBound,
		DampenFloorMultiplier: cfg.DampenFloorMultiplier,
		DampenKarmaStep:       cfg.DampenKarmaStep,
		DampenDailyLimit:      cfg.DampenDailyLimit,
		MinProtectedPoints:    cfg.MinProtectedPoints,
		NewUserProtectionDays: cfg.NewUserProtectionDays,
	}
}

// BoostAmount возвращает сумму перевода за буст.
//
// Формула: ceil(base * (1 + max(0, уровень_автора - уровень_голосующего) * factor)).
// Буст «вверх» (автор выше уровнем) стоит дороже — так выгоднее
// поддерживать опытных авторов.
//
// Примеры при base=2, factor=0.1:
//
//	автор 1, голосующий 1 → ceil(2.0) = 2
//	автор 3, голосующий 1 → ceil(2.4) = 3
//	автор 1, голосующий 5 → ceil(2.0) = 2 (разница вниз не учитывается)
func (r Rules) BoostAmount(authorLevel, voterLevel int) int64 {
	diff := authorLevel - voterLevel
	if diff < 0 {
		diff = 0
	}
	return int64(math.Ceil(r.BoostBase * (1 + float64(diff)*r.BoostLevelFactor)))
}

// DampenPenalty возвращает штраф автору за дампен.
// Считается ТОЛЬКО от состояния автора — дампенящий ничего не платит.
//
// Порядок расчёта:
//  1. Базовый штраф.
//  2. Если доступный баланс (баланс − защищённый минимум) ниже порога —
//     линейное снижение до floor-множителя.
//  3. Масштаб по карме: положительная уменьшает штраф, отрицательная
//     увеличивает (множитель зажат в [0.5, 1.5]).
//  4. Зажим сверху максимальным штрафом и доступным балансом:
//     штраф никогда не опускает баланс ниже защищённого минимума.
//  5. Округление вверх до целого.
func (r Rules) DampenPenalty(author *UserPoints) int64 {
	eff := author.EffectiveBalance()
	if eff <= 0 {
		return 0
	}

	scale := 1.0
	if eff < r.DampenLowBalanceBound {
		// Линейно от floor-множителя (при eff→0) до 1.0 (при eff=порог)
		scale = r.DampenFloorMultiplier +
			(1-r.DampenFloorMultiplier)*float64(eff)/float64(r.DampenLowBalanceBound)
	}

	karmaScale := 1.0 - float64(author.KarmaScore)*r.DampenKarmaStep
	if karmaScale < 0.5 {
		karmaScale = 0.5
	}
	if karmaScale > 1.5 {
		karmaScale = 1.5
	}

	penalty := int64(math.Ceil(float64(r.DampenBasePenalty) * scale * karmaScale))
	if penalty > r.DampenMaxPenalty {
		penalty = r.DampenMaxPenalty
	}
	if penalty > eff {
		penalty = eff
	}
	return penalty
}

// IsProtected сообщает, защищён ли автор от дампенов.
// Защита включается, когда:
//   - аккаунт моложе окна защиты новичков, ИЛИ
//   - доступный баланс не превышает минимума защищённых поинтов.
//
// Обойти защиту со стороны дампенящего невозможно.
func (r Rules) IsProtected(author *UserPoints, now time.Time) bool {
	window := time.Duration(r.NewUserProtectionDays) * 24 * time.Hour
	if now.Sub(author.CreatedAt) < window {
		return true
	}
	return author.EffectiveBalance() <= r.MinProtectedPoints
}

// Пороги total_earned для уровней 1..6. Дальше каждый уровень +2000.
var levelThresholds = []int64{0, 100, 300, 700, 1500, 3000}

// LevelForTotalEarned возвращает уровень по сумме заработанного за всё время.
func LevelForTotalEarned(total int64) int {
	last := levelThresholds[len(levelThresholds)-1]
	if total >= last {
		return len(levelThresholds) + int((total-last)/2000)
	}
	level := 1
	for i, threshold := range levelThresholds {
		if total >= threshold {
			level = i + 1
		}
	}
	return level
}

// NeedsDailyReset сообщает, пора ли сбросить дневные счётчики.
// Сравнивает сохранённую дату сброса с текущими сутками —
// фоновый планировщик для корректности не обязателен.
func NeedsDailyReset(lastReset, now time.Time) bool {
	return !common.SameDay(common.Midnight(now), lastReset)
}

// ApplyDailyReset обнуляет дневные счётчики на копии записи.
// Вызывается лениво при каждом чтении счёта внутри транзакции.
func ApplyDailyReset(u *UserPoints, now time.Time) {
	u.DailyDampenCount = 0
	u.LastResetDate = common.Midnight(now)
}

// TouchActivity отмечает активность пользователя сегодня и двигает стрик:
// вчера был активен — стрик растёт, был перерыв — начинается заново.
// Возвращает true, если запись изменилась и её нужно сохранить.
func TouchActivity(u *UserPoints, now time.Time) bool {
	today := common.Midnight(now)
	if u.LastActiveDate != nil && common.SameDay(today, *u.LastActiveDate) {
		return false
	}
	yesterday := today.AddDate(0, 0, -1)
	if u.LastActiveDate != nil && common.SameDay(yesterday, *u.LastActiveDate) {
		u.CurrentStreak++
	} else {
		u.CurrentStreak = 1
	}
	u.LastActiveDate = &today
	return true
}
