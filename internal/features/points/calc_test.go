package points

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRules — правила экономики со значениями по умолчанию из конфига.
func testRules() Rules {
	return Rules{
		StartingBalance:       100,
		StartingProtected:     50,
		BoostBase:             2,
		BoostLevelFactor:      0.1,
		DampenBasePenalty:     5,
		DampenMaxPenalty:      10,
		DampenLowBalanceBound: 25,
		DampenFloorMultiplier: 0.4,
		DampenKarmaStep:       0.01,
		DampenDailyLimit:      10,
		MinProtectedPoints:    10,
		NewUserProtectionDays: 7,
	}
}

func TestBoostAmount(t *testing.T) {
	r := testRules()

	tests := []struct {
		name        string
		authorLevel int
		voterLevel  int
		want        int64
	}{
		{"одинаковые уровни", 1, 1, 2},
		{"автор выше на 2", 3, 1, 3}, // ceil(2 * 1.2) = ceil(2.4) = 3
		{"автор ниже — разница не учитывается", 1, 5, 2},
		{"автор выше на 5", 6, 1, 3}, // ceil(2 * 1.5) = 3
		{"автор выше на 10", 11, 1, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.BoostAmount(tt.authorLevel, tt.voterLevel))
		})
	}
}

func TestDampenPenalty(t *testing.T) {
	r := testRules()

	tests := []struct {
		name    string
		balance int64
		karma   int
		want    int64
	}{
		{"обычный автор — базовый штраф", 100, 0, 5},
		{"нет доступного баланса — нулевой штраф", 50, 0, 0},
		{"низкий баланс — линейное снижение", 60, 0, 4}, // eff=10: scale=0.64, ceil(3.2)=4
		{"положительная карма уменьшает штраф", 100, 20, 4},
		{"отрицательная карма увеличивает штраф", 100, -20, 6},
		{"карма зажата сверху множителем 1.5", 100, -100, 8}, // ceil(5 * 1.5) = 8
		{"карма зажата снизу множителем 0.5", 100, 100, 3},   // ceil(5 * 0.5) = 3
		{"штраф не превышает доступный баланс", 51, 0, 1},    // eff=1, ceil(2.12)=3 → зажим до 1
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			author := &UserPoints{
				CurrentBalance:  tt.balance,
				ProtectedPoints: 50,
				KarmaScore:      tt.karma,
			}
			assert.Equal(t, tt.want, r.DampenPenalty(author))
		})
	}
}

func TestDampenPenaltyMaxClamp(t *testing.T) {
	r := testRules()
	r.DampenBasePenalty = 20

	author := &UserPoints{CurrentBalance: 100, ProtectedPoints: 50}
	assert.Equal(t, r.DampenMaxPenalty, r.DampenPenalty(author))
}

func TestIsProtected(t *testing.T) {
	r := testRules()
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		createdAt time.Time
		balance   int64
		want      bool
	}{
		{"новый аккаунт защищён", now.AddDate(0, 0, -3), 1000, true},
		{"старый аккаунт с большим балансом не защищён", now.AddDate(0, 0, -30), 100, false},
		{"доступный баланс на минимуме — защищён", now.AddDate(0, 0, -30), 60, true},
		{"ровно 7 дней — окно закончилось", now.AddDate(0, 0, -7), 100, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			author := &UserPoints{
				CurrentBalance:  tt.balance,
				ProtectedPoints: 50,
				CreatedAt:       tt.createdAt,
			}
			assert.Equal(t, tt.want, r.IsProtected(author, now))
		})
	}
}

func TestLevelForTotalEarned(t *testing.T) {
	tests := []struct {
		total int64
		want  int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{299, 2},
		{300, 3},
		{700, 4},
		{1500, 5},
		{2999, 5},
		{3000, 6},
		{4999, 6},
		{5000, 7},
		{7000, 8},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, LevelForTotalEarned(tt.total), "total_earned=%d", tt.total)
	}
}

func TestNeedsDailyReset(t *testing.T) {
	now := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)

	assert.False(t, NeedsDailyReset(time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC), now))
	assert.True(t, NeedsDailyReset(time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC), now))
}

func TestApplyDailyReset(t *testing.T) {
	now := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	u := &UserPoints{DailyDampenCount: 7}

	ApplyDailyReset(u, now)

	assert.Equal(t, 0, u.DailyDampenCount)
	assert.Equal(t, time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC), u.LastResetDate)
}

func TestTouchActivity(t *testing.T) {
	now := time.Date(2026, 8, 30, 15, 0, 0, 0, time.UTC)
	today := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	yesterday := today.AddDate(0, 0, -1)
	weekAgo := today.AddDate(0, 0, -7)

	t.Run("первая активность — стрик 1", func(t *testing.T) {
		u := &UserPoints{}
		require.True(t, TouchActivity(u, now))
		assert.Equal(t, 1, u.CurrentStreak)
		assert.Equal(t, today, *u.LastActiveDate)
	})

	t.Run("вчера был активен — стрик растёт", func(t *testing.T) {
		u := &UserPoints{CurrentStreak: 4, LastActiveDate: &yesterday}
		require.True(t, TouchActivity(u, now))
		assert.Equal(t, 5, u.CurrentStreak)
	})

	t.Run("сегодня уже отмечен — без изменений", func(t *testing.T) {
		u := &UserPoints{CurrentStreak: 4, LastActiveDate: &today}
		require.False(t, TouchActivity(u, now))
		assert.Equal(t, 4, u.CurrentStreak)
	})

	t.Run("перерыв — стрик начинается заново", func(t *testing.T) {
		u := &UserPoints{CurrentStreak: 10, LastActiveDate: &weekAgo}
		require.True(t, TouchActivity(u, now))
		assert.Equal(t, 1, u.CurrentStreak)
	})
}
