package votes

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vibehub.ru/vibe-points/internal/common"
	"vibehub.ru/vibe-points/internal/features/points"
)

var planNow = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

func planRules() points.Rules {
	return points.Rules{
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

// testLedger — счёт «старого» пользователя вне окна защиты новичков.
func testLedger(id uuid.UUID, balance int64) *points.UserPoints {
	return &points.UserPoints{
		UserID:          id,
		CurrentBalance:  balance,
		ProtectedPoints: 50,
		Level:           1,
		CreatedAt:       planNow.AddDate(0, 0, -30),
	}
}

func planInput(voter, author *points.UserPoints, current *Vote, intent VoteKind) PlanInput {
	return PlanInput{
		Intent:   intent,
		Current:  current,
		RatingID: uuid.New(),
		AuthorID: author.UserID,
		Voter:    voter,
		Author:   author,
		Now:      planNow,
		Rules:    planRules(),
	}
}

// applyMoves прогоняет движения по балансам и возвращает итоговые значения.
func applyMoves(moves []Move, balances map[uuid.UUID]int64) {
	for _, m := range moves {
		balances[m.UserID] += m.Delta
	}
}

func TestPlanTransitionSelfVote(t *testing.T) {
	id := uuid.New()
	u := testLedger(id, 100)

	_, err := PlanTransition(planInput(u, u, nil, KindBoost))
	assert.ErrorIs(t, err, common.ErrSelfVote)
}

func TestPlanTransitionBoost(t *testing.T) {
	voter := testLedger(uuid.New(), 100)
	author := testLedger(uuid.New(), 100)

	plan, err := PlanTransition(planInput(voter, author, nil, KindBoost))
	require.NoError(t, err)

	assert.Equal(t, OpUpsert, plan.Op)
	assert.Equal(t, KindBoost, plan.Kind)
	assert.Equal(t, int64(2), plan.Points)
	assert.False(t, plan.CountDampen)

	require.Len(t, plan.Moves, 2)
	assert.Equal(t, voter.UserID, plan.Moves[0].UserID)
	assert.Equal(t, int64(-2), plan.Moves[0].Delta)
	assert.Equal(t, points.ActionBoost, plan.Moves[0].Action)
	assert.Equal(t, author.UserID, plan.Moves[1].UserID)
	assert.Equal(t, int64(2), plan.Moves[1].Delta)

	assert.True(t, plan.Result.Active)
	assert.Equal(t, ActionBoosted, plan.Result.Action)
}

func TestPlanTransitionBoostLevelDifference(t *testing.T) {
	voter := testLedger(uuid.New(), 100)
	author := testLedger(uuid.New(), 100)
	author.Level = 3 // ceil(2 * (1 + 2*0.1)) = 3

	plan, err := PlanTransition(planInput(voter, author, nil, KindBoost))
	require.NoError(t, err)

	assert.Equal(t, int64(3), plan.Points)
}

func TestPlanTransitionBoostInsufficientBalance(t *testing.T) {
	voter := testLedger(uuid.New(), 1)
	author := testLedger(uuid.New(), 100)

	_, err := PlanTransition(planInput(voter, author, nil, KindBoost))
	assert.ErrorIs(t, err, common.ErrInsufficientBalance)
}

func TestPlanTransitionDampen(t *testing.T) {
	voter := testLedger(uuid.New(), 100)
	author := testLedger(uuid.New(), 100)

	plan, err := PlanTransition(planInput(voter, author, nil, KindDampen))
	require.NoError(t, err)

	assert.Equal(t, OpUpsert, plan.Op)
	assert.Equal(t, KindDampen, plan.Kind)
	assert.Equal(t, int64(5), plan.Points)
	assert.True(t, plan.CountDampen)

	// Дампен бесплатен для голосующего: единственное движение — штраф автору
	require.Len(t, plan.Moves, 1)
	assert.Equal(t, author.UserID, plan.Moves[0].UserID)
	assert.Equal(t, int64(-5), plan.Moves[0].Delta)
	assert.Equal(t, points.ActionDampen, plan.Moves[0].Action)
}

func TestPlanTransitionDampenDailyLimit(t *testing.T) {
	voter := testLedger(uuid.New(), 100)
	voter.DailyDampenCount = 10
	author := testLedger(uuid.New(), 100)

	_, err := PlanTransition(planInput(voter, author, nil, KindDampen))
	assert.ErrorIs(t, err, common.ErrDampenDailyLimit)
}

func TestPlanTransitionDampenProtectedNewAccount(t *testing.T) {
	voter := testLedger(uuid.New(), 100)
	author := testLedger(uuid.New(), 1000)
	author.CreatedAt = planNow.AddDate(0, 0, -2)

	_, err := PlanTransition(planInput(voter, author, nil, KindDampen))
	assert.ErrorIs(t, err, common.ErrTargetProtected)
}

func TestPlanTransitionDampenProtectedLowBalance(t *testing.T) {
	voter := testLedger(uuid.New(), 100)
	author := testLedger(uuid.New(), 55) // доступно 5 ≤ минимума 10

	_, err := PlanTransition(planInput(voter, author, nil, KindDampen))
	assert.ErrorIs(t, err, common.ErrTargetProtected)
}

func TestPlanTransitionUnboost(t *testing.T) {
	voter := testLedger(uuid.New(), 98)
	author := testLedger(uuid.New(), 102)
	current := &Vote{Kind: KindBoost, Points: 2, VoterID: voter.UserID}

	plan, err := PlanTransition(planInput(voter, author, current, KindBoost))
	require.NoError(t, err)

	assert.Equal(t, OpDelete, plan.Op)
	assert.False(t, plan.Result.Active)
	assert.Equal(t, ActionUnboosted, plan.Result.Action)

	require.Len(t, plan.Moves, 2)
	assert.Equal(t, int64(-2), plan.Moves[0].Delta)
	assert.Equal(t, author.UserID, plan.Moves[0].UserID)
	assert.Equal(t, int64(2), plan.Moves[1].Delta)
	assert.Equal(t, voter.UserID, plan.Moves[1].UserID)
}

func TestPlanTransitionUnboostClampedToAuthorBalance(t *testing.T) {
	voter := testLedger(uuid.New(), 98)
	author := testLedger(uuid.New(), 1) // автор успел потратить перевод
	current := &Vote{Kind: KindBoost, Points: 2, VoterID: voter.UserID}

	plan, err := PlanTransition(planInput(voter, author, current, KindBoost))
	require.NoError(t, err)

	// Возвращаем сколько осталось — баланс автора не уходит в минус
	assert.Equal(t, int64(1), plan.Result.Points)
	require.Len(t, plan.Moves, 2)
	assert.Equal(t, int64(-1), plan.Moves[0].Delta)
}

func TestPlanTransitionBoostUnboostRoundTrip(t *testing.T) {
	voter := testLedger(uuid.New(), 100)
	author := testLedger(uuid.New(), 100)

	boost, err := PlanTransition(planInput(voter, author, nil, KindBoost))
	require.NoError(t, err)

	balances := map[uuid.UUID]int64{voter.UserID: 100, author.UserID: 100}
	applyMoves(boost.Moves, balances)
	assert.Equal(t, int64(98), balances[voter.UserID])
	assert.Equal(t, int64(102), balances[author.UserID])

	voter2 := testLedger(voter.UserID, balances[voter.UserID])
	author2 := testLedger(author.UserID, balances[author.UserID])
	current := &Vote{Kind: KindBoost, Points: boost.Points, VoterID: voter.UserID}

	unboost, err := PlanTransition(planInput(voter2, author2, current, KindBoost))
	require.NoError(t, err)

	applyMoves(unboost.Moves, balances)
	assert.Equal(t, int64(100), balances[voter.UserID], "ретракт возвращает баланс голосующего")
	assert.Equal(t, int64(100), balances[author.UserID], "ретракт возвращает баланс автора")
}

func TestPlanTransitionUndampen(t *testing.T) {
	voter := testLedger(uuid.New(), 100)
	author := testLedger(uuid.New(), 95)
	current := &Vote{Kind: KindDampen, Points: 5, VoterID: voter.UserID}

	plan, err := PlanTransition(planInput(voter, author, current, KindDampen))
	require.NoError(t, err)

	assert.Equal(t, OpDelete, plan.Op)
	assert.False(t, plan.Result.Active)
	assert.Equal(t, ActionUndampened, plan.Result.Action)
	assert.False(t, plan.CountDampen, "ретракт не возвращает дневную квоту")

	// Возвращается ровно сохранённый штраф, даже если карма изменилась
	require.Len(t, plan.Moves, 1)
	assert.Equal(t, int64(5), plan.Moves[0].Delta)
	assert.Equal(t, points.ActionDampenRestore, plan.Moves[0].Action)
}

func TestPlanTransitionSwitchToDampen(t *testing.T) {
	voter := testLedger(uuid.New(), 97)
	author := testLedger(uuid.New(), 103)
	current := &Vote{Kind: KindBoost, Points: 3, VoterID: voter.UserID}

	plan, err := PlanTransition(planInput(voter, author, current, KindDampen))
	require.NoError(t, err)

	assert.Equal(t, OpUpsert, plan.Op)
	assert.Equal(t, KindDampen, plan.Kind)
	assert.True(t, plan.CountDampen)
	assert.Equal(t, ActionSwitchToDampen, plan.Result.Action)

	// Реверс буста (2 движения), затем штраф от баланса ПОСЛЕ реверса
	require.Len(t, plan.Moves, 3)
	assert.Equal(t, int64(-3), plan.Moves[0].Delta)
	assert.Equal(t, int64(3), plan.Moves[1].Delta)
	assert.Equal(t, int64(-5), plan.Moves[2].Delta) // доступно 100-50=50 ≥ 25 → базовый штраф

	balances := map[uuid.UUID]int64{voter.UserID: 97, author.UserID: 103}
	applyMoves(plan.Moves, balances)
	assert.Equal(t, int64(100), balances[voter.UserID])
	assert.Equal(t, int64(95), balances[author.UserID])
}

func TestPlanTransitionSwitchToDampenPolicyBeforeReverse(t *testing.T) {
	voter := testLedger(uuid.New(), 97)
	voter.DailyDampenCount = 10
	author := testLedger(uuid.New(), 103)
	current := &Vote{Kind: KindBoost, Points: 3, VoterID: voter.UserID}

	// Квота исчерпана: переключение отклонено целиком, буст остаётся
	_, err := PlanTransition(planInput(voter, author, current, KindDampen))
	assert.ErrorIs(t, err, common.ErrDampenDailyLimit)
}

func TestPlanTransitionSwitchToBoost(t *testing.T) {
	voter := testLedger(uuid.New(), 100)
	author := testLedger(uuid.New(), 95)
	current := &Vote{Kind: KindDampen, Points: 5, VoterID: voter.UserID}

	plan, err := PlanTransition(planInput(voter, author, current, KindBoost))
	require.NoError(t, err)

	assert.Equal(t, OpUpsert, plan.Op)
	assert.Equal(t, KindBoost, plan.Kind)
	assert.Equal(t, int64(2), plan.Points)
	assert.Equal(t, ActionSwitchToBoost, plan.Result.Action)

	// Возврат штрафа, затем перевод за буст
	require.Len(t, plan.Moves, 3)
	assert.Equal(t, int64(5), plan.Moves[0].Delta)
	assert.Equal(t, points.ActionDampenRestore, plan.Moves[0].Action)
	assert.Equal(t, int64(-2), plan.Moves[1].Delta)
	assert.Equal(t, int64(2), plan.Moves[2].Delta)

	balances := map[uuid.UUID]int64{voter.UserID: 100, author.UserID: 95}
	applyMoves(plan.Moves, balances)
	assert.Equal(t, int64(98), balances[voter.UserID])
	assert.Equal(t, int64(102), balances[author.UserID])
}

func TestPlanTransitionSwitchToBoostInsufficientBalance(t *testing.T) {
	voter := testLedger(uuid.New(), 1)
	author := testLedger(uuid.New(), 95)
	current := &Vote{Kind: KindDampen, Points: 5, VoterID: voter.UserID}

	_, err := PlanTransition(planInput(voter, author, current, KindBoost))
	assert.ErrorIs(t, err, common.ErrInsufficientBalance)
}

func TestVoteState(t *testing.T) {
	var none *Vote
	assert.Equal(t, StateNone, none.State())
	assert.Equal(t, StateBoosted, (&Vote{Kind: KindBoost}).State())
	assert.Equal(t, StateDampened, (&Vote{Kind: KindDampen}).State())
}
