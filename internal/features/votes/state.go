// Package votes — state.go реализует таблицу переходов машины состояний.
// PlanTransition — чистая функция: по текущему состоянию и намерению
// строит план (операция над голосом + движения поинтов), не трогая БД.
// Все политики (свой голос, нехватка поинтов, дневной лимит, защита)
// проверяются здесь, в одном месте.
package votes

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"vibehub.ru/vibe-points/internal/common"
	"vibehub.ru/vibe-points/internal/features/points"
)

// VoteOp — что сделать со строкой голоса.
type VoteOp int

const (
	OpUpsert VoteOp = iota // Вставить или обновить голос
	OpDelete               // Удалить голос (ретракт)
)

// Move — одно движение поинтов: дельта на счёте одного пользователя.
// Перевод за буст — это два Move (списание и начисление), штраф — один.
type Move struct {
	UserID         uuid.UUID
	Delta          int64
	Action         string
	CounterpartyID *uuid.UUID
}

// TransitionPlan — полный план перехода, исполняется атомарно.
type TransitionPlan struct {
	Op          VoteOp
	Kind        VoteKind // Для OpUpsert
	Points      int64    // Сумма, сохраняемая на голосе
	Moves       []Move
	CountDampen bool // Увеличить дневной счётчик дампенов голосующего
	Result      VoteResult
}

// PlanInput — всё, что нужно планировщику. Счета передаются копиями:
// планировщик двигает их балансы локально, чтобы зажимы считались
// последовательно (важно при переключениях реверс+новая операция).
type PlanInput struct {
	Intent   VoteKind
	Current  *Vote // nil, если голоса нет
	RatingID uuid.UUID
	AuthorID uuid.UUID
	Voter    *points.UserPoints
	Author   *points.UserPoints
	Now      time.Time
	Rules    points.Rules
}

// PlanTransition строит план перехода по таблице:
//
//	NONE     + boost  → BOOSTED  (перевод голосующий→автор)
//	NONE     + dampen → DAMPENED (штраф автору)
//	BOOSTED  + boost  → NONE     (реверс перевода)
//	BOOSTED  + dampen → DAMPENED (реверс перевода, затем штраф)
//	DAMPENED + boost  → BOOSTED  (возврат штрафа, затем перевод)
//	DAMPENED + dampen → NONE     (возврат штрафа автору)
func PlanTransition(in PlanInput) (*TransitionPlan, error) {
	if in.Voter.UserID == in.AuthorID {
		return nil, common.ErrSelfVote
	}

	p := &planner{
		in:        in,
		voterBal:  in.Voter.CurrentBalance,
		authorBal: in.Author.CurrentBalance,
	}

	switch in.Current.State() {
	case StateNone:
		if in.Intent == KindBoost {
			return p.planBoost(ActionBoosted)
		}
		return p.planDampen(ActionDampened)

	case StateBoosted:
		if in.Intent == KindBoost {
			return p.planUnboost()
		}
		// Переключение boost → dampen: сначала реверс, потом штраф
		return p.planSwitchToDampen()

	default: // StateDampened
		if in.Intent == KindDampen {
			return p.planUndampen()
		}
		// Переключение dampen → boost: сначала возврат штрафа, потом перевод
		return p.planSwitchToBoost()
	}
}

// planner двигает локальные балансы по мере набора Move'ов.
type planner struct {
	in        PlanInput
	voterBal  int64
	authorBal int64
	moves     []Move
}

func (p *planner) move(userID uuid.UUID, delta int64, action string, counterparty uuid.UUID) {
	if delta == 0 {
		return
	}
	cp := counterparty
	p.moves = append(p.moves, Move{
		UserID:         userID,
		Delta:          delta,
		Action:         action,
		CounterpartyID: &cp,
	})
	if userID == p.in.Voter.UserID {
		p.voterBal += delta
	} else {
		p.authorBal += delta
	}
}

// appendBoost добавляет перевод голосующий→автор и возвращает сумму.
func (p *planner) appendBoost() (int64, error) {
	amount := p.in.Rules.BoostAmount(p.in.Author.Level, p.in.Voter.Level)
	if p.voterBal < amount {
		return 0, fmt.Errorf("%w: требуется %s",
			common.ErrInsufficientBalance, common.FormatPoints(amount))
	}
	p.move(p.in.Voter.UserID, -amount, points.ActionBoost, p.in.AuthorID)
	p.move(p.in.AuthorID, amount, points.ActionBoost, p.in.Voter.UserID)
	return amount, nil
}

// appendBoostReverse возвращает перевод буста обратно голосующему.
// Если автор уже потратил часть — возвращаем сколько есть:
// инвариант неотрицательного баланса важнее точного реверса.
func (p *planner) appendBoostReverse() int64 {
	moved := p.in.Current.Points
	if moved > p.authorBal {
		moved = p.authorBal
	}
	p.move(p.in.AuthorID, -moved, points.ActionBoostReverse, p.in.Voter.UserID)
	p.move(p.in.Voter.UserID, moved, points.ActionBoostReverse, p.in.AuthorID)
	return moved
}

// checkDampenPolicy — дневной лимит и защита автора.
func (p *planner) checkDampenPolicy() error {
	if p.in.Voter.DailyDampenCount >= p.in.Rules.DampenDailyLimit {
		return fmt.Errorf("%w (%d в день)", common.ErrDampenDailyLimit, p.in.Rules.DampenDailyLimit)
	}
	if p.in.Rules.IsProtected(p.in.Author, p.in.Now) {
		return common.ErrTargetProtected
	}
	return nil
}

// appendDampen добавляет штраф автору и возвращает его размер.
// Штраф считается от ТЕКУЩЕГО локального баланса автора —
// при переключении реверс уже учтён.
func (p *planner) appendDampen() int64 {
	author := *p.in.Author
	author.CurrentBalance = p.authorBal
	penalty := p.in.Rules.DampenPenalty(&author)
	p.move(p.in.AuthorID, -penalty, points.ActionDampen, p.in.Voter.UserID)
	return penalty
}

func (p *planner) planBoost(action string) (*TransitionPlan, error) {
	amount, err := p.appendBoost()
	if err != nil {
		return nil, err
	}
	return &TransitionPlan{
		Op:     OpUpsert,
		Kind:   KindBoost,
		Points: amount,
		Moves:  p.moves,
		Result: VoteResult{
			Active:  true,
			Action:  action,
			Points:  amount,
			Message: fmt.Sprintf("Оценка усилена: автору передано %s", common.FormatPoints(amount)),
		},
	}, nil
}

func (p *planner) planDampen(action string) (*TransitionPlan, error) {
	if err := p.checkDampenPolicy(); err != nil {
		return nil, err
	}
	penalty := p.appendDampen()
	return &TransitionPlan{
		Op:          OpUpsert,
		Kind:        KindDampen,
		Points:      penalty,
		Moves:       p.moves,
		CountDampen: true,
		Result: VoteResult{
			Active:  true,
			Action:  action,
			Points:  penalty,
			Message: fmt.Sprintf("Оценка приглушена: автор оштрафован на %s", common.FormatPoints(penalty)),
		},
	}, nil
}

func (p *planner) planUnboost() (*TransitionPlan, error) {
	moved := p.appendBoostReverse()
	return &TransitionPlan{
		Op:    OpDelete,
		Moves: p.moves,
		Result: VoteResult{
			Active:  false,
			Action:  ActionUnboosted,
			Points:  moved,
			Message: fmt.Sprintf("Буст отменён: возвращено %s", common.FormatPoints(moved)),
		},
	}, nil
}

func (p *planner) planUndampen() (*TransitionPlan, error) {
	restored := p.in.Current.Points
	p.move(p.in.AuthorID, restored, points.ActionDampenRestore, p.in.Voter.UserID)
	return &TransitionPlan{
		Op:    OpDelete,
		Moves: p.moves,
		Result: VoteResult{
			Active:  false,
			Action:  ActionUndampened,
			Points:  restored,
			Message: fmt.Sprintf("Дампен отменён: автору возвращено %s", common.FormatPoints(restored)),
		},
	}, nil
}

func (p *planner) planSwitchToDampen() (*TransitionPlan, error) {
	// Политику проверяем ДО реверса: при отказе не должно быть
	// ни частичных движений, ни изменения голоса
	if err := p.checkDampenPolicy(); err != nil {
		return nil, err
	}
	p.appendBoostReverse()
	penalty := p.appendDampen()
	return &TransitionPlan{
		Op:          OpUpsert,
		Kind:        KindDampen,
		Points:      penalty,
		Moves:       p.moves,
		CountDampen: true,
		Result: VoteResult{
			Active:  true,
			Action:  ActionSwitchToDampen,
			Points:  penalty,
			Message: fmt.Sprintf("Буст заменён дампеном: штраф %s", common.FormatPoints(penalty)),
		},
	}, nil
}

func (p *planner) planSwitchToBoost() (*TransitionPlan, error) {
	// Сначала возвращаем штраф автору, потом обычный буст
	p.move(p.in.AuthorID, p.in.Current.Points, points.ActionDampenRestore, p.in.Voter.UserID)
	amount, err := p.appendBoost()
	if err != nil {
		return nil, err
	}
	return &TransitionPlan{
		Op:     OpUpsert,
		Kind:   KindBoost,
		Points: amount,
		Moves:  p.moves,
		Result: VoteResult{
			Active:  true,
			Action:  ActionSwitchToBoost,
			Points:  amount,
			Message: fmt.Sprintf("Дампен заменён бустом: автору передано %s", common.FormatPoints(amount)),
		},
	}, nil
}
