// Package common — errors.go определяет доменные ошибки,
// которые используются во всех модулях сервиса.
// Эти ошибки позволяют HTTP-слою различать типы проблем
// и возвращать клиенту понятные ответы.
package common

import "errors"

// Ошибки голосования
var (
	// ErrSelfVote — попытка голосовать за собственную оценку
	ErrSelfVote = errors.New("нельзя голосовать за собственную оценку")
	// ErrRatingNotFound — оценка не найдена
	ErrRatingNotFound = errors.New("оценка не найдена")
	// ErrUnauthenticated — запрос без идентификатора пользователя
	ErrUnauthenticated = errors.New("пользователь не аутентифицирован")
)

// Ошибки экономики (поинты, переводы)
var (
	// ErrInsufficientBalance — недостаточно поинтов на счёте
	ErrInsufficientBalance = errors.New("недостаточно поинтов на счёте")
	// ErrInvalidAmount — некорректная сумма (ноль или отрицательная)
	ErrInvalidAmount = errors.New("сумма должна быть положительной")
	// ErrDampenDailyLimit — лимит дампенов на день исчерпан
	ErrDampenDailyLimit = errors.New("лимит дампенов на сегодня исчерпан")
	// ErrTargetProtected — автор оценки под защитой, дампен невозможен
	ErrTargetProtected = errors.New("автор оценки находится под защитой")
	// ErrLedgerNotReady — запись поинтов ещё не создана, нужно повторить запрос
	ErrLedgerNotReady = errors.New("счёт поинтов ещё не инициализирован, повторите попытку")
)

// Ошибки админки
var (
	// ErrBadAdminKey — неверный API-ключ администратора
	ErrBadAdminKey = errors.New("неверный ключ администратора")
)
