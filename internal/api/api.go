// Package api содержит HTTP-обработчики сервиса.
// Обработчики тонкие: разбор запроса, вызов сервиса, маппинг ошибок.
package api

import (
	"vibehub.ru/vibe-points/internal/features/admin"
	"vibehub.ru/vibe-points/internal/features/points"
	"vibehub.ru/vibe-points/internal/features/ratings"
	"vibehub.ru/vibe-points/internal/features/votes"
)

// API объединяет сервисы, доступные обработчикам.
type API struct {
	ratings *ratings.Service
	votes   *votes.Service
	points  *points.Service
	admin   *admin.Service
}

// New создаёт набор обработчиков.
func New(ratingsService *ratings.Service, votesService *votes.Service, pointsService *points.Service, adminService *admin.Service) *API {
	return &API{
		ratings: ratingsService,
		votes:   votesService,
		points:  pointsService,
		admin:   adminService,
	}
}
