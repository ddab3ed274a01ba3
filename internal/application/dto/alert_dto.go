package dto

import "github.com/jhoicas/inventory-alerts/internal/domain/entity"

// CheckLowStockResponse salida de POST /api/alerts/check-low-stock.
type CheckLowStockResponse struct {
	Message              string                  `json:"message"`
	AlertsCreated        int                     `json:"alerts_created"`
	NotificationsCreated int                     `json:"notifications_created"`
	Details              []entity.AlertCandidate `json:"details"`
}

// ConnectionStatsResponse salida de GET /api/ws/stats.
type ConnectionStatsResponse struct {
	ConnectedUsers   []string       `json:"connected_users"`
	TotalUsers       int            `json:"total_users"`
	TotalConnections int            `json:"total_connections"`
	PerUser          map[string]int `json:"per_user"`
}
