package dto

import (
	"time"

	"github.com/jhoicas/inventory-alerts/internal/domain/entity"
)

// ActivityResponse entrada del registro de actividad.
type ActivityResponse struct {
	ID            string    `json:"id"`
	ActivityType  string    `json:"activity_type"`
	Action        string    `json:"action"`
	ItemName      string    `json:"item_name"`
	UserID        *string   `json:"user_id"`
	ReferenceID   *string   `json:"reference_id"`
	ReferenceType *string   `json:"reference_type"`
	CreatedAt     time.Time `json:"created_at"`
}

// ToActivityResponse mapea la entidad a su salida HTTP.
func ToActivityResponse(e *entity.ActivityLog) ActivityResponse {
	return ActivityResponse{
		ID:            e.ID,
		ActivityType:  e.ActivityType,
		Action:        e.Action,
		ItemName:      e.ItemName,
		UserID:        e.UserID,
		ReferenceID:   e.ReferenceID,
		ReferenceType: e.ReferenceType,
		CreatedAt:     e.CreatedAt,
	}
}
