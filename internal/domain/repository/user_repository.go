package repository

import (
	"context"

	"github.com/jhoicas/inventory-alerts/internal/domain/entity"
)

// UserRepository define el puerto de lectura de usuarios (DIP).
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// ListActiveByRoles usuarios activos de la empresa con alguno de los roles.
	ListActiveByRoles(ctx context.Context, companyID string, roles []string) ([]*entity.User, error)
}
