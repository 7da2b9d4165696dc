// Package users declares the user store contract and its PostgreSQL implementation.
package users

import (
	"context"

	"github.com/dmitrijs2005/chatandpay/internal/server/models"
)

// Unique constraints enforced by the schema. Services match them to
// report uniqueness conflicts raised by concurrent writers.
const (
	ConstraintPhone       = "users_phone_key"
	ConstraintLoginHandle = "users_login_handle_key"
)

// Repository is the user store. Lookups return common.ErrorNotFound when
// no row matches.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	FindByLoginHandle(ctx context.Context, handle string) (*models.User, error)
	FindByPhone(ctx context.Context, phone string) (*models.User, error)
	ExistsByLoginHandleExcludingID(ctx context.Context, handle string, id int64) (bool, error)
	ExistsByPhoneExcludingID(ctx context.Context, phone string, id int64) (bool, error)
	// Update persists all mutable fields of user, keyed by user.ID.
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id int64) error
}
