package repository

import (
	"context"
	"errors"
	"time"

	"github.com/velronatechnologies/Ticpin-website-sub002/internal/domain/entity"
)

// ErrPassNotFound is returned when a pass document does not exist
var ErrPassNotFound = errors.New("pass not found")

// Pass document field names used for equality queries
const (
	FieldEmail = "email"
	FieldPhone = "phone"
)

// PassRepository defines the document store operations the pass service needs
type PassRepository interface {
	FindByField(ctx context.Context, field, value string) ([]*entity.PassRecord, error)
	FindByID(ctx context.Context, id string) (*entity.PassRecord, error)
	Create(ctx context.Context, pass *entity.PassRecord) (string, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, id string) error
	// FindActiveExpiringBetween returns stored-active passes with from <= expiryDate <= to, soonest first
	FindActiveExpiringBetween(ctx context.Context, from, to time.Time) ([]*entity.PassRecord, error)
	// WithTransaction runs fn atomically when the store supports multi-document transactions,
	// otherwise fn runs directly.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	// Transactional reports whether WithTransaction rolls back on error
	Transactional() bool
}
