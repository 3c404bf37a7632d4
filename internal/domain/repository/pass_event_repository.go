package repository

import (
	"context"

	"github.com/velronatechnologies/Ticpin-website-sub002/internal/domain/entity"
)

// PassEventRepository defines the audit ledger of pass changes
type PassEventRepository interface {
	Record(ctx context.Context, event *entity.PassEvent) error
	ListByPass(ctx context.Context, passID string) ([]*entity.PassEvent, error)
}
