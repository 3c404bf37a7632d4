package repository

import (
	"context"

	"github.com/velronatechnologies/Ticpin-website-sub002/internal/domain/entity"
	"github.com/velronatechnologies/Ticpin-website-sub002/internal/domain/repository"

	"gorm.io/gorm"
)

// GormPassEventRepository implements the PassEventRepository interface
type GormPassEventRepository struct {
	db *gorm.DB
}

// NewGormPassEventRepository creates a new GORM pass event repository
func NewGormPassEventRepository(db *gorm.DB) repository.PassEventRepository {
	return &GormPassEventRepository{
		db: db,
	}
}

// PassEvents GORM model for database mapping
type PassEvents struct {
	gorm.Model
	PassID    string `gorm:"column:pass_id;index"`
	EventType string `gorm:"column:event_type;size:32"`
	Email     string `gorm:"column:email"`
	Phone     string `gorm:"column:phone"`
	Channel   string `gorm:"column:channel;size:16"`
	Detail    string `gorm:"column:detail"`
}

// TableName overrides the default table name
func (PassEvents) TableName() string {
	return "pass_events"
}

// Record inserts a ledger entry
func (r *GormPassEventRepository) Record(ctx context.Context, event *entity.PassEvent) error {
	model := PassEvents{
		PassID:    event.PassID,
		EventType: string(event.EventType),
		Email:     event.Email,
		Phone:     event.Phone,
		Channel:   string(event.Channel),
		Detail:    event.Detail,
	}

	result := r.db.WithContext(ctx).Create(&model)
	if result.Error != nil {
		return result.Error
	}

	event.ID = model.ID
	event.CreatedAt = model.CreatedAt

	return nil
}

// ListByPass returns the ledger of one pass, oldest first
func (r *GormPassEventRepository) ListByPass(ctx context.Context, passID string) ([]*entity.PassEvent, error) {
	var rows []PassEvents
	result := r.db.WithContext(ctx).
		Where("pass_id = ?", passID).
		Order("created_at ASC").
		Find(&rows)

	if result.Error != nil {
		return nil, result.Error
	}

	events := make([]*entity.PassEvent, 0, len(rows))
	for _, row := range rows {
		events = append(events, &entity.PassEvent{
			ID:        row.ID,
			PassID:    row.PassID,
			EventType: entity.PassEventType(row.EventType),
			Email:     row.Email,
			Phone:     row.Phone,
			Channel:   entity.NotificationChannel(row.Channel),
			Detail:    row.Detail,
			CreatedAt: row.CreatedAt,
		})
	}

	return events, nil
}

// NopPassEventRepository drops every event; used when no ledger database is configured
type NopPassEventRepository struct{}

// NewNopPassEventRepository creates a ledger that records nothing
func NewNopPassEventRepository() repository.PassEventRepository {
	return NopPassEventRepository{}
}

func (NopPassEventRepository) Record(ctx context.Context, event *entity.PassEvent) error {
	return nil
}

func (NopPassEventRepository) ListByPass(ctx context.Context, passID string) ([]*entity.PassEvent, error) {
	return nil, nil
}
