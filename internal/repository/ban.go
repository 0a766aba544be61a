package repository

import (
	"context"

	"patisson-users/internal/models"

	"gorm.io/gorm"
)

// BanRepository defines persistence operations for bans.
type BanRepository interface {
	Create(ctx context.Context, ban *models.Ban) error
	ListByUser(ctx context.Context, userID string) ([]models.Ban, error)
	WithTx(tx *gorm.DB) BanRepository
}

type banRepository struct {
	db *gorm.DB
}

// NewBanRepository returns a new BanRepository implementation.
func NewBanRepository(db *gorm.DB) BanRepository {
	return &banRepository{db: db}
}

func (r *banRepository) WithTx(tx *gorm.DB) BanRepository {
	return &banRepository{db: tx}
}

func (r *banRepository) Create(ctx context.Context, ban *models.Ban) error {
	if ban.EndDate != nil {
		utc := ban.EndDate.UTC()
		ban.EndDate = &utc
	}
	return classifyConstraintError(r.db.WithContext(ctx).Omit("User").Create(ban).Error)
}

func (r *banRepository) ListByUser(ctx context.Context, userID string) ([]models.Ban, error) {
	var bans []models.Ban
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&bans).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return bans, nil
}
