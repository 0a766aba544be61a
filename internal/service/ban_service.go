package service

import (
	"context"
	"errors"
	"time"

	"patisson-users/internal/middleware"
	"patisson-users/internal/models"
	"patisson-users/internal/repository"
	"patisson-users/internal/validation"

	"gorm.io/gorm"
)

// BanService issues moderation bans.
type BanService struct {
	db    *gorm.DB
	bans  repository.BanRepository
	clock Clock
}

// NewBanService returns a new BanService. A nil clock means time.Now.
func NewBanService(db *gorm.DB, bans repository.BanRepository, clock Clock) *BanService {
	return &BanService{db: db, bans: bans, clock: clock}
}

// CreateBan bans the user until endDate, or forever when endDate is nil.
func (s *BanService) CreateBan(ctx context.Context, userID string, reason models.BanReason, comment string, endDate *time.Time) (_ *models.Ban, err error) {
	defer func() { record(ctx, "create_ban", err) }()

	if !reason.Valid() {
		return nil, models.NewValidationError("reason", int(reason), "unknown ban reason")
	}
	end, err := validation.BanEndDate(endDate, s.clock.now())
	if err != nil {
		return nil, err
	}

	ban := &models.Ban{UserID: userID, Reason: reason, Comment: comment, EndDate: end}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.bans.WithTx(tx).Create(ctx, ban)
	})
	if err != nil {
		if errors.Is(err, repository.ErrForeignKeyViolation) {
			return nil, userNotFoundError(userID, err)
		}
		return nil, asAppError(err)
	}

	middleware.Logger.InfoContext(ctx, "ban created", "ban_id", ban.ID, "user_id", userID, "permanent", end == nil)
	return ban, nil
}
