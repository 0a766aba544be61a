package repository

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const activeBanSQL = "EXISTS (SELECT 1 FROM bans WHERE bans.user_id = users.id AND (bans.end_date IS NULL OR bans.end_date > ?))"

// ActiveBanExists is the correlated expression deciding whether the users row
// in scope is banned at now. A ban ending exactly at now is not active.
// It can be projected, used as a filter or negated without extra round trips.
func ActiveBanExists(now time.Time) clause.Expr {
	return gorm.Expr(activeBanSQL, now.UTC())
}
