package repositories

import (
	"bookmarket.backend/pkg/utils"
	"gorm.io/gorm"
)

// paginate applies limit and offset. A zero limit returns every row.
func paginate(db *gorm.DB, p utils.PaginationParams) *gorm.DB {
	if p.Limit <= 0 {
		return db
	}
	return db.Limit(p.Limit).Offset(p.CalculateOffset())
}
