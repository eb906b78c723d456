package scope

import "gorm.io/gorm"

func OrderByCreatedAsc(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC")
}

func OrderByPositionAsc(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}
