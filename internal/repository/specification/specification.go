package specification

import "gorm.io/gorm"

// Specification narrows a query; survey lookups compose them before First/Find
type Specification interface {
	Apply(db *gorm.DB) *gorm.DB
}
