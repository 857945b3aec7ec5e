package db

import (
	"gorm.io/gorm"

	types "github.com/yungbote/kgcontent-backend/internal/domain/graph"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		// Things
		&types.Resource{},
		&types.Literal{},
		&types.Predicate{},
		&types.Class{},

		// Edges
		&types.Statement{},

		// Aggregates owned elsewhere, checked for existence only
		&types.Observatory{},
		&types.Organization{},
	)
}
