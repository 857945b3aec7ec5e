package graph

import (
	"context"
	"fmt"
	"sort"

	"gorm.io/gorm/clause"

	types "github.com/yungbote/kgcontent-backend/internal/domain/graph"
)

// SeedVocabulary inserts the built-in predicates and classes, leaving rows
// that already exist untouched.
func (s *GraphStore) SeedVocabulary(ctx context.Context) error {
	now := s.now()
	predicates := make([]types.Predicate, 0, len(types.BuiltinPredicates))
	for id, label := range types.BuiltinPredicates {
		predicates = append(predicates, types.Predicate{ID: id, Label: label, CreatedAt: now})
	}
	sort.Slice(predicates, func(i, j int) bool { return predicates[i].ID < predicates[j].ID })
	classes := make([]types.Class, 0, len(types.BuiltinClasses))
	for id, label := range types.BuiltinClasses {
		classes = append(classes, types.Class{ID: id, Label: label, CreatedAt: now})
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i].ID < classes[j].ID })

	err := s.inTx(ctx, func(ctx context.Context) error {
		if err := s.conn(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&predicates).Error; err != nil {
			return fmt.Errorf("seed predicates: %w", err)
		}
		if err := s.conn(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&classes).Error; err != nil {
			return fmt.Errorf("seed classes: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info("vocabulary seeded", "predicates", len(predicates), "classes", len(classes))
	return nil
}
