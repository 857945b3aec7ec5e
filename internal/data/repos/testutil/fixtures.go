package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/kgcontent-backend/internal/domain/graph"
)

func SeedObservatory(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) uuid.UUID {
	tb.Helper()
	o := &types.Observatory{ID: uuid.New(), Name: name, CreatedAt: time.Now().UTC()}
	if err := tx.WithContext(ctx).Create(o).Error; err != nil {
		tb.Fatalf("seed observatory: %v", err)
	}
	return o.ID
}

func SeedOrganization(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) uuid.UUID {
	tb.Helper()
	o := &types.Organization{ID: uuid.New(), Name: name, CreatedAt: time.Now().UTC()}
	if err := tx.WithContext(ctx).Create(o).Error; err != nil {
		tb.Fatalf("seed organization: %v", err)
	}
	return o.ID
}

func SeedResource(tb testing.TB, ctx context.Context, tx *gorm.DB, id types.ThingID, label string, classes ...types.ThingID) {
	tb.Helper()
	r := &types.Resource{
		ID:               id,
		Label:            label,
		Classes:          classes,
		ExtractionMethod: types.ExtractionUnknown,
		Visibility:       types.VisibilityDefault,
		CreatedAt:        time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(r).Error; err != nil {
		tb.Fatalf("seed resource %s: %v", id, err)
	}
}
