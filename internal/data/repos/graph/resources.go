package graph

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/datatypes"

	"github.com/yungbote/kgcontent-backend/internal/contenttypes/ports"
	"github.com/yungbote/kgcontent-backend/internal/data/ids"
	types "github.com/yungbote/kgcontent-backend/internal/domain/graph"
	pkgerrors "github.com/yungbote/kgcontent-backend/internal/pkg/errors"
)

func (s *GraphStore) CreateResource(ctx context.Context, cmd ports.CreateResourceCommand) (types.ThingID, error) {
	raw, err := s.ids.NewID(ctx, ids.KindResource)
	if err != nil {
		return "", err
	}
	method := cmd.ExtractionMethod
	if method == "" {
		method = types.ExtractionUnknown
	}
	row := &types.Resource{
		ID:               types.ThingID(raw),
		Label:            cmd.Label,
		Classes:          datatypes.JSONSlice[types.ThingID](append([]types.ThingID{}, cmd.Classes...)),
		ObservatoryID:    cmd.ObservatoryID,
		OrganizationID:   cmd.OrganizationID,
		ExtractionMethod: method,
		Visibility:       types.VisibilityDefault,
		CreatedBy:        cmd.Contributor,
		CreatedAt:        s.now(),
	}
	if err := s.conn(ctx).Create(row).Error; err != nil {
		return "", fmt.Errorf("create resource: %w", translateError(err))
	}
	return row.ID, nil
}

func (s *GraphStore) FindResource(ctx context.Context, id types.ThingID) (*types.Resource, error) {
	var rows []*types.Resource
	if err := s.conn(ctx).Where("id = ?", id).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (s *GraphStore) FindResources(ctx context.Context, filter ports.ResourceFilter) ([]types.Resource, error) {
	q := s.conn(ctx).Model(&types.Resource{})
	if label := strings.TrimSpace(filter.Label); label != "" {
		q = q.Where("LOWER(TRIM(label)) = LOWER(?)", label)
	}
	var rows []types.Resource
	if err := q.Order("created_at ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	if filter.Class == "" {
		return rows, nil
	}
	out := make([]types.Resource, 0, len(rows))
	for _, r := range rows {
		if r.HasClass(filter.Class) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *GraphStore) UpdateResource(ctx context.Context, id types.ThingID, update ports.ResourceUpdate) error {
	fields := map[string]any{}
	if update.Label != nil {
		fields["label"] = *update.Label
	}
	if update.Classes != nil {
		fields["classes"] = datatypes.JSONSlice[types.ThingID](append([]types.ThingID{}, (*update.Classes)...))
	}
	if update.ObservatoryID != nil {
		fields["observatory_id"] = *update.ObservatoryID
	}
	if update.OrganizationID != nil {
		fields["organization_id"] = *update.OrganizationID
	}
	if update.ExtractionMethod != nil {
		fields["extraction_method"] = *update.ExtractionMethod
	}
	if update.Visibility != nil {
		fields["visibility"] = *update.Visibility
	}
	if len(fields) == 0 {
		return nil
	}
	res := s.conn(ctx).Model(&types.Resource{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("update resource %s: %w", id, translateError(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update resource %s: %w", id, pkgerrors.ErrNotFound)
	}
	return nil
}

func (s *GraphStore) DeleteResource(ctx context.Context, id types.ThingID) error {
	if err := s.conn(ctx).Where("id = ?", id).Delete(&types.Resource{}).Error; err != nil {
		return fmt.Errorf("delete resource %s: %w", id, err)
	}
	return nil
}
