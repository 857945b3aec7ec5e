package graph

import (
	"context"
	"fmt"

	"github.com/yungbote/kgcontent-backend/internal/contenttypes/ports"
	"github.com/yungbote/kgcontent-backend/internal/data/ids"
	types "github.com/yungbote/kgcontent-backend/internal/domain/graph"
)

func (s *GraphStore) CreateLiteral(ctx context.Context, cmd ports.CreateLiteralCommand) (types.ThingID, error) {
	raw, err := s.ids.NewID(ctx, ids.KindLiteral)
	if err != nil {
		return "", err
	}
	datatype := cmd.Datatype
	if datatype == "" {
		datatype = types.DatatypeString
	}
	row := &types.Literal{
		ID:        types.ThingID(raw),
		Label:     cmd.Label,
		Datatype:  datatype,
		CreatedBy: cmd.Contributor,
		CreatedAt: s.now(),
	}
	if err := s.conn(ctx).Create(row).Error; err != nil {
		return "", fmt.Errorf("create literal: %w", translateError(err))
	}
	return row.ID, nil
}

func (s *GraphStore) FindLiteral(ctx context.Context, id types.ThingID) (*types.Literal, error) {
	var rows []*types.Literal
	if err := s.conn(ctx).Where("id = ?", id).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (s *GraphStore) DeleteLiteral(ctx context.Context, id types.ThingID) error {
	if err := s.conn(ctx).Where("id = ?", id).Delete(&types.Literal{}).Error; err != nil {
		return fmt.Errorf("delete literal %s: %w", id, err)
	}
	return nil
}
