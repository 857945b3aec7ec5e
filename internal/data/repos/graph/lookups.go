package graph

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/kgcontent-backend/internal/data/ids"
	types "github.com/yungbote/kgcontent-backend/internal/domain/graph"
)

func (s *GraphStore) FindPredicate(ctx context.Context, id types.ThingID) (*types.Predicate, error) {
	var rows []*types.Predicate
	if err := s.conn(ctx).Where("id = ?", id).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (s *GraphStore) FindClass(ctx context.Context, id types.ThingID) (*types.Class, error) {
	var rows []*types.Class
	if err := s.conn(ctx).Where("id = ?", id).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (s *GraphStore) FindThing(ctx context.Context, id types.ThingID) (types.Thing, error) {
	things, err := s.findThings(ctx, []types.ThingID{id})
	if err != nil {
		return nil, err
	}
	return things[id], nil
}

// findThings resolves ids across the four thing tables. Absent ids are
// missing from the result.
func (s *GraphStore) findThings(ctx context.Context, thingIDs []types.ThingID) (map[types.ThingID]types.Thing, error) {
	out := make(map[types.ThingID]types.Thing, len(thingIDs))
	if len(thingIDs) == 0 {
		return out, nil
	}
	var resources []types.Resource
	if err := s.conn(ctx).Where("id IN ?", thingIDs).Find(&resources).Error; err != nil {
		return nil, err
	}
	for _, r := range resources {
		out[r.ID] = r
	}
	var literals []types.Literal
	if err := s.conn(ctx).Where("id IN ?", thingIDs).Find(&literals).Error; err != nil {
		return nil, err
	}
	for _, l := range literals {
		out[l.ID] = l
	}
	var predicates []types.Predicate
	if err := s.conn(ctx).Where("id IN ?", thingIDs).Find(&predicates).Error; err != nil {
		return nil, err
	}
	for _, p := range predicates {
		out[p.ID] = p
	}
	var classes []types.Class
	if err := s.conn(ctx).Where("id IN ?", thingIDs).Find(&classes).Error; err != nil {
		return nil, err
	}
	for _, c := range classes {
		out[c.ID] = c
	}
	return out, nil
}

func (s *GraphStore) ObservatoryExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var n int64
	if err := s.conn(ctx).Model(&types.Observatory{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *GraphStore) OrganizationExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var n int64
	if err := s.conn(ctx).Model(&types.Organization{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// taken checks every table an id of the given kind shares a namespace with.
// Thing ids are unique across all four thing tables, which no key enforces.
func (s *GraphStore) taken(ctx context.Context, kind ids.Kind, id string) (bool, error) {
	models := []any{&types.Resource{}, &types.Literal{}, &types.Predicate{}, &types.Class{}}
	if kind == ids.KindStatement {
		models = []any{&types.Statement{}}
	}
	for _, m := range models {
		var n int64
		if err := s.conn(ctx).Model(m).Where("id = ?", id).Count(&n).Error; err != nil {
			return false, err
		}
		if n > 0 {
			return true, nil
		}
	}
	return false, nil
}
