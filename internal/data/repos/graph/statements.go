package graph

import (
	"context"
	"fmt"

	"github.com/yungbote/kgcontent-backend/internal/contenttypes/ports"
	"github.com/yungbote/kgcontent-backend/internal/data/ids"
	types "github.com/yungbote/kgcontent-backend/internal/domain/graph"
	pkgerrors "github.com/yungbote/kgcontent-backend/internal/pkg/errors"
)

// statementOrder puts indexed statements first by index, then everything by
// creation.
const statementOrder = "idx IS NULL, idx ASC, created_at ASC, id ASC"

// CreateStatement checks the endpoints and inserts the row in one
// transaction so a concurrent delete cannot leave a dangling statement.
func (s *GraphStore) CreateStatement(ctx context.Context, cmd ports.CreateStatementCommand) (types.StatementID, error) {
	var id types.StatementID
	err := s.inTx(ctx, func(ctx context.Context) error {
		var err error
		id, err = s.createStatement(ctx, cmd)
		return err
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *GraphStore) createStatement(ctx context.Context, cmd ports.CreateStatementCommand) (types.StatementID, error) {
	subject, err := s.FindThing(ctx, cmd.SubjectID)
	if err != nil {
		return "", err
	}
	if subject == nil {
		return "", fmt.Errorf("create statement: subject %s: %w", cmd.SubjectID, pkgerrors.ErrNotFound)
	}
	predicate, err := s.FindPredicate(ctx, cmd.PredicateID)
	if err != nil {
		return "", err
	}
	if predicate == nil {
		return "", fmt.Errorf("create statement: predicate %s: %w", cmd.PredicateID, pkgerrors.ErrNotFound)
	}
	object, err := s.FindThing(ctx, cmd.ObjectID)
	if err != nil {
		return "", err
	}
	if object == nil {
		return "", fmt.Errorf("create statement: object %s: %w", cmd.ObjectID, pkgerrors.ErrNotFound)
	}

	raw, err := s.ids.NewID(ctx, ids.KindStatement)
	if err != nil {
		return "", err
	}
	row := &types.Statement{
		ID:          types.StatementID(raw),
		SubjectID:   cmd.SubjectID,
		PredicateID: cmd.PredicateID,
		ObjectID:    cmd.ObjectID,
		CreatedBy:   cmd.Contributor,
		CreatedAt:   s.now(),
	}
	if cmd.Index != nil {
		idx := *cmd.Index
		row.Index = &idx
	}
	if err := s.conn(ctx).Create(row).Error; err != nil {
		return "", fmt.Errorf("create statement: %w", translateError(err))
	}
	return row.ID, nil
}

func (s *GraphStore) FindStatements(ctx context.Context, filter ports.StatementFilter) ([]types.Statement, error) {
	q := s.conn(ctx).Model(&types.Statement{})
	if filter.SubjectID != "" {
		q = q.Where("subject_id = ?", filter.SubjectID)
	}
	if filter.PredicateID != "" {
		q = q.Where("predicate_id = ?", filter.PredicateID)
	}
	if filter.ObjectID != "" {
		q = q.Where("object_id = ?", filter.ObjectID)
	}
	if filter.ObjectLabel != nil {
		label := *filter.ObjectLabel
		conn := s.conn(ctx)
		q = q.Where(
			conn.Where("object_id IN (?)", conn.Model(&types.Literal{}).Select("id").Where("label = ?", label)).
				Or("object_id IN (?)", conn.Model(&types.Resource{}).Select("id").Where("label = ?", label)).
				Or("object_id IN (?)", conn.Model(&types.Predicate{}).Select("id").Where("label = ?", label)).
				Or("object_id IN (?)", conn.Model(&types.Class{}).Select("id").Where("label = ?", label)),
		)
	}
	var rows []types.Statement
	if err := q.Order(statementOrder).Find(&rows).Error; err != nil {
		return nil, err
	}
	if err := s.attachThings(ctx, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *GraphStore) DeleteStatements(ctx context.Context, statementIDs ...types.StatementID) error {
	if len(statementIDs) == 0 {
		return nil
	}
	if err := s.conn(ctx).Where("id IN ?", statementIDs).Delete(&types.Statement{}).Error; err != nil {
		return fmt.Errorf("delete statements: %w", err)
	}
	return nil
}

// StatementsAfter pages through every statement by id, with Subject and
// Object loaded. An empty after starts from the beginning.
func (s *GraphStore) StatementsAfter(ctx context.Context, after types.StatementID, limit int) ([]types.Statement, error) {
	if limit <= 0 {
		limit = 500
	}
	q := s.conn(ctx).Model(&types.Statement{})
	if after != "" {
		q = q.Where("id > ?", after)
	}
	var rows []types.Statement
	if err := q.Order("id ASC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	if err := s.attachThings(ctx, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// attachThings loads subjects and objects with one query per thing kind.
func (s *GraphStore) attachThings(ctx context.Context, rows []types.Statement) error {
	if len(rows) == 0 {
		return nil
	}
	want := make([]types.ThingID, 0, 2*len(rows))
	seen := make(map[types.ThingID]bool, 2*len(rows))
	for _, st := range rows {
		for _, id := range []types.ThingID{st.SubjectID, st.ObjectID} {
			if !seen[id] {
				seen[id] = true
				want = append(want, id)
			}
		}
	}
	things, err := s.findThings(ctx, want)
	if err != nil {
		return err
	}
	for i := range rows {
		rows[i].Subject = things[rows[i].SubjectID]
		rows[i].Object = things[rows[i].ObjectID]
	}
	return nil
}
