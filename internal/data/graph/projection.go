package graph

import (
	"context"

	"github.com/yungbote/kgcontent-backend/internal/contenttypes/ports"
	types "github.com/yungbote/kgcontent-backend/internal/domain/graph"
	"github.com/yungbote/kgcontent-backend/internal/platform/logger"
	"github.com/yungbote/kgcontent-backend/internal/platform/neo4jdb"
)

// Project mirrors successful writes of repos into Neo4j. The relational
// store stays the source of truth: projection failures are logged and the
// write is still reported as successful. A nil or disabled client returns
// repos unchanged.
func Project(repos ports.Repositories, client *neo4jdb.Client, baseLog *logger.Logger) ports.Repositories {
	if !enabled(client) {
		return repos
	}
	p := &projector{client: client, log: baseLog.With("component", "Neo4jProjection"), things: repos.Things}
	repos.Resources = &projectedResources{ResourceStore: repos.Resources, p: p}
	repos.Literals = &projectedLiterals{LiteralStore: repos.Literals, p: p}
	repos.Statements = &projectedStatements{StatementStore: repos.Statements, p: p}
	return repos
}

type projector struct {
	client *neo4jdb.Client
	log    *logger.Logger
	things ports.ThingStore
}

func (p *projector) upsert(ctx context.Context, things ...types.Thing) {
	if err := UpsertThings(ctx, p.client, p.log, things); err != nil {
		p.log.Warn("neo4j node projection failed", "error", err, "count", len(things))
	}
}

func (p *projector) deleteThing(ctx context.Context, id types.ThingID) {
	if err := DeleteThings(ctx, p.client, []types.ThingID{id}); err != nil {
		p.log.Warn("neo4j node removal failed", "error", err, "thing_id", id)
	}
}

type projectedResources struct {
	ports.ResourceStore
	p *projector
}

func (r *projectedResources) CreateResource(ctx context.Context, cmd ports.CreateResourceCommand) (types.ThingID, error) {
	id, err := r.ResourceStore.CreateResource(ctx, cmd)
	if err != nil {
		return id, err
	}
	r.reproject(ctx, id)
	return id, nil
}

func (r *projectedResources) UpdateResource(ctx context.Context, id types.ThingID, update ports.ResourceUpdate) error {
	if err := r.ResourceStore.UpdateResource(ctx, id, update); err != nil {
		return err
	}
	r.reproject(ctx, id)
	return nil
}

func (r *projectedResources) DeleteResource(ctx context.Context, id types.ThingID) error {
	if err := r.ResourceStore.DeleteResource(ctx, id); err != nil {
		return err
	}
	r.p.deleteThing(ctx, id)
	return nil
}

func (r *projectedResources) reproject(ctx context.Context, id types.ThingID) {
	res, err := r.ResourceStore.FindResource(ctx, id)
	if err != nil || res == nil {
		r.p.log.Warn("neo4j projection skipped: resource unreadable", "thing_id", id, "error", err)
		return
	}
	r.p.upsert(ctx, *res)
}

type projectedLiterals struct {
	ports.LiteralStore
	p *projector
}

func (l *projectedLiterals) CreateLiteral(ctx context.Context, cmd ports.CreateLiteralCommand) (types.ThingID, error) {
	id, err := l.LiteralStore.CreateLiteral(ctx, cmd)
	if err != nil {
		return id, err
	}
	lit, err := l.LiteralStore.FindLiteral(ctx, id)
	if err != nil || lit == nil {
		l.p.log.Warn("neo4j projection skipped: literal unreadable", "thing_id", id, "error", err)
		return id, nil
	}
	l.p.upsert(ctx, *lit)
	return id, nil
}

func (l *projectedLiterals) DeleteLiteral(ctx context.Context, id types.ThingID) error {
	if err := l.LiteralStore.DeleteLiteral(ctx, id); err != nil {
		return err
	}
	l.p.deleteThing(ctx, id)
	return nil
}

type projectedStatements struct {
	ports.StatementStore
	p *projector
}

func (s *projectedStatements) CreateStatement(ctx context.Context, cmd ports.CreateStatementCommand) (types.StatementID, error) {
	id, err := s.StatementStore.CreateStatement(ctx, cmd)
	if err != nil {
		return id, err
	}
	st := types.Statement{
		ID:          id,
		SubjectID:   cmd.SubjectID,
		PredicateID: cmd.PredicateID,
		ObjectID:    cmd.ObjectID,
		Index:       cmd.Index,
	}
	// Predicates and classes are never written through the ports, so their
	// nodes only appear as statement endpoints.
	if s.p.things != nil {
		if obj, err := s.p.things.FindThing(ctx, cmd.ObjectID); err == nil && obj != nil {
			if k := obj.Kind(); k == types.KindPredicate || k == types.KindClass {
				st.Object = obj
			}
		}
	}
	if err := UpsertStatements(ctx, s.p.client, s.p.log, []types.Statement{st}); err != nil {
		s.p.log.Warn("neo4j edge projection failed", "error", err, "statement_id", id)
	}
	return id, nil
}

func (s *projectedStatements) DeleteStatements(ctx context.Context, statementIDs ...types.StatementID) error {
	if err := s.StatementStore.DeleteStatements(ctx, statementIDs...); err != nil {
		return err
	}
	if err := DeleteStatements(ctx, s.p.client, statementIDs); err != nil {
		s.p.log.Warn("neo4j edge removal failed", "error", err, "count", len(statementIDs))
	}
	return nil
}
