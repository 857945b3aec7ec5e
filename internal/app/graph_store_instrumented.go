package app

import (
	"context"

	"github.com/yungbote/kgcontent-backend/internal/contenttypes/ports"
	"github.com/yungbote/kgcontent-backend/internal/domain/graph"
	"github.com/yungbote/kgcontent-backend/internal/observability"
)

// instrumentGraphStore counts successful writes per kind. Reads pass
// through untouched.
func instrumentGraphStore(inner ports.Repositories, metrics *observability.Metrics) ports.Repositories {
	if metrics == nil {
		return inner
	}
	inner.Resources = &instrumentedResources{ResourceStore: inner.Resources, metrics: metrics}
	inner.Literals = &instrumentedLiterals{LiteralStore: inner.Literals, metrics: metrics}
	inner.Statements = &instrumentedStatements{StatementStore: inner.Statements, metrics: metrics}
	return inner
}

type instrumentedResources struct {
	ports.ResourceStore
	metrics *observability.Metrics
}

func (s *instrumentedResources) CreateResource(ctx context.Context, cmd ports.CreateResourceCommand) (graph.ThingID, error) {
	id, err := s.ResourceStore.CreateResource(ctx, cmd)
	s.observe("resource_create", err)
	return id, err
}

func (s *instrumentedResources) UpdateResource(ctx context.Context, id graph.ThingID, update ports.ResourceUpdate) error {
	err := s.ResourceStore.UpdateResource(ctx, id, update)
	s.observe("resource_update", err)
	return err
}

func (s *instrumentedResources) DeleteResource(ctx context.Context, id graph.ThingID) error {
	err := s.ResourceStore.DeleteResource(ctx, id)
	s.observe("resource_delete", err)
	return err
}

func (s *instrumentedResources) observe(kind string, err error) {
	if err == nil {
		s.metrics.IncGraphWrite(kind)
	}
}

type instrumentedLiterals struct {
	ports.LiteralStore
	metrics *observability.Metrics
}

func (s *instrumentedLiterals) CreateLiteral(ctx context.Context, cmd ports.CreateLiteralCommand) (graph.ThingID, error) {
	id, err := s.LiteralStore.CreateLiteral(ctx, cmd)
	if err == nil {
		s.metrics.IncGraphWrite("literal_create")
	}
	return id, err
}

func (s *instrumentedLiterals) DeleteLiteral(ctx context.Context, id graph.ThingID) error {
	err := s.LiteralStore.DeleteLiteral(ctx, id)
	if err == nil {
		s.metrics.IncGraphWrite("literal_delete")
	}
	return err
}

type instrumentedStatements struct {
	ports.StatementStore
	metrics *observability.Metrics
}

func (s *instrumentedStatements) CreateStatement(ctx context.Context, cmd ports.CreateStatementCommand) (graph.StatementID, error) {
	id, err := s.StatementStore.CreateStatement(ctx, cmd)
	if err == nil {
		s.metrics.IncGraphWrite("statement_create")
	}
	return id, err
}

func (s *instrumentedStatements) DeleteStatements(ctx context.Context, statementIDs ...graph.StatementID) error {
	err := s.StatementStore.DeleteStatements(ctx, statementIDs...)
	if err == nil {
		s.metrics.IncGraphWrite("statement_delete")
	}
	return err
}
