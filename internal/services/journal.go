package services

import (
	"context"

	"github.com/yungbote/kgcontent-backend/internal/contenttypes/ports"
	"github.com/yungbote/kgcontent-backend/internal/domain/graph"
	"github.com/yungbote/kgcontent-backend/internal/pkg/ctxutil"
)

// journalRepositories records every successful create into the write
// journal carried by the request context, if any.
func journalRepositories(r ports.Repositories) ports.Repositories {
	r.Resources = journaledResources{r.Resources}
	r.Literals = journaledLiterals{r.Literals}
	r.Statements = journaledStatements{r.Statements}
	return r
}

type journaledResources struct{ ports.ResourceStore }

func (j journaledResources) CreateResource(ctx context.Context, cmd ports.CreateResourceCommand) (graph.ThingID, error) {
	id, err := j.ResourceStore.CreateResource(ctx, cmd)
	if err == nil {
		ctxutil.GetWriteJournal(ctx).Record(ctxutil.WriteResource, string(id))
	}
	return id, err
}

type journaledLiterals struct{ ports.LiteralStore }

func (j journaledLiterals) CreateLiteral(ctx context.Context, cmd ports.CreateLiteralCommand) (graph.ThingID, error) {
	id, err := j.LiteralStore.CreateLiteral(ctx, cmd)
	if err == nil {
		ctxutil.GetWriteJournal(ctx).Record(ctxutil.WriteLiteral, string(id))
	}
	return id, err
}

type journaledStatements struct{ ports.StatementStore }

func (j journaledStatements) CreateStatement(ctx context.Context, cmd ports.CreateStatementCommand) (graph.StatementID, error) {
	id, err := j.StatementStore.CreateStatement(ctx, cmd)
	if err == nil {
		ctxutil.GetWriteJournal(ctx).Record(ctxutil.WriteStatement, string(id))
	}
	return id, err
}
