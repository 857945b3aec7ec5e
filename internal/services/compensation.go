package services

import (
	"context"
	"fmt"

	"github.com/yungbote/kgcontent-backend/internal/contenttypes/ports"
	"github.com/yungbote/kgcontent-backend/internal/domain/graph"
	"github.com/yungbote/kgcontent-backend/internal/pkg/ctxutil"
	"github.com/yungbote/kgcontent-backend/internal/platform/logger"
)

const (
	CompensationStatusCompensated = "compensated"
	CompensationStatusPartial     = "partial"
)

// Compensator undoes the creates recorded in a write journal. Statements
// go first so no statement is left pointing at a removed thing; literals
// and resources follow, newest first. Statements deleted by an update are
// not restored.
type Compensator struct {
	repos ports.Repositories
	log   *logger.Logger
}

func NewCompensator(repos ports.Repositories, baseLog *logger.Logger) *Compensator {
	return &Compensator{repos: repos, log: baseLog.With("service", "Compensator")}
}

// Compensate returns the resulting status and the first undo error. It
// keeps going after a failed undo.
func (c *Compensator) Compensate(ctx context.Context, operation string, journal *ctxutil.WriteJournal) (string, error) {
	writes := journal.Entries()
	if len(writes) == 0 {
		return CompensationStatusCompensated, nil
	}
	ctx = context.WithoutCancel(ctx)

	var firstErr error
	failed := 0
	note := func(w ctxutil.Write, err error) {
		if err == nil {
			return
		}
		failed++
		if firstErr == nil {
			firstErr = fmt.Errorf("undo %s %s: %w", w.Kind, w.ID, err)
		}
		c.log.Warn("compensating write failed",
			"operation", operation,
			"kind", w.Kind,
			"id", w.ID,
			"error", err,
		)
	}

	for i := len(writes) - 1; i >= 0; i-- {
		w := writes[i]
		if w.Kind == ctxutil.WriteStatement {
			note(w, c.repos.Statements.DeleteStatements(ctx, graph.StatementID(w.ID)))
		}
	}
	for i := len(writes) - 1; i >= 0; i-- {
		w := writes[i]
		switch w.Kind {
		case ctxutil.WriteLiteral:
			note(w, c.repos.Literals.DeleteLiteral(ctx, graph.ThingID(w.ID)))
		case ctxutil.WriteResource:
			note(w, c.repos.Resources.DeleteResource(ctx, graph.ThingID(w.ID)))
		}
	}

	status := CompensationStatusCompensated
	if failed > 0 {
		status = CompensationStatusPartial
	}
	c.log.Info("pipeline writes compensated",
		"operation", operation,
		"writes", len(writes),
		"failed", failed,
		"status", status,
	)
	return status, firstErr
}
