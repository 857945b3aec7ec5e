package graph

import (
	"context"
	"fmt"

	types "github.com/yungbote/kgcontent-backend/internal/domain/graph"
	"github.com/yungbote/kgcontent-backend/internal/platform/logger"
	"github.com/yungbote/kgcontent-backend/internal/platform/neo4jdb"
)

// StatementPager pages through persisted statements by id with Subject
// and Object loaded.
type StatementPager interface {
	StatementsAfter(ctx context.Context, after types.StatementID, limit int) ([]types.Statement, error)
}

type BackfillOptions struct {
	BatchSize int
	// Limit caps the number of statements replayed; 0 means all.
	Limit  int
	DryRun bool
}

type BackfillResult struct {
	Statements int
	Batches    int
	LastID     types.StatementID
}

// Backfill replays every persisted statement and its endpoints into Neo4j.
// It is idempotent: nodes and relationships are merged by id.
func Backfill(ctx context.Context, src StatementPager, client *neo4jdb.Client, log *logger.Logger, opts BackfillOptions) (BackfillResult, error) {
	var out BackfillResult
	if src == nil {
		return out, fmt.Errorf("backfill: statement source required")
	}
	if !opts.DryRun && !enabled(client) {
		return out, fmt.Errorf("backfill: neo4j client not configured")
	}
	batch := opts.BatchSize
	if batch <= 0 {
		batch = 500
	}

	for {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		size := batch
		if opts.Limit > 0 {
			remaining := opts.Limit - out.Statements
			if remaining <= 0 {
				break
			}
			if remaining < size {
				size = remaining
			}
		}
		page, err := src.StatementsAfter(ctx, out.LastID, size)
		if err != nil {
			return out, fmt.Errorf("backfill: read after %q: %w", out.LastID, err)
		}
		if len(page) == 0 {
			break
		}
		if !opts.DryRun {
			if err := UpsertStatements(ctx, client, log, page); err != nil {
				return out, fmt.Errorf("backfill: project batch after %q: %w", out.LastID, err)
			}
		}
		out.Statements += len(page)
		out.Batches++
		out.LastID = page[len(page)-1].ID
		if log != nil {
			log.Debug("backfill batch projected", "batch", out.Batches, "statements", out.Statements, "last_id", out.LastID, "dry_run", opts.DryRun)
		}
		if len(page) < size {
			break
		}
	}
	return out, nil
}
