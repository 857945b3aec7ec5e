// Package graph stores the knowledge graph in a relational database through
// GORM. It implements every content port; see ports.Repositories.
package graph

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/yungbote/kgcontent-backend/internal/contenttypes/ports"
	"github.com/yungbote/kgcontent-backend/internal/data/ids"
	"github.com/yungbote/kgcontent-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/kgcontent-backend/internal/pkg/errors"
	"github.com/yungbote/kgcontent-backend/internal/platform/logger"
)

const pgUniqueViolation = "23505"

type GraphStore struct {
	db  *gorm.DB
	log *logger.Logger
	ids ids.Generator

	clockMu sync.Mutex
	last    time.Time
}

// NewGraphStore builds a store over db. A nil generator issues random ids;
// ids already stored are skipped whatever the generator.
func NewGraphStore(db *gorm.DB, baseLog *logger.Logger, gen ids.Generator) *GraphStore {
	repoLog := baseLog.With("repo", "GraphStore")
	if gen == nil {
		gen = ids.NewRandom()
	}
	s := &GraphStore{db: db, log: repoLog}
	s.ids = ids.NewUnique(gen, s.taken)
	return s
}

// Repositories exposes the store through every port.
func (s *GraphStore) Repositories() ports.Repositories {
	return ports.Repositories{
		Resources:     s,
		Literals:      s,
		Statements:    s,
		Predicates:    s,
		Classes:       s,
		Things:        s,
		Observatories: s,
		Organizations: s,
	}
}

// conn joins the transaction carried on ctx, if any.
func (s *GraphStore) conn(ctx context.Context) *gorm.DB {
	return dbctx.FromContext(ctx).DB(s.db)
}

// inTx runs fn in a transaction, or inside the one already on ctx.
func (s *GraphStore) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if dbctx.FromContext(ctx).Tx != nil {
		return fn(ctx)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.WithTx(ctx, tx))
	})
}

// now is strictly increasing at microsecond resolution so creation order
// survives the round trip through a timestamp column.
func (s *GraphStore) now() time.Time {
	s.clockMu.Lock()
	defer s.clockMu.Unlock()
	t := time.Now().UTC().Truncate(time.Microsecond)
	if !t.After(s.last) {
		t = s.last.Add(time.Microsecond)
	}
	s.last = t
	return t
}

// translateError maps unique violations to ErrConflict.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("%w: %s", pkgerrors.ErrConflict, pgErr.ConstraintName)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", pkgerrors.ErrConflict, err)
	}
	return err
}
