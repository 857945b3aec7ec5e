package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/kgcontent-backend/internal/platform/logger"
	"github.com/yungbote/kgcontent-backend/internal/platform/neo4jdb"
	"github.com/yungbote/kgcontent-backend/internal/platform/redisdb"
)

// Clients holds the optional external connections. Either may be nil when
// not configured.
type Clients struct {
	Neo4j *neo4jdb.Client
	Redis *goredis.Client
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	var out Clients
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := neo4jdb.New(gctx, log, cfg.Neo4j)
		if err != nil {
			return fmt.Errorf("init neo4j: %w", err)
		}
		out.Neo4j = c
		return nil
	})
	g.Go(func() error {
		c, err := redisdb.New(gctx, log, cfg.Redis)
		if err != nil {
			return fmt.Errorf("init redis: %w", err)
		}
		out.Redis = c
		return nil
	})
	if err := g.Wait(); err != nil {
		out.Close(context.Background())
		return Clients{}, err
	}
	return out, nil
}

func (c Clients) Close(ctx context.Context) {
	if c.Neo4j != nil {
		_ = c.Neo4j.Close(ctx)
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
