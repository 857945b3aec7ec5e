package app

import (
	"context"
	"fmt"

	"github.com/yungbote/kgcontent-backend/internal/contenttypes/ports"
	"github.com/yungbote/kgcontent-backend/internal/data/db"
	"github.com/yungbote/kgcontent-backend/internal/data/graph"
	"github.com/yungbote/kgcontent-backend/internal/data/ids"
	"github.com/yungbote/kgcontent-backend/internal/data/memory"
	reposgraph "github.com/yungbote/kgcontent-backend/internal/data/repos/graph"
	"github.com/yungbote/kgcontent-backend/internal/observability"
	"github.com/yungbote/kgcontent-backend/internal/platform/logger"
)

type Repos struct {
	// Ports is what the content services write through: the store,
	// projected into Neo4j and instrumented.
	Ports ports.Repositories
	// Exactly one of Graph and Memory is set.
	Graph  *reposgraph.GraphStore
	Memory *memory.Store
}

func wireIDs(cfg Config, clients Clients) (ids.Generator, error) {
	switch cfg.IDStrategy {
	case IDStrategyCounter:
		return ids.NewCounter(), nil
	case IDStrategyRedis:
		if clients.Redis == nil {
			return nil, fmt.Errorf("id strategy redis: redis client not configured")
		}
		return ids.NewRedis(clients.Redis, cfg.RedisIDKeyPrefix)
	default:
		return ids.NewRandom(), nil
	}
}

func wireRepos(ctx context.Context, log *logger.Logger, cfg Config, database *db.Service, clients Clients, metrics *observability.Metrics) (Repos, error) {
	log.Info("Wiring repos...", "driver", cfg.GraphStore.Driver, "id_strategy", cfg.IDStrategy)

	gen, err := wireIDs(cfg, clients)
	if err != nil {
		return Repos{}, err
	}

	var out Repos
	var base ports.Repositories
	if database == nil {
		out.Memory = memory.New(gen)
		out.Memory.SeedVocabulary()
		base = out.Memory.Repositories()
	} else {
		out.Graph = reposgraph.NewGraphStore(database.DB(), log, gen)
		if err := out.Graph.SeedVocabulary(ctx); err != nil {
			return Repos{}, err
		}
		base = out.Graph.Repositories()
	}

	projected := graph.Project(base, clients.Neo4j, log)
	out.Ports = instrumentGraphStore(projected, metrics)
	return out, nil
}
