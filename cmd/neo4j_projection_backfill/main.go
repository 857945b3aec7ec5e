package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/yungbote/kgcontent-backend/internal/app"
	"github.com/yungbote/kgcontent-backend/internal/data/graph"
)

func main() {
	var (
		dryRun    bool
		limit     int
		batchSize int
	)
	flag.BoolVar(&dryRun, "dry-run", false, "count statements without writing to neo4j")
	flag.IntVar(&limit, "limit", 0, "limit number of statements replayed")
	flag.IntVar(&batchSize, "batch", 500, "statements per neo4j transaction")
	flag.Parse()

	ctx := context.Background()
	application, err := app.New(ctx)
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close(ctx)

	if application.Repos.Graph == nil {
		fmt.Println("backfill needs a relational graph store; set GRAPH_STORE_DRIVER=postgres or sqlite")
		os.Exit(1)
	}

	res, err := graph.Backfill(ctx, application.Repos.Graph, application.Clients.Neo4j, application.Log, graph.BackfillOptions{
		BatchSize: batchSize,
		Limit:     limit,
		DryRun:    dryRun,
	})
	if err != nil {
		fmt.Printf("backfill: %v\n", err)
		application.Close(ctx)
		os.Exit(1)
	}
	fmt.Printf("statements=%d batches=%d last_id=%s dry_run=%v\n", res.Statements, res.Batches, res.LastID, dryRun)
}
