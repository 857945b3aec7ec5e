package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	types "github.com/yungbote/kgcontent-backend/internal/domain/graph"
	"github.com/yungbote/kgcontent-backend/internal/platform/logger"
	"github.com/yungbote/kgcontent-backend/internal/platform/neo4jdb"
)

// nodeLabels maps a thing kind to the extra Neo4j label its node carries
// next to :Thing.
var nodeLabels = map[types.ThingKind]string{
	types.KindResource:  "Resource",
	types.KindLiteral:   "Literal",
	types.KindPredicate: "Predicate",
	types.KindClass:     "Class",
}

func enabled(client *neo4jdb.Client) bool {
	return client != nil && client.Driver != nil
}

func ensureSchema(ctx context.Context, session neo4j.SessionWithContext, log *logger.Logger) {
	// Best-effort; restricted users may not create schema.
	for _, q := range []string{
		`CREATE CONSTRAINT thing_id_unique IF NOT EXISTS FOR (t:Thing) REQUIRE t.id IS UNIQUE`,
		`CREATE INDEX statement_predicate_idx IF NOT EXISTS FOR ()-[e:STATEMENT]-() ON (e.predicate_id)`,
	} {
		res, err := session.Run(ctx, q, nil)
		if err != nil {
			if log != nil {
				log.Warn("neo4j schema init failed (continuing)", "error", err)
			}
			continue
		}
		_, _ = res.Consume(ctx)
	}
}

func nodeRecords(things []types.Thing, syncedAt string) map[types.ThingKind][]map[string]any {
	out := make(map[types.ThingKind][]map[string]any, len(nodeLabels))
	for _, th := range things {
		if th == nil || th.ThingID() == "" {
			continue
		}
		rec := map[string]any{
			"id":        string(th.ThingID()),
			"label":     th.ThingLabel(),
			"kind":      string(th.Kind()),
			"synced_at": syncedAt,
		}
		switch v := th.(type) {
		case types.Resource:
			classes := make([]string, 0, len(v.Classes))
			for _, c := range v.Classes {
				classes = append(classes, string(c))
			}
			rec["classes"] = classes
			rec["visibility"] = string(v.Visibility)
			rec["extraction_method"] = string(v.ExtractionMethod)
		case types.Literal:
			rec["datatype"] = v.Datatype
		}
		out[th.Kind()] = append(out[th.Kind()], rec)
	}
	return out
}

func edgeRecords(statements []types.Statement, syncedAt string) []map[string]any {
	rels := make([]map[string]any, 0, len(statements))
	for _, st := range statements {
		if st.ID == "" || st.SubjectID == "" || st.ObjectID == "" {
			continue
		}
		var idx any
		if st.Index != nil {
			idx = int64(*st.Index)
		}
		rels = append(rels, map[string]any{
			"id":           string(st.ID),
			"subject_id":   string(st.SubjectID),
			"predicate_id": string(st.PredicateID),
			"object_id":    string(st.ObjectID),
			"idx":          idx,
			"synced_at":    syncedAt,
		})
	}
	return rels
}

// UpsertThings merges one node per thing keyed by id.
func UpsertThings(ctx context.Context, client *neo4jdb.Client, log *logger.Logger, things []types.Thing) error {
	if !enabled(client) || len(things) == 0 {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	byKind := nodeRecords(things, time.Now().UTC().Format(time.RFC3339Nano))

	session := client.WriteSession(ctx)
	defer session.Close(ctx)
	ensureSchema(ctx, session, log)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for kind, nodes := range byKind {
			label, ok := nodeLabels[kind]
			if !ok || len(nodes) == 0 {
				continue
			}
			res, err := tx.Run(ctx, fmt.Sprintf(`
UNWIND $nodes AS n
MERGE (t:Thing {id: n.id})
SET t += n, t:%s
`, label), map[string]any{"nodes": nodes})
			if err != nil {
				return nil, err
			}
			if _, err := res.Consume(ctx); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	return err
}

// UpsertStatements merges one STATEMENT relationship per statement. Missing
// endpoint nodes are created with their id only; loaded Subject and Object
// things are merged in full first.
func UpsertStatements(ctx context.Context, client *neo4jdb.Client, log *logger.Logger, statements []types.Statement) error {
	if !enabled(client) || len(statements) == 0 {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	endpoints := make([]types.Thing, 0, 2*len(statements))
	for _, st := range statements {
		if st.Subject != nil {
			endpoints = append(endpoints, st.Subject)
		}
		if st.Object != nil {
			endpoints = append(endpoints, st.Object)
		}
	}
	if err := UpsertThings(ctx, client, log, endpoints); err != nil {
		return err
	}

	rels := edgeRecords(statements, time.Now().UTC().Format(time.RFC3339Nano))
	if len(rels) == 0 {
		return nil
	}
	session := client.WriteSession(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
UNWIND $rels AS r
MERGE (a:Thing {id: r.subject_id})
MERGE (b:Thing {id: r.object_id})
MERGE (a)-[e:STATEMENT {id: r.id}]->(b)
SET e.predicate_id = r.predicate_id,
    e.idx = r.idx,
    e.synced_at = r.synced_at
`, map[string]any{"rels": rels})
		if err != nil {
			return nil, err
		}
		_, err = res.Consume(ctx)
		return nil, err
	})
	return err
}

// DeleteThings removes nodes together with their relationships.
func DeleteThings(ctx context.Context, client *neo4jdb.Client, thingIDs []types.ThingID) error {
	if !enabled(client) || len(thingIDs) == 0 {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	keys := make([]string, 0, len(thingIDs))
	for _, id := range thingIDs {
		keys = append(keys, string(id))
	}
	session := client.WriteSession(ctx)
	defer session.Close(ctx)
	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
UNWIND $ids AS id
MATCH (t:Thing {id: id})
DETACH DELETE t
`, map[string]any{"ids": keys})
		if err != nil {
			return nil, err
		}
		_, err = res.Consume(ctx)
		return nil, err
	})
	return err
}

func DeleteStatements(ctx context.Context, client *neo4jdb.Client, statementIDs []types.StatementID) error {
	if !enabled(client) || len(statementIDs) == 0 {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	keys := make([]string, 0, len(statementIDs))
	for _, id := range statementIDs {
		keys = append(keys, string(id))
	}
	session := client.WriteSession(ctx)
	defer session.Close(ctx)
	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
UNWIND $ids AS id
MATCH ()-[e:STATEMENT {id: id}]->()
DELETE e
`, map[string]any{"ids": keys})
		if err != nil {
			return nil, err
		}
		_, err = res.Consume(ctx)
		return nil, err
	})
	return err
}
