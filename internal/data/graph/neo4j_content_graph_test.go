package graph

import (
	"context"
	"os"
	"reflect"
	"testing"

	"github.com/yungbote/kgcontent-backend/internal/contenttypes/ports"
	"github.com/yungbote/kgcontent-backend/internal/data/memory"
	types "github.com/yungbote/kgcontent-backend/internal/domain/graph"
	"github.com/yungbote/kgcontent-backend/internal/pkg/pointers"
	"github.com/yungbote/kgcontent-backend/internal/platform/logger"
	"github.com/yungbote/kgcontent-backend/internal/platform/neo4jdb"
)

func TestNodeRecordsGroupByKind(t *testing.T) {
	things := []types.Thing{
		types.Resource{ID: "R1", Label: "paper", Classes: []types.ThingID{types.ClassPaper}, Visibility: types.VisibilityDefault},
		types.Literal{ID: "L1", Label: "2024", Datatype: types.DatatypeInteger},
		types.Predicate{ID: types.PredicateYear, Label: "year"},
		nil,
	}
	got := nodeRecords(things, "now")
	if len(got[types.KindResource]) != 1 || len(got[types.KindLiteral]) != 1 || len(got[types.KindPredicate]) != 1 {
		t.Fatalf("unexpected grouping %v", got)
	}
	if classes := got[types.KindResource][0]["classes"]; !reflect.DeepEqual(classes, []string{string(types.ClassPaper)}) {
		t.Fatalf("classes %v", classes)
	}
	if dt := got[types.KindLiteral][0]["datatype"]; dt != types.DatatypeInteger {
		t.Fatalf("datatype %v", dt)
	}
}

func TestEdgeRecordsKeepIndex(t *testing.T) {
	rels := edgeRecords([]types.Statement{
		{ID: "S1", SubjectID: "R1", PredicateID: types.PredicateHasListElement, ObjectID: "R2", Index: pointers.Ptr(3)},
		{ID: "S2", SubjectID: "R1", PredicateID: types.PredicateDescription, ObjectID: "L1"},
		{ID: "", SubjectID: "R1", ObjectID: "L2"},
	}, "now")
	if len(rels) != 2 {
		t.Fatalf("got %d records, want 2", len(rels))
	}
	if rels[0]["idx"] != int64(3) || rels[1]["idx"] != nil {
		t.Fatalf("indexes %v %v", rels[0]["idx"], rels[1]["idx"])
	}
}

func TestProjectWithoutClientIsPassThrough(t *testing.T) {
	s := memory.New(nil)
	repos := s.Repositories()
	if got := Project(repos, nil, logger.Nop()); got != repos {
		t.Fatalf("disabled projection wrapped the repositories")
	}
}

func TestBackfillDryRunPages(t *testing.T) {
	ctx := context.Background()
	s := memory.New(nil)
	s.SeedVocabulary()
	subject, _ := s.CreateResource(ctx, ports.CreateResourceCommand{Label: "subject"})
	for i := 0; i < 5; i++ {
		lit, _ := s.CreateLiteral(ctx, ports.CreateLiteralCommand{Label: "v"})
		if _, err := s.CreateStatement(ctx, ports.CreateStatementCommand{SubjectID: subject, PredicateID: types.PredicateDescription, ObjectID: lit}); err != nil {
			t.Fatalf("CreateStatement: %v", err)
		}
	}

	res, err := Backfill(ctx, s, nil, logger.Nop(), BackfillOptions{BatchSize: 2, DryRun: true})
	if err != nil {
		t.Fatalf("Backfill: %v", err)
	}
	if res.Statements != 5 || res.Batches != 3 {
		t.Fatalf("unexpected result %+v", res)
	}

	res, err = Backfill(ctx, s, nil, logger.Nop(), BackfillOptions{BatchSize: 2, Limit: 3, DryRun: true})
	if err != nil || res.Statements != 3 {
		t.Fatalf("limited backfill: %+v %v", res, err)
	}

	if _, err := Backfill(ctx, s, nil, logger.Nop(), BackfillOptions{}); err == nil {
		t.Fatalf("expected error without a neo4j client")
	}
}

func TestProjectionAgainstNeo4j(t *testing.T) {
	uri := os.Getenv("TEST_NEO4J_URI")
	if uri == "" {
		t.Skip("set TEST_NEO4J_URI to run neo4j integration tests")
	}
	ctx := context.Background()
	cfg := neo4jdb.ConfigFromEnv()
	cfg.URI = uri
	client, err := neo4jdb.New(ctx, logger.Nop(), cfg)
	if err != nil {
		t.Fatalf("neo4jdb.New: %v", err)
	}
	defer client.Close(ctx)

	s := memory.New(nil)
	s.SeedVocabulary()
	repos := Project(s.Repositories(), client, logger.Nop())
	subject, err := repos.Resources.CreateResource(ctx, ports.CreateResourceCommand{Label: "projected", Classes: []types.ThingID{types.ClassPaper}})
	if err != nil {
		t.Fatalf("CreateResource: %v", err)
	}
	lit, _ := repos.Literals.CreateLiteral(ctx, ports.CreateLiteralCommand{Label: "hello"})
	stID, err := repos.Statements.CreateStatement(ctx, ports.CreateStatementCommand{SubjectID: subject, PredicateID: types.PredicateDescription, ObjectID: lit})
	if err != nil {
		t.Fatalf("CreateStatement: %v", err)
	}

	session := client.WriteSession(ctx)
	defer session.Close(ctx)
	res, err := session.Run(ctx, `MATCH (:Thing {id: $s})-[e:STATEMENT {id: $id}]->(:Thing {id: $o}) RETURN count(e) AS n`,
		map[string]any{"s": string(subject), "id": string(stID), "o": string(lit)})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	rec, err := res.Single(ctx)
	if err != nil {
		t.Fatalf("single: %v", err)
	}
	if n, _ := rec.Get("n"); n != int64(1) {
		t.Fatalf("projected edges %v", n)
	}

	if err := repos.Statements.DeleteStatements(ctx, stID); err != nil {
		t.Fatalf("DeleteStatements: %v", err)
	}
	_ = repos.Literals.DeleteLiteral(ctx, lit)
	_ = repos.Resources.DeleteResource(ctx, subject)
}
