package memory

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/kgcontent-backend/internal/contenttypes/ports"
	"github.com/yungbote/kgcontent-backend/internal/domain/graph"
	"github.com/yungbote/kgcontent-backend/internal/pkg/pointers"
)

func TestStoreCreateAndFind(t *testing.T) {
	ctx := context.Background()
	s := New(nil)
	s.SeedVocabulary()

	rid, err := s.CreateResource(ctx, ports.CreateResourceCommand{Label: "Paper A", Classes: []graph.ThingID{graph.ClassPaper}})
	if err != nil {
		t.Fatalf("CreateResource: %v", err)
	}
	if rid != "R1" {
		t.Fatalf("expected counter id R1, got %q", rid)
	}
	lid, err := s.CreateLiteral(ctx, ports.CreateLiteralCommand{Label: "2024", Datatype: graph.DatatypeInteger})
	if err != nil {
		t.Fatalf("CreateLiteral: %v", err)
	}
	if _, err := s.CreateStatement(ctx, ports.CreateStatementCommand{SubjectID: rid, PredicateID: graph.PredicateYear, ObjectID: lid}); err != nil {
		t.Fatalf("CreateStatement: %v", err)
	}

	res, err := s.FindResources(ctx, ports.ResourceFilter{Label: "paper a", Class: graph.ClassPaper})
	if err != nil || len(res) != 1 || res[0].ID != rid {
		t.Fatalf("FindResources: got %+v err=%v", res, err)
	}
	sts, err := s.FindStatements(ctx, ports.StatementFilter{PredicateID: graph.PredicateYear, ObjectLabel: pointers.Ptr("2024")})
	if err != nil || len(sts) != 1 {
		t.Fatalf("FindStatements: got %d err=%v", len(sts), err)
	}
	if sts[0].Subject == nil || sts[0].Subject.ThingID() != rid || sts[0].ObjectLabel() != "2024" {
		t.Fatalf("statement not loaded: %+v", sts[0])
	}
	if got := s.Stats().Writes(); got != 3 {
		t.Fatalf("expected 3 writes, got %d", got)
	}
}

func TestStoreRejectsDanglingStatement(t *testing.T) {
	ctx := context.Background()
	s := New(nil)
	s.SeedVocabulary()
	if _, err := s.CreateStatement(ctx, ports.CreateStatementCommand{SubjectID: "R404", PredicateID: graph.PredicateYear, ObjectID: "L1"}); err == nil {
		t.Fatalf("expected error for missing subject")
	}
	if s.Stats().StatementsCreated != 0 {
		t.Fatalf("dangling statement was counted")
	}
}

func TestStatementsOrderedByIndex(t *testing.T) {
	ctx := context.Background()
	s := New(nil)
	s.SeedVocabulary()
	list, _ := s.CreateResource(ctx, ports.CreateResourceCommand{Label: "authors", Classes: []graph.ThingID{graph.ClassList}})
	for _, idx := range []int{2, 0, 1} {
		lit, _ := s.CreateLiteral(ctx, ports.CreateLiteralCommand{Label: string(rune('a' + idx))})
		if _, err := s.CreateStatement(ctx, ports.CreateStatementCommand{SubjectID: list, PredicateID: graph.PredicateHasListElement, ObjectID: lit, Index: pointers.Ptr(idx)}); err != nil {
			t.Fatalf("CreateStatement: %v", err)
		}
	}
	sts, _ := s.FindStatements(ctx, ports.StatementFilter{SubjectID: list})
	for i, st := range sts {
		if st.Index == nil || *st.Index != i {
			t.Fatalf("position %d has index %v", i, st.Index)
		}
	}
}

func TestFindersReturnNilWhenAbsent(t *testing.T) {
	ctx := context.Background()
	s := New(nil)
	if r, err := s.FindResource(ctx, "R9"); r != nil || err != nil {
		t.Fatalf("FindResource: %v %v", r, err)
	}
	if th, err := s.FindThing(ctx, "R9"); th != nil || err != nil {
		t.Fatalf("FindThing: %v %v", th, err)
	}
	if ok, err := s.ObservatoryExists(ctx, uuid.New()); ok || err != nil {
		t.Fatalf("ObservatoryExists: %v %v", ok, err)
	}
}

func TestCounterIDsSkipExistingThings(t *testing.T) {
	ctx := context.Background()
	s := New(nil)
	s.SeedVocabulary()
	s.PutResource(graph.Resource{ID: "R1", Label: "seeded"})
	s.PutLiteral(graph.Literal{ID: "L1", Label: "seeded", Datatype: graph.DatatypeString})

	r, err := s.CreateResource(ctx, ports.CreateResourceCommand{Label: "new"})
	if err != nil {
		t.Fatalf("CreateResource: %v", err)
	}
	if r != "R2" {
		t.Fatalf("resource id %q, want R2", r)
	}
	l, err := s.CreateLiteral(ctx, ports.CreateLiteralCommand{Label: "new"})
	if err != nil {
		t.Fatalf("CreateLiteral: %v", err)
	}
	if l != "L2" {
		t.Fatalf("literal id %q, want L2", l)
	}
	if got, _ := s.FindResource(ctx, "R1"); got == nil || got.Label != "seeded" {
		t.Fatalf("seeded resource overwritten: %+v", got)
	}
}
