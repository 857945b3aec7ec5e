package services

import (
	"context"
	"errors"
	"testing"

	"github.com/yungbote/kgcontent-backend/internal/contenttypes/comparison"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/errs"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/paper"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/ports"
	"github.com/yungbote/kgcontent-backend/internal/data/memory"
	"github.com/yungbote/kgcontent-backend/internal/domain/graph"
	pkgerrors "github.com/yungbote/kgcontent-backend/internal/pkg/errors"
	"github.com/yungbote/kgcontent-backend/internal/platform/logger"
)

var errStoreDown = errors.New("store down")

// failingStatements lets the first n statement creates through and fails
// the rest.
type failingStatements struct {
	ports.StatementStore
	n int
}

func (f *failingStatements) CreateStatement(ctx context.Context, cmd ports.CreateStatementCommand) (graph.StatementID, error) {
	if f.n <= 0 {
		return "", errStoreDown
	}
	f.n--
	return f.StatementStore.CreateStatement(ctx, cmd)
}

func newContent(t *testing.T, compensate bool, statementBudget int) (*memory.Store, ContentService) {
	t.Helper()
	s := memory.New(nil)
	s.SeedVocabulary()
	for _, id := range []graph.ThingID{"C1", "C2"} {
		s.PutResource(graph.Resource{ID: id, Label: "Contribution " + string(id), Classes: []graph.ThingID{graph.ClassContribution}})
	}
	repos := s.Repositories()
	if statementBudget >= 0 {
		repos.Statements = &failingStatements{StatementStore: repos.Statements, n: statementBudget}
	}
	svc, err := NewContentService(repos, logger.Nop(), ContentOptions{CompensateOnFailure: compensate})
	if err != nil {
		t.Fatalf("NewContentService: %v", err)
	}
	return s, svc
}

func comparisonCmd() comparison.CreateCommand {
	return comparison.CreateCommand{Title: "Half written", Contributions: []graph.ThingID{"C1", "C2"}}
}

func findComparisons(t *testing.T, s *memory.Store) []graph.Resource {
	t.Helper()
	found, err := s.FindResources(context.Background(), ports.ResourceFilter{Label: "Half written", Class: graph.ClassComparison})
	if err != nil {
		t.Fatalf("FindResources: %v", err)
	}
	return found
}

func TestFailedRunKeepsWritesByDefault(t *testing.T) {
	s, svc := newContent(t, false, 2)
	if _, err := svc.CreateComparison(context.Background(), comparisonCmd()); !errors.Is(err, errStoreDown) {
		t.Fatalf("got %v, want store failure", err)
	}
	if got := findComparisons(t, s); len(got) != 1 {
		t.Fatalf("partial comparison should stay without compensation, found %d", len(got))
	}
	if st := s.Stats(); st.ResourcesDeleted+st.LiteralsDeleted+st.StatementsDeleted != 0 {
		t.Fatalf("unexpected deletes %+v", st)
	}
}

func TestCompensationUndoesCreates(t *testing.T) {
	s, svc := newContent(t, true, 2)
	if _, err := svc.CreateComparison(context.Background(), comparisonCmd()); !errors.Is(err, errStoreDown) {
		t.Fatalf("got %v, want the pipeline error", err)
	}
	if got := findComparisons(t, s); len(got) != 0 {
		t.Fatalf("comparison survived compensation: %+v", got)
	}
	st := s.Stats()
	if st.ResourcesDeleted != st.ResourcesCreated || st.LiteralsDeleted != st.LiteralsCreated || st.StatementsDeleted != st.StatementsCreated {
		t.Fatalf("not every create was undone: %+v", st)
	}
	if n := len(s.AllStatements()); n != 0 {
		t.Fatalf("%d statements left", n)
	}
}

func TestCompensationLeavesSuccessfulRunsAlone(t *testing.T) {
	s, svc := newContent(t, true, -1)
	id, err := svc.CreateComparison(context.Background(), comparisonCmd())
	if err != nil {
		t.Fatalf("CreateComparison: %v", err)
	}
	if r, _ := s.FindResource(context.Background(), id); r == nil {
		t.Fatalf("comparison missing")
	}
	if st := s.Stats(); st.ResourcesDeleted+st.LiteralsDeleted+st.StatementsDeleted != 0 {
		t.Fatalf("successful run was compensated: %+v", st)
	}
}

func TestDispatch(t *testing.T) {
	ctx := context.Background()
	s, svc := newContent(t, false, -1)

	id, err := Dispatch(ctx, svc, comparison.OpCreate, []byte(`{"title":"Via JSON","contributions":["C1"],"references":["r"]}`))
	if err != nil {
		t.Fatalf("Dispatch create: %v", err)
	}
	if r, _ := s.FindResource(ctx, id); r == nil || r.Label != "Via JSON" {
		t.Fatalf("dispatched create produced %+v", r)
	}

	got, err := Dispatch(ctx, svc, comparison.OpUpdate, []byte(`{"comparison_id":"`+string(id)+`","title":"Renamed"}`))
	if err != nil || got != id {
		t.Fatalf("Dispatch update: %q %v", got, err)
	}

	cases := map[string]struct {
		op      string
		payload string
	}{
		"unknown operation": {"create_dataset", `{}`},
		"unknown field":     {comparison.OpCreate, `{"title":"x","colour":"red"}`},
		"malformed":         {comparison.OpCreate, `{"title":`},
	}
	for name, c := range cases {
		if _, err := Dispatch(ctx, svc, c.op, []byte(c.payload)); !errors.Is(err, pkgerrors.ErrInvalidArgument) {
			t.Fatalf("%s: got %v, want invalid argument", name, err)
		}
	}
	if len(Operations) != 14 {
		t.Fatalf("expected 14 operations, got %d", len(Operations))
	}
}

func TestDispatchRejectsRepeatedTempID(t *testing.T) {
	ctx := context.Background()
	s, svc := newContent(t, false, -1)
	before := s.Stats().Writes()

	payloads := []string{
		`{"title":"Dup","contents":{"resources":{"_r1":{"label":"first"},"_r1":{"label":"second"}},"contributions":[{"label":"c"}]}}`,
		`{"title":"Dup","contents":{"literals":{"_l1":{"label":"a"},"_l1":{"label":"b"}},"contributions":[{"label":"c"}]}}`,
	}
	for _, payload := range payloads {
		_, err := Dispatch(ctx, svc, paper.OpCreate, []byte(payload))
		var dup *errs.DuplicateTempIDError
		if !errors.As(err, &dup) {
			t.Fatalf("got %v, want duplicate temp id", err)
		}
		if !errors.Is(err, pkgerrors.ErrConflict) {
			t.Fatalf("duplicate temp id should classify as conflict: %v", err)
		}
	}
	if after := s.Stats().Writes(); after != before {
		t.Fatalf("rejected payloads wrote %d changes", after-before)
	}
}
