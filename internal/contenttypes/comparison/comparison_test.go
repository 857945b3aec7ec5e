package comparison

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"testing"

	"github.com/yungbote/kgcontent-backend/internal/contenttypes"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/actions"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/errs"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/pipeline"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/ports"
	"github.com/yungbote/kgcontent-backend/internal/data/memory"
	"github.com/yungbote/kgcontent-backend/internal/domain/graph"
	pkgerrors "github.com/yungbote/kgcontent-backend/internal/pkg/errors"
	"github.com/yungbote/kgcontent-backend/internal/pkg/pointers"
	"github.com/yungbote/kgcontent-backend/internal/platform/logger"
)

func newService(t *testing.T) (*memory.Store, *Service) {
	t.Helper()
	s := memory.New(nil)
	s.SeedVocabulary()
	s.PutResource(graph.Resource{ID: "RF1", Label: "Physics", Classes: []graph.ThingID{graph.ClassResearchField}})
	for _, id := range []graph.ThingID{"C1", "C2", "C3"} {
		s.PutResource(graph.Resource{ID: id, Label: "Contribution " + string(id), Classes: []graph.ThingID{graph.ClassContribution}})
	}
	svc, err := New(contenttypes.Config{
		Kit:  actions.NewKit(s.Repositories()),
		Log:  logger.Nop(),
		Spec: pipeline.LoadSpec(logger.Nop()),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s, svc
}

func objects(t *testing.T, s *memory.Store, subject, predicate graph.ThingID) []string {
	t.Helper()
	sts, err := s.FindStatements(context.Background(), ports.StatementFilter{SubjectID: subject, PredicateID: predicate})
	if err != nil {
		t.Fatalf("FindStatements: %v", err)
	}
	out := make([]string, 0, len(sts))
	for _, st := range sts {
		if _, ok := st.Object.(graph.Literal); ok {
			out = append(out, st.ObjectLabel())
			continue
		}
		out = append(out, string(st.ObjectID))
	}
	sort.Strings(out)
	return out
}

func TestStepOrderMatchesConfiguredSpec(t *testing.T) {
	_, svc := newService(t)
	spec := pipeline.LoadSpec(logger.Nop())
	if got, want := svc.create.StepNames(), spec.Order(OpCreate); !reflect.DeepEqual(got, want) {
		t.Fatalf("create steps %v, configured %v", got, want)
	}
	if got, want := svc.update.StepNames(), spec.Order(OpUpdate); !reflect.DeepEqual(got, want) {
		t.Fatalf("update steps %v, configured %v", got, want)
	}
}

func TestCreateComparison(t *testing.T) {
	ctx := context.Background()
	s, svc := newService(t)
	id, err := svc.Create(ctx, CreateCommand{
		Title:           "Comparing graph stores",
		Description:     pointers.Ptr(" latency and cost "),
		ResearchFields:  []graph.ThingID{"RF1"},
		Contributions:   []graph.ThingID{"C1", "C2"},
		References:      []string{"https://example.org/a", " ", "https://example.org/a", "Smith 2020"},
		IsAnonymized:    true,
		Identifiers:     actions.Identifiers{"doi": {"10.1000/xyz"}},
		PublicationInfo: &actions.PublicationInfo{Year: pointers.Ptr(2024)},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	r, _ := s.FindResource(ctx, id)
	if r == nil || !r.HasClass(graph.ClassComparison) {
		t.Fatalf("unexpected resource %+v", r)
	}
	checks := map[graph.ThingID][]string{
		graph.PredicateDescription:          {"latency and cost"},
		graph.PredicateHasResearchField:     {"RF1"},
		graph.PredicateComparesContribution: {"C1", "C2"},
		graph.PredicateReference:            {"Smith 2020", "https://example.org/a"},
		graph.PredicateIsAnonymized:         {"true"},
		graph.PredicateHasDOI:               {"10.1000/xyz"},
		graph.PredicateYear:                 {"2024"},
	}
	for pred, want := range checks {
		if got := objects(t, s, id, pred); !reflect.DeepEqual(got, want) {
			t.Fatalf("%s: got %v, want %v", pred, got, want)
		}
	}
}

func TestCreateComparisonRejections(t *testing.T) {
	ctx := context.Background()
	s, svc := newService(t)
	if _, err := svc.Create(ctx, CreateCommand{Title: "first", Contributions: []graph.ThingID{"C1"}, Identifiers: actions.Identifiers{"doi": {"10.1000/taken"}}}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	cases := []struct {
		name string
		cmd  CreateCommand
		want error
	}{
		{"no contributions", CreateCommand{Title: "x"}, pkgerrors.ErrInvalidArgument},
		{"missing contribution", CreateCommand{Title: "x", Contributions: []graph.ThingID{"RF1"}}, pkgerrors.ErrNotFound},
		{"duplicate doi", CreateCommand{Title: "x", Contributions: []graph.ThingID{"C1"}, Identifiers: actions.Identifiers{"doi": {"10.1000/taken"}}}, pkgerrors.ErrConflict},
		{"paper identifier", CreateCommand{Title: "x", Contributions: []graph.ThingID{"C1"}, Identifiers: actions.Identifiers{"isbn": {"0306406152"}}}, pkgerrors.ErrInvalidArgument},
		{"bad month", CreateCommand{Title: "x", Contributions: []graph.ThingID{"C1"}, PublicationInfo: &actions.PublicationInfo{Month: pointers.Ptr(13)}}, pkgerrors.ErrInvalidArgument},
		{"bad extraction", CreateCommand{Title: "x", Contributions: []graph.ThingID{"C1"}, ExtractionMethod: "GUESSED"}, pkgerrors.ErrInvalidArgument},
	}
	for _, c := range cases {
		before := s.Stats()
		_, err := svc.Create(ctx, c.cmd)
		if !errors.Is(err, c.want) {
			t.Fatalf("%s: got %v, want %v", c.name, err, c.want)
		}
		if after := s.Stats(); after != before {
			t.Fatalf("%s: writes happened", c.name)
		}
	}
}

func TestUpdateComparison(t *testing.T) {
	ctx := context.Background()
	s, svc := newService(t)
	id, err := svc.Create(ctx, CreateCommand{
		Title:         "Original",
		Contributions: []graph.ThingID{"C1", "C2"},
		References:    []string{"ref a", "ref b"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	before := s.Stats()
	if err := svc.Update(ctx, UpdateCommand{ComparisonID: id, Title: pointers.Ptr("Original"), References: []string{"ref b", "ref a"}}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if after := s.Stats(); after != before {
		t.Fatalf("no-op update wrote: %+v -> %+v", before, after)
	}

	err = svc.Update(ctx, UpdateCommand{
		ComparisonID:  id,
		Title:         pointers.Ptr("Renamed"),
		Description:   pointers.Ptr("now described"),
		Contributions: []graph.ThingID{"C2", "C3"},
		References:    []string{"ref b", "ref c"},
		IsAnonymized:  pointers.Ptr(true),
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	r, _ := s.FindResource(ctx, id)
	if r.Label != "Renamed" {
		t.Fatalf("title %q", r.Label)
	}
	if got := objects(t, s, id, graph.PredicateComparesContribution); !reflect.DeepEqual(got, []string{"C2", "C3"}) {
		t.Fatalf("contributions %v", got)
	}
	if got := objects(t, s, id, graph.PredicateReference); !reflect.DeepEqual(got, []string{"ref b", "ref c"}) {
		t.Fatalf("references %v", got)
	}
	if got := objects(t, s, id, graph.PredicateIsAnonymized); !reflect.DeepEqual(got, []string{"true"}) {
		t.Fatalf("anonymized %v", got)
	}

	if err := svc.Update(ctx, UpdateCommand{ComparisonID: id, Contributions: []graph.ThingID{}}); !errors.Is(err, pkgerrors.ErrInvalidArgument) {
		t.Fatalf("got %v, want invalid", err)
	}
	err = svc.Update(ctx, UpdateCommand{ComparisonID: "C1"})
	var nf *errs.NotFoundError
	if !errors.As(err, &nf) || nf.Kind != "comparison" {
		t.Fatalf("got %v, want comparison not found", err)
	}
}

func TestUpdateComparisonRejectsUnknownEnums(t *testing.T) {
	ctx := context.Background()
	s, svc := newService(t)
	id, err := svc.Create(ctx, CreateCommand{Title: "Base", Contributions: []graph.ThingID{"C1"}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	hidden := graph.Visibility("HIDDEN")
	guessed := graph.ExtractionMethod("GUESSED")
	for name, cmd := range map[string]UpdateCommand{
		"visibility": {ComparisonID: id, Description: pointers.String("new"), Visibility: &hidden},
		"extraction": {ComparisonID: id, Title: pointers.String("Renamed"), ExtractionMethod: &guessed},
	} {
		before := s.Stats()
		if err := svc.Update(ctx, cmd); !errors.Is(err, pkgerrors.ErrInvalidArgument) {
			t.Fatalf("%s: got %v, want invalid argument", name, err)
		}
		if after := s.Stats(); after != before {
			t.Fatalf("%s: writes happened", name)
		}
	}
}
