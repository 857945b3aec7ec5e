package paper

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/yungbote/kgcontent-backend/internal/contenttypes"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/actions"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/errs"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/pipeline"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/ports"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/thingdef"
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
	s.PutPredicate("P1", "has value")
	s.PutResource(graph.Resource{ID: "RF1", Label: "Physics", Classes: []graph.ThingID{graph.ClassResearchField}})
	s.PutResource(graph.Resource{ID: "RF2", Label: "Chemistry", Classes: []graph.ThingID{graph.ClassResearchField}})
	s.PutResource(graph.Resource{ID: "SDG1", Label: "Quality Education", Classes: []graph.ThingID{graph.ClassSDG}})
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

func objectsOf(t *testing.T, s *memory.Store, subject, predicate graph.ThingID) []graph.Statement {
	t.Helper()
	sts, err := s.FindStatements(context.Background(), ports.StatementFilter{SubjectID: subject, PredicateID: predicate})
	if err != nil {
		t.Fatalf("FindStatements: %v", err)
	}
	return sts
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
	if got, want := svc.contribution.StepNames(), spec.Order(OpCreateContribution); !reflect.DeepEqual(got, want) {
		t.Fatalf("contribution steps %v, configured %v", got, want)
	}
}

func TestCreatePaperMaterializesContents(t *testing.T) {
	ctx := context.Background()
	s, svc := newService(t)
	id, err := svc.Create(ctx, CreateCommand{
		Title:          "Graphs in practice",
		ResearchFields: []graph.ThingID{"RF1"},
		Contents: &Contents{
			Definitions: thingdef.Definitions{
				Resources: map[thingdef.TempID]thingdef.ResourceDefinition{"_r1": {Label: "x", Classes: []graph.ThingID{}}},
				Literals:  map[thingdef.TempID]thingdef.LiteralDefinition{"_l1": {Label: "5", Datatype: "xsd:integer"}},
				Statements: []thingdef.StatementDefinition{
					{Subject: "_r1", Predicate: "P1", Object: thingdef.ObjectRef{ID: "_l1"}},
				},
			},
			Contributions: []Contribution{{
				Label:      "Contribution 1",
				Statements: map[graph.ThingID][]thingdef.ObjectRef{"P1": {{ID: "_r1"}}},
			}},
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	paper, _ := s.FindResource(ctx, id)
	if paper == nil || !paper.HasClass(graph.ClassPaper) || paper.Label != "Graphs in practice" {
		t.Fatalf("unexpected paper %+v", paper)
	}
	contribs := objectsOf(t, s, id, graph.PredicateHasContribution)
	if len(contribs) != 1 {
		t.Fatalf("expected one contribution, got %d", len(contribs))
	}
	c := contribs[0].Object.(graph.Resource)
	if !c.HasClass(graph.ClassContribution) {
		t.Fatalf("contribution lacks its class: %+v", c)
	}
	fromContribution := objectsOf(t, s, c.ID, "P1")
	if len(fromContribution) != 1 || fromContribution[0].ObjectLabel() != "x" {
		t.Fatalf("contribution statement missing: %+v", fromContribution)
	}
	x := fromContribution[0].ObjectID
	values := objectsOf(t, s, x, "P1")
	if len(values) != 1 {
		t.Fatalf("expected x-P1->5, got %+v", values)
	}
	lit, ok := values[0].Object.(graph.Literal)
	if !ok || lit.Label != "5" || lit.Datatype != graph.DatatypeInteger {
		t.Fatalf("unexpected literal %+v", values[0].Object)
	}
	if fields := objectsOf(t, s, id, graph.PredicateHasResearchField); len(fields) != 1 || fields[0].ObjectID != "RF1" {
		t.Fatalf("research field not linked: %+v", fields)
	}
}

func TestCreatePaperFailsBeforeWriting(t *testing.T) {
	ctx := context.Background()
	cases := map[string]CreateCommand{
		"undeclared temp id": {
			Title: "Broken",
			Contents: &Contents{Contributions: []Contribution{{
				Label:      "C",
				Statements: map[graph.ThingID][]thingdef.ObjectRef{"P1": {{ID: "_nowhere"}}},
			}}},
		},
		"missing research field": {Title: "Broken", ResearchFields: []graph.ThingID{"RF404"}},
		"missing sdg":            {Title: "Broken", SDGs: []graph.ThingID{"RF1"}},
		"bad doi":                {Title: "Broken", Identifiers: actions.Identifiers{"doi": {"nope"}}},
		"bad month":              {Title: "Broken", PublicationInfo: &actions.PublicationInfo{Month: pointers.Int(0)}},
		"empty contents":         {Title: "Broken", Contents: &Contents{}},
		"reserved class": {
			Title:    "Broken",
			Contents: &Contents{Contributions: []Contribution{{Label: "C", Classes: []graph.ThingID{graph.ClassPaper}}}},
		},
		"blank title": {Title: "   "},
	}
	for name, cmd := range cases {
		s, svc := newService(t)
		if _, err := svc.Create(ctx, cmd); err == nil {
			t.Fatalf("%s: expected error", name)
		}
		if w := s.Stats().Writes(); w != 0 {
			t.Fatalf("%s: %d writes before failure", name, w)
		}
	}

	s, svc := newService(t)
	_, err := svc.Create(ctx, CreateCommand{
		Title: "Broken",
		Contents: &Contents{Contributions: []Contribution{{
			Label:      "C",
			Statements: map[graph.ThingID][]thingdef.ObjectRef{"P1": {{ID: "_nowhere"}}},
		}}},
	})
	var unresolved *errs.UnresolvableReferenceError
	if !errors.As(err, &unresolved) || unresolved.ID != "_nowhere" {
		t.Fatalf("expected unresolvable _nowhere, got %v", err)
	}
	if s.Stats().Writes() != 0 {
		t.Fatalf("writes after unresolvable reference")
	}
}

func TestCreatePaperWithoutContents(t *testing.T) {
	ctx := context.Background()
	s, svc := newService(t)
	id, err := svc.Create(ctx, CreateCommand{
		Title:           "Metadata only",
		ResearchFields:  []graph.ThingID{"RF1"},
		SDGs:            []graph.ThingID{"SDG1"},
		Identifiers:     actions.Identifiers{"doi": {"10.1234/abc"}},
		Authors:         []actions.Author{{Name: "Ada"}, {Name: "Grace"}},
		PublicationInfo: &actions.PublicationInfo{Year: pointers.Int(2020), Venue: pointers.String("Nature")},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got := objectsOf(t, s, id, graph.PredicateHasContribution); len(got) != 0 {
		t.Fatalf("unexpected contributions %+v", got)
	}
	for _, p := range []graph.ThingID{graph.PredicateHasDOI, graph.PredicateHasAuthors, graph.PredicateYear, graph.PredicateHasVenue, graph.PredicateSustainableDevelopment} {
		if got := objectsOf(t, s, id, p); len(got) != 1 {
			t.Fatalf("expected one %s statement, got %d", p, len(got))
		}
	}

	if _, err := svc.Create(ctx, CreateCommand{Title: "metadata only"}); !errors.Is(err, pkgerrors.ErrConflict) {
		t.Fatalf("expected duplicate title conflict, got %v", err)
	}
	if _, err := svc.Create(ctx, CreateCommand{Title: "Other", Identifiers: actions.Identifiers{"doi": {"10.1234/abc"}}}); !errors.Is(err, pkgerrors.ErrConflict) {
		t.Fatalf("expected duplicate doi conflict, got %v", err)
	}
}

func TestUpdatePaper(t *testing.T) {
	ctx := context.Background()
	s, svc := newService(t)
	id, err := svc.Create(ctx, CreateCommand{
		Title:          "Original",
		ResearchFields: []graph.ThingID{"RF1"},
		Authors:        []actions.Author{{Name: "Ada"}, {Name: "Grace"}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create(ctx, CreateCommand{Title: "Taken"}); err != nil {
		t.Fatalf("Create second: %v", err)
	}

	if err := svc.Update(ctx, UpdateCommand{PaperID: id, Title: pointers.String("taken")}); !errors.Is(err, pkgerrors.ErrConflict) {
		t.Fatalf("expected title conflict, got %v", err)
	}
	if err := svc.Update(ctx, UpdateCommand{PaperID: "R404"}); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("expected missing paper, got %v", err)
	}

	before := s.Stats()
	if err := svc.Update(ctx, UpdateCommand{PaperID: id, Title: pointers.String("Original")}); err != nil {
		t.Fatalf("no-op update: %v", err)
	}
	if s.Stats() != before {
		t.Fatalf("no-op update wrote: %+v -> %+v", before, s.Stats())
	}

	err = svc.Update(ctx, UpdateCommand{
		PaperID:        id,
		Title:          pointers.String("Renamed"),
		ResearchFields: []graph.ThingID{"RF2"},
		Authors:        []actions.Author{{Name: "Grace"}, {Name: "Ada"}, {Name: "Linus"}},
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	paper, _ := s.FindResource(ctx, id)
	if paper.Label != "Renamed" {
		t.Fatalf("title not updated: %q", paper.Label)
	}
	if fields := objectsOf(t, s, id, graph.PredicateHasResearchField); len(fields) != 1 || fields[0].ObjectID != "RF2" {
		t.Fatalf("research fields not replaced: %+v", fields)
	}
	list := objectsOf(t, s, id, graph.PredicateHasAuthors)[0].ObjectID
	var names []string
	for _, el := range objectsOf(t, s, list, graph.PredicateHasListElement) {
		names = append(names, el.ObjectLabel())
	}
	if !reflect.DeepEqual(names, []string{"Grace", "Ada", "Linus"}) {
		t.Fatalf("unexpected authors %v", names)
	}
}

func TestCreateContribution(t *testing.T) {
	ctx := context.Background()
	s, svc := newService(t)
	paperID, err := svc.Create(ctx, CreateCommand{Title: "Host"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	cid, err := svc.CreateContribution(ctx, CreateContributionCommand{
		PaperID: paperID,
		Definitions: thingdef.Definitions{
			Literals: map[thingdef.TempID]thingdef.LiteralDefinition{"#v": {Label: "42", Datatype: graph.DatatypeInteger}},
		},
		Contribution: Contribution{
			Label: "Extra",
			Statements: map[graph.ThingID][]thingdef.ObjectRef{
				"P1": {{ID: "#v"}, {Literal: &thingdef.LiteralDefinition{Label: "inline"}}},
			},
		},
	})
	if err != nil {
		t.Fatalf("CreateContribution: %v", err)
	}
	links := objectsOf(t, s, paperID, graph.PredicateHasContribution)
	if len(links) != 1 || links[0].ObjectID != cid {
		t.Fatalf("contribution not linked: %+v", links)
	}
	if got := objectsOf(t, s, cid, "P1"); len(got) != 2 {
		t.Fatalf("expected two values, got %+v", got)
	}

	if _, err := svc.CreateContribution(ctx, CreateContributionCommand{PaperID: "RF1"}); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("expected not-found paper, got %v", err)
	}
}

func TestUnknownEnumsFailBeforeWriting(t *testing.T) {
	ctx := context.Background()
	s, svc := newService(t)
	paperID, err := svc.Create(ctx, CreateCommand{Title: "Host", Authors: []actions.Author{{Name: "Ada"}}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	hidden := graph.Visibility("HIDDEN")
	guessed := graph.ExtractionMethod("GUESSED")

	runs := map[string]func() error{
		"create": func() error {
			_, err := svc.Create(ctx, CreateCommand{Title: "Other", ExtractionMethod: guessed, Contents: &Contents{Contributions: []Contribution{{Label: "c"}}}})
			return err
		},
		"update extraction": func() error {
			return svc.Update(ctx, UpdateCommand{PaperID: paperID, Title: pointers.String("Renamed"), ExtractionMethod: &guessed})
		},
		"update visibility": func() error {
			return svc.Update(ctx, UpdateCommand{PaperID: paperID, Authors: []actions.Author{{Name: "Grace"}}, Visibility: &hidden})
		},
		"contribution": func() error {
			_, err := svc.CreateContribution(ctx, CreateContributionCommand{PaperID: paperID, ExtractionMethod: guessed, Contribution: Contribution{Label: "Extra"}})
			return err
		},
	}
	for name, run := range runs {
		before := s.Stats()
		if err := run(); !errors.Is(err, pkgerrors.ErrInvalidArgument) {
			t.Fatalf("%s: got %v, want invalid argument", name, err)
		}
		if after := s.Stats(); after != before {
			t.Fatalf("%s: wrote %+v -> %+v", name, before, after)
		}
	}
	if p, _ := s.FindResource(ctx, paperID); p.Label != "Host" || p.Visibility != graph.VisibilityDefault {
		t.Fatalf("paper changed: %+v", p)
	}

	featured := graph.VisibilityFeatured
	if err := svc.Update(ctx, UpdateCommand{PaperID: paperID, Visibility: &featured}); err != nil {
		t.Fatalf("Update visibility: %v", err)
	}
	if p, _ := s.FindResource(ctx, paperID); p.Visibility != graph.VisibilityFeatured {
		t.Fatalf("visibility %q", p.Visibility)
	}
}
