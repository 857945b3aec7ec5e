package actions

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/yungbote/kgcontent-backend/internal/contenttypes/errs"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/ports"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/reconcile"
	"github.com/yungbote/kgcontent-backend/internal/domain/graph"
)

// Identifiers maps an identifier name (doi, isbn, ...) to its values.
type Identifiers map[string][]string

// IdentifierSpec describes one external identifier an entity may carry.
type IdentifierSpec struct {
	Name      string
	Predicate graph.ThingID
	Pattern   *regexp.Regexp
}

var (
	DOI    = IdentifierSpec{Name: "doi", Predicate: graph.PredicateHasDOI, Pattern: regexp.MustCompile(`^10\.\d{4,9}/\S+$`)}
	ISBN   = IdentifierSpec{Name: "isbn", Predicate: graph.PredicateHasISBN, Pattern: regexp.MustCompile(`^(?:\d[- ]?){9}[\dXx]$|^(?:\d[- ]?){12}\d$`)}
	ISSN   = IdentifierSpec{Name: "issn", Predicate: graph.PredicateHasISSN, Pattern: regexp.MustCompile(`^\d{4}-\d{3}[\dXx]$`)}
	ArXiv  = IdentifierSpec{Name: "arxiv", Predicate: graph.PredicateHasArXiv, Pattern: regexp.MustCompile(`^(?:\d{4}\.\d{4,5}|[a-z-]+(?:\.[A-Z]{2})?/\d{7})(?:v\d+)?$`)}
	PubMed = IdentifierSpec{Name: "pubmed", Predicate: graph.PredicateHasPubMed, Pattern: regexp.MustCompile(`^\d+$`)}
	Handle = IdentifierSpec{Name: "handle", Predicate: graph.PredicateHasHandle, Pattern: regexp.MustCompile(`^\d+(?:\.\d+)*/\S+$`)}
)

// Identifier sets accepted per entity kind.
var (
	PaperIdentifiers      = []IdentifierSpec{DOI, ISBN, ISSN, ArXiv, PubMed, Handle}
	ComparisonIdentifiers = []IdentifierSpec{DOI}
)

type IdentifierValidator struct {
	statements ports.StatementStore
}

func NewIdentifierValidator(statements ports.StatementStore) *IdentifierValidator {
	return &IdentifierValidator{statements: statements}
}

// Validate checks every value against its pattern and rejects values that
// another resource of class already carries. It returns the identifiers
// trimmed and deduplicated.
func (v *IdentifierValidator) Validate(ctx context.Context, specs []IdentifierSpec, ids Identifiers, class, self graph.ThingID) (Identifiers, error) {
	if ids == nil {
		return nil, nil
	}
	byName := make(map[string]IdentifierSpec, len(specs))
	for _, s := range specs {
		byName[s.Name] = s
	}
	names := make([]string, 0, len(ids))
	for name := range ids {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(Identifiers, len(ids))
	for _, name := range names {
		spec, ok := byName[name]
		if !ok {
			return nil, &errs.InvalidIdentifierError{Name: name}
		}
		values := make([]string, 0, len(ids[name]))
		seen := map[string]bool{}
		for _, raw := range ids[name] {
			value := strings.TrimSpace(raw)
			if seen[value] {
				continue
			}
			seen[value] = true
			if !spec.Pattern.MatchString(value) {
				return nil, &errs.InvalidIdentifierError{Name: name, Value: raw}
			}
			if err := v.unique(ctx, spec, value, class, self); err != nil {
				return nil, err
			}
			values = append(values, value)
		}
		out[name] = values
	}
	return out, nil
}

func (v *IdentifierValidator) unique(ctx context.Context, spec IdentifierSpec, value string, class, self graph.ThingID) error {
	sts, err := v.statements.FindStatements(ctx, ports.StatementFilter{PredicateID: spec.Predicate, ObjectLabel: &value})
	if err != nil {
		return fmt.Errorf("find %s %q: %w", spec.Name, value, err)
	}
	for _, st := range sts {
		if st.SubjectID == self {
			continue
		}
		if r, ok := st.Subject.(graph.Resource); ok && r.HasClass(class) {
			return errs.Conflict(spec.Name+" already in use", string(r.ID))
		}
	}
	return nil
}

// IdentifierWriter stores identifiers as literals on their subject.
type IdentifierWriter struct {
	literals   ports.LiteralStore
	statements ports.StatementStore
	set        *reconcile.LiteralSet
}

func NewIdentifierWriter(literals ports.LiteralStore, statements ports.StatementStore) *IdentifierWriter {
	return &IdentifierWriter{literals: literals, statements: statements, set: reconcile.NewLiteralSet(literals, statements)}
}

func (w *IdentifierWriter) Create(ctx context.Context, subject graph.ThingID, specs []IdentifierSpec, ids Identifiers, contributor graph.ContributorID) error {
	for _, spec := range specs {
		for _, value := range ids[spec.Name] {
			lit, err := w.literals.CreateLiteral(ctx, ports.CreateLiteralCommand{Label: value, Contributor: contributor})
			if err != nil {
				return fmt.Errorf("create %s literal: %w", spec.Name, err)
			}
			if _, err := w.statements.CreateStatement(ctx, ports.CreateStatementCommand{
				SubjectID:   subject,
				PredicateID: spec.Predicate,
				ObjectID:    lit,
				Contributor: contributor,
			}); err != nil {
				return fmt.Errorf("link %s: %w", spec.Name, err)
			}
		}
	}
	return nil
}

// Update replaces the whole identifier set; names missing from ids are
// cleared.
func (w *IdentifierWriter) Update(ctx context.Context, subject graph.ThingID, specs []IdentifierSpec, ids Identifiers, contributor graph.ContributorID) error {
	for _, spec := range specs {
		if err := w.set.UpdateLiterals(ctx, subject, spec.Predicate, ids[spec.Name], graph.DatatypeString, contributor); err != nil {
			return fmt.Errorf("update %s: %w", spec.Name, err)
		}
	}
	return nil
}
