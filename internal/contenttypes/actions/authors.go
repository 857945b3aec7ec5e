package actions

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/yungbote/kgcontent-backend/internal/contenttypes/errs"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/ports"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/reconcile"
	"github.com/yungbote/kgcontent-backend/internal/domain/graph"
)

// Author is one entry of an ordered author list. A set ID refers to an
// existing Author resource. Otherwise the author is stored as a plain name
// literal, or as a new Author resource when any identifier or homepage is
// given.
type Author struct {
	ID              graph.ThingID `json:"id,omitempty"`
	Name            string        `json:"name"`
	ORCID           string        `json:"orcid,omitempty"`
	GoogleScholarID string        `json:"google_scholar_id,omitempty"`
	Homepage        string        `json:"homepage,omitempty"`
}

func (a Author) needsResource() bool {
	return a.ORCID != "" || a.GoogleScholarID != "" || a.Homepage != ""
}

var orcidPattern = regexp.MustCompile(`^\d{4}-\d{4}-\d{4}-\d{3}[\dX]$`)

type AuthorValidator struct {
	resources  ports.ResourceStore
	statements ports.StatementStore
}

func NewAuthorValidator(resources ports.ResourceStore, statements ports.StatementStore) *AuthorValidator {
	return &AuthorValidator{resources: resources, statements: statements}
}

// Validate checks every author and resolves authors whose ORCID already
// belongs to an Author resource. Later entries repeating an ORCID are
// dropped. The input slice is not modified.
func (v *AuthorValidator) Validate(ctx context.Context, authors []Author) ([]Author, error) {
	if authors == nil {
		return nil, nil
	}
	out := make([]Author, 0, len(authors))
	seenORCID := map[string]bool{}
	for _, a := range authors {
		if a.ID != "" {
			r, err := v.resources.FindResource(ctx, a.ID)
			if err != nil {
				return nil, fmt.Errorf("find author %s: %w", a.ID, err)
			}
			if r == nil || !r.HasClass(graph.ClassAuthor) {
				return nil, errs.NotFound("author", a.ID)
			}
			out = append(out, Author{ID: r.ID, Name: r.Label})
			continue
		}
		name, err := graph.NormalizeLabel(a.Name)
		if err != nil {
			return nil, &errs.InvalidLabelError{Label: a.Name, Cause: err}
		}
		a.Name = name
		a.ORCID = strings.TrimSpace(a.ORCID)
		a.GoogleScholarID = strings.TrimSpace(a.GoogleScholarID)
		a.Homepage = strings.TrimSpace(a.Homepage)
		if a.ORCID != "" && !orcidPattern.MatchString(a.ORCID) {
			return nil, &errs.InvalidIdentifierError{Name: "orcid", Value: a.ORCID}
		}
		if a.Homepage != "" {
			if err := graph.ValidateLiteral(a.Homepage, graph.DatatypeAnyURI); err != nil {
				return nil, &errs.InvalidLiteralError{Value: a.Homepage, Datatype: graph.DatatypeAnyURI, Cause: err}
			}
		}
		if a.ORCID != "" {
			if seenORCID[a.ORCID] {
				continue
			}
			seenORCID[a.ORCID] = true
			existing, err := v.byORCID(ctx, a.ORCID)
			if err != nil {
				return nil, err
			}
			if existing != nil {
				out = append(out, Author{ID: existing.ID, Name: existing.Label})
				continue
			}
		}
		out = append(out, a)
	}
	return out, nil
}

func (v *AuthorValidator) byORCID(ctx context.Context, orcid string) (*graph.Resource, error) {
	sts, err := v.statements.FindStatements(ctx, ports.StatementFilter{PredicateID: graph.PredicateORCID, ObjectLabel: &orcid})
	if err != nil {
		return nil, fmt.Errorf("find orcid %s: %w", orcid, err)
	}
	for _, st := range sts {
		if r, ok := st.Subject.(graph.Resource); ok && r.HasClass(graph.ClassAuthor) {
			return &r, nil
		}
	}
	return nil, nil
}

// AuthorWriter stores author lists as a List resource linked from the
// subject with hasAuthors; each element is an indexed hasListElement link.
type AuthorWriter struct {
	resources  ports.ResourceStore
	literals   ports.LiteralStore
	statements ports.StatementStore
}

func NewAuthorWriter(resources ports.ResourceStore, literals ports.LiteralStore, statements ports.StatementStore) *AuthorWriter {
	return &AuthorWriter{resources: resources, literals: literals, statements: statements}
}

func (w *AuthorWriter) Create(ctx context.Context, subject graph.ThingID, authors []Author, contributor graph.ContributorID) error {
	if len(authors) == 0 {
		return nil
	}
	list, err := w.resources.CreateResource(ctx, ports.CreateResourceCommand{
		Label:       "authors list",
		Classes:     []graph.ThingID{graph.ClassList},
		Contributor: contributor,
	})
	if err != nil {
		return fmt.Errorf("create author list: %w", err)
	}
	if err := w.link(ctx, subject, graph.PredicateHasAuthors, list, nil, contributor); err != nil {
		return err
	}
	for i, a := range authors {
		if err := w.appendAuthor(ctx, list, i, a, contributor); err != nil {
			return err
		}
	}
	return nil
}

// Update reconciles the stored list with authors. Elements that moved are
// relinked with their new index. A nil slice leaves the list untouched.
func (w *AuthorWriter) Update(ctx context.Context, subject graph.ThingID, authors []Author, contributor graph.ContributorID) error {
	if authors == nil {
		return nil
	}
	lists, err := w.statements.FindStatements(ctx, ports.StatementFilter{SubjectID: subject, PredicateID: graph.PredicateHasAuthors})
	if err != nil {
		return fmt.Errorf("find author list: %w", err)
	}
	if len(lists) == 0 {
		return w.Create(ctx, subject, authors, contributor)
	}
	list := lists[0].ObjectID
	elements, err := w.statements.FindStatements(ctx, ports.StatementFilter{SubjectID: list, PredicateID: graph.PredicateHasListElement})
	if err != nil {
		return fmt.Errorf("find authors: %w", err)
	}

	for _, op := range reconcile.Plan(elements, authors, matchAuthor) {
		switch op.Kind {
		case reconcile.OpKeep:
			if !op.Moved() {
				continue
			}
			old := elements[op.OldIndex]
			if err := w.statements.DeleteStatements(ctx, old.ID); err != nil {
				return fmt.Errorf("unlink author: %w", err)
			}
			if err := w.link(ctx, list, graph.PredicateHasListElement, old.ObjectID, &op.NewIndex, contributor); err != nil {
				return err
			}
		case reconcile.OpCreate:
			if err := w.appendAuthor(ctx, list, op.NewIndex, authors[op.NewIndex], contributor); err != nil {
				return err
			}
		case reconcile.OpDelete:
			old := elements[op.OldIndex]
			if err := w.statements.DeleteStatements(ctx, old.ID); err != nil {
				return fmt.Errorf("unlink author: %w", err)
			}
			// Name literals belong to their list element; author resources are shared.
			if _, ok := old.Object.(graph.Literal); ok {
				if err := w.literals.DeleteLiteral(ctx, old.ObjectID); err != nil {
					return fmt.Errorf("delete author name %s: %w", old.ObjectID, err)
				}
			}
		}
	}
	return nil
}

func matchAuthor(el graph.Statement, a Author) bool {
	if a.ID != "" {
		return el.ObjectID == a.ID
	}
	if a.needsResource() {
		return false
	}
	l, ok := el.Object.(graph.Literal)
	return ok && l.Label == a.Name
}

func (w *AuthorWriter) appendAuthor(ctx context.Context, list graph.ThingID, index int, a Author, contributor graph.ContributorID) error {
	element, err := w.element(ctx, a, contributor)
	if err != nil {
		return err
	}
	return w.link(ctx, list, graph.PredicateHasListElement, element, &index, contributor)
}

func (w *AuthorWriter) element(ctx context.Context, a Author, contributor graph.ContributorID) (graph.ThingID, error) {
	if a.ID != "" {
		return a.ID, nil
	}
	if !a.needsResource() {
		id, err := w.literals.CreateLiteral(ctx, ports.CreateLiteralCommand{Label: a.Name, Contributor: contributor})
		if err != nil {
			return "", fmt.Errorf("create author name: %w", err)
		}
		return id, nil
	}
	id, err := w.resources.CreateResource(ctx, ports.CreateResourceCommand{
		Label:       a.Name,
		Classes:     []graph.ThingID{graph.ClassAuthor},
		Contributor: contributor,
	})
	if err != nil {
		return "", fmt.Errorf("create author %q: %w", a.Name, err)
	}
	details := []struct {
		predicate graph.ThingID
		value     string
		datatype  string
	}{
		{graph.PredicateORCID, a.ORCID, graph.DatatypeString},
		{graph.PredicateGoogleScholar, a.GoogleScholarID, graph.DatatypeString},
		{graph.PredicateHomepage, a.Homepage, graph.DatatypeAnyURI},
	}
	for _, d := range details {
		if d.value == "" {
			continue
		}
		lit, err := w.literals.CreateLiteral(ctx, ports.CreateLiteralCommand{Label: d.value, Datatype: d.datatype, Contributor: contributor})
		if err != nil {
			return "", fmt.Errorf("create author %s: %w", d.predicate, err)
		}
		if err := w.link(ctx, id, d.predicate, lit, nil, contributor); err != nil {
			return "", err
		}
	}
	return id, nil
}

func (w *AuthorWriter) link(ctx context.Context, subject, predicate, object graph.ThingID, index *int, contributor graph.ContributorID) error {
	if _, err := w.statements.CreateStatement(ctx, ports.CreateStatementCommand{
		SubjectID:   subject,
		PredicateID: predicate,
		ObjectID:    object,
		Index:       index,
		Contributor: contributor,
	}); err != nil {
		return fmt.Errorf("link %s-%s->%s: %w", subject, predicate, object, err)
	}
	return nil
}
