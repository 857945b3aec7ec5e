// Package memory implements every content port in process memory. It backs
// GRAPH_STORE_DRIVER=memory and the pipeline tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/kgcontent-backend/internal/contenttypes/ports"
	"github.com/yungbote/kgcontent-backend/internal/data/ids"
	"github.com/yungbote/kgcontent-backend/internal/domain/graph"
)

type storedStatement struct {
	graph.Statement
	seq int64
}

type state struct {
	resources     map[graph.ThingID]graph.Resource
	literals      map[graph.ThingID]graph.Literal
	predicates    map[graph.ThingID]graph.Predicate
	classes       map[graph.ThingID]graph.Class
	statements    map[graph.StatementID]storedStatement
	observatories map[uuid.UUID]struct{}
	organizations map[uuid.UUID]struct{}
	resourceSeq   map[graph.ThingID]int64
}

func newState() state {
	return state{
		resources:     make(map[graph.ThingID]graph.Resource),
		literals:      make(map[graph.ThingID]graph.Literal),
		predicates:    make(map[graph.ThingID]graph.Predicate),
		classes:       make(map[graph.ThingID]graph.Class),
		statements:    make(map[graph.StatementID]storedStatement),
		observatories: make(map[uuid.UUID]struct{}),
		organizations: make(map[uuid.UUID]struct{}),
		resourceSeq:   make(map[graph.ThingID]int64),
	}
}

func cloneResource(r graph.Resource) graph.Resource {
	cp := r
	cp.Classes = append([]graph.ThingID(nil), r.Classes...)
	return cp
}

func cloneStatement(s graph.Statement) graph.Statement {
	cp := s
	if s.Index != nil {
		idx := *s.Index
		cp.Index = &idx
	}
	return cp
}

// Stats counts successful write calls per kind.
type Stats struct {
	ResourcesCreated  int
	ResourcesUpdated  int
	ResourcesDeleted  int
	LiteralsCreated   int
	LiteralsDeleted   int
	StatementsCreated int
	StatementsDeleted int
}

// Writes is the total number of write calls.
func (s Stats) Writes() int {
	return s.ResourcesCreated + s.ResourcesUpdated + s.ResourcesDeleted +
		s.LiteralsCreated + s.LiteralsDeleted + s.StatementsCreated + s.StatementsDeleted
}

type Store struct {
	mu    sync.RWMutex
	state state
	stats Stats
	seq   int64
	ids   ids.Generator
	nowFn func() time.Time
}

// New builds an empty store. A nil generator falls back to an in-process
// counter; ids already present in the store are skipped either way.
func New(gen ids.Generator) *Store {
	if gen == nil {
		gen = ids.NewCounter()
	}
	s := &Store{
		state: newState(),
		nowFn: func() time.Time { return time.Now().UTC() },
	}
	s.ids = ids.NewUnique(gen, s.taken)
	return s
}

func (s *Store) taken(_ context.Context, kind ids.Kind, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if kind == ids.KindStatement {
		_, ok := s.state.statements[graph.StatementID(id)]
		return ok, nil
	}
	return s.exists(graph.ThingID(id)), nil
}

// Repositories exposes the store through every port.
func (s *Store) Repositories() ports.Repositories {
	return ports.Repositories{
		Resources:     s,
		Literals:      s,
		Statements:    s,
		Predicates:    s,
		Classes:       s,
		Things:        s,
		Observatories: s,
		Organizations: s,
	}
}

func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

func (s *Store) nextSeq() int64 {
	s.seq++
	return s.seq
}

// Seeding helpers for fixtures and the CLI. They do not count as writes.

func (s *Store) PutPredicate(id graph.ThingID, label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.predicates[id] = graph.Predicate{ID: id, Label: label, CreatedAt: s.nowFn()}
}

func (s *Store) PutClass(id graph.ThingID, label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.classes[id] = graph.Class{ID: id, Label: label, CreatedAt: s.nowFn()}
}

func (s *Store) PutResource(r graph.Resource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.nowFn()
	}
	if r.ExtractionMethod == "" {
		r.ExtractionMethod = graph.ExtractionUnknown
	}
	if r.Visibility == "" {
		r.Visibility = graph.VisibilityDefault
	}
	s.state.resources[r.ID] = cloneResource(r)
	s.state.resourceSeq[r.ID] = s.nextSeq()
}

func (s *Store) PutLiteral(l graph.Literal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l.Datatype == "" {
		l.Datatype = graph.DatatypeString
	}
	s.state.literals[l.ID] = l
}

func (s *Store) PutStatement(st graph.Statement) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st.Subject, st.Object = nil, nil
	s.state.statements[st.ID] = storedStatement{Statement: cloneStatement(st), seq: s.nextSeq()}
}

func (s *Store) PutObservatory(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.observatories[id] = struct{}{}
}

func (s *Store) PutOrganization(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.organizations[id] = struct{}{}
}

// Resources

func (s *Store) CreateResource(ctx context.Context, cmd ports.CreateResourceCommand) (graph.ThingID, error) {
	raw, err := s.ids.NewID(ctx, ids.KindResource)
	if err != nil {
		return "", err
	}
	id := graph.ThingID(raw)
	method := cmd.ExtractionMethod
	if method == "" {
		method = graph.ExtractionUnknown
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.exists(id) {
		return "", fmt.Errorf("memory: id %q already in use", id)
	}
	s.state.resources[id] = graph.Resource{
		ID:               id,
		Label:            cmd.Label,
		Classes:          append([]graph.ThingID(nil), cmd.Classes...),
		ObservatoryID:    cmd.ObservatoryID,
		OrganizationID:   cmd.OrganizationID,
		ExtractionMethod: method,
		Visibility:       graph.VisibilityDefault,
		CreatedBy:        cmd.Contributor,
		CreatedAt:        s.nowFn(),
	}
	s.state.resourceSeq[id] = s.nextSeq()
	s.stats.ResourcesCreated++
	return id, nil
}

func (s *Store) FindResource(_ context.Context, id graph.ThingID) (*graph.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.state.resources[id]
	if !ok {
		return nil, nil
	}
	cp := cloneResource(r)
	return &cp, nil
}

func (s *Store) FindResources(_ context.Context, filter ports.ResourceFilter) ([]graph.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	label := strings.TrimSpace(filter.Label)
	out := make([]graph.Resource, 0)
	for _, r := range s.state.resources {
		if label != "" && !strings.EqualFold(strings.TrimSpace(r.Label), label) {
			continue
		}
		if filter.Class != "" && !r.HasClass(filter.Class) {
			continue
		}
		out = append(out, cloneResource(r))
	}
	sort.Slice(out, func(i, j int) bool {
		return s.state.resourceSeq[out[i].ID] < s.state.resourceSeq[out[j].ID]
	})
	return out, nil
}

func (s *Store) UpdateResource(_ context.Context, id graph.ThingID, update ports.ResourceUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.state.resources[id]
	if !ok {
		return fmt.Errorf("memory: resource %q not found", id)
	}
	if update.Label != nil {
		r.Label = *update.Label
	}
	if update.Classes != nil {
		r.Classes = append([]graph.ThingID(nil), (*update.Classes)...)
	}
	if update.ObservatoryID != nil {
		r.ObservatoryID = *update.ObservatoryID
	}
	if update.OrganizationID != nil {
		r.OrganizationID = *update.OrganizationID
	}
	if update.ExtractionMethod != nil {
		r.ExtractionMethod = *update.ExtractionMethod
	}
	if update.Visibility != nil {
		r.Visibility = *update.Visibility
	}
	s.state.resources[id] = r
	s.stats.ResourcesUpdated++
	return nil
}

func (s *Store) DeleteResource(_ context.Context, id graph.ThingID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.state.resources[id]; !ok {
		return nil
	}
	delete(s.state.resources, id)
	delete(s.state.resourceSeq, id)
	s.stats.ResourcesDeleted++
	return nil
}

// Literals

func (s *Store) CreateLiteral(ctx context.Context, cmd ports.CreateLiteralCommand) (graph.ThingID, error) {
	raw, err := s.ids.NewID(ctx, ids.KindLiteral)
	if err != nil {
		return "", err
	}
	id := graph.ThingID(raw)
	datatype := cmd.Datatype
	if datatype == "" {
		datatype = graph.DatatypeString
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.exists(id) {
		return "", fmt.Errorf("memory: id %q already in use", id)
	}
	s.state.literals[id] = graph.Literal{
		ID:        id,
		Label:     cmd.Label,
		Datatype:  datatype,
		CreatedBy: cmd.Contributor,
		CreatedAt: s.nowFn(),
	}
	s.stats.LiteralsCreated++
	return id, nil
}

func (s *Store) FindLiteral(_ context.Context, id graph.ThingID) (*graph.Literal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.state.literals[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (s *Store) DeleteLiteral(_ context.Context, id graph.ThingID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.state.literals[id]; !ok {
		return nil
	}
	delete(s.state.literals, id)
	s.stats.LiteralsDeleted++
	return nil
}

// Statements

func (s *Store) CreateStatement(ctx context.Context, cmd ports.CreateStatementCommand) (graph.StatementID, error) {
	raw, err := s.ids.NewID(ctx, ids.KindStatement)
	if err != nil {
		return "", err
	}
	id := graph.StatementID(raw)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.thingLocked(cmd.SubjectID) == nil {
		return "", fmt.Errorf("memory: subject %q not found", cmd.SubjectID)
	}
	if _, ok := s.state.predicates[cmd.PredicateID]; !ok {
		return "", fmt.Errorf("memory: predicate %q not found", cmd.PredicateID)
	}
	if s.thingLocked(cmd.ObjectID) == nil {
		return "", fmt.Errorf("memory: object %q not found", cmd.ObjectID)
	}
	if _, ok := s.state.statements[id]; ok {
		return "", fmt.Errorf("memory: statement id %q already in use", id)
	}
	st := graph.Statement{
		ID:          id,
		SubjectID:   cmd.SubjectID,
		PredicateID: cmd.PredicateID,
		ObjectID:    cmd.ObjectID,
		CreatedBy:   cmd.Contributor,
		CreatedAt:   s.nowFn(),
	}
	if cmd.Index != nil {
		idx := *cmd.Index
		st.Index = &idx
	}
	s.state.statements[id] = storedStatement{Statement: st, seq: s.nextSeq()}
	s.stats.StatementsCreated++
	return id, nil
}

func (s *Store) FindStatements(_ context.Context, filter ports.StatementFilter) ([]graph.Statement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matched := make([]storedStatement, 0)
	for _, st := range s.state.statements {
		if filter.SubjectID != "" && st.SubjectID != filter.SubjectID {
			continue
		}
		if filter.PredicateID != "" && st.PredicateID != filter.PredicateID {
			continue
		}
		if filter.ObjectID != "" && st.ObjectID != filter.ObjectID {
			continue
		}
		if filter.ObjectLabel != nil {
			obj := s.thingLocked(st.ObjectID)
			if obj == nil || obj.ThingLabel() != *filter.ObjectLabel {
				continue
			}
		}
		matched = append(matched, st)
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		switch {
		case a.Index != nil && b.Index != nil && *a.Index != *b.Index:
			return *a.Index < *b.Index
		case a.Index != nil && b.Index == nil:
			return true
		case a.Index == nil && b.Index != nil:
			return false
		}
		return a.seq < b.seq
	})
	out := make([]graph.Statement, 0, len(matched))
	for _, st := range matched {
		cp := cloneStatement(st.Statement)
		cp.Subject = s.thingLocked(st.SubjectID)
		cp.Object = s.thingLocked(st.ObjectID)
		out = append(out, cp)
	}
	return out, nil
}

func (s *Store) DeleteStatements(_ context.Context, statementIDs ...graph.StatementID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range statementIDs {
		if _, ok := s.state.statements[id]; !ok {
			continue
		}
		delete(s.state.statements, id)
		s.stats.StatementsDeleted++
	}
	return nil
}

// Lookups

func (s *Store) FindPredicate(_ context.Context, id graph.ThingID) (*graph.Predicate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.state.predicates[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *Store) FindClass(_ context.Context, id graph.ThingID) (*graph.Class, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.state.classes[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (s *Store) FindThing(_ context.Context, id graph.ThingID) (graph.Thing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.thingLocked(id), nil
}

func (s *Store) ObservatoryExists(_ context.Context, id uuid.UUID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.state.observatories[id]
	return ok, nil
}

func (s *Store) OrganizationExists(_ context.Context, id uuid.UUID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.state.organizations[id]
	return ok, nil
}

// AllStatements returns every statement ordered by creation.
func (s *Store) AllStatements() []graph.Statement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make([]storedStatement, 0, len(s.state.statements))
	for _, st := range s.state.statements {
		all = append(all, st)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].seq < all[j].seq })
	out := make([]graph.Statement, 0, len(all))
	for _, st := range all {
		out = append(out, cloneStatement(st.Statement))
	}
	return out
}

func (s *Store) thingLocked(id graph.ThingID) graph.Thing {
	if r, ok := s.state.resources[id]; ok {
		return cloneResource(r)
	}
	if l, ok := s.state.literals[id]; ok {
		return l
	}
	if p, ok := s.state.predicates[id]; ok {
		return p
	}
	if c, ok := s.state.classes[id]; ok {
		return c
	}
	return nil
}

func (s *Store) exists(id graph.ThingID) bool {
	return s.thingLocked(id) != nil
}

// SeedVocabulary registers the built-in predicates and classes.
func (s *Store) SeedVocabulary() {
	for id, label := range graph.BuiltinPredicates {
		s.PutPredicate(id, label)
	}
	for id, label := range graph.BuiltinClasses {
		s.PutClass(id, label)
	}
}

// StatementsAfter pages through statements ordered by id, with Subject and
// Object loaded.
func (s *Store) StatementsAfter(_ context.Context, after graph.StatementID, limit int) ([]graph.Statement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]graph.StatementID, 0, len(s.state.statements))
	for id := range s.state.statements {
		if id > after {
			keys = append(keys, id)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
	}
	out := make([]graph.Statement, 0, len(keys))
	for _, id := range keys {
		cp := cloneStatement(s.state.statements[id].Statement)
		cp.Subject = s.thingLocked(cp.SubjectID)
		cp.Object = s.thingLocked(cp.ObjectID)
		out = append(out, cp)
	}
	return out, nil
}
