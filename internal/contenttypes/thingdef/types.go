// Package thingdef resolves user-submitted definitions of new things into
// statements ready to write, and materializes them.
//
// Temp ids start with '#' or '_' followed by [A-Za-z0-9:_-]+. Persisted ids
// start with an alphanumeric character, so the two spaces never overlap.
// Ids synthesized for inline definitions use the prefix "#~", which users
// cannot produce.
package thingdef

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/yungbote/kgcontent-backend/internal/contenttypes/errs"
	"github.com/yungbote/kgcontent-backend/internal/domain/graph"
)

type TempID string

var tempIDPattern = regexp.MustCompile(`^[#_][A-Za-z0-9:_-]+$`)

const synthesizedPrefix = "#~"

// Valid reports whether id is a user-declarable temp id.
func (id TempID) Valid() bool { return tempIDPattern.MatchString(string(id)) }

// IsTempID reports whether s lies in the temp-id lexical space, including
// synthesized ids.
func IsTempID(s string) bool {
	return strings.HasPrefix(s, synthesizedPrefix) || tempIDPattern.MatchString(s)
}

func synthesized(kind string, n int) TempID {
	return TempID(fmt.Sprintf("%s%s%d", synthesizedPrefix, kind, n))
}

type LiteralDefinition struct {
	Label    string `json:"label"`
	Datatype string `json:"data_type,omitempty"`
}

// ResourceDefinition describes a new resource and, optionally, its outgoing
// statements keyed by predicate.
type ResourceDefinition struct {
	Label      string                        `json:"label"`
	Classes    []graph.ThingID               `json:"classes,omitempty"`
	Statements map[graph.ThingID][]ObjectRef `json:"statements,omitempty"`
}

// ObjectRef points at a declared temp id or persisted thing, or defines a
// new literal or resource inline. Exactly one field is set.
type ObjectRef struct {
	ID       string              `json:"id,omitempty"`
	Literal  *LiteralDefinition  `json:"literal,omitempty"`
	Resource *ResourceDefinition `json:"resource,omitempty"`
}

// UnmarshalJSON also accepts a bare string as an id reference.
func (o *ObjectRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*o = ObjectRef{ID: id}
		return nil
	}
	type plain ObjectRef
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*o = ObjectRef(p)
	return nil
}

func (o ObjectRef) set() int {
	n := 0
	if o.ID != "" {
		n++
	}
	if o.Literal != nil {
		n++
	}
	if o.Resource != nil {
		n++
	}
	return n
}

type StatementDefinition struct {
	Subject   string        `json:"subject"`
	Predicate graph.ThingID `json:"predicate"`
	Object    ObjectRef     `json:"object"`
}

// Definitions is the nested content payload of one command.
type Definitions struct {
	Resources  ResourceDefinitions   `json:"resources,omitempty"`
	Literals   LiteralDefinitions    `json:"literals,omitempty"`
	Statements []StatementDefinition `json:"statements,omitempty"`
}

// ResourceDefinitions and LiteralDefinitions reject a temp id that appears
// twice in the same JSON object instead of keeping the last one.
type (
	ResourceDefinitions map[TempID]ResourceDefinition
	LiteralDefinitions  map[TempID]LiteralDefinition
)

func (m *ResourceDefinitions) UnmarshalJSON(data []byte) error {
	return decodeUniqueKeys(data, (*map[TempID]ResourceDefinition)(m))
}

func (m *LiteralDefinitions) UnmarshalJSON(data []byte) error {
	return decodeUniqueKeys(data, (*map[TempID]LiteralDefinition)(m))
}

func decodeUniqueKeys[V any](data []byte, out *map[TempID]V) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*out = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("thingdef: definitions must be an object keyed by temp id, got %v", tok)
	}
	m := make(map[TempID]V)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key := TempID(tok.(string))
		if _, dup := m[key]; dup {
			return &errs.DuplicateTempIDError{ID: string(key)}
		}
		var v V
		if err := dec.Decode(&v); err != nil {
			return err
		}
		m[key] = v
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*out = m
	return nil
}

func (d Definitions) Empty() bool {
	return len(d.Resources) == 0 && len(d.Literals) == 0 && len(d.Statements) == 0
}

// ValidatedID is either Pending or Resolved.
type ValidatedID interface {
	isValidatedID()
}

// Pending is a declared temp id waiting to be created.
type Pending struct {
	TempID TempID
}

// Resolved is a thing that already exists in the store.
type Resolved struct {
	Thing graph.Thing
}

func (Pending) isValidatedID()  {}
func (Resolved) isValidatedID() {}

// ValidatedIDs maps every id seen in a payload to its resolution.
type ValidatedIDs map[string]ValidatedID

func (v ValidatedIDs) Clone() ValidatedIDs {
	out := make(ValidatedIDs, len(v))
	for k, x := range v {
		out[k] = x
	}
	return out
}

// PendingIDs lists the temp ids still waiting for creation, sorted.
func (v ValidatedIDs) PendingIDs() []TempID {
	out := make([]TempID, 0)
	for _, x := range v {
		if p, ok := x.(Pending); ok {
			out = append(out, p.TempID)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ThingID returns the persisted id for key once it is resolved.
func (v ValidatedIDs) ThingID(key string) (graph.ThingID, bool) {
	switch x := v[key].(type) {
	case Resolved:
		return x.Thing.ThingID(), true
	case Pending, nil:
		return "", false
	default:
		panic(fmt.Sprintf("thingdef: unexpected validated id %T", x))
	}
}

// BakedStatement is a resolved triple whose ends may still be pending.
type BakedStatement struct {
	Subject   ValidatedID
	Predicate graph.ThingID
	Object    ValidatedID
}

type NewLiteral struct {
	TempID TempID
	LiteralDefinition
}

type NewResource struct {
	TempID  TempID
	Label   string
	Classes []graph.ThingID
}

// Plan is the validator output consumed by the creator. Literals and
// Resources are sorted by temp id; Statements keep payload order.
type Plan struct {
	ValidatedIDs ValidatedIDs
	Literals     []NewLiteral
	Resources    []NewResource
	Statements   []BakedStatement
}

func (p Plan) Empty() bool {
	return len(p.Literals) == 0 && len(p.Resources) == 0 && len(p.Statements) == 0
}
