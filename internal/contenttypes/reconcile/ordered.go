// Package reconcile turns the difference between stored and requested
// values into graph writes.
package reconcile

type OpKind string

const (
	OpKeep   OpKind = "keep"
	OpCreate OpKind = "create"
	OpDelete OpKind = "delete"
)

// Op is one edit of an ordered collection. OldIndex is -1 for creates and
// NewIndex is -1 for deletes.
type Op struct {
	Kind     OpKind
	OldIndex int
	NewIndex int
}

// Moved reports whether a kept entry changes position.
func (o Op) Moved() bool { return o.Kind == OpKeep && o.OldIndex != o.NewIndex }

// Plan matches every new entry, in order, against the first unclaimed old
// entry that match accepts. Matched entries are kept, unmatched new entries
// are created, and the old entries left over are deleted. Keeps and creates
// come first in new-list order, deletes follow in old-list order.
//
// The scan is greedy, so some reorders produce a delete/create pair where a
// minimal diff would keep the entry.
func Plan[O, N any](old []O, next []N, match func(O, N) bool) []Op {
	claimed := make([]bool, len(old))
	ops := make([]Op, 0, len(old)+len(next))
	for j, n := range next {
		found := -1
		for i, o := range old {
			if !claimed[i] && match(o, n) {
				found = i
				break
			}
		}
		if found < 0 {
			ops = append(ops, Op{Kind: OpCreate, OldIndex: -1, NewIndex: j})
			continue
		}
		claimed[found] = true
		ops = append(ops, Op{Kind: OpKeep, OldIndex: found, NewIndex: j})
	}
	for i := range old {
		if !claimed[i] {
			ops = append(ops, Op{Kind: OpDelete, OldIndex: i, NewIndex: -1})
		}
	}
	return ops
}

// Equal compares two lists position by position.
func Equal[O, N any](old []O, next []N, match func(O, N) bool) bool {
	if len(old) != len(next) {
		return false
	}
	for i := range old {
		if !match(old[i], next[i]) {
			return false
		}
	}
	return true
}

// Unchanged reports whether ops neither creates, deletes nor moves anything.
func Unchanged(ops []Op) bool {
	for _, op := range ops {
		if op.Kind != OpKeep || op.Moved() {
			return false
		}
	}
	return true
}
