package ctxutil

import (
	"context"
	"sync"
)

type writeJournalKey struct{}

type WriteKind string

const (
	WriteResource  WriteKind = "resource"
	WriteLiteral   WriteKind = "literal"
	WriteStatement WriteKind = "statement"
)

type Write struct {
	Kind WriteKind
	ID   string
}

// WriteJournal collects the graph writes made while serving one request.
type WriteJournal struct {
	mu     sync.Mutex
	writes []Write
}

func WithWriteJournal(ctx context.Context) (context.Context, *WriteJournal) {
	j := &WriteJournal{}
	return context.WithValue(Default(ctx), writeJournalKey{}, j), j
}

func GetWriteJournal(ctx context.Context) *WriteJournal {
	if ctx == nil {
		return nil
	}
	j, ok := ctx.Value(writeJournalKey{}).(*WriteJournal)
	if !ok {
		return nil
	}
	return j
}

func (j *WriteJournal) Record(kind WriteKind, id string) {
	if j == nil || id == "" {
		return
	}
	j.mu.Lock()
	j.writes = append(j.writes, Write{Kind: kind, ID: id})
	j.mu.Unlock()
}

// Entries returns the recorded writes in the order they happened.
func (j *WriteJournal) Entries() []Write {
	if j == nil {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]Write, len(j.writes))
	copy(out, j.writes)
	return out
}
