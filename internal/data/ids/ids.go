// Package ids allocates identifiers for new things and statements.
package ids

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	pkgerrors "github.com/yungbote/kgcontent-backend/internal/pkg/errors"
)

// Kind prefixes every generated id so ids of different kinds never collide
// and always satisfy the persisted-id lexical rule.
type Kind string

const (
	KindResource  Kind = "R"
	KindLiteral   Kind = "L"
	KindStatement Kind = "S"
)

type Generator interface {
	NewID(ctx context.Context, kind Kind) (string, error)
}

// Random issues collision-free 128-bit ids.
type Random struct{}

func NewRandom() Random { return Random{} }

func (Random) NewID(_ context.Context, kind Kind) (string, error) {
	return string(kind) + strings.ReplaceAll(uuid.NewString(), "-", ""), nil
}

// Counter issues R1, R2, ... per kind from process memory. It restarts at 1
// with every process; wrap it in Unique so ids already stored are skipped.
type Counter struct {
	mu   sync.Mutex
	next map[Kind]int64
}

func NewCounter() *Counter {
	return &Counter{next: map[Kind]int64{}}
}

func (c *Counter) NewID(_ context.Context, kind Kind) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.next[kind]++
	return fmt.Sprintf("%s%d", kind, c.next[kind]), nil
}

// Redis issues counter ids from an atomic INCR per kind, safe across
// processes sharing one Redis.
type Redis struct {
	rdb    goredis.UniversalClient
	prefix string
}

func NewRedis(rdb goredis.UniversalClient, keyPrefix string) (*Redis, error) {
	if rdb == nil {
		return nil, fmt.Errorf("ids: redis client required")
	}
	keyPrefix = strings.TrimSpace(keyPrefix)
	if keyPrefix == "" {
		keyPrefix = "kgcontent:ids"
	}
	return &Redis{rdb: rdb, prefix: keyPrefix}, nil
}

func (r *Redis) NewID(ctx context.Context, kind Kind) (string, error) {
	n, err := r.rdb.Incr(ctx, r.key(kind)).Result()
	if err != nil {
		return "", fmt.Errorf("ids: incr %s: %w", kind, err)
	}
	return fmt.Sprintf("%s%d", kind, n), nil
}

func (r *Redis) key(kind Kind) string {
	return r.prefix + ":" + string(kind)
}

// Taken reports whether id is already held by the store.
type Taken func(ctx context.Context, kind Kind, id string) (bool, error)

// MaxAttempts bounds how many taken ids Unique skips before giving up.
const MaxAttempts = 64

// Unique draws from gen until taken reports a free id. The store's own
// insert check still guards the window between the lookup and the write.
type Unique struct {
	gen   Generator
	taken Taken
}

func NewUnique(gen Generator, taken Taken) *Unique {
	return &Unique{gen: gen, taken: taken}
}

func (u *Unique) NewID(ctx context.Context, kind Kind) (string, error) {
	for i := 0; i < MaxAttempts; i++ {
		id, err := u.gen.NewID(ctx, kind)
		if err != nil {
			return "", err
		}
		used, err := u.taken(ctx, kind, id)
		if err != nil {
			return "", fmt.Errorf("ids: check %s: %w", id, err)
		}
		if !used {
			return id, nil
		}
	}
	return "", fmt.Errorf("ids: no free %s id after %d attempts: %w", kind, MaxAttempts, pkgerrors.ErrConflict)
}
