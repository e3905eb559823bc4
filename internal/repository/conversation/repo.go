// Package conversation persists chat turns as a capped Valkey list of JSON entries per conversation.
package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kailas-cloud/manara/internal/domain"
)

// store is the consumer interface for conversation storage (ISP).
type store interface {
	RPush(ctx context.Context, key string, values ...string) error
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	LTrim(ctx context.Context, key string, start, stop int64) error
	Expire(ctx context.Context, key string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// turn is the stored form of a domain.Message.
type turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Repo implements usecase/conversation.Repository on Valkey.
type Repo struct {
	store     store
	keyPrefix string
	maxTurns  int
	ttl       time.Duration
}

// New creates a conversation repository. maxTurns of zero keeps every turn;
// ttl of zero keeps idle conversations forever.
func New(s store, keyPrefix string, maxTurns int, ttl time.Duration) *Repo {
	return &Repo{store: s, keyPrefix: keyPrefix, maxTurns: maxTurns, ttl: ttl}
}

func (r *Repo) key(id string) string { return r.keyPrefix + "conversation:" + id }

// Load returns the stored turns oldest first. Unknown conversations are empty.
func (r *Repo) Load(ctx context.Context, id string) ([]domain.Message, error) {
	vals, err := r.store.LRange(ctx, r.key(id), 0, -1)
	if err != nil {
		return nil, fmt.Errorf("load conversation %s: %w", id, err)
	}
	out := make([]domain.Message, 0, len(vals))
	for i, v := range vals {
		var t turn
		if err := json.Unmarshal([]byte(v), &t); err != nil {
			return nil, fmt.Errorf("decode conversation %s turn %d: %w", id, i, err)
		}
		out = append(out, domain.Message{Role: t.Role, Content: t.Content})
	}
	return out, nil
}

// Append pushes turns, trims the list to the most recent maxTurns and refreshes the ttl.
func (r *Repo) Append(ctx context.Context, id string, turns ...domain.Message) error {
	if len(turns) == 0 {
		return nil
	}
	vals := make([]string, 0, len(turns))
	for _, m := range turns {
		data, err := json.Marshal(turn{Role: m.Role, Content: m.Content})
		if err != nil {
			return fmt.Errorf("encode conversation %s: %w", id, err)
		}
		vals = append(vals, string(data))
	}

	key := r.key(id)
	if err := r.store.RPush(ctx, key, vals...); err != nil {
		return fmt.Errorf("append conversation %s: %w", id, err)
	}
	if r.maxTurns > 0 {
		if err := r.store.LTrim(ctx, key, -int64(r.maxTurns), -1); err != nil {
			return fmt.Errorf("trim conversation %s: %w", id, err)
		}
	}
	if err := r.store.Expire(ctx, key, r.ttl); err != nil {
		return fmt.Errorf("expire conversation %s: %w", id, err)
	}
	return nil
}

// Clear deletes the conversation.
func (r *Repo) Clear(ctx context.Context, id string) error {
	if err := r.store.Del(ctx, r.key(id)); err != nil {
		return fmt.Errorf("clear conversation %s: %w", id, err)
	}
	return nil
}
