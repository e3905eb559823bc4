package valkey

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/manara/internal/db"
)

// CreateIndex creates an FT index from the given definition.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	args, err := def.CreateArgs()
	if err != nil {
		return err
	}

	cmd := s.b().Arbitrary("FT.CREATE").Args(args...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "already exists") {
			return db.ErrIndexExists
		}
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	return nil
}

// IndexExists checks index existence via FT.INFO; "unknown index name" means absent.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	_, err := s.indexInfo(ctx, name)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, db.ErrIndexNotFound) {
		return false, nil
	}
	return false, err
}

// IndexDocCount returns num_docs reported by FT.INFO.
func (s *Store) IndexDocCount(ctx context.Context, name string) (int64, error) {
	info, err := s.indexInfo(ctx, name)
	if err != nil {
		return 0, err
	}
	v, ok := info["num_docs"]
	if !ok {
		return 0, nil
	}
	var n float64
	if _, err := fmt.Sscan(v, &n); err != nil {
		return 0, fmt.Errorf("parse num_docs %q: %w", v, err)
	}
	return int64(n), nil
}

// indexInfo returns the scalar attributes of FT.INFO; nested values are skipped.
func (s *Store) indexInfo(ctx context.Context, name string) (map[string]string, error) {
	raw, err := s.do(ctx, s.b().Arbitrary("FT.INFO").Args(name).Build()).ToArray()
	if err != nil {
		if isRedisErr(err, "unknown index name") || isRedisErr(err, "not found") {
			return nil, db.ErrIndexNotFound
		}
		return nil, &db.Error{Op: db.OpIndexInfo, Err: err}
	}
	return parseFieldPairs(raw), nil
}
