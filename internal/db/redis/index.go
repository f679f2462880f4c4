package redis

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/storeassist/internal/db"
)

// Server error fragments that map to db sentinels.
const (
	errIndexExists  = "index already exists"
	errUnknownIndex = "unknown index name"
)

// CreateIndex sends FT.CREATE for a validated definition.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if err := def.Validate(); err != nil {
		return fmt.Errorf("index %s: %w", def.Name, err)
	}

	cmd := s.b().Arbitrary("FT.CREATE").Args(def.Args()...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, errIndexExists) {
			return db.ErrIndexExists
		}
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	return nil
}

// DropIndex removes the index definition. Indexed documents are kept (no DD).
func (s *Store) DropIndex(ctx context.Context, name string) error {
	cmd := s.b().Arbitrary("FT.DROPINDEX").Args(name).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, errUnknownIndex) {
			return db.ErrIndexNotFound
		}
		return &db.Error{Op: db.OpDropIndex, Err: err}
	}
	return nil
}

// IndexExists asks FT.INFO about the index; an unknown name means absent.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	cmd := s.b().Arbitrary("FT.INFO").Args(name).Build()
	err := s.do(ctx, cmd).Error()
	switch {
	case err == nil:
		return true, nil
	case isRedisErr(err, errUnknownIndex):
		return false, nil
	default:
		return false, &db.Error{Op: db.OpIndexInfo, Err: err}
	}
}
