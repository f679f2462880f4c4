package redis

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/kailas-cloud/storeassist/internal/db"
)

// XAdd appends an entry to a stream, trimming it approximately to maxLen when maxLen > 0.
// Fields are written in key order so entries are reproducible.
func (s *Store) XAdd(ctx context.Context, stream string, maxLen int64, fields map[string]string) (string, error) {
	if stream == "" {
		return "", fmt.Errorf("stream name is required")
	}
	if len(fields) == 0 {
		return "", fmt.Errorf("at least one field is required")
	}

	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	sort.Strings(names)

	args := make([]string, 0, 4+2*len(names))
	if maxLen > 0 {
		args = append(args, "MAXLEN", "~", strconv.FormatInt(maxLen, 10))
	}
	args = append(args, "*")
	for _, k := range names {
		args = append(args, k, fields[k])
	}

	cmd := s.b().Arbitrary("XADD").Keys(stream).Args(args...).Build()
	id, err := s.do(ctx, cmd).ToString()
	if err != nil {
		return "", &db.Error{Op: db.OpXAdd, Err: err}
	}
	return id, nil
}
