package redis

import (
	"context"
	"testing"

	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/kailas-cloud/storeassist/internal/db"
)

func TestSearchList_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH"
		})).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(2),
			mock.RedisString("doc:1"),
			mock.RedisArray(mock.RedisString("f"), mock.RedisString("v1")),
			mock.RedisString("doc:2"),
			mock.RedisArray(mock.RedisString("f"), mock.RedisString("v2")),
		)))

	s := NewStoreForTest(c)
	result, err := s.SearchList(context.Background(), "idx", "*", 0, 10, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Total != 2 {
		t.Fatalf("expected total 2, got %d", result.Total)
	}
	if len(result.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(result.Entries))
	}
}


func TestSearchText_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH" && cmd[1] == "idx" &&
				cmd[2] == "@title|description:(cargador|tesla)"
		})).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(1),
			mock.RedisString("doc:1"),
			mock.RedisString("0.85"),
			mock.RedisArray(
				mock.RedisString("$"),
				mock.RedisString(`{"id":"1"}`),
			),
		)))

	s := NewStoreForTest(c)
	result, err := s.SearchText(context.Background(), &db.TextQuery{
		IndexName:    "idx",
		Query:        "cargador tesla",
		Fields:       []string{"title", "description"},
		Limit:        10,
		ReturnFields: []string{"$"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Total != 1 {
		t.Fatalf("expected total 1, got %d", result.Total)
	}
	if result.Entries[0].Score < 0.84 || result.Entries[0].Score > 0.86 {
		t.Errorf("expected score ~0.85, got %f", result.Entries[0].Score)
	}
	if result.Entries[0].Fields["$"] != `{"id":"1"}` {
		t.Errorf("unexpected fields: %v", result.Entries[0].Fields)
	}
}

func TestSearchText_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), gomock.Any()).
		Return(mock.Result(mock.RedisArray(mock.RedisInt64(0))))

	s := NewStoreForTest(c)
	result, err := s.SearchText(context.Background(), &db.TextQuery{IndexName: "idx", Query: "nothing", Limit: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Total != 0 || len(result.Entries) != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
}

func TestSearchText_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), gomock.Any()).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	_, err := s.SearchText(context.Background(), &db.TextQuery{IndexName: "idx", Query: "x", Limit: 5})
	if !isDBError(err) {
		t.Fatalf("expected *db.Error, got %v", err)
	}
}

func TestSearchText_Validation(t *testing.T) {
	s := NewStoreForTest(nil)
	tests := []struct {
		name string
		q    db.TextQuery
	}{
		{"no index", db.TextQuery{Query: "x", Limit: 1}},
		{"no limit", db.TextQuery{IndexName: "idx", Query: "x"}},
		{"blank query", db.TextQuery{IndexName: "idx", Query: "   ", Limit: 1}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := s.SearchText(context.Background(), &tc.q); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestBuildTextQuery(t *testing.T) {
	tests := []struct {
		query  string
		fields []string
		want   string
	}{
		{"tesla", nil, "(tesla)"},
		{"cargador  tesla", []string{"title"}, "@title:(cargador|tesla)"},
		{"usb-c 3.0", []string{"title", "description"}, `@title|description:(usb\-c|3\.0)`},
		{"", []string{"title"}, ""},
	}
	for _, tc := range tests {
		if got := buildTextQuery(tc.query, tc.fields); got != tc.want {
			t.Errorf("buildTextQuery(%q, %v) = %q, want %q", tc.query, tc.fields, got, tc.want)
		}
	}
}

func TestEscapeQuery(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`hello "world" @user {tag}`, `hello \"world\" \@user \{tag\}`},
		{"voltaje:220", `voltaje\:220`},
		{"12v;5a,2.1/usb+c", `12v\;5a\,2\.1\/usb\+c`},
		{"que?cable#2&3", `que\?cable\#2\&3`},
		{`it's`, `it\'s`},
	}
	for _, tc := range tests {
		if got := escapeQuery(tc.in); got != tc.want {
			t.Errorf("escapeQuery(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSearchText_PunctuatedTermIsEscaped(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH" && cmd[2] == `@title:(voltaje\:220|cargador\?)`
		})).
		Return(mock.Result(mock.RedisArray(mock.RedisInt64(0))))

	s := NewStoreForTest(c)
	_, err := s.SearchText(context.Background(), &db.TextQuery{
		IndexName: "idx",
		Query:     "voltaje:220 cargador?",
		Fields:    []string{"title"},
		Limit:     5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
