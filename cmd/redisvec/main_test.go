package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/redis/rueidis"
	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/kailas-cloud/redisvec"
	"github.com/kailas-cloud/redisvec/internal/config"
)

const testConfig = `
http:
  port: 8080
redis:
  addrs: ["localhost:6379"]
index:
  name: notes
  vector:
    dims: 3
  metadata:
    - name: source
      type: tag
    - name: year
      type: numeric
`

// --- helpers ---

func newTestApp(t *testing.T) (*app, *mock.Client) {
	t.Helper()
	cfg, err := config.Parse([]byte(testConfig))
	if err != nil {
		t.Fatalf("config.Parse: %v", err)
	}

	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)
	c.EXPECT().Close().AnyTimes()
	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.Result(mock.RedisString("PONG")))
	c.EXPECT().
		Do(gomock.Any(), mock.Match("MODULE", "LIST")).
		Return(mock.Result(mock.RedisArray(
			mock.RedisArray(
				mock.RedisString("name"), mock.RedisString("search"),
				mock.RedisString("ver"), mock.RedisInt64(20809),
			),
		)))

	return &app{
		env:    "test",
		cfg:    cfg,
		logger: zap.NewNop(),
		extra: []redisvec.Option{
			redisvec.WithClient(c),
			redisvec.WithReadinessTimeout(0),
			redisvec.WithEmbedder(redisvec.EmbedFunc(func(context.Context, string) ([]float32, error) {
				return []float32{1, 0, 0}, nil
			})),
		},
	}, c
}

func searchReply() rueidis.RedisResult {
	return mock.Result(mock.RedisArray(
		mock.RedisInt64(2),
		mock.RedisString("doc:notes:a"),
		mock.RedisArray(
			mock.RedisString("source"), mock.RedisString("wiki"),
			mock.RedisString("content"), mock.RedisString("alpha"),
			mock.RedisString("vector_score"), mock.RedisString("0.2"),
		),
		mock.RedisString("doc:notes:b"),
		mock.RedisArray(
			mock.RedisString("content"), mock.RedisString("beta"),
			mock.RedisString("vector_score"), mock.RedisString("0.8"),
		),
	))
}

// --- tests ---

func TestRootCmd_Subcommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"serve", "index", "ingest", "search", "version"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
	if root.PersistentFlags().Lookup("config") == nil || root.PersistentFlags().Lookup("env") == nil {
		t.Error("expected persistent --config and --env flags")
	}
}

func TestVersionCmd(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	if err := root.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(out.String(), "redisvec dev") {
		t.Errorf("output = %q", out.String())
	}
}

func TestLoadApp_MissingConfigFile(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"index", "info", "--config", t.TempDir() + "/missing.yaml"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})

	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "loading config") {
		t.Fatalf("expected config error, got %v", err)
	}
}

func TestBuildEmbedder(t *testing.T) {
	cfg, err := config.Parse([]byte(testConfig))
	if err != nil {
		t.Fatalf("config.Parse: %v", err)
	}
	if e := buildEmbedder(cfg.Embedding, zap.NewNop()); e != nil {
		t.Errorf("expected nil embedder without a model, got %T", e)
	}

	cfg.Embedding.Model = "text-embedding-3-small"
	if e := buildEmbedder(cfg.Embedding, zap.NewNop()); e == nil {
		t.Error("expected an embedder when a model is configured")
	}
}

func TestPrintIndex(t *testing.T) {
	rt, _ := newTestApp(t)

	var out bytes.Buffer
	err := withStore(context.Background(), rt, func(ctx context.Context, s *redisvec.Store) error {
		return printIndex(ctx, &out, s)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"notes", "doc:notes", "dimensions:   3", "range search: true"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestIndexDrop(t *testing.T) {
	rt, c := newTestApp(t)
	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.DROPINDEX", "notes")).
		Return(mock.Result(mock.RedisError("Unknown Index name")))

	err := withStore(context.Background(), rt, func(ctx context.Context, s *redisvec.Store) error {
		dropped, err := s.DropIndex(ctx, false)
		if dropped {
			t.Error("expected dropped=false for a missing index")
		}
		return err
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSearch_RelevanceThreshold(t *testing.T) {
	rt, c := newTestApp(t)
	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH" && strings.HasPrefix(cmd[2], "(@source:{wiki})=>[KNN 2 ")
		})).
		Return(searchReply())

	cmder := &searchCommander{query: "alpha", k: 2, minRelevance: 0.5, filter: `{"field":"source","value":"wiki"}`}
	var hits []hit
	err := withStore(context.Background(), rt, func(ctx context.Context, s *redisvec.Store) error {
		var err error
		hits, err = cmder.search(ctx, s, true, false)
		return err
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 1 || hits[0].Key != "doc:notes:a" {
		t.Fatalf("hits = %+v", hits)
	}
	if hits[0].Distance == nil || *hits[0].Distance != 0.2 {
		t.Errorf("distance = %v", hits[0].Distance)
	}
}

func TestSearch_Range(t *testing.T) {
	rt, c := newTestApp(t)
	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH" && strings.Contains(cmd[2], "VECTOR_RANGE")
		})).
		Return(searchReply())

	cmder := &searchCommander{query: "alpha", k: 5, maxDistance: 0.3}
	var hits []hit
	err := withStore(context.Background(), rt, func(ctx context.Context, s *redisvec.Store) error {
		var err error
		hits, err = cmder.search(ctx, s, false, true)
		return err
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 2 || hits[0].Distance != nil {
		t.Errorf("range hits should carry no scores: %+v", hits)
	}
}

func TestSearch_BadFilter(t *testing.T) {
	tests := []struct {
		name   string
		filter string
	}{
		{"malformed json", `{"field":`},
		{"undeclared field", `{"field":"author","value":"x"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt, _ := newTestApp(t)
			err := withStore(context.Background(), rt, func(ctx context.Context, s *redisvec.Store) error {
				_, err := (&searchCommander{query: "q", k: 1, filter: tt.filter}).search(ctx, s, false, false)
				return err
			})
			if !errors.Is(err, redisvec.ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestWriteHits(t *testing.T) {
	d, r := 0.25, 0.75
	hits := []hit{{
		Key:       "doc:notes:a",
		Content:   "alpha  beta\n gamma",
		Metadata:  map[string]any{"year": 2021, "source": "wiki"},
		Distance:  &d,
		Relevance: &r,
	}}

	var out bytes.Buffer
	if err := writeHits(&out, hits); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"doc:notes:a", "distance=0.2500", "source=wiki year=2021", "alpha beta gamma"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}

	out.Reset()
	if err := writeHits(&out, nil); err != nil || !strings.Contains(out.String(), "no results") {
		t.Errorf("empty output = %q, %v", out.String(), err)
	}
}

func TestWriteJSONHits(t *testing.T) {
	var out bytes.Buffer
	if err := writeJSONHits(&out, []hit{{Key: "k1", Content: "a"}, {Key: "k2", Content: "b"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 || lines[0] != `{"key":"k1","content":"a"}` {
		t.Errorf("lines = %q", lines)
	}
}

func TestPreview_Truncates(t *testing.T) {
	long := strings.Repeat("é", previewRunes+10)
	got := preview(long)
	if !strings.HasSuffix(got, "...") || len([]rune(got)) != previewRunes+3 {
		t.Errorf("preview length = %d", len([]rune(got)))
	}
	if preview("short") != "short" {
		t.Error("short content should be unchanged")
	}
}
