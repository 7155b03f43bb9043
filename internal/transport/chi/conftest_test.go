package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kailas-cloud/redisvec/internal/domain"
	domdoc "github.com/kailas-cloud/redisvec/internal/domain/document"
	"github.com/kailas-cloud/redisvec/internal/domain/schema"
	"github.com/kailas-cloud/redisvec/internal/domain/search/query"
	"github.com/kailas-cloud/redisvec/internal/domain/search/relevance"
	"github.com/kailas-cloud/redisvec/internal/domain/search/result"
	documentuc "github.com/kailas-cloud/redisvec/internal/usecase/document"
	healthuc "github.com/kailas-cloud/redisvec/internal/usecase/health"
	indexuc "github.com/kailas-cloud/redisvec/internal/usecase/index"
	ingestuc "github.com/kailas-cloud/redisvec/internal/usecase/ingest"
	searchuc "github.com/kailas-cloud/redisvec/internal/usecase/search"
)

// --- Fakes ---

type fakeIndexRepo struct {
	exists      bool
	dims        int
	dimsErr     error
	dropped     bool
	createCalls []schema.IndexDescriptor
	dropDD      bool
}

func (f *fakeIndexRepo) Create(_ context.Context, desc schema.IndexDescriptor) (bool, error) {
	f.createCalls = append(f.createCalls, desc)
	f.exists = true
	return true, nil
}

func (f *fakeIndexRepo) Drop(_ context.Context, _ string, dd bool) (bool, error) {
	f.dropDD = dd
	return f.dropped, nil
}

func (f *fakeIndexRepo) Exists(_ context.Context, _ string) (bool, error) { return f.exists, nil }

func (f *fakeIndexRepo) Dimensions(_ context.Context, _, _ string) (int, error) {
	return f.dims, f.dimsErr
}

type fakeWriter struct {
	batches [][]domdoc.Document
	failOn  int // 1-based batch number that fails; 0 never fails
	err     error
}

func (f *fakeWriter) WriteBatch(_ context.Context, _ schema.IndexDescriptor, docs []domdoc.Document) error {
	if f.failOn == len(f.batches)+1 {
		return f.err
	}
	f.batches = append(f.batches, docs)
	return nil
}

func (f *fakeWriter) docs() []domdoc.Document {
	var out []domdoc.Document
	for _, b := range f.batches {
		out = append(out, b...)
	}
	return out
}

type fakeSearchRepo struct {
	last      query.Query
	distances []float64
}

func (f *fakeSearchRepo) Search(
	_ context.Context, _ schema.IndexDescriptor, q query.Query, rel relevance.Func,
) ([]result.Result, error) {
	f.last = q
	out := make([]result.Result, len(f.distances))
	for i, d := range f.distances {
		doc := domdoc.Reconstruct("doc:notes:"+string(rune('a'+i)), "hit", map[string]any{"source": "wiki"})
		out[i] = result.New(doc, d, rel(d))
	}
	return out, nil
}

type rangeCaps bool

func (c rangeCaps) SupportsVectorRange() bool { return bool(c) }

type fakeDocRepo struct {
	outcome domain.DeleteOutcome
	keys    []string
}

func (f *fakeDocRepo) Delete(_ context.Context, keys []string) (domain.DeleteOutcome, error) {
	f.keys = keys
	return f.outcome, nil
}

type fakePinger struct{ err error }

func (f *fakePinger) Ping(context.Context) error { return f.err }

// --- Environment ---

type testEnv struct {
	index   *fakeIndexRepo
	writer  *fakeWriter
	search  *fakeSearchRepo
	docs    *fakeDocRepo
	db      *fakePinger
	handler http.Handler
}

type envOptions struct {
	dims      int
	batchSize int
	rangeOK   bool
	apiKeys   []string
}

func newTestEnv(t *testing.T, opts envOptions) *testEnv {
	t.Helper()

	meta, err := schema.NewMetadata(
		schema.MetadataField{Name: "source", Kind: schema.Tag},
		schema.MetadataField{Name: "year", Kind: schema.Numeric},
	)
	if err != nil {
		t.Fatalf("metadata: %v", err)
	}

	env := &testEnv{
		index:  &fakeIndexRepo{dimsErr: domain.ErrIndexNotFound},
		writer: &fakeWriter{},
		search: &fakeSearchRepo{},
		docs:   &fakeDocRepo{},
		db:     &fakePinger{},
	}

	embed := domain.EmbedFunc(func(_ context.Context, _ string) ([]float32, error) {
		return []float32{0.1, 0.2, 0.3}, nil
	})

	indexes := indexuc.New(env.index, nil)
	binding := indexuc.NewBinding(indexes, indexuc.Layout{
		Name:     "notes",
		Vector:   schema.NewVectorField(),
		Metadata: meta,
		Dims:     opts.dims,
	})
	srv := NewServer(
		binding,
		indexes,
		ingestuc.New(env.writer, embed, nil).WithBatchSize(opts.batchSize),
		searchuc.New(env.search, rangeCaps(opts.rangeOK), embed, nil),
		documentuc.New(env.docs, nil),
		healthuc.New(env.db, nil, nil),
		nil,
	)
	env.handler = NewRouter(srv, opts.apiKeys)
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode response (%d): %v", rr.Code, err)
	}
	return v
}
