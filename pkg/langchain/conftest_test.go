package langchain

import (
	"context"
	"errors"
	"testing"

	"github.com/redis/rueidis"
	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/kailas-cloud/redisvec"
)

// --- Mocks ---

// fakeLCEmbedder is a langchaingo embedder returning fixed vectors.
type fakeLCEmbedder struct {
	vector    []float32
	err       error
	docCalls  int
	queryCall int
}

func (f *fakeLCEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	f.docCalls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = f.vector
	}
	return out, nil
}

func (f *fakeLCEmbedder) EmbedQuery(_ context.Context, _ string) ([]float32, error) {
	f.queryCall++
	if f.err != nil {
		return nil, f.err
	}
	return f.vector, nil
}

var errProvider = errors.New("provider down")

// --- helpers ---

func newTestStore(t *testing.T, opts ...redisvec.Option) (*redisvec.Store, *mock.Client) {
	t.Helper()
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

	base := []redisvec.Option{
		redisvec.WithClient(c),
		redisvec.WithIndexName("notes"),
		redisvec.WithDimensions(3),
		redisvec.WithMetadata(redisvec.TagField("source")),
	}
	s, err := redisvec.New(context.Background(), append(base, opts...)...)
	if err != nil {
		t.Fatalf("redisvec.New: %v", err)
	}
	t.Cleanup(s.Close)
	return s, c
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

func isSearch() gomock.Matcher {
	return mock.MatchFn(func(cmd []string) bool { return cmd[0] == "FT.SEARCH" })
}
