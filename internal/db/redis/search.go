package redis

import (
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/redisvec/internal/db"
)

// Search runs a prepared FT.SEARCH request.
func (s *Store) Search(ctx context.Context, req *db.SearchRequest) (*db.SearchResult, error) {
	args, err := buildSearchArgs(req)
	if err != nil {
		return nil, err
	}

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	msg, err := s.do(ctx, cmd).ToMessage()
	if err != nil {
		if isUnknownIndex(err) {
			return nil, db.ErrIndexNotFound
		}
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	if msg.IsMap() {
		return parseSearchMap(msg)
	}
	raw, err := msg.ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}
	return parseSearchResult(raw)
}

// buildSearchArgs lays out arguments in the order FT.SEARCH expects:
// index query [RETURN n f...] [SORTBY f ASC|DESC] [LIMIT off num] [PARAMS 2n k v...] [DIALECT d].
// Params are emitted sorted by name so identical requests produce identical commands.
func buildSearchArgs(req *db.SearchRequest) ([]string, error) {
	if req.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if req.Query == "" {
		return nil, fmt.Errorf("query is required")
	}

	args := []string{req.IndexName, req.Query}

	if len(req.ReturnFields) > 0 {
		args = append(args, "RETURN", strconv.Itoa(len(req.ReturnFields)))
		args = append(args, req.ReturnFields...)
	}

	if req.SortBy != "" {
		dir := "ASC"
		if req.SortDesc {
			dir = "DESC"
		}
		args = append(args, "SORTBY", req.SortBy, dir)
	}

	if req.Limit >= 0 {
		args = append(args, "LIMIT", strconv.Itoa(req.Offset), strconv.Itoa(req.Limit))
	}

	if len(req.Params) > 0 {
		names := make([]string, 0, len(req.Params))
		for k := range req.Params {
			names = append(names, k)
		}
		slices.Sort(names)

		args = append(args, "PARAMS", strconv.Itoa(2*len(names)))
		for _, k := range names {
			args = append(args, k, req.Params[k])
		}
	}

	dialect := req.Dialect
	if dialect <= 0 {
		dialect = db.DefaultDialect
	}
	args = append(args, "DIALECT", strconv.Itoa(dialect))

	return args, nil
}

// parseSearchResult reads the RESP2 2-stride reply: [total, key1, fields1, key2, fields2, ...].
func parseSearchResult(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}

	entries := make([]db.SearchEntry, 0, (len(raw)-1)/2)
	for i := 1; i+1 < len(raw); i += 2 {
		key, ok := messageString(raw[i])
		if !ok {
			continue
		}

		// Keys that expire between match and load come back with a nil field list.
		fields, ok := messagePairs(raw[i+1])
		if !ok {
			continue
		}

		entries = append(entries, db.SearchEntry{
			Key:    key,
			Fields: parseFieldPairs(fields),
		})
	}

	return &db.SearchResult{Total: int(total), Entries: entries}, nil
}

// parseSearchMap reads the RESP3 reply: {total_results: n, results: [{id, extra_attributes}, ...]}.
func parseSearchMap(msg rueidis.RedisMessage) (*db.SearchResult, error) {
	kv, err := msg.ToMap()
	if err != nil {
		return nil, fmt.Errorf("parse reply: %w", err)
	}

	res := &db.SearchResult{}
	if total, ok := kv["total_results"]; ok {
		n, err := total.AsInt64()
		if err != nil {
			return nil, fmt.Errorf("parse total: %w", err)
		}
		res.Total = int(n)
	}

	rows, _ := messageArray(kv["results"])
	res.Entries = make([]db.SearchEntry, 0, len(rows))
	for _, row := range rows {
		fields, ok := messagePairs(row)
		if !ok {
			continue
		}
		key, ok := messageString(fields["id"])
		if !ok {
			continue
		}
		attrs, ok := messagePairs(fields["extra_attributes"])
		if !ok {
			continue
		}
		res.Entries = append(res.Entries, db.SearchEntry{Key: key, Fields: parseFieldPairs(attrs)})
	}
	return res, nil
}

func parseFieldPairs(fields map[string]rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields))
	for name, val := range fields {
		if v, ok := messageString(val); ok {
			m[name] = v
		}
	}
	return m
}
