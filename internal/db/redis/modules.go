package redis

import (
	"context"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/redisvec/internal/db"
)

// Capabilities lists loaded modules via MODULE LIST and resolves the search module.
func (s *Store) Capabilities(ctx context.Context) (db.Capabilities, error) {
	cmd := s.b().Arbitrary("MODULE", "LIST").Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return db.Capabilities{}, &db.Error{Op: db.OpModuleList, Err: err}
	}
	return db.NewCapabilities(parseModules(raw)), nil
}

// parseModules reads [[name, <n>, ver, <v>, ...], ...], or a list of maps under RESP3.
func parseModules(raw []rueidis.RedisMessage) []db.Module {
	modules := make([]db.Module, 0, len(raw))
	for _, entry := range raw {
		kv, ok := messagePairs(entry)
		if !ok {
			continue
		}
		var m db.Module
		for key, val := range kv {
			switch strings.ToLower(key) {
			case "name":
				m.Name, _ = messageString(val)
			case "ver":
				if v, ok := messageString(val); ok {
					m.Version, _ = strconv.Atoi(v)
				}
			}
		}
		if m.Name != "" {
			modules = append(modules, m)
		}
	}
	return modules
}

// HasSearchModule reports whether a supported search module is currently loaded.
func (s *Store) HasSearchModule(ctx context.Context) (bool, error) {
	caps, err := s.Capabilities(ctx)
	if err != nil {
		return false, err
	}
	return caps.HasSearch(), nil
}
