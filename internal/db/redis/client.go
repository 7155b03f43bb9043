package redis

import (
	"context"
	"crypto/tls"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/redisvec/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Config holds connection parameters for a Redis store.
type Config struct {
	Addrs    []string
	Username string
	Password string
	DB       int
	TLS      *tls.Config
}

// Store implements db.Store via rueidis for Redis Stack / Redis 8+.
type Store struct {
	client rueidis.Client
}

// NewStore creates a Redis store via rueidis.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		TLSConfig:    cfg.TLS,
		DisableCache: true,
		AlwaysRESP2:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Store{client: client}, nil
}

// NewStoreFromClient wraps an existing rueidis client speaking RESP2 or RESP3.
// Closing the Store closes the client.
func NewStoreFromClient(c rueidis.Client) *Store {
	return &Store{client: c}
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	cmd := s.client.B().Ping().Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady polls Ping until the store responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for database: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

func (s *Store) do(ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	return s.client.Do(ctx, cmd)
}

func (s *Store) b() rueidis.Builder {
	return s.client.B()
}

// isRedisErr checks if err is a Redis server error containing substr (case-insensitive).
func isRedisErr(err error, substr string) bool {
	re, ok := rueidis.IsRedisErr(err)
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(re.Error()), strings.ToLower(substr))
}

// messageString renders a scalar reply as a string. Integers and doubles are formatted;
// arrays and nils are reported as not-a-string.
func messageString(m rueidis.RedisMessage) (string, bool) {
	switch {
	case m.IsString():
		s, err := m.ToString()
		return s, err == nil
	case m.IsInt64():
		n, err := m.ToInt64()
		return strconv.FormatInt(n, 10), err == nil
	case m.IsFloat64():
		f, err := m.ToFloat64()
		return strconv.FormatFloat(f, 'g', -1, 64), err == nil
	default:
		return "", false
	}
}

// messageArray returns the elements of an array reply, or false for any other type.
func messageArray(m rueidis.RedisMessage) ([]rueidis.RedisMessage, bool) {
	if !m.IsArray() {
		return nil, false
	}
	arr, err := m.ToArray()
	return arr, err == nil
}

// messagePairs returns the key/value entries of a RESP2 flat array or a RESP3 map.
// A trailing key without a value and non-string keys are dropped.
func messagePairs(m rueidis.RedisMessage) (map[string]rueidis.RedisMessage, bool) {
	if m.IsMap() {
		kv, err := m.ToMap()
		return kv, err == nil
	}
	arr, ok := messageArray(m)
	if !ok {
		return nil, false
	}
	kv := make(map[string]rueidis.RedisMessage, len(arr)/2)
	for i := 0; i+1 < len(arr); i += 2 {
		if k, ok := messageString(arr[i]); ok {
			kv[k] = arr[i+1]
		}
	}
	return kv, true
}
