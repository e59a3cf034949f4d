package readingcache

import (
	"context"
	"path"
	"sort"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Memory is an in-process Backend on top of go-cache.
type Memory struct {
	c *gocache.Cache
}

func NewMemory(defaultTTL time.Duration) *Memory {
	if defaultTTL <= 0 {
		defaultTTL = gocache.NoExpiration
	}
	return &Memory{c: gocache.New(defaultTTL, 10*time.Minute)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, ErrMiss
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, ErrMiss
	}
	return b, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	m.c.Set(key, value, ttl)
	return nil
}

func (m *Memory) Delete(_ context.Context, keys ...string) (int, error) {
	n := 0
	for _, k := range keys {
		if _, ok := m.c.Get(k); ok {
			n++
		}
		m.c.Delete(k)
	}
	return n, nil
}

// Keys returns the live keys matching pattern, sorted.
func (m *Memory) Keys(_ context.Context, pattern string) ([]string, error) {
	var out []string
	for k := range m.c.Items() {
		ok, err := path.Match(pattern, k)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) Info(context.Context) (BackendInfo, error) {
	return BackendInfo{Driver: "memory", Keys: int64(m.c.ItemCount())}, nil
}

func (m *Memory) Close() error {
	m.c.Flush()
	return nil
}
