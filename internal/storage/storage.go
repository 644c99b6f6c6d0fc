// Package storage is the key-value persistence boundary. Every record the
// application keeps (contacts, templates, SMTP settings, campaign log, login
// flag) is a JSON document stored under a fixed key.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/ignite/mailflow/internal/config"
)

// Keys used by the application, before the configured prefix is applied.
const (
	KeyContacts   = "contacts"
	KeyTemplates  = "templates"
	KeySMTPConfig = "smtp-config"
	KeyLogs       = "logs"
	KeyAuthFlag   = "auth-flag"
)

// KV stores JSON documents by key. A missing key is reported by found=false
// with a nil error on every backend.
type KV interface {
	Get(ctx context.Context, key string, dst any) (found bool, err error)
	Put(ctx context.Context, key string, v any) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// New opens the backend selected by cfg.Type and applies cfg.KeyPrefix.
func New(ctx context.Context, cfg config.StorageConfig) (KV, error) {
	var (
		kv  KV
		err error
	)
	switch strings.ToLower(cfg.Type) {
	case "memory":
		kv = NewMemory()
	case "", "local":
		kv, err = NewLocal(cfg.LocalPath)
	case "sqlite":
		kv, err = OpenSQLite(ctx, cfg.SQLitePath)
	case "postgres":
		kv, err = OpenPostgres(ctx, cfg.DatabaseURL)
	case "redis":
		kv, err = OpenRedis(ctx, cfg.RedisURL)
	case "s3":
		kv, err = NewS3(ctx, cfg)
	case "dynamodb":
		kv, err = NewDynamo(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s storage: %w", cfg.Type, err)
	}
	return WithPrefix(kv, cfg.KeyPrefix), nil
}

// WithPrefix namespaces every key of kv. An empty prefix returns kv unchanged.
func WithPrefix(kv KV, prefix string) KV {
	if prefix == "" {
		return kv
	}
	return &prefixed{kv: kv, prefix: prefix}
}

type prefixed struct {
	kv     KV
	prefix string
}

// Unwrap returns the underlying backend.
func (p *prefixed) Unwrap() KV { return p.kv }

func (p *prefixed) Get(ctx context.Context, key string, dst any) (bool, error) {
	return p.kv.Get(ctx, p.prefix+key, dst)
}

func (p *prefixed) Put(ctx context.Context, key string, v any) error {
	return p.kv.Put(ctx, p.prefix+key, v)
}

func (p *prefixed) Delete(ctx context.Context, key string) error {
	return p.kv.Delete(ctx, p.prefix+key)
}

func (p *prefixed) Close() error { return p.kv.Close() }

// Unwrap strips key prefixing so callers can reach backend-specific handles
// such as the *sql.DB or *redis.Client.
func Unwrap(kv KV) KV {
	for {
		u, ok := kv.(interface{ Unwrap() KV })
		if !ok {
			return kv
		}
		kv = u.Unwrap()
	}
}

// Memory keeps documents in process memory. Values are stored encoded so
// callers never share mutable state with the store.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, key string, dst any) (bool, error) {
	m.mu.RLock()
	raw, ok := m.data[key]
	m.mu.RUnlock()
	if !ok {
		return false, nil
	}
	return true, decode(key, raw, dst)
}

func (m *Memory) Put(_ context.Context, key string, v any) error {
	raw, err := encode(key, v)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data[key] = raw
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Close() error { return nil }

func encode(key string, v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshaling %s: %w", key, err)
	}
	return raw, nil
}

func decode(key string, raw []byte, dst any) error {
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("unmarshaling %s: %w", key, err)
	}
	return nil
}
