package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/promoavail/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	// DefaultMirrorTTL bounds how stale a warm-start snapshot may be (7 days)
	DefaultMirrorTTL = 7 * 24 * time.Hour
	// DefaultExtractionTTL is the default TTL for cached extractions (24 hours)
	DefaultExtractionTTL = 24 * time.Hour
)

// ErrNoMirror is returned by LoadCatalog when nothing has been mirrored yet.
var ErrNoMirror = errors.New("no catalog mirror in redis")

// Store mirrors the last good catalog snapshot and caches model extractions
type Store struct {
	client        *redis.Client
	mirrorTTL     time.Duration
	extractionTTL time.Duration
}

// NewStore creates a new Redis store. Zero TTLs take the defaults.
func NewStore(client *redis.Client, mirrorTTL, extractionTTL time.Duration) *Store {
	if mirrorTTL <= 0 {
		mirrorTTL = DefaultMirrorTTL
	}
	if extractionTTL <= 0 {
		extractionTTL = DefaultExtractionTTL
	}
	return &Store{
		client:        client,
		mirrorTTL:     mirrorTTL,
		extractionTTL: extractionTTL,
	}
}

// Mirror is a catalog snapshot as stored in redis
type Mirror struct {
	Products []domain.Product
	Synonyms []domain.Synonym
	LoadedAt time.Time
}

// SaveCatalog replaces the mirrored snapshot in a single MULTI/EXEC
func (s *Store) SaveCatalog(ctx context.Context, products []domain.Product, synonyms []domain.Synonym, loadedAt time.Time) error {
	productDocs, err := encodeAll(products)
	if err != nil {
		return fmt.Errorf("failed to marshal products: %w", err)
	}
	synonymDocs, err := encodeAll(synonyms)
	if err != nil {
		return fmt.Errorf("failed to marshal synonyms: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, KeyProducts, KeySynonyms, KeyMeta)
	if len(productDocs) > 0 {
		pipe.RPush(ctx, KeyProducts, productDocs...)
		pipe.Expire(ctx, KeyProducts, s.mirrorTTL)
	}
	if len(synonymDocs) > 0 {
		pipe.RPush(ctx, KeySynonyms, synonymDocs...)
		pipe.Expire(ctx, KeySynonyms, s.mirrorTTL)
	}
	pipe.HSet(ctx, KeyMeta,
		"loadedAt", loadedAt.UTC().Format(time.RFC3339Nano),
		"products", len(products),
		"synonyms", len(synonyms),
	)
	pipe.Expire(ctx, KeyMeta, s.mirrorTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save catalog mirror: %w", err)
	}
	return nil
}

// LoadCatalog reads the mirrored snapshot back in catalog order
func (s *Store) LoadCatalog(ctx context.Context) (Mirror, error) {
	meta, err := s.client.HGetAll(ctx, KeyMeta).Result()
	if err != nil {
		return Mirror{}, fmt.Errorf("failed to read catalog meta: %w", err)
	}
	if len(meta) == 0 {
		return Mirror{}, ErrNoMirror
	}

	loadedAt, err := time.Parse(time.RFC3339Nano, meta["loadedAt"])
	if err != nil {
		return Mirror{}, fmt.Errorf("invalid mirror timestamp: %w", err)
	}

	products, err := decodeList[domain.Product](ctx, s.client, KeyProducts)
	if err != nil {
		return Mirror{}, fmt.Errorf("failed to read mirrored products: %w", err)
	}
	synonyms, err := decodeList[domain.Synonym](ctx, s.client, KeySynonyms)
	if err != nil {
		return Mirror{}, fmt.Errorf("failed to read mirrored synonyms: %w", err)
	}

	return Mirror{Products: products, Synonyms: synonyms, LoadedAt: loadedAt}, nil
}

// Ping reports whether redis answers
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func encodeAll[T any](items []T) ([]any, error) {
	docs := make([]any, 0, len(items))
	for _, it := range items {
		data, err := json.Marshal(it)
		if err != nil {
			return nil, err
		}
		docs = append(docs, data)
	}
	return docs, nil
}

func decodeList[T any](ctx context.Context, client *redis.Client, key string) ([]T, error) {
	raw, err := client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, err
	}

	out := make([]T, 0, len(raw))
	for _, doc := range raw {
		var v T
		if err := json.Unmarshal([]byte(doc), &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
