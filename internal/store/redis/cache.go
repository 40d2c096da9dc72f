package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// GetExtraction retrieves a cached extraction. A miss is not an error.
func (s *Store) GetExtraction(ctx context.Context, kind, text string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, ExtractionKey(kind, text)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil // Cache miss
		}
		return nil, false, fmt.Errorf("failed to get cached extraction: %w", err)
	}
	return data, true, nil
}

// SetExtraction stores an extraction with the configured TTL
func (s *Store) SetExtraction(ctx context.Context, kind, text string, payload []byte) error {
	if err := s.client.Set(ctx, ExtractionKey(kind, text), payload, s.extractionTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache extraction: %w", err)
	}
	return nil
}

// FlushExtractions removes every cached extraction and returns how many keys went.
func (s *Store) FlushExtractions(ctx context.Context) (int, error) {
	removed := 0
	iter := s.client.Scan(ctx, 0, KeyPrefixExtraction+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return removed, fmt.Errorf("failed to delete cache key: %w", err)
		}
		removed++
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("failed to flush extraction cache: %w", err)
	}
	return removed, nil
}
