package core

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisCatalog is a Redis-backed catalog backend. Records are stored as
// JSON under <namespace>:providers:<id> with set indexes per tag and per
// category so filtered queries avoid scanning the whole keyspace.
type RedisCatalog struct {
	client    *redis.Client
	namespace string
	logger    Logger
}

// NewRedisCatalog creates a Redis catalog client with the default
// namespace.
func NewRedisCatalog(redisURL string) (*RedisCatalog, error) {
	return NewRedisCatalogWithNamespace(redisURL, "switchyard")
}

// NewRedisCatalogWithNamespace creates a Redis catalog client with a
// custom key namespace.
func NewRedisCatalogWithNamespace(redisURL, namespace string) (*RedisCatalog, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL: %w", ErrInvalidConfiguration)
	}

	opt.PoolSize = 10
	opt.MinIdleConns = 5
	opt.MaxRetries = 3
	opt.MinRetryBackoff = 100 * time.Millisecond
	opt.MaxRetryBackoff = time.Second
	opt.DialTimeout = 5 * time.Second
	opt.ReadTimeout = 5 * time.Second
	opt.WriteTimeout = 5 * time.Second
	opt.PoolTimeout = 10 * time.Second

	client := redis.NewClient(opt)

	// Verify connectivity with a short retry loop so a briefly
	// unavailable Redis does not fail startup.
	for i := 0; i < 3; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = client.Ping(ctx).Err()
		cancel()
		if err == nil {
			break
		}
		if i < 2 {
			time.Sleep(time.Duration(i+1) * time.Second)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis after retries: %w", ErrConnectionFailed)
	}

	return &RedisCatalog{
		client:    client,
		namespace: namespace,
	}, nil
}

// SetLogger sets the logger for the catalog client.
func (r *RedisCatalog) SetLogger(logger Logger) {
	r.logger = logger
}

// Close releases the underlying Redis connection pool.
func (r *RedisCatalog) Close() error {
	return r.client.Close()
}

func (r *RedisCatalog) providerKey(id string) string {
	return fmt.Sprintf("%s:providers:%s", r.namespace, id)
}

func (r *RedisCatalog) tagKey(tag string) string {
	return fmt.Sprintf("%s:tags:%s", r.namespace, tag)
}

func (r *RedisCatalog) categoryKey(category string) string {
	return fmt.Sprintf("%s:categories:%s", r.namespace, category)
}

func (r *RedisCatalog) allKey() string {
	return fmt.Sprintf("%s:providers:all", r.namespace)
}

// Register stores a provider record and its indexes atomically.
func (r *RedisCatalog) Register(ctx context.Context, record *ProviderRecord) error {
	if record == nil || record.ID == "" {
		return fmt.Errorf("provider record requires an id: %w", ErrInvalidConfiguration)
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal provider %s: %w", record.ID, err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.providerKey(record.ID), data, 0)
	pipe.SAdd(ctx, r.allKey(), record.ID)
	for _, tag := range record.Tags {
		pipe.SAdd(ctx, r.tagKey(tag), record.ID)
	}
	if record.Category != "" {
		pipe.SAdd(ctx, r.categoryKey(record.Category), record.ID)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		if r.logger != nil {
			r.logger.Error("Failed to register provider atomically", map[string]interface{}{
				"provider_id": record.ID,
				"error":       err.Error(),
			})
		}
		return fmt.Errorf("failed to register provider %s: %w", record.ID, err)
	}

	if r.logger != nil {
		r.logger.Info("Provider registered", map[string]interface{}{
			"provider_id": record.ID,
			"category":    record.Category,
			"tags_count":  len(record.Tags),
			"tools_count": len(record.Tools),
		})
	}
	return nil
}

// Unregister removes a provider record and its index memberships.
func (r *RedisCatalog) Unregister(ctx context.Context, id string) error {
	key := r.providerKey(id)

	data, err := r.client.Get(ctx, key).Result()
	if err == nil {
		var record ProviderRecord
		if err := json.Unmarshal([]byte(data), &record); err == nil {
			pipe := r.client.TxPipeline()
			for _, tag := range record.Tags {
				pipe.SRem(ctx, r.tagKey(tag), id)
			}
			if record.Category != "" {
				pipe.SRem(ctx, r.categoryKey(record.Category), id)
			}
			pipe.SRem(ctx, r.allKey(), id)
			if _, err := pipe.Exec(ctx); err != nil && r.logger != nil {
				r.logger.Warn("Failed to remove provider from indexes", map[string]interface{}{
					"provider_id": id,
					"error":       err.Error(),
				})
			}
		}
	} else if err != redis.Nil {
		return fmt.Errorf("failed to load provider %s for unregistration: %w", id, err)
	}

	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to unregister provider %s: %w", id, err)
	}
	return nil
}

// Get returns the record with the given ID.
func (r *RedisCatalog) Get(ctx context.Context, id string) (*ProviderRecord, error) {
	data, err := r.client.Get(ctx, r.providerKey(id)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("provider %s: %w", id, ErrProviderNotFound)
		}
		return nil, fmt.Errorf("failed to get provider %s: %v: %w", id, err, ErrConnectionFailed)
	}

	var record ProviderRecord
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal provider %s: %w", id, err)
	}
	return &record, nil
}

// Query returns records matching the filter, ordered ascending by
// provider ID. Set indexes narrow the candidate IDs where possible; the
// remaining filter predicates are applied after fetching each record,
// the same way the in-memory backend evaluates them.
func (r *RedisCatalog) Query(ctx context.Context, filter CatalogFilter) ([]*ProviderRecord, error) {
	ids, err := r.candidateIDs(ctx, filter)
	if err != nil {
		return nil, err
	}

	var matched []*ProviderRecord
	for _, id := range ids {
		data, err := r.client.Get(ctx, r.providerKey(id)).Result()
		if err != nil {
			if err == redis.Nil {
				// Record deleted between index read and fetch; skip.
				continue
			}
			return nil, fmt.Errorf("failed to get provider %s: %v: %w", id, err, ErrConnectionFailed)
		}

		var record ProviderRecord
		if err := json.Unmarshal([]byte(data), &record); err != nil {
			// Skip malformed entries rather than failing the query.
			if r.logger != nil {
				r.logger.Warn("Skipping malformed provider record", map[string]interface{}{
					"provider_id": id,
					"error":       err.Error(),
				})
			}
			continue
		}

		if MatchesFilter(&record, filter) {
			matched = append(matched, &record)
		}
	}

	SortProviders(matched)
	return matched, nil
}

// candidateIDs collects candidate provider IDs from the set indexes.
// Tag and category indexes are unioned because filter criteria are
// alternatives, not conjunctions; an unindexable filter falls back to
// the full membership set.
func (r *RedisCatalog) candidateIDs(ctx context.Context, filter CatalogFilter) ([]string, error) {
	indexable := filter.Category != "" || len(filter.CapabilityTerms) > 0
	if !indexable || len(filter.QueryTerms) > 0 {
		// Query terms match against free text, which the set indexes
		// cannot answer; scan the full membership set.
		ids, err := r.client.SMembers(ctx, r.allKey()).Result()
		if err != nil && err != redis.Nil {
			return nil, fmt.Errorf("failed to list providers: %v: %w", err, ErrConnectionFailed)
		}
		return dedupeIDs(ids), nil
	}

	var ids []string
	if filter.Category != "" {
		members, err := r.client.SMembers(ctx, r.categoryKey(filter.Category)).Result()
		if err != nil && err != redis.Nil {
			return nil, fmt.Errorf("failed to query category index %s: %v: %w", filter.Category, err, ErrConnectionFailed)
		}
		ids = append(ids, members...)
	}
	for _, term := range filter.CapabilityTerms {
		members, err := r.client.SMembers(ctx, r.tagKey(term)).Result()
		if err != nil && err != redis.Nil {
			continue
		}
		ids = append(ids, members...)
	}
	return dedupeIDs(ids), nil
}

func dedupeIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	unique := ids[:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	return unique
}
