package research

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mohammad-safakhou/bullbear/internal/debate"
)

// Cache is a redis read-through decorator around any research provider.
// Research data moves slowly relative to debate traffic, so repeated sessions
// on the same ticker reuse the warehouse and index results.
type Cache struct {
	inner  debate.ResearchProvider
	rdb    *redis.Client
	ttl    time.Duration
	logger *log.Logger
}

// OpenCacheConn connects to redis and verifies the connection.
func OpenCacheConn(ctx context.Context, host, port, password string, db int, timeout time.Duration) (*redis.Client, error) {
	if port == "" {
		port = "6379"
	}
	client := redis.NewClient(&redis.Options{
		Addr:        fmt.Sprintf("%s:%s", host, port),
		DialTimeout: timeout,
		Password:    password,
		DB:          db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func NewCache(inner debate.ResearchProvider, rdb *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Cache{
		inner:  inner,
		rdb:    rdb,
		ttl:    ttl,
		logger: log.New(log.Writer(), "[RCACHE] ", log.LstdFlags),
	}
}

// through fetches from redis or falls back to fill, caching the result.
// Backend failures are never cached.
func through[T any](c *Cache, ctx context.Context, key string, fill func() (T, error)) (T, error) {
	var zero T
	if data, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var v T
		if err := json.Unmarshal(data, &v); err == nil {
			return v, nil
		}
		// corrupt entry, drop it and refill
		c.rdb.Del(ctx, key)
	} else if err != redis.Nil {
		c.logger.Printf("cache read %s: %v", key, err)
	}

	v, err := fill()
	if err != nil {
		return zero, err
	}
	if data, err := json.Marshal(v); err == nil {
		if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.logger.Printf("cache write %s: %v", key, err)
		}
	}
	return v, nil
}

func (c *Cache) key(parts ...interface{}) string {
	k := "research"
	for _, p := range parts {
		k += fmt.Sprintf(":%v", p)
	}
	return k
}

func (c *Cache) Metrics(ctx context.Context, ticker string) (map[string]interface{}, error) {
	return through(c, ctx, c.key("metrics", ticker), func() (map[string]interface{}, error) {
		return c.inner.Metrics(ctx, ticker)
	})
}

func (c *Cache) EarningsHistory(ctx context.Context, ticker string, limit int) ([]map[string]interface{}, error) {
	return through(c, ctx, c.key("earnings_history", ticker, limit), func() ([]map[string]interface{}, error) {
		return c.inner.EarningsHistory(ctx, ticker, limit)
	})
}

func (c *Cache) TechnicalIndicators(ctx context.Context, ticker string) (map[string]interface{}, error) {
	return through(c, ctx, c.key("technical_indicators", ticker), func() (map[string]interface{}, error) {
		return c.inner.TechnicalIndicators(ctx, ticker)
	})
}

func (c *Cache) Sentiment(ctx context.Context, ticker string) (map[string]interface{}, error) {
	return through(c, ctx, c.key("sentiment", ticker), func() (map[string]interface{}, error) {
		return c.inner.Sentiment(ctx, ticker)
	})
}

func (c *Cache) InsiderActivity(ctx context.Context, ticker string, limit int) ([]map[string]interface{}, error) {
	return through(c, ctx, c.key("insider_activity", ticker, limit), func() ([]map[string]interface{}, error) {
		return c.inner.InsiderActivity(ctx, ticker, limit)
	})
}

func (c *Cache) InstitutionalHoldings(ctx context.Context, ticker string, limit int) ([]map[string]interface{}, error) {
	return through(c, ctx, c.key("institutional_holdings", ticker, limit), func() ([]map[string]interface{}, error) {
		return c.inner.InstitutionalHoldings(ctx, ticker, limit)
	})
}

func (c *Cache) AnalystReports(ctx context.Context, query, ticker string, limit int) ([]debate.DocumentExcerpt, error) {
	return through(c, ctx, c.key(CollectionAnalystReports, ticker, limit, query), func() ([]debate.DocumentExcerpt, error) {
		return c.inner.AnalystReports(ctx, query, ticker, limit)
	})
}

func (c *Cache) EarningsTranscripts(ctx context.Context, query, ticker string, limit int) ([]debate.DocumentExcerpt, error) {
	return through(c, ctx, c.key(CollectionEarningsTranscripts, ticker, limit, query), func() ([]debate.DocumentExcerpt, error) {
		return c.inner.EarningsTranscripts(ctx, query, ticker, limit)
	})
}

func (c *Cache) Filings(ctx context.Context, query, ticker string, limit int) ([]debate.DocumentExcerpt, error) {
	return through(c, ctx, c.key(CollectionFilings, ticker, limit, query), func() ([]debate.DocumentExcerpt, error) {
		return c.inner.Filings(ctx, query, ticker, limit)
	})
}

func (c *Cache) Search(ctx context.Context, collection, query, ticker string, limit int) ([]debate.DocumentExcerpt, error) {
	return through(c, ctx, c.key("search", collection, ticker, limit, query), func() ([]debate.DocumentExcerpt, error) {
		return c.inner.Search(ctx, collection, query, ticker, limit)
	})
}

func (c *Cache) QueryLog() []debate.QueryLogEntry { return c.inner.QueryLog() }
