package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Public invoice view cache keys (QR access-code lookups)
const (
	PublicInvoiceKeyFmt = "public:invoice:%s"
	QuotationStatsKey   = "quotations:stats"
)

var client *redis.Client

// Init initializes the Redis connection. An empty addr disables caching; a
// failed ping degrades to no caching rather than failing startup.
func Init(addr, password string, db int) error {
	if addr == "" {
		return nil
	}

	client = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		// Close the failed client and set to nil for graceful degradation
		client.Close()
		client = nil
		return err
	}
	return nil
}

// GetClient returns the Redis client
func GetClient() *redis.Client {
	return client
}

// ============================================
// Generic Cache Functions
// ============================================

// GetCached returns cached data for a key
func GetCached(ctx context.Context, key string) ([]byte, bool) {
	if client == nil {
		return nil, false
	}
	data, err := client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// SetCached stores data with a TTL
func SetCached(ctx context.Context, key string, data []byte, ttl time.Duration) {
	if client == nil {
		return
	}
	client.Set(ctx, key, data, ttl)
}

// InvalidatePattern removes all keys matching a glob pattern
func InvalidatePattern(ctx context.Context, pattern string) {
	if client == nil {
		return
	}
	keys, err := client.Keys(ctx, pattern).Result()
	if err == nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

// InvalidateKeys removes specific cache keys
func InvalidateKeys(ctx context.Context, keys ...string) {
	if client == nil || len(keys) == 0 {
		return
	}
	client.Del(ctx, keys...)
}

// ============================================
// Public Invoice View Cache
// ============================================

// GetCachedPublicInvoice returns the cached public view for an access code
func GetCachedPublicInvoice(ctx context.Context, accessCode string) ([]byte, bool) {
	return GetCached(ctx, fmt.Sprintf(PublicInvoiceKeyFmt, accessCode))
}

// CachePublicInvoice caches a public invoice view for 5 minutes
func CachePublicInvoice(ctx context.Context, accessCode string, data []byte) {
	SetCached(ctx, fmt.Sprintf(PublicInvoiceKeyFmt, accessCode), data, 5*time.Minute)
}

// ============================================
// Entity-Based Cache Invalidators
// ============================================

// InvalidateInvoiceCaches clears invoice caches including the public view
// Called when: CreateInvoice, UpdateInvoice, DeleteInvoice, RecordPayment, UpdateStatus
func InvalidateInvoiceCaches(ctx context.Context, accessCode string) {
	InvalidatePattern(ctx, "invoices:*")
	if accessCode != "" {
		InvalidateKeys(ctx, fmt.Sprintf(PublicInvoiceKeyFmt, accessCode))
	}
}

// InvalidateQuotationCaches clears quotation list and stats caches
// Called when: CreateQuotation, UpdateQuotation, UpdateStatus, Convert, CreateVersion, ExpireSweep
func InvalidateQuotationCaches(ctx context.Context) {
	InvalidatePattern(ctx, "quotations:*")
	InvalidateKeys(ctx, QuotationStatsKey)
}

// InvalidateClientCaches clears client and vehicle caches
// Called when: CreateClient, UpdateClient, DeleteClient and vehicle mutations
func InvalidateClientCaches(ctx context.Context) {
	InvalidatePattern(ctx, "clients:*")
	InvalidatePattern(ctx, "vehicles:*")
}

// InvalidateCatalogCaches clears service and part catalog caches
// Called when: catalog mutations
func InvalidateCatalogCaches(ctx context.Context) {
	InvalidatePattern(ctx, "catalog:*")
}

// IsHealthy returns true if Redis connection is working
func IsHealthy() bool {
	if client == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return client.Ping(ctx).Err() == nil
}
