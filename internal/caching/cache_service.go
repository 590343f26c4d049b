package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"medbill/internal/config"
	"medbill/internal/models"
)

// CacheService caches remote-derived billing data. Entries are snapshots of
// server state; every bill mutation invalidates the affected keys so the next
// read refetches.
type CacheService interface {
	// Computed bill caching
	GetBill(ctx context.Context, billUUID string) (*models.ComputedBill, error)
	SetBill(ctx context.Context, bill *models.ComputedBill, ttl time.Duration) error
	DeleteBill(ctx context.Context, billUUID string) error

	// Dashboard metrics caching
	GetMetrics(ctx context.Context, key string) (*models.BillMetrics, error)
	SetMetrics(ctx context.Context, key string, metrics *models.BillMetrics, ttl time.Duration) error

	// Payment mode caching
	GetPaymentModes(ctx context.Context) ([]models.PaymentMode, error)
	SetPaymentModes(ctx context.Context, modes []models.PaymentMode, ttl time.Duration) error

	// Cache invalidation
	InvalidateMetrics(ctx context.Context) error
}

type redisCacheService struct {
	client *redis.Client
}

// NewRedisCacheService creates a Redis-backed cache service. A failed ping is
// logged, not fatal; the service degrades to cache misses.
func NewRedisCacheService(cfg config.RedisConfig) CacheService {
	addr := cfg.Addr
	if hostPort := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://"); hostPort != addr {
		addr = hostPort
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Printf("WARN: Redis ping failed on initialization: %v (address: %s)", pingErr, addr)
	}

	return &redisCacheService{client: client}
}

func billKey(billUUID string) string {
	return fmt.Sprintf("medbill:bill:%s", billUUID)
}

func metricsKey(key string) string {
	return fmt.Sprintf("medbill:metrics:%s", key)
}

const paymentModesKey = "medbill:paymentModes"

func (r *redisCacheService) GetBill(ctx context.Context, billUUID string) (*models.ComputedBill, error) {
	data, err := r.client.Get(ctx, billKey(billUUID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get bill from cache: %w", err)
	}

	var bill models.ComputedBill
	if err := json.Unmarshal(data, &bill); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached bill: %w", err)
	}
	return &bill, nil
}

func (r *redisCacheService) SetBill(ctx context.Context, bill *models.ComputedBill, ttl time.Duration) error {
	data, err := json.Marshal(bill)
	if err != nil {
		return fmt.Errorf("failed to marshal bill for cache: %w", err)
	}
	return r.client.Set(ctx, billKey(bill.UUID), data, ttl).Err()
}

func (r *redisCacheService) DeleteBill(ctx context.Context, billUUID string) error {
	return r.client.Del(ctx, billKey(billUUID)).Err()
}

func (r *redisCacheService) GetMetrics(ctx context.Context, key string) (*models.BillMetrics, error) {
	data, err := r.client.Get(ctx, metricsKey(key)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get metrics from cache: %w", err)
	}

	var metrics models.BillMetrics
	if err := json.Unmarshal(data, &metrics); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached metrics: %w", err)
	}
	return &metrics, nil
}

func (r *redisCacheService) SetMetrics(ctx context.Context, key string, metrics *models.BillMetrics, ttl time.Duration) error {
	data, err := json.Marshal(metrics)
	if err != nil {
		return fmt.Errorf("failed to marshal metrics for cache: %w", err)
	}
	return r.client.Set(ctx, metricsKey(key), data, ttl).Err()
}

func (r *redisCacheService) GetPaymentModes(ctx context.Context) ([]models.PaymentMode, error) {
	data, err := r.client.Get(ctx, paymentModesKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get payment modes from cache: %w", err)
	}

	var modes []models.PaymentMode
	if err := json.Unmarshal(data, &modes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached payment modes: %w", err)
	}
	return modes, nil
}

func (r *redisCacheService) SetPaymentModes(ctx context.Context, modes []models.PaymentMode, ttl time.Duration) error {
	data, err := json.Marshal(modes)
	if err != nil {
		return fmt.Errorf("failed to marshal payment modes for cache: %w", err)
	}
	return r.client.Set(ctx, paymentModesKey, data, ttl).Err()
}

// InvalidateMetrics drops every cached metrics rollup. Called after bill
// mutations so the dashboard never serves a rollup computed before the
// change.
func (r *redisCacheService) InvalidateMetrics(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, "medbill:metrics:*", 100).Result()
		if err != nil {
			return fmt.Errorf("failed to scan metrics cache keys: %w", err)
		}
		if len(keys) > 0 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("failed to delete metrics cache keys: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}
