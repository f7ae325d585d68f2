package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	kds "puestitoKds/internal/modules/kds/domain"
	"puestitoKds/internal/modules/kitchen/application/port"
	"puestitoKds/internal/modules/kitchen/domain"
)

const maxTxRetries = 5

// RedisOrderStore shares active orders between server replicas. Each order is
// a JSON document; a sorted set indexes active orders by opening time and a
// set per mesa key lists its orders. Item updates run under WATCH so that
// concurrent completions do not overwrite each other.
type RedisOrderStore struct {
	client    redis.UniversalClient
	prefix    string
	retention time.Duration
}

// NewRedisOrderStore keeps finished orders for retention so late duplicates of
// the same order id are still detected.
func NewRedisOrderStore(client redis.UniversalClient, prefix string, retention time.Duration) *RedisOrderStore {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "kds"
	}
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	return &RedisOrderStore{client: client, prefix: prefix, retention: retention}
}

func (s *RedisOrderStore) CreateOrder(ctx context.Context, order domain.Order) error {
	data, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("encode order: %w", err)
	}
	created, err := s.client.SetNX(ctx, s.orderKey(order.ClientUUID), data, 0).Result()
	if err != nil {
		return fmt.Errorf("store order: %w", err)
	}
	if !created {
		return port.ErrDuplicateOrder
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, s.activeKey(), redis.Z{Score: float64(order.OpenedAt.UnixNano()), Member: order.ClientUUID})
		pipe.SAdd(ctx, s.mesaKey(order.MesaKey), order.ClientUUID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("index order: %w", err)
	}
	return nil
}

func (s *RedisOrderStore) PendingTickets(ctx context.Context, destino kds.Destination) ([]kds.TicketGroup, error) {
	ids, err := s.client.ZRange(ctx, s.activeKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list active orders: %w", err)
	}
	if len(ids) == 0 {
		return []kds.TicketGroup{}, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.orderKey(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load active orders: %w", err)
	}

	orders := make([]domain.Order, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var order domain.Order
		if err := json.Unmarshal([]byte(raw), &order); err != nil {
			return nil, fmt.Errorf("decode order %s: %w", ids[i], err)
		}
		orders = append(orders, order)
	}
	return domain.GroupPending(orders, destino), nil
}

func (s *RedisOrderStore) MarkReady(ctx context.Context, mesaKey string, destino kds.Destination) (int, error) {
	return s.mutateMesa(ctx, mesaKey, func(o *domain.Order) int { return o.MarkReady(destino) })
}

func (s *RedisOrderStore) UpdateItemNote(ctx context.Context, mesaKey, menuItemID, note string) error {
	changed, err := s.mutateMesa(ctx, strings.TrimSpace(mesaKey), func(o *domain.Order) int { return o.UpdateNote(menuItemID, note) })
	if err != nil {
		return err
	}
	if changed == 0 {
		return port.ErrItemNotFound
	}
	return nil
}

func (s *RedisOrderStore) mutateMesa(ctx context.Context, mesaKey string, fn func(*domain.Order) int) (int, error) {
	ids, err := s.client.SMembers(ctx, s.mesaKey(mesaKey)).Result()
	if err != nil {
		return 0, fmt.Errorf("list orders of %s: %w", mesaKey, err)
	}
	total := 0
	for _, id := range ids {
		changed, err := s.mutateOrder(ctx, id, fn)
		if err != nil {
			return total, err
		}
		total += changed
	}
	return total, nil
}

func (s *RedisOrderStore) mutateOrder(ctx context.Context, id string, fn func(*domain.Order) int) (int, error) {
	key := s.orderKey(id)
	changed := 0
	txf := func(tx *redis.Tx) error {
		changed = 0
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return err
		}
		var order domain.Order
		if err := json.Unmarshal(data, &order); err != nil {
			return fmt.Errorf("decode order %s: %w", id, err)
		}
		n := fn(&order)
		if n == 0 {
			return nil
		}
		out, err := json.Marshal(order)
		if err != nil {
			return fmt.Errorf("encode order %s: %w", id, err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, 0)
			if !order.HasPending() {
				pipe.ZRem(ctx, s.activeKey(), id)
				pipe.SRem(ctx, s.mesaKey(order.MesaKey), id)
				pipe.Expire(ctx, key, s.retention)
			}
			return nil
		})
		if err == nil {
			changed = n
		}
		return err
	}

	for attempt := 0; attempt < maxTxRetries; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("update order %s: %w", id, err)
		}
		return changed, nil
	}
	return 0, fmt.Errorf("update order %s: %w", id, redis.TxFailedErr)
}

func (s *RedisOrderStore) orderKey(id string) string {
	return s.prefix + ":order:" + id
}

func (s *RedisOrderStore) activeKey() string {
	return s.prefix + ":orders:active"
}

func (s *RedisOrderStore) mesaKey(mesaKey string) string {
	return s.prefix + ":mesa:" + mesaKey
}

var _ port.OrderStore = (*RedisOrderStore)(nil)
