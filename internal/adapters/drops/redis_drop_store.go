package drops

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"truck-presence-service/internal/domain"
	"truck-presence-service/internal/platform/obs"
	"truck-presence-service/internal/ports"

	"github.com/redis/go-redis/v9"
)

// claimUnitScript appends a user to a drop's claimed list only when the drop
// exists, the user is not already in it and a unit remains. Negative results
// encode the rejection; a positive result is the new claimed count.
var claimUnitScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return -1
end
if redis.call('SISMEMBER', KEYS[3], ARGV[1]) == 1 then
	return -2
end
local qty = tonumber(redis.call('HGET', KEYS[1], 'quantity')) or 0
local n = redis.call('LLEN', KEYS[2])
if n >= qty then
	return -3
end
redis.call('RPUSH', KEYS[2], ARGV[1])
redis.call('SADD', KEYS[3], ARGV[1])
return n + 1
`)

// RedisDropStore keeps drop records in Redis so every instance of the
// service shares one quantity counter per drop.
//
// Layout per drop (the braces keep the keys in one cluster slot):
//
//	drop:{id}           hash  vendor_id, title, quantity, expires_at (unix ms)
//	drop:{id}:claimed   list  user ids in claim order
//	drop:{id}:claimers  set   user ids, for membership checks
type RedisDropStore struct {
	RDB redis.UniversalClient
}

func NewRedisDropStore(rdb redis.UniversalClient) *RedisDropStore {
	return &RedisDropStore{RDB: rdb}
}

func dropKeys(id string) []string {
	base := "drop:{" + id + "}"
	return []string{base, base + ":claimed", base + ":claimers"}
}

func (s *RedisDropStore) GetDrop(ctx context.Context, dropID string) (_ *domain.Drop, err error) {
	defer obs.Time(ctx, "drops.redis.GetDrop")(&err)

	if s.RDB == nil {
		return nil, errors.New("redis drop store: client is nil")
	}

	keys := dropKeys(dropID)
	var fields *redis.MapStringStringCmd
	var claimed *redis.StringSliceCmd
	if _, err := s.RDB.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		fields = pipe.HGetAll(ctx, keys[0])
		claimed = pipe.LRange(ctx, keys[1], 0, -1)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("get drop %q: %w", dropID, err)
	}

	h := fields.Val()
	if len(h) == 0 {
		return nil, fmt.Errorf("get drop %q: %w", dropID, ports.ErrNotFound)
	}

	d, err := decodeDrop(dropID, h)
	if err != nil {
		return nil, fmt.Errorf("get drop %q: %w", dropID, err)
	}
	d.ClaimedBy = claimed.Val()
	return d, nil
}

func (s *RedisDropStore) ClaimUnit(ctx context.Context, dropID, userID string) (_ *domain.Drop, err error) {
	defer obs.Time(ctx, "drops.redis.ClaimUnit")(&err)

	if s.RDB == nil {
		return nil, errors.New("redis drop store: client is nil")
	}

	res, err := claimUnitScript.Run(ctx, s.RDB, dropKeys(dropID), userID).Int64()
	if err != nil {
		return nil, fmt.Errorf("claim unit %q: run script: %w", dropID, err)
	}

	switch res {
	case -1:
		return nil, fmt.Errorf("claim unit %q: %w", dropID, ports.ErrNotFound)
	case -2:
		return nil, fmt.Errorf("claim unit %q: %w", dropID, ports.ErrAlreadyClaimed)
	case -3:
		return nil, fmt.Errorf("claim unit %q: %w", dropID, ports.ErrFullyClaimed)
	}

	return s.GetDrop(ctx, dropID)
}

func (s *RedisDropStore) PutDrop(ctx context.Context, d *domain.Drop) (err error) {
	defer obs.Time(ctx, "drops.redis.PutDrop")(&err)

	if s.RDB == nil {
		return errors.New("redis drop store: client is nil")
	}
	if d == nil || strings.TrimSpace(d.ID) == "" {
		return errors.New("put drop: id must not be empty")
	}

	keys := dropKeys(d.ID)
	_, err = s.RDB.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, keys[0],
			"vendor_id", d.VendorID,
			"title", d.Title,
			"quantity", d.Quantity,
			"expires_at", d.ExpiresAt.UnixMilli(),
		)
		pipe.Del(ctx, keys[1], keys[2])
		if len(d.ClaimedBy) > 0 {
			members := make([]any, 0, len(d.ClaimedBy))
			for _, u := range d.ClaimedBy {
				members = append(members, u)
			}
			pipe.RPush(ctx, keys[1], members...)
			pipe.SAdd(ctx, keys[2], members...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("put drop %q: %w", d.ID, err)
	}
	return nil
}

func (s *RedisDropStore) DeleteDrop(ctx context.Context, dropID string) (err error) {
	defer obs.Time(ctx, "drops.redis.DeleteDrop")(&err)

	if s.RDB == nil {
		return errors.New("redis drop store: client is nil")
	}
	if err := s.RDB.Del(ctx, dropKeys(dropID)...).Err(); err != nil {
		return fmt.Errorf("delete drop %q: %w", dropID, err)
	}
	return nil
}

func decodeDrop(id string, h map[string]string) (*domain.Drop, error) {
	qty, err := strconv.Atoi(h["quantity"])
	if err != nil {
		return nil, fmt.Errorf("decode quantity: %w", err)
	}
	ms, err := strconv.ParseInt(h["expires_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("decode expires_at: %w", err)
	}

	return &domain.Drop{
		ID:        id,
		VendorID:  h["vendor_id"],
		Title:     h["title"],
		Quantity:  qty,
		ExpiresAt: time.UnixMilli(ms),
	}, nil
}
