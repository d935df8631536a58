package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// BlocklistRepo records revoked token ids in Redis until their natural
// expiry.  Keys are "{user_id}:{jti}" with a TTL covering the remaining
// lifetime of the token they block; the key's existence alone means "this
// token is no longer honored", independent of its cryptographic validity.
//
// IsRevoked sits on the hot path of every authorization check, so all
// operations are a single round trip: lookups batch their keys into one
// EXISTS, writes go through one pipeline.
type BlocklistRepo struct{ RDB *redis.Client }

func NewBlocklistRepo(rdb *redis.Client) *BlocklistRepo { return &BlocklistRepo{RDB: rdb} }

// minRevokeTTL guards against a zero or negative TTL reaching Redis, which
// would either fail the SET or leave the key alive forever.
const minRevokeTTL = time.Second

func blocklistKey(userID, jti string) string { return userID + ":" + jti }

// Revoke marks one token id as revoked.  Idempotent: revoking an already
// revoked jti succeeds and keeps the larger of the two TTLs (SET NX never
// shortens an existing entry, EXPIRE GT only ever extends).
func (r *BlocklistRepo) Revoke(ctx context.Context, userID, jti string, ttl time.Duration) error {
	if ttl < minRevokeTTL {
		ttl = minRevokeTTL
	}
	key := blocklistKey(userID, jti)
	pipe := r.RDB.TxPipeline()
	pipe.SetNX(ctx, key, "revoked", ttl)
	pipe.ExpireGT(ctx, key, ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// RevokePair atomically revokes both halves of a session pair.  Both keys
// go through a single pipeline so there is no window where only one half is
// revoked; a concurrent check observes either none or both.
//
// The returned bool reports whether jti1 was already revoked.  Two rotations
// racing on the same refresh token both reach Redis, but only one SET NX
// claims the key; the loser sees true and must treat the token as spent.
func (r *BlocklistRepo) RevokePair(ctx context.Context, userID, jti1 string, ttl1 time.Duration, jti2 string, ttl2 time.Duration) (bool, error) {
	if ttl1 < minRevokeTTL {
		ttl1 = minRevokeTTL
	}
	if ttl2 < minRevokeTTL {
		ttl2 = minRevokeTTL
	}
	key1 := blocklistKey(userID, jti1)
	key2 := blocklistKey(userID, jti2)
	pipe := r.RDB.TxPipeline()
	set1 := pipe.SetNX(ctx, key1, "revoked", ttl1)
	pipe.ExpireGT(ctx, key1, ttl1)
	pipe.SetNX(ctx, key2, "revoked", ttl2)
	pipe.ExpireGT(ctx, key2, ttl2)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return !set1.Val(), nil
}

// IsRevoked reports whether any of the given jtis is blocklisted for the
// user.  All keys are checked with one EXISTS call, so a refresh-token
// check covering both halves of the pair still costs one round trip.
func (r *BlocklistRepo) IsRevoked(ctx context.Context, userID string, jtis ...string) (bool, error) {
	if len(jtis) == 0 {
		return false, nil
	}
	keys := make([]string, 0, len(jtis))
	for _, jti := range jtis {
		if jti == "" {
			continue
		}
		keys = append(keys, blocklistKey(userID, jti))
	}
	if len(keys) == 0 {
		return false, nil
	}
	n, err := r.RDB.Exists(ctx, keys...).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
