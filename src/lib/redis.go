package lib

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

func GetRedisClient() *redis.Client {
	if redisClient != nil {
		return redisClient
	}
	redisHost := os.Getenv("REDIS_HOST")
	opt, err := redis.ParseURL(redisHost)
	if err != nil {
		log.Printf("[redis] Error parsing connection string: %s\n", err.Error())
		return nil
	}
	rdb := redis.NewClient(opt)
	redisClient = rdb
	return rdb
}

const blacklistPrefix = "blacklist:"

// RedisRevocationStore keeps revoked invitation tokens. Entries are never
// removed explicitly; they expire once the token itself could no longer verify.
type RedisRevocationStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisRevocationStore(rdb *redis.Client, ttl time.Duration) *RedisRevocationStore {
	return &RedisRevocationStore{rdb: rdb, ttl: ttl}
}

func (s *RedisRevocationStore) Add(ctx context.Context, token string) error {
	if err := s.rdb.Set(ctx, blacklistKey(token), "1", s.ttl).Err(); err != nil {
		log.Printf("[redis] Failed to blacklist token: %s\n", err.Error())
		return err
	}
	return nil
}

func (s *RedisRevocationStore) Contains(ctx context.Context, token string) (bool, error) {
	n, err := s.rdb.Exists(ctx, blacklistKey(token)).Result()
	if err != nil {
		log.Printf("[redis] Failed to check blacklist: %s\n", err.Error())
		return false, err
	}
	return n > 0, nil
}

func blacklistKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return blacklistPrefix + hex.EncodeToString(sum[:])
}
