// Package cache 提供缓存存取的薄封装
//
// 评分聚合走 cache-aside：读时先查缓存，未命中回源计算后写入；
// 评价变更时按确定的 key 直接删除，不做模式扫描。
package cache

import (
	"time"

	"market/pkg/redis"
)

// Store 缓存存取接口，测试中可替换为内存实现
type Store interface {
	// Get 返回缓存值和是否命中
	Get(key string) (string, bool)
	// Set 写入缓存，ttl 为过期时间
	Set(key string, value string, ttl time.Duration)
	// Forget 删除指定 key
	Forget(key string)
}

// RedisStore 基于 Redis 主库的缓存实现
type RedisStore struct {
	client *redis.RedisClient
	prefix string
}

// NewRedisStore 创建缓存实例
func NewRedisStore(prefix string) *RedisStore {
	return &RedisStore{
		client: redis.GetRedis(redis.MainDB),
		prefix: prefix,
	}
}

func (s *RedisStore) key(key string) string {
	return s.prefix + ":" + key
}

// Get 获取缓存值
func (s *RedisStore) Get(key string) (string, bool) {
	value := s.client.Get(s.key(key))
	return value, value != ""
}

// Set 写入缓存
func (s *RedisStore) Set(key string, value string, ttl time.Duration) {
	s.client.Set(s.key(key), value, ttl)
}

// Forget 删除缓存
func (s *RedisStore) Forget(key string) {
	s.client.Del(s.key(key))
}
