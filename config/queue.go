package config

import "market/pkg/config"

func init() {
	config.Add("queue", func() map[string]interface{} {
		return map[string]interface{}{
			"rate_limit":     config.Env("QUEUE_RATE_LIMIT", 1000),
			"rate_burst":     config.Env("QUEUE_RATE_BURST", 1000),
			"worker_count":   config.Env("QUEUE_WORKER_COUNT", 10),
			"max_retries":    config.Env("QUEUE_MAX_RETRIES", 3),
			"retry_interval": config.Env("QUEUE_RETRY_INTERVAL", 1),

			// 消费去重键的保留时长，秒
			"dedup_ttl": config.Env("QUEUE_DEDUP_TTL", 24*60*60),
		}
	})
}
