package config

import "market/pkg/config"

func init() {
	config.Add("services", func() map[string]interface{} {
		return map[string]interface{}{
			// 用户身份服务
			"identity": map[string]interface{}{
				"base_url": config.Env("IDENTITY_BASE_URL", "http://127.0.0.1:8081"),
				"timeout":  config.Env("IDENTITY_TIMEOUT", 3),
			},
			// 信用分服务
			"credit": map[string]interface{}{
				"base_url": config.Env("CREDIT_BASE_URL", "http://127.0.0.1:8082"),
				"timeout":  config.Env("CREDIT_TIMEOUT", 5),
			},
			// 站内通知服务
			"notify": map[string]interface{}{
				"base_url": config.Env("NOTIFY_BASE_URL", "http://127.0.0.1:8083"),
				"timeout":  config.Env("NOTIFY_TIMEOUT", 3),
			},
		}
	})
}
