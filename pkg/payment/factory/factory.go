package factory

import (
	"fmt"

	"market/config"
	"market/pkg/payment/alipay"
	"market/pkg/payment/types"
	"market/pkg/payment/wechat"
)

// NewGateway 按提供商创建支付网关
func NewGateway(provider types.Provider, cfg interface{}) (types.Gateway, error) {
	switch provider {
	case types.ProviderWechat:
		wcfg, ok := cfg.(config.WechatConfig)
		if !ok {
			return nil, fmt.Errorf("invalid wechat config type")
		}
		return wechat.NewWechatGateway(wcfg)

	case types.ProviderAlipay:
		acfg, ok := cfg.(config.AlipayConfig)
		if !ok {
			return nil, fmt.Errorf("invalid alipay config type")
		}
		return alipay.NewAlipayGateway(acfg)

	default:
		return nil, fmt.Errorf("unsupported payment provider: %s", provider)
	}
}
