package domain

// ProviderSelector 推送服务商选择领域服务
// 按设备平台选择服务商，支持租户级覆盖
type ProviderSelector struct {
	// 租户级覆盖：tenantID -> platform -> provider
	tenantOverrides map[string]map[Platform]Provider
}

// NewProviderSelector 创建服务商选择器
func NewProviderSelector(tenantOverrides map[string]map[Platform]Provider) *ProviderSelector {
	return &ProviderSelector{tenantOverrides: tenantOverrides}
}

// defaultProviders 平台默认服务商
var defaultProviders = map[Platform]Provider{
	PlatformIOS:     ProviderAPNS,
	PlatformAndroid: ProviderFCM,
	PlatformWeb:     ProviderWebPush,
}

// Select 为通知选择服务商
func (s *ProviderSelector) Select(n *PushNotification) (Provider, error) {
	if overrides, ok := s.tenantOverrides[n.TenantID.String()]; ok {
		if p, ok := overrides[n.Platform]; ok {
			return p, nil
		}
	}
	if p, ok := defaultProviders[n.Platform]; ok {
		return p, nil
	}
	return "", ErrNoProviderForPlatform
}
