package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CostEstimator 短信计费估算服务
// 按目的地国家码区分单段价格，计费 = 单价 * 分段数
type CostEstimator struct {
	// 国家码前缀到单段价格的映射，键含 + 前缀
	rates map[string]decimal.Decimal
	// 无匹配前缀时的兜底单价
	defaultRate decimal.Decimal
}

// NewCostEstimator 创建计费估算服务
func NewCostEstimator(rates map[string]decimal.Decimal, defaultRate decimal.Decimal) *CostEstimator {
	copied := make(map[string]decimal.Decimal, len(rates))
	for k, v := range rates {
		copied[k] = v
	}
	return &CostEstimator{rates: copied, defaultRate: defaultRate}
}

// NewDefaultCostEstimator 使用内置费率表创建估算服务
func NewDefaultCostEstimator() *CostEstimator {
	return NewCostEstimator(map[string]decimal.Decimal{
		"+1":  decimal.NewFromFloat(0.0075),
		"+44": decimal.NewFromFloat(0.04),
		"+86": decimal.NewFromFloat(0.025),
		"+81": decimal.NewFromFloat(0.07),
	}, decimal.NewFromFloat(0.05))
}

// Estimate 估算一条短信的发送成本
// 前缀按最长匹配：+86 命中优先于 +8
func (e *CostEstimator) Estimate(phone PhoneNumber, content SmsContent) decimal.Decimal {
	rate := e.defaultRate
	longest := 0
	for prefix, r := range e.rates {
		if strings.HasPrefix(phone.String(), prefix) && len(prefix) > longest {
			rate = r
			longest = len(prefix)
		}
	}
	return rate.Mul(decimal.NewFromInt(int64(content.Segments())))
}
