package engine

import (
	"math/big"
)

// Tier 捐赠档位。Name/Description/Amount 创建后不可变，
// DonatorCount 只增不减，Active 仅由所有者切换。
type Tier struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Amount       *big.Int `json:"amount"`
	DonatorCount uint64   `json:"donator_count"`
	Active       bool     `json:"active"`
}

// TierStore 单个活动的档位列表。插入顺序即索引顺序，
// 档位只停用不删除，索引永久稳定。
// TierStore 本身不做并发保护，由持有它的 CampaignLedger 统一加锁。
type TierStore struct {
	tiers []Tier
}

// Add 追加新档位，返回新档位的索引（等于追加前的长度）。
func (s *TierStore) Add(name, description string, amount *big.Int) (int, error) {
	if amount == nil || amount.Sign() <= 0 {
		return 0, ErrInvalidAmount
	}

	s.tiers = append(s.tiers, Tier{
		Name:         name,
		Description:  description,
		Amount:       new(big.Int).Set(amount),
		DonatorCount: 0,
		Active:       true,
	})
	return len(s.tiers) - 1, nil
}

// SetActive 启用/停用档位。设置为当前值是允许的空操作。
func (s *TierStore) SetActive(index int, active bool) error {
	if index < 0 || index >= len(s.tiers) {
		return ErrIndexOutOfRange
	}
	s.tiers[index].Active = active
	return nil
}

// RecordFunding 记录一次成功的档位捐赠，DonatorCount 加1。
// 此处不关心支付金额，金额与档位价格的核对由 CampaignLedger 在调用前完成。
func (s *TierStore) RecordFunding(index int) error {
	if index < 0 || index >= len(s.tiers) {
		return ErrIndexOutOfRange
	}
	if !s.tiers[index].Active {
		return ErrTierInactive
	}
	s.tiers[index].DonatorCount++
	return nil
}

// Get 返回指定档位的副本。
func (s *TierStore) Get(index int) (Tier, error) {
	if index < 0 || index >= len(s.tiers) {
		return Tier{}, ErrIndexOutOfRange
	}
	return s.tiers[index].copy(), nil
}

// List 返回全部档位的只读快照。
func (s *TierStore) List() []Tier {
	out := make([]Tier, len(s.tiers))
	for i, t := range s.tiers {
		out[i] = t.copy()
	}
	return out
}

// Len 返回档位数量。
func (s *TierStore) Len() int {
	return len(s.tiers)
}

// copy 深拷贝一个档位，避免 Amount 被外部修改。
func (t Tier) copy() Tier {
	c := t
	c.Amount = new(big.Int).Set(t.Amount)
	return c
}
