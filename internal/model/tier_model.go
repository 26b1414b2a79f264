package model

import (
	"time"
)

// TierModel 捐赠档位的持久化镜像。档位只停用不删除，
// (campaign_address, tier_index) 唯一且稳定。
type TierModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CampaignAddress string `json:"campaign_address" gorm:"uniqueIndex:idx_campaign_tier;not null"`
	TierIndex       int    `json:"tier_index" gorm:"uniqueIndex:idx_campaign_tier;not null"`

	Name         string `json:"name" gorm:"not null"`
	Description  string `json:"description" gorm:"type:text"`
	Amount       string `json:"amount" gorm:"type:numeric(78,0);not null"`
	DonatorCount int64  `json:"donator_count" gorm:"default:0"`
	Active       bool   `json:"active" gorm:"default:true"`
}

// TableName 自定义表名
func (TierModel) TableName() string {
	return "tier"
}
