package model

import (
	"time"
)

// DonationKind 捐赠类型
type DonationKind string

const (
	DonationKindFund   DonationKind = "fund"   // 按档位捐赠
	DonationKindDonate DonationKind = "donate" // 自由金额捐赠
)

// DonationRecordModel 已接受的捐赠流水
type DonationRecordModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CampaignAddress string       `json:"campaign_address" gorm:"index;not null"`
	Donor           string       `json:"donor" gorm:"not null"`
	Amount          string       `json:"amount" gorm:"type:numeric(78,0);not null"`
	Kind            DonationKind `json:"kind" gorm:"not null"`
	TierIndex       int          `json:"tier_index" gorm:"default:-1"` // donate 时为 -1
}

// TableName 自定义表名
func (DonationRecordModel) TableName() string {
	return "donation_record"
}
