package model

import (
	"time"
)

// WithdrawRecordModel 提款流水。每条记录对应一次成功的全额提款。
type WithdrawRecordModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CampaignAddress string `json:"campaign_address" gorm:"index;not null"`
	Owner           string `json:"owner" gorm:"not null"`
	Amount          string `json:"amount" gorm:"type:numeric(78,0);not null"`
}

// TableName 自定义表名
func (WithdrawRecordModel) TableName() string {
	return "withdraw_record"
}
