package model

import (
	"time"
)

// CampaignModel 活动账本的持久化镜像。引擎内存状态是权威，
// 此表是供查询的读模型，由写穿与定时同步任务维护。
// 金额字段是 uint256 语义，超出 int64 范围，以十进制字符串存储。
type CampaignModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 创建后不可变
	Address      string    `json:"address" gorm:"uniqueIndex;not null"`
	Owner        string    `json:"owner" gorm:"not null"`
	Name         string    `json:"name" gorm:"not null"`
	OrgName      string    `json:"org_name"`
	Description  string    `json:"description" gorm:"type:text"`
	Goal         string    `json:"goal" gorm:"type:numeric(78,0);not null"`
	CreationTime time.Time `json:"creation_time" gorm:"not null"`

	// 引擎可变状态的镜像
	Balance string `json:"balance" gorm:"type:numeric(78,0);default:0"`
	Paused  bool   `json:"paused" gorm:"default:false"`
}

// TableName 自定义表名
func (CampaignModel) TableName() string {
	return "campaign"
}
