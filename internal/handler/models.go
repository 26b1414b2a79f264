package handler

import (
	"time"

	"github.com/nelson-escalona/donations-ledger/internal/engine"
	"github.com/nelson-escalona/donations-ledger/internal/model"
)

// 通用响应结构
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// 分页信息结构
type Pagination struct {
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
	Total    int64 `json:"total"`
}

// 请求模型。调用者地址随请求体携带：此边界不做钱包签名校验（见设计文档），
// 地址即身份，由引擎的 AccessGate 做所有者核对。

// CreateCampaignRequest 创建活动请求
type CreateCampaignRequest struct {
	Caller      string `json:"caller" binding:"required"`
	Name        string `json:"name" binding:"required"`
	OrgName     string `json:"org_name"`
	Description string `json:"description"`
	Goal        string `json:"goal" binding:"required"`
}

// FundRequest 按档位捐赠请求。TierIndex 用指针以区分缺失和索引0
type FundRequest struct {
	Donor     string `json:"donor" binding:"required"`
	TierIndex *int   `json:"tier_index" binding:"required"`
	Amount    string `json:"amount" binding:"required"`
}

// DonateRequest 自由金额捐赠请求
type DonateRequest struct {
	Donor  string `json:"donor" binding:"required"`
	Amount string `json:"amount" binding:"required"`
}

// AddTierRequest 新增档位请求
type AddTierRequest struct {
	Caller      string `json:"caller" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Amount      string `json:"amount" binding:"required"`
}

// SetTierActiveRequest 启用/停用档位请求
type SetTierActiveRequest struct {
	Caller string `json:"caller" binding:"required"`
	Active *bool  `json:"active" binding:"required"`
}

// OwnerActionRequest 只携带调用者的所有者操作请求（togglePause、withdraw）
type OwnerActionRequest struct {
	Caller string `json:"caller" binding:"required"`
}

// 响应模型。金额一律以十进制字符串输出，uint256 超出 JSON 数字精度。

// CampaignSummaryResponse 活动摘要响应
type CampaignSummaryResponse struct {
	CampaignAddress string    `json:"campaignAddress"`
	Owner           string    `json:"owner"`
	Name            string    `json:"name"`
	OrgName         string    `json:"orgName"`
	Goal            string    `json:"goal"`
	CreationTime    time.Time `json:"creationTime"`
}

// TierResponse 档位响应
type TierResponse struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Amount       string `json:"amount"`
	DonatorCount uint64 `json:"donatorCount"`
	Active       bool   `json:"active"`
}

// CampaignDetailResponse 活动详情响应
type CampaignDetailResponse struct {
	CampaignAddress string         `json:"campaignAddress"`
	Owner           string         `json:"owner"`
	Name            string         `json:"name"`
	OrgName         string         `json:"orgName"`
	Description     string         `json:"description"`
	Goal            string         `json:"goal"`
	Balance         string         `json:"balance"`
	Paused          bool           `json:"paused"`
	CreationTime    time.Time      `json:"creationTime"`
	Tiers           []TierResponse `json:"tiers"`
}

// DonationRecordResponse 捐赠流水响应
type DonationRecordResponse struct {
	ID              int64     `json:"id"`
	CampaignAddress string    `json:"campaignAddress"`
	Donor           string    `json:"donor"`
	Amount          string    `json:"amount"`
	Kind            string    `json:"kind"`
	TierIndex       int       `json:"tierIndex"`
	CreatedAt       time.Time `json:"createdAt"`
}

// 转换函数

// ToCampaignSummaryResponse 将引擎摘要转换为响应模型
func ToCampaignSummaryResponse(s engine.CampaignSummary) CampaignSummaryResponse {
	return CampaignSummaryResponse{
		CampaignAddress: s.Address.Hex(),
		Owner:           s.Owner.Hex(),
		Name:            s.Name,
		OrgName:         s.OrgName,
		Goal:            s.Goal.String(),
		CreationTime:    s.CreationTime,
	}
}

// ToCampaignSummaryResponseList 将引擎摘要列表转换为响应模型列表
func ToCampaignSummaryResponseList(summaries []engine.CampaignSummary) []CampaignSummaryResponse {
	result := make([]CampaignSummaryResponse, len(summaries))
	for i, s := range summaries {
		result[i] = ToCampaignSummaryResponse(s)
	}
	return result
}

// ToTierResponse 将引擎档位转换为响应模型
func ToTierResponse(t engine.Tier) TierResponse {
	return TierResponse{
		Name:         t.Name,
		Description:  t.Description,
		Amount:       t.Amount.String(),
		DonatorCount: t.DonatorCount,
		Active:       t.Active,
	}
}

// ToTierResponseList 将引擎档位列表转换为响应模型列表
func ToTierResponseList(tiers []engine.Tier) []TierResponse {
	result := make([]TierResponse, len(tiers))
	for i, t := range tiers {
		result[i] = ToTierResponse(t)
	}
	return result
}

// ToCampaignDetailResponse 将引擎快照转换为响应模型
func ToCampaignDetailResponse(s engine.Snapshot) CampaignDetailResponse {
	return CampaignDetailResponse{
		CampaignAddress: s.Address.Hex(),
		Owner:           s.Owner.Hex(),
		Name:            s.Name,
		OrgName:         s.OrgName,
		Description:     s.Description,
		Goal:            s.Goal.String(),
		Balance:         s.Balance.String(),
		Paused:          s.Paused,
		CreationTime:    s.CreationTime,
		Tiers:           ToTierResponseList(s.Tiers),
	}
}

// ToDonationRecordResponse 将捐赠流水数据库模型转换为响应模型
func ToDonationRecordResponse(r *model.DonationRecordModel) DonationRecordResponse {
	return DonationRecordResponse{
		ID:              r.Id,
		CampaignAddress: r.CampaignAddress,
		Donor:           r.Donor,
		Amount:          r.Amount,
		Kind:            string(r.Kind),
		TierIndex:       r.TierIndex,
		CreatedAt:       r.CreatedAt,
	}
}

// ToDonationRecordResponseList 将捐赠流水列表转换为响应模型列表
func ToDonationRecordResponseList(records []model.DonationRecordModel) []DonationRecordResponse {
	result := make([]DonationRecordResponse, len(records))
	for i, r := range records {
		result[i] = ToDonationRecordResponse(&r)
	}
	return result
}
