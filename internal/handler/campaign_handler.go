package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/nelson-escalona/donations-ledger/internal/engine"
	"github.com/nelson-escalona/donations-ledger/internal/logic"
	"gorm.io/gorm"
)

type CampaignHandler struct {
	campaignLogic *logic.CampaignLogic
}

func NewCampaignHandler(db *gorm.DB, registry *engine.Registry) *CampaignHandler {
	return &CampaignHandler{
		campaignLogic: logic.NewCampaignLogic(db, registry),
	}
}

// CreateCampaign 创建活动
func (h *CampaignHandler) CreateCampaign(c *gin.Context) {
	var req CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	summary, err := h.campaignLogic.CreateCampaign(req.Caller, req.Name, req.OrgName, req.Description, req.Goal)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "活动创建成功",
		"campaign": ToCampaignSummaryResponse(summary),
	})
}

// GetCampaigns 获取活动列表
func (h *CampaignHandler) GetCampaigns(c *gin.Context) {
	count, summaries := h.campaignLogic.GetCampaigns()

	c.JSON(http.StatusOK, gin.H{
		"count":     count,
		"campaigns": ToCampaignSummaryResponseList(summaries),
	})
}

// GetCampaignByIndex 按创建顺序获取活动摘要
func (h *CampaignHandler) GetCampaignByIndex(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的活动索引"})
		return
	}

	summary, err := h.campaignLogic.GetCampaignByIndex(index)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"campaign": ToCampaignSummaryResponse(summary)})
}

// GetCampaign 获取单个活动详情
func (h *CampaignHandler) GetCampaign(c *gin.Context) {
	snapshot, err := h.campaignLogic.GetCampaign(c.Param("address"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"campaign": ToCampaignDetailResponse(snapshot)})
}

// GetCampaignTiers 获取活动档位列表
func (h *CampaignHandler) GetCampaignTiers(c *gin.Context) {
	snapshot, err := h.campaignLogic.GetCampaign(c.Param("address"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tiers": ToTierResponseList(snapshot.Tiers)})
}

// GetCampaignStats 获取活动统计信息
func (h *CampaignHandler) GetCampaignStats(c *gin.Context) {
	stats, err := h.campaignLogic.GetCampaignStats(c.Param("address"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": stats})
}
