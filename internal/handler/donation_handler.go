package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/nelson-escalona/donations-ledger/internal/engine"
	"github.com/nelson-escalona/donations-ledger/internal/logic"
	"gorm.io/gorm"
)

type DonationHandler struct {
	donationLogic *logic.DonationLogic
}

func NewDonationHandler(db *gorm.DB, registry *engine.Registry) *DonationHandler {
	return &DonationHandler{
		donationLogic: logic.NewDonationLogic(db, registry),
	}
}

// Fund 按档位捐赠
func (h *DonationHandler) Fund(c *gin.Context) {
	var req FundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.donationLogic.Fund(c.Param("address"), req.Donor, req.Amount, *req.TierIndex); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "捐赠成功"})
}

// Donate 自由金额捐赠
func (h *DonationHandler) Donate(c *gin.Context) {
	var req DonateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.donationLogic.Donate(c.Param("address"), req.Donor, req.Amount); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "捐赠成功"})
}

// AddTier 新增档位（仅限所有者）
func (h *DonationHandler) AddTier(c *gin.Context) {
	var req AddTierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	index, err := h.donationLogic.AddTier(c.Param("address"), req.Caller, req.Name, req.Description, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "档位创建成功",
		"tier_index": index,
	})
}

// SetTierActive 启用/停用档位（仅限所有者）
func (h *DonationHandler) SetTierActive(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的档位索引"})
		return
	}

	var req SetTierActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.donationLogic.SetTierActive(c.Param("address"), req.Caller, index, *req.Active); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "档位状态已更新"})
}

// TogglePause 翻转暂停状态（仅限所有者）。
// 翻转而非幂等的 pause/unpause，响应里带上翻转后的状态，
// 重试提交的客户端应核对该状态而不是盲目重发
func (h *DonationHandler) TogglePause(c *gin.Context) {
	var req OwnerActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	paused, err := h.donationLogic.TogglePause(c.Param("address"), req.Caller)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "暂停状态已翻转",
		"paused":  paused,
	})
}

// Withdraw 提取全部余额（仅限所有者）
func (h *DonationHandler) Withdraw(c *gin.Context) {
	var req OwnerActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	amount, err := h.donationLogic.Withdraw(c.Param("address"), req.Caller)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "提款成功",
		"amount":  amount.String(),
	})
}

// GetDonations 获取活动捐赠流水
func (h *DonationHandler) GetDonations(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	records, total, err := h.donationLogic.GetDonations(c.Param("address"), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"donations": ToDonationRecordResponseList(records),
		"pagination": Pagination{
			Page:     page,
			PageSize: pageSize,
			Total:    total,
		},
	})
}
