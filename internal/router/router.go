package router

import (
	"github.com/gin-gonic/gin"
	"github.com/nelson-escalona/donations-ledger/internal/config"
	"github.com/nelson-escalona/donations-ledger/internal/engine"
	"github.com/nelson-escalona/donations-ledger/internal/handler"
	"gorm.io/gorm"
)

func Setup(db *gorm.DB, registry *engine.Registry, cfg *config.Config) *gin.Engine {
	r := gin.Default()

	// 中间件
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "donations-ledger",
		})
	})

	// API版本组
	v1 := r.Group("/api/v1")
	{
		campaignHandler := handler.NewCampaignHandler(db, registry)
		donationHandler := handler.NewDonationHandler(db, registry)

		campaigns := v1.Group("/campaigns")
		{
			// 工厂操作
			campaigns.POST("", campaignHandler.CreateCampaign)
			campaigns.GET("", campaignHandler.GetCampaigns)
			campaigns.GET("/index/:index", campaignHandler.GetCampaignByIndex)

			// 单活动读操作
			campaigns.GET("/:address", campaignHandler.GetCampaign)
			campaigns.GET("/:address/tiers", campaignHandler.GetCampaignTiers)
			campaigns.GET("/:address/stats", campaignHandler.GetCampaignStats)
			campaigns.GET("/:address/donations", donationHandler.GetDonations)

			// 入账操作
			campaigns.POST("/:address/fund", donationHandler.Fund)
			campaigns.POST("/:address/donate", donationHandler.Donate)

			// 所有者操作
			campaigns.POST("/:address/tiers", donationHandler.AddTier)
			campaigns.PUT("/:address/tiers/:index/active", donationHandler.SetTierActive)
			campaigns.POST("/:address/pause", donationHandler.TogglePause)
			campaigns.POST("/:address/withdraw", donationHandler.Withdraw)
		}
	}

	return r
}

// CORS中间件
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
