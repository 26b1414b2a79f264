package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/nelson-escalona/donations-ledger/internal/config"
	"github.com/nelson-escalona/donations-ledger/internal/database"
	"github.com/nelson-escalona/donations-ledger/internal/engine"
	"github.com/nelson-escalona/donations-ledger/internal/logger"
	"github.com/nelson-escalona/donations-ledger/internal/logic"
	"github.com/nelson-escalona/donations-ledger/internal/router"
	"github.com/nelson-escalona/donations-ledger/internal/task"
)

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化日志器
	level := logger.ParseLogLevel(cfg.Log.Level)
	if cfg.Log.Output == "file" {
		l, err := logger.NewWithFileRotation(level, cfg.Log.File)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		logger.SetDefaultLogger(l)
	} else {
		l, err := logger.New(level)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		logger.SetDefaultLogger(l)
	}
	defer logger.Sync()

	// 初始化数据库
	db, err := database.Init(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// 初始化账本引擎并从镜像恢复状态
	registry := engine.NewRegistry()
	if err := logic.NewCampaignLogic(db, registry).Restore(); err != nil {
		log.Fatalf("Failed to restore ledger state: %v", err)
	}

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化路由
	r := router.Setup(db, registry, cfg)

	// 启动镜像同步任务
	task.Start(db, registry, cfg)

	// 启动服务器
	logger.Info("Server starting on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
