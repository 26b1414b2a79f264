package task

import (
	"github.com/go-co-op/gocron/v2"
	"github.com/nelson-escalona/donations-ledger/internal/config"
	"github.com/nelson-escalona/donations-ledger/internal/engine"
	"github.com/nelson-escalona/donations-ledger/internal/logger"
	"gorm.io/gorm"
)

// Manager 任务管理器
type Manager struct {
	scheduler gocron.Scheduler
	db        *gorm.DB
	registry  *engine.Registry
	config    *config.Config
}

// NewManager 创建新的任务管理器
func NewManager(db *gorm.DB, registry *engine.Registry, cfg *config.Config) *Manager {
	s, err := gocron.NewScheduler()
	if err != nil {
		logger.Fatal("Failed to create scheduler: %v", err)
	}

	return &Manager{
		scheduler: s,
		db:        db,
		registry:  registry,
		config:    cfg,
	}
}

// Start 启动任务管理器
func Start(db *gorm.DB, registry *engine.Registry, cfg *config.Config) *Manager {
	manager := NewManager(db, registry, cfg)

	// 注册所有任务
	manager.RegisterJobs()

	// 启动调度器
	manager.scheduler.Start()

	logger.Info("Task manager started successfully")
	return manager
}

// RegisterJobs 注册所有任务
func (m *Manager) RegisterJobs() {
	// 注册账本镜像同步任务
	m.RegisterLedgerSyncJob()
}

// RegisterLedgerSyncJob 注册账本镜像同步任务
func (m *Manager) RegisterLedgerSyncJob() {
	job := NewLedgerSyncJob(m.db, m.config, m.registry)

	_, err := m.scheduler.NewJob(
		job.GetSchedule(),
		gocron.NewTask(job.Execute),
		gocron.WithName(job.GetName()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		logger.Error("Failed to register job %s: %v", job.GetName(), err)
	}
}

// Stop 停止任务管理器
func (m *Manager) Stop() {
	if err := m.scheduler.Shutdown(); err != nil {
		logger.Error("Failed to shutdown scheduler: %v", err)
	}
	logger.Info("Task manager stopped")
}
