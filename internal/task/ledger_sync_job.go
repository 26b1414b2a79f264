package task

import (
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/nelson-escalona/donations-ledger/internal/config"
	"github.com/nelson-escalona/donations-ledger/internal/engine"
	"github.com/nelson-escalona/donations-ledger/internal/logger"
	"github.com/nelson-escalona/donations-ledger/internal/model"
	"github.com/panjf2000/ants/v2"
	"gorm.io/gorm"
)

// LedgerSyncJob 账本镜像同步任务。引擎内存状态是权威，
// 逐活动把快照重写回数据库镜像，修复写穿阶段丢失的更新。
// 不同活动相互独立，用协程池并发同步；单个活动内部
// 由账本自身的锁保证快照一致性。
type LedgerSyncJob struct {
	db       *gorm.DB
	config   *config.Config
	registry *engine.Registry
	pool     *ants.Pool
}

// NewLedgerSyncJob 创建账本镜像同步任务
func NewLedgerSyncJob(db *gorm.DB, cfg *config.Config, registry *engine.Registry) *LedgerSyncJob {
	poolSize := cfg.Task.PoolSize
	if poolSize <= 0 {
		poolSize = 8
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		logger.Fatal("Failed to create sync pool: %v", err)
	}

	return &LedgerSyncJob{
		db:       db,
		config:   cfg,
		registry: registry,
		pool:     pool,
	}
}

// GetName 获取任务名称
func (j *LedgerSyncJob) GetName() string {
	return "ledger_mirror_sync"
}

// GetSchedule 获取调度配置
func (j *LedgerSyncJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Task.Interval) * time.Second)
}

// Execute 执行任务
func (j *LedgerSyncJob) Execute() {
	ledgers := j.registry.All()
	if len(ledgers) == 0 {
		return
	}

	start := time.Now()
	var wg sync.WaitGroup

	for _, ledger := range ledgers {
		ledger := ledger
		wg.Add(1)
		err := j.pool.Submit(func() {
			defer wg.Done()
			j.syncCampaign(ledger)
		})
		if err != nil {
			wg.Done()
			logger.Error("Failed to submit sync for %s: %v", ledger.Address().Hex(), err)
		}
	}

	wg.Wait()
	logger.Debug("Ledger mirror sync finished: %d campaigns in %v", len(ledgers), time.Since(start))
}

// syncCampaign 把单个活动的引擎快照重写回镜像行
func (j *LedgerSyncJob) syncCampaign(ledger *engine.CampaignLedger) {
	snap := ledger.Snapshot()
	addr := snap.Address.Hex()

	// 镜像行缺失时补建（写穿失败留下的缺口）
	err := j.db.Where("address = ?", addr).
		Assign(map[string]interface{}{
			"balance": snap.Balance.String(),
			"paused":  snap.Paused,
		}).
		FirstOrCreate(&model.CampaignModel{
			Address:      addr,
			Owner:        snap.Owner.Hex(),
			Name:         snap.Name,
			OrgName:      snap.OrgName,
			Description:  snap.Description,
			Goal:         snap.Goal.String(),
			Balance:      snap.Balance.String(),
			Paused:       snap.Paused,
			CreationTime: snap.CreationTime,
		}).Error
	if err != nil {
		logger.Error("Failed to sync campaign %s: %v", addr, err)
		return
	}

	for i, tier := range snap.Tiers {
		err := j.db.Where("campaign_address = ? AND tier_index = ?", addr, i).
			Assign(map[string]interface{}{
				"donator_count": int64(tier.DonatorCount),
				"active":        tier.Active,
			}).
			FirstOrCreate(&model.TierModel{
				CampaignAddress: addr,
				TierIndex:       i,
				Name:            tier.Name,
				Description:     tier.Description,
				Amount:          tier.Amount.String(),
				DonatorCount:    int64(tier.DonatorCount),
				Active:          tier.Active,
			}).Error
		if err != nil {
			logger.Error("Failed to sync tier %s/%d: %v", addr, i, err)
		}
	}
}
