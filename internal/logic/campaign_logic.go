package logic

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/nelson-escalona/donations-ledger/internal/engine"
	"github.com/nelson-escalona/donations-ledger/internal/logger"
	"github.com/nelson-escalona/donations-ledger/internal/model"
	"gorm.io/gorm"
)

// 请求解析阶段的校验错误，handler 层据此映射HTTP状态码
var (
	ErrInvalidAddress      = errors.New("无效的地址格式")
	ErrInvalidAmountFormat = errors.New("无效的金额格式")
	ErrEmptyName           = errors.New("活动名称不能为空")
)

// CampaignLogic 活动业务逻辑。引擎内存状态是权威数据源，
// 数据库只是供查询的镜像：镜像写入失败不回滚引擎，记日志后由同步任务修复。
type CampaignLogic struct {
	db       *gorm.DB
	registry *engine.Registry
}

// NewCampaignLogic 创建活动业务逻辑
func NewCampaignLogic(db *gorm.DB, registry *engine.Registry) *CampaignLogic {
	return &CampaignLogic{db: db, registry: registry}
}

// CreateCampaign 创建活动，调用者成为所有者
func (l *CampaignLogic) CreateCampaign(caller, name, orgName, description, goal string) (engine.CampaignSummary, error) {
	owner, err := parseAddress(caller)
	if err != nil {
		return engine.CampaignSummary{}, err
	}
	if name == "" {
		return engine.CampaignSummary{}, ErrEmptyName
	}
	goalAmount, err := parseAmount(goal)
	if err != nil {
		return engine.CampaignSummary{}, err
	}

	ledger, err := l.registry.CreateCampaign(owner, name, orgName, description, goalAmount)
	if err != nil {
		return engine.CampaignSummary{}, err
	}

	// 写穿镜像行。引擎已提交，镜像失败只记日志，由同步任务修复
	snap := ledger.Snapshot()
	row := model.CampaignModel{
		Address:      snap.Address.Hex(),
		Owner:        snap.Owner.Hex(),
		Name:         snap.Name,
		OrgName:      snap.OrgName,
		Description:  snap.Description,
		Goal:         snap.Goal.String(),
		Balance:      snap.Balance.String(),
		Paused:       snap.Paused,
		CreationTime: snap.CreationTime,
	}
	if err := l.db.Create(&row).Error; err != nil {
		logger.Error("Failed to mirror campaign %s: %v", row.Address, err)
	}

	return engine.CampaignSummary{
		Address:      snap.Address,
		Owner:        snap.Owner,
		Name:         snap.Name,
		OrgName:      snap.OrgName,
		Goal:         snap.Goal,
		CreationTime: snap.CreationTime,
	}, nil
}

// GetCampaigns 返回活动总数和全部活动摘要，按创建顺序
func (l *CampaignLogic) GetCampaigns() (int, []engine.CampaignSummary) {
	return l.registry.Count(), l.registry.Summaries()
}

// GetCampaignByIndex 按创建顺序返回第 index 个活动的摘要
func (l *CampaignLogic) GetCampaignByIndex(index int) (engine.CampaignSummary, error) {
	return l.registry.Campaign(index)
}

// GetCampaign 返回单个活动的完整快照
func (l *CampaignLogic) GetCampaign(address string) (engine.Snapshot, error) {
	addr, err := parseAddress(address)
	if err != nil {
		return engine.Snapshot{}, err
	}
	ledger, err := l.registry.Get(addr)
	if err != nil {
		return engine.Snapshot{}, err
	}
	return ledger.Snapshot(), nil
}

// GetCampaignStats 获取活动统计信息
func (l *CampaignLogic) GetCampaignStats(address string) (map[string]interface{}, error) {
	snap, err := l.GetCampaign(address)
	if err != nil {
		return nil, err
	}
	addrHex := snap.Address.Hex()

	var donationCount int64
	if err := l.db.Model(&model.DonationRecordModel{}).
		Where("campaign_address = ?", addrHex).
		Count(&donationCount).Error; err != nil {
		return nil, fmt.Errorf("获取捐赠记录数失败: %w", err)
	}

	var uniqueDonors int64
	if err := l.db.Model(&model.DonationRecordModel{}).
		Where("campaign_address = ?", addrHex).
		Distinct("donor").
		Count(&uniqueDonors).Error; err != nil {
		return nil, fmt.Errorf("获取捐赠人数失败: %w", err)
	}

	var withdrawCount int64
	if err := l.db.Model(&model.WithdrawRecordModel{}).
		Where("campaign_address = ?", addrHex).
		Count(&withdrawCount).Error; err != nil {
		return nil, fmt.Errorf("获取提款记录数失败: %w", err)
	}

	// 目标完成度按余额计算，目标金额只是参考值，不是硬性上限
	progressPct := float64(0)
	if snap.Goal.Sign() > 0 {
		progress := new(big.Float).Quo(
			new(big.Float).SetInt(snap.Balance),
			new(big.Float).SetInt(snap.Goal),
		)
		progressPct, _ = new(big.Float).Mul(progress, big.NewFloat(100)).Float64()
	}

	return map[string]interface{}{
		"campaign_address": addrHex,
		"balance":          snap.Balance.String(),
		"goal":             snap.Goal.String(),
		"progress":         progressPct,
		"paused":           snap.Paused,
		"tier_count":       len(snap.Tiers),
		"donation_count":   donationCount,
		"unique_donors":    uniqueDonors,
		"withdraw_count":   withdrawCount,
	}, nil
}

// Restore 服务重启时从镜像恢复引擎状态，按创建顺序重新挂载账本
func (l *CampaignLogic) Restore() error {
	var rows []model.CampaignModel
	if err := l.db.Order("creation_time asc, id asc").Find(&rows).Error; err != nil {
		return fmt.Errorf("加载活动镜像失败: %w", err)
	}

	for _, row := range rows {
		goal, err := parseAmount(row.Goal)
		if err != nil {
			return fmt.Errorf("活动 %s 目标金额非法: %w", row.Address, err)
		}
		balance, ok := new(big.Int).SetString(row.Balance, 10)
		if !ok || balance.Sign() < 0 {
			return fmt.Errorf("活动 %s 余额非法: %s", row.Address, row.Balance)
		}

		var tierRows []model.TierModel
		if err := l.db.Where("campaign_address = ?", row.Address).
			Order("tier_index asc").
			Find(&tierRows).Error; err != nil {
			return fmt.Errorf("加载活动 %s 档位失败: %w", row.Address, err)
		}

		tiers := make([]engine.Tier, len(tierRows))
		for i, tr := range tierRows {
			amount, ok := new(big.Int).SetString(tr.Amount, 10)
			if !ok {
				return fmt.Errorf("活动 %s 档位 %d 金额非法: %s", row.Address, tr.TierIndex, tr.Amount)
			}
			tiers[i] = engine.Tier{
				Name:         tr.Name,
				Description:  tr.Description,
				Amount:       amount,
				DonatorCount: uint64(tr.DonatorCount),
				Active:       tr.Active,
			}
		}

		ledger := engine.RestoreLedger(
			common.HexToAddress(row.Address),
			common.HexToAddress(row.Owner),
			row.Name, row.OrgName, row.Description,
			goal, balance, row.Paused, row.CreationTime, tiers,
		)
		l.registry.Restore(ledger)
	}

	logger.Info("Restored %d campaigns from mirror", len(rows))
	return nil
}

// parseAddress 解析十六进制地址
func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, ErrInvalidAddress
	}
	return common.HexToAddress(s), nil
}

// parseAmount 解析十进制金额字符串，必须是非负整数
func parseAmount(s string) (*big.Int, error) {
	amount, ok := new(big.Int).SetString(s, 10)
	if !ok || amount.Sign() < 0 {
		return nil, ErrInvalidAmountFormat
	}
	return amount, nil
}
