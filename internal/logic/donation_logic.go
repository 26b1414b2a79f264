package logic

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/nelson-escalona/donations-ledger/internal/engine"
	"github.com/nelson-escalona/donations-ledger/internal/logger"
	"github.com/nelson-escalona/donations-ledger/internal/model"
	"gorm.io/gorm"
)

// DonationLogic 捐赠与提款业务逻辑。所有变更先经过引擎提交，
// 引擎接受后再落捐赠/提款流水和镜像更新。
type DonationLogic struct {
	db       *gorm.DB
	registry *engine.Registry
}

// NewDonationLogic 创建捐赠业务逻辑
func NewDonationLogic(db *gorm.DB, registry *engine.Registry) *DonationLogic {
	return &DonationLogic{db: db, registry: registry}
}

// Fund 按档位捐赠
func (d *DonationLogic) Fund(address, donor, amount string, tierIndex int) error {
	ledger, donorAddr, amt, err := d.resolve(address, donor, amount)
	if err != nil {
		return err
	}

	if err := ledger.Fund(tierIndex, amt); err != nil {
		return err
	}

	d.recordDonation(ledger, donorAddr, amt, model.DonationKindFund, tierIndex)
	return nil
}

// Donate 自由金额捐赠
func (d *DonationLogic) Donate(address, donor, amount string) error {
	ledger, donorAddr, amt, err := d.resolve(address, donor, amount)
	if err != nil {
		return err
	}

	if err := ledger.Donate(amt); err != nil {
		return err
	}

	d.recordDonation(ledger, donorAddr, amt, model.DonationKindDonate, -1)
	return nil
}

// AddTier 新增档位，仅限所有者。返回新档位索引
func (d *DonationLogic) AddTier(address, caller, name, description, amount string) (int, error) {
	ledger, callerAddr, amt, err := d.resolve(address, caller, amount)
	if err != nil {
		return 0, err
	}

	index, err := ledger.AddTier(callerAddr, name, description, amt)
	if err != nil {
		return 0, err
	}

	row := model.TierModel{
		CampaignAddress: ledger.Address().Hex(),
		TierIndex:       index,
		Name:            name,
		Description:     description,
		Amount:          amt.String(),
		Active:          true,
	}
	if err := d.db.Create(&row).Error; err != nil {
		logger.Error("Failed to mirror tier %s/%d: %v", row.CampaignAddress, index, err)
	}
	return index, nil
}

// SetTierActive 启用/停用档位，仅限所有者
func (d *DonationLogic) SetTierActive(address, caller string, index int, active bool) error {
	ledger, callerAddr, err := d.resolveCampaign(address, caller)
	if err != nil {
		return err
	}

	if err := ledger.SetTierActive(callerAddr, index, active); err != nil {
		return err
	}

	err = d.db.Model(&model.TierModel{}).
		Where("campaign_address = ? AND tier_index = ?", ledger.Address().Hex(), index).
		Update("active", active).Error
	if err != nil {
		logger.Error("Failed to mirror tier state %s/%d: %v", ledger.Address().Hex(), index, err)
	}
	return nil
}

// TogglePause 翻转暂停标志，仅限所有者。返回翻转后的状态
func (d *DonationLogic) TogglePause(address, caller string) (bool, error) {
	ledger, callerAddr, err := d.resolveCampaign(address, caller)
	if err != nil {
		return false, err
	}

	paused, err := ledger.TogglePause(callerAddr)
	if err != nil {
		return false, err
	}

	err = d.db.Model(&model.CampaignModel{}).
		Where("address = ?", ledger.Address().Hex()).
		Update("paused", paused).Error
	if err != nil {
		logger.Error("Failed to mirror pause state %s: %v", ledger.Address().Hex(), err)
	}
	return paused, nil
}

// Withdraw 提取全部余额，仅限所有者。提款流水在引擎的结算回调里落库，
// 落库失败则整笔提款在引擎内回滚。返回提取的金额
func (d *DonationLogic) Withdraw(address, caller string) (*big.Int, error) {
	ledger, callerAddr, err := d.resolveCampaign(address, caller)
	if err != nil {
		return nil, err
	}

	amount, err := ledger.Withdraw(callerAddr, func(to common.Address, amount *big.Int) error {
		row := model.WithdrawRecordModel{
			CampaignAddress: ledger.Address().Hex(),
			Owner:           to.Hex(),
			Amount:          amount.String(),
		}
		if err := d.db.Create(&row).Error; err != nil {
			return fmt.Errorf("提款流水落库失败: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	d.mirrorBalance(ledger)
	return amount, nil
}

// GetDonations 获取活动的捐赠流水，分页
func (d *DonationLogic) GetDonations(address string, page, pageSize int) ([]model.DonationRecordModel, int64, error) {
	addr, err := parseAddress(address)
	if err != nil {
		return nil, 0, err
	}
	if _, err := d.registry.Get(addr); err != nil {
		return nil, 0, err
	}

	var records []model.DonationRecordModel
	var total int64

	if err := d.db.Model(&model.DonationRecordModel{}).
		Where("campaign_address = ?", addr.Hex()).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := d.db.Where("campaign_address = ?", addr.Hex()).
		Offset(offset).
		Limit(pageSize).
		Order("created_at DESC").
		Find(&records).Error; err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

// recordDonation 落捐赠流水并刷新镜像。引擎已提交，失败只记日志
func (d *DonationLogic) recordDonation(ledger *engine.CampaignLedger, donor common.Address, amount *big.Int, kind model.DonationKind, tierIndex int) {
	row := model.DonationRecordModel{
		CampaignAddress: ledger.Address().Hex(),
		Donor:           donor.Hex(),
		Amount:          amount.String(),
		Kind:            kind,
		TierIndex:       tierIndex,
	}
	if err := d.db.Create(&row).Error; err != nil {
		logger.Error("Failed to record donation for %s: %v", row.CampaignAddress, err)
	}

	d.mirrorBalance(ledger)

	if kind == model.DonationKindFund {
		err := d.db.Model(&model.TierModel{}).
			Where("campaign_address = ? AND tier_index = ?", ledger.Address().Hex(), tierIndex).
			Update("donator_count", gorm.Expr("donator_count + 1")).Error
		if err != nil {
			logger.Error("Failed to mirror donator count %s/%d: %v", ledger.Address().Hex(), tierIndex, err)
		}
	}
}

// mirrorBalance 把引擎当前余额写回镜像行
func (d *DonationLogic) mirrorBalance(ledger *engine.CampaignLedger) {
	err := d.db.Model(&model.CampaignModel{}).
		Where("address = ?", ledger.Address().Hex()).
		Update("balance", ledger.Balance().String()).Error
	if err != nil {
		logger.Error("Failed to mirror balance %s: %v", ledger.Address().Hex(), err)
	}
}

// resolveCampaign 解析地址并定位账本
func (d *DonationLogic) resolveCampaign(address, caller string) (*engine.CampaignLedger, common.Address, error) {
	addr, err := parseAddress(address)
	if err != nil {
		return nil, common.Address{}, err
	}
	callerAddr, err := parseAddress(caller)
	if err != nil {
		return nil, common.Address{}, err
	}
	ledger, err := d.registry.Get(addr)
	if err != nil {
		return nil, common.Address{}, err
	}
	return ledger, callerAddr, nil
}

// resolve 解析地址、调用者和金额并定位账本
func (d *DonationLogic) resolve(address, caller, amount string) (*engine.CampaignLedger, common.Address, *big.Int, error) {
	ledger, callerAddr, err := d.resolveCampaign(address, caller)
	if err != nil {
		return nil, common.Address{}, nil, err
	}
	amt, err := parseAmount(amount)
	if err != nil {
		return nil, common.Address{}, nil, err
	}
	return ledger, callerAddr, amt, nil
}
