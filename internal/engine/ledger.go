package engine

import (
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
)

// TransferFunc 提款的外部结算回调。引擎保证回调触发时
// 账本余额已经清零，回调返回错误则整笔提款回滚。
type TransferFunc func(to common.Address, amount *big.Int) error

// CampaignLedger 单个活动的账本状态机。
// 状态只有两个：Active（paused=false）和 Paused（paused=true），初始为 Active，
// 没有终态。所有变更操作在同一把锁下串行执行，任何失败都不留下部分写入。
type CampaignLedger struct {
	mu sync.Mutex

	// 创建后不可变
	address      common.Address
	owner        common.Address
	name         string
	orgName      string
	description  string
	goal         *big.Int
	creationTime time.Time

	// 可变状态
	balance     *big.Int
	paused      bool
	withdrawing bool // withdraw 外部结算期间的重入保护标志
	tiers       TierStore
}

// Snapshot 活动账本的一致性快照，在一次加锁内取得。
type Snapshot struct {
	Address      common.Address `json:"campaign_address"`
	Owner        common.Address `json:"owner"`
	Name         string         `json:"name"`
	OrgName      string         `json:"org_name"`
	Description  string         `json:"description"`
	Goal         *big.Int       `json:"goal"`
	Balance      *big.Int       `json:"balance"`
	Paused       bool           `json:"paused"`
	CreationTime time.Time      `json:"creation_time"`
	Tiers        []Tier         `json:"tiers"`
}

// newCampaignLedger 创建新账本：余额为0、未暂停、档位列表为空。
// 仅由 Registry 在 CreateCampaign 时调用。
func newCampaignLedger(address, owner common.Address, name, orgName, description string, goal *big.Int, creationTime time.Time) *CampaignLedger {
	return &CampaignLedger{
		address:      address,
		owner:        owner,
		name:         name,
		orgName:      orgName,
		description:  description,
		goal:         new(big.Int).Set(goal),
		creationTime: creationTime,
		balance:      new(big.Int),
	}
}

// RestoreLedger 从持久化镜像恢复账本，服务重启时由 logic 层使用。
func RestoreLedger(address, owner common.Address, name, orgName, description string, goal, balance *big.Int, paused bool, creationTime time.Time, tiers []Tier) *CampaignLedger {
	l := newCampaignLedger(address, owner, name, orgName, description, goal, creationTime)
	l.balance.Set(balance)
	l.paused = paused
	for _, t := range tiers {
		l.tiers.tiers = append(l.tiers.tiers, t.copy())
	}
	return l
}

// Fund 按档位捐赠。支付金额必须与档位金额完全一致。
// 余额增加与档位计数增加是原子的：要么都发生要么都不发生。
func (l *CampaignLedger) Fund(tierIndex int, paid *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.paused {
		return ErrCampaignPaused
	}

	tier, err := l.tiers.Get(tierIndex)
	if err != nil {
		return err
	}
	if !tier.Active {
		return ErrTierInactive
	}
	if paid == nil || paid.Cmp(tier.Amount) != 0 {
		return ErrAmountMismatch
	}

	// 先算出新余额，溢出则整个操作失败，不触碰任何状态
	newBalance, err := checkedAdd(l.balance, paid)
	if err != nil {
		return err
	}

	if err := l.tiers.RecordFunding(tierIndex); err != nil {
		return err
	}
	l.balance = newBalance
	return nil
}

// Donate 自由金额捐赠，不关联任何档位。
func (l *CampaignLedger) Donate(paid *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.paused {
		return ErrCampaignPaused
	}
	if paid == nil || paid.Sign() <= 0 {
		return ErrInvalidAmount
	}

	newBalance, err := checkedAdd(l.balance, paid)
	if err != nil {
		return err
	}
	l.balance = newBalance
	return nil
}

// AddTier 新增档位，仅限所有者。暂停状态不影响档位配置，
// 暂停只拦截入账资金。返回新档位索引。
func (l *CampaignLedger) AddTier(caller common.Address, name, description string, amount *big.Int) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := RequireOwner(l.owner, caller); err != nil {
		return 0, err
	}
	return l.tiers.Add(name, description, amount)
}

// SetTierActive 启用/停用档位，仅限所有者，暂停状态下同样可用。
func (l *CampaignLedger) SetTierActive(caller common.Address, index int, active bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := RequireOwner(l.owner, caller); err != nil {
		return err
	}
	return l.tiers.SetActive(index, active)
}

// TogglePause 翻转暂停标志，返回翻转后的状态。
// 注意这是翻转语义而非幂等的 pause/unpause：连续调用两次会翻转两次，
// 客户端重试提交时需要自行核对返回的状态。
func (l *CampaignLedger) TogglePause(caller common.Address) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := RequireOwner(l.owner, caller); err != nil {
		return false, err
	}
	l.paused = !l.paused
	return l.paused, nil
}

// Withdraw 提取全部余额到所有者，仅限所有者。
// 余额在外部结算回调触发之前就已清零，结算期间发起的嵌套提款
// 只能看到零余额（以及 withdrawing 标志），因此不可能重复提取。
// 回调失败则恢复余额，整笔提款等同于没有发生。
func (l *CampaignLedger) Withdraw(caller common.Address, transfer TransferFunc) (*big.Int, error) {
	l.mu.Lock()
	if err := RequireOwner(l.owner, caller); err != nil {
		l.mu.Unlock()
		return nil, err
	}
	if l.withdrawing || l.balance.Sign() == 0 {
		l.mu.Unlock()
		return nil, ErrInsufficientBalance
	}

	// 先清零再结算：这是强制的顺序约束，不是风格选择
	amount := new(big.Int).Set(l.balance)
	l.balance = new(big.Int)
	l.withdrawing = true
	l.mu.Unlock()

	var transferErr error
	if transfer != nil {
		transferErr = transfer(l.owner, amount)
	}

	l.mu.Lock()
	l.withdrawing = false
	if transferErr != nil {
		// 结算期间可能有新捐赠入账，用累加而不是覆盖来恢复
		l.balance.Add(l.balance, amount)
	}
	l.mu.Unlock()

	if transferErr != nil {
		return nil, transferErr
	}
	return amount, nil
}

// 只读访问器。读操作永不失败、永不变更状态，不受暂停和所有权限制。

func (l *CampaignLedger) Address() common.Address { return l.address }

func (l *CampaignLedger) Owner() common.Address { return l.owner }

func (l *CampaignLedger) Name() string { return l.name }

func (l *CampaignLedger) OrgName() string { return l.orgName }

func (l *CampaignLedger) Description() string { return l.description }

func (l *CampaignLedger) Goal() *big.Int { return new(big.Int).Set(l.goal) }

func (l *CampaignLedger) CreationTime() time.Time { return l.creationTime }

func (l *CampaignLedger) Balance() *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return new(big.Int).Set(l.balance)
}

func (l *CampaignLedger) Paused() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.paused
}

func (l *CampaignLedger) Tiers() []Tier {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tiers.List()
}

// Snapshot 在一次加锁内取得全部字段的一致性快照。
func (l *CampaignLedger) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Snapshot{
		Address:      l.address,
		Owner:        l.owner,
		Name:         l.name,
		OrgName:      l.orgName,
		Description:  l.description,
		Goal:         new(big.Int).Set(l.goal),
		Balance:      new(big.Int).Set(l.balance),
		Paused:       l.paused,
		CreationTime: l.creationTime,
		Tiers:        l.tiers.List(),
	}
}

// checkedAdd 带上界检查的加法。所有金额都是 uint256 语义，
// 超出上界视为致命的守恒破坏，操作失败而不是回绕。
func checkedAdd(a, b *big.Int) (*big.Int, error) {
	sum := new(big.Int).Add(a, b)
	if sum.Cmp(math.MaxBig256) > 0 {
		return nil, ErrOverflow
	}
	return sum, nil
}
