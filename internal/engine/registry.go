package engine

import (
	"encoding/binary"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// CampaignSummary Registry 对外的活动摘要投影，字段创建后不再变化。
type CampaignSummary struct {
	Address      common.Address `json:"campaign_address"`
	Owner        common.Address `json:"owner"`
	Name         string         `json:"name"`
	OrgName      string         `json:"org_name"`
	Goal         *big.Int       `json:"goal"`
	CreationTime time.Time      `json:"creation_time"`
}

// Registry 活动工厂。持有全部已创建账本的只追加列表，
// 索引即创建顺序。Registry 在创建之后不再变更任何账本，
// 后续变更全部由调用方直接作用于单个 CampaignLedger。
type Registry struct {
	mu        sync.RWMutex
	campaigns []*CampaignLedger
	byAddress map[common.Address]*CampaignLedger
	nonce     uint64
}

// NewRegistry 创建空的活动工厂。
func NewRegistry() *Registry {
	return &Registry{
		byAddress: make(map[common.Address]*CampaignLedger),
	}
}

// CreateCampaign 创建新活动，调用者成为所有者。
// 目标金额为0没有意义，视为无效。返回新账本的稳定句柄。
func (r *Registry) CreateCampaign(caller common.Address, name, orgName, description string, goal *big.Int) (*CampaignLedger, error) {
	if goal == nil || goal.Sign() <= 0 {
		return nil, ErrInvalidGoal
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	address := deriveAddress(caller, r.nonce, now)
	r.nonce++

	ledger := newCampaignLedger(address, caller, name, orgName, description, goal, now)
	r.campaigns = append(r.campaigns, ledger)
	r.byAddress[address] = ledger
	return ledger, nil
}

// Restore 重新挂载一个已恢复的账本，服务重启时由 logic 层按创建顺序调用。
func (r *Registry) Restore(ledger *CampaignLedger) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.campaigns = append(r.campaigns, ledger)
	r.byAddress[ledger.Address()] = ledger
	r.nonce++
}

// Count 返回已创建的活动数量。
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.campaigns)
}

// Campaign 按创建顺序返回第 index 个活动的摘要。
func (r *Registry) Campaign(index int) (CampaignSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if index < 0 || index >= len(r.campaigns) {
		return CampaignSummary{}, ErrIndexOutOfRange
	}
	return summaryOf(r.campaigns[index]), nil
}

// Get 按地址查找账本。
func (r *Registry) Get(address common.Address) (*CampaignLedger, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ledger, ok := r.byAddress[address]
	if !ok {
		return nil, ErrCampaignNotFound
	}
	return ledger, nil
}

// All 返回全部账本引用的快照，供镜像同步任务遍历。
func (r *Registry) All() []*CampaignLedger {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*CampaignLedger, len(r.campaigns))
	copy(out, r.campaigns)
	return out
}

// Summaries 返回全部活动摘要，按创建顺序。
func (r *Registry) Summaries() []CampaignSummary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]CampaignSummary, len(r.campaigns))
	for i, c := range r.campaigns {
		out[i] = summaryOf(c)
	}
	return out
}

func summaryOf(l *CampaignLedger) CampaignSummary {
	return CampaignSummary{
		Address:      l.Address(),
		Owner:        l.Owner(),
		Name:         l.Name(),
		OrgName:      l.OrgName(),
		Goal:         l.Goal(),
		CreationTime: l.CreationTime(),
	}
}

// deriveAddress 用 keccak256(owner || nonce || 创建时间) 派生确定性的活动地址，
// 取哈希的后20字节，与合约地址的构造方式一致。
func deriveAddress(owner common.Address, nonce uint64, createdAt time.Time) common.Address {
	buf := make([]byte, 0, common.AddressLength+16)
	buf = append(buf, owner.Bytes()...)
	buf = binary.BigEndian.AppendUint64(buf, nonce)
	buf = binary.BigEndian.AppendUint64(buf, uint64(createdAt.UnixNano()))
	return common.BytesToAddress(crypto.Keccak256(buf)[12:])
}
