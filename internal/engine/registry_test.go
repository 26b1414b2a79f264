package engine

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestCreateCampaignInvalidGoal(t *testing.T) {
	r := NewRegistry()

	_, err := r.CreateCampaign(testOwner, "a", "b", "c", big.NewInt(0))
	require.ErrorIs(t, err, ErrInvalidGoal)

	_, err = r.CreateCampaign(testOwner, "a", "b", "c", nil)
	require.ErrorIs(t, err, ErrInvalidGoal)

	require.Equal(t, 0, r.Count())
}

func TestRegistryOrdering(t *testing.T) {
	r := NewRegistry()

	first, err := r.CreateCampaign(testOwner, "第一个", "org1", "", big.NewInt(10))
	require.NoError(t, err)
	second, err := r.CreateCampaign(testStranger, "第二个", "org2", "", big.NewInt(20))
	require.NoError(t, err)

	require.Equal(t, 2, r.Count())

	// 索引即创建顺序
	s0, err := r.Campaign(0)
	require.NoError(t, err)
	require.Equal(t, first.Address(), s0.Address)
	require.Equal(t, testOwner, s0.Owner)
	require.Equal(t, "第一个", s0.Name)
	require.Equal(t, "org1", s0.OrgName)
	require.Equal(t, int64(10), s0.Goal.Int64())
	require.False(t, s0.CreationTime.IsZero())

	s1, err := r.Campaign(1)
	require.NoError(t, err)
	require.Equal(t, second.Address(), s1.Address)
}

func TestCampaignIndexOutOfRange(t *testing.T) {
	r := NewRegistry()
	_, err := r.CreateCampaign(testOwner, "a", "b", "", big.NewInt(1))
	require.NoError(t, err)

	_, err = r.Campaign(1)
	require.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = r.Campaign(-1)
	require.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestDerivedAddressesUnique(t *testing.T) {
	r := NewRegistry()
	seen := make(map[common.Address]bool)

	// 同一所有者连续创建也必须得到不同地址
	for i := 0; i < 10; i++ {
		l, err := r.CreateCampaign(testOwner, "活动", "org", "", big.NewInt(1))
		require.NoError(t, err)
		require.False(t, seen[l.Address()])
		seen[l.Address()] = true
	}
}

func TestGetByAddress(t *testing.T) {
	r := NewRegistry()
	l, err := r.CreateCampaign(testOwner, "a", "b", "", big.NewInt(1))
	require.NoError(t, err)

	got, err := r.Get(l.Address())
	require.NoError(t, err)
	require.Same(t, l, got)

	_, err = r.Get(common.HexToAddress("0xdead000000000000000000000000000000000000"))
	require.ErrorIs(t, err, ErrCampaignNotFound)
}

// 从镜像恢复的账本保留全部状态并可继续正常操作。
func TestRestoreLedger(t *testing.T) {
	createdAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	addr := common.HexToAddress("0xfeed000000000000000000000000000000000123")

	l := RestoreLedger(addr, testOwner, "恢复的活动", "org", "描述",
		big.NewInt(100), big.NewInt(42), true, createdAt,
		[]Tier{{Name: "档位", Amount: big.NewInt(7), DonatorCount: 3, Active: true}},
	)

	r := NewRegistry()
	r.Restore(l)

	require.Equal(t, 1, r.Count())
	got, err := r.Get(addr)
	require.NoError(t, err)

	snap := got.Snapshot()
	require.Equal(t, addr, snap.Address)
	require.Equal(t, int64(42), snap.Balance.Int64())
	require.True(t, snap.Paused)
	require.Equal(t, createdAt, snap.CreationTime)
	require.Len(t, snap.Tiers, 1)
	require.Equal(t, uint64(3), snap.Tiers[0].DonatorCount)

	// 恢复后的账本照常执行状态机规则
	require.ErrorIs(t, got.Fund(0, big.NewInt(7)), ErrCampaignPaused)
	_, err = got.TogglePause(testOwner)
	require.NoError(t, err)
	require.NoError(t, got.Fund(0, big.NewInt(7)))
	require.Equal(t, int64(49), got.Balance().Int64())
}
