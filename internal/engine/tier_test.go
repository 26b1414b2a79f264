package engine

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTierStoreAdd(t *testing.T) {
	var s TierStore

	idx, err := s.Add("金牌赞助", "最高档位", big.NewInt(100))
	require.NoError(t, err)
	require.Equal(t, 0, idx)

	idx, err = s.Add("银牌赞助", "", big.NewInt(50))
	require.NoError(t, err)
	require.Equal(t, 1, idx)
	require.Equal(t, 2, s.Len())

	tier, err := s.Get(0)
	require.NoError(t, err)
	require.Equal(t, "金牌赞助", tier.Name)
	require.True(t, tier.Active)
	require.Equal(t, uint64(0), tier.DonatorCount)
}

func TestTierStoreAddInvalidAmount(t *testing.T) {
	var s TierStore

	_, err := s.Add("", "", big.NewInt(0))
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = s.Add("x", "y", nil)
	require.ErrorIs(t, err, ErrInvalidAmount)
	require.Equal(t, 0, s.Len())
}

func TestTierStoreSetActive(t *testing.T) {
	var s TierStore
	_, err := s.Add("a", "", big.NewInt(1))
	require.NoError(t, err)

	require.ErrorIs(t, s.SetActive(1, false), ErrIndexOutOfRange)
	require.ErrorIs(t, s.SetActive(-1, false), ErrIndexOutOfRange)

	require.NoError(t, s.SetActive(0, false))
	// 设置为当前值是允许的空操作
	require.NoError(t, s.SetActive(0, false))

	tier, err := s.Get(0)
	require.NoError(t, err)
	require.False(t, tier.Active)
}

func TestTierStoreRecordFunding(t *testing.T) {
	var s TierStore
	_, err := s.Add("a", "", big.NewInt(1))
	require.NoError(t, err)

	require.ErrorIs(t, s.RecordFunding(3), ErrIndexOutOfRange)

	// 计数只增不减，每次成功恰好加1
	require.NoError(t, s.RecordFunding(0))
	require.NoError(t, s.RecordFunding(0))
	tier, err := s.Get(0)
	require.NoError(t, err)
	require.Equal(t, uint64(2), tier.DonatorCount)

	require.NoError(t, s.SetActive(0, false))
	require.ErrorIs(t, s.RecordFunding(0), ErrTierInactive)

	tier, err = s.Get(0)
	require.NoError(t, err)
	require.Equal(t, uint64(2), tier.DonatorCount)
}

func TestTierStoreListIsSnapshot(t *testing.T) {
	var s TierStore
	_, err := s.Add("a", "", big.NewInt(5))
	require.NoError(t, err)

	list := s.List()
	require.Len(t, list, 1)

	// 修改快照不应影响内部状态
	list[0].Amount.SetInt64(999)
	list[0].Active = false

	tier, err := s.Get(0)
	require.NoError(t, err)
	require.Equal(t, int64(5), tier.Amount.Int64())
	require.True(t, tier.Active)
}
