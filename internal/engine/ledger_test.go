package engine

import (
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/stretchr/testify/require"
)

var (
	testOwner    = common.HexToAddress("0x1111111111111111111111111111111111111111")
	testStranger = common.HexToAddress("0x2222222222222222222222222222222222222222")
)

func newTestLedger(t *testing.T) *CampaignLedger {
	t.Helper()
	r := NewRegistry()
	ledger, err := r.CreateCampaign(testOwner, "科学展2024", "机器人社团", "年度科学展筹款", big.NewInt(10))
	require.NoError(t, err)
	return ledger
}

func TestFundUpdatesBalanceAndCount(t *testing.T) {
	l := newTestLedger(t)
	_, err := l.AddTier(testOwner, "基础档", "", big.NewInt(1))
	require.NoError(t, err)

	require.NoError(t, l.Fund(0, big.NewInt(1)))

	require.Equal(t, int64(1), l.Balance().Int64())
	tiers := l.Tiers()
	require.Equal(t, uint64(1), tiers[0].DonatorCount)
}

func TestFundAmountMismatch(t *testing.T) {
	l := newTestLedger(t)
	_, err := l.AddTier(testOwner, "基础档", "", big.NewInt(5))
	require.NoError(t, err)

	require.ErrorIs(t, l.Fund(0, big.NewInt(4)), ErrAmountMismatch)
	require.ErrorIs(t, l.Fund(0, big.NewInt(6)), ErrAmountMismatch)
	require.ErrorIs(t, l.Fund(0, nil), ErrAmountMismatch)

	// 失败不留下任何状态变更
	require.Equal(t, int64(0), l.Balance().Int64())
	require.Equal(t, uint64(0), l.Tiers()[0].DonatorCount)
}

func TestFundIndexOutOfRange(t *testing.T) {
	l := newTestLedger(t)
	for i := 0; i < 2; i++ {
		_, err := l.AddTier(testOwner, "档位", "", big.NewInt(1))
		require.NoError(t, err)
	}

	require.ErrorIs(t, l.Fund(5, big.NewInt(1)), ErrIndexOutOfRange)
	require.ErrorIs(t, l.Fund(-1, big.NewInt(1)), ErrIndexOutOfRange)
}

func TestFundInactiveTier(t *testing.T) {
	l := newTestLedger(t)
	_, err := l.AddTier(testOwner, "档位", "", big.NewInt(1))
	require.NoError(t, err)
	require.NoError(t, l.SetTierActive(testOwner, 0, false))

	require.ErrorIs(t, l.Fund(0, big.NewInt(1)), ErrTierInactive)
	require.Equal(t, int64(0), l.Balance().Int64())
}

func TestDonate(t *testing.T) {
	l := newTestLedger(t)

	require.NoError(t, l.Donate(big.NewInt(3)))
	require.NoError(t, l.Donate(big.NewInt(2)))
	require.Equal(t, int64(5), l.Balance().Int64())

	require.ErrorIs(t, l.Donate(big.NewInt(0)), ErrInvalidAmount)
	require.ErrorIs(t, l.Donate(nil), ErrInvalidAmount)
	require.Equal(t, int64(5), l.Balance().Int64())
}

// 暂停只拦截入账资金，所有者的配置和提款操作不受影响。
func TestPauseGating(t *testing.T) {
	l := newTestLedger(t)
	_, err := l.AddTier(testOwner, "档位", "", big.NewInt(1))
	require.NoError(t, err)
	require.NoError(t, l.Donate(big.NewInt(2)))

	paused, err := l.TogglePause(testOwner)
	require.NoError(t, err)
	require.True(t, paused)

	require.ErrorIs(t, l.Fund(0, big.NewInt(1)), ErrCampaignPaused)
	require.ErrorIs(t, l.Donate(big.NewInt(1)), ErrCampaignPaused)

	// 暂停状态下所有者操作照常可用
	_, err = l.AddTier(testOwner, "新档位", "", big.NewInt(2))
	require.NoError(t, err)
	require.NoError(t, l.SetTierActive(testOwner, 0, false))

	amount, err := l.Withdraw(testOwner, nil)
	require.NoError(t, err)
	require.Equal(t, int64(2), amount.Int64())
	require.Equal(t, int64(0), l.Balance().Int64())
}

// 非所有者的受限操作一律失败且不改变状态。
func TestOwnershipGating(t *testing.T) {
	l := newTestLedger(t)
	_, err := l.AddTier(testOwner, "档位", "", big.NewInt(1))
	require.NoError(t, err)
	require.NoError(t, l.Donate(big.NewInt(7)))

	_, err = l.AddTier(testStranger, "x", "", big.NewInt(1))
	require.ErrorIs(t, err, ErrUnauthorized)

	require.ErrorIs(t, l.SetTierActive(testStranger, 0, false), ErrUnauthorized)

	_, err = l.TogglePause(testStranger)
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = l.Withdraw(testStranger, nil)
	require.ErrorIs(t, err, ErrUnauthorized)

	require.Equal(t, int64(7), l.Balance().Int64())
	require.False(t, l.Paused())
	require.Len(t, l.Tiers(), 1)
	require.True(t, l.Tiers()[0].Active)
}

// 翻转语义：连续两次调用翻转两次，刻意不幂等。
func TestTogglePauseFlips(t *testing.T) {
	l := newTestLedger(t)

	paused, err := l.TogglePause(testOwner)
	require.NoError(t, err)
	require.True(t, paused)

	paused, err = l.TogglePause(testOwner)
	require.NoError(t, err)
	require.False(t, paused)
}

func TestWithdrawZeroBalance(t *testing.T) {
	l := newTestLedger(t)

	_, err := l.Withdraw(testOwner, nil)
	require.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestWithdrawTransferFailureRestoresBalance(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.Donate(big.NewInt(9)))

	boom := errors.New("结算失败")
	_, err := l.Withdraw(testOwner, func(to common.Address, amount *big.Int) error {
		return boom
	})
	require.ErrorIs(t, err, boom)

	// 回滚后余额原样恢复，可以再次提取
	require.Equal(t, int64(9), l.Balance().Int64())

	amount, err := l.Withdraw(testOwner, nil)
	require.NoError(t, err)
	require.Equal(t, int64(9), amount.Int64())
}

// 结算回调期间发起的嵌套提款只能看到零余额，两次调用合计
// 最多转出第一次调用时的全部余额。
func TestWithdrawReentrancy(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.Donate(big.NewInt(10)))

	transferred := new(big.Int)
	var nestedErr error

	amount, err := l.Withdraw(testOwner, func(to common.Address, amount *big.Int) error {
		transferred.Add(transferred, amount)
		var nested *big.Int
		nested, nestedErr = l.Withdraw(testOwner, func(to common.Address, amount *big.Int) error {
			transferred.Add(transferred, amount)
			return nil
		})
		_ = nested
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, int64(10), amount.Int64())
	require.ErrorIs(t, nestedErr, ErrInsufficientBalance)
	require.Equal(t, int64(10), transferred.Int64())
	require.Equal(t, int64(0), l.Balance().Int64())
}

func TestOverflowFailsOperation(t *testing.T) {
	nearMax := new(big.Int).Sub(math.MaxBig256, big.NewInt(1))
	l := RestoreLedger(
		common.HexToAddress("0xabc0000000000000000000000000000000000abc"),
		testOwner, "满额活动", "org", "", big.NewInt(1), nearMax, false, time.Now(),
		[]Tier{{Name: "大额档", Amount: big.NewInt(5), Active: true}},
	)

	require.ErrorIs(t, l.Donate(big.NewInt(2)), ErrOverflow)
	require.ErrorIs(t, l.Fund(0, big.NewInt(5)), ErrOverflow)

	// 溢出失败不触碰余额和计数
	require.Equal(t, 0, l.Balance().Cmp(nearMax))
	require.Equal(t, uint64(0), l.Tiers()[0].DonatorCount)

	// 恰好到达上界是允许的
	require.NoError(t, l.Donate(big.NewInt(1)))
	require.Equal(t, 0, l.Balance().Cmp(math.MaxBig256))
}

// 守恒：余额始终等于已接受的捐赠之和减去已接受的提款之和。
func TestConservation(t *testing.T) {
	l := newTestLedger(t)
	_, err := l.AddTier(testOwner, "档位", "", big.NewInt(3))
	require.NoError(t, err)

	accepted := new(big.Int)

	for i := 0; i < 20; i++ {
		if err := l.Fund(0, big.NewInt(3)); err == nil {
			accepted.Add(accepted, big.NewInt(3))
		}
		if err := l.Donate(big.NewInt(int64(i % 4))); err == nil {
			accepted.Add(accepted, big.NewInt(int64(i%4)))
		}
		if i%7 == 0 {
			if amount, err := l.Withdraw(testOwner, nil); err == nil {
				accepted.Sub(accepted, amount)
			}
		}
	}

	require.Equal(t, 0, l.Balance().Cmp(accepted))
	require.True(t, l.Balance().Sign() >= 0)
}

// 完整生命周期：创建、加档、捐赠、暂停、恢复、提款、二次提款失败。
func TestCampaignLifecycle(t *testing.T) {
	r := NewRegistry()
	l, err := r.CreateCampaign(testOwner, "募捐", "org", "", big.NewInt(10))
	require.NoError(t, err)

	idx, err := l.AddTier(testOwner, "一单位档", "", big.NewInt(1))
	require.NoError(t, err)
	require.Equal(t, 0, idx)

	require.NoError(t, l.Fund(0, big.NewInt(1)))
	require.Equal(t, int64(1), l.Balance().Int64())
	require.Equal(t, uint64(1), l.Tiers()[0].DonatorCount)

	_, err = l.TogglePause(testOwner)
	require.NoError(t, err)
	require.ErrorIs(t, l.Fund(0, big.NewInt(1)), ErrCampaignPaused)

	_, err = l.TogglePause(testOwner)
	require.NoError(t, err)

	amount, err := l.Withdraw(testOwner, nil)
	require.NoError(t, err)
	require.Equal(t, int64(1), amount.Int64())
	require.Equal(t, int64(0), l.Balance().Int64())

	_, err = l.Withdraw(testOwner, nil)
	require.ErrorIs(t, err, ErrInsufficientBalance)
}
