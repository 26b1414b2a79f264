package engine

import (
	"github.com/ethereum/go-ethereum/common"
)

// RequireOwner 所有者权限检查。无状态，失败即终态，不存在重试语义。
// 所有仅限所有者的变更操作（addTier、setTierActive、togglePause、withdraw）
// 在执行前都必须通过此检查。
func RequireOwner(owner, caller common.Address) error {
	if caller != owner {
		return ErrUnauthorized
	}
	return nil
}
