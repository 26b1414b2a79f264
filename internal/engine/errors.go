package engine

import "errors"

// 引擎错误类型。所有错误对当次调用都是终态的：
// 失败的操作不产生任何状态变更，引擎自身不重试也不记录日志，
// 由调用方（handler层）负责向用户呈现。
var (
	ErrUnauthorized        = errors.New("无权限操作，仅限活动所有者")
	ErrCampaignPaused      = errors.New("活动已暂停，无法接受资金")
	ErrTierInactive        = errors.New("该捐赠档位已停用")
	ErrIndexOutOfRange     = errors.New("档位索引越界")
	ErrAmountMismatch      = errors.New("支付金额与档位金额不符")
	ErrInvalidAmount       = errors.New("金额必须大于0")
	ErrInvalidGoal         = errors.New("目标金额必须大于0")
	ErrInsufficientBalance = errors.New("余额为0，无可提取资金")
	ErrOverflow            = errors.New("余额溢出")
	ErrCampaignNotFound    = errors.New("活动不存在")
)
