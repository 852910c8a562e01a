package errors

import "errors"

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
// 交易状态机中任何「交易行 + 物品行」条件更新失败均归一为此错误
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// ErrInsufficientBalance 积分余额不足
// 扣减采用条件更新（balance >= amount），RowsAffected=0 即余额不足
var ErrInsufficientBalance = errors.New("积分余额不足")
