package errors

import "errors"

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// ErrPipelineBusy 同一 TP 的流水线正在运行，需等待其完成
var ErrPipelineBusy = errors.New("该 TP 的提交处理流水线正在运行")
