package ledger

import (
	"errors"
	"fmt"
)

// 准入失败的几种结果，handler 依靠 errors.Is / errors.As 来区分它们并生成提示信息
var (
	ErrUnauthorized       = errors.New("caller role is not permitted to perform this operation")
	ErrInvalidInput       = errors.New("invalid input")
	ErrDuplicateExclusion = errors.New("ic already has an approved exclusion on this date")
	ErrCapExceeded        = errors.New("daily approval cap reached")
	ErrSlotFull           = errors.New("hour slot is at capacity")
	ErrNotFound           = errors.New("approval entry not found")
)

// InvalidInputError 带上具体原因的输入错误
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s", e.Reason)
}

func (e *InvalidInputError) Unwrap() error {
	return ErrInvalidInput
}

// DuplicateExclusionError 表示该 IC 在当天已经有审批记录
type DuplicateExclusionError struct {
	ICName string
	Date   string
}

func (e *DuplicateExclusionError) Error() string {
	return fmt.Sprintf("ic %q already has an approved exclusion on %s", e.ICName, e.Date)
}

func (e *DuplicateExclusionError) Unwrap() error {
	return ErrDuplicateExclusion
}

// SlotFullError 表示窗口内编号最小的已满小时段
type SlotFullError struct {
	Period int
	Limit  int
}

func (e *SlotFullError) Error() string {
	return fmt.Sprintf("hour slot %d is at capacity (%d/%d)", e.Period, e.Limit, e.Limit)
}

func (e *SlotFullError) Unwrap() error {
	return ErrSlotFull
}
