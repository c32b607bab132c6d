package ledger

import (
	"fmt"

	"github.com/sysu-ecnc-dev/queue-exclusion/backend/internal/domain"
)

// DailyCap 返回当前的每日审批总数上限，0 表示不限制
func (l *Ledger) DailyCap() int {
	l.limitsMu.RLock()
	defer l.limitsMu.RUnlock()
	return l.dailyCap
}

// SetDailyCap 修改每日上限，只有管理员可以调用
// 调低上限不会影响已经准入的记录，只约束之后的准入
func (l *Ledger) SetDailyCap(value int, callerRole domain.Role) error {
	if callerRole != domain.RoleAdmin {
		return ErrUnauthorized
	}
	if value < 0 {
		return &InvalidInputError{Reason: "daily cap must not be negative"}
	}

	l.limitsMu.Lock()
	defer l.limitsMu.Unlock()
	l.dailyCap = value
	return nil
}

// PeriodLimits 返回 12 个小时段的上限，按编号升序
func (l *Ledger) PeriodLimits() []domain.PeriodLimit {
	l.limitsMu.RLock()
	defer l.limitsMu.RUnlock()

	limits := make([]domain.PeriodLimit, domain.PeriodCount)
	for p := range l.periodLimits {
		limits[p] = domain.PeriodLimit{Period: p, Limit: l.periodLimits[p]}
	}
	return limits
}

// SetPeriodLimit 修改某个小时段的上限，只有管理员可以调用
func (l *Ledger) SetPeriodLimit(period int, value int, callerRole domain.Role) error {
	if callerRole != domain.RoleAdmin {
		return ErrUnauthorized
	}
	if period < 0 || period >= domain.PeriodCount {
		return &InvalidInputError{Reason: fmt.Sprintf("period %d is out of range", period)}
	}
	if value < 0 {
		return &InvalidInputError{Reason: "period limit must not be negative"}
	}

	l.limitsMu.Lock()
	defer l.limitsMu.Unlock()
	l.periodLimits[period] = value
	return nil
}

// RestoreLimits 在启动时恢复持久化的上限配置，不做角色检查
func (l *Ledger) RestoreLimits(dailyCap int, periodLimits []domain.PeriodLimit) {
	l.limitsMu.Lock()
	defer l.limitsMu.Unlock()

	l.dailyCap = dailyCap
	for _, pl := range periodLimits {
		if pl.Period >= 0 && pl.Period < domain.PeriodCount {
			l.periodLimits[pl.Period] = pl.Limit
		}
	}
}
