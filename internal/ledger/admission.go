package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/sysu-ecnc-dev/queue-exclusion/backend/internal/domain"
)

// ProposeRequest 是一次准入请求
// Date 为空时表示当天
type ProposeRequest struct {
	ICName       string
	ApproverName string
	Date         string
	StartPeriod  int
	EndPeriod    int
	CallerRole   domain.Role
}

// Propose 对请求做准入判定，按顺序检查：角色、名字、日期、时间窗口、
// 重复审批、每日上限、各小时段上限，第一个不满足的条件即为失败原因
// 检查和写入对同一天的其他准入、删除操作而言是原子的
func (l *Ledger) Propose(req ProposeRequest) (*domain.ApprovalEntry, error) {
	if !req.CallerRole.CanOperate() {
		return nil, ErrUnauthorized
	}

	icName := strings.TrimSpace(req.ICName)
	approverName := strings.TrimSpace(req.ApproverName)
	if icName == "" {
		return nil, &InvalidInputError{Reason: "ic name is empty"}
	}
	if approverName == "" {
		return nil, &InvalidInputError{Reason: "approver name is empty"}
	}

	now := l.Now()
	date := req.Date
	if date == "" {
		date = now.Format(DateLayout)
	}
	if err := validateDate(date); err != nil {
		return nil, err
	}
	// 过去的日期一律拒绝，ISO 日期的字典序就是时间序
	if date < now.Format(DateLayout) {
		return nil, &InvalidInputError{Reason: fmt.Sprintf("date %s is in the past", date)}
	}

	if req.StartPeriod < 0 || req.EndPeriod > domain.PeriodCount || req.StartPeriod >= req.EndPeriod {
		return nil, &InvalidInputError{
			Reason: fmt.Sprintf("period window [%d, %d) is out of range", req.StartPeriod, req.EndPeriod),
		}
	}

	l.limitsMu.RLock()
	dayCap := l.dailyCap
	limits := l.periodLimits
	l.limitsMu.RUnlock()

	day := l.day(date)

	day.mu.Lock()
	defer day.mu.Unlock()

	// 同一个 IC 当天已有审批时直接拒绝，无论时间窗口是否重叠
	for _, entry := range day.entries {
		if entry.ICName == icName {
			return nil, &DuplicateExclusionError{ICName: icName, Date: date}
		}
	}

	if dayCap > 0 && len(day.entries) >= dayCap {
		return nil, ErrCapExceeded
	}

	// 按编号升序扫描，报告窗口内第一个已满的小时段
	for p := req.StartPeriod; p < req.EndPeriod; p++ {
		if occupancy(day.entries, p) >= limits[p] {
			return nil, &SlotFullError{Period: p, Limit: limits[p]}
		}
	}

	entry := &domain.ApprovalEntry{
		EntryID:      l.lastID.Add(1),
		ICName:       icName,
		ApproverName: approverName,
		Date:         date,
		StartPeriod:  req.StartPeriod,
		EndPeriod:    req.EndPeriod,
		CreatedAtNs:  now.UnixNano(),
	}
	day.entries = append(day.entries, entry)

	l.mu.Lock()
	l.byID[entry.EntryID] = date
	l.mu.Unlock()

	return entry, nil
}

// validateDate 要求日期严格符合 YYYY-MM-DD 格式
func validateDate(date string) error {
	parsed, err := time.Parse(DateLayout, date)
	if err != nil || parsed.Format(DateLayout) != date {
		return &InvalidInputError{Reason: fmt.Sprintf("date %q is not a valid YYYY-MM-DD date", date)}
	}
	return nil
}
