package ledger

import (
	"sort"

	"github.com/sysu-ecnc-dev/queue-exclusion/backend/internal/domain"
)

// 所有查询都是只读投影，返回调用时刻已提交的最新状态
// 返回的切片都是拷贝，记录本身不可变，因此共享指针是安全的

// DailySummary 返回某一天的审批概览，该天没有任何记录时也会返回（计数为 0）
func (l *Ledger) DailySummary(date string) (*domain.DaySummary, error) {
	if err := validateDate(date); err != nil {
		return nil, err
	}

	summary := &domain.DaySummary{
		Date:    date,
		Cap:     l.DailyCap(),
		ICNames: []string{},
	}

	day := l.lookup(date)
	if day == nil {
		return summary, nil
	}

	day.mu.Lock()
	defer day.mu.Unlock()

	// approvedCount 是记录条数，跨多个小时段的记录不会被重复计算
	summary.ApprovedCount = len(day.entries)
	for _, entry := range day.entries {
		summary.ICNames = append(summary.ICNames, entry.ICName)
	}
	return summary, nil
}

// SummaryRange 返回日期区间内每一天的概览，两端都可以为空表示不限
// 结果按日期升序，没有记录的日期不会被补进去
func (l *Ledger) SummaryRange(startDate, endDate string) ([]*domain.DaySummary, error) {
	dates, err := l.datesInRange(startDate, endDate)
	if err != nil {
		return nil, err
	}

	summaries := make([]*domain.DaySummary, 0, len(dates))
	for _, date := range dates {
		summary, err := l.DailySummary(date)
		if err != nil {
			return nil, err
		}
		if summary.ApprovedCount == 0 {
			continue
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// History 返回日期区间内每一天的账本快照，区间语义与 SummaryRange 一致
func (l *Ledger) History(startDate, endDate string) ([]*domain.HistoryRecord, error) {
	dates, err := l.datesInRange(startDate, endDate)
	if err != nil {
		return nil, err
	}

	dayCap := l.DailyCap()
	records := make([]*domain.HistoryRecord, 0, len(dates))
	for _, date := range dates {
		day := l.lookup(date)
		if day == nil {
			continue
		}

		day.mu.Lock()
		entries := make([]*domain.ApprovalEntry, len(day.entries))
		copy(entries, day.entries)
		day.mu.Unlock()

		if len(entries) == 0 {
			continue
		}
		records = append(records, &domain.HistoryRecord{
			Date:   date,
			Record: domain.DailyCapacity{Cap: dayCap, Entries: entries},
		})
	}
	return records, nil
}

// SlotUsage 返回某一天 12 个小时段各自的占用数
func (l *Ledger) SlotUsage(date string) ([]domain.SlotUsage, error) {
	counts, err := l.slotCounts(date)
	if err != nil {
		return nil, err
	}

	usage := make([]domain.SlotUsage, domain.PeriodCount)
	for p := range usage {
		usage[p] = domain.SlotUsage{Period: p, Label: domain.PeriodLabel(p), Count: counts[p]}
	}
	return usage, nil
}

// SlotUsageWithLimits 在占用数的基础上带上各小时段当前的上限
func (l *Ledger) SlotUsageWithLimits(date string) ([]domain.SlotUsageWithLimit, error) {
	counts, err := l.slotCounts(date)
	if err != nil {
		return nil, err
	}

	l.limitsMu.RLock()
	limits := l.periodLimits
	l.limitsMu.RUnlock()

	usage := make([]domain.SlotUsageWithLimit, domain.PeriodCount)
	for p := range usage {
		usage[p] = domain.SlotUsageWithLimit{
			Period: p,
			Label:  domain.PeriodLabel(p),
			Count:  counts[p],
			Limit:  limits[p],
		}
	}
	return usage, nil
}

func (l *Ledger) slotCounts(date string) ([domain.PeriodCount]int, error) {
	var counts [domain.PeriodCount]int

	if err := validateDate(date); err != nil {
		return counts, err
	}

	day := l.lookup(date)
	if day == nil {
		return counts, nil
	}

	day.mu.Lock()
	defer day.mu.Unlock()
	for p := range counts {
		counts[p] = occupancy(day.entries, p)
	}
	return counts, nil
}

// DailyApprovals 返回某一天的全部审批记录
func (l *Ledger) DailyApprovals(date string) ([]*domain.ApprovalEntry, error) {
	if err := validateDate(date); err != nil {
		return nil, err
	}

	day := l.lookup(date)
	if day == nil {
		return []*domain.ApprovalEntry{}, nil
	}

	day.mu.Lock()
	defer day.mu.Unlock()
	entries := make([]*domain.ApprovalEntry, len(day.entries))
	copy(entries, day.entries)
	return entries, nil
}

// FutureApprovals 返回日期严格大于 afterDate 的全部审批记录，不保证顺序
func (l *Ledger) FutureApprovals(afterDate string) ([]*domain.ApprovalEntry, error) {
	if err := validateDate(afterDate); err != nil {
		return nil, err
	}

	l.mu.RLock()
	days := make(map[string]*dayRecord, len(l.days))
	for date, day := range l.days {
		if date > afterDate {
			days[date] = day
		}
	}
	l.mu.RUnlock()

	entries := []*domain.ApprovalEntry{}
	for _, day := range days {
		day.mu.Lock()
		entries = append(entries, day.entries...)
		day.mu.Unlock()
	}
	return entries, nil
}

// RemainingSlots 返回某一天在每日上限下还可以准入的数量，上限为 0 时返回 0
func (l *Ledger) RemainingSlots(date string) (int, error) {
	summary, err := l.DailySummary(date)
	if err != nil {
		return 0, err
	}
	if summary.Cap <= summary.ApprovedCount {
		return 0, nil
	}
	return summary.Cap - summary.ApprovedCount, nil
}

// datesInRange 收集账本中落在区间内的日期并升序排序，空串表示该端不限
func (l *Ledger) datesInRange(startDate, endDate string) ([]string, error) {
	if startDate != "" {
		if err := validateDate(startDate); err != nil {
			return nil, err
		}
	}
	if endDate != "" {
		if err := validateDate(endDate); err != nil {
			return nil, err
		}
	}
	if startDate != "" && endDate != "" && startDate > endDate {
		return nil, &InvalidInputError{Reason: "start date is after end date"}
	}

	l.mu.RLock()
	dates := make([]string, 0, len(l.days))
	for date := range l.days {
		if startDate != "" && date < startDate {
			continue
		}
		if endDate != "" && date > endDate {
			continue
		}
		dates = append(dates, date)
	}
	l.mu.RUnlock()

	sort.Strings(dates)
	return dates, nil
}
