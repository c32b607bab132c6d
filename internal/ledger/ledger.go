package ledger

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/sysu-ecnc-dev/queue-exclusion/backend/internal/domain"
)

const DateLayout = "2006-01-02"

// Ledger 是容量账本，按日期维护已准入的审批记录以及由此导出的各小时段占用数
// 互斥的粒度是单个日期：同一天的准入和删除串行执行，不同日期之间互不阻塞
type Ledger struct {
	mu   sync.RWMutex
	days map[string]*dayRecord
	byID map[int64]string // entryID -> date，用于删除时定位

	limitsMu     sync.RWMutex
	dailyCap     int
	periodLimits [domain.PeriodCount]int

	lastID atomic.Int64

	// 测试时可以替换掉这个函数来固定当前时间
	Now func() time.Time
}

type dayRecord struct {
	mu      sync.Mutex
	entries []*domain.ApprovalEntry
}

func New(dailyCap int, defaultPeriodLimit int) *Ledger {
	l := &Ledger{
		days:     make(map[string]*dayRecord),
		byID:     make(map[int64]string),
		dailyCap: dailyCap,
		Now:      time.Now,
	}
	for p := range l.periodLimits {
		l.periodLimits[p] = defaultPeriodLimit
	}
	return l
}

// day 返回某个日期对应的记录，不存在时创建
// 日期记录一旦创建就不会从 map 中移除，因此拿到指针后无需再持有外层锁
func (l *Ledger) day(date string) *dayRecord {
	l.mu.RLock()
	day, exists := l.days[date]
	l.mu.RUnlock()
	if exists {
		return day
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if day, exists = l.days[date]; !exists {
		day = &dayRecord{}
		l.days[date] = day
	}
	return day
}

// lookup 与 day 类似，但不存在时不创建
func (l *Ledger) lookup(date string) *dayRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.days[date]
}

// occupancy 统计窗口覆盖了 period 的记录数，调用方必须持有 day.mu
func occupancy(entries []*domain.ApprovalEntry, period int) int {
	count := 0
	for _, entry := range entries {
		if entry.Covers(period) {
			count++
		}
	}
	return count
}

// Restore 在启动时把持久化的记录灌回账本，不做任何准入检查
// 历史记录在当初准入时已经通过了检查，即使日期已经过去也必须保留以供查询
func (l *Ledger) Restore(entries []*domain.ApprovalEntry) {
	for _, entry := range entries {
		day := l.day(entry.Date)

		day.mu.Lock()
		day.entries = append(day.entries, entry)
		day.mu.Unlock()

		l.mu.Lock()
		l.byID[entry.EntryID] = entry.Date
		l.mu.Unlock()

		for {
			last := l.lastID.Load()
			if entry.EntryID <= last || l.lastID.CompareAndSwap(last, entry.EntryID) {
				break
			}
		}
	}
}

// Remove 删除指定的审批记录并释放其占用的容量
func (l *Ledger) Remove(entryID int64, callerRole domain.Role) error {
	if !callerRole.CanOperate() {
		return ErrUnauthorized
	}

	l.mu.RLock()
	date, exists := l.byID[entryID]
	day := l.days[date]
	l.mu.RUnlock()
	if !exists || day == nil {
		return ErrNotFound
	}

	day.mu.Lock()
	removed := false
	for i, entry := range day.entries {
		if entry.EntryID == entryID {
			day.entries = append(day.entries[:i], day.entries[i+1:]...)
			removed = true
			break
		}
	}
	day.mu.Unlock()

	// 并发删除同一条记录时只有先到的能删成功，后到的视为记录不存在
	if !removed {
		return ErrNotFound
	}

	l.mu.Lock()
	delete(l.byID, entryID)
	l.mu.Unlock()

	return nil
}
