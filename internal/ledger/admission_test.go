package ledger_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/queue-exclusion/backend/internal/domain"
	"github.com/sysu-ecnc-dev/queue-exclusion/backend/internal/ledger"
)

const (
	today    = "2026-09-01"
	tomorrow = "2026-09-02"
)

// newLedger 返回一个当前时间固定在 today 早上的账本
func newLedger(dailyCap, defaultLimit int) *ledger.Ledger {
	l := ledger.New(dailyCap, defaultLimit)
	l.Now = func() time.Time {
		return time.Date(2026, 9, 1, 8, 30, 0, 0, time.UTC)
	}
	return l
}

func propose(l *ledger.Ledger, icName, date string, start, end int) (*domain.ApprovalEntry, error) {
	return l.Propose(ledger.ProposeRequest{
		ICName:       icName,
		ApproverName: "王经理",
		Date:         date,
		StartPeriod:  start,
		EndPeriod:    end,
		CallerRole:   domain.RoleMember,
	})
}

func TestPropose_Admits(t *testing.T) {
	l := newLedger(10, 10)

	entry, err := propose(l, "Jane Smith", today, 2, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(1), entry.EntryID)
	assert.Equal(t, "Jane Smith", entry.ICName)
	assert.Equal(t, "王经理", entry.ApproverName)
	assert.Equal(t, today, entry.Date)
	assert.NotZero(t, entry.CreatedAtNs)

	// 名字去掉首尾空白后保留
	entry2, err := propose(l, "  Bob Chen  ", today, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, "Bob Chen", entry2.ICName)
	assert.Equal(t, int64(2), entry2.EntryID)
}

func TestPropose_DefaultsToToday(t *testing.T) {
	l := newLedger(10, 10)

	entry, err := propose(l, "Jane", "", 3, 4)
	require.NoError(t, err)
	assert.Equal(t, today, entry.Date)
}

func TestPropose_Rejections(t *testing.T) {
	tests := map[string]struct {
		req      ledger.ProposeRequest
		expected error
	}{
		"guest 不允许创建": {
			req: ledger.ProposeRequest{
				ICName: "Jane", ApproverName: "Boss", Date: today,
				StartPeriod: 0, EndPeriod: 1, CallerRole: domain.RoleGuest,
			},
			expected: ledger.ErrUnauthorized,
		},
		"IC 名字为空": {
			req: ledger.ProposeRequest{
				ICName: "   ", ApproverName: "Boss", Date: today,
				StartPeriod: 0, EndPeriod: 1, CallerRole: domain.RoleMember,
			},
			expected: ledger.ErrInvalidInput,
		},
		"审批人名字为空": {
			req: ledger.ProposeRequest{
				ICName: "Jane", ApproverName: "", Date: today,
				StartPeriod: 0, EndPeriod: 1, CallerRole: domain.RoleMember,
			},
			expected: ledger.ErrInvalidInput,
		},
		"过去的日期": {
			req: ledger.ProposeRequest{
				ICName: "Jane", ApproverName: "Boss", Date: "2026-08-31",
				StartPeriod: 0, EndPeriod: 1, CallerRole: domain.RoleMember,
			},
			expected: ledger.ErrInvalidInput,
		},
		"格式错误的日期": {
			req: ledger.ProposeRequest{
				ICName: "Jane", ApproverName: "Boss", Date: "2026-9-1",
				StartPeriod: 0, EndPeriod: 1, CallerRole: domain.RoleMember,
			},
			expected: ledger.ErrInvalidInput,
		},
		"起始段为负": {
			req: ledger.ProposeRequest{
				ICName: "Jane", ApproverName: "Boss", Date: today,
				StartPeriod: -1, EndPeriod: 1, CallerRole: domain.RoleMember,
			},
			expected: ledger.ErrInvalidInput,
		},
		"结束段越界": {
			req: ledger.ProposeRequest{
				ICName: "Jane", ApproverName: "Boss", Date: today,
				StartPeriod: 0, EndPeriod: 13, CallerRole: domain.RoleMember,
			},
			expected: ledger.ErrInvalidInput,
		},
		"空窗口": {
			req: ledger.ProposeRequest{
				ICName: "Jane", ApproverName: "Boss", Date: today,
				StartPeriod: 5, EndPeriod: 5, CallerRole: domain.RoleMember,
			},
			expected: ledger.ErrInvalidInput,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			l := newLedger(10, 10)
			_, err := l.Propose(tc.req)
			assert.ErrorIs(t, err, tc.expected)
		})
	}
}

func TestPropose_DuplicateExclusion(t *testing.T) {
	l := newLedger(10, 10)

	_, err := propose(l, "Jane", today, 2, 4)
	require.NoError(t, err)

	// 同一天再次提交同一个 IC，无论窗口是否重叠都拒绝
	_, err = propose(l, "Jane", today, 8, 10)
	assert.ErrorIs(t, err, ledger.ErrDuplicateExclusion)

	var dupErr *ledger.DuplicateExclusionError
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, "Jane", dupErr.ICName)
	assert.Equal(t, today, dupErr.Date)

	// 换一天就没问题
	_, err = propose(l, "Jane", tomorrow, 8, 10)
	assert.NoError(t, err)
}

func TestPropose_CapExceeded(t *testing.T) {
	l := newLedger(1, 10)

	_, err := propose(l, "Jane", today, 0, 2)
	require.NoError(t, err)

	// 即使各小时段都有空位，每日上限也会挡住不同 IC 的不重叠窗口
	_, err = propose(l, "Bob", today, 6, 8)
	assert.ErrorIs(t, err, ledger.ErrCapExceeded)

	// 其他日期不受影响
	_, err = propose(l, "Bob", tomorrow, 6, 8)
	assert.NoError(t, err)
}

func TestPropose_ZeroCapMeansUnlimited(t *testing.T) {
	l := newLedger(0, 10)

	for _, name := range []string{"A", "B", "C", "D", "E"} {
		_, err := propose(l, name, today, 0, 1)
		require.NoError(t, err)
	}
}

func TestPropose_SlotFull(t *testing.T) {
	l := newLedger(10, 10)
	require.NoError(t, l.SetPeriodLimit(3, 2, domain.RoleAdmin))

	first, err := propose(l, "Jane", today, 3, 4)
	require.NoError(t, err)
	_, err = propose(l, "Bob", today, 2, 5)
	require.NoError(t, err)

	// 第三个覆盖 period 3 的窗口被拒绝，并报告第一个已满的小时段
	_, err = propose(l, "Carol", today, 1, 6)
	require.ErrorIs(t, err, ledger.ErrSlotFull)

	var slotErr *ledger.SlotFullError
	require.ErrorAs(t, err, &slotErr)
	assert.Equal(t, 3, slotErr.Period)
	assert.Equal(t, 2, slotErr.Limit)

	// 删掉一条记录之后就能准入了
	require.NoError(t, l.Remove(first.EntryID, domain.RoleMember))
	_, err = propose(l, "Carol", today, 1, 6)
	assert.NoError(t, err)
}

func TestPropose_SlotFullReportsFirstOffendingPeriod(t *testing.T) {
	l := newLedger(10, 10)
	require.NoError(t, l.SetPeriodLimit(4, 0, domain.RoleAdmin))
	require.NoError(t, l.SetPeriodLimit(6, 0, domain.RoleAdmin))

	_, err := propose(l, "Jane", today, 2, 8)
	var slotErr *ledger.SlotFullError
	require.ErrorAs(t, err, &slotErr)
	assert.Equal(t, 4, slotErr.Period)
}

func TestRemove(t *testing.T) {
	l := newLedger(10, 10)

	entry, err := propose(l, "Jane", today, 2, 4)
	require.NoError(t, err)

	assert.ErrorIs(t, l.Remove(entry.EntryID, domain.RoleGuest), ledger.ErrUnauthorized)
	assert.NoError(t, l.Remove(entry.EntryID, domain.RoleMember))

	// 重复删除返回 NotFound 而不是静默成功
	assert.ErrorIs(t, l.Remove(entry.EntryID, domain.RoleMember), ledger.ErrNotFound)
	assert.ErrorIs(t, l.Remove(99999, domain.RoleAdmin), ledger.ErrNotFound)

	summary, err := l.DailySummary(today)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.ApprovedCount)
}

func TestAdmitRemoveRoundTrip(t *testing.T) {
	l := newLedger(10, 10)

	_, err := propose(l, "Jane", today, 1, 3)
	require.NoError(t, err)

	before, err := l.SlotUsage(today)
	require.NoError(t, err)
	beforeSummary, err := l.DailySummary(today)
	require.NoError(t, err)

	entry, err := propose(l, "Bob", today, 2, 6)
	require.NoError(t, err)
	require.NoError(t, l.Remove(entry.EntryID, domain.RoleMember))

	after, err := l.SlotUsage(today)
	require.NoError(t, err)
	afterSummary, err := l.DailySummary(today)
	require.NoError(t, err)

	assert.Equal(t, before, after)
	assert.Equal(t, beforeSummary.ApprovedCount, afterSummary.ApprovedCount)
}

func TestRestore(t *testing.T) {
	l := newLedger(10, 10)

	// 历史数据中允许出现已经过去的日期
	l.Restore([]*domain.ApprovalEntry{
		{EntryID: 7, ICName: "Jane", ApproverName: "Boss", Date: "2026-08-20", StartPeriod: 0, EndPeriod: 2},
		{EntryID: 3, ICName: "Bob", ApproverName: "Boss", Date: today, StartPeriod: 5, EndPeriod: 6},
	})

	summary, err := l.DailySummary("2026-08-20")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.ApprovedCount)

	// 新分配的 ID 必须接在已有最大 ID 之后
	entry, err := propose(l, "Carol", today, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(8), entry.EntryID)

	// 恢复的记录同样可以删除
	assert.NoError(t, l.Remove(7, domain.RoleMember))
}

func TestConcurrentAdmissionSingleFreeSlot(t *testing.T) {
	l := newLedger(10, 10)
	require.NoError(t, l.SetPeriodLimit(5, 1, domain.RoleAdmin))

	const attempts = 16

	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = l.Propose(ledger.ProposeRequest{
				ICName:       names[i],
				ApproverName: "Boss",
				Date:         today,
				StartPeriod:  5,
				EndPeriod:    6,
				CallerRole:   domain.RoleMember,
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ledger.ErrSlotFull)
		}
	}
	assert.Equal(t, 1, succeeded)

	usage, err := l.SlotUsage(today)
	require.NoError(t, err)
	assert.Equal(t, 1, usage[5].Count)
}

func TestConcurrentDistinctDates(t *testing.T) {
	l := newLedger(1, 10)

	dates := []string{"2026-09-01", "2026-09-02", "2026-09-03", "2026-09-04"}

	var wg sync.WaitGroup
	for _, date := range dates {
		wg.Add(1)
		go func(date string) {
			defer wg.Done()
			_, err := propose(l, "Jane", date, 0, 1)
			assert.NoError(t, err)
		}(date)
	}
	wg.Wait()

	for _, date := range dates {
		summary, err := l.DailySummary(date)
		require.NoError(t, err)
		assert.Equal(t, 1, summary.ApprovedCount)
	}
}

func TestOccupancyNeverExceedsLimit(t *testing.T) {
	l := newLedger(0, 3)

	// 随便塞一批窗口，有成功有失败，最后检查不变式
	windows := [][2]int{{0, 4}, {1, 3}, {2, 6}, {0, 2}, {3, 5}, {1, 5}, {2, 4}, {0, 6}}
	for i, w := range windows {
		_, err := propose(l, names[i], today, w[0], w[1])
		if err != nil {
			assert.ErrorIs(t, err, ledger.ErrSlotFull)
		}
	}

	usage, err := l.SlotUsageWithLimits(today)
	require.NoError(t, err)
	for _, u := range usage {
		assert.LessOrEqual(t, u.Count, u.Limit)
	}
}

var names = []string{
	"A01", "A02", "A03", "A04", "A05", "A06", "A07", "A08",
	"A09", "A10", "A11", "A12", "A13", "A14", "A15", "A16",
}

func TestRemoveConcurrentSameEntry(t *testing.T) {
	l := newLedger(10, 10)

	entry, err := propose(l, "Jane", today, 0, 2)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]error, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = l.Remove(entry.EntryID, domain.RoleMember)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.True(t, errors.Is(err, ledger.ErrNotFound))
		}
	}
	assert.Equal(t, 1, succeeded)
}
