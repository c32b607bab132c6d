package ledger_test

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/queue-exclusion/backend/internal/domain"
	"github.com/sysu-ecnc-dev/queue-exclusion/backend/internal/ledger"
)

func TestDailySummary_CountsEntriesNotOccupancy(t *testing.T) {
	l := newLedger(10, 10)

	// 一条跨 4 个小时段的记录在概览中只算一条
	_, err := propose(l, "Jane", today, 2, 6)
	require.NoError(t, err)
	_, err = propose(l, "Bob", today, 3, 4)
	require.NoError(t, err)

	summary, err := l.DailySummary(today)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.ApprovedCount)
	assert.ElementsMatch(t, []string{"Jane", "Bob"}, summary.ICNames)
	assert.Equal(t, 10, summary.Cap)

	usage, err := l.SlotUsage(today)
	require.NoError(t, err)
	assert.Equal(t, 2, usage[3].Count)
	assert.Equal(t, 1, usage[2].Count)
	assert.Equal(t, 0, usage[6].Count)
}

func TestDailySummary_EmptyDate(t *testing.T) {
	l := newLedger(5, 10)

	summary, err := l.DailySummary("2026-12-25")
	require.NoError(t, err)
	assert.Equal(t, 0, summary.ApprovedCount)
	assert.Empty(t, summary.ICNames)
	assert.Equal(t, 5, summary.Cap)

	_, err = l.DailySummary("not-a-date")
	assert.ErrorIs(t, err, ledger.ErrInvalidInput)
}

func TestSummaryRange(t *testing.T) {
	l := newLedger(10, 10)

	dates := []string{"2026-09-03", "2026-09-01", "2026-09-05"}
	for _, date := range dates {
		_, err := propose(l, "Jane", date, 0, 1)
		require.NoError(t, err)
	}

	// 删空的日期不应该出现在区间结果里
	entry, err := propose(l, "Bob", "2026-09-04", 0, 1)
	require.NoError(t, err)
	require.NoError(t, l.Remove(entry.EntryID, domain.RoleMember))

	tests := map[string]struct {
		start, end string
		expected   []string
	}{
		"两端不限":  {"", "", []string{"2026-09-01", "2026-09-03", "2026-09-05"}},
		"只限起始":  {"2026-09-02", "", []string{"2026-09-03", "2026-09-05"}},
		"只限结束":  {"", "2026-09-03", []string{"2026-09-01", "2026-09-03"}},
		"两端都限":  {"2026-09-02", "2026-09-04", []string{"2026-09-03"}},
		"区间为空":  {"2026-10-01", "2026-10-31", []string{}},
		"单日区间":  {"2026-09-05", "2026-09-05", []string{"2026-09-05"}},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			summaries, err := l.SummaryRange(tc.start, tc.end)
			require.NoError(t, err)

			got := make([]string, 0, len(summaries))
			for _, s := range summaries {
				got = append(got, s.Date)
			}
			assert.Equal(t, tc.expected, got)
			assert.True(t, sort.StringsAreSorted(got))
		})
	}
}

func TestSummaryRange_InvalidRange(t *testing.T) {
	l := newLedger(10, 10)

	_, err := l.SummaryRange("2026-09-05", "2026-09-01")
	assert.ErrorIs(t, err, ledger.ErrInvalidInput)

	_, err = l.SummaryRange("benji", "")
	assert.ErrorIs(t, err, ledger.ErrInvalidInput)
}

func TestHistory(t *testing.T) {
	l := newLedger(10, 10)

	_, err := propose(l, "Jane", "2026-09-01", 0, 2)
	require.NoError(t, err)
	_, err = propose(l, "Bob", "2026-09-01", 4, 6)
	require.NoError(t, err)
	_, err = propose(l, "Carol", "2026-09-03", 1, 2)
	require.NoError(t, err)

	records, err := l.History("", "")
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "2026-09-01", records[0].Date)
	assert.Len(t, records[0].Record.Entries, 2)
	assert.Equal(t, 10, records[0].Record.Cap)
	assert.Equal(t, "2026-09-03", records[1].Date)
	assert.Len(t, records[1].Record.Entries, 1)
}

func TestSlotUsageWithLimits(t *testing.T) {
	l := newLedger(10, 10)
	require.NoError(t, l.SetPeriodLimit(0, 3, domain.RoleAdmin))

	_, err := propose(l, "Jane", today, 0, 1)
	require.NoError(t, err)

	usage, err := l.SlotUsageWithLimits(today)
	require.NoError(t, err)
	require.Len(t, usage, domain.PeriodCount)

	assert.Equal(t, 1, usage[0].Count)
	assert.Equal(t, 3, usage[0].Limit)
	assert.Equal(t, "7 AM - 8 AM", usage[0].Label)
	assert.Equal(t, 10, usage[11].Limit)
	assert.Equal(t, "6 PM - 7 PM", usage[11].Label)
}

func TestFutureApprovals(t *testing.T) {
	l := newLedger(10, 10)

	_, err := propose(l, "Jane", today, 0, 1)
	require.NoError(t, err)
	_, err = propose(l, "Bob", "2026-09-02", 0, 1)
	require.NoError(t, err)
	_, err = propose(l, "Carol", "2026-09-10", 0, 1)
	require.NoError(t, err)

	future, err := l.FutureApprovals(today)
	require.NoError(t, err)

	names := make([]string, 0, len(future))
	for _, entry := range future {
		names = append(names, entry.ICName)
	}
	assert.ElementsMatch(t, []string{"Bob", "Carol"}, names)
}

func TestRemainingSlots(t *testing.T) {
	l := newLedger(2, 10)

	remaining, err := l.RemainingSlots(today)
	require.NoError(t, err)
	assert.Equal(t, 2, remaining)

	_, err = propose(l, "Jane", today, 0, 1)
	require.NoError(t, err)

	remaining, err = l.RemainingSlots(today)
	require.NoError(t, err)
	assert.Equal(t, 1, remaining)

	// 上限为 0 表示不限量，此时剩余数直接返回 0
	require.NoError(t, l.SetDailyCap(0, domain.RoleAdmin))
	remaining, err = l.RemainingSlots(today)
	require.NoError(t, err)
	assert.Equal(t, 0, remaining)
}

func TestDailyApprovals(t *testing.T) {
	l := newLedger(10, 10)

	_, err := propose(l, "Jane", today, 0, 1)
	require.NoError(t, err)
	_, err = propose(l, "Bob", tomorrow, 0, 1)
	require.NoError(t, err)

	entries, err := l.DailyApprovals(today)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Jane", entries[0].ICName)

	entries, err = l.DailyApprovals("2026-11-11")
	require.NoError(t, err)
	assert.Empty(t, entries)
}
