package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/queue-exclusion/backend/internal/domain"
	"github.com/sysu-ecnc-dev/queue-exclusion/backend/internal/ledger"
)

func TestSetDailyCap(t *testing.T) {
	l := newLedger(10, 10)

	assert.ErrorIs(t, l.SetDailyCap(5, domain.RoleMember), ledger.ErrUnauthorized)
	assert.ErrorIs(t, l.SetDailyCap(5, domain.RoleGuest), ledger.ErrUnauthorized)
	assert.ErrorIs(t, l.SetDailyCap(-1, domain.RoleAdmin), ledger.ErrInvalidInput)

	require.NoError(t, l.SetDailyCap(5, domain.RoleAdmin))
	assert.Equal(t, 5, l.DailyCap())
}

func TestSetPeriodLimit(t *testing.T) {
	l := newLedger(10, 10)

	assert.ErrorIs(t, l.SetPeriodLimit(0, 5, domain.RoleMember), ledger.ErrUnauthorized)
	assert.ErrorIs(t, l.SetPeriodLimit(-1, 5, domain.RoleAdmin), ledger.ErrInvalidInput)
	assert.ErrorIs(t, l.SetPeriodLimit(12, 5, domain.RoleAdmin), ledger.ErrInvalidInput)
	assert.ErrorIs(t, l.SetPeriodLimit(0, -5, domain.RoleAdmin), ledger.ErrInvalidInput)

	require.NoError(t, l.SetPeriodLimit(0, 5, domain.RoleAdmin))

	limits := l.PeriodLimits()
	require.Len(t, limits, domain.PeriodCount)
	assert.Equal(t, 5, limits[0].Limit)
	// 其余小时段保持默认值
	for _, pl := range limits[1:] {
		assert.Equal(t, 10, pl.Limit)
	}
}

func TestLoweringLimitKeepsExistingEntries(t *testing.T) {
	l := newLedger(10, 10)

	_, err := propose(l, "Jane", today, 3, 4)
	require.NoError(t, err)
	_, err = propose(l, "Bob", today, 3, 4)
	require.NoError(t, err)

	// 把上限压到当前占用数以下，已有记录不受影响
	require.NoError(t, l.SetPeriodLimit(3, 1, domain.RoleAdmin))

	summary, err := l.DailySummary(today)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.ApprovedCount)

	usage, err := l.SlotUsageWithLimits(today)
	require.NoError(t, err)
	assert.Equal(t, 2, usage[3].Count)
	assert.Equal(t, 1, usage[3].Limit)

	// 但之后的准入会被挡住
	_, err = propose(l, "Carol", today, 3, 4)
	assert.ErrorIs(t, err, ledger.ErrSlotFull)
}

func TestLoweringCapKeepsExistingEntries(t *testing.T) {
	l := newLedger(0, 10)

	for _, name := range []string{"A", "B", "C"} {
		_, err := propose(l, name, today, 0, 1)
		require.NoError(t, err)
	}

	require.NoError(t, l.SetDailyCap(1, domain.RoleAdmin))

	summary, err := l.DailySummary(today)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.ApprovedCount)

	_, err = propose(l, "D", today, 5, 6)
	assert.ErrorIs(t, err, ledger.ErrCapExceeded)
}

func TestRestoreLimits(t *testing.T) {
	l := newLedger(10, 10)

	l.RestoreLimits(7, []domain.PeriodLimit{
		{Period: 2, Limit: 4},
		{Period: 99, Limit: 1}, // 越界的记录直接忽略
	})

	assert.Equal(t, 7, l.DailyCap())
	limits := l.PeriodLimits()
	assert.Equal(t, 4, limits[2].Limit)
	assert.Equal(t, 10, limits[3].Limit)
}
