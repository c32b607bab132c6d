package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPeriodLabel(t *testing.T) {
	assert.Equal(t, "7 AM - 8 AM", PeriodLabel(0))
	assert.Equal(t, "12 PM - 1 PM", PeriodLabel(5))
	assert.Equal(t, "6 PM - 7 PM", PeriodLabel(11))
	assert.Equal(t, "", PeriodLabel(-1))
	assert.Equal(t, "", PeriodLabel(12))
}

func TestApprovalEntry_Covers(t *testing.T) {
	entry := ApprovalEntry{StartPeriod: 2, EndPeriod: 5}

	assert.False(t, entry.Covers(1))
	assert.True(t, entry.Covers(2))
	assert.True(t, entry.Covers(4))
	// 窗口是左闭右开的
	assert.False(t, entry.Covers(5))
}

func TestRole_CanOperate(t *testing.T) {
	assert.True(t, RoleAdmin.CanOperate())
	assert.True(t, RoleMember.CanOperate())
	assert.False(t, RoleGuest.CanOperate())
	assert.False(t, Role("unknown").CanOperate())
}
