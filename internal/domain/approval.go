package domain

// PeriodCount 是每天固定的小时段数量，对应早上 7 点到晚上 7 点
const PeriodCount = 12

// 各个小时段的展示名称，下标即 period 编号，顺序固定不可配置
var PeriodLabels = [PeriodCount]string{
	"7 AM - 8 AM",
	"8 AM - 9 AM",
	"9 AM - 10 AM",
	"10 AM - 11 AM",
	"11 AM - 12 PM",
	"12 PM - 1 PM",
	"1 PM - 2 PM",
	"2 PM - 3 PM",
	"3 PM - 4 PM",
	"4 PM - 5 PM",
	"5 PM - 6 PM",
	"6 PM - 7 PM",
}

// PeriodLabel 返回某个小时段的展示名称，编号越界时返回空字符串
func PeriodLabel(period int) string {
	if period < 0 || period >= PeriodCount {
		return ""
	}
	return PeriodLabels[period]
}

// ApprovalEntry 表示某个 IC 在某一天的某个时间窗口内免除队列值班的审批记录
// 时间窗口为左闭右开区间 [StartPeriod, EndPeriod)，创建后不可修改，只能删除
type ApprovalEntry struct {
	EntryID      int64  `json:"entryId"`
	ICName       string `json:"icName"`
	ApproverName string `json:"approverName"`
	Date         string `json:"date"` // YYYY-MM-DD
	StartPeriod  int    `json:"startPeriod"`
	EndPeriod    int    `json:"endPeriod"`
	CreatedAtNs  int64  `json:"createdAtNs"`
}

// Covers 表示该审批的时间窗口是否覆盖了编号为 period 的小时段
func (e *ApprovalEntry) Covers(period int) bool {
	return e.StartPeriod <= period && period < e.EndPeriod
}

// DailyCapacity 是某一天的容量账本快照
type DailyCapacity struct {
	Cap     int              `json:"cap"`
	Entries []*ApprovalEntry `json:"entries"`
}

// DaySummary 是某一天的审批概览
type DaySummary struct {
	Date          string   `json:"date"`
	Cap           int      `json:"cap"`
	ApprovedCount int      `json:"approvedCount"`
	ICNames       []string `json:"icNames"`
}

// HistoryRecord 是历史查询中的一项，带上了所属日期
type HistoryRecord struct {
	Date   string        `json:"date"`
	Record DailyCapacity `json:"record"`
}

// SlotUsage 是某个小时段的当前占用数
type SlotUsage struct {
	Period int    `json:"period"`
	Label  string `json:"label"`
	Count  int    `json:"count"`
}

// SlotUsageWithLimit 在占用数的基础上带上该小时段的上限，用于前端渲染
type SlotUsageWithLimit struct {
	Period int    `json:"period"`
	Label  string `json:"label"`
	Count  int    `json:"count"`
	Limit  int    `json:"limit"`
}

// PeriodLimit 是某个小时段在所有日期上共享的最大同时占用数
type PeriodLimit struct {
	Period int `json:"period"`
	Limit  int `json:"limit"`
}
