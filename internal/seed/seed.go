package seed

import (
	"errors"
	"log/slog"
	"math/rand"

	"github.com/sysu-ecnc-dev/queue-exclusion/backend/internal/config"
	"github.com/sysu-ecnc-dev/queue-exclusion/backend/internal/domain"
	"github.com/sysu-ecnc-dev/queue-exclusion/backend/internal/ledger"
	"github.com/sysu-ecnc-dev/queue-exclusion/backend/internal/repository"
	"github.com/sysu-ecnc-dev/queue-exclusion/backend/internal/utils"
)

// SeedApprovals 往数据库里插入 n 条随机审批记录。
// 先把已有记录恢复到账本中，再通过账本做准入，避免种子数据破坏容量约束。
func SeedApprovals(repo *repository.Repository, cfg *config.Config, n int) {
	dailyCap, err := repo.GetDailyCap()
	if err != nil {
		slog.Error("无法读取每日审批上限", "error", err)
		return
	}
	periodLimits, err := repo.GetPeriodLimits()
	if err != nil {
		slog.Error("无法读取各时段上限", "error", err)
		return
	}

	ldg := ledger.New(cfg.Exclusion.DefaultDailyCap, cfg.Exclusion.DefaultPeriodLimit)
	ldg.RestoreLimits(dailyCap, periodLimits)

	entries, err := repo.GetAllApprovalEntries()
	if err != nil {
		slog.Error("无法读取已有审批记录", "error", err)
		return
	}
	ldg.Restore(entries)

	// 审批人与被豁免人都从已有用户中取
	users, err := repo.GetAllUsers()
	if err != nil {
		slog.Error("无法读取用户列表", "error", err)
		return
	}

	var operators []*domain.User
	for _, u := range users {
		if u.Role.CanOperate() {
			operators = append(operators, u)
		}
	}
	if len(operators) == 0 || len(users) == 0 {
		slog.Error("没有可用的用户，请先插入随机用户")
		return
	}

	inserted := 0
	for i := 0; i < n; i++ {
		ic := users[rand.Intn(len(users))]
		approver := operators[rand.Intn(len(operators))]
		start, end := utils.GenerateRandomExclusionWindow()

		entry, err := ldg.Propose(ledger.ProposeRequest{
			ICName:       ic.FullName,
			ApproverName: approver.FullName,
			Date:         utils.GenerateRandomFutureDate(14),
			StartPeriod:  start,
			EndPeriod:    end,
			CallerRole:   approver.Role,
		})
		if err != nil {
			// 撞上重复审批或容量上限是正常现象，换一组参数重试即可
			if errors.Is(err, ledger.ErrDuplicateExclusion) ||
				errors.Is(err, ledger.ErrCapExceeded) ||
				errors.Is(err, ledger.ErrSlotFull) {
				continue
			}
			slog.Error("无法生成随机审批记录", "error", err)
			continue
		}

		if err := repo.InsertApprovalEntry(entry); err != nil {
			slog.Error("无法插入审批记录", "error", err)
			continue
		}
		inserted++
	}

	slog.Info("插入审批记录完成", "requested", n, "inserted", inserted)
}
