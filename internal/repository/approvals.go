package repository

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/queue-exclusion/backend/internal/domain"
)

// InsertApprovalEntry 持久化一条已经通过准入判定的审批记录
// entry_id 由账本分配，这里原样写入以保证重启后 ID 连续
func (r *Repository) InsertApprovalEntry(entry *domain.ApprovalEntry) error {
	query := `
		INSERT INTO approval_entries (entry_id, ic_name, approver_name, date, start_period, end_period, created_at_ns)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{entry.EntryID, entry.ICName, entry.ApproverName, entry.Date, entry.StartPeriod, entry.EndPeriod, entry.CreatedAtNs}
	if _, err := r.dbpool.ExecContext(ctx, query, args...); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteApprovalEntry(entryID int64) error {
	query := `
		DELETE FROM approval_entries WHERE entry_id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, entryID); err != nil {
		return err
	}

	return nil
}

// GetAllApprovalEntries 在启动时加载全部历史记录用于账本预热
func (r *Repository) GetAllApprovalEntries() ([]*domain.ApprovalEntry, error) {
	query := `
		SELECT entry_id, ic_name, approver_name, date, start_period, end_period, created_at_ns
		FROM approval_entries
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*domain.ApprovalEntry, 0)
	for rows.Next() {
		entry := &domain.ApprovalEntry{}
		dst := []any{&entry.EntryID, &entry.ICName, &entry.ApproverName, &entry.Date, &entry.StartPeriod, &entry.EndPeriod, &entry.CreatedAtNs}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}
