package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sysu-ecnc-dev/queue-exclusion/backend/internal/domain"
	"github.com/sysu-ecnc-dev/queue-exclusion/backend/internal/ledger"
)

func (h *Handler) AddApproval(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	var req struct {
		ICName      string `json:"icName" validate:"required"`
		Date        string `json:"date"`
		StartPeriod int    `json:"startPeriod" validate:"min=0,max=11"`
		EndPeriod   int    `json:"endPeriod" validate:"required,min=1,max=12"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	entry, err := h.ledger.Propose(ledger.ProposeRequest{
		ICName:       req.ICName,
		ApproverName: myInfo.FullName,
		Date:         req.Date,
		StartPeriod:  req.StartPeriod,
		EndPeriod:    req.EndPeriod,
		CallerRole:   h.callerRole(r),
	})
	if err != nil {
		h.ledgerError(w, r, err)
		return
	}

	// 先在内存中准入，再落库；落库失败时回退内存中的记录，保证两边一致
	if err := h.repository.InsertApprovalEntry(entry); err != nil {
		_ = h.ledger.Remove(entry.EntryID, h.callerRole(r))
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "审批记录添加成功", entry)
}

func (h *Handler) RemoveApproval(w http.ResponseWriter, r *http.Request) {
	entryID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.ledger.Remove(entryID, h.callerRole(r)); err != nil {
		h.ledgerError(w, r, err)
		return
	}

	if err := h.repository.DeleteApprovalEntry(entryID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "审批记录删除成功", nil)
}

func (h *Handler) GetDailyApprovals(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = h.ledger.Now().Format(ledger.DateLayout)
	}

	entries, err := h.ledger.DailyApprovals(date)
	if err != nil {
		h.ledgerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取当日审批记录成功", entries)
}

func (h *Handler) GetFutureApprovals(w http.ResponseWriter, r *http.Request) {
	today := h.ledger.Now().Format(ledger.DateLayout)

	entries, err := h.ledger.FutureApprovals(today)
	if err != nil {
		h.ledgerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取未来审批记录成功", entries)
}

func (h *Handler) GetRemainingSlots(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = h.ledger.Now().Format(ledger.DateLayout)
	}

	remaining, err := h.ledger.RemainingSlots(date)
	if err != nil {
		h.ledgerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取剩余名额成功", struct {
		Date      string `json:"date"`
		Remaining int    `json:"remaining"`
	}{Date: date, Remaining: remaining})
}
