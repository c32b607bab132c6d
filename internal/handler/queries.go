package handler

import (
	"net/http"

	"github.com/sysu-ecnc-dev/queue-exclusion/backend/internal/ledger"
)

func (h *Handler) GetSlotUsage(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = h.ledger.Now().Format(ledger.DateLayout)
	}

	usage, err := h.ledger.SlotUsage(date)
	if err != nil {
		h.ledgerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取时段占用成功", usage)
}

func (h *Handler) GetSlotUsageWithLimits(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = h.ledger.Now().Format(ledger.DateLayout)
	}

	usage, err := h.ledger.SlotUsageWithLimits(date)
	if err != nil {
		h.ledgerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取时段占用及上限成功", usage)
}

func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	startDate := r.URL.Query().Get("startDate")
	endDate := r.URL.Query().Get("endDate")

	summaries, err := h.ledger.SummaryRange(startDate, endDate)
	if err != nil {
		h.ledgerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取审批概览成功", summaries)
}

func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	startDate := r.URL.Query().Get("startDate")
	endDate := r.URL.Query().Get("endDate")

	records, err := h.ledger.History(startDate, endDate)
	if err != nil {
		h.ledgerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取审批历史成功", records)
}
