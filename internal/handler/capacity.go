package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sysu-ecnc-dev/queue-exclusion/backend/internal/domain"
)

func (h *Handler) GetDailyCap(w http.ResponseWriter, r *http.Request) {
	h.successResponse(w, r, "获取每日审批上限成功", struct {
		DailyCap int `json:"dailyCap"`
	}{DailyCap: h.ledger.DailyCap()})
}

func (h *Handler) SetDailyCap(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DailyCap *int `json:"dailyCap" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.ledger.SetDailyCap(*req.DailyCap, h.callerRole(r)); err != nil {
		h.ledgerError(w, r, err)
		return
	}

	if err := h.repository.SetDailyCap(*req.DailyCap); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "更新每日审批上限成功", struct {
		DailyCap int `json:"dailyCap"`
	}{DailyCap: *req.DailyCap})
}

func (h *Handler) GetHourlyLimits(w http.ResponseWriter, r *http.Request) {
	h.successResponse(w, r, "获取各时段上限成功", h.ledger.PeriodLimits())
}

func (h *Handler) SetHourlyLimit(w http.ResponseWriter, r *http.Request) {
	period, err := strconv.Atoi(chi.URLParam(r, "period"))
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	var req struct {
		Limit *int `json:"limit" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.ledger.SetPeriodLimit(period, *req.Limit, h.callerRole(r)); err != nil {
		h.ledgerError(w, r, err)
		return
	}

	if err := h.repository.SetPeriodLimit(period, *req.Limit); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "更新时段上限成功", domain.PeriodLimit{
		Period: period,
		Limit:  *req.Limit,
	})
}
