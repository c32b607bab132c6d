package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/sysu-ecnc-dev/queue-exclusion/backend/internal/domain"
	"github.com/sysu-ecnc-dev/queue-exclusion/backend/internal/ledger"
)

func (h *Handler) logInternalServerError(r *http.Request, err error) {
	slog.Error("服务器内部错误", "method", r.Method, "path", r.URL.Path, "error", err)
}

func (h *Handler) readJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logInternalServerError(r, err)
		http.Error(w, "服务器内部错误", http.StatusInternalServerError)
	}
}

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func (h *Handler) errorResponse(w http.ResponseWriter, r *http.Request, msg string) {
	h.writeJSON(w, r, http.StatusOK, Response{
		Success: false,
		Message: msg,
		Data:    nil,
	})
}

func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		h.errorResponse(w, r, err.Error())
		return
	}

	h.errorResponse(w, r, validationErrors[0].Translate(h.translator))
}

func (h *Handler) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	h.logInternalServerError(r, err)
	h.writeJSON(w, r, http.StatusInternalServerError, Response{
		Success: false,
		Message: "服务器内部错误",
		Data:    nil,
	})
}

func (h *Handler) successResponse(w http.ResponseWriter, r *http.Request, msg string, data any) {
	h.writeJSON(w, r, http.StatusOK, Response{
		Success: true,
		Message: msg,
		Data:    data,
	})
}

// ledgerError 把账本返回的准入、查询错误翻译成给用户看的提示
func (h *Handler) ledgerError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		invalidErr *ledger.InvalidInputError
		dupErr     *ledger.DuplicateExclusionError
		slotErr    *ledger.SlotFullError
	)

	switch {
	case errors.Is(err, ledger.ErrUnauthorized):
		h.errorResponse(w, r, "权限不足")
	case errors.As(err, &dupErr):
		h.errorResponse(w, r, fmt.Sprintf("%s 在 %s 已有审批记录", dupErr.ICName, dupErr.Date))
	case errors.Is(err, ledger.ErrCapExceeded):
		h.errorResponse(w, r, "已达到每日审批上限")
	case errors.As(err, &slotErr):
		h.errorResponse(w, r, fmt.Sprintf("%s 时段已满（%d/%d）", domain.PeriodLabel(slotErr.Period), slotErr.Limit, slotErr.Limit))
	case errors.Is(err, ledger.ErrNotFound):
		h.errorResponse(w, r, "审批记录不存在")
	case errors.As(err, &invalidErr):
		h.errorResponse(w, r, "无效的输入："+invalidErr.Reason)
	default:
		h.internalServerError(w, r, err)
	}
}
