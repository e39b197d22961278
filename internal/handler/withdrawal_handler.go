package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/contest-backend/internal/service"
)

type WithdrawalHandler struct {
	svc service.WithdrawalService
}

func NewWithdrawalHandler(svc service.WithdrawalService) *WithdrawalHandler {
	return &WithdrawalHandler{svc: svc}
}

type withdrawalRequest struct {
	Amount         int64  `json:"amount"`
	PaymentMethod  string `json:"payment_method"`
	PaymentDetails string `json:"payment_details"`
}

func (h *WithdrawalHandler) Request(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	var body withdrawalRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid body"))
	}
	receipt, err := h.svc.Request(c.Request().Context(), uid, body.Amount, body.PaymentMethod, body.PaymentDetails)
	if err != nil {
		switch err {
		case service.ErrBelowMinimum:
			return c.JSON(http.StatusBadRequest, NewErrorResponse("below_minimum", "amount is below the withdrawal minimum"))
		case service.ErrInvalidPaymentMethod:
			return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "unknown payment method"))
		case service.ErrInsufficientBalance:
			return c.JSON(http.StatusPaymentRequired, NewErrorResponse("insufficient_balance", "not enough points"))
		default:
			return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", err.Error()))
		}
	}
	return c.JSON(http.StatusCreated, receipt)
}

func (h *WithdrawalHandler) ListMine(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	list, err := h.svc.ListByUser(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", err.Error()))
	}
	return c.JSON(http.StatusOK, list)
}

type processRequest struct {
	AdminNotes    string `json:"admin_notes"`
	TransactionID string `json:"transaction_id"`
}

func (h *WithdrawalHandler) Complete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid withdrawal id"))
	}
	var body processRequest
	_ = c.Bind(&body)
	w, err := h.svc.Complete(c.Request().Context(), id, body.AdminNotes, body.TransactionID)
	if err != nil {
		return h.processError(c, err)
	}
	return c.JSON(http.StatusOK, w)
}

func (h *WithdrawalHandler) Reject(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid withdrawal id"))
	}
	var body processRequest
	_ = c.Bind(&body)
	w, err := h.svc.Reject(c.Request().Context(), id, body.AdminNotes)
	if err != nil {
		return h.processError(c, err)
	}
	return c.JSON(http.StatusOK, w)
}

func (h *WithdrawalHandler) processError(c echo.Context, err error) error {
	switch err {
	case service.ErrNotFound:
		return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "withdrawal not found"))
	case service.ErrNotPending:
		return c.JSON(http.StatusConflict, NewErrorResponse("not_pending", "withdrawal is already processed"))
	default:
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", err.Error()))
	}
}
