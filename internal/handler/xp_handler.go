package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/contest-backend/internal/model"
	"github.com/shinyyama/contest-backend/internal/service"
)

type XPHandler struct {
	svc    service.XPService
	ledger service.LedgerService
}

func NewXPHandler(svc service.XPService, ledger service.LedgerService) *XPHandler {
	return &XPHandler{svc: svc, ledger: ledger}
}

// DailyCheckin awards the once-per-day check-in XP. A repeat call the same
// day is a successful no-op, not an error.
func (h *XPHandler) DailyCheckin(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	res, err := h.svc.Award(c.Request().Context(), uid, model.ActionDailyCheckin, "", "daily check-in")
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", err.Error()))
	}
	resp := map[string]interface{}{
		"success":    res.Success,
		"xp_awarded": res.XPAwarded,
	}
	if res.NewLevel != nil {
		resp["new_level"] = *res.NewLevel
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *XPHandler) GetProgress(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	p, err := h.svc.GetProgress(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", err.Error()))
	}
	return c.JSON(http.StatusOK, p)
}

func (h *XPHandler) GetBalance(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	balance, err := h.ledger.Balance(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", err.Error()))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"balance": balance})
}
