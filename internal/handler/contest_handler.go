package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/contest-backend/internal/service"
)

type ContestHandler struct {
	svc service.SettlementService
}

func NewContestHandler(svc service.SettlementService) *ContestHandler {
	return &ContestHandler{svc: svc}
}

// Finalize settles the contest. Calling it again after settlement returns the
// original placements without re-distributing anything.
func (h *ContestHandler) Finalize(c echo.Context) error {
	contestID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid contest id"))
	}
	res, err := h.svc.Finalize(c.Request().Context(), contestID)
	if err != nil {
		switch err {
		case service.ErrNotFound:
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "contest not found"))
		case service.ErrContestNotEnded:
			return c.JSON(http.StatusConflict, NewErrorResponse("contest_not_ended", "contest has not ended yet"))
		default:
			return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", err.Error()))
		}
	}
	return c.JSON(http.StatusOK, res)
}

func (h *ContestHandler) Winners(c echo.Context) error {
	contestID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid contest id"))
	}
	winners, err := h.svc.Winners(c.Request().Context(), contestID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", err.Error()))
	}
	return c.JSON(http.StatusOK, winners)
}
