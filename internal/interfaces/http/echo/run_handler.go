package echo

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	app "github.com/gattaran/lead-intake/internal/application/lead"
)

type RunHandler struct {
	list app.ListRuns
}

func NewRunHandler(list app.ListRuns) *RunHandler {
	return &RunHandler{list: list}
}

func (h *RunHandler) ListRecent(c echo.Context) error {
	var limit int
	if raw := c.QueryParam("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	out, err := h.list.Execute(c.Request().Context(), app.ListRunsInput{Limit: limit})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, apiResponse{Error: &errorBody{
			Code:    "internal_error",
			Message: "failed to list ingestion runs",
		}})
	}
	return c.JSON(http.StatusOK, apiResponse{Data: out})
}
