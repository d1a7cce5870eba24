package echo

import (
	"encoding/csv"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	app "github.com/gattaran/lead-intake/internal/application/lead"
	domain "github.com/gattaran/lead-intake/internal/domain/lead"
)

const exportTimeLayout = "2006-01-02 15:04:05"

type LeadHandler struct {
	getLead app.GetLeadByID
	list    app.ListLeads
	toggle  app.TogglePhoneBlock
}

func NewLeadHandler(getLead app.GetLeadByID, list app.ListLeads, toggle app.TogglePhoneBlock) *LeadHandler {
	return &LeadHandler{getLead: getLead, list: list, toggle: toggle}
}

func (h *LeadHandler) GetByID(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
			Code:    "invalid_lead_id",
			Message: "id must be an integer",
		}})
	}

	out, err := h.getLead.Execute(c.Request().Context(), app.GetLeadByIDInput{ID: id})
	if err != nil {
		return leadError(c, err)
	}
	return c.JSON(http.StatusOK, apiResponse{Data: out})
}

func (h *LeadHandler) List(c echo.Context) error {
	in, ok := listInputFromQuery(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
			Code:    "invalid_filter",
			Message: "blocked must be true or false",
		}})
	}

	out, err := h.list.Execute(c.Request().Context(), in)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, apiResponse{Error: &errorBody{
			Code:    "internal_error",
			Message: "failed to list leads",
		}})
	}
	return c.JSON(http.StatusOK, apiResponse{Data: out})
}

// ExportCSV streams the filtered leads in the canonical export column
// order, paging through the store.
func (h *LeadHandler) ExportCSV(c echo.Context) error {
	in, ok := listInputFromQuery(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
			Code:    "invalid_filter",
			Message: "blocked must be true or false",
		}})
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="leads.csv"`)
	c.Response().WriteHeader(http.StatusOK)

	writer := csv.NewWriter(c.Response())
	header := make([]string, 0, len(domain.ExportColumns)+3)
	for _, col := range domain.ExportColumns {
		header = append(header, col.Label)
	}
	header = append(header, "Source", "Primeira captura", "Ultima captura")
	if err := writer.Write(header); err != nil {
		return err
	}

	const pageSize = 1000
	in.Limit = pageSize
	for offset := 0; ; offset += pageSize {
		in.Offset = offset
		page, err := h.list.Execute(c.Request().Context(), in)
		if err != nil {
			return err
		}
		for _, l := range page.Leads {
			if err := writer.Write(exportRow(l)); err != nil {
				return err
			}
		}
		if len(page.Leads) < pageSize {
			break
		}
	}

	writer.Flush()
	return writer.Error()
}

func (h *LeadHandler) Block(c echo.Context) error {
	return h.toggleBlock(c, true)
}

func (h *LeadHandler) Unblock(c echo.Context) error {
	return h.toggleBlock(c, false)
}

func (h *LeadHandler) toggleBlock(c echo.Context, blocked bool) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
			Code:    "invalid_lead_id",
			Message: "id must be an integer",
		}})
	}

	out, err := h.toggle.Execute(c.Request().Context(), app.TogglePhoneBlockInput{
		LeadID:  id,
		Blocked: blocked,
	})
	if err != nil {
		return leadError(c, err)
	}
	return c.JSON(http.StatusOK, apiResponse{Data: out})
}

func leadError(c echo.Context, err error) error {
	if errors.Is(err, app.ErrInvalidLeadID) {
		return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
			Code:    "invalid_lead_id",
			Message: "id must be a positive integer",
		}})
	}
	if errors.Is(err, app.ErrLeadNotFound) {
		return c.JSON(http.StatusNotFound, apiResponse{Error: &errorBody{
			Code:    "not_found",
			Message: "lead not found",
		}})
	}
	return c.JSON(http.StatusInternalServerError, apiResponse{Error: &errorBody{
		Code:    "internal_error",
		Message: "internal error",
	}})
}

func listInputFromQuery(c echo.Context) (app.ListLeadsInput, bool) {
	in := app.ListLeadsInput{
		Query:  c.QueryParam("q"),
		Source: c.QueryParam("source"),
		City:   c.QueryParam("city"),
	}
	if raw := c.QueryParam("blocked"); raw != "" {
		blocked, err := strconv.ParseBool(raw)
		if err != nil {
			return app.ListLeadsInput{}, false
		}
		in.Blocked = &blocked
	}
	if raw := c.QueryParam("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil {
			in.Limit = limit
		}
	}
	if raw := c.QueryParam("offset"); raw != "" {
		if offset, err := strconv.Atoi(raw); err == nil {
			in.Offset = offset
		}
	}
	return in, true
}

func exportRow(l app.LeadOutput) []string {
	values := map[string]string{
		domain.FieldCity:                l.City,
		domain.FieldTargetRegion:        l.TargetRegion,
		domain.FieldEstablishmentName:   l.EstablishmentName,
		domain.FieldRepresentativeName:  l.RepresentativeName,
		domain.FieldContractStatus:      l.ContractStatus,
		domain.FieldRepresentativePhone: l.RepresentativePhone,
		domain.FieldCompanyCategory:     l.CompanyCategory,
		domain.FieldAddress:             l.Address,
	}
	if l.LeadCreatedAt != nil {
		values[domain.FieldLeadCreatedAt] = l.LeadCreatedAt.Format(exportTimeLayout)
	}

	row := make([]string, 0, len(domain.ExportColumns)+3)
	for _, col := range domain.ExportColumns {
		row = append(row, values[col.Field])
	}
	return append(row,
		l.Source,
		formatSeen(l.FirstSeenAt),
		formatSeen(l.LastSeenAt),
	)
}

func formatSeen(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(exportTimeLayout)
}
