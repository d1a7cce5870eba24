package echo

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	app "github.com/gattaran/lead-intake/internal/application/lead"
	domain "github.com/gattaran/lead-intake/internal/domain/lead"
	"github.com/gattaran/lead-intake/internal/infrastructure/file"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiResponse struct {
	Data  any        `json:"data,omitempty"`
	Error *errorBody `json:"error,omitempty"`
}

type ImportHandler struct {
	ingest app.IngestRows
}

func NewImportHandler(ingest app.IngestRows) *ImportHandler {
	return &ImportHandler{ingest: ingest}
}

// ImportJSON accepts a batch of raw lead rows as a bare JSON list,
// {"rows": [...]} or {"data": [...]}.
func (h *ImportHandler) ImportJSON(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
			Code:    "bad_request",
			Message: "failed to read request body",
		}})
	}

	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
			Code:    "invalid_json",
			Message: "request body is not valid JSON",
		}})
	}

	rows := rowsFromPayload(payload)
	out, err := h.ingest.Execute(c.Request().Context(), app.IngestRowsInput{
		Rows:    rows,
		RunType: domain.RunTypeAPI,
		Source:  domain.RunTypeAPI,
	})
	if err != nil {
		if errors.Is(err, app.ErrEmptyBatch) {
			return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
				Code:    "empty_payload",
				Message: "payload carries no rows",
			}})
		}
		return c.JSON(http.StatusInternalServerError, apiResponse{Error: &errorBody{
			Code:    "internal_error",
			Message: "failed to process batch",
		}})
	}

	return c.JSON(http.StatusOK, apiResponse{Data: out})
}

// ImportCSV accepts a multipart upload under the "file" field.
func (h *ImportHandler) ImportCSV(c echo.Context) error {
	header, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
			Code:    "missing_file",
			Message: "upload a CSV file under the \"file\" field",
		}})
	}

	upload, err := header.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
			Code:    "bad_upload",
			Message: "failed to open uploaded file",
		}})
	}
	defer upload.Close()

	csvRows, err := file.DecodeRows(upload)
	if err != nil {
		if errors.Is(err, file.ErrMissingHeader) {
			return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
				Code:    "missing_header",
				Message: "csv has no header row",
			}})
		}
		return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
			Code:    "invalid_csv",
			Message: "failed to decode csv",
		}})
	}

	rows := make([]any, 0, len(csvRows))
	for _, row := range csvRows {
		rows = append(rows, row)
	}

	out, err := h.ingest.Execute(c.Request().Context(), app.IngestRowsInput{
		Rows:    rows,
		RunType: domain.RunTypeCSV,
		Source:  domain.RunTypeCSV,
	})
	if err != nil {
		if errors.Is(err, app.ErrEmptyBatch) {
			return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
				Code:    "empty_csv",
				Message: "csv carries no data rows",
			}})
		}
		return c.JSON(http.StatusInternalServerError, apiResponse{Error: &errorBody{
			Code:    "internal_error",
			Message: "failed to process csv",
		}})
	}

	return c.JSON(http.StatusOK, apiResponse{Data: out})
}

// rowsFromPayload unwraps the accepted payload shapes. Anything else
// yields no rows.
func rowsFromPayload(payload any) []any {
	switch p := payload.(type) {
	case []any:
		return p
	case map[string]any:
		if rows, ok := p["rows"].([]any); ok {
			return rows
		}
		if rows, ok := p["data"].([]any); ok {
			return rows
		}
	}
	return nil
}
