package http

import (
	"bytes"
	"net/http"
	"time"

	"burnrate/internal/core"
	applog "burnrate/internal/log"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *Server) handleFinancialData(w http.ResponseWriter, r *http.Request) {
	summary, err := s.dashboard.FinancialData(r.Context())
	if err != nil {
		writeServiceError(w, r, applog.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, newFinancialDataResponse(summary))
}

// handleForecast projects the series under the posted predicted expenses.
// The expenses are echoed back with their assigned IDs.
func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	var req forecastRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, applog.OpForecast, err)
		return
	}
	fc, expenses, err := s.dashboard.Forecast(r.Context(), req.PredictedExpenses)
	if err != nil {
		writeServiceError(w, r, applog.OpForecast, err)
		return
	}
	s.metrics.forecasts.Add(1)
	writeJSON(w, http.StatusOK, newForecastResponse(fc, expenses))
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	st, ok, err := s.dashboard.Statistics(r.Context())
	if err != nil {
		writeServiceError(w, r, applog.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, newStatisticsResponse(st, ok))
}

// handleExport streams the workbook. A POST body may carry predicted
// expenses to add the forecast sheet.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var expenses []core.PredictedExpense
	if r.Method == http.MethodPost {
		var req forecastRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeServiceError(w, r, applog.OpExport, err)
			return
		}
		expenses = req.PredictedExpenses
	}

	// Buffer so a failure can still be reported as JSON.
	var buf bytes.Buffer
	if err := s.dashboard.ExportXLSX(r.Context(), &buf, expenses); err != nil {
		writeServiceError(w, r, applog.OpExport, err)
		return
	}

	filename := "burnrate-" + time.Now().Format("2006-01-02") + ".xlsx"
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// handleIndex renders the server-side summary page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	summary, err := s.dashboard.FinancialData(r.Context())
	if err != nil {
		applog.LogError(r.Context(), "Load financial data failed", err, applog.OpRead, nil)
		http.Error(w, msgInternal, http.StatusInternalServerError)
		return
	}
	st, ok, err := s.dashboard.Statistics(r.Context())
	if err != nil {
		applog.LogError(r.Context(), "Load statistics failed", err, applog.OpRead, nil)
	}

	data := struct {
		Summary financialDataResponse
		Stats   statisticsResponse
		HasData bool
	}{
		Summary: newFinancialDataResponse(summary),
		Stats:   newStatisticsResponse(st, ok && err == nil),
		HasData: len(summary.Series) > 0,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		applog.LogError(r.Context(), "Index template execution failed", err, applog.OpRead, nil)
	}
}
