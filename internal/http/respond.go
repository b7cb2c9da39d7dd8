package http

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"

	"burnrate/internal/core"
	applog "burnrate/internal/log"
	"burnrate/internal/runway"

	"github.com/shopspring/decimal"
)

const (
	msgInternal       = "Internal Server Error"
	msgAssetRequired  = "All required fields must be filled"
	msgFieldsRequired = "All fields are required"
	msgCategoryFields = "Name and color are required"
	msgUploadRequired = "File and date are required"
	msgNotFound       = "Not Found"
	msgMethod         = "Method Not Allowed"
	msgUnauthorized   = "Unauthorized"
)

func init() {
	// Amounts go over the wire as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

type errorResponse struct {
	Error string `json:"error"`
}

type successResponse struct {
	Success bool  `json:"success"`
	ID      int64 `json:"id,omitempty"`
}

type authResponse struct {
	Authenticated bool `json:"authenticated"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeSuccess(w http.ResponseWriter, id int64) {
	writeJSON(w, http.StatusOK, successResponse{Success: true, ID: id})
}

// writeServiceError maps service errors to status codes: validation
// failures are 400, unknown records 404 and anything else 500. Only the
// last kind is logged as an error.
func writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, errBadBody):
		writeError(w, http.StatusBadRequest, "Invalid request body")
	case errors.Is(err, core.ErrNoTransactions):
		writeError(w, http.StatusBadRequest, "Total amount cannot be zero")
	case core.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, core.ErrNotFound):
		writeError(w, http.StatusNotFound, msgNotFound)
	default:
		applog.LogError(r.Context(), "Request failed", err, op,
			applog.NewFields().WithErrorType(applog.ErrorTypeInternal).WithHTTPRequest(r.Method, r.URL.Path))
		writeError(w, http.StatusInternalServerError, msgInternal)
	}
}

// finite returns nil for values JSON cannot carry.
func finite(f float64) *float64 {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return nil
	}
	return &f
}

type financialDataResponse struct {
	FinancialData   []runway.Entry  `json:"financialData"`
	AvgMonthlySpend decimal.Decimal `json:"avgMonthlySpend"`
	RemainingAssets decimal.Decimal `json:"remainingAssets"`
	Runway          *float64        `json:"runway"`
}

func newFinancialDataResponse(s runway.Summary) financialDataResponse {
	return financialDataResponse{
		FinancialData:   nonNil(s.Series),
		AvgMonthlySpend: s.AvgMonthlySpend,
		RemainingAssets: s.RemainingAssets,
		Runway:          finite(s.Runway),
	}
}

type differenceResponse struct {
	Months     *float64 `json:"months"`
	Percentage *float64 `json:"percentage"`
}

type forecastResponse struct {
	financialDataResponse
	ProjectedData          []runway.Entry          `json:"projectedData"`
	OriginalRunway         *float64                `json:"originalRunway"`
	OriginalRunwayEndDate  string                  `json:"originalRunwayEndDate"`
	PredictedRunway        *int                    `json:"predictedRunway,omitempty"`
	PredictedRunwayEndDate string                  `json:"predictedRunwayEndDate,omitempty"`
	RunwayDifference       *differenceResponse     `json:"runwayDifference,omitempty"`
	PredictedExpenses      []core.PredictedExpense `json:"predictedExpenses"`
}

func newForecastResponse(f runway.Forecast, expenses []core.PredictedExpense) forecastResponse {
	resp := forecastResponse{
		financialDataResponse: newFinancialDataResponse(f.Actual),
		ProjectedData:         nonNil(f.Series),
		OriginalRunway:        finite(f.OriginalRunway),
		OriginalRunwayEndDate: f.OriginalEndDate,
		PredictedRunway:       f.PredictedRunway,
		PredictedExpenses:     nonNil(expenses),
	}
	if f.PredictedRunway != nil {
		resp.PredictedRunwayEndDate = f.PredictedEndDate
	}
	if f.Difference != nil {
		resp.RunwayDifference = &differenceResponse{
			Months:     finite(f.Difference.Months),
			Percentage: finite(f.Difference.Percentage),
		}
	}
	return resp
}

type statisticsResponse struct {
	Available             bool             `json:"available"`
	BurnRate              *decimal.Decimal `json:"burnRate,omitempty"`
	BurnRateChange        *float64         `json:"burnRateChange,omitempty"`
	Runway                *float64         `json:"runway"`
	RunwayChange          *float64         `json:"runwayChange,omitempty"`
	RunwayEndDate         string           `json:"runwayEndDate,omitempty"`
	AvgMonthlySpend       *decimal.Decimal `json:"avgMonthlySpend,omitempty"`
	AvgMonthlySpendChange *float64         `json:"avgMonthlySpendChange,omitempty"`
	RemainingAssets       *decimal.Decimal `json:"remainingAssets,omitempty"`
}

func newStatisticsResponse(st runway.Stats, ok bool) statisticsResponse {
	if !ok {
		return statisticsResponse{}
	}
	return statisticsResponse{
		Available:             true,
		BurnRate:              &st.BurnRate,
		BurnRateChange:        finite(st.BurnRateChange),
		Runway:                finite(st.Runway),
		RunwayChange:          finite(st.RunwayChange),
		RunwayEndDate:         st.RunwayEndDate,
		AvgMonthlySpend:       &st.AvgMonthlySpend,
		AvgMonthlySpendChange: finite(st.AvgMonthlySpendChange),
		RemainingAssets:       &st.RemainingAssets,
	}
}
