package http

import (
	"context"
	"net/http"
	"strings"

	"burnrate/internal/core"
	applog "burnrate/internal/log"
)

func (s *Server) handleListAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := s.ledger.ListAssets(r.Context())
	if err != nil {
		writeServiceError(w, r, applog.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(assets))
}

func (s *Server) handleCreateAsset(w http.ResponseWriter, r *http.Request) {
	var req assetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, applog.OpCreate, err)
		return
	}
	if !req.complete() {
		writeError(w, http.StatusBadRequest, msgAssetRequired)
		return
	}
	id, err := s.ledger.CreateAsset(r.Context(), req.asset(0))
	if err != nil {
		writeServiceError(w, r, applog.OpCreate, err)
		return
	}
	s.metrics.ledgerWrite.Add(1)
	writeSuccess(w, id)
}

func (s *Server) handleUpdateAsset(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, r, applog.OpUpdate, err)
		return
	}
	var req assetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, applog.OpUpdate, err)
		return
	}
	if !req.complete() {
		writeError(w, http.StatusBadRequest, msgAssetRequired)
		return
	}
	if err := s.ledger.UpdateAsset(r.Context(), req.asset(id)); err != nil {
		writeServiceError(w, r, applog.OpUpdate, err)
		return
	}
	s.metrics.ledgerWrite.Add(1)
	writeSuccess(w, 0)
}

func (s *Server) handleDeleteAsset(w http.ResponseWriter, r *http.Request) {
	s.deleteByID(w, r, s.ledger.DeleteAsset)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.ledger.ListCategories(r.Context())
	if err != nil {
		writeServiceError(w, r, applog.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(cats))
}

func (s *Server) handleUpsertCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, applog.OpCreate, err)
		return
	}
	c := core.AssetCategory{Name: sanitizeInput(req.Name), Color: sanitizeInput(req.Color)}
	if c.Name == "" || c.Color == "" {
		writeError(w, http.StatusBadRequest, msgCategoryFields)
		return
	}
	id, err := s.ledger.UpsertCategory(r.Context(), c)
	if err != nil {
		writeServiceError(w, r, applog.OpCreate, err)
		return
	}
	s.metrics.ledgerWrite.Add(1)
	writeSuccess(w, id)
}

func (s *Server) handleListSpending(w http.ResponseWriter, r *http.Request) {
	sp, err := s.ledger.ListSpending(r.Context())
	if err != nil {
		writeServiceError(w, r, applog.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(sp))
}

func (s *Server) handleCreateSpending(w http.ResponseWriter, r *http.Request) {
	var req monthlyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, applog.OpCreate, err)
		return
	}
	if !req.complete() {
		writeError(w, http.StatusBadRequest, msgFieldsRequired)
		return
	}
	id, err := s.ledger.CreateSpending(r.Context(), core.Spending{
		Amount:     req.Amount.Decimal,
		Date:       strings.TrimSpace(req.Date),
		IsAdvanced: req.IsAdvanced,
	})
	if err != nil {
		writeServiceError(w, r, applog.OpCreate, err)
		return
	}
	s.metrics.ledgerWrite.Add(1)
	writeSuccess(w, id)
}

func (s *Server) handleUpdateSpending(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, r, applog.OpUpdate, err)
		return
	}
	var req monthlyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, applog.OpUpdate, err)
		return
	}
	if !req.complete() {
		writeError(w, http.StatusBadRequest, msgFieldsRequired)
		return
	}
	err = s.ledger.UpdateSpending(r.Context(), core.Spending{
		ID:         id,
		Amount:     req.Amount.Decimal,
		Date:       strings.TrimSpace(req.Date),
		IsAdvanced: req.IsAdvanced,
	})
	if err != nil {
		writeServiceError(w, r, applog.OpUpdate, err)
		return
	}
	s.metrics.ledgerWrite.Add(1)
	writeSuccess(w, 0)
}

// handleDeleteSpending removes the spending and its transactions.
func (s *Server) handleDeleteSpending(w http.ResponseWriter, r *http.Request) {
	s.deleteByID(w, r, s.ledger.DeleteSpending)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, r, applog.OpList, err)
		return
	}
	txs, err := s.ledger.ListTransactions(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, applog.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(txs))
}

// handleUploadCSV imports a bank export as one advanced spending.
func (s *Server) handleUploadCSV(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
	if err := r.ParseMultipartForm(maxUploadBody); err != nil {
		writeError(w, http.StatusBadRequest, msgUploadRequired)
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	date := strings.TrimSpace(r.FormValue("date"))
	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, msgUploadRequired)
		return
	}
	defer file.Close()
	if date == "" {
		writeError(w, http.StatusBadRequest, msgUploadRequired)
		return
	}

	res, err := s.importer.ImportCSV(r.Context(), file, date)
	if err != nil {
		writeServiceError(w, r, applog.OpImport, err)
		return
	}
	s.metrics.imports.Add(1)

	applog.FromContext(r.Context()).InfoContext(r.Context(), "CSV spending imported",
		applog.NewFields().
			WithRecord("spending", res.SpendingID).
			WithOperation(applog.OpImport).
			ToSlice()...)

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"id":          res.SpendingID,
		"totalAmount": res.TotalAmount,
		"imported":    res.Imported,
		"skipped":     res.Skipped,
	})
}

func (s *Server) handleListRevenue(w http.ResponseWriter, r *http.Request) {
	rv, err := s.ledger.ListRevenue(r.Context())
	if err != nil {
		writeServiceError(w, r, applog.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(rv))
}

func (s *Server) handleCreateRevenue(w http.ResponseWriter, r *http.Request) {
	var req monthlyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, applog.OpCreate, err)
		return
	}
	if !req.complete() {
		writeError(w, http.StatusBadRequest, msgFieldsRequired)
		return
	}
	id, err := s.ledger.CreateRevenue(r.Context(), core.Revenue{
		Amount: req.Amount.Decimal,
		Date:   strings.TrimSpace(req.Date),
	})
	if err != nil {
		writeServiceError(w, r, applog.OpCreate, err)
		return
	}
	s.metrics.ledgerWrite.Add(1)
	writeSuccess(w, id)
}

func (s *Server) handleUpdateRevenue(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, r, applog.OpUpdate, err)
		return
	}
	var req monthlyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, applog.OpUpdate, err)
		return
	}
	if !req.complete() {
		writeError(w, http.StatusBadRequest, msgFieldsRequired)
		return
	}
	err = s.ledger.UpdateRevenue(r.Context(), core.Revenue{
		ID:     id,
		Amount: req.Amount.Decimal,
		Date:   strings.TrimSpace(req.Date),
	})
	if err != nil {
		writeServiceError(w, r, applog.OpUpdate, err)
		return
	}
	s.metrics.ledgerWrite.Add(1)
	writeSuccess(w, 0)
}

func (s *Server) handleDeleteRevenue(w http.ResponseWriter, r *http.Request) {
	s.deleteByID(w, r, s.ledger.DeleteRevenue)
}

func (s *Server) deleteByID(w http.ResponseWriter, r *http.Request, del func(ctx context.Context, id int64) error) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, r, applog.OpDelete, err)
		return
	}
	if err := del(r.Context(), id); err != nil {
		writeServiceError(w, r, applog.OpDelete, err)
		return
	}
	s.metrics.ledgerWrite.Add(1)
	writeSuccess(w, 0)
}

// nonNil keeps empty lists encoding as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
