package handlers

import (
	"net/http"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/hikmacash/internal/api/middleware"
	"github.com/dvloznov/hikmacash/internal/domain"
	"github.com/dvloznov/hikmacash/internal/logger"
	"github.com/dvloznov/hikmacash/internal/pipeline"
)

// RecordsHandler serves the caller's stored records so an import can be checked.
type RecordsHandler struct {
	auth  pipeline.AuthResolver
	store pipeline.RecordStore
}

// NewRecordsHandler creates a new records handler.
func NewRecordsHandler(auth pipeline.AuthResolver, store pipeline.RecordStore) *RecordsHandler {
	return &RecordsHandler{auth: auth, store: store}
}

// ListTransactions handles GET /api/transactions
// Optional start_date and end_date (YYYY-MM-DD) bound the result inclusively.
func (h *RecordsHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := h.resolve(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	var start, end civil.Date
	var err error
	if s := query.Get("start_date"); s != "" {
		if start, err = civil.ParseDate(s); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid start_date format")
			return
		}
	}
	if s := query.Get("end_date"); s != "" {
		if end, err = civil.ParseDate(s); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid end_date format")
			return
		}
	}

	transactions, err := h.store.ListTransactions(ctx, userID)
	if err != nil {
		log := logger.FromContext(ctx)
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list transactions")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list transactions")
		return
	}

	filtered := make([]domain.Transaction, 0, len(transactions))
	for _, tx := range transactions {
		if start.IsValid() && tx.Date.Before(start) {
			continue
		}
		if end.IsValid() && tx.Date.After(end) {
			continue
		}
		filtered = append(filtered, tx)
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": filtered,
		"count":        len(filtered),
	})
}

// ListCategories handles GET /api/categories
func (h *RecordsHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := h.resolve(w, r)
	if !ok {
		return
	}

	categories, err := h.store.ListCategories(ctx, userID)
	if err != nil {
		log := logger.FromContext(ctx)
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list categories")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list categories")
		return
	}
	if categories == nil {
		categories = []domain.Category{}
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"categories": categories,
		"count":      len(categories),
	})
}

func (h *RecordsHandler) resolve(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, err := h.auth.Resolve(r.Context(), middleware.BearerToken(r))
	if err != nil || userID == "" {
		middleware.WriteError(w, http.StatusUnauthorized, domain.ErrUnauthorized.Error())
		return "", false
	}
	return userID, true
}

// Health handles GET /health
func Health(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
