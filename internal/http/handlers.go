package http

import (
	"log/slog"
	"net/http"

	"finance/internal/core"
	applog "finance/internal/log"
)

const (
	msgTransactionAdded   = "Transaction added successfully"
	msgTransactionDeleted = "Transaction deleted successfully"
	msgTransactionMissing = "Transaction not found"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", applog.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "index.html", nil); err != nil {
		slog.ErrorContext(r.Context(), "Index template execution failed", applog.FieldError, err, "template", "index.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.service.List(r.Context(), parseDateRange(r))
	if err != nil {
		writeServerError(w, r, applog.OpList, err)
		return
	}
	writeJSON(w, r, http.StatusOK, txs)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := parseTransaction(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	id, err := s.service.Create(r.Context(), tx)
	if err != nil {
		if core.IsValidationError(err) {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		writeServerError(w, r, applog.OpCreate, err)
		return
	}

	tx.ID = id
	applog.FromContext(r.Context()).InfoContext(r.Context(), "Transaction created",
		applog.NewFields().
			WithOperation(applog.OpCreate).
			WithTransaction(tx.ID, tx.Type.String(), tx.Category, tx.Amount).
			ToSlice()...)

	writeJSON(w, r, http.StatusCreated, createdResponse{ID: id, Message: msgTransactionAdded})
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r.PathValue("id"))
	if !ok {
		writeError(w, r, http.StatusNotFound, msgTransactionMissing)
		return
	}

	deleted, err := s.service.Delete(r.Context(), id)
	if err != nil {
		writeServerError(w, r, applog.OpDelete, err)
		return
	}
	if !deleted {
		writeError(w, r, http.StatusNotFound, msgTransactionMissing)
		return
	}

	applog.FromContext(r.Context()).InfoContext(r.Context(), "Transaction deleted",
		applog.FieldOperation, applog.OpDelete,
		applog.FieldTransactionID, id)
	writeJSON(w, r, http.StatusOK, messageResponse{Message: msgTransactionDeleted})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.service.Summary(r.Context(), parseDateRange(r))
	if err != nil {
		writeServerError(w, r, applog.OpSummary, err)
		return
	}
	writeJSON(w, r, http.StatusOK, summary)
}

type categoriesResponse struct {
	Income  []string `json:"income"`
	Expense []string `json:"expense"`
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	resp := categoriesResponse{
		Income:  core.CategoriesFor(core.TypeIncome),
		Expense: core.CategoriesFor(core.TypeExpense),
	}
	if s.categories != nil {
		income, expense, err := s.categories.ListCategories(r.Context())
		if err != nil {
			slog.WarnContext(r.Context(), "Category list failed, using defaults", applog.FieldError, err)
		} else {
			if len(income) > 0 {
				resp.Income = income
			}
			if len(expense) > 0 {
				resp.Expense = expense
			}
		}
	}
	writeJSON(w, r, http.StatusOK, resp)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Ping(r.Context()); err != nil {
		slog.WarnContext(r.Context(), "Readiness check failed", applog.FieldError, err)
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
