package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/limbahku/backend/internal/middleware"
	"github.com/limbahku/backend/internal/models"
	"github.com/limbahku/backend/internal/services"
)

type TransactionHandler struct {
	transactions *services.TransactionService
}

func NewTransactionHandler(transactions *services.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactions: transactions}
}

func (h *TransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}
	if middleware.GetUserRole(r.Context()) != models.RoleSeller {
		writeJSON(w, http.StatusForbidden, models.NewErrorResponse("Only sellers can create transactions"))
		return
	}

	var req models.CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}
	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errors))
		return
	}

	result := h.transactions.Create(r.Context(), userID, &req)
	if !result.Success {
		log.Printf("[CreateTransaction] Rejected for user %s: %s", userID, result.Message)
		writeJSON(w, http.StatusUnprocessableEntity, models.NewErrorResponse(result.Message))
		return
	}

	log.Printf("[CreateTransaction] Transaction created: %s", result.Transaction.ID)
	writeJSON(w, http.StatusCreated, models.NewSuccessResponse(result.Transaction))
}

func (h *TransactionHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}
	role := middleware.GetUserRole(r.Context())

	txs, err := h.transactions.ListByUser(r.Context(), userID, role)
	if err != nil {
		log.Printf("[ListTransactions] Service error: %v", err)
		writeJSON(w, http.StatusServiceUnavailable, models.NewErrorResponse("Transactions are temporarily unavailable"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(txs))
}

// StreamTransactions is the live read-model: a server-sent-event stream
// pushing the caller's full transaction set on every change. The subscription
// is released when the client disconnects.
func (h *TransactionHandler) StreamTransactions(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}
	role := middleware.GetUserRole(r.Context())

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Streaming unsupported"))
		return
	}

	ch, unsubscribe, err := h.transactions.WatchByUser(r.Context(), userID, role)
	if err != nil {
		log.Printf("[StreamTransactions] Subscribe error: %v", err)
		writeJSON(w, http.StatusServiceUnavailable, models.NewErrorResponse("Transactions are temporarily unavailable"))
		return
	}
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case snap, ok := <-ch:
			if !ok {
				return
			}
			b, err := json.Marshal(snap)
			if err != nil {
				log.Printf("[StreamTransactions] Marshal error: %v", err)
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", b)
			flusher.Flush()
		}
	}
}

// AdvanceStatus is used by fulfillment tooling to move a transaction along
// the lifecycle. Regular sellers and buyers never call it.
func (h *TransactionHandler) AdvanceStatus(w http.ResponseWriter, r *http.Request) {
	role := middleware.GetUserRole(r.Context())
	if role != models.RoleAdmin {
		writeJSON(w, http.StatusForbidden, models.NewErrorResponse("Only fulfillment can advance transactions"))
		return
	}

	txID := chi.URLParam(r, "transactionId")

	var req struct {
		Status models.TransactionStatus `json:"status"`
		Notes  string                   `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}

	tx, err := h.transactions.AdvanceStatus(r.Context(), txID, req.Status, req.Notes)
	if err != nil {
		if errors.Is(err, services.ErrTransactionNotFound) {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Transaction not found"))
			return
		}
		if errors.Is(err, services.ErrInvalidTransition) {
			writeJSON(w, http.StatusConflict, models.NewErrorResponse("Status transition not allowed"))
			return
		}
		log.Printf("[AdvanceStatus] Service error: %v", err)
		writeJSON(w, http.StatusServiceUnavailable, models.NewErrorResponse("Transactions are temporarily unavailable"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(tx))
}
