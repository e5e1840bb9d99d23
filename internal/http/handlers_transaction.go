package http

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"hearth/internal/storage"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	claims := sessionClaims(r.Context())

	filter, err := parseTransactionFilter(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	household, err := s.households.GetOrCreateForUser(r.Context(), claims.UserID)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	transactions, err := s.transactions.ListByHousehold(r.Context(), household.ID, claims.UserID, filter)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	payload := make([]transactionPayload, 0, len(transactions))
	for i := range transactions {
		payload = append(payload, newTransactionPayload(&transactions[i]))
	}
	respondJSON(w, http.StatusOK, payload)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	claims := sessionClaims(r.Context())

	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	input, err := req.toInput()
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	household, err := s.households.GetOrCreateForUser(r.Context(), claims.UserID)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	transaction, err := s.transactions.Create(r.Context(), household.ID, claims.UserID, input)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, newTransactionPayload(transaction))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	claims := sessionClaims(r.Context())

	transaction, err := s.transactions.GetByID(r.Context(), r.PathValue("id"), claims.UserID)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, newTransactionPayload(transaction))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	claims := sessionClaims(r.Context())

	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	input, err := req.toInput()
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	transaction, err := s.transactions.Update(r.Context(), r.PathValue("id"), claims.UserID, input)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, newTransactionPayload(transaction))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	claims := sessionClaims(r.Context())

	if err := s.transactions.Delete(r.Context(), r.PathValue("id"), claims.UserID); err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// parseTransactionFilter reads the account_id, from and to query
// parameters. Dates are whole days; "to" extends to the end of its day
// so the range stays inclusive.
func parseTransactionFilter(r *http.Request) (storage.TransactionFilter, error) {
	filter := storage.TransactionFilter{
		AccountID: strings.TrimSpace(r.URL.Query().Get("account_id")),
	}

	if v := strings.TrimSpace(r.URL.Query().Get("from")); v != "" {
		from, err := time.ParseInLocation(dateLayout, v, time.UTC)
		if err != nil {
			return storage.TransactionFilter{}, fmt.Errorf("from must be a YYYY-MM-DD date")
		}
		filter.From = from
	}
	if v := strings.TrimSpace(r.URL.Query().Get("to")); v != "" {
		to, err := time.ParseInLocation(dateLayout, v, time.UTC)
		if err != nil {
			return storage.TransactionFilter{}, fmt.Errorf("to must be a YYYY-MM-DD date")
		}
		filter.To = to.Add(24*time.Hour - time.Second)
	}
	return filter, nil
}
