package http

import "net/http"

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	claims := sessionClaims(r.Context())

	household, err := s.households.GetOrCreateForUser(r.Context(), claims.UserID)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	accounts, err := s.accounts.ListByHousehold(r.Context(), household.ID, claims.UserID)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	payload := make([]accountPayload, 0, len(accounts))
	for i := range accounts {
		payload = append(payload, newAccountPayload(&accounts[i]))
	}
	respondJSON(w, http.StatusOK, payload)
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	claims := sessionClaims(r.Context())

	var req accountRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	household, err := s.households.GetOrCreateForUser(r.Context(), claims.UserID)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	account, err := s.accounts.Create(r.Context(), household.ID, claims.UserID, req.toInput())
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, newAccountPayload(account))
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	claims := sessionClaims(r.Context())

	account, err := s.accounts.GetByID(r.Context(), r.PathValue("id"), claims.UserID)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, newAccountPayload(account))
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	claims := sessionClaims(r.Context())

	var req accountRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	account, err := s.accounts.Update(r.Context(), r.PathValue("id"), claims.UserID, req.toInput())
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, newAccountPayload(account))
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	claims := sessionClaims(r.Context())

	if err := s.accounts.Delete(r.Context(), r.PathValue("id"), claims.UserID); err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
