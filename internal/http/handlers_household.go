package http

import (
	"net/http"

	"hearth/internal/core"
	"hearth/internal/services"
)

func (s *Server) handleGetMyHousehold(w http.ResponseWriter, r *http.Request) {
	claims := sessionClaims(r.Context())

	household, err := s.households.GetOrCreateForUser(r.Context(), claims.UserID)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, newHouseholdPayload(household))
}

func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	claims := sessionClaims(r.Context())

	household, err := s.households.GetOrCreateForUser(r.Context(), claims.UserID)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	members, err := s.households.ListMembers(r.Context(), household.ID, claims.UserID)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	payload := make([]userPayload, 0, len(members))
	for i := range members {
		payload = append(payload, newUserPayload(&members[i]))
	}
	respondJSON(w, http.StatusOK, payload)
}

func (s *Server) handleUpdateHousehold(w http.ResponseWriter, r *http.Request) {
	claims := sessionClaims(r.Context())

	var req householdRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	household, err := s.households.Update(r.Context(), r.PathValue("id"), claims.UserID, services.UpdateHouseholdInput{
		Type: core.HouseholdType(req.Type),
		Name: req.Name,
	})
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, newHouseholdPayload(household))
}
