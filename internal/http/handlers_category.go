package http

import (
	"net/http"

	"finman/internal/core"
)

type categoryPayload struct {
	ID          int64  `json:"id"`
	Description string `json:"description"`
	Purpose     string `json:"purpose"`
}

func categoryToPayload(c core.Category) categoryPayload {
	return categoryPayload{ID: c.ID, Description: c.Description, Purpose: string(c.Purpose)}
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		categories, err := s.categories.List(r.Context())
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		payload := make([]categoryPayload, 0, len(categories))
		for _, c := range categories {
			payload = append(payload, categoryToPayload(c))
		}
		writeJSON(w, http.StatusOK, payload)

	case http.MethodPost:
		var in categoryPayload
		if err := decodeJSON(r, &in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		created, err := s.categories.Create(r.Context(), core.Category{
			Description: in.Description,
			Purpose:     core.CategoryPurpose(in.Purpose),
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, categoryToPayload(created))

	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) handleCategoryByID(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	switch r.Method {
	case http.MethodGet:
		c, err := s.categories.Get(r.Context(), id)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, categoryToPayload(c))

	case http.MethodPut:
		var in categoryPayload
		if err := decodeJSON(r, &in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		err := s.categories.Update(r.Context(), core.Category{
			ID:          id,
			Description: in.Description,
			Purpose:     core.CategoryPurpose(in.Purpose),
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	case http.MethodDelete:
		if err := s.categories.Delete(r.Context(), id); err != nil {
			writeServiceError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w, "GET, PUT, DELETE")
	}
}
