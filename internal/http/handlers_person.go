package http

import (
	"net/http"

	"finman/internal/core"
)

type personPayload struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Age  int    `json:"age"`
}

func personToPayload(p core.Person) personPayload {
	return personPayload{ID: p.ID, Name: p.Name, Age: p.Age}
}

func (s *Server) handlePersons(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		persons, err := s.persons.List(r.Context())
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		payload := make([]personPayload, 0, len(persons))
		for _, p := range persons {
			payload = append(payload, personToPayload(p))
		}
		writeJSON(w, http.StatusOK, payload)

	case http.MethodPost:
		var in personPayload
		if err := decodeJSON(r, &in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		created, err := s.persons.Create(r.Context(), core.Person{Name: in.Name, Age: in.Age})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, personToPayload(created))

	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) handlePersonByID(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	switch r.Method {
	case http.MethodGet:
		p, err := s.persons.Get(r.Context(), id)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, personToPayload(p))

	case http.MethodPut:
		var in personPayload
		if err := decodeJSON(r, &in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		err := s.persons.Update(r.Context(), core.Person{ID: id, Name: in.Name, Age: in.Age})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	case http.MethodDelete:
		if err := s.persons.Delete(r.Context(), id); err != nil {
			writeServiceError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w, "GET, PUT, DELETE")
	}
}
