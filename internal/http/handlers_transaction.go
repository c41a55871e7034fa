package http

import (
	"net/http"
	"time"

	"finman/internal/core"
)

// transactionPayload is the wire form of a transaction. Amount is a
// 2-decimal number on the way out; on the way in it may also arrive as
// a quoted string, which core.Money tolerates.
type transactionPayload struct {
	ID          int64      `json:"id"`
	Description string     `json:"description"`
	Amount      core.Money `json:"amount"`
	Type        string     `json:"type"`
	CategoryID  int64      `json:"categoryId"`
	PersonID    int64      `json:"personId"`
	CreatedAt   time.Time  `json:"createdAt"`
}

func transactionToPayload(tx core.Transaction) transactionPayload {
	return transactionPayload{
		ID:          tx.ID,
		Description: tx.Description,
		Amount:      tx.Amount,
		Type:        string(tx.Type),
		CategoryID:  tx.CategoryID,
		PersonID:    tx.PersonID,
		CreatedAt:   tx.CreatedAt,
	}
}

func (in transactionPayload) toCore(id int64) core.Transaction {
	return core.Transaction{
		ID:          id,
		Description: in.Description,
		Amount:      in.Amount,
		Type:        core.TransactionType(in.Type),
		CategoryID:  in.CategoryID,
		PersonID:    in.PersonID,
	}
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		transactions, err := s.transactions.List(r.Context())
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		payload := make([]transactionPayload, 0, len(transactions))
		for _, tx := range transactions {
			payload = append(payload, transactionToPayload(tx))
		}
		writeJSON(w, http.StatusOK, payload)

	case http.MethodPost:
		var in transactionPayload
		if err := decodeJSON(r, &in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		created, err := s.transactions.Create(r.Context(), in.toCore(0))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, transactionToPayload(created))

	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) handleTransactionByID(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	switch r.Method {
	case http.MethodGet:
		tx, err := s.transactions.Get(r.Context(), id)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, transactionToPayload(tx))

	case http.MethodPut:
		var in transactionPayload
		if err := decodeJSON(r, &in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := s.transactions.Update(r.Context(), in.toCore(id)); err != nil {
			writeServiceError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	case http.MethodDelete:
		if err := s.transactions.Delete(r.Context(), id); err != nil {
			writeServiceError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w, "GET, PUT, DELETE")
	}
}
