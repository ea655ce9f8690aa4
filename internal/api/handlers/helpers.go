package handlers

import (
	"earthwork-route-service/internal/api/dto"
	"earthwork-route-service/internal/domain"
	"encoding/json"
	"io"
	"log"
	"net/http"
)

// Request bodies carry whole fields; 32 MiB fits a few hundred thousand cells.
const maxBodyBytes = 32 << 20

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode failed: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

// decodeJSON reads exactly one JSON object into v. On failure it writes the
// error response and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return false
	}
	return true
}

func toCells(in []dto.CellRequest) []domain.Cell {
	cells := make([]domain.Cell, 0, len(in))
	for _, c := range in {
		cells = append(cells, domain.Cell{
			Coordinates: domain.Coordinates{X: c.X, Y: c.Y},
			Quantity:    domain.QuantityFromFloat(c.Quantity),
		})
	}
	return cells
}
