package handlers

import (
	"earthwork-route-service/internal/api/dto"
	"earthwork-route-service/internal/domain"
	"earthwork-route-service/internal/ports"
	"log"
	"net/http"
	"strconv"
	"strings"
)

// FieldHandler stores fields and serves them back with their balanced volumes.
type FieldHandler struct {
	Repo ports.FieldRepository
}

// Create validates the cells as a field before storing them raw.
func (h *FieldHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateFieldRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeError(w, r, http.StatusBadRequest, "name is required")
		return
	}

	cells := toCells(req.Cells)
	if _, err := domain.NewField(cells); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	id, err := h.Repo.SaveField(r.Context(), name, cells)
	if err != nil {
		log.Printf("save field failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusCreated, dto.CreateFieldResponse{ID: id})
}

func (h *FieldHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "field id must be an integer")
		return
	}

	cells, ok, err := h.Repo.GetField(r.Context(), id)
	if err != nil {
		log.Printf("get field failed: id=%d err=%v", id, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}
	if !ok {
		writeError(w, r, http.StatusNotFound, "field not found")
		return
	}

	field, err := domain.NewField(cells)
	if err != nil {
		log.Printf("stored field is invalid: id=%d err=%v", id, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.FieldResponse{
		ID:            id,
		Cells:         make([]dto.CellResponse, 0, len(cells)),
		Peaks:         field.Count(domain.Peak),
		Holes:         field.Count(domain.Hole),
		TerrainToMove: field.TerrainToMove().Float(),
	}
	for _, c := range cells {
		res.Cells = append(res.Cells, dto.CellResponse{
			X:        c.Coordinates.X,
			Y:        c.Coordinates.Y,
			Quantity: c.Quantity.Float(),
			Balanced: field.Quantity(c.Coordinates).Float(),
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}
