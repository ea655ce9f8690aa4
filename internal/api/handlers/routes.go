package handlers

import (
	"earthwork-route-service/internal/api/dto"
	"earthwork-route-service/internal/domain"
	"earthwork-route-service/internal/ports"
	"earthwork-route-service/internal/services"
	"errors"
	"log"
	"net/http"
	"strings"
)

// RouteHandler solves fields and serves stored routes.
// Cache and Tours are optional; Routes is optional for POST but required
// for GET.
type RouteHandler struct {
	Fields  ports.FieldRepository
	Routes  ports.RouteRepository
	Cache   ports.RouteCache
	Tours   ports.TourSolver
	Workers int
}

// Plan solves the posted field (inline cells or a stored field id), keeps
// the result, and answers with the route.
func (h *RouteHandler) Plan(w http.ResponseWriter, r *http.Request) {
	var req dto.RouteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx := r.Context()

	var cells []domain.Cell
	switch {
	case req.FieldID != nil && len(req.Cells) > 0:
		writeError(w, r, http.StatusBadRequest, "field_id and cells are mutually exclusive")
		return
	case req.FieldID != nil:
		if h.Fields == nil {
			writeError(w, r, http.StatusNotImplemented, "field storage is not configured")
			return
		}
		stored, ok, err := h.Fields.GetField(ctx, *req.FieldID)
		if err != nil {
			log.Printf("get field failed: id=%d err=%v", *req.FieldID, err)
			writeError(w, r, http.StatusInternalServerError, "internal server error")
			return
		}
		if !ok {
			writeError(w, r, http.StatusNotFound, "field not found")
			return
		}
		cells = stored
	default:
		cells = toCells(req.Cells)
	}

	field, err := domain.NewField(cells)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	svcReq, err := h.toServiceRequest(req, field)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var tours ports.TourSolver
	if req.UseTour {
		if h.Tours == nil {
			writeError(w, r, http.StatusNotImplemented, "external tour solver is not configured")
			return
		}
		tours = h.Tours
	}

	key := services.RouteKey(cells, svcReq)
	if req.UseTour {
		key += ":tour"
	}
	if h.Cache != nil {
		plan, ok, err := h.Cache.Get(ctx, key)
		if err != nil {
			log.Printf("route cache get failed: key=%s err=%v", key, err)
		}
		if ok {
			writeJSON(w, r, http.StatusOK, toRouteResponse(plan, true))
			return
		}
	}

	plan, err := services.PlanRoute(ctx, field, svcReq, tours)
	if err != nil {
		status, msg := solveErrorStatus(err)
		if status == http.StatusInternalServerError {
			log.Printf("plan route failed: %v", err)
		}
		writeError(w, r, status, msg)
		return
	}

	if h.Routes != nil {
		if err := h.Routes.SaveRoute(ctx, plan); err != nil {
			log.Printf("save route failed: id=%s err=%v", plan.ID, err)
			writeError(w, r, http.StatusInternalServerError, "internal server error")
			return
		}
	}
	if h.Cache != nil {
		if err := h.Cache.Set(ctx, key, plan); err != nil {
			log.Printf("route cache set failed: key=%s err=%v", key, err)
		}
	}

	writeJSON(w, r, http.StatusCreated, toRouteResponse(plan, false))
}

func (h *RouteHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Routes == nil {
		writeError(w, r, http.StatusNotImplemented, "route storage is not configured")
		return
	}

	id := strings.TrimSpace(r.PathValue("id"))
	plan, ok, err := h.Routes.GetRoute(r.Context(), id)
	if err != nil {
		log.Printf("get route failed: id=%s err=%v", id, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}
	if !ok {
		writeError(w, r, http.StatusNotFound, "route not found")
		return
	}

	writeJSON(w, r, http.StatusOK, toRouteResponse(plan, false))
}

func (h *RouteHandler) toServiceRequest(req dto.RouteRequest, field *domain.Field) (services.PlanRouteRequest, error) {
	strategy, err := services.ParseStrategy(req.Strategy)
	if err != nil {
		return services.PlanRouteRequest{}, err
	}
	policy, err := domain.ParseRepairPolicy(req.Policy)
	if err != nil {
		return services.PlanRouteRequest{}, err
	}

	minSegment := -1.0
	if req.MinSegment != nil {
		minSegment = *req.MinSegment
	}

	out := services.PlanRouteRequest{
		Strategy:     strategy,
		Capacity:     domain.QuantityFromFloat(req.Capacity),
		Gamma:        req.Gamma,
		MinSegment:   minSegment,
		Start:        domain.Coordinates{X: req.Start.X, Y: req.Start.Y},
		InitialCargo: domain.QuantityFromFloat(req.InitialCargo),
		Choices:      req.Choices,
		Alpha:        req.Alpha,
		Seed:         req.Seed,
		Workers:      h.Workers,
		Policy:       policy,
	}
	return out.WithDefaults(field), nil
}

// solveErrorStatus maps solver failures to a status and a client message.
func solveErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidTruck):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrInfeasibleRepair), errors.Is(err, domain.ErrRouteInfeasible):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, domain.ErrUnbalancedField):
		return http.StatusUnprocessableEntity, err.Error()
	}
	return http.StatusInternalServerError, "internal server error"
}

func toRouteResponse(p *domain.RoutePlan, cached bool) dto.RouteResponse {
	res := dto.RouteResponse{
		ID:         p.ID,
		Strategy:   p.Strategy,
		Alpha:      p.Alpha,
		Distance:   p.Distance(),
		Chains:     p.Stats.Chains,
		LowerBound: p.Stats.LowerBound,
		CycleCost:  p.Stats.CycleCost,
		GapPercent: p.Stats.Gap(),
		SolvedAt:   p.SolvedAt,
		Cached:     cached,
		Stopovers:  make([]dto.StopoverResponse, 0, p.Path.Len()),
	}
	if s := p.Search; s != nil {
		res.Search = &dto.SearchResponse{
			Restarts:      s.Restarts,
			Solved:        s.Solved,
			BestDistance:  s.Best,
			WorstDistance: s.Worst,
			MeanDistance:  s.Mean,
		}
	}
	for _, s := range p.Path.Stopovers() {
		res.Stopovers = append(res.Stopovers, dto.StopoverResponse{
			X:        s.Coordinates.X,
			Y:        s.Coordinates.Y,
			Quantity: s.QuantityToBringIn.Float(),
		})
	}
	return res
}
