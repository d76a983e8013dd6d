package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/rushteam/agrorec/catalog"
	"github.com/rushteam/agrorec/core"
	"github.com/rushteam/agrorec/recall"
	"github.com/rushteam/agrorec/recommender"
)

// weightsDTO 中为 nil 的字段取默认权重。
type weightsDTO struct {
	Distance      *float64 `json:"distance"`
	Rating        *float64 `json:"rating"`
	Nutrition     *float64 `json:"nutrition"`
	Regional      *float64 `json:"regional"`
	Collaborative *float64 `json:"collaborative"`
}

type preferencesDTO struct {
	DesiredProducts           []string    `json:"desired_products"`
	MaxDistanceKm             *float64    `json:"max_distance_km"`
	OrganicOnly               *bool       `json:"organic_only"`
	NutritionObjective        *string     `json:"nutrition_objective"`
	ConsiderRegionalRelevance *bool       `json:"consider_regional_relevance"`
	Weights                   *weightsDTO `json:"weights"`
	TopN                      *int        `json:"top_n"`
	ExcludeIDs                []int64     `json:"exclude_ids"`
	Rule                      string      `json:"rule"`
}

type recommendRequest struct {
	ConsumerID  string         `json:"consumer_id"`
	Lat         *float64       `json:"lat"`
	Lon         *float64       `json:"lon"`
	Preferences preferencesDTO `json:"preferences"`
}

type recommendResponse struct {
	RequestID string                       `json:"request_id,omitempty"`
	Results   []recommender.Recommendation `json:"results"`
	Count     int                          `json:"count"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type associationResponse struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Lat         *float64          `json:"lat"`
	Lon         *float64          `json:"lon"`
	Regions     []string          `json:"regions"`
	Products    []string          `json:"products"`
	Organic     bool              `json:"organic"`
	AvgRating   float64           `json:"avg_rating"`
	RatingCount int               `json:"rating_count"`
	PriceTier   catalog.PriceTier `json:"price_tier,omitempty"`
	Similar     []recall.Neighbor `json:"similar"`
}

type regionsResponse struct {
	Product      string                `json:"product"`
	TotalOutputT float64               `json:"total_output_t"`
	Regions      []catalog.RegionShare `json:"regions"`
}

// toQuery 将请求合并到默认偏好之上。
func (req *recommendRequest) toQuery(defaults core.Preferences) (core.Query, error) {
	if req.Lat == nil || req.Lon == nil {
		return core.Query{}, core.NewDomainError(core.ModuleQuery, core.ErrorCodeInvalidInput, "query: lat and lon are required")
	}
	q := core.Query{ConsumerID: req.ConsumerID, Preferences: defaults}
	q.Location.Lat, q.Location.Lon = *req.Lat, *req.Lon

	p := &q.Preferences
	in := req.Preferences
	p.DesiredProducts = in.DesiredProducts
	p.ExcludeIDs = in.ExcludeIDs
	p.Rule = in.Rule
	if in.MaxDistanceKm != nil {
		p.MaxDistanceKm = *in.MaxDistanceKm
	}
	if in.OrganicOnly != nil {
		p.OrganicOnly = *in.OrganicOnly
	}
	if in.NutritionObjective != nil {
		obj, err := core.ParseNutritionObjective(*in.NutritionObjective)
		if err != nil {
			return core.Query{}, err
		}
		p.NutritionObjective = obj
	}
	if in.ConsiderRegionalRelevance != nil {
		p.ConsiderRegionalRelevance = *in.ConsiderRegionalRelevance
	}
	if in.TopN != nil {
		p.TopN = *in.TopN
	}
	if w := in.Weights; w != nil {
		setIf(&p.Weights.Distance, w.Distance)
		setIf(&p.Weights.Rating, w.Rating)
		setIf(&p.Weights.Nutrition, w.Nutrition)
		setIf(&p.Weights.Regional, w.Regional)
		setIf(&p.Weights.Collaborative, w.Collaborative)
	}
	return q, nil
}

func setIf(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"associations": s.rec.Snapshot().Catalog.Len(),
		"ratings":      s.rec.Snapshot().Ratings.Len(),
	})
}

func (s *Server) recommend(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, core.NewDomainError(core.ModuleQuery, core.ErrorCodeInvalidInput, "query: malformed json: "+err.Error()))
		return
	}
	q, err := req.toQuery(s.defaults)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	results, err := s.rec.Recommend(r.Context(), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recommendResponse{
		RequestID: GetRequestID(r.Context()),
		Results:   results,
		Count:     len(results),
	})
}

func (s *Server) association(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.writeError(w, r, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeInvalidInput, "catalog: association id must be an integer"))
		return
	}
	snap := s.rec.Snapshot()
	a, ok := snap.Catalog.Association(id)
	if !ok {
		s.writeError(w, r, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeNotFound, "catalog: association "+strconv.FormatInt(id, 10)+" not found"))
		return
	}
	resp := associationResponse{
		ID:          a.ID,
		Name:        a.Name,
		Regions:     a.Regions,
		Products:    a.Products,
		Organic:     a.Organic,
		AvgRating:   a.AvgRating,
		RatingCount: a.RatingCount,
		PriceTier:   a.PriceTier,
		Similar:     snap.CF.Similarity.Similar(a.ID, 3),
	}
	if a.Location != nil {
		lat, lon := a.Location.Lat, a.Location.Lon
		resp.Lat, resp.Lon = &lat, &lon
	}
	if resp.Similar == nil {
		resp.Similar = []recall.Neighbor{}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) productRegions(w http.ResponseWriter, r *http.Request) {
	cat := s.rec.Snapshot().Catalog
	raw := chi.URLParam(r, "product")
	product, ok := cat.Vocabulary().Canonicalize(raw)
	if !ok {
		s.writeError(w, r, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeNotFound, "catalog: unknown product "+raw))
		return
	}
	n := 5
	if v := r.URL.Query().Get("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			s.writeError(w, r, core.NewDomainError(core.ModuleQuery, core.ErrorCodeInvalidInput, "query: n must be a non-negative integer"))
			return
		}
		n = parsed
	}
	writeJSON(w, http.StatusOK, regionsResponse{
		Product:      product,
		TotalOutputT: cat.Production().Total(product),
		Regions:      cat.Production().TopRegions(product, n),
	})
}

func statusOf(err error) (int, string) {
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout, "TIMEOUT"
	}
	if errors.Is(err, context.Canceled) {
		return 499, "CANCELED"
	}
	de := core.GetDomainError(err)
	if de == nil {
		return http.StatusInternalServerError, core.ErrorCodeInternalError
	}
	switch de.Code {
	case core.ErrorCodeInvalidInput:
		return http.StatusBadRequest, de.Code
	case core.ErrorCodeNotFound:
		return http.StatusNotFound, de.Code
	case core.ErrorCodeUnavailable:
		return http.StatusServiceUnavailable, de.Code
	default:
		return http.StatusInternalServerError, de.Code
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusOf(err)
	ev := s.log.Debug()
	if status >= http.StatusInternalServerError {
		ev = s.log.Error()
	}
	ev.Err(err).Str("request_id", GetRequestID(r.Context())).Int("status", status).Msg("request failed")
	writeJSON(w, status, errorResponse{Error: err.Error(), Code: code})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
