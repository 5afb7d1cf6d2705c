package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"dealscope/pkg/aggregate"
	"dealscope/pkg/pipeline"
)

// datasetFromRequest resolves the feed query param; an empty param means the
// first configured feed.
func (s *Server) datasetFromRequest(w http.ResponseWriter, r *http.Request) (*pipeline.Dataset, bool) {
	key := r.URL.Query().Get("feed")
	if key == "" {
		keys := s.Manager.Keys()
		if len(keys) == 0 {
			http.Error(w, "no feeds configured", http.StatusInternalServerError)
			return nil, false
		}
		key = keys[0]
	}
	ds, ok := s.Manager.Dataset(key)
	if !ok {
		http.Error(w, "unknown feed: "+key, http.StatusNotFound)
		return nil, false
	}
	return ds, true
}

func filterFromRequest(r *http.Request) aggregate.Filter {
	q := r.URL.Query()
	f := aggregate.Filter{Associate: q.Get("associate")}
	if y, err := strconv.Atoi(q.Get("year")); err == nil {
		f.Year = y
	}
	if m, err := strconv.Atoi(q.Get("month")); err == nil && m >= 1 && m <= 12 {
		f.Month = time.Month(m)
	}
	return f
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

type feedInfo struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

func (s *Server) handleFeeds(w http.ResponseWriter, r *http.Request) {
	var out []feedInfo
	for _, k := range s.Manager.Keys() {
		ds, _ := s.Manager.Dataset(k)
		out = append(out, feedInfo{Key: k, Label: ds.Config().Label})
	}
	writeJSON(w, out)
}

type stateResponse struct {
	Feed        string              `json:"feed"`
	Label       string              `json:"label"`
	Provenance  pipeline.Provenance `json:"provenance"`
	FetchedAt   *time.Time          `json:"fetchedAt,omitempty"`
	RecordCount int                 `json:"recordCount"`
	Loading     bool                `json:"loading"`
	LastError   string              `json:"lastError,omitempty"`
}

func stateResponseFor(ds *pipeline.Dataset, st pipeline.State) stateResponse {
	resp := stateResponse{
		Feed:        ds.Config().Key,
		Label:       ds.Config().Label,
		Provenance:  st.Provenance,
		RecordCount: len(st.Records),
		Loading:     st.Loading,
		LastError:   st.LastError,
	}
	if !st.FetchedAt.IsZero() {
		t := st.FetchedAt
		resp.FetchedAt = &t
	}
	return resp
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.datasetFromRequest(w, r)
	if !ok {
		return
	}
	writeJSON(w, stateResponseFor(ds, ds.State()))
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.datasetFromRequest(w, r)
	if !ok {
		return
	}
	st := ds.Refresh(r.Context())
	writeJSON(w, stateResponseFor(ds, st))
}

func (s *Server) handleErrorRate(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.datasetFromRequest(w, r)
	if !ok {
		return
	}
	kind := aggregate.AssociateErrors
	if r.URL.Query().Get("kind") == "team" {
		kind = aggregate.TeamErrors
	}
	f := filterFromRequest(r)
	records := ds.State().Records
	window := aggregate.WeekWindow(records, f)
	writeJSON(w, aggregate.ErrorRateSeries(records, window, f, kind))
}

func (s *Server) handleErrorTypes(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.datasetFromRequest(w, r)
	if !ok {
		return
	}
	f := filterFromRequest(r)
	records := ds.State().Records
	window := aggregate.WeekWindow(records, f)
	writeJSON(w, aggregate.ErrorTypeSeries(records, window, f))
}

type durationResponse struct {
	Weekly  []aggregate.DurationPoint  `json:"weekly"`
	Updates []aggregate.DurationUpdate `json:"updates"`
}

func (s *Server) handleDuration(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.datasetFromRequest(w, r)
	if !ok {
		return
	}
	f := filterFromRequest(r)
	records := ds.State().Records
	window := aggregate.WeekWindow(records, f)
	writeJSON(w, durationResponse{
		Weekly:  aggregate.DurationSeries(records, window, f),
		Updates: aggregate.DurationUpdates(records, window, f),
	})
}

func (s *Server) handleAssociates(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.datasetFromRequest(w, r)
	if !ok {
		return
	}
	writeJSON(w, aggregate.Associates(ds.State().Records))
}

func (s *Server) handleYears(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.datasetFromRequest(w, r)
	if !ok {
		return
	}
	writeJSON(w, aggregate.Years(ds.State().Records))
}

func (s *Server) handleMonths(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.datasetFromRequest(w, r)
	if !ok {
		return
	}
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		http.Error(w, "year parameter required", http.StatusBadRequest)
		return
	}
	months := aggregate.Months(ds.State().Records, year)
	out := make([]int, 0, len(months))
	for _, m := range months {
		out = append(out, int(m))
	}
	writeJSON(w, out)
}
