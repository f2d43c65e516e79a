package web

import (
	"errors"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/thebtf/catwalk/internal/walker"
	"github.com/thebtf/catwalk/internal/web/sse"
	"github.com/thebtf/catwalk/pkg/models"
)

type historyResponse struct {
	Name      string     `json:"name"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at"`
	Active    bool       `json:"active"`
	Line      string     `json:"line"`
}

type toggleRequest struct {
	Walking *bool `json:"walking"`
}

type addCatRequest struct {
	Name string `json:"name"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusForError maps domain errors onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, models.ErrDuplicateName):
		return http.StatusConflict
	case errors.Is(err, models.ErrEmptyName), errors.Is(err, models.ErrNameTooLong):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrCatNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleAPIListCats(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.walker.Snapshot(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to load snapshot")
		writeError(w, http.StatusInternalServerError, "failed to load cats")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"cats": snapshot})
}

func (s *Server) handleAPIAddCat(w http.ResponseWriter, r *http.Request) {
	var req addCatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	cat, err := s.walker.RegisterCat(r.Context(), req.Name)
	if err != nil {
		status := statusForError(err)
		if status == http.StatusInternalServerError {
			log.Error().Err(err).Msg("Failed to register cat")
		}
		writeError(w, status, err.Error())
		return
	}
	s.notify(sse.Event{Type: sse.EventCatAdded, CatID: cat.ID})
	writeJSON(w, http.StatusCreated, cat)
}

func (s *Server) handleAPIToggleWalk(w http.ResponseWriter, r *http.Request) {
	id, ok := parseCatID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid cat id")
		return
	}

	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Walking == nil {
		writeError(w, http.StatusBadRequest, `body must be {"walking": true|false}`)
		return
	}

	tr, err := s.walker.ToggleWalk(r.Context(), id, *req.Walking)
	if err != nil {
		status := statusForError(err)
		if status == http.StatusInternalServerError {
			log.Error().Err(err).Int64("cat_id", id).Msg("Failed to toggle walk")
		}
		writeError(w, status, err.Error())
		return
	}
	if tr != models.TransitionNone {
		s.notify(sse.Event{Type: sse.EventWalk, CatID: id, Transition: string(tr)})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":         id,
		"walking":    *req.Walking,
		"transition": tr,
	})
}

func (s *Server) handleAPIHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.walker.History(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to load history")
		writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}

	out := make([]historyResponse, 0, len(history))
	for _, e := range history {
		out = append(out, historyResponse{
			Name:      e.Name,
			StartedAt: e.StartedAt,
			EndedAt:   e.EndedAt,
			Active:    e.Active(),
			Line:      walker.FormatHistoryLine(e),
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"history": out})
}

func (s *Server) handleAPIReset(w http.ResponseWriter, r *http.Request) {
	if err := s.walker.Reset(r.Context()); err != nil {
		log.Error().Err(err).Msg("Failed to reset data")
		writeError(w, http.StatusInternalServerError, "failed to reset data")
		return
	}
	s.notify(sse.Event{Type: sse.EventReset})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"status":  "ok",
		"version": s.version,
		"uptime":  time.Since(s.startTime).Round(time.Second).String(),
	}
	if s.health == nil {
		writeJSON(w, http.StatusOK, resp)
		return
	}

	if err := s.health.PingContext(r.Context()); err != nil {
		resp["status"] = "unavailable"
		resp["error"] = err.Error()
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	cats, walks, err := s.health.Counts(r.Context())
	if err != nil {
		resp["status"] = "degraded"
		resp["error"] = err.Error()
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	resp["cats"] = cats
	resp["walks"] = walks
	writeJSON(w, http.StatusOK, resp)
}
