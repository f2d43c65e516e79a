package web

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/thebtf/catwalk/internal/walker"
	"github.com/thebtf/catwalk/internal/web/sse"
	"github.com/thebtf/catwalk/pkg/models"
)

// Flash levels carried in the redirect query string.
const (
	LevelSuccess = "success"
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelError   = "error"
)

type catView struct {
	ID      int64
	Walking bool
	Label   string
}

type historyView struct {
	Line   string
	Active bool
}

type pageData struct {
	Flash         string
	Level         string
	Cats          []catView
	History       []historyView
	MaxNameLength int
	EmptyCats     string
	EmptyHistory  string
}

// handleIndex renders the full page from a fresh snapshot and history.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	snapshot, err := s.walker.Snapshot(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load snapshot")
		http.Error(w, "failed to load cats", http.StatusInternalServerError)
		return
	}
	history, err := s.walker.History(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load history")
		http.Error(w, "failed to load history", http.StatusInternalServerError)
		return
	}

	data := pageData{
		Flash:         r.URL.Query().Get("msg"),
		Level:         flashLevel(r.URL.Query().Get("level")),
		Cats:          make([]catView, 0, len(snapshot)),
		History:       make([]historyView, 0, len(history)),
		MaxNameLength: models.MaxNameLength,
		EmptyCats:     walker.MsgNoCats,
		EmptyHistory:  walker.MsgNoWalks,
	}
	for _, c := range snapshot {
		data.Cats = append(data.Cats, catView{ID: c.ID, Walking: c.Walking, Label: walker.StateLabel(c)})
	}
	for _, e := range history {
		data.History = append(data.History, historyView{Line: walker.FormatHistoryLine(e), Active: e.Active()})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	setNoCache(w)
	if err := pageTemplate.Execute(w, data); err != nil {
		log.Error().Err(err).Msg("Failed to render page")
	}
}

// handleAddCat registers the posted name and redirects back with a flash.
func (s *Server) handleAddCat(w http.ResponseWriter, r *http.Request) {
	name := r.FormValue("name")

	cat, err := s.walker.RegisterCat(r.Context(), name)
	switch {
	case err == nil:
		s.notify(sse.Event{Type: sse.EventCatAdded, CatID: cat.ID})
		redirectWithFlash(w, r, walker.AddedMessage(cat.Name), LevelSuccess)
	case errors.Is(err, models.ErrDuplicateName):
		redirectWithFlash(w, r, walker.MsgDuplicate, LevelWarning)
	case errors.Is(err, models.ErrEmptyName), errors.Is(err, models.ErrNameTooLong):
		msg, _ := walker.ErrorMessage(err)
		redirectWithFlash(w, r, msg, LevelError)
	default:
		log.Error().Err(err).Msg("Failed to register cat")
		redirectWithFlash(w, r, "Could not add cat.", LevelError)
	}
}

// handleToggleWalk applies a checkbox change. An unchecked box posts no value.
func (s *Server) handleToggleWalk(w http.ResponseWriter, r *http.Request) {
	id, ok := parseCatID(r)
	if !ok {
		redirectWithFlash(w, r, walker.MsgUnknown, LevelError)
		return
	}
	walking := r.FormValue("walking") == "on"

	tr, err := s.walker.ToggleWalk(r.Context(), id, walking)
	if err != nil {
		if errors.Is(err, models.ErrCatNotFound) {
			redirectWithFlash(w, r, walker.MsgUnknown, LevelError)
			return
		}
		log.Error().Err(err).Int64("cat_id", id).Msg("Failed to toggle walk")
		redirectWithFlash(w, r, "Could not update walk.", LevelError)
		return
	}

	if tr == models.TransitionNone {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	s.notify(sse.Event{Type: sse.EventWalk, CatID: id, Transition: string(tr)})
	name := s.catName(r, id)
	level := LevelSuccess
	if tr == models.TransitionEnded {
		level = LevelInfo
	}
	redirectWithFlash(w, r, walker.TransitionMessage(name, tr), level)
}

// handleReset wipes all data.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.walker.Reset(r.Context()); err != nil {
		log.Error().Err(err).Msg("Failed to reset data")
		redirectWithFlash(w, r, "Could not reset data.", LevelError)
		return
	}
	s.notify(sse.Event{Type: sse.EventReset})
	redirectWithFlash(w, r, walker.MsgReset, LevelSuccess)
}

func (s *Server) catName(r *http.Request, id int64) string {
	snapshot, err := s.walker.Snapshot(r.Context())
	if err == nil {
		for _, c := range snapshot {
			if c.ID == id {
				return c.Name
			}
		}
	}
	return "Cat " + strconv.FormatInt(id, 10)
}

func parseCatID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func redirectWithFlash(w http.ResponseWriter, r *http.Request, msg, level string) {
	q := url.Values{}
	q.Set("msg", msg)
	q.Set("level", level)
	http.Redirect(w, r, "/?"+q.Encode(), http.StatusSeeOther)
}

func flashLevel(level string) string {
	switch level {
	case LevelSuccess, LevelInfo, LevelWarning, LevelError:
		return level
	default:
		return LevelInfo
	}
}
