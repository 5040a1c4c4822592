package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/thebtf/webtools/internal/habit"
	"github.com/thebtf/webtools/pkg/models"
)

const emptyNameMessage = "Empty name"

type habitPage struct {
	Habits []models.Habit
}

type habitsResponse struct {
	Habits []models.Habit `json:"habits"`
	OK     bool           `json:"ok"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleHabitPage renders the current habits and refreshes the session expiry.
func (s *Service) handleHabitPage(w http.ResponseWriter, r *http.Request) {
	habits := s.sessions.Habits(r)
	if err := s.sessions.Touch(w, r); err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("Failed to refresh session")
	}
	s.render(w, r, "habit.html", habitPage{Habits: habits})
}

func (s *Service) handleHabitAdd(w http.ResponseWriter, r *http.Request) {
	if !s.parseForm(w, r) {
		return
	}

	habits, added, err := habit.Add(s.sessions.Habits(r), r.PostFormValue("name"))
	if errors.Is(err, habit.ErrEmptyName) {
		writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: emptyNameMessage})
		return
	}

	if !s.saveHabits(w, r, habits) {
		return
	}
	s.metrics.recordHabitOp(r.Context(), "add")
	hlog.FromRequest(r).Debug().Int("id", added.ID).Int("count", len(habits)).Msg("Habit added")
	writeJSON(w, r, http.StatusOK, habitsResponse{Habits: habits, OK: true})
}

func (s *Service) handleHabitToggle(w http.ResponseWriter, r *http.Request) {
	id, ok := habitID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	habits := habit.Toggle(s.sessions.Habits(r), id)
	if !s.saveHabits(w, r, habits) {
		return
	}
	s.metrics.recordHabitOp(r.Context(), "toggle")
	writeJSON(w, r, http.StatusOK, habitsResponse{Habits: habits, OK: true})
}

func (s *Service) handleHabitDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := habitID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	habits := habit.Delete(s.sessions.Habits(r), id)
	if !s.saveHabits(w, r, habits) {
		return
	}
	s.metrics.recordHabitOp(r.Context(), "delete")
	writeJSON(w, r, http.StatusOK, habitsResponse{Habits: habits, OK: true})
}

// habitID parses the {id} route parameter. The route pattern only admits
// digits, so failure here means the value overflows an int.
func habitID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		return 0, false
	}
	return id, true
}

// saveHabits writes habits to the session cookie. The list replaces whatever
// the cookie held; concurrent requests from the same client are last write
// wins.
func (s *Service) saveHabits(w http.ResponseWriter, r *http.Request, habits []models.Habit) bool {
	if err := s.sessions.SaveHabits(w, r, habits); err != nil {
		hlog.FromRequest(r).Error().Err(err).Int("count", len(habits)).Msg("Failed to save habits")
		writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: "Could not save habits"})
		return false
	}
	return true
}
