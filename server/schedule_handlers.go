package server

import (
	"log"
	"net/http"

	"github.com/umputun/newsdesk/pkg/domain"
	"github.com/umputun/newsdesk/pkg/journal"
	"github.com/umputun/newsdesk/pkg/schedule"
)

const (
	templateScheduleList = "schedule-list.html"
	templateScheduleForm = "schedule-form.html"
	templateDraftButton  = "draft-button"
)

type scheduleListView struct {
	Items []domain.Schedule
	TZ    string
	OOB   bool
	Run   runButtonView // outcome of the last run-now, shown on its button
}

type scheduleFormView struct {
	Draft     schedule.Draft
	Options   schedule.Options
	Languages []string
	TZ        string
}

// draftOption is one toggle button of the schedule form
type draftOption struct {
	Kind   string
	Value  string
	Active bool
}

type runButtonView struct {
	ID      domain.ID
	State   string // "", "ok" or "failed"
	Message string
}

// RunButton returns the run-now button of a schedule, with the run outcome if it was just run
func (v scheduleListView) RunButton(id domain.ID) runButtonView {
	if v.Run.ID == id {
		return v.Run
	}
	return runButtonView{ID: id}
}

// scheduleListHandler re-fetches schedules and renders the list
func (s *Server) scheduleListHandler(w http.ResponseWriter, r *http.Request) {
	_, _ = s.schedules.Refresh(r.Context(), struct{}{})
	s.renderTemplate(w, templateScheduleList, s.scheduleView())
}

// draftModeHandler switches the form between asset and calendar mode
func (s *Server) draftModeHandler(w http.ResponseWriter, r *http.Request) {
	s.captureDraftInputs(r)
	if err := s.planner.SetMode(r.PathValue("mode")); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.renderTemplate(w, templateScheduleForm, s.formView())
}

// draftToggleHandler flips a day, time or impact of the draft and renders its button
func (s *Server) draftToggleHandler(w http.ResponseWriter, r *http.Request) {
	kind, value := r.PathValue("kind"), r.PathValue("value")

	var active bool
	var err error
	switch kind {
	case "day":
		active, err = s.planner.ToggleDay(value)
	case "time":
		active, err = s.planner.ToggleTime(value)
	case "impact":
		active, err = s.planner.ToggleImpact(value)
	default:
		http.Error(w, "unknown option kind", http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.renderTemplate(w, templateDraftButton, draftOption{Kind: kind, Value: value, Active: active})
}

// createScheduleHandler submits the draft. Invalid drafts get an alert and no remote call.
func (s *Server) createScheduleHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s.captureDraftInputs(r)

	req, err := s.planner.Submit(ctx)
	if msg := schedule.Message(err); msg != "" {
		alert(w, msg)
		return
	}
	s.record(ctx, journal.OpCreateSchedule, req.Asset, err)
	if err != nil {
		// the draft stays as is so the user can submit again
		log.Printf("[WARN] %v", err)
		w.WriteHeader(http.StatusNoContent)
		return
	}

	s.renderTemplate(w, templateScheduleForm, s.formView())
	list := s.scheduleView()
	list.OOB = true
	s.renderTemplate(w, templateScheduleList, list)
}

// runScheduleHandler triggers a schedule now and renders the reloaded schedule list,
// the run button shows the outcome for a moment
func (s *Server) runScheduleHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := domain.ID(r.PathValue("id"))

	err := s.planner.RunNow(ctx, id)
	s.record(ctx, journal.OpRunSchedule, id.String(), err)
	view := s.scheduleView()
	if err != nil {
		log.Printf("[WARN] %v", err)
		view.Run = runButtonView{ID: id, State: "failed", Message: userMessage(err)}
		s.renderTemplate(w, templateScheduleList, view)
		return
	}

	view.Run = runButtonView{ID: id, State: "ok"}
	s.renderTemplate(w, templateScheduleList, view)
	list := s.newsView()
	list.OOB = true
	s.renderNewsList(w, list)
}

// toggleScheduleHandler pauses or resumes a schedule
func (s *Server) toggleScheduleHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := domain.ID(r.PathValue("id"))

	err := s.planner.Toggle(ctx, id)
	s.record(ctx, journal.OpToggleSchedule, id.String(), err)
	if err != nil {
		log.Printf("[WARN] %v", err)
	}
	s.renderTemplate(w, templateScheduleList, s.scheduleView())
}

// deleteScheduleHandler removes a schedule
func (s *Server) deleteScheduleHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := domain.ID(r.PathValue("id"))

	err := s.planner.Delete(ctx, id)
	s.record(ctx, journal.OpDeleteSchedule, id.String(), err)
	if err != nil {
		log.Printf("[WARN] %v", err)
	}
	s.renderTemplate(w, templateScheduleList, s.scheduleView())
}

// captureDraftInputs keeps typed form inputs in the draft, absent fields are left alone
func (s *Server) captureDraftInputs(r *http.Request) {
	if err := r.ParseForm(); err != nil {
		log.Printf("[DEBUG] can't parse schedule form: %v", err)
		return
	}
	if _, ok := r.PostForm["asset"]; ok {
		s.planner.SetAsset(r.PostForm.Get("asset"))
	}
	if lang := r.PostForm.Get("language"); lang != "" {
		s.planner.SetLanguage(lang)
	}
}

func (s *Server) scheduleView() scheduleListView {
	return scheduleListView{Items: s.schedules.Snapshot().Items, TZ: s.config.GetFullConfig().Schedule.TimezoneLabel}
}

func (s *Server) formView() scheduleFormView {
	cfg := s.config.GetFullConfig()
	return scheduleFormView{
		Draft:     s.planner.Draft(),
		Options:   s.planner.Options(),
		Languages: cfg.Schedule.Languages,
		TZ:        cfg.Schedule.TimezoneLabel,
	}
}
