package server

import (
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/umputun/newsdesk/pkg/domain"
	"github.com/umputun/newsdesk/pkg/edit"
	"github.com/umputun/newsdesk/pkg/journal"
	"github.com/umputun/newsdesk/pkg/publish"
	"github.com/umputun/newsdesk/pkg/remote"
)

const (
	// template names
	templateNewsList       = "news-list.html"
	templateEditField      = "edit-field.html"
	templateGenerateResult = "generate-result.html"

	activityLimit = 100
)

// pageView is shared by all full pages
type pageView struct {
	Title   string
	Version string
	Page    string
}

type indexView struct {
	pageView
	News             newsListView
	Schedules        scheduleListView
	Form             scheduleFormView
	Generate         generateResultView
	Modal            publish.ModalState
	Languages        []string
	GeneratorEnabled bool
}

type activityView struct {
	pageView
	Enabled bool
	Entries []journal.Entry
	Error   string
}

type newsListView struct {
	Items  []domain.NewsItem
	Filter domain.NewsFilter
	OOB    bool
}

// fieldView is one inline editable field of a news item
type fieldView struct {
	ItemID    domain.ID
	Field     domain.Field
	Text      string
	Editable  bool
	State     string // css state of the indicator, "saved" or "reverted"
	Message   string
	HideAfter int64 // indicator lifetime in ms
}

// Markup renders the field text, descriptions become paragraphs
func (f fieldView) Markup() template.HTML {
	if f.Field == domain.FieldDescription {
		return template.HTML(edit.RenderDescription(f.Text)) //nolint:gosec // text is escaped by RenderDescription
	}
	return template.HTML(template.HTMLEscapeString(f.Text)) //nolint:gosec // escaped
}

type generateResultView struct {
	Class   string
	Title   string
	Message string
	OOB     bool
}

// templateFuncs are available to all templates
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"field":     newFieldView,
		"option":    func(kind, value string, active bool) draftOption { return draftOption{Kind: kind, Value: value, Active: active} },
		"upper":     strings.ToUpper,
		"join":      strings.Join,
		"fmtTime":   func(t time.Time) string { return t.Local().Format("2006-01-02 15:04:05") },
		"opLabel":   func(op journal.Op) string { return strings.ReplaceAll(string(op), "_", " ") },
	}
}

// newFieldView makes the view of a stored field value
func newFieldView(item domain.NewsItem, field string) fieldView {
	res := fieldView{ItemID: item.ID, Field: domain.Field(field), Editable: item.Editable()}
	switch res.Field {
	case domain.FieldTitle:
		res.Text = item.Title
		if !res.Editable {
			res.Text = item.DisplayTitle()
		}
	case domain.FieldDescription:
		res.Text = item.Description
	}
	return res
}

// indexHandler renders the console page, news and schedules are fetched side by side
func (s *Server) indexHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	filter := newsFilter(r)

	// failed reads keep the previous lists, the synchronizers log them
	var g errgroup.Group
	g.Go(func() error {
		_, _ = s.news.Refresh(ctx, filter)
		return nil
	})
	g.Go(func() error {
		_, _ = s.schedules.Refresh(ctx, struct{}{})
		return nil
	})
	_ = g.Wait()

	cfg := s.config.GetFullConfig()
	data := indexView{
		pageView:         s.page("index"),
		News:             s.newsView(),
		Schedules:        s.scheduleView(),
		Form:             s.formView(),
		Modal:            s.modal.Snapshot(),
		Languages:        cfg.Schedule.Languages,
		GeneratorEnabled: s.generator != nil,
	}
	if err := s.renderPage(w, "index.html", data); err != nil {
		s.respondWithError(w, http.StatusInternalServerError, "Failed to render page", err)
	}
}

// newsListHandler re-fetches news with the requested filter and renders the list
func (s *Server) newsListHandler(w http.ResponseWriter, r *http.Request) {
	_, _ = s.news.Refresh(r.Context(), newsFilter(r))
	s.renderNewsList(w, s.newsView())
}

// deleteNewsHandler deletes one item and renders the refreshed list, a failed delete is only logged
func (s *Server) deleteNewsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := domain.ID(r.PathValue("id"))

	err := s.store.DeleteNews(ctx, id)
	s.record(ctx, journal.OpDelete, id.String(), err)
	if err != nil {
		log.Printf("[WARN] can't delete news %s: %v", id, err)
	} else {
		s.editor.Forget(id)
	}

	s.reloadNews(ctx)
	s.renderNewsList(w, s.newsView())
}

// clearNewsHandler deletes all news and renders the refreshed list
func (s *Server) clearNewsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	err := s.store.DeleteAllNews(ctx)
	s.record(ctx, journal.OpClear, "all", err)
	if err != nil {
		log.Printf("[WARN] can't delete all news: %v", err)
	}

	s.reloadNews(ctx)
	s.renderNewsList(w, s.newsView())
}

// focusFieldHandler opens an edit session for a field
func (s *Server) focusFieldHandler(w http.ResponseWriter, r *http.Request) {
	key, ok := s.fieldKey(w, r)
	if !ok {
		return
	}
	if err := s.editor.Focus(key, r.FormValue("value")); err != nil {
		s.editError(w, key, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// blurFieldHandler closes an edit session, writing the field if it changed
func (s *Server) blurFieldHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key, ok := s.fieldKey(w, r)
	if !ok {
		return
	}

	res, err := s.editor.Blur(ctx, key, r.FormValue("value"))
	if err != nil {
		s.editError(w, key, err)
		return
	}

	view := fieldView{ItemID: key.ItemID, Field: key.Field, Text: res.Value, Editable: true}
	switch res.State {
	case edit.StateClean:
		w.WriteHeader(http.StatusNoContent)
		return
	case edit.StateSaved:
		// keep the snapshot in line with the store until the next refresh
		s.news.Patch(func(it domain.NewsItem) bool { return it.ID == key.ItemID },
			func(it *domain.NewsItem) { it.SetField(key.Field, res.Value) })
		s.record(ctx, journal.OpUpdateField, fieldTarget(key), nil)
		view.State, view.Message, view.HideAfter = "saved", "Saved", res.Indicator.Milliseconds()
	case edit.StateReverted:
		// the field silently gets its previous value back, the failure goes to the log and the journal
		s.record(ctx, journal.OpUpdateField, fieldTarget(key), res.Err)
	}
	s.renderTemplate(w, templateEditField, view)
}

// cancelFieldHandler restores the value the field had when it was focused
func (s *Server) cancelFieldHandler(w http.ResponseWriter, r *http.Request) {
	key, ok := s.fieldKey(w, r)
	if !ok {
		return
	}
	val, found := s.editor.Cancel(key)
	if !found {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.renderTemplate(w, templateEditField, fieldView{ItemID: key.ItemID, Field: key.Field, Text: val,
		Editable: s.isEditable(key.ItemID)})
}

// generateHandler asks the webhook for a fresh news item and reloads the list on success
func (s *Server) generateHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if s.generator == nil {
		alert(w, "News generation is not configured")
		return
	}

	req := domain.GenerateRequest{
		Asset:    strings.ToUpper(strings.TrimSpace(r.FormValue("asset"))),
		Language: strings.TrimSpace(r.FormValue("language")),
	}
	if req.Asset == "" {
		alert(w, "Please enter an asset.")
		return
	}
	if req.Language == "" {
		req.Language = s.config.GetFullConfig().DefaultLanguage()
	}

	res, err := s.generator.Generate(ctx, req)
	if err == nil && res.Error != "" {
		err = errors.New(res.Error)
	}
	s.record(ctx, journal.OpGenerate, req.Asset, err)
	if err != nil {
		log.Printf("[WARN] generation for %s failed: %v", req.Asset, err)
		s.renderTemplate(w, templateGenerateResult, generateResultView{Class: "error", Title: "Error", Message: userMessage(err)})
		return
	}

	view := generateResultView{Class: "success", Title: "Success!",
		Message: fmt.Sprintf("News for %s has been generated", req.Asset)}
	s.renderTemplate(w, templateGenerateResult, view)

	s.reloadNews(ctx)
	list := s.newsView()
	list.OOB = true
	s.renderNewsList(w, list)
}

// activityHandler renders the activity journal page
func (s *Server) activityHandler(w http.ResponseWriter, r *http.Request) {
	data := activityView{pageView: s.page("activity"), Enabled: s.journal != nil}
	if s.journal != nil {
		entries, err := s.journal.Recent(r.Context(), activityLimit)
		if err != nil {
			log.Printf("[WARN] can't load activity: %v", err)
			data.Error = "Failed to load activity"
		}
		data.Entries = entries
	}
	if err := s.renderPage(w, "activity.html", data); err != nil {
		s.respondWithError(w, http.StatusInternalServerError, "Failed to render page", err)
	}
}

// fieldKey reads item and field from the path, invalid fields are answered with 400
func (s *Server) fieldKey(w http.ResponseWriter, r *http.Request) (edit.Key, bool) {
	field, ok := domain.ParseField(r.PathValue("field"))
	if !ok {
		http.Error(w, "unknown field", http.StatusBadRequest)
		return edit.Key{}, false
	}
	return edit.Key{ItemID: domain.ID(r.PathValue("id")), Field: field}, true
}

// editError answers a rejected focus or blur
func (s *Server) editError(w http.ResponseWriter, key edit.Key, err error) {
	switch {
	case errors.Is(err, edit.ErrNotEditable):
		log.Printf("[DEBUG] edit of %s rejected, not editable", fieldTarget(key))
		alert(w, "This news can't be edited anymore")
	case errors.Is(err, edit.ErrUnknownField):
		http.Error(w, "unknown field", http.StatusBadRequest)
	default:
		s.respondWithError(w, http.StatusBadRequest, "Invalid field value", err)
	}
}

// newsView makes the list view of the current news snapshot
func (s *Server) newsView() newsListView {
	snap := s.news.Snapshot()
	return newsListView{Items: snap.Items, Filter: snap.Filter}
}

func (s *Server) page(name string) pageView {
	return pageView{Title: s.config.GetFullConfig().Server.PageTitle, Version: s.version, Page: name}
}

// renderPage renders a pre-parsed page template
func (s *Server) renderPage(w http.ResponseWriter, templateName string, data any) error {
	tmpl, ok := s.pageTemplates[templateName]
	if !ok {
		return fmt.Errorf("template %s not found", templateName)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return tmpl.ExecuteTemplate(w, templateName, data)
}

// renderTemplate renders a component, several calls may go into one response
func (s *Server) renderTemplate(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("[ERROR] failed to render %s: %v", name, err)
	}
}

func (s *Server) renderNewsList(w http.ResponseWriter, view newsListView) {
	s.renderTemplate(w, templateNewsList, view)
}

// newsFilter reads the news filter from the query, unknown sources are ignored
func newsFilter(r *http.Request) domain.NewsFilter {
	q := r.URL.Query()
	res := domain.NewsFilter{Asset: strings.ToUpper(strings.TrimSpace(q.Get("asset")))}
	switch src := domain.Source(q.Get("source")); src {
	case domain.SourceManual, domain.SourceScheduled:
		res.Source = src
	}
	return res
}

func fieldTarget(key edit.Key) string {
	return key.ItemID.String() + "/" + string(key.Field)
}

// userMessage is the short text of an error shown in the page
func userMessage(err error) string {
	if err == nil {
		return ""
	}
	var rerr *remote.Error
	if errors.As(err, &rerr) {
		return rerr.Message()
	}
	return err.Error()
}
