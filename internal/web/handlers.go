package web

import (
	"encoding/gob"
	"fmt"
	"html/template"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"eduportal/internal/portal"
	"eduportal/models"
)

const sessionName = "eduportal-session"

// Flash is a transient notification rendered once on the next page
// load, the server-side equivalent of the portal's toasts.
type Flash struct {
	Level   string // success, error or info
	Message string
}

func init() {
	gob.Register(Flash{})
}

type WebHandler struct {
	portal       *portal.Service
	templates    *template.Template
	sessionStore *sessions.CookieStore
	logger       *zap.Logger
}

type PageData struct {
	State    portal.State
	Teachers []models.User
	Roles    []models.Role
	Flashes  []Flash
}

// NewWebHandler parses the templates under templateDir and sets up the
// cookie store backing flash messages.
func NewWebHandler(portalService *portal.Service, templateDir, sessionSecret string, logger *zap.Logger) *WebHandler {
	funcMap := template.FuncMap{
		"deref": func(ptr interface{}) interface{} {
			switch v := ptr.(type) {
			case *string:
				if v == nil {
					return ""
				}
				return *v
			case *int:
				if v == nil {
					return ""
				}
				return *v
			default:
				if ptr == nil {
					return ""
				}
				return ptr
			}
		},
		"formatTime": func(t time.Time) string {
			return t.Format("2006-01-02 15:04:05")
		},
	}

	tmpl := template.New("").Funcs(funcMap)

	componentFiles, err := filepath.Glob(filepath.Join(templateDir, "components", "*.html"))
	if err != nil {
		panic(fmt.Sprintf("Failed to glob component templates: %v", err))
	}
	files := append(componentFiles, filepath.Join(templateDir, "index.html"))

	tmpl, err = tmpl.ParseFiles(files...)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse templates: %v", err))
	}

	store := sessions.NewCookieStore([]byte(sessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	return &WebHandler{
		portal:       portalService,
		templates:    tmpl,
		sessionStore: store,
		logger:       logger,
	}
}

// Index renders the whole portal page from a state snapshot. The
// teacher selector is recomputed from the cached users on every render.
func (h *WebHandler) Index(w http.ResponseWriter, r *http.Request) {
	data := PageData{
		State:    h.portal.Store().Snapshot(),
		Teachers: h.portal.Store().Teachers(),
		Roles:    models.Roles,
		Flashes:  h.consumeFlashes(w, r),
	}

	if err := h.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		h.logger.Error("Template execution error", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// CreateUser handles the new-user form. On success the returned record
// is already in the cache; users are re-fetched anyway so consumers
// that filter by role (the teacher selector) see authoritative state.
func (h *WebHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	form := portal.UserForm{
		Username: r.FormValue("username"),
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
		Role:     r.FormValue("role"),
	}

	if _, err := h.portal.CreateUser(r.Context(), form); err != nil {
		h.flash(w, r, "error", fmt.Sprintf("Failed to create user: %v", err))
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	h.flash(w, r, "success", "User created successfully!")
	if err := h.portal.LoadUsers(r.Context()); err != nil {
		h.flash(w, r, "error", "Failed to fetch users!")
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// DeleteUser requires the confirm field the confirmation dialog sets;
// without it no upstream request is issued and nothing changes. After a
// successful delete the course list is re-fetched, since a deleted
// teacher may invalidate course display data.
func (h *WebHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}
	if !confirmed(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if err := h.portal.DeleteUser(r.Context(), id); err != nil {
		h.flash(w, r, "error", fmt.Sprintf("Failed to delete user: %v", err))
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	h.flash(w, r, "success", "User deleted successfully!")
	if err := h.portal.LoadCourses(r.Context()); err != nil {
		h.flash(w, r, "error", "Failed to fetch courses!")
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// SubmitCourse handles the course form in both of its modes: an update
// addressed to the course under edit, or a create. Success clears the
// form, leaves update mode and re-fetches the course list.
func (h *WebHandler) SubmitCourse(w http.ResponseWriter, r *http.Request) {
	form := portal.CourseForm{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		TeacherID:   r.FormValue("teacher_id"),
	}

	_, updated, err := h.portal.SubmitCourse(r.Context(), form)
	if err != nil {
		verb := "create"
		if updated {
			verb = "update"
		}
		h.flash(w, r, "error", fmt.Sprintf("Failed to %s course: %v", verb, err))
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if updated {
		h.flash(w, r, "success", "Course updated successfully!")
	} else {
		h.flash(w, r, "success", "Course created successfully!")
	}
	if err := h.portal.LoadCourses(r.Context()); err != nil {
		h.flash(w, r, "error", "Failed to fetch courses!")
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// DeleteCourse has the same confirm guard as DeleteUser.
func (h *WebHandler) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid course id", http.StatusBadRequest)
		return
	}
	if !confirmed(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if err := h.portal.DeleteCourse(r.Context(), id); err != nil {
		h.flash(w, r, "error", fmt.Sprintf("Failed to delete course: %v", err))
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	h.flash(w, r, "success", "Course deleted successfully!")
	if err := h.portal.LoadCourses(r.Context()); err != nil {
		h.flash(w, r, "error", "Failed to fetch courses!")
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// EditCourse records the selected course as the one under edit; the
// course form switches to update mode seeded from its values.
func (h *WebHandler) EditCourse(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid course id", http.StatusBadRequest)
		return
	}

	course, err := h.portal.BeginEdit(id)
	if err != nil {
		h.flash(w, r, "error", fmt.Sprintf("Failed to edit course: %v", err))
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	h.flash(w, r, "info", fmt.Sprintf("Editing course: %s", course.Title))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// CancelEdit clears the edit selection, reverting the form to create
// mode.
func (h *WebHandler) CancelEdit(w http.ResponseWriter, r *http.Request) {
	h.portal.CancelEdit()
	h.flash(w, r, "info", "Cancelled course edit.")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Refresh re-fetches both collections concurrently.
func (h *WebHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.portal.Refresh(r.Context()); err != nil {
		h.flash(w, r, "error", fmt.Sprintf("Failed to refresh: %v", err))
	} else {
		h.flash(w, r, "info", "Users and courses refreshed.")
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *WebHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func confirmed(r *http.Request) bool {
	return r.FormValue("confirm") == "yes"
}

func (h *WebHandler) flash(w http.ResponseWriter, r *http.Request, level, message string) {
	session, _ := h.sessionStore.Get(r, sessionName)
	session.AddFlash(Flash{Level: level, Message: message})
	if err := session.Save(r, w); err != nil {
		h.logger.Error("Failed to save session", zap.Error(err))
	}
}

func (h *WebHandler) consumeFlashes(w http.ResponseWriter, r *http.Request) []Flash {
	session, _ := h.sessionStore.Get(r, sessionName)
	raw := session.Flashes()
	if len(raw) == 0 {
		return nil
	}
	if err := session.Save(r, w); err != nil {
		h.logger.Error("Failed to save session", zap.Error(err))
	}

	flashes := make([]Flash, 0, len(raw))
	for _, item := range raw {
		if flash, ok := item.(Flash); ok {
			flashes = append(flashes, flash)
		}
	}
	return flashes
}
