// Package testutils provides an in-memory fake of the remote education
// API for service and handler tests. It implements the same endpoints
// with the same bodies and status codes, records every request it
// receives, and can be told to fail specific operations.
package testutils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"eduportal/models"
)

// Failure makes the fake reject an operation with a FastAPI-style
// {"detail": ...} error body.
type Failure struct {
	Status int
	Detail string
}

type FakeAPI struct {
	Server *httptest.Server

	mu       sync.Mutex
	users    []models.User
	courses  []models.Course
	nextID   int
	requests []string
	failures map[string]Failure
}

func NewFakeAPI() *FakeAPI {
	f := &FakeAPI{
		nextID:   1,
		failures: make(map[string]Failure),
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.handle))
	return f
}

func (f *FakeAPI) Close() {
	f.Server.Close()
}

func (f *FakeAPI) URL() string {
	return f.Server.URL
}

// SeedUser adds a user directly to the fake's state.
func (f *FakeAPI) SeedUser(username, email string, role models.Role) models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	user := models.User{ID: f.nextID, Username: username, Email: email, Role: role}
	f.nextID++
	f.users = append(f.users, user)
	return user
}

// SeedCourse adds a course directly to the fake's state.
func (f *FakeAPI) SeedCourse(title, description string, teacherID int) models.Course {
	f.mu.Lock()
	defer f.mu.Unlock()
	course := models.Course{ID: f.nextID, Title: title, Description: &description, TeacherID: &teacherID}
	f.nextID++
	f.courses = append(f.courses, course)
	return course
}

// FailWith makes the next and all following calls to "METHOD /path"
// fail. The key uses the path prefix, e.g. "POST /users/".
func (f *FakeAPI) FailWith(key string, status int, detail string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[key] = Failure{Status: status, Detail: detail}
}

// Requests returns every "METHOD /path" received, in order.
func (f *FakeAPI) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

// CountRequests counts received requests matching the "METHOD /path"
// prefix.
func (f *FakeAPI) CountRequests(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, r := range f.requests {
		if strings.HasPrefix(r, prefix) {
			count++
		}
	}
	return count
}

func (f *FakeAPI) Users() []models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.User(nil), f.users...)
}

func (f *FakeAPI) Courses() []models.Course {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Course(nil), f.courses...)
}

func (f *FakeAPI) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	failure, failed := f.failures[r.Method+" "+r.URL.Path]
	f.mu.Unlock()

	if failed {
		writeJSON(w, failure.Status, map[string]string{"detail": failure.Detail})
		return
	}

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/users/":
		f.mu.Lock()
		users := append([]models.User{}, f.users...)
		f.mu.Unlock()
		writeJSON(w, http.StatusOK, users)

	case r.Method == http.MethodPost && r.URL.Path == "/users/":
		var req struct {
			Username string `json:"username"`
			Email    string `json:"email"`
			Password string `json:"password"`
			Role     string `json:"role"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "invalid body"})
			return
		}
		f.mu.Lock()
		user := models.User{ID: f.nextID, Username: req.Username, Email: req.Email, Role: models.Role(req.Role)}
		f.nextID++
		f.users = append(f.users, user)
		f.mu.Unlock()
		writeJSON(w, http.StatusCreated, user)

	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/users/"):
		id, err := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/users/"))
		if err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "invalid id"})
			return
		}
		f.mu.Lock()
		users := f.users[:0]
		found := false
		for _, u := range f.users {
			if u.ID == id {
				found = true
				continue
			}
			users = append(users, u)
		}
		f.users = users
		f.mu.Unlock()
		if !found {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "User not found"})
			return
		}
		w.WriteHeader(http.StatusNoContent)

	case r.Method == http.MethodGet && r.URL.Path == "/courses/":
		f.mu.Lock()
		courses := make([]models.Course, len(f.courses))
		for i, c := range f.courses {
			courses[i] = f.withTeacherName(c)
		}
		f.mu.Unlock()
		writeJSON(w, http.StatusOK, courses)

	case r.Method == http.MethodPost && r.URL.Path == "/courses/":
		req, ok := decodeCourse(w, r)
		if !ok {
			return
		}
		f.mu.Lock()
		course := models.Course{ID: f.nextID, Title: req.Title, Description: &req.Description, TeacherID: &req.TeacherID}
		f.nextID++
		f.courses = append(f.courses, course)
		resp := f.withTeacherName(course)
		f.mu.Unlock()
		writeJSON(w, http.StatusCreated, resp)

	case r.Method == http.MethodPut && strings.HasPrefix(r.URL.Path, "/courses/"):
		id, err := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/courses/"))
		if err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "invalid id"})
			return
		}
		req, ok := decodeCourse(w, r)
		if !ok {
			return
		}
		f.mu.Lock()
		for i := range f.courses {
			if f.courses[i].ID == id {
				f.courses[i].Title = req.Title
				f.courses[i].Description = &req.Description
				f.courses[i].TeacherID = &req.TeacherID
				resp := f.withTeacherName(f.courses[i])
				f.mu.Unlock()
				writeJSON(w, http.StatusOK, resp)
				return
			}
		}
		f.mu.Unlock()
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Course not found"})

	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/courses/"):
		id, err := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/courses/"))
		if err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "invalid id"})
			return
		}
		f.mu.Lock()
		courses := f.courses[:0]
		for _, c := range f.courses {
			if c.ID != id {
				courses = append(courses, c)
			}
		}
		f.courses = courses
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)

	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": fmt.Sprintf("Not found: %s %s", r.Method, r.URL.Path)})
	}
}

// withTeacherName denormalizes the teacher's username onto the course,
// the way the real API does on reads. Callers must hold f.mu.
func (f *FakeAPI) withTeacherName(course models.Course) models.Course {
	if course.TeacherID == nil {
		return course
	}
	for _, u := range f.users {
		if u.ID == *course.TeacherID {
			name := u.Username
			course.TeacherUsername = &name
			return course
		}
	}
	return course
}

type courseRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	TeacherID   int    `json:"teacher_id"`
}

func decodeCourse(w http.ResponseWriter, r *http.Request) (courseRequest, bool) {
	var req courseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "invalid body"})
		return req, false
	}
	return req, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
