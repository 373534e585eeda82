package portal

import (
	"strconv"
	"sync"

	"eduportal/models"
)

// State is everything the portal page renders from: the cached
// collections, the two forms, and the transient edit selection. The
// cache is only ever a copy of server state; it is replaced wholesale
// after each successful load and never assumed authoritative between
// loads.
type State struct {
	Users      []models.User
	Courses    []models.Course
	UserForm   UserForm
	CourseForm CourseForm
	// Editing is the course currently under edit, nil in create mode.
	Editing *models.Course
}

// Store centrally owns the mutable portal state. All updates go through
// its methods so re-render and re-fetch triggers stay deterministic;
// handlers only ever see snapshots.
type Store struct {
	mu    sync.RWMutex
	state State
}

func NewStore() *Store {
	return &Store{
		state: State{
			UserForm: UserForm{Role: string(models.RoleStudent)},
		},
	}
}

// Snapshot returns a consistent copy of the state for rendering.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyState()
}

func (s *Store) copyState() State {
	state := s.state
	state.Users = append([]models.User(nil), s.state.Users...)
	state.Courses = append([]models.Course(nil), s.state.Courses...)
	if s.state.Editing != nil {
		editing := *s.state.Editing
		state.Editing = &editing
	}
	return state
}

// Teachers returns the subset of cached users eligible to teach. The
// filter is recomputed from the cache on every call, never stored.
func (s *Store) Teachers() []models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var teachers []models.User
	for _, user := range s.state.Users {
		if user.Role.CanTeach() {
			teachers = append(teachers, user)
		}
	}
	return teachers
}

func (s *Store) SetUsers(users []models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Users = append([]models.User(nil), users...)
}

func (s *Store) SetCourses(courses []models.Course) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Courses = append([]models.Course(nil), courses...)
}

func (s *Store) AppendUser(user models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Users = append(s.state.Users, user)
}

func (s *Store) RemoveUser(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := s.state.Users[:0]
	for _, user := range s.state.Users {
		if user.ID != id {
			users = append(users, user)
		}
	}
	s.state.Users = users
}

func (s *Store) SetUserForm(form UserForm) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.UserForm = form
}

func (s *Store) ResetUserForm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.UserForm = UserForm{Role: string(models.RoleStudent)}
}

func (s *Store) SetCourseForm(form CourseForm) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.CourseForm = form
}

func (s *Store) ResetCourseForm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.CourseForm = CourseForm{}
}

// FindCourse looks the course up in the cache.
func (s *Store) FindCourse(id int) (models.Course, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, course := range s.state.Courses {
		if course.ID == id {
			return course, true
		}
	}
	return models.Course{}, false
}

// BeginEdit records course as the edit selection and seeds the course
// form from it, switching the form to update mode. Optional fields seed
// as empty strings; the teacher reference is stringified for the
// selector widget.
func (s *Store) BeginEdit(course models.Course) {
	s.mu.Lock()
	defer s.mu.Unlock()
	selected := course
	s.state.Editing = &selected

	form := CourseForm{Title: course.Title}
	if course.Description != nil {
		form.Description = *course.Description
	}
	if course.TeacherID != nil {
		form.TeacherID = strconv.Itoa(*course.TeacherID)
	}
	s.state.CourseForm = form
}

// CancelEdit clears the edit selection and the course form, returning
// the form to create mode.
func (s *Store) CancelEdit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Editing = nil
	s.state.CourseForm = CourseForm{}
}

// EditingCourse returns a copy of the edit selection, or nil when the
// form is in create mode.
func (s *Store) EditingCourse() *models.Course {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.Editing == nil {
		return nil
	}
	editing := *s.state.Editing
	return &editing
}
