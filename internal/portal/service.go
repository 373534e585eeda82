// Package portal implements the interaction core of the education
// portal: a centrally owned state store over the remote API, with
// load, create, delete and submit operations. The cache is disposable;
// callers re-fetch the affected collection after every successful
// mutation instead of trusting local patches.
package portal

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"eduportal/internal/api"
	"eduportal/models"
)

type Service struct {
	api    *api.Client
	store  *Store
	logger *zap.Logger
}

func NewService(client *api.Client, store *Store, logger *zap.Logger) *Service {
	return &Service{
		api:    client,
		store:  store,
		logger: logger,
	}
}

func (s *Service) Store() *Store {
	return s.store
}

// LoadUsers replaces the cached user list with the server's. On failure
// the prior cache is left untouched.
func (s *Service) LoadUsers(ctx context.Context) error {
	users, err := s.api.ListUsers(ctx)
	if err != nil {
		s.logger.Error("Failed to fetch users", zap.Error(err))
		return err
	}
	s.store.SetUsers(users)
	s.logger.Debug("Fetched users", zap.Int("count", len(users)))
	return nil
}

// LoadCourses replaces the cached course list with the server's. Same
// contract as LoadUsers.
func (s *Service) LoadCourses(ctx context.Context) error {
	courses, err := s.api.ListCourses(ctx)
	if err != nil {
		s.logger.Error("Failed to fetch courses", zap.Error(err))
		return err
	}
	s.store.SetCourses(courses)
	s.logger.Debug("Fetched courses", zap.Int("count", len(courses)))
	return nil
}

// Refresh loads users and courses concurrently. The two fetches are
// independent with no ordering guarantee; each replaces only its own
// collection, and their failures are combined.
func (s *Service) Refresh(ctx context.Context) error {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs error
	)
	for _, load := range []func(context.Context) error{s.LoadUsers, s.LoadCourses} {
		wg.Add(1)
		go func(load func(context.Context) error) {
			defer wg.Done()
			if err := load(ctx); err != nil {
				mu.Lock()
				errs = multierr.Append(errs, err)
				mu.Unlock()
			}
		}(load)
	}
	wg.Wait()
	return errs
}

// CreateUser validates the form and submits it. The form is recorded in
// the store before anything else so a failure leaves the inputs exactly
// as entered; success appends the returned record to the cache and
// clears the form. The caller is expected to re-load users afterwards
// so role-filtered consumers (the teacher selector) pick the record up.
func (s *Service) CreateUser(ctx context.Context, form UserForm) (*models.User, error) {
	s.store.SetUserForm(form)

	if err := form.Validate(); err != nil {
		return nil, err
	}

	user, err := s.api.CreateUser(ctx, api.CreateUserRequest{
		Username: form.Username,
		Email:    form.Email,
		Password: form.Password,
		Role:     form.Role,
	})
	if err != nil {
		s.logger.Error("Failed to create user", zap.String("username", form.Username), zap.Error(err))
		return nil, err
	}

	s.store.AppendUser(*user)
	s.store.ResetUserForm()
	s.logger.Info("Created user", zap.Int("id", user.ID), zap.String("username", user.Username))
	return user, nil
}

// DeleteUser removes the user upstream and, on success, from the cache.
// The caller re-loads courses afterwards: deleting a teacher may
// invalidate course display data.
func (s *Service) DeleteUser(ctx context.Context, id int) error {
	if err := s.api.DeleteUser(ctx, id); err != nil {
		s.logger.Error("Failed to delete user", zap.Int("id", id), zap.Error(err))
		return err
	}
	s.store.RemoveUser(id)
	s.logger.Info("Deleted user", zap.Int("id", id))
	return nil
}

// DeleteCourse removes the course upstream. The cache is not patched
// locally; the caller re-loads the course list on success.
func (s *Service) DeleteCourse(ctx context.Context, id int) error {
	if err := s.api.DeleteCourse(ctx, id); err != nil {
		s.logger.Error("Failed to delete course", zap.Int("id", id), zap.Error(err))
		return err
	}
	s.logger.Info("Deleted course", zap.Int("id", id))
	return nil
}

// BeginEdit selects the cached course with the given id for editing,
// switching the course form to update mode seeded from its values.
func (s *Service) BeginEdit(id int) (*models.Course, error) {
	course, ok := s.store.FindCourse(id)
	if !ok {
		return nil, fmt.Errorf("course %d is not in the current list", id)
	}
	s.store.BeginEdit(course)
	s.logger.Debug("Editing course", zap.Int("id", course.ID), zap.String("title", course.Title))
	return &course, nil
}

// CancelEdit clears the edit selection, reverting the form to create
// mode.
func (s *Service) CancelEdit() {
	s.store.CancelEdit()
}

// SubmitCourse submits the course form: an update addressed to the
// selected course when one is under edit, a create otherwise. On
// success the form is cleared and update mode is left; the returned
// flag reports which operation ran so the caller can word its
// notification and re-load the course list. On failure the fields stay
// as entered. Nothing suppresses a resubmission while an earlier one is
// in flight; like the original portal, the second submit simply races.
func (s *Service) SubmitCourse(ctx context.Context, form CourseForm) (*models.Course, bool, error) {
	s.store.SetCourseForm(form)

	editing := s.store.EditingCourse()
	updated := editing != nil

	if err := form.Validate(); err != nil {
		return nil, updated, err
	}
	teacherID, err := strconv.Atoi(form.TeacherID)
	if err != nil {
		return nil, updated, fmt.Errorf("title and teacher must be provided")
	}

	req := api.CourseRequest{
		Title:       form.Title,
		Description: form.Description,
		TeacherID:   teacherID,
	}

	var course *models.Course
	if updated {
		course, err = s.api.UpdateCourse(ctx, editing.ID, req)
	} else {
		course, err = s.api.CreateCourse(ctx, req)
	}
	if err != nil {
		s.logger.Error("Failed to submit course",
			zap.String("title", form.Title),
			zap.Bool("update", updated),
			zap.Error(err))
		return nil, updated, err
	}

	s.store.ResetCourseForm()
	if updated {
		s.store.CancelEdit()
	}
	s.logger.Info("Submitted course",
		zap.Int("id", course.ID),
		zap.String("title", course.Title),
		zap.Bool("update", updated))
	return course, updated, nil
}
