package portal

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"eduportal/internal/api"
	"eduportal/models"
	"eduportal/tests/testutils"
)

func newTestService(t *testing.T) (*Service, *testutils.FakeAPI) {
	fake := testutils.NewFakeAPI()
	t.Cleanup(fake.Close)
	service := NewService(api.NewClient(fake.URL()), NewStore(), zap.NewNop())
	return service, fake
}

func TestService_LoadUsersReplacesCache(t *testing.T) {
	service, fake := newTestService(t)
	fake.SeedUser("amy", "amy@example.com", models.RoleTeacher)
	fake.SeedUser("bob", "bob@example.com", models.RoleStudent)

	require.NoError(t, service.LoadUsers(context.Background()))

	users := service.Store().Snapshot().Users
	require.Len(t, users, 2)
	assert.Equal(t, "amy", users[0].Username)
}

func TestService_LoadUsersFailureKeepsCache(t *testing.T) {
	service, fake := newTestService(t)
	fake.SeedUser("amy", "amy@example.com", models.RoleTeacher)
	require.NoError(t, service.LoadUsers(context.Background()))

	fake.FailWith("GET /users/", http.StatusInternalServerError, "")
	assert.Error(t, service.LoadUsers(context.Background()))

	// Prior cache untouched.
	assert.Len(t, service.Store().Snapshot().Users, 1)
}

func TestService_CreateUserAppendsExactlyOnceAndClearsForm(t *testing.T) {
	service, _ := newTestService(t)

	user, err := service.CreateUser(context.Background(), UserForm{
		Username: "amy",
		Email:    "amy@example.com",
		Password: "secret",
		Role:     "teacher",
	})
	require.NoError(t, err)

	state := service.Store().Snapshot()
	occurrences := 0
	for _, u := range state.Users {
		if u.ID == user.ID {
			occurrences++
		}
	}
	assert.Equal(t, 1, occurrences)

	assert.Equal(t, "", state.UserForm.Username)
	assert.Equal(t, "", state.UserForm.Email)
	assert.Equal(t, "", state.UserForm.Password)
	assert.Equal(t, "student", state.UserForm.Role)
}

func TestService_CreateUserFailureKeepsListAndInputs(t *testing.T) {
	service, fake := newTestService(t)
	fake.SeedUser("amy", "amy@example.com", models.RoleTeacher)
	require.NoError(t, service.LoadUsers(context.Background()))

	fake.FailWith("POST /users/", http.StatusBadRequest, "email already exists")

	form := UserForm{Username: "amy2", Email: "amy@example.com", Password: "secret", Role: "student"}
	_, err := service.CreateUser(context.Background(), form)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email already exists")

	state := service.Store().Snapshot()
	assert.Len(t, state.Users, 1)
	assert.Equal(t, form, state.UserForm)
}

func TestService_CreateUserValidation(t *testing.T) {
	service, fake := newTestService(t)

	cases := []struct {
		name string
		form UserForm
	}{
		{"missing username", UserForm{Email: "a@b.com", Password: "pw", Role: "student"}},
		{"missing email", UserForm{Username: "amy", Password: "pw", Role: "student"}},
		{"bad email", UserForm{Username: "amy", Email: "not-an-email", Password: "pw", Role: "student"}},
		{"missing password", UserForm{Username: "amy", Email: "a@b.com", Role: "student"}},
		{"bad role", UserForm{Username: "amy", Email: "a@b.com", Password: "pw", Role: "principal"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.CreateUser(context.Background(), tc.form)
			assert.Error(t, err)
		})
	}

	// Nothing ever reached the API.
	assert.Equal(t, 0, fake.CountRequests("POST /users/"))
}

func TestService_DeleteUserRemovesEntry(t *testing.T) {
	service, fake := newTestService(t)
	amy := fake.SeedUser("amy", "amy@example.com", models.RoleTeacher)
	fake.SeedUser("bob", "bob@example.com", models.RoleStudent)
	require.NoError(t, service.LoadUsers(context.Background()))

	require.NoError(t, service.DeleteUser(context.Background(), amy.ID))

	users := service.Store().Snapshot().Users
	require.Len(t, users, 1)
	assert.Equal(t, "bob", users[0].Username)
	assert.Equal(t, 1, fake.CountRequests("DELETE /users/"))
}

func TestService_DeleteUserFailureKeepsCache(t *testing.T) {
	service, fake := newTestService(t)
	amy := fake.SeedUser("amy", "amy@example.com", models.RoleTeacher)
	require.NoError(t, service.LoadUsers(context.Background()))

	fake.FailWith("DELETE /users/1", http.StatusInternalServerError, "boom")
	require.Error(t, service.DeleteUser(context.Background(), amy.ID))

	assert.Len(t, service.Store().Snapshot().Users, 1)
}

func TestService_SubmitCourse_CreateMode(t *testing.T) {
	service, fake := newTestService(t)
	amy := fake.SeedUser("amy", "amy@example.com", models.RoleTeacher)
	require.NoError(t, service.LoadUsers(context.Background()))

	course, updated, err := service.SubmitCourse(context.Background(), CourseForm{
		Title:       "Algebra",
		Description: "",
		TeacherID:   "1",
	})
	require.NoError(t, err)
	assert.False(t, updated)
	require.NotNil(t, course.TeacherID)
	assert.Equal(t, amy.ID, *course.TeacherID)

	// Form reset to create-mode defaults.
	state := service.Store().Snapshot()
	assert.Equal(t, CourseForm{}, state.CourseForm)
	assert.Nil(t, state.Editing)
	assert.Equal(t, 1, fake.CountRequests("POST /courses/"))
}

func TestService_SubmitCourse_UpdateModeLeavesEditOnSuccess(t *testing.T) {
	service, fake := newTestService(t)
	amy := fake.SeedUser("amy", "amy@example.com", models.RoleTeacher)
	seeded := fake.SeedCourse("Algebra", "intro", amy.ID)
	require.NoError(t, service.Refresh(context.Background()))

	_, err := service.BeginEdit(seeded.ID)
	require.NoError(t, err)

	course, updated, err := service.SubmitCourse(context.Background(), CourseForm{
		Title:       "Algebra II",
		Description: "advanced",
		TeacherID:   "1",
	})
	require.NoError(t, err)
	assert.True(t, updated)
	assert.Equal(t, seeded.ID, course.ID)
	assert.Equal(t, "Algebra II", course.Title)

	state := service.Store().Snapshot()
	assert.Nil(t, state.Editing)
	assert.Equal(t, CourseForm{}, state.CourseForm)
	assert.Equal(t, 1, fake.CountRequests("PUT /courses/"))
	assert.Equal(t, 0, fake.CountRequests("POST /courses/"))
}

func TestService_SubmitCourse_FailureKeepsFieldsAndMode(t *testing.T) {
	service, fake := newTestService(t)
	amy := fake.SeedUser("amy", "amy@example.com", models.RoleTeacher)
	seeded := fake.SeedCourse("Algebra", "intro", amy.ID)
	require.NoError(t, service.Refresh(context.Background()))

	_, err := service.BeginEdit(seeded.ID)
	require.NoError(t, err)

	fake.FailWith("PUT /courses/2", http.StatusInternalServerError, "upstream down")

	form := CourseForm{Title: "Algebra II", Description: "advanced", TeacherID: "1"}
	_, updated, err := service.SubmitCourse(context.Background(), form)
	require.Error(t, err)
	assert.True(t, updated)

	state := service.Store().Snapshot()
	assert.Equal(t, form, state.CourseForm)
	require.NotNil(t, state.Editing)
	assert.Equal(t, seeded.ID, state.Editing.ID)
}

func TestService_SubmitCourse_RequiresTitleAndTeacher(t *testing.T) {
	service, fake := newTestService(t)

	_, _, err := service.SubmitCourse(context.Background(), CourseForm{Title: "Algebra"})
	assert.Error(t, err)

	_, _, err = service.SubmitCourse(context.Background(), CourseForm{TeacherID: "1"})
	assert.Error(t, err)

	assert.Equal(t, 0, fake.CountRequests("POST /courses/"))
}

func TestService_BeginEditUnknownCourse(t *testing.T) {
	service, _ := newTestService(t)
	_, err := service.BeginEdit(42)
	assert.Error(t, err)
}

func TestService_RefreshLoadsBothCollections(t *testing.T) {
	service, fake := newTestService(t)
	amy := fake.SeedUser("amy", "amy@example.com", models.RoleTeacher)
	fake.SeedCourse("Algebra", "intro", amy.ID)

	require.NoError(t, service.Refresh(context.Background()))

	state := service.Store().Snapshot()
	assert.Len(t, state.Users, 1)
	require.Len(t, state.Courses, 1)
	// The course list carries the denormalized teacher name.
	require.NotNil(t, state.Courses[0].TeacherUsername)
	assert.Equal(t, "amy", *state.Courses[0].TeacherUsername)
}

func TestService_RefreshCombinesFailures(t *testing.T) {
	service, fake := newTestService(t)
	fake.FailWith("GET /users/", http.StatusInternalServerError, "users down")
	fake.FailWith("GET /courses/", http.StatusInternalServerError, "courses down")

	err := service.Refresh(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "users down")
	assert.Contains(t, err.Error(), "courses down")
}
