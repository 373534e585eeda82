package portal

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// UserForm holds the new-user inputs exactly as entered. A failed
// submission keeps the form populated so nothing the user typed is
// lost.
type UserForm struct {
	Username string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
	Role     string `validate:"required,oneof=student teacher admin"`
}

func (f *UserForm) Validate() error {
	validate := validator.New()
	if err := validate.Struct(f); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			return fmt.Errorf("%s is missing or invalid", fieldLabel(errs[0].Field()))
		}
		return err
	}
	return nil
}

// CourseForm holds the course inputs in their form-field (string)
// representation; TeacherID is only converted to an integer when the
// payload is built. Description is optional.
type CourseForm struct {
	Title       string `validate:"required"`
	Description string
	TeacherID   string `validate:"required,number"`
}

func (f *CourseForm) Validate() error {
	validate := validator.New()
	if err := validate.Struct(f); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			if errs[0].Field() == "TeacherID" {
				return fmt.Errorf("title and teacher must be provided")
			}
			return fmt.Errorf("%s is missing or invalid", fieldLabel(errs[0].Field()))
		}
		return err
	}
	return nil
}

func fieldLabel(field string) string {
	switch field {
	case "Username":
		return "username"
	case "Email":
		return "email"
	case "Password":
		return "password"
	case "Role":
		return "role"
	case "Title":
		return "title"
	case "TeacherID":
		return "teacher"
	}
	return field
}
