package models

// Course represents a course record held by the remote API. A course
// references exactly one user acting as its teacher; TeacherUsername is
// a denormalized display name the API may include on reads. Description
// and the teacher fields can be null upstream, hence the pointers.
type Course struct {
	ID              int     `json:"id"`
	Title           string  `json:"title"`
	Description     *string `json:"description"`
	TeacherID       *int    `json:"teacher_id"`
	TeacherUsername *string `json:"teacher_username,omitempty"`
}
