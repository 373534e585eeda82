package web

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (h *WebHandler) SetupRoutes() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/", h.Index).Methods("GET")

	r.HandleFunc("/users", h.CreateUser).Methods("POST")
	r.HandleFunc("/users/{id:[0-9]+}/delete", h.DeleteUser).Methods("POST")

	r.HandleFunc("/courses", h.SubmitCourse).Methods("POST")
	r.HandleFunc("/courses/{id:[0-9]+}/delete", h.DeleteCourse).Methods("POST")
	r.HandleFunc("/courses/{id:[0-9]+}/edit", h.EditCourse).Methods("POST")
	r.HandleFunc("/courses/edit/cancel", h.CancelEdit).Methods("POST")

	r.HandleFunc("/refresh", h.Refresh).Methods("POST")

	r.NotFoundHandler = http.HandlerFunc(h.NotFound)

	return r
}
