package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/student-records/apiserver/internal/services"
	"github.com/student-records/apiserver/types"
	"go.uber.org/zap"
)

// StudentHandler serves the student directory.
type StudentHandler struct {
	students *services.StudentService
	exports  *services.ExportService
	log      *zap.Logger
}

func NewStudentHandler(students *services.StudentService, exports *services.ExportService, log *zap.Logger) *StudentHandler {
	return &StudentHandler{students: students, exports: exports, log: log}
}

// StudentRouter registers student routes on the given router. Every route
// requires authentication.
func StudentRouter(r chi.Router, handler *StudentHandler, gate *Gate) {
	r.Use(gate.RequireAuth)

	r.Get("/", handler.List)
	r.Post("/", handler.Create)
	r.Post("/exports", handler.Export)
	r.Get("/{id}", handler.Get)
	r.Put("/{id}", handler.Update)
	r.Delete("/{id}", handler.Delete)
}

func (h *StudentHandler) List(w http.ResponseWriter, r *http.Request) {
	students, err := h.students.List(r.Context())
	if err != nil {
		serverError(w, r, h.log, err, "failed to list students")
		return
	}
	writeJSON(w, http.StatusOK, students)
}

func (h *StudentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input types.StudentInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if msg := validateStruct(input); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	student, err := h.students.Create(r.Context(), input)
	if err != nil {
		if errors.Is(err, services.ErrDuplicateEmail) {
			writeError(w, http.StatusBadRequest, "Student with this email already exists")
			return
		}
		serverError(w, r, h.log, err, "failed to create student")
		return
	}
	writeJSON(w, http.StatusCreated, student)
}

func (h *StudentHandler) Get(w http.ResponseWriter, r *http.Request) {
	student, ok, err := h.students.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		serverError(w, r, h.log, err, "failed to load student")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "Student not found")
		return
	}
	writeJSON(w, http.StatusOK, student)
}

func (h *StudentHandler) Update(w http.ResponseWriter, r *http.Request) {
	var update types.StudentUpdate
	if err := decodeJSON(r, &update); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if msg := validateStruct(updateView(update)); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	student, ok, err := h.students.Update(r.Context(), chi.URLParam(r, "id"), update)
	if err != nil {
		if errors.Is(err, services.ErrDuplicateEmail) {
			writeError(w, http.StatusBadRequest, "Student with this email already exists")
			return
		}
		serverError(w, r, h.log, err, "failed to update student")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "Student not found")
		return
	}
	writeJSON(w, http.StatusOK, student)
}

func (h *StudentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.students.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		serverError(w, r, h.log, err, "failed to delete student")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "Student not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Export uploads a workbook of every student to object storage.
func (h *StudentHandler) Export(w http.ResponseWriter, r *http.Request) {
	key, err := h.exports.Export(r.Context())
	if err != nil {
		if errors.Is(err, services.ErrExportUnavailable) {
			writeError(w, http.StatusServiceUnavailable, "Student export is not configured")
			return
		}
		serverError(w, r, h.log, err, "failed to export students")
		return
	}
	writeJSON(w, http.StatusCreated, ExportResponse{ObjectKey: key})
}

type ExportResponse struct {
	ObjectKey string `json:"object_key"`
}

// studentUpdateView exposes the fields present in a partial update to the
// validator; absent fields are nil and skipped.
type studentUpdateView struct {
	Name        *string     `json:"name" validate:"omitnil,min=1,max=100"`
	Email       *string     `json:"email" validate:"omitnil,email"`
	Grade       *int        `json:"grade" validate:"omitnil,min=1,max=12"`
	Age         *int        `json:"age" validate:"omitnil,min=5,max=17"`
	Address     *string     `json:"address" validate:"omitnil,min=1,max=200"`
	Description *string     `json:"description" validate:"omitnil,max=500"`
	Role        *types.Role `json:"role" validate:"omitnil,oneof=student teacher"`
}

// updateView builds the validated view of u. An explicit empty role clears
// the role and is not checked against the allowed values.
func updateView(u types.StudentUpdate) studentUpdateView {
	role := u.Role.Ptr()
	if role != nil && *role == "" {
		role = nil
	}
	return studentUpdateView{
		Name:        u.Name.Ptr(),
		Email:       u.Email.Ptr(),
		Grade:       u.Grade.Ptr(),
		Age:         u.Age.Ptr(),
		Address:     u.Address.Ptr(),
		Description: u.Description.Ptr(),
		Role:        role,
	}
}
