package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/Dan9191/leads-service/internal/models"
	"github.com/Dan9191/leads-service/internal/service"
	"github.com/Dan9191/leads-service/internal/storage"
	"github.com/gorilla/mux"
)

// maxResumeSize bounds multipart parsing for lead submissions
const maxResumeSize = 10 << 20 // 10 MB

// allowedResumeTypes maps accepted resume MIME types to their extensions
var allowedResumeTypes = map[string]string{
	"application/pdf":    ".pdf",
	"application/msword": ".doc",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": ".docx",
	"text/plain": ".txt",
}

type Handler struct {
	svc *service.Service
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Register handles user registration
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := h.svc.Register(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, models.ErrDuplicateEmail) {
			writeError(w, http.StatusBadRequest, "Email already registered")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to register user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Login handles user authentication and issues a bearer token
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form data")
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	token, err := h.svc.Login(username, password)
	if err != nil {
		if errors.Is(err, models.ErrInvalidCredentials) {
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeError(w, http.StatusUnauthorized, "Incorrect email or password")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to log in")
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

// CreateLead handles a prospect submission with an attached resume
func (h *Handler) CreateLead(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxResumeSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	firstName := r.PostFormValue("first_name")
	lastName := r.PostFormValue("last_name")
	email := r.PostFormValue("email")
	if firstName == "" || lastName == "" || email == "" {
		writeError(w, http.StatusBadRequest, "first_name, last_name and email are required")
		return
	}

	file, header, err := r.FormFile("resume")
	if err != nil {
		writeError(w, http.StatusBadRequest, "resume file is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if _, ok := allowedResumeTypes[contentType]; !ok {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("Invalid file type. Allowed types are: %s", strings.Join(allowedExtensions(), ", ")))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read resume file")
		return
	}

	lead, err := h.svc.CreateLead(firstName, lastName, email, header.Filename, data)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create lead")
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

// ListLeads returns one cursor-based page of leads
func (h *Handler) ListLeads(w http.ResponseWriter, r *http.Request) {
	pageSize := 10
	if raw := r.URL.Query().Get("page_size"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "page_size must be an integer")
			return
		}
		pageSize = v
	}

	var afterID int64
	if raw := r.URL.Query().Get("after_id"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "after_id must be an integer")
			return
		}
		afterID = v
	}

	page, err := h.svc.ListLeads(pageSize, afterID)
	if err != nil {
		if errors.Is(err, models.ErrInvalidPageSize) {
			writeError(w, http.StatusBadRequest, "page_size must be greater than 0")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to list leads")
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// DownloadResume serves the raw resume bytes for a lead
func (h *Handler) DownloadResume(w http.ResponseWriter, r *http.Request) {
	id, err := leadID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid lead id")
		return
	}

	data, path, err := h.svc.GetResume(id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Resume not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load resume")
		return
	}

	w.Header().Set("Content-Type", storage.ContentTypeFor(path))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(path)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// UpdateLead applies a partial update to a lead
func (h *Handler) UpdateLead(w http.ResponseWriter, r *http.Request) {
	id, err := leadID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid lead id")
		return
	}

	var update models.LeadUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if update.State != nil &&
		*update.State != models.LeadStatePending && *update.State != models.LeadStateReachedOut {
		writeError(w, http.StatusBadRequest, "state must be PENDING or REACHED_OUT")
		return
	}

	lead, err := h.svc.UpdateLead(id, update)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update lead")
		return
	}
	if lead == nil {
		writeError(w, http.StatusNotFound, "Lead not found")
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

func leadID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

func allowedExtensions() []string {
	exts := make([]string, 0, len(allowedResumeTypes))
	for _, ext := range allowedResumeTypes {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
