package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/arthapay/payroll-backend-go/internal/domain/statutory"
	"github.com/arthapay/payroll-backend-go/internal/handler/http/response"
)

type StatutoryHandler interface {
	// Slabs
	CreateSlab(w http.ResponseWriter, r *http.Request)
	ListSlabs(w http.ResponseWriter, r *http.Request)
	DeactivateSlab(w http.ResponseWriter, r *http.Request)

	// Files
	GenerateECR(w http.ResponseWriter, r *http.Request)
	GenerateESIChallan(w http.ResponseWriter, r *http.Request)
	GenerateForm24Q(w http.ResponseWriter, r *http.Request)
	GetForm16(w http.ResponseWriter, r *http.Request)
	DownloadForm16PDF(w http.ResponseWriter, r *http.Request)
	ListRunFiles(w http.ResponseWriter, r *http.Request)
	DownloadFile(w http.ResponseWriter, r *http.Request)

	// Deadlines
	ListDeadlines(w http.ResponseWriter, r *http.Request)
	MarkDeadlineFiled(w http.ResponseWriter, r *http.Request)
}

type statutoryHandlerImpl struct {
	statutoryService statutory.StatutoryService
}

func NewStatutoryHandler(statutoryService statutory.StatutoryService) StatutoryHandler {
	return &statutoryHandlerImpl{statutoryService: statutoryService}
}

// ========== SLABS ==========

func (h *statutoryHandlerImpl) CreateSlab(w http.ResponseWriter, r *http.Request) {
	var req statutory.CreateSlabRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.statutoryService.CreateSlab(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Professional tax slab created", result)
}

func (h *statutoryHandlerImpl) ListSlabs(w http.ResponseWriter, r *http.Request) {
	stateCode := r.URL.Query().Get("state")
	if stateCode == "" {
		response.BadRequest(w, "State code is required", nil)
		return
	}
	activeOnly := r.URL.Query().Get("include_inactive") != "true"

	result, err := h.statutoryService.ListSlabs(r.Context(), stateCode, activeOnly)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *statutoryHandlerImpl) DeactivateSlab(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Slab ID is required", nil)
		return
	}

	if err := h.statutoryService.DeactivateSlab(r.Context(), id); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Professional tax slab deactivated", nil)
}

// ========== FILES ==========

func (h *statutoryHandlerImpl) GenerateECR(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "id")
	if runID == "" {
		response.BadRequest(w, "Run ID is required", nil)
		return
	}

	result, err := h.statutoryService.GenerateECR(r.Context(), runID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if r.URL.Query().Get("download") == "true" {
		filename := fmt.Sprintf("ecr-%04d-%02d.txt", result.PeriodYear, result.PeriodMonth)
		response.File(w, "text/plain", filename, []byte(result.Content))
		return
	}

	response.Success(w, result)
}

func (h *statutoryHandlerImpl) GenerateESIChallan(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "id")
	if runID == "" {
		response.BadRequest(w, "Run ID is required", nil)
		return
	}

	result, err := h.statutoryService.GenerateESIChallan(r.Context(), runID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if r.URL.Query().Get("download") == "true" {
		filename := fmt.Sprintf("esi-challan-%04d-%02d.csv", result.PeriodYear, result.PeriodMonth)
		response.File(w, "text/csv", filename, []byte(result.Content))
		return
	}

	response.Success(w, result)
}

func (h *statutoryHandlerImpl) ListRunFiles(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "id")
	if runID == "" {
		response.BadRequest(w, "Run ID is required", nil)
		return
	}

	result, err := h.statutoryService.ListRunFiles(r.Context(), runID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *statutoryHandlerImpl) DownloadFile(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "id")
	if fileID == "" {
		response.BadRequest(w, "File ID is required", nil)
		return
	}

	file, content, err := h.statutoryService.DownloadFile(r.Context(), fileID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	contentType := "text/plain"
	if file.FileType == string(statutory.FileTypeESIChallan) {
		contentType = "text/csv"
	}
	response.File(w, contentType, path.Base(file.StoragePath), content)
}

func (h *statutoryHandlerImpl) GenerateForm24Q(w http.ResponseWriter, r *http.Request) {
	quarter, err := strconv.Atoi(r.URL.Query().Get("quarter"))
	if err != nil || quarter < 1 || quarter > 4 {
		response.BadRequest(w, "Quarter must be between 1 and 4", nil)
		return
	}
	fyStartYear, err := strconv.Atoi(r.URL.Query().Get("fy_start_year"))
	if err != nil || fyStartYear < 2000 {
		response.BadRequest(w, "Valid fy_start_year is required", nil)
		return
	}

	result, err := h.statutoryService.GenerateForm24Q(r.Context(), quarter, fyStartYear)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *statutoryHandlerImpl) GetForm16(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	if employeeID == "" {
		response.BadRequest(w, "Employee ID is required", nil)
		return
	}
	fyStartYear, err := strconv.Atoi(r.URL.Query().Get("fy_start_year"))
	if err != nil || fyStartYear < 2000 {
		response.BadRequest(w, "Valid fy_start_year is required", nil)
		return
	}

	result, err := h.statutoryService.GenerateForm16(r.Context(), employeeID, fyStartYear)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *statutoryHandlerImpl) DownloadForm16PDF(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	if employeeID == "" {
		response.BadRequest(w, "Employee ID is required", nil)
		return
	}
	fyStartYear, err := strconv.Atoi(r.URL.Query().Get("fy_start_year"))
	if err != nil || fyStartYear < 2000 {
		response.BadRequest(w, "Valid fy_start_year is required", nil)
		return
	}

	pdf, err := h.statutoryService.RenderForm16PDF(r.Context(), employeeID, fyStartYear)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	filename := fmt.Sprintf("form16-%s-%d.pdf", employeeID, fyStartYear)
	response.File(w, "application/pdf", filename, pdf)
}

// ========== DEADLINES ==========

func (h *statutoryHandlerImpl) ListDeadlines(w http.ResponseWriter, r *http.Request) {
	filter := statutory.DeadlineFilter{}

	if v := r.URL.Query().Get("scheme"); v != "" {
		scheme := statutory.Scheme(v)
		filter.Scheme = &scheme
	}
	if v := r.URL.Query().Get("status"); v != "" {
		status := statutory.DeadlineStatus(v)
		filter.Status = &status
	}
	if v := r.URL.Query().Get("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			response.BadRequest(w, "Invalid year", nil)
			return
		}
		filter.PeriodYear = &year
	}
	if v := r.URL.Query().Get("month"); v != "" {
		month, err := strconv.Atoi(v)
		if err != nil || month < 1 || month > 12 {
			response.BadRequest(w, "Invalid month", nil)
			return
		}
		filter.PeriodMonth = &month
	}

	result, err := h.statutoryService.ListDeadlines(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *statutoryHandlerImpl) MarkDeadlineFiled(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Deadline ID is required", nil)
		return
	}

	var req statutory.MarkFiledRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	if err := h.statutoryService.MarkDeadlineFiled(r.Context(), id, req); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Deadline marked as filed", nil)
}
