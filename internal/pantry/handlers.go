package pantry

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/pantrykit/pantry-tracker/internal/enrichment"
)

// maxUploadSize bounds receipt uploads; 50MB covers high-resolution phone
// photos
const maxUploadSize = int64(50 << 20)

// writeJSON writes a JSON response body
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// writeJSONError writes an error response body
func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// contentTypeForUpload determines the MIME type of an uploaded file,
// falling back to the filename extension
func contentTypeForUpload(header string, filename string) string {
	contentType := strings.ToLower(strings.TrimSpace(header))
	if contentType != "" {
		return contentType
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".pdf":
		return "application/pdf"
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	default:
		return "application/octet-stream"
	}
}

// handleScanReceipt accepts a receipt upload, runs the enrichment
// pipeline, and returns the items added to the pantry
func (s *Server) handleScanReceipt(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		message := "Error parsing form"
		if err.Error() == "http: request body too large" {
			message = "File is too large. Maximum size is 50MB. Please compress or resize your image."
		}
		writeJSONError(w, http.StatusBadRequest, message)
		return
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		slog.Error("Error getting file from form", "error", err)
		writeJSONError(w, http.StatusBadRequest, "No file was selected. Please choose a file to upload.")
		return
	}
	defer f.Close()

	if header.Size > maxUploadSize {
		writeJSONError(w, http.StatusBadRequest, "File is too large. Maximum size is 50MB. Please compress or resize your image.")
		return
	}

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		writeJSONError(w, http.StatusInternalServerError, "Error reading file. Please try again.")
		return
	}

	contentType := contentTypeForUpload(header.Header.Get("Content-Type"), header.Filename)

	result, err := s.service.ScanReceipt(r.Context(), s.userID(r), data, contentType)
	if err != nil {
		slog.Error("Error scanning receipt", "filename", header.Filename, "error", err)
		// Only the two whole-receipt rejections are the caller's fault;
		// anything else is internal and its detail stays out of the body
		switch {
		case errors.Is(err, enrichment.ErrExtractionEmpty):
			writeJSONError(w, http.StatusBadRequest, enrichment.ErrExtractionEmpty.Error())
		case errors.Is(err, enrichment.ErrNoCandidateItems):
			writeJSONError(w, http.StatusBadRequest, enrichment.ErrNoCandidateItems.Error())
		default:
			writeJSONError(w, http.StatusInternalServerError, "Error processing receipt. Please try again.")
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleAddPantryItem handles manual pantry item creation
func (s *Server) handleAddPantryItem(w http.ResponseWriter, r *http.Request) {
	var item PantryItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	item.UserID = s.userID(r)

	created, err := s.service.AddPantryItem(&item)
	if err != nil {
		slog.Error("Error adding pantry item", "error", err)
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// handleListPantryItems returns all pantry items for the caller
func (s *Server) handleListPantryItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.service.ListPantryItems(s.userID(r))
	if err != nil {
		slog.Error("Error listing pantry items", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, items)
}

// handleGetPantryItem returns a single pantry item
func (s *Server) handleGetPantryItem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	item, err := s.service.GetPantryItem(s.userID(r), id)
	if err != nil {
		writeJSONError(w, http.StatusNotFound, "Item not found")
		return
	}

	writeJSON(w, http.StatusOK, item)
}

// handleUpdatePantryItem applies a partial update to a pantry item
func (s *Server) handleUpdatePantryItem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var update PantryItemUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	item, err := s.service.UpdatePantryItem(s.userID(r), id, update)
	if err != nil {
		writeJSONError(w, http.StatusNotFound, "Item not found")
		return
	}

	writeJSON(w, http.StatusOK, item)
}

// handleDeletePantryItem deletes a pantry item
func (s *Server) handleDeletePantryItem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.service.DeletePantryItem(s.userID(r), id); err != nil {
		writeJSONError(w, http.StatusNotFound, "Item not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// generateMealPlanRequest is the request body for meal plan generation
type generateMealPlanRequest struct {
	Guidelines string `json:"guidelines"`
	NumDays    int    `json:"num_days"`
}

// handleGenerateMealPlan generates and saves a meal plan from the caller's
// pantry
func (s *Server) handleGenerateMealPlan(w http.ResponseWriter, r *http.Request) {
	var req generateMealPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	plan, err := s.service.GenerateMealPlan(r.Context(), s.userID(r), req.Guidelines, req.NumDays)
	if err != nil {
		slog.Error("Error generating meal plan", "error", err)
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, plan)
}

// handleListMealPlans returns all meal plans for the caller
func (s *Server) handleListMealPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.service.ListMealPlans(s.userID(r))
	if err != nil {
		slog.Error("Error listing meal plans", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, plans)
}

// handleGetMealPlan returns a single meal plan
func (s *Server) handleGetMealPlan(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	plan, err := s.service.GetMealPlan(s.userID(r), id)
	if err != nil {
		writeJSONError(w, http.StatusNotFound, "Meal plan not found")
		return
	}

	writeJSON(w, http.StatusOK, plan)
}

// handleDeleteMealPlan deletes a meal plan
func (s *Server) handleDeleteMealPlan(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.service.DeleteMealPlan(s.userID(r), id); err != nil {
		writeJSONError(w, http.StatusNotFound, "Meal plan not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleHealth reports service liveness
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
