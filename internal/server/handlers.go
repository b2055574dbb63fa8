package server

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/vanban-tech/vanban/internal/fields"
	"github.com/vanban-tech/vanban/internal/pipeline"
	"github.com/vanban-tech/vanban/internal/utils"
)

// HealthResponse reports server health.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// ClassInfo describes one detectable region class.
type ClassInfo struct {
	ID  int    `json:"id"`
	Key string `json:"key"`
}

// ClassesResponse lists the detectable region classes.
type ClassesResponse struct {
	Classes []ClassInfo `json:"classes"`
	Count   int         `json:"count"`
}

// ExtractResponse is the document extraction API response.
type ExtractResponse struct {
	Success bool                     `json:"success"`
	Result  *pipeline.DocumentResult `json:"result,omitempty"`
	Error   string                   `json:"error,omitempty"`
}

// RegionResponse is the single-region extraction API response.
type RegionResponse struct {
	Success bool   `json:"success"`
	Text    string `json:"text,omitempty"`
	Error   string `json:"error,omitempty"`
}

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := HealthResponse{
		Status: "healthy",
		Time:   time.Now().UTC().Format(time.RFC3339),
	}
	s.writeJSON(w, http.StatusOK, response)
}

// classesHandler returns the detectable region classes.
func (s *Server) classesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	classes := make([]ClassInfo, 0, fields.NumClasses)
	for class := fields.Class(0); class < fields.Class(fields.NumClasses); class++ {
		classes = append(classes, ClassInfo{ID: int(class), Key: class.Key()})
	}
	s.writeJSON(w, http.StatusOK, ClassesResponse{Classes: classes, Count: len(classes)})
}

// extractHandler processes document extraction requests: a multipart
// upload named "document" holding a PDF or a page image.
func (s *Server) extractHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	file, header, ok := s.uploadedFile(w, r, "document")
	if !ok {
		return
	}
	defer func() { _ = file.Close() }()
	uploadSizeBytes.Observe(float64(header.Size))

	path, err := s.saveUpload(file, header.Filename)
	if err != nil {
		s.writeExtractError(w, "Failed to store upload", http.StatusInternalServerError)
		return
	}
	defer func() { _ = os.Remove(path) }()

	processor, err := s.factory(pipeline.NoOpProgress{})
	if err != nil {
		s.writeExtractError(w, fmt.Sprintf("Pipeline unavailable: %v", err), http.StatusServiceUnavailable)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(s.timeoutSec)*time.Second)
	defer cancel()

	start := time.Now()
	result, err := processor.ProcessDocument(ctx, path)
	if err != nil {
		documentsProcessed.WithLabelValues("error").Inc()
		s.writeExtractError(w, fmt.Sprintf("Extraction failed: %v", err), http.StatusInternalServerError)
		return
	}

	documentsProcessed.WithLabelValues("ok").Inc()
	pagesProcessed.Add(float64(result.Pages))
	extractionDuration.Observe(time.Since(start).Seconds())

	s.writeJSON(w, http.StatusOK, ExtractResponse{Success: true, Result: result})
}

// extractRegionHandler extracts text from one manually selected region:
// a multipart upload named "image" plus box coordinates and the class id.
func (s *Server) extractRegionHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	file, header, ok := s.uploadedFile(w, r, "image")
	if !ok {
		return
	}
	defer func() { _ = file.Close() }()
	uploadSizeBytes.Observe(float64(header.Size))

	img, _, err := image.Decode(file)
	if err != nil {
		s.writeRegionError(w, "Invalid image format", http.StatusBadRequest)
		return
	}

	box, class, err := parseRegionParams(r)
	if err != nil {
		s.writeRegionError(w, err.Error(), http.StatusBadRequest)
		return
	}

	processor, err := s.factory(pipeline.NoOpProgress{})
	if err != nil {
		s.writeRegionError(w, fmt.Sprintf("Pipeline unavailable: %v", err), http.StatusServiceUnavailable)
		return
	}

	text, err := processor.ProcessRegion(img, box, class)
	if err != nil {
		s.writeRegionError(w, fmt.Sprintf("Region extraction failed: %v", err), http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, http.StatusOK, RegionResponse{Success: true, Text: text})
}

// uploadedFile parses the multipart form and returns the named file,
// writing the error response itself on failure.
func (s *Server) uploadedFile(w http.ResponseWriter, r *http.Request, field string) (multipart.File, *multipart.FileHeader, bool) {
	maxBytes := s.maxUploadMB * 1024 * 1024
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "too large") {
			s.writeExtractError(w, "File too large", http.StatusRequestEntityTooLarge)
		} else {
			s.writeExtractError(w, "Failed to parse form data", http.StatusBadRequest)
		}
		return nil, nil, false
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		s.writeExtractError(w, fmt.Sprintf("No %s file provided", field), http.StatusBadRequest)
		return nil, nil, false
	}
	if header.Size > maxBytes {
		_ = file.Close()
		s.writeExtractError(w, "File too large", http.StatusRequestEntityTooLarge)
		return nil, nil, false
	}
	return file, header, true
}

// saveUpload writes the upload to a temp file, keeping the original
// extension so PDF detection works.
func (s *Server) saveUpload(file io.Reader, filename string) (string, error) {
	ext := filepath.Ext(filename)
	if ext == "" {
		ext = ".bin"
	}
	tmp, err := os.CreateTemp("", "vanban-upload-*"+ext)
	if err != nil {
		return "", err
	}
	defer func() { _ = tmp.Close() }()

	if _, err := io.Copy(tmp, file); err != nil {
		_ = os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

// parseRegionParams reads box coordinates and class id from form values.
func parseRegionParams(r *http.Request) (utils.Box, fields.Class, error) {
	coords := make([]float64, 4)
	for i, name := range []string{"x1", "y1", "x2", "y2"} {
		value, err := strconv.ParseFloat(r.FormValue(name), 64)
		if err != nil {
			return utils.Box{}, 0, fmt.Errorf("invalid or missing coordinate %s", name)
		}
		coords[i] = value
	}

	classID, err := strconv.Atoi(r.FormValue("class"))
	if err != nil {
		return utils.Box{}, 0, fmt.Errorf("invalid or missing class id")
	}
	class := fields.Class(classID)
	if !class.Valid() {
		return utils.Box{}, 0, fmt.Errorf("unknown class id %d", classID)
	}

	return utils.NewBox(coords[0], coords[1], coords[2], coords[3]), class, nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("encode response failed", "error", err)
	}
}

func (s *Server) writeExtractError(w http.ResponseWriter, message string, status int) {
	s.writeJSON(w, status, ExtractResponse{Success: false, Error: message})
}

func (s *Server) writeRegionError(w http.ResponseWriter, message string, status int) {
	s.writeJSON(w, status, RegionResponse{Success: false, Error: message})
}
