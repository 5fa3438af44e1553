package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/Coder-God2901/UiPath-Hackathon-AiChef/internal/extraction"
)

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// jsonError writes a JSON error body with CORS headers set
func jsonError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

// handleIndex serves the HTML interface
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

// 50MB cap to handle high-resolution phone photos
const defaultMaxUploadBytes = int64(50 << 20)

// handleUploadBill accepts a bill upload and runs the analysis pipeline on it
func (s *Server) handleUploadBill(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	tooLargeMsg := fmt.Sprintf("File is too large. Maximum size is %dMB. Please compress or resize your image.", s.maxUploadBytes>>20)

	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		errorMsg := "Error parsing form"
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) || strings.Contains(err.Error(), "request body too large") {
			errorMsg = tooLargeMsg
		}
		jsonError(w, errorMsg, http.StatusBadRequest)
		return
	}

	f, header, err := r.FormFile("bill")
	if err != nil {
		slog.Error("Error getting file from form", "error", err)
		errorMsg := "No file provided"
		if err.Error() == "http: no such file" {
			errorMsg = "No file was selected. Please choose a bill to upload."
		}
		jsonError(w, errorMsg, http.StatusBadRequest)
		return
	}
	defer f.Close()

	if header.Size > s.maxUploadBytes {
		jsonError(w, tooLargeMsg, http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		jsonError(w, "Error reading file. Please try again.", http.StatusInternalServerError)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = contentTypeForExt(filepath.Ext(header.Filename))
	}
	contentType = strings.ToLower(strings.TrimSpace(contentType))

	analysis, err := s.service.ProcessBill(r.Context(), header.Filename, data, contentType)
	if err != nil {
		slog.Error("Error processing bill", "filename", header.Filename, "error", err)
		code := http.StatusInternalServerError
		if errors.Is(err, extraction.ErrUnsupportedFormat) || errors.Is(err, extraction.ErrExtraction) {
			code = http.StatusBadRequest
		}
		jsonError(w, err.Error(), code)
		return
	}

	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(analysis); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// exportContentTypes maps the download filetype segment to its MIME type
var exportContentTypes = map[string]string{
	"csv":  "text/csv",
	"json": "application/json",
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// handleDownload serves a previously written export artifact as an attachment
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	filetype := r.PathValue("filetype")
	filename := r.PathValue("filename")

	contentType, ok := exportContentTypes[filetype]
	if !ok {
		jsonError(w, "Unknown export type", http.StatusBadRequest)
		return
	}
	if filepath.Ext(filename) != "."+filetype {
		jsonError(w, "File name does not match export type", http.StatusBadRequest)
		return
	}

	data, err := s.service.Download(filename)
	if err != nil {
		jsonError(w, "File not found", http.StatusNotFound)
		return
	}

	setCORSHeaders(w)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Write(data)
}

// contentTypeForExt guesses a MIME type from the upload's file extension
func contentTypeForExt(ext string) string {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
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

// handleStaticCSS serves the CSS file
func (s *Server) handleStaticCSS(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "text/css")
	w.Write(appCSS)
}

// handleStaticJS serves the JavaScript file
func (s *Server) handleStaticJS(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Write(appJS)
}
