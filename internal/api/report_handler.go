package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/streetfix/report-ingest/pkg/reportingest"
)

// maxUploadBytes bounds the multipart form held in memory per request.
const maxUploadBytes = 32 << 20 // 32 MB

// ReportHandler handles report upload and listing API endpoints
type ReportHandler struct {
	service reportingest.Service
	logger  *slog.Logger
}

func NewReportHandler(service reportingest.Service, logger *slog.Logger) *ReportHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportHandler{
		service: service,
		logger:  logger,
	}
}

// Routes returns the router for report endpoints
func (h *ReportHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/upload/", h.Upload)
	r.Get("/reports", h.List)
	return r
}

// ReportResponse represents one report in the listing, with its derived
// public image URL
type ReportResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Username    string  `json:"username"`
	Type        string  `json:"type"`
	Detail      string  `json:"detail"`
	FileName    string  `json:"file_name"`
	ImageURL    string  `json:"image_url,omitempty"`
	DateCreated string  `json:"date_created"`
}

// ErrorResponse carries a human-readable failure reason
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// Upload accepts a multipart form upload: file plus hash, name, location,
// username, type and detail fields. Location is a JSON object with latitude
// and longitude.
func (h *ReportHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.clientError(w, r, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.clientError(w, r, "file field is required")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error("reading upload body failed", "error", err)
		h.serverError(w, r)
		return
	}

	var location reportingest.Location
	if raw := r.FormValue("location"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &location); err != nil {
			h.clientError(w, r, "location must be a JSON object with latitude and longitude")
			return
		}
	}

	req := reportingest.UploadReportRequest{
		Content:             content,
		MimeType:            header.Header.Get("Content-Type"),
		FileName:            header.Filename,
		ReportedFingerprint: r.FormValue("hash"),
		Name:                r.FormValue("name"),
		Location:            location,
		Username:            r.FormValue("username"),
		Type:                r.FormValue("type"),
		Detail:              r.FormValue("detail"),
	}

	resp, err := h.service.UploadReport(r.Context(), req)
	if err != nil {
		if reportingest.IsValidationError(err) {
			h.clientError(w, r, reasonFor(err))
			return
		}
		h.logger.Error("upload pipeline failed", "filename", req.FileName, "error", err)
		h.serverError(w, r)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, resp)
}

// List returns committed reports, newest first, with derived image URLs
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	reports, err := h.service.ListReports(r.Context())
	if err != nil {
		h.logger.Error("listing reports failed", "error", err)
		h.serverError(w, r)
		return
	}

	out := make([]ReportResponse, 0, len(reports))
	for _, report := range reports {
		imageURL, err := h.service.ImageURL(r.Context(), report.FileName)
		if err != nil {
			h.logger.Warn("deriving image url failed", "file_name", report.FileName, "error", err)
		}
		out = append(out, ReportResponse{
			ID:          report.ID,
			Name:        report.Name,
			Latitude:    report.Latitude,
			Longitude:   report.Longitude,
			Username:    report.Username,
			Type:        report.Type,
			Detail:      report.Detail,
			FileName:    report.FileName,
			ImageURL:    imageURL,
			DateCreated: report.DateCreated.Format("2006-01-02 15:04:05"),
		})
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, out)
}

func (h *ReportHandler) clientError(w http.ResponseWriter, r *http.Request, detail string) {
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, ErrorResponse{Detail: detail})
}

func (h *ReportHandler) serverError(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusInternalServerError)
	render.JSON(w, r, ErrorResponse{Detail: "upload failed"})
}

// reasonFor maps validation failures to the human-readable reasons clients
// key on.
func reasonFor(err error) string {
	switch {
	case errors.Is(err, reportingest.ErrFingerprintMismatch):
		return "Hash mismatch"
	case errors.Is(err, reportingest.ErrUnsupportedMediaType):
		return "Unsupported media type"
	case errors.Is(err, reportingest.ErrExtensionMismatch):
		return "Filename does not match content type"
	default:
		return "Invalid upload"
	}
}
