package plan

import (
	"bytes"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/tableplan/tableplan/internal/svgio"
)

const maxBodySize = 10 << 20 // 10MB

// ImportSVG handles POST /plans/{planId}/import/svg (multipart form with
// "file" field).
func (h *Handler) ImportSVG(w http.ResponseWriter, r *http.Request) {
	planID := mux.Vars(r)["planId"]

	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	if err := r.ParseMultipartForm(maxBodySize); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file too large (max 10MB)"})
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing file field"})
		return
	}
	defer file.Close()

	// Browsers disagree on the type of .svg files; accept the plausible ones.
	contentType := header.Header.Get("Content-Type")
	if mt, _, err := mime.ParseMediaType(contentType); contentType != "" && err == nil {
		switch mt {
		case "image/svg+xml", "text/xml", "application/xml", "application/octet-stream":
		default:
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "only SVG files are supported"})
			return
		}
	}

	result, err := h.service.ImportSVG(planID, file)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	slog.Info("svg imported", "plan", planID, "file", header.Filename, "elements", len(result.IDs))
	writeJSON(w, http.StatusOK, result)
}

// ExportSVG handles GET /plans/{planId}/export.svg.
func (h *Handler) ExportSVG(w http.ResponseWriter, r *http.Request) {
	planID := mux.Vars(r)["planId"]

	var buf bytes.Buffer
	if err := h.service.ExportSVG(planID, &buf); err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Content-Disposition", attachment(planID, "svg"))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// ExportPNG handles GET /plans/{planId}/export.png?width=.
func (h *Handler) ExportPNG(w http.ResponseWriter, r *http.Request) {
	planID := mux.Vars(r)["planId"]

	width := svgio.DefaultRasterWidth
	if v := r.URL.Query().Get("width"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "width must be a positive integer"})
			return
		}
		width = n
	}

	var buf bytes.Buffer
	if err := h.service.ExportPNG(planID, &buf, width); err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", attachment(planID, "png"))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func attachment(name, ext string) string {
	// Sanitize filename
	name = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, name)
	return fmt.Sprintf(`attachment; filename="%s.%s"`, name, ext)
}
