package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/healthatlas/facility-registry/internal/application/services"
	"github.com/healthatlas/facility-registry/internal/domain/entities"
)

// maxImportUpload caps the multipart memory buffer; larger files spill to disk.
const maxImportUpload = 32 << 20

// ImportHandler handles bulk facility imports over HTTP.
type ImportHandler struct {
	importService    *services.ImportService
	dashboardService *services.DashboardService
	skipReasonCap    int
}

// NewImportHandler creates a new import handler
func NewImportHandler(importService *services.ImportService, dashboardService *services.DashboardService, skipReasonCap int) *ImportHandler {
	return &ImportHandler{
		importService:    importService,
		dashboardService: dashboardService,
		skipReasonCap:    skipReasonCap,
	}
}

// ImportFacilities handles POST /api/facilities/import. A multipart upload
// carries the file in the "file" field; alternatively a JSON body may name a
// server-side path. In both forms "updateExisting" switches duplicate
// handling from skip to overwrite.
func (h *ImportHandler) ImportFacilities(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		h.importFromPath(w, r)
		return
	}
	h.importFromUpload(w, r)
}

type importPathPayload struct {
	Path           string `json:"path"`
	UpdateExisting bool   `json:"updateExisting"`
}

func (h *ImportHandler) importFromPath(w http.ResponseWriter, r *http.Request) {
	var payload importPathPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Path == "" {
		respondWithError(w, http.StatusBadRequest, "path is required")
		return
	}

	log.Info().Str("path", payload.Path).Bool("update_existing", payload.UpdateExisting).
		Msg("importing facilities from server-side path")

	report, err := h.importService.ImportFile(r.Context(), payload.Path, payload.UpdateExisting)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	h.finishImport(w, r, report)
}

// importFromUpload stages the multipart upload to a temp file that is removed
// on every exit path.
func (h *ImportHandler) importFromUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImportUpload); err != nil {
		respondWithError(w, http.StatusBadRequest, "expected a multipart upload with a file field")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	updateExisting := false
	if raw := r.FormValue("updateExisting"); raw != "" {
		updateExisting, err = strconv.ParseBool(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "updateExisting must be a boolean")
			return
		}
	}

	tmp, err := os.CreateTemp("", "facility-import-*.csv")
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to stage upload")
		return
	}
	tmpPath := tmp.Name()
	defer func() {
		if err := os.Remove(tmpPath); err != nil {
			log.Warn().Err(err).Str("path", tmpPath).Msg("failed to remove staged import file")
		}
	}()

	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		respondWithError(w, http.StatusInternalServerError, "failed to stage upload")
		return
	}
	if err := tmp.Close(); err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to stage upload")
		return
	}

	log.Info().Str("filename", header.Filename).Int64("size", header.Size).
		Bool("update_existing", updateExisting).Msg("received facility import upload")

	report, err := h.importService.ImportFile(r.Context(), tmpPath, updateExisting)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	h.finishImport(w, r, report)
}

func (h *ImportHandler) finishImport(w http.ResponseWriter, r *http.Request, report *entities.ImportReport) {
	if h.dashboardService != nil {
		h.dashboardService.Invalidate(r.Context())
	}
	respondWithJSON(w, http.StatusOK, report.CapReasons(h.skipReasonCap))
}
