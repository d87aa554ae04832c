package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/username/recupera/backend/src/config"
	"github.com/username/recupera/backend/src/logger"
	"github.com/username/recupera/backend/src/models"
	"github.com/username/recupera/backend/src/security/validation"
	"github.com/username/recupera/backend/src/services"
	"github.com/username/recupera/backend/src/utils"
)

type AnalysisHandler struct {
	analysisService services.AnalysisService
}

func NewAnalysisHandler(service services.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{
		analysisService: service,
	}
}

// HandleUploadAnalysis receives one fiscal document as multipart form
// data ("file" plus a "kind" field) and responds with the credit summary
// computed from it.
func (h *AnalysisHandler) HandleUploadAnalysis(w http.ResponseWriter, r *http.Request) {
	companyID, ok := GetCompanyIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or company ID not found in context", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(config.Cfg.MaxUploadSizeBytes); err != nil {
		logger.L.Warn("Failed to parse multipart form or request too large", "companyID", companyID, "error", err, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("Failed to parse form or request too large (max %d MB)", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	kind := models.DocumentKind(strings.ToLower(strings.TrimSpace(r.FormValue("kind"))))
	switch kind {
	case models.KindSped, models.KindPgdas, models.KindNfe:
	default:
		logger.L.Warn("Unknown document kind in upload", "companyID", companyID, "kind", kind)
		utils.SendJSONError(w, "Unknown or missing 'kind' field. Expected one of: sped, pgdas, nfe.", http.StatusBadRequest)
		return
	}

	// the company's taxation regime; layouts that declare their own
	// regime override it
	regime := models.TaxRegime(strings.ToLower(strings.TrimSpace(r.FormValue("regime"))))
	switch regime {
	case "", models.RegimeSimples, models.RegimeLucroPresumido, models.RegimeLucroReal:
	default:
		logger.L.Warn("Unknown regime in upload", "companyID", companyID, "regime", regime)
		utils.SendJSONError(w, "Unknown 'regime' field. Expected one of: simples, lucro-presumido, lucro-real.", http.StatusBadRequest)
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		logger.L.Warn("Failed to retrieve file from request", "companyID", companyID, "error", err)
		utils.SendJSONError(w, "Failed to retrieve file from request. Ensure 'file' field is used.", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if fileHeader.Size > config.Cfg.MaxUploadSizeBytes {
		logger.L.Warn("Uploaded file header reports size too large", "companyID", companyID, "fileSize", fileHeader.Size, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("File too large, max %d MB (header check)", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	clientContentType := fileHeader.Header.Get("Content-Type")
	if err := validation.ValidateClientContentType(clientContentType); err != nil {
		logger.L.Warn("Invalid client-declared file type", "companyID", companyID, "contentType", clientContentType, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	detectedContentType, err := validation.ValidateFileContentByMagicBytes(file)
	if err != nil {
		logger.L.Warn("Server-side file content validation failed", "companyID", companyID, "filename", fileHeader.Filename, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	logger.L.Info("File content validated", "companyID", companyID, "filename", fileHeader.Filename, "clientType", clientContentType, "detectedType", detectedContentType)

	summary, err := h.analysisService.ProcessUpload(file, companyID, kind, regime)
	if err != nil {
		if errors.Is(err, services.ErrUnknownDocumentKind) {
			logger.L.Warn("Upload rejected: unknown document kind", "companyID", companyID, "kind", kind, "error", err)
			utils.SendJSONError(w, fmt.Sprintf("Unsupported document kind: %v", err), http.StatusBadRequest)
		} else if errors.Is(err, services.ErrParsingFailed) {
			logger.L.Warn("Upload processing failed due to parsing errors", "companyID", companyID, "filename", fileHeader.Filename, "error", err)
			utils.SendJSONError(w, fmt.Sprintf("Error parsing fiscal document: %v", err), http.StatusBadRequest)
		} else {
			logger.L.Error("Internal error processing upload", "companyID", companyID, "filename", fileHeader.Filename, "error", err)
			utils.SendJSONError(w, "An internal error occurred while processing the file. Please try again later.", http.StatusInternalServerError)
		}
		return
	}

	utils.SendJSON(w, summary, http.StatusOK)
}

// HandleGetLatestSummary serves the most recent credit summary for the
// authenticated company, with ETag support so dashboards can poll it.
func (h *AnalysisHandler) HandleGetLatestSummary(w http.ResponseWriter, r *http.Request) {
	companyID, ok := GetCompanyIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or company ID not found in context", http.StatusUnauthorized)
		return
	}
	logger.L.Debug("Handling GetLatestSummary request with ETag support", "companyID", companyID)

	summary, err := h.analysisService.GetLatestSummary(companyID)
	if err != nil {
		if errors.Is(err, services.ErrNoAnalysisFound) {
			utils.SendJSONError(w, "No analysis found for this company. Upload a document first.", http.StatusNotFound)
			return
		}
		logger.L.Error("Error retrieving latest summary from service", "companyID", companyID, "error", err)
		utils.SendJSONError(w, "Error retrieving latest analysis summary.", http.StatusInternalServerError)
		return
	}

	currentETag, etagErr := utils.GenerateETag(summary)
	if etagErr != nil {
		logger.L.Error("Failed to generate ETag for summary", "companyID", companyID, "error", etagErr)
	}

	w.Header().Set("Cache-Control", "no-cache, private")

	if etagErr == nil && currentETag != "" {
		quotedETag := fmt.Sprintf("\"%s\"", currentETag)
		w.Header().Set("ETag", quotedETag)
		clientETag := r.Header.Get("If-None-Match")
		for _, cETag := range strings.Split(clientETag, ",") {
			if strings.TrimSpace(cETag) == quotedETag {
				logger.L.Info("ETag match for summary", "companyID", companyID, "etag", currentETag)
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}
	}

	utils.SendJSON(w, summary, http.StatusOK)
}
