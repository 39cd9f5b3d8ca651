package convert

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"cvconvert-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the conversion service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches conversion routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/conversions", h.createConversions)
	rg.GET("/conversions", h.listConversions)
	rg.GET("/conversions/:id", h.getConversion)
	rg.POST("/conversions/:id/export", h.exportConversion)
	rg.POST("/conversions/:id/texts", h.generateText)
}

func (h *Handler) createConversions(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "multipart form with a files field is required", nil)
		return
	}
	fileHeaders := form.File["files"]
	if len(fileHeaders) == 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "at least one file is required", nil)
		return
	}

	uploads := make([]Upload, 0, len(fileHeaders))
	for _, fh := range fileHeaders {
		data, err := readMultipartFile(fh)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "could not read uploaded file "+fh.Filename, nil)
			return
		}
		uploads = append(uploads, Upload{
			FileName: fh.Filename,
			MimeType: fh.Header.Get("Content-Type"),
			Data:     data,
		})
	}

	conversions, err := h.Svc.Enqueue(requestContext(c), uploads, c.Query("template"))
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to start conversion", nil)
		}
		return
	}

	respond.Accepted(c, gin.H{"conversions": conversions})
}

func (h *Handler) getConversion(c *gin.Context) {
	conversion, err := h.Svc.Get(requestContext(c), c.Param("id"))
	if err != nil {
		respondConversionError(c, err, "failed to fetch conversion")
		return
	}
	respond.JSON(c, http.StatusOK, conversion)
}

func (h *Handler) listConversions(c *gin.Context) {
	limit := 50
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}

	conversions, err := h.Svc.List(requestContext(c), limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list conversions", nil)
		return
	}
	if conversions == nil {
		conversions = []Conversion{}
	}
	respond.JSON(c, http.StatusOK, gin.H{"conversions": conversions})
}

type exportRequest struct {
	Format string `json:"format"`
}

func (h *Handler) exportConversion(c *gin.Context) {
	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid json body", nil)
		return
	}

	conversion, err := h.Svc.RecordExport(requestContext(c), c.Param("id"), req.Format)
	if err != nil {
		respondConversionError(c, err, "failed to record export")
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{
		"conversionId": conversion.ID,
		"format":       req.Format,
		"record":       conversion.Result,
	})
}

type textRequest struct {
	Kind  string `json:"kind"`
	Input string `json:"input"`
}

func (h *Handler) generateText(c *gin.Context) {
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid json body", nil)
		return
	}

	text, err := h.Svc.GenerateText(requestContext(c), c.Param("id"), req.Kind, req.Input)
	if err != nil {
		respondConversionError(c, err, "failed to generate text")
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{
		"conversionId": c.Param("id"),
		"kind":         req.Kind,
		"text":         text,
	})
}

func respondConversionError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "conversion not found", nil)
	case errors.Is(err, ErrNotReady):
		respond.Error(c, http.StatusConflict, "conversion_pending", "conversion not complete", nil)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		respond.Error(c, http.StatusRequestTimeout, "timeout", "request canceled", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}

func requestContext(c *gin.Context) context.Context {
	return WithRequestID(c.Request.Context(), c.GetString("requestId"))
}

func readMultipartFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
