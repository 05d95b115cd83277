package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"rtcdiag/internal/core/domain"
	"rtcdiag/internal/core/ports"
	apperrors "rtcdiag/pkg/errors"
	"rtcdiag/pkg/validation"

	"github.com/gin-gonic/gin"
)

// dumpFormField is the multipart field carrying an uploaded dump.
const dumpFormField = "file"

type AnalysisHandler struct {
	analysisService ports.AnalysisService
	maxDumpBytes    int64
}

// NewAnalysisHandler builds the dump upload handler. maxDumpBytes bounds the
// request body that is read; <= 0 reads it whole.
func NewAnalysisHandler(analysisService ports.AnalysisService, maxDumpBytes int) *AnalysisHandler {
	return &AnalysisHandler{
		analysisService: analysisService,
		maxDumpBytes:    int64(maxDumpBytes),
	}
}

func (h *AnalysisHandler) SetupRoutes(router gin.IRouter) {
	api := router.Group("/api/v1")
	{
		api.POST("/analyses", h.CreateAnalysis)
		api.POST("/detect", h.DetectFormat)
	}
}

// CreateAnalysis analyzes the uploaded dump. The optional format query
// parameter skips detection; include_session=false drops the reconstructed
// series from the response.
func (h *AnalysisHandler) CreateAnalysis(c *gin.Context) {
	var format domain.DumpFormat
	if name := c.Query("format"); name != "" {
		f, err := validation.ValidateFormat(name)
		if err != nil {
			_ = c.Error(apperrors.NewInvalidInputError(err.Error()))
			return
		}
		format = f
	}

	includeSession := true
	if raw := c.Query("include_session"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			_ = c.Error(apperrors.NewInvalidInputError("include_session must be a boolean"))
			return
		}
		includeSession = v
	}

	content, err := h.readDump(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	analysis, err := h.analysisService.AnalyzeAs(c.Request.Context(), content, format)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if !includeSession {
		trimmed := *analysis
		trimmed.Session = nil
		analysis = &trimmed
	}

	c.JSON(http.StatusOK, gin.H{
		"analysis": analysis,
	})
}

func (h *AnalysisHandler) DetectFormat(c *gin.Context) {
	content, err := h.readDump(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	format, err := h.analysisService.Detect(c.Request.Context(), content)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"format": format,
	})
}

// readDump returns the dump carried by the request, either as a multipart
// "file" field or as the raw body.
func (h *AnalysisHandler) readDump(c *gin.Context) (string, error) {
	if h.maxDumpBytes > 0 {
		// Leave room for multipart framing around the file itself.
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxDumpBytes+64<<10)
	}

	var body io.Reader = c.Request.Body
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		fh, err := c.FormFile(dumpFormField)
		if err != nil {
			if isBodyTooLarge(err) {
				return "", fmt.Errorf("%w: request body exceeds %d bytes", domain.ErrDumpTooLarge, h.maxDumpBytes)
			}
			return "", apperrors.NewInvalidInputError(fmt.Sprintf("multipart field %q is required", dumpFormField))
		}
		f, err := fh.Open()
		if err != nil {
			return "", apperrors.WrapError(err, apperrors.ErrCodeInvalidInput, "failed to open uploaded dump", http.StatusBadRequest)
		}
		defer f.Close()
		body = f
	}

	reader := body
	if h.maxDumpBytes > 0 {
		reader = io.LimitReader(body, h.maxDumpBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		if isBodyTooLarge(err) {
			return "", fmt.Errorf("%w: request body exceeds %d bytes", domain.ErrDumpTooLarge, h.maxDumpBytes)
		}
		return "", apperrors.WrapError(err, apperrors.ErrCodeInvalidInput, "failed to read request body", http.StatusBadRequest)
	}
	if h.maxDumpBytes > 0 && int64(len(data)) > h.maxDumpBytes {
		return "", fmt.Errorf("%w: %d bytes (max %d)", domain.ErrDumpTooLarge, len(data), h.maxDumpBytes)
	}
	return string(data), nil
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
