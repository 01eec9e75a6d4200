package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/kabir-fx/abhiraksha/constants"
	"github.com/kabir-fx/abhiraksha/internal/adjudicate"
	"github.com/kabir-fx/abhiraksha/internal/common"
	"github.com/kabir-fx/abhiraksha/internal/export"
	"github.com/kabir-fx/abhiraksha/internal/extract"
	"github.com/kabir-fx/abhiraksha/internal/metrics"
)

const (
	HeaderStrategy  = "X-Extraction-Strategy"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	// multipart framing allowance on top of the file limit
	multipartSlack = 1 << 20
)

const (
	noFileMessage       = "No file provided"
	invalidTypeMessage  = "Invalid document type. Must be 'insurance', 'discharge', or 'bill'."
	pdfOnlyMessage      = "Only PDF files are accepted."
	badBodyMessage      = "Invalid request body."
	extractFailed       = "Failed to process the PDF. Please try again."
	exportFailedMessage = "Failed to build the claim report."
)

// ClaimService is what the transports need from the pipeline.
type ClaimService interface {
	ExtractText(ctx context.Context, doc constants.DocumentType, text string) (extract.Outcome, error)
	ExtractUpload(ctx context.Context, doc constants.DocumentType, data []byte, ext string) (extract.Outcome, error)
	Analyze(ctx context.Context, in adjudicate.ClaimInput) (adjudicate.ClaimVerdict, error)
	LookupPolicy(ctx context.Context, number string) (extract.Result[extract.InsurancePolicy], error)
	StrategyFor(doc constants.DocumentType) constants.Strategy
}

type HTTPOptions struct {
	Claims         ClaimService
	Exporter       *export.Service
	Metrics        *metrics.Metrics
	Logger         *slog.Logger
	RateLimitRPS   float64
	RateLimitBurst int
	MaxUploadMB    int64
	// Ready backs /healthz. Nil means always ready.
	Ready func(ctx context.Context) error
}

type handlers struct {
	claims   ClaimService
	exporter *export.Service
	logger   *slog.Logger
	maxBytes int64
	maxMB    int64
	ready    func(ctx context.Context) error
}

// NewRouter builds the HTTP API.
func NewRouter(opts HTTPOptions) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	exporter := opts.Exporter
	if exporter == nil {
		exporter = export.NewService(logger)
	}
	maxMB := opts.MaxUploadMB
	if maxMB <= 0 {
		maxMB = 10
	}
	h := &handlers{
		claims:   opts.Claims,
		exporter: exporter,
		logger:   logger,
		maxBytes: maxMB << 20,
		maxMB:    maxMB,
		ready:    opts.Ready,
	}

	engine := gin.New()
	engine.Use(
		Recovery(logger),
		RequestID(),
		AccessLog(logger, opts.Metrics),
	)

	engine.GET("/healthz", h.health)
	if opts.Metrics != nil {
		engine.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}

	api := engine.Group("/api")
	api.Use(NewRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst).RateLimit())
	{
		api.POST("/extract", h.extract)
		api.POST("/claim/analyze", h.analyze)
		api.POST("/claim/export", h.export)
		api.POST("/policy/lookup", h.lookupPolicy)
	}
	return engine
}

// statusFor maps an error onto an HTTP status and the message callers see.
func statusFor(err error, fallback string) (int, string) {
	msg := common.PublicMessage(err, fallback)
	switch {
	case errors.Is(err, common.ErrInvalidInput), errors.Is(err, adjudicate.ErrNoSections):
		return http.StatusBadRequest, msg
	case errors.Is(err, common.ErrPrecondition):
		return http.StatusUnprocessableEntity, msg
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound, msg
	default:
		return http.StatusInternalServerError, msg
	}
}

func (h *handlers) fail(c *gin.Context, err error, fallback string) {
	code, msg := statusFor(err, fallback)
	if code >= http.StatusInternalServerError {
		common.LoggerFromContext(c.Request.Context(), h.logger).Error("http.handler.failed", "route", c.FullPath(), "err", err)
	}
	c.JSON(code, gin.H{"error": msg})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func (h *handlers) health(c *gin.Context) {
	if h.ready != nil {
		if err := h.ready(c.Request.Context()); err != nil {
			common.LoggerFromContext(c.Request.Context(), h.logger).Warn("http.health.unready", "err", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type extractTextRequest struct {
	Type string `json:"type" binding:"required"`
	Text string `json:"text"`
}

// extract accepts either a multipart PDF upload (fields "file" and "type")
// or a JSON body carrying already-extracted text.
func (h *handlers) extract(c *gin.Context) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		h.extractUpload(c)
		return
	}

	var req extractTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			badRequest(c, invalidTypeMessage)
			return
		}
		badRequest(c, badBodyMessage)
		return
	}
	doc, ok := constants.ParseDocumentType(req.Type)
	if !ok {
		badRequest(c, invalidTypeMessage)
		return
	}
	out, err := h.claims.ExtractText(c.Request.Context(), doc, req.Text)
	h.writeOutcome(c, doc, out, err)
}

func (h *handlers) extractUpload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+multipartSlack)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			badRequest(c, h.tooLargeMessage())
			return
		}
		badRequest(c, noFileMessage)
		return
	}
	doc, ok := constants.ParseDocumentType(c.PostForm("type"))
	if !ok {
		badRequest(c, invalidTypeMessage)
		return
	}
	if !isPDF(fh.Filename, fh.Header.Get("Content-Type")) {
		badRequest(c, pdfOnlyMessage)
		return
	}
	if fh.Size > h.maxBytes {
		badRequest(c, h.tooLargeMessage())
		return
	}

	f, err := fh.Open()
	if err != nil {
		h.fail(c, err, extractFailed)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, h.maxBytes+1))
	if err != nil {
		h.fail(c, err, extractFailed)
		return
	}

	out, err := h.claims.ExtractUpload(c.Request.Context(), doc, data, constants.PDF)
	h.writeOutcome(c, doc, out, err)
}

func (h *handlers) tooLargeMessage() string {
	return fmt.Sprintf("File too large. Maximum size is %dMB.", h.maxMB)
}

func isPDF(filename, contentType string) bool {
	if constants.NormalizeExt(filepath.Ext(filename)) == constants.PDF {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(contentType), "application/pdf")
}

func (h *handlers) writeOutcome(c *gin.Context, doc constants.DocumentType, out extract.Outcome, err error) {
	if err != nil {
		h.fail(c, err, extractFailed)
		return
	}
	c.Header(HeaderStrategy, string(h.claims.StrategyFor(doc)))
	c.JSON(http.StatusOK, out)
}

func (h *handlers) analyze(c *gin.Context) {
	var in adjudicate.ClaimInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, badBodyMessage)
		return
	}
	v, err := h.claims.Analyze(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err, adjudicate.FailureMessage)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "verdict": v})
}

// lookupRequest accepts the snake_case key and the camelCase key older
// clients send.
type lookupRequest struct {
	PolicyNumber string `json:"policy_number"`
	Legacy       string `json:"policyNumber"`
}

func (r lookupRequest) number() string {
	if strings.TrimSpace(r.PolicyNumber) != "" {
		return r.PolicyNumber
	}
	return r.Legacy
}

func (h *handlers) lookupPolicy(c *gin.Context) {
	var req lookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, badBodyMessage)
		return
	}
	res, err := h.claims.LookupPolicy(c.Request.Context(), req.number())
	if err != nil {
		h.fail(c, err, "Failed to perform policy lookup")
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handlers) export(c *gin.Context) {
	var claim export.Claim
	if err := c.ShouldBindJSON(&claim); err != nil {
		badRequest(c, badBodyMessage)
		return
	}
	b, err := h.exporter.ClaimXLSX(c.Request.Context(), claim)
	if err != nil {
		h.fail(c, err, exportFailedMessage)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="claim-report.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, b)
}
