package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/askwhyharsh/scamcheck/internal/history"
	"github.com/askwhyharsh/scamcheck/internal/ratelimit"
	"github.com/askwhyharsh/scamcheck/internal/scam"
	"github.com/askwhyharsh/scamcheck/internal/storage"
	"github.com/askwhyharsh/scamcheck/internal/urlutil"
	apperrors "github.com/askwhyharsh/scamcheck/pkg/errors"
	"github.com/askwhyharsh/scamcheck/pkg/logger"
	"github.com/askwhyharsh/scamcheck/pkg/validator"
)

const (
	dateLayout       = "2006-01-02"
	defaultStatsDays = 7
	maxStatsDays     = 366
	batchWorkers     = 4
)

// StatsStore records and reads daily aggregates. It is nil when no database
// is configured.
type StatsStore interface {
	RecordAnalysis(ctx context.Context, at time.Time, severity string, score int) error
	GetDailyStats(ctx context.Context, startDate, endDate time.Time) ([]storage.DailyStats, error)
	GetTotalStats(ctx context.Context) (*storage.DailyStats, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	detector  *scam.Detector
	history   history.Store
	stats     StatsStore
	validator validator.Validator
	logger    logger.Logger
	checks    map[string]Pinger
	now       func() time.Time
}

type AnalyzeRequest struct {
	Text       string `json:"text"`
	URL        string `json:"url"`
	Locale     string `json:"locale"`
	AutoDetect *bool  `json:"auto_detect"`
}

func (r AnalyzeRequest) input() scam.Input {
	autoDetect := true
	if r.AutoDetect != nil {
		autoDetect = *r.AutoDetect
	}
	return scam.Input{
		Text:       r.Text,
		URL:        r.URL,
		Locale:     r.Locale,
		AutoDetect: autoDetect,
	}
}

type StatsResponse struct {
	From   string               `json:"from"`
	To     string               `json:"to"`
	Days   []storage.DailyStats `json:"days"`
	Totals *storage.DailyStats  `json:"totals"`
}

func NewHandler(detector *scam.Detector, historyStore history.Store, stats StatsStore, v validator.Validator, log logger.Logger) *Handler {
	return &Handler{
		detector:  detector,
		history:   historyStore,
		stats:     stats,
		validator: v,
		logger:    log,
		checks:    make(map[string]Pinger),
		now:       time.Now,
	}
}

// WithHealthCheck adds a dependency reported by the health endpoint.
func (h *Handler) WithHealthCheck(name string, p Pinger) *Handler {
	h.checks[name] = p
	return h
}

// Now is the handler's clock.
func (h *Handler) Now() time.Time {
	return h.now()
}

// requestTime is the time stamped by RequestTimeMiddleware, or now when the
// handler runs without it.
func (h *Handler) requestTime(c *gin.Context) time.Time {
	if t := c.GetTime(RequestTimeKey); !t.IsZero() {
		return t
	}
	return h.now()
}

// POST /api/analyze
func (h *Handler) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse("Invalid request", "INVALID_REQUEST"))
		return
	}

	if err := h.validator.ValidateAnalyzeRequest(req.Text, req.URL); err != nil {
		respondError(c, err)
		return
	}

	analysis := h.detector.Analyze(req.input())
	h.record(c, analysis)

	c.JSON(http.StatusOK, SuccessResponse(analysis))
}

// POST /api/analyze/text
func (h *Handler) AnalyzeText(c *gin.Context) {
	var req struct {
		Text   string `json:"text"`
		Locale string `json:"locale"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse("Invalid request", "INVALID_REQUEST"))
		return
	}

	if err := h.validator.ValidateText(req.Text); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse(h.detector.AnalyzeText(req.Text, req.Locale)))
}

// POST /api/analyze/url
func (h *Handler) AnalyzeURL(c *gin.Context) {
	var req struct {
		URL  string `json:"url"`
		Text string `json:"text"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse("Invalid request", "INVALID_REQUEST"))
		return
	}

	if err := h.validator.ValidateURL(req.URL); err != nil {
		respondError(c, err)
		return
	}
	if len(req.Text) > validator.MaxTextBytes {
		respondError(c, apperrors.ErrInputTooLarge)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse(h.detector.AnalyzeURL(req.URL, req.Text)))
}

// POST /api/analyze/batch
func (h *Handler) AnalyzeBatch(c *gin.Context) {
	var req struct {
		Items []AnalyzeRequest `json:"items"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse("Invalid request", "INVALID_REQUEST"))
		return
	}

	if err := h.validator.ValidateBatch(len(req.Items)); err != nil {
		respondError(c, err)
		return
	}

	for i, item := range req.Items {
		if err := h.validator.ValidateAnalyzeRequest(item.Text, item.URL); err != nil {
			appErr, code := toAppError(err)
			c.JSON(appErr.StatusCode, ErrorResponse(fmt.Sprintf("item %d: %s", i, appErr.Error()), code))
			return
		}
	}

	results := make([]scam.Analysis, len(req.Items))

	g, ctx := errgroup.WithContext(c.Request.Context())
	g.SetLimit(batchWorkers)

	for i, item := range req.Items {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = h.detector.Analyze(item.input())
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		h.logger.Warn("Batch analysis aborted", "error", err)
		respondError(c, err)
		return
	}

	at := h.requestTime(c)
	for _, a := range results {
		h.recordStats(c.Request.Context(), at, a)
	}

	c.JSON(http.StatusOK, SuccessResponse(results))
}

// POST /api/extract
func (h *Handler) Extract(c *gin.Context) {
	var req struct {
		Text string `json:"text"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse("Invalid request", "INVALID_REQUEST"))
		return
	}

	if len(req.Text) > validator.MaxTextBytes {
		respondError(c, apperrors.ErrInputTooLarge)
		return
	}

	urls := urlutil.ExtractAll(req.Text)
	first, _ := urlutil.ExtractFirst(req.Text)

	c.JSON(http.StatusOK, SuccessResponse(gin.H{
		"urls":  urls,
		"first": first,
	}))
}

// GET /api/history
func (h *Handler) GetHistory(c *gin.Context) {
	clientID := c.GetString(ratelimit.ClientIDKey)

	entries, err := h.history.List(c.Request.Context(), clientID)
	if err != nil {
		h.logger.Error("Failed to load history", "client_id", clientID, "error", err)
		respondError(c, fmt.Errorf("%w: %v", apperrors.ErrStorageUnavailable, err))
		return
	}

	c.JSON(http.StatusOK, SuccessResponse(entries))
}

// DELETE /api/history
func (h *Handler) ClearHistory(c *gin.Context) {
	clientID := c.GetString(ratelimit.ClientIDKey)

	if err := h.history.Clear(c.Request.Context(), clientID); err != nil {
		h.logger.Error("Failed to clear history", "client_id", clientID, "error", err)
		respondError(c, fmt.Errorf("%w: %v", apperrors.ErrStorageUnavailable, err))
		return
	}

	c.JSON(http.StatusOK, SuccessResponse(gin.H{
		"message": "History cleared",
	}))
}

// GET /api/demo
func (h *Handler) Demo(c *gin.Context) {
	locale, text := h.detector.DemoMessage(c.Query("locale"))

	c.JSON(http.StatusOK, SuccessResponse(gin.H{
		"locale": locale,
		"text":   text,
	}))
}

// GET /api/stats
func (h *Handler) Stats(c *gin.Context) {
	if h.stats == nil {
		respondError(c, apperrors.ErrStatsDisabled)
		return
	}

	from, to, err := h.parseRange(c.Query("from"), c.Query("to"))
	if err != nil {
		respondError(c, err)
		return
	}

	ctx := c.Request.Context()

	days, err := h.stats.GetDailyStats(ctx, from, to)
	if err != nil {
		h.logger.Error("Failed to load daily stats", "error", err)
		respondError(c, fmt.Errorf("%w: %v", apperrors.ErrStorageUnavailable, err))
		return
	}

	totals, err := h.stats.GetTotalStats(ctx)
	if err != nil {
		h.logger.Error("Failed to load total stats", "error", err)
		respondError(c, fmt.Errorf("%w: %v", apperrors.ErrStorageUnavailable, err))
		return
	}

	c.JSON(http.StatusOK, SuccessResponse(StatsResponse{
		From:   from.Format(dateLayout),
		To:     to.Format(dateLayout),
		Days:   days,
		Totals: totals,
	}))
}

// GET /api/health
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := "ok"
	components := make(map[string]string, len(h.checks))
	for name, p := range h.checks {
		if err := p.Ping(ctx); err != nil {
			h.logger.Warn("Health check failed", "component", name, "error", err)
			components[name] = "down"
			status = "degraded"
			continue
		}
		components[name] = "ok"
	}

	textRules, urlRules := h.detector.RuleCounts()
	opts := h.detector.Options()

	c.JSON(http.StatusOK, gin.H{
		"status":     status,
		"time":       h.requestTime(c).UTC(),
		"components": components,
		"rules": gin.H{
			"text": textRules,
			"url":  urlRules,
		},
		"engine": gin.H{
			"max_text_length":  opts.MaxTextLength,
			"max_rule_matches": opts.MaxRuleMatches,
			"age_policy":       opts.AgePolicy,
			"locales":          h.detector.Locales(),
		},
	})
}

// record stores the analysis in the caller's history when it sent a client
// id, and counts it in the daily stats. Both are best effort.
func (h *Handler) record(c *gin.Context, a scam.Analysis) {
	ctx := c.Request.Context()
	at := h.requestTime(c)

	if clientID := c.GetHeader(ratelimit.ClientIDHeader); clientID != "" {
		if err := h.validator.ValidateClientID(clientID); err == nil {
			if err := h.history.Add(ctx, clientID, history.NewEntry(a, at)); err != nil {
				h.logger.Warn("Failed to save history", "client_id", clientID, "error", err)
			}
		}
	}

	h.recordStats(ctx, at, a)
}

func (h *Handler) recordStats(ctx context.Context, at time.Time, a scam.Analysis) {
	if h.stats == nil {
		return
	}
	if err := h.stats.RecordAnalysis(ctx, at, string(a.Severity), a.Score); err != nil {
		h.logger.Warn("Failed to record stats", "error", err)
	}
}

// parseRange reads an inclusive YYYY-MM-DD range, defaulting to the last
// week ending today.
func (h *Handler) parseRange(fromStr, toStr string) (time.Time, time.Time, error) {
	to := h.now().UTC().Truncate(24 * time.Hour)
	if toStr != "" {
		t, err := time.Parse(dateLayout, toStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: bad to date %q", apperrors.ErrInvalidDateRange, toStr)
		}
		to = t
	}

	from := to.AddDate(0, 0, -(defaultStatsDays - 1))
	if fromStr != "" {
		f, err := time.Parse(dateLayout, fromStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: bad from date %q", apperrors.ErrInvalidDateRange, fromStr)
		}
		from = f
	}

	if from.After(to) || to.Sub(from) > maxStatsDays*24*time.Hour {
		return time.Time{}, time.Time{}, apperrors.ErrInvalidDateRange
	}

	return from, to, nil
}
