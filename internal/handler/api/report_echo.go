package api

import (
	"time"

	"MacroPulse/internal/domain/models"
	"MacroPulse/internal/domain/repository"
	imetrics "MacroPulse/internal/service/metrics"
	"MacroPulse/internal/usecase"
	xhttp "MacroPulse/pkg/http"
	xlogger "MacroPulse/pkg/logger"
	"MacroPulse/pkg/util"

	"github.com/labstack/echo/v4"
)

// ReportEchoHandler serves the compiled regime report over HTTP. Every report
// endpoint reads the latest pipeline output; only the history endpoint goes
// to storage, for label ranges older than the in-memory report.
type ReportEchoHandler struct {
	logger   *xlogger.Logger
	pipeline *usecase.ReportPipeline
	storage  repository.Storage // optional
}

func NewReportEchoHandler(logger *xlogger.Logger, pipeline *usecase.ReportPipeline, storage repository.Storage) *ReportEchoHandler {
	imetrics.Register()
	return &ReportEchoHandler{logger: logger, pipeline: pipeline, storage: storage}
}

func (h *ReportEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/report", h.Report)
	g.GET("/regimes", h.Regimes)
	g.GET("/distribution", h.Distribution)
	g.GET("/episodes", h.Episodes)
	g.GET("/medians", h.Medians)
	g.GET("/summary", h.Summary)
	g.GET("/scorecard", h.Scorecard)
	g.GET("/history", h.History)
	e.GET("/healthz", h.Health)
}

// Report returns the full compiled report.
func (h *ReportEchoHandler) Report(c echo.Context) error {
	defer h.observe("report", time.Now())
	report, ok := h.pipeline.Latest()
	if !ok {
		return h.noReport(c, "report")
	}
	return xhttp.SuccessResponse(c, report)
}

// Regimes returns the smoothed daily labels, optionally windowed by date or
// truncated to the last n days.
func (h *ReportEchoHandler) Regimes(c echo.Context) error {
	defer h.observe("regimes", time.Now())

	req := new(models.RegimesRequest)
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	report, ok := h.pipeline.Latest()
	if !ok {
		return h.noReport(c, "regimes")
	}

	labels := report.Labels
	if req.From != "" {
		from, _ := util.ParseDate(req.From)
		labels = filterFrom(labels, from)
	}
	if req.To != "" {
		to, _ := util.ParseDate(req.To)
		labels = filterTo(labels, to)
	}
	if req.N > 0 && len(labels) > req.N {
		labels = labels[len(labels)-req.N:]
	}
	return xhttp.ListResponse(c, labels, int64(len(labels)))
}

// Distribution returns the regime share table.
func (h *ReportEchoHandler) Distribution(c echo.Context) error {
	defer h.observe("distribution", time.Now())
	report, ok := h.pipeline.Latest()
	if !ok {
		return h.noReport(c, "distribution")
	}
	return xhttp.ListResponse(c, report.Distribution, int64(len(report.Distribution)))
}

// Episodes returns contiguous regime runs, filterable by label and length.
func (h *ReportEchoHandler) Episodes(c echo.Context) error {
	defer h.observe("episodes", time.Now())

	req := new(models.EpisodesRequest)
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	report, ok := h.pipeline.Latest()
	if !ok {
		return h.noReport(c, "episodes")
	}

	out := make([]models.RegimeEpisode, 0, len(report.Episodes))
	for _, ep := range report.Episodes {
		if req.Regime != "" && ep.Label != models.RegimeLabel(req.Regime) {
			continue
		}
		if ep.Days < req.MinLen {
			continue
		}
		out = append(out, ep)
	}
	return xhttp.ListResponse(c, out, int64(len(out)))
}

// Medians returns per-regime signal medians.
func (h *ReportEchoHandler) Medians(c echo.Context) error {
	defer h.observe("medians", time.Now())
	report, ok := h.pipeline.Latest()
	if !ok {
		return h.noReport(c, "medians")
	}
	return xhttp.ListResponse(c, report.Medians, int64(len(report.Medians)))
}

// Summary returns per-regime mean/std statistics of the core signals.
func (h *ReportEchoHandler) Summary(c echo.Context) error {
	defer h.observe("summary", time.Now())
	report, ok := h.pipeline.Latest()
	if !ok {
		return h.noReport(c, "summary")
	}
	return xhttp.ListResponse(c, report.Summary, int64(len(report.Summary)))
}

// Scorecard returns the stress-window scorecard, optionally a single window
// by name.
func (h *ReportEchoHandler) Scorecard(c echo.Context) error {
	defer h.observe("scorecard", time.Now())

	req := new(models.ScorecardRequest)
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	report, ok := h.pipeline.Latest()
	if !ok {
		return h.noReport(c, "scorecard")
	}

	if req.Window == "" {
		return xhttp.ListResponse(c, report.Scorecard, int64(len(report.Scorecard)))
	}
	for _, row := range report.Scorecard {
		if row.Window == req.Window {
			return xhttp.SuccessResponse(c, row)
		}
	}
	return xhttp.NotFoundResponse(c, xhttp.NotFoundErrorf("unknown stress window %q", req.Window))
}

// History returns the smoothed labels persisted for a past date range,
// straight from storage rather than the in-memory report.
func (h *ReportEchoHandler) History(c echo.Context) error {
	defer h.observe("history", time.Now())

	if h.storage == nil {
		imetrics.ReportErrors.WithLabelValues("history").Inc()
		return xhttp.ServiceUnavailableResponse(c, "label storage disabled")
	}

	req := new(models.HistoryRequest)
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	from, _ := util.ParseDate(req.From)
	to := time.Now().UTC()
	if req.To != "" {
		to, _ = util.ParseDate(req.To)
	}
	if to.Before(from) {
		return xhttp.BadRequestResponse(c, []xhttp.ValidationError{{
			Code:    "ERR_RANGE",
			Field:   "to",
			Message: "to must not precede from",
		}})
	}

	labels, err := h.storage.QueryLabels(c.Request().Context(), from, to)
	if err != nil {
		imetrics.ReportErrors.WithLabelValues("history").Inc()
		h.logger.Error("label history query failed", xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	return xhttp.ListResponse(c, labels, int64(len(labels)))
}

// Health reports readiness: a report must exist, and storage (when
// configured) must answer.
func (h *ReportEchoHandler) Health(c echo.Context) error {
	if _, ok := h.pipeline.Latest(); !ok {
		return xhttp.ServiceUnavailableResponse(c, "no report yet")
	}
	if h.storage != nil {
		if err := h.storage.Health(c.Request().Context()); err != nil {
			h.logger.Warn("storage health check failed", xlogger.Error(err))
			return xhttp.ServiceUnavailableResponse(c, "storage unreachable")
		}
	}
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

func (h *ReportEchoHandler) noReport(c echo.Context, endpoint string) error {
	imetrics.ReportErrors.WithLabelValues(endpoint).Inc()
	return xhttp.ServiceUnavailableResponse(c, "report not ready")
}

func (h *ReportEchoHandler) observe(endpoint string, start time.Time) {
	imetrics.ReportLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}

func filterFrom(labels []models.SmoothedLabel, from time.Time) []models.SmoothedLabel {
	for i, l := range labels {
		if !l.Date.Before(from) {
			return labels[i:]
		}
	}
	return nil
}

func filterTo(labels []models.SmoothedLabel, to time.Time) []models.SmoothedLabel {
	for i := len(labels) - 1; i >= 0; i-- {
		if !labels[i].Date.After(to) {
			return labels[:i+1]
		}
	}
	return nil
}
