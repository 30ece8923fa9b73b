package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"case-insights-go/internal/dataset"
	"case-insights-go/internal/logger"
	"case-insights-go/internal/processor"
	"case-insights-go/internal/types"
)

const sessionKey = "session"

// Loader builds a session from a dataset source.
type Loader interface {
	Load(ctx context.Context, src processor.Source) (*processor.Session, error)
}

// ReloadConfig decides what a reload request may load. An empty request
// body reloads Default; anything else must pass Policy.
type ReloadConfig struct {
	Default processor.Source
	Policy  processor.SourcePolicy
}

type Handler struct {
	store  *processor.Store
	loader Loader
	reload ReloadConfig
	log    *logger.Logger
}

func NewHandler(store *processor.Store, loader Loader, reload ReloadConfig, log *logger.Logger) *Handler {
	return &Handler{store: store, loader: loader, reload: reload, log: log.Component("api.handler")}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	api := e.Group("/api")
	ready := h.requireSession
	api.GET("/summary", h.GetSummary, ready)
	api.GET("/columns", h.GetColumns, ready)
	api.GET("/top", h.GetTop, ready)
	api.GET("/distribution", h.GetDistribution, ready)
	api.GET("/crosstab", h.GetCrossTab, ready)
	api.GET("/grouped", h.GetGrouped, ready)
	api.GET("/weekly", h.GetWeekly, ready)
	api.GET("/themes", h.GetThemes, ready)
	api.GET("/themes/regional", h.GetRegionalThemes, ready)
	api.GET("/partner", h.GetPartner, ready)
	api.GET("/dashboard", h.GetDashboard, ready)
	api.GET("/insights/:section", h.GetInsight, ready)
	api.POST("/dataset/reload", h.Reload)
}

// requireSession answers 503 until the first dataset has loaded.
func (h *Handler) requireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		s, ok := h.store.Current()
		if !ok {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "dataset is loading")
		}
		c.Set(sessionKey, s)
		return next(c)
	}
}

func session(c echo.Context) *processor.Session {
	return c.Get(sessionKey).(*processor.Session)
}

func getPaginationParams(c echo.Context, defaultLimit int) (int, int) {
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	offset, err := strconv.Atoi(c.QueryParam("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

func queryInt(c echo.Context, name string, def int) int {
	v, err := strconv.Atoi(c.QueryParam(name))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

// requireColumn reads a column query parameter that must name a physical or
// logical column of the session.
func requireColumn(c echo.Context, s *processor.Session, param string) (string, error) {
	name := strings.TrimSpace(c.QueryParam(param))
	if name == "" {
		return "", echo.NewHTTPError(http.StatusBadRequest, "missing "+param)
	}
	if _, ok := s.Aggregator.Column(name); !ok {
		return "", echo.NewHTTPError(http.StatusNotFound, "unknown column "+strconv.Quote(name))
	}
	return name, nil
}

func (h *Handler) Health(c echo.Context) error {
	body := map[string]interface{}{"status": "ok", "dataset_loaded": false}
	if s, ok := h.store.Current(); ok {
		body["dataset_loaded"] = true
		body["session_id"] = s.ID
	}
	return c.JSON(http.StatusOK, body)
}

func (h *Handler) GetSummary(c echo.Context) error {
	return h.section(c, processor.SectionOverview)
}

func (h *Handler) GetColumns(c echo.Context) error {
	s := session(c)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"bindings": s.Columns.Bindings(),
		"profiles": s.Summary.Columns,
	})
}

func (h *Handler) GetTop(c echo.Context) error {
	s := session(c)
	col, err := requireColumn(c, s, "column")
	if err != nil {
		return err
	}
	n := queryInt(c, "n", s.Config.Limits.TopN)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"column": col,
		"groups": s.Aggregator.TopN(col, n),
	})
}

func (h *Handler) GetDistribution(c echo.Context) error {
	s := session(c)
	col, err := requireColumn(c, s, "column")
	if err != nil {
		return err
	}
	limit, offset := getPaginationParams(c, 0)
	return c.JSON(http.StatusOK, types.Paginate(s.Aggregator.Distribution(col), limit, offset))
}

func (h *Handler) GetCrossTab(c echo.Context) error {
	s := session(c)
	row, err := requireColumn(c, s, "row")
	if err != nil {
		return err
	}
	col, err := requireColumn(c, s, "col")
	if err != nil {
		return err
	}
	groups := s.Aggregator.CrossTabulate(row, col, queryInt(c, "cap", 0))
	limit, offset := getPaginationParams(c, 0)
	return c.JSON(http.StatusOK, types.Paginate(groups, limit, offset))
}

func (h *Handler) GetGrouped(c echo.Context) error {
	s := session(c)
	var cols []string
	for _, name := range strings.Split(c.QueryParam("group"), ",") {
		if name = strings.TrimSpace(name); name != "" {
			cols = append(cols, name)
		}
	}
	if len(cols) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "missing group")
	}
	groups := s.Aggregator.FilteredGroup(cols, c.QueryParam("filter_column"), c.QueryParam("pattern"))
	limit, offset := getPaginationParams(c, 0)
	return c.JSON(http.StatusOK, types.Paginate(groups, limit, offset))
}

func (h *Handler) GetWeekly(c echo.Context) error {
	return h.section(c, processor.SectionTrend)
}

func (h *Handler) GetThemes(c echo.Context) error {
	return h.section(c, processor.SectionThemes)
}

func (h *Handler) GetRegionalThemes(c echo.Context) error {
	return c.JSON(http.StatusOK, session(c).RegionalThemes(queryInt(c, "top", 0)))
}

func (h *Handler) GetPartner(c echo.Context) error {
	s := session(c)
	return c.JSON(http.StatusOK, s.Generator.PartnerFor(s.Aggregator, strings.TrimSpace(c.QueryParam("keyword"))))
}

func (h *Handler) GetDashboard(c echo.Context) error {
	return c.JSON(http.StatusOK, processor.BuildDashboard(c.Request().Context(), session(c), h.log))
}

func (h *Handler) GetInsight(c echo.Context) error {
	return h.section(c, c.Param("section"))
}

func (h *Handler) section(c echo.Context, name string) error {
	v, err := session(c).Section(name)
	if errors.Is(err, processor.ErrUnknownSection) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	if err != nil {
		h.log.WithRequest(c.Request()).WithField("section", name).WithField("error", err.Error()).Error("section failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "section failed").SetInternal(err)
	}
	return c.JSON(http.StatusOK, v)
}

// Reload loads another dataset and swaps it in. The previous session keeps
// serving until the new one is complete. Requested paths and URLs are held
// to the reload policy.
func (h *Handler) Reload(c echo.Context) error {
	var src processor.Source
	if err := c.Bind(&src); err != nil {
		return err
	}
	reqLog := h.log.WithRequest(c.Request()).WithField("source", src.String())

	if src.Path == "" && src.URL == "" {
		src = h.reload.Default
	} else {
		checked, err := h.reload.Policy.Check(src)
		if errors.Is(err, processor.ErrSourceNotAllowed) {
			reqLog.WithField("error", err.Error()).Warn("reload refused")
			return echo.NewHTTPError(http.StatusForbidden, "dataset source not allowed")
		}
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		src = checked
	}

	s, err := h.loader.Load(c.Request().Context(), src)
	switch {
	case errors.Is(err, processor.ErrNoSource), errors.Is(err, dataset.ErrUnsupportedFormat):
		reqLog.WithField("error", err.Error()).Warn("reload rejected")
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case err != nil:
		reqLog.WithField("error", err.Error()).Error("reload failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "reload failed").SetInternal(err)
	}

	body := map[string]interface{}{
		"session_id": s.ID,
		"source":     s.Source,
		"rows":       s.Summary.TotalRows,
	}
	if prev := h.store.Replace(s); prev != nil {
		body["replaced"] = prev.ID
	}
	reqLog.WithField("session_id", s.ID).Info("dataset reloaded")
	return c.JSON(http.StatusOK, body)
}
