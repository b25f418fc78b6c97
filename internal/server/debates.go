package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/mohammad-safakhou/bullbear/config"
	"github.com/mohammad-safakhou/bullbear/internal/debate"
	"github.com/mohammad-safakhou/bullbear/internal/runtime"
	"github.com/mohammad-safakhou/bullbear/internal/store"
)

// DebatesHandler runs debate sessions over HTTP and serves stored results.
type DebatesHandler struct {
	Store         *store.Store
	Oracle        debate.Oracle
	Research      debate.ResearchProvider
	Debate        config.DebateConfig
	StreamEnabled bool

	logger *log.Logger
}

func (h *DebatesHandler) Register(g *echo.Group, secret []byte) {
	h.logger = log.New(log.Writer(), "[DEBATES] ", log.LstdFlags)
	g.Use(runtime.EchoAuthMiddleware(secret))
	g.POST("", h.run)
	g.GET("", h.list)
	g.GET("/:id", h.get)
	g.POST("/stream", h.stream)
}

func (h *DebatesHandler) newOrchestrator() *debate.Orchestrator {
	return debate.NewOrchestrator(debate.Options{
		Oracle:   h.Oracle,
		Research: h.Research,
		Limits: debate.Limits{
			Earnings:    h.Debate.EarningsLimit,
			Insider:     h.Debate.InsiderLimit,
			Holdings:    h.Debate.HoldingsLimit,
			Reports:     h.Debate.ReportsLimit,
			Transcripts: h.Debate.TranscriptsLimit,
			Filings:     h.Debate.FilingsLimit,
		},
		HistoryPreviewLen: h.Debate.HistoryPreviewLen,
		Diagnostics:       debate.NewDiagnostics(),
	})
}

func (h *DebatesHandler) newState(req DebateRequest) (*debate.State, error) {
	ticker := strings.ToUpper(strings.TrimSpace(req.Ticker))
	if ticker == "" {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "ticker required")
	}
	rounds := req.Rounds
	if rounds <= 0 {
		rounds = h.Debate.MaxRounds
	}
	return debate.New(ticker, strings.TrimSpace(req.Question), rounds), nil
}

func (h *DebatesHandler) run(c echo.Context) error {
	var req DebateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	st, err := h.newState(req)
	if err != nil {
		return err
	}
	if err := h.newOrchestrator().Run(c.Request().Context(), st); err != nil {
		var te *debate.TurnError
		if errors.As(err, &te) {
			return echo.NewHTTPError(http.StatusBadGateway, fmt.Sprintf("debate aborted at %s: %v", te.Actor, te.Err))
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	rec := st.Export()
	h.persist(c, rec)
	return c.JSON(http.StatusOK, rec)
}

func (h *DebatesHandler) persist(c echo.Context, rec debate.ExportRecord) {
	userID, _ := c.Get("user_id").(string)
	if h.Store == nil || userID == "" {
		return
	}
	if err := h.Store.SaveDebate(c.Request().Context(), userID, rec); err != nil {
		// persistence is reporting only, the caller still gets the result
		h.logger.Printf("save debate %s: %v", rec.ID, err)
	}
}

func (h *DebatesHandler) list(c echo.Context) error {
	if h.Store == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "store not configured")
	}
	userID, _ := c.Get("user_id").(string)
	out, err := h.Store.ListDebates(c.Request().Context(), userID, 50)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if out == nil {
		out = []store.DebateSummary{}
	}
	return c.JSON(http.StatusOK, out)
}

func (h *DebatesHandler) get(c echo.Context) error {
	if h.Store == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "store not configured")
	}
	userID, _ := c.Get("user_id").(string)
	rec, err := h.Store.GetDebate(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "debate not found")
	}
	return c.JSON(http.StatusOK, rec)
}

// stream runs a debate and emits one SSE event per completed turn, then a
// final result event.
func (h *DebatesHandler) stream(c echo.Context) error {
	if !h.StreamEnabled {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "debate stream disabled")
	}
	var req DebateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	st, err := h.newState(req)
	if err != nil {
		return err
	}

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set(echo.HeaderCacheControl, "no-cache")
	resp.Header().Set("Connection", "keep-alive")
	resp.WriteHeader(http.StatusOK)
	flusher, ok := resp.Writer.(http.Flusher)
	if !ok {
		return echo.NewHTTPError(http.StatusInternalServerError, "streaming unsupported")
	}

	emit := func(event string, payload interface{}) {
		data, err := json.Marshal(payload)
		if err != nil {
			return
		}
		fmt.Fprintf(resp, "event: %s\ndata: %s\n\n", event, data)
		flusher.Flush()
	}

	runErr := h.newOrchestrator().RunStream(c.Request().Context(), st, func(ev debate.TurnEvent) {
		emit("turn", map[string]interface{}{
			"actor":       ev.Actor,
			"participant": ev.Participant,
			"round":       st.Round,
			"next":        st.Next,
			"arguments":   ev.Delta.Arguments,
			"fact_checks": ev.Delta.FactChecks,
			"verdict":     ev.Delta.Verdict,
			"errors":      ev.Delta.Errors,
		})
	})
	if runErr != nil {
		emit("error", map[string]string{"error": runErr.Error()})
		return nil
	}
	rec := st.Export()
	h.persist(c, rec)
	emit("result", rec)
	return nil
}
