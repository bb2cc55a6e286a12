package httpserver

import (
	"errors"
	"log"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"

	"github.com/chanuu123/Dial-100-Automation/internal/report"
)

// Server bundles the report-summarization routes and dependencies.
type Server struct {
	reportsDir string
	model      report.Completer
}

// New constructs the HTTP server with routes.
func New(reportsDir string, model report.Completer) *echo.Echo {
	s := &Server{reportsDir: reportsDir, model: model}

	e := newEcho()
	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/incident", s.handleIncident)
	return e
}

// handleIncident classifies one transcript (the newest, or ?file=) into a
// structured dispatch summary.
func (s *Server) handleIncident(c echo.Context) error {
	path := c.QueryParam("file")
	if path == "" {
		latest, err := report.Latest(s.reportsDir)
		if err != nil {
			log.Printf("incident: %v", err)
			return c.JSON(http.StatusNotFound, map[string]string{"error": "no transcript available"})
		}
		path = latest
	}

	f, err := os.Open(path)
	if err != nil {
		log.Printf("incident: open %s: %v", path, err)
		return c.JSON(http.StatusNotFound, map[string]string{"error": "transcript not found"})
	}
	defer f.Close()

	turns, err := report.ParseTranscript(f)
	if err != nil || len(turns) == 0 {
		log.Printf("incident: parse %s: %v", path, err)
		return c.JSON(http.StatusOK, map[string]string{"error": "Failed to parse incident"})
	}

	incident, err := report.Summarize(c.Request().Context(), s.model, report.FormatTurns(turns))
	if err != nil {
		if errors.Is(err, report.ErrParse) {
			return c.JSON(http.StatusOK, map[string]string{"error": "Failed to parse incident"})
		}
		log.Printf("incident: summarize: %v", err)
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "summarization unavailable"})
	}
	return c.JSON(http.StatusOK, incident)
}
