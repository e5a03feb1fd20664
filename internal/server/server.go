// Package server exposes a measurement control over HTTP. A REST API
// drives the drawing subsystem and a websocket streams label updates.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/philipparndt/gomeasure/internal/control"
	"github.com/philipparndt/gomeasure/internal/logging"
	"github.com/philipparndt/gomeasure/pkg/analysis"
	"github.com/philipparndt/gomeasure/pkg/draw"
	"github.com/philipparndt/gomeasure/pkg/maplayer"
	"github.com/philipparndt/gomeasure/pkg/units"
	"github.com/philipparndt/gomeasure/pkg/viewer"
)

// Server is the HTTP bridge of one control attached to an in-memory host
type Server struct {
	control *control.Control
	draw    *draw.Draw
	host    *maplayer.Map
	hub     *Hub
	logger  *slog.Logger
	engine  *gin.Engine
	off     func()
}

// UnitsRequest changes one or both units
type UnitsRequest struct {
	Length units.Unit `json:"length,omitempty"`
	Area   units.Unit `json:"area,omitempty"`
}

// ModeRequest changes the drawing mode
type ModeRequest struct {
	Mode draw.Mode `json:"mode" binding:"required"`
}

// VertexRequest moves one vertex
type VertexRequest struct {
	Coordinates orb.Point `json:"coordinates"`
}

// SkippedResponse describes a feature that could not be measured
type SkippedResponse struct {
	FeatureID string `json:"featureId,omitempty"`
	Index     int    `json:"index"`
	Error     string `json:"error"`
}

// LabelsResponse is returned by GET /api/labels
type LabelsResponse struct {
	Labels  *geojson.FeatureCollection `json:"labels"`
	Skipped []SkippedResponse          `json:"skipped"`
}

// New creates a server for ctl, which must be attached to host. Label
// source updates on host are pushed to websocket clients.
func New(ctl *control.Control, host *maplayer.Map, logger *slog.Logger) *Server {
	s := &Server{
		control: ctl,
		draw:    ctl.Draw(),
		host:    host,
		logger:  logging.OrNop(logger),
	}
	s.hub = NewHub(s.logger)

	// runs while the control holds its lock, so it must not call back into it
	s.off = host.OnSourceData(func(id string, fc *geojson.FeatureCollection) {
		if id != control.LabelSourceID {
			return
		}
		msg, err := json.Marshal(fc)
		if err != nil {
			s.logger.Error("failed to encode labels", "error", err)
			return
		}
		s.hub.Broadcast(msg)
	})

	s.engine = gin.New()
	s.engine.Use(gin.Recovery(), s.requestLogger())
	s.setupRoutes(s.engine)
	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Hub returns the websocket hub
func (s *Server) Hub() *Hub {
	return s.hub
}

// Close stops streaming label updates and disconnects websocket clients
func (s *Server) Close() {
	if s.off != nil {
		s.off()
		s.off = nil
	}
	s.hub.Close()
}

// Run serves on addr until ctx is cancelled
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	s.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}
	return nil
}

func (s *Server) setupRoutes(r *gin.Engine) {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"state":   s.control.State().String(),
		})
	})

	api := r.Group("/api")
	{
		api.GET("/features", s.getFeatures)
		api.POST("/features", s.addFeatures)
		api.PUT("/features", s.setFeatures)
		api.DELETE("/features", s.clear)
		api.PUT("/features/:id", s.updateFeature)
		api.DELETE("/features/:id", s.deleteFeature)
		api.PATCH("/features/:id/vertices/:index", s.dragVertex)
		api.POST("/features/:id/finish", s.finishDrag)

		api.GET("/labels", s.getLabels)
		api.POST("/refresh", s.refresh)
		api.GET("/units", s.getUnits)
		api.PUT("/units", s.setUnits)
		api.GET("/mode", s.getMode)
		api.PUT("/mode", s.setMode)
		api.GET("/panel", s.getPanel)
		api.POST("/buttons/:kind", s.press)
		api.GET("/analysis", s.getAnalysis)
		api.GET("/snapshot.png", s.snapshot)
	}

	r.GET("/ws/labels", s.streamLabels)
}

func (s *Server) getFeatures(c *gin.Context) {
	c.JSON(http.StatusOK, s.draw.GetAll())
}

func (s *Server) addFeatures(c *gin.Context) {
	fc, ok := s.readGeoJSON(c)
	if !ok {
		return
	}

	ids := make([]string, 0, len(fc.Features))
	for _, f := range fc.Features {
		id, err := s.draw.Add(f.Geometry)
		if err != nil {
			s.fail(c, err)
			return
		}
		ids = append(ids, id)
	}
	c.JSON(http.StatusCreated, gin.H{"ids": ids})
}

func (s *Server) setFeatures(c *gin.Context) {
	fc, ok := s.readGeoJSON(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"ids": s.draw.Set(fc)})
}

func (s *Server) updateFeature(c *gin.Context) {
	fc, ok := s.readGeoJSON(c)
	if !ok {
		return
	}
	if len(fc.Features) != 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "expected exactly one geometry"})
		return
	}
	if err := s.draw.Update(c.Param("id"), fc.Features[0].Geometry); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) deleteFeature(c *gin.Context) {
	if err := s.draw.Delete(c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) clear(c *gin.Context) {
	if err := s.control.Clear(); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) dragVertex(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid vertex index"})
		return
	}
	var req VertexRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	if err := s.draw.DragVertex(c.Param("id"), index, req.Coordinates); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) finishDrag(c *gin.Context) {
	if err := s.draw.FinishDrag(c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) getLabels(c *gin.Context) {
	labels := s.control.Labels()
	resp := LabelsResponse{
		Labels:  labels.FeatureCollection(),
		Skipped: make([]SkippedResponse, 0, len(labels.Skipped)),
	}
	for _, sk := range labels.Skipped {
		resp.Skipped = append(resp.Skipped, SkippedResponse{
			FeatureID: sk.FeatureID,
			Index:     sk.Index,
			Error:     sk.Err.Error(),
		})
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) refresh(c *gin.Context) {
	if err := s.control.Refresh(); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) getUnits(c *gin.Context) {
	c.JSON(http.StatusOK, s.control.Selection())
}

func (s *Server) setUnits(c *gin.Context) {
	var req UnitsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	if req.Length != "" {
		if err := s.control.SelectLengthUnit(req.Length); err != nil {
			s.fail(c, err)
			return
		}
	}
	if req.Area != "" {
		if err := s.control.SelectAreaUnit(req.Area); err != nil {
			s.fail(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, s.control.Selection())
}

func (s *Server) getMode(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"mode": s.draw.Mode()})
}

func (s *Server) setMode(c *gin.Context) {
	var req ModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	if err := s.draw.ChangeMode(req.Mode); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"mode": s.draw.Mode()})
}

func (s *Server) getPanel(c *gin.Context) {
	c.JSON(http.StatusOK, s.control.Panel())
}

func (s *Server) press(c *gin.Context) {
	kind, err := control.ParseButton(c.Param("kind"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err := s.control.Press(kind); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s.control.Panel())
}

func (s *Server) getAnalysis(c *gin.Context) {
	c.JSON(http.StatusOK, analysis.AnalyzeDrawing(s.draw.GetAll(), nil))
}

func (s *Server) snapshot(c *gin.Context) {
	opts := viewer.DefaultOptions()
	opts.Width = queryInt(c, "width", opts.Width)
	opts.Height = queryInt(c, "height", opts.Height)

	img, err := viewer.Render(s.host, opts)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Type", "image/png")
	if err := viewer.WritePNG(c.Writer, img); err != nil {
		s.logger.Error("failed to write snapshot", "error", err)
	}
}

func (s *Server) streamLabels(c *gin.Context) {
	var initial []byte
	if src, ok := s.host.GetSource(control.LabelSourceID); ok {
		data, err := json.Marshal(src.Data())
		if err == nil {
			initial = data
		}
	}
	if err := s.hub.Serve(c.Writer, c.Request, initial); err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
	}
}

// readGeoJSON parses the request body as a feature collection, a feature
// or a bare geometry
func (s *Server) readGeoJSON(c *gin.Context) (*geojson.FeatureCollection, bool) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
		return nil, false
	}
	fc, err := draw.Parse(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	return fc, true
}

// fail maps err to a status code
func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, draw.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, units.ErrUnknownUnit), errors.Is(err, units.ErrIncompatibleUnits):
		status = http.StatusBadRequest
	case errors.Is(err, control.ErrDetached):
		status = http.StatusGone
	case errors.Is(err, control.ErrRendererNotReady):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func queryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return v
}
