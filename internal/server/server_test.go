package server

import (
	"bytes"
	"encoding/json"
	"image/png"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/philipparndt/gomeasure/internal/control"
	"github.com/philipparndt/gomeasure/pkg/draw"
	"github.com/philipparndt/gomeasure/pkg/maplayer"
	"github.com/philipparndt/gomeasure/pkg/units"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var metersPerDegree = orb.EarthRadius * math.Pi / 180

func squareKm() orb.Polygon {
	d := 1000 / metersPerDegree
	return orb.Polygon{orb.Ring{{0, 0}, {d, 0}, {d, d}, {0, d}, {0, 0}}}
}

func newServer(t *testing.T) *Server {
	t.Helper()
	host := maplayer.NewMap()
	host.Load()

	ctl, err := control.New(draw.New(), control.Options{
		DebounceWindow:    10 * time.Millisecond,
		DefaultLengthUnit: units.Meters,
		DefaultAreaUnit:   units.SquareKilometers,
	})
	require.NoError(t, err)
	_, err = ctl.Attach(host)
	require.NoError(t, err)

	s := New(ctl, host, nil)
	t.Cleanup(func() {
		s.Close()
		_ = ctl.Detach()
	})
	return s
}

func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func labels(t *testing.T, s *Server) LabelsResponse {
	t.Helper()
	w := do(t, s, http.MethodGet, "/api/labels", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp LabelsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func measurements(fc *geojson.FeatureCollection) []string {
	out := make([]string, 0, len(fc.Features))
	for _, f := range fc.Features {
		out = append(out, f.Properties.MustString("measurement", ""))
	}
	return out
}

func TestPing(t *testing.T) {
	s := newServer(t)
	w := do(t, s, http.MethodGet, "/ping", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"pong","state":"active"}`, w.Body.String())
}

func TestAddFeatureAndChangeUnits(t *testing.T) {
	s := newServer(t)

	w := do(t, s, http.MethodPost, "/api/features", geojson.NewGeometry(squareKm()))
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		IDs []string `json:"ids"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.Len(t, created.IDs, 1)

	assert.Equal(t, []string{"1.00 km2"}, measurements(labels(t, s).Labels))

	w = do(t, s, http.MethodPut, "/api/units", UnitsRequest{Area: units.Hectares})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"length":"m","area":"ha"}`, w.Body.String())
	assert.Equal(t, []string{"100.00 ha"}, measurements(labels(t, s).Labels))

	w = do(t, s, http.MethodGet, "/api/features", nil)
	require.Equal(t, http.StatusOK, w.Code)
	fc, err := geojson.UnmarshalFeatureCollection(w.Body.Bytes())
	require.NoError(t, err)
	require.Len(t, fc.Features, 1)
	assert.Equal(t, created.IDs[0], fc.Features[0].ID)
}

func TestSetUnitsRejectsUnknownUnit(t *testing.T) {
	s := newServer(t)

	w := do(t, s, http.MethodPut, "/api/units", `{"length":"parsec"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodPut, "/api/units", `{"length":"ha"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodGet, "/api/units", nil)
	assert.JSONEq(t, `{"length":"m","area":"km2"}`, w.Body.String())
}

func TestInvalidGeoJSON(t *testing.T) {
	s := newServer(t)
	w := do(t, s, http.MethodPost, "/api/features", `{"foo":1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFeatureNotFound(t *testing.T) {
	s := newServer(t)

	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodDelete, "/api/features/nope", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodPost, "/api/features/nope/finish", nil).Code)
	assert.Equal(t, http.StatusNotFound,
		do(t, s, http.MethodPut, "/api/features/nope", geojson.NewGeometry(squareKm())).Code)
}

func TestUpdateAndDeleteFeature(t *testing.T) {
	s := newServer(t)
	id, err := s.draw.Add(orb.LineString{{0, 0}, {0.01, 0}})
	require.NoError(t, err)
	require.Len(t, labels(t, s).Labels.Features, 1)

	w := do(t, s, http.MethodPut, "/api/features/"+id,
		geojson.NewGeometry(orb.LineString{{0, 0}, {0.01, 0}, {0.01, 0.01}}))
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Len(t, labels(t, s).Labels.Features, 2)

	w = do(t, s, http.MethodDelete, "/api/features/"+id, nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, labels(t, s).Labels.Features)
}

func TestDragVertex(t *testing.T) {
	s := newServer(t)
	id, err := s.draw.Add(orb.LineString{{0, 0}, {0.01, 0}})
	require.NoError(t, err)
	before := measurements(labels(t, s).Labels)

	w := do(t, s, http.MethodPatch, "/api/features/"+id+"/vertices/1", VertexRequest{Coordinates: orb.Point{0.02, 0}})
	require.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, s, http.MethodPost, "/api/features/"+id+"/finish", nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.NotEqual(t, before, measurements(labels(t, s).Labels))

	w = do(t, s, http.MethodPatch, "/api/features/"+id+"/vertices/x", VertexRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestClearFeatures(t *testing.T) {
	s := newServer(t)
	_, err := s.draw.Add(squareKm())
	require.NoError(t, err)

	w := do(t, s, http.MethodDelete, "/api/features", nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 0, s.draw.Len())
	assert.Empty(t, labels(t, s).Labels.Features)
}

func TestSetFeaturesReplacesDrawing(t *testing.T) {
	s := newServer(t)
	_, err := s.draw.Add(squareKm())
	require.NoError(t, err)

	fc := geojson.NewFeatureCollection()
	line := geojson.NewFeature(orb.LineString{{0, 0}, {0.01, 0}})
	line.ID = "a"
	fc.Append(line)

	w := do(t, s, http.MethodPut, "/api/features", fc)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ids":["a"]}`, w.Body.String())
	assert.Equal(t, 1, s.draw.Len())
}

func TestModeAndButtons(t *testing.T) {
	s := newServer(t)

	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodPut, "/api/mode", ModeRequest{Mode: "bogus"}).Code)

	w := do(t, s, http.MethodPut, "/api/mode", ModeRequest{Mode: draw.ModeDrawLineString})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"mode":"draw_line_string"}`, w.Body.String())

	w = do(t, s, http.MethodPost, "/api/buttons/area", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var panel map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &panel))
	assert.Equal(t, true, panel["area"].(map[string]any)["visible"])
	assert.Equal(t, false, panel["length"].(map[string]any)["visible"])
	assert.Equal(t, draw.ModeDrawPolygon, s.draw.Mode())

	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodPost, "/api/buttons/bogus", nil).Code)
}

func TestPanel(t *testing.T) {
	s := newServer(t)
	w := do(t, s, http.MethodGet, "/api/panel", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Measure distance")
	assert.Contains(t, w.Body.String(), `"kind":"length"`)
}

func TestAnalysisAndSnapshot(t *testing.T) {
	s := newServer(t)
	_, err := s.draw.Add(squareKm())
	require.NoError(t, err)

	w := do(t, s, http.MethodGet, "/api/analysis", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"PolygonCount":1`)

	w = do(t, s, http.MethodGet, "/api/snapshot.png?width=50&height=40", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	img, err := png.Decode(w.Body)
	require.NoError(t, err)
	assert.Equal(t, 50, img.Bounds().Dx())
	assert.Equal(t, 40, img.Bounds().Dy())
}

func TestRefreshAfterDetach(t *testing.T) {
	s := newServer(t)
	require.NoError(t, s.control.Detach())

	assert.Equal(t, http.StatusGone, do(t, s, http.MethodPost, "/api/refresh", nil).Code)
}

func TestLabelStream(t *testing.T) {
	s := newServer(t)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/labels"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, initial, err := conn.ReadMessage()
	require.NoError(t, err)
	fc, err := geojson.UnmarshalFeatureCollection(initial)
	require.NoError(t, err)
	assert.Empty(t, fc.Features)

	_, err = s.draw.Add(squareKm())
	require.NoError(t, err)

	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	fc, err = geojson.UnmarshalFeatureCollection(msg)
	require.NoError(t, err)
	assert.Equal(t, []string{"1.00 km2"}, measurements(fc))
	assert.Equal(t, 1, s.Hub().Len())
}
