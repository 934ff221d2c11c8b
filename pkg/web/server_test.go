package web

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/visagekit/visage/pkg/analysis"
	"github.com/visagekit/visage/pkg/detect"
	"github.com/visagekit/visage/pkg/frame"
	"github.com/visagekit/visage/pkg/health"
	"github.com/visagekit/visage/pkg/measure"
	"github.com/visagekit/visage/pkg/metrics"
	"github.com/visagekit/visage/pkg/storage"
)

type stubDetector struct{}

func (stubDetector) Detect(frame.Frame) ([]detect.Region, error) { return nil, nil }
func (stubDetector) Close() error                                { return nil }

type stubExtractor struct{}

func (stubExtractor) Extract(frame.Frame, detect.Region) (measure.Bundle, error) {
	return measure.Bundle{}, nil
}

func newTestServer() *Server {
	m := metrics.New()
	session := analysis.NewSession(3 * time.Second)
	worker := analysis.NewWorker(
		frame.NewSlot(), stubDetector{}, stubExtractor{},
		storage.NewQueue(), m, session)
	return NewServer("0", worker, session, m)
}

func get(t *testing.T, s *Server, path string) (int, []byte) {
	t.Helper()
	resp, err := s.app.Test(httptest.NewRequest("GET", path, nil))
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, body
}

func TestStatusEndpoint(t *testing.T) {
	s := newTestServer()

	code, body := get(t, s, "/api/status")
	if code != 200 {
		t.Fatalf("status code = %d, want 200", code)
	}

	var p statusPayload
	if err := json.Unmarshal(body, &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.FaceDetected {
		t.Error("no analysis has run, face_detected must be false")
	}
	if p.Result != nil {
		t.Error("no analysis has run, result must be omitted")
	}
	if p.Session.State != "idle" {
		t.Errorf("session state = %q, want idle", p.Session.State)
	}
}

func TestTrendsEndpointEmpty(t *testing.T) {
	s := newTestServer()

	code, body := get(t, s, "/api/trends")
	if code != 200 {
		t.Fatalf("status code = %d, want 200", code)
	}
	var trends map[string]string
	if err := json.Unmarshal(body, &trends); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(trends) != 0 {
		t.Errorf("no history yet, got trends %v", trends)
	}
}

func TestHistoryEndpointUnknownMetric(t *testing.T) {
	s := newTestServer()

	if code, _ := get(t, s, "/api/history/blood_pressure"); code != 404 {
		t.Errorf("unknown metric status = %d, want 404", code)
	}
	if code, _ := get(t, s, "/api/history/"+health.MetricSymmetry); code != 200 {
		t.Errorf("known metric status = %d, want 200", code)
	}
}

func TestCaptureEndpointArmsSession(t *testing.T) {
	s := newTestServer()

	resp, err := s.app.Test(httptest.NewRequest("POST", "/api/capture", nil))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Fatalf("status code = %d, want 200", resp.StatusCode)
	}

	var out struct {
		Armed bool   `json:"armed"`
		State string `json:"state"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if !out.Armed || out.State != "armed" {
		t.Errorf("capture response = %+v, want armed", out)
	}

	// Arming twice is rejected while the countdown runs.
	resp2, err := s.app.Test(httptest.NewRequest("POST", "/api/capture", nil))
	if err != nil {
		t.Fatal(err)
	}
	defer resp2.Body.Close()
	if err := json.NewDecoder(resp2.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.Armed {
		t.Error("second trigger while armed should report armed=false")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer()
	code, body := get(t, s, "/metrics")
	if code != 200 {
		t.Fatalf("status code = %d, want 200", code)
	}
	if len(body) == 0 {
		t.Error("scrape output is empty")
	}
}
