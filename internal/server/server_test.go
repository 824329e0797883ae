package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/latentscope/pkg/dataset"
	"github.com/matzehuels/latentscope/pkg/explorer"
	"github.com/matzehuels/latentscope/pkg/latent"
	"github.com/matzehuels/latentscope/pkg/recon"
	"github.com/matzehuels/latentscope/pkg/source"
)

const defaultsDoc = `[["zero EOS","one EOS","two EOS","the cat sat EOS"],
[[0,0,0,0,0],[1,1,1,1,1],[2,2,2,2,2],[0,1,2,0,1]]]`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, dataset.DefaultsFile), []byte(defaultsDoc), 0o644); err != nil {
		t.Fatal(err)
	}
	tree := dataset.Build(latent.Dims, latent.Levels, func(path []int) string {
		return fmt.Sprintf("recon %v EOS", path)
	})
	data, err := json.Marshal(tree)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, dataset.SampleFile(3)), data, 0o644); err != nil {
		t.Fatal(err)
	}

	client, err := source.New(dir, source.Options{})
	if err != nil {
		t.Fatalf("source.New: %v", err)
	}
	settings := explorer.Settings{MinRange: 0, MaxRange: 4}
	if err := settings.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(New(client, recon.NewShared(client), Options{Settings: settings}))
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, srv *httptest.Server, path string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, body
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	resp, body := get(t, srv, "/healthz")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), `"ok"`) {
		t.Errorf("healthz = %d %s", resp.StatusCode, body)
	}
	if resp.Header.Get(RequestIDHeader) == "" {
		t.Error("missing request id header")
	}
}

func TestSampleRoutes(t *testing.T) {
	srv := newTestServer(t)

	resp, body := get(t, srv, "/api/samples/3")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	var sample sampleResponse
	if err := json.Unmarshal(body, &sample); err != nil {
		t.Fatal(err)
	}
	if sample.Text != "the cat sat" || fmt.Sprint(sample.Z) != "[0 1 2 0 1]" {
		t.Errorf("sample = %+v", sample)
	}

	resp, body = get(t, srv, "/api/samples/random")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("random sample status = %d: %s", resp.StatusCode, body)
	}
}

func TestReconstructionRoute(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		path   string
		status int
		text   string
	}{
		{"default vector", "/api/samples/3/reconstruction", http.StatusOK, "recon [0 1 2 0 1]"},
		{"explicit vector", "/api/samples/3/reconstruction?z=2,2,2,2,2", http.StatusOK, "recon [2 2 2 2 2]"},
		{"bad vector", "/api/samples/3/reconstruction?z=9,9", http.StatusBadRequest, ""},
		{"out of range", "/api/samples/7/reconstruction", http.StatusBadRequest, ""},
		{"not a number", "/api/samples/x/reconstruction", http.StatusBadRequest, ""},
		{"missing tree", "/api/samples/1/reconstruction", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := get(t, srv, tt.path)
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d: %s", resp.StatusCode, tt.status, body)
			}
			if tt.text == "" {
				var e errorResponse
				if err := json.Unmarshal(body, &e); err != nil || e.Code == "" {
					t.Errorf("error body = %s", body)
				}
				return
			}
			var rr reconstructionResponse
			if err := json.Unmarshal(body, &rr); err != nil {
				t.Fatal(err)
			}
			if rr.Text != tt.text {
				t.Errorf("text = %q, want %q", rr.Text, tt.text)
			}
		})
	}
}

func TestLayoutRoute(t *testing.T) {
	srv := newTestServer(t)

	for _, tt := range []struct {
		query, mode string
	}{
		{"width=1000", "wide"},
		{"width=500", "narrow"},
		{"width=500&first=true", "wide"},
		{"width=-3", "wide"},
	} {
		resp, body := get(t, srv, "/api/layout?"+tt.query)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: status %d", tt.query, resp.StatusCode)
		}
		var l layoutResponse
		if err := json.Unmarshal(body, &l); err != nil {
			t.Fatal(err)
		}
		if l.Mode != tt.mode || len(l.Sliders) != latent.Dims || len(l.Buttons) != 3 {
			t.Errorf("%s: layout = %+v", tt.query, l)
		}
	}

	if resp, _ := get(t, srv, "/api/layout?width=wide"); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("non-numeric width status = %d", resp.StatusCode)
	}
}

func TestAssetRoute(t *testing.T) {
	srv := newTestServer(t)

	resp, body := get(t, srv, "/data/defaults.json")
	if resp.StatusCode != http.StatusOK || string(body) != defaultsDoc {
		t.Errorf("defaults asset = %d %.40s", resp.StatusCode, body)
	}
	if resp, _ := get(t, srv, "/data/9.json"); resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing asset status = %d", resp.StatusCode)
	}
	if resp, _ := get(t, srv, "/data/.hidden"); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("hidden asset status = %d", resp.StatusCode)
	}
}

func TestSettingsAndMetrics(t *testing.T) {
	srv := newTestServer(t)

	_, body := get(t, srv, "/api/settings")
	var st settingsResponse
	if err := json.Unmarshal(body, &st); err != nil {
		t.Fatal(err)
	}
	if st.MaxRange != 4 || st.Dims != latent.Dims || st.ContainerID != explorer.DefaultContainerID {
		t.Errorf("settings = %+v", st)
	}

	_, body = get(t, srv, "/metrics")
	if !strings.Contains(string(body), "latentscope_http_requests_total") {
		t.Error("metrics missing request counter")
	}
}
