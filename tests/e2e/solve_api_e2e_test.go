//go:build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"
)

const pushLevel = "#domain\nhospital\n#levelname\ne2e-push\n#colors\nred: 0, A\n#initial\n+++++\n+0A +\n+++++\n#goal\n+++++\n+  A+\n+++++\n#end\n"

func TestSolveAPI_MainEndpoints(t *testing.T) {
	baseURL := strings.TrimRight(envOr("E2E_BASE_URL", "http://localhost:8080"), "/")
	client := &http.Client{Timeout: 60 * time.Second}

	t.Run("health", func(t *testing.T) {
		status, body := mustJSON(t, client, http.MethodGet, baseURL+"/healthz", nil)
		if status != http.StatusOK {
			t.Fatalf("healthz status=%d body=%s", status, string(body))
		}
	})

	t.Run("malformed level is rejected", func(t *testing.T) {
		status, body := mustJSON(t, client, http.MethodPost, baseURL+"/api/solve", map[string]any{"level": "#domain\n"})
		if status != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d body=%s", status, string(body))
		}
	})

	t.Run("solve run replay kpi", func(t *testing.T) {
		status, solveBody := mustJSON(t, client, http.MethodPost, baseURL+"/api/solve", map[string]any{"level": pushLevel})
		if status != http.StatusOK {
			t.Fatalf("solve status=%d body=%s", status, string(solveBody))
		}
		var solved map[string]any
		if err := json.Unmarshal(solveBody, &solved); err != nil {
			t.Fatalf("unmarshal solve: %v body=%s", err, string(solveBody))
		}
		if solved["solved"] != true {
			t.Fatalf("level not solved: %s", string(solveBody))
		}
		runID, _ := solved["run_id"].(string)
		if runID == "" {
			t.Fatalf("missing run_id: %s", string(solveBody))
		}
		if len(asSlice(solved["actions"])) == 0 {
			t.Fatalf("expected actions: %s", string(solveBody))
		}

		status, runBody := mustJSON(t, client, http.MethodGet, baseURL+"/api/runs/"+runID, nil)
		if status != http.StatusOK {
			t.Fatalf("run status=%d body=%s", status, string(runBody))
		}
		var run map[string]any
		_ = json.Unmarshal(runBody, &run)
		if run["level_name"] != "e2e-push" {
			t.Fatalf("unexpected run: %s", string(runBody))
		}

		status, replayBody := mustJSON(t, client, http.MethodGet, baseURL+"/api/runs/"+runID+"/replay", nil)
		if status != http.StatusOK {
			t.Fatalf("replay status=%d body=%s", status, string(replayBody))
		}
		var rep map[string]any
		_ = json.Unmarshal(replayBody, &rep)
		steps := asSlice(rep["steps"])
		if len(steps) == 0 {
			t.Fatalf("expected replay steps: %s", string(replayBody))
		}
		last := asMap(steps[len(steps)-1])
		if last["goals_left"] != float64(0) {
			t.Fatalf("final step should leave no goals: %s", string(replayBody))
		}

		status, kpiBody := mustJSON(t, client, http.MethodGet, baseURL+"/ops/kpi", nil)
		if status != http.StatusOK {
			t.Fatalf("kpi status=%d body=%s", status, string(kpiBody))
		}
		var kpi map[string]any
		_ = json.Unmarshal(kpiBody, &kpi)
		if n, _ := kpi["solve_success"].(float64); n < 1 {
			t.Fatalf("expected solve_success >= 1: %s", string(kpiBody))
		}
	})

	t.Run("unknown run", func(t *testing.T) {
		status, body := mustJSON(t, client, http.MethodGet, baseURL+"/api/runs/does-not-exist", nil)
		if status != http.StatusNotFound {
			t.Fatalf("expected 404, got %d body=%s", status, string(body))
		}
	})
}

func mustJSON(t *testing.T, client *http.Client, method, url string, body map[string]any) (int, []byte) {
	t.Helper()
	status, respBody, err := doRequest(client, method, url, body)
	if err != nil {
		t.Fatalf("%s %s request failed: %v", method, url, err)
	}
	return status, respBody
}

func doRequest(client *http.Client, method, url string, body map[string]any) (int, []byte, error) {
	var payloadBytes []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, nil, err
		}
		payloadBytes = b
	}

	var lastStatus int
	var lastBody []byte
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		var payload io.Reader
		if len(payloadBytes) > 0 {
			payload = bytes.NewReader(payloadBytes)
		}
		req, err := http.NewRequest(method, url, payload)
		if err != nil {
			return 0, nil, err
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
			time.Sleep(time.Duration(attempt+1) * 200 * time.Millisecond)
			continue
		}
		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			time.Sleep(time.Duration(attempt+1) * 200 * time.Millisecond)
			continue
		}
		lastStatus, lastBody, lastErr = resp.StatusCode, respBody, nil
		if resp.StatusCode >= 500 {
			time.Sleep(time.Duration(attempt+1) * 200 * time.Millisecond)
			continue
		}
		return resp.StatusCode, respBody, nil
	}
	if lastErr != nil {
		return 0, nil, lastErr
	}
	return lastStatus, lastBody, nil
}

func envOr(k, def string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	return v
}

func asMap(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

func asSlice(v any) []any {
	if s, ok := v.([]any); ok {
		return s
	}
	return nil
}
