package cli

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rileyhilliard/pvdash/internal/telemetry"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

// resetGlobals restores every flag when t ends. cobra keeps flag values
// (including --help) between Execute calls on the shared rootCmd.
func resetGlobals(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		resetFlags(rootCmd)
	})
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// runCLI executes args against the real command tree.
func runCLI(t *testing.T, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	resetGlobals(t)
	var out, errOut bytes.Buffer
	code = run(args, &out, &errOut)
	return out.String(), errOut.String(), code
}

// newUpstream serves both telemetry endpoints with fixed payloads.
func newUpstream(t *testing.T, events map[string]string, state string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case telemetry.LastEventPath:
			id := r.URL.Query().Get("id")
			body, ok := events[id]
			if !ok {
				body = fmt.Sprintf(`{"vehicle": %q, "ts": null, "distance_m": null, "status": "no_data"}`, id)
			}
			fmt.Fprint(w, body)
		case telemetry.ControllerStatePath:
			fmt.Fprint(w, state)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

// writeTestConfig writes a two-vehicle config pointing both upstreams at
// baseURL and returns its path.
func writeTestConfig(t *testing.T, baseURL string) string {
	t.Helper()
	content := fmt.Sprintf(`version: 1
upstream:
  server: %[1]s
  controller: %[1]s
vehicles:
  - id: AMB001
    label: Ambulance
    color: "#60a5fa"
  - id: FIRT001
    label: Firetruck
    color: "#22c55e"
classify:
  threshold: 200
fetch:
  timeout: 2s
schedule:
  normal_interval: 500ms
  slow_interval: 1s
dashboard:
  color: never
`, baseURL)
	path := filepath.Join(t.TempDir(), ".pvdash.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// chdir switches into dir for the duration of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(orig) })
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
