package cmd

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestRootHelp(t *testing.T) {
	out, err := execute(t, "--help")
	require.NoError(t, err)
	require.Contains(t, out, "brewvote server")

	_, err = execute(t, "--invalid-flag")
	require.ErrorContains(t, err, "unknown flag: --invalid-flag")
}

func TestRootFlagsAndSubcommands(t *testing.T) {
	root := newRootCommand()
	for _, flag := range []string{"config", "log-level", "log-format"} {
		require.NotNil(t, root.PersistentFlags().Lookup(flag), flag)
	}

	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "migrate", "version", "healthcheck"} {
		require.True(t, names[want], want)
	}

	serve, _, err := root.Find([]string{"serve"})
	require.NoError(t, err)
	require.NotNil(t, serve.Flags().Lookup("host"))
	require.NotNil(t, serve.Flags().Lookup("port"))
}

func TestVersionCommand(t *testing.T) {
	origVersion, origCommit := Version, GitCommit
	t.Cleanup(func() { Version, GitCommit = origVersion, origCommit })
	Version, GitCommit = "1.0.0", "abc123"

	out, err := execute(t, "version")
	require.NoError(t, err)
	require.Contains(t, out, "Version:    1.0.0")
	require.Contains(t, out, "Git commit: abc123")
}

func TestMigrateRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := execute(t, "migrate", "version")
	require.ErrorContains(t, err, "DATABASE_URL")
}

func TestServeFailsWithoutConfig(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")

	_, err := execute(t, "serve")
	require.ErrorContains(t, err, "config error")
}

func TestCheckHealth(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"healthy", http.StatusOK, `{"status":"healthy"}`, ""},
		{"degraded body", http.StatusOK, `{"status":"unhealthy"}`, "status=unhealthy"},
		{"bad status", http.StatusServiceUnavailable, `{"status":"unhealthy"}`, "status 503"},
		{"garbage", http.StatusOK, `not json`, "parse health response"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			t.Cleanup(srv.Close)

			err := checkHealth(context.Background(), srv.Client(), srv.URL)
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tc.wantErr)
		})
	}
}
