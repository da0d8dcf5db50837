package command

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/yndnr/issuemesh-go/internal/core/hub"
	"github.com/yndnr/issuemesh-go/internal/core/service"
	"github.com/yndnr/issuemesh-go/internal/server/httpserver"
	"github.com/yndnr/issuemesh-go/internal/server/wsserver"
	"github.com/yndnr/issuemesh-go/internal/storage/memory"
	"github.com/yndnr/issuemesh-go/internal/storage/snapshot"
)

// testServer is a complete issuemesh server on an httptest listener.
type testServer struct {
	*httptest.Server
	svc *service.IssueService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	snapshots, err := snapshot.NewManager(snapshot.Config{Path: filepath.Join(t.TempDir(), "issues.json")})
	if err != nil {
		t.Fatal(err)
	}
	doc, err := snapshots.Load()
	if err != nil {
		t.Fatal(err)
	}

	svc := service.NewIssueService(memory.New(doc), snapshots, hub.New(nil))
	svc.Start()

	ws := wsserver.New(svc, wsserver.Config{})
	cfg := httpserver.DefaultRouterConfig()
	cfg.Issues = svc
	cfg.WebSocket = ws
	cfg.EnableAudit = false
	srv := httptest.NewServer(httpserver.NewRouter(cfg))

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = ws.Shutdown(ctx)
		srv.Close()
		_ = svc.Stop(ctx)
	})
	return &testServer{Server: srv, svc: svc}
}

// createIssue adds an issue directly through the service.
func (ts *testServer) createIssue(t *testing.T, title, by string) int64 {
	t.Helper()
	is, err := ts.svc.CreateIssue(context.Background(), &service.CreateIssueRequest{Title: title, CreatedBy: by})
	if err != nil {
		t.Fatal(err)
	}
	return is.ID
}

// runCLI runs the app against server with an isolated CLI config file and
// returns what it printed.
func runCLI(t *testing.T, server string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	app := App()
	app.Writer = &out
	app.ErrWriter = &out

	full := []string{"issuemesh-cli", "--config", filepath.Join(t.TempDir(), "cli.yaml")}
	if server != "" {
		full = append(full, "--server", server)
	}
	full = append(full, args...)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := app.RunContext(ctx, full)
	return out.String(), err
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0600)
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
