//go:build integration
// +build integration

package integration

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/danieljhkim/docmerge/internal/docserver"
	"github.com/danieljhkim/docmerge/internal/engine"
	"github.com/danieljhkim/docmerge/internal/metrics"
	"github.com/danieljhkim/docmerge/internal/remote"
	"github.com/danieljhkim/docmerge/internal/store"
)

// service is a document service running on a loopback port over a badger
// store on disk.
type service struct {
	URL      string
	Store    store.Store
	Registry *prometheus.Registry
}

func startService(t *testing.T) *service {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	st, err := store.OpenBadgerStore(store.BadgerConfig{
		Path:       filepath.Join(t.TempDir(), "badger"),
		SyncWrites: true,
	}, store.Options{Metrics: m})
	if err != nil {
		t.Fatalf("failed to open badger store: %v", err)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}

	srv := docserver.New(docserver.Config{Store: st, Metrics: m, Gatherer: reg})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("document service stopped with error: %v", err)
			}
		case <-time.After(10 * time.Second):
			t.Error("document service did not shut down")
		}
		_ = st.Close()
	})

	return &service{
		URL:      "http://" + ln.Addr().String(),
		Store:    st,
		Registry: reg,
	}
}

// newRemoteEngine returns an engine talking to svc over HTTP.
func newRemoteEngine(t *testing.T, svc *service) *engine.Engine {
	t.Helper()
	c, err := remote.NewClient(svc.URL)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return engine.New(c)
}
