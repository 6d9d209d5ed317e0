//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

const (
	ProviderName = "fulfillment-api"
	ConsumerName = "order-tracker"

	StateOrderReady   = "order ord-pact-ready is READY"
	StateOrderMissing = "no order with id ord-pact-missing"
)

const (
	ReadyOrderID   = "ord-pact-ready"
	MissingOrderID = "ord-pact-missing"
	CustomerID     = "cust-pact"

	// BearerToken is an example value. The provider verifies with a verifier that accepts any token.
	BearerToken = "pact-token"
)

// ReadyAt is the milestone recorded for the seeded READY order.
var ReadyAt = time.Date(2024, 6, 12, 10, 0, 0, 0, time.UTC)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the pact file written by the order tracker consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
