package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"todo/internal/config"
	"todo/internal/storage"
)

// runCLI executes one command line against open and returns what it printed.
func runCLI(t *testing.T, open OpenFunc, args ...string) (string, error) {
	t.Helper()
	return runCLIContext(context.Background(), t, open, args...)
}

func runCLIContext(ctx context.Context, t *testing.T, open OpenFunc, args ...string) (string, error) {
	t.Helper()
	loader := config.NewLoader().WithConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	root := NewRootCommand(loader, open)

	var out, errOut bytes.Buffer
	root.SetOutput(&out, &errOut)
	root.SetArgs(append([]string{"--no-color"}, args...))

	err := root.ExecuteContext(ctx)
	return out.String(), err
}

// mustRun fails the test when the command fails
func mustRun(t *testing.T, open OpenFunc, args ...string) string {
	t.Helper()
	out, err := runCLI(t, open, args...)
	if err != nil {
		t.Fatalf("todo %v: %v", args, err)
	}
	return out
}

type failingStorage struct {
	*storage.MemoryStorage
}

func (f *failingStorage) SetItem(ctx context.Context, key string, value []byte) error {
	return assert.AnError
}
