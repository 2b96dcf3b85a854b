package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowed(t *testing.T) {
	assert.True(t, allowed("/x/Deal.PDF", DefaultExts))
	assert.True(t, allowed("deal.txt", DefaultExts))
	assert.False(t, allowed("deal.docx", DefaultExts))
	assert.False(t, allowed("deal.pdf.part", DefaultExts))
}

func TestStartEmitsExistingAndNewFiles(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "old.pdf")
	require.NoError(t, os.WriteFile(existing, []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("x"), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := Start(ctx, Config{Dir: dir, InitialScan: true, Debounce: 20 * time.Millisecond})
	require.NoError(t, err)

	select {
	case p := <-ch:
		assert.Equal(t, existing, p)
	case <-time.After(2 * time.Second):
		t.Fatal("initial file not emitted")
	}

	created := filepath.Join(dir, "new.txt")
	require.NoError(t, os.WriteFile(created, []byte("Margin: 2%"), 0o600))

	select {
	case p := <-ch:
		assert.Equal(t, created, p)
	case <-time.After(5 * time.Second):
		t.Fatal("new file not emitted")
	}

	cancel()
	for range ch {
	}
}

func TestStartRequiresDir(t *testing.T) {
	_, err := Start(context.Background(), Config{})
	assert.Error(t, err)
}
