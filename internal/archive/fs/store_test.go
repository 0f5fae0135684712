package fs

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cadencehq/cadence/internal/archive"
	"github.com/cadencehq/cadence/internal/archive/compliance"
)

func TestFSStore_Compliance(t *testing.T) {
	compliance.RunArchiveComplianceTest(t, func() (archive.Store, func()) {
		tmpDir, err := os.MkdirTemp("", "archive-fs-test-*")
		require.NoError(t, err)

		store, err := NewStore(tmpDir)
		require.NoError(t, err)

		cleanup := func() {
			os.RemoveAll(tmpDir)
		}

		return store, cleanup
	})
}
