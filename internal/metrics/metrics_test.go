package metrics

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSyncMetrics_RecordAndSummary(t *testing.T) {
	m := New()
	m.RecordSync(3, 1, 2, 1)

	out, err := m.Summary()
	require.NoError(t, err)
	require.Contains(t, out, "vault_files_inserted_total 3")
	require.Contains(t, out, "vault_files_updated_total 1")
	require.Contains(t, out, "vault_files_encrypted_total 2")
	require.Contains(t, out, "vault_encryption_errors_total 1")
	require.True(t, strings.Contains(out, "vault_hash_duration_seconds"))
}
