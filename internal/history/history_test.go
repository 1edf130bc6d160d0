package history

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBuildInsertOneRowPerEntry(t *testing.T) {
	now := time.Now()
	entries := []Entry{
		{RequestID: 1, PublicID: "abc", InputBytes: 11, Segments: 2, Status: "success", TotalTime: 1500 * time.Millisecond, CreatedAt: now},
		{RequestID: 2, PublicID: "def", InputBytes: 7, Segments: 1, Status: "canceled", CreatedAt: now},
	}

	stmt, vals := buildInsert(entries)

	require.Equal(t, 2, strings.Count(stmt, "(?, ?, ?, ?, ?, ?, ?)"))
	require.False(t, strings.HasSuffix(stmt, ","))
	require.Len(t, vals, 14)
	require.Equal(t, uint64(1), vals[0])
	require.Equal(t, "abc", vals[1])
	require.Equal(t, int64(1500), vals[5])
	require.Equal(t, uint64(2), vals[7])
	require.Equal(t, "canceled", vals[11])
}

func TestBuildInsertEmpty(t *testing.T) {
	stmt, vals := buildInsert(nil)
	require.Empty(t, vals)
	require.False(t, strings.Contains(stmt, "(?"))
}
