package audit

import (
	"context"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wdm0006/baddata/pkg/corrupt"
	"github.com/wdm0006/baddata/pkg/scenario"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func TestCompareAfterCorruption(t *testing.T) {
	ctx := context.Background()
	clean, err := scenario.Generate(ctx, "medical", 50, rand.New(rand.NewPCG(1, 2)), now)
	require.NoError(t, err)
	eng := corrupt.NewEngine(rand.New(rand.NewPCG(3, 4)), corrupt.WithClock(now))
	dirty, err := eng.Apply(ctx, clean, corrupt.DefaultConfig())
	require.NoError(t, err)

	a, err := Compare(clean, dirty)
	require.NoError(t, err)
	assert.False(t, a.Empty())
	s := a.Summary()
	assert.GreaterOrEqual(t, s.Inserted, 5, "five duplicate rows at least")
	assert.NotEmpty(t, a.Patch())

	path := filepath.Join(t.TempDir(), "audit.patch")
	require.NoError(t, a.WriteFile(path))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(b), "@@ "))

	// The patch reproduces the corrupted rendering.
	dmp := diffmatchpatch.New()
	patches, err := dmp.PatchFromText(string(b))
	require.NoError(t, err)
	out, applied := dmp.PatchApply(patches, a.before)
	for _, ok := range applied {
		assert.True(t, ok)
	}
	var want strings.Builder
	for _, d := range a.diffs {
		if d.Type != diffmatchpatch.DiffDelete {
			want.WriteString(d.Text)
		}
	}
	assert.Equal(t, want.String(), out)
}

func TestCompareIdentical(t *testing.T) {
	clean, err := scenario.Generate(context.Background(), "weather", 10, rand.New(rand.NewPCG(1, 1)), now)
	require.NoError(t, err)
	a, err := Compare(clean, clean.Clone())
	require.NoError(t, err)
	assert.True(t, a.Empty())
	assert.Equal(t, "", a.Patch())
	assert.Equal(t, Summary{}, a.Summary())
}

func TestCompareTextSummary(t *testing.T) {
	a := CompareText("id,x\n1,a\n2,b\n", "id,x\n1,\n2,b\n2,b\n")
	assert.Equal(t, "2 lines inserted, 1 lines deleted", a.Summary().String())
}
