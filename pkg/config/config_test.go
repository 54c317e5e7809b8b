package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wdm0006/baddata/pkg/corrupt"
	"github.com/wdm0006/baddata/pkg/transform/validate"
)

func write(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func pct(t *testing.T, cfg corrupt.Config, rule string) int {
	t.Helper()
	v, ok := cfg.Get(rule)
	require.True(t, ok, rule)
	return v
}

func TestLoadCorruptionFormats(t *testing.T) {
	cases := []struct {
		name, file, body string
		rule             string
		want             int
	}{
		{"ini section", "config.properties", "[DEFAULT]\nfreshness = 25\ncompleteness=5\n", corrupt.Freshness, 25},
		{"flat properties", "bad.properties", "duplicates=30\n", corrupt.Duplicates, 30},
		{"ini file", "bad.ini", "[DEFAULT]\ninvalidity=12\n", corrupt.Invalidity, 12},
		{"json", "bad.json", `{"accuracy": 40, "invalidity": "15"}`, corrupt.Accuracy, 40},
		{"json string value", "bad.json", `{"invalidity": " 15 "}`, corrupt.Invalidity, 15},
		{"yaml", "bad.yaml", "consistency: 33\n", corrupt.Consistency, 33},
		{"toml", "bad.toml", "completeness = 44\n", corrupt.Completeness, 44},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, ignored, err := LoadCorruption(write(t, tc.file, tc.body))
			require.NoError(t, err)
			assert.Empty(t, ignored)
			assert.Equal(t, tc.want, pct(t, cfg, tc.rule))
			assert.Len(t, cfg, len(corrupt.RuleNames()))
		})
	}
}

func TestLoadCorruptionDefaultsAndUnknownKeys(t *testing.T) {
	cfg, ignored, err := LoadCorruption("")
	require.NoError(t, err)
	assert.Equal(t, corrupt.DefaultConfig(), cfg)
	assert.Empty(t, ignored)

	cfg, ignored, err = LoadCorruption(write(t, "c.properties", "[DEFAULT]\nfreshness=20\nbogus=oops\n[extra]\nduplicates=90\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"bogus", "extra.duplicates"}, ignored)
	assert.Equal(t, 20, pct(t, cfg, corrupt.Freshness))
	assert.Equal(t, corrupt.DefaultPercent, pct(t, cfg, corrupt.Duplicates))
}

func TestLoadCorruptionEnvOverridesFile(t *testing.T) {
	t.Setenv("BADDATA_FRESHNESS", "50")
	t.Setenv("BADDATA_ACCURACY", " 7 ")
	cfg, _, err := LoadCorruption(write(t, "c.properties", "[DEFAULT]\nfreshness=25\n"))
	require.NoError(t, err)
	assert.Equal(t, 50, pct(t, cfg, corrupt.Freshness))
	assert.Equal(t, 7, pct(t, cfg, corrupt.Accuracy))
	assert.Equal(t, corrupt.RuleNames()[0], cfg[0].Rule)
}

func TestLoadCorruptionErrors(t *testing.T) {
	_, _, err := LoadCorruption(write(t, "c.properties", "freshness=abc\n"))
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, _, err = LoadCorruption(write(t, "c.json", `{"freshness": 12.5}`))
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, _, err = LoadCorruption(write(t, "c.xml", "<x/>"))
	assert.Error(t, err)

	_, _, err = LoadCorruption(filepath.Join(t.TempDir(), "missing.properties"))
	assert.Error(t, err)

	_, _, err = LoadCorruption(write(t, "case.json", `{"Freshness": 20, "freshness": 40}`))
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, _, err = LoadCorruption(write(t, "case.yaml", "freshness: 20\nDEFAULT:\n  freshness: 40\n"))
	assert.ErrorIs(t, err, ErrInvalidValue)

	t.Setenv("BADDATA_DUPLICATES", "lots")
	_, _, err = LoadCorruption("")
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		_ = os.Chdir(wd)
		_ = os.Unsetenv("BADDATA_INVALIDITY")
	})

	require.NoError(t, LoadDotEnv(), "missing .env is not an error")

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("BADDATA_INVALIDITY=77\n"), 0o644))
	require.NoError(t, LoadDotEnv())
	cfg, _, err := LoadCorruption("")
	require.NoError(t, err)
	assert.Equal(t, 77, pct(t, cfg, corrupt.Invalidity))
}

func TestLoadSLO(t *testing.T) {
	slo, err := LoadSLO(write(t, "slo.json", `{"completeness": {"min_threshold": 99}, "timeliness": {"max_delay": 7}}`))
	require.NoError(t, err)
	assert.Equal(t, 99.0, *slo.Completeness.Min)
	assert.Equal(t, 7.0, *slo.Timeliness.MaxDelay)
	assert.Equal(t, 5.0, *slo.Duplicates.Max)
	assert.Equal(t, 90.0, *slo.Validity.Min)

	slo, err = LoadSLO(write(t, "slo.yaml", "duplicates:\n  max_threshold: 1\n"))
	require.NoError(t, err)
	assert.Equal(t, 1.0, *slo.Duplicates.Max)

	slo, err = LoadSLO("")
	require.NoError(t, err)
	assert.Equal(t, 95.0, *slo.Uniqueness.Min)

	_, err = LoadSLO(write(t, "slo.json", `{`))
	assert.Error(t, err)
}

func TestLoadSuite(t *testing.T) {
	body := `
expectations:
  - expectation_type: expect_column_values_to_be_in_set
    column: Priority
    value_set: [Low, Medium, High]
  - expectation_type: expect_column_values_to_be_between
    column: Age
    min_value: 0
    max_value: 120
`
	s, err := LoadSuite(write(t, "medical_suite.yaml", body))
	require.NoError(t, err)
	assert.Equal(t, "medical_suite", s.Name)
	require.Len(t, s.Expectations, 2)
	assert.Equal(t, validate.TypeInSet, s.Expectations[0].Type)
	assert.Equal(t, []string{"Low", "Medium", "High"}, s.Expectations[0].ValueSet)
	assert.Equal(t, 120.0, *s.Expectations[1].Max)
	_, err = s.Build()
	require.NoError(t, err)

	ts, err := LoadSuite(write(t, "s.toml", "name = \"t\"\n[[expectations]]\nexpectation_type = \"expect_column_to_exist\"\ncolumn = \"id\"\n"))
	require.NoError(t, err)
	assert.Equal(t, "t", ts.Name)
	assert.Len(t, ts.Expectations, 1)
}
