package validate

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ds "github.com/wdm0006/baddata/pkg/dataset"
	"github.com/wdm0006/baddata/pkg/scenario"
)

func frame(t *testing.T) *ds.Frame {
	t.Helper()
	f := ds.NewFrame(ds.Schema{Columns: []ds.ColumnSchema{
		{Name: "id", Type: ds.KindString, Role: ds.RoleKey},
		{Name: "level", Type: ds.KindString, Nullable: true},
		{Name: "score", Type: ds.KindFloat, Nullable: true},
		{Name: "age", Type: ds.KindInt, Nullable: true},
	}})
	rows := []struct {
		id, level string
		score     any
		age       any
	}{
		{"a", "Low", 1.5, int64(10)},
		{"b", "High", 9.0, int64(200)},
		{"c", "Invalid", nil, nil},
		{"d", "", 4.0, int64(30)},
	}
	for i, r := range rows {
		f.AppendNullRow()
		require.NoError(t, f.SetCell(i, "id", r.id))
		if r.level != "" {
			require.NoError(t, f.SetCell(i, "level", r.level))
		}
		require.NoError(t, f.SetCell(i, "score", r.score))
		require.NoError(t, f.SetCell(i, "age", r.age))
	}
	return f
}

func fp(v float64) *float64 { return &v }

func TestExpectations(t *testing.T) {
	f := frame(t)
	cases := []struct {
		name       string
		e          Expectation
		success    bool
		unexpected int
	}{
		{"exists", &Exists{Column: "id"}, true, 0},
		{"exists missing", &Exists{Column: "nope"}, false, 0},
		{"not null", &NotNull{Column: "level"}, false, 1},
		{"not null key", &NotNull{Column: "id"}, true, 0},
		{"in set skips nulls", NewInSet("level", []string{"Low", "Medium", "High"}), false, 1},
		{"between float", &Range{Column: "score", Min: fp(0), Max: fp(5)}, false, 1},
		{"between int open max", &Range{Column: "age", Min: fp(18)}, false, 1},
		{"between string coerces", &Range{Column: "id", Min: fp(0)}, false, 4},
		{"regex", mustRegex(t, "level", `^[A-Z][a-z]+$`), true, 0},
		{"regex missing column", mustRegex(t, "nope", `x`), false, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := tc.e.Check(f)
			assert.Equal(t, tc.success, r.Success)
			assert.Equal(t, tc.unexpected, r.UnexpectedCount)
			assert.Equal(t, 4, r.ElementCount)
			assert.Equal(t, tc.e.Name(), r.ExpectationType)
			_, err := tc.e.Apply(context.Background(), f)
			assert.Equal(t, tc.success, err == nil)
		})
	}
}

func mustRegex(t *testing.T, col, re string) Expectation {
	t.Helper()
	e, err := ExpectationSpec{Type: TypeRegex, Column: col, Regex: re}.Build()
	require.NoError(t, err)
	return e
}

func TestPartialUnexpectedIsCapped(t *testing.T) {
	f := ds.NewFrame(ds.Schema{Columns: []ds.ColumnSchema{{Name: "v", Type: ds.KindInt, Nullable: true}}})
	for i := 0; i < 50; i++ {
		f.AppendNullRow()
		require.NoError(t, f.SetCell(i, "v", i))
	}
	r := (&Range{Column: "v", Max: fp(-1)}).Check(f)
	assert.Equal(t, 50, r.UnexpectedCount)
	assert.Len(t, r.PartialUnexpected, MaxPartialUnexpected)
	assert.Equal(t, "0", r.PartialUnexpected[0])
	assert.InDelta(t, 100.0, r.UnexpectedPercent, 1e-9)
}

func TestMerge(t *testing.T) {
	a := Result{ExpectationType: TypeNotNull, Column: "x", ElementCount: 10, UnexpectedCount: 0, Success: true}
	b := Result{ExpectationType: TypeNotNull, Column: "x", ElementCount: 30, UnexpectedCount: 4, PartialUnexpected: []string{"<null>"}}
	m := a.Merge(b)
	assert.False(t, m.Success)
	assert.Equal(t, 40, m.ElementCount)
	assert.Equal(t, 4, m.UnexpectedCount)
	assert.InDelta(t, 10.0, m.UnexpectedPercent, 1e-9)
	assert.Equal(t, []string{"<null>"}, m.PartialUnexpected)
}

func TestSpecBuildErrors(t *testing.T) {
	for _, s := range []ExpectationSpec{
		{Type: "expect_magic", Column: "x"},
		{Type: TypeNotNull},
		{Type: TypeBetween, Column: "x"},
		{Type: TypeRegex, Column: "x", Regex: "("},
	} {
		_, err := s.Build()
		assert.Error(t, err, s.Type)
	}
}

func TestAccumulatorAcrossChunks(t *testing.T) {
	spec := SuiteSpec{Name: "s", Expectations: []ExpectationSpec{
		{Type: TypeExists, Column: "id"},
		{Type: TypeNotNull, Column: "level"},
	}}
	suite, err := spec.Build()
	require.NoError(t, err)
	f := frame(t)
	acc := suite.NewAccumulator(f.Schema())
	require.NoError(t, acc.Write(f))
	require.NoError(t, acc.Write(f))
	require.NoError(t, acc.Close())
	rs := acc.Results()
	require.Len(t, rs, 2)
	assert.True(t, rs[0].Success)
	assert.Equal(t, 8, rs[1].ElementCount)
	assert.Equal(t, 2, rs[1].UnexpectedCount)
	assert.False(t, Passed(rs))

	empty := suite.NewAccumulator(f.Schema()).Results()
	assert.True(t, Passed(empty))
}

func TestSuitePipelineStopsOnFailure(t *testing.T) {
	suite, err := SuiteSpec{Expectations: []ExpectationSpec{
		{Type: TypeExists, Column: "id"},
		{Type: TypeInSet, Column: "level", ValueSet: []string{"Low"}},
	}}.Build()
	require.NoError(t, err)
	_, err = suite.Pipeline().Run(context.Background(), frame(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 unexpected values")
}

func TestScenarioSuitePassesOnCleanData(t *testing.T) {
	sc, err := scenario.Lookup("cricket")
	require.NoError(t, err)
	f, err := sc.Generate(context.Background(), 100, rand.New(rand.NewPCG(3, 3)), time.Now())
	require.NoError(t, err)
	suite, err := ScenarioSuite(sc).Build()
	require.NoError(t, err)
	rs := suite.Check(f)
	for _, r := range rs {
		assert.True(t, r.Success, "%s(%s)", r.ExpectationType, r.Column)
	}
	require.NoError(t, f.SetCell(0, "Priority", "Invalid"))
	assert.False(t, Passed(suite.Check(f)))
}

func TestRender(t *testing.T) {
	f := frame(t)
	rs := []Result{(&Exists{Column: "id"}).Check(f), (&NotNull{Column: "level"}).Check(f)}

	var b bytes.Buffer
	require.NoError(t, Render(&b, "text", rs))
	assert.Contains(t, b.String(), "[PASS] expect_column_to_exist(id)")
	assert.Contains(t, b.String(), "1/2 expectations passed")

	b.Reset()
	require.NoError(t, Render(&b, "json", rs))
	var doc struct {
		Success bool     `json:"success"`
		Results []Result `json:"results"`
	}
	require.NoError(t, json.Unmarshal(b.Bytes(), &doc))
	assert.False(t, doc.Success)
	assert.Len(t, doc.Results, 2)

	b.Reset()
	require.NoError(t, Render(&b, "md", rs))
	assert.Equal(t, 4, strings.Count(b.String(), "\n"))

	assert.Error(t, Render(&b, "xml", rs))
}
