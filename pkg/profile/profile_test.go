package profile

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	ds "github.com/wdm0006/baddata/pkg/dataset"
)

func sample() *ds.Frame {
	f := ds.NewFrame(ds.Schema{Columns: []ds.ColumnSchema{
		{Name: "id", Type: ds.KindString, Role: ds.RoleKey},
		{Name: "age", Type: ds.KindInt, Nullable: true},
		{Name: "ok", Type: ds.KindBool, Nullable: true},
		{Name: "empty", Type: ds.KindFloat, Nullable: true},
	}})
	rows := []struct {
		id  string
		age any
		ok  any
	}{
		{"a", 10, true},
		{"b", nil, false},
		{"b", nil, false},
		{"c", 30, nil},
	}
	for i, r := range rows {
		f.AppendNullRow()
		_ = f.SetCell(i, "id", r.id)
		_ = f.SetCell(i, "age", r.age)
		_ = f.SetCell(i, "ok", r.ok)
	}
	return f
}

func TestCollector(t *testing.T) {
	Convey("Given a collector over a small frame", t, func() {
		f := sample()
		c := NewCollector(f.Schema(), 2)
		c.ConsumeFrame(f)
		cols := c.Columns()

		Convey("dataset counts include exact duplicates", func() {
			So(c.Rows(), ShouldEqual, 4)
			So(c.Duplicates(), ShouldEqual, 1)
		})

		Convey("numeric stats skip nulls", func() {
			So(cols[1].Num.Count, ShouldEqual, 2)
			So(cols[1].Nulls(), ShouldEqual, 2)
			So(cols[1].Num.Min, ShouldEqual, 10.0)
			So(cols[1].Num.Max, ShouldEqual, 30.0)
			So(cols[1].Num.Mean(), ShouldEqual, 20.0)
		})

		Convey("bools count both values", func() {
			So(cols[2].Bool.True, ShouldEqual, 1)
			So(cols[2].Bool.False, ShouldEqual, 2)
			So(cols[2].Nulls(), ShouldEqual, 1)
		})

		Convey("strings track distinct values and top-k", func() {
			So(cols[0].Distinct(), ShouldEqual, 3)
			So(cols[0].Top(2), ShouldResemble, []Freq{{"b", 2}, {"a", 1}})
			So(cols[0].Top(0), ShouldHaveLength, 3)
		})

		Convey("a second chunk accumulates and sees earlier rows", func() {
			c.ConsumeFrame(f)
			So(c.Rows(), ShouldEqual, 8)
			So(c.Duplicates(), ShouldEqual, 5)
			So(c.Columns()[1].Num.Count, ShouldEqual, 4)
		})

		Convey("the text report lists every column", func() {
			txt := c.ReportText()
			So(txt, ShouldStartWith, "Profile Summary\nrows=4 duplicates=1\n")
			So(txt, ShouldContainSubstring, "- age (int): count=2 nulls=2 min=10 max=30 mean=20")
			So(txt, ShouldContainSubstring, "- ok (bool): count=3 nulls=1 true=1 false=2")
			So(txt, ShouldContainSubstring, "- empty (float): count=0 nulls=4")
			So(txt, ShouldContainSubstring, `  * "b": 2`)
		})

		Convey("the JSON report marshals without infinities", func() {
			b, err := json.Marshal(c.ReportJSON())
			So(err, ShouldBeNil)
			var back JSONProfile
			So(json.Unmarshal(b, &back), ShouldBeNil)
			So(back.Duplicates, ShouldEqual, 1)
			So(back.Columns[3].Num.Min, ShouldBeNil)
			So(*back.Columns[1].Num.Mean, ShouldEqual, 20.0)
			So(back.Columns[0].Str.Distinct, ShouldEqual, 3)
		})

		Convey("the HTML report escapes and titles", func() {
			var buf bytes.Buffer
			So(c.ReportHTML(&buf, ""), ShouldBeNil)
			html := buf.String()
			So(html, ShouldContainSubstring, "<h1>"+DefaultTitle+"</h1>")
			So(html, ShouldContainSubstring, `<td id="duplicates">1</td>`)
			So(html, ShouldContainSubstring, "<th>Mean</th><td>20</td>")
			So(strings.Count(html, "<h2 id=\"col-"), ShouldEqual, 4)
		})
	})
}

func TestReportName(t *testing.T) {
	Convey("Report names drop directories and extensions", t, func() {
		So(ReportName("weather_data.csv"), ShouldEqual, "weather_data_profiling_report.html")
		So(ReportName("/tmp/x/medical_data.csv.gz"), ShouldEqual, "medical_data_profiling_report.html")
		So(ReportName("noext"), ShouldEqual, "noext_profiling_report.html")
	})
}
