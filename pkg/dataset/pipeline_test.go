package dataset_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	ds "github.com/wdm0006/baddata/pkg/dataset"
)

type upper struct{ Column string }

func (t *upper) Name() string { return "upper" }
func (t *upper) Apply(ctx context.Context, f *ds.Frame) (*ds.Frame, error) {
	out := f.Clone()
	col, _ := out.ColumnByName(t.Column)
	c := col.(*ds.StringColumn)
	for i := 0; i < c.Len(); i++ {
		if v, ok := c.Get(i); ok {
			c.Set(i, strings.ToUpper(v))
		}
	}
	return out, nil
}

type failing struct{}

func (failing) Name() string { return "failing" }
func (failing) Apply(ctx context.Context, f *ds.Frame) (*ds.Frame, error) {
	return nil, errors.New("boom")
}

func twoRowFrame() *ds.Frame {
	s := ds.Schema{Columns: []ds.ColumnSchema{{Name: "x", Type: ds.KindFloat, Nullable: true}, {Name: "s", Type: ds.KindString, Nullable: true}}}
	f := ds.NewFrame(s)
	for i := 0; i < 2; i++ {
		f.AppendNullRow()
	}
	_ = f.SetCell(0, "x", 1.0)
	_ = f.SetCell(0, "s", "foo")
	// row 1 left nulls
	return f
}

func TestPipeline(t *testing.T) {
	f := twoRowFrame()
	p := ds.NewPipeline().Add(&upper{Column: "s"})
	out, err := p.Run(context.Background(), f)
	if err != nil {
		t.Fatal(err)
	}
	colS, _ := out.ColumnByName("s")
	s0, _ := colS.(*ds.StringColumn).Get(0)
	if s0 != "FOO" {
		t.Fatalf("upper failed, got %q", s0)
	}
	if !colS.IsNull(1) {
		t.Fatal("null cell was filled")
	}
	orig, _ := f.ColumnByName("s")
	if v, _ := orig.(*ds.StringColumn).Get(0); v != "foo" {
		t.Fatalf("input frame mutated: %q", v)
	}
}

func TestPipelineWrapsStepError(t *testing.T) {
	p := ds.NewPipeline().Add(failing{})
	_, err := p.Run(context.Background(), twoRowFrame())
	if err == nil || !strings.HasPrefix(err.Error(), "failing: ") {
		t.Fatalf("expected step-prefixed error, got %v", err)
	}
}

func TestPipelineHonorsCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ds.NewPipeline().Add(&upper{Column: "s"}).Run(ctx, twoRowFrame())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

type sliceSource struct{ frames []*ds.Frame }

func (s *sliceSource) Next() (*ds.Frame, error) {
	if len(s.frames) == 0 {
		return nil, io.EOF
	}
	f := s.frames[0]
	s.frames = s.frames[1:]
	return f, nil
}

func TestRunStream(t *testing.T) {
	src := &sliceSource{frames: []*ds.Frame{twoRowFrame(), twoRowFrame(), twoRowFrame()}}
	sink := &ds.CountingSink{}
	if err := ds.RunStream(context.Background(), ds.NewPipeline().Add(&upper{Column: "s"}), src, sink); err != nil {
		t.Fatal(err)
	}
	if sink.Rows != 6 || sink.Chunks != 3 {
		t.Fatalf("got rows=%d chunks=%d", sink.Rows, sink.Chunks)
	}
}
