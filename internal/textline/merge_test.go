package textline

import (
	"testing"

	"github.com/MeKo-Tech/rf4catch/internal/geometry"
	"github.com/MeKo-Tech/rf4catch/internal/region"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frag(left, top, w, h float64, text string) region.TextFragment {
	return region.TextFragment{Rect: geometry.FromCorner(left, top, w, h), Text: text}
}

func texts(lines []Line) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Text
	}
	return out
}

func TestMerge_AdjacentFragments(t *testing.T) {
	m := &Merger{MarginX: geometry.DefaultMarginX}

	lines := m.Merge([]region.TextFragment{
		frag(0, 0, 50, 20, "42"),
		frag(45, 0, 30, 20, "分-97%"),
	})

	require.Len(t, lines, 1)
	assert.Equal(t, "42分-97%", lines[0].Text)
	assert.Equal(t, geometry.FromCorner(0, 0, 75, 20), lines[0].Rect)
	assert.False(t, lines[0].Bound())
}

func TestMerge(t *testing.T) {
	tests := []struct {
		name  string
		frags []region.TextFragment
		want  []string
	}{
		{
			name: "empty input",
			want: []string{},
		},
		{
			name: "gap within margin merges",
			frags: []region.TextFragment{
				frag(0, 0, 40, 20, "3.705"),
				frag(48, 0, 20, 20, "公斤"),
			},
			want: []string{"3.705公斤"},
		},
		{
			name: "gap beyond margin starts a new line",
			frags: []region.TextFragment{
				frag(0, 0, 40, 20, "镜鲤"),
				frag(51, 0, 20, 20, "2.59"),
			},
			want: []string{"镜鲤", "2.59"},
		},
		{
			name: "vertical gap starts a new line",
			frags: []region.TextFragment{
				frag(0, 0, 40, 20, "镜鲤"),
				frag(0, 21, 40, 20, "2.59"),
			},
			want: []string{"镜鲤", "2.59"},
		},
		{
			name: "chain grows the open line",
			frags: []region.TextFragment{
				frag(0, 0, 10, 20, "a"),
				frag(15, 0, 10, 20, "b"),
				frag(30, 0, 10, 20, "c"),
			},
			want: []string{"abc"},
		},
		{
			name: "text order follows input order, not position",
			frags: []region.TextFragment{
				frag(50, 0, 20, 20, "right"),
				frag(20, 0, 25, 20, "left"),
			},
			want: []string{"rightleft"},
		},
		{
			name: "only the last line can absorb a fragment",
			frags: []region.TextFragment{
				frag(0, 0, 40, 20, "first"),
				frag(0, 100, 40, 20, "second"),
				frag(30, 0, 40, 20, "late"),
			},
			want: []string{"first", "second", "late"},
		},
	}

	m := &Merger{MarginX: geometry.DefaultMarginX}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, texts(m.Merge(tt.frags)))
		})
	}
}

func TestMerge_ROI(t *testing.T) {
	m := NewMerger()

	lines := m.Merge([]region.TextFragment{
		frag(0, 0, 100, 20, "header"),
		frag(395, 200, 5, 20, "near"),
		frag(500, 200, 60, 20, "镜鲤"),
		frag(1000, 1081, 60, 20, "footer"),
	})

	assert.Equal(t, []string{"near", "镜鲤"}, texts(lines))
}

func TestMerge_ROIDisabled(t *testing.T) {
	m := NewMerger()
	m.UseROI = false

	lines := m.Merge([]region.TextFragment{frag(0, 0, 100, 20, "header")})
	assert.Equal(t, []string{"header"}, texts(lines))
}

func TestMerge_DoesNotModifyInput(t *testing.T) {
	in := []region.TextFragment{frag(0, 0, 50, 20, "42"), frag(45, 0, 30, 20, "分")}
	snapshot := append([]region.TextFragment(nil), in...)

	(&Merger{MarginX: 10}).Merge(in)

	assert.Equal(t, snapshot, in)
}
