package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/MeKo-Tech/rf4catch/internal/testutil"
)

// denseScreen repeats the sample cards down the screen n times.
func denseScreen(n int) testutil.Screen {
	base := testutil.SampleScreen()
	s := testutil.Screen{Width: base.Width, Height: base.Height * float64(n)}
	for i := 0; i < n; i++ {
		dy := base.Height * float64(i)
		for _, p := range base.Predictions {
			p.Y += dy
			s.Predictions = append(s.Predictions, p)
		}
		for _, w := range base.Words {
			w.Top += dy
			s.Words = append(s.Words, w)
		}
	}
	return s
}

func BenchmarkExtract(b *testing.B) {
	for _, n := range []int{1, 10, 100} {
		b.Run(fmt.Sprintf("screens=%d", n), func(b *testing.B) {
			det, ocr := decodeScreen(b, denseScreen(n))
			ex := newExtractor(b, NewBuilder().WithoutROI())
			ctx := context.Background()

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := ex.Extract(ctx, det, ocr); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkClassify(b *testing.B) {
	ex := newExtractor(b, NewBuilder())
	texts := []string{"42分-97%", "3705克", "1.2公斤", "镜鲤", "2.59", "草鱼"}

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		ex.Classify(texts[i%len(texts)])
	}
}
