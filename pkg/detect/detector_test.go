package detect

import "testing"

func TestPrimary_Empty(t *testing.T) {
	if _, ok := Primary(nil); ok {
		t.Fatal("expected no primary region for empty input")
	}
}

func TestPrimary_MaxArea(t *testing.T) {
	tests := []struct {
		name    string
		regions []Region
		wantIdx int
	}{
		{
			name: "single region",
			regions: []Region{
				{X: 10, Y: 10, W: 50, H: 60},
			},
			wantIdx: 0,
		},
		{
			name: "largest wins regardless of confidence",
			regions: []Region{
				{W: 40, H: 40, Confidence: 0.99},
				{W: 120, H: 100, Confidence: 0.51},
				{W: 60, H: 60, Confidence: 0.90},
			},
			wantIdx: 1,
		},
		{
			name: "tie broken by first-seen order",
			regions: []Region{
				{X: 5, W: 80, H: 80},
				{X: 300, W: 80, H: 80},
			},
			wantIdx: 0,
		},
		{
			name: "larger later region replaces earlier",
			regions: []Region{
				{W: 80, H: 80},
				{W: 80, H: 81},
			},
			wantIdx: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Primary(tt.regions)
			if !ok {
				t.Fatal("expected a primary region")
			}
			want := tt.regions[tt.wantIdx]
			if got.X != want.X || got.Y != want.Y || got.W != want.W || got.H != want.H {
				t.Errorf("got %+v, want %+v", got, want)
			}
		})
	}
}

func TestRegion_Area(t *testing.T) {
	r := Region{W: 12, H: 10}
	if r.Area() != 120 {
		t.Errorf("got %d, want 120", r.Area())
	}
}
