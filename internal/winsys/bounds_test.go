package winsys

import "testing"

func TestContentBounds(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		scale         float64
		want          Rect
	}{
		{"normal", 1920, 1080, 1.0, Rect{X: 0, Y: 32, Width: 1920, Height: 1048}},
		{"hidpi 2x", 3840, 2160, 2.0, Rect{X: 0, Y: 64, Width: 3840, Height: 2096}},
		{"fractional scale", 1440, 900, 1.5, Rect{X: 0, Y: 48, Width: 1440, Height: 852}},
		{"small window", 800, 600, 1.0, Rect{X: 0, Y: 32, Width: 800, Height: 568}},
		{"window shorter than titlebar", 100, 20, 1.0, Rect{X: 0, Y: 32, Width: 100, Height: 0}},
		{"window exactly titlebar height", 800, 32, 1.0, Rect{X: 0, Y: 32, Width: 800, Height: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ContentBounds(tt.width, tt.height, tt.scale, TitlebarHeight)
			if got != tt.want {
				t.Errorf("ContentBounds(%d, %d, %v) = %+v, want %+v",
					tt.width, tt.height, tt.scale, got, tt.want)
			}
		})
	}
}

func TestCenterOn(t *testing.T) {
	tests := []struct {
		name    string
		display Rect
		w, h    int
		want    Rect
	}{
		{"primary display", Rect{0, 0, 1920, 1080}, 420, 600, Rect{750, 240, 420, 600}},
		{"secondary display with offset", Rect{1920, 0, 1280, 1024}, 420, 600, Rect{2350, 212, 420, 600}},
		{"window larger than display", Rect{0, 0, 300, 300}, 420, 600, Rect{-60, -150, 420, 600}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CenterOn(tt.display, tt.w, tt.h)
			if got != tt.want {
				t.Errorf("CenterOn(%+v, %d, %d) = %+v, want %+v",
					tt.display, tt.w, tt.h, got, tt.want)
			}
		})
	}
}
