package winsys

// TitlebarHeight is the height of the custom titlebar in logical pixels.
// Frameless windows draw their own titlebar, so the embedded content is
// offset below it by this amount.
const TitlebarHeight = 32.0

// Rect is a window or display rectangle in pixels.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// CenterOn returns a w×h rectangle centered on the display rectangle d.
func CenterOn(d Rect, w, h int) Rect {
	return Rect{
		X:      d.X + (d.Width-w)/2,
		Y:      d.Y + (d.Height-h)/2,
		Width:  w,
		Height: h,
	}
}

// ContentBounds calculates where the embedded content sits inside a
// frameless window: full width, offset below the titlebar. winWidth and
// winHeight are physical pixels, titlebarHeight is logical and scaled by
// the DPI factor. A window shorter than the titlebar yields zero height.
func ContentBounds(winWidth, winHeight int, scaleFactor, titlebarHeight float64) Rect {
	titlebarPhys := int(titlebarHeight * scaleFactor)

	height := 0
	if winHeight > titlebarPhys {
		height = winHeight - titlebarPhys
	}

	return Rect{
		X:      0,
		Y:      titlebarPhys,
		Width:  winWidth,
		Height: height,
	}
}
