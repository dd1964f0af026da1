package render

import (
	"image/color"
	"testing"

	uv "github.com/charmbracelet/ultraviolet"
)

func TestFramebufferDraw(t *testing.T) {
	fb := NewFramebuffer(4, 4)
	fb.SetPixel(1, 0, ColorYellow)
	fb.SetPixel(1, 1, ColorMagenta)

	scr := uv.NewScreenBuffer(6, 3)
	fb.Draw(scr, uv.Rect(1, 0, 5, 3))

	cell := scr.CellAt(2, 0)
	if cell == nil || cell.Content != "▀" {
		t.Fatalf("cell (2,0) = %+v, want half block", cell)
	}
	if cell.Style.Fg != color.Color(ColorYellow) {
		t.Errorf("fg = %v, want yellow", cell.Style.Fg)
	}
	if cell.Style.Bg != color.Color(ColorMagenta) {
		t.Errorf("bg = %v, want magenta", cell.Style.Bg)
	}

	// Transparent pixels fall back to the terminal default color.
	if c := scr.CellAt(1, 0); c.Style.Fg != nil {
		t.Errorf("transparent pixel fg = %v, want nil", c.Style.Fg)
	}

	// Rows past the framebuffer height stay untouched.
	if c := scr.CellAt(2, 2); c != nil && c.Content == "▀" {
		t.Error("row beyond framebuffer was drawn")
	}
}
