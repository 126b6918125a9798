package tesseract

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os/exec"
	"strings"
	"testing"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/insightdelivered/marksheet-reader/internal/ocr"
)

func ensureTesseractAvailable(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("tesseract"); err != nil {
		t.Skip("tesseract not installed in PATH")
	}
}

// renderRow draws a single marksheet row, scaled up so Tesseract can read
// the 7x13 bitmap font.
func renderRow(t *testing.T, row string) []byte {
	t.Helper()
	small := image.NewRGBA(image.Rect(0, 0, 8*len(row)+20, 30))
	draw.Draw(small, small.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	d := &font.Drawer{
		Dst:  small,
		Src:  image.Black,
		Face: basicfont.Face7x13,
		Dot:  fixed.P(10, 20),
	}
	d.DrawString(row)

	const scale = 4
	b := small.Bounds()
	big := image.NewRGBA(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
	for y := 0; y < big.Bounds().Dy(); y++ {
		for x := 0; x < big.Bounds().Dx(); x++ {
			big.Set(x, y, small.At(x/scale, y/scale))
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, big); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestEngineName(t *testing.T) {
	if New().Name() != "tesseract" {
		t.Errorf("unexpected name %q", New().Name())
	}
}

func TestEngineRecognize(t *testing.T) {
	ensureTesseractAvailable(t)

	e := New("eng")
	text, err := e.Recognize(context.Background(), ocr.Image{Data: renderRow(t, "PHYSICS 87")})
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	if !strings.Contains(strings.ToUpper(text), "PHYSICS") {
		t.Errorf("expected PHYSICS in %q", text)
	}
}

func TestEngineRecognizeCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New().Recognize(ctx, ocr.Image{}); err == nil {
		t.Error("expected context error")
	}
}
