package ocr

import (
	"image"
	"image/color"
	"image/draw"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// skipWithoutTesseract skips tests whose failure comes from a missing
// Tesseract installation or language pack.
func skipWithoutTesseract(t *testing.T, err error) {
	t.Helper()
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "tesseract") || strings.Contains(msg, "library") || strings.Contains(msg, "language") {
		t.Skipf("Tesseract not available: %v", err)
	}
}

// drawText draws text on an image using basicfont.
func drawText(img *image.RGBA, x, y int, text string, col color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}

// createPage renders lines of black text on a white page, scaled up with
// nearest-neighbour so the 7x13 glyphs are large enough for Tesseract.
func createPage(lines []string, scale int) image.Image {
	longest := 0
	for _, l := range lines {
		if len(l) > longest {
			longest = len(l)
		}
	}
	width := longest*7 + 40
	height := len(lines)*20 + 30

	small := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(small, small.Bounds(), image.White, image.Point{}, draw.Src)
	for i, l := range lines {
		drawText(small, 20, 25+i*20, l, color.Black)
	}
	if scale <= 1 {
		return small
	}

	return imaging.Resize(small, width*scale, height*scale, imaging.NearestNeighbor)
}

func TestCreatePage_Scale(t *testing.T) {
	page := createPage([]string{"AB"}, 3)
	b := page.Bounds()
	assert.Equal(t, (2*7+40)*3, b.Dx())
	assert.Equal(t, (20+30)*3, b.Dy())

	// Nearest-neighbour keeps the page pure black and white.
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := page.At(x, y).RGBA()
			require.True(t, (r == 0 && g == 0 && bl == 0) || (r == 0xffff && g == 0xffff && bl == 0xffff),
				"pixel (%d,%d) is neither black nor white", x, y)
		}
	}
}

func TestReadPage(t *testing.T) {
	page, err := ReadPage(createPage([]string{"HELLO WORLD"}, 4), "")
	if err != nil {
		skipWithoutTesseract(t, err)
		t.Fatalf("ReadPage failed: %v", err)
	}

	require.NotNil(t, page)
	assert.Equal(t, DefaultLanguage, page.Language)
	assert.NotNil(t, page.Words)
	t.Logf("Extracted text: %q (%d words)", page.Text, len(page.Words))

	for _, w := range page.Words {
		assert.NotEmpty(t, strings.TrimSpace(w.Text))
		assert.GreaterOrEqual(t, w.Confidence, 0.0)
		assert.LessOrEqual(t, w.Confidence, 1.0)
		assert.LessOrEqual(t, w.Bounds.X1, w.Bounds.X2)
		assert.LessOrEqual(t, w.Bounds.Y1, w.Bounds.Y2)
	}
}

func TestReadPage_MultiLine(t *testing.T) {
	page, err := ReadPage(createPage([]string{"LINE ONE", "LINE TWO", "LINE THREE"}, 3), "eng")
	if err != nil {
		skipWithoutTesseract(t, err)
		t.Fatalf("ReadPage failed: %v", err)
	}

	t.Logf("Extracted from multi-line: %q", page.Text)
	for i, w := range page.Words {
		t.Logf("  Word %d: %q (confidence: %.2f)", i, w.Text, w.Confidence)
	}
}

func TestReadPage_BlankPage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 120, 60))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	page, err := ReadPage(img, "eng")
	if err != nil {
		skipWithoutTesseract(t, err)
		t.Fatalf("ReadPage failed: %v", err)
	}
	assert.Empty(t, strings.TrimSpace(page.Text))
}

func TestReadPage_InvalidLanguage(t *testing.T) {
	_, err := ReadPage(createPage([]string{"TEST"}, 2), "not_a_language")
	assert.Error(t, err)
}

func TestReadPage_NilImage(t *testing.T) {
	_, err := ReadPage(nil, "eng")
	assert.Error(t, err)
}
