package ocr

import (
	"image"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ironsheep/docscan-mcp/internal/imaging"
	"github.com/otiai10/gosseract/v2"
)

// DefaultLanguage is used when no language is given.
const DefaultLanguage = "eng"

// Bounds represents a rectangular bounding box in page pixel coordinates.
type Bounds struct {
	X1 int `json:"x1"` // Left edge
	Y1 int `json:"y1"` // Top edge
	X2 int `json:"x2"` // Right edge
	Y2 int `json:"y2"` // Bottom edge
}

// Word is one recognized word with its location and OCR confidence.
type Word struct {
	Text string `json:"text"`

	// Confidence is the OCR confidence score (0.0 to 1.0).
	Confidence float64 `json:"confidence"`

	Bounds Bounds `json:"bounds"`
}

// Page is the text read from one rectified page.
type Page struct {
	// Text is all recognized text with Tesseract's spacing and newlines.
	Text string `json:"text"`

	// Words holds the individual words. Empty words are dropped.
	Words []Word `json:"words"`

	Language string `json:"language"`
}

// ReadPage runs Tesseract over img in the given language.
//
// A gosseract client is created per call, so ReadPage is safe for
// concurrent use at the cost of loading the language data every time.
func ReadPage(img image.Image, language string) (*Page, error) {
	if img == nil {
		return nil, errors.New("no page image")
	}
	language = strings.TrimSpace(language)
	if language == "" {
		language = DefaultLanguage
	}

	data, err := imaging.EncodePNG(img)
	if err != nil {
		return nil, err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(strings.Split(language, "+")...); err != nil {
		return nil, errors.Wrapf(err, "failed to set language %q", language)
	}
	if err := client.SetImageFromBytes(data); err != nil {
		return nil, errors.Wrap(err, "failed to set image")
	}

	text, err := client.Text()
	if err != nil {
		return nil, errors.Wrap(err, "tesseract OCR failed")
	}

	page := &Page{Text: text, Words: []Word{}, Language: language}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return page, nil
	}
	for _, box := range boxes {
		if strings.TrimSpace(box.Word) == "" {
			continue
		}
		page.Words = append(page.Words, Word{
			Text:       box.Word,
			Confidence: float64(box.Confidence) / 100.0,
			Bounds: Bounds{
				X1: box.Box.Min.X,
				Y1: box.Box.Min.Y,
				X2: box.Box.Max.X,
				Y2: box.Box.Max.Y,
			},
		})
	}
	return page, nil
}

// Version returns the version of the linked Tesseract library.
func Version() string {
	client := gosseract.NewClient()
	defer client.Close()
	return client.Version()
}
