// Package ocr reads the text of a rectified page using Tesseract.
//
// This package wraps the Tesseract OCR engine (via gosseract/v2). It works
// on in-memory images, typically the Cropped image of a rectify.Result, so
// no temporary files are involved: the page is PNG encoded and handed to
// Tesseract as bytes.
//
// # Prerequisites
//
// Tesseract must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr libtesseract-dev
//   - macOS: brew install tesseract
//
// Language data files are required for each language:
//   - Ubuntu/Debian: apt-get install tesseract-ocr-eng (for English)
//   - Other languages: tesseract-ocr-<lang> packages
//
// # Languages
//
// The default language is English ("eng"). Several languages can be
// combined with "+", for example "eng+deu".
//
// # Recognition Quality
//
// Tesseract expects roughly upright, flat text, which is exactly what the
// rectifier produces. Passing a page through imaging.EnhanceDocument first
// usually improves results on photos taken under uneven light.
//
// # Error Handling
//
// ReadPage returns errors for images that cannot be encoded, unknown
// languages and Tesseract failures. If word-level bounding box extraction
// fails, the full text is still returned with an empty Words slice.
package ocr
