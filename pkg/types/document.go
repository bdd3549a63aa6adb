// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ExtractionMethod records which extraction path produced a document's text.
type ExtractionMethod string

const (
	// MethodDigital is the digital text layer, block-ordered.
	MethodDigital ExtractionMethod = "digital"
	// MethodOCR is word-level OCR reassembled in reading order.
	MethodOCR ExtractionMethod = "ocr"
	// MethodDigitalFallbackWarned is the digital layer kept despite being
	// under the threshold, because OCR was unavailable.
	MethodDigitalFallbackWarned ExtractionMethod = "digital_fallback_warned"
)

// SourceDocument identifies one input document. The identity tuple
// (Path base name, Size, SHA256) is the run signature; it is fixed once the
// document has been read.
type SourceDocument struct {
	// Path is the filesystem path to the PDF or plain-text file.
	Path string `json:"path" yaml:"path"`

	// Size is the document byte size.
	Size int64 `json:"size" yaml:"size"`

	// SHA256 is the hex digest of the document contents.
	SHA256 string `json:"sha256" yaml:"sha256"`
}

// ExtractedText is the ordered raw text of a document plus the method that
// produced it. It exists only between the extraction and normalization
// stages of a run.
type ExtractedText struct {
	Text   string           `json:"text"`
	Method ExtractionMethod `json:"method"`
}
