// Package textproc segments input text into translation units. The real
// segmentation model is a collaborator; the engine core only depends on the
// Processor interface and the Segment/SourceRange shapes it produces.
package textproc

import "strings"

// Segment is one translation unit: an ordered list of surface tokens drawn
// from a contiguous span of the input.
type Segment []string

// SourceRange is the [Begin, End) byte span of a segment in the original
// input text.
type SourceRange struct {
	Begin int
	End   int
}

// Processor converts a blob of input text into segments plus the byte span
// each segment was cut from. Implementations must be safe for concurrent use;
// one Processor instance is shared by every submission.
type Processor interface {
	Process(text string) ([]Segment, []SourceRange)
}

// LineSegmenter is the default Processor: one segment per non-empty line,
// whitespace tokenization. Good enough for tests and plain-text front ends;
// production deployments plug in a sentence-boundary model instead.
type LineSegmenter struct{}

func (LineSegmenter) Process(text string) ([]Segment, []SourceRange) {
	var segments []Segment
	var ranges []SourceRange

	offset := 0
	for {
		line := text[offset:]
		end := len(text)
		if i := strings.IndexByte(line, '\n'); i >= 0 {
			end = offset + i
		}
		raw := text[offset:end]
		if toks := strings.Fields(raw); len(toks) > 0 {
			segments = append(segments, Segment(toks))
			ranges = append(ranges, SourceRange{Begin: offset, End: end})
		}
		if end == len(text) {
			break
		}
		offset = end + 1
	}
	return segments, ranges
}
