// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package transcript

import (
	"strings"

	"github.com/ManuGH/transcriptd/internal/captions"
)

// DefaultGapThreshold is the silence, in seconds, that starts a new paragraph.
const DefaultGapThreshold = 0.7

const paragraphSeparator = "\n\n"

// Segment reflows snippets into paragraphs. A paragraph closes when the gap
// between the end of one snippet and the start of the next is strictly greater
// than threshold. Overlapping snippets yield negative gaps and never break.
func Segment(snippets []captions.Snippet, threshold float64) []string {
	if len(snippets) == 0 {
		return nil
	}

	var paragraphs []string
	var buf strings.Builder
	buf.WriteString(snippets[0].Text)

	for i := 1; i < len(snippets); i++ {
		prev, cur := snippets[i-1], snippets[i]
		gap := cur.Start - (prev.Start + prev.Duration)
		if gap > threshold {
			paragraphs = append(paragraphs, buf.String())
			buf.Reset()
			buf.WriteString(cur.Text)
			continue
		}
		buf.WriteByte(' ')
		buf.WriteString(cur.Text)
	}
	return append(paragraphs, buf.String())
}

// Format joins paragraphs with a blank line.
func Format(paragraphs []string) string {
	return strings.Join(paragraphs, paragraphSeparator)
}
