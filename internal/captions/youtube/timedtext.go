// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package youtube

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/ManuGH/transcriptd/internal/captions"
)

type timedTextElement struct {
	Start string `xml:"start,attr"`
	Dur   string `xml:"dur,attr"`
	Text  string `xml:",chardata"`
}

// parseTimedText decodes a timedtext document:
//
//	<transcript><text start="0.5" dur="1.2">Hello &amp;amp; welcome</text></transcript>
//
// Elements without text are dropped.
func parseTimedText(doc []byte) ([]captions.Snippet, error) {
	dec := xml.NewDecoder(bytes.NewReader(doc))
	var out []captions.Snippet

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("decode timedtext: %w", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "text" {
			continue
		}

		var el timedTextElement
		if err := dec.DecodeElement(&el, &se); err != nil {
			return nil, fmt.Errorf("decode timedtext element: %w", err)
		}
		text := plainText(el.Text)
		if text == "" {
			continue
		}

		start, err := parseSeconds(el.Start)
		if err != nil {
			return nil, fmt.Errorf("start %q: %w", el.Start, err)
		}
		dur, err := parseSeconds(el.Dur)
		if err != nil {
			return nil, fmt.Errorf("dur %q: %w", el.Dur, err)
		}
		out = append(out, captions.Snippet{Text: text, Start: start, Duration: dur})
	}
}

// markupTag matches one complete inline tag such as <i> or <font color="x">.
// A lone '<' without a closing '>' is caption text and stays.
var markupTag = regexp.MustCompile(`<[^>]*>`)

// plainText resolves the HTML entities left after XML decoding and drops
// complete inline tags.
func plainText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}
	s = html.UnescapeString(s)
	return strings.TrimSpace(markupTag.ReplaceAllString(s, ""))
}

func parseSeconds(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
