// SPDX-License-Identifier: MIT

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Attribute keys shared by pipeline spans.
const (
	VideoIDKey       = "transcript.video_id"
	LanguagesKey     = "transcript.preferred_languages"
	TrackLanguageKey = "transcript.track.language"
	ProvenanceKey    = "transcript.track.provenance"
	CascadeStepKey   = "transcript.cascade_step"
	SnippetsKey      = "transcript.snippets"
	ParagraphsKey    = "transcript.paragraphs"
	RouteKey         = "egress.route"
	ErrorKindKey     = "error.kind"
	BulkItemsKey     = "bulk.items"
)

// RequestAttributes describes a resolution request.
func RequestAttributes(videoID string, languages []string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(VideoIDKey, videoID),
		attribute.StringSlice(LanguagesKey, languages),
	}
}

// RouteAttributes describes the egress endpoint; it must not carry account data.
func RouteAttributes(endpoint string) []attribute.KeyValue {
	return []attribute.KeyValue{attribute.String(RouteKey, endpoint)}
}

// TrackAttributes describes the selected caption track.
func TrackAttributes(language, provenance, step string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(TrackLanguageKey, language),
		attribute.String(ProvenanceKey, provenance),
	}
	if step != "" {
		attrs = append(attrs, attribute.String(CascadeStepKey, step))
	}
	return attrs
}

// OutputAttributes describes the formatted result.
func OutputAttributes(snippets, paragraphs int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(SnippetsKey, snippets),
		attribute.Int(ParagraphsKey, paragraphs),
	}
}

// ErrorAttributes tags a span with the classified error kind.
func ErrorAttributes(kind string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool("error", true),
		attribute.String(ErrorKindKey, kind),
	}
}
