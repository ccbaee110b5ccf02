// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldCorrelationID = "correlation_id"
	FieldRequestID     = "request_id"
	FieldVideoID       = "video_id"

	// Process / pipeline fields
	FieldEvent     = "event"
	FieldComponent = "component"
	FieldOperation = "operation"

	// Caption fields
	FieldLanguage   = "language"
	FieldProvenance = "provenance"
	FieldStep       = "cascade_step"
	FieldSnippets   = "snippets"
	FieldParagraphs = "paragraphs"

	// Outcome fields
	FieldKind   = "kind"
	FieldStatus = "status"

	// Network fields
	FieldRouteHost = "route_host"
	FieldPath      = "path"
)
