// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package transcript turns a video identifier into one formatted transcript.
//
// A request selects one egress route, lists the caption catalog, picks a
// track through the preference cascade, fetches its snippets and reflows them
// into paragraphs. Every failure leaves the package as a *ClassifiedError.
package transcript
