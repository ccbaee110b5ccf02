// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package captions defines the caption provider contract: tracks, catalogs,
// timed snippets and the typed errors a provider reports.
//
// A Provider is an opaque transport. Given a video identifier and an egress
// route it returns either a Catalog of available tracks or a concrete error;
// given a Track and the same route it returns the ordered snippets.
package captions
