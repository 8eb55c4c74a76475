// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package shortcode

import "context"

// Document tracks one piece of content through processing. The original
// text is never modified; Revert only drops the processed copy. A Document
// belongs to a single request and is not safe for concurrent use.
type Document struct {
	proc *Processor
	auto bool

	original      string
	processed     string
	isProcessed   bool
	hasDirectives bool
}

// NewDocument creates an empty document. With auto set, SetOriginal
// processes new content immediately.
func NewDocument(proc *Processor, auto bool) *Document {
	return &Document{proc: proc, auto: auto}
}

// SetOriginal replaces the stored text and clears any earlier result.
func (d *Document) SetOriginal(ctx context.Context, text string) {
	d.original = text
	d.processed = ""
	d.isProcessed = false
	d.hasDirectives = HasKnown(text)
	if d.auto {
		d.Process(ctx)
	}
}

// Process expands the original text and returns the result. Repeated calls
// always start from the original.
func (d *Document) Process(ctx context.Context) string {
	res := d.proc.Process(ctx, d.original)
	d.processed = res.Processed
	d.hasDirectives = res.HasDirectives
	d.isProcessed = true
	return d.processed
}

// Revert discards the processed text and returns the original.
func (d *Document) Revert() string {
	d.processed = ""
	d.isProcessed = false
	return d.original
}

// Original returns the text as stored.
func (d *Document) Original() string { return d.original }

// Processed returns the last expansion and whether one exists.
func (d *Document) Processed() (string, bool) { return d.processed, d.isProcessed }

// Display returns the processed text when present, otherwise the original.
func (d *Document) Display() string {
	if d.isProcessed {
		return d.processed
	}
	return d.original
}

// HasDirectives reports whether the original contains a recognised
// directive, which is when the admin UI offers Process and Revert.
func (d *Document) HasDirectives() bool { return d.hasDirectives }

// Auto reports whether the document processes on SetOriginal.
func (d *Document) Auto() bool { return d.auto }
