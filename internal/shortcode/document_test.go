// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package shortcode

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocument_AutoProcess(t *testing.T) {
	ctx := context.Background()
	p := NewProcessor(&fakeSource{groups: testGroups()}, quietLogger())
	doc := NewDocument(p, true)

	doc.SetOriginal(ctx, "Intro [sitemap]")

	processed, ok := doc.Processed()
	assert.True(t, ok)
	assert.True(t, doc.HasDirectives())
	assert.Contains(t, processed, `<nav class="sitemap">`)
	assert.Equal(t, processed, doc.Display())
	assert.Equal(t, "Intro [sitemap]", doc.Original())
	assert.True(t, doc.Auto())
}

func TestDocument_ManualProcess(t *testing.T) {
	ctx := context.Background()
	src := &fakeSource{groups: testGroups()}
	doc := NewDocument(NewProcessor(src, quietLogger()), false)

	doc.SetOriginal(ctx, "[sitemap]")

	_, ok := doc.Processed()
	assert.False(t, ok)
	assert.True(t, doc.HasDirectives(), "detected without processing")
	assert.Equal(t, "[sitemap]", doc.Display())
	assert.Zero(t, src.calls)

	out := doc.Process(ctx)
	assert.Equal(t, out, doc.Display())
	assert.Equal(t, 1, src.calls)
}

func TestDocument_RevertAlwaysReturnsOriginal(t *testing.T) {
	ctx := context.Background()
	doc := NewDocument(NewProcessor(&fakeSource{groups: testGroups()}, quietLogger()), true)
	original := "<p>[sitemap groups=tax]</p>"
	doc.SetOriginal(ctx, original)

	for range 3 {
		doc.Process(ctx)
	}
	assert.Equal(t, original, doc.Revert())
	assert.Equal(t, original, doc.Display())
	_, ok := doc.Processed()
	assert.False(t, ok)

	// reprocess after revert starts from the original again
	again := doc.Process(ctx)
	assert.Contains(t, again, "VAT changes")
	assert.Equal(t, original, doc.Revert())
	assert.Equal(t, original, doc.Revert())
}

func TestDocument_NoDirectives(t *testing.T) {
	ctx := context.Background()
	doc := NewDocument(NewProcessor(nil, quietLogger()), true)

	doc.SetOriginal(ctx, `Plain [foo bar="1"] text`)

	assert.False(t, doc.HasDirectives())
	assert.Equal(t, `Plain [foo bar="1"] text`, doc.Display())
}

func TestDocument_SetOriginalResets(t *testing.T) {
	ctx := context.Background()
	doc := NewDocument(NewProcessor(&fakeSource{groups: testGroups()}, quietLogger()), false)

	doc.SetOriginal(ctx, "[sitemap]")
	doc.Process(ctx)
	doc.SetOriginal(ctx, "no directives")

	_, ok := doc.Processed()
	assert.False(t, ok)
	assert.False(t, doc.HasDirectives())
	assert.Equal(t, "no directives", doc.Display())
}
