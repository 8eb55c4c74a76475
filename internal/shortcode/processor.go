// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package shortcode

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/ledgerline/site/internal/model"
)

// ErrNoSitemapSource is logged when a sitemap directive is expanded by a
// processor built without a data source.
var ErrNoSitemapSource = errors.New("no sitemap source configured")

// Result is the outcome of expanding one document.
type Result struct {
	Processed     string
	HasDirectives bool
}

// Processor expands directives. It holds no per-document state and is safe
// for concurrent use.
type Processor struct {
	sitemap SitemapSource
	logger  *slog.Logger
}

// NewProcessor creates a Processor. A nil logger uses slog.Default().
func NewProcessor(sitemap SitemapSource, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{sitemap: sitemap, logger: logger}
}

// Process expands every recognised directive in original. Unknown and
// malformed directives are copied through. A generator that fails is
// replaced by its placeholder and logged; Process itself never fails.
func (p *Processor) Process(ctx context.Context, original string) Result {
	if !strings.Contains(original, "[") {
		return Result{Processed: original}
	}

	segs := Parse(original)
	run := &expansion{p: p, ctx: ctx}

	var b strings.Builder
	b.Grow(len(original))
	res := Result{}
	for _, s := range segs {
		if s.Directive == nil {
			b.WriteString(s.Text)
			continue
		}
		d := s.Directive
		switch d.Kind {
		case KindSitemap:
			res.HasDirectives = true
			b.WriteString(run.sitemap(d))
		default:
			b.WriteString(d.Raw)
		}
	}
	res.Processed = b.String()
	return res
}

// expansion carries the data loaded during a single Process call.
type expansion struct {
	p   *Processor
	ctx context.Context

	sitemapLoaded bool
	sitemapGroups []SitemapGroup
	sitemapErr    error
}

func (e *expansion) sitemap(d *Directive) string {
	if !e.sitemapLoaded {
		e.sitemapLoaded = true
		if e.p.sitemap == nil {
			e.sitemapErr = ErrNoSitemapSource
		} else {
			e.sitemapGroups, e.sitemapErr = e.p.sitemap.SitemapGroups(e.ctx)
		}
	}
	if e.sitemapErr != nil {
		e.p.logger.Warn("sitemap shortcode unavailable",
			"category", model.EventCategoryContent,
			"directive", d.Raw,
			"error", e.sitemapErr)
		return sitemapPlaceholder
	}

	out, err := renderSitemap(sitemapOptions(d.Args), e.sitemapGroups)
	if err != nil {
		e.p.logger.Warn("sitemap shortcode render failed",
			"category", model.EventCategoryContent,
			"directive", d.Raw,
			"error", err)
		return sitemapPlaceholder
	}
	return out
}
