// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"html/template"
	"log/slog"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/ledgerline/site/internal/model"
	"github.com/ledgerline/site/internal/shortcode"
	"github.com/ledgerline/site/internal/store"
)

// Preview actions accepted by ContentService.Preview.
const (
	PreviewProcess = "process"
	PreviewRevert  = "revert"
)

// ContentView is the admin view of stored content.
type ContentView struct {
	Original      string `json:"original"`
	Processed     string `json:"processed"`
	HasDirectives bool   `json:"has_directives"`
}

// PreviewResult is the outcome of a Process or Revert request.
type PreviewResult struct {
	Content       string `json:"content"`
	HasDirectives bool   `json:"has_directives"`
}

// Rendered is content ready for a template.
type Rendered struct {
	ContentView
	HTML template.HTML
}

// ContentService expands shortcodes in posts and pages and renders them.
type ContentService struct {
	queries *store.Queries
	proc    *shortcode.Processor
	md      goldmark.Markdown
	auto    bool
}

// NewContentService creates a ContentService whose [sitemap] directives read
// categories and posts from db. auto controls whether admin views show
// processed content without an explicit Process request.
func NewContentService(db *sql.DB, auto bool, logger *slog.Logger) *ContentService {
	q := store.New(db)
	return NewContentServiceWithSource(q, NewStoreSitemapSource(q), auto, logger)
}

// NewContentServiceWithSource is NewContentService with a custom sitemap source.
func NewContentServiceWithSource(q *store.Queries, src shortcode.SitemapSource, auto bool, logger *slog.Logger) *ContentService {
	return &ContentService{
		queries: q,
		proc:    shortcode.NewProcessor(src, logger),
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Linkify),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			// shortcode output is raw HTML and must survive conversion
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
		auto: auto,
	}
}

// Auto reports whether admin views auto-process content.
func (s *ContentService) Auto() bool { return s.auto }

// NewDocument loads original into a fresh document.
func (s *ContentService) NewDocument(ctx context.Context, original string) *shortcode.Document {
	doc := shortcode.NewDocument(s.proc, s.auto)
	doc.SetOriginal(ctx, original)
	return doc
}

// Render expands directives in content and converts markdown to HTML.
// Public pages always show expanded content, whatever the auto setting.
func (s *ContentService) Render(ctx context.Context, content, format string) (Rendered, error) {
	doc := shortcode.NewDocument(s.proc, false)
	doc.SetOriginal(ctx, content)
	processed := doc.Process(ctx)

	out := Rendered{
		ContentView: ContentView{
			Original:      doc.Original(),
			Processed:     processed,
			HasDirectives: doc.HasDirectives(),
		},
	}
	if format != model.FormatMarkdown {
		out.HTML = template.HTML(processed)
		return out, nil
	}

	var buf bytes.Buffer
	if err := s.md.Convert([]byte(processed), &buf); err != nil {
		return out, fmt.Errorf("markdown render: %w", err)
	}
	out.HTML = template.HTML(buf.String())
	return out, nil
}

// View returns the admin view of content. Processed equals Original until
// the document has been processed.
func (s *ContentService) View(ctx context.Context, content string) ContentView {
	doc := s.NewDocument(ctx, content)
	return ContentView{
		Original:      doc.Original(),
		Processed:     doc.Display(),
		HasDirectives: doc.HasDirectives(),
	}
}

// PostContent returns the admin view of post id.
func (s *ContentService) PostContent(ctx context.Context, id int64) (ContentView, error) {
	p, err := s.queries.GetPostByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ContentView{}, fmt.Errorf("post %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return ContentView{}, err
	}
	return s.View(ctx, p.Content), nil
}

// PageContent returns the admin view of page id.
func (s *ContentService) PageContent(ctx context.Context, id int64) (ContentView, error) {
	p, err := s.queries.GetPageByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ContentView{}, fmt.Errorf("page %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return ContentView{}, err
	}
	return s.View(ctx, p.Content), nil
}

// Preview processes content or returns it unchanged for a revert. Nothing
// is stored either way.
func (s *ContentService) Preview(ctx context.Context, content, action string) (PreviewResult, error) {
	doc := shortcode.NewDocument(s.proc, false)
	doc.SetOriginal(ctx, content)

	switch action {
	case PreviewProcess, "":
		out := doc.Process(ctx)
		return PreviewResult{Content: out, HasDirectives: doc.HasDirectives()}, nil
	case PreviewRevert:
		return PreviewResult{Content: doc.Revert(), HasDirectives: doc.HasDirectives()}, nil
	default:
		return PreviewResult{}, invalid("action", "must be process or revert")
	}
}
