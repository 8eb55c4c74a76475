// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package shortcode

import (
	"bytes"
	"context"
	"html/template"
	"strings"
)

// SitemapEntry is one linked post inside a group.
type SitemapEntry struct {
	Title string
	URL   string
}

// SitemapGroup is a category and its published posts.
type SitemapGroup struct {
	Name    string
	Slug    string
	URL     string
	Entries []SitemapEntry
}

// SitemapSource supplies the category listing. Implementations read the
// database; the processor calls SitemapGroups at most once per Process call.
type SitemapSource interface {
	SitemapGroups(ctx context.Context) ([]SitemapGroup, error)
}

// SitemapSourceFunc adapts a function to SitemapSource.
type SitemapSourceFunc func(ctx context.Context) ([]SitemapGroup, error)

// SitemapGroups calls f.
func (f SitemapSourceFunc) SitemapGroups(ctx context.Context) ([]SitemapGroup, error) {
	return f(ctx)
}

// sitemapPlaceholder replaces a sitemap directive whose data could not be loaded.
const sitemapPlaceholder = `<nav class="sitemap sitemap-unavailable"></nav>`

// SitemapOptions are the resolved arguments of a sitemap directive.
type SitemapOptions struct {
	// Groups lists category slugs in display order. Empty means every group.
	Groups []string
	// Limit caps entries per group. Zero means no cap.
	Limit int
	// Hover adds the hoverable class to groups and entries.
	Hover bool
	Title string
}

// sitemapOptions resolves directive args, replacing missing or invalid
// values with defaults.
func sitemapOptions(args Args) SitemapOptions {
	opts := SitemapOptions{
		Groups: args.List("groups"),
		Limit:  args.Int("limit", 0),
		Hover:  args.Bool("hover", true),
		Title:  strings.TrimSpace(args.String("title", "")),
	}
	if opts.Limit < 0 {
		opts.Limit = 0
	}
	for i, g := range opts.Groups {
		opts.Groups[i] = strings.ToLower(g)
	}
	return opts
}

// selectGroups applies opts to the full listing. When none of the requested
// slugs exist the default grouping (every group) is used.
func selectGroups(all []SitemapGroup, opts SitemapOptions) []SitemapGroup {
	selected := all
	if len(opts.Groups) > 0 {
		bySlug := make(map[string]SitemapGroup, len(all))
		for _, g := range all {
			bySlug[g.Slug] = g
		}
		picked := make([]SitemapGroup, 0, len(opts.Groups))
		seen := make(map[string]bool, len(opts.Groups))
		for _, slug := range opts.Groups {
			g, ok := bySlug[slug]
			if !ok || seen[slug] {
				continue
			}
			seen[slug] = true
			picked = append(picked, g)
		}
		if len(picked) > 0 {
			selected = picked
		}
	}

	if opts.Limit == 0 {
		return selected
	}
	out := make([]SitemapGroup, len(selected))
	for i, g := range selected {
		if len(g.Entries) > opts.Limit {
			g.Entries = g.Entries[:opts.Limit]
		}
		out[i] = g
	}
	return out
}

var sitemapTmpl = template.Must(template.New("sitemap").Parse(
	`<nav class="sitemap">` +
		`{{if .Title}}<h2 class="sitemap-title">{{.Title}}</h2>{{end}}` +
		`<ul class="sitemap-groups">` +
		`{{range .Groups}}<li class="sitemap-group{{if $.Hover}} hoverable{{end}}">` +
		`<a href="{{.URL}}">{{.Name}}</a>` +
		`{{if .Entries}}<ul class="sitemap-entries">` +
		`{{range .Entries}}<li class="sitemap-entry{{if $.Hover}} hoverable{{end}}"><a href="{{.URL}}">{{.Title}}</a></li>{{end}}` +
		`</ul>{{end}}` +
		`</li>{{end}}` +
		`</ul></nav>`))

// renderSitemap is the sitemap generator. Its output depends only on opts
// and groups.
func renderSitemap(opts SitemapOptions, groups []SitemapGroup) (string, error) {
	var buf bytes.Buffer
	err := sitemapTmpl.Execute(&buf, struct {
		Title  string
		Hover  bool
		Groups []SitemapGroup
	}{
		Title:  opts.Title,
		Hover:  opts.Hover,
		Groups: selectGroups(groups, opts),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
