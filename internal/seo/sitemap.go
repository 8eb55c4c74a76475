// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package seo builds the XML sitemap, robots.txt and page meta descriptions.
package seo

import (
	"encoding/xml"
	"strings"
	"time"
)

// XMLNamespace is the sitemap XML namespace.
const XMLNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// ChangeFreq represents the change frequency of a URL.
type ChangeFreq string

// Change frequencies used by the site.
const (
	ChangeFreqDaily   ChangeFreq = "daily"
	ChangeFreqWeekly  ChangeFreq = "weekly"
	ChangeFreqMonthly ChangeFreq = "monthly"
)

// SitemapURL is a single <url> entry.
type SitemapURL struct {
	Loc        string     `xml:"loc"`
	LastMod    string     `xml:"lastmod,omitempty"`
	ChangeFreq ChangeFreq `xml:"changefreq,omitempty"`
	Priority   string     `xml:"priority,omitempty"`
}

// Sitemap is the complete <urlset> document.
type Sitemap struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []SitemapURL `xml:"url"`
}

// Entry is a piece of content to list: its slug and last modification.
type Entry struct {
	Slug      string
	UpdatedAt time.Time
}

// SitemapBuilder collects URLs and renders the sitemap XML.
type SitemapBuilder struct {
	siteURL string
	urls    []SitemapURL
}

// NewSitemapBuilder creates a builder for absolute URLs under siteURL.
func NewSitemapBuilder(siteURL string) *SitemapBuilder {
	return &SitemapBuilder{siteURL: strings.TrimSuffix(siteURL, "/")}
}

func (b *SitemapBuilder) add(path string, updated time.Time, freq ChangeFreq, priority string) {
	u := SitemapURL{Loc: b.siteURL + path, ChangeFreq: freq, Priority: priority}
	if !updated.IsZero() {
		u.LastMod = updated.UTC().Format(time.RFC3339)
	}
	b.urls = append(b.urls, u)
}

// AddHomepage adds the site root.
func (b *SitemapBuilder) AddHomepage() {
	b.add("/", time.Time{}, ChangeFreqDaily, "1.0")
}

// AddBlogIndex adds the post listing.
func (b *SitemapBuilder) AddBlogIndex() {
	b.add("/blog", time.Time{}, ChangeFreqDaily, "0.9")
}

// AddPages adds published pages at /{slug}.
func (b *SitemapBuilder) AddPages(pages []Entry) {
	for _, p := range pages {
		b.add("/"+p.Slug, p.UpdatedAt, ChangeFreqMonthly, "0.8")
	}
}

// AddPosts adds published posts at /blog/{slug}.
func (b *SitemapBuilder) AddPosts(posts []Entry) {
	for _, p := range posts {
		b.add("/blog/"+p.Slug, p.UpdatedAt, ChangeFreqWeekly, "0.7")
	}
}

// AddCategories adds category archives at /category/{slug}.
func (b *SitemapBuilder) AddCategories(categories []Entry) {
	for _, c := range categories {
		b.add("/category/"+c.Slug, c.UpdatedAt, ChangeFreqWeekly, "0.6")
	}
}

// Len returns the number of URLs added so far.
func (b *SitemapBuilder) Len() int {
	return len(b.urls)
}

// Build generates the sitemap XML with its header.
func (b *SitemapBuilder) Build() ([]byte, error) {
	urls := b.urls
	if urls == nil {
		urls = []SitemapURL{}
	}
	out, err := xml.MarshalIndent(Sitemap{XMLNS: XMLNamespace, URLs: urls}, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}
