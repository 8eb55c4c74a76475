// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

// Route pattern constants for chi router registration.
const (
	// RouteRoot is the root path.
	RouteRoot = "/"
	// RouteBlog is the post listing.
	RouteBlog = "/blog"
	// RouteBlogPost is a single post.
	RouteBlogPost = RouteBlog + RouteParamSlug
	// RouteCategorySlug is the category archive route pattern.
	RouteCategorySlug = "/category" + RouteParamSlug
	// RouteContact is the contact form.
	RouteContact = "/contact"
	// RouteSitemap is the XML sitemap.
	RouteSitemap = "/sitemap.xml"
	// RouteRobots is robots.txt.
	RouteRobots = "/robots.txt"
	// RouteFileDownload serves an uploaded file as an attachment.
	RouteFileDownload = "/files" + RouteParamID + "/download"

	// RouteLogin is the login route.
	RouteLogin = "/login"
	// RouteLogout is the logout route.
	RouteLogout = "/logout"

	// RouteAdmin is the admin root.
	RouteAdmin = "/admin"
	// RouteAdminContent is the content preview, relative to RouteAdmin.
	RouteAdminContent = "/content/{kind}" + RouteParamID

	// RouteParamID is the ID parameter pattern.
	RouteParamID = "/{id}"
	// RouteParamSlug is the slug parameter pattern.
	RouteParamSlug = "/{slug}"
)

const (
	redirectAdmin   = RouteAdmin
	redirectLogin   = RouteLogin
	redirectContact = RouteContact
)

// Listing sizes.
const (
	// PostsPerPage is the blog and category page size.
	PostsPerPage = 10
	// HomePostCount is how many recent posts the home page lists.
	HomePostCount = 5
	// DashboardEventCount is how many events the dashboard shows.
	DashboardEventCount = 20
)

// HeaderContentType is the Content-Type HTTP header name.
const HeaderContentType = "Content-Type"
