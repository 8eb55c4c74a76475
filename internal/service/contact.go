// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/mileusna/useragent"

	"github.com/ledgerline/site/internal/model"
	"github.com/ledgerline/site/internal/store"
)

// Contact field limits.
const (
	maxContactName    = 100
	maxContactEmail   = 254
	maxContactPhone   = 40
	maxContactSubject = 200
	maxContactMessage = 5000
)

// contactPolicy strips every tag; messages are shown as plain text.
var contactPolicy = bluemonday.StrictPolicy()

// ContactInput is a contact form submission.
type ContactInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// CountryLookup maps a client IP to an ISO country code, "" when unknown.
type CountryLookup interface {
	LookupCountry(ip string) string
}

// ContactService stores and manages contact form submissions.
type ContactService struct {
	queries *store.Queries
	logger  *slog.Logger
	geo     CountryLookup
}

// NewContactService creates a ContactService.
func NewContactService(db *sql.DB, logger *slog.Logger) *ContactService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContactService{queries: store.New(db), logger: logger}
}

// SetCountryLookup enables tagging submissions with the sender's country.
func (s *ContactService) SetCountryLookup(geo CountryLookup) {
	s.geo = geo
}

// Submit validates and stores a submission. ip and userAgent describe the
// sender; the user agent is kept only as a short browser/OS summary.
func (s *ContactService) Submit(ctx context.Context, in ContactInput, ip, userAgent string) (store.Contact, error) {
	clean := ContactInput{
		Name:    sanitizeLine(in.Name),
		Email:   strings.TrimSpace(in.Email),
		Phone:   sanitizeLine(in.Phone),
		Subject: sanitizeLine(in.Subject),
		Message: strings.TrimSpace(stripTags(in.Message)),
	}
	if err := validateContact(clean); err != nil {
		return store.Contact{}, err
	}

	var country string
	if s.geo != nil {
		country = s.geo.LookupCountry(ip)
	}

	c, err := s.queries.CreateContact(ctx, store.CreateContactParams{
		Name:      clean.Name,
		Email:     clean.Email,
		Phone:     clean.Phone,
		Subject:   clean.Subject,
		Message:   clean.Message,
		IpAddress: ip,
		Client:    ClientSummary(userAgent),
		Country:   country,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return c, fmt.Errorf("storing contact: %w", err)
	}
	s.logger.Info("contact received", "category", model.EventCategoryContact, "contact_id", c.ID)
	return c, nil
}

// List returns submissions newest first.
func (s *ContactService) List(ctx context.Context, limit, offset int64) ([]store.Contact, int64, error) {
	total, err := s.queries.CountContacts(ctx)
	if err != nil {
		return nil, 0, err
	}
	items, err := s.queries.ListContacts(ctx, store.ListContactsParams{Limit: limit, Offset: offset})
	if err != nil {
		return nil, 0, err
	}
	if items == nil {
		items = []store.Contact{}
	}
	return items, total, nil
}

// Get returns submission id and marks it read.
func (s *ContactService) Get(ctx context.Context, id int64) (store.Contact, error) {
	c, err := s.queries.GetContactByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return c, fmt.Errorf("contact %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return c, err
	}
	if !c.IsRead {
		if err := s.queries.MarkContactRead(ctx, id); err != nil {
			return c, err
		}
		c.IsRead = true
	}
	return c, nil
}

// Delete removes submission id.
func (s *ContactService) Delete(ctx context.Context, id int64) error {
	if _, err := s.queries.GetContactByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("contact %d: %w", id, ErrNotFound)
		}
		return err
	}
	return s.queries.DeleteContact(ctx, id)
}

// ClientSummary reduces a User-Agent header to "Browser on OS (device)".
func ClientSummary(ua string) string {
	if strings.TrimSpace(ua) == "" {
		return ""
	}
	parsed := useragent.Parse(ua)

	browser := parsed.Name
	if browser == "" {
		browser = "Unknown"
	}
	os := parsed.OS
	if os == "" {
		os = "Unknown"
	}

	device := "desktop"
	switch {
	case parsed.Bot:
		device = "bot"
	case parsed.Tablet:
		device = "tablet"
	case parsed.Mobile:
		device = "mobile"
	}
	return fmt.Sprintf("%s on %s (%s)", browser, os, device)
}

func validateContact(in ContactInput) error {
	ve := &ValidationError{}
	checkLen := func(field, v string, limit int) {
		if utf8.RuneCountInString(v) > limit {
			ve.Add(field, fmt.Sprintf("must be at most %d characters", limit))
		}
	}

	if in.Name == "" {
		ve.Add("name", "is required")
	}
	checkLen("name", in.Name, maxContactName)

	if in.Email == "" {
		ve.Add("email", "is required")
	} else if addr, err := mail.ParseAddress(in.Email); err != nil || addr.Address != in.Email {
		ve.Add("email", "must be a valid email address")
	}
	checkLen("email", in.Email, maxContactEmail)

	checkLen("phone", in.Phone, maxContactPhone)
	checkLen("subject", in.Subject, maxContactSubject)

	if in.Message == "" {
		ve.Add("message", "is required")
	}
	checkLen("message", in.Message, maxContactMessage)

	return ve.Err()
}

// stripTags removes markup. The policy escapes what it keeps, so the text is
// unescaped again; templates escape it on output.
func stripTags(s string) string {
	return html.UnescapeString(contactPolicy.Sanitize(s))
}

// sanitizeLine strips markup and collapses a single-line field.
func sanitizeLine(s string) string {
	return strings.Join(strings.Fields(stripTags(s)), " ")
}
