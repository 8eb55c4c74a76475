// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"time"

	"github.com/ledgerline/site/internal/middleware"
	"github.com/ledgerline/site/internal/service"
	"github.com/ledgerline/site/internal/store"
)

// ContactResponse represents a contact submission in API responses.
type ContactResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Subject   string    `json:"subject,omitempty"`
	Message   string    `json:"message"`
	IPAddress string    `json:"ip_address,omitempty"`
	Client    string    `json:"client,omitempty"`
	Country   string    `json:"country,omitempty"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

func storeContactToResponse(c store.Contact) ContactResponse {
	return ContactResponse{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Subject:   c.Subject,
		Message:   c.Message,
		IPAddress: c.IpAddress,
		Client:    c.Client,
		Country:   c.Country,
		IsRead:    c.IsRead,
		CreatedAt: c.CreatedAt,
	}
}

// contactReceipt is what an anonymous sender gets back.
type contactReceipt struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// SubmitContact handles POST /api/v1/contacts. It is public and rate-limited
// by the router.
func (h *Handler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	var in service.ContactInput
	if !decodeJSON(w, r, &in) {
		return
	}

	c, err := h.contacts.Submit(r.Context(), in, middleware.ClientIP(r), r.UserAgent())
	if err != nil {
		writeServiceError(w, err, "contact", "submit contact")
		return
	}
	WriteCreated(w, contactReceipt{ID: c.ID, CreatedAt: c.CreatedAt})
}

// ListContacts handles GET /api/v1/contacts.
func (h *Handler) ListContacts(w http.ResponseWriter, r *http.Request) {
	page, perPage, limit, offset := listParams(r)
	contacts, total, err := h.contacts.List(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, err, "contact", "list contacts")
		return
	}

	responses := make([]ContactResponse, 0, len(contacts))
	for _, c := range contacts {
		responses = append(responses, storeContactToResponse(c))
	}
	WriteSuccess(w, responses, pageMeta(total, page, perPage))
}

// GetContact handles GET /api/v1/contacts/{id}. Reading a submission marks
// it read.
func (h *Handler) GetContact(w http.ResponseWriter, r *http.Request) {
	c, ok := requireEntityByID(w, r, "contact", func(id int64) (store.Contact, error) {
		return h.contacts.Get(r.Context(), id)
	})
	if !ok {
		return
	}
	WriteSuccess(w, storeContactToResponse(c), nil)
}

// DeleteContact handles DELETE /api/v1/contacts/{id}.
func (h *Handler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "contact")
	if !ok {
		return
	}
	if err := h.contacts.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err, "contact", "delete contact")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
