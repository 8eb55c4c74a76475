// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
)

// PreviewRequest is the body of POST /api/v1/shortcodes/preview.
type PreviewRequest struct {
	Content string `json:"content"`
	Action  string `json:"action"`
}

// PreviewShortcodes handles POST /api/v1/shortcodes/preview. "process"
// expands the directives in content, "revert" hands the original back.
// Nothing is stored.
func (h *Handler) PreviewShortcodes(w http.ResponseWriter, r *http.Request) {
	var req PreviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.content.Preview(r.Context(), req.Content, req.Action)
	if err != nil {
		writeServiceError(w, err, "content", "preview content")
		return
	}
	WriteSuccess(w, result, nil)
}
