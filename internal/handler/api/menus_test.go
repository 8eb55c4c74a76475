// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/ledgerline/site/internal/menutree"
	"github.com/ledgerline/site/internal/model"
	"github.com/ledgerline/site/internal/testutil"
)

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

func TestMenuTree(t *testing.T) {
	db, h := testSetup(t)
	mainMenu := testutil.CreateMenu(t, db, "Main", "main")
	services := testutil.CreateMenuItem(t, db, mainMenu.ID, 0, "services", 2)
	testutil.CreateMenuItem(t, db, mainMenu.ID, 0, "home", 1)
	tax := testutil.CreateMenuItem(t, db, mainMenu.ID, services.ID, "tax", 1)
	testutil.CreateMenuItem(t, db, mainMenu.ID, tax.ID, "vat", 1)

	tests := []struct {
		name      string
		id        string
		wantCode  int
		wantCount int
	}{
		{"existing menu", itoa(mainMenu.ID), http.StatusOK, 4},
		{"unknown menu", "9999", http.StatusOK, 0},
		{"malformed id", "main", http.StatusUnprocessableEntity, 0},
		{"negative id", "-1", http.StatusUnprocessableEntity, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := executeHandler(t, h.MenuTree, newGetRequest(t, "/", map[string]string{"id": tt.id}))
			assertStatusCode(t, w, tt.wantCode)
			if tt.wantCode != http.StatusOK {
				resp := assertErrorResponse(t, w, "validation_error")
				if resp.Error.Details["id"] == "" {
					t.Errorf("details = %v, want an id error", resp.Error.Details)
				}
				return
			}
			tree := unmarshalData[menutree.Tree](t, w)
			if tree.Count() != tt.wantCount {
				t.Errorf("count = %d, want %d", tree.Count(), tt.wantCount)
			}
		})
	}

	w := executeHandler(t, h.MenuTree, newGetRequest(t, "/", map[string]string{"id": itoa(mainMenu.ID)}))
	tree := unmarshalData[menutree.Tree](t, w)
	if len(tree.Items) != 2 || tree.Items[0].Title != "home" || tree.Items[1].Title != "services" {
		t.Fatalf("top level = %+v", tree.Items)
	}
	vat := tree.Items[1].Children[0].Children[0]
	if vat.Title != "vat" || vat.Depth != 3 {
		t.Errorf("third level = %+v", vat)
	}
}

func TestMenuItemsByParent(t *testing.T) {
	db, h := testSetup(t)
	m := testutil.CreateMenu(t, db, "Footer", "footer")
	about := testutil.CreateMenuItem(t, db, m.ID, 0, "about", 1)
	testutil.CreateMenuItem(t, db, m.ID, about.ID, "team", 2)
	testutil.CreateMenuItem(t, db, m.ID, about.ID, "history", 1)

	tests := []struct {
		name      string
		query     string
		wantCode  int
		wantTitle []string
	}{
		{"top level", "", http.StatusOK, []string{"about"}},
		{"children by position", "?parent_id=" + itoa(about.ID), http.StatusOK, []string{"history", "team"}},
		{"bad parent", "?parent_id=x", http.StatusUnprocessableEntity, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := executeHandler(t, h.MenuItems, newGetRequest(t, "/items"+tt.query, map[string]string{"id": itoa(m.ID)}))
			assertStatusCode(t, w, tt.wantCode)
			if tt.wantCode != http.StatusOK {
				return
			}
			items, _ := unmarshalList[MenuItemResponse](t, w)
			if len(items) != len(tt.wantTitle) {
				t.Fatalf("got %d items, want %d", len(items), len(tt.wantTitle))
			}
			for i, it := range items {
				if it.Title != tt.wantTitle[i] {
					t.Errorf("item %d = %q, want %q", i, it.Title, tt.wantTitle[i])
				}
			}
		})
	}

	w := executeHandler(t, h.MenuItems, newGetRequest(t, "/", map[string]string{"id": "footer"}))
	assertStatusCode(t, w, http.StatusBadRequest)
}

func TestMenuCRUD(t *testing.T) {
	db, h := testSetup(t)
	editor := testutil.CreateUser(t, db, "editor@ledgerline.example", model.RoleEditor)
	mainMenu := testutil.CreateMenu(t, db, "Main", "main")

	w := executeHandler(t, h.CreateMenu, withUser(newJSONRequest(t, http.MethodPost, "/", `{"name":"Client portal"}`, nil), editor))
	assertStatusCode(t, w, http.StatusCreated)
	portal := unmarshalData[MenuResponse](t, w)
	if portal.Slug != "client-portal" {
		t.Fatalf("menu = %+v", portal)
	}

	w = executeHandler(t, h.CreateMenu, withUser(newJSONRequest(t, http.MethodPost, "/", `{"name":""}`, nil), editor))
	assertStatusCode(t, w, http.StatusUnprocessableEntity)

	w = executeHandler(t, h.UpdateMenu, withUser(newJSONRequest(t, http.MethodPut, "/", `{"slug":"primary"}`,
		map[string]string{"id": itoa(mainMenu.ID)}), editor))
	assertStatusCode(t, w, http.StatusUnprocessableEntity)

	w = executeHandler(t, h.DeleteMenu, withUser(newDeleteRequest(t, "/", map[string]string{"id": itoa(mainMenu.ID)}), editor))
	assertStatusCode(t, w, http.StatusConflict)

	w = executeHandler(t, h.ListMenus, newGetRequest(t, "/api/v1/menus", nil))
	assertStatusCode(t, w, http.StatusOK)
	if menus, _ := unmarshalList[MenuResponse](t, w); len(menus) != 2 {
		t.Errorf("got %d menus, want 2", len(menus))
	}

	w = executeHandler(t, h.DeleteMenu, withUser(newDeleteRequest(t, "/", map[string]string{"id": itoa(portal.ID)}), editor))
	assertStatusCode(t, w, http.StatusNoContent)
}

func TestMenuItemCRUD(t *testing.T) {
	db, h := testSetup(t)
	editor := testutil.CreateUser(t, db, "editor@ledgerline.example", model.RoleEditor)
	m := testutil.CreateMenu(t, db, "Main", "main")
	menuID := map[string]string{"id": itoa(m.ID)}

	w := executeHandler(t, h.CreateMenuItem, withUser(newJSONRequest(t, http.MethodPost, "/",
		`{"title":"Services","url":"/services"}`, menuID), editor))
	assertStatusCode(t, w, http.StatusCreated)
	parent := unmarshalData[MenuItemResponse](t, w)

	w = executeHandler(t, h.CreateMenuItem, withUser(newJSONRequest(t, http.MethodPost, "/",
		`{"title":"Tax","url":"/tax","parent_id":`+itoa(parent.ID)+`}`, menuID), editor))
	assertStatusCode(t, w, http.StatusCreated)
	child := unmarshalData[MenuItemResponse](t, w)
	if child.ParentID == nil || *child.ParentID != parent.ID || child.Target != model.TargetSelf {
		t.Fatalf("child = %+v", child)
	}

	w = executeHandler(t, h.CreateMenuItem, withUser(newJSONRequest(t, http.MethodPost, "/",
		`{"title":"Bad","url":"javascript:alert(1)"}`, menuID), editor))
	assertStatusCode(t, w, http.StatusUnprocessableEntity)

	w = executeHandler(t, h.CreateMenuItem, withUser(newJSONRequest(t, http.MethodPost, "/",
		`{"title":"Orphan"}`, map[string]string{"id": "9999"}), editor))
	assertStatusCode(t, w, http.StatusNotFound)

	// the parent still has a child
	w = executeHandler(t, h.DeleteMenuItem, withUser(newDeleteRequest(t, "/", map[string]string{"id": itoa(parent.ID)}), editor))
	assertStatusCode(t, w, http.StatusConflict)
	assertErrorResponse(t, w, "conflict")

	w = executeHandler(t, h.UpdateMenuItem, withUser(newJSONRequest(t, http.MethodPut, "/",
		`{"is_active":false}`, map[string]string{"id": itoa(child.ID)}), editor))
	assertStatusCode(t, w, http.StatusOK)
	if got := unmarshalData[MenuItemResponse](t, w); got.IsActive {
		t.Error("item still active")
	}

	w = executeHandler(t, h.MenuTree, newGetRequest(t, "/", menuID))
	if tree := unmarshalData[menutree.Tree](t, w); tree.Count() != 1 {
		t.Errorf("tree count = %d, inactive item should be hidden", tree.Count())
	}

	w = executeHandler(t, h.GetMenu, withUser(newGetRequest(t, "/", menuID), editor))
	assertStatusCode(t, w, http.StatusOK)
	if got := unmarshalData[MenuResponse](t, w); len(got.Items) != 2 {
		t.Errorf("signed-in menu items = %d, want 2", len(got.Items))
	}

	w = executeHandler(t, h.GetMenu, newGetRequest(t, "/", menuID))
	if got := unmarshalData[MenuResponse](t, w); len(got.Items) != 0 {
		t.Errorf("anonymous menu items = %d, want 0", len(got.Items))
	}

	w = executeHandler(t, h.DeleteMenuItem, withUser(newDeleteRequest(t, "/", map[string]string{"id": itoa(child.ID)}), editor))
	assertStatusCode(t, w, http.StatusNoContent)
	w = executeHandler(t, h.DeleteMenuItem, withUser(newDeleteRequest(t, "/", map[string]string{"id": itoa(parent.ID)}), editor))
	assertStatusCode(t, w, http.StatusNoContent)

	w = executeHandler(t, h.GetMenuItem, newGetRequest(t, "/", map[string]string{"id": itoa(parent.ID)}))
	assertStatusCode(t, w, http.StatusNotFound)
}
