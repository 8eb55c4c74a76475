// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package menutree turns the flat, parent-referencing menu_items rows of one
// menu into the nested navigation the site renders.
//
// Rows are copied into an id-keyed arena and levels are expanded one at a
// time, so a tree never holds live references back into the input and bad
// data (orphans, cycles, rows from another menu) cannot make the build loop.
package menutree

import (
	"cmp"
	"slices"

	"github.com/ledgerline/site/internal/model"
	"github.com/ledgerline/site/internal/store"
)

// Node is one rendered menu entry.
type Node struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	URL      string `json:"url,omitempty"`
	Target   string `json:"target"`
	Position int64  `json:"position"`
	Depth    int    `json:"depth"`
	Children []Node `json:"children,omitempty"`
}

// HasChildren is used by templates to pick the dropdown markup.
func (n Node) HasChildren() bool {
	return len(n.Children) > 0
}

// Tree is the built navigation for a single menu.
type Tree struct {
	MenuID int64  `json:"menu_id"`
	Items  []Node `json:"items"`
}

// Empty reports whether the tree has no visible entries.
func (t Tree) Empty() bool {
	return len(t.Items) == 0
}

// Count returns the number of nodes at every level.
func (t Tree) Count() int {
	n := 0
	stack := [][]Node{t.Items}
	for len(stack) > 0 {
		level := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n += len(level)
		for _, node := range level {
			if len(node.Children) > 0 {
				stack = append(stack, node.Children)
			}
		}
	}
	return n
}

// arenaNode is a row plus the arena indexes of its kept children.
type arenaNode struct {
	item     store.MenuItem
	depth    int
	children []int
}

// Build assembles the tree for menuID from items. Only active items whose
// menu matches are used, siblings are ordered by position with ties kept in
// input order, and nesting stops at maxDepth levels (model.MenuMaxDepth when
// maxDepth <= 0). Children of an inactive item are not shown.
func Build(menuID int64, items []store.MenuItem, maxDepth int) Tree {
	if maxDepth <= 0 {
		maxDepth = model.MenuMaxDepth
	}
	tree := Tree{MenuID: menuID, Items: []Node{}}

	// candidates grouped by parent id; 0 is the root group
	byParent := make(map[int64][]store.MenuItem)
	for _, it := range items {
		if it.MenuID != menuID || !it.IsActive {
			continue
		}
		parent := int64(0)
		if it.ParentID.Valid {
			parent = it.ParentID.Int64
		}
		byParent[parent] = append(byParent[parent], it)
	}
	for _, group := range byParent {
		slices.SortStableFunc(group, func(a, b store.MenuItem) int {
			return cmp.Compare(a.Position, b.Position)
		})
	}

	var arena []arenaNode
	visited := make(map[int64]bool)
	levels := make([][]int, 0, maxDepth)

	// level 1
	var frontier []int
	for _, it := range byParent[0] {
		if visited[it.ID] {
			continue
		}
		visited[it.ID] = true
		arena = append(arena, arenaNode{item: it, depth: 1})
		frontier = append(frontier, len(arena)-1)
	}

	// levels 2..maxDepth, expanded iteratively
	for depth := 1; len(frontier) > 0; depth++ {
		levels = append(levels, frontier)
		if depth == maxDepth {
			break
		}
		var next []int
		for _, idx := range frontier {
			parentID := arena[idx].item.ID
			for _, child := range byParent[parentID] {
				if visited[child.ID] {
					continue
				}
				visited[child.ID] = true
				arena = append(arena, arenaNode{item: child, depth: depth + 1})
				ci := len(arena) - 1
				arena[idx].children = append(arena[idx].children, ci)
				next = append(next, ci)
			}
		}
		frontier = next
	}

	// materialise deepest level first so every child Node is complete before
	// its parent copies it
	built := make([]Node, len(arena))
	for d := len(levels) - 1; d >= 0; d-- {
		for _, idx := range levels[d] {
			an := arena[idx]
			node := Node{
				ID:       an.item.ID,
				Title:    an.item.Title,
				Target:   an.item.Target,
				Position: an.item.Position,
				Depth:    an.depth,
			}
			if an.item.Url.Valid {
				node.URL = an.item.Url.String
			}
			if node.Target == "" {
				node.Target = model.TargetSelf
			}
			if len(an.children) > 0 {
				node.Children = make([]Node, 0, len(an.children))
				for _, ci := range an.children {
					node.Children = append(node.Children, built[ci])
				}
			}
			built[idx] = node
		}
	}

	if len(levels) > 0 {
		for _, idx := range levels[0] {
			tree.Items = append(tree.Items, built[idx])
		}
	}
	return tree
}
