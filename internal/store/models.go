// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"database/sql"
	"time"
)

type User struct {
	ID           int64        `json:"id"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"`
	Role         string       `json:"role"`
	Name         string       `json:"name"`
	LastLoginAt  sql.NullTime `json:"last_login_at"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

type Category struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Slug        string         `json:"slug"`
	Description sql.NullString `json:"description"`
	Position    int64          `json:"position"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

type Post struct {
	ID          int64         `json:"id"`
	Title       string        `json:"title"`
	Slug        string        `json:"slug"`
	Excerpt     string        `json:"excerpt"`
	Content     string        `json:"content"`
	Format      string        `json:"format"`
	Status      string        `json:"status"`
	CategoryID  sql.NullInt64 `json:"category_id"`
	AuthorID    int64         `json:"author_id"`
	PublishAt   sql.NullTime  `json:"publish_at"`
	PublishedAt sql.NullTime  `json:"published_at"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

type Page struct {
	ID              int64        `json:"id"`
	Title           string       `json:"title"`
	Slug            string       `json:"slug"`
	Content         string       `json:"content"`
	Format          string       `json:"format"`
	Status          string       `json:"status"`
	MetaDescription string       `json:"meta_description"`
	AuthorID        int64        `json:"author_id"`
	PublishedAt     sql.NullTime `json:"published_at"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

type Contact struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	IpAddress string    `json:"ip_address"`
	Client    string    `json:"client"`
	Country   string    `json:"country"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

type Menu struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type MenuItem struct {
	ID        int64          `json:"id"`
	MenuID    int64          `json:"menu_id"`
	ParentID  sql.NullInt64  `json:"parent_id"`
	Title     string         `json:"title"`
	Url       sql.NullString `json:"url"`
	Target    string         `json:"target"`
	Position  int64          `json:"position"`
	IsActive  bool           `json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

type File struct {
	ID           int64         `json:"id"`
	Uuid         string        `json:"uuid"`
	Filename     string        `json:"filename"`
	MimeType     string        `json:"mime_type"`
	Size         int64         `json:"size"`
	Width        sql.NullInt64 `json:"width"`
	Height       sql.NullInt64 `json:"height"`
	HasThumbnail bool          `json:"has_thumbnail"`
	UploadedBy   int64         `json:"uploaded_by"`
	CreatedAt    time.Time     `json:"created_at"`
}

type Event struct {
	ID        int64         `json:"id"`
	Level     string        `json:"level"`
	Category  string        `json:"category"`
	Message   string        `json:"message"`
	UserID    sql.NullInt64 `json:"user_id"`
	Metadata  string        `json:"metadata"`
	IpAddress string        `json:"ip_address"`
	CreatedAt time.Time     `json:"created_at"`
}
