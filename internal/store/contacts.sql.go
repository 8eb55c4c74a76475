// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const contactColumns = `id, name, email, phone, subject, message, ip_address, client, country, is_read, created_at`

func scanContact(row interface{ Scan(...any) error }) (Contact, error) {
	var c Contact
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Email,
		&c.Phone,
		&c.Subject,
		&c.Message,
		&c.IpAddress,
		&c.Client,
		&c.Country,
		&c.IsRead,
		&c.CreatedAt,
	)
	return c, err
}

type CreateContactParams struct {
	Name      string
	Email     string
	Phone     string
	Subject   string
	Message   string
	IpAddress string
	Client    string
	Country   string
	CreatedAt time.Time
}

func (q *Queries) CreateContact(ctx context.Context, arg CreateContactParams) (Contact, error) {
	row := q.db.QueryRowContext(ctx,
		`INSERT INTO contacts (name, email, phone, subject, message, ip_address, client, country, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING `+contactColumns,
		arg.Name,
		arg.Email,
		arg.Phone,
		arg.Subject,
		arg.Message,
		arg.IpAddress,
		arg.Client,
		arg.Country,
		arg.CreatedAt,
	)
	return scanContact(row)
}

func (q *Queries) GetContactByID(ctx context.Context, id int64) (Contact, error) {
	return scanContact(q.db.QueryRowContext(ctx, `SELECT `+contactColumns+` FROM contacts WHERE id = ?`, id))
}

type ListContactsParams struct {
	Limit  int64
	Offset int64
}

func (q *Queries) ListContacts(ctx context.Context, arg ListContactsParams) ([]Contact, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+contactColumns+` FROM contacts ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var contacts []Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return contacts, nil
}

func (q *Queries) CountContacts(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contacts`).Scan(&n)
	return n, err
}

func (q *Queries) CountUnreadContacts(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contacts WHERE is_read = 0`).Scan(&n)
	return n, err
}

func (q *Queries) MarkContactRead(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `UPDATE contacts SET is_read = 1 WHERE id = ?`, id)
	return err
}

func (q *Queries) DeleteContact(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = ?`, id)
	return err
}
