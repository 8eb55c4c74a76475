// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"errors"
	"strings"
	"testing"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("balance-sheet-42")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=19456,t=2,p=1$") {
		t.Fatalf("unexpected encoding: %s", hash)
	}

	ok, err := CheckPassword("balance-sheet-42", hash)
	if err != nil || !ok {
		t.Fatalf("correct password rejected: ok=%v err=%v", ok, err)
	}

	ok, err = CheckPassword("balance-sheet-43", hash)
	if err != nil {
		t.Fatalf("CheckPassword error: %v", err)
	}
	if ok {
		t.Fatal("wrong password accepted")
	}
}

func TestHashPasswordSalted(t *testing.T) {
	a, _ := HashPassword("same-password")
	b, _ := HashPassword("same-password")
	if a == b {
		t.Error("two hashes of the same password should differ")
	}
}

func TestCheckPasswordLegacyParameters(t *testing.T) {
	// m=65536,t=1,p=4 hash of "changeme"
	legacy := "$argon2id$v=19$m=65536,t=1,p=4$mucMvOaS6lZ2LWNS1OEFKw$UYEWv8cvCOO6l2zGeqv3JPVe1nyy0x9GXBfYEuDM544"

	ok, err := CheckPassword("changeme", legacy)
	if err != nil || !ok {
		t.Fatalf("legacy hash rejected: ok=%v err=%v", ok, err)
	}
	if !NeedsRehash(legacy) {
		t.Error("legacy parameters should need rehash")
	}
}

func TestCheckPasswordInvalidHash(t *testing.T) {
	for _, h := range []string{"", "plain", "$bcrypt$x$y$z$w", "$argon2id$v=19$m=x$salt$key"} {
		if _, err := CheckPassword("pw", h); !errors.Is(err, ErrInvalidHash) {
			t.Errorf("CheckPassword(%q) err = %v, want ErrInvalidHash", h, err)
		}
	}
}

func TestNeedsRehashCurrent(t *testing.T) {
	hash, _ := HashPassword("current-params")
	if NeedsRehash(hash) {
		t.Error("fresh hash should not need rehash")
	}
	if !NeedsRehash("garbage") {
		t.Error("garbage should need rehash")
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("short"); !errors.Is(err, ErrPasswordTooShort) {
		t.Errorf("err = %v, want ErrPasswordTooShort", err)
	}
	if err := ValidatePassword("long-enough-pass"); err != nil {
		t.Errorf("err = %v", err)
	}
}

func TestCheckPasswordMissingUser(t *testing.T) {
	CheckPasswordMissingUser("anything")
}
