package model

import (
	"strings"
	"testing"
	"time"

	"pgregory.net/rapid"
)

// TestNewGameTitle tests the NewGameTitle function
func TestNewGameTitle(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		expectError   bool
		expectedValue string
		expectedMsg   string
		description   string
	}{
		{
			name:          "Valid title",
			input:         "The Legend of Zelda",
			expectedValue: "The Legend of Zelda",
			description:   "通常のタイトルで成功すること",
		},
		{
			name:          "Trimmed title",
			input:         "  Metroid  ",
			expectedValue: "Metroid",
			description:   "前後の空白が除去されること",
		},
		{
			name:        "Empty title",
			input:       "",
			expectError: true,
			expectedMsg: "Game title cannot be empty",
			description: "空文字列の場合、エラーになること",
		},
		{
			name:        "Whitespace only",
			input:       "   ",
			expectError: true,
			expectedMsg: "Game title cannot be empty",
			description: "空白のみの場合、エラーになること",
		},
		{
			name:          "Exactly 200 characters",
			input:         strings.Repeat("a", 200),
			expectedValue: strings.Repeat("a", 200),
			description:   "200文字ちょうどは許可されること",
		},
		{
			name:        "201 characters",
			input:       strings.Repeat("a", 201),
			expectError: true,
			expectedMsg: "Game title cannot exceed 200 characters",
			description: "201文字の場合、エラーになること",
		},
		{
			name:        "Length is checked before trimming",
			input:       " " + strings.Repeat("a", 200),
			expectError: true,
			expectedMsg: "Game title cannot exceed 200 characters",
			description: "長さはトリム前の値で判定されること",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewGameTitle(tt.input)

			if tt.expectError {
				if r.IsOk() {
					t.Fatalf("%s: expected error but got %q", tt.description, r.Unwrap().String())
				}
				err := r.UnwrapErr()
				if err.Field != "title" {
					t.Errorf("%s: expected field title, got %s", tt.description, err.Field)
				}
				if err.Message != tt.expectedMsg {
					t.Errorf("%s: expected message %q, got %q", tt.description, tt.expectedMsg, err.Message)
				}
				return
			}

			if r.IsErr() {
				t.Fatalf("%s: unexpected error: %v", tt.description, r.UnwrapErr())
			}
			if got := r.Unwrap().String(); got != tt.expectedValue {
				t.Errorf("%s: expected %q, got %q", tt.description, tt.expectedValue, got)
			}
		})
	}
}

// TestSimpleValueObjects covers id, description, platform and format rules.
func TestSimpleValueObjects(t *testing.T) {
	type outcome struct {
		ok      bool
		value   string
		field   string
		message string
	}
	id := func(s string) outcome {
		r := NewGameID(s)
		if r.IsOk() {
			return outcome{ok: true, value: r.Unwrap().String()}
		}
		return outcome{field: r.UnwrapErr().Field, message: r.UnwrapErr().Message}
	}
	desc := func(s string) outcome {
		r := NewGameDescription(s)
		if r.IsOk() {
			return outcome{ok: true, value: r.Unwrap().String()}
		}
		return outcome{field: r.UnwrapErr().Field, message: r.UnwrapErr().Message}
	}
	platform := func(s string) outcome {
		r := NewPlatform(s)
		if r.IsOk() {
			return outcome{ok: true, value: r.Unwrap().String()}
		}
		return outcome{field: r.UnwrapErr().Field, message: r.UnwrapErr().Message}
	}
	format := func(s string) outcome {
		r := NewFormat(s)
		if r.IsOk() {
			return outcome{ok: true, value: r.Unwrap().String()}
		}
		return outcome{field: r.UnwrapErr().Field, message: r.UnwrapErr().Message}
	}

	tests := []struct {
		name     string
		create   func(string) outcome
		input    string
		expected outcome
	}{
		{"GameID trimmed", id, "  game-1 ", outcome{ok: true, value: "game-1"}},
		{"GameID empty", id, "   ", outcome{field: "gameId", message: "GameId cannot be empty"}},
		{"Description empty allowed", desc, "", outcome{ok: true, value: ""}},
		{"Description keeps whitespace", desc, "  spaced  ", outcome{ok: true, value: "  spaced  "}},
		{"Description 1000 chars", desc, strings.Repeat("d", 1000), outcome{ok: true, value: strings.Repeat("d", 1000)}},
		{"Description too long", desc, strings.Repeat("d", 1001), outcome{field: "description", message: "Game description cannot exceed 1000 characters"}},
		{"Platform trimmed", platform, " Nintendo Switch ", outcome{ok: true, value: "Nintendo Switch"}},
		{"Platform empty", platform, "", outcome{field: "platform", message: "Platform name is required"}},
		{"Platform too long", platform, strings.Repeat("p", 101), outcome{field: "platform", message: "Platform name cannot exceed 100 characters"}},
		{"Format trimmed", format, " Physical", outcome{ok: true, value: "Physical"}},
		{"Format whitespace", format, "   ", outcome{field: "format", message: "Format name is required"}},
		{"Format too long", format, strings.Repeat("f", 51), outcome{field: "format", message: "Format name cannot exceed 50 characters"}},
		{"Multibyte counted by character", platform, strings.Repeat("機", 100), outcome{ok: true, value: strings.Repeat("機", 100)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.create(tt.input); got != tt.expected {
				t.Errorf("expected %+v, got %+v", tt.expected, got)
			}
		})
	}
}

func TestNewStatus(t *testing.T) {
	tests := []struct {
		input    string
		expected StatusType
	}{
		{"Owned", StatusOwned},
		{"owned", StatusOwned},
		{"WISHLIST", StatusWishlist},
		{" sold ", StatusSold},
		{"Loaned", StatusLoaned},
	}
	for _, tt := range tests {
		r := NewStatus(tt.input)
		if r.IsErr() {
			t.Errorf("NewStatus(%q): unexpected error %v", tt.input, r.UnwrapErr())
			continue
		}
		if r.Unwrap().Type() != tt.expected {
			t.Errorf("NewStatus(%q): expected %s, got %s", tt.input, tt.expected, r.Unwrap().Type())
		}
	}

	r := NewStatus("Borrowed")
	if r.IsOk() {
		t.Fatal("Expected error for unknown status, got nil")
	}
	err := r.UnwrapErr()
	if err.Field != "status" {
		t.Errorf("Expected field status, got %s", err.Field)
	}
	if !strings.Contains(err.Message, "Owned, Wishlist, Sold, Loaned") {
		t.Errorf("Expected message listing valid statuses, got %q", err.Message)
	}
	if err.Message != "Invalid status: Borrowed. Valid statuses are: Owned, Wishlist, Sold, Loaned" {
		t.Errorf("Unexpected message %q", err.Message)
	}
}

func TestStatusFrom(t *testing.T) {
	if got := StatusFrom(StatusLoaned).String(); got != "Loaned" {
		t.Errorf("Expected Loaned, got %s", got)
	}
}

// TestValueObjectLengthLimits checks that every input above a field's limit is rejected
// with that field's message.
func TestValueObjectLengthLimits(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		extra := rapid.IntRange(1, 50).Draw(t, "extra")
		ch := rapid.SampledFrom([]string{"a", "Z", "é", "ゲ"}).Draw(t, "char")

		if r := NewGameTitle(strings.Repeat(ch, maxTitleLength+extra)); r.IsOk() || r.UnwrapErr().Field != "title" {
			t.Fatalf("title over limit accepted")
		}
		if r := NewGameDescription(strings.Repeat(ch, maxDescriptionLength+extra)); r.IsOk() || r.UnwrapErr().Field != "description" {
			t.Fatalf("description over limit accepted")
		}
		if r := NewPlatform(strings.Repeat(ch, maxPlatformLength+extra)); r.IsOk() || r.UnwrapErr().Message != "Platform name cannot exceed 100 characters" {
			t.Fatalf("platform over limit accepted")
		}
		if r := NewFormat(strings.Repeat(ch, maxFormatLength+extra)); r.IsOk() || r.UnwrapErr().Message != "Format name cannot exceed 50 characters" {
			t.Fatalf("format over limit accepted")
		}
	})
}

// TestNewDateRange tests the NewDateRange function
func TestNewDateRange(t *testing.T) {
	tests := []struct {
		name        string
		from        string
		to          string
		expectError bool
		description string
	}{
		{"Date only", "2025-01-01", "2025-01-31", false, "日付のみの形式で成功すること"},
		{"RFC3339", "2025-01-01T10:00:00Z", "2025-01-31T10:00:00Z", false, "RFC3339形式で成功すること"},
		{"Defaults", "", "", false, "空文字列の場合、デフォルト期間になること"},
		{"Invalid from", "2025/01/01", "", true, "不正な形式はエラーになること"},
		{"Reversed", "2025-02-01", "2025-01-01", true, "fromがtoより後の場合、エラーになること"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dr, err := NewDateRange(tt.from, tt.to)
			if tt.expectError {
				if err == nil {
					t.Errorf("%s: expected error but got nil", tt.description)
				}
				return
			}
			if err != nil {
				t.Fatalf("%s: unexpected error: %v", tt.description, err)
			}
			if dr.From().Hour() != 0 || dr.From().Minute() != 0 {
				t.Errorf("%s: expected from normalized to begin of day, got %v", tt.description, dr.From())
			}
			if dr.To().Hour() != 23 || dr.To().Minute() != 59 {
				t.Errorf("%s: expected to normalized to end of day, got %v", tt.description, dr.To())
			}
		})
	}
}

func TestDateRangeContains(t *testing.T) {
	dr, err := NewDateRange("2025-03-01", "2025-03-31")
	if err != nil {
		t.Fatalf("Failed to create date range: %v", err)
	}
	inside := time.Date(2025, 3, 31, 22, 0, 0, 0, time.Local)
	outside := time.Date(2025, 4, 1, 0, 0, 0, 0, time.Local)
	if !dr.Contains(inside) {
		t.Errorf("Expected %v to be inside the range", inside)
	}
	if dr.Contains(outside) {
		t.Errorf("Expected %v to be outside the range", outside)
	}
}

func TestLocalDateRoundTrip(t *testing.T) {
	d, err := ParseLocalDate("2024-02-29")
	if err != nil {
		t.Fatalf("Failed to parse date: %v", err)
	}
	if got := FormatLocalDate(d); got != "2024-02-29" {
		t.Errorf("Expected 2024-02-29, got %s", got)
	}
}
