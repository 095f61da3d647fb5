package text

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestJoinNames(t *testing.T) {
	tests := []struct {
		name  string
		names []string
		want  string
	}{
		{name: "empty", names: nil, want: ""},
		{name: "single", names: []string{"Alex"}, want: "Alex"},
		{name: "pair", names: []string{"Alex", "Sam"}, want: "Alex and Sam"},
		{name: "three", names: []string{"Alex", "Sam", "Riley"}, want: "Alex, Sam, and Riley"},
		{name: "four", names: []string{"A", "B", "C", "D"}, want: "A, B, C, and D"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, JoinNames(tt.names))
		})
	}
}

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{amount: 0, want: "$0"},
		{amount: 500, want: "$500"},
		{amount: 5000, want: "$5,000"},
		{amount: 5000.5, want: "$5,000.50"},
		{amount: 1234567.89, want: "$1,234,567.89"},
		{amount: 1000000, want: "$1,000,000"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatCurrency(tt.amount))
	}
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "50%", FormatPercent(50))
	assert.Equal(t, "33.33%", FormatPercent(33.333))
	assert.Equal(t, "0%", FormatPercent(0))
	assert.Equal(t, "12.50%", FormatPercent(12.5))
}

func TestOrdinal(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{1, "1st"}, {2, "2nd"}, {3, "3rd"}, {4, "4th"},
		{11, "11th"}, {12, "12th"}, {13, "13th"},
		{21, "21st"}, {22, "22nd"}, {23, "23rd"},
		{101, "101st"}, {111, "111th"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Ordinal(tt.n))
	}
}

func TestNumberToWords(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "zero"},
		{7, "seven"},
		{14, "fourteen"},
		{30, "thirty"},
		{42, "forty-two"},
		{100, "one hundred"},
		{118, "one hundred and eighteen"},
		{2500, "two thousand five hundred"},
		{1000000, "1000000"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NumberToWords(tt.n))
	}
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "15 March 2026", FormatDate("2026-03-15"))
	assert.Equal(t, "not-a-date", FormatDate("not-a-date"))
	assert.Equal(t, "", FormatDate(""))
}

func TestFormatTimestamp(t *testing.T) {
	loc := time.FixedZone("AEST", 10*3600)
	ts := time.Date(2026, 3, 15, 0, 30, 0, 0, time.UTC)

	assert.Equal(t, "15 March 2026 at 10:30 AM AEST", FormatTimestamp(ts, loc))
}

func TestShortHash(t *testing.T) {
	assert.Equal(t, "abcdef", ShortHash("abcdef", 16))
	assert.Equal(t, "0123456789abcdef", ShortHash("0123456789abcdef0123", 16))
	assert.Equal(t, "", ShortHash("", 16))
}
