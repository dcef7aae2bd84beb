package numparse

import (
	"testing"
	"time"
)

func TestAmount_TabularFormat(t *testing.T) {
	cases := []struct {
		in       string
		expected string
	}{
		{"20,00", "20"},
		{"1 234,56", "1234.56"},
		{"1 234,56", "1234.56"}, // non-breaking space thousands separator
		{"1 234,56", "1234.56"}, // narrow non-breaking space
		{"-11,50", "-11.5"},
		{"0,00", "0"},
		{"", "0"},
		{"n/a", "0"},
		{"  7,5  ", "7.5"},
	}
	for _, tc := range cases {
		got := Amount(tc.in)
		if got.String() != tc.expected {
			t.Errorf("Amount(%q) = %s, expected %s", tc.in, got, tc.expected)
		}
	}
}

func TestPDFAmount_OppositeSeparators(t *testing.T) {
	cases := []struct {
		in       string
		expected string
	}{
		{"6.395,04", "6395.04"},
		{"8.152,50", "8152.5"},
		{"210,00", "210"},
		{"1.000.000,99", "1000000.99"},
		{"0,00", "0"},
		{"", "0"},
		{"garbage", "0"},
	}
	for _, tc := range cases {
		got := PDFAmount(tc.in)
		if got.String() != tc.expected {
			t.Errorf("PDFAmount(%q) = %s, expected %s", tc.in, got, tc.expected)
		}
	}
}

// The two formats use opposite separator conventions: feeding one format to
// the other parser corrupts the magnitude, which is exactly why they stay
// separate functions.
func TestAmountAndPDFAmount_AreNotInterchangeable(t *testing.T) {
	if got := Amount("6.395"); got.String() != "6.395" {
		t.Fatalf("Amount(\"6.395\") = %s, expected 6.395", got)
	}
	if got := PDFAmount("6.395"); got.String() != "6395" {
		t.Fatalf("PDFAmount(\"6.395\") = %s, expected 6395", got)
	}
}

func TestRate(t *testing.T) {
	cases := []struct {
		in       string
		expected string
	}{
		{"21.0", "21"},
		{"5.5", "5.5"},
		{"0", "0"},
		{"", "0"},
		{"abc", "0"},
	}
	for _, tc := range cases {
		got := Rate(tc.in)
		if got.String() != tc.expected {
			t.Errorf("Rate(%q) = %s, expected %s", tc.in, got, tc.expected)
		}
	}
}

func TestDate_KnownFormats(t *testing.T) {
	expected := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	cases := []string{
		"01/06/2025",
		"2025-06-01",
		"01-06-2025",
		"2025-06-01 18:30:00",
		"  01/06/2025  ",
	}
	for _, in := range cases {
		got := Date(in)
		if !got.Equal(expected) {
			t.Errorf("Date(%q) = %s, expected %s", in, got, expected)
		}
	}
}

func TestDate_FallbackIsTodayMidnightUTC(t *testing.T) {
	got := Date("not a date")
	now := time.Now()
	expected := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if !got.Equal(expected) {
		t.Fatalf("Date fallback = %s, expected %s", got, expected)
	}
}
