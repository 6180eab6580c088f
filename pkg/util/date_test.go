package util

import (
	"strconv"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	got, ok := ParseDate("2020-03-23")
	if !ok {
		t.Fatalf("expected ok")
	}
	want := time.Date(2020, 3, 23, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseDateRejectsGarbage(t *testing.T) {
	if _, ok := ParseDate("23/03/2020"); ok {
		t.Fatalf("expected failure for non-ISO date")
	}
	if _, ok := ParseDate(""); ok {
		t.Fatalf("expected failure for empty string")
	}
}

func TestParseTimeRFC3339(t *testing.T) {
	s := "2024-10-10T10:10:10Z"
	got, ok := ParseTime(s)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.UTC().Format(time.RFC3339) != s {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeUnix(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok := ParseTime(strconv.FormatInt(ts, 10))
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Unix() != ts {
		t.Fatalf("unexpected unix %v", got.Unix())
	}
}

func TestParseDateDefault(t *testing.T) {
	def := time.Date(2005, 1, 1, 0, 0, 0, 0, time.UTC)
	got := ParseDateDefault("", def)
	if !got.Equal(def) {
		t.Fatalf("expected default")
	}
}

func TestDay(t *testing.T) {
	in := time.Date(2020, 3, 23, 17, 45, 2, 0, time.UTC)
	if got := Day(in); got.Hour() != 0 || got.Day() != 23 {
		t.Fatalf("unexpected day %v", got)
	}
}
