package account

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLinePrefersRawData(t *testing.T) {
	original := "a@x|p|login|pw|"
	rec := Parse(original)

	assert.Equal(t, original, rec.Line())
}

func TestLineRebuildsFromTag(t *testing.T) {
	geo := "US"
	cases := []struct {
		name string
		rec  Record
		want string
	}{
		{
			name: "extended",
			rec:  Record{FieldCount: 6, Email: "a", EmailPassword: "b", Login: "c", AccountPassword: "d", Data1: "e", Data2: "f"},
			want: "a|b|c|d|e|f",
		},
		{
			name: "standard",
			rec:  Record{FieldCount: 5, Email: "a", EmailPassword: "b", Login: "c", AccountPassword: "d", Geo: &geo},
			want: "a|b|c|d|US",
		},
		{
			name: "standard without geo",
			rec:  Record{FieldCount: 5, Email: "a", EmailPassword: "b", Login: "c", AccountPassword: "d"},
			want: "a|b|c|d|",
		},
		{
			name: "single",
			rec:  Record{FieldCount: 1, Email: "token", Login: "token"},
			want: "token",
		},
		{
			name: "partial falls back to five columns",
			rec:  Record{FieldCount: 3, Email: "a", EmailPassword: "b", Login: "c", AccountPassword: "b"},
			want: "a|b|c|b|",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.rec.Line())
		})
	}
}

func TestJoinLinesRoundTrip(t *testing.T) {
	text := "a@x|p|login|pw|US\nb@x|p2|login2|pw2|DE\nsolo\nm|s|u\nq|w|e|r|c1|k1"
	records := ParseText(text)

	assert.Equal(t, text, JoinLines(records))
}

func TestExportFilename(t *testing.T) {
	at := time.Date(2025, 1, 2, 15, 4, 5, 0, time.UTC)

	assert.Equal(t, "accounts_20250102_150405.txt", ExportFilename(at))
}
