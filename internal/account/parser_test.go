package account

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStandardLine(t *testing.T) {
	rec := Parse("a@x|p|login|pw|US")

	assert.Equal(t, 5, rec.FieldCount)
	assert.Equal(t, KindStandard, rec.Kind())
	assert.Equal(t, "a@x", rec.Email)
	assert.Equal(t, "p", rec.EmailPassword)
	assert.Equal(t, "login", rec.Login)
	assert.Equal(t, "pw", rec.AccountPassword)
	require.NotNil(t, rec.Geo)
	assert.Equal(t, "US", *rec.Geo)
	assert.Equal(t, "a@x|p|login|pw|US", rec.Raw)
}

func TestParseStandardLineWithEmptyGeo(t *testing.T) {
	rec := Parse("a@x|p|login|pw|")

	assert.Equal(t, 5, rec.FieldCount)
	assert.Nil(t, rec.Geo)
	assert.Equal(t, "", rec.GeoValue())
}

func TestParseExtendedLine(t *testing.T) {
	rec := Parse("a@x|p|login|pw|c1|k1")

	assert.Equal(t, 6, rec.FieldCount)
	assert.Equal(t, KindExtended, rec.Kind())
	require.NotNil(t, rec.Geo)
	assert.Equal(t, GeoUnavailable, *rec.Geo)
	assert.Equal(t, "c1", rec.Data1)
	assert.Equal(t, "k1", rec.Data2)
}

func TestParseSingleToken(t *testing.T) {
	rec := Parse("  lonely@example.com ")

	assert.Equal(t, 1, rec.FieldCount)
	assert.Equal(t, KindSingle, rec.Kind())
	assert.Equal(t, "lonely@example.com", rec.Email)
	assert.Equal(t, "lonely@example.com", rec.Login)
	assert.Empty(t, rec.EmailPassword)
	assert.Empty(t, rec.AccountPassword)
	assert.Nil(t, rec.Geo)
}

func TestParsePartialLines(t *testing.T) {
	cases := []struct {
		name            string
		line            string
		count           int
		login           string
		accountPassword string
		geo             *string
	}{
		{name: "two fields", line: "mail|secret", count: 2, login: "mail", accountPassword: "secret"},
		{name: "three fields", line: "mail|secret|user", count: 3, login: "user", accountPassword: "secret"},
		{name: "four fields", line: "mail|secret|user|pw", count: 4, login: "user", accountPassword: "pw"},
		{name: "seven fields", line: "mail|secret|user|pw|DE|x|y", count: 7, login: "user", accountPassword: "pw", geo: strPtr("DE")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := Parse(tc.line)
			assert.Equal(t, tc.count, rec.FieldCount)
			assert.Equal(t, KindPartial, rec.Kind())
			assert.Equal(t, "mail", rec.Email)
			assert.Equal(t, tc.login, rec.Login)
			assert.Equal(t, tc.accountPassword, rec.AccountPassword)
			assert.Equal(t, tc.geo, rec.Geo)
			assert.Equal(t, tc.line, rec.Raw)
		})
	}
}

func TestParseNeverRejectsOddInput(t *testing.T) {
	for _, line := range []string{"|", "||||||||", "a|", "|b", "x|y|z|w|v|u|t|s"} {
		rec := Parse(line)
		assert.Equal(t, line, rec.Raw)
		assert.GreaterOrEqual(t, rec.FieldCount, 2)
	}
}

func TestParseTextSkipsBlankLines(t *testing.T) {
	records := ParseText("a@x|p|login|pw|US\n\n   \r\nb@x|p2|login2|pw2|DE\n")

	require.Len(t, records, 2)
	assert.Equal(t, "US", records[0].GeoValue())
	assert.Equal(t, "DE", records[1].GeoValue())
	assert.Equal(t, 5, records[0].FieldCount)
	assert.Equal(t, 5, records[1].FieldCount)
}

func strPtr(v string) *string {
	return &v
}
