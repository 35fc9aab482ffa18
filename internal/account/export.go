package account

import (
	"fmt"
	"strings"
	"time"
)

// Line rebuilds the upload line for a record. The stored raw line wins; the typed
// fields are only used for records persisted without one.
func (r Record) Line() string {
	if r.Raw != "" {
		return r.Raw
	}
	switch r.Kind() {
	case KindSingle:
		return r.Email
	case KindExtended:
		return strings.Join([]string{r.Email, r.EmailPassword, r.Login, r.AccountPassword, r.Data1, r.Data2}, Delimiter)
	case KindStandard, KindPartial:
		return strings.Join([]string{r.Email, r.EmailPassword, r.Login, r.AccountPassword, r.GeoValue()}, Delimiter)
	}
	return r.Email
}

// JoinLines renders records as newline separated lines in the given order.
func JoinLines(records []Record) string {
	lines := make([]string, 0, len(records))
	for _, rec := range records {
		lines = append(lines, rec.Line())
	}
	return strings.Join(lines, "\n")
}

// ExportFilename returns the download name, e.g. accounts_20250102_150405.txt.
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("accounts_%s.txt", now.Format("20060102_150405"))
}
