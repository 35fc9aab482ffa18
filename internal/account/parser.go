package account

import "strings"

// Parse converts one non-blank upload line into a Record. It never fails: lines with an
// unexpected number of columns degrade to a positional best-effort fill.
func Parse(line string) Record {
	raw := strings.TrimSpace(line)
	parts := strings.Split(raw, Delimiter)
	rec := Record{Raw: raw, FieldCount: len(parts)}

	switch rec.Kind() {
	case KindSingle:
		rec.Email = parts[0]
		rec.Login = parts[0]
	case KindStandard:
		fillCredentials(&rec, parts)
		rec.Geo = optionalGeo(parts[4])
	case KindExtended:
		fillCredentials(&rec, parts)
		geo := GeoUnavailable
		rec.Geo = &geo
		rec.Data1 = parts[4]
		rec.Data2 = parts[5]
	default:
		fillCredentials(&rec, parts)
		if len(parts) > 4 {
			rec.Geo = optionalGeo(parts[4])
		}
	}
	return rec
}

// ParseText splits a multi-line upload, dropping blank lines before parsing.
func ParseText(text string) []Record {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	records := make([]Record, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		records = append(records, Parse(line))
	}
	return records
}

// fillCredentials 填充前四列，缺失时 login 回退为 email，account_password 回退为 email_password。
func fillCredentials(rec *Record, parts []string) {
	rec.Email = parts[0]
	if len(parts) > 1 {
		rec.EmailPassword = parts[1]
	}
	rec.Login = rec.Email
	if len(parts) > 2 {
		rec.Login = parts[2]
	}
	rec.AccountPassword = rec.EmailPassword
	if len(parts) > 3 {
		rec.AccountPassword = parts[3]
	}
}

func optionalGeo(value string) *string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return &value
}
