// 文件路径: internal/account/record.go
// 模块说明: 账号文本行的解析与格式化。
package account

// GeoUnavailable marks six-field lines, which carry data1/data2 instead of a geo column.
const GeoUnavailable = "N/A"

// Delimiter separates the columns of an uploaded line.
const Delimiter = "|"

// Kind 根据字段数量对记录分类，导出时按 Kind 还原原始行。
type Kind int

const (
	// KindSingle 表示只有一个字段（没有分隔符）的裸标识。
	KindSingle Kind = iota
	// KindStandard 表示 email|email_pass|login|account_pass|geo。
	KindStandard
	// KindExtended 表示 email|email_pass|login|account_pass|data1|data2。
	KindExtended
	// KindPartial 表示其它字段数量，按位置尽量填充。
	KindPartial
)

func (k Kind) String() string {
	switch k {
	case KindSingle:
		return "single"
	case KindStandard:
		return "standard"
	case KindExtended:
		return "extended"
	default:
		return "partial"
	}
}

// Record is one parsed line. FieldCount is the literal number of columns observed
// and doubles as the format tag persisted with the record.
type Record struct {
	Raw             string
	FieldCount      int
	Email           string
	EmailPassword   string
	Login           string
	AccountPassword string
	Geo             *string
	Data1           string
	Data2           string
}

// KindOf maps a persisted format tag to its record kind.
func KindOf(fieldCount int) Kind {
	switch fieldCount {
	case 1:
		return KindSingle
	case 5:
		return KindStandard
	case 6:
		return KindExtended
	default:
		return KindPartial
	}
}

// Kind returns the record kind derived from its field count.
func (r Record) Kind() Kind {
	return KindOf(r.FieldCount)
}

// GeoValue returns the geo column or an empty string when absent.
func (r Record) GeoValue() string {
	if r.Geo == nil {
		return ""
	}
	return *r.Geo
}
