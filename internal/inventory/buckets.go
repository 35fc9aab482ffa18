package inventory

import "time"

// AgeBuckets counts pool lines per age range. Ranges are lower-inclusive.
type AgeBuckets struct {
	UnderOneHour   int `json:"lt_1h"`
	OneToFour      int `json:"1h_4h"`
	FourToTwelve   int `json:"4h_12h"`
	TwelveToDay    int `json:"12h_24h"`
	DayToThirtySix int `json:"24h_36h"`
	OverThirtySix  int `json:"gte_36h"`
}

// Total is the number of lines counted.
func (b AgeBuckets) Total() int {
	return b.UnderOneHour + b.OneToFour + b.FourToTwelve + b.TwelveToDay + b.DayToThirtySix + b.OverThirtySix
}

func (b *AgeBuckets) add(age time.Duration) {
	switch {
	case age < time.Hour:
		b.UnderOneHour++
	case age < 4*time.Hour:
		b.OneToFour++
	case age < 12*time.Hour:
		b.FourToTwelve++
	case age < 24*time.Hour:
		b.TwelveToDay++
	case age < 36*time.Hour:
		b.DayToThirtySix++
	default:
		b.OverThirtySix++
	}
}

// Bucketize 按合成账龄统计 count 行库存的分布。
func Bucketize(createdAt time.Time, count int, now time.Time) AgeBuckets {
	var buckets AgeBuckets
	for i := 0; i < count; i++ {
		buckets.add(LineAge(createdAt, i, now))
	}
	return buckets
}
