package agg

import (
	"sort"
	"strings"

	"github.com/richrobo/whyup/internal/schema"
)

// SortKey selects the column a comparison view sorts on.
type SortKey string

const (
	SortName    SortKey = "name"
	SortPrice   SortKey = "price"
	SortChange  SortKey = "change"
	SortHigh52w SortKey = "high52w"
	SortLow52w  SortKey = "low52w"
	SortVolume  SortKey = "volume"
	SortDiff    SortKey = "diff"
)

// Query is one view request: substring search plus sort column/direction.
type Query struct {
	Search string
	Sort   SortKey
	Desc   bool
}

// Project is the pure comparison view model: filter rows by case-
// insensitive substring on symbol and names, then stable-sort by the
// requested key. Ties keep the aggregator's ordering. The input slice is
// not modified.
func Project(rows []schema.Comparison, q Query) []schema.Comparison {
	out := make([]schema.Comparison, 0, len(rows))
	needle := strings.ToLower(strings.TrimSpace(q.Search))
	for _, row := range rows {
		if needle != "" && !matches(row, needle) {
			continue
		}
		out = append(out, row)
	}

	if q.Sort == "" {
		return out
	}
	sort.SliceStable(out, func(i, j int) bool {
		less := keyLess(out[i], out[j], q.Sort)
		if q.Desc {
			return keyLess(out[j], out[i], q.Sort)
		}
		return less
	})
	return out
}

func matches(row schema.Comparison, needle string) bool {
	return strings.Contains(strings.ToLower(row.Symbol), needle) ||
		strings.Contains(strings.ToLower(row.Name), needle) ||
		strings.Contains(strings.ToLower(row.KoreanName), needle) ||
		strings.Contains(strings.ToLower(row.EnglishName), needle)
}

func displayName(row schema.Comparison) string {
	if row.Name != "" {
		return row.Name
	}
	return row.Symbol
}

func keyLess(a, b schema.Comparison, key SortKey) bool {
	switch key {
	case SortName:
		return displayName(a) < displayName(b)
	case SortPrice:
		return a.BasePrice < b.BasePrice
	case SortChange:
		return a.ChangePercent24h < b.ChangePercent24h
	case SortHigh52w:
		return a.High52w < b.High52w
	case SortLow52w:
		return a.Low52w < b.Low52w
	case SortVolume:
		return a.Volume < b.Volume
	case SortDiff:
		return a.PriceDifference < b.PriceDifference
	default:
		return a.ChangePercent24h < b.ChangePercent24h
	}
}
