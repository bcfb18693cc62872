package core

import (
	"strconv"
	"time"
)

// FiscalYear is the October-to-September budget year. EndYear is the
// calendar year of the September that closes it, so FiscalYear{2026} runs
// October 2025 through September 2026.
type FiscalYear struct {
	EndYear int
}

// MonthBucket is one fixed slot of the fiscal-year spending chart.
type MonthBucket struct {
	Label string     `json:"label"`
	Month time.Month `json:"month"`
	Year  int        `json:"year"`
	Total Money      `json:"total"`
}

// FiscalYearFor returns the fiscal year containing t: October onward
// belongs to the year ending next September.
func FiscalYearFor(t time.Time) FiscalYear {
	if t.Month() >= time.October {
		return FiscalYear{EndYear: t.Year() + 1}
	}
	return FiscalYear{EndYear: t.Year()}
}

// Months returns the twelve (month, year) slots of the fiscal year in
// chart order.
func (fy FiscalYear) Months() [12]MonthBucket {
	var out [12]MonthBucket
	for i := 0; i < 12; i++ {
		m := time.October + time.Month(i)
		y := fy.EndYear - 1
		if m > time.December {
			m -= 12
			y = fy.EndYear
		}
		out[i] = MonthBucket{Label: m.String()[:3] + " " + strconv.Itoa(y), Month: m, Year: y}
	}
	return out
}

// BucketByMonth aggregates expense amounts into the fiscal year's twelve
// fixed buckets. Unparseable dates and dates outside the fiscal year are
// skipped silently; the chart's x-axis never gains or loses a slot. The
// result starts from a zeroed template every call, so re-running over the
// same input is idempotent.
func BucketByMonth(fy FiscalYear, expenses []Expense) []MonthBucket {
	months := fy.Months()
	buckets := months[:]
	index := make(map[int]int, 12)
	for i, b := range buckets {
		index[b.Year*100+int(b.Month)] = i
	}
	for _, e := range expenses {
		t, err := ParseDate(e.Date)
		if err != nil {
			continue
		}
		i, ok := index[t.Year()*100+int(t.Month())]
		if !ok {
			continue
		}
		buckets[i].Total.Satang += e.Amount.Satang
	}
	return buckets
}
