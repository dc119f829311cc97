// Package calendar enumerates billing months. Month names come from a fixed
// table so output never depends on the host locale.
package calendar

import (
	"time"
)

// MonthTableVersion identifies MonthNames. Stored plan rows carry these
// names, so changing the table needs a data migration.
const MonthTableVersion = "v1"

var MonthNames = [12]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

type BillingMonth struct {
	Name       string `json:"month"`
	Year       int    `json:"year"`
	MonthIndex int    `json:"month_index"` // 0..11
}

// MonthIndex is the inverse of MonthNames. ok is false for unknown names.
func MonthIndex(name string) (int, bool) {
	for i, n := range MonthNames {
		if n == name {
			return i, true
		}
	}
	return 0, false
}

func Month(year, monthIndex int) BillingMonth {
	return BillingMonth{Name: MonthNames[monthIndex], Year: year, MonthIndex: monthIndex}
}

// Next is the calendar month after m; December rolls to January of year+1.
func (m BillingMonth) Next() BillingMonth {
	if m.MonthIndex == 11 {
		return Month(m.Year+1, 0)
	}
	return Month(m.Year, m.MonthIndex+1)
}

func (m BillingMonth) after(o BillingMonth) bool {
	if m.Year != o.Year {
		return m.Year > o.Year
	}
	return m.MonthIndex > o.MonthIndex
}

// EnumerateBillingMonths lists every calendar month from start's month to
// end's month inclusive. Only year and month are compared, so mid-month
// boundaries still include their whole month. end before start gives nil.
func EnumerateBillingMonths(start, end time.Time) []BillingMonth {
	first := Month(start.Year(), int(start.Month())-1)
	last := Month(end.Year(), int(end.Month())-1)

	var out []BillingMonth
	for cur := first; !cur.after(last); cur = cur.Next() {
		out = append(out, cur)
	}
	return out
}

// DueDates: entry i is due on the 10th of entry i+1's month. The last entry
// is due on the 10th of the calendar month after it.
func DueDates(months []BillingMonth, loc *time.Location) []time.Time {
	out := make([]time.Time, len(months))
	for i, m := range months {
		next := m.Next()
		if i+1 < len(months) {
			next = months[i+1]
		}
		out[i] = DueDate(next, loc)
	}
	return out
}

// DueDate is 00:00 on the 10th of m in loc.
func DueDate(m BillingMonth, loc *time.Location) time.Time {
	return time.Date(m.Year, time.Month(m.MonthIndex+1), 10, 0, 0, 0, 0, loc)
}
