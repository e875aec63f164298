package selection

import "sort"

// MoreSenior reports whether a strictly precedes b in seniority order:
// hire date ascending, then last name, then employee id. The tiebreaks
// make the order total and independent of storage layout; real rosters
// contain identical hire dates.
func MoreSenior(a, b *Employee) bool {
	if !a.HireDate.Equal(b.HireDate) {
		return a.HireDate.Before(b.HireDate)
	}
	if a.LastName != b.LastName {
		return a.LastName < b.LastName
	}
	return a.EmployeeID < b.EmployeeID
}

// SortBySeniority orders employees most senior first.
func SortBySeniority(employees []Employee) {
	sort.Slice(employees, func(i, j int) bool {
		return MoreSenior(&employees[i], &employees[j])
	})
}
