// Package calendar — grid.go lays a month out in weeks for display.
package calendar

// Grid is a month laid out in week rows for month views.
type Grid struct {
	Year      int    `json:"year"`
	Month     int    `json:"month"`
	MonthName string `json:"month_name"`

	// Intercalary is set for festival months of custom calendars.
	Intercalary bool `json:"intercalary,omitempty"`

	// Weekdays are the column headers, starting at the calendar's
	// StartingWeekday.
	Weekdays []WeekdayName `json:"weekdays"`

	// Weeks holds one row per week. Every row has NumWeekdays cells; cells
	// outside the month are 0.
	Weeks [][]int `json:"weeks"`

	PrevYear  int `json:"prev_year"`
	PrevMonth int `json:"prev_month"`
	NextYear  int `json:"next_year"`
	NextMonth int `json:"next_month"`
}

// MonthGrid lays out (year, month) of t in weeks beginning on
// t.StartingWeekday().
func MonthGrid(t Type, year, month int) (Grid, error) {
	dim, err := t.DaysInMonth(year, month)
	if err != nil {
		return Grid{}, err
	}
	first, err := t.Weekday(year, month, 1)
	if err != nil {
		return Grid{}, err
	}

	n := t.NumWeekdays()
	start := t.StartingWeekday()
	lead := int(floorMod(int64(first-start), int64(n)))

	cells := make([]int, lead, lead+dim+n)
	for d := 1; d <= dim; d++ {
		cells = append(cells, d)
	}
	for len(cells)%n != 0 {
		cells = append(cells, 0)
	}

	g := Grid{
		Year:      year,
		Month:     month,
		MonthName: t.Months()[month-1],
		Weekdays:  make([]WeekdayName, n),
	}
	for i := range g.Weekdays {
		g.Weekdays[i] = t.Weekdays()[(start+i)%n]
	}
	for i := 0; i < len(cells); i += n {
		g.Weeks = append(g.Weeks, cells[i:i+n])
	}
	g.PrevYear, g.PrevMonth = t.PrevMonth(year, month)
	g.NextYear, g.NextMonth = t.NextMonth(year, month)
	if ic, ok := t.(interface{ IsIntercalary(int) bool }); ok {
		g.Intercalary = ic.IsIntercalary(month)
	}
	return g, nil
}
