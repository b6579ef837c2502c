// Package calendar — format.go renders instants with strftime-style
// patterns in any registered calendar.
package calendar

import (
	"strconv"
	"strings"

	"github.com/keyxmakerx/almanac/internal/timezone"
)

// Format renders instant in calendar t using strftime-style tokens:
//
//	%Y year          %y year % 100     %C century
//	%m month 01-12   %d day 01-31      %e day, space padded
//	%j day of year   %B month name     %b, %h abbreviated month
//	%H hour 00-23    %k hour, space    %I hour 01-12
//	%l 12h, space    %M minute         %S second
//	%p AM/PM         %P am/pm          %A weekday name
//	%a short weekday %u weekday 1..N   %w weekday 0..N-1
//	%D %m/%d/%y      %F %Y-%m-%d       %R %H:%M
//	%T %H:%M:%S      %n newline        %% percent
//
// fixDay drops the leading zero of %d and fixHour that of %I. Unknown tokens
// are copied to the output unchanged.
func Format(t Type, instant Instant, pattern string, tz timezone.Spec, fixDay, fixHour bool) (string, error) {
	c, err := t.FromCanonical(instant, tz)
	if err != nil {
		return "", err
	}
	f := formatter{t: t, c: c, fixDay: fixDay, fixHour: fixHour}
	var b strings.Builder
	f.render(&b, pattern)
	return b.String(), nil
}

type formatter struct {
	t       Type
	c       DateComponents
	fixDay  bool
	fixHour bool
}

func (f formatter) render(b *strings.Builder, pattern string) {
	for i := 0; i < len(pattern); i++ {
		ch := pattern[i]
		if ch != '%' {
			b.WriteByte(ch)
			continue
		}
		if i+1 == len(pattern) {
			b.WriteByte('%')
			break
		}
		i++
		f.token(b, pattern[i])
	}
}

func (f formatter) token(b *strings.Builder, verb byte) {
	c := f.c
	switch verb {
	case 'Y':
		b.WriteString(strconv.Itoa(c.Year))
	case 'y':
		b.WriteString(pad(int(floorMod(int64(c.Year), 100)), 2, '0'))
	case 'C':
		b.WriteString(pad(int(floorDiv(int64(c.Year), 100)), 2, '0'))
	case 'm':
		b.WriteString(pad(c.Month, 2, '0'))
	case 'd':
		if f.fixDay {
			b.WriteString(strconv.Itoa(c.Day))
		} else {
			b.WriteString(pad(c.Day, 2, '0'))
		}
	case 'e':
		b.WriteString(pad(c.Day, 2, ' '))
	case 'j':
		b.WriteString(pad(c.YearDay, 3, '0'))
	case 'H':
		b.WriteString(pad(c.Hour, 2, '0'))
	case 'k':
		b.WriteString(pad(c.Hour, 2, ' '))
	case 'I':
		if f.fixHour {
			b.WriteString(strconv.Itoa(hour12(c.Hour)))
		} else {
			b.WriteString(pad(hour12(c.Hour), 2, '0'))
		}
	case 'l':
		b.WriteString(pad(hour12(c.Hour), 2, ' '))
	case 'M':
		b.WriteString(pad(c.Minute, 2, '0'))
	case 'S':
		b.WriteString(pad(c.Second, 2, '0'))
	case 'p':
		b.WriteString(meridiem(c.Hour))
	case 'P':
		b.WriteString(strings.ToLower(meridiem(c.Hour)))
	case 'A':
		b.WriteString(f.t.Weekdays()[c.Weekday].Full)
	case 'a':
		b.WriteString(f.t.Weekdays()[c.Weekday].Short)
	case 'B':
		b.WriteString(f.t.Months()[c.Month-1])
	case 'b', 'h':
		b.WriteString(abbreviate(f.t.Months()[c.Month-1], 3))
	case 'u':
		b.WriteString(strconv.Itoa(c.Weekday + 1))
	case 'w':
		b.WriteString(strconv.Itoa(c.Weekday))
	case 'D':
		f.render(b, "%m/%d/%y")
	case 'F':
		f.render(b, "%Y-%m-%d")
	case 'R':
		f.render(b, "%H:%M")
	case 'T':
		f.render(b, "%H:%M:%S")
	case 'n':
		b.WriteByte('\n')
	case '%':
		b.WriteByte('%')
	default:
		b.WriteByte('%')
		b.WriteByte(verb)
	}
}

func pad(n, width int, fill byte) string {
	s := strconv.Itoa(n)
	if len(s) >= width {
		return s
	}
	return strings.Repeat(string(fill), width-len(s)) + s
}

func hour12(h int) int {
	if h%12 == 0 {
		return 12
	}
	return h % 12
}

func meridiem(h int) string {
	if h < 12 {
		return "AM"
	}
	return "PM"
}

func abbreviate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
