package model

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/tripdata/pkg/domain/types"
)

// YearMonth is a dataset partition key in YYYYMM form, e.g. "202501"
type YearMonth string

// DefaultArchiveTemplate is the remote object name pattern. {YYYYMM} is replaced by the token.
const DefaultArchiveTemplate = "{YYYYMM}-citibike-tripdata.csv.zip"

var yearMonthPattern = regexp.MustCompile(`^\d{6}$`)

// NewYearMonth builds a token from a year and a month that may be zero or negative.
// Non-positive months borrow from the preceding years.
func NewYearMonth(year, month int) YearMonth {
	for month <= 0 {
		month += 12
		year--
	}
	for month > 12 {
		month -= 12
		year++
	}
	return YearMonth(fmt.Sprintf("%04d%02d", year, month))
}

// ParseYearMonth validates s as a YYYYMM token
func ParseYearMonth(s string) (YearMonth, error) {
	if !yearMonthPattern.MatchString(s) {
		return "", goerr.New("year-month must be 6 digits (YYYYMM)",
			goerr.V("value", s), goerr.T(types.ErrTagInvalidInput))
	}

	month, _ := strconv.Atoi(s[4:])
	if month < 1 || month > 12 {
		return "", goerr.New("month must be between 01 and 12",
			goerr.V("value", s), goerr.T(types.ErrTagInvalidInput))
	}

	return YearMonth(s), nil
}

// Year returns the year component
func (ym YearMonth) Year() int {
	v, _ := strconv.Atoi(string(ym)[:4])
	return v
}

// Month returns the month component
func (ym YearMonth) Month() int {
	v, _ := strconv.Atoi(string(ym)[4:])
	return v
}

// String implements fmt.Stringer
func (ym YearMonth) String() string {
	return string(ym)
}

// ArchiveName renders the remote object name for the month
func (ym YearMonth) ArchiveName(template string) string {
	if template == "" {
		template = DefaultArchiveTemplate
	}
	return strings.ReplaceAll(template, "{YYYYMM}", string(ym))
}

// RecentMonths returns the n most recent months up to and including the month of now,
// oldest first. It returns an empty slice when n is not positive.
func RecentMonths(now time.Time, n int) []YearMonth {
	if n <= 0 {
		return []YearMonth{}
	}

	months := make([]YearMonth, 0, n)
	for i := 0; i < n; i++ {
		months = append(months, NewYearMonth(now.Year(), int(now.Month())-i))
	}

	// fixed width, so lexical order is chronological
	sort.Slice(months, func(i, j int) bool { return months[i] < months[j] })
	return months
}
