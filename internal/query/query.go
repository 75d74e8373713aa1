package query

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the date format the order list endpoint receives. Month and
// day are not zero padded.
const DateLayout = "2006-1-2"

const ordering = "-date_added"

// Build derives the order list query string from f. Parameters are emitted in
// a fixed order so equal filters always produce equal strings. Unset optional
// parameters are sent with an empty value.
func Build(f Filter) string {
	status := ""
	if f.Status != StatusAll {
		status = strconv.Itoa(int(f.Status))
	}

	params := [][2]string{
		{"page", strconv.Itoa(f.Page + 1)},
		{"page_size", strconv.Itoa(f.PageSize)},
		{"status", status},
		{"from_date", formatDate(f.FromDate)},
		{"to_date", formatDate(f.ToDate)},
		{"search", f.SearchText},
		{"ordering", ordering},
	}

	var b strings.Builder
	for i, p := range params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(p[0])
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p[1]))
	}
	return b.String()
}

func formatDate(date *time.Time) string {
	if date == nil {
		return ""
	}
	return date.Format(DateLayout)
}
