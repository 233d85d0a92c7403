package gti

import (
	"fmt"
	"strings"
	"time"
)

// DefaultBaseURL is the GTI Research site.
const DefaultBaseURL = "https://research.gti.com.ng/"

// OrdinalSuffix returns "st", "nd", "rd" or "th" for a day of month.
func OrdinalSuffix(day int) string {
	if day > 3 && day < 21 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}

// CandidateURLs returns the 12 post URLs GTI has used for a date's price
// list, in the order they should be tried. Some may coincide, for example
// padded and unpadded days from the 10th onwards.
func CandidateURLs(baseURL string, date time.Time) []string {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	wd := strings.ToLower(date.Weekday().String())
	month := strings.ToLower(date.Month().String())
	year := date.Year()
	dd := fmt.Sprintf("%02d", date.Day())
	d := fmt.Sprintf("%d", date.Day())
	ord := OrdinalSuffix(date.Day())

	paths := []string{
		fmt.Sprintf("ngx-price-list-for-%s-%s-%s-%d/", wd, dd, month, year),
		fmt.Sprintf("ngx-price-list-for-%s-%s-%s-%d/", wd, d, month, year),
		fmt.Sprintf("ngx-price-list-for-%s-%s%s-%s-%d/", wd, dd, ord, month, year),
		fmt.Sprintf("ngx-price-list-for-%s-%s%s-%s-%d/", wd, d, ord, month, year),

		fmt.Sprintf("ngx-price-list-%s-%s-%s-%d/", wd, dd, month, year),
		fmt.Sprintf("ngx-price-list-%s-%s-%s-%d/", wd, d, month, year),
		fmt.Sprintf("ngx-price-list-%s-%s%s-%s-%d/", wd, dd, ord, month, year),
		fmt.Sprintf("ngx-price-list-%s-%s%s-%s-%d/", wd, d, ord, month, year),

		fmt.Sprintf("ngx-price-list-%s-%s-%d/", dd, month, year),
		fmt.Sprintf("ngx-price-list-%s%s-%s-%d/", dd, ord, month, year),
		fmt.Sprintf("ngx-daily-price-list-%s-%s-%s-%d/", wd, dd, month, year),
		fmt.Sprintf("ngx-daily-price-list-%s-%s%s-%s-%d/", wd, dd, ord, month, year),
	}

	urls := make([]string, len(paths))
	for i, p := range paths {
		urls[i] = baseURL + p
	}
	return urls
}
