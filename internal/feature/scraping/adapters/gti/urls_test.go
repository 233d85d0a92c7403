package gti

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrdinalSuffix(t *testing.T) {
	t.Parallel()

	tests := map[int]string{
		1: "st", 2: "nd", 3: "rd", 4: "th", 11: "th", 12: "th", 13: "th",
		20: "th", 21: "st", 22: "nd", 23: "rd", 24: "th", 30: "th", 31: "st",
	}
	for day, want := range tests {
		assert.Equal(t, want, OrdinalSuffix(day), "day %d", day)
	}
}

func TestCandidateURLs(t *testing.T) {
	t.Parallel()

	date := time.Date(2023, 3, 6, 0, 0, 0, 0, time.UTC) // Monday
	urls := CandidateURLs("https://research.gti.com.ng", date)

	require.Len(t, urls, 12)
	want := []string{
		"ngx-price-list-for-monday-06-march-2023/",
		"ngx-price-list-for-monday-6-march-2023/",
		"ngx-price-list-for-monday-06th-march-2023/",
		"ngx-price-list-for-monday-6th-march-2023/",
		"ngx-price-list-monday-06-march-2023/",
		"ngx-price-list-monday-6-march-2023/",
		"ngx-price-list-monday-06th-march-2023/",
		"ngx-price-list-monday-6th-march-2023/",
		"ngx-price-list-06-march-2023/",
		"ngx-price-list-06th-march-2023/",
		"ngx-daily-price-list-monday-06-march-2023/",
		"ngx-daily-price-list-monday-06th-march-2023/",
	}
	for i, w := range want {
		assert.Equal(t, "https://research.gti.com.ng/"+w, urls[i], "candidate %d", i+1)
	}
}

func TestCandidateURLs_TwoDigitDayCoincides(t *testing.T) {
	t.Parallel()

	urls := CandidateURLs(DefaultBaseURL, time.Date(2022, 9, 21, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, urls[0], urls[1])
	assert.Equal(t, DefaultBaseURL+"ngx-price-list-for-wednesday-21st-september-2022/", urls[2])
}
