package scraper

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	upvotesRe   = regexp.MustCompile(`^(\d+(?:\.\d+)?)([kmb])?$`)
	thousandsRe = regexp.MustCompile(`^\d{1,3}(?:,\d{3})+$`)

	upvoteMultipliers = map[string]float64{
		"":  1,
		"k": 1_000,
		"m": 1_000_000,
		"b": 1_000_000_000,
	}
)

// ParseUpvotes переводит счётчик вида "1.2k" в число.
// ok=false, если на месте счётчика текст ("Vote", "•") или мусор.
func ParseUpvotes(raw string) (count int64, ok bool) {
	s := strings.ToLower(strings.Join(strings.Fields(raw), ""))
	if s == "" {
		return 0, false
	}

	// "12,345" — разделитель тысяч
	if thousandsRe.MatchString(s) {
		n, err := strconv.ParseInt(strings.ReplaceAll(s, ",", ""), 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}

	matches := upvotesRe.FindStringSubmatch(s)
	if matches == nil {
		return 0, false
	}

	value, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, false
	}

	return int64(math.Round(value * upvoteMultipliers[matches[2]])), true
}
