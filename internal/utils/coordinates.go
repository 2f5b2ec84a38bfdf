package utils

import (
	"net/url"
	"regexp"
	"strconv"
)

// Coordinate patterns found in map share links, most precise first:
//   .../data=!3d30.0444!4d31.2357      pinned place
//   ...?q=30.0444,31.2357  (also query=, ll=, destination=)
//   .../@30.0444,31.2357,15z           viewport centre
var coordinatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`!3d(-?\d+(?:\.\d+)?)!4d(-?\d+(?:\.\d+)?)`),
	regexp.MustCompile(`[?&](?:q|query|ll|destination)=(-?\d+(?:\.\d+)?),\s*(-?\d+(?:\.\d+)?)`),
	regexp.MustCompile(`@(-?\d+(?:\.\d+)?),(-?\d+(?:\.\d+)?)`),
}

// ExtractCoordinates pulls a latitude/longitude pair out of a map link.
// ok is false when no pattern matches or the values are out of range.
func ExtractCoordinates(link string) (lat, lng float64, ok bool) {
	// share links often arrive percent-encoded (%2C for the comma)
	if decoded, err := url.QueryUnescape(link); err == nil {
		link = decoded
	}
	for _, re := range coordinatePatterns {
		m := re.FindStringSubmatch(link)
		if m == nil {
			continue
		}
		la, err1 := strconv.ParseFloat(m[1], 64)
		lo, err2 := strconv.ParseFloat(m[2], 64)
		if err1 != nil || err2 != nil {
			continue
		}
		if la < -90 || la > 90 || lo < -180 || lo > 180 {
			continue
		}
		return la, lo, true
	}
	return 0, 0, false
}
