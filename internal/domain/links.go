package domain

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

var ErrInvalidBeatmapLink = errors.New("invalid beatmap link")

// ParseBeatmapLink extracts a beatmap id from tracking input. Accepted forms:
// a bare id, osu.ppy.sh/b/ID, /beatmaps/ID and /beatmapsets/SET#osu/ID.
func ParseBeatmapLink(input string) (int, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return 0, fmt.Errorf("%w: empty input", ErrInvalidBeatmapLink)
	}
	if id, err := strconv.Atoi(input); err == nil {
		return validID(id, input)
	}

	if !strings.Contains(input, "://") {
		input = "https://" + input
	}
	u, err := url.Parse(input)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidBeatmapLink, input, err)
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) >= 2 {
		switch segments[0] {
		case "b", "beatmaps":
			return parseSegment(segments[1], input)
		case "beatmapsets":
			// fragment is "osu/ID"
			if frag := strings.Split(strings.Trim(u.Fragment, "/"), "/"); len(frag) == 2 {
				return parseSegment(frag[1], input)
			}
			if len(segments) == 3 {
				return parseSegment(segments[2], input)
			}
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidBeatmapLink, input)
}

func parseSegment(s, input string) (int, error) {
	if i := strings.IndexAny(s, "?&"); i >= 0 {
		s = s[:i]
	}
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidBeatmapLink, input)
	}
	return validID(id, input)
}

func validID(id int, input string) (int, error) {
	if id <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidBeatmapLink, input)
	}
	return id, nil
}
