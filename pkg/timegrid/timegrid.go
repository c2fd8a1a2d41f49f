// Package timegrid maps clock times onto the pixel rows of the weekly
// calendar grid. All functions are pure; the only failure mode is a
// malformed "HH:MM" string.
package timegrid

import (
	"fmt"
	"strconv"
	"strings"

	appErrors "github.com/vistari-app/vistari-api/pkg/errors"
)

// Grid describes the visible daily window and its row geometry.
type Grid struct {
	StartHour     int
	EndHour       int
	HourHeight    float64
	MinItemHeight float64
}

// Default mirrors the web client: 06:00-22:00 at 60px per hour with a
// 30px floor so short sessions remain visible and draggable.
var Default = Grid{StartHour: 6, EndHour: 22, HourHeight: 60, MinItemHeight: 30}

// ParseClock converts an "HH:MM" string into minutes since midnight.
func ParseClock(clock string) (int, error) {
	parts := strings.SplitN(clock, ":", 2)
	if len(parts) != 2 {
		return 0, appErrors.Clone(appErrors.ErrFormat, fmt.Sprintf("invalid clock time %q, expected HH:MM", clock))
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return 0, appErrors.Clone(appErrors.ErrFormat, fmt.Sprintf("invalid hour in clock time %q", clock))
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, appErrors.Clone(appErrors.ErrFormat, fmt.Sprintf("invalid minute in clock time %q", clock))
	}
	return hours*60 + minutes, nil
}

// Position returns the vertical pixel offset of a clock time within the
// grid window.
func (g Grid) Position(clock string) (float64, error) {
	minutes, err := ParseClock(clock)
	if err != nil {
		return 0, err
	}
	return float64(minutes-g.StartHour*60) / 60 * g.HourHeight, nil
}

// Extent returns the pixel height spanned by a start/end pair, never
// less than MinItemHeight.
func (g Grid) Extent(start, end string) (float64, error) {
	startMin, err := ParseClock(start)
	if err != nil {
		return 0, err
	}
	endMin, err := ParseClock(end)
	if err != nil {
		return 0, err
	}
	height := float64(endMin-startMin) / 60 * g.HourHeight
	if height < g.MinItemHeight {
		height = g.MinItemHeight
	}
	return height, nil
}

// Rows returns the number of hour rows in the visible window.
func (g Grid) Rows() int {
	return g.EndHour - g.StartHour + 1
}
