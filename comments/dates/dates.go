// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package dates

import (
	"fmt"
	"regexp"
	"time"

	commentErrors "github.com/MaksimBoltov/comments/comments/errors"
)

// Layout is the only accepted filter format
const Layout = "2006-01-02T15:04:05"

// time.Parse tolerates single-digit fields and fractional seconds, so the
// shape is checked first
var exactShape = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}$`)

// ParseDate parses YYYY-MM-DDTHH:MM:SS as a UTC timestamp
func ParseDate(text string) (time.Time, error) {
	if !exactShape.MatchString(text) {
		return time.Time{}, fmt.Errorf("%w: %q", commentErrors.ErrInvalidDate, text)
	}
	parsed, err := time.ParseInLocation(Layout, text, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", commentErrors.ErrInvalidDate, err)
	}
	return parsed, nil
}

// ParseOptional parses text only when present is true
func ParseOptional(text string, present bool) (*time.Time, error) {
	if !present {
		return nil, nil
	}
	parsed, err := ParseDate(text)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
