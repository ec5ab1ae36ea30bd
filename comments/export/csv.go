// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package export writes comment result sets as CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/MaksimBoltov/comments/comments/models"
)

const (
	// ContentType of an export body
	ContentType = "text/csv"
	// Filename suggested to clients in Content-Disposition
	Filename = "export.csv"
)

// Header is the fixed first row of every export
var Header = []string{"uuid_comment", "created_date", "user", "text", "parent_entity", "parent_entity_type"}

// Options adjust how rows are rendered
type Options struct {
	// ParentEntity, when set, replaces every row's parent_entity cell
	ParentEntity string
}

// FormatCreatedDate renders t as "2006-01-02 15:04:05+00:00", adding
// microseconds when they are non-zero
func FormatCreatedDate(t time.Time) string {
	t = t.UTC()
	if t.Nanosecond()/int(time.Microsecond) == 0 {
		return t.Format("2006-01-02 15:04:05+00:00")
	}
	return t.Format("2006-01-02 15:04:05.000000+00:00")
}

// Row renders one comment; a removed author or type is an empty cell
func Row(c *models.Comment, opts Options) []string {
	var user, entityType string
	if c.User != nil {
		user = c.User.Nickname
	}
	if c.ParentEntityType != nil {
		entityType = c.ParentEntityType.Name
	}
	parentEntity := c.ParentEntity.String()
	if opts.ParentEntity != "" {
		parentEntity = opts.ParentEntity
	}
	return []string{
		c.ID.String(),
		FormatCreatedDate(c.CreatedDate),
		user,
		c.Text,
		parentEntity,
		entityType,
	}
}

// WriteComments writes the header and one row per comment in order
func WriteComments(w io.Writer, comments []*models.Comment, opts Options) error {
	writer := csv.NewWriter(w)
	writer.UseCRLF = true

	if err := writer.Write(Header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, c := range comments {
		if err := writer.Write(Row(c, opts)); err != nil {
			return fmt.Errorf("failed to write csv row %s: %w", c.ID, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}
