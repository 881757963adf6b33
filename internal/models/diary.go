package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/ilsang/internal/constants"
)

type DiaryEntry struct {
	ID        string     `json:"id"`
	Day       string     `json:"day"` // YYYY-MM-DD format
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	Mood      string     `json:"mood,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

func (d *DiaryEntry) Validate() error {
	if strings.TrimSpace(d.Title) == "" && strings.TrimSpace(d.Body) == "" {
		return fmt.Errorf("diary entry needs a title or a body")
	}
	if _, err := time.Parse(constants.DateFormat, d.Day); err != nil {
		return fmt.Errorf("invalid date format (expected YYYY-MM-DD): %w", err)
	}
	return nil
}

// InTrash reports whether the entry has been soft deleted.
func (d *DiaryEntry) InTrash() bool {
	return d.DeletedAt != nil
}
