package models

import (
	"fmt"
	"time"

	"github.com/julianstephens/ilsang/internal/constants"
)

// Media is a file attached to a routine or diary entry. Only the reference is
// stored; the file itself lives wherever Path points.
type Media struct {
	ID        string                   `json:"id"`
	OwnerType constants.MediaOwnerType `json:"owner_type"`
	OwnerID   string                   `json:"owner_id"`
	Kind      constants.MediaKind      `json:"kind"`
	Path      string                   `json:"path"`
	CreatedAt time.Time                `json:"created_at"`
}

func (m *Media) Validate() error {
	switch m.OwnerType {
	case constants.MediaOwnerRoutine, constants.MediaOwnerDiary:
	default:
		return fmt.Errorf("unknown media owner type %q", m.OwnerType)
	}
	switch m.Kind {
	case constants.MediaKindImage, constants.MediaKindAudio:
	default:
		return fmt.Errorf("unknown media kind %q", m.Kind)
	}
	if m.OwnerID == "" {
		return fmt.Errorf("media owner id cannot be empty")
	}
	if m.Path == "" {
		return fmt.Errorf("media path cannot be empty")
	}
	return nil
}
