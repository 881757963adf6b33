// Package media holds the "media" commands, which attach image and audio
// file references to routines and diary entries.
package media

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/julianstephens/ilsang/internal/cli"
	"github.com/julianstephens/ilsang/internal/constants"
	"github.com/julianstephens/ilsang/internal/models"
	"github.com/julianstephens/ilsang/internal/storage"
)

var kindsByExt = map[string]constants.MediaKind{
	".jpg":  constants.MediaKindImage,
	".jpeg": constants.MediaKindImage,
	".png":  constants.MediaKindImage,
	".gif":  constants.MediaKindImage,
	".webp": constants.MediaKindImage,
	".heic": constants.MediaKindImage,
	".mp3":  constants.MediaKindAudio,
	".m4a":  constants.MediaKindAudio,
	".aac":  constants.MediaKindAudio,
	".wav":  constants.MediaKindAudio,
	".ogg":  constants.MediaKindAudio,
}

type MediaCmd struct {
	Attach MediaAttachCmd `cmd:"" help:"Attach a file to a routine or diary entry."`
	List   MediaListCmd   `cmd:"" help:"List files attached to a routine or diary entry."`
	Detach MediaDetachCmd `cmd:"" help:"Remove an attachment (the file itself is kept)."`
}

type MediaAttachCmd struct {
	Owner string `arg:"" enum:"routine,diary" help:"Owner type: routine or diary."`
	ID    string `arg:"" help:"Routine or diary entry ID (prefix or routine name allowed)."`
	Path  string `arg:"" help:"Path to the image or audio file."`
	Kind  string `help:"Media kind (image or audio); inferred from the extension when omitted."`
}

func (c *MediaAttachCmd) Run(ctx *cli.Context) error {
	ownerType, ownerID, err := resolveOwner(ctx, c.Owner, c.ID)
	if err != nil {
		return err
	}

	path, err := filepath.Abs(c.Path)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}
	if info, err := os.Stat(path); err != nil {
		return fmt.Errorf("media file not found: %s", c.Path)
	} else if info.IsDir() {
		return fmt.Errorf("media path is a directory: %s", c.Path)
	}

	kind := constants.MediaKind(c.Kind)
	if kind == "" {
		var ok bool
		if kind, ok = KindForPath(path); !ok {
			return fmt.Errorf("cannot infer media kind from %q, pass --kind", filepath.Ext(path))
		}
	}

	m := models.Media{
		ID:        uuid.New().String(),
		OwnerType: ownerType,
		OwnerID:   ownerID,
		Kind:      kind,
		Path:      path,
		CreatedAt: ctx.Clock(),
	}
	if err := m.Validate(); err != nil {
		return err
	}
	if err := ctx.Store.AddMedia(ctx.Context(), m); err != nil {
		return fmt.Errorf("failed to save media: %w", err)
	}
	ctx.Printf("✓ Attached %s %s (%s)\n", m.Kind, filepath.Base(path), cli.ShortID(m.ID))
	return nil
}

// KindForPath infers the media kind from a file extension.
func KindForPath(path string) (constants.MediaKind, bool) {
	kind, ok := kindsByExt[strings.ToLower(filepath.Ext(path))]
	return kind, ok
}

type MediaListCmd struct {
	Owner string `arg:"" enum:"routine,diary" help:"Owner type: routine or diary."`
	ID    string `arg:"" help:"Routine or diary entry ID."`
}

func (c *MediaListCmd) Run(ctx *cli.Context) error {
	ownerType, ownerID, err := resolveOwner(ctx, c.Owner, c.ID)
	if err != nil {
		return err
	}
	media, err := ctx.Store.GetMediaForOwner(ctx.Context(), ownerType, ownerID)
	if err != nil {
		return err
	}
	if len(media) == 0 {
		ctx.Println("No media attached.")
		return nil
	}

	lines := make([]string, len(media))
	for i, m := range media {
		line := fmt.Sprintf("%-5s  %s  %s", m.Kind, m.Path, cli.MutedStyle.Render(cli.ShortID(m.ID)))
		if _, err := os.Stat(m.Path); err != nil {
			line += "  " + cli.WarningStyle.Render("missing")
		}
		lines[i] = line
	}
	ctx.Println(cli.List(lines))
	return nil
}

type MediaDetachCmd struct {
	ID string `arg:"" help:"Media ID."`
}

func (c *MediaDetachCmd) Run(ctx *cli.Context) error {
	m, err := ctx.Store.GetMedia(ctx.Context(), c.ID)
	if err != nil {
		return err
	}
	if err := ctx.Store.DeleteMedia(ctx.Context(), m.ID); err != nil {
		return err
	}
	ctx.Printf("✓ Detached %s\n", filepath.Base(m.Path))
	return nil
}

func resolveOwner(ctx *cli.Context, owner, ref string) (constants.MediaOwnerType, string, error) {
	switch constants.MediaOwnerType(owner) {
	case constants.MediaOwnerRoutine:
		r, err := ctx.ResolveRoutine(ref)
		if err != nil {
			return "", "", err
		}
		return constants.MediaOwnerRoutine, r.ID, nil
	case constants.MediaOwnerDiary:
		e, err := ctx.Store.GetDiaryEntry(ctx.Context(), ref)
		if err != nil {
			return "", "", fmt.Errorf("diary entry %q: %w", ref, err)
		}
		if e.InTrash() {
			return "", "", fmt.Errorf("diary entry %q is in the trash: %w", ref, storage.ErrNotFound)
		}
		return constants.MediaOwnerDiary, e.ID, nil
	default:
		return "", "", fmt.Errorf("unknown owner type %q", owner)
	}
}
