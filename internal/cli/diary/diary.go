// Package diary holds the "diary" commands. Deleted entries go to a trash
// and can be restored until the trash is emptied.
package diary

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/julianstephens/ilsang/internal/cli"
	"github.com/julianstephens/ilsang/internal/constants"
	"github.com/julianstephens/ilsang/internal/models"
	"github.com/julianstephens/ilsang/internal/storage"
)

type DiaryCmd struct {
	Add        DiaryAddCmd        `cmd:"" help:"Write a diary entry."`
	List       DiaryListCmd       `cmd:"" help:"List diary entries." default:"1"`
	Show       DiaryShowCmd       `cmd:"" help:"Show one entry."`
	Delete     DiaryDeleteCmd     `cmd:"" help:"Move an entry to the trash."`
	Restore    DiaryRestoreCmd    `cmd:"" help:"Restore an entry from the trash."`
	Trash      DiaryTrashCmd      `cmd:"" help:"List entries in the trash."`
	EmptyTrash DiaryEmptyTrashCmd `cmd:"" name:"empty-trash" help:"Permanently delete entries in the trash."`
}

type DiaryAddCmd struct {
	Body  string `arg:"" help:"Entry text."`
	Title string `short:"t" help:"Entry title."`
	Date  string `short:"d" help:"Day the entry is for (default today)."`
	Mood  string `short:"m" help:"Mood, free text or an emoji."`
}

func (c *DiaryAddCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Routines()
	if err != nil {
		return err
	}
	day, err := svc.ParseDay(c.Date)
	if err != nil {
		return err
	}

	now := ctx.Clock()
	entry := models.DiaryEntry{
		ID:        uuid.New().String(),
		Day:       day.Format(constants.DateFormat),
		Title:     strings.TrimSpace(c.Title),
		Body:      strings.TrimSpace(c.Body),
		Mood:      strings.TrimSpace(c.Mood),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := entry.Validate(); err != nil {
		return err
	}
	if err := ctx.Store.AddDiaryEntry(ctx.Context(), entry); err != nil {
		return fmt.Errorf("failed to save diary entry: %w", err)
	}
	ctx.Printf("✓ Diary entry saved for %s (%s)\n", entry.Day, cli.ShortID(entry.ID))
	return nil
}

type DiaryListCmd struct {
	From string `help:"First day to include (YYYY-MM-DD)."`
	To   string `help:"Last day to include (YYYY-MM-DD)."`
}

func (c *DiaryListCmd) Run(ctx *cli.Context) error {
	from, to, err := dayRange(ctx, c.From, c.To)
	if err != nil {
		return err
	}
	entries, err := ctx.Store.GetDiaryEntries(ctx.Context(), from, to, false)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		ctx.Println("No diary entries.")
		return nil
	}
	ctx.Println(cli.HeaderStyle.Render(fmt.Sprintf("Diary (%d)", len(entries))))
	ctx.Println(cli.List(entryLines(entries)))
	return nil
}

type DiaryShowCmd struct {
	ID string `arg:"" help:"Entry ID or ID prefix."`
}

func (c *DiaryShowCmd) Run(ctx *cli.Context) error {
	entry, err := resolveEntry(ctx, c.ID, true)
	if err != nil {
		return err
	}

	header := entry.Day
	if entry.Title != "" {
		header += "  " + entry.Title
	}
	ctx.Println(cli.HeaderStyle.Render(header))
	if entry.Mood != "" {
		ctx.Printf("Mood: %s\n", entry.Mood)
	}
	if entry.InTrash() {
		ctx.Println(cli.WarningStyle.Render("In trash"))
	}
	ctx.Println()
	ctx.Println(entry.Body)

	media, err := ctx.Store.GetMediaForOwner(ctx.Context(), constants.MediaOwnerDiary, entry.ID)
	if err == nil && len(media) > 0 {
		ctx.Println()
		for _, m := range media {
			ctx.Printf("📎 %s %s\n", m.Kind, m.Path)
		}
	}
	return nil
}

type DiaryDeleteCmd struct {
	ID string `arg:"" help:"Entry ID or ID prefix."`
}

func (c *DiaryDeleteCmd) Run(ctx *cli.Context) error {
	entry, err := resolveEntry(ctx, c.ID, false)
	if err != nil {
		return err
	}
	if err := ctx.Store.DeleteDiaryEntry(ctx.Context(), entry.ID); err != nil {
		return err
	}
	ctx.Printf("✓ Moved entry for %s to the trash\n", entry.Day)
	return nil
}

type DiaryRestoreCmd struct {
	ID string `arg:"" help:"Entry ID or ID prefix."`
}

func (c *DiaryRestoreCmd) Run(ctx *cli.Context) error {
	entry, err := resolveEntry(ctx, c.ID, true)
	if err != nil {
		return err
	}
	if !entry.InTrash() {
		return fmt.Errorf("entry %s is not in the trash", cli.ShortID(entry.ID))
	}
	if err := ctx.Store.RestoreDiaryEntry(ctx.Context(), entry.ID); err != nil {
		return err
	}
	ctx.Printf("✓ Restored entry for %s\n", entry.Day)
	return nil
}

type DiaryTrashCmd struct{}

func (c *DiaryTrashCmd) Run(ctx *cli.Context) error {
	entries, err := trashed(ctx)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		ctx.Println("Trash is empty.")
		return nil
	}
	ctx.Println(cli.HeaderStyle.Render(fmt.Sprintf("Trash (%d)", len(entries))))
	ctx.Println(cli.List(entryLines(entries)))
	return nil
}

type DiaryEmptyTrashCmd struct{}

func (c *DiaryEmptyTrashCmd) Run(ctx *cli.Context) error {
	ctx.PerformAutomaticBackup()

	n, err := ctx.Store.PurgeDeletedDiaryEntries(ctx.Context())
	if err != nil {
		return err
	}
	ctx.Printf("✓ Permanently deleted %d entries\n", n)
	return nil
}

func trashed(ctx *cli.Context) ([]models.DiaryEntry, error) {
	all, err := ctx.Store.GetDiaryEntries(ctx.Context(), "", "", true)
	if err != nil {
		return nil, err
	}
	var out []models.DiaryEntry
	for _, e := range all {
		if e.InTrash() {
			out = append(out, e)
		}
	}
	return out, nil
}

// resolveEntry finds an entry by ID or unique ID prefix. Trashed entries
// only match when includeDeleted is set.
func resolveEntry(ctx *cli.Context, ref string, includeDeleted bool) (models.DiaryEntry, error) {
	if e, err := ctx.Store.GetDiaryEntry(ctx.Context(), ref); err == nil {
		if e.InTrash() && !includeDeleted {
			return models.DiaryEntry{}, fmt.Errorf("diary entry %q is in the trash: %w", ref, storage.ErrNotFound)
		}
		return e, nil
	}

	entries, err := ctx.Store.GetDiaryEntries(ctx.Context(), "", "", includeDeleted)
	if err != nil {
		return models.DiaryEntry{}, err
	}
	var matches []models.DiaryEntry
	for _, e := range entries {
		if len(ref) >= 4 && strings.HasPrefix(e.ID, ref) {
			matches = append(matches, e)
		}
	}
	switch len(matches) {
	case 0:
		return models.DiaryEntry{}, fmt.Errorf("diary entry %q: %w", ref, storage.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return models.DiaryEntry{}, fmt.Errorf("%q matches %d entries, use a longer ID", ref, len(matches))
	}
}

func dayRange(ctx *cli.Context, from, to string) (string, string, error) {
	svc, err := ctx.Routines()
	if err != nil {
		return "", "", err
	}
	var out [2]string
	for i, v := range []string{from, to} {
		if v == "" {
			continue
		}
		day, err := svc.ParseDay(v)
		if err != nil {
			return "", "", err
		}
		out[i] = day.Format(constants.DateFormat)
	}
	if out[0] != "" && out[1] != "" && out[0] > out[1] {
		return "", "", fmt.Errorf("--from %s is after --to %s", out[0], out[1])
	}
	return out[0], out[1], nil
}

func entryLines(entries []models.DiaryEntry) []string {
	lines := make([]string, len(entries))
	for i, e := range entries {
		summary := e.Title
		if summary == "" {
			summary = firstLine(e.Body, 40)
		}
		line := e.Day + "  " + summary
		if e.Mood != "" {
			line += "  " + e.Mood
		}
		lines[i] = line + "  " + cli.MutedStyle.Render(cli.ShortID(e.ID))
	}
	return lines
}

func firstLine(s string, max int) string {
	line, _, _ := strings.Cut(s, "\n")
	if r := []rune(line); len(r) > max {
		return string(r[:max]) + "…"
	}
	return line
}
