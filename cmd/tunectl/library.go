package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/giannis84/tunelib/internal/favsync"
	"github.com/giannis84/tunelib/internal/models"
)

var errMissingArgument = errors.New("missing argument")

func (r *Runner) BrowsePopular(ctx context.Context, cmd *cli.Command) error {
	tracks, err := r.catalog.Popular(ctx, int(cmd.Int("limit")))
	if err != nil {
		return fmt.Errorf("browse popular: %w", err)
	}
	return r.printTracks(cmd, tracks)
}

func (r *Runner) BrowseLatest(ctx context.Context, cmd *cli.Command) error {
	tracks, err := r.catalog.Latest(ctx, int(cmd.Int("limit")))
	if err != nil {
		return fmt.Errorf("browse latest: %w", err)
	}
	return r.printTracks(cmd, tracks)
}

func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	query := cmd.StringArg("query")
	if query == "" {
		return fmt.Errorf("search: %w: query", errMissingArgument)
	}
	r.logger.Debug("searching catalog", "query", query)
	tracks, err := r.catalog.Search(ctx, query, int(cmd.Int("limit")))
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	return r.printTracks(cmd, tracks)
}

func (r *Runner) printTracks(cmd *cli.Command, tracks []models.Track) error {
	if cmd.Bool("json") {
		return r.writeJSON(tracks)
	}
	if len(tracks) == 0 {
		r.writePlain("No tracks found.\n")
		return nil
	}
	for _, t := range tracks {
		r.writePlain("%-10s %s - %s (%s)\n", t.ID, t.ArtistName, t.Name, formatDuration(t.Duration))
	}
	return nil
}

func (r *Runner) LibraryList(ctx context.Context, cmd *cli.Command) error {
	entries, err := r.api.Library(ctx)
	if err != nil {
		return fmt.Errorf("library list: %w", err)
	}
	if cmd.Bool("json") {
		return r.writeJSON(entries)
	}
	if len(entries) == 0 {
		r.writePlain("Your library is empty.\n")
		return nil
	}
	for _, e := range entries {
		r.writePlain("%-10s %s - %s (%s)\n", e.TrackRef, e.ArtistName, e.Title, formatDuration(e.DurationSeconds))
	}
	return nil
}

func (r *Runner) LibraryShow(ctx context.Context, cmd *cli.Command) error {
	ref, err := trackArg(cmd)
	if err != nil {
		return err
	}
	entry, err := r.api.LibraryEntry(ctx, ref)
	if err != nil {
		return fmt.Errorf("library show: %w", err)
	}
	if cmd.Bool("json") {
		return r.writeJSON(entry)
	}
	r.writePlain("Title: %s\n", entry.Title)
	r.writePlain("Artist: %s\n", entry.ArtistName)
	r.writePlain("Track: %s\n", entry.TrackRef)
	r.writePlain("Duration: %s\n", formatDuration(entry.DurationSeconds))
	r.writePlain("Audio: %s\n", entry.AudioURL)
	r.writePlain("Added: %s\n", entry.CreatedAt.Format("2006-01-02 15:04"))
	return nil
}

func (r *Runner) LibraryCheck(ctx context.Context, cmd *cli.Command) error {
	ref, err := trackArg(cmd)
	if err != nil {
		return err
	}
	exists, err := r.api.Exists(ctx, ref)
	if err != nil {
		return fmt.Errorf("library check: %w", err)
	}
	if cmd.Bool("json") {
		return r.writeJSON(models.FavoriteStatus{IsFavorite: exists})
	}
	if exists {
		r.writePlain("%s is in your library.\n", ref)
	} else {
		r.writePlain("%s is not in your library.\n", ref)
	}
	return nil
}

func (r *Runner) LibraryRemove(ctx context.Context, cmd *cli.Command) error {
	ref, err := trackArg(cmd)
	if err != nil {
		return err
	}
	if err := r.api.Remove(ctx, ref); err != nil {
		return fmt.Errorf("library remove: %w", err)
	}
	r.writePlain("Removed %s from your library.\n", ref)
	return nil
}

// Fav resolves a catalog track and toggles it through the favorite controller,
// printing the resulting notification.
func (r *Runner) Fav(ctx context.Context, cmd *cli.Command) error {
	ref, err := trackArg(cmd)
	if err != nil {
		return err
	}
	track, err := r.catalog.Track(ctx, ref)
	if err != nil {
		return fmt.Errorf("fav: %w", err)
	}

	controller := favsync.NewController(r.api, r.notifier)
	select {
	case <-controller.SetTrack(ctx, track):
	case <-ctx.Done():
		return ctx.Err()
	}
	_, state := controller.State()
	r.logger.Debug("favorite state resolved", "track", track.ID, "state", state)

	outcome, err := controller.Toggle(ctx, *track)
	r.writePlain("%s\n", r.notifier.Current().Message)
	if outcome == favsync.Failed {
		return fmt.Errorf("fav: %w", err)
	}
	if err != nil {
		r.logger.Debug("toggle rejected", "err", err)
	}
	return nil
}

func trackArg(cmd *cli.Command) (string, error) {
	ref := cmd.StringArg("track")
	if ref == "" {
		return "", fmt.Errorf("%s: %w: track", cmd.Name, errMissingArgument)
	}
	return ref, nil
}
