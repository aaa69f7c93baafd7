package main

import "github.com/urfave/cli/v3"

func registerCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "register",
		Usage: "Create an account and sign in",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Required: true},
			&cli.StringFlag{Name: "username", Required: true},
			&cli.StringFlag{Name: "password", Required: true, Sources: cli.EnvVars("TUNELIB_PASSWORD")},
			&cli.StringFlag{Name: "name", Required: true},
			&cli.StringFlag{Name: "last-name", Required: true},
			&cli.StringFlag{Name: "birth-date", Usage: "YYYY-MM-DD", Required: true},
			&cli.StringFlag{Name: "bio"},
		},
		Action: r.Register,
	}
}

func loginCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Sign in and store the access token",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Required: true},
			&cli.StringFlag{Name: "password", Required: true, Sources: cli.EnvVars("TUNELIB_PASSWORD")},
		},
		Action: r.Login,
	}
}

func logoutCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "logout",
		Usage:  "Revoke the stored access token",
		Action: r.Logout,
	}
}

func whoamiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "whoami",
		Usage:  "Show the signed-in profile",
		Action: r.Whoami,
	}
}

func passwordCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "password",
		Usage: "Change the account password",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "current", Required: true},
			&cli.StringFlag{Name: "new", Required: true},
			&cli.StringFlag{Name: "confirm", Usage: "Defaults to --new"},
		},
		Action: r.Password,
	}
}

func deleteAccountCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "delete-account",
		Usage: "Delete the account and its library",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "password", Required: true, Sources: cli.EnvVars("TUNELIB_PASSWORD")},
		},
		Action: r.DeleteAccount,
	}
}

func limitFlag() cli.Flag {
	return &cli.IntFlag{
		Name:    "limit",
		Aliases: []string{"n"},
		Usage:   "Number of tracks to fetch",
		Value:   20,
	}
}

func browseCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "browse",
		Usage: "Browse the Jamendo catalog",
		Commands: []*cli.Command{
			{
				Name:   "popular",
				Usage:  "Most played tracks",
				Flags:  []cli.Flag{limitFlag()},
				Action: r.BrowsePopular,
			},
			{
				Name:   "latest",
				Usage:  "Newest releases",
				Flags:  []cli.Flag{limitFlag()},
				Action: r.BrowseLatest,
			},
		},
	}
}

func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search the Jamendo catalog",
		Arguments: []cli.Argument{&cli.StringArg{Name: "query"}},
		Flags:     []cli.Flag{limitFlag()},
		Action:    r.Search,
	}
}

func libraryCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "library",
		Usage: "Inspect and edit your library",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List saved tracks, newest first",
				Action: r.LibraryList,
			},
			{
				Name:      "show",
				Usage:     "Show one saved track",
				Arguments: []cli.Argument{&cli.StringArg{Name: "track"}},
				Action:    r.LibraryShow,
			},
			{
				Name:      "check",
				Usage:     "Report whether a track is saved",
				Arguments: []cli.Argument{&cli.StringArg{Name: "track"}},
				Action:    r.LibraryCheck,
			},
			{
				Name:      "remove",
				Usage:     "Remove a track from the library",
				Arguments: []cli.Argument{&cli.StringArg{Name: "track"}},
				Action:    r.LibraryRemove,
			},
		},
	}
}

func favCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "fav",
		Usage:     "Toggle a Jamendo track in your library",
		Arguments: []cli.Argument{&cli.StringArg{Name: "track"}},
		Action:    r.Fav,
	}
}
