package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check the recognition service and catalog size",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			services, err := buildServices(cmd)
			if err != nil {
				return err
			}
			defer services.Logger.Sync()

			status := services.Monitor.Run(withCommandContext(cmd))
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Service: %s\n", services.Config.Service.BaseURL)
			if status.Reachable {
				fmt.Fprintln(out, "Status:  online")
			} else {
				fmt.Fprintln(out, "Status:  offline")
			}
			fmt.Fprintf(out, "Songs:   %s\n", humanize.Comma(int64(status.CatalogSize)))
			return nil
		},
	}
}

func newSongsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "songs",
		Short: "List the songs the service can match against",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			services, err := buildServices(cmd)
			if err != nil {
				return err
			}
			defer services.Logger.Sync()

			songs, err := services.Client.ListSongs(withCommandContext(cmd))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, song := range songs {
				fmt.Fprintf(out, "%4d  %s - %s  (%s)\n", song.ID, song.Title, song.Artist, formatSeconds(song.Duration))
			}
			fmt.Fprintf(out, "%d songs\n", len(songs))
			return nil
		},
	}
}

func newSongCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "song ID",
		Short: "Show catalog details for a matched song",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid song id %q", args[0])
			}

			services, err := buildServices(cmd)
			if err != nil {
				return err
			}
			defer services.Logger.Sync()

			song, err := services.Client.FetchSong(withCommandContext(cmd), id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID:       %d\n", song.ID)
			fmt.Fprintf(out, "Title:    %s\n", song.Title)
			fmt.Fprintf(out, "Artist:   %s\n", song.Artist)
			fmt.Fprintf(out, "Duration: %s\n", formatSeconds(song.Duration))
			return nil
		},
	}
}

func formatSeconds(seconds float64) string {
	return (time.Duration(seconds * float64(time.Second))).Round(time.Second).String()
}
