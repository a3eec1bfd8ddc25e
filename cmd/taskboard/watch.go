package main

import (
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"taskboard-api/internal/projection"
)

func newWatchCmd(opts *rootOptions) *cobra.Command {
	flags := &clientFlags{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow a board live and print it whenever it changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			defer logger.Sync()

			boardID, err := flags.board()
			if err != nil {
				return err
			}
			wsURL, err := flags.websocketURL(cfg)
			if err != nil {
				return err
			}
			api, err := flags.connect(cmd, cfg, logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			mirror := projection.NewMirror(api, boardID, logger)
			if err := mirror.Load(ctx); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			render(out, mirror)
			mirror.OnChange(func() { render(out, mirror) })

			err = projection.NewWatcher(wsURL, api, mirror, logger).Run(ctx)
			switch {
			case errors.Is(err, projection.ErrBoardDeleted):
				fmt.Fprintln(out, "board was deleted")
				return nil
			case ctx.Err() != nil:
				return nil
			}
			return err
		},
	}
	flags.register(cmd, true)
	return cmd
}

func render(w io.Writer, m *projection.Mirror) {
	fmt.Fprintf(w, "── board %s\n", m.BoardID())
	for _, card := range m.Cards() {
		fmt.Fprintf(w, "[%d] %s (%d)\n", card.BoardIndex, card.Name, card.TasksCount)
		for _, task := range m.Tasks(card.CardID) {
			status := task.Status
			if status == "" {
				status = "-"
			}
			fmt.Fprintf(w, "    %d. %s  %s  %s\n", task.CardIndex, task.Title, status, task.TaskID)
		}
	}
}
