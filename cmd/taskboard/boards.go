package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newBoardsCmd(opts *rootOptions) *cobra.Command {
	flags := &clientFlags{}

	cmd := &cobra.Command{
		Use:   "boards",
		Short: "List the boards you own or are a member of",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			api, err := flags.connect(cmd, cfg, logger)
			if err != nil {
				return err
			}

			boards, err := api.ListBoards(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tCARDS\tOWNER")
			for _, b := range boards {
				fmt.Fprintf(w, "%s\t%s\t%d\t%t\n", b.BoardID, b.Name, b.CardsCount, b.IsOwner)
			}
			return w.Flush()
		},
	}
	flags.register(cmd, false)
	return cmd
}
