package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"taskboard-api/internal/ordering"
	"taskboard-api/internal/projection"
)

func newMoveCmd(opts *rootOptions) *cobra.Command {
	flags := &clientFlags{}
	var taskID, cardID, targetID string

	cmd := &cobra.Command{
		Use:   "move",
		Short: "Move a task to a card, before --target or first when no target is given",
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
			task, err := uuid.Parse(taskID)
			if err != nil {
				return fmt.Errorf("invalid --task: %w", err)
			}
			dest, err := uuid.Parse(cardID)
			if err != nil {
				return fmt.Errorf("invalid --card: %w", err)
			}
			target, err := ordering.ParseTarget(targetID)
			if err != nil {
				return err
			}

			api, err := flags.connect(cmd, cfg, logger)
			if err != nil {
				return err
			}
			mirror := projection.NewMirror(api, boardID, logger)
			if err := mirror.Load(cmd.Context()); err != nil {
				return err
			}
			if err := mirror.MoveTask(cmd.Context(), task, dest, target); err != nil {
				return err
			}
			render(cmd.OutOrStdout(), mirror)
			return nil
		},
	}
	flags.register(cmd, true)
	cmd.Flags().StringVar(&taskID, "task", "", "task id to move")
	cmd.Flags().StringVar(&cardID, "card", "", "destination card id")
	cmd.Flags().StringVar(&targetID, "target", ordering.EmptyTarget, "task id whose position the moved task takes")
	_ = cmd.MarkFlagRequired("task")
	_ = cmd.MarkFlagRequired("card")
	return cmd
}
