package main

import (
	"fmt"

	"notes-store/internal/api/dto"
	"notes-store/internal/converter"

	"github.com/spf13/cobra"
)

func newCreateCmd(opts *globalOptions) *cobra.Command {
	var title, body string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a note",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := dto.CreateNoteRequest{Body: &body}
			if cmd.Flags().Changed("title") {
				req.Title = &title
			}
			if err := dto.Validate(req); err != nil {
				return err
			}

			service, closeFn, err := opts.openService(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			note, err := service.Create(cmd.Context(), converter.CreateRequestToInput(req))
			if err != nil {
				return err
			}
			return printNote(cmd.OutOrStdout(), opts.output, note)
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "note title (at least 3 characters)")
	cmd.Flags().StringVarP(&body, "body", "b", "", "note body")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newListCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List notes without their bodies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			service, closeFn, err := opts.openService(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			summaries, err := service.List(cmd.Context())
			if err != nil {
				return err
			}
			return printSummaries(cmd.OutOrStdout(), opts.output, summaries)
		},
	}
}

func newGetCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get [id]",
		Short: "Print a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, closeFn, err := opts.openService(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			note, err := service.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printNote(cmd.OutOrStdout(), opts.output, note)
		},
	}
}

func newUpdateCmd(opts *globalOptions) *cobra.Command {
	var title, body string

	cmd := &cobra.Command{
		Use:   "update [id]",
		Short: "Update a note; only the given flags are changed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var req dto.UpdateNoteRequest
			if cmd.Flags().Changed("title") {
				req.Title = &title
			}
			if cmd.Flags().Changed("body") {
				req.Body = &body
			}
			if err := dto.Validate(req); err != nil {
				return err
			}

			service, closeFn, err := opts.openService(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			note, err := service.Update(cmd.Context(), args[0], converter.UpdateRequestToPatch(req))
			if err != nil {
				return err
			}
			return printNote(cmd.OutOrStdout(), opts.output, note)
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "new title")
	cmd.Flags().StringVarP(&body, "body", "b", "", "new body")
	return cmd
}

func newDeleteCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id...]",
		Short: "Delete notes; unknown IDs are ignored",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, closeFn, err := opts.openService(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			ids := converter.UniqueIDs(args)
			if err := service.DeleteMany(cmd.Context(), ids); err != nil {
				return err
			}
			if opts.output == outputText {
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %d id(s)\n", len(ids))
			}
			return nil
		},
	}
}
