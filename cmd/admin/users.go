package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/classroom-kit/student-records/internal/domain"
)

func newUsersCmd(env func() *adminEnv, actor func() string) *cobra.Command {
	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "Inspect and manage user accounts",
	}

	var pendingOnly bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List user accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e := env()
			var (
				users []domain.User
				err   error
			)
			if pendingOnly {
				users, err = e.auth.ListPending(cmd.Context())
			} else {
				users, err = e.auth.ListUsers(cmd.Context())
			}
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tSTATUS")
			for _, u := range users {
				status := "authorized"
				if u.Pending() {
					status = "pending"
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, status)
			}
			return tw.Flush()
		},
	}
	listCmd.Flags().BoolVar(&pendingOnly, "pending", false, "only show accounts awaiting approval")

	approveCmd := &cobra.Command{
		Use:   "approve <id>",
		Short: "Authorize a pending account and email its owner",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid user id %q", args[0])
			}
			e := env()
			approval, err := e.auth.Approve(cmd.Context(), id)
			if err != nil {
				return err
			}
			e.logger.Info("user approved via cli", zap.Int64("user_id", id), zap.String("actor", actor()))
			fmt.Fprintf(cmd.OutOrStdout(), "approved %s (id %d)\n", approval.User.Email, approval.User.ID)
			if approval.NotifyErr != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: notification not sent: %v\n", approval.NotifyErr)
			}
			return nil
		},
	}

	var email string
	deleteCmd := &cobra.Command{
		Use:   "delete",
		Short: "Remove the account registered with an email address",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := env().auth.RemoveUserByEmail(cmd.Context(), email, actor())
			if err != nil {
				return err
			}
			if removed {
				fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", email)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "no account for %s\n", email)
			}
			return nil
		},
	}
	deleteCmd.Flags().StringVar(&email, "email", "", "email of the account to remove")
	_ = deleteCmd.MarkFlagRequired("email")

	usersCmd.AddCommand(listCmd, approveCmd, deleteCmd)
	return usersCmd
}
