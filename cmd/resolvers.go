package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"user-import/core/reconcile"

	"github.com/spf13/cobra"
)

var (
	// Flags shared by the users and history commands
	resolverGroup   string
	resolverName    string
	resolverPattern string
)

// resolversCmd lists the resolvers created by imports.
var resolversCmd = &cobra.Command{
	Use:   "resolvers",
	Short: "List imported resolvers",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.close()

		defs, err := a.store.Definitions(context.Background())
		if err != nil {
			return err
		}

		w := newTable(cmd.OutOrStdout())
		fmt.Fprintln(w, "GROUP\tRESOLVER\tFORMAT\tUSERS\tLAST IMPORT\tUPDATED")
		for _, d := range defs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t+%d ~%d -%d\t%s\n",
				d.GroupID, d.Resolver, d.Format, d.UserCount,
				d.LastCreated, d.LastUpdated, d.LastDeleted,
				d.UpdatedAt.Format(time.RFC3339))
		}
		return w.Flush()
	},
}

// usersCmd lists the users of one resolver.
var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List the users of a resolver",
	Long:  `List the users of a resolver. --pattern accepts * as a wildcard on the username.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.close()

		ns := reconcile.Namespace{GroupID: resolverGroup, Resolver: resolverName}
		users, err := a.store.List(context.Background(), ns, resolverPattern)
		if err != nil {
			return err
		}

		w := newTable(cmd.OutOrStdout())
		fmt.Fprintln(w, "USERID\tUSERNAME\tGIVEN NAME\tSURNAME\tEMAIL")
		for _, u := range users {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", u.UserID, u.Username, u.GivenName, u.Surname, u.Email)
		}
		return w.Flush()
	},
}

// historyCmd lists the archived snapshots of one resolver.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List the archived snapshots of a resolver",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.close()

		if a.archive == nil {
			return fmt.Errorf("snapshot archive is disabled (IMPORT_ARCHIVE=false)")
		}

		snapshots, err := a.archive.List(context.Background(), resolverGroup, resolverName)
		if err != nil {
			return err
		}

		w := newTable(cmd.OutOrStdout())
		fmt.Fprintln(w, "OBJECT\tSIZE\tSTORED")
		for _, s := range snapshots {
			fmt.Fprintf(w, "%s\t%d\t%s\n", s.Name, s.Size, s.LastModified.Format(time.RFC3339))
		}
		return w.Flush()
	},
}

func newTable(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
}

func init() {
	for _, c := range []*cobra.Command{usersCmd, historyCmd} {
		c.Flags().StringVar(&resolverGroup, "group", "", "Group id of the resolver (required)")
		c.Flags().StringVar(&resolverName, "resolver", "", "Resolver name (required)")
		_ = c.MarkFlagRequired("group")
		_ = c.MarkFlagRequired("resolver")
	}
	usersCmd.Flags().StringVar(&resolverPattern, "pattern", "", "Username filter, * matches anything")

	RootCmd.AddCommand(resolversCmd, usersCmd, historyCmd)
}
