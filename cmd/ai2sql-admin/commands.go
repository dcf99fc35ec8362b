package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ai2sql/internal/admin"
	"ai2sql/internal/pkg/database"
)

// migrateCmd creates or updates the service tables
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update database tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, closeFn, err := openDB()
		if err != nil {
			return err
		}
		defer closeFn()

		if err := database.Migrate(db); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "migration complete")
		return nil
	},
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage accounts",
}

var (
	userName     string
	userPassword string
	userRole     string
)

// userCreateCmd adds a local account
var userCreateCmd = &cobra.Command{
	Use:   "create [email]",
	Short: "Create a local account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, closeFn, err := openDB()
		if err != nil {
			return err
		}
		defer closeFn()

		user, err := admin.New(db).CreateUser(args[0], userName, userPassword, userRole)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created user %d %s (%s)\n", user.ID, user.Email, user.Role)
		return nil
	},
}

// userSetRoleCmd changes the global role of an account
var userSetRoleCmd = &cobra.Command{
	Use:   "set-role [email] [user|admin|superuser]",
	Short: "Change the global role of an account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, closeFn, err := openDB()
		if err != nil {
			return err
		}
		defer closeFn()

		user, err := admin.New(db).SetRole(args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "user %s is now %s\n", user.Email, user.Role)
		return nil
	},
}

var memberCmd = &cobra.Command{
	Use:   "member",
	Short: "Manage project memberships",
}

var (
	memberProjectID int64
	memberRole      string
)

// memberAddCmd grants an account a role in a project
var memberAddCmd = &cobra.Command{
	Use:   "add [email]",
	Short: "Add an account to a project, or change its role there",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, closeFn, err := openDB()
		if err != nil {
			return err
		}
		defer closeFn()

		member, err := admin.New(db).AddMember(memberProjectID, args[0], memberRole)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "user %d is %s in project %d\n", member.UserID, member.Role, member.ProjectID)
		return nil
	},
}

func init() {
	userCreateCmd.Flags().StringVar(&userName, "name", "", "Display name, defaults to the email local part")
	userCreateCmd.Flags().StringVar(&userPassword, "password", "", "Password, at least 6 characters")
	userCreateCmd.Flags().StringVar(&userRole, "role", "user", "Global role: user, admin or superuser")
	_ = userCreateCmd.MarkFlagRequired("password")
	userCmd.AddCommand(userCreateCmd)
	userCmd.AddCommand(userSetRoleCmd)

	memberAddCmd.Flags().Int64Var(&memberProjectID, "project", 0, "Project id")
	memberAddCmd.Flags().StringVar(&memberRole, "role", "viewer", "Project role: viewer, editor or admin")
	_ = memberAddCmd.MarkFlagRequired("project")
	memberCmd.AddCommand(memberAddCmd)
}
