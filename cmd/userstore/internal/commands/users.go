package commands

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/patric-chuzhbe/userstore/internal/app"
	"github.com/patric-chuzhbe/userstore/internal/user"
)

// ErrUserNotFound is returned by get and update for an unknown ID.
var ErrUserNotFound = errors.New("user not found")

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid user id %q: %w", arg, err)
	}

	return id, nil
}

func addUserFlags(cmd *cobra.Command, usr *user.User) {
	flags := cmd.Flags()
	flags.StringVar(&usr.FirstName, "first-name", "", "first name")
	flags.StringVar(&usr.LastName, "last-name", "", "last name")
	flags.StringVar(&usr.Email, "email", "", "e-mail address")
	flags.Uint8Var(&usr.Age, "age", 0, "age")
}

// applyChangedFlags copies onto stored the fields whose flags were given.
func applyChangedFlags(cmd *cobra.Command, flagValues *user.User, stored *user.User) {
	flags := cmd.Flags()
	if flags.Changed("first-name") {
		stored.FirstName = flagValues.FirstName
	}
	if flags.Changed("last-name") {
		stored.LastName = flagValues.LastName
	}
	if flags.Changed("email") {
		stored.Email = flagValues.Email
	}
	if flags.Changed("age") {
		stored.Age = flagValues.Age
	}
}

func newSchemaCmd(options *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Apply hibernate.hbm2ddl.auto and check the connection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return options.withApp(cmd.Context(), func(application *app.App) error {
				if err := application.Ping(cmd.Context()); err != nil {
					return err
				}

				version, err := application.SchemaVersion(cmd.Context())
				if err != nil {
					return err
				}

				return printJSON(cmd.OutOrStdout(), map[string]interface{}{
					"hbm2ddl": application.DDLMode(),
					"version": version,
				})
			})
		},
	}
}

func newListCmd(options *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return options.withApp(cmd.Context(), func(application *app.App) error {
				users, err := application.Users().FindAll(cmd.Context())
				if err != nil {
					return err
				}
				if users == nil {
					users = []*user.User{}
				}

				return printJSON(cmd.OutOrStdout(), users)
			})
		},
	}
}

func newGetCmd(options *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show one user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			return options.withApp(cmd.Context(), func(application *app.App) error {
				usr, found, err := application.Users().FindByID(cmd.Context(), id)
				if err != nil {
					return err
				}
				if !found {
					return fmt.Errorf("user %d: %w", id, ErrUserNotFound)
				}

				return printJSON(cmd.OutOrStdout(), usr)
			})
		},
	}
}

func newAddCmd(options *rootOptions) *cobra.Command {
	usr := &user.User{}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Store a new user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return options.withApp(cmd.Context(), func(application *app.App) error {
				if err := application.Users().Save(cmd.Context(), usr); err != nil {
					return err
				}

				return printJSON(cmd.OutOrStdout(), usr)
			})
		},
	}
	addUserFlags(cmd, usr)

	return cmd
}

func newUpdateCmd(options *rootOptions) *cobra.Command {
	flagValues := &user.User{}

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Change fields of a stored user",
		Long: `Loads the stored user, replaces the fields given as flags and writes the
whole record back. Fields without a flag keep their stored values.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			return options.withApp(cmd.Context(), func(application *app.App) error {
				stored, found, err := application.Users().FindByID(cmd.Context(), id)
				if err != nil {
					return err
				}
				if !found {
					return fmt.Errorf("user %d: %w", id, ErrUserNotFound)
				}

				applyChangedFlags(cmd, flagValues, stored)

				if err := application.Users().UpdateUser(cmd.Context(), stored); err != nil {
					return err
				}

				return printJSON(cmd.OutOrStdout(), stored)
			})
		},
	}
	addUserFlags(cmd, flagValues)

	return cmd
}

func newDeleteCmd(options *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Remove a stored user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			return options.withApp(cmd.Context(), func(application *app.App) error {
				return application.Users().DeleteByID(cmd.Context(), id)
			})
		},
	}
}
