package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lonlait/blogicum/config"
	"github.com/lonlait/blogicum/database"
	"github.com/lonlait/blogicum/models"
	"github.com/lonlait/blogicum/services"
)

// withDatabase runs fn against a migrated database and closes the pool afterwards.
func withDatabase(app config.App, fn func(db database.Database) error) error {
	gormDB, err := openDatabase(app)
	if err != nil {
		return err
	}
	if sqlDB, err := gormDB.DB(); err == nil {
		defer sqlDB.Close()
	}
	return fn(database.New(gormDB))
}

func migrateCommand(app config.App) *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if check {
				return checkSchema(cmd, app)
			}
			return withDatabase(app, func(database.Database) error {
				cmd.Println("schema is up to date")
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "only report differences between the models and the live schema")

	return cmd
}

// checkSchema prints the column report and fails when any table drifted.
func checkSchema(cmd *cobra.Command, app config.App) error {
	gormDB, err := connectDatabase(app)
	if err != nil {
		return err
	}
	if sqlDB, err := gormDB.DB(); err == nil {
		defer sqlDB.Close()
	}

	report, err := database.ColumnReport(gormDB)
	if err != nil {
		return err
	}

	drifted := 0
	for _, drift := range report {
		switch {
		case drift.TableMissing:
			cmd.Printf("%s: table missing\n", drift.Table)
		case !drift.Clean():
			cmd.Printf("%s: unknown columns %v, missing columns %v\n", drift.Table, drift.UnknownColumns, drift.MissingColumns)
		default:
			cmd.Printf("%s: ok\n", drift.Table)
			continue
		}
		drifted++
	}

	if drifted > 0 {
		return fmt.Errorf("%d tables differ from the models", drifted)
	}
	return nil
}

func categoryCommand(app config.App) *cobra.Command {
	cmd := &cobra.Command{Use: "category", Short: "Manage categories"}

	var category models.Category
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a category",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDatabase(app, func(db database.Database) error {
				if err := db.CategoryRepo().Add(&category); err != nil {
					return err
				}
				cmd.Printf("category %d %q created\n", category.ID, category.Slug)
				return nil
			})
		},
	}
	add.Flags().StringVar(&category.Title, "title", "", "category title")
	add.Flags().StringVar(&category.Slug, "slug", "", "URL slug")
	add.Flags().StringVar(&category.Description, "description", "", "category description")
	add.Flags().BoolVar(&category.IsPublished, "published", true, "show the category on the site")
	_ = add.MarkFlagRequired("title")
	_ = add.MarkFlagRequired("slug")

	list := &cobra.Command{
		Use:   "list",
		Short: "List categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDatabase(app, func(db database.Database) error {
				categories, err := db.CategoryRepo().FindAll()
				if err != nil {
					return err
				}
				for _, c := range categories {
					cmd.Printf("%d\t%s\t%s\tpublished=%t\n", c.ID, c.Slug, c.Title, c.IsPublished)
				}
				return nil
			})
		},
	}

	cmd.AddCommand(add, list, publishCommand(app, "publish", true), publishCommand(app, "unpublish", false))
	return cmd
}

func publishCommand(app config.App, use string, published bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <slug>",
		Short: fmt.Sprintf("Set is_published=%t on a category", published),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(app, func(db database.Database) error {
				return db.CategoryRepo().SetPublished(args[0], published)
			})
		},
	}
}

func locationCommand(app config.App) *cobra.Command {
	cmd := &cobra.Command{Use: "location", Short: "Manage locations"}

	var location models.Location
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a location",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDatabase(app, func(db database.Database) error {
				if err := db.LocationRepo().Add(&location); err != nil {
					return err
				}
				cmd.Printf("location %d %q created\n", location.ID, location.Name)
				return nil
			})
		},
	}
	add.Flags().StringVar(&location.Name, "name", "", "place name")
	add.Flags().BoolVar(&location.IsPublished, "published", true, "show the location on posts")
	_ = add.MarkFlagRequired("name")

	list := &cobra.Command{
		Use:   "list",
		Short: "List locations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDatabase(app, func(db database.Database) error {
				locations, err := db.LocationRepo().FindAll()
				if err != nil {
					return err
				}
				for _, l := range locations {
					cmd.Printf("%d\t%s\tpublished=%t\n", l.ID, l.Name, l.IsPublished)
				}
				return nil
			})
		},
	}

	cmd.AddCommand(add, list)
	return cmd
}

func userCommand(app config.App) *cobra.Command {
	cmd := &cobra.Command{Use: "user", Short: "Manage users"}

	var (
		user     models.User
		password string
	)
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			hash, err := services.HashPassword(password)
			if err != nil {
				return err
			}
			user.PasswordHash = hash

			return withDatabase(app, func(db database.Database) error {
				if err := db.UserRepo().Add(&user); err != nil {
					return err
				}
				cmd.Printf("user %d %q created\n", user.ID, user.Username)
				return nil
			})
		},
	}
	add.Flags().StringVar(&user.Username, "username", "", "login name")
	add.Flags().StringVar(&password, "password", "", "initial password")
	add.Flags().StringVar(&user.Email, "email", "", "email address")
	add.Flags().BoolVar(&user.IsStaff, "staff", false, "mark the user as staff")
	_ = add.MarkFlagRequired("username")
	_ = add.MarkFlagRequired("password")

	cmd.AddCommand(add)
	return cmd
}
