package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sourcing/models"
	"sourcing/services"
	"sourcing/storage"
	"sourcing/utils"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the SQL schema and ORM migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := storage.InitDB(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := storage.Migrate(ctx, db); err != nil {
			return err
		}

		orm, err := storage.InitGormDB(cfg)
		if err != nil {
			return err
		}
		if sqlDB, err := orm.DB(); err == nil {
			defer sqlDB.Close()
		}
		if err := storage.AutoMigrate(orm); err != nil {
			return err
		}
		logger.Info("migrations applied")
		return nil
	},
}

var (
	matchTitle     string
	matchProcess   string
	matchMaterials string
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Dry-run the supplier matcher against the live directory",
	Example: `  sourcing match --title "Foldable Camp Table" --materials aluminum`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := openStore()
		if err != nil {
			return err
		}
		defer closeStore()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		matcher := services.NewMatcher(store, logger, nil)
		result := matcher.Match(ctx, models.RFQData{
			Title:     matchTitle,
			Process:   matchProcess,
			Materials: matchMaterials,
		})

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "terms: %s\n", strings.Join(result.Terms, ", "))
		if len(result.Partners) == 0 {
			fmt.Fprintln(out, "no matching manufacturers")
			return nil
		}
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tCAPABILITIES")
		for _, p := range result.Partners {
			fmt.Fprintf(w, "%s\t%s\t%s\n", p.ID, p.Name, strings.Join(p.Capabilities, ", "))
		}
		return w.Flush()
	},
}

var (
	newUserEmail    string
	newUserPassword string
	newUserFirst    string
	newUserAdmin    bool
)

var createUserCmd = &cobra.Command{
	Use:   "create-user",
	Short: "Create a login",
	RunE: func(cmd *cobra.Command, args []string) error {
		email := strings.ToLower(strings.TrimSpace(newUserEmail))
		if email == "" || newUserPassword == "" {
			return errors.New("--email and --password are required")
		}

		store, closeStore, err := openStore()
		if err != nil {
			return err
		}
		defer closeStore()

		hash, err := utils.HashPassword(newUserPassword)
		if err != nil {
			return err
		}
		now := time.Now()
		user := &models.User{
			ID:        uuid.NewString(),
			Email:     email,
			Password:  hash,
			FirstName: newUserFirst,
			IsAdmin:   newUserAdmin,
			CreatedAt: now,
			UpdatedAt: now,
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := store.CreateUser(ctx, user); err != nil {
			if errors.Is(err, storage.ErrConflict) {
				return fmt.Errorf("user %s already exists", email)
			}
			return err
		}
		logger.Info("user created", zap.String("id", user.ID), zap.String("email", email), zap.Bool("admin", newUserAdmin))
		return nil
	},
}

func init() {
	matchCmd.Flags().StringVar(&matchTitle, "title", "", "RFQ title")
	matchCmd.Flags().StringVar(&matchProcess, "process", "", "manufacturing process")
	matchCmd.Flags().StringVar(&matchMaterials, "materials", "", "materials")

	createUserCmd.Flags().StringVar(&newUserEmail, "email", "", "login email")
	createUserCmd.Flags().StringVar(&newUserPassword, "password", "", "login password")
	createUserCmd.Flags().StringVar(&newUserFirst, "first-name", "", "first name")
	createUserCmd.Flags().BoolVar(&newUserAdmin, "admin", false, "grant admin rights")
}
