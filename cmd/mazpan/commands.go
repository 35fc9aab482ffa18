package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/HardPulse/mazpan/internal/bootstrap"
	"github.com/HardPulse/mazpan/internal/catalog"
	"github.com/HardPulse/mazpan/internal/job"
	"github.com/HardPulse/mazpan/internal/migrations"
	"github.com/HardPulse/mazpan/internal/repository"
	"github.com/HardPulse/mazpan/internal/support/money"
)

func init() {
	// Migrate
	var migrateCmd = &cobra.Command{
		Use:       "migrate [up|down|status]",
		Short:     "Database migration management",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, dialect, err := bootstrap.OpenDatabase(cmd.Context(), cfg.DB, newLogger(cfg))
			if err != nil {
				return err
			}
			defer db.Close()

			action := "up"
			if len(args) > 0 {
				action = args[0]
			}
			switch action {
			case "down":
				return migrations.Down(db, string(dialect))
			case "status":
				return migrations.Status(db, string(dialect))
			default:
				return migrations.Up(db, string(dialect))
			}
		},
	}
	rootCmd.AddCommand(migrateCmd)

	// Backup
	var backupCmd = &cobra.Command{
		Use:   "backup",
		Short: "Snapshot the database now",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, false)
			if err != nil {
				return err
			}
			defer a.Close()

			backups, err := a.backupService(ctx)
			if err != nil {
				return err
			}
			result, err := backups.Run(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Backup created at %s (%d bytes)\n", result.Path, result.Size)
			if result.Location != "" {
				fmt.Printf("Uploaded to %s\n", result.Location)
			}
			if result.Pruned > 0 {
				fmt.Printf("Pruned %d old backups\n", result.Pruned)
			}
			return nil
		},
	}
	rootCmd.AddCommand(backupCmd)

	// Jobs
	var roleExpiryCmd = &cobra.Command{
		Use:   "expire-roles",
		Short: "Demote users whose temporary role has expired",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, true)
			if err != nil {
				return err
			}
			defer a.Close()

			services, _, err := a.services(ctx, time.Now())
			if err != nil {
				return err
			}
			return job.NewScheduler(a.logger, 0).RunNow(ctx, job.NewRoleExpiryJob(services.Entitlement))
		},
	}
	rootCmd.AddCommand(roleExpiryCmd)

	// User
	var userCmd = &cobra.Command{
		Use:   "user",
		Short: "User management",
	}
	userCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, true)
			if err != nil {
				return err
			}
			defer a.Close()
			return runUserList(ctx, a)
		},
	})

	var adminUsername, adminPassword string
	var createAdminCmd = &cobra.Command{
		Use:   "create-admin",
		Short: "Create an approved Admin (prompts for the password)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(adminUsername) == "" {
				return fmt.Errorf("--username is required / 必须指定用户名")
			}
			password := adminPassword
			if password == "" {
				var err error
				if password, err = promptPassword(); err != nil {
					return err
				}
			}
			ctx := cmd.Context()
			a, err := openApp(ctx, true)
			if err != nil {
				return err
			}
			defer a.Close()
			return runCreateAdmin(ctx, a, adminUsername, password)
		},
	}
	createAdminCmd.Flags().StringVarP(&adminUsername, "username", "u", "", "Admin username")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "Admin password (prompted when empty)")
	userCmd.AddCommand(createAdminCmd)
	rootCmd.AddCommand(userCmd)

	// Seed
	rootCmd.AddCommand(&cobra.Command{
		Use:   "seed <catalog.yaml>",
		Short: "Import shop categories and products from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open catalog: %w", err)
			}
			defer f.Close()
			file, err := catalog.Parse(f)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a, err := openApp(ctx, true)
			if err != nil {
				return err
			}
			defer a.Close()

			services, _, err := a.services(ctx, time.Now())
			if err != nil {
				return err
			}
			sum, err := catalog.NewImporter(services.Shop, a.logger).Import(ctx, file)
			if err != nil {
				return err
			}
			fmt.Printf("Categories: %d created, %d existing\n", sum.CategoriesCreated, sum.CategoriesReused)
			fmt.Printf("Products: %d created, %d skipped\n", sum.ProductsCreated, sum.ProductsSkipped)
			return nil
		},
	})

	// Version
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Mazpan %s\n", Version)
			fmt.Printf("Commit: %s\n", Commit)
			fmt.Printf("Build Time: %s\n", BuildTime)
		},
	})
}

func promptPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("stdin is not a terminal; pass --password / 非交互终端请使用 --password")
	}
	fmt.Fprint(os.Stderr, "Password: ")
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	fmt.Fprint(os.Stderr, "Repeat password: ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	if string(first) != string(second) {
		return "", errors.New("passwords do not match / 两次输入的密码不一致")
	}
	return string(first), nil
}

func runCreateAdmin(ctx context.Context, a *app, username, password string) error {
	services, _, err := a.services(ctx, time.Now())
	if err != nil {
		return err
	}
	admin, created, err := services.Auth.EnsureAdmin(ctx, username, password)
	if err != nil {
		return err
	}
	if !created {
		return fmt.Errorf("user %q already exists / 用户已存在", username)
	}
	fmt.Printf("Admin %s created (%s).\n", admin.Username, admin.ID)
	return nil
}

func runUserList(ctx context.Context, a *app) error {
	users, err := a.store.Users().List(ctx, repository.UserFilter{})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tUsername\tRole\tBalance\tApproved\tBlocked")
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%v\t%v\n",
			u.ID, u.Username, u.Role, money.FromCents(u.BalanceCents).StringFixed(2), u.Approved, u.Blocked)
	}
	return w.Flush()
}
