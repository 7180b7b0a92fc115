// Command manage runs maintenance tasks against the user registry database.
//
//	manage migrate up|down|status
//	manage createuser -name NAME -email EMAIL [-badge BADGE]
//	manage listusers
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"golang.org/x/term"
	"gorm.io/gorm"

	"user_registry/internal/feature/users/adapters"
	"user_registry/internal/feature/users/transport/http/dto"
	"user_registry/internal/feature/users/usecase"
	"user_registry/internal/platform/config"
	"user_registry/internal/platform/db"
	"user_registry/internal/platform/logging"
)

const usage = `usage:
  manage migrate up|down|status
  manage createuser -name NAME -email EMAIL [-badge BADGE]
  manage listusers`

var errUsage = errors.New(usage)

// readPassword is a test seam for term.ReadPassword.
var readPassword = func() ([]byte, error) {
	return term.ReadPassword(int(os.Stdin.Fd()))
}

func main() {
	cfg, err := config.Load()
	if err != nil && !errors.Is(err, config.ErrMissingSecret) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	slog.SetDefault(logging.New(os.Stderr, cfg.LogLevel))

	gdb, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open database:", err)
		os.Exit(1)
	}

	if err := run(context.Background(), gdb, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, gdb *gorm.DB, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "migrate":
		return runMigrate(ctx, gdb, args[1:], out)
	case "createuser":
		return runCreateUser(ctx, gdb, args[1:], out)
	case "listusers":
		return runListUsers(ctx, gdb, out)
	default:
		return fmt.Errorf("unknown command %q\n%w", args[0], errUsage)
	}
}

func runMigrate(ctx context.Context, gdb *gorm.DB, args []string, out io.Writer) error {
	if len(args) != 1 {
		return errUsage
	}
	m, err := db.NewMigrator(gdb)
	if err != nil {
		return err
	}
	switch args[0] {
	case "up":
		err = m.Up(ctx)
	case "down":
		err = m.Down(ctx)
	case "status":
		return m.Status(ctx)
	default:
		return fmt.Errorf("unknown migrate action %q\n%w", args[0], errUsage)
	}
	if err != nil {
		return err
	}
	v, err := m.Version(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "schema version: %d\n", v)
	return nil
}

func runCreateUser(ctx context.Context, gdb *gorm.DB, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("createuser", flag.ContinueOnError)
	fs.SetOutput(out)
	name := fs.String("name", "", "user name")
	email := fs.String("email", "", "user email")
	badge := fs.String("badge", "", "optional badge")
	if err := fs.Parse(args); err != nil {
		return err
	}

	fmt.Fprint(out, "Password: ")
	pw, err := readPassword()
	fmt.Fprintln(out)
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	fmt.Fprint(out, "Confirm Password: ")
	pw2, err := readPassword()
	fmt.Fprintln(out)
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}

	req := dto.UserReq{Name: *name, Email: *email, Badge: *badge, Password: string(pw), Password2: string(pw2)}
	cleaned, errs := dto.UserForm.Validate(req.Fields())
	if errs != nil {
		for _, f := range errs.Fields() {
			for _, msg := range errs[f] {
				fmt.Fprintf(out, "%s: %s\n", f, msg)
			}
		}
		return errors.New("invalid input")
	}

	uc := usecase.NewUserUsecase(adapters.NewUserRepository(gdb))
	user, err := uc.CreateUser(ctx, cleaned["name"], cleaned["email"], cleaned["badge"], cleaned["password_hash"])
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "created user %d <%s>\n", user.ID, user.Email)
	return nil
}

func runListUsers(ctx context.Context, gdb *gorm.DB, out io.Writer) error {
	uc := usecase.NewUserUsecase(adapters.NewUserRepository(gdb))
	users, err := uc.ListUsers(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tBADGE\tADDED")
	for _, u := range users {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, u.Badge, u.DateAdded.Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}
