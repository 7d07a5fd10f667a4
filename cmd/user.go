package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/desertthunder/riff/internal/claims"
	"github.com/desertthunder/riff/internal/identity"
	"github.com/desertthunder/riff/internal/services"
	"github.com/desertthunder/riff/internal/shared"
	"github.com/desertthunder/riff/internal/tasks"
	"github.com/desertthunder/riff/internal/ui"
	"github.com/urfave/cli/v3"
)

// readClaims decodes the claims given with --claims or --file.
func readClaims(cmd *cli.Command) (claims.Claims, error) {
	raw := cmd.String("claims")
	path := cmd.String("file")

	if raw == "" && path == "" {
		return nil, fmt.Errorf("%w: either --claims or --file must be provided", shared.ErrMissingArgument)
	}
	if raw != "" && path != "" {
		return nil, fmt.Errorf("%w: cannot specify both --claims and --file", shared.ErrInvalidArgument)
	}

	data := []byte(raw)
	if path == "-" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read claims from stdin: %w", err)
		}
		data = b
	} else if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read claims file: %w", err)
		}
		data = b
	}

	return identity.DecodeClaims(data)
}

// UserSync reconciles the user described by the given claims with the local store.
func (r *Runner) UserSync(ctx context.Context, cmd *cli.Command) error {
	c, err := readClaims(cmd)
	if err != nil {
		return err
	}
	if err := r.open(ctx); err != nil {
		return err
	}

	outcome, err := r.users.Sync(ctx, c)
	if err != nil {
		return fmt.Errorf("failed to sync user: %w", err)
	}

	email := services.MapClaims(c).Email()
	switch outcome {
	case services.OutcomeCreated:
		r.writePlain("%s %s\n", ui.Success("created"), email)
	case services.OutcomeUpdated:
		r.writePlain("%s %s\n", ui.Success("updated"), email)
	default:
		r.writePlain("%s %s\n", ui.Muted("unchanged"), email)
	}
	return nil
}

// UserImport reconciles every claim set in a file and prints a report.
func (r *Runner) UserImport(ctx context.Context, cmd *cli.Command) error {
	in := io.Reader(os.Stdin)
	if path := cmd.String("file"); path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open claims file: %w", err)
		}
		defer f.Close()
		in = f
	}

	sets, err := tasks.ReadClaimSets(in)
	if err != nil {
		return err
	}
	if err := r.open(ctx); err != nil {
		return err
	}

	useJSON := cmd.Bool("json")
	prog := make(chan tasks.ProgressUpdate, 64)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range prog {
			if !useJSON {
				r.writePlain("%s\n", ui.Muted(update.Message))
			}
		}
	}()

	engine := tasks.NewImportEngine(r.users, shared.WithLogger(r.logger, "task", "import"))
	result, err := engine.BulkImport(ctx, prog, sets, tasks.BulkImportOpts{
		NumWorkers: cmd.Int("workers"),
		RateLimit:  cmd.Float("rate"),
	})
	close(prog)
	<-done
	if err != nil {
		return err
	}

	if useJSON {
		return r.writeJSON(result, true)
	}

	r.writePlainHeader(fmt.Sprintf("Imported %d claim sets", result.Total))
	r.writePlain("  %s %d\n", ui.Success("created:  "), result.Created)
	r.writePlain("  %s %d\n", ui.Success("updated:  "), result.Updated)
	r.writePlain("  %s %d\n", ui.Muted("unchanged:"), result.Unchanged)
	if result.Failed > 0 {
		r.writePlain("  %s %d\n", ui.Failure("failed:   "), result.Failed)
	}
	return nil
}

// UserClaims prints the user the claims map to without touching the store.
func (r *Runner) UserClaims(ctx context.Context, cmd *cli.Command) error {
	c, err := readClaims(cmd)
	if err != nil {
		return err
	}

	user := services.NewReadUser(services.MapClaims(c))
	if cmd.Bool("json") {
		return r.writeJSON(user, cmd.Bool("pretty"))
	}

	r.writePlainHeader("Mapped user")
	r.printUser(user)
	if modified, err := c.UpdatedAt(); err == nil {
		r.writePlain("  Updated at: %s\n", modified.Format("2006-01-02 15:04:05 MST"))
	} else {
		r.writePlain("  Updated at: %s\n", ui.Muted(err.Error()))
	}
	return nil
}

// UserShow prints a single user.
func (r *Runner) UserShow(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(ctx); err != nil {
		return err
	}

	user, err := r.users.ByEmail(ctx, cmd.String("email"))
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(user, cmd.Bool("pretty"))
	}

	r.writePlainHeader(user.Email)
	r.printUser(user)
	return nil
}

// UserList prints every user.
func (r *Runner) UserList(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(ctx); err != nil {
		return err
	}

	users, err := r.users.List(ctx)
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(users, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Users (%d)", len(users)))
	for _, u := range users {
		r.writePlain("  %-32s %s %s\n", u.Email, u.FirstName, u.LastName)
	}
	return nil
}

func (r *Runner) printUser(u *services.ReadUser) {
	r.writePlain("  Email:      %s\n", orNone(u.Email))
	r.writePlain("  First name: %s\n", orNone(u.FirstName))
	r.writePlain("  Last name:  %s\n", orNone(u.LastName))
	r.writePlain("  Image:      %s\n", orNone(u.ImageURL))
}

func orNone(s string) string {
	if s == "" {
		return ui.Muted("-")
	}
	return s
}
