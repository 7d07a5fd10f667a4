package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/riff/internal/shared"
	tu "github.com/desertthunder/riff/internal/testing"
	"github.com/urfave/cli/v3"
)

const adaClaims = `{"sub":"auth0|ada","email":"ada@example.com","given_name":"Ada","family_name":"Lovelace","updated_at":"2024-01-01T00:00:00Z"}`

const song = "3f0e5d8a-2b7c-4d1e-9a6f-0c8b7e4d2a19"

// run executes the CLI with args against runner and returns what it wrote.
func run(t *testing.T, runner *Runner, args ...string) (string, error) {
	t.Helper()

	output := &bytes.Buffer{}
	runner.output = output

	app := &cli.Command{
		Name:      "riff",
		Writer:    io.Discard,
		ErrWriter: io.Discard,
		Commands:  runner.register(),
	}
	err := app.Run(context.Background(), append([]string{"riff"}, args...))
	return output.String(), err
}

func newTestRunner(t *testing.T) *Runner {
	t.Helper()
	return NewRunner(RunnerOpts{
		DB:     tu.OpenTestDB(t),
		Logger: shared.NewLogger(io.Discard),
	})
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			db := tu.OpenTestDB(t)

			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: "/test/path/config.toml",
				Logger:     logger,
				Output:     output,
				DB:         db,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.db != db {
				t.Error("expected db to be set")
			}
			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
			if runner.metrics == nil {
				t.Error("expected metrics to be created")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})
			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: nil})
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})
	})

	t.Run("open", func(t *testing.T) {
		t.Run("builds services once", func(t *testing.T) {
			runner := newTestRunner(t)

			if err := runner.open(context.Background()); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			users := runner.users
			if users == nil || runner.favorites == nil {
				t.Fatal("expected services to be built")
			}
			if err := runner.open(context.Background()); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if runner.users != users {
				t.Error("expected services to be reused")
			}
		})

		t.Run("Close leaves provided database open", func(t *testing.T) {
			runner := newTestRunner(t)
			db := runner.db

			if err := runner.Close(); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if err := db.Ping(); err != nil {
				t.Errorf("expected database to stay open, got %v", err)
			}
		})

		t.Run("opens and closes configured database", func(t *testing.T) {
			config := shared.DefaultConfig()
			config.Database.Path = filepath.Join(t.TempDir(), "riff.db")
			runner := NewRunner(RunnerOpts{Config: config, Logger: shared.NewLogger(io.Discard)})

			if err := runner.open(context.Background()); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			tu.AssertFileExists(t, config.Database.Path)

			if err := runner.Close(); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if runner.db != nil || runner.users != nil {
				t.Error("expected runner to drop closed database")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if result := output.String(); result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(make(chan int), false)
			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if result := output.String(); result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("writePlainln surrounds text with newlines", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlainln("next"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if result := output.String(); result != "\nnext\n" {
				t.Errorf("expected %q, got %q", "\nnext\n", result)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		names := map[string]bool{}
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			names[cmd.Name] = true
		}
		for _, name := range []string{"setup", "migrate", "serve", "user", "favorite", "tui"} {
			if !names[name] {
				t.Errorf("expected command %q to be registered", name)
			}
		}
	})
}

func TestSetupDatabase(t *testing.T) {
	dir := t.TempDir()
	wd := tu.MustGetwd(t)
	tu.MustChdir(t, dir)
	t.Cleanup(func() { tu.MustChdir(t, wd) })

	runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard)})
	configPath := filepath.Join(dir, "config.toml")

	out, err := run(t, runner, "setup", "--config", configPath)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	tu.AssertFileExists(t, configPath)
	tu.AssertFileExists(t, filepath.Join(dir, "riff.db"))
	if !strings.Contains(out, "database ready") {
		t.Errorf("expected confirmation, got %q", out)
	}
	if !strings.Contains(tu.MustReadFile(t, configPath), "[identity]") {
		t.Error("expected config to be created from the template")
	}

	t.Run("rerun keeps existing config", func(t *testing.T) {
		if _, err := run(t, runner, "setup", "--config", configPath); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("rollback", func(t *testing.T) {
		if _, err := run(t, runner, "migrate", "rollback"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})
}

func TestMigrationStatus(t *testing.T) {
	runner := newTestRunner(t)

	out, err := run(t, runner, "migrate", "status")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	for _, version := range []string{"000", "001"} {
		if !strings.Contains(out, version) {
			t.Errorf("expected version %s in %q", version, out)
		}
	}
}

func TestUserCommands(t *testing.T) {
	runner := newTestRunner(t)

	t.Run("sync creates then leaves user unchanged", func(t *testing.T) {
		out, err := run(t, runner, "user", "sync", "--claims", adaClaims)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(out, "created") || !strings.Contains(out, "ada@example.com") {
			t.Errorf("expected created outcome, got %q", out)
		}

		out, err = run(t, runner, "user", "sync", "--claims", adaClaims)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(out, "unchanged") {
			t.Errorf("expected unchanged outcome, got %q", out)
		}
	})

	t.Run("sync updates from newer claims file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "claims.json")
		newer := `{"sub":"auth0|ada","email":"ada@example.com","given_name":"Augusta","updated_at":"2030-01-01T00:00:00Z"}`
		if err := os.WriteFile(path, []byte(newer), 0644); err != nil {
			t.Fatalf("failed to write claims: %v", err)
		}

		out, err := run(t, runner, "user", "sync", "--file", path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(out, "updated") {
			t.Errorf("expected updated outcome, got %q", out)
		}
	})

	t.Run("sync requires claims", func(t *testing.T) {
		_, err := run(t, runner, "user", "sync")
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("sync rejects both inputs", func(t *testing.T) {
		_, err := run(t, runner, "user", "sync", "--claims", adaClaims, "--file", "claims.json")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("sync rejects malformed claims", func(t *testing.T) {
		_, err := run(t, runner, "user", "sync", "--claims", "{not json")
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("show", func(t *testing.T) {
		out, err := run(t, runner, "user", "show", "--email", "ada@example.com", "--json")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var user map[string]string
		if err := json.Unmarshal([]byte(out), &user); err != nil {
			t.Fatalf("expected JSON output, got %q: %v", out, err)
		}
		if user["email"] != "ada@example.com" || user["firstName"] != "Augusta" {
			t.Errorf("unexpected user %v", user)
		}
	})

	t.Run("show missing user", func(t *testing.T) {
		_, err := run(t, runner, "user", "show", "--email", "nobody@example.com")
		if !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("list", func(t *testing.T) {
		out, err := run(t, runner, "user", "list")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(out, "Users (1)") || !strings.Contains(out, "ada@example.com") {
			t.Errorf("unexpected listing %q", out)
		}
	})

	t.Run("claims maps without saving", func(t *testing.T) {
		grace := `{"sub":"github|grace","preferred_username":"grace","updated_at":1700000000}`
		out, err := run(t, runner, "user", "claims", "--claims", grace, "--json")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(out, `"email"`) {
			t.Errorf("expected mapped user, got %q", out)
		}

		out, err = run(t, runner, "user", "list", "--json")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if strings.Contains(out, "grace") {
			t.Errorf("expected claims command not to persist, got %q", out)
		}
	})
}

func TestFavoriteCommands(t *testing.T) {
	runner := newTestRunner(t)

	t.Run("add", func(t *testing.T) {
		out, err := run(t, runner, "favorite", "add", "--email", "ada@example.com", "--song", song)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(out, "added") {
			t.Errorf("expected confirmation, got %q", out)
		}
	})

	t.Run("add twice", func(t *testing.T) {
		_, err := run(t, runner, "fav", "add", "--email", "ada@example.com", "--song", song)
		if !errors.Is(err, shared.ErrDuplicate) {
			t.Errorf("expected ErrDuplicate, got %v", err)
		}
	})

	t.Run("invalid song", func(t *testing.T) {
		_, err := run(t, runner, "favorite", "add", "--email", "ada@example.com", "--song", "not-a-uuid")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("list", func(t *testing.T) {
		out, err := run(t, runner, "favorite", "list", "--email", "ada@example.com", "--json")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var rows []favoriteRow
		if err := json.Unmarshal([]byte(out), &rows); err != nil {
			t.Fatalf("expected JSON output, got %q: %v", out, err)
		}
		if len(rows) != 1 || rows[0].SongPublicID != song || rows[0].UserEmail != "ada@example.com" {
			t.Errorf("unexpected favorites %+v", rows)
		}
	})

	t.Run("fans", func(t *testing.T) {
		out, err := run(t, runner, "favorite", "fans", "--song", song)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(out, "ada@example.com") {
			t.Errorf("expected fan listing, got %q", out)
		}
	})

	t.Run("remove", func(t *testing.T) {
		if _, err := run(t, runner, "favorite", "remove", "--email", "ada@example.com", "--song", song); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		_, err := run(t, runner, "favorite", "remove", "--email", "ada@example.com", "--song", song)
		if !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestServeValidatesConfig(t *testing.T) {
	config := shared.DefaultConfig()
	config.Session.Backend = "etcd"
	runner := NewRunner(RunnerOpts{Config: config, Logger: shared.NewLogger(io.Discard)})

	_, err := run(t, runner, "serve")
	if !errors.Is(err, shared.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestUserImport(t *testing.T) {
	runner := newTestRunner(t)
	path := filepath.Join(t.TempDir(), "claims.jsonl")
	lines := strings.Join([]string{
		adaClaims,
		`{"sub":"auth0|grace","email":"grace@example.com","updated_at":1700000000}`,
		adaClaims,
		`{}`,
	}, "\n")
	if err := os.WriteFile(path, []byte(lines), 0644); err != nil {
		t.Fatalf("failed to write claims: %v", err)
	}

	t.Run("json report", func(t *testing.T) {
		out, err := run(t, runner, "user", "import", "--file", path, "--workers", "1", "--json")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var report struct {
			Total     int `json:"total"`
			Created   int `json:"created"`
			Unchanged int `json:"unchanged"`
			Failed    int `json:"failed"`
		}
		if err := json.Unmarshal([]byte(out), &report); err != nil {
			t.Fatalf("expected JSON report, got %q: %v", out, err)
		}
		if report.Total != 4 || report.Created != 2 || report.Unchanged != 2 || report.Failed != 0 {
			t.Errorf("unexpected report %+v", report)
		}
	})

	t.Run("plain report", func(t *testing.T) {
		out, err := run(t, runner, "user", "import", "--file", path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(out, "Imported 4 claim sets") {
			t.Errorf("expected summary header, got %q", out)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := run(t, runner, "user", "import", "--file", filepath.Join(t.TempDir(), "nope.json"))
		if err == nil || !strings.Contains(err.Error(), "failed to open claims file") {
			t.Errorf("expected open error, got %v", err)
		}
	})
}

func TestFavoriteExport(t *testing.T) {
	runner := newTestRunner(t)
	if _, err := run(t, runner, "favorite", "add", "--email", "ada@example.com", "--song", song); err != nil {
		t.Fatalf("failed to add favorite: %v", err)
	}

	path := filepath.Join(t.TempDir(), "ada.csv")
	out, err := run(t, runner, "favorite", "export", "--email", "ada@example.com", "--format", "csv", "--output", path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(out, "exported") {
		t.Errorf("expected confirmation, got %q", out)
	}
	if content := tu.MustReadFile(t, path); !strings.Contains(content, song) {
		t.Errorf("expected export to contain song, got %q", content)
	}

	_, err = run(t, runner, "favorite", "export", "--email", "ada@example.com", "--format", "xml", "--output", path)
	if !errors.Is(err, shared.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}
