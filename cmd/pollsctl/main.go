package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/danielhkuo/encuestas/auth"
	"github.com/danielhkuo/encuestas/db"
	"github.com/danielhkuo/encuestas/fixtures"
)

type Globals struct {
	DatabaseURL  string `name:"database-url" short:"d" env:"DATABASE_URL" required:"" help:"Database connection string."`
	DatabaseType string `name:"database-type" short:"t" env:"DATABASE_TYPE" default:"sqlite" enum:"sqlite,postgres" help:"Database driver (sqlite or postgres)."`
}

type LoadSampleCmd struct {
	Delete bool   `help:"Delete every existing poll before loading."`
	User   string `default:"admin" help:"Username recorded as the creator of the polls."`
}

func (c *LoadSampleCmd) Run(ctx context.Context, g *Globals) error {
	conn, err := openDB(g)
	if err != nil {
		return err
	}
	defer conn.Close()

	res, err := fixtures.Load(ctx, conn, fixtures.Options{Delete: c.Delete, Username: c.User})
	if err != nil {
		return err
	}

	if c.Delete {
		fmt.Printf("Deleted %d existing polls\n", res.Deleted)
	}
	if res.Creator == nil {
		fmt.Printf("User %q not found; polls were created without an author\n", c.User)
	}
	for _, q := range res.Created {
		fmt.Printf("Created poll %d: %s\n", q.ID, q.QuestionText)
	}
	fmt.Printf("Loaded %d sample polls\n", len(res.Created))
	return nil
}

type CreateUserCmd struct {
	Username string `arg:"" help:"Login name."`
	Password string `env:"POLLSCTL_PASSWORD" required:"" help:"Password for the new account."`
	Staff    bool   `help:"Grant access to the management API."`
}

func (c *CreateUserCmd) Run(ctx context.Context, g *Globals) error {
	conn, err := openDB(g)
	if err != nil {
		return err
	}
	defer conn.Close()

	u, err := auth.CreateUser(ctx, conn, c.Username, c.Password, c.Staff)
	if err != nil {
		return err
	}
	fmt.Printf("Created user %d: %s (staff: %t)\n", u.ID, u.Username, u.IsStaff)
	return nil
}

type CLI struct {
	Globals

	LoadSample LoadSampleCmd `cmd:"" help:"Load demo polls."`
	CreateUser CreateUserCmd `cmd:"" help:"Create a user account."`
}

func openDB(g *Globals) (*sql.DB, error) {
	conn, err := db.Open(g.DatabaseType, g.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := db.CreateSchema(conn, g.DatabaseType); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

func newParser(cli *CLI) (*kong.Kong, error) {
	return kong.New(cli,
		kong.Name("pollsctl"),
		kong.Description("Management commands for the polls server."),
		kong.UsageOnError(),
		kong.BindTo(context.Background(), (*context.Context)(nil)),
	)
}

func main() {
	_ = godotenv.Load()

	var cli CLI
	parser, err := newParser(&cli)
	if err != nil {
		slog.Error("failed to build command line", "error", err)
		os.Exit(1)
	}
	kctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	if err := kctx.Run(&cli.Globals); err != nil {
		slog.Error("command failed", "command", kctx.Command(), "error", err)
		os.Exit(1)
	}
}
