// Package cli implements queuectl, the operator command line for the job
// queue.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/joshu-sajeev/pingcrm/internal/queue"
	"github.com/spf13/cobra"
)

// Backend is what the commands operate on once connected.
type Backend struct {
	Store   queue.Store
	Clock   queue.Clock
	Migrate func(ctx context.Context) error
	Close   func() error
}

// Connector opens a Backend. It is called once, before the first command runs.
type Connector func(ctx context.Context) (*Backend, error)

type app struct {
	connect Connector
	backend *Backend
}

func (a *app) open(cmd *cobra.Command) error {
	if a.backend != nil || cmd.Name() == "help" {
		return nil
	}
	b, err := a.connect(cmd.Context())
	if err != nil {
		return err
	}
	if b.Clock == nil {
		b.Clock = queue.SystemClock()
	}
	a.backend = b
	return nil
}

func (a *app) close() error {
	if a.backend == nil || a.backend.Close == nil {
		return nil
	}
	err := a.backend.Close()
	a.backend = nil
	return err
}

// Command is the queuectl root command. Its ExecuteContext closes the
// backend after the command runs, whether or not the command failed.
type Command struct {
	*cobra.Command
	app *app
}

func (c *Command) ExecuteContext(ctx context.Context) error {
	err := c.Command.ExecuteContext(ctx)
	if cerr := c.app.close(); cerr != nil && err == nil {
		err = fmt.Errorf("close backend: %w", cerr)
	}
	return err
}

func (c *Command) Execute() error {
	return c.ExecuteContext(context.Background())
}

func NewRootCmd(connect Connector) *Command {
	a := &app{connect: connect}

	cmd := &cobra.Command{
		Use:           "queuectl",
		Short:         "Inspect and operate the job queue",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd)
		},
	}

	cmd.CompletionOptions.DisableDefaultCmd = true

	cmd.AddCommand(
		newEnqueueCmd(a),
		newGetCmd(a),
		newListCmd(a),
		newStatsCmd(a),
		newRequeueStaleCmd(a),
		newMigrateCmd(a),
	)

	return &Command{Command: cmd, app: a}
}

var errNoMigrate = errors.New("backend does not support migrations")
