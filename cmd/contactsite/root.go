package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	contactform "github.com/goliatone/go-contactform"
	"github.com/goliatone/go-contactform/internal/config"
	"github.com/goliatone/go-contactform/pkg/storage"
	"github.com/goliatone/go-contactform/pkg/submit"
	"github.com/goliatone/go-contactform/pkg/validation"
)

type rootOptions struct {
	configFile string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "contactsite",
		Short: "Marketing site with a server-side contact form",
		Long: `contactsite serves the studio website. The contact form is validated,
autosaved and delivered on the server, so the browser script only mirrors
state the server already holds.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "contactform.yaml", "config file path")

	cmd.AddCommand(
		newServeCmd(opts),
		newSubmitCmd(opts),
		newCheckConfigCmd(opts),
	)
	return cmd
}

func (o *rootOptions) load() (*config.Config, error) {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// openStorage returns the configured store and a func releasing it.
func openStorage(cfg config.StorageConfig) (storage.Storage, func() error, error) {
	switch cfg.Driver {
	case config.StorageSQLite:
		db, err := storage.OpenSQLite(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	default:
		return storage.NewMemory(), func() error { return nil }, nil
	}
}

func newSubmitter(cfg config.SubmissionConfig) (submit.Submitter, error) {
	sc := contactform.SubmitterConfig{Delay: cfg.SimulatedDelay}
	if cfg.Mode == config.SubmissionEndpoint {
		sc.Endpoint = cfg.Endpoint
		sc.Client = &http.Client{Timeout: cfg.Timeout}
	}
	return contactform.NewSubmitter(sc)
}

func newValidator(cfg config.ValidationConfig) (*validation.Validator, error) {
	policy, err := validation.ParseUnknownFieldPolicy(cfg.UnknownFields)
	if err != nil {
		return nil, err
	}
	return validation.New(validation.WithUnknownFieldPolicy(policy)), nil
}
