package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	contactform "github.com/goliatone/go-contactform"
	"github.com/goliatone/go-contactform/internal/logging"
	"github.com/goliatone/go-contactform/internal/server"
	"github.com/goliatone/go-contactform/internal/session"
	"github.com/goliatone/go-contactform/pkg/model"
	"github.com/goliatone/go-contactform/pkg/render/pages"
	"github.com/goliatone/go-contactform/pkg/schema"
	"github.com/goliatone/go-contactform/pkg/site"
	"github.com/goliatone/go-contactform/pkg/storage"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the website",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			logger, err := logging.New(cfg.Log)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			store, closeStore, err := openStorage(cfg.Storage)
			if err != nil {
				return fmt.Errorf("opening storage: %w", err)
			}
			defer func() {
				if err := closeStore(); err != nil {
					logger.Warn("closing storage", zap.Error(err))
				}
			}()

			submitter, err := newSubmitter(cfg.Submission)
			if err != nil {
				return err
			}
			validator, err := newValidator(cfg.Validation)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			contract, err := schema.Load(ctx)
			if err != nil {
				return err
			}
			content, err := site.DefaultContent()
			if err != nil {
				return err
			}
			selector, err := site.NewSelector(site.SiteThemeName, "", site.Manifest())
			if err != nil {
				return err
			}
			defaultTheme, ok := site.ParseTheme(cfg.Theme.Default)
			if !ok {
				return fmt.Errorf("unknown theme %q", cfg.Theme.Default)
			}

			pageOpts := []pages.Option{pages.WithFS(contactform.TemplatesFS())}
			if cfg.Server.TemplatesDir != "" {
				pageOpts = append(pageOpts, pages.WithBaseDir(cfg.Server.TemplatesDir))
			}
			engine, err := pages.New(pageOpts...)
			if err != nil {
				return err
			}

			form := model.ContactForm()
			registry := session.NewRegistry(session.Options{
				Form:      form,
				Submitter: submitter,
				Validator: validator,
				Store:     storage.Scope(store, "sessions"),
				FAQ:       content.FAQIDs(),
				Debounce:  cfg.Autosave.Debounce,
				Timeout:   cfg.Submission.Timeout,
				TTL:       cfg.Session.TTL,
				Secure:    cfg.Session.SecureCookie,
				Logger:    logger,
			})

			srv, err := server.New(server.Options{
				Form:            form,
				Sessions:        registry,
				Pages:           engine,
				Content:         content,
				Themes:          selector,
				DefaultTheme:    defaultTheme,
				Contract:        contract,
				Validator:       validator,
				Newsletter:      storage.Scope(store, "site"),
				Static:          contactform.StaticFS(),
				AllowAllOrigins: cfg.Server.AllowAllOrigins,
				Logger:          logger,
			})
			if err != nil {
				return err
			}

			logger.Info("starting contact site",
				zap.String("storage", string(cfg.Storage.Driver)),
				zap.String("submission", string(cfg.Submission.Mode)),
			)

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return srv.Run(gctx, cfg.Server.Addr, cfg.Server.ShutdownGrace)
			})
			g.Go(func() error {
				return registry.Run(gctx)
			})
			err = g.Wait()

			closeCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownGrace)
			defer cancel()
			registry.Close(closeCtx)
			return err
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}
