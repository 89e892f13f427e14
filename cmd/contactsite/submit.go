package main

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	contactform "github.com/goliatone/go-contactform"
	"github.com/goliatone/go-contactform/internal/logging"
	"github.com/goliatone/go-contactform/pkg/draft"
	"github.com/goliatone/go-contactform/pkg/model"
	"github.com/goliatone/go-contactform/pkg/prompt"
	"github.com/goliatone/go-contactform/pkg/storage"
	"github.com/goliatone/go-contactform/pkg/submit"
)

// cliScope keeps terminal drafts apart from web sessions.
const cliScope = "cli"

func newSubmitCmd(opts *rootOptions) *cobra.Command {
	var attach []string
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Fill in and send the contact form from the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
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

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			form := model.ContactForm()
			drafts := draft.NewStore(storage.Scope(store, cliScope), form, draft.WithLogger(logger))
			controller := contactform.NewController(submitter,
				submit.WithValidator(validator),
				submit.WithDrafts(drafts),
				submit.WithTimeout(cfg.Submission.Timeout),
				submit.WithLogger(logger),
			)
			for _, path := range attach {
				file, err := loadAttachment(path)
				if err != nil {
					return err
				}
				if err := controller.Attach(file); err != nil {
					return err
				}
			}
			defaults := controller.Restore(ctx)

			driver := prompt.NewSurveyDriver(cmd.OutOrStdout())
			values, err := prompt.NewFiller(driver, validator).Fill(ctx, form, defaults)
			if err != nil {
				if _, saveErr := drafts.Save(context.Background(), values); saveErr != nil {
					logger.Warn("could not keep partial answers", zap.Error(saveErr))
				}
				if errors.Is(err, prompt.ErrAborted) {
					return errors.New("aborted; your answers were kept for next time")
				}
				return err
			}

			_ = driver.Info(ctx, submit.LabelSending)
			report, err := controller.Submit(ctx, values)
			if err != nil {
				return err
			}
			switch report.State {
			case submit.StateInvalid:
				for _, result := range report.Validation.Invalid() {
					_ = driver.Info(ctx, fmt.Sprintf("%s: %s", result.Field, result.Message))
				}
				return errors.New("the form has errors")
			case submit.StateFailed:
				if _, saveErr := drafts.Save(context.Background(), values); saveErr != nil {
					logger.Warn("could not keep answers", zap.Error(saveErr))
				}
				return errors.New(report.Notice)
			}
			return driver.Info(ctx, report.Notice)
		},
	}
	cmd.Flags().StringArrayVar(&attach, "attach", nil, "file to send with the message (repeatable)")
	return cmd
}

// loadAttachment reads path for sending. Oversized files are returned without
// content so the controller reports the size limit.
func loadAttachment(path string) (model.Attachment, error) {
	info, err := os.Stat(path)
	if err != nil {
		return model.Attachment{}, fmt.Errorf("attachment: %w", err)
	}
	file := model.Attachment{
		Name:        filepath.Base(path),
		Size:        info.Size(),
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
	}
	if info.Size() > submit.MaxAttachmentSize {
		return file, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Attachment{}, fmt.Errorf("attachment: %w", err)
	}
	file.Data = data
	return file, nil
}
