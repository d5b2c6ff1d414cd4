// Package worker runs the background jobs around branch snapshots: publishing
// summaries to the broker and writing received snapshots out as workbooks.
package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"salesdash/internal/amqp"
	"salesdash/internal/dashboard"
	"salesdash/internal/export"
	"salesdash/internal/log"
)

// Publisher sends one snapshot. *amqp.Client implements it.
type Publisher interface {
	PublishSnapshot(ctx context.Context, msg *amqp.SnapshotMessage) error
}

// PublishWorker publishes every branch summary.
type PublishWorker struct {
	service   *dashboard.Service
	publisher Publisher
	logger    *log.Logger
}

func NewPublishWorker(service *dashboard.Service, publisher Publisher, logger *log.Logger) *PublishWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &PublishWorker{
		service:   service,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentPublisher),
	}
}

// PublishAll sends one snapshot per loaded branch. A failed branch does not
// stop the others; all failures are returned together.
func (w *PublishWorker) PublishAll(ctx context.Context) (int, error) {
	summaries, err := w.service.Summaries(ctx)
	if err != nil {
		return 0, fmt.Errorf("build summaries: %w", err)
	}

	published := 0
	var errs []error
	for _, s := range summaries {
		if err := w.publisher.PublishSnapshot(ctx, amqp.NewSnapshotMessage(s)); err != nil {
			if ctx.Err() != nil {
				return published, ctx.Err()
			}
			w.logger.ErrorContext(ctx, "Failed to publish snapshot", log.FieldOperation, log.OpPublish, log.FieldBranch, s.Branch.String(), log.FieldError, err)
			errs = append(errs, err)
			continue
		}
		published++
	}

	w.logger.InfoContext(ctx, "Snapshot round completed",
		log.FieldOperation, log.OpPublish,
		"published", published,
		"failed", len(errs))
	return published, errors.Join(errs...)
}

// Run publishes once when interval is zero. Otherwise it publishes right away
// and then every interval until ctx is cancelled; failed rounds are logged and
// retried on the next tick.
func (w *PublishWorker) Run(ctx context.Context, interval time.Duration) error {
	if _, err := w.PublishAll(ctx); err != nil && interval <= 0 {
		return err
	}
	if interval <= 0 {
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Publish worker stopped")
			return nil
		case <-ticker.C:
			if _, err := w.PublishAll(ctx); err != nil && ctx.Err() == nil {
				w.logger.WarnContext(ctx, "Snapshot round had failures", log.FieldError, err)
			}
		}
	}
}

// WorkbookSink writes each received snapshot to <dir>/<BRANCH_ID>.xlsx.
type WorkbookSink struct {
	dir    string
	logger *log.Logger
}

func NewWorkbookSink(dir string, logger *log.Logger) (*WorkbookSink, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &WorkbookSink{dir: dir, logger: logger.WithComponent(log.ComponentExport)}, nil
}

// HandleSnapshot is an amqp.SnapshotHandler. The file is replaced atomically.
func (s *WorkbookSink) HandleSnapshot(ctx context.Context, msg *amqp.SnapshotMessage) error {
	path := filepath.Join(s.dir, msg.Branch.String()+".xlsx")
	tmp, err := os.CreateTemp(s.dir, msg.Branch.String()+"-*.xlsx.tmp")
	if err != nil {
		return fmt.Errorf("create temp workbook: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := export.WriteWorkbook(tmp, msg.Summary); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp workbook: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace workbook: %w", err)
	}

	s.logger.InfoContext(ctx, "Snapshot written",
		log.FieldOperation, log.OpConsume,
		log.FieldBranch, msg.Branch.String(),
		"path", path,
		"generated_at", msg.GeneratedAt.Format(time.RFC3339))
	return nil
}
