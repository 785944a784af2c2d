package robotorder

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"robotorder/lib/archive"
	"robotorder/lib/orders"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Report describes a finished run.
type Report struct {
	RunId   string
	Results []Result
	Archive string
	// number of files written into the archive
	Archived int
}

// Run executes the four stages once: log in, load the orders, process every
// order, archive the receipts. Any failure ends the run, nothing is cleaned
// up and no archive is written.
func Run(ctx context.Context, s Session, client *resty.Client) (Report, error) {
	report := Report{RunId: uuid.NewString()}

	ctx, span := tracer.Start(ctx, "Run", trace.WithAttributes(
		attribute.String("run_id", report.RunId),
	))
	defer span.End()

	fail := func(stage string, err error) (Report, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, fmt.Sprintf("%s failed", stage))
		return report, fmt.Errorf("%s: %w", stage, err)
	}

	slog.InfoContext(ctx, "starting run", "run_id", report.RunId)

	err := Bootstrap(ctx, s)
	if err != nil {
		return fail("bootstrap", err)
	}

	slog.InfoContext(ctx, "downloading and reading order file", "url", s.Config.OrdersUrl)
	list, err := orders.Fetch(ctx, client, s.Config.OrdersUrl, s.Config.OrdersFile)
	if err != nil {
		return fail("load orders", err)
	}
	slog.InfoContext(ctx, "read order file", "orders", len(list))

	report.Results, err = ProcessOrders(ctx, s, list)
	if err != nil {
		return fail("process orders", err)
	}

	report.Archive = filepath.Join(s.Config.ArchiveDir, archive.Name(s.now()))
	slog.InfoContext(ctx, "zipping receipts", "folder", s.Config.ReceiptDir, "archive", report.Archive)
	report.Archived, err = archive.ZipFolder(s.Config.ReceiptDir, report.Archive)
	if err != nil {
		return fail("archive receipts", err)
	}
	slog.InfoContext(ctx, "successfully zipped receipts", "archive", report.Archive, "files", report.Archived)

	return report, nil
}
