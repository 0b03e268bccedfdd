package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"lendhub/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// LedgerSource is the slice of the store the export worker reads from.
type LedgerSource interface {
	ListAllBookings(ctx context.Context) ([]models.Booking, error)
	GetItemByID(ctx context.Context, id int64) (*models.Item, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

// ExportWorker writes xlsx snapshots of the booking ledger. Requests are
// coalesced: while an export is already pending, further requests fold
// into it.
type ExportWorker struct {
	source      LedgerSource
	exportPath  string
	retryPolicy RetryPolicy
	queue       chan struct{}
	debounce    time.Duration
	logger      *zerolog.Logger
}

func NewExportWorker(source LedgerSource, exportPath string, retry RetryPolicy, logger *zerolog.Logger) *ExportWorker {
	if retry.MaxRetries == 0 {
		retry.MaxRetries = 5
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = 2 * time.Second
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = 1 * time.Minute
	}
	if retry.BackoffFactor == 0 {
		retry.BackoffFactor = 2
	}

	return &ExportWorker{
		source:      source,
		exportPath:  exportPath,
		retryPolicy: retry,
		queue:       make(chan struct{}, 1),
		debounce:    2 * time.Second,
		logger:      logger,
	}
}

// EnqueueExport schedules a snapshot. Never blocks; a full queue means a
// snapshot is already pending and will cover this change too.
func (w *ExportWorker) EnqueueExport(ctx context.Context) error {
	select {
	case w.queue <- struct{}{}:
	default:
	}
	return nil
}

// Run consumes export requests until the context is canceled.
func (w *ExportWorker) Run(ctx context.Context) {
	w.logger.Info().Str("path", w.exportPath).Msg("export worker started")

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.queue:
			// Let a burst of ledger changes settle into one snapshot.
			select {
			case <-ctx.Done():
				return
			case <-time.After(w.debounce):
			}

			w.exportWithRetry(ctx)
		}
	}
}

func (w *ExportWorker) exportWithRetry(ctx context.Context) {
	for attempt := 1; attempt <= w.retryPolicy.MaxRetries; attempt++ {
		path, err := w.ExportSnapshot(ctx)
		if err == nil {
			w.logger.Info().Str("file", path).Msg("bookings snapshot exported")
			return
		}

		w.logger.Error().Err(err).Int("attempt", attempt).Msg("export failed")

		select {
		case <-ctx.Done():
			return
		case <-time.After(w.retryPolicy.NextDelay(attempt)):
		}
	}

	w.logger.Error().Int("attempts", w.retryPolicy.MaxRetries).Msg("export abandoned after retries")
}

// ExportSnapshot writes the full booking ledger to a timestamped xlsx file
// and returns its path.
func (w *ExportWorker) ExportSnapshot(ctx context.Context) (string, error) {
	if err := os.MkdirAll(w.exportPath, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %w", err)
	}

	bookings, err := w.source.ListAllBookings(ctx)
	if err != nil {
		return "", fmt.Errorf("error getting bookings: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheetName = "Bookings"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"ID", "Item", "Owner", "Booker", "Start", "End", "Status", "Created"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, header)
	}

	for row, booking := range bookings {
		values, err := w.bookingRow(ctx, booking)
		if err != nil {
			return "", err
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			_ = f.SetCellValue(sheetName, cell, value)
		}
	}

	_ = f.SetColWidth(sheetName, "B", "D", 25)
	_ = f.SetColWidth(sheetName, "E", "H", 20)

	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(w.exportPath, fmt.Sprintf("bookings_%s.xlsx", timestamp))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("error saving export file: %w", err)
	}

	return path, nil
}

func (w *ExportWorker) bookingRow(ctx context.Context, booking models.Booking) ([]any, error) {
	itemName := ""
	ownerName := ""
	item, err := w.source.GetItemByID(ctx, booking.ItemID)
	if err == nil {
		itemName = item.Name
		if owner, err := w.source.GetUserByID(ctx, item.OwnerID); err == nil {
			ownerName = owner.Name
		}
	}

	bookerName := ""
	if booker, err := w.source.GetUserByID(ctx, booking.BookerID); err == nil {
		bookerName = booker.Name
	}

	return []any{
		booking.ID,
		itemName,
		ownerName,
		bookerName,
		booking.Start.Format(time.RFC3339),
		booking.End.Format(time.RFC3339),
		booking.Status,
		booking.CreatedAt.Format(time.RFC3339),
	}, nil
}
