package sheets

import (
	"context"

	"burnrate/internal/runway"
)

// Ports for outbound spreadsheet adapters.
type (
	// SeriesPublisher replaces a spreadsheet tab with the Financial Series
	// and its headline figures.
	SeriesPublisher interface {
		PublishSeries(ctx context.Context, s runway.Summary) (ref string, err error)
	}
)
