package memory

import (
	"context"
	"fmt"
	"sync"

	"burnrate/internal/runway"
	ports "burnrate/internal/sheets"
)

// Publisher keeps every published summary in memory. It stands in for
// Google Sheets when no spreadsheet is configured.
type Publisher struct {
	mu        sync.Mutex
	published []runway.Summary
}

var _ ports.SeriesPublisher = (*Publisher)(nil)

func New() *Publisher {
	return &Publisher{}
}

func (p *Publisher) PublishSeries(_ context.Context, s runway.Summary) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, s)
	return fmt.Sprintf("mem:%d", len(p.published)), nil
}

// Last returns the most recent summary, if any.
func (p *Publisher) Last() (runway.Summary, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.published) == 0 {
		return runway.Summary{}, false
	}
	return p.published[len(p.published)-1], true
}

func (p *Publisher) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.published)
}
