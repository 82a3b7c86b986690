package service

import (
	"context"
	"strings"

	"github.com/miniinbox/inbox/internal/api/dto"
	"github.com/miniinbox/inbox/internal/domain"
)

// Group sizes shown on the dashboard.
const (
	topPriorities = 5
	topTypes      = 5
	topQueues     = 5
	topLanguages  = 8
)

// MetricsClient fetches the aggregate snapshot.
type MetricsClient interface {
	GetMetrics(ctx context.Context) (domain.MetricsSnapshot, error)
}

// DashboardService builds the metrics view.
type DashboardService struct {
	client MetricsClient
}

// NewDashboardService constructs the service.
func NewDashboardService(client MetricsClient) *DashboardService {
	return &DashboardService{client: client}
}

// Dashboard fetches the snapshot and projects it for display.
func (s *DashboardService) Dashboard(ctx context.Context) (dto.Dashboard, error) {
	snapshot, err := s.client.GetMetrics(ctx)
	if err != nil {
		return dto.Dashboard{}, err
	}
	return ProjectMetrics(snapshot), nil
}

// ProjectMetrics maps a snapshot into the dashboard groupings. Missing keys
// count as zero and a zero total yields 0% bars.
func ProjectMetrics(m domain.MetricsSnapshot) dto.Dashboard {
	d := dto.Dashboard{
		TotalTickets: m.TotalTickets,
		HighPriority: domain.Count(m.PriorityCounts, string(domain.TicketPriorityHigh)),
	}

	for _, c := range domain.TopCounts(m.PriorityCounts, topPriorities) {
		d.Priorities = append(d.Priorities, dto.PriorityBar{
			Name:     c.Name,
			Count:    c.Count,
			Percent:  domain.Percent(c.Count, m.TotalTickets),
			BarClass: dto.PriorityBarClass(c.Name),
		})
	}
	for i, c := range domain.TopCounts(m.TypeCounts, topTypes) {
		d.Types = append(d.Types, dto.RankedCount{Rank: i + 1, Name: c.Name, Count: c.Count})
	}
	for _, c := range domain.TopCounts(m.QueueCounts, topQueues) {
		d.Queues = append(d.Queues, dto.NamedCount{Name: c.Name, Count: c.Count})
	}
	for _, c := range domain.TopCounts(m.LanguageCounts, topLanguages) {
		d.Languages = append(d.Languages, dto.NamedCount{Name: strings.ToUpper(c.Name), Count: c.Count})
	}
	return d
}
