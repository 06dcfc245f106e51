// internal/service/dashboard/dashboard.go
package dashboard

import (
	"context"

	"license-service/internal/domain/customer"
	"license-service/internal/domain/subscription"

	"go.uber.org/zap"
)

const recentEventLimit = 5

// Data is the admin dashboard snapshot.
type Data struct {
	TotalCustomers      int64                `json:"total_customers"`
	ActiveSubscriptions int64                `json:"active_subscriptions"`
	PendingRequests     int64                `json:"pending_requests"`
	TotalRevenue        float64              `json:"total_revenue"`
	RecentActivities    []subscription.Event `json:"recent_activities"`
}

// DashboardService computes aggregate counts on demand. Reads are
// snapshot-at-query-time; nothing is cached.
type DashboardService struct {
	customerRepo     customer.Repository
	subscriptionRepo subscription.Repository
	logger           *zap.Logger
}

func NewDashboardService(customerRepo customer.Repository, subscriptionRepo subscription.Repository, logger *zap.Logger) *DashboardService {
	return &DashboardService{
		customerRepo:     customerRepo,
		subscriptionRepo: subscriptionRepo,
		logger:           logger,
	}
}

func (s *DashboardService) Stats(ctx context.Context) (*Data, error) {
	totalCustomers, err := s.customerRepo.CountActive(ctx)
	if err != nil {
		return nil, err
	}

	active, err := s.subscriptionRepo.CountByStatus(ctx, subscription.StatusActive, subscription.StatusApproved)
	if err != nil {
		return nil, err
	}

	pending, err := s.subscriptionRepo.CountByStatus(ctx, subscription.StatusRequested)
	if err != nil {
		return nil, err
	}

	revenue, err := s.subscriptionRepo.SumPackPrice(ctx, subscription.StatusActive, subscription.StatusApproved)
	if err != nil {
		return nil, err
	}

	events, err := s.subscriptionRepo.RecentEvents(ctx, recentEventLimit)
	if err != nil {
		return nil, err
	}

	return &Data{
		TotalCustomers:      totalCustomers,
		ActiveSubscriptions: active,
		PendingRequests:     pending,
		TotalRevenue:        revenue,
		RecentActivities:    events,
	}, nil
}
