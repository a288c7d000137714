package sqlc

import (
	"context"
	"net"

	"github.com/sqlc-dev/pqtype"
)

// AnalyticsManager keeps the counters of a single game server, keyed by
// the server's IP.
type AnalyticsManager struct {
	queries  Querier
	serverIp pqtype.Inet
}

func NewAnalyticsManager(queries Querier, serverIpNet net.IPNet) *AnalyticsManager {
	return &AnalyticsManager{
		queries:  queries,
		serverIp: pqtype.Inet{IPNet: serverIpNet, Valid: true},
	}
}

func (a *AnalyticsManager) ServerIp() pqtype.Inet {
	return a.serverIp
}

func (a *AnalyticsManager) IncrementGamesCreatedCount(ctx context.Context) error {
	return a.queries.IncrementGamesCreatedCount(ctx, a.serverIp)
}

func (a *AnalyticsManager) IncrementPlayerWinsCount(ctx context.Context) error {
	return a.queries.IncrementPlayerWinsCount(ctx, a.serverIp)
}

func (a *AnalyticsManager) IncrementComputerWinsCount(ctx context.Context) error {
	return a.queries.IncrementComputerWinsCount(ctx, a.serverIp)
}

func (a *AnalyticsManager) IncrementRematchCalledCount(ctx context.Context) error {
	return a.queries.IncrementRematchCalledCount(ctx, a.serverIp)
}

func (a *AnalyticsManager) GetGamesCreatedCount(ctx context.Context) (int64, error) {
	return a.queries.GetGamesCreatedCount(ctx, a.serverIp)
}

func (a *AnalyticsManager) GetPlayerWinsCount(ctx context.Context) (int64, error) {
	return a.queries.GetPlayerWinsCount(ctx, a.serverIp)
}

func (a *AnalyticsManager) GetComputerWinsCount(ctx context.Context) (int64, error) {
	return a.queries.GetComputerWinsCount(ctx, a.serverIp)
}

func (a *AnalyticsManager) GetRematchCalledCount(ctx context.Context) (int64, error) {
	return a.queries.GetRematchCalledCount(ctx, a.serverIp)
}

func (a *AnalyticsManager) GetServerAnalytics(ctx context.Context) (GameServerAnalytic, error) {
	return a.queries.GetServerAnalytics(ctx, a.serverIp)
}
