package service

import (
	"context"
	"log/slog"
)

// MaintenanceService: 길드 점검 모드. 켤 때 진행 중 세션을 모두 정산하고 끝낸다.
type MaintenanceService struct {
	guilds *GuildConfigService
	ledger *Ledger
	logger *slog.Logger
}

// NewMaintenanceService: 새로운 MaintenanceService 인스턴스를 생성한다.
func NewMaintenanceService(guilds *GuildConfigService, ledger *Ledger, logger *slog.Logger) *MaintenanceService {
	if logger == nil {
		logger = slog.Default()
	}
	return &MaintenanceService{guilds: guilds, ledger: ledger, logger: logger}
}

// Activate: 플래그를 먼저 세워 새 참가를 막고, 진행 중 세션을 모두 끝낸다. 끝낸 세션 수를 반환한다.
// 다시 호출해도 안전하며 두 번째 호출은 0 을 반환한다.
func (m *MaintenanceService) Activate(ctx context.Context, guildID string) (int, error) {
	if err := m.guilds.SetMaintenance(ctx, guildID, true); err != nil {
		return 0, err
	}
	report, err := m.ledger.ForceEndAll(ctx, guildID)
	if err != nil {
		return 0, err
	}
	m.logger.Info("maintenance_activated",
		slog.String("guild_id", guildID),
		slog.Int("ended", len(report.Ended)),
		slog.Int("failed", len(report.Failed)),
	)
	return len(report.Ended), nil
}

// Deactivate: 플래그만 내린다. 끝난 세션은 되살리지 않는다.
func (m *MaintenanceService) Deactivate(ctx context.Context, guildID string) error {
	if err := m.guilds.SetMaintenance(ctx, guildID, false); err != nil {
		return err
	}
	m.logger.Info("maintenance_deactivated", slog.String("guild_id", guildID))
	return nil
}

// IsActive: 점검 중 여부
func (m *MaintenanceService) IsActive(ctx context.Context, guildID string) (bool, error) {
	cfg, err := m.guilds.Get(ctx, guildID)
	if err != nil {
		return false, err
	}
	return cfg.Maintenance, nil
}
