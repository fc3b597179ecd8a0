package services

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"inventory-system/internal/dto"
	"inventory-system/internal/entities"
	"inventory-system/internal/repositories"
	"inventory-system/pkg/config"
	"inventory-system/pkg/constants"
	apperrors "inventory-system/pkg/errors"
	"inventory-system/pkg/metrics"
	"inventory-system/pkg/utils"
)

// ReplacementCriteria - параметры подбора. Excluded - ID оборудования, уже включенного в план.
type ReplacementCriteria struct {
	MinAgeYears int
	QuotaPct    int
	Now         time.Time
	Excluded    map[uint64]struct{}
}

type ReplacementSelection struct {
	EligibleFleet int
	Quota         int
	AgedUnits     int
	Candidates    []entities.Equipment
}

// ReplacementQuota = ceil(fleet * pct / 100) в целых числах.
func ReplacementQuota(fleet, pct int) int {
	if fleet <= 0 || pct <= 0 {
		return 0
	}
	return (fleet*pct + 99) / 100
}

// SelectReplacementCandidates ничего не меняет: только фильтрует, сортирует и режет по квоте.
// Парк считается по всем единицам подходящих типов, квота от него; кандидаты - только
// достаточно старые, не списанные, не ожидающие списания и не попавшие в план.
// Порядок: дата покупки, затем инвентарный номер, затем ID.
func SelectReplacementCandidates(fleet []entities.Equipment, eligibleTypes map[uint64]bool, criteria ReplacementCriteria) ReplacementSelection {
	var selection ReplacementSelection

	aged := make([]entities.Equipment, 0)
	for _, e := range fleet {
		if !eligibleTypes[e.EquipmentTypeID] {
			continue
		}
		selection.EligibleFleet++

		if e.State == constants.StateRetired || e.State == constants.StatePreDisposal {
			continue
		}
		if _, planned := criteria.Excluded[e.ID]; planned {
			continue
		}
		if utils.CompletedYears(e.PurchaseDate, criteria.Now) < criteria.MinAgeYears {
			continue
		}
		aged = append(aged, e)
	}

	sort.SliceStable(aged, func(i, j int) bool {
		a, b := aged[i], aged[j]
		if !a.PurchaseDate.Equal(b.PurchaseDate) {
			return a.PurchaseDate.Before(b.PurchaseDate)
		}
		if a.AssetCode != b.AssetCode {
			return a.AssetCode < b.AssetCode
		}
		return a.ID < b.ID
	})

	selection.AgedUnits = len(aged)
	selection.Quota = ReplacementQuota(selection.EligibleFleet, criteria.QuotaPct)
	if len(aged) > selection.Quota {
		aged = aged[:selection.Quota]
	}
	selection.Candidates = aged
	return selection
}

type ReplacementServiceInterface interface {
	GetCandidates(ctx context.Context) (*dto.ReplacementReportDTO, error)
	MarkPlanned(ctx context.Context, equipmentIDs []uint64) error
	UnmarkPlanned(ctx context.Context, equipmentIDs []uint64) error
}

type ReplacementService struct {
	equipmentRepository     repositories.EquipmentRepositoryInterface
	equipmentTypeRepository repositories.EquipmentTypeRepositoryInterface
	planExclusionRepository repositories.PlanExclusionRepositoryInterface
	cfg                     config.LifecycleConfig
	metrics                 *metrics.Metrics
	logger                  *zap.Logger
	now                     func() time.Time
}

func NewReplacementService(
	equipmentRepository repositories.EquipmentRepositoryInterface,
	equipmentTypeRepository repositories.EquipmentTypeRepositoryInterface,
	planExclusionRepository repositories.PlanExclusionRepositoryInterface,
	cfg config.LifecycleConfig,
	metrics *metrics.Metrics,
	logger *zap.Logger,
) *ReplacementService {
	if cfg.RenewalMinAgeYears <= 0 {
		cfg.RenewalMinAgeYears = constants.DefaultRenewalMinAgeYears
	}
	if cfg.RenewalQuotaPct <= 0 {
		cfg.RenewalQuotaPct = constants.DefaultRenewalQuotaPct
	}
	return &ReplacementService{
		equipmentRepository:     equipmentRepository,
		equipmentTypeRepository: equipmentTypeRepository,
		planExclusionRepository: planExclusionRepository,
		cfg:                     cfg,
		metrics:                 metrics,
		logger:                  logger,
		now:                     time.Now,
	}
}

func (s *ReplacementService) GetCandidates(ctx context.Context) (*dto.ReplacementReportDTO, error) {
	equipmentTypes, err := s.equipmentTypeRepository.GetEquipmentTypes(ctx)
	if err != nil {
		return nil, err
	}
	eligible := make(map[uint64]bool, len(equipmentTypes))
	typeNames := make(map[uint64]string, len(equipmentTypes))
	for _, t := range equipmentTypes {
		eligible[t.ID] = t.RenewalEligible
		typeNames[t.ID] = t.Name
	}

	fleet, err := s.equipmentRepository.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	excluded, err := s.planExclusionRepository.PlannedEquipmentIDs(ctx)
	if err != nil {
		s.logger.Error("Не удалось прочитать оборудование, уже включенное в план", zap.Error(err))
		return nil, err
	}

	now := s.now()
	selection := SelectReplacementCandidates(fleet, eligible, ReplacementCriteria{
		MinAgeYears: s.cfg.RenewalMinAgeYears,
		QuotaPct:    s.cfg.RenewalQuotaPct,
		Now:         now,
		Excluded:    excluded,
	})
	s.metrics.ReplacementSelected(len(selection.Candidates))

	report := &dto.ReplacementReportDTO{
		EligibleFleet: selection.EligibleFleet,
		Quota:         selection.Quota,
		AgedUnits:     selection.AgedUnits,
		Candidates:    make([]dto.ReplacementCandidateDTO, 0, len(selection.Candidates)),
	}
	for _, e := range selection.Candidates {
		holder := e.ResponsibleUserName
		if holder == "" {
			holder = e.PreMaintenanceHolderName
		}
		report.Candidates = append(report.Candidates, dto.ReplacementCandidateDTO{
			EquipmentID:  e.ID,
			AssetCode:    e.AssetCode,
			Brand:        e.Brand,
			Model:        e.Model,
			TypeName:     typeNames[e.EquipmentTypeID],
			PurchaseDate: e.PurchaseDate.Format(utils.DateLayout),
			AgeYears:     utils.CompletedYears(e.PurchaseDate, now),
			State:        e.State.String(),
			HolderName:   holder,
		})
	}

	s.logger.Debug("Подбор кандидатов на замену",
		zap.Int("eligible_fleet", selection.EligibleFleet),
		zap.Int("quota", selection.Quota),
		zap.Int("candidates", len(report.Candidates)),
	)
	return report, nil
}

// MarkPlanned исключает оборудование из следующих подборов.
func (s *ReplacementService) MarkPlanned(ctx context.Context, equipmentIDs []uint64) error {
	if len(equipmentIDs) == 0 {
		return apperrors.NewValidationError("equipment_ids", "список оборудования пуст")
	}
	for _, id := range equipmentIDs {
		if _, err := s.equipmentRepository.FindEquipment(ctx, id); err != nil {
			return err
		}
	}
	return s.planExclusionRepository.Add(ctx, equipmentIDs...)
}

func (s *ReplacementService) UnmarkPlanned(ctx context.Context, equipmentIDs []uint64) error {
	if len(equipmentIDs) == 0 {
		return apperrors.NewValidationError("equipment_ids", "список оборудования пуст")
	}
	return s.planExclusionRepository.Remove(ctx, equipmentIDs...)
}
