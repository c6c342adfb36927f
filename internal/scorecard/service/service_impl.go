package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/pitlane-hq/pitlane/internal/changefeed"
	"github.com/pitlane-hq/pitlane/internal/clock"
	"github.com/pitlane-hq/pitlane/internal/scorecard/domain"
	"go.uber.org/zap"
)

type Service struct {
	log   *zap.Logger
	repo  domain.Repository
	hub   *changefeed.Hub
	genID *snowflake.Node
	clock clock.Clock
}

func New(log *zap.Logger, repo domain.Repository, hub *changefeed.Hub, genID *snowflake.Node, clk clock.Clock) domain.Service {
	return &Service{
		log:   log.Named("scorecard.service"),
		repo:  repo,
		hub:   hub,
		genID: genID,
		clock: clk,
	}
}

func (s *Service) CreateDefinition(ctx context.Context, req domain.CreateDefinitionRequest) (*domain.KPIDefinition, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	metricType := req.MetricType
	if metricType == "" {
		metricType = domain.MetricCount
	}
	if !domain.ValidMetricType(metricType) {
		return nil, domain.ErrInvalidMetricType
	}
	direction := req.TargetDirection
	if direction == "" {
		direction = domain.DirectionAbove
	}
	if !domain.ValidDirection(direction) {
		return nil, domain.ErrInvalidDirection
	}
	granularity := req.Granularity
	if granularity == "" {
		granularity = domain.GranularityWeekly
	}
	if !domain.ValidGranularity(granularity) {
		return nil, domain.ErrInvalidGranularity
	}

	now := s.clock.Now()
	definition := &domain.KPIDefinition{
		ID:              s.genID.Generate(),
		StoreID:         req.StoreID,
		DepartmentID:    req.DepartmentID,
		Name:            name,
		MetricType:      metricType,
		TargetValue:     req.TargetValue,
		TargetDirection: direction,
		Granularity:     granularity,
		DisplayOrder:    req.DisplayOrder,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.CreateDefinition(ctx, definition); err != nil {
		return nil, err
	}
	s.publishDefinition(definition, "created")
	return definition, nil
}

func (s *Service) UpdateDefinition(ctx context.Context, id string, req domain.UpdateDefinitionRequest) (*domain.KPIDefinition, error) {
	definitionID, err := snowflake.ParseString(id)
	if err != nil {
		return nil, domain.ErrInvalidDefinition
	}
	definition, err := s.repo.FindDefinitionByID(ctx, definitionID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		definition.Name = name
	}
	if req.MetricType != nil {
		if !domain.ValidMetricType(*req.MetricType) {
			return nil, domain.ErrInvalidMetricType
		}
		definition.MetricType = *req.MetricType
	}
	if req.TargetValue != nil {
		definition.TargetValue = *req.TargetValue
	}
	if req.TargetDirection != nil {
		if !domain.ValidDirection(*req.TargetDirection) {
			return nil, domain.ErrInvalidDirection
		}
		definition.TargetDirection = *req.TargetDirection
	}
	if req.Granularity != nil {
		if !domain.ValidGranularity(*req.Granularity) {
			return nil, domain.ErrInvalidGranularity
		}
		definition.Granularity = *req.Granularity
	}
	if req.DisplayOrder != nil {
		definition.DisplayOrder = *req.DisplayOrder
	}
	definition.UpdatedAt = s.clock.Now()

	if err := s.repo.UpdateDefinition(ctx, definition); err != nil {
		return nil, err
	}
	s.publishDefinition(definition, "updated")
	return definition, nil
}

func (s *Service) DeleteDefinition(ctx context.Context, id string) error {
	definitionID, err := snowflake.ParseString(id)
	if err != nil {
		return domain.ErrInvalidDefinition
	}
	definition, err := s.repo.FindDefinitionByID(ctx, definitionID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteDefinition(ctx, definitionID); err != nil {
		return err
	}
	s.publishDefinition(definition, "deleted")
	return nil
}

func (s *Service) ListDefinitions(ctx context.Context, departmentID snowflake.ID) ([]domain.KPIDefinition, error) {
	return s.repo.ListDefinitionsByDepartment(ctx, departmentID)
}

func (s *Service) RecordEntry(ctx context.Context, req domain.RecordEntryRequest) (*domain.KPIEntry, error) {
	definitionID, err := snowflake.ParseString(req.DefinitionID)
	if err != nil {
		return nil, domain.ErrInvalidDefinition
	}
	if req.Quarter < 1 || req.Quarter > 4 || req.Year < 2000 || req.Slot < 1 {
		return nil, domain.ErrInvalidPeriod
	}
	definition, err := s.repo.FindDefinitionByID(ctx, definitionID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	entry := &domain.KPIEntry{
		ID:           s.genID.Generate(),
		DefinitionID: definitionID,
		Year:         req.Year,
		Quarter:      req.Quarter,
		Slot:         req.Slot,
		Value:        req.Value,
		Note:         strings.TrimSpace(req.Note),
		RecordedBy:   req.RecordedBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.UpsertEntry(ctx, entry); err != nil {
		return nil, err
	}
	s.hub.Publish(changefeed.RecordKPIEntry, changefeed.Event{
		RecordID:     entry.ID.String(),
		StoreID:      definition.StoreID.String(),
		DepartmentID: definition.DepartmentID.String(),
		Action:       "recorded",
		OccurredAt:   now,
	})
	return entry, nil
}

func (s *Service) Scorecard(ctx context.Context, departmentID snowflake.ID, period domain.Period) ([]domain.ScorecardRow, error) {
	definitions, err := s.repo.ListDefinitionsByDepartment(ctx, departmentID)
	if err != nil {
		return nil, err
	}
	rows := make([]domain.ScorecardRow, 0, len(definitions))
	for _, definition := range definitions {
		entries, err := s.repo.ListEntries(ctx, definition.ID, period.Year, period.Quarter)
		if err != nil {
			return nil, err
		}
		var latest *domain.KPIEntry
		if len(entries) > 0 {
			latest = &entries[len(entries)-1]
		}
		rows = append(rows, domain.ScorecardRow{
			Definition: definition,
			Entries:    entries,
			Status:     domain.ClassifyEntry(definition, latest),
		})
	}
	return rows, nil
}

func (s *Service) StatusSummary(ctx context.Context, departmentID snowflake.ID, period domain.Period) (map[string]int, error) {
	rows, err := s.Scorecard(ctx, departmentID, period)
	if err != nil {
		return nil, err
	}
	summary := map[string]int{
		domain.StatusOnTarget:  0,
		domain.StatusAtRisk:    0,
		domain.StatusOffTarget: 0,
		domain.StatusMissing:   0,
	}
	for _, row := range rows {
		summary[row.Status]++
	}
	return summary, nil
}

func (s *Service) publishDefinition(definition *domain.KPIDefinition, action string) {
	s.hub.Publish(changefeed.RecordKPIDefinition, changefeed.Event{
		RecordID:     definition.ID.String(),
		StoreID:      definition.StoreID.String(),
		DepartmentID: definition.DepartmentID.String(),
		Action:       action,
		OccurredAt:   s.clock.Now(),
	})
}
