package pipeline

import (
	"fmt"

	"harvest-analytics-api/internal/analyze"
	"harvest-analytics-api/internal/models"
	"harvest-analytics-api/internal/storage"
	"harvest-analytics-api/internal/validate"
)

// Pipeline sequences the analysis phases: load, validate, analyze. Each
// phase fully completes before the next starts and each is independently
// testable; only the load phase touches storage.
type Pipeline struct {
	store     *storage.Store
	validator *validate.Validator
	analyzer  *analyze.Analyzer
	defaults  models.Targets
}

func New(store *storage.Store, defaults models.Targets) *Pipeline {
	return &Pipeline{
		store:     store,
		validator: validate.New(),
		analyzer:  analyze.New(),
		defaults:  defaults,
	}
}

type tables struct {
	production []models.ProductionRow
	potential  []models.PotentialRow
	meta       []models.MetaRow
	season     []models.SeasonRow
	targets    models.Targets
}

// Run recomputes everything from the stored tables. Empty tables produce
// the canonical zero-valued result, never an error.
func (p *Pipeline) Run() (models.AnalysisResult, models.ValidationResult, error) {
	t, err := p.load()
	if err != nil {
		return models.AnalysisResult{}, models.ValidationResult{}, err
	}

	validation := p.validator.ValidateAll(t.production)
	result := p.analyzer.AnalyzeAll(t.production, t.potential, t.meta, validation, t.season, t.targets)

	if override, ok, err := p.store.SeasonOverride(); err == nil && ok {
		result.SeasonAccumulated = override
	}

	return result, validation, nil
}

// Validate runs only the validation phase.
func (p *Pipeline) Validate() (models.ValidationResult, error) {
	t, err := p.load()
	if err != nil {
		return models.ValidationResult{}, err
	}
	return p.validator.ValidateAll(t.production), nil
}

func (p *Pipeline) load() (*tables, error) {
	production, err := p.store.LoadProductionRows()
	if err != nil {
		return nil, fmt.Errorf("loading production rows: %w", err)
	}
	potential, err := p.store.LoadPotentialRows()
	if err != nil {
		return nil, fmt.Errorf("loading potential rows: %w", err)
	}
	meta, err := p.store.LoadMetaRows()
	if err != nil {
		return nil, fmt.Errorf("loading meta rows: %w", err)
	}
	season, err := p.store.LoadSeasonRows()
	if err != nil {
		return nil, fmt.Errorf("loading season rows: %w", err)
	}
	targets, err := p.store.GetTargets(p.defaults)
	if err != nil {
		return nil, fmt.Errorf("loading targets: %w", err)
	}

	return &tables{
		production: production,
		potential:  potential,
		meta:       meta,
		season:     season,
		targets:    targets,
	}, nil
}
