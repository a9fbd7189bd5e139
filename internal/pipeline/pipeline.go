// Package pipeline runs the importers as a fixed sequence of named steps.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/stwalsh4118/reclaim/internal/address"
	"github.com/stwalsh4118/reclaim/internal/audit"
	"github.com/stwalsh4118/reclaim/internal/importer"
	"github.com/stwalsh4118/reclaim/internal/legacy"
	"github.com/stwalsh4118/reclaim/internal/logger"
	"github.com/stwalsh4118/reclaim/internal/mapping"
	"github.com/stwalsh4118/reclaim/internal/postalcode"
	"github.com/stwalsh4118/reclaim/internal/repository"
	"github.com/stwalsh4118/reclaim/internal/timeline"
)

// Step names in execution order.
const (
	StepPostalCodes   = "postal-codes"
	StepActivities    = "activities"
	StepDonors        = "donors"
	StepPersonsSeed   = "persons-seed"
	StepEquipment     = "equipment"
	StepPersons       = "persons"
	StepTimesheets    = "timesheets"
	StepTickets       = "tickets"
	StepProofOfIssues = "proof-of-issues"
)

// stepOrder lists every step name in execution order.
var stepOrder = [...]string{
	StepPostalCodes,
	StepActivities,
	StepDonors,
	StepPersonsSeed,
	StepEquipment,
	StepPersons,
	StepTimesheets,
	StepTickets,
	StepProofOfIssues,
}

var (
	// ErrUnknownStep is returned for a step name outside the pipeline.
	ErrUnknownStep = errors.New("unknown step")
	// ErrMissingDependency is returned when Options lack a required collaborator.
	ErrMissingDependency = errors.New("missing pipeline dependency")
)

// Options configures a Pipeline.
type Options struct {
	Store   repository.RowStore
	Source  legacy.Source
	Index   *postalcode.Index
	Mapper  *mapping.Mapper
	Log     *logger.Logger
	Cutoff  time.Time
	DataDir string

	// Audit trails of address reconciliation. Nil sinks discard.
	Donors  audit.Trail
	Persons audit.Trail
}

func (o Options) validate() error {
	switch {
	case o.Store == nil:
		return fmt.Errorf("%w: store", ErrMissingDependency)
	case o.Source == nil:
		return fmt.Errorf("%w: legacy source", ErrMissingDependency)
	case o.Index == nil:
		return fmt.Errorf("%w: postal code index", ErrMissingDependency)
	case o.Mapper == nil:
		return fmt.Errorf("%w: mapper", ErrMissingDependency)
	}
	return nil
}

// Step is one named unit of the pipeline.
type Step struct {
	Name        string
	Description string
	run         func(ctx context.Context) (importer.Result, error)
}

// Pipeline holds the wired importers.
type Pipeline struct {
	steps []Step
	log   *logger.Logger
}

// New wires every importer against opts.
func New(opts Options) (*Pipeline, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}

	deps := importer.Deps{
		Store:  opts.Store,
		Source: opts.Source,
		Mapper: opts.Mapper,
		Log:    log,
		Cutoff: opts.Cutoff,
	}
	seed := func(name string) string { return filepath.Join(opts.DataDir, name) }

	postalCodes := importer.NewPostalCodeImporter(deps, opts.Index)
	activities := importer.NewActivityImporter(deps, seed(importer.ActivitiesSeed))
	donors := importer.NewDonorImporter(deps, address.NewReconciler(opts.Index, opts.Donors).Lenient(), seed(importer.DonorsSeed))
	persons := importer.NewPersonImporter(deps, address.NewReconciler(opts.Index, opts.Persons), seed(importer.PersonsSeed))
	equipment := importer.NewEquipmentImporter(deps, persons, donors)
	timesheets := importer.NewTimesheetImporter(deps, persons)
	reconstructor := timeline.NewReconstructor(opts.Mapper, opts.Mapper.Exceptions().UnknownPersonID)
	tickets := importer.NewTicketImporter(deps, equipment, persons, reconstructor)
	proofs := importer.NewProofOfIssueImporter(deps, equipment, persons)

	return &Pipeline{
		log: log,
		steps: []Step{
			{StepPostalCodes, "postal code reference ranges", postalCodes.Import},
			{StepActivities, "activity catalogue from " + importer.ActivitiesSeed, activities.ImportSeed},
			{StepDonors, "donors from " + importer.DonorsSeed, donors.ImportSeed},
			{StepPersonsSeed, "persons from " + importer.PersonsSeed, persons.ImportSeed},
			{StepEquipment, "equipment donated after the cutoff", equipment.ImportLegacy},
			{StepPersons, "persons registered after the cutoff", persons.ImportLegacy},
			{StepTimesheets, "volunteer attendance after the cutoff", timesheets.ImportLegacy},
			{StepTickets, "repair tickets taken in after the cutoff", tickets.ImportLegacy},
			{StepProofOfIssues, "invoices dated after the cutoff", proofs.ImportLegacy},
		},
	}, nil
}

// Steps returns the steps in execution order.
func (p *Pipeline) Steps() []Step {
	return append([]Step(nil), p.steps...)
}

// StepNames returns the step names in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, s := range p.steps {
		names[i] = s.Name
	}
	return names
}

// Run executes every step in order.
func (p *Pipeline) Run(ctx context.Context) (Report, error) {
	return p.run(ctx, p.steps)
}

// RunSteps executes the named steps in pipeline order, whatever order they are given in.
func (p *Pipeline) RunSteps(ctx context.Context, names ...string) (Report, error) {
	if err := ValidateSteps(names...); err != nil {
		return Report{}, err
	}
	wanted := make(map[string]struct{}, len(names))
	for _, name := range names {
		wanted[name] = struct{}{}
	}

	selected := make([]Step, 0, len(wanted))
	for _, s := range p.steps {
		if _, ok := wanted[s.Name]; ok {
			selected = append(selected, s)
		}
	}
	return p.run(ctx, selected)
}

// ValidateSteps returns ErrUnknownStep for the first name that is not a pipeline step.
// It needs no Pipeline, so callers can check names before opening anything.
func ValidateSteps(names ...string) error {
	for _, name := range names {
		known := false
		for _, step := range stepOrder {
			if step == name {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("%w: %q", ErrUnknownStep, name)
		}
	}
	return nil
}

// run stops at the first step that returns an error. The report covers
// every step that completed.
func (p *Pipeline) run(ctx context.Context, steps []Step) (Report, error) {
	var report Report
	for _, s := range steps {
		log := p.log.WithStep(s.Name)
		log.Info("step started", nil)

		started := time.Now()
		res, err := s.run(ctx)
		elapsed := time.Since(started)
		if err != nil {
			log.Error("step failed", err, map[string]interface{}{"duration_ms": elapsed.Milliseconds()})
			return report, fmt.Errorf("step %s: %w", s.Name, err)
		}

		report.Steps = append(report.Steps, StepReport{Step: s.Name, Result: res, Duration: elapsed})
		log.Info("step finished", map[string]interface{}{
			"inserted":    res.Inserted,
			"skipped":     res.Skipped,
			"failed":      res.Failed,
			"warnings":    res.Warnings,
			"duration_ms": elapsed.Milliseconds(),
		})
	}
	return report, nil
}
