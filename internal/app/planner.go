package app

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"actbatch/internal/config"
	"actbatch/internal/domain"
	"actbatch/internal/logging"
)

// Planner turns a root folder and a config snapshot into a batch plan:
// scan, match, then drop images whose output already exists.
type Planner struct {
	FS         FileSystem
	Logger     logging.Logger
	OnProgress ScanProgressFunc
	Recorder   Recorder
	// Exists overrides the default OutputIndex duplicate predicate.
	Exists ExistsFunc
	// RunID is generated when empty.
	RunID string
}

func (p *Planner) Plan(ctx context.Context, root string, cfg config.Config) (domain.BatchPlan, error) {
	if p.FS == nil {
		return domain.BatchPlan{}, errors.New("planner requires FS")
	}

	stop := p.Logger.Measure("Planning batch")
	defer stop()

	scanner := Scanner{FS: p.FS, Logger: p.Logger, OnProgress: p.OnProgress}
	groups, err := scanner.Groups(ctx, root, cfg.SearchPattern, cfg.ExactMatch)
	if err != nil {
		return domain.BatchPlan{}, err
	}

	runID := p.RunID
	if runID == "" {
		runID = uuid.New().String()
	}
	plan := domain.BatchPlan{
		RunID: runID,
		Root:  root,
	}
	exists := p.existsFunc(cfg)
	for _, group := range groups {
		plan.Candidates += len(group.Members)
		kept, skipped := FilterExisting(group.Members, exists)
		plan.Duplicates = append(plan.Duplicates, skipped...)
		if len(kept) == 0 {
			continue
		}
		plan.Groups = append(plan.Groups, domain.FolderGroup{Folder: group.Folder, Members: kept})
		plan.Total += len(kept)
	}
	plan.SkippedDuplicates = len(plan.Duplicates)

	if p.Recorder != nil {
		p.Recorder.ObserveSkipped(plan.SkippedDuplicates)
	}
	p.Logger.Verbosef("Run %s: %d candidates, %d to generate, %d already generated", plan.RunID, plan.Candidates, plan.Total, plan.SkippedDuplicates)
	return plan, nil
}

func (p *Planner) existsFunc(cfg config.Config) ExistsFunc {
	if !cfg.DuplicateDetection {
		return nil
	}
	if p.Exists != nil {
		return p.Exists
	}
	index := OutputIndex{FS: p.FS, Config: cfg, Dirs: cfg.DuplicateDirs}
	return index.Exists
}
