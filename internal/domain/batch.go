package domain

import (
	"path/filepath"
	"time"
)

type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// ProcessingResult records the single generation attempt made for one image.
type ProcessingResult struct {
	Source            ImageFile
	DestinationFolder string
	Outcome           Outcome
	Artifact          string
	Err               error
	Timestamp         time.Time
	Duration          time.Duration
}

func (r ProcessingResult) Succeeded() bool {
	return r.Outcome == OutcomeSuccess
}

// ProgressState is derived after every result. Processed never exceeds Total.
type ProgressState struct {
	Total     int
	Processed int
	Succeeded int
	Failed    int
	Elapsed   time.Duration
}

type EventPhase string

const (
	PhaseStarted  EventPhase = "started"
	PhaseFinished EventPhase = "finished"
)

// ProgressEvent is emitted twice per item: once before the generation call and
// once after its outcome is known. Outcome is empty for started events.
type ProgressEvent struct {
	Phase     EventPhase
	Processed int
	Total     int
	Current   string
	Outcome   Outcome
}

type BatchPlan struct {
	RunID             string
	Root              string
	Groups            []FolderGroup
	Total             int
	Candidates        int
	SkippedDuplicates int
	Duplicates        []ImageFile
}

// Items flattens the plan's groups in dispatch order.
func (p BatchPlan) Items() []ImageFile {
	var items []ImageFile
	for _, group := range p.Groups {
		items = append(items, group.Members...)
	}
	return items
}

// FolderNames returns the base names of the folders that still have work.
func (p BatchPlan) FolderNames() []string {
	names := make([]string, 0, len(p.Groups))
	for _, group := range p.Groups {
		names = append(names, filepath.Base(group.Folder))
	}
	return names
}
