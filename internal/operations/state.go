package operations

import (
	"sync"
	"time"

	"pvflash/pkg/contracts/domain"
)

// OperationStatus is the overall status of a batch run
type OperationStatus string

const (
	OperationStatusPending   OperationStatus = "pending"
	OperationStatusRunning   OperationStatus = "running"
	OperationStatusCompleted OperationStatus = "completed"
	OperationStatusFailed    OperationStatus = "failed"
)

// OperationState carries one batch run through the pipeline. Steps read the
// previous step's table and replace it with their own output.
type OperationState struct {
	mu sync.RWMutex

	ID        string                `json:"id"`
	Status    OperationStatus       `json:"status"`
	StartTime time.Time             `json:"start_time"`
	EndTime   *time.Time            `json:"end_time,omitempty"`
	Steps     map[string]*StepState `json:"steps"`
	Error     error                 `json:"-"`

	// Files are the measurement file names, relative to the data directory
	Files []string `json:"files"`

	table  *domain.ParameterTable
	levels []LevelResult
}

// NewOperationState creates the state for a run over files
func NewOperationState(id string, files []string) *OperationState {
	return &OperationState{
		ID:     id,
		Status: OperationStatusPending,
		Steps:  make(map[string]*StepState),
		Files:  files,
	}
}

// Start marks the run as running
func (p *OperationState) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Status = OperationStatusRunning
	p.StartTime = time.Now()
}

// Complete marks the run as completed
func (p *OperationState) Complete() {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.EndTime = &now
	p.Status = OperationStatusCompleted
}

// Fail marks the run as failed
func (p *OperationState) Fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.EndTime = &now
	p.Status = OperationStatusFailed
	p.Error = err
}

// GetStage returns the state of a specific Step
func (p *OperationState) GetStage(stageID string) *StepState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.Steps[stageID]
}

// SetStage records the state of a specific Step
func (p *OperationState) SetStage(stageID string, state *StepState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Steps[stageID] = state
}

// Table returns the current parameter table
func (p *OperationState) Table() *domain.ParameterTable {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.table
}

// SetTable replaces the current parameter table
func (p *OperationState) SetTable(t *domain.ParameterTable) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.table = t
}

// Levels returns the per-sun-level results
func (p *OperationState) Levels() []LevelResult {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.levels
}

// AddLevel appends a per-sun-level result
func (p *OperationState) AddLevel(l LevelResult) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.levels = append(p.levels, l)
}

// Duration returns the run time so far
func (p *OperationState) Duration() time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.EndTime != nil {
		return p.EndTime.Sub(p.StartTime)
	}
	return time.Since(p.StartTime)
}
