package joblist

import (
	"context"
	"strings"

	"jobconsole/services/console/internal/errors"
	"jobconsole/services/console/internal/models"
	"jobconsole/services/console/internal/notify"

	"go.uber.org/zap"
)

const (
	msgLoadFailed   = "Failed to load jobs"
	msgDeleted      = "Job deleted successfully"
	msgDeleteFailed = "Failed to delete job"
	msgStatusFailed = "Failed to update job status"
)

// StatusAll disables the status filter.
const StatusAll = "all"

type Backend interface {
	ListJobs(ctx context.Context) ([]models.JobPosting, error)
	DeleteJob(ctx context.Context, id string) error
	UpdateJobStatus(ctx context.Context, id string, status models.Status) (*models.JobPosting, error)
}

// ConfirmFunc asks the user to confirm a destructive action on job.
type ConfirmFunc func(job models.JobPosting) bool

// State is the session's copy of the job list. It is the only copy: records
// are replaced wholesale on load and patched in place afterwards.
type State struct {
	Jobs         []models.JobPosting
	Search       string
	StatusFilter string
	Loaded       bool
}

func NewState() State {
	return State{StatusFilter: StatusAll}
}

type View struct {
	state    *State
	backend  Backend
	reporter notify.Reporter
	logger   *zap.Logger
}

func NewView(state *State, backend Backend, reporter notify.Reporter, logger *zap.Logger) *View {
	return &View{
		state:    state,
		backend:  backend,
		reporter: reporter,
		logger:   logger,
	}
}

func (v *View) State() *State {
	return v.state
}

// Load replaces the list with the backend's. On failure the list is left empty.
func (v *View) Load(ctx context.Context) error {
	defer func() { v.state.Loaded = true }()

	jobs, err := v.backend.ListJobs(ctx)
	if err != nil {
		v.state.Jobs = nil
		v.logger.Error("failed to load jobs", zap.Error(err))
		v.reporter.NotifyError(errors.UserMessage(err, msgLoadFailed))
		return err
	}

	v.state.Jobs = jobs
	v.logger.Debug("jobs loaded", zap.Int("count", len(jobs)))
	return nil
}

// ApplyFilter stores the filter and returns the matching jobs.
func (v *View) ApplyFilter(search, status string) []models.JobPosting {
	v.state.Search = search
	v.state.StatusFilter = normalizeStatusFilter(status)
	return v.Visible()
}

func (v *View) Visible() []models.JobPosting {
	return Filter(v.state.Jobs, v.state.Search, v.state.StatusFilter)
}

// Empty reports whether the filtered view has nothing to show.
func (v *View) Empty() bool {
	return len(v.Visible()) == 0
}

func (v *View) Find(id string) (models.JobPosting, bool) {
	if i := v.indexOf(id); i >= 0 {
		return v.state.Jobs[i], true
	}
	return models.JobPosting{}, false
}

// Counts returns the number of jobs per status, over the whole list.
func (v *View) Counts() map[models.Status]int {
	counts := make(map[models.Status]int, len(models.Statuses()))
	for _, job := range v.state.Jobs {
		counts[job.Status]++
	}
	return counts
}

// Delete removes a job after confirmation. The list only changes once the
// backend has accepted the request.
func (v *View) Delete(ctx context.Context, id string, confirm ConfirmFunc) error {
	job, ok := v.Find(id)
	if !ok {
		return errors.NotFound("job not found", nil)
	}
	if confirm == nil || !confirm(job) {
		v.logger.Debug("delete cancelled", zap.String("job_id", id))
		return nil
	}

	if err := v.backend.DeleteJob(ctx, id); err != nil {
		v.logger.Error("failed to delete job", zap.String("job_id", id), zap.Error(err))
		v.reporter.NotifyError(errors.UserMessage(err, msgDeleteFailed))
		return err
	}

	if i := v.indexOf(id); i >= 0 {
		jobs := make([]models.JobPosting, 0, len(v.state.Jobs)-1)
		jobs = append(jobs, v.state.Jobs[:i]...)
		v.state.Jobs = append(jobs, v.state.Jobs[i+1:]...)
	}
	v.reporter.NotifySuccess(msgDeleted)
	return nil
}

// ChangeStatus asks the backend for a status change and adopts the record it
// returns, so server-side derived fields are picked up too.
func (v *View) ChangeStatus(ctx context.Context, id string, status models.Status) error {
	if !status.Valid() {
		return errors.InvalidInput("unknown status "+string(status), nil)
	}
	if v.indexOf(id) < 0 {
		return errors.NotFound("job not found", nil)
	}

	job, err := v.backend.UpdateJobStatus(ctx, id, status)
	if err != nil {
		v.logger.Error("failed to update job status",
			zap.String("job_id", id),
			zap.String("status", string(status)),
			zap.Error(err))
		v.reporter.NotifyError(errors.UserMessage(err, msgStatusFailed))
		return err
	}

	v.replace(id, *job)
	v.reporter.NotifySuccess("Job status updated to " + job.Status.Label())
	return nil
}

// JobCreated puts a newly created job at the top of the list.
func (v *View) JobCreated(job models.JobPosting) {
	if i := v.indexOf(job.ID); i >= 0 {
		v.state.Jobs[i] = job
		return
	}
	v.state.Jobs = append([]models.JobPosting{job}, v.state.Jobs...)
}

// JobUpdated replaces the record with the same id. A record the list does not
// hold yet is added at the top.
func (v *View) JobUpdated(job models.JobPosting) {
	if !v.replace(job.ID, job) {
		v.state.Jobs = append([]models.JobPosting{job}, v.state.Jobs...)
	}
}

func (v *View) replace(id string, job models.JobPosting) bool {
	i := v.indexOf(id)
	if i < 0 {
		return false
	}
	jobs := append([]models.JobPosting(nil), v.state.Jobs...)
	jobs[i] = job
	v.state.Jobs = jobs
	return true
}

func (v *View) indexOf(id string) int {
	for i, job := range v.state.Jobs {
		if job.ID == id {
			return i
		}
	}
	return -1
}

// Filter returns the jobs whose title or location contains search (ignoring
// case) and whose status equals status, unless status is "all".
func Filter(jobs []models.JobPosting, search, status string) []models.JobPosting {
	status = normalizeStatusFilter(status)
	out := make([]models.JobPosting, 0, len(jobs))
	for _, job := range jobs {
		if status != StatusAll && string(job.Status) != status {
			continue
		}
		if !job.Matches(search) {
			continue
		}
		out = append(out, job)
	}
	return out
}

func normalizeStatusFilter(status string) string {
	status = strings.TrimSpace(strings.ToLower(status))
	if status == "" {
		return StatusAll
	}
	return status
}
