package jobform

import (
	"context"

	"jobconsole/services/console/internal/errors"
	"jobconsole/services/console/internal/models"
	"jobconsole/services/console/internal/notify"

	"go.uber.org/zap"
)

const (
	msgValidationFailed  = "Please fill in all required fields"
	msgCreated           = "Job created successfully"
	msgUpdated           = "Job updated successfully"
	msgDepartmentsFailed = "Failed to load departments"
	msgSaveFailed        = "Failed to save job"
)

type Backend interface {
	ListDepartments(ctx context.Context) ([]models.Department, error)
	CreateJob(ctx context.Context, payload models.JobPayload) (*models.JobPosting, error)
	UpdateJob(ctx context.Context, id string, payload models.JobPayload) (*models.JobPosting, error)
}

// Completer receives the canonical record after a successful submission.
type Completer interface {
	JobCreated(job models.JobPosting)
	JobUpdated(job models.JobPosting)
}

// Dialog binds a form State to the backend. It is not safe for concurrent use.
type Dialog struct {
	state     *State
	backend   Backend
	reporter  notify.Reporter
	completer Completer
	logger    *zap.Logger
}

func NewDialog(state *State, backend Backend, reporter notify.Reporter, completer Completer, logger *zap.Logger) *Dialog {
	return &Dialog{
		state:     state,
		backend:   backend,
		reporter:  reporter,
		completer: completer,
		logger:    logger,
	}
}

func (d *Dialog) State() *State {
	return d.state
}

// Open shows the dialog blank (job == nil) or prefilled for editing, and
// fetches the department list afresh.
func (d *Dialog) Open(ctx context.Context, job *models.JobPosting) {
	d.state.reset()
	if job != nil {
		d.state.prefill(*job)
	}
	d.state.Phase = PhaseOpen

	departments, err := d.backend.ListDepartments(ctx)
	if err != nil {
		d.logger.Warn("failed to load departments", zap.Error(err))
		d.reporter.NotifyError(errors.UserMessage(err, msgDepartmentsFailed))
		return
	}
	d.state.Departments = departments
}

// Close hides the dialog and resets every field to its blank default.
func (d *Dialog) Close() {
	d.state.reset()
}

// Submit validates the form and sends a create or update request. Any failure
// leaves the dialog open with its values intact; success closes it.
func (d *Dialog) Submit(ctx context.Context) (*models.JobPosting, error) {
	switch d.state.Phase {
	case PhaseClosed:
		return nil, errors.InvalidInput("dialog is not open", nil)
	case PhaseSubmitting:
		return nil, errors.InvalidInput("submission already in progress", nil)
	}

	fieldErrs, ok := d.state.Validate()
	if !ok {
		d.reporter.NotifyError(msgValidationFailed)
		return nil, errors.NewValidation(fieldErrs)
	}

	payload := d.state.Payload()
	editing := d.state.Editing()

	d.state.Phase = PhaseSubmitting
	var (
		job *models.JobPosting
		err error
	)
	if editing {
		job, err = d.backend.UpdateJob(ctx, d.state.EditingID, payload)
	} else {
		job, err = d.backend.CreateJob(ctx, payload)
	}
	if err != nil {
		d.state.Phase = PhaseOpen
		d.logger.Error("failed to save job",
			zap.String("job_id", d.state.EditingID),
			zap.Bool("editing", editing),
			zap.Error(err))
		d.reporter.NotifyError(errors.UserMessage(err, msgSaveFailed))
		return nil, err
	}

	if editing {
		d.reporter.NotifySuccess(msgUpdated)
		d.completer.JobUpdated(*job)
	} else {
		d.reporter.NotifySuccess(msgCreated)
		d.completer.JobCreated(*job)
	}
	d.logger.Info("job saved",
		zap.String("job_id", job.ID),
		zap.Bool("editing", editing))

	d.Close()
	return job, nil
}
