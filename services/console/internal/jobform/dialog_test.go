package jobform

import (
	"context"
	"net/http"
	"reflect"
	"testing"

	"jobconsole/services/console/internal/errors"
	"jobconsole/services/console/internal/models"
	"jobconsole/services/console/internal/notify"

	"go.uber.org/zap/zaptest"
)

type fakeBackend struct {
	departments    []models.Department
	departmentsErr error
	saveErr        error
	saved          *models.JobPosting

	departmentCalls int
	created         []models.JobPayload
	updated         map[string]models.JobPayload
}

func (f *fakeBackend) ListDepartments(ctx context.Context) ([]models.Department, error) {
	f.departmentCalls++
	return f.departments, f.departmentsErr
}

func (f *fakeBackend) CreateJob(ctx context.Context, payload models.JobPayload) (*models.JobPosting, error) {
	f.created = append(f.created, payload)
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	return f.saved, nil
}

func (f *fakeBackend) UpdateJob(ctx context.Context, id string, payload models.JobPayload) (*models.JobPosting, error) {
	if f.updated == nil {
		f.updated = map[string]models.JobPayload{}
	}
	f.updated[id] = payload
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	return f.saved, nil
}

type recordingCompleter struct {
	created []models.JobPosting
	updated []models.JobPosting
}

func (r *recordingCompleter) JobCreated(job models.JobPosting) { r.created = append(r.created, job) }
func (r *recordingCompleter) JobUpdated(job models.JobPosting) { r.updated = append(r.updated, job) }

func newDialog(t *testing.T, backend *fakeBackend) (*Dialog, *notify.Queue, *recordingCompleter) {
	t.Helper()
	state := NewState()
	queue := &notify.Queue{}
	completer := &recordingCompleter{}
	return NewDialog(&state, backend, queue, completer, zaptest.NewLogger(t)), queue, completer
}

func fillRequired(s *State) {
	s.UpdateField(FieldTitle, "Engineer")
	s.UpdateField(FieldDepartment, "d1")
	s.UpdateField(FieldLocation, "Remote")
	s.UpdateField(FieldDescription, "Build the console")
}

func TestOpenFetchesDepartmentsEveryTime(t *testing.T) {
	backend := &fakeBackend{departments: []models.Department{{ID: "d1", Name: "Engineering"}}}
	d, _, _ := newDialog(t, backend)

	d.Open(context.Background(), nil)
	if d.State().Phase != PhaseOpen || len(d.State().Departments) != 1 {
		t.Fatalf("state = %+v", d.State())
	}
	d.Close()
	if d.State().Phase != PhaseClosed || d.State().Departments != nil {
		t.Fatalf("close should reset: %+v", d.State())
	}

	backend.departments = []models.Department{{ID: "d2", Name: "Sales"}}
	d.Open(context.Background(), nil)
	if backend.departmentCalls != 2 || d.State().Departments[0].ID != "d2" {
		t.Fatalf("departments = %+v after %d calls", d.State().Departments, backend.departmentCalls)
	}
}

func TestOpenReportsDepartmentFailure(t *testing.T) {
	backend := &fakeBackend{departmentsErr: errors.FromResponse(http.StatusInternalServerError, "x", "Department service down")}
	d, queue, _ := newDialog(t, backend)

	d.Open(context.Background(), nil)
	if d.State().Phase != PhaseOpen {
		t.Fatal("dialog should stay open")
	}
	flashes := queue.Drain()
	if len(flashes) != 1 || flashes[0].Message != "Department service down" {
		t.Fatalf("flashes = %+v", flashes)
	}
}

func TestSubmitValidationFailureSkipsNetwork(t *testing.T) {
	backend := &fakeBackend{}
	d, queue, _ := newDialog(t, backend)
	d.Open(context.Background(), nil)

	_, err := d.Submit(context.Background())
	if !errors.IsValidation(err) {
		t.Fatalf("err = %v", err)
	}
	if len(backend.created) != 0 {
		t.Fatal("no request should be sent")
	}
	if d.State().Phase != PhaseOpen || len(d.State().Errors) != 4 {
		t.Fatalf("state = %+v", d.State())
	}
	if flashes := queue.Drain(); len(flashes) != 1 || flashes[0].Kind != notify.KindError {
		t.Fatalf("flashes = %+v", flashes)
	}
}

func TestSubmitCreateSuccess(t *testing.T) {
	saved := &models.JobPosting{ID: "new-1", Title: "Engineer", Status: models.StatusDraft}
	backend := &fakeBackend{saved: saved}
	d, queue, completer := newDialog(t, backend)
	d.Open(context.Background(), nil)
	fillRequired(d.State())
	d.State().AddListItem(ListSkills)
	d.State().UpdateListField(ListSkills, 1, "Go")

	job, err := d.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if job.ID != "new-1" || len(completer.created) != 1 || completer.created[0].ID != "new-1" {
		t.Fatalf("completer = %+v", completer)
	}
	if !reflect.DeepEqual(backend.created[0].Skills, []string{"Go"}) {
		t.Errorf("Skills = %v", backend.created[0].Skills)
	}
	if d.State().Phase != PhaseClosed || d.State().Title != "" || len(d.State().Skills) != 1 {
		t.Errorf("dialog should be closed and blank: %+v", d.State())
	}
	if flashes := queue.Drain(); len(flashes) != 1 || flashes[0].Message != msgCreated {
		t.Errorf("flashes = %+v", flashes)
	}
}

func TestSubmitUpdateUsesPut(t *testing.T) {
	saved := &models.JobPosting{ID: "j1", Title: "Staff Engineer"}
	backend := &fakeBackend{saved: saved}
	d, _, completer := newDialog(t, backend)
	d.Open(context.Background(), &models.JobPosting{
		ID: "j1", Title: "Engineer", Department: models.DepartmentRef{ID: "d1"},
		Location: "Remote", Description: "desc",
	})
	d.State().UpdateField(FieldTitle, "Staff Engineer")

	if _, err := d.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if backend.updated["j1"].Title != "Staff Engineer" || len(backend.created) != 0 {
		t.Fatalf("updated = %+v created = %+v", backend.updated, backend.created)
	}
	if len(completer.updated) != 1 || len(completer.created) != 0 {
		t.Fatalf("completer = %+v", completer)
	}
}

func TestSubmitServerFailureKeepsValues(t *testing.T) {
	backend := &fakeBackend{saveErr: errors.FromResponse(http.StatusBadRequest, "x", "Closing date must be in the future")}
	d, queue, completer := newDialog(t, backend)
	d.Open(context.Background(), nil)
	fillRequired(d.State())
	before := *d.State()

	if _, err := d.Submit(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	after := *d.State()
	if after.Phase != PhaseOpen || after.Title != before.Title || after.Description != before.Description {
		t.Fatalf("values lost: %+v", after)
	}
	if len(completer.created) != 0 {
		t.Fatal("parent must not be notified")
	}
	if flashes := queue.Drain(); len(flashes) != 1 || flashes[0].Message != "Closing date must be in the future" {
		t.Fatalf("flashes = %+v", flashes)
	}

	backend.saveErr = nil
	backend.saved = &models.JobPosting{ID: "retry"}
	if _, err := d.Submit(context.Background()); err != nil {
		t.Fatalf("retry: %v", err)
	}
}

func TestSubmitGuards(t *testing.T) {
	d, _, _ := newDialog(t, &fakeBackend{})
	if _, err := d.Submit(context.Background()); !errors.IsType(err, errors.ErrTypeInvalidInput) {
		t.Fatalf("closed dialog: err = %v", err)
	}

	d.Open(context.Background(), nil)
	d.State().Phase = PhaseSubmitting
	if _, err := d.Submit(context.Background()); !errors.IsType(err, errors.ErrTypeInvalidInput) {
		t.Fatalf("duplicate submit: err = %v", err)
	}
}
