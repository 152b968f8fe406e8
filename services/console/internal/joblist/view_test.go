package joblist

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
	jobs      []models.JobPosting
	listErr   error
	deleteErr error
	statusErr error
	statusRes *models.JobPosting

	deleted []string
}

func (f *fakeBackend) ListJobs(ctx context.Context) ([]models.JobPosting, error) {
	return f.jobs, f.listErr
}

func (f *fakeBackend) DeleteJob(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return f.deleteErr
}

func (f *fakeBackend) UpdateJobStatus(ctx context.Context, id string, status models.Status) (*models.JobPosting, error) {
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	return f.statusRes, nil
}

func sampleJobs() []models.JobPosting {
	return []models.JobPosting{
		{ID: "1", Title: "Engineer", Location: "Berlin", Status: models.StatusActive, Applications: 4},
		{ID: "2", Title: "Manager", Location: "Remote", Status: models.StatusDraft},
		{ID: "3", Title: "Designer", Location: "Engelberg", Status: models.StatusClosed},
	}
}

func newView(t *testing.T, backend *fakeBackend) (*View, *notify.Queue) {
	t.Helper()
	state := NewState()
	queue := &notify.Queue{}
	return NewView(&state, backend, queue, zaptest.NewLogger(t)), queue
}

func always(models.JobPosting) bool { return true }

func TestFilter(t *testing.T) {
	jobs := sampleJobs()[:2]

	got := Filter(jobs, "eng", string(models.StatusActive))
	if len(got) != 1 || got[0].Title != "Engineer" {
		t.Fatalf("got %+v", got)
	}

	tests := []struct {
		name   string
		search string
		status string
		want   []string
	}{
		{"all", "", StatusAll, []string{"1", "2", "3"}},
		{"blank status means all", "", "", []string{"1", "2", "3"}},
		{"location match", "remote", StatusAll, []string{"2"}},
		{"case insensitive", "ENG", StatusAll, []string{"1", "3"}},
		{"status only", "", "closed", []string{"3"}},
		{"no match", "nurse", StatusAll, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ids []string
			for _, job := range Filter(sampleJobs(), tt.search, tt.status) {
				ids = append(ids, job.ID)
			}
			if len(ids) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(ids, tt.want) {
				t.Fatalf("ids = %v, want %v", ids, tt.want)
			}
		})
	}
}

func TestLoadReplacesList(t *testing.T) {
	backend := &fakeBackend{jobs: sampleJobs()}
	v, _ := newView(t, backend)
	v.State().Jobs = []models.JobPosting{{ID: "stale"}}

	if err := v.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(v.State().Jobs) != 3 || !v.State().Loaded {
		t.Fatalf("state = %+v", v.State())
	}
}

func TestLoadFailureLeavesListEmpty(t *testing.T) {
	backend := &fakeBackend{listErr: errors.Unavailable("executing request", nil)}
	v, queue := newView(t, backend)
	v.State().Jobs = sampleJobs()

	if err := v.Load(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if len(v.State().Jobs) != 0 || !v.State().Loaded {
		t.Fatalf("state = %+v", v.State())
	}
	if !v.Empty() {
		t.Fatal("empty state expected")
	}
	if flashes := queue.Drain(); len(flashes) != 1 || flashes[0].Message != msgLoadFailed {
		t.Fatalf("flashes = %+v", flashes)
	}
}

func TestApplyFilterStoresState(t *testing.T) {
	v, _ := newView(t, &fakeBackend{})
	v.State().Jobs = sampleJobs()

	got := v.ApplyFilter("eng", "Active")
	if len(got) != 1 || got[0].ID != "1" {
		t.Fatalf("got %+v", got)
	}
	if v.State().Search != "eng" || v.State().StatusFilter != "active" {
		t.Fatalf("state = %+v", v.State())
	}

	v.ApplyFilter("zzz", "")
	if !v.Empty() {
		t.Fatal("expected empty filtered view")
	}
}

func TestDeleteSuccess(t *testing.T) {
	backend := &fakeBackend{}
	v, queue := newView(t, backend)
	v.State().Jobs = sampleJobs()

	if err := v.Delete(context.Background(), "2", always); err != nil {
		t.Fatal(err)
	}
	if len(v.State().Jobs) != 2 {
		t.Fatalf("jobs = %+v", v.State().Jobs)
	}
	if _, ok := v.Find("2"); ok {
		t.Fatal("job 2 should be gone")
	}
	if flashes := queue.Drain(); len(flashes) != 1 || flashes[0].Message != msgDeleted {
		t.Fatalf("flashes = %+v", flashes)
	}
}

func TestDeleteDeclinedDoesNothing(t *testing.T) {
	backend := &fakeBackend{}
	v, _ := newView(t, backend)
	v.State().Jobs = sampleJobs()

	var asked models.JobPosting
	err := v.Delete(context.Background(), "1", func(job models.JobPosting) bool {
		asked = job
		return false
	})
	if err != nil || len(backend.deleted) != 0 || len(v.State().Jobs) != 3 {
		t.Fatalf("err = %v deleted = %v", err, backend.deleted)
	}
	if asked.Title != "Engineer" {
		t.Fatalf("confirmation asked about %+v", asked)
	}
}

func TestDeleteFailureLeavesStateUntouched(t *testing.T) {
	backend := &fakeBackend{deleteErr: errors.FromResponse(http.StatusConflict, "x", "Job has applications")}
	v, queue := newView(t, backend)
	v.State().Jobs = sampleJobs()
	v.ApplyFilter("e", "all")
	before := *v.State()
	before.Jobs = append([]models.JobPosting(nil), v.State().Jobs...)

	if err := v.Delete(context.Background(), "1", always); err == nil {
		t.Fatal("expected error")
	}
	if !reflect.DeepEqual(before, *v.State()) {
		t.Fatalf("state changed:\n%+v\n%+v", before, *v.State())
	}
	if flashes := queue.Drain(); len(flashes) != 1 || flashes[0].Message != "Job has applications" {
		t.Fatalf("flashes = %+v", flashes)
	}
}

func TestDeleteUnknownJob(t *testing.T) {
	v, _ := newView(t, &fakeBackend{})
	if err := v.Delete(context.Background(), "404", always); !errors.IsType(err, errors.ErrTypeNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestChangeStatusAdoptsServerRecord(t *testing.T) {
	backend := &fakeBackend{statusRes: &models.JobPosting{
		ID: "2", Title: "Manager", Location: "Remote", Status: models.StatusActive, Applications: 1,
	}}
	v, queue := newView(t, backend)
	v.State().Jobs = sampleJobs()

	if err := v.ChangeStatus(context.Background(), "2", models.StatusActive); err != nil {
		t.Fatal(err)
	}
	job, _ := v.Find("2")
	if job.Status != models.StatusActive || job.Applications != 1 {
		t.Fatalf("job = %+v", job)
	}
	if v.State().Jobs[1].ID != "2" {
		t.Fatal("record should stay in place")
	}
	if flashes := queue.Drain(); len(flashes) != 1 || flashes[0].Kind != notify.KindSuccess {
		t.Fatalf("flashes = %+v", flashes)
	}
}

func TestChangeStatusFailureKeepsPriorStatus(t *testing.T) {
	backend := &fakeBackend{statusErr: errors.FromResponse(http.StatusUnprocessableEntity, "x", "Cannot reopen an archived job")}
	v, queue := newView(t, backend)
	v.State().Jobs = sampleJobs()

	if err := v.ChangeStatus(context.Background(), "3", models.StatusActive); err == nil {
		t.Fatal("expected error")
	}
	job, _ := v.Find("3")
	if job.Status != models.StatusClosed {
		t.Fatalf("status = %s", job.Status)
	}
	if flashes := queue.Drain(); len(flashes) != 1 || flashes[0].Message != "Cannot reopen an archived job" {
		t.Fatalf("flashes = %+v", flashes)
	}
}

func TestChangeStatusRejectsUnknownStatus(t *testing.T) {
	v, _ := newView(t, &fakeBackend{})
	v.State().Jobs = sampleJobs()
	if err := v.ChangeStatus(context.Background(), "1", models.Status("paused")); !errors.IsType(err, errors.ErrTypeInvalidInput) {
		t.Fatalf("err = %v", err)
	}
}

func TestCreatedAndUpdatedCallbacks(t *testing.T) {
	v, _ := newView(t, &fakeBackend{})
	v.State().Jobs = sampleJobs()

	v.JobCreated(models.JobPosting{ID: "4", Title: "Recruiter"})
	if v.State().Jobs[0].ID != "4" || len(v.State().Jobs) != 4 {
		t.Fatalf("jobs = %+v", v.State().Jobs)
	}

	v.JobUpdated(models.JobPosting{ID: "1", Title: "Senior Engineer"})
	if len(v.State().Jobs) != 4 {
		t.Fatal("update must not add a copy")
	}
	job, _ := v.Find("1")
	if job.Title != "Senior Engineer" {
		t.Fatalf("job = %+v", job)
	}

	v.JobCreated(models.JobPosting{ID: "4", Title: "Lead Recruiter"})
	if len(v.State().Jobs) != 4 {
		t.Fatal("ids must stay unique")
	}
}

func TestCounts(t *testing.T) {
	v, _ := newView(t, &fakeBackend{})
	v.State().Jobs = sampleJobs()
	counts := v.Counts()
	if counts[models.StatusActive] != 1 || counts[models.StatusDraft] != 1 || counts[models.StatusArchived] != 0 {
		t.Fatalf("counts = %v", counts)
	}
}
