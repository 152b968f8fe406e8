package web

import (
	"embed"
	"html/template"

	"jobconsole/services/console/internal/jobform"
	"jobconsole/services/console/internal/joblist"
	"jobconsole/services/console/internal/models"
	"jobconsole/services/console/internal/notify"
	"jobconsole/services/console/internal/passwordreset"
)

//go:embed templates/*.html
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"statusLabel": func(s models.Status) string { return s.Label() },
	"typeLabel":   func(t models.EmploymentType) string { return t.Label() },
	"date": func(j models.JobPosting) string {
		if j.ClosingDate == nil {
			return ""
		}
		return j.ClosingDate.Format(models.DateLayout)
	},
}

func parseTemplates() (*template.Template, error) {
	return template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
}

type page struct {
	Title   string
	Flashes []notify.Flash
}

// newPage drains the session's pending notifications into the page.
func newPage(title string, sess *Session) page {
	return page{Title: title, Flashes: sess.Flashes.Drain()}
}

type listField struct {
	Name  string
	Label string
	Items []string
}

type formView struct {
	State           *jobform.State
	Editing         bool
	Submitting      bool
	EmploymentTypes []models.EmploymentType
	Lists           []listField
}

type jobsPage struct {
	page
	Jobs         []models.JobPosting
	Total        int
	Search       string
	StatusFilter string
	Statuses     []models.Status
	Counts       map[models.Status]int
	Empty        bool
	Form         *formView
}

func newJobsPage(sess *Session, list *joblist.View) jobsPage {
	p := jobsPage{
		page:         newPage("Job postings", sess),
		Jobs:         list.Visible(),
		Total:        len(list.State().Jobs),
		Search:       list.State().Search,
		StatusFilter: list.State().StatusFilter,
		Statuses:     models.Statuses(),
		Counts:       list.Counts(),
		Empty:        list.Empty(),
	}

	form := &sess.JobForm
	if form.Phase != jobform.PhaseClosed {
		fv := &formView{
			State:           form,
			Editing:         form.Editing(),
			Submitting:      form.Phase == jobform.PhaseSubmitting,
			EmploymentTypes: models.EmploymentTypes(),
		}
		for _, lf := range jobform.ListFields() {
			fv.Lists = append(fv.Lists, listField{
				Name:  string(lf),
				Label: listLabels[lf],
				Items: form.Items(lf),
			})
		}
		p.Form = fv
	}
	return p
}

var listLabels = map[jobform.ListField]string{
	jobform.ListRequirements:     "Requirements",
	jobform.ListResponsibilities: "Responsibilities",
	jobform.ListSkills:           "Skills",
}

type confirmPage struct {
	page
	Job models.JobPosting
}

type resetPage struct {
	page
	Phase        string
	State        *passwordreset.State
	Requirements []passwordreset.Requirement
}

func newResetPage(sess *Session) resetPage {
	return resetPage{
		page:         newPage("Reset password", sess),
		Phase:        sess.Reset.Phase.String(),
		State:        &sess.Reset,
		Requirements: sess.Reset.Requirements(),
	}
}
