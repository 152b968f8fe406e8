// Package jobform holds the job posting form dialog: its serialisable state,
// the field reducers that mutate it, and the dialog that submits it.
package jobform

import (
	"strconv"
	"strings"

	"jobconsole/services/console/internal/errors"
	"jobconsole/services/console/internal/models"
)

type Phase int

const (
	PhaseClosed Phase = iota
	PhaseOpen
	PhaseSubmitting
)

func (p Phase) String() string {
	switch p {
	case PhaseOpen:
		return "open"
	case PhaseSubmitting:
		return "submitting"
	default:
		return "closed"
	}
}

type Field string

const (
	FieldTitle          Field = "title"
	FieldDepartment     Field = "department"
	FieldLocation       Field = "location"
	FieldEmploymentType Field = "employmentType"
	FieldDescription    Field = "description"
	FieldExperienceMin  Field = "experienceMin"
	FieldExperienceMax  Field = "experienceMax"
	FieldSalaryMin      Field = "salaryMin"
	FieldSalaryMax      Field = "salaryMax"
	FieldSalaryCurrency Field = "salaryCurrency"
	FieldOpenings       Field = "openings"
	FieldClosingDate    Field = "closingDate"
)

// Fields lists the scalar fields in form order.
func Fields() []Field {
	return []Field{
		FieldTitle, FieldDepartment, FieldLocation, FieldEmploymentType, FieldDescription,
		FieldExperienceMin, FieldExperienceMax, FieldSalaryMin, FieldSalaryMax,
		FieldSalaryCurrency, FieldOpenings, FieldClosingDate,
	}
}

type ListField string

const (
	ListRequirements     ListField = "requirements"
	ListResponsibilities ListField = "responsibilities"
	ListSkills           ListField = "skills"
)

func ListFields() []ListField {
	return []ListField{ListRequirements, ListResponsibilities, ListSkills}
}

const (
	defaultEmploymentType = models.EmploymentFullTime
	defaultCurrency       = "USD"
	defaultOpenings       = "1"
)

var requiredFields = []struct {
	field   Field
	message string
}{
	{FieldTitle, "Job title is required"},
	{FieldDepartment, "Department is required"},
	{FieldLocation, "Location is required"},
	{FieldDescription, "Job description is required"},
}

// State is the dialog's form state. Scalar inputs are kept as the raw strings
// the user typed; conversion happens in Payload.
type State struct {
	Phase     Phase
	EditingID string

	Title          string
	Department     string
	// DepartmentName labels Department when the fetched list does not hold it.
	DepartmentName string
	Location       string
	EmploymentType string
	Description    string
	ExperienceMin  string
	ExperienceMax  string
	SalaryMin      string
	SalaryMax      string
	SalaryCurrency string
	Openings       string
	ClosingDate    string

	Requirements     []string
	Responsibilities []string
	Skills           []string

	Departments []models.Department
	Errors      map[string]string
}

// NewState returns a closed dialog with blank defaults.
func NewState() State {
	var s State
	s.reset()
	return s
}

func (s *State) reset() {
	*s = State{
		Phase:            PhaseClosed,
		EmploymentType:   string(defaultEmploymentType),
		SalaryCurrency:   defaultCurrency,
		Openings:         defaultOpenings,
		Requirements:     []string{""},
		Responsibilities: []string{""},
		Skills:           []string{""},
		Errors:           map[string]string{},
	}
}

// prefill copies an existing posting into the form for editing.
func (s *State) prefill(job models.JobPosting) {
	s.EditingID = job.ID
	s.Title = job.Title
	s.Department = job.Department.ID
	s.DepartmentName = job.Department.Name
	s.Location = job.Location
	if job.EmploymentType != "" {
		s.EmploymentType = string(job.EmploymentType)
	}
	s.Description = job.Description
	s.ExperienceMin = formatInt(job.Experience.Min)
	s.ExperienceMax = formatInt(job.Experience.Max)
	s.SalaryMin = formatFloat(job.Salary.Min)
	s.SalaryMax = formatFloat(job.Salary.Max)
	if job.Salary.Currency != "" {
		s.SalaryCurrency = job.Salary.Currency
	}
	s.Openings = formatInt(job.Openings)
	s.ClosingDate = ""
	if job.ClosingDate != nil {
		s.ClosingDate = job.ClosingDate.Format(models.DateLayout)
	}
	s.Requirements = editable(job.Requirements)
	s.Responsibilities = editable(job.Responsibilities)
	s.Skills = editable(job.Skills)
}

// DepartmentOptions is the department list offered by the form. A selected
// department the backend no longer lists is kept as an extra entry so the
// form never posts it back blank.
func (s *State) DepartmentOptions() []models.Department {
	if s.Department == "" {
		return s.Departments
	}
	for _, d := range s.Departments {
		if d.ID == s.Department {
			return s.Departments
		}
	}
	name := s.DepartmentName
	if name == "" {
		name = s.Department
	}
	options := append([]models.Department(nil), s.Departments...)
	return append(options, models.Department{ID: s.Department, Name: name})
}

func (s *State) Editing() bool {
	return s.EditingID != ""
}

func (s *State) scalar(field Field) *string {
	switch field {
	case FieldTitle:
		return &s.Title
	case FieldDepartment:
		return &s.Department
	case FieldLocation:
		return &s.Location
	case FieldEmploymentType:
		return &s.EmploymentType
	case FieldDescription:
		return &s.Description
	case FieldExperienceMin:
		return &s.ExperienceMin
	case FieldExperienceMax:
		return &s.ExperienceMax
	case FieldSalaryMin:
		return &s.SalaryMin
	case FieldSalaryMax:
		return &s.SalaryMax
	case FieldSalaryCurrency:
		return &s.SalaryCurrency
	case FieldOpenings:
		return &s.Openings
	case FieldClosingDate:
		return &s.ClosingDate
	}
	return nil
}

func (s *State) list(field ListField) *[]string {
	switch field {
	case ListRequirements:
		return &s.Requirements
	case ListResponsibilities:
		return &s.Responsibilities
	case ListSkills:
		return &s.Skills
	}
	return nil
}

// Value returns the current input of a scalar field.
func (s *State) Value(field Field) string {
	if p := s.scalar(field); p != nil {
		return *p
	}
	return ""
}

// Items returns the current entries of a list field.
func (s *State) Items(field ListField) []string {
	if p := s.list(field); p != nil {
		return *p
	}
	return nil
}

// UpdateField sets a scalar input and clears its validation error.
// Validation itself waits until submit.
func (s *State) UpdateField(field Field, value string) error {
	p := s.scalar(field)
	if p == nil {
		return errors.InvalidInput("unknown field "+string(field), nil)
	}
	*p = value
	delete(s.Errors, string(field))
	return nil
}

func (s *State) UpdateListField(field ListField, index int, value string) error {
	items, err := s.listAt(field, index)
	if err != nil {
		return err
	}
	(*items)[index] = value
	return nil
}

func (s *State) AddListItem(field ListField) error {
	items := s.list(field)
	if items == nil {
		return errors.InvalidInput("unknown list field "+string(field), nil)
	}
	*items = append(*items, "")
	return nil
}

// RemoveListItem deletes one entry. A list with a single entry is left
// untouched so there is always a slot to type into.
func (s *State) RemoveListItem(field ListField, index int) error {
	items, err := s.listAt(field, index)
	if err != nil {
		return err
	}
	if len(*items) <= 1 {
		return nil
	}
	*items = append((*items)[:index:index], (*items)[index+1:]...)
	return nil
}

func (s *State) listAt(field ListField, index int) (*[]string, error) {
	items := s.list(field)
	if items == nil {
		return nil, errors.InvalidInput("unknown list field "+string(field), nil)
	}
	if index < 0 || index >= len(*items) {
		return nil, errors.InvalidInput("list index out of range", nil)
	}
	return items, nil
}

// Validate checks the required fields, stores the resulting messages on the
// state and reports whether the form may be submitted.
func (s *State) Validate() (map[string]string, bool) {
	errs := map[string]string{}
	for _, rf := range requiredFields {
		if strings.TrimSpace(s.Value(rf.field)) == "" {
			errs[string(rf.field)] = rf.message
		}
	}
	s.Errors = errs
	return errs, len(errs) == 0
}

// Payload converts the form into a request body: blank list entries are
// dropped and blank numeric inputs become nil rather than zero.
func (s *State) Payload() models.JobPayload {
	p := models.JobPayload{
		Title:          strings.TrimSpace(s.Title),
		Department:     strings.TrimSpace(s.Department),
		Location:       strings.TrimSpace(s.Location),
		EmploymentType: models.EmploymentType(strings.TrimSpace(s.EmploymentType)),
		Experience: models.ExperienceRange{
			Min: parseInt(s.ExperienceMin),
			Max: parseInt(s.ExperienceMax),
		},
		Salary: models.SalaryRange{
			Min:      parseFloat(s.SalaryMin),
			Max:      parseFloat(s.SalaryMax),
			Currency: strings.ToUpper(strings.TrimSpace(s.SalaryCurrency)),
		},
		Description:      strings.TrimSpace(s.Description),
		Requirements:     compact(s.Requirements),
		Responsibilities: compact(s.Responsibilities),
		Skills:           compact(s.Skills),
		Openings:         parseInt(s.Openings),
	}
	if d, err := models.ParseDate(s.ClosingDate); err == nil {
		p.ClosingDate = d.Format(models.DateLayout)
	}
	return p
}

func compact(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func editable(items []string) []string {
	if len(items) == 0 {
		return []string{""}
	}
	return append([]string(nil), items...)
}

func parseInt(v string) *int {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &n
}

func parseFloat(v string) *float64 {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil
	}
	return &f
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
