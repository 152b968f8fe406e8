package models

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

type EmploymentType string

const (
	EmploymentFullTime EmploymentType = "full-time"
	EmploymentPartTime EmploymentType = "part-time"
	EmploymentContract EmploymentType = "contract"
	EmploymentIntern   EmploymentType = "intern"
)

func EmploymentTypes() []EmploymentType {
	return []EmploymentType{EmploymentFullTime, EmploymentPartTime, EmploymentContract, EmploymentIntern}
}

func (t EmploymentType) Valid() bool {
	for _, v := range EmploymentTypes() {
		if v == t {
			return true
		}
	}
	return false
}

func (t EmploymentType) Label() string {
	return label(string(t))
}

type Status string

const (
	StatusDraft    Status = "draft"
	StatusActive   Status = "active"
	StatusOnHold   Status = "on-hold"
	StatusClosed   Status = "closed"
	StatusArchived Status = "archived"
)

func Statuses() []Status {
	return []Status{StatusDraft, StatusActive, StatusOnHold, StatusClosed, StatusArchived}
}

func (s Status) Valid() bool {
	for _, v := range Statuses() {
		if v == s {
			return true
		}
	}
	return false
}

func (s Status) Label() string {
	return label(string(s))
}

// label turns "on-hold" into "On Hold".
func label(v string) string {
	words := strings.Fields(strings.ReplaceAll(v, "-", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

type DepartmentRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// UnmarshalJSON accepts either a populated department object or a bare id.
func (d *DepartmentRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*d = DepartmentRef{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*d = DepartmentRef{ID: id}
		return nil
	}

	var raw struct {
		ID    string `json:"id"`
		Mongo string `json:"_id"`
		Name  string `json:"name"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d.ID = raw.ID
	if d.ID == "" {
		d.ID = raw.Mongo
	}
	d.Name = raw.Name
	return nil
}

type ExperienceRange struct {
	Min *int `json:"min,omitempty"`
	Max *int `json:"max,omitempty"`
}

type SalaryRange struct {
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
	Currency string   `json:"currency,omitempty"`
}

type JobPosting struct {
	ID               string          `json:"id"`
	Title            string          `json:"title"`
	Department       DepartmentRef   `json:"department"`
	Location         string          `json:"location"`
	EmploymentType   EmploymentType  `json:"employmentType"`
	Experience       ExperienceRange `json:"experience"`
	Salary           SalaryRange     `json:"salary"`
	Description      string          `json:"description"`
	Requirements     []string        `json:"requirements"`
	Responsibilities []string        `json:"responsibilities"`
	Skills           []string        `json:"skills"`
	Openings         *int            `json:"openings,omitempty"`
	ClosingDate      *time.Time      `json:"closingDate,omitempty"`
	Status           Status          `json:"status"`
	Applications     int             `json:"applications"`
}

// UnmarshalJSON also accepts "_id" for backends that expose their storage key.
func (j *JobPosting) UnmarshalJSON(data []byte) error {
	type plain JobPosting
	var raw struct {
		plain
		MongoID     string `json:"_id"`
		ClosingDate string `json:"closingDate"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*j = JobPosting(raw.plain)
	if j.ID == "" {
		j.ID = raw.MongoID
	}
	j.ClosingDate = nil
	if raw.ClosingDate != "" {
		t, err := ParseDate(raw.ClosingDate)
		if err != nil {
			return err
		}
		j.ClosingDate = &t
	}
	return nil
}

// Matches reports whether term occurs in the title or the location, ignoring case.
func (j JobPosting) Matches(term string) bool {
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(j.Title), term) ||
		strings.Contains(strings.ToLower(j.Location), term)
}

// JobPayload is the body of create and update requests. Blank numeric inputs
// stay nil so the backend can tell "not specified" from zero.
type JobPayload struct {
	Title            string          `json:"title"`
	Department       string          `json:"department"`
	Location         string          `json:"location"`
	EmploymentType   EmploymentType  `json:"employmentType"`
	Experience       ExperienceRange `json:"experience"`
	Salary           SalaryRange     `json:"salary"`
	Description      string          `json:"description"`
	Requirements     []string        `json:"requirements"`
	Responsibilities []string        `json:"responsibilities"`
	Skills           []string        `json:"skills"`
	Openings         *int            `json:"openings,omitempty"`
	ClosingDate      string          `json:"closingDate,omitempty"`
}

type StatusUpdate struct {
	Status Status `json:"status"`
}

const DateLayout = "2006-01-02"

// ParseDate accepts a plain date or an RFC 3339 timestamp.
func ParseDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if t, err := time.Parse(DateLayout, v); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, v)
}
