package core

import (
	"errors"
	"strings"
	"time"
)

const (
	RoleAdmin   Role = "admin"
	RoleUser    Role = "user"
	RoleUnknown Role = "unknown"
)

const (
	StatusActive  ProjectStatus = "Active"
	StatusClosed  ProjectStatus = "Closed"
	StatusWarning ProjectStatus = "Warning"
)

const (
	LogSuccess LogStatus = "Success"
	LogFailed  LogStatus = "Failed"
)

type (
	Role          string
	ProjectStatus string
	LogStatus     string

	// Money is a monetary amount in satang (1/100 baht).
	Money struct {
		Satang int64
	}

	// Project is a budgeted work item. The id encodes a legacy series
	// convention (100-199, 200-299, 300+); see SeriesOf.
	Project struct {
		ID       int64         `json:"id"`
		Name     string        `json:"name"`
		Group    string        `json:"group"`
		Owner    string        `json:"owner,omitempty"`
		Budget   Money         `json:"budget"`
		Spent    Money         `json:"spent"`
		Category string        `json:"category"`
		Status   ProjectStatus `json:"status"`
	}

	// Expense is an expenditure recorded against a project. Date stays a
	// raw YYYY-MM-DD string because remote rows may carry anything; the
	// bucketing layer parses it defensively.
	Expense struct {
		ID        int64  `json:"id"`
		ProjectID int64  `json:"projectId"`
		Date      string `json:"date"`
		Amount    Money  `json:"amount"`
		Item      string `json:"item"`
		Note      string `json:"note,omitempty"`
	}

	// LogEntry records a login attempt, successful or not.
	LogEntry struct {
		ID        int64     `json:"id"`
		Timestamp string    `json:"timestamp"`
		Username  string    `json:"username"`
		Role      Role      `json:"role"`
		Status    LogStatus `json:"status"`
	}
)

var (
	ErrInvalidProjectID = errors.New("invalid project id")
	ErrEmptyName        = errors.New("empty project name")
	ErrNegativeBudget   = errors.New("negative budget")
	ErrNegativeSpent    = errors.New("negative spent")
	ErrInvalidStatus    = errors.New("invalid project status")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyItem        = errors.New("empty expense item")
	ErrInvalidDate      = errors.New("invalid date")
)

// Remaining is budget minus spent. Negative means over budget; that is a
// meaningful state, not an error.
func (p Project) Remaining() Money {
	return Money{Satang: p.Budget.Satang - p.Spent.Satang}
}

func (s ProjectStatus) IsValid() bool {
	switch s {
	case StatusActive, StatusClosed, StatusWarning:
		return true
	}
	return false
}

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleUser, RoleUnknown:
		return true
	}
	return false
}

// Validate checks a project as entered by a user. Rows read back from the
// remote store are never validated; reconciliation tolerates blanks there.
func (p Project) Validate() error {
	if p.ID <= 0 {
		return ErrInvalidProjectID
	}
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if p.Budget.Satang < 0 {
		return ErrNegativeBudget
	}
	if p.Spent.Satang < 0 {
		return ErrNegativeSpent
	}
	if !p.Status.IsValid() {
		return ErrInvalidStatus
	}
	return nil
}

func (e Expense) Validate() error {
	if e.ProjectID <= 0 {
		return ErrInvalidProjectID
	}
	if e.Amount.Satang <= 0 {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(e.Item) == "" {
		return ErrEmptyItem
	}
	if _, err := ParseDate(e.Date); err != nil {
		return ErrInvalidDate
	}
	return nil
}

// dateLayouts covers the forms the spreadsheet hands back: plain dates and
// the full timestamps Apps Script sometimes serializes.
var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05"}

// ParseDate parses an expense date string.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidDate
}
