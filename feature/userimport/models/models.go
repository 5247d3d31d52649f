package models

import (
	"fmt"

	"user-import/core/reconcile"
)

// Record is one user entry in the form every input format converges to.
type Record struct {
	UserID    string `json:"userid"`
	Username  string `json:"username"`
	Surname   string `json:"surname,omitempty"`
	GivenName string `json:"givenname,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Mobile    string `json:"mobile,omitempty"`
	Password  string `json:"-"`
	// PasswordPlain is set when Password still holds the cleartext value.
	PasswordPlain bool `json:"-"`
	// Line is the 1-based source line.
	Line int `json:"-"`
}

// Key returns the identity key used by the reconciliation engine.
func (r Record) Key() string {
	return r.UserID
}

// RowWarning reports one input row that was skipped.
type RowWarning struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

func (w RowWarning) String() string {
	return fmt.Sprintf("line %d: %s", w.Line, w.Message)
}

// Report is the outcome of one import call.
type Report struct {
	reconcile.Result
	DryRun   bool         `json:"dry_run"`
	Parsed   int          `json:"parsed"`
	Warnings []RowWarning `json:"warnings"`
}
