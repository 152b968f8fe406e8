// Package passwordreset holds the state machine behind the reset-password page:
// a token shape check, a new password pair, and a single submission.
package passwordreset

import (
	"context"
	"strings"

	"jobconsole/services/console/internal/errors"
	"jobconsole/services/console/internal/models"
	"jobconsole/services/console/internal/notify"

	"go.uber.org/zap"
)

const (
	msgResetSucceeded = "Password reset successfully"
	msgResetFailed    = "Failed to reset password"

	msgPasswordRequired = "Password is required"
	msgPasswordTooShort = "Password must be at least 8 characters"
	msgConfirmRequired  = "Please confirm your password"
	msgMismatch         = "Passwords do not match"
)

type Phase int

const (
	PhaseVerifying Phase = iota
	PhaseInvalid
	PhaseForm
	PhaseSubmitting
	PhaseSuccess
)

func (p Phase) String() string {
	switch p {
	case PhaseVerifying:
		return "verifying"
	case PhaseInvalid:
		return "invalid"
	case PhaseForm:
		return "form"
	case PhaseSubmitting:
		return "submitting"
	case PhaseSuccess:
		return "success"
	default:
		return "unknown"
	}
}

type Field string

const (
	FieldNewPassword     Field = "newPassword"
	FieldConfirmPassword Field = "confirmPassword"
)

type Backend interface {
	ResetPassword(ctx context.Context, req models.PasswordResetRequest) (*models.PasswordResetResponse, error)
}

type State struct {
	Phase           Phase
	Token           string
	NewPassword     string
	ConfirmPassword string
	Errors          map[string]string
	// ServerError is the inline message left by a rejected submission.
	ServerError string
}

func NewState() State {
	return State{Phase: PhaseVerifying, Errors: map[string]string{}}
}

// Verify runs the token shape check. It never contacts the backend.
func (s *State) Verify(token string) {
	*s = NewState()
	s.Token = token
	if tokenLooksValid(token) {
		s.Phase = PhaseForm
		return
	}
	s.Phase = PhaseInvalid
}

func (s *State) UpdateField(field Field, value string) error {
	switch field {
	case FieldNewPassword:
		s.NewPassword = value
	case FieldConfirmPassword:
		s.ConfirmPassword = value
	default:
		return errors.InvalidInput("unknown field "+string(field), nil)
	}
	if s.Errors != nil {
		delete(s.Errors, string(field))
	}
	return nil
}

// Validate checks the password pair, stores the per-field messages and
// reports whether the pair may be submitted.
func (s *State) Validate() (map[string]string, bool) {
	errs := map[string]string{}

	switch {
	case s.NewPassword == "":
		errs[string(FieldNewPassword)] = msgPasswordRequired
	case !longEnough(s.NewPassword, s.ConfirmPassword):
		errs[string(FieldNewPassword)] = msgPasswordTooShort
	}

	switch {
	case s.ConfirmPassword == "":
		errs[string(FieldConfirmPassword)] = msgConfirmRequired
	case !passwordsMatch(s.NewPassword, s.ConfirmPassword):
		errs[string(FieldConfirmPassword)] = msgMismatch
	}

	s.Errors = errs
	return errs, len(errs) == 0
}

// Requirements echoes the Validate rules as a checklist.
func (s *State) Requirements() []Requirement {
	out := make([]Requirement, 0, len(rules))
	for _, r := range rules {
		out = append(out, Requirement{Label: r.label, Met: r.check(s.NewPassword, s.ConfirmPassword)})
	}
	return out
}

// DiscardPasswords drops both password values.
func (s *State) DiscardPasswords() {
	s.NewPassword = ""
	s.ConfirmPassword = ""
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

// Submit sends the new password. The passwords are discarded after every
// attempt that reaches the backend.
func (v *View) Submit(ctx context.Context) error {
	if v.state.Phase != PhaseForm {
		return errors.InvalidInput("reset form is not active", nil)
	}
	fieldErrs, ok := v.state.Validate()
	if !ok {
		return errors.NewValidation(fieldErrs)
	}

	v.state.Phase = PhaseSubmitting
	v.state.ServerError = ""
	req := models.PasswordResetRequest{Token: v.state.Token, NewPassword: v.state.NewPassword}
	defer v.state.DiscardPasswords()

	resp, err := v.backend.ResetPassword(ctx, req)
	if err != nil {
		msg := errors.UserMessage(err, msgResetFailed)
		v.logger.Error("failed to reset password", zap.Error(err))
		v.reporter.NotifyError(msg)
		v.reject(msg)
		return err
	}

	if !resp.Success {
		msg := resp.Message
		if msg == "" {
			msg = msgResetFailed
		}
		v.logger.Warn("password reset rejected", zap.String("message", resp.Message))
		v.reporter.NotifyError(msg)
		v.reject(msg)
		return errors.Rejected("password reset rejected", nil)
	}

	v.state.Phase = PhaseSuccess
	v.reporter.NotifySuccess(msgResetSucceeded)
	v.logger.Info("password reset completed")
	return nil
}

func (v *View) reject(msg string) {
	if tokenRejected(msg) {
		v.state.Phase = PhaseInvalid
		return
	}
	v.state.Phase = PhaseForm
	v.state.ServerError = msg
}

func tokenRejected(msg string) bool {
	msg = strings.ToLower(msg)
	return strings.Contains(msg, "expired") || strings.Contains(msg, "invalid")
}
