package web

import (
	stderrors "errors"
	"net/http"
	"strconv"
	"strings"

	"jobconsole/services/console/internal/api"
	"jobconsole/services/console/internal/errors"
	"jobconsole/services/console/internal/jobform"
	"jobconsole/services/console/internal/joblist"
	"jobconsole/services/console/internal/models"
	"jobconsole/services/console/internal/notify"
	"jobconsole/services/console/internal/passwordreset"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	msgJobNotFound   = "Job not found"
	msgUnknownStatus = "Unknown job status"
	msgUnknownAction = "Unknown form action"
)

type Handler struct {
	backend api.BackendClient
	logger  *zap.Logger
}

func NewHandler(backend api.BackendClient, logger *zap.Logger) *Handler {
	return &Handler{
		backend: backend,
		logger:  logger,
	}
}

// views binds the session's state to fresh view-models for one request.
type views struct {
	reporter notify.Reporter
	list     *joblist.View
	form     *jobform.Dialog
	reset    *passwordreset.View
}

func (h *Handler) views(sess *Session) views {
	reporter := notify.WithLogging(&sess.Flashes, h.logger)
	list := joblist.NewView(&sess.JobList, h.backend, reporter, h.logger)
	return views{
		reporter: reporter,
		list:     list,
		form:     jobform.NewDialog(&sess.JobForm, h.backend, reporter, list, h.logger),
		reset:    passwordreset.NewView(&sess.Reset, h.backend, reporter, h.logger),
	}
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) root(c *gin.Context) {
	c.Redirect(http.StatusFound, "/jobs")
}

// ensureLoaded fetches the list on the session's first visit.
func (h *Handler) ensureLoaded(c *gin.Context, v views) {
	if !v.list.State().Loaded {
		v.list.Load(c.Request.Context())
	}
}

// backToList redirects to the list page after an action that already patched
// the session's list.
func backToList(c *gin.Context) {
	currentSession(c).KeepList = true
	c.Redirect(http.StatusSeeOther, "/jobs")
}

// listJobs fetches the list on every visit except the one that follows an
// action's redirect.
func (h *Handler) listJobs(c *gin.Context) {
	sess := currentSession(c)
	v := h.views(sess)

	if !sess.KeepList || !v.list.State().Loaded {
		v.list.Load(c.Request.Context())
	}
	sess.KeepList = false

	search, hasSearch := c.GetQuery("search")
	status, hasStatus := c.GetQuery("status")
	if hasSearch || hasStatus {
		if !hasSearch {
			search = v.list.State().Search
		}
		if !hasStatus {
			status = v.list.State().StatusFilter
		}
		v.list.ApplyFilter(search, status)
	}

	c.HTML(http.StatusOK, "jobs.html", newJobsPage(sess, v.list))
}

func (h *Handler) filterJobs(c *gin.Context) {
	v := h.views(currentSession(c))
	v.list.ApplyFilter(c.PostForm("search"), c.PostForm("status"))
	backToList(c)
}

func (h *Handler) newJob(c *gin.Context) {
	v := h.views(currentSession(c))
	v.form.Open(c.Request.Context(), nil)
	backToList(c)
}

func (h *Handler) editJob(c *gin.Context) {
	v := h.views(currentSession(c))
	h.ensureLoaded(c, v)

	job, ok := v.list.Find(c.Param("id"))
	if !ok {
		v.reporter.NotifyError(msgJobNotFound)
		backToList(c)
		return
	}
	v.form.Open(c.Request.Context(), &job)
	backToList(c)
}

// submitForm copies the posted inputs into the dialog and then applies op.
func (h *Handler) submitForm(c *gin.Context) {
	v := h.views(currentSession(c))
	state := v.form.State()
	if state.Phase == jobform.PhaseClosed {
		backToList(c)
		return
	}

	for _, field := range jobform.Fields() {
		if value, ok := c.GetPostForm(string(field)); ok && value != state.Value(field) {
			state.UpdateField(field, value)
		}
	}
	for _, field := range jobform.ListFields() {
		values, ok := c.GetPostFormArray(string(field))
		if !ok {
			continue
		}
		items := state.Items(field)
		for i, value := range values {
			if i < len(items) && items[i] != value {
				state.UpdateListField(field, i, value)
			}
		}
	}

	op := c.PostForm("op")
	switch {
	case op == "save":
		// Failures are reported by the dialog itself.
		v.form.Submit(c.Request.Context())
	case op == "close":
		v.form.Close()
	default:
		if err := applyListOp(state, op); err != nil {
			h.logger.Warn("rejected form action", zap.String("op", op), zap.Error(err))
			v.reporter.NotifyError(msgUnknownAction)
		}
	}
	backToList(c)
}

func (h *Handler) changeStatus(c *gin.Context) {
	v := h.views(currentSession(c))
	h.ensureLoaded(c, v)

	status := models.Status(c.PostForm("status"))
	err := v.list.ChangeStatus(c.Request.Context(), c.Param("id"), status)
	switch {
	case errors.IsType(err, errors.ErrTypeNotFound) && !hasStatus(err):
		v.reporter.NotifyError(msgJobNotFound)
	case errors.IsType(err, errors.ErrTypeInvalidInput):
		v.reporter.NotifyError(msgUnknownStatus)
	}
	backToList(c)
}

func (h *Handler) confirmDelete(c *gin.Context) {
	sess := currentSession(c)
	v := h.views(sess)
	h.ensureLoaded(c, v)

	job, ok := v.list.Find(c.Param("id"))
	if !ok {
		v.reporter.NotifyError(msgJobNotFound)
		backToList(c)
		return
	}
	c.HTML(http.StatusOK, "confirm_delete.html", confirmPage{
		page: newPage("Delete job", sess),
		Job:  job,
	})
}

func (h *Handler) deleteJob(c *gin.Context) {
	v := h.views(currentSession(c))
	h.ensureLoaded(c, v)

	confirmed := c.PostForm("confirm") == "yes"
	err := v.list.Delete(c.Request.Context(), c.Param("id"), func(models.JobPosting) bool {
		return confirmed
	})
	if errors.IsType(err, errors.ErrTypeNotFound) && !hasStatus(err) {
		v.reporter.NotifyError(msgJobNotFound)
	}
	backToList(c)
}

// jobsJSON serves a freshly fetched, filtered list. It holds no session state.
func (h *Handler) jobsJSON(c *gin.Context) {
	state := joblist.NewState()
	list := joblist.NewView(&state, h.backend, &notify.Queue{}, h.logger)

	if err := list.Load(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": errors.UserMessage(err, "Failed to load jobs")})
		return
	}

	jobs := joblist.Filter(list.State().Jobs, c.Query("search"), c.Query("status"))
	c.JSON(http.StatusOK, gin.H{
		"data":   jobs,
		"total":  len(list.State().Jobs),
		"counts": list.Counts(),
	})
}

func (h *Handler) showReset(c *gin.Context) {
	sess := currentSession(c)
	v := h.views(sess)

	if token, ok := c.GetQuery("token"); ok {
		v.reset.State().Verify(token)
	} else if v.reset.State().Phase == passwordreset.PhaseVerifying {
		v.reset.State().Verify("")
	}
	c.HTML(http.StatusOK, "reset_password.html", newResetPage(sess))
}

func (h *Handler) submitReset(c *gin.Context) {
	sess := currentSession(c)
	v := h.views(sess)
	state := v.reset.State()

	state.UpdateField(passwordreset.FieldNewPassword, c.PostForm(string(passwordreset.FieldNewPassword)))
	state.UpdateField(passwordreset.FieldConfirmPassword, c.PostForm(string(passwordreset.FieldConfirmPassword)))

	if err := v.reset.Submit(c.Request.Context()); err != nil && !errors.IsValidation(err) {
		h.logger.Debug("password reset not completed", zap.Error(err))
	}
	state.DiscardPasswords()
	c.Redirect(http.StatusSeeOther, "/reset-password")
}

// hasStatus reports whether err came back from the backend rather than from
// a local lookup.
func hasStatus(err error) bool {
	var de *errors.DomainError
	return stderrors.As(err, &de) && de.Status != 0
}

// applyListOp handles "add:<list>" and "remove:<list>:<index>".
func applyListOp(state *jobform.State, op string) error {
	parts := strings.Split(op, ":")
	switch {
	case len(parts) == 2 && parts[0] == "add":
		return state.AddListItem(jobform.ListField(parts[1]))
	case len(parts) == 3 && parts[0] == "remove":
		i, err := strconv.Atoi(parts[2])
		if err != nil {
			return errors.InvalidInput("bad list index "+parts[2], err)
		}
		return state.RemoveListItem(jobform.ListField(parts[1]), i)
	default:
		return errors.InvalidInput("unknown form action "+op, nil)
	}
}
