package notify

import "go.uber.org/zap"

// Reporter is the notification channel views use for toasts.
type Reporter interface {
	NotifySuccess(msg string)
	NotifyError(msg string)
}

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

type Flash struct {
	Kind    Kind
	Message string
}

// Queue collects flashes until the next page render drains them.
type Queue struct {
	Items []Flash
}

func (q *Queue) NotifySuccess(msg string) {
	q.Items = append(q.Items, Flash{Kind: KindSuccess, Message: msg})
}

func (q *Queue) NotifyError(msg string) {
	q.Items = append(q.Items, Flash{Kind: KindError, Message: msg})
}

func (q *Queue) Drain() []Flash {
	items := q.Items
	q.Items = nil
	return items
}

type logReporter struct {
	next   Reporter
	logger *zap.Logger
}

// WithLogging logs every notification before passing it on to next.
func WithLogging(next Reporter, logger *zap.Logger) Reporter {
	return &logReporter{next: next, logger: logger}
}

func (r *logReporter) NotifySuccess(msg string) {
	r.logger.Debug("notify success", zap.String("message", msg))
	r.next.NotifySuccess(msg)
}

func (r *logReporter) NotifyError(msg string) {
	r.logger.Debug("notify error", zap.String("message", msg))
	r.next.NotifyError(msg)
}
