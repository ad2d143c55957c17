package dispatch

import (
	"context"
	"sync"
	"time"
)

// Notice titles.
const (
	TitleGenerating = "Generating Report"
	TitleGenerated  = "Report Generated"
	TitleError      = "Error"
)

// Notice action labels.
const (
	ActionViewShare = "View/Share"
	ActionClose     = "Close"
	ActionOK        = "OK"
)

// Notice is a user-facing alert.
type Notice struct {
	Title    string    `json:"title"`
	Message  string    `json:"message"`
	Actions  []string  `json:"actions,omitempty"`
	Location string    `json:"location,omitempty"`
	JobID    string    `json:"jobId,omitempty"`
	Time     time.Time `json:"time"`
}

// Notifier shows notices to the user.
type Notifier interface {
	Notify(ctx context.Context, n Notice)
}

type discard struct{}

func (discard) Notify(context.Context, Notice) {}

func failureNotice() Notice {
	return Notice{
		Title:   TitleError,
		Message: "Failed to generate the report. Please try again.",
		Actions: []string{ActionOK},
	}
}

// DefaultNoticeCapacity is the number of notices a NoticeLog keeps.
const DefaultNoticeCapacity = 50

// NoticeLog keeps the most recent notices in memory.
type NoticeLog struct {
	mu       sync.Mutex
	notices  []Notice
	capacity int
	now      func() time.Time
}

// NewNoticeLog returns a log holding at most capacity notices.
func NewNoticeLog(capacity int) *NoticeLog {
	if capacity <= 0 {
		capacity = DefaultNoticeCapacity
	}
	return &NoticeLog{capacity: capacity, now: time.Now}
}

// Notify implements Notifier.
func (l *NoticeLog) Notify(_ context.Context, n Notice) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n.Time.IsZero() {
		n.Time = l.now().UTC()
	}
	l.notices = append(l.notices, n)
	if over := len(l.notices) - l.capacity; over > 0 {
		l.notices = append([]Notice(nil), l.notices[over:]...)
	}
}

// Notices returns the retained notices, oldest first.
func (l *NoticeLog) Notices() []Notice {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Notice(nil), l.notices...)
}
