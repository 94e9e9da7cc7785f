package jobs

import (
	"path/filepath"
	"strings"
	"time"
)

// Status represents the lifecycle of a job.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

var allStatuses = []Status{
	StatusPending,
	StatusProcessing,
	StatusCompleted,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// Kind distinguishes single-image jobs from video jobs.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

var videoExtensions = map[string]struct{}{
	".mp4":  {},
	".mov":  {},
	".m4v":  {},
	".avi":  {},
	".mkv":  {},
	".webm": {},
}

var imageExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".webp": {},
}

// KindForPath detects the media kind from the file extension. The empty Kind
// means the file is unsupported.
func KindForPath(path string) Kind {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := imageExtensions[ext]; ok {
		return KindImage
	}
	if _, ok := videoExtensions[ext]; ok {
		return KindVideo
	}
	return ""
}

// Job is one mosaic conversion tracked by the registry.
type Job struct {
	ID          string
	Kind        Kind
	SourcePath  string
	OutFormat   string
	FPS         int
	CellSize    int
	MaxBlock    int
	Status      Status
	Progress    float64
	Message     string
	FramesDone  int
	FramesTotal int
	OutputPath  string
	ErrorMsg    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether the status ends the job lifecycle.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// SetProgress updates the progress fields together.
func (j *Job) SetProgress(message string, percent float64) {
	j.Message = message
	j.Progress = percent
}

// SetFrameProgress records processed/total and derives the percent from it.
func (j *Job) SetFrameProgress(done, total int) {
	j.FramesDone = done
	j.FramesTotal = total
	if total > 0 {
		j.Progress = float64(done) / float64(total) * 100
	}
}

// SetFailed marks the job as failed with the given error message.
func (j *Job) SetFailed(message string) {
	j.Status = StatusFailed
	j.ErrorMsg = message
	j.Message = message
}
