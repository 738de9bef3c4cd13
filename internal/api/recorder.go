package api

import (
	"github.com/soyeahso/crustspace/internal/logging"
	"github.com/soyeahso/crustspace/internal/store"
)

// activityAppender appends immutable activity rows.
type activityAppender interface {
	Append(agentID, action string, metadata map[string]any) error
}

// lastActiveToucher bumps an agent's last_active_at.
type lastActiveToucher interface {
	TouchLastActive(id string) error
}

// Recorder writes best-effort activity records. A failure here is reported
// to the operator log and never to the API caller: the parent request's
// outcome is already decided by the time the recorder runs.
type Recorder struct {
	activity activityAppender
	agents   lastActiveToucher
	log      *logging.Logger
}

// NewRecorder creates an activity recorder.
func NewRecorder(activity activityAppender, agents lastActiveToucher, log *logging.Logger) *Recorder {
	return &Recorder{
		activity: activity,
		agents:   agents,
		log:      log.Sub("activity"),
	}
}

// Record appends an activity row and bumps last_active_at. Errors are
// downgraded to warnings.
func (r *Recorder) Record(agentID, action string, metadata map[string]any) {
	if err := r.activity.Append(agentID, action, metadata); err != nil {
		r.log.Warn().Err(err).
			Str("agentId", agentID).
			Str("action", action).
			Msg("failed to record activity")
	}
	r.Touch(agentID)
}

// Touch bumps last_active_at without appending an activity row. Every
// authenticated call goes through here; only some also get a log row.
func (r *Recorder) Touch(agentID string) {
	if err := r.agents.TouchLastActive(agentID); err != nil {
		r.log.Warn().Err(err).
			Str("agentId", agentID).
			Msg("failed to bump last_active_at")
	}
}

var (
	_ activityAppender  = (*store.ActivityStore)(nil)
	_ lastActiveToucher = (*store.AgentStore)(nil)
)
