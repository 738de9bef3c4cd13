package api

import (
	"bytes"
	"errors"
	"testing"

	"github.com/soyeahso/crustspace/internal/logging"
	"github.com/stretchr/testify/assert"
)

type fakeAppender struct {
	err     error
	entries []string
}

func (f *fakeAppender) Append(agentID, action string, metadata map[string]any) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, action)
	return nil
}

type fakeToucher struct {
	err     error
	touched int
}

func (f *fakeToucher) TouchLastActive(id string) error {
	if f.err != nil {
		return f.err
	}
	f.touched++
	return nil
}

func TestRecorder_Record(t *testing.T) {
	appender := &fakeAppender{}
	toucher := &fakeToucher{}
	r := NewRecorder(appender, toucher, logging.New(nil, "silent"))

	r.Record("agent-1", "status_update", map[string]any{"status": "busy"})

	assert.Equal(t, []string{"status_update"}, appender.entries)
	assert.Equal(t, 1, toucher.touched)
}

func TestRecorder_AppendFailureStillTouches(t *testing.T) {
	appender := &fakeAppender{err: errors.New("disk full")}
	toucher := &fakeToucher{}

	var buf bytes.Buffer
	r := NewRecorder(appender, toucher, logging.New(&buf, "warn"))

	// Must not panic and must not surface the error.
	r.Record("agent-1", "api_profile_update", nil)

	assert.Equal(t, 1, toucher.touched)
	assert.Contains(t, buf.String(), "failed to record activity")
	assert.Contains(t, buf.String(), "disk full")
}

func TestRecorder_TouchFailureIsWarned(t *testing.T) {
	var buf bytes.Buffer
	r := NewRecorder(&fakeAppender{}, &fakeToucher{err: errors.New("locked")}, logging.New(&buf, "warn"))

	r.Touch("agent-1")

	assert.Contains(t, buf.String(), "failed to bump last_active_at")
}

func TestRecorder_TouchSkipsActivityRow(t *testing.T) {
	appender := &fakeAppender{}
	toucher := &fakeToucher{}
	r := NewRecorder(appender, toucher, logging.New(nil, "silent"))

	r.Touch("agent-1")

	assert.Empty(t, appender.entries)
	assert.Equal(t, 1, toucher.touched)
}
