package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velronatechnologies/Ticpin-website-sub002/internal/domain/entity"
	"github.com/velronatechnologies/Ticpin-website-sub002/internal/usecase"
)

type stubPasses struct {
	lookup  usecase.PassLookup
	check   entity.DuplicateCheck
	deleted int
	err     error

	gotEmail  string
	gotPhone  string
	gotUserID string
}

func (s *stubPasses) GetUserPass(ctx context.Context, email, phone string) (usecase.PassLookup, error) {
	s.gotEmail, s.gotPhone = email, phone
	return s.lookup, s.err
}

func (s *stubPasses) CheckDuplicatePass(ctx context.Context, email, phone string) (entity.DuplicateCheck, error) {
	s.gotEmail, s.gotPhone = email, phone
	return s.check, s.err
}

func (s *stubPasses) CleanupDuplicatePasses(ctx context.Context, email, phone string) (int, error) {
	s.gotEmail, s.gotPhone = email, phone
	return s.deleted, s.err
}

func (s *stubPasses) RenewPass(ctx context.Context, email, userID string) (usecase.PassLookup, error) {
	s.gotEmail, s.gotUserID = email, userID
	return s.lookup, s.err
}

type stubRunner struct {
	report usecase.ReminderReport
}

func (r *stubRunner) Run(ctx context.Context) (usecase.ReminderReport, error) {
	return r.report, nil
}

func runCommand(t *testing.T, passes *stubPasses, runner *stubRunner, args ...string) (string, error) {
	t.Helper()

	original := openBackend
	closed := false
	openBackend = func(ctx context.Context) (*backend, error) {
		return &backend{passes: passes, reminders: runner, close: func(context.Context) { closed = true }}, nil
	}
	t.Cleanup(func() {
		openBackend = original
		flagEmail, flagPhone, flagUserID = "", "", ""
		assert.True(t, closed, "backend must be closed")
	})

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestLookupCmd(t *testing.T) {
	passes := &stubPasses{lookup: usecase.Found(&entity.PassRecord{ID: "pass-1", Email: "a@x.com", Status: entity.PassStatusActive})}

	out, err := runCommand(t, passes, nil, "lookup", "--email", "a@x.com", "--phone", "9999999999")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", passes.gotEmail)
	assert.Equal(t, "9999999999", passes.gotPhone)

	var pass entity.PassRecord
	require.NoError(t, json.Unmarshal([]byte(out), &pass))
	assert.Equal(t, "pass-1", pass.ID)
}

func TestCheckCmd(t *testing.T) {
	passes := &stubPasses{check: entity.DuplicateCheck{HasDuplicate: true, ExistingPassID: "pass-1"}}

	out, err := runCommand(t, passes, nil, "check", "--phone", "9999999999")
	require.NoError(t, err)
	assert.Contains(t, out, `"hasDuplicate": true`)
}

func TestCleanupCmd(t *testing.T) {
	passes := &stubPasses{deleted: 1, err: errors.New("delete failed")}

	out, err := runCommand(t, passes, nil, "cleanup", "--email", "a@x.com")
	assert.EqualError(t, err, "delete failed")
	assert.JSONEq(t, `{"deleted":1}`, out)
}

func TestCleanupCmdRequiresIdentity(t *testing.T) {
	_, err := runCommand(t, &stubPasses{}, nil, "cleanup")
	assert.ErrorIs(t, err, usecase.ErrNoIdentity)
}

func TestRenewCmd(t *testing.T) {
	passes := &stubPasses{lookup: usecase.NotFound}

	_, err := runCommand(t, passes, nil, "renew", "--email", "a@x.com", "--user-id", "u2")
	assert.Error(t, err)
	assert.Equal(t, "u2", passes.gotUserID)
}

func TestRemindCmd(t *testing.T) {
	runner := &stubRunner{report: usecase.ReminderReport{RunID: "run-1", Scanned: 2, Notified: 2}}

	out, err := runCommand(t, &stubPasses{}, runner, "remind")
	require.NoError(t, err)

	var report usecase.ReminderReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "run-1", report.RunID)
	assert.Equal(t, 2, report.Notified)
}
