package watcher

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdfwatch/pdfwatch/internal/model"
	"github.com/pdfwatch/pdfwatch/internal/testutil"
)

// jobSink collects dispatched jobs across goroutines.
type jobSink struct {
	mu   sync.Mutex
	jobs []model.PendingJob
}

func (s *jobSink) run(job model.PendingJob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, job)
}

func (s *jobSink) snapshot() []model.PendingJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.PendingJob(nil), s.jobs...)
}

// newTestCoordinator shortens the debounce so tests finish quickly.
func newTestCoordinator(sink *jobSink) *Coordinator {
	c := New(sink.run, testutil.DiscardLogger())
	c.debounce = newDebouncer(50 * time.Millisecond)
	return c
}

func enabledFolder(path string) model.FolderConfig {
	return model.FolderConfig{Path: path, Enabled: true, IncludeDate: true}
}

func TestCoordinator_DispatchesNewPDF(t *testing.T) {
	dir := t.TempDir()
	sink := &jobSink{}
	c := newTestCoordinator(sink)

	require.NoError(t, c.Start([]model.FolderConfig{enabledFolder(dir)}))
	defer c.Stop()
	assert.True(t, c.Running())

	path := filepath.Join(dir, "incoming.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o644))

	assert.Eventually(t, func() bool { return len(sink.snapshot()) == 1 },
		3*time.Second, 20*time.Millisecond)

	jobs := sink.snapshot()
	assert.Equal(t, path, jobs[0].Path)
	assert.True(t, jobs[0].Folder.IncludeDate, "job carries the folder config snapshot")
}

func TestCoordinator_IgnoresNonPDF(t *testing.T) {
	dir := t.TempDir()
	sink := &jobSink{}
	c := newTestCoordinator(sink)

	require.NoError(t, c.Start([]model.FolderConfig{enabledFolder(dir)}))
	defer c.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "SCAN.PDF"), []byte("%PDF-1.4"), 0o644))

	assert.Eventually(t, func() bool { return len(sink.snapshot()) == 1 },
		3*time.Second, 20*time.Millisecond)
	time.Sleep(150 * time.Millisecond)

	jobs := sink.snapshot()
	require.Len(t, jobs, 1, "extension match is case-insensitive, txt ignored")
	assert.Equal(t, filepath.Join(dir, "SCAN.PDF"), jobs[0].Path)
}

func TestCoordinator_WatchesNewSubdirectories(t *testing.T) {
	dir := t.TempDir()
	sink := &jobSink{}
	c := newTestCoordinator(sink)

	require.NoError(t, c.Start([]model.FolderConfig{enabledFolder(dir)}))
	defer c.Stop()

	sub := filepath.Join(dir, "2025-08")
	require.NoError(t, os.Mkdir(sub, 0o755))

	// Give the watcher a moment to register the new directory.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(sub, "deep.pdf"), []byte("%PDF-1.4"), 0o644))

	assert.Eventually(t, func() bool { return len(sink.snapshot()) == 1 },
		3*time.Second, 20*time.Millisecond)
}

func TestCoordinator_StartRequiresEnabledFolders(t *testing.T) {
	dir := t.TempDir()
	c := newTestCoordinator(&jobSink{})

	disabled := model.FolderConfig{Path: dir, Enabled: false}
	assert.Error(t, c.Start([]model.FolderConfig{disabled}))
	assert.False(t, c.Running())
}

func TestCoordinator_DoubleStartRejected(t *testing.T) {
	dir := t.TempDir()
	c := newTestCoordinator(&jobSink{})

	require.NoError(t, c.Start([]model.FolderConfig{enabledFolder(dir)}))
	defer c.Stop()

	assert.Error(t, c.Start([]model.FolderConfig{enabledFolder(dir)}))
}

func TestCoordinator_RemoveFolderCancelsPending(t *testing.T) {
	dir := t.TempDir()
	sink := &jobSink{}
	c := newTestCoordinator(sink)

	require.NoError(t, c.Start([]model.FolderConfig{enabledFolder(dir)}))
	defer c.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "late.pdf"), []byte("%PDF-1.4"), 0o644))

	// Tear the folder down inside the quiet period; the job must die with it.
	time.Sleep(20 * time.Millisecond)
	c.RemoveFolder(dir)

	time.Sleep(150 * time.Millisecond)
	assert.Empty(t, sink.snapshot())
}

func TestCoordinator_UpdateFolderSwapsConfig(t *testing.T) {
	dir := t.TempDir()
	sink := &jobSink{}
	c := newTestCoordinator(sink)

	require.NoError(t, c.Start([]model.FolderConfig{enabledFolder(dir)}))
	defer c.Stop()

	updated := enabledFolder(dir)
	updated.IncludeDate = false
	updated.Preset = model.PresetBusiness
	require.NoError(t, c.UpdateFolder(updated))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "after.pdf"), []byte("%PDF-1.4"), 0o644))

	assert.Eventually(t, func() bool { return len(sink.snapshot()) == 1 },
		3*time.Second, 20*time.Millisecond)
	jobs := sink.snapshot()
	assert.False(t, jobs[0].Folder.IncludeDate)
	assert.Equal(t, model.PresetBusiness, jobs[0].Folder.Preset)
}

func TestCoordinator_ReconcileAppliesFolderEdits(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()
	sink := &jobSink{}
	c := newTestCoordinator(sink)

	require.NoError(t, c.Start([]model.FolderConfig{enabledFolder(dirA)}))
	defer c.Stop()

	// One reload adds B, flips A's options, all while running.
	updatedA := enabledFolder(dirA)
	updatedA.IncludeDate = false
	updatedA.Preset = model.PresetLegal
	c.Reconcile([]model.FolderConfig{updatedA, enabledFolder(dirB)})

	require.NoError(t, os.WriteFile(filepath.Join(dirA, "a.pdf"), []byte("%PDF-1.4"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dirB, "b.pdf"), []byte("%PDF-1.4"), 0o644))

	assert.Eventually(t, func() bool { return len(sink.snapshot()) == 2 },
		3*time.Second, 20*time.Millisecond)
	for _, job := range sink.snapshot() {
		if job.Folder.Path == dirA {
			assert.False(t, job.Folder.IncludeDate, "jobs observe the edited config")
			assert.Equal(t, model.PresetLegal, job.Folder.Preset)
		}
	}

	// A later reload that drops A stops its session.
	c.Reconcile([]model.FolderConfig{enabledFolder(dirB)})
	require.NoError(t, os.WriteFile(filepath.Join(dirA, "gone.pdf"), []byte("%PDF-1.4"), 0o644))
	time.Sleep(150 * time.Millisecond)
	assert.Len(t, sink.snapshot(), 2, "removed folder no longer dispatches")
}

func TestCoordinator_ReconcileIgnoredWhileStopped(t *testing.T) {
	dir := t.TempDir()
	sink := &jobSink{}
	c := newTestCoordinator(sink)

	c.Reconcile([]model.FolderConfig{enabledFolder(dir)})
	assert.False(t, c.Running())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "early.pdf"), []byte("%PDF-1.4"), 0o644))
	time.Sleep(150 * time.Millisecond)
	assert.Empty(t, sink.snapshot())
}

func TestCoordinator_StopEndsWatching(t *testing.T) {
	dir := t.TempDir()
	sink := &jobSink{}
	c := newTestCoordinator(sink)

	require.NoError(t, c.Start([]model.FolderConfig{enabledFolder(dir)}))
	c.Stop()
	assert.False(t, c.Running())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.pdf"), []byte("%PDF-1.4"), 0o644))
	time.Sleep(150 * time.Millisecond)
	assert.Empty(t, sink.snapshot())
}
