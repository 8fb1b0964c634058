package download

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/handiism/yt-harvester/internal/config"
	"github.com/handiism/yt-harvester/internal/model"
	"github.com/handiism/yt-harvester/internal/platform"
	"github.com/handiism/yt-harvester/internal/testutil"
	"github.com/handiism/yt-harvester/internal/youtube"
)

func fastSettings() *config.Settings {
	s := config.DefaultSettings()
	s.DownloadRetryCooldown = 0
	s.DownloadRetryExponent = 1
	s.DownloadMaxRetries = 3
	return s
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

// batchRun writes a search file for the given artist names and validates a
// batch run against it.
func batchRun(t *testing.T, amount int, audioOnly bool, artists ...string) model.RunConfig {
	t.Helper()
	dir := t.TempDir()
	searchFile := filepath.Join(dir, "artists.txt")
	writeFile(t, searchFile, strings.Join(artists, "\n"))

	run, err := config.NewBatchRun(searchFile, filepath.Join(dir, "out"), amount, audioOnly, config.DefaultSettings())
	if err != nil {
		t.Fatal(err)
	}
	return run
}

func TestNormalizer_RenamesCombinedExtension(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.mp4")
	b := filepath.Join(dir, "b.mp3")
	writeFile(t, a, "a")
	writeFile(t, b, "b")

	got, err := NewNormalizer(model.ModeAudioOnly, nil).Normalize([]string{a, b})
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	want := []string{filepath.Join(dir, "a.mp3"), b}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Normalize = %v, want %v", got, want)
	}
	if !reflect.DeepEqual(listDir(t, dir), []string{"a.mp3", "b.mp3"}) {
		t.Errorf("directory = %v", listDir(t, dir))
	}
}

func TestNormalizer_Collision(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "track.mp4")
	dst := filepath.Join(dir, "track.mp3")
	writeFile(t, src, "new download")
	writeFile(t, dst, "old file")

	var warnings int
	n := NewNormalizer(model.ModeAudioOnly, func(e model.ProgressEvent) {
		if e.Level == model.LevelWarning {
			warnings++
		}
	})

	got, err := n.Normalize([]string{src})
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if got[0] != dst {
		t.Errorf("path = %q, want %q", got[0], dst)
	}
	if readFile(t, dst) != "new download" {
		t.Error("the renamed download must replace the old file")
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Error("track.mp4 should be gone")
	}
	if warnings != 1 {
		t.Errorf("expected one replacement warning, got %d", warnings)
	}
}

func TestNormalizer_Idempotent(t *testing.T) {
	dir := t.TempDir()
	paths := []string{filepath.Join(dir, "x.mp4"), filepath.Join(dir, "y.mp4")}
	for _, p := range paths {
		writeFile(t, p, filepath.Base(p))
	}

	n := NewNormalizer(model.ModeAudioOnly, nil)
	first, err := n.Normalize(paths)
	if err != nil {
		t.Fatal(err)
	}
	before := listDir(t, dir)

	second, err := n.Normalize(first)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("second pass changed paths: %v -> %v", first, second)
	}

	again, err := n.Normalize(paths)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, again) {
		t.Errorf("re-running on the original manifest gave %v, want %v", again, first)
	}
	if !reflect.DeepEqual(before, listDir(t, dir)) {
		t.Errorf("directory changed on second pass: %v -> %v", before, listDir(t, dir))
	}
}

func TestNormalizer_VideoModeNoop(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "clip.mp4")
	writeFile(t, p, "v")

	got, err := NewNormalizer(model.ModeVideoAndAudio, nil).Normalize([]string{p})
	if err != nil || got[0] != p {
		t.Errorf("Normalize = %v, %v", got, err)
	}
	if _, err := os.Stat(p); err != nil {
		t.Error("video mode must not rename files")
	}
}

func TestNormalizer_LeavesUnlistedFiles(t *testing.T) {
	dir := t.TempDir()
	listed := filepath.Join(dir, "listed.mp4")
	unlisted := filepath.Join(dir, "unlisted.mp4")
	writeFile(t, listed, "l")
	writeFile(t, unlisted, "u")

	if _, err := NewNormalizer(model.ModeAudioOnly, nil).Normalize([]string{listed}); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(unlisted); err != nil {
		t.Error("files not written by the run must be left alone")
	}
}

func TestExecutor_RetriesTransientFailures(t *testing.T) {
	fake := testutil.NewFakePlatform()
	var calls atomic.Int32
	fake.DownloadHook = func(ctx context.Context, id string) error {
		if calls.Add(1) == 1 {
			return errors.New("connection reset")
		}
		return nil
	}

	var retries int
	e := NewExecutor(fake, fastSettings(), func(ev model.ProgressEvent) {
		if ev.Level == model.LevelWarning {
			retries++
		}
	})

	dir := t.TempDir()
	res, err := e.Execute(context.Background(), model.NewBatchWorkItem("abc", model.ModeVideoAndAudio, dir))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if res.Attempts != 2 || retries != 1 {
		t.Errorf("attempts = %d, retry warnings = %d", res.Attempts, retries)
	}
	if res.Path != filepath.Join(dir, "abc.mp4") || res.Bytes != int64(len("abc")) {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestExecutor_ObserveBytes(t *testing.T) {
	fake := testutil.NewFakePlatform()
	fake.Content = func(id string) []byte { return []byte("0123456789") }
	fake.DownloadErrors["bad"] = errors.New("connection reset")

	var total atomic.Int64
	e := NewExecutor(fake, fastSettings(), nil)
	e.ObserveBytes(func(delta int64) { total.Add(delta) })

	dir := t.TempDir()
	if _, err := e.Execute(context.Background(), model.NewBatchWorkItem("good", model.ModeAudioOnly, dir)); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Execute(context.Background(), model.NewBatchWorkItem("bad", model.ModeAudioOnly, dir)); err == nil {
		t.Fatal("expected failure")
	}

	if total.Load() != 10 {
		t.Errorf("observed %d bytes, want 10 (failed attempts rolled back)", total.Load())
	}
}

func TestExecutor_GivesUpAfterMaxRetries(t *testing.T) {
	fake := testutil.NewFakePlatform()
	fake.DownloadErrors["abc"] = errors.New("HTTP 503")

	_, err := NewExecutor(fake, fastSettings(), nil).
		Execute(context.Background(), model.NewBatchWorkItem("abc", model.ModeAudioOnly, t.TempDir()))

	var itemErr *model.TransientItemError
	if !errors.As(err, &itemErr) {
		t.Fatalf("expected TransientItemError, got %v", err)
	}
	if fake.DownloadCount("abc") != 3 {
		t.Errorf("download attempts = %d, want 3", fake.DownloadCount("abc"))
	}
}

func TestExecutor_NoRetryWhenUnavailable(t *testing.T) {
	fake := testutil.NewFakePlatform()
	fake.ResolveErrors["abc"] = fmt.Errorf("%w: private", platform.ErrUnavailable)

	_, err := NewExecutor(fake, fastSettings(), nil).
		Execute(context.Background(), model.NewBatchWorkItem("abc", model.ModeAudioOnly, t.TempDir()))
	if !errors.Is(err, platform.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if n := len(fake.ResolveCalls()); n != 1 {
		t.Errorf("resolve calls = %d, want 1", n)
	}
}

func TestExecutor_UnwritableDestinationIsFatal(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	writeFile(t, blocker, "not a directory")

	fake := testutil.NewFakePlatform()
	_, err := NewExecutor(fake, fastSettings(), nil).
		Execute(context.Background(), model.NewBatchWorkItem("abc", model.ModeAudioOnly, filepath.Join(blocker, "out")))

	var fatal *model.FatalRunError
	if !errors.As(err, &fatal) {
		t.Fatalf("expected FatalRunError, got %v", err)
	}
	if fake.TotalCalls() != 0 {
		t.Errorf("no platform call expected, got %d", fake.TotalCalls())
	}
}

func TestExecutor_PermissionDeniedIsFatal(t *testing.T) {
	fake := testutil.NewFakePlatform()
	fake.DownloadHook = func(ctx context.Context, id string) error {
		return &fs.PathError{Op: "open", Path: "/videos/" + id + ".mp4", Err: fs.ErrPermission}
	}

	_, err := NewExecutor(fake, fastSettings(), nil).
		Execute(context.Background(), model.NewBatchWorkItem("abc", model.ModeAudioOnly, t.TempDir()))

	var fatal *model.FatalRunError
	if !errors.As(err, &fatal) {
		t.Fatalf("expected FatalRunError, got %v", err)
	}
	if !errors.Is(err, fs.ErrPermission) {
		t.Errorf("cause lost: %v", err)
	}
	if n := fake.DownloadCount("abc"); n != 1 {
		t.Errorf("download attempts = %d, want 1", n)
	}
}

func TestExecutor_WritabilityCheckLeavesNoFiles(t *testing.T) {
	dir := t.TempDir()
	fake := testutil.NewFakePlatform()
	if _, err := NewExecutor(fake, fastSettings(), nil).
		Execute(context.Background(), model.NewBatchWorkItem("abc", model.ModeAudioOnly, dir)); err != nil {
		t.Fatal(err)
	}
	if got := listDir(t, dir); !reflect.DeepEqual(got, []string{"abc.mp4"}) {
		t.Errorf("directory = %v", got)
	}
}

func TestManager_BatchQuotaAndNormalization(t *testing.T) {
	fake := testutil.NewFakePlatform()
	fake.Results["Miles+Davis"] = []string{"m1", "m2", "mLong", "m3", "m4", "m5"}
	fake.Results["Nina+Simone"] = []string{"n1", "nLong"}
	for _, id := range []string{"m1", "m2", "m3", "m4", "m5", "n1"} {
		fake.Durations[id] = 3 * time.Minute
	}
	fake.Durations["mLong"] = time.Hour
	fake.Durations["nLong"] = time.Hour

	run := batchRun(t, 3, true, "Miles Davis", "Nina Simone")
	m := NewManager(fake, fastSettings(), nil)

	if err := m.Initialize(context.Background(), run); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if n := len(m.Items()); n != 4 {
		t.Fatalf("items = %d, want 4", n)
	}

	report, err := m.StartDownloads(context.Background())
	if err != nil {
		t.Fatalf("StartDownloads failed: %v", err)
	}

	var want []string
	for _, id := range []string{"m1", "m2", "m3", "n1"} {
		want = append(want, filepath.Join(run.DestDir, id+".mp3"))
	}
	if !reflect.DeepEqual(report.Outputs, want) {
		t.Errorf("outputs = %v, want %v", report.Outputs, want)
	}
	if got := listDir(t, run.DestDir); !reflect.DeepEqual(got, []string{"m1.mp3", "m2.mp3", "m3.mp3", "n1.mp3"}) {
		t.Errorf("directory = %v", got)
	}
	if m.State() != StateDone || !m.State().Terminal() {
		t.Errorf("state = %v, want done", m.State())
	}

	received, _, files, total := m.GetProgress()
	if files != 4 || total != 4 || received == 0 {
		t.Errorf("progress = %d bytes, %d/%d files", received, files, total)
	}
}

func TestManager_BatchSkipsFailedItem(t *testing.T) {
	fake := testutil.NewFakePlatform()
	fake.Results["Artist"] = []string{"v1", "v2", "v3", "v4"}
	for _, id := range []string{"v1", "v2", "v3", "v4"} {
		fake.Durations[id] = time.Minute
	}
	fake.DownloadErrors["v3"] = errors.New("HTTP 403")

	run := batchRun(t, 4, true, "Artist")
	m := NewManager(fake, fastSettings(), nil)
	if err := m.Initialize(context.Background(), run); err != nil {
		t.Fatal(err)
	}

	report, err := m.StartDownloads(context.Background())
	if err != nil {
		t.Fatalf("batch run should succeed despite one failure: %v", err)
	}
	if report.Downloaded != 3 || report.Failed != 1 || len(report.Failures) != 1 {
		t.Errorf("report = %+v", report)
	}
	if got := listDir(t, run.DestDir); !reflect.DeepEqual(got, []string{"v1.mp3", "v2.mp3", "v4.mp3"}) {
		t.Errorf("directory = %v", got)
	}
	if m.FailedFiles() != 1 {
		t.Errorf("FailedFiles = %d", m.FailedFiles())
	}
}

func TestManager_BatchCollisionLastWriterWins(t *testing.T) {
	fake := testutil.NewFakePlatform()
	fake.Results["Artist"] = []string{"track"}
	fake.Durations["track"] = time.Minute
	fake.Content = func(id string) []byte { return []byte("fresh " + id) }

	run := batchRun(t, 1, true, "Artist")
	if err := os.MkdirAll(run.DestDir, 0755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(run.DestDir, "track.mp3"), "stale")

	m := NewManager(fake, fastSettings(), nil)
	if err := m.Initialize(context.Background(), run); err != nil {
		t.Fatal(err)
	}
	if _, err := m.StartDownloads(context.Background()); err != nil {
		t.Fatal(err)
	}

	if got := readFile(t, filepath.Join(run.DestDir, "track.mp3")); got != "fresh track" {
		t.Errorf("track.mp3 = %q, want the new download", got)
	}
	if got := listDir(t, run.DestDir); !reflect.DeepEqual(got, []string{"track.mp3"}) {
		t.Errorf("directory = %v", got)
	}
}

func TestManager_BatchSameTitleKeepsBothFiles(t *testing.T) {
	fake := testutil.NewFakePlatform()
	fake.Results["Artist"] = []string{"s1", "s2"}
	fake.Durations["s1"] = time.Minute
	fake.Durations["s2"] = time.Minute
	fake.Titles["s1"] = "Artist - Song (Official Video)"
	fake.Titles["s2"] = "Artist - Song (Official Video)"
	fake.FileName = youtube.DefaultFileName

	run := batchRun(t, 2, true, "Artist")
	m := NewManager(fake, fastSettings(), nil)
	if err := m.Initialize(context.Background(), run); err != nil {
		t.Fatal(err)
	}
	report, err := m.StartDownloads(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if report.Downloaded != 2 || len(report.Outputs) != 2 {
		t.Fatalf("report = %+v", report)
	}
	if report.Outputs[0] == report.Outputs[1] {
		t.Errorf("both videos written to %s", report.Outputs[0])
	}
	if got := listDir(t, run.DestDir); len(got) != 2 {
		t.Errorf("directory = %v, want two files", got)
	}
	for i, id := range []string{"s1", "s2"} {
		if got := readFile(t, report.Outputs[i]); got != id {
			t.Errorf("%s = %q, want %q", report.Outputs[i], got, id)
		}
	}
}

func TestManager_SameVideoForTwoArtistsDownloadedOnce(t *testing.T) {
	fake := testutil.NewFakePlatform()
	fake.Results["Miles+Davis"] = []string{"shared"}
	fake.Results["John+Coltrane"] = []string{"shared", "c1"}
	fake.Durations["shared"] = time.Minute
	fake.Durations["c1"] = time.Minute

	run := batchRun(t, 2, true, "Miles Davis", "John Coltrane")
	m := NewManager(fake, fastSettings(), nil)
	if err := m.Initialize(context.Background(), run); err != nil {
		t.Fatal(err)
	}

	var refs []string
	for _, item := range m.Items() {
		refs = append(refs, item.VideoRef)
	}
	if !reflect.DeepEqual(refs, []string{"shared", "c1"}) {
		t.Fatalf("items = %v", refs)
	}

	report, err := m.StartDownloads(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(run.DestDir, "shared.mp3"), filepath.Join(run.DestDir, "c1.mp3")}
	if !reflect.DeepEqual(report.Outputs, want) || report.Planned != 2 {
		t.Errorf("report = %+v", report)
	}
	if n := fake.DownloadCount("shared"); n != 1 {
		t.Errorf("shared downloaded %d times", n)
	}
}

func TestManager_OutputsNeverRepeatAPath(t *testing.T) {
	fake := testutil.NewFakePlatform()
	fake.Results["Artist"] = []string{"v1", "v2"}
	fake.Durations["v1"] = time.Minute
	fake.Durations["v2"] = time.Minute
	fake.FileName = func(*platform.Stream) string { return "same.mp4" }

	settings := fastSettings()
	settings.MaxConcurrentDownloads = 1
	settings.CreatePlaylist = true
	settings.PlaylistFormat = "m3u"

	var warnings []string
	run := batchRun(t, 2, true, "Artist")
	m := NewManager(fake, settings, func(ev model.ProgressEvent) {
		if ev.Level == model.LevelWarning {
			warnings = append(warnings, ev.Message)
		}
	})
	if err := m.Initialize(context.Background(), run); err != nil {
		t.Fatal(err)
	}
	report, err := m.StartDownloads(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(report.Outputs, []string{filepath.Join(run.DestDir, "same.mp3")}) {
		t.Errorf("outputs = %v", report.Outputs)
	}
	if len(warnings) == 0 {
		t.Error("expected a warning for the overwritten file")
	}
	want := "#EXTM3U\n#EXTINF:60,Video v1\nsame.mp3\n"
	if got := readFile(t, report.Playlist); got != want {
		t.Errorf("playlist content:\n%s\nwant:\n%s", got, want)
	}
}

func TestManager_BatchPermissionDeniedAborts(t *testing.T) {
	fake := testutil.NewFakePlatform()
	fake.Results["Artist"] = []string{"v1", "v2", "v3"}
	for _, id := range []string{"v1", "v2", "v3"} {
		fake.Durations[id] = time.Minute
	}
	fake.DownloadHook = func(ctx context.Context, id string) error {
		return &fs.PathError{Op: "open", Path: id, Err: fs.ErrPermission}
	}

	run := batchRun(t, 3, true, "Artist")
	m := NewManager(fake, fastSettings(), nil)
	if err := m.Initialize(context.Background(), run); err != nil {
		t.Fatal(err)
	}

	_, err := m.StartDownloads(context.Background())
	if !model.IsFatal(err) {
		t.Fatalf("expected a fatal error, got %v", err)
	}
	if m.State() != StateFailedFatal {
		t.Errorf("state = %v, want failed", m.State())
	}
}

func TestManager_HungDownloadTimesOut(t *testing.T) {
	fake := testutil.NewFakePlatform()
	fake.Results["Artist"] = []string{"v1", "v2", "v3"}
	for _, id := range []string{"v1", "v2", "v3"} {
		fake.Durations[id] = time.Minute
	}
	fake.DownloadHook = func(ctx context.Context, id string) error {
		if id != "v2" {
			return nil
		}
		<-ctx.Done()
		return ctx.Err()
	}

	settings := fastSettings()
	settings.DownloadTimeoutSeconds = 1
	settings.DownloadMaxRetries = 1

	run := batchRun(t, 3, true, "Artist")
	m := NewManager(fake, settings, nil)
	if err := m.Initialize(context.Background(), run); err != nil {
		t.Fatal(err)
	}
	report, err := m.StartDownloads(context.Background())
	if err != nil {
		t.Fatalf("a timed out item must not fail the run: %v", err)
	}

	if report.Downloaded != 2 || report.Failed != 1 {
		t.Fatalf("report = %+v", report)
	}
	if !errors.Is(report.Failures[0], context.DeadlineExceeded) {
		t.Errorf("failure = %v, want deadline exceeded", report.Failures[0])
	}
	if got := listDir(t, run.DestDir); !reflect.DeepEqual(got, []string{"v1.mp3", "v3.mp3"}) {
		t.Errorf("directory = %v", got)
	}
}

func TestManager_VideoModeKeepsExtension(t *testing.T) {
	fake := testutil.NewFakePlatform()
	fake.Results["Artist"] = []string{"v1"}
	fake.Durations["v1"] = time.Minute

	run := batchRun(t, 1, false, "Artist")
	m := NewManager(fake, fastSettings(), nil)
	if err := m.Initialize(context.Background(), run); err != nil {
		t.Fatal(err)
	}
	report, err := m.StartDownloads(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if report.Outputs[0] != filepath.Join(run.DestDir, "v1.mp4") {
		t.Errorf("output = %q", report.Outputs[0])
	}
}

func TestManager_Playlist(t *testing.T) {
	fake := testutil.NewFakePlatform()
	fake.Results["Artist"] = []string{"v1", "v2"}
	fake.Durations["v1"] = 2 * time.Minute
	fake.Durations["v2"] = 3 * time.Minute

	settings := fastSettings()
	settings.CreatePlaylist = true
	settings.PlaylistFormat = "m3u"

	run := batchRun(t, 2, true, "Artist")
	m := NewManager(fake, settings, nil)
	if err := m.Initialize(context.Background(), run); err != nil {
		t.Fatal(err)
	}
	report, err := m.StartDownloads(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if report.Playlist != filepath.Join(run.DestDir, "playlist.m3u") {
		t.Fatalf("playlist = %q", report.Playlist)
	}
	want := "#EXTM3U\n#EXTINF:120,Video v1\nv1.mp3\n#EXTINF:180,Video v2\nv2.mp3\n"
	if got := readFile(t, report.Playlist); got != want {
		t.Errorf("playlist content:\n%s\nwant:\n%s", got, want)
	}
}

func TestManager_SingleWritesExplicitFile(t *testing.T) {
	fake := testutil.NewFakePlatform()
	dest := filepath.Join(t.TempDir(), "nested", "song.mp3")

	run, err := config.NewSingleRun("https://www.youtube.com/watch?v=abcdefghijk", dest, true)
	if err != nil {
		t.Fatal(err)
	}

	m := NewManager(fake, fastSettings(), nil)
	if err := m.Initialize(context.Background(), run); err != nil {
		t.Fatal(err)
	}
	report, err := m.StartDownloads(context.Background())
	if err != nil {
		t.Fatalf("StartDownloads failed: %v", err)
	}

	if len(report.Outputs) != 1 || report.Outputs[0] != dest {
		t.Errorf("outputs = %v, want [%s]", report.Outputs, dest)
	}
	if got := fake.ResolveCalls(); !reflect.DeepEqual(got, []string{"abcdefghijk"}) {
		t.Errorf("resolve calls = %v", got)
	}
	if len(fake.SearchCalls()) != 0 || len(fake.DurationCalls()) != 0 {
		t.Error("single runs must not search or filter")
	}
}

func TestManager_SingleFailureIsFatal(t *testing.T) {
	fake := testutil.NewFakePlatform()
	fake.DownloadErrors["abcdefghijk"] = errors.New("HTTP 403")

	run, err := config.NewSingleRun("https://www.youtube.com/watch?v=abcdefghijk", filepath.Join(t.TempDir(), "x.mp4"), false)
	if err != nil {
		t.Fatal(err)
	}

	m := NewManager(fake, fastSettings(), nil)
	if err := m.Initialize(context.Background(), run); err != nil {
		t.Fatal(err)
	}
	if _, err := m.StartDownloads(context.Background()); err == nil {
		t.Fatal("single run must fail when the download fails")
	}
	if m.State() != StateFailedFatal {
		t.Errorf("state = %v, want failed", m.State())
	}
}

func TestManager_Cancellation(t *testing.T) {
	fake := testutil.NewFakePlatform()
	fake.Results["Artist"] = []string{"v1", "v2"}
	fake.Durations["v1"] = time.Minute
	fake.Durations["v2"] = time.Minute

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fake.DownloadHook = func(hctx context.Context, id string) error {
		cancel()
		<-hctx.Done()
		return hctx.Err()
	}

	run := batchRun(t, 2, true, "Artist")
	m := NewManager(fake, fastSettings(), nil)
	if err := m.Initialize(context.Background(), run); err != nil {
		t.Fatal(err)
	}

	_, err := m.StartDownloads(ctx)
	if !IsCancelled(err) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if entries, _ := os.ReadDir(run.DestDir); len(entries) != 0 {
		t.Errorf("no file should be left after cancellation, got %d", len(entries))
	}
}

func TestManager_MissingSearchFile(t *testing.T) {
	fake := testutil.NewFakePlatform()
	m := NewManager(fake, fastSettings(), nil)

	run := model.RunConfig{Kind: model.RunBatch, SearchFile: filepath.Join(t.TempDir(), "none.txt"), DestDir: t.TempDir(), QuotaPerArtist: 1}
	err := m.Initialize(context.Background(), run)
	if !model.IsFatal(err) {
		t.Fatalf("expected fatal error, got %v", err)
	}
	if m.State() != StateFailedFatal || fake.TotalCalls() != 0 {
		t.Errorf("state = %v, calls = %d", m.State(), fake.TotalCalls())
	}
}

func TestManager_HarvestingStateDuringSearch(t *testing.T) {
	fake := testutil.NewFakePlatform()
	fake.Results["Artist"] = []string{"v1"}
	fake.Durations["v1"] = time.Minute

	var m *Manager
	var seen atomic.Int32
	fake.SearchHook = func(ctx context.Context, query string) error {
		seen.Store(int32(m.State()))
		return nil
	}

	run := batchRun(t, 1, true, "Artist")
	m = NewManager(fake, fastSettings(), nil)
	if err := m.Initialize(context.Background(), run); err != nil {
		t.Fatal(err)
	}
	if State(seen.Load()) != StateHarvesting {
		t.Errorf("state during search = %v, want harvesting", State(seen.Load()))
	}
}
