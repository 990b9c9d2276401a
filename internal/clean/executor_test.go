package clean

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JChrist/mvn-cleaner/internal/retention"
	"github.com/JChrist/mvn-cleaner/internal/version"
)

func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o644))
}

// scenario builds lib/1.0.0, lib/1.2.0 and lib/1.1.0, each with one 100 byte
// file, and the matching plan.
func scenario(t *testing.T) (string, *retention.Plan) {
	t.Helper()
	lib := filepath.Join(t.TempDir(), "libA")
	tr := retention.NewTracker()
	for _, v := range []string{"1.0.0", "1.2.0", "1.1.0"} {
		writeFile(t, filepath.Join(lib, v, "libA-"+v+".jar"), 100)
		tr.Observe(lib, version.MustParse(v))
	}
	return lib, tr.Plan()
}

func TestExecuteDryRunLeavesFilesystemUntouched(t *testing.T) {
	lib, plan := scenario(t)

	res, err := NewExecutor(WithDryRun(true)).Execute(context.Background(), plan)
	require.NoError(t, err)

	assert.True(t, res.DryRun)
	assert.Empty(t, res.Failures)
	assert.Equal(t, int64(200), res.Bytes-res.DirBytes)
	assert.Equal(t, 2, res.Files)
	assert.Equal(t, 2, res.Dirs)
	assert.Equal(t, 2, res.Versions)
	assert.Equal(t, res.Bytes, res.LibraryBytes(lib))

	for _, v := range []string{"1.0.0", "1.1.0", "1.2.0"} {
		assert.FileExists(t, filepath.Join(lib, v, "libA-"+v+".jar"))
	}
}

func TestExecuteRemovesSupersededVersions(t *testing.T) {
	lib, plan := scenario(t)

	dry, err := NewExecutor(WithDryRun(true)).Execute(context.Background(), plan)
	require.NoError(t, err)

	res, err := NewExecutor().Execute(context.Background(), plan)
	require.NoError(t, err)

	assert.False(t, res.DryRun)
	assert.Empty(t, res.Failures)
	assert.Equal(t, dry.Bytes, res.Bytes, "dry run must report what a real run removes")
	assert.Equal(t, int64(200), res.Bytes-res.DirBytes)

	assert.NoDirExists(t, filepath.Join(lib, "1.0.0"))
	assert.NoDirExists(t, filepath.Join(lib, "1.1.0"))
	assert.FileExists(t, filepath.Join(lib, "1.2.0", "libA-1.2.0.jar"))
}

// sizedInfo overrides the size reported for an entry.
type sizedInfo struct {
	fs.FileInfo
	size int64
}

func (s sizedInfo) Size() int64 { return s.size }

// shrinkingLstat reports a directory's size as a function of what is still
// inside it, the way tmpfs and btrfs do.
func shrinkingLstat(p string) (fs.FileInfo, error) {
	info, err := os.Lstat(p)
	if err != nil || !info.IsDir() {
		return info, err
	}
	entries, err := os.ReadDir(p)
	if err != nil {
		return nil, err
	}
	return sizedInfo{FileInfo: info, size: int64(40 + 20*len(entries))}, nil
}

func TestExecuteDryRunMatchesRealRunWhenDirectoriesShrink(t *testing.T) {
	lib := filepath.Join(t.TempDir(), "lib")
	tr := retention.NewTracker()
	for _, v := range []string{"1.0", "2.0", "3.0"} {
		for i := range 50 {
			writeFile(t, filepath.Join(lib, v, fmt.Sprintf("f%02d.jar", i)), 10)
		}
		tr.Observe(lib, version.MustParse(v))
	}
	plan := tr.Plan()

	dryExec := NewExecutor(WithDryRun(true))
	dryExec.lstat = shrinkingLstat
	dry, err := dryExec.Execute(context.Background(), plan)
	require.NoError(t, err)

	realExec := NewExecutor()
	realExec.lstat = shrinkingLstat
	res, err := realExec.Execute(context.Background(), plan)
	require.NoError(t, err)
	require.Empty(t, res.Failures)

	assert.Equal(t, dry.Bytes, res.Bytes)
	assert.Equal(t, dry.DirBytes, res.DirBytes)
	assert.Equal(t, int64(2*(40+20*50)), res.DirBytes)
	assert.Equal(t, int64(1000), res.FileBytes())
	assert.NoDirExists(t, filepath.Join(lib, "1.0"))
	assert.NoDirExists(t, filepath.Join(lib, "2.0"))
	assert.DirExists(t, filepath.Join(lib, "3.0"))
}

func TestExecuteVisitsDescendantsFirst(t *testing.T) {
	lib := filepath.Join(t.TempDir(), "lib")
	writeFile(t, filepath.Join(lib, "1.0", "a.jar"), 3)
	writeFile(t, filepath.Join(lib, "1.0", "sub", "deep", "b.pom"), 5)
	writeFile(t, filepath.Join(lib, "1.0", "sub", "c.sha1"), 7)
	writeFile(t, filepath.Join(lib, "1.0-x", "d.jar"), 11)
	writeFile(t, filepath.Join(lib, "2.0", "e.jar"), 1)

	tr := retention.NewTracker()
	for _, v := range []string{"1.0", "1.0-x", "2.0"} {
		tr.Observe(lib, version.MustParse(v))
	}

	var visited []string
	hook := func(path string, size int64, isDir bool) {
		visited = append(visited, path)
	}
	res, err := NewExecutor(WithEntryHook(hook)).Execute(context.Background(), tr.Plan())
	require.NoError(t, err)
	require.Empty(t, res.Failures)

	for i, p := range visited {
		for _, later := range visited[i+1:] {
			assert.False(t, strings.HasPrefix(later, p+string(filepath.Separator)),
				"%s visited after its ancestor %s", later, p)
		}
	}
	assert.Equal(t, int64(26), res.Bytes-res.DirBytes)
	assert.Equal(t, 4, res.Files)
	assert.NoDirExists(t, filepath.Join(lib, "1.0"))
	assert.NoDirExists(t, filepath.Join(lib, "1.0-x"))
	assert.DirExists(t, filepath.Join(lib, "2.0"))
}

func TestExecuteContinuesAfterFailure(t *testing.T) {
	lib, plan := scenario(t)
	blocked := filepath.Join(lib, "1.0.0", "libA-1.0.0.jar")
	errDenied := errors.New("permission denied")

	e := NewExecutor()
	e.remove = func(p string) error {
		if p == blocked {
			return errDenied
		}
		return os.Remove(p)
	}

	res, err := e.Execute(context.Background(), plan)
	require.NoError(t, err)

	// The blocked file fails, and so does its now non-empty parent.
	require.Len(t, res.Failures, 2)
	assert.Equal(t, blocked, res.Failures[0].Path)
	assert.Equal(t, OpDelete, res.Failures[0].Op)
	assert.ErrorIs(t, res.Failures[0], errDenied)
	assert.Equal(t, filepath.Join(lib, "1.0.0"), res.Failures[1].Path)

	assert.FileExists(t, blocked)
	assert.NoDirExists(t, filepath.Join(lib, "1.1.0"))
	assert.Equal(t, int64(200), res.Bytes-res.DirBytes)
}

func TestExecuteStatFailureSkipsEntry(t *testing.T) {
	lib, plan := scenario(t)
	broken := filepath.Join(lib, "1.1.0", "libA-1.1.0.jar")

	e := NewExecutor(WithDryRun(true))
	e.lstat = func(p string) (os.FileInfo, error) {
		if p == broken {
			return nil, errors.New("io error")
		}
		return os.Lstat(p)
	}

	res, err := e.Execute(context.Background(), plan)
	require.NoError(t, err)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, OpStat, res.Failures[0].Op)
	assert.Equal(t, int64(100), res.Bytes-res.DirBytes)
}

func TestExecuteMissingTargetIsNoop(t *testing.T) {
	lib, plan := scenario(t)
	require.NoError(t, os.RemoveAll(filepath.Join(lib, "1.0.0")))
	require.NoError(t, os.RemoveAll(filepath.Join(lib, "1.1.0")))

	res, err := NewExecutor().Execute(context.Background(), plan)
	require.NoError(t, err)
	assert.Empty(t, res.Failures)
	assert.Zero(t, res.Bytes)
	assert.Equal(t, 2, res.Versions)
}

func TestExecuteRefusesTargetsOutsideLibrary(t *testing.T) {
	root := t.TempDir()
	lib := filepath.Join(root, "g", "lib")
	writeFile(t, filepath.Join(lib, "2.0", "lib.jar"), 1)
	writeFile(t, filepath.Join(root, "keep.txt"), 1)

	tr := retention.NewTracker()
	tr.Observe(lib, version.MustParse("2.0"))
	tr.Observe(lib, version.MustParse("1/../.."))

	res, err := NewExecutor().Execute(context.Background(), tr.Plan())
	require.NoError(t, err)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, OpResolve, res.Failures[0].Op)
	assert.ErrorIs(t, res.Failures[0], ErrOutsideLibrary)
	assert.Zero(t, res.Versions)
	assert.FileExists(t, filepath.Join(root, "keep.txt"))
	assert.FileExists(t, filepath.Join(lib, "2.0", "lib.jar"))
}

func TestExecuteCancelled(t *testing.T) {
	lib, plan := scenario(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := NewExecutor().Execute(ctx, plan)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)
	assert.Zero(t, res.Versions)
	assert.DirExists(t, filepath.Join(lib, "1.0.0"))
}

func TestResultUnits(t *testing.T) {
	r := &Result{Bytes: 5*1024*1024 + 1536}
	assert.Equal(t, int64(5*1024+1), r.KB())
	assert.Equal(t, int64(5), r.MB())
}

func TestEmptyPlan(t *testing.T) {
	res, err := NewExecutor().Execute(context.Background(), retention.NewTracker().Plan())
	require.NoError(t, err)
	assert.Zero(t, res.Bytes)
	assert.Empty(t, res.Failures)
}
