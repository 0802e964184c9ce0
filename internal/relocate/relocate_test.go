package relocate

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestRelocate_FlattensAndSanitizes(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "target")

	writeFile(t, filepath.Join(src, "Artist", "Album", "01 First.m4a"), "a")
	writeFile(t, filepath.Join(src, "Artist", "Album", "1-02 Second.flac"), "b")
	writeFile(t, filepath.Join(src, "cover.jpg"), "img")

	moved := Set{}
	res := Relocate(src, dst, moved, false)

	assert.ElementsMatch(t, []string{"First.m4a", "Second.flac"}, res.Audio)
	assert.Len(t, res.Placed, 2)
	assert.Equal(t, "a", readFile(t, filepath.Join(dst, "First.m4a")))
	assert.Equal(t, "b", readFile(t, filepath.Join(dst, "Second.flac")))
	assert.FileExists(t, filepath.Join(src, "cover.jpg"))
	assert.Len(t, moved, 2)
}

func TestRelocate_CollisionsGetSuffixes(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()

	writeFile(t, filepath.Join(src, "a", "01 Song.m4a"), "one")
	writeFile(t, filepath.Join(src, "b", "02 Song.m4a"), "two")
	writeFile(t, filepath.Join(src, "c", "Song.m4a"), "three")

	res := Relocate(src, dst, Set{}, false)

	require.Equal(t, []string{"Song.m4a", "Song_1.m4a", "Song_2.m4a"}, res.Audio)
	assert.Equal(t, "one", readFile(t, filepath.Join(dst, "Song.m4a")))
	assert.Equal(t, "two", readFile(t, filepath.Join(dst, "Song_1.m4a")))
	assert.Equal(t, "three", readFile(t, filepath.Join(dst, "Song_2.m4a")))
}

func TestRelocate_DoesNotOverwriteExistingTarget(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()

	writeFile(t, filepath.Join(dst, "Song.mp3"), "old")
	writeFile(t, filepath.Join(src, "03 Song.mp3"), "new")

	res := Relocate(src, dst, Set{}, false)

	assert.Equal(t, []string{"Song_1.mp3"}, res.Audio)
	assert.Equal(t, "old", readFile(t, filepath.Join(dst, "Song.mp3")))
	assert.Equal(t, "new", readFile(t, filepath.Join(dst, "Song_1.mp3")))
}

func TestRelocate_SecondPassIsEmpty(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	writeFile(t, filepath.Join(src, "x", "01 One.opus"), "1")

	moved := Set{}
	first := Relocate(src, dst, moved, false)
	second := Relocate(src, dst, moved, false)

	assert.Len(t, first.Audio, 1)
	assert.Empty(t, second.Audio)
	assert.Empty(t, second.Placed)
}

func TestRelocate_SkipsRecordedPaths(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	path := filepath.Join(src, "Song.aac")
	writeFile(t, path, "x")

	moved := Set{}
	moved.Add(path)
	res := Relocate(src, dst, moved, false)

	assert.Empty(t, res.Audio)
	assert.FileExists(t, path)
}

func TestRelocate_Sidecars(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	writeFile(t, filepath.Join(src, "01 Song.m4a"), "audio")
	writeFile(t, filepath.Join(src, "01 Song.lrc"), "[00:01.00]la")

	t.Run("excluded", func(t *testing.T) {
		res := Relocate(src, dst, Set{}, false)
		assert.Equal(t, []string{"Song.m4a"}, res.Audio)
		assert.NoFileExists(t, filepath.Join(dst, "Song.lrc"))
	})

	t.Run("included but not counted", func(t *testing.T) {
		res := Relocate(src, dst, Set{}, true)
		assert.Empty(t, res.Audio)
		assert.Equal(t, []string{filepath.Join(dst, "Song.lrc")}, res.Placed)
		assert.FileExists(t, filepath.Join(dst, "Song.lrc"))
	})
}

func TestRelocate_FailedMoveStaysEligible(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("requires POSIX permissions as a non-root user")
	}
	src := t.TempDir()
	base := t.TempDir()
	dst := filepath.Join(base, "locked")
	require.NoError(t, os.Mkdir(dst, 0o500))
	t.Cleanup(func() { _ = os.Chmod(dst, 0o755) })

	path := filepath.Join(src, "Song.m4a")
	writeFile(t, path, "x")

	moved := Set{}
	res := Relocate(src, dst, moved, false)
	assert.Empty(t, res.Audio)
	assert.False(t, moved.Has(path))
	assert.FileExists(t, path)

	require.NoError(t, os.Chmod(dst, 0o755))
	res = Relocate(src, dst, moved, false)
	assert.Equal(t, []string{"Song.m4a"}, res.Audio)
	assert.True(t, moved.Has(path))
}

func TestRelocate_MissingSource(t *testing.T) {
	res := Relocate(filepath.Join(t.TempDir(), "nope"), t.TempDir(), Set{}, true)
	assert.Empty(t, res.Audio)
	assert.Empty(t, res.Placed)
}

func TestFlattenAndFinalize(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, ".scratch")
	writeFile(t, filepath.Join(src, "deep", "er", "01 A.m4a"), "a")
	writeFile(t, filepath.Join(src, "02 B.m4a"), "b")
	writeFile(t, filepath.Join(src, "02 B.lrc"), "lyrics")

	n := FlattenAndFinalize(src, base, "Road Trip", true)

	assert.Equal(t, 2, n)
	assert.NoDirExists(t, src)
	assert.FileExists(t, filepath.Join(base, "Road Trip", "A.m4a"))
	assert.FileExists(t, filepath.Join(base, "Road Trip", "B.m4a"))
	assert.FileExists(t, filepath.Join(base, "Road Trip", "B.lrc"))
}

func TestFlattenAndFinalize_IgnoresPreviousPasses(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, ".scratch")
	path := filepath.Join(src, "A.m4a")
	writeFile(t, path, "a")

	moved := Set{}
	moved.Add(path)
	n := FlattenAndFinalize(src, base, "", false)

	assert.Equal(t, 1, n)
	assert.FileExists(t, filepath.Join(base, "A.m4a"))
	assert.NoDirExists(t, src)
}

func TestFlattenAndFinalize_DiscardsSidecarsWhenExcluded(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, ".scratch")
	writeFile(t, filepath.Join(src, "A.lrc"), "x")

	n := FlattenAndFinalize(src, base, "", false)

	assert.Zero(t, n)
	assert.NoFileExists(t, filepath.Join(base, "A.lrc"))
	assert.NoDirExists(t, src)
}

func TestFlattenAndFinalize_MissingSource(t *testing.T) {
	base := t.TempDir()
	assert.Zero(t, FlattenAndFinalize(filepath.Join(base, "missing"), base, "", true))
}

func TestMoveAll(t *testing.T) {
	base := t.TempDir()
	dst := filepath.Join(base, "Mix")
	a := filepath.Join(base, "A.m4a")
	b := filepath.Join(base, "A.lrc")
	writeFile(t, a, "a")
	writeFile(t, b, "b")
	writeFile(t, filepath.Join(dst, "A.m4a"), "existing")

	got := MoveAll([]string{a, b, filepath.Join(base, "gone.m4a")}, dst)

	assert.Equal(t, []string{
		filepath.Join(dst, "A_1.m4a"),
		filepath.Join(dst, "A.lrc"),
		filepath.Join(base, "gone.m4a"),
	}, got)
	assert.Equal(t, "a", readFile(t, filepath.Join(dst, "A_1.m4a")))
	assert.NoFileExists(t, a)
}

func TestMoveAll_AlreadyInTarget(t *testing.T) {
	dst := t.TempDir()
	a := filepath.Join(dst, "A.m4a")
	writeFile(t, a, "a")

	assert.Equal(t, []string{a}, MoveAll([]string{a}, dst))
	assert.FileExists(t, a)
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "A.m4a"), "12345")
	writeFile(t, filepath.Join(dir, "B.FLAC"), "123")
	writeFile(t, filepath.Join(dir, "A.lrc"), "x")
	writeFile(t, filepath.Join(dir, "notes.txt"), "x")
	writeFile(t, filepath.Join(dir, "sub", "C.mp3"), "x")

	inv := Scan(dir)

	assert.Len(t, inv.Audio, 2)
	assert.Len(t, inv.Sidecars, 1)
	assert.Equal(t, int64(8), inv.Bytes)
	assert.Equal(t, 2, CountAudio(dir))
	assert.Zero(t, CountAudio(filepath.Join(dir, "missing")))
}

func TestIsAudio(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"a.m4a", true},
		{"a.FLAC", true},
		{"a.mp3", true},
		{"a.opus", true},
		{"a.aac", true},
		{"a.lrc", false},
		{"a.jpg", false},
		{"m4a", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAudio(tt.path))
		})
	}
}
