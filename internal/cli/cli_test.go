package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/bibliotheca/internal/stats"
	"github.com/mesh-intelligence/bibliotheca/pkg/types"
)

// testEnv runs biblio commands in-process against temporary directories.
type testEnv struct {
	t         *testing.T
	configDir string
	dataDir   string
	searcher  *fakeSearcher
}

type result struct {
	stdout string
	stderr string
	code   int
}

type fakeSearcher struct {
	body    string
	err     error
	queries []string
}

func (f *fakeSearcher) SearchRaw(ctx context.Context, query string, limit int) ([]byte, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	return []byte(f.body), nil
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	return &testEnv{
		t:         t,
		configDir: filepath.Join(dir, "config"),
		dataDir:   filepath.Join(dir, "data"),
		searcher:  &fakeSearcher{},
	}
}

func (e *testEnv) run(args ...string) result {
	e.t.Helper()
	a := &app{
		now:      func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) },
		searcher: e.searcher,
	}
	root := newRootCmd(a)
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--config-dir", e.configDir, "--data-dir", e.dataDir}, args...))
	code := run(context.Background(), root, &stderr)
	return result{stdout: stdout.String(), stderr: stderr.String(), code: code}
}

func (e *testEnv) mustRun(args ...string) result {
	e.t.Helper()
	r := e.run(args...)
	require.Equal(e.t, exitSuccess, r.code, "biblio %v failed: %s", args, r.stderr)
	return r
}

func decode[T any](t *testing.T, s string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(s), &v), "output: %s", s)
	return v
}

func TestInitCreatesConfigAndSeeds(t *testing.T) {
	env := newTestEnv(t)
	r := env.mustRun("init")

	assert.Contains(t, r.stdout, "biblio initialized successfully")
	assert.Contains(t, r.stdout, "2 books, 1 authors")
	assert.FileExists(t, filepath.Join(env.configDir, "config.yaml"))
	assert.FileExists(t, filepath.Join(env.dataDir, "biblioteca_books.json"))
	assert.FileExists(t, filepath.Join(env.dataDir, "biblioteca_authors.json"))

	cfg, err := os.ReadFile(filepath.Join(env.configDir, "config.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(cfg), "backend: file")
	assert.Contains(t, string(cfg), "locale: fr")
}

func TestVersion(t *testing.T) {
	env := newTestEnv(t)
	r := env.mustRun("version")
	assert.Contains(t, r.stdout, "biblio v"+Version)
	assert.NoDirExists(t, env.configDir, "version must not touch the config dir")
}

func TestBookLifecycle(t *testing.T) {
	env := newTestEnv(t)

	added := decode[types.Book](t, env.mustRun("--json", "book", "add",
		"--title", "Dune", "--author", "Frank Herbert", "--year", "1965", "--genre", "Science-Fiction").stdout)
	assert.NotEmpty(t, added.ID)
	assert.Equal(t, "Dune", added.Title)

	shown := decode[types.Book](t, env.mustRun("--json", "book", "show", added.ID).stdout)
	assert.Equal(t, added, shown)

	edited := decode[types.Book](t, env.mustRun("--json", "book", "edit", added.ID, "--year", "1966").stdout)
	assert.Equal(t, added.ID, edited.ID)
	assert.Equal(t, "1966", edited.Year)
	assert.Equal(t, "Dune", edited.Title, "unchanged fields are kept")

	books := decode[[]types.Book](t, env.mustRun("--json", "book", "list").stdout)
	require.Len(t, books, 3)
	assert.Equal(t, added.ID, books[2].ID, "edit keeps position")

	env.mustRun("book", "delete", added.ID)
	books = decode[[]types.Book](t, env.mustRun("--json", "book", "list").stdout)
	assert.Len(t, books, 2)
}

func TestBookAddEndToEnd1984(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("init")
	env.mustRun("book", "add", "--title", "1984", "--author", "George Orwell", "--year", "1949")

	data, err := os.ReadFile(filepath.Join(env.dataDir, "biblioteca_books.json"))
	require.NoError(t, err)
	var stored []types.Book
	require.NoError(t, json.Unmarshal(data, &stored))
	require.Len(t, stored, 3)
	assert.Equal(t, "1984", stored[2].Title)
	assert.Equal(t, "1949", stored[2].Year)
}

func TestBookListSearchAndSort(t *testing.T) {
	env := newTestEnv(t)

	found := decode[[]types.Book](t, env.mustRun("--json", "book", "list", "--search", "ORWELL").stdout)
	require.Len(t, found, 1)
	assert.Equal(t, "1984", found[0].Title)

	sorted := decode[[]types.Book](t, env.mustRun("--json", "book", "list", "--sort", "year-desc").stdout)
	require.Len(t, sorted, 2)
	assert.Equal(t, "1984", sorted[0].Title)

	stored := decode[[]types.Book](t, env.mustRun("--json", "book", "list").stdout)
	assert.Equal(t, "Le Petit Prince", stored[0].Title, "list --sort must not reorder storage")

	env.mustRun("book", "sort", "title-asc")
	stored = decode[[]types.Book](t, env.mustRun("--json", "book", "list").stdout)
	assert.Equal(t, "1984", stored[0].Title)
}

func TestUserErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing title", []string{"book", "add"}},
		{"unknown book", []string{"book", "show", "nope"}},
		{"delete unknown book", []string{"book", "delete", "nope"}},
		{"edit unknown book", []string{"book", "edit", "nope", "--title", "x"}},
		{"bad sort key", []string{"book", "sort", "popularity"}},
		{"bad list sort key", []string{"book", "list", "--sort", "popularity"}},
		{"missing author name", []string{"author", "add"}},
		{"delete unknown author", []string{"author", "delete", "nope"}},
		{"bad import index", []string{"external", "import", "dune", "zero"}},
		{"wrong arg count", []string{"book", "show"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			r := env.run(tt.args...)
			assert.Equal(t, exitUserError, r.code, r.stderr)
			assert.Contains(t, r.stderr, "biblio:")
		})
	}
}

func TestAuthorCommands(t *testing.T) {
	env := newTestEnv(t)

	au := decode[types.Author](t, env.mustRun("--json", "author", "add",
		"--name", "Albert Camus", "--nationality", "Française", "--birth-year", "1913").stdout)
	assert.Equal(t, "1913", au.BirthYear)

	authors := decode[[]types.Author](t, env.mustRun("--json", "author", "list").stdout)
	require.Len(t, authors, 2)
	assert.Equal(t, "Albert Camus", authors[1].Name)

	env.mustRun("author", "delete", au.ID)
	authors = decode[[]types.Author](t, env.mustRun("--json", "author", "list").stdout)
	assert.Len(t, authors, 1)
}

func TestBookAddWarnsOnUnregisteredAuthor(t *testing.T) {
	env := newTestEnv(t)
	r := env.mustRun("book", "add", "--title", "Dune", "--author", "Frank Herbert")
	assert.Contains(t, r.stderr, "author is not registered")
}

func TestDashboard(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("book", "add", "--title", "New", "--year", "2020", "--genre", "Roman")

	d := decode[stats.Dashboard](t, env.mustRun("--json", "dashboard").stdout)
	assert.Equal(t, 3, d.TotalBooks)
	assert.Equal(t, 1, d.TotalAuthors)
	assert.Equal(t, "Roman", d.PopularGenre)
	assert.Equal(t, 2024, d.ReferenceYear)
	require.Len(t, d.Years, 10)
	assert.Equal(t, stats.YearCount{Year: 2020, Count: 1}, d.Years[5])

	d = decode[stats.Dashboard](t, env.mustRun("--json", "dashboard", "--year", "1950").stdout)
	assert.Equal(t, 1950, d.ReferenceYear)
	assert.Equal(t, stats.YearCount{Year: 1949, Count: 1}, d.Years[8])

	r := env.mustRun("dashboard")
	assert.Contains(t, r.stdout, "Roman")
}

const duneSearch = `{"numFound": 42, "docs": [
  {"title": "Dune", "author_name": ["Frank Herbert"], "first_publish_year": 1965, "subject": ["Science fiction", "Desert"]},
  {"title": "Dune Messiah", "author_name": ["Frank Herbert"]}
]}`

func TestExternalSearch(t *testing.T) {
	env := newTestEnv(t)
	env.searcher.body = duneSearch

	r := env.mustRun("--json", "external", "search", "frank", "herbert")
	assert.Equal(t, []string{"frank herbert"}, env.searcher.queries)
	assert.Contains(t, r.stdout, `"totalFound": 42`)
	assert.Contains(t, r.stdout, `"uniqueAuthors": [`)

	r = env.mustRun("external", "search", "dune")
	assert.Contains(t, r.stdout, "Dune Messiah")
}

func TestExternalSearchFailureIsSystemError(t *testing.T) {
	env := newTestEnv(t)
	env.searcher.err = errors.New("connection refused")

	r := env.run("external", "search", "dune")
	assert.Equal(t, exitSysError, r.code)
	assert.Contains(t, r.stderr, "connection refused")
	assert.NoFileExists(t, filepath.Join(env.dataDir, "biblioteca_books.json"), "failed search must not touch the catalog")
}

func TestExternalImport(t *testing.T) {
	env := newTestEnv(t)
	env.searcher.body = duneSearch

	b := decode[types.Book](t, env.mustRun("--json", "external", "import", "dune", "1").stdout)
	assert.Equal(t, types.BookFields{
		Title:       "Dune",
		Author:      "Frank Herbert",
		Year:        "1965",
		Genre:       "Other",
		Description: "Subjects: Science fiction, Desert",
	}, b.BookFields)

	r := env.run("external", "import", "dune", "3")
	assert.Equal(t, exitUserError, r.code)

	books := decode[[]types.Book](t, env.mustRun("--json", "book", "list").stdout)
	assert.Len(t, books, 3)
}

func TestBackendFromEnvironment(t *testing.T) {
	t.Setenv("BIBLIO_BACKEND", "sqlite")
	env := newTestEnv(t)
	env.mustRun("init")
	assert.FileExists(t, filepath.Join(env.dataDir, "catalog.db"))
}

func TestUnknownBackendIsUserError(t *testing.T) {
	t.Setenv("BIBLIO_BACKEND", "cassette")
	env := newTestEnv(t)
	r := env.run("book", "list")
	assert.Equal(t, exitUserError, r.code)
}

func TestDotEnvFile(t *testing.T) {
	t.Setenv("BIBLIO_SEED", "placeholder")
	require.NoError(t, os.Unsetenv("BIBLIO_SEED"))

	env := newTestEnv(t)
	require.NoError(t, os.MkdirAll(env.configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(env.configDir, ".env"), []byte("BIBLIO_SEED=false\n"), 0o644))

	books := decode[[]types.Book](t, env.mustRun("--json", "book", "list").stdout)
	assert.Empty(t, books)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitUserError, exitCode(errors.New("plain")))
	assert.Equal(t, exitSysError, exitCode(sysError(errors.New("disk"))))
	assert.Equal(t, exitUserError, exitCode(classify("show", types.ErrNotFound)))
	assert.Equal(t, exitSysError, exitCode(classify("add", &types.PersistError{Key: "k", Err: errors.New("full")})))
}
