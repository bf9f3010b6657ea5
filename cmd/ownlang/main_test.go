package main

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/ablack13/Own-Programming-Language-Tutorial/pkg/driver"
)

func TestParseOptions(t *testing.T) {
	tests := map[string]struct {
		args []string
		want options
	}{
		"file and args": {
			args: []string{"main.own", "a", "-b"},
			want: options{file: "main.own", args: []string{"a", "-b"}},
		},
		"flag file": {
			args: []string{"-m", "--file", "main.own", "x"},
			want: options{file: "main.own", showTime: true, args: []string{"x"}},
		},
		"optimize level": {
			args: []string{"-o", "5", "main.own"},
			want: options{file: "main.own", optimize: 5, optimizeSet: true},
		},
		"optimize without level": {
			args: []string{"-o", "main.own"},
			want: options{file: "main.own", optimize: defaultOptimizeLevel, optimizeSet: true},
		},
		"optimize invalid level": {
			args: []string{"--optimize", "-3", "-a", "main.own"},
			want: options{file: "main.own", optimize: defaultOptimizeLevel, optimizeSet: true, showAST: true},
		},
		"switches": {
			args: []string{"-t", "-l", "-b", "-r", "-c", "cfg.yml"},
			want: options{showTokens: true, lint: true, beautify: true, repl: true, configPath: "cfg.yml"},
		},
		"double dash": {
			args: []string{"-f", "main.own", "--", "-x"},
			want: options{file: "main.own", args: []string{"-x"}},
		},
	}
	for name, tc := range tests {
		got, err := parseOptions(tc.args)
		if err != nil {
			t.Fatalf("%s: parseOptions returned error: %v", name, err)
		}
		if !reflect.DeepEqual(*got, tc.want) {
			t.Errorf("%s: parseOptions = %+v, want %+v", name, *got, tc.want)
		}
	}

	for _, args := range [][]string{{"--bogus"}, {"-f"}, {"-c"}} {
		if _, err := parseOptions(args); err == nil {
			t.Errorf("parseOptions(%v) should fail", args)
		}
	}
}

func TestEffectiveLevel(t *testing.T) {
	if got := (&options{}).effectiveLevel(3); got != 3 {
		t.Fatalf("configured level = %d, want 3", got)
	}
	if got := (&options{optimizeSet: true, optimize: 0}).effectiveLevel(3); got != 0 {
		t.Fatalf("flag level = %d, want 0", got)
	}
	if got := (&options{lint: true, optimizeSet: true, optimize: 4}).effectiveLevel(3); got != 0 {
		t.Fatalf("lint level = %d, want 0", got)
	}
}

func TestRunProgramWithArgs(t *testing.T) {
	file := filepath.Join(t.TempDir(), "main.own")
	writeFile(t, file, `
use "std"
echo(length(ARGS), ARGS[0])
println "done"
`)
	code, stdout, stderr := captureCLI(t, []string{file, "x", "y"})
	if code != 0 {
		t.Fatalf("exit %d (stderr: %q)", code, stderr)
	}
	if stdout != "2 x\ndone\n" {
		t.Fatalf("stdout = %q", stdout)
	}
}

func TestRunExitCodes(t *testing.T) {
	tests := map[string]struct {
		source string
		code   int
		stdout string
		stderr string
	}{
		"parse errors":  {source: "x = (1 +\nprintln 2", code: 1, stderr: "Error on line"},
		"lexical error": {source: `println "open`, code: 1, stderr: "main.own:"},
		"runtime error": {source: "println 1\nprintln missing", code: 1, stdout: "1\n", stderr: "runtime error: line 2:9: undefined variable 'missing'"},
		"stop":          {source: "println \"a\"\nstop\nprintln \"b\"", code: 0, stdout: "a\n"},
	}
	for name, tc := range tests {
		file := filepath.Join(t.TempDir(), "main.own")
		writeFile(t, file, tc.source)
		code, stdout, stderr := captureCLI(t, []string{file})
		if code != tc.code {
			t.Errorf("%s: exit %d, want %d (stderr: %q)", name, code, tc.code, stderr)
		}
		if stdout != tc.stdout {
			t.Errorf("%s: stdout = %q, want %q", name, stdout, tc.stdout)
		}
		if !strings.Contains(stderr, tc.stderr) {
			t.Errorf("%s: stderr = %q, want it to contain %q", name, stderr, tc.stderr)
		}
	}
}

func TestLintMode(t *testing.T) {
	file := filepath.Join(t.TempDir(), "main.own")
	writeFile(t, file, `
use "math"
def max(a) = a
println "should not run"
`)
	code, stdout, stderr := captureCLI(t, []string{"-l", "-o", "3", "-a", file})
	if code != 0 {
		t.Fatalf("exit %d (stderr: %q)", code, stderr)
	}
	if strings.Contains(stdout, "should not run") {
		t.Fatalf("lint mode executed the program: %q", stdout)
	}
	if !strings.Contains(stdout, "Warning on line 2:1: function 'max' replaces the native function from module 'math'") {
		t.Fatalf("stdout = %q", stdout)
	}
}

func TestLintModeSeesConfiguredModules(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, driver.ConfigFileName), "modules: [functional]")
	file := filepath.Join(root, "main.own")
	writeFile(t, file, "def reduce(a) = a")
	code, stdout, stderr := captureCLI(t, []string{"-l", file})
	if code != 0 {
		t.Fatalf("exit %d (stderr: %q)", code, stderr)
	}
	if !strings.Contains(stdout, "Warning on line 1:1: function 'reduce' replaces the native function from module 'functional'") {
		t.Fatalf("stdout = %q", stdout)
	}
}

func TestBeautify(t *testing.T) {
	file := filepath.Join(t.TempDir(), "main.own")
	writeFile(t, file, "x=1+2*3\nif x>2 println x")
	code, stdout, _ := captureCLI(t, []string{"-b", file})
	if code != 0 {
		t.Fatalf("exit %d", code)
	}
	if want := "x = (1 + (2 * 3));\nif (x > 2)\n  println x;\n"; stdout != want {
		t.Fatalf("stdout = %q, want %q", stdout, want)
	}
}

func TestShowASTWithOptimization(t *testing.T) {
	file := filepath.Join(t.TempDir(), "main.own")
	writeFile(t, file, "x = 1 + 2\nprintln x")
	code, stdout, stderr := captureCLI(t, []string{"-o", "-a", "-m", file})
	if code != 0 {
		t.Fatalf("exit %d (stderr: %q)", code, stderr)
	}
	for _, want := range []string{"x = (1 + 2);", "---- optimized ----", "x = 3;\nprintln 3;", "fixed point"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("stdout missing %q:\n%s", want, stdout)
		}
	}
	if !strings.HasSuffix(stdout, "3\n") {
		t.Errorf("program output missing: %q", stdout)
	}
	for _, want := range []string{"tokenize:", "parse:", "optimize:", "execute:", "total:"} {
		if !strings.Contains(stderr, want) {
			t.Errorf("timings missing %q:\n%s", want, stderr)
		}
	}
}

func TestShowTokens(t *testing.T) {
	file := filepath.Join(t.TempDir(), "main.own")
	writeFile(t, file, "println 1")
	code, stdout, _ := captureCLI(t, []string{"-t", file})
	if code != 0 {
		t.Fatalf("exit %d", code)
	}
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) < 3 || lines[len(lines)-1] != "1" {
		t.Fatalf("expected token lines followed by program output, got %q", stdout)
	}
}

func TestRunDefaultProgram(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	code, _, stderr := captureCLI(t, nil)
	if code != 1 || !strings.Contains(stderr, "Usage:") {
		t.Fatalf("expected usage without %s, got exit %d (stderr: %q)", defaultProgram, code, stderr)
	}

	writeFile(t, filepath.Join(dir, defaultProgram), `println "default"`)
	code, stdout, stderr := captureCLI(t, nil)
	if code != 0 || stdout != "default\n" {
		t.Fatalf("exit %d stdout %q (stderr: %q)", code, stdout, stderr)
	}
}

func TestVersion(t *testing.T) {
	code, stdout, _ := captureCLI(t, []string{"version"})
	if code != 0 || strings.TrimSpace(stdout) != cliToolVersion {
		t.Fatalf("version = %q (exit %d)", stdout, code)
	}
}

func TestConfigSuppliesMainModulesAndSearchPaths(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, driver.ConfigFileName), `
name: demo
main: src/app.own
optimize: 2
modules: [std]
search_paths: [lib]
`)
	writeFile(t, filepath.Join(root, "lib", "util.own"), `def twice(x) = x * 2`)
	writeFile(t, filepath.Join(root, "src", "app.own"), `
include "util.own"
echo("twice", twice(21))
`)
	code, stdout, stderr := captureCLI(t, []string{"-c", filepath.Join(root, driver.ConfigFileName)})
	if code != 0 {
		t.Fatalf("exit %d (stderr: %q)", code, stderr)
	}
	if stdout != "twice 42\n" {
		t.Fatalf("stdout = %q", stdout)
	}
}

func TestConfigUnknownModuleFails(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, driver.ConfigFileName), "modules: [graphics]")
	writeFile(t, filepath.Join(root, "main.own"), `println 1`)
	code, _, stderr := captureCLI(t, []string{filepath.Join(root, "main.own")})
	if code != 1 || !strings.Contains(stderr, "unknown module 'graphics'") {
		t.Fatalf("exit %d (stderr: %q)", code, stderr)
	}
}

func TestRunRequiresLockfileForDependencies(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, driver.ConfigFileName), `
dependencies:
  shared:
    path: ../shared
`)
	writeFile(t, filepath.Join(root, "main.own"), `println 1`)
	code, _, stderr := captureCLI(t, []string{filepath.Join(root, "main.own")})
	if code != 1 || !strings.Contains(stderr, "run `ownlang deps install`") {
		t.Fatalf("exit %d (stderr: %q)", code, stderr)
	}
}

func TestDependencyInstaller_PathDependency(t *testing.T) {
	root := t.TempDir()
	appDir := filepath.Join(root, "app")
	sharedDir := filepath.Join(root, "shared")
	writeFile(t, filepath.Join(sharedDir, "shared.own"), `def shared() = "shared"`)
	writeFile(t, filepath.Join(appDir, driver.ConfigFileName), `
name: app
dependencies:
  shared:
    path: ../shared
`)
	cfg, err := driver.LoadConfig(filepath.Join(appDir, driver.ConfigFileName))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	lock := driver.NewLockfile(cfg.Name, cliToolVersion)
	lock.Put(&driver.LockedPackage{Name: "stale"})
	installer := newDependencyInstaller(cfg, filepath.Join(root, "cache"))
	changed, logs, err := installer.Install(lock)
	if err != nil {
		t.Fatalf("Install returned error: %v", err)
	}
	if !changed || len(logs) != 1 {
		t.Fatalf("changed=%v logs=%v", changed, logs)
	}
	if len(lock.Packages) != 1 {
		t.Fatalf("lock packages = %#v", lock.Packages)
	}
	pkg := lock.Find("shared")
	if pkg == nil || pkg.Source != "path:"+sharedDir || pkg.Dir != sharedDir || pkg.Checksum == "" {
		t.Fatalf("shared entry = %#v", pkg)
	}

	changed, _, err = installer.Install(lock)
	if err != nil || changed {
		t.Fatalf("second Install changed=%v err=%v", changed, err)
	}
}

func TestDependencyInstaller_GitDependency(t *testing.T) {
	root := t.TempDir()
	repo := filepath.Join(root, "repo")
	writeFile(t, filepath.Join(repo, "greet.own"), `def greet(name) = "hello " + name`)
	rev := initGitRepo(t, repo)
	tagRepo(t, repo, "v1.0.0", rev)

	appDir := filepath.Join(root, "app")
	writeFile(t, filepath.Join(appDir, driver.ConfigFileName), `
name: app
dependencies:
  greeter:
    git: `+repo+`
    tag: v1.0.0
`)
	cfg, err := driver.LoadConfig(filepath.Join(appDir, driver.ConfigFileName))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	cacheDir := filepath.Join(root, "cache")
	lock := driver.NewLockfile(cfg.Name, cliToolVersion)
	changed, _, err := newDependencyInstaller(cfg, cacheDir).Install(lock)
	if err != nil {
		t.Fatalf("Install error: %v", err)
	}
	if !changed || len(lock.Packages) != 1 {
		t.Fatalf("changed=%v packages=%#v", changed, lock.Packages)
	}
	pkg := lock.Packages[0]
	if want := fmt.Sprintf("git+%s@%s", repo, rev); pkg.Source != want {
		t.Fatalf("pkg.Source = %q, want %q", pkg.Source, want)
	}
	if want := "v1.0.0@" + rev; pkg.Version != want {
		t.Fatalf("pkg.Version = %q, want %q", pkg.Version, want)
	}
	cached := filepath.Join(cacheDir, "pkg", "src", "greeter", sanitizePathSegment(pkg.Version))
	if pkg.Dir != cached {
		t.Fatalf("pkg.Dir = %q, want %q", pkg.Dir, cached)
	}
	if _, err := os.Stat(filepath.Join(cached, "greet.own")); err != nil {
		t.Fatalf("expected checked out file: %v", err)
	}
}

func TestDepsInstallAndRunWithGitInclude(t *testing.T) {
	root := t.TempDir()
	repo := filepath.Join(root, "repo")
	writeFile(t, filepath.Join(repo, "greet.own"), `def greet(name) = "hello " + name`)
	rev := initGitRepo(t, repo)

	appDir := filepath.Join(root, "app")
	writeFile(t, filepath.Join(appDir, driver.ConfigFileName), `
name: app
main: main.own
dependencies:
  greeter:
    git: `+repo+`
    rev: `+rev+`
`)
	writeFile(t, filepath.Join(appDir, "main.own"), `
include "greet.own"
println greet(ARGS[0])
`)
	t.Setenv(driver.HomeEnv, filepath.Join(root, "home"))
	chdir(t, appDir)

	code, stdout, stderr := captureCLI(t, []string{"deps", "install"})
	if code != 0 {
		t.Fatalf("deps install exit %d (stderr: %q)", code, stderr)
	}
	if !strings.Contains(stdout, "Created "+driver.LockfileName) {
		t.Fatalf("deps install stdout = %q", stdout)
	}
	lock, err := driver.LoadLockfile(filepath.Join(appDir, driver.LockfileName))
	if err != nil {
		t.Fatalf("LoadLockfile: %v", err)
	}
	if lock.Root != "app" || lock.Find("greeter") == nil {
		t.Fatalf("lockfile = %#v", lock)
	}

	code, stdout, _ = captureCLI(t, []string{"deps", "install"})
	if code != 0 || !strings.Contains(stdout, "already up to date") {
		t.Fatalf("second deps install exit %d stdout %q", code, stdout)
	}

	code, stdout, stderr = captureCLI(t, []string{"--", "world"})
	if code != 0 {
		t.Fatalf("run exit %d (stderr: %q)", code, stderr)
	}
	if stdout != "hello world\n" {
		t.Fatalf("stdout = %q", stdout)
	}
}

func TestDepsRequiresSubcommand(t *testing.T) {
	if code, _, stderr := captureCLI(t, []string{"deps"}); code != 1 || !strings.Contains(stderr, "subcommand") {
		t.Fatalf("exit %d (stderr: %q)", code, stderr)
	}
	if code, _, stderr := captureCLI(t, []string{"deps", "update"}); code != 1 || !strings.Contains(stderr, "unknown deps subcommand") {
		t.Fatalf("exit %d (stderr: %q)", code, stderr)
	}
}

func TestREPLSession(t *testing.T) {
	var out, errOut bytes.Buffer
	interp, err := newInterpreter(&out, nil, driver.NewLoader(), nil)
	if err != nil {
		t.Fatalf("newInterpreter: %v", err)
	}
	session := &replSession{interp: interp, errOut: &errOut}

	for _, line := range []string{
		"x = 1 +",
		"2",
		"println x",
		"def f() {",
		"  return x * 10",
		"}",
		"println f()",
		`s = "unterminated`,
		":reset",
		"println x + 1",
	} {
		if session.feed(line) {
			t.Fatalf("session ended early at %q", line)
		}
	}
	if out.String() != "3\n30\n4\n" {
		t.Fatalf("output = %q", out.String())
	}

	session.feed("y = (")
	if !session.pending() {
		t.Fatalf("incomplete input must stay buffered")
	}
	session.feed("")
	if session.pending() || !strings.Contains(errOut.String(), "Error on line") {
		t.Fatalf("blank line should flush diagnostics, got %q", errOut.String())
	}

	session.feed("println missing")
	if !strings.Contains(errOut.String(), "runtime error: line 1:9: undefined variable 'missing'") {
		t.Fatalf("runtime errors should be reported, got %q", errOut.String())
	}
	if !session.feed(":exit") {
		t.Fatalf(":exit should end the session")
	}
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(strings.TrimSpace(contents)+"\n"), 0o644); err != nil {
		t.Fatalf("write file %s: %v", path, err)
	}
}

func initGitRepo(t *testing.T, dir string) string {
	t.Helper()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}
	if err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == filepath.Join(dir, ".git") {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		_, err = worktree.Add(filepath.ToSlash(rel))
		return err
	}); err != nil {
		t.Fatalf("stage files: %v", err)
	}
	hash, err := worktree.Commit("init", &git.CommitOptions{
		Author: &object.Signature{
			Name:  "OwnLang CLI",
			Email: "ownlang@example.com",
			When:  time.Now(),
		},
	})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	return hash.String()
}

func tagRepo(t *testing.T, dir, tag, rev string) {
	t.Helper()
	repo, err := git.PlainOpen(dir)
	if err != nil {
		t.Fatalf("PlainOpen: %v", err)
	}
	if _, err := repo.CreateTag(tag, plumbing.NewHash(rev), nil); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}
}

func captureCLI(t *testing.T, args []string) (int, string, string) {
	t.Helper()

	stdout := os.Stdout
	stderr := os.Stderr

	rOut, wOut, err := os.Pipe()
	if err != nil {
		t.Fatalf("stdout pipe: %v", err)
	}
	rErr, wErr, err := os.Pipe()
	if err != nil {
		t.Fatalf("stderr pipe: %v", err)
	}

	os.Stdout = wOut
	os.Stderr = wErr

	code := run(args)

	if err := wOut.Close(); err != nil {
		t.Fatalf("stdout close: %v", err)
	}
	if err := wErr.Close(); err != nil {
		t.Fatalf("stderr close: %v", err)
	}

	os.Stdout = stdout
	os.Stderr = stderr

	outBytes, err := io.ReadAll(rOut)
	if err != nil {
		t.Fatalf("stdout read: %v", err)
	}
	errBytes, err := io.ReadAll(rErr)
	if err != nil {
		t.Fatalf("stderr read: %v", err)
	}
	rOut.Close()
	rErr.Close()

	return code, string(outBytes), string(errBytes)
}

func TestREPLOptimizationKeepsEarlierDefinitions(t *testing.T) {
	var out, errOut bytes.Buffer
	interp, err := newInterpreter(&out, nil, driver.NewLoader(), nil)
	if err != nil {
		t.Fatalf("newInterpreter: %v", err)
	}
	session := &replSession{interp: interp, level: 2, errOut: &errOut}
	for _, line := range []string{"def bump() { x = 5 }", "x = 1; bump(); println x"} {
		session.feed(line)
	}
	if out.String() != "5\n" || errOut.Len() != 0 {
		t.Fatalf("output = %q (errors %q)", out.String(), errOut.String())
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
