package main

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/ablack13/Own-Programming-Language-Tutorial/pkg/driver"
)

func runDeps(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "ownlang deps requires a subcommand (install)")
		return 1
	}
	switch args[0] {
	case "install":
		if len(args) > 1 {
			fmt.Fprintf(os.Stderr, "ownlang deps install does not take arguments (received %s)\n", strings.Join(args[1:], " "))
			return 1
		}
		return runDepsInstall()
	default:
		fmt.Fprintf(os.Stderr, "unknown deps subcommand %q\n", args[0])
		return 1
	}
}

func runDepsInstall() int {
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to determine working directory: %v\n", err)
		return 1
	}
	configPath, err := driver.FindConfig(cwd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "unable to locate %s: %v\n", driver.ConfigFileName, err)
		return 1
	}
	cfg, err := driver.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read configuration: %v\n", err)
		return 1
	}
	cacheDir, err := driver.Home()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to resolve %s: %v\n", driver.HomeEnv, err)
		return 1
	}

	fmt.Fprintf(os.Stdout, "Config: %s\n", cfg.Path)
	fmt.Fprintf(os.Stdout, "Dependencies: %d\n", len(cfg.Dependencies))
	fmt.Fprintf(os.Stdout, "Cache directory: %s\n", cacheDir)

	lockPath := cfg.LockfilePath()
	lock, err := driver.LoadLockfile(lockPath)
	lockCreated := false
	switch {
	case err == nil:
	case errors.Is(err, os.ErrNotExist):
		lock = driver.NewLockfile(cfg.Name, cliToolVersion)
		lockCreated = true
	default:
		fmt.Fprintf(os.Stderr, "failed to read lockfile: %v\n", err)
		return 1
	}
	lock.Root = cfg.Name
	lock.Tool = cliToolVersion

	installer := newDependencyInstaller(cfg, cacheDir)
	changed, logs, err := installer.Install(lock)
	for _, line := range logs {
		fmt.Fprintln(os.Stdout, line)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to resolve dependencies: %v\n", err)
		return 1
	}

	if changed || lockCreated {
		action := "Updated"
		if lockCreated {
			action = "Created"
		}
		if err := driver.WriteLockfile(lock, lockPath); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write lockfile: %v\n", err)
			return 1
		}
		fmt.Fprintf(os.Stdout, "%s %s: %s\n", action, driver.LockfileName, lock.Path)
	} else {
		fmt.Fprintf(os.Stdout, "%s already up to date: %s\n", driver.LockfileName, lockPath)
	}
	fmt.Fprintln(os.Stdout, "Dependencies installed.")
	return 0
}

// dependencyInstaller resolves every configured dependency to a local
// directory and records it in the lockfile.
type dependencyInstaller struct {
	cfg      *driver.Config
	cacheDir string
}

func newDependencyInstaller(cfg *driver.Config, cacheDir string) *dependencyInstaller {
	return &dependencyInstaller{cfg: cfg, cacheDir: cacheDir}
}

// Install updates lock in place and reports whether it changed. Entries for
// dependencies no longer configured are dropped.
func (d *dependencyInstaller) Install(lock *driver.Lockfile) (bool, []string, error) {
	names := d.cfg.DependencyNames()
	changed := lock.Prune(names)
	var logs []string
	for _, name := range names {
		spec := d.cfg.Dependencies[name]
		var (
			pkg *driver.LockedPackage
			err error
		)
		if spec.IsGit() {
			pkg, err = d.fetchGit(name, spec)
		} else {
			pkg, err = d.linkPath(name, spec)
		}
		if err != nil {
			return changed, logs, fmt.Errorf("dependency %q: %w", name, err)
		}
		if lock.Put(pkg) {
			changed = true
			logs = append(logs, fmt.Sprintf("Locked %s %s (%s)", pkg.Name, pkg.Version, pkg.Source))
		} else {
			logs = append(logs, fmt.Sprintf("Unchanged %s %s", pkg.Name, pkg.Version))
		}
	}
	return changed, logs, nil
}

func (d *dependencyInstaller) linkPath(name string, spec *driver.DependencySpec) (*driver.LockedPackage, error) {
	dir := d.cfg.ResolvePath(spec.Path)
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("path %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path %s is not a directory", dir)
	}
	checksum, err := dirChecksum(dir)
	if err != nil {
		return nil, fmt.Errorf("checksum %s: %w", dir, err)
	}
	return &driver.LockedPackage{
		Name:     sanitizePathSegment(name),
		Version:  "path",
		Source:   "path:" + dir,
		Checksum: checksum,
		Dir:      dir,
	}, nil
}

func (d *dependencyInstaller) fetchGit(name string, spec *driver.DependencySpec) (*driver.LockedPackage, error) {
	if d.cacheDir == "" {
		return nil, errors.New("git fetcher unavailable without a cache directory")
	}
	baseDir := filepath.Join(d.cacheDir, "pkg", "src", sanitizePathSegment(name))
	version, commit, err := ensureGitCheckout(baseDir, spec.Git, spec)
	if err != nil {
		return nil, err
	}
	checkoutDir := filepath.Join(baseDir, sanitizePathSegment(version))
	checksum, err := dirChecksum(checkoutDir)
	if err != nil {
		return nil, err
	}
	return &driver.LockedPackage{
		Name:     sanitizePathSegment(name),
		Version:  version,
		Source:   fmt.Sprintf("git+%s@%s", spec.Git, commit),
		Checksum: checksum,
		Dir:      checkoutDir,
	}, nil
}

// ensureGitCheckout clones url into a directory under baseDir named after
// the pinned revision and returns that version and the commit hash. An
// existing checkout of the same version is reused.
func ensureGitCheckout(baseDir, url string, spec *driver.DependencySpec) (string, string, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return "", "", err
	}
	revision, descriptor, err := gitRevisionFromSpec(spec)
	if err != nil {
		return "", "", err
	}

	tmpDir, err := os.MkdirTemp(baseDir, "git-fetch-*")
	if err != nil {
		return "", "", err
	}
	if err := os.RemoveAll(tmpDir); err != nil {
		return "", "", err
	}

	repo, err := git.PlainClone(tmpDir, false, &git.CloneOptions{URL: url})
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("git clone %s: %w", url, err)
	}
	hash, err := repo.ResolveRevision(revision)
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("resolve revision %s: %w", revision, err)
	}

	version := gitPinnedVersion(descriptor, hash.String())
	targetDir := filepath.Join(baseDir, sanitizePathSegment(version))
	if _, err := os.Stat(targetDir); err == nil {
		_ = os.RemoveAll(tmpDir)
		return version, hash.String(), nil
	}

	worktree, err := repo.Worktree()
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", err
	}
	if err := worktree.Checkout(&git.CheckoutOptions{Hash: *hash, Force: true}); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("git checkout %s: %w", revision, err)
	}
	if err := os.Rename(tmpDir, targetDir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", err
	}
	return version, hash.String(), nil
}

func gitPinnedVersion(descriptor, commit string) string {
	if descriptor == "" || descriptor == commit {
		return commit
	}
	return descriptor + "@" + commit
}

func gitRevisionFromSpec(spec *driver.DependencySpec) (plumbing.Revision, string, error) {
	switch {
	case spec.Rev != "":
		return plumbing.Revision(spec.Rev), spec.Rev, nil
	case spec.Tag != "":
		return plumbing.Revision("refs/tags/" + spec.Tag), spec.Tag, nil
	case spec.Branch != "":
		// Clones track remote branches only.
		return plumbing.Revision("refs/remotes/origin/" + spec.Branch), spec.Branch, nil
	}
	return "", "", fmt.Errorf("git dependencies require rev, tag or branch")
}

// dirChecksum hashes file names and contents under path, skipping .git.
func dirChecksum(path string) (string, error) {
	h := sha256.New()
	err := filepath.WalkDir(path, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if entry.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(path, p)
		if err != nil {
			return err
		}
		h.Write([]byte(filepath.ToSlash(rel)))
		h.Write(data)
		return nil
	})
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func sanitizePathSegment(segment string) string {
	segment = strings.TrimSpace(segment)
	if segment == "" {
		return "head"
	}
	var b strings.Builder
	for _, r := range segment {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
