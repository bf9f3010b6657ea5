// Package driver loads project configuration, the dependency lockfile and
// included source files for the command-line front end.
package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// ConfigFileName is the project configuration looked up from the
	// working directory upwards.
	ConfigFileName = "ownlang.yml"
	// LockfileName sits next to the configuration file.
	LockfileName = "ownlang.lock"
	// HomeEnv overrides the dependency cache root.
	HomeEnv = "OWNLANG_HOME"
)

// ErrConfigNotFound is returned by FindConfig when no configuration exists
// in the start directory or any of its parents.
var ErrConfigNotFound = errors.New(ConfigFileName + " not found")

// Config is the parsed contents of ownlang.yml. Relative paths are kept as
// written; the resolving helpers interpret them against Dir.
type Config struct {
	Path         string
	Dir          string
	Name         string
	Main         string
	Optimize     int
	Modules      []string
	SearchPaths  []string
	Dependencies map[string]*DependencySpec
}

// DependencySpec describes where an include library comes from: a git
// repository pinned by rev, tag or branch, or a local directory.
type DependencySpec struct {
	Git    string
	Rev    string
	Tag    string
	Branch string
	Path   string
}

// IsGit reports whether the dependency is fetched with git.
func (d *DependencySpec) IsGit() bool {
	return d != nil && d.Git != ""
}

// ValidationError aggregates configuration validation failures.
type ValidationError struct {
	Path   string
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "config: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("config validation failed")
	if e.Path != "" {
		b.WriteString(" for ")
		b.WriteString(e.Path)
	}
	b.WriteByte(':')
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// LoadConfig parses and validates a configuration file. Unknown keys are
// rejected.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", absPath, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var raw configFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("config: %s is empty", absPath)
		}
		return nil, fmt.Errorf("config: parse %s: %w", absPath, err)
	}

	cfg := raw.toConfig(absPath)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FindConfig returns the path of the nearest ownlang.yml at or above start.
func FindConfig(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolve start directory %q: %w", start, err)
	}
	if info, statErr := os.Stat(dir); statErr == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	origin := dir
	for {
		candidate := filepath.Join(dir, ConfigFileName)
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no %s found from %s upwards: %w", ConfigFileName, origin, ErrConfigNotFound)
		}
		dir = parent
	}
}

// Home resolves the dependency cache root: $OWNLANG_HOME, else ~/.ownlang.
func Home() (string, error) {
	if home := strings.TrimSpace(os.Getenv(HomeEnv)); home != "" {
		abs, err := filepath.Abs(home)
		if err != nil {
			return "", fmt.Errorf("resolve %s %q: %w", HomeEnv, home, err)
		}
		return abs, nil
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve user home: %w", err)
	}
	return filepath.Join(userHome, ".ownlang"), nil
}

// MainPath returns the configured entry file, or "" when none is set.
func (c *Config) MainPath() string {
	if c == nil || c.Main == "" {
		return ""
	}
	return c.ResolvePath(c.Main)
}

// LockfilePath is where `deps install` writes and the runner reads the
// lockfile.
func (c *Config) LockfilePath() string {
	return filepath.Join(c.Dir, LockfileName)
}

// IncludeRoots lists the configured search paths as absolute directories.
func (c *Config) IncludeRoots() []string {
	if c == nil {
		return nil
	}
	out := make([]string, 0, len(c.SearchPaths))
	for _, p := range c.SearchPaths {
		out = append(out, c.ResolvePath(p))
	}
	return out
}

// DependencyNames returns the dependency names in sorted order.
func (c *Config) DependencyNames() []string {
	names := make([]string, 0, len(c.Dependencies))
	for name := range c.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolvePath interprets path relative to the configuration directory.
func (c *Config) ResolvePath(path string) string {
	path = filepath.FromSlash(path)
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(c.Dir, path)
}

func (c *Config) validate() error {
	errs := ValidationError{Path: c.Path}
	if c.Optimize < 0 {
		errs.Issues = append(errs.Issues, fmt.Sprintf("optimize must not be negative (got %d)", c.Optimize))
	}
	seen := make(map[string]bool, len(c.Modules))
	for i, name := range c.Modules {
		switch {
		case name == "":
			errs.Issues = append(errs.Issues, fmt.Sprintf("modules[%d] must be a non-empty string", i))
		case seen[name]:
			errs.Issues = append(errs.Issues, fmt.Sprintf("module %q listed twice", name))
		}
		seen[name] = true
	}
	for i, p := range c.SearchPaths {
		if p == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("search_paths[%d] must be a non-empty string", i))
		}
	}
	for _, name := range c.DependencyNames() {
		for _, issue := range c.Dependencies[name].validate() {
			errs.Issues = append(errs.Issues, fmt.Sprintf("dependencies.%s: %s", name, issue))
		}
	}
	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

func (d *DependencySpec) validate() []string {
	var errs []string
	switch {
	case d.Git == "" && d.Path == "":
		errs = append(errs, "must specify git or path")
	case d.Git != "" && d.Path != "":
		errs = append(errs, "cannot specify both git and path")
	}
	pins := 0
	for _, pin := range []string{d.Rev, d.Tag, d.Branch} {
		if pin != "" {
			pins++
		}
	}
	if d.Path != "" && pins > 0 {
		errs = append(errs, "path dependencies cannot specify rev, tag or branch")
	}
	if d.Git != "" && pins == 0 {
		errs = append(errs, "git dependencies require rev, tag or branch")
	}
	if d.Git != "" && pins > 1 {
		errs = append(errs, "git dependencies take only one of rev, tag or branch")
	}
	return errs
}

type configFile struct {
	Name         string        `yaml:"name"`
	Main         string        `yaml:"main"`
	Optimize     int           `yaml:"optimize"`
	Modules      stringList    `yaml:"modules"`
	SearchPaths  stringList    `yaml:"search_paths"`
	Dependencies dependencyMap `yaml:"dependencies"`
}

func (cf configFile) toConfig(path string) *Config {
	deps := make(map[string]*DependencySpec, len(cf.Dependencies))
	for name, dep := range cf.Dependencies {
		cp := *dep
		deps[name] = &cp
	}
	return &Config{
		Path:         path,
		Dir:          filepath.Dir(path),
		Name:         strings.TrimSpace(cf.Name),
		Main:         strings.TrimSpace(cf.Main),
		Optimize:     cf.Optimize,
		Modules:      append([]string(nil), cf.Modules...),
		SearchPaths:  append([]string(nil), cf.SearchPaths...),
		Dependencies: deps,
	}
}

// stringList accepts a single scalar or a sequence.
type stringList []string

func (l *stringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" || strings.TrimSpace(value.Value) == "" {
			*l = nil
			return nil
		}
		*l = stringList{strings.TrimSpace(value.Value)}
		return nil
	case yaml.SequenceNode:
		items := make([]string, 0, len(value.Content))
		for _, node := range value.Content {
			var str string
			if err := node.Decode(&str); err != nil {
				return err
			}
			items = append(items, strings.TrimSpace(str))
		}
		*l = items
		return nil
	case yaml.AliasNode:
		return l.UnmarshalYAML(value.Alias)
	default:
		return fmt.Errorf("config: expected string or sequence for list but found %s", value.ShortTag())
	}
}

type dependencyMap map[string]*DependencySpec

func (dm *dependencyMap) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode && value.Tag == "!!null" {
		*dm = make(dependencyMap)
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("config: dependencies must be a mapping")
	}
	result := make(dependencyMap, len(value.Content)/2)
	for i := 0; i < len(value.Content); i += 2 {
		var key string
		if err := value.Content[i].Decode(&key); err != nil {
			return err
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("config: dependency names must be non-empty")
		}
		var raw struct {
			Git    string `yaml:"git"`
			Rev    string `yaml:"rev"`
			Tag    string `yaml:"tag"`
			Branch string `yaml:"branch"`
			Path   string `yaml:"path"`
		}
		node := value.Content[i+1]
		if node.Kind == yaml.ScalarNode && node.Tag != "!!null" {
			// A bare string is shorthand for a local path.
			raw.Path = node.Value
		} else if err := node.Decode(&raw); err != nil {
			return fmt.Errorf("config: dependency %q: %w", key, err)
		}
		result[key] = &DependencySpec{
			Git:    strings.TrimSpace(raw.Git),
			Rev:    strings.TrimSpace(raw.Rev),
			Tag:    strings.TrimSpace(raw.Tag),
			Branch: strings.TrimSpace(raw.Branch),
			Path:   strings.TrimSpace(raw.Path),
		}
	}
	*dm = result
	return nil
}
