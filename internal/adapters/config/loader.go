// Package config provides the configuration loader for chore.
package config

import (
	"bytes"
	_ "embed"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/vestige-research/eeg-alpha/internal/core/domain"
	"github.com/vestige-research/eeg-alpha/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultChorefile []byte

const (
	defaultInterpreter = "python3"
	defaultConstraint  = ">= 3.10"
	defaultManifest    = "requirements.txt"
)

var (
	validTaskNameRegex = regexp.MustCompile("^[a-zA-Z0-9_-]+$")
	validParamRegex    = regexp.MustCompile("^[A-Za-z_][A-Za-z0-9_]*$")
)

// Loader implements ports.ConfigLoader and ports.ConfigScaffolder for chore.yaml and chore.toml.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load reads the project configuration.
// A file path is loaded directly. A directory is searched upwards for chore.yaml or
// chore.toml; when none is found the built-in task table applies with the directory as root.
func (l *Loader) Load(path string) (*domain.Project, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", path)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", abs)
	}
	if !info.IsDir() {
		return l.loadFile(abs)
	}

	configPath, found := findConfiguration(abs)
	if !found {
		l.Logger.Info("no " + domain.ConfigFileName + " found, using built-in tasks")
		return loadDefaults(abs)
	}
	return l.loadFile(configPath)
}

// Scaffold writes the built-in task table into dir and returns the written path.
// Format is "yaml" (default) or "toml".
func (l *Loader) Scaffold(dir, format string) (string, error) {
	for _, name := range []string{domain.ConfigFileName, domain.TOMLConfigFileName} {
		existing := filepath.Join(dir, name)
		if _, err := os.Stat(existing); err == nil {
			return "", zerr.With(zerr.Wrap(domain.ErrConfigExists, existing), "path", existing)
		}
	}

	var (
		target  string
		content []byte
	)
	switch strings.ToLower(format) {
	case "", "yaml", "yml":
		target = filepath.Join(dir, domain.ConfigFileName)
		content = defaultChorefile
	case "toml":
		target = filepath.Join(dir, domain.TOMLConfigFileName)
		encoded, err := encodeTOML()
		if err != nil {
			return "", err
		}
		content = encoded
	default:
		return "", zerr.With(zerr.New("unsupported config format"), "format", format)
	}

	if err := os.WriteFile(target, content, domain.FilePerm); err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrConfigWriteFailed.Error()), "path", target)
	}
	l.Logger.Info("wrote " + target)
	return target, nil
}

func findConfiguration(cwd string) (string, bool) {
	currentDir := cwd
	for {
		for _, name := range []string{domain.ConfigFileName, domain.TOMLConfigFileName} {
			candidate := filepath.Join(currentDir, name)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, true
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root
			return "", false
		}
		currentDir = parentDir
	}
}

func (l *Loader) loadFile(configPath string) (*domain.Project, error) {
	// #nosec G304 -- configPath is discovered or passed by the operator
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", configPath)
	}

	var (
		chorefile Chorefile
		order     []string
	)
	if strings.EqualFold(filepath.Ext(configPath), ".toml") {
		order, err = unmarshalTOML(data, &chorefile)
	} else {
		order, err = unmarshalYAML(data, &chorefile)
	}
	if err != nil {
		return nil, zerr.With(err, "path", configPath)
	}

	if chorefile.Version != "" && chorefile.Version != "1" {
		l.Logger.Warn("unknown config version " + chorefile.Version + " in " + configPath)
	}

	project, err := buildProject(&chorefile, order, resolveRoot(configPath, chorefile.Root))
	if err != nil {
		return nil, zerr.With(err, "path", configPath)
	}
	project.ConfigPath = configPath
	return project, nil
}

func loadDefaults(root string) (*domain.Project, error) {
	var chorefile Chorefile
	order, err := unmarshalYAML(defaultChorefile, &chorefile)
	if err != nil {
		return nil, err
	}
	return buildProject(&chorefile, order, root)
}

// unmarshalYAML decodes data into target and returns the task names in file order.
func unmarshalYAML(data []byte, target *Chorefile) ([]string, error) {
	if err := yaml.Unmarshal(data, target); err != nil {
		return nil, zerr.Wrap(err, domain.ErrConfigParseFailed.Error())
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, zerr.Wrap(err, domain.ErrConfigParseFailed.Error())
	}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, nil
	}

	top := doc.Content[0]
	for i := 0; i+1 < len(top.Content); i += 2 {
		if top.Content[i].Value != "tasks" || top.Content[i+1].Kind != yaml.MappingNode {
			continue
		}
		tasks := top.Content[i+1]
		order := make([]string, 0, len(tasks.Content)/2)
		for j := 0; j < len(tasks.Content); j += 2 {
			order = append(order, tasks.Content[j].Value)
		}
		return order, nil
	}
	return nil, nil
}

// unmarshalTOML decodes data into target and returns the task names in file order.
func unmarshalTOML(data []byte, target *Chorefile) ([]string, error) {
	md, err := toml.Decode(string(data), target)
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrConfigParseFailed.Error())
	}

	var order []string
	for _, key := range md.Keys() {
		if len(key) == 2 && key[0] == "tasks" {
			order = append(order, key[1])
		}
	}
	return order, nil
}

func encodeTOML() ([]byte, error) {
	var chorefile Chorefile
	if err := yaml.Unmarshal(defaultChorefile, &chorefile); err != nil {
		return nil, zerr.Wrap(err, domain.ErrConfigParseFailed.Error())
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(chorefile); err != nil {
		return nil, zerr.Wrap(err, domain.ErrConfigWriteFailed.Error())
	}
	return buf.Bytes(), nil
}

func buildProject(chorefile *Chorefile, order []string, root string) (*domain.Project, error) {
	g := domain.NewGraph()
	g.SetRoot(root)

	for _, name := range taskOrder(chorefile.Tasks, order) {
		dto := chorefile.Tasks[name]
		if dto == nil {
			dto = &TaskDTO{}
		}
		task, err := buildTask(name, dto, root)
		if err != nil {
			return nil, err
		}
		if err := g.AddTask(task); err != nil {
			return nil, err
		}
	}

	if err := g.Validate(); err != nil {
		return nil, err
	}

	return &domain.Project{
		Graph:     g,
		Bootstrap: buildBootstrap(chorefile),
	}, nil
}

// taskOrder returns the declared names first, then any remaining names sorted.
func taskOrder(tasks map[string]*TaskDTO, declared []string) []string {
	order := make([]string, 0, len(tasks))
	seen := make(map[string]bool, len(tasks))
	for _, name := range declared {
		if _, ok := tasks[name]; ok && !seen[name] {
			order = append(order, name)
			seen[name] = true
		}
	}

	var rest []string
	for name := range tasks {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	slices.Sort(rest)
	return append(order, rest...)
}

func buildBootstrap(chorefile *Chorefile) domain.Bootstrap {
	b := domain.Bootstrap{
		Interpreter:       defaultInterpreter,
		VersionConstraint: defaultConstraint,
		EnvDir:            domain.DefaultEnvDir,
		Manifest:          defaultManifest,
		Activate:          true,
	}

	if in := chorefile.Interpreter; in != nil {
		if in.Command != "" {
			b.Interpreter = in.Command
		}
		if in.Version != "" {
			b.VersionConstraint = in.Version
		}
	}

	if env := chorefile.Environment; env != nil {
		if env.Dir != "" {
			b.EnvDir = env.Dir
		}
		if env.Manifest != nil {
			b.Manifest = *env.Manifest
		}
		b.Tools = slices.Clone(env.Tools)
		b.Hooks = slices.Clone(env.Hooks)
		if env.Activate != nil {
			b.Activate = *env.Activate
		}
	}
	return b
}

func resolveRoot(configPath, configuredRoot string) string {
	configDir := filepath.Dir(configPath)
	if configuredRoot == "" {
		return filepath.Clean(configDir)
	}
	if filepath.IsAbs(configuredRoot) {
		return filepath.Clean(configuredRoot)
	}
	return filepath.Clean(filepath.Join(configDir, configuredRoot))
}

// validateTaskName checks that the task name only contains letters, digits, '-' and '_'.
func validateTaskName(name string) error {
	if !validTaskNameRegex.MatchString(name) {
		return zerr.With(zerr.Wrap(domain.ErrInvalidTaskName, name), "task_name", name)
	}
	return nil
}

// buildTask creates a domain.Task from a TaskDTO.
func buildTask(name string, dto *TaskDTO, root string) (*domain.Task, error) {
	if err := validateTaskName(name); err != nil {
		return nil, err
	}

	if len(dto.Cmd) == 0 && len(dto.Remove) == 0 && len(dto.DependsOn) == 0 {
		return nil, zerr.With(zerr.Wrap(domain.ErrEmptyTask, name), "task", name)
	}

	policy, err := domain.ParseFailurePolicy(dto.OnFailure)
	if err != nil {
		return nil, zerr.With(err, "task", name)
	}

	params := make([]domain.Param, 0, len(dto.Requires))
	for _, p := range dto.Requires {
		if !validParamRegex.MatchString(p.Name) {
			err := zerr.With(zerr.Wrap(domain.ErrInvalidVariable, p.Name), "param", p.Name)
			return nil, zerr.With(err, "task", name)
		}
		params = append(params, domain.Param{Name: p.Name, Usage: p.Usage})
	}

	return &domain.Task{
		Name:         name,
		Description:  dto.Description,
		Commands:     slices.Clone(dto.Cmd),
		Remove:       slices.Clone(dto.Remove),
		Dependencies: slices.Clone(dto.DependsOn),
		Requires:     params,
		OnFailure:    policy,
		Warning:      dto.Warning,
		Environment:  dto.Environment,
		WorkingDir:   resolveTaskWorkingDir(root, dto.WorkingDir),
		Interactive:  dto.Interactive,
	}, nil
}

// resolveTaskWorkingDir resolves the working directory for a task.
// If configuredWorkingDir is empty, uses baseDir.
// If configuredWorkingDir is absolute, uses it directly.
// Otherwise, joins it with baseDir.
func resolveTaskWorkingDir(baseDir, configuredWorkingDir string) string {
	if configuredWorkingDir == "" {
		return baseDir
	}

	if filepath.IsAbs(configuredWorkingDir) {
		return filepath.Clean(configuredWorkingDir)
	}

	return filepath.Clean(filepath.Join(baseDir, configuredWorkingDir))
}
