package config

// Chorefile represents the structure of the chore.yaml / chore.toml configuration file.
type Chorefile struct {
	Version     string              `yaml:"version" toml:"version"`
	Root        string              `yaml:"root,omitempty" toml:"root,omitempty"`
	Interpreter *InterpreterDTO     `yaml:"interpreter,omitempty" toml:"interpreter,omitempty"`
	Environment *EnvironmentDTO     `yaml:"environment,omitempty" toml:"environment,omitempty"`
	Tasks       map[string]*TaskDTO `yaml:"tasks" toml:"tasks"`
}

// InterpreterDTO selects the interpreter used to create the environment.
type InterpreterDTO struct {
	Command string `yaml:"command,omitempty" toml:"command,omitempty"`
	Version string `yaml:"version,omitempty" toml:"version,omitempty"`
}

// EnvironmentDTO describes the isolated environment provisioned by setup.
// Manifest is a pointer so that an explicit empty value disables the manifest step.
type EnvironmentDTO struct {
	Dir      string   `yaml:"dir,omitempty" toml:"dir,omitempty"`
	Manifest *string  `yaml:"manifest,omitempty" toml:"manifest,omitempty"`
	Tools    []string `yaml:"tools,omitempty" toml:"tools,omitempty"`
	Hooks    []string `yaml:"hooks,omitempty" toml:"hooks,omitempty"`
	Activate *bool    `yaml:"activate,omitempty" toml:"activate,omitempty"`
}

// TaskDTO represents a task definition in the configuration.
type TaskDTO struct {
	Description string            `yaml:"description,omitempty" toml:"description,omitempty"`
	Cmd         []string          `yaml:"cmd,omitempty" toml:"cmd,omitempty"`
	DependsOn   []string          `yaml:"dependsOn,omitempty" toml:"dependsOn,omitempty"`
	OnFailure   string            `yaml:"onFailure,omitempty" toml:"onFailure,omitempty"`
	Warning     string            `yaml:"warning,omitempty" toml:"warning,omitempty"`
	Requires    []ParamDTO        `yaml:"requires,omitempty" toml:"requires,omitempty"`
	Remove      []string          `yaml:"remove,omitempty" toml:"remove,omitempty"`
	Environment map[string]string `yaml:"env,omitempty" toml:"env,omitempty"`
	WorkingDir  string            `yaml:"workingDir,omitempty" toml:"workingDir,omitempty"`
	Interactive bool              `yaml:"interactive,omitempty" toml:"interactive,omitempty"`
}

// ParamDTO declares a value a task needs before it may run.
type ParamDTO struct {
	Name  string `yaml:"name" toml:"name"`
	Usage string `yaml:"usage,omitempty" toml:"usage,omitempty"`
}
