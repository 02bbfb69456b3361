package domain

import "go.trai.ch/zerr"

var (
	// ErrTaskAlreadyExists is returned when attempting to add a task with a name that already exists.
	ErrTaskAlreadyExists = zerr.New("task already exists")

	// ErrMissingDependency is returned when a task references a prerequisite that doesn't exist.
	ErrMissingDependency = zerr.New("missing dependency")

	// ErrCycleDetected is returned when a cycle is detected in the prerequisite graph.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrTaskNotFound is returned when a requested task is not defined.
	ErrTaskNotFound = zerr.New("task not found")

	// ErrNoTargetsSpecified is returned when no targets are specified for the run command.
	ErrNoTargetsSpecified = zerr.New("no targets specified")

	// ErrInvalidTaskName is returned when a task name contains invalid characters.
	ErrInvalidTaskName = zerr.New("invalid task name")

	// ErrInvalidFailurePolicy is returned when onFailure is not one of fail, warn or ignore.
	ErrInvalidFailurePolicy = zerr.New("invalid failure policy, expected 'fail', 'warn' or 'ignore'")

	// ErrEmptyTask is returned when a task has no commands, removals or prerequisites.
	ErrEmptyTask = zerr.New("task has nothing to do")

	// ErrMissingParameter is returned when a task is invoked without a required parameter.
	ErrMissingParameter = zerr.New("missing required parameter")

	// ErrInvalidVariable is returned when a NAME=value argument has an empty name.
	ErrInvalidVariable = zerr.New("invalid variable assignment")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrConfigExists is returned by init when a config file is already present.
	ErrConfigExists = zerr.New("config file already exists")

	// ErrConfigWriteFailed is returned when the config file cannot be written.
	ErrConfigWriteFailed = zerr.New("failed to write config file")

	// ErrBuildExecutionFailed is returned when a run ends with a failed task.
	ErrBuildExecutionFailed = zerr.New("run failed")

	// ErrTaskExecutionFailed is returned when a task execution fails.
	ErrTaskExecutionFailed = zerr.New("task execution failed")

	// ErrCommandParseFailed is returned when a command line is not valid shell syntax.
	ErrCommandParseFailed = zerr.New("failed to parse command")

	// ErrRemoveFailed is returned when a path matched by a remove pattern cannot be deleted.
	ErrRemoveFailed = zerr.New("failed to remove path")

	// ErrInvalidPattern is returned when a remove pattern is malformed or escapes the project root.
	ErrInvalidPattern = zerr.New("invalid remove pattern")

	// ErrStoreCreateFailed is returned when the stamp store directory cannot be created.
	ErrStoreCreateFailed = zerr.New("failed to create stamp store directory")

	// ErrStoreReadFailed is returned when a stamp cannot be read.
	ErrStoreReadFailed = zerr.New("failed to read stamp")

	// ErrStoreUnmarshalFailed is returned when a stamp cannot be unmarshaled.
	ErrStoreUnmarshalFailed = zerr.New("failed to unmarshal stamp")

	// ErrStoreMarshalFailed is returned when a stamp cannot be marshaled.
	ErrStoreMarshalFailed = zerr.New("failed to marshal stamp")

	// ErrStoreWriteFailed is returned when a stamp cannot be written.
	ErrStoreWriteFailed = zerr.New("failed to write stamp")

	// ErrFileHashFailed is returned when hashing a file fails.
	ErrFileHashFailed = zerr.New("failed to hash file content")

	// ErrInterpreterNotFound is returned when the configured interpreter is not on PATH.
	ErrInterpreterNotFound = zerr.New("interpreter not found")

	// ErrInterpreterVersion is returned when the interpreter version cannot be determined
	// or does not satisfy the configured constraint.
	ErrInterpreterVersion = zerr.New("unsupported interpreter version")

	// ErrInvalidVersionConstraint is returned when the configured version constraint cannot be parsed.
	ErrInvalidVersionConstraint = zerr.New("invalid interpreter version constraint")

	// ErrEnvironmentMissing is returned when activating an environment directory that does not exist.
	ErrEnvironmentMissing = zerr.New("environment directory does not exist")

	// ErrManifestNotFound is returned when the dependency manifest is configured but absent.
	ErrManifestNotFound = zerr.New("dependency manifest not found")

	// ErrProvisionFailed is returned when a setup step fails.
	ErrProvisionFailed = zerr.New("setup failed")

	// ErrInvalidOutputMode is returned when --output is not auto, linear or quiet.
	ErrInvalidOutputMode = zerr.New("invalid output mode, expected 'auto', 'linear' or 'quiet'")

	// ErrWatchFailed is returned when the file watcher cannot be started.
	ErrWatchFailed = zerr.New("failed to watch project files")
)
