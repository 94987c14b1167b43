package errors

// Convenience functions for common error patterns

// Config errors

func ConfigNotFound(path string) *PipelineError {
	return New(CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func ConfigInvalid(field, reason string) *PipelineError {
	return New(CategoryConfig, SeverityFatal, "invalid configuration").
		WithContext("field", field).
		WithContext("reason", reason)
}

// Source errors

func SourceNotFound(dir string) *PipelineError {
	return New(CategoryFileSystem, SeverityFatal, "source directory not found").
		WithContext("dir", dir)
}

func SyntaxFailure(file string, cause error) *PipelineError {
	return Wrap(cause, CategorySyntax, SeverityFatal, "malformed source file").
		WithContext("file", file)
}

// Build pipeline errors

func BuildFailed(stage string, cause error) *PipelineError {
	return Wrap(cause, CategoryBuild, SeverityFatal, "build failed").
		WithContext("stage", stage)
}

func ConstraintFailure(violations int) *PipelineError {
	return New(CategoryConstraint, SeverityFatal, "validation failed").
		WithContext("violations", violations)
}

func ArtifactWriteError(path string, cause error) *PipelineError {
	return Wrap(cause, CategoryFileSystem, SeverityFatal, "artifact write failed").
		WithContext("path", path)
}

// Git errors

func GitFetchError(url string, cause error) *PipelineError {
	return Wrap(cause, CategoryGit, SeverityFatal, "source fetch failed").
		WithContext("url", url)
}

// Event errors

func EventPublishError(subject string, cause error) *PipelineError {
	return Wrap(cause, CategoryEvent, SeverityWarning, "event publish failed").
		WithContext("subject", subject)
}

// Internal errors

func InternalError(message string, cause error) *PipelineError {
	return Wrap(cause, CategoryInternal, SeverityFatal, message)
}
