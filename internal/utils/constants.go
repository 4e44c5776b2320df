package utils

// EmptyString represents a reusable empty string constant.
const EmptyString = ""

const (
	// ConfigFileName is the name of the application configuration file.
	ConfigFileName = "config.yaml"
	// GlobalConfigDirectoryName is the directory under the user's home holding the global configuration.
	GlobalConfigDirectoryName = ".repoanalyzer"

	// LoggerInitializationFailedMessageFormat reports a logger that could not be built.
	LoggerInitializationFailedMessageFormat = "failed to initialize logger: %w"
	// ApplicationExecutionFailedMessage prefixes fatal errors returned by the command line interface.
	ApplicationExecutionFailedMessage = "repo-analyzer failed"
)
