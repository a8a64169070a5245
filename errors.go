package precognise

import "fmt"

// ConfigError reports a command definition that cannot be turned into a parser tree: a group
// without a name, an application without groups, duplicate names, and the like. It is a
// programming error, raised before any input is looked at.
type ConfigError struct {
	msg string
}

func (e *ConfigError) Error() string {
	return "invalid command configuration: " + e.msg
}

func configErrorf(format string, args ...any) error {
	return &ConfigError{msg: fmt.Sprintf(format, args...)}
}
