package robots

import (
	"errors"
	"fmt"
)

var ErrAlreadyConfigured = errors.New("rule set is already configured")

// ConfigError reports robots settings that can not be used to configure a RuleSet.
type ConfigError struct {
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid robots settings: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid robots settings: %s", e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
