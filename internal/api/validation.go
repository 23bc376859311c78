package api

import "fmt"

// Validate checks that AccountDumpRequest has all required fields.
// An empty password is allowed for Steam accounts.
func (r *AccountDumpRequest) Validate() error {
	if r.GUID == "" {
		return fmt.Errorf("guid is required")
	}
	return nil
}

// Validate checks that LaunchRequest has all required fields.
func (r *LaunchRequest) Validate() error {
	if r.ExaltPath == "" {
		return fmt.Errorf("exaltPath is required")
	}
	if r.GUID == "" {
		return fmt.Errorf("guid is required")
	}
	return nil
}
