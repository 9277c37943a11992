package pathao

import (
	"github.com/deshship/courier/pkg/courier"
)

// Default API base URLs per environment.
const (
	productionBaseURL = "https://api-hermes.pathao.com"
	sandboxBaseURL    = "https://courier-api-sandbox.pathao.com"
)

// Config holds Pathao merchant API credentials and environment selection.
type Config struct {
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	StoreID      int    // default merchant store for bookings
	Environment  string // "production" or "sandbox"
	BaseURL      string // optional override
	UseMock      bool   // when true, uses the mock API client
}

// apiBaseURL resolves the API base URL from the override or environment.
func (c Config) apiBaseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	if c.Environment == "sandbox" {
		return sandboxBaseURL
	}
	return productionBaseURL
}

// validate checks required credentials. Credentials are never silently
// defaulted; incomplete setup fails at driver construction.
func (c Config) validate() error {
	if c.UseMock {
		return nil
	}
	if c.ClientID == "" || c.ClientSecret == "" {
		return &courier.ConfigError{
			Courier: "pathao",
			Reason:  "client ID and client secret are required",
		}
	}
	if c.Username == "" || c.Password == "" {
		return &courier.ConfigError{
			Courier: "pathao",
			Reason:  "username and password are required for the password grant",
		}
	}
	return nil
}
