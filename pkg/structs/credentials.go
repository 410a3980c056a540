package structs

import (
	"fmt"
	"strings"
)

var ErrBlankCredentials = fmt.Errorf("username and password are required")

// Credentials is the secret blob used to sign in to the viewer.
type Credentials struct {
	Hostname string `json:"hostname"`
	Username string `json:"username"`
	Password string `json:"password"`
	APIKey   string `json:"apiKey,omitempty"`
}

func (c *Credentials) Validate() error {
	if c == nil || strings.TrimSpace(c.Username) == "" || strings.TrimSpace(c.Password) == "" {
		return ErrBlankCredentials
	}
	return nil
}

// Link joins the viewer hostname and a relative event path.
func (c *Credentials) Link(path string) string {
	if c == nil || c.Hostname == "" || path == "" {
		return ""
	}

	host := strings.TrimSuffix(c.Hostname, "/")

	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "https://" + host
	}

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return host + path
}
