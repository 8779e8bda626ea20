package config

import (
	"fmt"
	"strings"
)

// PaginationConfig holds page size defaults for list endpoints.
type PaginationConfig struct {
	DefaultLimit      int `koanf:"defaultlimit"`
	AdminDefaultLimit int `koanf:"admindefaultlimit"`
	MaxLimit          int `koanf:"maxlimit"`
}

const (
	defaultPageLimit      = 10
	defaultAdminPageLimit = 20
	defaultMaxPageLimit   = 100
)

// String returns a string representation of the pagination configuration.
func (c *PaginationConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Pagination ---\n")
	b.WriteString(fmt.Sprintf("  defaultlimit: %d\n", c.DefaultLimit))
	b.WriteString(fmt.Sprintf("  admindefaultlimit: %d\n", c.AdminDefaultLimit))
	b.WriteString(fmt.Sprintf("  maxlimit: %d\n", c.MaxLimit))
	return b.String()
}

func (c *PaginationConfig) Validate() error {
	if c.DefaultLimit == 0 {
		c.DefaultLimit = defaultPageLimit
	}
	if c.AdminDefaultLimit == 0 {
		c.AdminDefaultLimit = defaultAdminPageLimit
	}
	if c.MaxLimit == 0 {
		c.MaxLimit = defaultMaxPageLimit
	}
	if c.DefaultLimit < 0 || c.AdminDefaultLimit < 0 || c.MaxLimit < 0 {
		return fmt.Errorf("pagination limits must be positive")
	}
	if c.DefaultLimit > c.MaxLimit || c.AdminDefaultLimit > c.MaxLimit {
		return fmt.Errorf("pagination default limits must not exceed maxlimit %d", c.MaxLimit)
	}
	return nil
}
