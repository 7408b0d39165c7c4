package cache

import (
	"fmt"
	"strings"
)

type Prefix string

const (
	Prices           Prefix = "smshub:prices"
	Balance          Prefix = "smshub:balance"
	ActivationStatus Prefix = "smshub:activation_status"
)

// Key joins the prefix and the parts with ':'.
func (p Prefix) Key(parts ...string) string {
	return fmt.Sprintf("%s:%s", p, strings.Join(parts, ":"))
}
