package constants

import (
	"fmt"
	"strings"
)

const errOnlyRolesCanAccess = "only %s may access this resource"

// RoleError renders the forbidden message for a route limited to roles.
func RoleError(roles ...string) string {
	return fmt.Sprintf(errOnlyRolesCanAccess, strings.Join(roles, " or "))
}
