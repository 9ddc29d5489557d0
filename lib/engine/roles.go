package engine

// StaticRoles is a fixed role table, sufficient for tests and the
// scenario runner. Deployments plug in their own RoleChecker.
type StaticRoles map[string][]string

func (r StaticRoles) HasRole(account, role string) bool {
	for _, have := range r[account] {
		if have == role {
			return true
		}
	}
	return false
}
