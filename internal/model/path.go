// Package model defines domain entities for the application.
package model

import "strings"

// OwnershipClaim is the per-request association between a resource path and
// the principal allowed to touch it. It is computed, never stored, and is
// only valid when the path sits under the owner's class-scoped prefix.
type OwnershipClaim struct {
	ResourceClass string
	OwnerUID      string
	Path          string
}

// ParseResourcePath splits a "{class}/{ownerUID}/rest" path into an ownership
// claim. The rest segment must be non-empty; a bare prefix is not a valid
// object path.
func ParseResourcePath(path string) (OwnershipClaim, bool) {
	parts := strings.SplitN(path, "/", 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return OwnershipClaim{}, false
	}
	return OwnershipClaim{
		ResourceClass: parts[0],
		OwnerUID:      parts[1],
		Path:          path,
	}, true
}

// OwnedPrefix returns the path prefix a user owns within a resource class.
func OwnedPrefix(class, uid string) string {
	return class + "/" + uid + "/"
}

// OwnsPath reports whether uid owns path under the "{class}/{uid}/" prefix
// convention. It never consults external state.
func OwnsPath(uid, path string) bool {
	claim, ok := ParseResourcePath(path)
	if !ok {
		return false
	}
	return uid != "" && claim.OwnerUID == uid
}
