// Package guard decides, from the request path and whether a session is
// present, if a request may proceed or must be sent to sign-in.
package guard

import (
	"net/url"
	"strings"
)

// SignInPath is where unauthenticated requests for protected paths are sent.
const SignInPath = "/auth/signin"

// ProtectedPrefixes lists the path roots that require a session.
var ProtectedPrefixes = []string{"/todos", "/api/todos"}

// Decision is the outcome of Decide. A zero Decision means pass.
type Decision struct {
	Redirect bool
	Location string
}

// Decide is pure: same input, same Decision.
func Decide(path string, hasSession bool) Decision {
	if hasSession || !IsProtected(path) {
		return Decision{}
	}
	return Decision{
		Redirect: true,
		Location: SignInPath + "?callbackUrl=" + url.QueryEscape(path),
	}
}

// IsProtected matches a prefix itself or anything below it, so "/todos2" is
// not protected but "/todos/7" is.
func IsProtected(path string) bool {
	for _, prefix := range ProtectedPrefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}
