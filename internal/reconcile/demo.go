package reconcile

import "strings"

// demoAccounts is the fixed allow-list of system test/demo identities. They
// live only in the local cache, so the identity provider and the remote
// directory are never consulted for them.
var demoAccounts = map[string]struct{}{
	"demo.passenger@ridelink.app": {},
	"demo.driver@ridelink.app":    {},
	"demo.owner@ridelink.app":     {},
	"demo.admin@ridelink.app":     {},
}

// IsDemoAccount reports whether email belongs to the demo allow-list.
func IsDemoAccount(email string) bool {
	_, ok := demoAccounts[strings.ToLower(email)]
	return ok
}
