package config

type SecurityLevel int

const (
	SecurityPublic SecurityLevel = iota // No authentication
	SecurityAccess                      // Access token required
)

// EndpointSecurityConfig maps "METHOD route-template" to its required
// security level. Routes missing here require an access token.
var EndpointSecurityConfig = map[string]SecurityLevel{
	// Health - Public
	"GET /healthz": SecurityPublic,

	// Items - Public reads
	"GET /api/v1/items":            SecurityPublic,
	"GET /api/v1/items/{id}":       SecurityPublic,
	"GET /api/v1/items/{id}/quote": SecurityPublic,

	// Items - Access Protected
	"POST /api/v1/items":        SecurityAccess,
	"PATCH /api/v1/items/{id}":  SecurityAccess,
	"DELETE /api/v1/items/{id}": SecurityAccess,

	// Bookings - All Access Protected
	"POST /api/v1/bookings":               SecurityAccess,
	"GET /api/v1/bookings":                SecurityAccess,
	"GET /api/v1/bookings/{id}":           SecurityAccess,
	"PATCH /api/v1/bookings/{id}":         SecurityAccess,
	"DELETE /api/v1/bookings/{id}":        SecurityAccess,
	"POST /api/v1/bookings/{id}/payments": SecurityAccess,

	// Reviews
	"GET /api/v1/reviews":  SecurityPublic,
	"POST /api/v1/reviews": SecurityAccess,

	// Users
	"GET /api/v1/users/me":   SecurityAccess,
	"GET /api/v1/users/{id}": SecurityPublic,
}

// RouteSecurity returns the level for a route, defaulting to SecurityAccess.
func RouteSecurity(method, template string) SecurityLevel {
	if level, ok := EndpointSecurityConfig[method+" "+template]; ok {
		return level
	}
	return SecurityAccess
}
