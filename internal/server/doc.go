// Package server provides HTTP routing, middleware, the login flow, and the JSON API.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method-qualified patterns.
//
// # Login Flow
//
// GET /login starts an authorization code flow with PKCE against the configured identity provider.
// State and verifier travel in short-lived cookies. GET /callback checks the state, exchanges the code,
// reconciles the user from the returned claims and opens a session. POST /logout ends it.
// Both login endpoints are rate limited.
//
// # Principals
//
// Every request carries an [identity.Principal] in its context. Requests with a valid session cookie get
// the principal of the session claims; all others get the anonymous principal. Handlers never read
// ambient state to find the caller.
//
// # API
//
//	GET    /api/session                 → session state and current user
//	GET    /api/me                      → current user (requires login)
//	GET    /api/users?email=            → stored user by email (requires login)
//	GET    /api/favorites               → favorites of the current user (requires login)
//	PUT    /api/favorites/{songID}      → add a favorite (requires login)
//	DELETE /api/favorites/{songID}      → remove a favorite (requires login)
//	GET    /health                      → liveness
//	GET    /metrics                     → Prometheus metrics, when enabled
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
