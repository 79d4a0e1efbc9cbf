package domain

import (
	"net/url"
	"strings"
)

// Client routes
const (
	RouteFeed     = "/feed"
	RouteTrending = "/trending"
	RouteLogin    = "/login"
	RouteRegister = "/register"
	RouteProfile  = "/profile"
	RouteVlog     = "/vlog"
)

// LoginRoute returns the login route carrying returnTo as a redirect
// parameter so the user lands back where they started after logging in.
// Login and register routes are never used as redirect targets.
func LoginRoute(returnTo string) string {
	if returnTo == "" || IsAuthRoute(returnTo) {
		return RouteLogin
	}
	return RouteLogin + "?redirect=" + url.QueryEscape(returnTo)
}

// RedirectTarget extracts the redirect parameter from a login route,
// returning RouteFeed when none is present.
func RedirectTarget(route string) string {
	_, query, ok := strings.Cut(route, "?")
	if !ok {
		return RouteFeed
	}
	values, err := url.ParseQuery(query)
	if err != nil {
		return RouteFeed
	}
	if target := values.Get("redirect"); target != "" && !IsAuthRoute(target) {
		return target
	}
	return RouteFeed
}

// IsAuthRoute reports whether route is the login or registration route.
// These are never recorded as post-login redirect targets.
func IsAuthRoute(route string) bool {
	path, _, _ := strings.Cut(route, "?")
	return path == RouteLogin || path == RouteRegister
}
