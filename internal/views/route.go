// Package views routes between the panel's screens and runs the remote calls
// each screen needs against the shared session state.
package views

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrUnknownRoute is returned by ParseRoute for paths no view serves.
var ErrUnknownRoute = errors.New("unknown route")

// RouteName identifies a view.
type RouteName string

const (
	RouteHome     RouteName = "home"
	RouteLogin    RouteName = "login"
	RouteVehicles RouteName = "vehicles"
	RouteVehicle  RouteName = "vehicle"
)

// Route is a view plus its parameters. Only RouteVehicle carries a key.
type Route struct {
	Name RouteName `json:"name"`
	Key  string    `json:"key,omitempty"`
}

// Home is the entry route; it resolves to Login or Vehicles.
func Home() Route { return Route{Name: RouteHome} }

// Login is the login form.
func Login() Route { return Route{Name: RouteLogin} }

// Vehicles is the vehicle list.
func Vehicles() Route { return Route{Name: RouteVehicles} }

// Vehicle is the detail view of one vehicle.
func Vehicle(key string) Route { return Route{Name: RouteVehicle, Key: key} }

// Path renders the route as the frontend's router path.
func (r Route) Path() string {
	switch r.Name {
	case RouteLogin:
		return "/login"
	case RouteVehicles:
		return "/vehicles"
	case RouteVehicle:
		return "/vehicle/" + url.PathEscape(r.Key)
	default:
		return "/"
	}
}

func (r Route) String() string {
	return r.Path()
}

// ParseRoute is the inverse of Path.
func ParseRoute(path string) (Route, error) {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return Home(), nil
	}

	head, rest, _ := strings.Cut(trimmed, "/")
	switch {
	case head == "login" && rest == "":
		return Login(), nil
	case head == "vehicles" && rest == "":
		return Vehicles(), nil
	case head == "vehicle" && rest != "" && !strings.Contains(rest, "/"):
		key, err := url.PathUnescape(rest)
		if err != nil {
			return Route{}, fmt.Errorf("%w: %s", ErrUnknownRoute, path)
		}
		return Vehicle(key), nil
	}
	return Route{}, fmt.Errorf("%w: %s", ErrUnknownRoute, path)
}
