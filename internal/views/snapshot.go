package views

import "github.com/lockbar-io/lockbar/internal/session"

// Snapshot is the render state handed to frontends.
type Snapshot struct {
	Route    Route         `json:"route"`
	Path     string        `json:"path"`
	LoggedIn bool          `json:"loggedIn"`
	Fetched  bool          `json:"fetched"`
	Vehicles []VehicleView `json:"vehicles"`

	LoginError string `json:"loginError,omitempty"`
	ListError  string `json:"listError,omitempty"`
}

// VehicleView is one vehicle with its lock flag resolved for display.
type VehicleView struct {
	Key       string `json:"key"`
	Label     string `json:"label"`
	NickName  string `json:"nickName"`
	ModelName string `json:"modelName"`
	Trim      string `json:"trim"`
	Lock      string `json:"lock"`
	Action    string `json:"action"`
	Busy      bool   `json:"busy"`
	Error     string `json:"error,omitempty"`
}

// Find returns the vehicle with key from the snapshot.
func (s Snapshot) Find(key string) (VehicleView, bool) {
	for _, v := range s.Vehicles {
		if v.Key == key {
			return v, true
		}
	}
	return VehicleView{}, false
}

// Snapshot captures the current state.
func (c *Controller) Snapshot() Snapshot {
	route := c.Route()
	vehicles, fetched := c.Vehicles()

	snap := Snapshot{
		Route:    route,
		Path:     route.Path(),
		LoggedIn: c.state.Token.Get().Valid(),
		Fetched:  fetched,
		Vehicles: make([]VehicleView, 0, len(vehicles)),
	}
	if err := c.state.LoginErr.Get(); err != nil {
		snap.LoginError = err.Error()
	}
	if err := c.state.ListErr.Get(); err != nil {
		snap.ListError = err.Error()
	}

	for _, v := range vehicles {
		lock := c.state.Locks.Get(v.Key)
		view := VehicleView{
			Key:       v.Key,
			Label:     v.Label(),
			NickName:  v.NickName,
			ModelName: v.ModelName,
			Trim:      v.Trim,
			Lock:      lock.String(),
			Action:    lock.Action(),
			Busy:      lock == session.LockBusy,
		}
		if err := c.state.Locks.Err(v.Key); err != nil {
			view.Error = err.Error()
		}
		snap.Vehicles = append(snap.Vehicles, view)
	}
	return snap
}
