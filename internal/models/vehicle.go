// Package models contains shared data structures used across the application.
package models

import "fmt"

// Token is an opaque session credential issued by the vehicle-control service.
// The empty token means "not logged in".
type Token string

// Valid reports whether the token is present.
func (t Token) Valid() bool {
	return t != ""
}

// Vehicle is a vehicle registered on the user's account.
type Vehicle struct {
	Key       string `json:"vehicle_key" yaml:"vehicle_key"`
	NickName  string `json:"nick_name" yaml:"nick_name"`
	ModelName string `json:"model_name" yaml:"model_name"`
	Trim      string `json:"trim" yaml:"trim"`
}

// Label formats the vehicle the way list views show it.
func (v Vehicle) Label() string {
	return fmt.Sprintf("%s - %s (%s)", v.NickName, v.ModelName, v.Trim)
}
