// Package model provides the data structures shared by the pipeline package and its options:
// the steps, their descriptions and the hooks an option implements.
package model
