// Package config loads the settings of a simulation run from YAML or JSON.
package config
