package schema

import (
	"github.com/aretw0/vivarium/pkg/domain"
)

// ValidatePorts checks that every port declared by a process schema has a
// path in its topology entry. All missing ports are reported together, in
// sorted order, as *domain.TopologyError values inside an AggregateError.
func ValidatePorts(process domain.Path, ports domain.Schema, topology domain.Ports) error {
	var errs []error
	for _, port := range domain.SortedKeys(ports) {
		if _, ok := topology[port]; !ok {
			errs = append(errs, &domain.TopologyError{Process: process, Port: port})
		}
	}
	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

// ValidatePortSchema checks the shape of a process ports schema: every target
// fragment must itself be a configuration map.
func ValidatePortSchema(ports domain.Schema) error {
	var errs []error
	for _, port := range domain.SortedKeys(ports) {
		targets := ports[port]
		for _, target := range domain.SortedKeys(targets) {
			if _, ok := targets[target].(map[string]any); !ok {
				errs = append(errs, &ValidationError{
					Key:    port + "/" + target,
					Reason: "schema fragment must be a map",
					Value:  targets[target],
				})
			}
		}
	}
	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}
