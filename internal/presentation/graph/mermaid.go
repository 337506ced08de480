package graph

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/vivarium/internal/runtime"
	"github.com/aretw0/vivarium/pkg/domain"
)

const rootLabel = "root"

// GenerateMermaid produces a Mermaid flowchart of a blueprint: one node per
// process, one node per store a port points to, and one labelled edge per
// port. It applies semantic styling:
// - Process: [[Subroutine]]
// - Deriver: {{Hexagon}}
// - Store: [(Database)]
func GenerateMermaid(processes domain.Processes, topology domain.Topology) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	stores := map[string]struct{}{}
	var edges []string
	processes.Walk(func(path domain.Path, p domain.Process) {
		id := "p_" + sanitizeMermaidID(path.String())
		opener, closer := "[[", "]]"
		if p.IsDeriver() {
			opener, closer = "{{", "}}"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", id, opener, path.String(), closer))

		ports, ok := topology.PortsAt(path)
		if !ok {
			return
		}
		for _, port := range domain.SortedKeys(ports) {
			target := path.Parent().Concat(ports[port]).Normalize().String()
			stores[target] = struct{}{}
			edges = append(edges, fmt.Sprintf("    %s -- \"%s\" --> %s\n", id, port, storeID(target)))
		}
	})

	for _, target := range domain.SortedKeys(stores) {
		label := target
		if label == "" {
			label = rootLabel
		}
		sb.WriteString(fmt.Sprintf("    %s[(\"%s\")]\n", storeID(target), label))
	}
	for _, edge := range edges {
		sb.WriteString(edge)
	}
	return sb.String()
}

// YAML renders the topology as a YAML document with paths as step lists.
func YAML(topology domain.Topology) (string, error) {
	out, err := yaml.Marshal(runtime.DescribeTopology(topology))
	if err != nil {
		return "", fmt.Errorf("encoding topology: %w", err)
	}
	return string(out), nil
}

func storeID(path string) string {
	if path == "" {
		return "s_" + rootLabel
	}
	return "s_" + sanitizeMermaidID(path)
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
