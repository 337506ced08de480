package runtime

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/vivarium/pkg/domain"
)

// emitConfiguration pushes the one-off description of the experiment.
func (e *Experiment) emitConfiguration(ctx context.Context) {
	e.emit(ctx, domain.TableConfiguration, map[string]any{
		"time_created":  time.Now().UTC().Format(time.RFC3339),
		"experiment_id": e.id,
		"description":   e.description,
		"processes":     DescribeProcesses(e.processes),
		"topology":      DescribeTopology(e.topology),
		"state":         e.state.GetConfig(),
	})
}

// emitHistory pushes the emit-flagged state at the current time.
func (e *Experiment) emitHistory(ctx context.Context) {
	data, _ := e.state.EmitData().(map[string]any)
	if data == nil {
		data = map[string]any{}
	}
	data[domain.KeyTime] = e.localTime
	e.emit(ctx, domain.TableHistory, data)
}

// emit never fails the simulation: sink errors are logged and dropped.
func (e *Experiment) emit(ctx context.Context, table domain.Table, data map[string]any) {
	if e.emitter == nil {
		return
	}
	err := e.emitter.Emit(ctx, domain.Envelope{Table: table, ExperimentID: e.id, Data: data})
	if err != nil {
		e.logger.Warn("emit failed", "table", string(table), "error", err)
	}
}

// DescribeProcesses renders a process blueprint as plain data: each process
// becomes its type, timestep, deriver flag and parameters.
func DescribeProcesses(processes domain.Processes) map[string]any {
	out := make(map[string]any, len(processes))
	for key, node := range processes {
		switch p := node.(type) {
		case domain.Process:
			desc := map[string]any{
				"type":     fmt.Sprintf("%T", p),
				"timestep": p.LocalTimestep(),
				"deriver":  p.IsDeriver(),
			}
			if params, ok := p.(domain.Parameterized); ok && len(params.Parameters()) > 0 {
				desc["parameters"] = params.Parameters()
			}
			out[key] = desc
		default:
			if nested, ok := domain.AsProcesses(node); ok {
				out[key] = DescribeProcesses(nested)
			}
		}
	}
	return out
}

// DescribeTopology renders a topology as plain data with paths as string
// slices.
func DescribeTopology(topology domain.Topology) map[string]any {
	out := make(map[string]any, len(topology))
	for key, node := range topology {
		if _, isPorts := node.(domain.Ports); isPorts || looksLikePorts(node) {
			ports, _ := domain.AsPorts(node)
			described := make(map[string]any, len(ports))
			for port, path := range ports {
				described[port] = []string(path)
			}
			out[key] = described
			continue
		}
		if nested, ok := domain.AsTopology(node); ok {
			out[key] = DescribeTopology(nested)
		}
	}
	return out
}

// looksLikePorts reports whether a loosely typed map holds paths rather
// than nested topology.
func looksLikePorts(node any) bool {
	m, ok := node.(map[string]any)
	if !ok || len(m) == 0 {
		return false
	}
	for _, v := range m {
		switch v.(type) {
		case domain.Path, []string, []any, string:
		default:
			return false
		}
	}
	return true
}
