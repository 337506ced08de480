package composites

import (
	"github.com/aretw0/vivarium/pkg/compartment"
	"github.com/aretw0/vivarium/pkg/domain"
	"github.com/aretw0/vivarium/pkg/registry"
)

// VolumeDeriver is the registry name of DeriveVolume.
const VolumeDeriver = "volume"

func emitted(keys ...string) map[string]any {
	out := make(map[string]any, len(keys))
	for _, key := range keys {
		out[key] = map[string]any{"_default": 0.0, "_emit": true}
	}
	return out
}

// MetabolismConfig configures Metabolism.
type MetabolismConfig struct {
	MassConversionRate float64 `mapstructure:"mass_conversion_rate"`
}

// Metabolism converts two units of glucose into one unit of mass whenever
// the pool holds enough glucose for the interval.
type Metabolism struct {
	domain.Base
	config MetabolismConfig
}

// NewMetabolism builds a Metabolism from a loosely typed configuration.
func NewMetabolism(raw map[string]any) (*Metabolism, error) {
	config := MetabolismConfig{MassConversionRate: 1}
	if err := DecodeConfig(raw, &config); err != nil {
		return nil, err
	}
	return &Metabolism{
		Base:   domain.Base{Params: map[string]any{"mass_conversion_rate": config.MassConversionRate}},
		config: config,
	}, nil
}

func (m *Metabolism) PortsSchema() domain.Schema {
	return domain.Schema{"pool": emitted("GLC", "MASS")}
}

// Derivers keeps the pool volume current.
func (m *Metabolism) Derivers() map[string]domain.DeriverSpec {
	return map[string]domain.DeriverSpec{
		"internal_volume": {
			Deriver:     VolumeDeriver,
			PortMapping: map[string]string{"compartment": "pool"},
		},
	}
}

func (m *Metabolism) NextUpdate(interval float64, states domain.State) (domain.Update, error) {
	required := interval / m.config.MassConversionRate
	glucose, _ := registry.AsFloat(states["pool"]["GLC"])
	if glucose < required {
		return domain.Update{}, nil
	}
	return domain.Update{"pool": map[string]any{"GLC": -2, "MASS": 1}}, nil
}

// TransportConfig configures Transport.
type TransportConfig struct {
	IntakeRate float64 `mapstructure:"intake_rate"`
}

// Transport moves glucose from the external pool into the internal one.
type Transport struct {
	domain.Base
	config TransportConfig
}

// NewTransport builds a Transport from a loosely typed configuration.
func NewTransport(raw map[string]any) (*Transport, error) {
	config := TransportConfig{IntakeRate: 2}
	if err := DecodeConfig(raw, &config); err != nil {
		return nil, err
	}
	return &Transport{
		Base:   domain.Base{Params: map[string]any{"intake_rate": config.IntakeRate}},
		config: config,
	}, nil
}

func (t *Transport) PortsSchema() domain.Schema {
	return domain.Schema{
		"external": emitted("GLC"),
		"internal": emitted("GLC"),
	}
}

// Derivers keeps the external volume current.
func (t *Transport) Derivers() map[string]domain.DeriverSpec {
	return map[string]domain.DeriverSpec{
		"external_volume": {
			Deriver:     VolumeDeriver,
			PortMapping: map[string]string{"compartment": "external"},
		},
	}
}

func (t *Transport) NextUpdate(interval float64, states domain.State) (domain.Update, error) {
	intake := interval * t.config.IntakeRate
	glucose, _ := registry.AsFloat(states["external"]["GLC"])
	if glucose < intake {
		return domain.Update{}, nil
	}
	return domain.Update{
		"external": map[string]any{"GLC": -2, "MASS": 1},
		"internal": map[string]any{"GLC": 2},
	}, nil
}

// DeriveVolume keeps VOLUME equal to MASS / DENSITY.
type DeriveVolume struct {
	domain.DeriverBase
}

// NewDeriveVolume builds a DeriveVolume. It takes no configuration.
func NewDeriveVolume(raw map[string]any) (*DeriveVolume, error) {
	if err := DecodeConfig(raw, &struct{}{}); err != nil {
		return nil, err
	}
	return &DeriveVolume{}, nil
}

func (d *DeriveVolume) PortsSchema() domain.Schema {
	compartment := emitted("MASS", "DENSITY", "VOLUME")
	compartment["VOLUME"] = map[string]any{"_default": 0.0, "_emit": true, "_updater": "set"}
	return domain.Schema{"compartment": compartment}
}

func (d *DeriveVolume) NextUpdate(interval float64, states domain.State) (domain.Update, error) {
	mass, _ := registry.AsFloat(states["compartment"]["MASS"])
	density, _ := registry.AsFloat(states["compartment"]["DENSITY"])
	if density == 0 {
		return domain.Update{}, nil
	}
	return domain.Update{"compartment": map[string]any{"VOLUME": mass / density}}, nil
}

// DeathConfig configures Death.
type DeathConfig struct {
	// Targets are slash separated paths, relative to the global port,
	// removed once the volume exceeds MaxVolume.
	Targets   []string `mapstructure:"targets"`
	MaxVolume float64  `mapstructure:"max_volume"`
}

// Death removes its targets once the compartment volume exceeds a limit.
type Death struct {
	domain.Base
	config DeathConfig
}

// NewDeath builds a Death from a loosely typed configuration.
func NewDeath(raw map[string]any) (*Death, error) {
	config := DeathConfig{MaxVolume: 1.0}
	if err := DecodeConfig(raw, &config); err != nil {
		return nil, err
	}
	return &Death{Base: domain.Base{Params: raw}, config: config}, nil
}

func (d *Death) PortsSchema() domain.Schema {
	return domain.Schema{
		"compartment": emitted("VOLUME"),
		"global":      {},
	}
}

func (d *Death) NextUpdate(interval float64, states domain.State) (domain.Update, error) {
	volume, _ := registry.AsFloat(states["compartment"]["VOLUME"])
	if volume <= d.config.MaxVolume {
		return domain.Update{}, nil
	}
	paths := make([]domain.Path, 0, len(d.config.Targets))
	for _, target := range d.config.Targets {
		paths = append(paths, domain.ParsePath(target))
	}
	return domain.Update{"global": domain.DeleteUpdate(paths...)}, nil
}

// ToyCompartment is a cell with a cytoplasm and a periplasm. Transport
// feeds glucose into the cytoplasm, metabolism turns it into mass, and
// the cell stops both once its cytoplasm grows past a volume of one.
type ToyCompartment struct{}

func (ToyCompartment) GenerateProcesses(config map[string]any) (domain.Processes, error) {
	metabolism, err := NewMetabolism(map[string]any{"mass_conversion_rate": 0.5})
	if err != nil {
		return nil, err
	}
	transport, err := NewTransport(nil)
	if err != nil {
		return nil, err
	}
	death, err := NewDeath(map[string]any{"targets": []string{"metabolism", "transport"}})
	if err != nil {
		return nil, err
	}
	return domain.Processes{
		"metabolism": metabolism,
		"transport":  transport,
		"death":      death,
	}, nil
}

func (ToyCompartment) GenerateTopology(config map[string]any) (domain.Topology, error) {
	return domain.Topology{
		"metabolism": domain.Ports{"pool": domain.NewPath("cytoplasm")},
		"transport": domain.Ports{
			"external": domain.NewPath("periplasm"),
			"internal": domain.NewPath("cytoplasm"),
		},
		"death": domain.Ports{
			"global":      domain.NewPath(),
			"compartment": domain.NewPath("cytoplasm"),
		},
	}, nil
}

var _ compartment.Compartment = ToyCompartment{}
