package core

import (
	"github.com/go-openapi/strfmt"
	"go.uber.org/zap"
)

// LayoutMapping assigns virtual qubit i to physical qubit LayoutMapping[i].
type LayoutMapping []int

func (l LayoutMapping) String() string {
	st, err := jsonIter.Marshal(l)
	if err != nil {
		zap.L().Error("Failed to marshal core.LayoutMapping")
		return ""
	}
	return string(st)
}

// ToVirtualPhysicalMapping converts the layout to the map shape consumed by
// transpiler layout stages.
func (l LayoutMapping) ToVirtualPhysicalMapping() VirtualPhysicalMapping {
	vpm := make(VirtualPhysicalMapping, len(l))
	for v, p := range l {
		vpm[uint32(v)] = uint32(p)
	}
	return vpm
}

// SelectionMetadata is the diagnostics record attached to a layout. It is
// handed to external benchmarking tooling and never interpreted here.
type SelectionMetadata struct {
	RunID          string           `json:"run_id"`
	DeviceName     string           `json:"device_name"`
	CalibratedAt   string           `json:"calibrated_at"`
	PhysicalQubits []int            `json:"physical_qubits"`
	TotalCost      float64          `json:"total_cost"`
	Hyper          HyperParameters  `json:"hyperparameters"`
	Seed           int64            `json:"seed"`
	RestartCosts   []RestartOutcome `json:"restart_costs"`
	Created        strfmt.DateTime  `json:"created"`
}

func (m *SelectionMetadata) String() string {
	st, err := jsonIter.Marshal(m)
	if err != nil {
		zap.L().Error("Failed to marshal core.SelectionMetadata")
		return ""
	}
	return string(st)
}
