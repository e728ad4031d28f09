package layout

import (
	"fmt"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/qpatch-dev/smartlayout/core"
	"go.uber.org/zap"
)

// Adapter turns a selection result into the virtual-to-physical mapping
// consumed by transpilation, plus a diagnostics record for benchmarking.
type Adapter struct{}

func NewAdapter() *Adapter {
	return &Adapter{}
}

// ToLayout assigns virtual qubit i to the i-th smallest physical qubit of
// the selected patch. virtualQubits must fit inside the patch; circuits
// narrower than the patch simply leave the tail physical qubits unassigned.
func (a *Adapter) ToLayout(desc *core.DeviceDescriptor, result *core.SelectionResult,
	virtualQubits int) (core.LayoutMapping, *core.SelectionMetadata, error) {
	if desc == nil || result == nil || len(result.Best.Qubits) == 0 {
		return nil, nil, fmt.Errorf("layout adapter needs a device descriptor and a non-empty selection result")
	}
	physical := result.Best.Qubits // already sorted ascending
	if virtualQubits < 1 || virtualQubits > len(physical) {
		return nil, nil, fmt.Errorf("%w: %d virtual qubits do not fit a %d-qubit patch",
			core.ErrInvalidPatchSize, virtualQubits, len(physical))
	}
	mapping := make(core.LayoutMapping, virtualQubits)
	copy(mapping, physical[:virtualQubits])

	meta := &core.SelectionMetadata{
		RunID:          uuid.NewString(),
		DeviceName:     desc.Name,
		CalibratedAt:   desc.CalibratedAt,
		PhysicalQubits: append([]int(nil), physical...),
		TotalCost:      result.Best.Cost,
		Hyper:          result.Hyper,
		Seed:           result.Best.Seed,
		RestartCosts:   append([]core.RestartOutcome(nil), result.Restarts...),
		Created:        strfmt.DateTime(time.Now()),
	}
	zap.L().Info(fmt.Sprintf("laid out %d virtual qubits on %s patch %v (cost=%g, run_id=%s)",
		virtualQubits, desc.Name, physical, result.Best.Cost, meta.RunID))
	return mapping, meta, nil
}
