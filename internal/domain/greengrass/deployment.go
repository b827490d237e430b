package greengrass

import (
	"maps"
	"slices"
)

// DeploymentStatus is the fleet service's view of a deployment.
type DeploymentStatus string

const (
	// DeploymentStatusActive means the deployment is still being applied.
	DeploymentStatusActive DeploymentStatus = "ACTIVE"
	// DeploymentStatusCompleted means the deployment finished successfully.
	DeploymentStatusCompleted DeploymentStatus = "COMPLETED"
)

// IsTerminal reports whether polling can stop.
func (s DeploymentStatus) IsTerminal() bool {
	return s != DeploymentStatusActive
}

// Deployment describes the components deployed to one target device.
type Deployment struct {
	// ID is generated by the fleet service.
	ID string
	// Name is optional and assigned by the operator.
	Name string
	// TargetARN is the IoT thing the deployment targets.
	TargetARN string
	// Status is the state reported by the fleet service.
	Status DeploymentStatus
	// Components maps component names to their deployment specification.
	Components map[string]ComponentSpec
}

// ComponentSpec pins a component version and optionally updates its configuration.
type ComponentSpec struct {
	// Version is the component version to deploy.
	Version string
	// Merge is a JSON document merged into the component configuration.
	Merge string
	// Reset lists JSON pointers reset to their default values before Merge.
	Reset []string
	// RunWith overrides the system user and limits, nil when unset.
	RunWith *RunWith
}

// RunWith is the per-component process identity and resource limits.
type RunWith struct {
	PosixUser   string
	WindowsUser string
	// CPUs and Memory are zero when no limit is set.
	CPUs   float64
	Memory int64
}

// HasComponent reports whether name is in the component map (exact key match).
func (d *Deployment) HasComponent(name string) bool {
	_, ok := d.Components[name]
	return ok
}

// Clone returns a deep copy of the deployment.
func (d *Deployment) Clone() *Deployment {
	if d == nil {
		return nil
	}

	cloned := *d
	cloned.Components = make(map[string]ComponentSpec, len(d.Components))

	for name, spec := range d.Components {
		cloned.Components[name] = spec.Clone()
	}

	return &cloned
}

// Clone returns a deep copy of the component specification.
func (c ComponentSpec) Clone() ComponentSpec {
	if c.Reset != nil {
		c.Reset = append([]string(nil), c.Reset...)
	}

	if c.RunWith != nil {
		runWith := *c.RunWith
		c.RunWith = &runWith
	}

	return c
}

// ComponentNames returns the sorted names of the deployed components.
func (d *Deployment) ComponentNames() []string {
	return slices.Sorted(maps.Keys(d.Components))
}
