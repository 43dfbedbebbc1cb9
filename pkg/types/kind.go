package types

import "strings"

// Kind identifies a category of DataCore object as understood by the
// renderer. Most kinds are named after the REST collection they come from.
type Kind string

const (
	KindServers       Kind = "servers"
	KindPools         Kind = "pools"
	KindVirtualDisks  Kind = "virtualdisks"
	KindPhysicalDisks Kind = "physicaldisks"
	KindPorts         Kind = "ports"
	KindHosts         Kind = "hosts"
	KindMonitors      Kind = "monitors"

	// State-only views: same collection as their base kind, rendered as a
	// single status line without a performance sample.
	KindServerState      Kind = "servers_state"
	KindVirtualDiskState Kind = "virtualdisks_state"
)

const stateSuffix = "_state"

// Resource returns the REST collection the kind is fetched from.
func (k Kind) Resource() string {
	return strings.TrimSuffix(string(k), stateSuffix)
}

func (k Kind) String() string { return string(k) }
