package render

import (
	"github.com/lblanc/grafana-integration/pkg/types"
)

const (
	resServers = "servers"
	resHosts   = "hosts"
)

// statusField is an entity attribute emitted as its own line after the
// performance counters.
type statusField struct {
	key  string // field key on the line
	path string // gjson path on the entity
}

// kindSpec is one entry of the dispatch table.
type kindSpec struct {
	measurement string

	// sample is set for kinds joined with a performance sample; its
	// counters become lines and its CollectionTime the timestamp.
	sample bool

	// references lists the collections the extract function resolves ids in.
	references []string

	// timeAttr is the entity attribute holding the timestamp of kinds
	// without a sample. Empty means the cycle clock.
	timeAttr string

	status  []statusField
	extract func(r *Renderer, e types.Entity) []types.Tag
}

var kinds = map[types.Kind]kindSpec{
	types.KindServers: {
		measurement: "DataCore_Servers",
		sample:      true,
		status: []statusField{
			{"State", "State"},
			{"CacheState", "CacheState"},
			{"PowerState", "PowerState"},
		},
		extract: extractServer,
	},
	types.KindPools: {
		measurement: "DataCore_Disk_pools",
		sample:      true,
		references:  []string{resServers},
		status: []statusField{
			{"PoolStatus", "PoolStatus"},
			{"TierReservedPct", "TierReservedPct"},
			{"ChunkSize", "ChunkSize.Value"},
			{"MaxTierNumber", "MaxTierNumber"},
		},
		extract: extractPool,
	},
	types.KindVirtualDisks: {
		measurement: "DataCore_Virtual_Disks",
		sample:      true,
		status: []statusField{
			{"DiskStatus", "DiskStatus"},
			{"Size", "Size.Value"},
		},
		extract: extractVirtualDisk,
	},
	types.KindPhysicalDisks: {
		measurement: "DataCore_Physical_disk",
		sample:      true,
		references:  []string{resServers, resHosts},
		status:      []statusField{{"DiskStatus", "DiskStatus"}},
		extract:     extractPhysicalDisk,
	},
	types.KindPorts: {
		measurement: "DataCore_SCSI_ports",
		sample:      true,
		references:  []string{resServers, resHosts},
		extract:     extractPort,
	},
	types.KindHosts: {
		measurement: "DataCore_Hosts",
		sample:      true,
		extract:     extractHost,
	},
	types.KindMonitors: {
		measurement: "DataCore_Monitors",
		timeAttr:    "TimeStamp",
		status:      []statusField{{"State", "State"}},
		extract:     extractMonitor,
	},
	types.KindServerState: {
		measurement: "DataCore_State",
		status:      []statusField{{"State", "State"}},
		extract:     extractServerState,
	},
	types.KindVirtualDiskState: {
		measurement: "DataCore_State",
		status:      []statusField{{"State", "DiskStatus"}},
		extract:     extractVirtualDiskState,
	},
}

// Supported reports whether kind has an entry in the dispatch table.
func Supported(kind types.Kind) bool {
	_, ok := kinds[kind]
	return ok
}

// NeedsSample reports whether objects of kind must be joined with a
// performance sample before rendering.
func NeedsSample(kind types.Kind) bool {
	return kinds[kind].sample
}

// References returns the collections consulted to render kind.
func References(kind types.Kind) []string {
	return kinds[kind].references
}

func extractServer(_ *Renderer, e types.Entity) []types.Tag {
	return []types.Tag{
		tag("instance", e.ExtendedCaption()),
		tag("host", e.Caption()),
		tag("objectname", "DataCore Servers"),
		tag("id", e.ID()),
		attrTag(e, "os_version", "OsVersion"),
		attrTag(e, "product_version", "ProductVersion"),
	}
}

func extractPool(r *Renderer, e types.Entity) []types.Tag {
	return []types.Tag{
		tag("instance", e.ExtendedCaption()),
		tag("host", r.resolveHost(e, "ServerId", resServers)),
		tag("objectname", "DataCore Disk pools"),
		tag("id", e.ID()),
	}
}

func extractVirtualDisk(_ *Renderer, e types.Entity) []types.Tag {
	return []types.Tag{
		tag("instance", e.ExtendedCaption()),
		tag("host", Placeholder),
		tag("objectname", "DataCore Virtual disks"),
		tag("id", e.ID()),
		attrTag(e, "serial", "SerialNumber"),
	}
}

func extractPhysicalDisk(r *Renderer, e types.Entity) []types.Tag {
	return []types.Tag{
		tag("instance", e.ExtendedCaption()),
		tag("host", r.resolveHost(e, "HostId", resServers, resHosts)),
		tag("objectname", "DataCore Physical disk"),
		tag("id", e.ID()),
		attrTag(e, "serial", "SerialNumber"),
	}
}

func extractPort(r *Renderer, e types.Entity) []types.Tag {
	tags := []types.Tag{
		tag("instance", e.ExtendedCaption()),
		tag("host", r.resolveHost(e, "HostId", resServers, resHosts)),
		tag("objectname", "DataCore SCSI ports"),
		tag("id", e.ID()),
	}
	// Port descriptors vary by port type; only the ones present are tagged.
	for _, opt := range []struct{ key, path string }{
		{"type", types.TypeKey},
		{"role", "Role"},
		{"port_type", "PortType"},
	} {
		if v, err := e.String(opt.path); err == nil && v != "" {
			tags = append(tags, tag(opt.key, v))
		}
	}
	return tags
}

func extractHost(_ *Renderer, e types.Entity) []types.Tag {
	return []types.Tag{
		tag("instance", e.ExtendedCaption()),
		tag("host", e.Caption()),
		tag("objectname", "DataCore Hosts"),
		tag("id", e.ID()),
	}
}

func extractMonitor(_ *Renderer, e types.Entity) []types.Tag {
	label := MonitorState(e.Raw.Get("State").Int())
	return []types.Tag{
		tag("instance", e.ExtendedCaption()),
		tag("objectname", e.Caption()),
		tag("id", e.ID()),
		tag("state_label", label),
	}
}

func extractServerState(_ *Renderer, e types.Entity) []types.Tag {
	return []types.Tag{
		tag("host", e.Caption()),
		tag("objectname", "DataCore Servers"),
		tag("id", e.ID()),
	}
}

func extractVirtualDiskState(_ *Renderer, e types.Entity) []types.Tag {
	return []types.Tag{
		tag("instance", e.Caption()),
		tag("objectname", "DataCore Virtual disks"),
		tag("id", e.ID()),
	}
}

// tag builds an escaped tag; empty values become the placeholder since line
// protocol rejects empty tag values.
func tag(key, value string) types.Tag {
	if value == "" {
		value = Placeholder
	}
	return types.Tag{Key: key, Value: Escape(value)}
}

// attrTag tags an optional descriptive attribute. Missing, null or
// non-scalar attributes render as the placeholder.
func attrTag(e types.Entity, key, path string) types.Tag {
	v, err := e.String(path)
	if err != nil {
		return tag(key, Placeholder)
	}
	return tag(key, v)
}
