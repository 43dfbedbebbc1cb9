// Package render converts enriched DataCore objects into InfluxDB line
// protocol.
//
// The dispatch table in kinds.go maps every resource kind to a measurement,
// an extraction function building the tag set, the collections it resolves
// cross references in, and the status fields appended after the counters:
//
//	servers        DataCore_Servers        host = own Caption
//	pools          DataCore_Disk_pools     host = ServerId in servers
//	virtualdisks   DataCore_Virtual_Disks  host = NA
//	physicaldisks  DataCore_Physical_disk  host = HostId in servers, hosts
//	ports          DataCore_SCSI_ports     host = HostId in servers, hosts
//	hosts          DataCore_Hosts          host = own Caption
//	monitors       DataCore_Monitors       State line, TimeStamp attribute
//	*_state        DataCore_State          bare State line, cycle clock
//
// Every line of an object shares the timestamp decoded from the sample's
// CollectionTime by a TimeExtractor (DateEnvelope or FixedEnvelope),
// scaled from milliseconds to nanoseconds. Tag values are escaped; missing
// descriptive attributes and unresolved references render as "NA".
package render
