package config

import (
	"fmt"
	"net"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/lblanc/grafana-integration/pkg/types"
)

// perfSuffix marks a performance resource in the legacy [RESOURCES] section.
const perfSuffix = "_perf"

// applyINI overlays a legacy datacore_get_perf.ini file onto cfg.
//
//	[SERVERS]     rest_server, datacore_server, influxdb_server, influxdb_port
//	[CREDENTIALS] user, passwd
//	[RESOURCES]   servers_perf = true, servers = true, monitors = true, ...
//	[LOGGING]     log, logfile
//
// In [RESOURCES] an "x_perf" key enables kind x with its performance
// counters, "servers" and "virtualdisks" enable the state-only views and
// "monitors" enables monitor states. Other plain keys only named collections
// to fetch; they are fetched on demand now and are ignored.
func applyINI(cfg *Config, data []byte) error {
	f, err := ini.LoadSources(ini.LoadOptions{Insensitive: true}, data)
	if err != nil {
		return err
	}

	servers := f.Section("servers")
	cfg.REST.Server = servers.Key("rest_server").String()
	cfg.REST.DataCoreServer = servers.Key("datacore_server").String()
	if host := servers.Key("influxdb_server").String(); host != "" {
		port := servers.Key("influxdb_port").MustString("8086")
		cfg.InfluxDB.URL = "http://" + net.JoinHostPort(host, port)
	}

	creds := f.Section("credentials")
	cfg.REST.Username = creds.Key("user").String()
	cfg.REST.Password = creds.Key("passwd").String()

	for _, k := range f.Section("resources").Keys() {
		on, err := k.Bool()
		if err != nil {
			return fmt.Errorf("resources.%s: %w", k.Name(), err)
		}
		if kind, ok := legacyKind(k.Name()); ok {
			cfg.Resources[string(kind)] = on
		}
	}

	logging := f.Section("logging")
	if logging.HasKey("log") {
		on, err := logging.Key("log").Bool()
		if err != nil {
			return fmt.Errorf("logging.log: %w", err)
		}
		cfg.Logging.Enabled = on
	}
	cfg.Logging.File = logging.Key("logfile").String()
	return nil
}

// legacyKind maps a legacy [RESOURCES] key to the kind it enabled.
func legacyKind(name string) (types.Kind, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if base, ok := strings.CutSuffix(name, perfSuffix); ok {
		return types.Kind(base), true
	}
	switch types.Kind(name) {
	case types.KindServers:
		return types.KindServerState, true
	case types.KindVirtualDisks:
		return types.KindVirtualDiskState, true
	case types.KindMonitors:
		return types.KindMonitors, true
	}
	return "", false
}
