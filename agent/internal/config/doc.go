// Package config loads and watches the agent configuration.
//
// Top-level types:
//   - Config{REST, InfluxDB, Resources, CollectionTime, Render, Poll,
//     Logging, Status, Alerts}: full tree parsed from YAML
//   - RESTConfig: DataCore REST server, ServerHost value, two-token Basic
//     credentials (password literal or password_env), per-call timeout and
//     request concurrency
//   - InfluxConfig: sink URL, database (default DataCoreRestDB), timeout
//   - Resources: kind name → enabled; EnabledKinds() returns them sorted
//   - CollectionTimeConfig: auto or fixed prefix/suffix decoding
//   - AlertsConfig: cycle alert rules and webhook targets (URL from env)
//
// Load(path) reads YAML, or the legacy datacore_get_perf.ini when the file
// ends in .ini, applies defaults, then validates required fields and enums.
//
// Watch(ctx, path, onChange) uses fsnotify to reload the file on write and
// hands the new Config to onChange. Invalid reloads are logged and ignored.
package config
