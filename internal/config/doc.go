// Package config loads loom configuration.
//
// The configuration lives in loom.json, loom.yaml or loom.toml at the
// project root; $LOOM_CONFIG names an explicit file. All three formats
// share one schema and start from the defaults returned by New.
//
// # Configuration File Structure
//
//	scheduler:
//	  epsilon: 1ms
//	  units_per_slice: 0
//	  slice_budget: 5ms
//	server:
//	  addr: localhost:3000
//	  read_limit: 65536
//	log:
//	  level: info
//	  format: text
//	metrics:
//	  enabled: true
//	  namespace: loom
//	tracing:
//	  enabled: false
//	snapshot:
//	  backend: redis
//	  redis_addr: localhost:6379
//	  ttl: 1h
//
// # Usage
//
//	cfg, err := config.Resolve(flagPath)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config
