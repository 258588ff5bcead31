// Package config provides runtime configuration for schema unification.
//
// # Overview
//
// Configuration comes from an optional YAML policy file with environment
// variable overrides and sensible defaults for every setting. The policy
// file carries the merge policy (message and field exclusions, canonical
// field renames, acknowledged conflict resolutions); the environment
// carries operational knobs.
//
// # Environment Settings
//
// Engine settings:
//
//	PROTOUNIFY_CACHE_SIZE="256"
//	PROTOUNIFY_METRICS_ENABLED="true"
//
// Observability settings:
//
//	PROTOUNIFY_LOG_LEVEL="info"  # debug, info, warn, error
//
// # Policy File
//
// The YAML policy file is pointed at by PROTOUNIFY_POLICY_FILE or passed
// to LoadFile directly:
//
//	merge:
//	  excluded_messages:
//	    - acme.internal.Scratch
//	  excluded_fields:
//	    - message: acme.User
//	      field: legacy_blob
//	  renames:
//	    - message: acme.User
//	      number: 4
//	      canonical_name: display_name
//	  resolutions:
//	    - message: acme.Order
//	      field: count
//	      conflict: WIDENING
//
// # Usage Example
//
//	cfg, err := config.Load()
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Printf("Cache size: %d\n", cfg.Engine.CacheSize)
//
// # Related Packages
//
//   - pkg/merger: Uses the merge policy
//   - pkg/engine: Uses engine and observability configuration
package config
