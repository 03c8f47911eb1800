// Package config provides configuration management for flash-test batches.
// It handles loading configuration from multiple sources, validation, and
// exposes typed views (tracked parameters, nameplate ratings) of the batch.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. YAML configuration file
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern PVFLASH_<SECTION>_<FIELD>:
//
//	PVFLASH_BATCH_YEARS=19
//	PVFLASH_BATCH_SUN_LEVELS=0.4,0.6,0.8,1
//	PVFLASH_BATCH_NAMEPLATE_PMP=175
//	PVFLASH_ENGINE_COMMAND=/opt/sinton/iv-analysis
//	PVFLASH_LOGGING_LEVEL=debug
//
// # Example File
//
//	batch:
//	  identifier: OCCC
//	  data_dir: occc
//	  has_basename_comment: true
//	  modules_to_exclude: ["408181737"]
//	  underperforming_serials: ["408106229", "408203627"]
//	  nameplate: {pmp: 175, vmp: 35.4, imp: 4.95, voc: 44.6, isc: 5.43}
//	  years: 19
//	  sun_levels: [0.4, 0.6, 0.8, 1]
//	engine:
//	  command: iv-analysis
//	  rsh_v_cell: 0.45
//	  step: 1
//
// # Validation
//
// Struct constraints are checked with go-playground/validator: nameplate
// values, years, margins and sun levels must be strictly positive, tracked
// parameters must be known names, and the control module may not also be
// excluded.
//
// The loaded Config is passed by value to the components that need it and is
// never written to after Load returns.
package config
