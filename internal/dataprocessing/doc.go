// Package dataprocessing turns engine output into batch statistics.
//
// The ParameterTableBuilder calls the IV analysis engine once per file and
// sun level and collects the scalar parameters into a domain.ParameterTable.
// Every later stage is a pure function from table to table:
//
//	ExcludeModules        drop modules by serial
//	SubsetByIntensity     keep rows near a sun level
//	MapIntensity          round intensities to a fixed increment
//	ControlAt             mean control-module parameters at a sun level
//	NormalizeToNameplate  add <p>_pct_nameplate columns
//	NormalizeToControl    add <p>_pct_control columns
//	ApplyDegradation      add <p>_plr columns to the selected rows
//
// Stages never mutate their input. A Summarizer reduces a table to mean and
// median rows, with and without the underperforming serials.
package dataprocessing
