// Package config defines the format-agnostic configuration model for the
// application: the built-in defaults, the values carried by CLI flags, the
// values decoded from an optional settings file, and the merge rules that
// layer them into the final Settings.
//
// The concrete settings-file loader (HCL) lives in a separate package and is
// injected through the Loader interface.
package config
