// Package config loads the catalog configuration that the SED engines are
// built from.
//
// The YAML schema follows the catalog config files:
//
//	SED_models:
//	  tophat:
//	    bins: [[1000, 246], [1246, 306], ...]  # [start Å, width Å]
//	    delta_wl: 0.001                        # nm
//	    resolution: 0                          # nm, 0 keeps the native grid
//	Cosmology: {H0: 71.0, Om0: 0.2648, Ob0: 0.0448}
//	extinction: {law: F99, Rv: 3.1}
//	sed_library_dir: /path/to/sims_sed_library
//	internal_dust: false
//
// Unknown keys, such as extra Cosmology parameters, are ignored.
package config
