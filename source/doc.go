// Package source is the catalog object layer on top of the SED engines.
//
// Objects read their native catalog attributes through the Attributes
// interface and use a shared, read-only Session (SED factory, Milky Way
// extinguisher, point-source library) to build observer-frame SEDs,
// weak-lensing parameters and light-profile descriptions. Rendering the
// profiles is left to the caller.
package source
