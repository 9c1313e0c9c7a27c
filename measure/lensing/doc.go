// Package lensing converts weak-lensing shear and convergence into the
// reduced shear and magnification applied to source profiles.
package lensing
