// Package cosmo computes distances in a flat matter + Λ cosmology.
//
// Only matter and a cosmological constant contribute to the expansion rate;
// there is no curvature and no radiation term. The luminosity distance is
//
//	d_L(z) = (1+z) · (c/H0) · ∫₀^z dz'/E(z'),   E(z) = sqrt(Ωm (1+z)³ + 1 - Ωm)
//
// evaluated with fixed-order Gauss–Legendre quadrature, so results are
// deterministic and a [FlatLambdaCDM] is safe for concurrent use.
package cosmo
