package observed

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/cwbudde/algo-sed/sed/spectrum"
	"github.com/klauspost/compress/gzip"
)

var (
	// ErrNoLibrary is returned when a Library has no file system.
	ErrNoLibrary = errors.New("observed: SED library directory not configured")
	// ErrInvalidSEDFile wraps parse failures of tabulated SED files.
	ErrInvalidSEDFile = errors.New("observed: invalid SED file")
)

// Library reads tabulated point-source SEDs. Files hold two whitespace
// separated columns, wavelength in nm and flambda, with '#' comments.
// Names ending in ".gz" are gunzipped.
type Library struct {
	fsys fs.FS
}

// NewLibrary returns a library rooted at fsys, typically
// os.DirFS(cfg.SEDLibraryDir).
func NewLibrary(fsys fs.FS) *Library {
	return &Library{fsys: fsys}
}

// Load reads relPath and applies redshift z when z > 0.
func (l *Library) Load(relPath string, z float64) (*spectrum.Spectrum, error) {
	if l == nil || l.fsys == nil {
		return nil, ErrNoLibrary
	}
	if err := checkRedshift("redshift", z); err != nil {
		return nil, err
	}

	f, err := l.fsys.Open(relPath)
	if err != nil {
		return nil, fmt.Errorf("observed: open %s: %w", relPath, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(relPath, ".gz") {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidSEDFile, relPath, err)
		}
		defer zr.Close()
		r = zr
	}

	wave, flux, err := spectrum.ReadColumns(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidSEDFile, relPath, err)
	}

	sed, err := spectrum.New(wave, flux, spectrum.FluxPerWavelength, spectrum.WithInterpolant(spectrum.Linear))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidSEDFile, relPath, err)
	}
	if z > 0 {
		return sed.AtRedshift(z)
	}
	return sed, nil
}
