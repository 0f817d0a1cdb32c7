// Package target picks the gateway deployment a run warms.
package target

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hamed0406/safewarmer/internal/domain"
)

var ErrUnsupported = errors.New("unsupported target configuration")

const (
	SpectrumBaseURL = "https://safe-client-spectrum.mainnet.staging.gnosisdev.com"

	// Transaction service backing the spectrum deployment.
	SpectrumServiceURL = "https://safe-transaction.mainnet.staging.gnosisdev.com"
)

var baseURLs = map[domain.Environment]map[domain.Network]string{
	domain.Production: {
		domain.Mainnet: "https://safe-client.mainnet.gnosis.io",
		domain.Rinkeby: "https://safe-client.rinkeby.gnosis.io",
	},
	domain.Staging: {
		domain.Mainnet: "https://safe-client-mainnet.staging.gnosisdev.com",
		domain.Rinkeby: "https://safe-client-rinkeby.staging.gnosisdev.com",
	},
}

// Selector identifies a gateway deployment.
type Selector struct {
	Network     domain.Network
	Environment domain.Environment
	Spectrum    bool
}

func (s Selector) String() string {
	if s.Spectrum {
		return "spectrum/" + s.Environment.String()
	}
	return s.Environment.String() + "/" + s.Network.String()
}

// Classify derives a Selector from the configured transaction service URL.
// Only the literal "staging" and "rinkeby" markers are recognised.
func Classify(serviceURL string, spectrum bool) Selector {
	s := Selector{Network: domain.Mainnet, Environment: domain.Production, Spectrum: spectrum}
	if strings.Contains(serviceURL, "staging") {
		s.Environment = domain.Staging
	}
	if strings.Contains(serviceURL, "rinkeby") {
		s.Network = domain.Rinkeby
	}
	return s
}

// Resolve returns the gateway base URL for s. The spectrum deployment only
// exists on staging.
func Resolve(s Selector) (string, error) {
	if s.Spectrum {
		if s.Environment != domain.Staging {
			return "", fmt.Errorf("%w: spectrum requires a staging transaction service", ErrUnsupported)
		}
		return SpectrumBaseURL, nil
	}
	u, ok := baseURLs[s.Environment][s.Network]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupported, s)
	}
	return u, nil
}

// ServiceURL is the transaction service queried for the safe list.
func ServiceURL(s Selector, configured, spectrum string) string {
	if s.Spectrum {
		if spectrum == "" {
			return SpectrumServiceURL
		}
		return spectrum
	}
	return configured
}
