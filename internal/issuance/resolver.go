package issuance

import (
	"net/http"
	"strings"
	"unicode"

	iderr "github.com/aevon-lab/project-idmint/internal/core/errors"
)

const (
	HeaderContinent = "X-Geo-Continent"
	HeaderCountry   = "X-Geo-Country"
	HeaderColo      = "X-Geo-Colo"
	HeaderPartition = "X-Partition"

	defaultContinent = "XX"
	defaultCountry   = "XX"
	defaultColo      = "XXX"

	maxPartitionLength = 256
)

// PartitionResolver maps an inbound request to a stable partition identity.
type PartitionResolver interface {
	Resolve(r *http.Request) (string, error)
}

// GeoResolver builds "continent/country/colo" from edge-router headers.
// Missing headers fall back to XX/XX/XXX, so untagged traffic shares one partition.
type GeoResolver struct {
	// TrustOverride honours X-Partition. The edge router must strip it from client requests.
	TrustOverride bool
}

func (g GeoResolver) Resolve(r *http.Request) (string, error) {
	if g.TrustOverride {
		if p := strings.TrimSpace(r.Header.Get(HeaderPartition)); p != "" {
			return p, checkIdentity(p)
		}
	}

	id := headerOr(r, HeaderContinent, defaultContinent) + "/" +
		headerOr(r, HeaderCountry, defaultCountry) + "/" +
		headerOr(r, HeaderColo, defaultColo)
	return id, checkIdentity(id)
}

func headerOr(r *http.Request, name, fallback string) string {
	if v := strings.TrimSpace(r.Header.Get(name)); v != "" {
		return strings.ToUpper(v)
	}
	return fallback
}

func checkIdentity(id string) error {
	if len(id) > maxPartitionLength {
		return &iderr.ValidationError{Field: "partition", Reason: "longer than 256 bytes"}
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return &iderr.ValidationError{Field: "partition", Reason: "contains control characters"}
		}
	}
	return nil
}
