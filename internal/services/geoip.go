package services

import (
	"net"
)

// GeoResolver maps a client IP to a coarse location for event enrichment.
type GeoResolver interface {
	Resolve(ip string) (country, city string)
}

// StaticGeoResolver is the built-in resolver: private and loopback
// addresses resolve to the development default, everything else to the
// production default. A real GeoIP database can replace it behind the
// same interface.
type StaticGeoResolver struct{}

func NewStaticGeoResolver() *StaticGeoResolver {
	return &StaticGeoResolver{}
}

func (r *StaticGeoResolver) Resolve(ip string) (string, string) {
	parsed := net.ParseIP(ip)
	if parsed != nil && (parsed.IsLoopback() || parsed.IsPrivate()) {
		return "RU", "Moscow"
	}
	return "US", "New York"
}
