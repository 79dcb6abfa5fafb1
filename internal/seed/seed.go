// Package seed generates deterministic fake property listings for
// development stores and load tests.
package seed

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/helixir/property-service/internal/domain"
)

// PropertyTypes are the types assigned to generated properties, in rotation.
var PropertyTypes = []string{"House", "Townhouse", "Apartment", "Condo", "Bungalow"}

var streetNames = []string{
	"Harbour Road", "Station Street", "Elm Avenue", "Victoria Parade",
	"Mill Lane", "Church Street", "Ocean View Drive", "Kings Way",
}

var suburbs = []string{
	"Northcote", "Richmond", "Bondi", "Fremantle", "Glenelg", "Paddington",
}

// Properties returns n unsaved properties. The same seed always produces the
// same listings. Every generated property has a type.
func Properties(n int, seed uint64) []*domain.Property {
	if n <= 0 {
		return nil
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	out := make([]*domain.Property, n)
	for i := range out {
		typ := PropertyTypes[i%len(PropertyTypes)]
		out[i] = &domain.Property{
			Address: fmt.Sprintf("%d %s, %s",
				1+rng.IntN(999),
				streetNames[rng.IntN(len(streetNames))],
				suburbs[rng.IntN(len(suburbs))]),
			// Whole dollars between 150k and 2.5m.
			Price:     math.Round(150000 + rng.Float64()*2350000),
			Bedrooms:  float64(1 + rng.IntN(6)),
			Bathrooms: float64(1 + rng.IntN(4)),
			Type:      &typ,
		}
	}
	return out
}
