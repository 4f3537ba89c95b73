package routing

import "github.com/starford/skyroute/internal/models"

// SelectBest returns the cheapest, fastest and least-transfer itineraries.
// Each criterion is a stable minimum: on ties the earliest itinerary in
// input order wins. ok is false when itineraries is empty.
func SelectBest(itineraries []models.Itinerary) (best models.BestRoutes, ok bool) {
	if len(itineraries) == 0 {
		return models.BestRoutes{}, false
	}

	cheapest, fastest, fewest := 0, 0, 0
	for i := 1; i < len(itineraries); i++ {
		it := itineraries[i]
		if it.TotalPrice < itineraries[cheapest].TotalPrice {
			cheapest = i
		}
		if it.TotalDuration < itineraries[fastest].TotalDuration {
			fastest = i
		}
		if it.Transfers < itineraries[fewest].Transfers {
			fewest = i
		}
	}

	return models.BestRoutes{
		Cheapest:       &itineraries[cheapest],
		Fastest:        &itineraries[fastest],
		LeastTransfers: &itineraries[fewest],
	}, true
}
