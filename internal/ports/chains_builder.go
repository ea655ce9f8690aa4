package ports

import "earthwork-route-service/internal/domain"

// Contract for strategies that cut the terrain of a field into truckloads.
//
// A builder owns the field it was created with and mutates it: every chain
// it returns has already been applied to the field.
type ChainsBuilder interface {
	// Build one chain collecting quantity units, starting from the peak
	// nearest to from. ok is false when the field has no peak left.
	ChainOfPeaks(from domain.Coordinates, quantity domain.Quantity) (chain *domain.Path, ok bool, err error)
	// Build one chain spreading quantity units over holes.
	ChainOfHoles(from domain.Coordinates, quantity domain.Quantity) (chain *domain.Path, ok bool, err error)

	AllChainsOfPeaks(from domain.Coordinates) ([]*domain.Path, error)
	AllChainsOfHoles(from domain.Coordinates) ([]*domain.Path, error)

	// Move the volume that is not a multiple of the truck capacity, so the
	// rest of the field splits into full truckloads.
	FixField(truck *domain.Truck) error
}
