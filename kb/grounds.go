package kb

import "github.com/signalsfoundry/groundwave/model"

// DefaultGroundName is the ground assumed when a station names none.
const DefaultGroundName = "medium dry ground"

// DefaultGroundTypes returns the ground electrical characteristics of the
// ITU-R P.368 ground-wave curves.
func DefaultGroundTypes() []model.GroundType {
	return []model.GroundType{
		{Name: "sea water, low salinity", Epsilon: 80, SigmaSPerM: 1},
		{Name: "sea water, average salinity", Epsilon: 70, SigmaSPerM: 5},
		{Name: "fresh water", Epsilon: 80, SigmaSPerM: 3e-3},
		{Name: "land", Epsilon: 22, SigmaSPerM: 3e-3},
		{Name: "wet ground", Epsilon: 30, SigmaSPerM: 1e-2},
		{Name: "medium dry ground", Epsilon: 15, SigmaSPerM: 1e-3},
		{Name: "very dry ground", Epsilon: 3, SigmaSPerM: 1e-4},
		{Name: "fresh water ice, -1 C", Epsilon: 3, SigmaSPerM: 3e-5},
		{Name: "fresh water ice, -10 C", Epsilon: 3, SigmaSPerM: 1e-5},
	}
}
