package repository

// Profile selects a preset of signal thresholds and allocation constants.
type Profile string

const (
	ProfileAggressive   Profile = "aggressive"
	ProfileBalanced     Profile = "balanced"
	ProfileConservative Profile = "conservative"
)

// IsValidProfile returns true if p is a supported strategy profile.
func IsValidProfile(p Profile) bool {
	switch p {
	case ProfileAggressive, ProfileBalanced, ProfileConservative:
		return true
	default:
		return false
	}
}

// DefaultProfile returns the default strategy profile.
func DefaultProfile() Profile { return ProfileBalanced }

// NormalizeProfile converts a raw string to a valid profile (or default).
func NormalizeProfile(s string) Profile {
	if s == "" {
		return DefaultProfile()
	}
	p := Profile(s)
	if IsValidProfile(p) {
		return p
	}
	return DefaultProfile()
}

// AllocationMode controls how much of the available budget a qualifying
// trade deploys.
type AllocationMode string

const (
	AllocationFull   AllocationMode = "full"
	AllocationTiered AllocationMode = "tiered"
)

// NormalizeAllocationMode converts a raw string to a valid mode (or full).
func NormalizeAllocationMode(s string) AllocationMode {
	if AllocationMode(s) == AllocationTiered {
		return AllocationTiered
	}
	return AllocationFull
}
