package domain

// Immutable geographic position of a vendor or event (latitude, longitude).
type Coordinates struct {
	Lat float64
	Lng float64
}
