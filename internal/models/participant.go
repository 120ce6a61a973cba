package models

// Participant is a visitor who submitted the entry form. It is held by
// value in the visitor's session and copied into the spin completion.
type Participant struct {
	// Name is the normalized (trimmed, upper-cased) display name
	Name string

	// CountryCode is the dialling prefix including the '+'
	CountryCode string

	// Mobile is the local number, digits only
	Mobile string

	// OriginIP is the client address the form came from, may be empty
	OriginIP string
}

// FullMobile is the number as stored and used for the duplicate check
func (p Participant) FullMobile() string {
	return p.CountryCode + p.Mobile
}
