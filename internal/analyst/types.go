package analyst

import "strconv"

// FacetState tags the lifecycle of one facet value. The zero value is
// Unset so an empty ResolvedFilters is valid.
type FacetState string

const (
	Unset     FacetState = ""
	Pending   FacetState = "pending"
	Confirmed FacetState = "confirmed"
)

// Pending reasons, used by the composer to pick the clarification wording.
const (
	ReasonAmbiguous   = "ambiguous"
	ReasonForeign     = "foreign"
	ReasonUnknownInst = "unknown_institution"
)

// Facet names in the fixed resolution order.
const (
	FacetLocation            = "location"
	FacetInstitutionName     = "institution_name"
	FacetInstitutionCategory = "institution_category"
	FacetResultCount         = "result_count"
	FacetSpecialty           = "specialty"
)

// FacetValue is one slot of the resolved filter set. A Confirmed value has
// passed its facet's validator; a Pending value needs user disambiguation
// before data retrieval may use the facet.
type FacetValue struct {
	State      FacetState `json:"state,omitempty"`
	Value      string     `json:"value,omitempty"`
	Reason     string     `json:"reason,omitempty"`
	Candidates []string   `json:"candidates,omitempty"`
}

func (v FacetValue) IsUnset() bool     { return v.State == Unset }
func (v FacetValue) IsPending() bool   { return v.State == Pending }
func (v FacetValue) IsConfirmed() bool { return v.State == Confirmed }

// Confirm wraps a validator-approved value.
func Confirm(value string) FacetValue {
	return FacetValue{State: Confirmed, Value: value}
}

// NeedsClarification marks a facet that blocks retrieval until the user
// disambiguates.
func NeedsClarification(reason, value string, candidates ...string) FacetValue {
	return FacetValue{State: Pending, Value: value, Reason: reason, Candidates: candidates}
}

// ResolvedFilters is the cumulative, validated filter set of a session.
// It serializes losslessly: facet states survive a JSON round-trip.
type ResolvedFilters struct {
	Location            FacetValue `json:"location"`
	InstitutionName     FacetValue `json:"institution_name"`
	InstitutionCategory FacetValue `json:"institution_category"`
	ResultCount         FacetValue `json:"result_count"`
	Specialty           FacetValue `json:"specialty"`
}

// Get returns the slot for a facet name. Unknown names return an unset
// value; they cannot occur with the fixed facet list.
func (f ResolvedFilters) Get(facet string) FacetValue {
	switch facet {
	case FacetLocation:
		return f.Location
	case FacetInstitutionName:
		return f.InstitutionName
	case FacetInstitutionCategory:
		return f.InstitutionCategory
	case FacetResultCount:
		return f.ResultCount
	case FacetSpecialty:
		return f.Specialty
	}
	return FacetValue{}
}

// Set replaces the slot for a facet name.
func (f *ResolvedFilters) Set(facet string, v FacetValue) {
	switch facet {
	case FacetLocation:
		f.Location = v
	case FacetInstitutionName:
		f.InstitutionName = v
	case FacetInstitutionCategory:
		f.InstitutionCategory = v
	case FacetResultCount:
		f.ResultCount = v
	case FacetSpecialty:
		f.Specialty = v
	}
}

// FirstPending returns the first Pending facet in resolution order, if any.
func (f ResolvedFilters) FirstPending() (string, FacetValue, bool) {
	for _, name := range FacetOrder {
		if v := f.Get(name); v.IsPending() {
			return name, v, true
		}
	}
	return "", FacetValue{}, false
}

// CountOrDefault parses the confirmed result count, falling back to def
// when the facet is not confirmed. Confirmed counts are validator-checked
// integers, so a parse failure also falls back.
func (f ResolvedFilters) CountOrDefault(def int) int {
	if !f.ResultCount.IsConfirmed() {
		return def
	}
	n, err := strconv.Atoi(f.ResultCount.Value)
	if err != nil {
		return def
	}
	return n
}

// FacetOrder is the fixed order facets are validated and merged in,
// regardless of extraction completion order.
var FacetOrder = []string{
	FacetLocation,
	FacetInstitutionName,
	FacetInstitutionCategory,
	FacetResultCount,
	FacetSpecialty,
}

// Candidate is one facet extractor's raw output for a turn, before
// validation. Status carries extractor-specific tags (location status
// codes); Value is empty when the facet was not mentioned.
type Candidate struct {
	Mentioned bool
	Value     string
	Status    string
}
