package analyst

import (
	"reflect"
	"testing"

	"github.com/opalia-labs/palmares/internal/vocab"
)

func testVocab(t *testing.T) *vocab.Vocab {
	t.Helper()
	v, err := vocab.Load()
	if err != nil {
		t.Fatalf("load vocab: %v", err)
	}
	return v
}

func TestLocationValidate(t *testing.T) {
	f := &locationFacet{vocab: testVocab(t)}
	prior := Confirm("Paris")

	// Not mentioned keeps the carried-over value.
	if got := f.Validate(Candidate{}, prior); !reflect.DeepEqual(got, prior) {
		t.Errorf("unmentioned location = %+v, want prior", got)
	}

	// A new known city overrides.
	got := f.Validate(Candidate{Mentioned: true, Value: "lyon", Status: locFrench}, prior)
	if !got.IsConfirmed() || got.Value != "Lyon" {
		t.Errorf("expected Confirmed(Lyon), got %+v", got)
	}

	// Foreign interrupts even over a confirmed prior.
	got = f.Validate(Candidate{Mentioned: true, Value: "Genève", Status: locForeign}, prior)
	if !got.IsPending() || got.Reason != ReasonForeign {
		t.Errorf("expected pending/foreign, got %+v", got)
	}

	// Unknown French city confirms as-is so retrieval can name the miss.
	got = f.Validate(Candidate{Mentioned: true, Value: "Trifouillis", Status: locFrench}, FacetValue{})
	if !got.IsConfirmed() || got.Value != "Trifouillis" {
		t.Errorf("expected Confirmed(Trifouillis), got %+v", got)
	}
}

func TestLocationValidate_Homonym(t *testing.T) {
	f := &locationFacet{vocab: testVocab(t)}

	// No prior: the homonym asks for disambiguation.
	got := f.Validate(Candidate{Mentioned: true, Value: "Saint-Denis", Status: locFrench}, FacetValue{})
	if !got.IsPending() || got.Reason != ReasonAmbiguous {
		t.Fatalf("expected pending/ambiguous, got %+v", got)
	}
	if len(got.Candidates) != 2 {
		t.Errorf("expected 2 candidate labels, got %v", got.Candidates)
	}

	// A confirmed prior wins over an ambiguous mention.
	prior := Confirm("Paris")
	if got := f.Validate(Candidate{Mentioned: true, Value: "Saint-Denis", Status: locFrench}, prior); !reflect.DeepEqual(got, prior) {
		t.Errorf("expected carried-over Paris, got %+v", got)
	}

	// The departmental label resolves the homonym.
	got = f.Validate(Candidate{Mentioned: true, Value: "Saint-Denis (La Réunion)", Status: locFrench}, FacetValue{})
	if !got.IsConfirmed() || got.Value != "Saint-Denis (La Réunion)" {
		t.Errorf("expected confirmed departmental label, got %+v", got)
	}
}

func TestSpecialtyValidate(t *testing.T) {
	f := &specialtyFacet{vocab: testVocab(t)}

	// Alias resolves to the canonical name.
	got := f.Validate(Candidate{Mentioned: true, Value: "cardio"}, FacetValue{})
	if !got.IsConfirmed() || got.Value != "Cardiologie" {
		t.Errorf("expected Confirmed(Cardiologie), got %+v", got)
	}

	// Typo within the edit-distance budget.
	got = f.Validate(Candidate{Mentioned: true, Value: "protese de hanche"}, FacetValue{})
	if !got.IsConfirmed() || got.Value != "Prothèse de hanche" {
		t.Errorf("expected Confirmed(Prothèse de hanche), got %+v", got)
	}

	// "cancer" alone matches several specialties.
	got = f.Validate(Candidate{Mentioned: true, Value: "cancer"}, FacetValue{})
	if !got.IsPending() || got.Reason != ReasonAmbiguous {
		t.Fatalf("expected pending/ambiguous, got %+v", got)
	}
	if len(got.Candidates) < 2 {
		t.Errorf("expected several candidates, got %v", got.Candidates)
	}

	// No match keeps the carried-over value.
	prior := Confirm("Cardiologie")
	if got := f.Validate(Candidate{Mentioned: true, Value: "alchimie"}, prior); !reflect.DeepEqual(got, prior) {
		t.Errorf("expected carried-over specialty, got %+v", got)
	}
}

func TestSpecialtyValidate_Idempotent(t *testing.T) {
	f := &specialtyFacet{vocab: testVocab(t)}
	cand := Candidate{Mentioned: true, Value: "cancer"}

	first := f.Validate(cand, FacetValue{})
	second := f.Validate(cand, FacetValue{})
	if !reflect.DeepEqual(first, second) {
		t.Errorf("validation not idempotent:\n first  %+v\n second %+v", first, second)
	}
}

func TestInstitutionValidate(t *testing.T) {
	f := &institutionFacet{vocab: testVocab(t)}

	// Exact folded match.
	got := f.Validate(Candidate{Mentioned: true, Value: "chu de bordeaux"}, FacetValue{})
	if !got.IsConfirmed() || got.Value != "CHU de Bordeaux" {
		t.Errorf("expected Confirmed(CHU de Bordeaux), got %+v", got)
	}

	// Partial official name.
	got = f.Validate(Candidate{Mentioned: true, Value: "clinique pasteur"}, FacetValue{})
	if !got.IsConfirmed() || got.Value != "Clinique Pasteur de Toulouse" {
		t.Errorf("expected Confirmed(Clinique Pasteur de Toulouse), got %+v", got)
	}

	// Unknown establishment interrupts with its own reason.
	got = f.Validate(Candidate{Mentioned: true, Value: "Clinique des Mystères"}, Confirm("CHU de Lille"))
	if !got.IsPending() || got.Reason != ReasonUnknownInst {
		t.Errorf("expected pending/unknown_institution, got %+v", got)
	}
}

func TestCategoryValidate(t *testing.T) {
	f := &categoryFacet{}

	got := f.Validate(Candidate{Mentioned: true, Value: "prive"}, FacetValue{})
	if !got.IsConfirmed() || got.Value != vocab.CategoryPrivate {
		t.Errorf("expected Confirmed(Privé), got %+v", got)
	}

	prior := Confirm(vocab.CategoryPublic)
	if got := f.Validate(Candidate{Mentioned: true, Value: "mutualiste"}, prior); !reflect.DeepEqual(got, prior) {
		t.Errorf("unmappable category must keep prior, got %+v", got)
	}
}

func TestCountValidate(t *testing.T) {
	f := &countFacet{}

	got := f.Validate(Candidate{Mentioned: true, Value: "5"}, FacetValue{})
	if !got.IsConfirmed() || got.Value != "5" {
		t.Errorf("expected Confirmed(5), got %+v", got)
	}

	prior := Confirm("3")
	for _, bad := range []string{"0", "11", "-2", "beaucoup"} {
		if got := f.Validate(Candidate{Mentioned: true, Value: bad}, prior); !reflect.DeepEqual(got, prior) {
			t.Errorf("out-of-bounds count %q must keep prior, got %+v", bad, got)
		}
	}
}
