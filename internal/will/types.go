// Package will defines the canonical context for one will-generation request.
//
// A Context is built exactly once from a validated payload and is immutable
// from the point of view of every downstream stage: clause selection, plan
// rendering, and compilation all read it and none of them mutate it or reach
// back into the raw payload. Every derived flag is computed in Build and
// nowhere else - this is the single-source-of-truth rule that makes clause
// selection decidable from the Context alone.
package will

import "strings"

// Address is a structured postal address. Equality is by value; an Address
// has no identity of its own.
type Address struct {
	Street   string
	Suburb   string
	State    string
	Postcode string
}

// SingleLine joins the populated address parts with commas.
func (a Address) SingleLine() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{a.Street, a.Suburb, a.State, a.Postcode} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// Multiline returns the address as display lines: street first, then the
// suburb/state/postcode line. Empty parts are dropped.
func (a Address) Multiline() []string {
	var lines []string
	if a.Street != "" {
		lines = append(lines, a.Street)
	}
	second := make([]string, 0, 3)
	for _, p := range []string{a.Suburb, a.State, a.Postcode} {
		if p != "" {
			second = append(second, p)
		}
	}
	if len(second) > 0 {
		lines = append(lines, strings.Join(second, " "))
	}
	return lines
}

// WillMaker is the testator.
type WillMaker struct {
	FullName           string
	DOB                string
	Occupation         string
	Address            Address
	Email              string
	Phone              string
	RelationshipStatus string
}

// Partner is the will maker's spouse or de facto partner.
type Partner struct {
	FullName string
	DOB      string
	Address  Address
	Email    string
	Phone    string
}

// Child of the will maker.
type Child struct {
	FullName                   string
	DOB                        string
	RelationshipType           string
	IsExpectedToBeMinorAtDeath bool
	SpecialNeeds               bool
}

// Dependant is a non-child dependant.
type Dependant struct {
	FullName             string
	RelationshipCategory string
}

// Executor administers the estate. The same shape is reused for backup
// executors and named minor-trust trustees.
type Executor struct {
	FullName     string
	Relationship string
	Address      Address
	Phone        string
	Email        string
}

// Guardian for minor children.
type Guardian struct {
	FullName     string
	Relationship string
	Address      Address
	Phone        string
}

// BeneficiaryType discriminates individuals from charities.
type BeneficiaryType string

const (
	BeneficiaryIndividual BeneficiaryType = "individual"
	BeneficiaryCharity    BeneficiaryType = "charity"
)

// GiftRole determines how a beneficiary participates in the distribution.
type GiftRole string

const (
	GiftRoleResidue        GiftRole = "residue"
	GiftRoleSpecificCash   GiftRole = "specific_cash"
	GiftRoleSpecificItem   GiftRole = "specific_item"
	GiftRolePercentageOnly GiftRole = "percentage_only"
)

// Beneficiary is a person or charity entitled to receive under the will.
// ID is stable: either supplied in the payload or derived from the input index.
type Beneficiary struct {
	ID                  string
	Type                BeneficiaryType
	FullName            string
	Relationship        string
	Address             Address
	ABN                 string
	GiftRole            GiftRole
	ResidueSharePercent *float64
	Percentage          *float64
	CashAmount          *float64
	ItemDescription     string
}

// GiftType for a specific gift: cash or item.
type GiftType string

const (
	GiftCash GiftType = "cash"
	GiftItem GiftType = "item"
)

// SpecificGift is projected from a beneficiary with a specific_cash or
// specific_item role. Never supplied directly in the payload.
type SpecificGift struct {
	BeneficiaryID   string
	BeneficiaryName string
	GiftType        GiftType
	CashAmount      *float64
	ItemDescription string
}

// ResidueBeneficiary is projected from a beneficiary with the residue role.
type ResidueBeneficiary struct {
	BeneficiaryID   string
	BeneficiaryName string
	SharePercent    *float64
}

// BusinessInterest directs the disposition of a business holding. The
// recipient is resolved at build time, either from the beneficiary collection
// or from an inline person.
type BusinessInterest struct {
	InterestType     string
	EntityName       string
	ACN              string
	ABN              string
	RecipientMode    string
	RecipientID      string
	RecipientName    string
	RecipientAddress Address
}

// Exclusion records a deliberate omission from the will.
type Exclusion struct {
	PersonName string
	Category   string
	Reasons    []string
	OtherNote  string
}

// DerivedFlags are the booleans that drive clause selection. They are
// computed once, in Build, and nowhere else.
type DerivedFlags struct {
	HasPartner                 bool
	HasChildren                bool
	HasMinorChildren           bool
	HasGuardianship            bool
	HasSpecificGifts           bool
	HasResidueScheme           bool
	HasPercentages             bool
	HasExclusions              bool
	HasDigitalAssets           bool
	HasPets                    bool
	HasBusinessInterests       bool
	HasFuneralWishes           bool
	HasLifeSustainingStatement bool
	HasMinorTrusts             bool
	HasSubstitution            bool
	HasAlternateBeneficiary    bool
}

// Map exposes the flags by their stable names for the clause dependency
// tables. Keys must not change: the clause engine addresses flags by name.
func (f DerivedFlags) Map() map[string]bool {
	return map[string]bool{
		"has_partner":                   f.HasPartner,
		"has_children":                  f.HasChildren,
		"has_minor_children":            f.HasMinorChildren,
		"has_guardianship":              f.HasGuardianship,
		"has_specific_gifts":            f.HasSpecificGifts,
		"has_residue_scheme":            f.HasResidueScheme,
		"has_percentages":               f.HasPercentages,
		"has_exclusions":                f.HasExclusions,
		"has_digital_assets":            f.HasDigitalAssets,
		"has_pets":                      f.HasPets,
		"has_business_interests":        f.HasBusinessInterests,
		"has_funeral_wishes":            f.HasFuneralWishes,
		"has_life_sustaining_statement": f.HasLifeSustainingStatement,
		"has_minor_trusts":              f.HasMinorTrusts,
		"has_substitution":              f.HasSubstitution,
		"has_alternate_beneficiary":     f.HasAlternateBeneficiary,
	}
}

// UnresolvedRef records a cross-reference that pointed at no beneficiary.
// Unresolved references never fail the build (referential integrity is the
// validator's job upstream) but are surfaced for callers that want strictness.
type UnresolvedRef struct {
	Field string
	ID    string
}

// Context is the complete normalized aggregate for one generation request.
// It owns every entity by value; nothing is shared across contexts.
type Context struct {
	WillMaker       WillMaker
	Partner         *Partner
	Separation      map[string]any
	Children        []Child
	OtherDependants []Dependant
	Executors       []Executor
	BackupExecutors []Executor
	Guardian        *Guardian
	BackupGuardian  *Guardian

	Beneficiaries        []Beneficiary
	SpecificGifts        []SpecificGift
	ResidueBeneficiaries []ResidueBeneficiary
	BusinessInterests    []BusinessInterest
	Exclusions           []Exclusion

	DistributionScheme       string
	SurvivorshipDays         int
	SubstitutionRule         string
	AlternateBeneficiaryID   string
	AlternateBeneficiaryName string

	MinorTrustsEnabled     bool
	MinorTrustsVestingAge  int
	MinorTrustsTrusteeMode string
	MinorTrustsTrustee     *Executor

	FuneralEnabled    bool
	FuneralPreference string
	FuneralNotes      string

	DigitalAssetsEnabled              bool
	DigitalAssetsAuthority            bool
	DigitalAssetsCategories           []string
	DigitalAssetsInstructionsLocation string

	PetsEnabled      bool
	PetsCount        int
	PetsSummary      string
	PetsCarerMode    string
	PetsCarerName    string
	PetsCarerAddress Address
	PetsCashGift     *float64

	BusinessEnabled       bool
	ExclusionEnabled      bool
	LifeSustainingEnabled bool

	LifeSustainingTemplate string
	LifeSustainingValues   []string

	Assets map[string]any

	IntendedSigningDate string

	Flags DerivedFlags

	BeneficiaryCount      int
	MinorBeneficiaryCount int
	PercentageSum         float64
	ExecutorCount         int

	UnresolvedRefs []UnresolvedRef
}

// ToMap is a debug projection of the context's identity, flags, and counts.
func (c *Context) ToMap() map[string]any {
	return map[string]any{
		"will_maker": map[string]any{
			"full_name":           c.WillMaker.FullName,
			"relationship_status": c.WillMaker.RelationshipStatus,
		},
		"derived_flags": c.Flags.Map(),
		"counts": map[string]any{
			"beneficiary_count":       c.BeneficiaryCount,
			"minor_beneficiary_count": c.MinorBeneficiaryCount,
			"percentage_sum":          c.PercentageSum,
			"executor_count":          c.ExecutorCount,
		},
	}
}
