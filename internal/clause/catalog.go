// Package clause decides which clauses appear in a will and in what order.
//
// Selection is a single pass over a fixed catalogue: a clause is included
// exactly when every flag it requires is set in the context. There is no
// scoring, no fallthrough, and no second pass. The same context always
// produces the same clause list.
package clause

// ID is a stable clause identifier. IDs are part of the persisted audit
// record and must never be renamed.
type ID string

const (
	TitleIdentification          ID = "title_identification"
	Revocation                   ID = "revocation"
	Definitions                  ID = "definitions"
	AppointmentExecutorsTrustees ID = "appointment_executors_trustees"
	FuneralWishes                ID = "funeral_wishes"
	Guardianship                 ID = "guardianship"
	DistributionOverview         ID = "distribution_overview"
	SpecificGifts                ID = "specific_gifts"
	ResidueDistribution          ID = "residue_distribution"
	Survivorship                 ID = "survivorship"
	Substitution                 ID = "substitution"
	MinorTrusts                  ID = "minor_trusts"
	AdministrativePowers         ID = "administrative_powers"
	DigitalAssets                ID = "digital_assets"
	Pets                         ID = "pets"
	BusinessInterests            ID = "business_interests"
	ExclusionNote                ID = "exclusion_note"
	LifeSustainingStatement      ID = "life_sustaining_statement"
	Attestation                  ID = "attestation"
)

// Order is the fixed document order. Selection filters this list; it never
// reorders it. Title is always first and attestation always last.
var Order = []ID{
	TitleIdentification,
	Revocation,
	Definitions,
	AppointmentExecutorsTrustees,
	FuneralWishes,
	Guardianship,
	DistributionOverview,
	SpecificGifts,
	ResidueDistribution,
	Survivorship,
	Substitution,
	MinorTrusts,
	AdministrativePowers,
	DigitalAssets,
	Pets,
	BusinessInterests,
	ExclusionNote,
	LifeSustainingStatement,
	Attestation,
}

// Dependency names the flags that must all be set for a clause to be
// included. An empty RequiredFlags list means the clause is always included.
type Dependency struct {
	ClauseID      ID
	RequiredFlags []string
	Notes         string
}

var dependencies = map[ID]Dependency{
	TitleIdentification: {
		ClauseID: TitleIdentification,
		Notes:    "Always included",
	},
	Revocation: {
		ClauseID: Revocation,
		Notes:    "Always included",
	},
	Definitions: {
		ClauseID: Definitions,
		Notes:    "Always included",
	},
	AppointmentExecutorsTrustees: {
		ClauseID: AppointmentExecutorsTrustees,
		Notes:    "Always included, every will needs executors",
	},
	FuneralWishes: {
		ClauseID:      FuneralWishes,
		RequiredFlags: []string{"has_funeral_wishes"},
		Notes:         "Only if funeral wishes toggle is enabled",
	},
	Guardianship: {
		ClauseID:      Guardianship,
		RequiredFlags: []string{"has_guardianship"},
		Notes:         "Only if minor children exist and a guardian is appointed",
	},
	DistributionOverview: {
		ClauseID: DistributionOverview,
		Notes:    "Always included as the distribution roadmap",
	},
	SpecificGifts: {
		ClauseID:      SpecificGifts,
		RequiredFlags: []string{"has_specific_gifts"},
		Notes:         "Only if specific gifts exist",
	},
	ResidueDistribution: {
		ClauseID: ResidueDistribution,
		Notes:    "Always included, every will has residue",
	},
	Survivorship: {
		ClauseID: Survivorship,
		Notes:    "Always included",
	},
	Substitution: {
		ClauseID:      Substitution,
		RequiredFlags: []string{"has_substitution"},
		Notes:         "Only if a substitution rule is configured",
	},
	MinorTrusts: {
		ClauseID:      MinorTrusts,
		RequiredFlags: []string{"has_minor_trusts"},
		Notes:         "Only if minor trusts are enabled and applicable",
	},
	AdministrativePowers: {
		ClauseID: AdministrativePowers,
		Notes:    "Always included",
	},
	DigitalAssets: {
		ClauseID:      DigitalAssets,
		RequiredFlags: []string{"has_digital_assets"},
		Notes:         "Only if digital assets toggle is enabled",
	},
	Pets: {
		ClauseID:      Pets,
		RequiredFlags: []string{"has_pets"},
		Notes:         "Only if pets toggle is enabled",
	},
	BusinessInterests: {
		ClauseID:      BusinessInterests,
		RequiredFlags: []string{"has_business_interests"},
		Notes:         "Only if business interests toggle is enabled",
	},
	ExclusionNote: {
		ClauseID:      ExclusionNote,
		RequiredFlags: []string{"has_exclusions"},
		Notes:         "Only if exclusion toggle is enabled",
	},
	LifeSustainingStatement: {
		ClauseID:      LifeSustainingStatement,
		RequiredFlags: []string{"has_life_sustaining_statement"},
		Notes:         "Only if life sustaining toggle is enabled",
	},
	Attestation: {
		ClauseID: Attestation,
		Notes:    "Always included, must be last",
	},
}

var titles = map[ID]string{
	TitleIdentification:          "Title and Identification",
	Revocation:                   "Revocation of Previous Wills",
	Definitions:                  "Definitions and Interpretation",
	AppointmentExecutorsTrustees: "Appointment of Executors and Trustees",
	FuneralWishes:                "Funeral Wishes",
	Guardianship:                 "Appointment of Guardian",
	DistributionOverview:         "Distribution Plan Overview",
	SpecificGifts:                "Specific Gifts",
	ResidueDistribution:          "Distribution of Residue",
	Survivorship:                 "Survivorship Period",
	Substitution:                 "Substitution of Beneficiaries",
	MinorTrusts:                  "Trusts for Minor Beneficiaries",
	AdministrativePowers:         "Powers of Executors and Trustees",
	DigitalAssets:                "Digital Assets",
	Pets:                         "Provision for Pets",
	BusinessInterests:            "Business Interests",
	ExclusionNote:                "Exclusion Note",
	LifeSustainingStatement:      "Life Sustaining Treatment Statement",
	Attestation:                  "Attestation and Execution",
}

var descriptions = map[ID]string{
	TitleIdentification:          "Identifies the will maker and declares this document as their last will.",
	Revocation:                   "Revokes all previous wills and codicils.",
	Definitions:                  "Defines key terms used throughout the will.",
	AppointmentExecutorsTrustees: "Appoints executors and trustees to administer the estate.",
	FuneralWishes:                "Expresses preferences for funeral arrangements.",
	Guardianship:                 "Appoints a guardian for minor children.",
	DistributionOverview:         "Provides an overview of the distribution plan.",
	SpecificGifts:                "Details specific gifts of cash or property.",
	ResidueDistribution:          "Directs how the residue of the estate should be distributed.",
	Survivorship:                 "Specifies the period a beneficiary must survive the will maker.",
	Substitution:                 "Provides for substitution if a beneficiary predeceases.",
	MinorTrusts:                  "Establishes trusts for beneficiaries who are minors.",
	AdministrativePowers:         "Grants powers to executors and trustees.",
	DigitalAssets:                "Provides for management of digital assets.",
	Pets:                         "Makes provision for the care of pets.",
	BusinessInterests:            "Directs the disposition of business interests.",
	ExclusionNote:                "Notes exclusions and reasons for exclusion.",
	LifeSustainingStatement:      "Expresses wishes regarding life sustaining treatment.",
	Attestation:                  "Execution and witnessing provisions.",
}

// Title returns the display heading for a clause.
func Title(id ID) string {
	return titles[id]
}

// Description returns a one-line summary of what the clause covers.
func Description(id ID) string {
	return descriptions[id]
}

// DependencyOf returns the dependency record for a clause. The second return
// is false for unknown IDs.
func DependencyOf(id ID) (Dependency, bool) {
	dep, ok := dependencies[id]
	return dep, ok
}

// depends reports whether the clause's required flags are all set.
func depends(id ID, flags map[string]bool) bool {
	dep, ok := dependencies[id]
	if !ok {
		return false
	}
	for _, name := range dep.RequiredFlags {
		if !flags[name] {
			return false
		}
	}
	return true
}
