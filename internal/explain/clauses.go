package explain

import (
	"fmt"

	"willforge/internal/clause"
	"willforge/internal/will"
)

// ClauseExplanation describes one selected clause in plain English.
type ClauseExplanation struct {
	Number      int      `json:"number"`
	ClauseID    string   `json:"clause_id"`
	Title       string   `json:"title"`
	Purpose     string   `json:"purpose"`
	WhenApplies string   `json:"when_applies"`
	KeyPoints   []string `json:"key_points"`
}

// ClauseExplainability is the clause-by-clause projection of a will.
type ClauseExplainability struct {
	TotalClauses int                 `json:"total_clauses"`
	Clauses      []ClauseExplanation `json:"clauses"`
}

// ExplainClauses runs selection and explains each selected clause.
func ExplainClauses(ctx *will.Context) ClauseExplainability {
	selected := clause.Select(ctx)

	explanations := make([]ClauseExplanation, len(selected))
	for i, id := range selected {
		explanations[i] = ClauseExplanation{
			Number:      i + 1,
			ClauseID:    string(id),
			Title:       clause.Title(id),
			Purpose:     clausePurpose(id),
			WhenApplies: clauseWhenApplies(id),
			KeyPoints:   clauseKeyPoints(id, ctx),
		}
	}
	return ClauseExplainability{TotalClauses: len(explanations), Clauses: explanations}
}

var clausePurposes = map[clause.ID]string{
	clause.TitleIdentification:          "Identifies you as the will maker and establishes this document as your last will.",
	clause.Revocation:                   "Cancels all previous wills and codicils to prevent confusion.",
	clause.Definitions:                  "Sets out how key terms are interpreted throughout the will.",
	clause.AppointmentExecutorsTrustees: "Names the people who will manage your estate and carry out your wishes.",
	clause.FuneralWishes:                "Records your preferences for funeral arrangements.",
	clause.Guardianship:                 "Appoints someone to care for your minor children.",
	clause.DistributionOverview:         "Provides a summary of how your estate will be distributed.",
	clause.SpecificGifts:                "Details particular items or amounts to be given to specific people.",
	clause.ResidueDistribution:          "Directs how the remainder of your estate should be distributed.",
	clause.Survivorship:                 "Sets the period a beneficiary must survive you to inherit.",
	clause.Substitution:                 "Provides what happens if a beneficiary dies before you.",
	clause.MinorTrusts:                  "Establishes how inheritances for minors will be managed.",
	clause.AdministrativePowers:         "Grants powers to your executors to manage the estate.",
	clause.DigitalAssets:                "Provides for the management of your digital assets.",
	clause.Pets:                         "Makes provision for the care of your pets.",
	clause.BusinessInterests:            "Directs how your business interests should be handled.",
	clause.ExclusionNote:                "Notes any persons who are intentionally excluded.",
	clause.LifeSustainingStatement:      "Expresses your wishes about life-sustaining treatment.",
	clause.Attestation:                  "Provides for proper signing and witnessing of the will.",
}

func clausePurpose(id clause.ID) string {
	if p, ok := clausePurposes[id]; ok {
		return p
	}
	return "Standard will provision."
}

var clauseApplicability = map[clause.ID]string{
	clause.TitleIdentification:          "Always applies.",
	clause.Revocation:                   "Always applies.",
	clause.Definitions:                  "Always applies.",
	clause.AppointmentExecutorsTrustees: "Always applies.",
	clause.FuneralWishes:                "Applies because you have expressed funeral wishes.",
	clause.Guardianship:                 "Applies because you have minor children and have appointed a guardian.",
	clause.DistributionOverview:         "Always applies as the roadmap for your distribution scheme.",
	clause.SpecificGifts:                "Applies because you have made specific gifts.",
	clause.ResidueDistribution:          "Always applies.",
	clause.Survivorship:                 "Always applies.",
	clause.Substitution:                 "Applies because you have configured substitution rules.",
	clause.MinorTrusts:                  "Applies because you have minor beneficiaries or children.",
	clause.AdministrativePowers:         "Always applies.",
	clause.DigitalAssets:                "Applies because you have enabled digital assets provisions.",
	clause.Pets:                         "Applies because you have made provision for pets.",
	clause.BusinessInterests:            "Applies because you have business interests.",
	clause.ExclusionNote:                "Applies because you have noted exclusions.",
	clause.LifeSustainingStatement:      "Applies because you have expressed wishes about life-sustaining treatment.",
	clause.Attestation:                  "Always applies - required for valid execution.",
}

func clauseWhenApplies(id clause.ID) string {
	if w, ok := clauseApplicability[id]; ok {
		return w
	}
	return "Applies based on your selections."
}

func clauseKeyPoints(id clause.ID, ctx *will.Context) []string {
	switch id {
	case clause.TitleIdentification:
		return []string{
			"Identifies you by full name and address",
			"Declares this is your last will",
			"Revokes all previous wills",
		}
	case clause.Revocation:
		return []string{
			"Cancels all prior wills and codicils",
			"Ensures only this will governs your estate",
		}
	case clause.Definitions:
		return []string{
			"Defines key terms used in the will",
			"Ensures consistent interpretation",
		}
	case clause.AppointmentExecutorsTrustees:
		return []string{
			fmt.Sprintf("Appoints %d executor(s)", len(ctx.Executors)),
			"Grants authority to administer the estate",
			"May include backup executors",
		}
	case clause.FuneralWishes:
		return []string{
			"Records your funeral preferences",
			"Not legally binding but provides guidance",
			"Executors have final discretion",
		}
	case clause.Guardianship:
		guardianName := "a guardian"
		if ctx.Guardian != nil {
			guardianName = ctx.Guardian.FullName
		}
		return []string{
			fmt.Sprintf("Appoints %s for minor children", guardianName),
			"Takes effect only if both parents are deceased",
			"Subject to court approval if contested",
		}
	case clause.SpecificGifts:
		return []string{
			fmt.Sprintf("Includes %d specific gift(s)", len(ctx.SpecificGifts)),
			"Distributed before residue",
			"May fail if asset not owned at death",
		}
	case clause.ResidueDistribution:
		return []string{
			fmt.Sprintf("Distributes residue to %d beneficiary/beneficiaries", len(ctx.ResidueBeneficiaries)),
			"Covers everything not specifically gifted",
			"Subject to payment of debts and expenses",
		}
	case clause.Survivorship:
		return []string{
			fmt.Sprintf("Sets survivorship period at %d days", ctx.SurvivorshipDays),
			"Prevents gifts vesting in estates of beneficiaries who die shortly after you",
			"Simplifies administration",
		}
	case clause.MinorTrusts:
		return []string{
			fmt.Sprintf("Holds gifts for minors until age %d", ctx.MinorTrustsVestingAge),
			"Trustees manage the assets",
			"Income may be used for beneficiary's benefit",
		}
	case clause.AdministrativePowers:
		return []string{
			"Grants powers to sell assets",
			"Allows investment of estate funds",
			"Authorizes legal proceedings",
		}
	case clause.Attestation:
		return []string{
			"Requires signature by you",
			"Requires two independent witnesses",
			"Must be signed in presence of each other",
		}
	default:
		return []string{"Standard provision"}
	}
}
