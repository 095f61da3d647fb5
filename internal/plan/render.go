package plan

import (
	"fmt"
	"strconv"
	"strings"

	"willforge/internal/clause"
	"willforge/internal/will"
	"willforge/pkg/platform/text"
)

// Render produces the complete document plan for a context. Clause selection
// and numbering happen here; each clause then renders its own blocks.
func Render(ctx *will.Context) []Item {
	selected := clause.Select(ctx)

	items := make([]Item, 0, len(selected))
	for i, id := range selected {
		renderer, ok := renderers[id]
		if !ok {
			continue
		}
		items = append(items, Item{
			ID:             id,
			Title:          clause.Title(id),
			ClauseNumber:   i + 1,
			NumberingLevel: 1,
			Blocks:         renderer(ctx),
		})
	}
	return items
}

type renderFunc func(*will.Context) []ContentBlock

var renderers = map[clause.ID]renderFunc{
	clause.TitleIdentification:          renderTitleIdentification,
	clause.Revocation:                   renderRevocation,
	clause.Definitions:                  renderDefinitions,
	clause.AppointmentExecutorsTrustees: renderAppointmentExecutors,
	clause.FuneralWishes:                renderFuneralWishes,
	clause.Guardianship:                 renderGuardianship,
	clause.DistributionOverview:         renderDistributionOverview,
	clause.SpecificGifts:                renderSpecificGifts,
	clause.ResidueDistribution:          renderResidueDistribution,
	clause.Survivorship:                 renderSurvivorship,
	clause.Substitution:                 renderSubstitution,
	clause.MinorTrusts:                  renderMinorTrusts,
	clause.AdministrativePowers:         renderAdministrativePowers,
	clause.DigitalAssets:                renderDigitalAssets,
	clause.Pets:                         renderPets,
	clause.BusinessInterests:            renderBusinessInterests,
	clause.ExclusionNote:                renderExclusionNote,
	clause.LifeSustainingStatement:      renderLifeSustaining,
	clause.Attestation:                  renderAttestation,
}

func renderTitleIdentification(ctx *will.Context) []ContentBlock {
	intro := fmt.Sprintf(
		"I, %s, of %s, %s, revoke all former wills and codicils made by me and declare this to be my Last Will and Testament.",
		ctx.WillMaker.FullName,
		ctx.WillMaker.Address.SingleLine(),
		ctx.WillMaker.Occupation,
	)
	return []ContentBlock{
		heading("LAST WILL AND TESTAMENT"),
		paragraph(intro),
	}
}

func renderRevocation(_ *will.Context) []ContentBlock {
	return []ContentBlock{
		paragraph("I revoke all wills and codicils previously made by me."),
	}
}

func renderDefinitions(ctx *will.Context) []ContentBlock {
	blocks := []ContentBlock{
		paragraph("In this Will, unless the context otherwise requires:"),
		definition(`"Beneficiary"`, "means a person or entity entitled to receive a gift under this Will."),
		definition(`"Child"`, "includes a biological child, adopted child, and stepchild."),
		definition(`"Estate"`, "means all property and assets which I own at my death."),
		definition(`"Executor"`, "means the person or persons appointed to administer my Estate."),
		definition(`"Minor"`, "means a person under the age of 18 years."),
		definition(`"Residue"`, "means what remains of my Estate after payment of debts, funeral and testamentary expenses, and all specific gifts."),
		definition(`"Survivorship Period"`, fmt.Sprintf("means the period of %d days from my death.", ctx.SurvivorshipDays)),
	}
	return blocks
}

func renderAppointmentExecutors(ctx *will.Context) []ContentBlock {
	var blocks []ContentBlock

	if len(ctx.Executors) == 1 {
		e := ctx.Executors[0]
		blocks = append(blocks, paragraph(fmt.Sprintf(
			"I appoint %s, of %s, to be the Executor and Trustee of my Estate.",
			e.FullName, e.Address.SingleLine(),
		)))
	} else if len(ctx.Executors) > 1 {
		blocks = append(blocks, paragraph(fmt.Sprintf(
			"I appoint %s to be the Executors and Trustees of my Estate.",
			text.JoinNames(executorNames(ctx.Executors)),
		)))
	}

	if len(ctx.BackupExecutors) == 1 {
		b := ctx.BackupExecutors[0]
		blocks = append(blocks, paragraph(fmt.Sprintf(
			"If my appointed Executor is unable or unwilling to act, I appoint %s, of %s, to be the substitute Executor and Trustee.",
			b.FullName, b.Address.SingleLine(),
		)))
	} else if len(ctx.BackupExecutors) > 1 {
		blocks = append(blocks, paragraph(fmt.Sprintf(
			"If any of my appointed Executors is unable or unwilling to act, I appoint %s to be the substitute Executors and Trustees.",
			text.JoinNames(executorNames(ctx.BackupExecutors)),
		)))
	}

	return blocks
}

func executorNames(executors []will.Executor) []string {
	names := make([]string, len(executors))
	for i, e := range executors {
		names[i] = e.FullName
	}
	return names
}

var funeralPreferences = map[string]string{
	"burial":        "burial",
	"cremation":     "cremation",
	"no_preference": "no preference as to burial or cremation",
}

func renderFuneralWishes(ctx *will.Context) []ContentBlock {
	preference, ok := funeralPreferences[ctx.FuneralPreference]
	if !ok {
		preference = "no preference"
	}
	t := fmt.Sprintf("I express the wish that my body be disposed of by %s.", preference)
	if ctx.FuneralNotes != "" {
		t += " " + ctx.FuneralNotes
	}
	return []ContentBlock{paragraph(t)}
}

func renderGuardianship(ctx *will.Context) []ContentBlock {
	if ctx.Guardian == nil {
		return nil
	}
	blocks := []ContentBlock{paragraph(fmt.Sprintf(
		"If at my death any of my children are minors, I appoint %s, of %s, to be the guardian of such minor children.",
		ctx.Guardian.FullName, ctx.Guardian.Address.SingleLine(),
	))}
	if ctx.BackupGuardian != nil {
		blocks = append(blocks, paragraph(fmt.Sprintf(
			"If %s is unable or unwilling to act as guardian, I appoint %s, of %s, to be the substitute guardian.",
			ctx.Guardian.FullName, ctx.BackupGuardian.FullName, ctx.BackupGuardian.Address.SingleLine(),
		)))
	}
	return blocks
}

var schemeDescriptions = map[string]string{
	"partner_then_children_equal": "My Estate shall be distributed first to my partner, and if my partner does not survive me, equally among my children.",
	"children_equal":              "My Estate shall be distributed equally among my children.",
	"percentages_named":           "My Estate shall be distributed among the named beneficiaries in the percentages specified.",
	"specific_gifts_then_residue": "I make specific gifts as detailed below, and the residue of my Estate shall be distributed as specified.",
	"custom_structured":           "My Estate shall be distributed according to the following structured plan.",
}

func renderDistributionOverview(ctx *will.Context) []ContentBlock {
	description, ok := schemeDescriptions[ctx.DistributionScheme]
	if !ok {
		description = "My Estate shall be distributed as specified in this Will."
	}
	return []ContentBlock{paragraph(description)}
}

func renderSpecificGifts(ctx *will.Context) []ContentBlock {
	if len(ctx.SpecificGifts) == 0 {
		return nil
	}
	blocks := []ContentBlock{paragraph("I give the following specific gifts:")}
	for i, gift := range ctx.SpecificGifts {
		var giftText string
		if gift.GiftType == will.GiftCash {
			amount := 0.0
			if gift.CashAmount != nil {
				amount = *gift.CashAmount
			}
			giftText = fmt.Sprintf("%d. To %s, the sum of %s.", i+1, gift.BeneficiaryName, text.FormatCurrency(amount))
		} else {
			giftText = fmt.Sprintf("%d. To %s, my %s.", i+1, gift.BeneficiaryName, gift.ItemDescription)
		}
		blocks = append(blocks, numbered(giftText, "gift_item"))
	}
	return blocks
}

func renderResidueDistribution(ctx *will.Context) []ContentBlock {
	switch len(ctx.ResidueBeneficiaries) {
	case 0:
		return []ContentBlock{paragraph(
			"I give the residue of my Estate to my executors upon the trusts hereinafter declared.",
		)}
	case 1:
		b := ctx.ResidueBeneficiaries[0]
		t := fmt.Sprintf("I give the residue of my Estate to %s.", b.BeneficiaryName)
		// A zero share means no share was stated, same as a nil one.
		if b.SharePercent != nil && *b.SharePercent != 0 && *b.SharePercent != 100 {
			t = fmt.Sprintf("I give %s of the residue of my Estate to %s.",
				text.FormatPercent(*b.SharePercent), b.BeneficiaryName)
		}
		return []ContentBlock{paragraph(t)}
	default:
		blocks := []ContentBlock{paragraph("I give the residue of my Estate as follows:")}
		equalShare := 100 / float64(len(ctx.ResidueBeneficiaries))
		for i, b := range ctx.ResidueBeneficiaries {
			share := equalShare
			if b.SharePercent != nil && *b.SharePercent != 0 {
				share = *b.SharePercent
			}
			blocks = append(blocks, numbered(
				fmt.Sprintf("%d. %s to %s", i+1, text.FormatPercent(share), b.BeneficiaryName),
				"residue_item",
			))
		}
		return blocks
	}
}

func renderSurvivorship(ctx *will.Context) []ContentBlock {
	if ctx.SurvivorshipDays == 0 {
		return []ContentBlock{paragraph(
			"A beneficiary under this Will must survive me to take a gift. No survivorship period applies.",
		)}
	}
	return []ContentBlock{paragraph(fmt.Sprintf(
		"A beneficiary under this Will must survive me by %s to take a gift under this Will. If a beneficiary does not survive me by this period, they shall be treated as having predeceased me.",
		strconv.Itoa(ctx.SurvivorshipDays)+" days",
	))}
}

func renderSubstitution(ctx *will.Context) []ContentBlock {
	var t string
	switch ctx.SubstitutionRule {
	case "to_their_children":
		t = "If a beneficiary predeceases me, their share shall pass to their children who survive me, in equal shares."
	case "redistribute_among_remaining":
		t = "If a beneficiary predeceases me, their share shall be redistributed among the remaining beneficiaries in proportion to their respective shares."
	case "to_alternate_beneficiary":
		t = fmt.Sprintf("If a beneficiary predeceases me, their share shall pass to %s.", ctx.AlternateBeneficiaryName)
	default:
		t = "If a beneficiary predeceases me, their share shall lapse."
	}
	return []ContentBlock{paragraph(t)}
}

func renderMinorTrusts(ctx *will.Context) []ContentBlock {
	blocks := []ContentBlock{paragraph(fmt.Sprintf(
		"If any beneficiary under this Will is a minor at the time of distribution, their share shall be held in trust until they attain the age of %d years.",
		ctx.MinorTrustsVestingAge,
	))}

	if ctx.MinorTrustsTrusteeMode == "named_trustee" && ctx.MinorTrustsTrustee != nil {
		blocks = append(blocks, paragraph(fmt.Sprintf(
			"I appoint %s, of %s, to be the trustee of such trust.",
			ctx.MinorTrustsTrustee.FullName, ctx.MinorTrustsTrustee.Address.SingleLine(),
		)))
	} else {
		blocks = append(blocks, paragraph(
			"My Executors shall be the trustees of any trust created under this Will.",
		))
	}

	blocks = append(blocks, paragraph(
		"The trustees may apply the income and capital of the trust for the maintenance, education, advancement, or benefit of the beneficiary in their absolute discretion.",
	))
	return blocks
}

var administrativePowers = []string{
	"To sell, convert, call in, and dispose of any part of my Estate as they think fit.",
	"To pay or compromise any debt or claim against my Estate.",
	"To employ professional advisers and agents as they consider necessary.",
	"To invest trust funds in any investments authorized by law for trust investments.",
	"To apply income for the maintenance of beneficiaries during the administration of my Estate.",
	"To delegate powers and duties as permitted by law.",
}

func renderAdministrativePowers(_ *will.Context) []ContentBlock {
	blocks := []ContentBlock{paragraph("My Executors and Trustees shall have the following powers:")}
	for _, power := range administrativePowers {
		blocks = append(blocks, bullet(power, "power_item"))
	}
	return blocks
}

var digitalAssetCategories = map[string]string{
	"email":         "email accounts",
	"social_media":  "social media accounts",
	"cloud_storage": "cloud storage accounts",
	"crypto":        "cryptocurrency holdings",
}

func renderDigitalAssets(ctx *will.Context) []ContentBlock {
	if !ctx.DigitalAssetsAuthority {
		return nil
	}

	t := "I authorize my Executors to access, manage, and dispose of my digital assets. This includes access to the following categories: "

	var categories []string
	for _, cat := range ctx.DigitalAssetsCategories {
		if name, ok := digitalAssetCategories[cat]; ok {
			categories = append(categories, name)
		} else {
			categories = append(categories, cat)
		}
	}
	if len(categories) > 0 {
		t += strings.Join(categories, ", ") + "."
	}

	if ctx.DigitalAssetsInstructionsLocation != "" {
		t += fmt.Sprintf(" Detailed instructions for accessing these assets are located at: %s.",
			ctx.DigitalAssetsInstructionsLocation)
	}

	return []ContentBlock{paragraph(t)}
}

func renderPets(ctx *will.Context) []ContentBlock {
	t := fmt.Sprintf("I have %d pet(s): %s. I give my pets to %s, of %s, for care and custody.",
		ctx.PetsCount, ctx.PetsSummary, ctx.PetsCarerName, ctx.PetsCarerAddress.SingleLine())

	if ctx.PetsCashGift != nil && *ctx.PetsCashGift > 0 {
		t += fmt.Sprintf(" I also give to %s the sum of %s for the care and maintenance of my pets.",
			ctx.PetsCarerName, text.FormatCurrency(*ctx.PetsCashGift))
	}

	return []ContentBlock{paragraph(t)}
}

var businessInterestTypes = map[string]string{
	"sole_trader":          "sole trader business",
	"company_shareholding": "company shareholding",
	"partnership":          "partnership interest",
	"trust_interest":       "trust interest",
}

func renderBusinessInterests(ctx *will.Context) []ContentBlock {
	if len(ctx.BusinessInterests) == 0 {
		return nil
	}
	blocks := []ContentBlock{paragraph("I direct that my business interests be dealt with as follows:")}
	for i, interest := range ctx.BusinessInterests {
		typeName, ok := businessInterestTypes[interest.InterestType]
		if !ok {
			typeName = "business interest"
		}
		blocks = append(blocks, numbered(fmt.Sprintf(
			"%d. My %s in %s shall pass to %s.",
			i+1, typeName, interest.EntityName, interest.RecipientName,
		), "business_item"))
	}
	return blocks
}

var exclusionCategories = map[string]string{
	"former_partner":  "former partner",
	"child":           "child",
	"stepchild":       "stepchild",
	"dependant_other": "dependant",
}

func renderExclusionNote(ctx *will.Context) []ContentBlock {
	var blocks []ContentBlock
	for _, exclusion := range ctx.Exclusions {
		category, ok := exclusionCategories[exclusion.Category]
		if !ok {
			category = exclusion.Category
		}

		t := fmt.Sprintf("I have made no provision in this Will for my %s, %s.", category, exclusion.PersonName)

		if len(exclusion.Reasons) > 0 {
			reasons := make([]string, len(exclusion.Reasons))
			for i, r := range exclusion.Reasons {
				reasons[i] = exclusionReason(r, exclusion.OtherNote)
			}
			t += " This is because " + strings.Join(reasons, ", ") + "."
		}

		blocks = append(blocks, paragraph(t))
	}
	return blocks
}

func exclusionReason(reason, otherNote string) string {
	switch reason {
	case "already_provided_for":
		return "they have already been provided for during my lifetime"
	case "estrangement":
		return "of estrangement"
	case "financial_independence":
		return "they are financially independent"
	case "other_structured":
		if otherNote != "" {
			return otherNote
		}
		return "other reasons"
	default:
		return reason
	}
}

var lifeSustainingTemplates = map[string]string{
	"comfort_and_dignity_prioritised":                          "If I have a terminal illness or injury, or am in a persistent vegetative state, I direct that my comfort and dignity be prioritised. I do not wish to receive life-sustaining treatment if the burdens outweigh the benefits.",
	"palliative_only_in_terminal_or_permanent_unconsciousness": "If I have a terminal condition or am permanently unconscious, I direct that only palliative care be provided to maintain my comfort. I do not wish to receive treatment that would merely prolong the dying process.",
	"prolong_life_if_reasonable":                               "I wish for all reasonable measures to be taken to prolong my life, provided that such measures do not cause undue suffering.",
}

var lifeSustainingValues = map[string]string{
	"comfort":                    "comfort",
	"dignity":                    "dignity",
	"palliative_care":            "palliative care",
	"avoid_burdensome_treatment": "avoidance of burdensome treatment",
}

func renderLifeSustaining(ctx *will.Context) []ContentBlock {
	t, ok := lifeSustainingTemplates[ctx.LifeSustainingTemplate]
	if !ok {
		t = "I have expressed my wishes regarding life sustaining treatment."
	}

	if len(ctx.LifeSustainingValues) > 0 {
		values := make([]string, len(ctx.LifeSustainingValues))
		for i, v := range ctx.LifeSustainingValues {
			if name, found := lifeSustainingValues[v]; found {
				values[i] = name
			} else {
				values[i] = v
			}
		}
		t += fmt.Sprintf(" My values include: %s.", strings.Join(values, ", "))
	}

	return []ContentBlock{paragraph(t)}
}

func renderAttestation(ctx *will.Context) []ContentBlock {
	return []ContentBlock{
		paragraph("SIGNED by the Testator as their Last Will and Testament:"),
		{
			Type:  BlockSignature,
			Style: "signature",
			Signature: &SignatureBlock{
				Label:     "Signature of Will Maker",
				Name:      ctx.WillMaker.FullName,
				DateLabel: "Date",
				Lines:     3,
			},
		},
		paragraph("SIGNED by the above-named Testator in our presence and attested by us in the presence of the Testator and each other."),
		witnessBlock("Witness 1"),
		witnessBlock("Witness 2"),
	}
}

func witnessBlock(label string) ContentBlock {
	return ContentBlock{
		Type:  BlockSignature,
		Style: "signature",
		Signature: &SignatureBlock{
			Label:           label,
			NameLabel:       "Name (print)",
			AddressLabel:    "Address",
			OccupationLabel: "Occupation",
			DateLabel:       "Date",
			Lines:           4,
		},
	}
}
