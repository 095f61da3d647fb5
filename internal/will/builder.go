package will

import "strconv"

// Build normalizes a validated payload into a Context. This is pure domain
// logic - no I/O, no side effects, no clock reads. It is the only place
// derived flags, counts, and the gift projections are computed.
func Build(payload map[string]any) *Context {
	ctx := &Context{
		SurvivorshipDays:      defaultSurvivorshipDays,
		MinorTrustsVestingAge: defaultVestingAge,
	}

	ctx.WillMaker = buildWillMaker(getMap(payload, "will_maker"))

	status := ctx.WillMaker.RelationshipStatus
	ctx.Flags.HasPartner = status == "married" || status == "de_facto"
	if ctx.Flags.HasPartner {
		p := buildPartner(getMap(payload, "partner"))
		ctx.Partner = &p
	}
	if status == "separated" {
		ctx.Separation = getMap(payload, "separation")
	}

	buildChildren(ctx, payload)
	buildDependants(ctx, payload)
	buildExecutors(ctx, getMap(payload, "executors"))
	buildGuardianship(ctx, getMap(payload, "guardianship"))
	buildBeneficiaries(ctx, payload)
	buildDistribution(ctx, payload)
	buildMinorTrusts(ctx, getMap(payload, "minor_trusts"))
	buildToggles(ctx, getMap(payload, "toggles"))

	ctx.Assets = getMap(payload, "assets")
	ctx.IntendedSigningDate = getString(getMap(payload, "declarations"), "intended_signing_date")

	ctx.ExecutorCount = len(ctx.Executors)
	return ctx
}

const (
	defaultSurvivorshipDays = 30
	defaultVestingAge       = 18
)

func buildAddress(m map[string]any) Address {
	return Address{
		Street:   getString(m, "street"),
		Suburb:   getString(m, "suburb"),
		State:    getString(m, "state"),
		Postcode: getString(m, "postcode"),
	}
}

func buildWillMaker(m map[string]any) WillMaker {
	return WillMaker{
		FullName:           getString(m, "full_name"),
		DOB:                getString(m, "dob"),
		Occupation:         getString(m, "occupation"),
		Address:            buildAddress(getMap(m, "address")),
		Email:              getString(m, "email"),
		Phone:              getString(m, "phone"),
		RelationshipStatus: getString(m, "relationship_status"),
	}
}

func buildPartner(m map[string]any) Partner {
	return Partner{
		FullName: getString(m, "full_name"),
		DOB:      getString(m, "dob"),
		Address:  buildAddress(getMap(m, "address")),
		Email:    getString(m, "email"),
		Phone:    getString(m, "phone"),
	}
}

func buildChildren(ctx *Context, payload map[string]any) {
	if !getBool(payload, "has_children") {
		return
	}
	for _, raw := range getList(payload, "children") {
		m := asMap(raw)
		child := Child{
			FullName:                   getString(m, "full_name"),
			DOB:                        getString(m, "dob"),
			RelationshipType:           getString(m, "relationship_type"),
			IsExpectedToBeMinorAtDeath: getBool(m, "is_expected_to_be_minor_at_death"),
			SpecialNeeds:               getBool(m, "special_needs"),
		}
		ctx.Children = append(ctx.Children, child)
		if child.IsExpectedToBeMinorAtDeath {
			ctx.Flags.HasMinorChildren = true
			ctx.MinorBeneficiaryCount++
		}
	}
	ctx.Flags.HasChildren = len(ctx.Children) > 0
}

func buildDependants(ctx *Context, payload map[string]any) {
	deps := getMap(payload, "dependants")
	if !getBool(deps, "has_other_dependants") {
		return
	}
	for _, raw := range getList(deps, "other_dependants") {
		m := asMap(raw)
		ctx.OtherDependants = append(ctx.OtherDependants, Dependant{
			FullName:             getString(m, "full_name"),
			RelationshipCategory: getString(m, "relationship_category"),
		})
	}
}

func buildExecutor(m map[string]any) Executor {
	return Executor{
		FullName:     getString(m, "full_name"),
		Relationship: getString(m, "relationship"),
		Address:      buildAddress(getMap(m, "address")),
		Phone:        getString(m, "phone"),
		Email:        getString(m, "email"),
	}
}

func buildExecutors(ctx *Context, m map[string]any) {
	switch getString(m, "mode") {
	case "partner_only":
		if ctx.Partner != nil {
			ctx.Executors = []Executor{{
				FullName:     ctx.Partner.FullName,
				Relationship: "partner",
				Address:      ctx.Partner.Address,
				Phone:        ctx.Partner.Phone,
				Email:        ctx.Partner.Email,
			}}
		}
	case "one", "two_joint", "two_joint_and_several":
		for _, raw := range getList(m, "primary") {
			ctx.Executors = append(ctx.Executors, buildExecutor(asMap(raw)))
		}
	}

	backup := getMap(m, "backup")
	switch getString(backup, "mode") {
	case "partner":
		if ctx.Partner != nil {
			ctx.BackupExecutors = []Executor{{
				FullName:     ctx.Partner.FullName,
				Relationship: "partner",
				Address:      ctx.Partner.Address,
			}}
		}
	case "one", "two_joint", "two_joint_and_several":
		for _, raw := range getList(backup, "list") {
			ctx.BackupExecutors = append(ctx.BackupExecutors, buildExecutor(asMap(raw)))
		}
	}
}

func buildGuardian(m map[string]any) Guardian {
	return Guardian{
		FullName:     getString(m, "full_name"),
		Relationship: getString(m, "relationship"),
		Address:      buildAddress(getMap(m, "address")),
		Phone:        getString(m, "phone"),
	}
}

// buildGuardianship populates the guardian only when minor children exist AND
// the payload explicitly requests an appointment. Both must hold for
// has_guardianship.
func buildGuardianship(ctx *Context, m map[string]any) {
	if !ctx.Flags.HasMinorChildren || !getBool(m, "appoint_guardian") {
		return
	}
	g := buildGuardian(getMap(m, "guardian"))
	ctx.Guardian = &g
	ctx.Flags.HasGuardianship = true

	backup := getMap(m, "backup_guardian")
	if getString(backup, "full_name") != "" {
		bg := buildGuardian(backup)
		ctx.BackupGuardian = &bg
	}
}

// buildBeneficiaries normalizes the beneficiary collection and, in the same
// insertion-ordered pass, projects specific gifts and residue beneficiaries
// and accumulates the percentage sum. Input order is preserved, never
// resorted.
func buildBeneficiaries(ctx *Context, payload map[string]any) {
	for i, raw := range getList(payload, "beneficiaries") {
		m := asMap(raw)
		b := Beneficiary{
			ID:                  getString(m, "id"),
			Type:                BeneficiaryType(getString(m, "type")),
			FullName:            getString(m, "full_name"),
			Relationship:        getString(m, "relationship"),
			Address:             buildAddress(getMap(m, "address")),
			ABN:                 getString(m, "abn"),
			GiftRole:            GiftRole(getString(m, "gift_role")),
			ResidueSharePercent: getFloatPtr(m, "residue_share_percent"),
			Percentage:          getFloatPtr(m, "percentage"),
			CashAmount:          getFloatPtr(m, "cash_amount"),
			ItemDescription:     getString(m, "item_description"),
		}
		if b.ID == "" {
			b.ID = indexedBeneficiaryID(i)
		}
		if b.Type == "" {
			b.Type = BeneficiaryIndividual
		}
		ctx.Beneficiaries = append(ctx.Beneficiaries, b)

		switch b.GiftRole {
		case GiftRoleSpecificCash:
			ctx.SpecificGifts = append(ctx.SpecificGifts, SpecificGift{
				BeneficiaryID:   b.ID,
				BeneficiaryName: b.FullName,
				GiftType:        GiftCash,
				CashAmount:      b.CashAmount,
			})
			ctx.Flags.HasSpecificGifts = true
		case GiftRoleSpecificItem:
			ctx.SpecificGifts = append(ctx.SpecificGifts, SpecificGift{
				BeneficiaryID:   b.ID,
				BeneficiaryName: b.FullName,
				GiftType:        GiftItem,
				ItemDescription: b.ItemDescription,
			})
			ctx.Flags.HasSpecificGifts = true
		case GiftRoleResidue:
			ctx.ResidueBeneficiaries = append(ctx.ResidueBeneficiaries, ResidueBeneficiary{
				BeneficiaryID:   b.ID,
				BeneficiaryName: b.FullName,
				SharePercent:    b.ResidueSharePercent,
			})
		}

		if b.Percentage != nil {
			ctx.PercentageSum += *b.Percentage
		}
	}

	ctx.BeneficiaryCount = len(ctx.Beneficiaries)
	ctx.Flags.HasResidueScheme = len(ctx.ResidueBeneficiaries) > 0
	ctx.Flags.HasPercentages = ctx.PercentageSum > 0
}

// indexedBeneficiaryID is the stable fallback when the payload omits an id.
func indexedBeneficiaryID(i int) string {
	return "beneficiary_" + strconv.Itoa(i)
}

func buildDistribution(ctx *Context, payload map[string]any) {
	ctx.DistributionScheme = getString(getMap(payload, "distribution"), "scheme")
	ctx.SurvivorshipDays = getInt(getMap(payload, "survivorship"), "days", defaultSurvivorshipDays)

	sub := getMap(payload, "substitution")
	ctx.SubstitutionRule = getString(sub, "rule")
	ctx.Flags.HasSubstitution = ctx.SubstitutionRule != ""

	if ctx.SubstitutionRule == "to_alternate_beneficiary" {
		ctx.AlternateBeneficiaryID = getString(sub, "alternate_beneficiary_id")
		ctx.Flags.HasAlternateBeneficiary = true
		if b := ctx.findBeneficiary(ctx.AlternateBeneficiaryID); b != nil {
			ctx.AlternateBeneficiaryName = b.FullName
		} else {
			ctx.noteUnresolved("substitution.alternate_beneficiary_id", ctx.AlternateBeneficiaryID)
		}
	}
}

func buildMinorTrusts(ctx *Context, m map[string]any) {
	if !getBool(m, "enabled") {
		return
	}
	ctx.MinorTrustsEnabled = true
	ctx.MinorTrustsVestingAge = getInt(m, "vesting_age", defaultVestingAge)
	ctx.MinorTrustsTrusteeMode = getString(m, "trustee_mode")

	if ctx.MinorTrustsTrusteeMode == "named_trustee" {
		t := buildExecutor(getMap(m, "trustee"))
		ctx.MinorTrustsTrustee = &t
	}

	// The clause only applies when there is someone a trust could vest for.
	applicable := ctx.Flags.HasMinorChildren
	for _, b := range ctx.Beneficiaries {
		if b.GiftRole == GiftRoleResidue || b.GiftRole == GiftRolePercentageOnly {
			applicable = true
			break
		}
	}
	ctx.Flags.HasMinorTrusts = applicable
}

func buildToggles(ctx *Context, toggles map[string]any) {
	if funeral := getMap(toggles, "funeral"); getBool(funeral, "enabled") {
		ctx.FuneralEnabled = true
		ctx.Flags.HasFuneralWishes = true
		ctx.FuneralPreference = getString(funeral, "preference")
		ctx.FuneralNotes = getString(funeral, "notes")
	}

	if digital := getMap(toggles, "digital_assets"); getBool(digital, "enabled") {
		ctx.DigitalAssetsEnabled = true
		ctx.Flags.HasDigitalAssets = true
		ctx.DigitalAssetsAuthority = getBool(digital, "authority")
		ctx.DigitalAssetsCategories = getStringList(digital, "categories")
		ctx.DigitalAssetsInstructionsLocation = getString(digital, "instructions_location")
	}

	if pets := getMap(toggles, "pets"); getBool(pets, "enabled") {
		buildPets(ctx, pets)
	}

	if business := getMap(toggles, "business"); getBool(business, "enabled") {
		ctx.BusinessEnabled = true
		ctx.Flags.HasBusinessInterests = true
		for _, raw := range getList(business, "interests") {
			ctx.BusinessInterests = append(ctx.BusinessInterests, buildBusinessInterest(ctx, asMap(raw)))
		}
	}

	if exclusion := getMap(toggles, "exclusion"); getBool(exclusion, "enabled") {
		ctx.ExclusionEnabled = true
		ctx.Flags.HasExclusions = true
		for _, raw := range getList(exclusion, "exclusions") {
			m := asMap(raw)
			ctx.Exclusions = append(ctx.Exclusions, Exclusion{
				PersonName: getString(m, "person_name"),
				Category:   getString(m, "category"),
				Reasons:    getStringList(m, "reasons"),
				OtherNote:  getString(m, "other_note"),
			})
		}
	}

	if life := getMap(toggles, "life_sustaining"); getBool(life, "enabled") {
		ctx.LifeSustainingEnabled = true
		ctx.Flags.HasLifeSustainingStatement = true
		ctx.LifeSustainingTemplate = getString(life, "template")
		ctx.LifeSustainingValues = getStringList(life, "values")
	}
}

func buildPets(ctx *Context, pets map[string]any) {
	ctx.PetsEnabled = true
	ctx.Flags.HasPets = true
	ctx.PetsCount = getInt(pets, "count", 0)
	ctx.PetsSummary = getString(pets, "summary")
	ctx.PetsCarerMode = getString(pets, "care_person_mode")
	ctx.PetsCashGift = getFloatPtr(pets, "cash_gift")

	switch ctx.PetsCarerMode {
	case "select_beneficiary":
		carerID := getString(pets, "care_beneficiary_id")
		if b := ctx.findBeneficiary(carerID); b != nil {
			ctx.PetsCarerName = b.FullName
			ctx.PetsCarerAddress = b.Address
		} else {
			ctx.noteUnresolved("toggles.pets.care_beneficiary_id", carerID)
		}
	case "new_person":
		carer := getMap(pets, "carer")
		ctx.PetsCarerName = getString(carer, "full_name")
		ctx.PetsCarerAddress = buildAddress(getMap(carer, "address"))
	}
}

func buildBusinessInterest(ctx *Context, m map[string]any) BusinessInterest {
	interest := BusinessInterest{
		InterestType:  getString(m, "interest_type"),
		EntityName:    getString(m, "entity_name"),
		ACN:           getString(m, "acn"),
		ABN:           getString(m, "abn"),
		RecipientMode: getString(m, "recipient_mode"),
		RecipientID:   getString(m, "recipient_id"),
	}

	switch interest.RecipientMode {
	case "select_beneficiary":
		if interest.RecipientID != "" {
			if b := ctx.findBeneficiary(interest.RecipientID); b != nil {
				interest.RecipientName = b.FullName
				interest.RecipientAddress = b.Address
			} else {
				ctx.noteUnresolved("toggles.business.interests.recipient_id", interest.RecipientID)
			}
		}
	case "new_person":
		recipient := getMap(m, "recipient")
		interest.RecipientName = getString(recipient, "full_name")
		interest.RecipientAddress = buildAddress(getMap(recipient, "address"))
	}

	return interest
}

// findBeneficiary resolves an id by linear lookup against the collection.
// Returns nil when unresolved; the caller leaves the dependent field blank.
func (c *Context) findBeneficiary(id string) *Beneficiary {
	if id == "" {
		return nil
	}
	for i := range c.Beneficiaries {
		if c.Beneficiaries[i].ID == id {
			return &c.Beneficiaries[i]
		}
	}
	return nil
}

func (c *Context) noteUnresolved(field, id string) {
	c.UnresolvedRefs = append(c.UnresolvedRefs, UnresolvedRef{Field: field, ID: id})
}
