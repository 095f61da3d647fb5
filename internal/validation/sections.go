package validation

import (
	"fmt"
	"math"
	"strconv"
)

func subMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func subList(v any) []any {
	l, _ := v.([]any)
	return l
}

// isTrue is a strict check: only a JSON boolean true passes. Coercible
// truthy strings satisfy checkBool but not the confirmation rules.
func isTrue(v any) bool {
	b, ok := v.(bool)
	return ok && b
}

func hasPartnerStatus(willMaker map[string]any) bool {
	status := toString(willMaker["relationship_status"])
	return status == "married" || status == "de_facto"
}

// beneficiaryIDs mirrors the ID fallback used by the context builder:
// a beneficiary without an explicit id is addressable as "beneficiary_<i>".
func beneficiaryIDs(beneficiaries []any) []string {
	ids := make([]string, 0, len(beneficiaries))
	for i, v := range beneficiaries {
		b := subMap(v)
		id := toString(b["id"])
		if id == "" {
			id = "beneficiary_" + strconv.Itoa(i)
		}
		ids = append(ids, id)
	}
	return ids
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Validate checks the entire payload against the submission schema and
// returns every rule failure found.
func Validate(payload map[string]any) *Result {
	r := &Result{}
	if payload == nil {
		r.addError("", "Payload must be a JSON object", "type", "general")
		return r
	}

	r.validateEligibility(payload)
	willMaker := r.validateWillMaker(payload)
	children := r.validateChildren(payload)
	r.validateExecutors(payload, willMaker)
	r.validateGuardianship(payload, children)
	beneficiaries := r.validateDistribution(payload, willMaker)
	r.validateToggles(payload, beneficiaries)
	r.validateAssets(payload)
	r.validateDeclarations(payload)
	r.validateCrossSection(payload, children)
	return r
}

func (r *Result) validateEligibility(payload map[string]any) {
	const section = "eligibility"
	data := subMap(payload["eligibility"])
	if data == nil {
		r.addError("eligibility", "Eligibility section is required", "required", section)
		return
	}

	r.checkBool(data["confirm_age_over_18"], "eligibility.confirm_age_over_18", true, section)
	r.checkBool(data["confirm_qld"], "eligibility.confirm_qld", true, section)
	r.checkBool(data["confirm_not_legal_advice"], "eligibility.confirm_not_legal_advice", true, section)

	if !isTrue(data["confirm_age_over_18"]) {
		r.addError("eligibility.confirm_age_over_18", "You must confirm you are 18 or older", "invalid", section)
	}
	if !isTrue(data["confirm_qld"]) {
		r.addError("eligibility.confirm_qld", "You must confirm Queensland residency", "invalid", section)
	}
	if !isTrue(data["confirm_not_legal_advice"]) {
		r.addError("eligibility.confirm_not_legal_advice", "You must acknowledge this is not legal advice", "invalid", section)
	}
}

func (r *Result) validateWillMaker(payload map[string]any) map[string]any {
	const section = "will_maker"
	willMaker := subMap(payload["will_maker"])
	if willMaker == nil {
		r.addError("will_maker", "Will maker details are required", "required", section)
		return map[string]any{}
	}

	r.checkString(willMaker["full_name"], "will_maker.full_name", true, maxNameLength, section)
	r.checkDate(willMaker["dob"], "will_maker.dob", true, 18, section)
	r.checkString(willMaker["occupation"], "will_maker.occupation", true, maxNameLength, section)
	r.checkAddress(willMaker["address"], "will_maker.address", true, section)
	r.checkEmail(willMaker["email"], "will_maker.email", true, section)
	r.checkPhone(willMaker["phone"], "will_maker.phone", true, section)
	r.checkEnum(willMaker["relationship_status"], "will_maker.relationship_status", relationshipStatuses, true, section)

	if hasPartnerStatus(willMaker) {
		partner := subMap(payload["partner"])
		if partner == nil {
			r.addError("partner", "Partner details are required", "required", section)
		} else {
			r.checkString(partner["full_name"], "partner.full_name", true, maxNameLength, section)
			r.checkDate(partner["dob"], "partner.dob", false, 0, section)
			r.checkAddress(partner["address"], "partner.address", true, section)
			r.checkEmail(partner["email"], "partner.email", false, section)
			r.checkPhone(partner["phone"], "partner.phone", false, section)
		}
	}

	if toString(willMaker["relationship_status"]) == "separated" {
		separation := subMap(payload["separation"])
		if separation == nil {
			r.addError("separation", "Separation details are required", "required", section)
		} else {
			r.checkBool(separation["is_legally_separated"], "separation.is_legally_separated", true, section)
			r.checkBool(separation["has_property_agreement"], "separation.has_property_agreement", false, section)
		}
	}

	return willMaker
}

func (r *Result) validateChildren(payload map[string]any) []any {
	const section = "children"
	r.checkBool(payload["has_children"], "has_children", true, section)

	var children []any
	if isTrue(payload["has_children"]) {
		children = subList(payload["children"])
		if len(children) == 0 {
			r.addError("children", "At least one child is required when has_children is true", "required", section)
		} else if len(children) > maxChildren {
			r.addError("children", fmt.Sprintf("Maximum %d children allowed", maxChildren), "max_items", section)
		} else {
			for i, v := range children {
				prefix := fmt.Sprintf("children[%d]", i)
				child := subMap(v)
				if child == nil {
					r.addError(prefix, "Child details are required", "required", section)
					continue
				}
				r.checkString(child["full_name"], prefix+".full_name", true, maxNameLength, section)
				r.checkDate(child["dob"], prefix+".dob", true, 0, section)
				r.checkEnum(child["relationship_type"], prefix+".relationship_type", childRelationships, true, section)
				r.checkBool(child["is_expected_to_be_minor_at_death"], prefix+".is_expected_to_be_minor_at_death", false, section)
				r.checkBool(child["special_needs"], prefix+".special_needs", false, section)
			}
		}
	}

	if dependants := subMap(payload["dependants"]); dependants != nil {
		r.checkBool(dependants["has_other_dependants"], "dependants.has_other_dependants", true, section)

		if isTrue(dependants["has_other_dependants"]) {
			others := subList(dependants["other_dependants"])
			if len(others) == 0 {
				r.addError("dependants.other_dependants", "At least one dependant is required", "required", section)
			} else if len(others) > maxDependants {
				r.addError("dependants.other_dependants", fmt.Sprintf("Maximum %d dependants allowed", maxDependants), "max_items", section)
			} else {
				for i, v := range others {
					prefix := fmt.Sprintf("dependants.other_dependants[%d]", i)
					dep := subMap(v)
					if dep == nil {
						r.addError(prefix, "Dependant details are required", "required", section)
						continue
					}
					r.checkString(dep["full_name"], prefix+".full_name", true, maxNameLength, section)
					r.checkString(dep["relationship_category"], prefix+".relationship_category", true, 60, section)
				}
			}
		}
	}

	return children
}

func (r *Result) validateExecutors(payload map[string]any, willMaker map[string]any) {
	const section = "executors"
	executors := subMap(payload["executors"])
	if executors == nil {
		r.addError("executors", "Executor details are required", "required", section)
		return
	}

	mode := toString(executors["mode"])
	r.checkEnum(executors["mode"], "executors.mode", executorModes, true, section)

	if mode == "partner_only" && !hasPartnerStatus(willMaker) {
		r.addError("executors.mode", "Partner-only executor requires a partner", "dependency", section)
	}

	if mode == "one" || mode == "two_joint" || mode == "two_joint_and_several" {
		primary, ok := executors["primary"].([]any)
		if !ok {
			r.addError("executors.primary", "Primary executors list is required", "required", section)
		} else {
			expected := 2
			if mode == "one" {
				expected = 1
			}
			if len(primary) != expected {
				r.addError("executors.primary",
					fmt.Sprintf("Exactly %d executor(s) required for mode %q", expected, mode),
					"count", section)
			} else {
				for i, v := range primary {
					prefix := fmt.Sprintf("executors.primary[%d]", i)
					executor := subMap(v)
					if executor == nil {
						r.addError(prefix, "Executor details are required", "required", section)
						continue
					}
					r.checkString(executor["full_name"], prefix+".full_name", true, maxNameLength, section)
					r.checkString(executor["relationship"], prefix+".relationship", true, 60, section)
					r.checkAddress(executor["address"], prefix+".address", true, section)
					r.checkPhone(executor["phone"], prefix+".phone", false, section)
					r.checkEmail(executor["email"], prefix+".email", false, section)
				}
			}
		}
	}

	backup := subMap(executors["backup"])
	if backup == nil {
		r.addError("executors.backup", "Backup executor details required", "required", section)
		return
	}

	backupMode := toString(backup["mode"])
	r.checkEnum(backup["mode"], "executors.backup.mode", backupExecutorModes, true, section)

	if backupMode == "partner" && !hasPartnerStatus(willMaker) {
		r.addError("executors.backup.mode", "Partner backup requires a partner", "dependency", section)
	}

	if backupMode == "one" || backupMode == "two_joint" || backupMode == "two_joint_and_several" {
		backupList, ok := backup["list"].([]any)
		if !ok {
			r.addError("executors.backup.list", "Backup executors list is required", "required", section)
			return
		}
		expected := 2
		if backupMode == "one" {
			expected = 1
		}
		if len(backupList) != expected {
			r.addError("executors.backup.list",
				fmt.Sprintf("Exactly %d backup executor(s) required", expected),
				"count", section)
			return
		}
		for i, v := range backupList {
			prefix := fmt.Sprintf("executors.backup.list[%d]", i)
			executor := subMap(v)
			if executor == nil {
				r.addError(prefix, "Backup executor details are required", "required", section)
				continue
			}
			r.checkString(executor["full_name"], prefix+".full_name", true, maxNameLength, section)
			r.checkString(executor["relationship"], prefix+".relationship", true, 60, section)
			r.checkAddress(executor["address"], prefix+".address", true, section)
		}
	}
}

func hasMinorChild(children []any) bool {
	for _, v := range children {
		if isTrue(subMap(v)["is_expected_to_be_minor_at_death"]) {
			return true
		}
	}
	return false
}

func (r *Result) validateGuardianship(payload map[string]any, children []any) {
	const section = "guardianship"
	if !hasMinorChild(children) {
		return
	}

	guardianship := subMap(payload["guardianship"])
	if guardianship == nil {
		r.addError("guardianship", "Guardianship details are required when minor children exist", "required", section)
		return
	}

	r.checkBool(guardianship["appoint_guardian"], "guardianship.appoint_guardian", true, section)

	if isTrue(guardianship["appoint_guardian"]) {
		guardian := subMap(guardianship["guardian"])
		if guardian == nil {
			r.addError("guardianship.guardian", "Guardian details are required", "required", section)
		} else {
			r.checkString(guardian["full_name"], "guardianship.guardian.full_name", true, maxNameLength, section)
			r.checkString(guardian["relationship"], "guardianship.guardian.relationship", true, 60, section)
			r.checkAddress(guardian["address"], "guardianship.guardian.address", true, section)
			r.checkPhone(guardian["phone"], "guardianship.guardian.phone", false, section)
		}

		backup := subMap(guardianship["backup_guardian"])
		if backup != nil && !isEmpty(backup["full_name"]) {
			r.checkString(backup["full_name"], "guardianship.backup_guardian.full_name", true, maxNameLength, section)
			r.checkString(backup["relationship"], "guardianship.backup_guardian.relationship", true, 60, section)
			r.checkAddress(backup["address"], "guardianship.backup_guardian.address", true, section)
		}
	}
}

func (r *Result) validateDistribution(payload map[string]any, willMaker map[string]any) []any {
	const section = "distribution"
	distribution := subMap(payload["distribution"])
	if distribution == nil {
		r.addError("distribution", "Distribution details are required", "required", section)
		return nil
	}

	scheme := toString(distribution["scheme"])
	r.checkEnum(distribution["scheme"], "distribution.scheme", distributionSchemes, true, section)

	if scheme == "partner_then_children_equal" && !hasPartnerStatus(willMaker) {
		r.addError("distribution.scheme", "This scheme requires a partner", "dependency", section)
	}
	if (scheme == "partner_then_children_equal" || scheme == "children_equal") && !isTrue(payload["has_children"]) {
		r.addError("distribution.scheme", "This scheme requires at least one child", "dependency", section)
	}

	beneficiaries, ok := payload["beneficiaries"].([]any)
	if !ok {
		r.addError("beneficiaries", "Beneficiaries list is required", "required", section)
		return nil
	}

	if len(beneficiaries) == 0 {
		r.addError("beneficiaries", "At least one beneficiary is required", "required", section)
	} else if len(beneficiaries) > maxBeneficiaries {
		r.addError("beneficiaries", fmt.Sprintf("Maximum %d beneficiaries allowed", maxBeneficiaries), "max_items", section)
	} else {
		percentageSum := 0.0
		hasSpecificGifts := false
		hasResidue := false
		seen := make(map[string]bool)

		for i, v := range beneficiaries {
			prefix := fmt.Sprintf("beneficiaries[%d]", i)
			beneficiary := subMap(v)
			if beneficiary == nil {
				r.addError(prefix, "Beneficiary details are required", "required", section)
				continue
			}

			bid := toString(beneficiary["id"])
			if bid == "" {
				bid = "beneficiary_" + strconv.Itoa(i)
			}
			if seen[bid] {
				r.addError(prefix, "Duplicate beneficiary ID: "+bid, "duplicate", section)
			}
			seen[bid] = true

			btype := toString(beneficiary["type"])
			r.checkEnum(beneficiary["type"], prefix+".type", beneficiaryTypes, true, section)
			r.checkString(beneficiary["full_name"], prefix+".full_name", true, maxNameLength, section)

			if btype == "individual" {
				r.checkString(beneficiary["relationship"], prefix+".relationship", true, 60, section)
				r.checkAddress(beneficiary["address"], prefix+".address", true, section)
			}
			if btype == "charity" {
				if abn := beneficiary["abn"]; !isEmpty(abn) && !abnPattern.MatchString(toString(abn)) {
					r.addError(prefix+".abn", "Please enter a valid 11-digit ABN", "format", section)
				}
			}

			giftRole := toString(beneficiary["gift_role"])
			r.checkEnum(beneficiary["gift_role"], prefix+".gift_role", giftRoles, true, section)

			switch giftRole {
			case "specific_cash":
				hasSpecificGifts = true
				r.checkPositiveNumber(beneficiary["cash_amount"], prefix+".cash_amount", true, maxCashGift, section)
			case "specific_item":
				hasSpecificGifts = true
				r.checkString(beneficiary["item_description"], prefix+".item_description", true, 120, section)
			case "percentage_only":
				r.checkPercentage(beneficiary["percentage"], prefix+".percentage", true, section)
				if p, ok := coerceFloat(beneficiary["percentage"]); ok {
					percentageSum += p
				}
			case "residue":
				hasResidue = true
				if rp := beneficiary["residue_share_percent"]; rp != nil {
					r.checkPercentage(rp, prefix+".residue_share_percent", true, section)
				}
			}
		}

		if scheme == "percentages_named" && math.Abs(percentageSum-100) > 0.01 {
			r.addError("beneficiaries",
				fmt.Sprintf("Percentages must sum to exactly 100%% (current: %.2f%%)", percentageSum),
				"percentage_sum", section)
		}
		if scheme == "specific_gifts_then_residue" {
			if !hasSpecificGifts {
				r.addError("beneficiaries", "This scheme requires at least one specific gift", "dependency", section)
			}
			if !hasResidue {
				r.addError("beneficiaries", "This scheme requires at least one residue beneficiary", "dependency", section)
			}
		}
	}

	if survivorship := subMap(payload["survivorship"]); survivorship != nil {
		r.checkIntEnum(survivorship["days"], "survivorship.days", survivorshipDays, true, section)
	}

	if substitution := subMap(payload["substitution"]); substitution != nil {
		rule := toString(substitution["rule"])
		r.checkEnum(substitution["rule"], "substitution.rule", substitutionRules, true, section)

		if rule == "to_alternate_beneficiary" {
			altID := substitution["alternate_beneficiary_id"]
			if isEmpty(altID) {
				r.addError("substitution.alternate_beneficiary_id", "Alternate beneficiary is required", "required", section)
			} else if !containsString(beneficiaryIDs(beneficiaries), toString(altID)) {
				r.addError("substitution.alternate_beneficiary_id",
					"Alternate beneficiary must reference an existing beneficiary", "invalid_reference", section)
			}
		}
	}

	if minorTrusts := subMap(payload["minor_trusts"]); minorTrusts != nil {
		r.checkBool(minorTrusts["enabled"], "minor_trusts.enabled", false, section)

		if isTrue(minorTrusts["enabled"]) {
			r.checkIntEnum(minorTrusts["vesting_age"], "minor_trusts.vesting_age", minorTrustVestingAges, true, section)
			trusteeMode := toString(minorTrusts["trustee_mode"])
			r.checkEnum(minorTrusts["trustee_mode"], "minor_trusts.trustee_mode", minorTrustTrusteeModes, true, section)

			if trusteeMode == "named_trustee" {
				trustee := subMap(minorTrusts["trustee"])
				if trustee == nil {
					r.addError("minor_trusts.trustee", "Trustee details are required", "required", section)
				} else {
					r.checkString(trustee["full_name"], "minor_trusts.trustee.full_name", true, maxNameLength, section)
					r.checkAddress(trustee["address"], "minor_trusts.trustee.address", true, section)
				}
			}
		}
	}

	return beneficiaries
}

func (r *Result) validateToggles(payload map[string]any, beneficiaries []any) {
	const section = "toggles"
	toggles := subMap(payload["toggles"])
	knownIDs := beneficiaryIDs(beneficiaries)

	if funeral := subMap(toggles["funeral"]); isTrue(funeral["enabled"]) {
		r.checkEnum(funeral["preference"], "toggles.funeral.preference", funeralPreferences, true, section)
		r.checkString(funeral["notes"], "toggles.funeral.notes", false, 200, section)
	}

	if digital := subMap(toggles["digital_assets"]); isTrue(digital["enabled"]) {
		r.checkBool(digital["authority"], "toggles.digital_assets.authority", true, section)

		categories := subList(digital["categories"])
		if len(categories) == 0 {
			r.addError("toggles.digital_assets.categories", "At least one category must be selected", "required", section)
		} else {
			for i, cat := range categories {
				r.checkEnum(cat, fmt.Sprintf("toggles.digital_assets.categories[%d]", i), digitalAssetCategories, true, section)
			}
		}

		r.checkString(digital["instructions_location"], "toggles.digital_assets.instructions_location", true, 120, section)
	}

	if pets := subMap(toggles["pets"]); isTrue(pets["enabled"]) {
		r.checkPositiveNumber(pets["count"], "toggles.pets.count", true, maxPets, section)
		r.checkString(pets["summary"], "toggles.pets.summary", true, 120, section)

		careMode := toString(pets["care_person_mode"])
		r.checkEnum(pets["care_person_mode"], "toggles.pets.care_person_mode", petCareModes, true, section)

		switch careMode {
		case "select_beneficiary":
			careID := pets["care_beneficiary_id"]
			if isEmpty(careID) {
				r.addError("toggles.pets.care_beneficiary_id", "Beneficiary selection is required", "required", section)
			} else if !containsString(knownIDs, toString(careID)) {
				r.addError("toggles.pets.care_beneficiary_id", "Selected beneficiary does not exist", "invalid_reference", section)
			}
		case "new_person":
			carer := subMap(pets["carer"])
			if carer == nil {
				r.addError("toggles.pets.carer", "Carer details are required", "required", section)
			} else {
				r.checkString(carer["full_name"], "toggles.pets.carer.full_name", true, maxNameLength, section)
				r.checkAddress(carer["address"], "toggles.pets.carer.address", true, section)
			}
		}

		if cashGift := pets["cash_gift"]; cashGift != nil {
			r.checkPositiveNumber(cashGift, "toggles.pets.cash_gift", false, maxCashGift, section)
		}
	}

	if business := subMap(toggles["business"]); isTrue(business["enabled"]) {
		interests := subList(business["interests"])
		if len(interests) == 0 {
			r.addError("toggles.business.interests", "At least one business interest is required", "required", section)
		} else {
			for i, v := range interests {
				prefix := fmt.Sprintf("toggles.business.interests[%d]", i)
				interest := subMap(v)
				if interest == nil {
					r.addError(prefix, "Business interest details are required", "required", section)
					continue
				}

				r.checkEnum(interest["interest_type"], prefix+".interest_type", businessInterestTypes, true, section)
				r.checkString(interest["entity_name"], prefix+".entity_name", true, maxNameLength, section)

				if acn := interest["acn"]; !isEmpty(acn) && !acnPattern.MatchString(toString(acn)) {
					r.addError(prefix+".acn", "Please enter a valid 9-digit ACN", "format", section)
				}
				if abn := interest["abn"]; !isEmpty(abn) && !abnPattern.MatchString(toString(abn)) {
					r.addError(prefix+".abn", "Please enter a valid 11-digit ABN", "format", section)
				}

				recipientMode := toString(interest["recipient_mode"])
				r.checkEnum(interest["recipient_mode"], prefix+".recipient_mode", recipientModes, true, section)

				switch recipientMode {
				case "select_beneficiary":
					recipientID := interest["recipient_id"]
					if isEmpty(recipientID) {
						r.addError(prefix+".recipient_id", "Beneficiary selection is required", "required", section)
					} else if !containsString(knownIDs, toString(recipientID)) {
						r.addError(prefix+".recipient_id", "Selected beneficiary does not exist", "invalid_reference", section)
					}
				case "new_person":
					recipient := subMap(interest["recipient"])
					if recipient == nil {
						r.addError(prefix+".recipient", "Recipient details are required", "required", section)
					} else {
						r.checkString(recipient["full_name"], prefix+".recipient.full_name", true, maxNameLength, section)
						r.checkAddress(recipient["address"], prefix+".recipient.address", true, section)
					}
				}
			}
		}
	}

	if exclusion := subMap(toggles["exclusion"]); isTrue(exclusion["enabled"]) {
		exclusions := subList(exclusion["exclusions"])
		if len(exclusions) == 0 {
			r.addError("toggles.exclusion.exclusions", "At least one exclusion is required", "required", section)
		} else {
			for i, v := range exclusions {
				prefix := fmt.Sprintf("toggles.exclusion.exclusions[%d]", i)
				excl := subMap(v)
				if excl == nil {
					r.addError(prefix, "Exclusion details are required", "required", section)
					continue
				}

				r.checkString(excl["person_name"], prefix+".person_name", true, maxNameLength, section)
				r.checkEnum(excl["category"], prefix+".category", exclusionCategories, true, section)

				reasons := subList(excl["reasons"])
				if len(reasons) == 0 {
					r.addError(prefix+".reasons", "At least one reason must be selected", "required", section)
				} else {
					hasOther := false
					for j, reason := range reasons {
						r.checkEnum(reason, fmt.Sprintf("%s.reasons[%d]", prefix, j), exclusionReasons, true, section)
						if toString(reason) == "other_structured" {
							hasOther = true
						}
					}
					if hasOther {
						r.checkString(excl["other_note"], prefix+".other_note", true, 300, section)
					}
				}
			}
		}
	}

	if lifeSustaining := subMap(toggles["life_sustaining"]); isTrue(lifeSustaining["enabled"]) {
		r.checkEnum(lifeSustaining["template"], "toggles.life_sustaining.template", lifeSustainingTemplates, true, section)

		for i, val := range subList(lifeSustaining["values"]) {
			r.checkEnum(val, fmt.Sprintf("toggles.life_sustaining.values[%d]", i), lifeSustainingValues, false, section)
		}
	}
}

// validateAssets checks the informational assets overview. Values are
// optional but must be sane numbers when present.
func (r *Result) validateAssets(payload map[string]any) {
	const section = "assets"
	assets := subMap(payload["assets"])
	if assets == nil {
		return
	}

	assetTypes := []string{"real_property", "bank", "superannuation", "investments", "vehicles", "business", "other"}
	for _, assetType := range assetTypes {
		if value := assets[assetType]; !isEmpty(value) {
			r.checkPositiveNumber(value, "assets."+assetType, false, maxAssetValue, section)
		}
	}
}

func (r *Result) validateDeclarations(payload map[string]any) {
	const section = "declarations"
	declarations := subMap(payload["declarations"])
	if declarations == nil {
		declarations = payload
	}

	r.checkBool(declarations["confirm_reviewed"], "declarations.confirm_reviewed", true, section)
	r.checkBool(declarations["confirm_complex_advice"], "declarations.confirm_complex_advice", true, section)
	r.checkBool(declarations["confirm_super_and_joint"], "declarations.confirm_super_and_joint", true, section)
	r.checkBool(declarations["confirm_signing_witness"], "declarations.confirm_signing_witness", true, section)

	if !isTrue(declarations["confirm_reviewed"]) {
		r.addError("declarations.confirm_reviewed", "You must confirm you have reviewed all information", "invalid", section)
	}
	if !isTrue(declarations["confirm_complex_advice"]) {
		r.addError("declarations.confirm_complex_advice", "You must acknowledge complex circumstances may require legal advice", "invalid", section)
	}
	if !isTrue(declarations["confirm_super_and_joint"]) {
		r.addError("declarations.confirm_super_and_joint", "You must acknowledge superannuation and jointly held assets may not pass under this will", "invalid", section)
	}
	if !isTrue(declarations["confirm_signing_witness"]) {
		r.addError("declarations.confirm_signing_witness", "You must acknowledge proper signing and witnessing requirements apply", "invalid", section)
	}

	if signingDate := declarations["intended_signing_date"]; !isEmpty(signingDate) {
		r.checkDate(signingDate, "declarations.intended_signing_date", false, 0, section)
	}
}

// validateCrossSection catches contradictions single-section checks miss.
// These surface as warnings, not errors.
func (r *Result) validateCrossSection(payload map[string]any, children []any) {
	var executorNames []string
	if executors := subMap(payload["executors"]); executors != nil {
		for _, v := range subList(executors["primary"]) {
			if e := subMap(v); e != nil {
				executorNames = append(executorNames, toString(e["full_name"]))
			}
		}
		if backup := subMap(executors["backup"]); backup != nil {
			for _, v := range subList(backup["list"]) {
				if e := subMap(v); e != nil {
					executorNames = append(executorNames, toString(e["full_name"]))
				}
			}
		}
	}

	if guardianship := subMap(payload["guardianship"]); isTrue(guardianship["appoint_guardian"]) {
		if guardian := subMap(guardianship["guardian"]); guardian != nil {
			if name := toString(guardian["full_name"]); name != "" && containsString(executorNames, name) {
				r.addWarning("guardianship.guardian.full_name",
					"This person is also appointed as an executor. This is allowed but should be intentional.",
					"potential_duplicate", "guardianship")
			}
		}
	}

	minorTrusts := subMap(payload["minor_trusts"])
	if hasMinorChild(children) && !isTrue(minorTrusts["enabled"]) {
		r.addWarning("minor_trusts.enabled",
			"You have minor children but have not enabled trusts for minors. Consider whether this is intentional.",
			"missing_trust", "minor_trusts")
	}
}
