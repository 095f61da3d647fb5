package will

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func basePayload() map[string]any {
	return map[string]any{
		"will_maker": map[string]any{
			"full_name":           "Alex Morgan",
			"dob":                 "1980-04-12",
			"occupation":          "Engineer",
			"relationship_status": "single",
			"address": map[string]any{
				"street":   "12 Wattle St",
				"suburb":   "Paddington",
				"state":    "QLD",
				"postcode": "4064",
			},
		},
		"executors": map[string]any{
			"mode": "one",
			"primary": []any{
				map[string]any{"full_name": "Jordan Lee", "relationship": "friend"},
			},
		},
	}
}

func TestBuild_WillMakerAndDefaults(t *testing.T) {
	ctx := Build(basePayload())

	assert.Equal(t, "Alex Morgan", ctx.WillMaker.FullName)
	assert.Equal(t, "12 Wattle St, Paddington, QLD, 4064", ctx.WillMaker.Address.SingleLine())
	assert.Equal(t, 30, ctx.SurvivorshipDays)
	assert.Equal(t, 18, ctx.MinorTrustsVestingAge)
	assert.Equal(t, 1, ctx.ExecutorCount)
	assert.Nil(t, ctx.Partner)
	assert.Empty(t, ctx.UnresolvedRefs)
}

func TestBuild_PartnerGating(t *testing.T) {
	tests := []struct {
		name       string
		status     string
		wantFlag   bool
		wantFilled bool
	}{
		{name: "married has partner", status: "married", wantFlag: true, wantFilled: true},
		{name: "de facto has partner", status: "de_facto", wantFlag: true, wantFilled: true},
		{name: "single has none", status: "single", wantFlag: false},
		{name: "separated has none", status: "separated", wantFlag: false},
		{name: "divorced has none", status: "divorced", wantFlag: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := basePayload()
			payload["will_maker"].(map[string]any)["relationship_status"] = tt.status
			payload["partner"] = map[string]any{"full_name": "Sam Morgan"}

			ctx := Build(payload)

			assert.Equal(t, tt.wantFlag, ctx.Flags.HasPartner)
			if tt.wantFilled {
				require.NotNil(t, ctx.Partner)
				assert.Equal(t, "Sam Morgan", ctx.Partner.FullName)
			} else {
				assert.Nil(t, ctx.Partner)
			}
		})
	}
}

func TestBuild_SeparationOnlyWhenSeparated(t *testing.T) {
	payload := basePayload()
	payload["will_maker"].(map[string]any)["relationship_status"] = "separated"
	payload["separation"] = map[string]any{"date": "2024-01-01"}

	ctx := Build(payload)

	require.NotNil(t, ctx.Separation)
	assert.Equal(t, "2024-01-01", ctx.Separation["date"])
	assert.False(t, ctx.Flags.HasPartner)
}

func TestBuild_ChildrenRequireToggle(t *testing.T) {
	payload := basePayload()
	payload["children"] = []any{
		map[string]any{"full_name": "Riley Morgan", "is_expected_to_be_minor_at_death": true},
	}

	// Without the toggle the list is ignored entirely.
	ctx := Build(payload)
	assert.Empty(t, ctx.Children)
	assert.False(t, ctx.Flags.HasChildren)
	assert.False(t, ctx.Flags.HasMinorChildren)

	payload["has_children"] = true
	ctx = Build(payload)
	require.Len(t, ctx.Children, 1)
	assert.True(t, ctx.Flags.HasChildren)
	assert.True(t, ctx.Flags.HasMinorChildren)
	assert.Equal(t, 1, ctx.MinorBeneficiaryCount)
}

func TestBuild_ExecutorModes(t *testing.T) {
	tests := []struct {
		name      string
		executors map[string]any
		partner   bool
		wantNames []string
	}{
		{
			name:      "partner_only copies the partner",
			executors: map[string]any{"mode": "partner_only"},
			partner:   true,
			wantNames: []string{"Sam Morgan"},
		},
		{
			name:      "partner_only without partner yields none",
			executors: map[string]any{"mode": "partner_only"},
			wantNames: nil,
		},
		{
			name: "two_joint keeps input order",
			executors: map[string]any{
				"mode": "two_joint",
				"primary": []any{
					map[string]any{"full_name": "A One"},
					map[string]any{"full_name": "B Two"},
				},
			},
			wantNames: []string{"A One", "B Two"},
		},
		{
			name:      "unknown mode yields none",
			executors: map[string]any{"mode": "committee"},
			wantNames: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := basePayload()
			payload["executors"] = tt.executors
			if tt.partner {
				payload["will_maker"].(map[string]any)["relationship_status"] = "married"
				payload["partner"] = map[string]any{"full_name": "Sam Morgan"}
			}

			ctx := Build(payload)

			var got []string
			for _, e := range ctx.Executors {
				got = append(got, e.FullName)
			}
			assert.Equal(t, tt.wantNames, got)
			assert.Equal(t, len(tt.wantNames), ctx.ExecutorCount)
		})
	}
}

func TestBuild_BackupExecutors(t *testing.T) {
	payload := basePayload()
	payload["executors"] = map[string]any{
		"mode":    "one",
		"primary": []any{map[string]any{"full_name": "Jordan Lee"}},
		"backup": map[string]any{
			"mode": "two_joint_and_several",
			"list": []any{
				map[string]any{"full_name": "Backup One"},
				map[string]any{"full_name": "Backup Two"},
			},
		},
	}

	ctx := Build(payload)

	require.Len(t, ctx.BackupExecutors, 2)
	assert.Equal(t, "Backup One", ctx.BackupExecutors[0].FullName)
	assert.Equal(t, "Backup Two", ctx.BackupExecutors[1].FullName)
}

func TestBuild_GuardianshipGating(t *testing.T) {
	tests := []struct {
		name         string
		minorChild   bool
		appoint      bool
		wantGuardian bool
	}{
		{name: "minor child and appointment", minorChild: true, appoint: true, wantGuardian: true},
		{name: "minor child without appointment", minorChild: true, appoint: false},
		{name: "appointment without minor child", minorChild: false, appoint: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := basePayload()
			if tt.minorChild {
				payload["has_children"] = true
				payload["children"] = []any{
					map[string]any{"full_name": "Riley", "is_expected_to_be_minor_at_death": true},
				}
			}
			payload["guardianship"] = map[string]any{
				"appoint_guardian": tt.appoint,
				"guardian":         map[string]any{"full_name": "Gail Carter"},
				"backup_guardian":  map[string]any{"full_name": "Harry Carter"},
			}

			ctx := Build(payload)

			assert.Equal(t, tt.wantGuardian, ctx.Flags.HasGuardianship)
			if tt.wantGuardian {
				require.NotNil(t, ctx.Guardian)
				assert.Equal(t, "Gail Carter", ctx.Guardian.FullName)
				require.NotNil(t, ctx.BackupGuardian)
				assert.Equal(t, "Harry Carter", ctx.BackupGuardian.FullName)
			} else {
				assert.Nil(t, ctx.Guardian)
				assert.Nil(t, ctx.BackupGuardian)
			}
		})
	}
}

func TestBuild_BeneficiaryProjection(t *testing.T) {
	payload := basePayload()
	payload["beneficiaries"] = []any{
		map[string]any{
			"full_name": "Cash Person", "gift_role": "specific_cash", "cash_amount": 5000.0,
		},
		map[string]any{
			"id": "ben_item", "full_name": "Item Person", "gift_role": "specific_item",
			"item_description": "my watch collection",
		},
		map[string]any{
			"id": "ben_res", "full_name": "Residue Person", "gift_role": "residue",
			"residue_share_percent": 60.0,
		},
		map[string]any{
			"full_name": "Percent Person", "gift_role": "percentage_only", "percentage": 25,
		},
	}

	ctx := Build(payload)

	require.Len(t, ctx.Beneficiaries, 4)
	assert.Equal(t, "beneficiary_0", ctx.Beneficiaries[0].ID)
	assert.Equal(t, "ben_item", ctx.Beneficiaries[1].ID)
	assert.Equal(t, "beneficiary_3", ctx.Beneficiaries[3].ID)
	assert.Equal(t, BeneficiaryIndividual, ctx.Beneficiaries[0].Type)

	require.Len(t, ctx.SpecificGifts, 2)
	assert.Equal(t, GiftCash, ctx.SpecificGifts[0].GiftType)
	require.NotNil(t, ctx.SpecificGifts[0].CashAmount)
	assert.Equal(t, 5000.0, *ctx.SpecificGifts[0].CashAmount)
	assert.Equal(t, GiftItem, ctx.SpecificGifts[1].GiftType)
	assert.Equal(t, "my watch collection", ctx.SpecificGifts[1].ItemDescription)

	require.Len(t, ctx.ResidueBeneficiaries, 1)
	assert.Equal(t, "ben_res", ctx.ResidueBeneficiaries[0].BeneficiaryID)

	assert.Equal(t, 25.0, ctx.PercentageSum)
	assert.Equal(t, 4, ctx.BeneficiaryCount)
	assert.True(t, ctx.Flags.HasSpecificGifts)
	assert.True(t, ctx.Flags.HasResidueScheme)
	assert.True(t, ctx.Flags.HasPercentages)
}

func TestBuild_SubstitutionAlternateResolution(t *testing.T) {
	t.Run("resolves by id", func(t *testing.T) {
		payload := basePayload()
		payload["beneficiaries"] = []any{
			map[string]any{"id": "ben_1", "full_name": "First Person", "gift_role": "residue"},
			map[string]any{"id": "ben_2", "full_name": "Second Person", "gift_role": "residue"},
		}
		payload["substitution"] = map[string]any{
			"rule":                     "to_alternate_beneficiary",
			"alternate_beneficiary_id": "ben_2",
		}

		ctx := Build(payload)

		assert.True(t, ctx.Flags.HasSubstitution)
		assert.True(t, ctx.Flags.HasAlternateBeneficiary)
		assert.Equal(t, "Second Person", ctx.AlternateBeneficiaryName)
		assert.Empty(t, ctx.UnresolvedRefs)
	})

	t.Run("records unresolved id", func(t *testing.T) {
		payload := basePayload()
		payload["substitution"] = map[string]any{
			"rule":                     "to_alternate_beneficiary",
			"alternate_beneficiary_id": "ben_missing",
		}

		ctx := Build(payload)

		assert.Empty(t, ctx.AlternateBeneficiaryName)
		require.Len(t, ctx.UnresolvedRefs, 1)
		assert.Equal(t, "substitution.alternate_beneficiary_id", ctx.UnresolvedRefs[0].Field)
		assert.Equal(t, "ben_missing", ctx.UnresolvedRefs[0].ID)
	})

	t.Run("other rules set no alternate", func(t *testing.T) {
		payload := basePayload()
		payload["substitution"] = map[string]any{"rule": "to_their_children"}

		ctx := Build(payload)

		assert.True(t, ctx.Flags.HasSubstitution)
		assert.False(t, ctx.Flags.HasAlternateBeneficiary)
	})
}

func TestBuild_MinorTrustsApplicability(t *testing.T) {
	tests := []struct {
		name       string
		minorChild bool
		giftRole   string
		want       bool
	}{
		{name: "minor child alone", minorChild: true, want: true},
		{name: "residue beneficiary alone", giftRole: "residue", want: true},
		{name: "percentage beneficiary alone", giftRole: "percentage_only", want: true},
		{name: "specific gift only", giftRole: "specific_cash", want: false},
		{name: "nothing applicable", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := basePayload()
			payload["minor_trusts"] = map[string]any{
				"enabled":      true,
				"vesting_age":  21,
				"trustee_mode": "executors",
			}
			if tt.minorChild {
				payload["has_children"] = true
				payload["children"] = []any{
					map[string]any{"full_name": "Riley", "is_expected_to_be_minor_at_death": true},
				}
			}
			if tt.giftRole != "" {
				payload["beneficiaries"] = []any{
					map[string]any{"full_name": "Someone", "gift_role": tt.giftRole, "cash_amount": 100.0},
				}
			}

			ctx := Build(payload)

			assert.True(t, ctx.MinorTrustsEnabled)
			assert.Equal(t, 21, ctx.MinorTrustsVestingAge)
			assert.Equal(t, tt.want, ctx.Flags.HasMinorTrusts)
		})
	}
}

func TestBuild_MinorTrustsNamedTrustee(t *testing.T) {
	payload := basePayload()
	payload["minor_trusts"] = map[string]any{
		"enabled":      true,
		"trustee_mode": "named_trustee",
		"trustee":      map[string]any{"full_name": "Trust Person"},
	}

	ctx := Build(payload)

	require.NotNil(t, ctx.MinorTrustsTrustee)
	assert.Equal(t, "Trust Person", ctx.MinorTrustsTrustee.FullName)
}

func TestBuild_Toggles(t *testing.T) {
	payload := basePayload()
	payload["beneficiaries"] = []any{
		map[string]any{"id": "ben_1", "full_name": "Carer Person", "gift_role": "residue",
			"address": map[string]any{"street": "1 Fig St", "suburb": "Milton", "state": "QLD", "postcode": "4064"}},
	}
	payload["toggles"] = map[string]any{
		"funeral": map[string]any{
			"enabled": true, "preference": "cremation", "notes": "scatter at sea",
		},
		"digital_assets": map[string]any{
			"enabled": true, "authority": true,
			"categories":            []any{"email_accounts", "photos_videos"},
			"instructions_location": "home safe",
		},
		"pets": map[string]any{
			"enabled": true, "count": 2, "summary": "two dogs",
			"care_person_mode": "select_beneficiary", "care_beneficiary_id": "ben_1",
			"cash_gift": 2000.0,
		},
		"business": map[string]any{
			"enabled": true,
			"interests": []any{
				map[string]any{
					"interest_type": "company_shares", "entity_name": "Morgan Pty Ltd",
					"acn": "123456789", "recipient_mode": "select_beneficiary", "recipient_id": "ben_1",
				},
			},
		},
		"exclusion": map[string]any{
			"enabled": true,
			"exclusions": []any{
				map[string]any{
					"person_name": "Pat Morgan", "category": "estranged_family",
					"reasons": []any{"no_contact"},
				},
			},
		},
		"life_sustaining": map[string]any{
			"enabled": true, "template": "values_based", "values": []any{"dignity", "comfort"},
		},
	}

	ctx := Build(payload)

	assert.True(t, ctx.Flags.HasFuneralWishes)
	assert.Equal(t, "cremation", ctx.FuneralPreference)

	assert.True(t, ctx.Flags.HasDigitalAssets)
	assert.True(t, ctx.DigitalAssetsAuthority)
	assert.Equal(t, []string{"email_accounts", "photos_videos"}, ctx.DigitalAssetsCategories)

	assert.True(t, ctx.Flags.HasPets)
	assert.Equal(t, "Carer Person", ctx.PetsCarerName)
	assert.Equal(t, "1 Fig St", ctx.PetsCarerAddress.Street)

	assert.True(t, ctx.Flags.HasBusinessInterests)
	require.Len(t, ctx.BusinessInterests, 1)
	assert.Equal(t, "Carer Person", ctx.BusinessInterests[0].RecipientName)

	assert.True(t, ctx.Flags.HasExclusions)
	require.Len(t, ctx.Exclusions, 1)
	assert.Equal(t, []string{"no_contact"}, ctx.Exclusions[0].Reasons)

	assert.True(t, ctx.Flags.HasLifeSustainingStatement)
	assert.Equal(t, "values_based", ctx.LifeSustainingTemplate)

	assert.Empty(t, ctx.UnresolvedRefs)
}

func TestBuild_PetsNewPersonCarer(t *testing.T) {
	payload := basePayload()
	payload["toggles"] = map[string]any{
		"pets": map[string]any{
			"enabled": true, "care_person_mode": "new_person",
			"carer": map[string]any{
				"full_name": "Kim Walker",
				"address":   map[string]any{"street": "3 Oak Ave"},
			},
		},
	}

	ctx := Build(payload)

	assert.Equal(t, "Kim Walker", ctx.PetsCarerName)
	assert.Equal(t, "3 Oak Ave", ctx.PetsCarerAddress.Street)
}

func TestBuild_UnresolvedCarerAndRecipient(t *testing.T) {
	payload := basePayload()
	payload["toggles"] = map[string]any{
		"pets": map[string]any{
			"enabled": true, "care_person_mode": "select_beneficiary",
			"care_beneficiary_id": "nope_1",
		},
		"business": map[string]any{
			"enabled": true,
			"interests": []any{
				map[string]any{
					"interest_type": "sole_trader", "entity_name": "Side Hustle",
					"recipient_mode": "select_beneficiary", "recipient_id": "nope_2",
				},
			},
		},
	}

	ctx := Build(payload)

	require.Len(t, ctx.UnresolvedRefs, 2)
	assert.Equal(t, "nope_1", ctx.UnresolvedRefs[0].ID)
	assert.Equal(t, "nope_2", ctx.UnresolvedRefs[1].ID)
	assert.Empty(t, ctx.PetsCarerName)
	assert.Empty(t, ctx.BusinessInterests[0].RecipientName)
}

func TestBuild_SurvivorshipOverride(t *testing.T) {
	payload := basePayload()
	payload["survivorship"] = map[string]any{"days": 60}

	ctx := Build(payload)

	assert.Equal(t, 60, ctx.SurvivorshipDays)
}

func TestBuild_Determinism(t *testing.T) {
	payload := basePayload()
	payload["beneficiaries"] = []any{
		map[string]any{"full_name": "One", "gift_role": "residue", "residue_share_percent": 50.0},
		map[string]any{"full_name": "Two", "gift_role": "residue", "residue_share_percent": 50.0},
	}

	first := Build(payload)
	second := Build(payload)

	assert.Equal(t, first, second)
}

func TestBuild_MalformedShapesDoNotPanic(t *testing.T) {
	payload := map[string]any{
		"will_maker":    "not a map",
		"executors":     []any{"wrong"},
		"beneficiaries": "also wrong",
		"has_children":  "yes",
		"toggles":       42,
	}

	ctx := Build(payload)

	assert.Empty(t, ctx.WillMaker.FullName)
	assert.Empty(t, ctx.Executors)
	assert.Empty(t, ctx.Beneficiaries)
	assert.False(t, ctx.Flags.HasChildren)
}
