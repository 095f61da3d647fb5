// Package explain produces plain-English summaries of what a will does and
// does not cover, plus risk warnings. The output is informational and is
// generated deterministically from the context; it never feeds back into
// clause selection or rendering.
package explain

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"willforge/internal/will"
	"willforge/pkg/platform/text"
)

// RiskLevel grades a warning.
type RiskLevel string

const (
	RiskInfo     RiskLevel = "info"
	RiskWarning  RiskLevel = "warning"
	RiskCritical RiskLevel = "critical"
)

// Section is one titled block of the summary.
type Section struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Order   int    `json:"-"`
}

// Warning flags a configuration that deserves the will maker's attention.
type Warning struct {
	Level      RiskLevel `json:"level"`
	Category   string    `json:"category"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	Suggestion string    `json:"suggestion,omitempty"`
}

// NotCovered names an asset class the will cannot dispose of.
type NotCovered struct {
	Category    string `json:"category"`
	Description string `json:"description"`
	Reason      string `json:"reason"`
}

// Summary is the complete plain-English explanation of one will.
type Summary struct {
	WillMakerName string
	DocumentType  string

	Sections   []Section
	NotCovered []NotCovered
	Warnings   []Warning

	ExecutorCount    int
	BeneficiaryCount int
	HasGuardian      bool
	HasSpecificGifts bool
	HasMinorTrusts   bool
}

// WarningCounts tallies warnings by level.
func (s *Summary) WarningCounts() map[RiskLevel]int {
	counts := map[RiskLevel]int{RiskInfo: 0, RiskWarning: 0, RiskCritical: 0}
	for _, w := range s.Warnings {
		counts[w.Level]++
	}
	return counts
}

// ToMap serializes the summary for API responses.
func (s *Summary) ToMap() map[string]any {
	sections := make([]map[string]any, len(s.Sections))
	for i, sec := range s.Sections {
		sections[i] = map[string]any{"title": sec.Title, "content": sec.Content}
	}
	counts := s.WarningCounts()
	return map[string]any{
		"overview": map[string]any{
			"will_maker_name": s.WillMakerName,
			"document_type":   s.DocumentType,
		},
		"key_facts": map[string]any{
			"executor_count":     s.ExecutorCount,
			"beneficiary_count":  s.BeneficiaryCount,
			"has_guardian":       s.HasGuardian,
			"has_specific_gifts": s.HasSpecificGifts,
			"has_minor_trusts":   s.HasMinorTrusts,
		},
		"sections":    sections,
		"not_covered": s.NotCovered,
		"warnings":    s.Warnings,
		"warning_counts": map[string]any{
			"info":     counts[RiskInfo],
			"warning":  counts[RiskWarning],
			"critical": counts[RiskCritical],
		},
	}
}

// Summarize builds the full summary for a context.
func Summarize(ctx *will.Context) *Summary {
	s := &Summary{
		WillMakerName:    ctx.WillMaker.FullName,
		DocumentType:     "Last Will and Testament",
		ExecutorCount:    len(ctx.Executors),
		BeneficiaryCount: len(ctx.Beneficiaries),
		HasGuardian:      ctx.Guardian != nil,
		HasSpecificGifts: ctx.Flags.HasSpecificGifts,
		HasMinorTrusts:   ctx.Flags.HasMinorTrusts,
	}

	s.Sections = append(s.Sections, executorSections(ctx)...)
	s.Sections = append(s.Sections, distributionSections(ctx)...)
	s.Sections = append(s.Sections, guardianshipSections(ctx)...)
	s.Sections = append(s.Sections, specialProvisionSections(ctx)...)
	sort.SliceStable(s.Sections, func(i, j int) bool {
		return s.Sections[i].Order < s.Sections[j].Order
	})

	s.NotCovered = notCoveredList()
	s.Warnings = riskWarnings(ctx)
	return s
}

func executorSections(ctx *will.Context) []Section {
	var sections []Section

	if len(ctx.Executors) > 0 {
		names := executorNames(ctx.Executors)
		var content string
		if len(names) == 1 {
			content = fmt.Sprintf(
				"You have appointed %s as your executor. This person will be responsible for carrying out the instructions in your will, including collecting your assets, paying any debts, and distributing your estate according to your wishes.",
				names[0])
		} else {
			content = fmt.Sprintf(
				"You have appointed %s as your executors. They will work together to carry out the instructions in your will, including collecting your assets, paying any debts, and distributing your estate according to your wishes.",
				text.JoinNames(names))
		}
		sections = append(sections, Section{Title: "Who Will Manage Your Estate", Content: content, Order: 1})
	}

	if len(ctx.BackupExecutors) > 0 {
		names := executorNames(ctx.BackupExecutors)
		var content string
		if len(names) == 1 {
			content = fmt.Sprintf("If your primary executor cannot act, %s will step in as backup executor.", names[0])
		} else {
			content = fmt.Sprintf("If your primary executors cannot act, %s will step in as backup executors.", text.JoinNames(names))
		}
		sections = append(sections, Section{Title: "Backup Executors", Content: content, Order: 2})
	}

	return sections
}

func executorNames(executors []will.Executor) []string {
	names := make([]string, len(executors))
	for i, e := range executors {
		names[i] = e.FullName
	}
	return names
}

func distributionSections(ctx *will.Context) []Section {
	var sections []Section

	if ctx.Flags.HasSpecificGifts && len(ctx.SpecificGifts) > 0 {
		var descriptions []string
		for i, gift := range ctx.SpecificGifts {
			if i == 3 {
				descriptions = append(descriptions, fmt.Sprintf("and %d other specific gifts", len(ctx.SpecificGifts)-3))
				break
			}
			if gift.GiftType == will.GiftCash && gift.CashAmount != nil {
				descriptions = append(descriptions, fmt.Sprintf("%s to %s", text.FormatCurrency(*gift.CashAmount), gift.BeneficiaryName))
			} else {
				descriptions = append(descriptions, fmt.Sprintf("%s to %s", gift.ItemDescription, gift.BeneficiaryName))
			}
		}
		content := fmt.Sprintf(
			"You have made %d specific gift(s): %s. These gifts will be distributed first, before the residue of your estate.",
			len(ctx.SpecificGifts), strings.Join(descriptions, "; "))
		sections = append(sections, Section{Title: "Specific Gifts", Content: content, Order: 3})
	}

	if len(ctx.ResidueBeneficiaries) > 0 {
		var descriptions []string
		for _, rb := range ctx.ResidueBeneficiaries {
			if rb.SharePercent != nil {
				descriptions = append(descriptions, fmt.Sprintf("%s to %s", text.FormatPercent(*rb.SharePercent), rb.BeneficiaryName))
			} else {
				descriptions = append(descriptions, rb.BeneficiaryName)
			}
		}
		content := fmt.Sprintf(
			"After specific gifts and debts are paid, the residue of your estate (everything left over) will be distributed as follows: %s.",
			strings.Join(descriptions, "; "))
		if ctx.SurvivorshipDays > 0 {
			content += fmt.Sprintf(" Each beneficiary must survive you by %d days to receive their share.", ctx.SurvivorshipDays)
		}
		sections = append(sections, Section{Title: "Distribution of Your Estate", Content: content, Order: 4})
	}

	return sections
}

func guardianshipSections(ctx *will.Context) []Section {
	if !ctx.Flags.HasGuardianship || ctx.Guardian == nil {
		return nil
	}
	content := fmt.Sprintf(
		"You have appointed %s as guardian for your minor children. This person will have parental responsibility for your children if you pass away while they are still minors.",
		ctx.Guardian.FullName)
	if ctx.BackupGuardian != nil {
		content += fmt.Sprintf(" If %s cannot act, %s will step in as backup guardian.",
			ctx.Guardian.FullName, ctx.BackupGuardian.FullName)
	}
	return []Section{{Title: "Guardianship of Minor Children", Content: content, Order: 5}}
}

func specialProvisionSections(ctx *will.Context) []Section {
	var sections []Section

	if ctx.Flags.HasMinorTrusts {
		content := fmt.Sprintf(
			"If any beneficiary is under %d years old at the time of your death, their share will be held in trust until they reach that age. ",
			ctx.MinorTrustsVestingAge)
		if ctx.MinorTrustsTrusteeMode == "named_trustee" && ctx.MinorTrustsTrustee != nil {
			content += fmt.Sprintf("%s will manage the trust.", ctx.MinorTrustsTrustee.FullName)
		} else {
			content += "Your executors will manage the trust."
		}
		sections = append(sections, Section{Title: "Trusts for Young Beneficiaries", Content: content, Order: 6})
	}

	if ctx.Flags.HasFuneralWishes {
		content := "You have expressed preferences for your funeral arrangements. "
		if ctx.FuneralPreference != "" {
			content += fmt.Sprintf("You prefer %s. ", strings.ReplaceAll(ctx.FuneralPreference, "_", " "))
		}
		content += "These wishes are not legally binding but provide guidance to your executors."
		sections = append(sections, Section{Title: "Funeral Wishes", Content: content, Order: 7})
	}

	if ctx.Flags.HasDigitalAssets {
		sections = append(sections, Section{
			Title:   "Digital Assets",
			Content: "You have provided for the management of your digital assets (online accounts, digital files, etc.). Your executors will have authority to access and manage these assets according to your instructions.",
			Order:   8,
		})
	}

	if ctx.Flags.HasPets {
		content := fmt.Sprintf("You have made provision for the care of your %d pet(s).", ctx.PetsCount)
		if ctx.PetsCarerName != "" {
			content += fmt.Sprintf(" %s will be responsible for their care.", ctx.PetsCarerName)
		}
		if ctx.PetsCashGift != nil && *ctx.PetsCashGift > 0 {
			content += fmt.Sprintf(" A gift of %s is provided for their expenses.", text.FormatCurrency(*ctx.PetsCashGift))
		}
		sections = append(sections, Section{Title: "Provision for Pets", Content: content, Order: 9})
	}

	if ctx.Flags.HasBusinessInterests && len(ctx.BusinessInterests) > 0 {
		sections = append(sections, Section{
			Title: "Business Interests",
			Content: fmt.Sprintf(
				"You have directed how your interest in %s should be handled. Your executors will manage this according to your instructions.",
				ctx.BusinessInterests[0].EntityName),
			Order: 10,
		})
	}

	if ctx.Flags.HasLifeSustainingStatement {
		sections = append(sections, Section{
			Title:   "Life-Sustaining Treatment",
			Content: "You have expressed your wishes regarding life-sustaining treatment. This statement provides guidance to your attorneys if you are unable to make medical decisions for yourself.",
			Order:   11,
		})
	}

	return sections
}

func notCoveredList() []NotCovered {
	return []NotCovered{
		{
			Category:    "Superannuation",
			Description: "Your superannuation benefits are not automatically covered by your will.",
			Reason:      "Superannuation is held in trust by your super fund and is distributed according to the fund's rules and any binding death nomination you have made.",
		},
		{
			Category:    "Life Insurance",
			Description: "Life insurance proceeds are paid directly to nominated beneficiaries.",
			Reason:      "Unless your estate is the nominated beneficiary, life insurance proceeds bypass your will and go directly to the named beneficiary.",
		},
		{
			Category:    "Jointly Owned Property",
			Description: "Property owned as joint tenants passes automatically to the surviving owner.",
			Reason:      "Property held as 'joint tenants' (common for married couples) passes by 'right of survivorship' and is not part of your estate.",
		},
		{
			Category:    "Trust Assets",
			Description: "Assets held in family trusts or other trusts are not covered.",
			Reason:      "Assets held in trust are owned by the trust, not by you personally. The trust deed determines how these assets are managed after your death.",
		},
		{
			Category:    "Company Assets",
			Description: "Assets owned by companies you control are not your personal assets.",
			Reason:      "Companies are separate legal entities. The company's assets belong to the company, not to you personally, even if you own all the shares.",
		},
		{
			Category:    "Enduring Powers of Attorney",
			Description: "This will does not create enduring powers of attorney.",
			Reason:      "Enduring powers of attorney (for financial and personal/health matters) are separate documents that must be prepared and signed while you have capacity.",
		},
		{
			Category:    "Advance Health Directive",
			Description: "This will does not create an advance health directive.",
			Reason:      "An advance health directive is a separate document that provides detailed instructions about your future health care. It is different from the life-sustaining statement in your will.",
		},
	}
}

func riskWarnings(ctx *will.Context) []Warning {
	var warnings []Warning

	if len(ctx.Executors) == 1 {
		warnings = append(warnings, Warning{
			Level:      RiskInfo,
			Category:   "executors",
			Title:      "Single Executor",
			Message:    "You have appointed only one executor.",
			Suggestion: "Consider appointing a backup executor in case your primary executor cannot act.",
		})
	}

	if len(ctx.Executors) > 0 && len(ctx.BackupExecutors) == 0 {
		warnings = append(warnings, Warning{
			Level:      RiskWarning,
			Category:   "executors",
			Title:      "No Backup Executors",
			Message:    "You have not appointed any backup executors.",
			Suggestion: "If your primary executor cannot act (due to death, incapacity, or refusal), someone may need to apply to the court to administer your estate.",
		})
	}

	if ctx.Flags.HasMinorChildren && !ctx.Flags.HasGuardianship {
		warnings = append(warnings, Warning{
			Level:      RiskCritical,
			Category:   "guardianship",
			Title:      "Minor Children Without Guardian",
			Message:    "You have minor children but have not appointed a guardian.",
			Suggestion: "Without a guardian appointment, decisions about who cares for your children may be made by the court or child safety authorities.",
		})
	}

	if ctx.Flags.HasMinorChildren && !ctx.Flags.HasMinorTrusts {
		warnings = append(warnings, Warning{
			Level:      RiskWarning,
			Category:   "minor_trusts",
			Title:      "Minor Children Without Trust Provisions",
			Message:    "You have minor children but have not enabled trust provisions.",
			Suggestion: "Without trust provisions, any inheritance for minor children may need to be held by the Public Trustee until they turn 18.",
		})
	}

	if ctx.Flags.HasPercentages && math.Abs(ctx.PercentageSum-100.0) > 0.01 {
		warnings = append(warnings, Warning{
			Level:      RiskCritical,
			Category:   "distribution",
			Title:      "Residue Percentages Do Not Sum to 100%",
			Message:    fmt.Sprintf("Your residue percentages sum to %s, not 100%%.", text.FormatPercent(ctx.PercentageSum)),
			Suggestion: "This may cause legal uncertainty about how the residue should be distributed.",
		})
	}

	if len(ctx.Beneficiaries) == 0 {
		warnings = append(warnings, Warning{
			Level:      RiskCritical,
			Category:   "beneficiaries",
			Title:      "No Beneficiaries",
			Message:    "You have not named any beneficiaries.",
			Suggestion: "Without beneficiaries, your estate may pass according to intestacy laws.",
		})
	}

	if ctx.Flags.HasPartner && ctx.DistributionScheme == "children_equal" {
		warnings = append(warnings, Warning{
			Level:      RiskInfo,
			Category:   "distribution",
			Title:      "Partner Excluded from Distribution",
			Message:    "You have a partner but your distribution scheme does not include them.",
			Suggestion: "Consider whether this reflects your intentions, as partners may have legal claims.",
		})
	}

	if ctx.Flags.HasExclusions {
		warnings = append(warnings, Warning{
			Level:      RiskInfo,
			Category:   "exclusions",
			Title:      "Persons Excluded from Will",
			Message:    "You have excluded one or more persons from your will.",
			Suggestion: "Excluded persons may challenge your will. Consider documenting your reasons separately with your solicitor.",
		})
	}

	if ctx.BusinessEnabled && len(ctx.BusinessInterests) == 0 {
		warnings = append(warnings, Warning{
			Level:      RiskWarning,
			Category:   "business",
			Title:      "Business Interests Enabled But Not Detailed",
			Message:    "You indicated you have business interests but did not provide details.",
			Suggestion: "Consider seeking legal advice about business succession planning.",
		})
	}

	if ctx.DigitalAssetsEnabled && ctx.DigitalAssetsInstructionsLocation == "" {
		warnings = append(warnings, Warning{
			Level:      RiskInfo,
			Category:   "digital_assets",
			Title:      "Digital Assets Without Instructions Location",
			Message:    "You have enabled digital assets but not specified where instructions are kept.",
			Suggestion: "Consider creating a secure record of your digital asset instructions.",
		})
	}

	if ctx.SurvivorshipDays < 30 {
		warnings = append(warnings, Warning{
			Level:      RiskInfo,
			Category:   "survivorship",
			Title:      "Short Survivorship Period",
			Message:    fmt.Sprintf("Your survivorship period is only %d days.", ctx.SurvivorshipDays),
			Suggestion: "A longer period (e.g., 30 days) may simplify estate administration.",
		})
	}

	if ctx.PetsEnabled && ctx.PetsCashGift != nil && *ctx.PetsCashGift > 0 && ctx.PetsCarerName == "" {
		warnings = append(warnings, Warning{
			Level:      RiskWarning,
			Category:   "pets",
			Title:      "Pet Gift Without Carer",
			Message:    "You have provided a cash gift for pets but not named a carer.",
			Suggestion: "Consider naming a specific person to care for your pets.",
		})
	}

	if ctx.Guardian != nil {
		guardianName := strings.ToLower(ctx.Guardian.FullName)
		for _, executor := range ctx.Executors {
			if strings.ToLower(executor.FullName) == guardianName {
				warnings = append(warnings, Warning{
					Level:      RiskInfo,
					Category:   "appointments",
					Title:      "Same Person as Executor and Guardian",
					Message:    fmt.Sprintf("%s is appointed as both executor and guardian.", executor.FullName),
					Suggestion: "This is common and often practical, but consider potential conflicts of interest.",
				})
				break
			}
		}
	}

	if ctx.Flags.HasPercentages && len(ctx.ResidueBeneficiaries) > 3 {
		warnings = append(warnings, Warning{
			Level:      RiskInfo,
			Category:   "distribution",
			Title:      "Complex Distribution Scheme",
			Message:    "You have a complex distribution with multiple beneficiaries and percentages.",
			Suggestion: "Consider whether this complexity is necessary and how it may affect administration costs.",
		})
	}

	return warnings
}
