package explain

import "willforge/internal/will"

// SigningRequirements states who must sign and under what witnessing rules.
type SigningRequirements struct {
	MustBeSignedBy      string   `json:"must_be_signed_by"`
	NumberOfWitnesses   int      `json:"number_of_witnesses"`
	WitnessRequirements []string `json:"witness_requirements"`
}

// ExecutionSummary lists the formal steps that make the will legally valid.
type ExecutionSummary struct {
	Signing                SigningRequirements `json:"signing_requirements"`
	WhoCannotWitness       []string            `json:"who_cannot_witness"`
	StorageRecommendations []string            `json:"storage_recommendations"`
	NextSteps              []string            `json:"next_steps"`
}

// SummarizeExecution describes the signing and storage requirements for the
// will. The witnessing rules are fixed by statute; only the signatory varies.
func SummarizeExecution(ctx *will.Context) ExecutionSummary {
	return ExecutionSummary{
		Signing: SigningRequirements{
			MustBeSignedBy:    ctx.WillMaker.FullName,
			NumberOfWitnesses: 2,
			WitnessRequirements: []string{
				"Must be adults (18+ years)",
				"Must not be beneficiaries",
				"Must not be spouses of beneficiaries",
				"Must witness signature in your presence",
				"Must sign in presence of each other",
			},
		},
		WhoCannotWitness: []string{
			"Any beneficiary named in the will",
			"The spouse or partner of any beneficiary",
			"Anyone who is blind (cannot see you sign)",
			"Anyone who does not understand the nature of the document",
		},
		StorageRecommendations: []string{
			"Store in a safe, dry place",
			"Inform your executors where the will is kept",
			"Consider storing with your solicitor",
			"Do not attach anything to the will (staples, paperclips)",
		},
		NextSteps: []string{
			"Print the will on A4 paper (single-sided)",
			"Review the will carefully before signing",
			"Arrange for two independent witnesses",
			"Sign in the presence of both witnesses",
			"Have witnesses sign in your presence and each other's presence",
			"Date the will on the day of signing",
			"Store the original safely",
		},
	}
}
