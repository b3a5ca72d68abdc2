package lesson

// Seed lesson: continuous hazard identification, risk assessment and
// control (IPERC). Ships compiled in so the CLI works out of the box;
// hosting layers register their own lessons the same way.

func init() {
	register(hazardLesson)
}

var hazardLesson = Lesson{
	ID:          1,
	Title:       "Hazard Identification, Risk Assessment and Control",
	Description: "Core IPERC workflow: spotting workplace hazards, judging their risk, and choosing controls.",
	Language:    LangEN,
	LearningObjectives: []string{
		"Distinguish a hazard from the risk it creates",
		"Identify hazards systematically in a work area",
		"Assess risk from probability and severity",
		"Select controls following the hierarchy of controls",
	},
	CheckPoints: []string{
		"Hazard = source of potential harm; risk = probability x severity of that harm",
		"Risk assessment always weighs probability and impact together",
		"Hierarchy of controls: elimination, substitution, engineering, administrative, PPE",
		"IPERC is continuous — reassess whenever conditions change",
	},
	Targets: []Target{
		{
			ID:          1,
			Title:       "Hazard vs. risk",
			Description: "Tell apart the source of harm from the likelihood of the harm occurring.",
			MinMastery:  0.7,
			Rubric: Rubric{
				Levels: []RubricLevel{
					{Level: 1, Name: "Initial", Criteria: []string{
						"Uses hazard and risk as synonyms",
						"Cannot give a workplace example",
					}},
					{Level: 2, Name: "Basic", Criteria: []string{
						"States one of the two concepts correctly",
						"Examples are generic, not tied to a work area",
					}},
					{Level: 3, Name: "Competent", Criteria: []string{
						"Separates source of harm from probability of harm",
						"Gives at least one concrete workplace example",
					}},
					{Level: 4, Name: "Advanced", Criteria: []string{
						"Explains that risk is measurable and varies with exposure",
						"Examples come from the learner's own work area",
					}},
					{Level: 5, Name: "Mastery", Criteria: []string{
						"Applies both concepts fluently to new situations",
						"Explains how the same hazard can carry different risk levels",
					}},
				},
				CommonErrors: []string{
					"Treating hazard and risk as the same thing",
					"Calling the harm itself the risk",
					"Ignoring probability when describing risk",
				},
				Hints: []string{
					"Think about the difference between what can harm you and how likely it is to harm you.",
					"The hazard is the thing (a wet floor); the risk is the chance of the accident.",
					"A hazard is a source of potential harm. Risk is the probability that the harm occurs, given exposure.",
				},
			},
		},
		{
			ID:          2,
			Title:       "Hazard identification",
			Description: "Spot concrete, observable hazards in a described work environment.",
			MinMastery:  0.7,
			Rubric: Rubric{
				Levels: []RubricLevel{
					{Level: 1, Name: "Initial", Criteria: []string{
						"Names no real hazards, or only consequences",
					}},
					{Level: 2, Name: "Basic", Criteria: []string{
						"Identifies one or two hazards, some speculative",
					}},
					{Level: 3, Name: "Competent", Criteria: []string{
						"Identifies at least three observable hazards",
						"Hazards are specific to the environment described",
					}},
					{Level: 4, Name: "Advanced", Criteria: []string{
						"Covers multiple hazard classes (physical, chemical, ergonomic)",
						"Uses safety terminology correctly",
					}},
					{Level: 5, Name: "Mastery", Criteria: []string{
						"Systematic sweep of the environment by hazard class",
						"Flags latent hazards others would miss",
					}},
				},
				CommonErrors: []string{
					"Listing consequences instead of hazards",
					"Staying too general (\"accidents can happen\")",
					"Inventing hazards not present in the scenario",
				},
				Hints: []string{
					"Scan the scene: surfaces, heights, energy sources, substances.",
					"Name things you can point at — a frayed cable, a blocked exit — not outcomes.",
					"Walk through hazard classes one by one: physical, chemical, electrical, ergonomic.",
				},
			},
		},
		{
			ID:          3,
			Title:       "Risk controls",
			Description: "Choose risk controls following the hierarchy of controls.",
			MinMastery:  0.65,
			Weight:      1.5,
			Rubric: Rubric{
				Levels: []RubricLevel{
					{Level: 1, Name: "Initial", Criteria: []string{
						"Jumps straight to PPE for every hazard",
					}},
					{Level: 2, Name: "Basic", Criteria: []string{
						"Names some controls but in no particular order",
					}},
					{Level: 3, Name: "Competent", Criteria: []string{
						"Orders controls from elimination down to PPE",
						"Matches a reasonable control to a given hazard",
					}},
					{Level: 4, Name: "Advanced", Criteria: []string{
						"Justifies why higher-hierarchy controls are preferred",
						"Combines controls when one is insufficient",
					}},
					{Level: 5, Name: "Mastery", Criteria: []string{
						"Designs a layered control plan for a new scenario",
						"Weighs feasibility and residual risk explicitly",
					}},
				},
				CommonErrors: []string{
					"Defaulting to PPE as the first and only control",
					"Skipping elimination and substitution entirely",
					"Confusing administrative controls with engineering controls",
				},
				Hints: []string{
					"Is there a way to remove the hazard before protecting people from it?",
					"Order matters: eliminate, substitute, engineer, administrate, protect.",
					"The hierarchy of controls: elimination, substitution, engineering controls, administrative controls, PPE — in that order of preference.",
				},
			},
		},
	},
	Moments: []Moment{
		{
			ID:              0,
			Title:           "Hazard or risk?",
			Goal:            "Learner states the difference between a hazard and a risk with an example.",
			PrimaryTargetID: 1,
			ReferenceQuestions: []string{
				"In your own words, what is the difference between a hazard and a risk?",
				"A ladder leans against a wall. Where is the hazard, and where is the risk?",
			},
		},
		{
			ID:              1,
			Title:           "Spot the hazards",
			Goal:            "Learner identifies at least three concrete hazards in a described workshop.",
			PrimaryTargetID: 2,
			ReferenceQuestions: []string{
				"Picture a workshop with an oil spill near a grinder and boxes stacked by the exit. What hazards do you see?",
				"Name three hazards you might find in your own work area right now.",
			},
			Images: []Image{
				{ID: 1, Description: "Workshop floor with an oil spill beside a bench grinder", URL: "lessons/1/workshop.png", MustUse: true},
			},
		},
		{
			ID:              2,
			Title:           "How bad, how likely",
			Goal:            "Learner assesses a hazard's risk using probability and severity.",
			PrimaryTargetID: 1,
			ReferenceQuestions: []string{
				"Two workers use the same grinder, one daily and one monthly. Is their risk the same? Why?",
				"How would you rate the risk of the oil spill if the area is fenced off?",
			},
		},
		{
			ID:              3,
			Title:           "Pick the controls",
			Goal:            "Learner proposes controls for a hazard, ordered by the hierarchy of controls.",
			PrimaryTargetID: 3,
			ReferenceQuestions: []string{
				"For the oil spill near the grinder, what controls would you apply, starting from the most effective?",
				"Why is handing out gloves not enough on its own?",
			},
		},
		{
			ID:              4,
			Title:           "Keep it continuous",
			Goal:            "Learner explains when and why an IPERC must be redone.",
			PrimaryTargetID: 3,
			ReferenceQuestions: []string{
				"The workshop just received a new solvent. What happens to your IPERC?",
				"Who should update the risk assessment, and how often?",
			},
		},
	},
}
