package service

import (
	"context"
	"encoding/json"
	"fmt"

	"advocase-backend/models"
)

const analyzerTemperature = 0.2

// AnalysisResult is the structured output of one analyzer run
type AnalysisResult struct {
	Data       models.InsightResult
	TokensUsed int
	Model      string
}

// Analyzer runs one AI analysis over a case bundle. Analyzers are stateless
// aside from the shared LLM client; they never cache or persist, and they do
// not retry beyond what the client itself does.
type Analyzer interface {
	Type() models.InsightType
	Run(ctx context.Context, bundle *models.CaseBundle, caseType models.CaseType) (*AnalysisResult, error)
}

type promptAnalyzer struct {
	llm         Generator
	insightType models.InsightType
	buildPrompt func(bundleContext string, caseType models.CaseType) string
}

func (a *promptAnalyzer) Type() models.InsightType {
	return a.insightType
}

func (a *promptAnalyzer) Run(ctx context.Context, bundle *models.CaseBundle, caseType models.CaseType) (*AnalysisResult, error) {
	prompt := a.buildPrompt(serializeBundle(bundle), caseType)

	res, err := a.llm.GenerateJSON(ctx, prompt, analyzerTemperature)
	if err != nil {
		return nil, fmt.Errorf("%w (%s): %v", ErrAnalysisFailed, a.insightType, err)
	}

	data := make(models.InsightResult)
	if err := json.Unmarshal([]byte(res.Text), &data); err != nil {
		return nil, fmt.Errorf("%w (%s): malformed model response: %v", ErrAnalysisFailed, a.insightType, err)
	}

	return &AnalysisResult{
		Data:       data,
		TokensUsed: res.TokensUsed,
		Model:      a.llm.ModelName(),
	}, nil
}

// NewRiskAssessor builds the risk-assessment analyzer
func NewRiskAssessor(llm Generator) Analyzer {
	return &promptAnalyzer{
		llm:         llm,
		insightType: models.InsightRiskAssessment,
		buildPrompt: func(bundleContext string, caseType models.CaseType) string {
			return fmt.Sprintf(`You are a senior litigation strategist reviewing a %s matter before an Indian High Court.

CASE BUNDLE:
%s

TASK:
Assess the litigation risk for the petitioner's side based only on the bundle above.

Respond with a single JSON object, no other text:
{
  "overall_risk": "low" | "medium" | "high",
  "risk_score": <number 0-100>,
  "strengths": [<strings, strongest points in the petitioner's favor>],
  "weaknesses": [<strings, gaps or exposures in the petitioner's case>],
  "procedural_risks": [<strings, limitation, maintainability, jurisdiction issues>],
  "recommendations": [<strings, concrete next steps for the advocate>]
}

REQUIREMENTS:
- Base every point on the bundle content; never invent facts or annexures
- Reference documents by their titles when citing them
- Keep each list between 2 and 6 entries`, caseType, bundleContext)
		},
	}
}

// NewReliefEvaluator builds the relief-evaluation analyzer
func NewReliefEvaluator(llm Generator) Analyzer {
	return &promptAnalyzer{
		llm:         llm,
		insightType: models.InsightReliefEvaluation,
		buildPrompt: func(bundleContext string, caseType models.CaseType) string {
			return fmt.Sprintf(`You are an experienced advocate evaluating the reliefs sought in a %s matter.

CASE BUNDLE:
%s

TASK:
Identify every relief prayed for in the petition and evaluate how likely each is to be granted given the counter-pleadings and orders on record.

Respond with a single JSON object, no other text:
{
  "reliefs": [
    {
      "relief": <string, the prayer as pleaded>,
      "likelihood": "unlikely" | "possible" | "likely",
      "reasoning": <string, one short paragraph>,
      "supporting_documents": [<document titles>]
    }
  ],
  "interim_relief_available": <boolean>,
  "alternative_reliefs": [<strings, reliefs worth pleading that are absent>]
}

REQUIREMENTS:
- Evaluate only reliefs actually pleaded; list missing ones separately under alternative_reliefs
- Ground every likelihood in the bundle content`, caseType, bundleContext)
		},
	}
}

// NewPrecedentValidator builds the precedent-validation analyzer
func NewPrecedentValidator(llm Generator) Analyzer {
	return &promptAnalyzer{
		llm:         llm,
		insightType: models.InsightPrecedents,
		buildPrompt: func(bundleContext string, caseType models.CaseType) string {
			return fmt.Sprintf(`You are a legal researcher validating the precedents cited in a %s matter.

CASE BUNDLE:
%s

TASK:
Extract every judgment cited across the pleadings, validate whether it supports the proposition it is cited for, and suggest stronger authority where the citation is weak.

Respond with a single JSON object, no other text:
{
  "cited_precedents": [
    {
      "citation": <string as it appears in the pleadings>,
      "cited_for": <string, the proposition>,
      "assessment": "supports" | "distinguishable" | "misapplied" | "unverifiable",
      "notes": <string>
    }
  ],
  "suggested_precedents": [
    {
      "case_name": <string>,
      "relevance": <string, why it helps this matter>
    }
  ]
}

REQUIREMENTS:
- Never fabricate citations; mark anything you cannot verify as "unverifiable"
- Suggest at most 5 additional precedents`, caseType, bundleContext)
		},
	}
}

// NewRightsMapper builds the constitutional-rights mapping analyzer
func NewRightsMapper(llm Generator) Analyzer {
	return &promptAnalyzer{
		llm:         llm,
		insightType: models.InsightRightsMapping,
		buildPrompt: func(bundleContext string, caseType models.CaseType) string {
			return fmt.Sprintf(`You are a constitutional law expert mapping the rights engaged by a %s matter.

CASE BUNDLE:
%s

TASK:
Map the facts pleaded in the bundle to the constitutional and statutory rights they engage.

Respond with a single JSON object, no other text:
{
  "constitutional_rights": [
    {
      "article": <string, e.g. "Article 21">,
      "right": <string, the right in plain language>,
      "engagement": <string, how the pleaded facts engage it>,
      "strength": "weak" | "moderate" | "strong"
    }
  ],
  "statutory_rights": [
    {
      "statute": <string>,
      "provision": <string>,
      "engagement": <string>
    }
  ],
  "unpleaded_rights": [<strings, rights the facts support but the petition does not invoke>]
}

REQUIREMENTS:
- Tie every mapping to specific pleaded facts
- Flag rights arguments present in the bundle that the facts do not actually support`, caseType, bundleContext)
		},
	}
}

// NewBundleAnalyzer builds the bundle-level analyzer backing the
// bundle-analysis routes
func NewBundleAnalyzer(llm Generator) Analyzer {
	return &promptAnalyzer{
		llm:         llm,
		insightType: models.InsightBundleAnalysis,
		buildPrompt: func(bundleContext string, caseType models.CaseType) string {
			return fmt.Sprintf(`You are a senior advocate reviewing the completeness of the document bundle in a %s matter.

CASE BUNDLE:
%s

TASK:
Summarize the state of the record and flag gaps an advocate should fix before the next hearing.

Respond with a single JSON object, no other text:
{
  "summary": <string, 2-3 sentence narrative of where the matter stands>,
  "pleadings_complete": <boolean>,
  "missing_documents": [<strings, expected documents absent from the bundle>],
  "timeline": [
    {
      "event": <string>,
      "source_document": <string, document title>
    }
  ],
  "next_steps": [<strings>]
}

REQUIREMENTS:
- Derive the timeline only from dates appearing in the documents
- List a missing document only when the pleadings reference it or procedure requires it`, caseType, bundleContext)
		},
	}
}
