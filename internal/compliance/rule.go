package compliance

import (
	"fmt"
	"time"
)

type Category string

const (
	CategorySetup         Category = "setup"
	CategoryEquipment     Category = "equipment"
	CategoryCalibration   Category = "calibration"
	CategoryScan          Category = "scan"
	CategoryAcceptance    Category = "acceptance"
	CategoryDocumentation Category = "documentation"
	CategoryStandard      Category = "standard"
)

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// Result is one rule's verdict. Purely informational; never mutated after
// creation.
type Result struct {
	Passed        bool     `json:"passed"`
	RuleID        string   `json:"rule_id"`
	RuleName      string   `json:"rule_name"`
	Category      Category `json:"category"`
	Severity      Severity `json:"severity"`
	Message       string   `json:"message"`
	Field         string   `json:"field,omitempty"`
	CurrentValue  string   `json:"current_value,omitempty"`
	ExpectedValue string   `json:"expected_value,omitempty"`
	Suggestion    string   `json:"suggestion,omitempty"`
	Reference     string   `json:"reference,omitempty"`
}

// Rule is one immutable registration. Check receives its owning rule so the
// result carries the rule's metadata without a registry lookup.
type Rule struct {
	ID        string
	Name      string
	Category  Category
	Severity  Severity
	Standards []string // nil = applies to all standards
	Check     func(r Rule, data Data) Result
}

func (r Rule) appliesTo(standard string) bool {
	if len(r.Standards) == 0 {
		return true
	}
	for _, s := range r.Standards {
		if s == standard {
			return true
		}
	}
	return false
}

func (r Rule) pass(msg string) Result {
	return Result{Passed: true, RuleID: r.ID, RuleName: r.Name, Category: r.Category, Severity: r.Severity, Message: msg}
}

func (r Rule) fail(msg string) Result {
	return Result{Passed: false, RuleID: r.ID, RuleName: r.Name, Category: r.Category, Severity: r.Severity, Message: msg}
}

var severityWeights = map[Severity]int{
	SeverityCritical: 10,
	SeverityWarning:  5,
	SeverityInfo:     2,
}

type Status string

const (
	StatusPass    Status = "pass"
	StatusWarning Status = "warning"
	StatusFail    Status = "fail"
)

// Report aggregates one compliance run. Created fresh per call; this package
// never persists it.
type Report struct {
	Standard       string    `json:"standard"`
	TotalRules     int       `json:"total_rules"`
	PassedRules    int       `json:"passed_rules"`
	FailedRules    int       `json:"failed_rules"`
	CriticalIssues []Result  `json:"critical_issues"`
	Warnings       []Result  `json:"warnings"`
	Info           []Result  `json:"info"`
	Results        []Result  `json:"results"`
	OverallScore   int       `json:"overall_score"`
	Status         Status    `json:"status"`
	CanExport      bool      `json:"can_export"`
	Summary        string    `json:"summary"`
	CheckedAt      time.Time `json:"checked_at"`
}

// Run evaluates every rule applicable to the snapshot's standard and
// aggregates the verdicts. A panicking rule is converted into a failing
// warning result; a single bad rule never aborts the report.
func Run(data Data) Report {
	report := Report{
		Standard:       data.Standard,
		CriticalIssues: []Result{},
		Warnings:       []Result{},
		Info:           []Result{},
		CheckedAt:      time.Now(),
	}

	maxScore, lostScore := 0, 0
	for _, rule := range rules {
		if !rule.appliesTo(data.Standard) {
			continue
		}
		res := safeCheck(rule, data)
		report.Results = append(report.Results, res)
		report.TotalRules++

		weight := severityWeights[res.Severity]
		maxScore += weight
		if res.Passed {
			report.PassedRules++
			continue
		}
		report.FailedRules++
		lostScore += weight
		switch res.Severity {
		case SeverityCritical:
			report.CriticalIssues = append(report.CriticalIssues, res)
		case SeverityWarning:
			report.Warnings = append(report.Warnings, res)
		default:
			report.Info = append(report.Info, res)
		}
	}

	if maxScore == 0 {
		report.OverallScore = 100
	} else {
		report.OverallScore = int(float64(maxScore-lostScore)/float64(maxScore)*100.0 + 0.5)
	}

	switch {
	case len(report.CriticalIssues) > 0:
		report.Status = StatusFail
	case len(report.Warnings) > 0:
		report.Status = StatusWarning
	default:
		report.Status = StatusPass
	}
	report.CanExport = len(report.CriticalIssues) == 0

	switch report.Status {
	case StatusFail:
		report.Summary = fmt.Sprintf("Technique sheet fails compliance: %d critical issue(s), %d warning(s). Export blocked.", len(report.CriticalIssues), len(report.Warnings))
	case StatusWarning:
		report.Summary = fmt.Sprintf("Technique sheet passes with %d warning(s); review before export.", len(report.Warnings))
	default:
		report.Summary = fmt.Sprintf("Technique sheet passes all %d applicable rules.", report.TotalRules)
	}
	return report
}

func safeCheck(rule Rule, data Data) (res Result) {
	defer func() {
		if rec := recover(); rec != nil {
			res = Result{
				Passed:   false,
				RuleID:   rule.ID,
				RuleName: rule.Name,
				Category: rule.Category,
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("Rule evaluation failed: %v", rec),
			}
		}
	}()
	return rule.Check(rule, data)
}
