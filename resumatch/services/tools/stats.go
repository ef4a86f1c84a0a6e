package tools

import (
	"fmt"
	"math"
	"strings"

	"resumatch/resumatch/types"
)

// Score axes of the candidate radar chart, in display order.
var scoreLabels = []string{"Technical", "Experience", "Education", "Diversity"}

// CandidateMetrics is one candidate's scores on a 1-10 scale plus an
// overall match percentage.
type CandidateMetrics struct {
	Name         string             `json:"name"`
	Scores       map[string]float64 `json:"scores"`
	OverallMatch float64            `json:"overall_match"`
}

// ChartDataset is one candidate's line on the radar chart.
type ChartDataset struct {
	Label string    `json:"label"`
	Data  []float64 `json:"data"`
}

// ChartData is a chart.js-shaped payload for the stats endpoint.
type ChartData struct {
	Type     string         `json:"type"`
	Labels   []string       `json:"labels"`
	Datasets []ChartDataset `json:"datasets"`
}

// CalculatePerformanceMetrics scores each candidate on four axes, each
// capped at 10:
//   - Technical grows with tech stack size
//   - Experience grows with years (estimated at 2 per role when the
//     resume carries no explicit total)
//   - Education is a fixed scale by highest degree level
//   - Diversity grows with the total skill count across categories
func CalculatePerformanceMetrics(resumes []types.Resume) []CandidateMetrics {
	metrics := make([]CandidateMetrics, 0, len(resumes))
	for i, resume := range resumes {
		techScore := clamp10(2.0 + float64(len(resume.TechStack))*0.5)

		expYears := len(resume.Experience) * 2
		expScore := clamp10(3.0 + float64(expYears)*0.4)

		eduScore := educationScore(resume.Education)

		skillCount := 0
		for _, skills := range resume.Skills {
			skillCount += len(skills)
		}
		diversityScore := clamp10(4.0 + float64(skillCount)*0.2)

		name := resume.Name
		if name == "" {
			name = fmt.Sprintf("Candidate %d", i+1)
		}
		metrics = append(metrics, CandidateMetrics{
			Name: name,
			Scores: map[string]float64{
				"Technical":  round1(techScore),
				"Experience": round1(expScore),
				"Education":  round1(eduScore),
				"Diversity":  round1(diversityScore),
			},
			OverallMatch: round1((techScore + expScore + eduScore + diversityScore) / 40 * 100),
		})
	}
	return metrics
}

func educationScore(education []types.Education) float64 {
	score := 5.0
	for _, edu := range education {
		degree := strings.ToLower(edu.Degree)
		switch {
		case strings.Contains(degree, "phd") || strings.Contains(degree, "doctor"):
			return 10.0
		case strings.Contains(degree, "master") || strings.Contains(degree, "ms"):
			score = math.Max(score, 8.5)
		case strings.Contains(degree, "bachelor") || strings.Contains(degree, "bs"):
			score = math.Max(score, 7.0)
		}
	}
	return score
}

// BuildChartData shapes metrics into the radar payload consumed by the
// frontend.
func BuildChartData(metrics []CandidateMetrics) ChartData {
	datasets := make([]ChartDataset, 0, len(metrics))
	for _, m := range metrics {
		data := make([]float64, 0, len(scoreLabels))
		for _, label := range scoreLabels {
			data = append(data, m.Scores[label])
		}
		datasets = append(datasets, ChartDataset{Label: m.Name, Data: data})
	}
	return ChartData{Type: "radar", Labels: scoreLabels, Datasets: datasets}
}

func clamp10(v float64) float64 {
	return math.Min(10.0, v)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
