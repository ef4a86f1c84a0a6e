package tools

import (
	"testing"

	"resumatch/resumatch/types"
)

func TestCalculatePerformanceMetrics(t *testing.T) {
	resume := types.Resume{
		Name:      "Alice",
		TechStack: []string{"Go", "Postgres", "Kafka", "Docker"},
		Experience: []types.Experience{
			{Title: "Backend Engineer", Company: "Acme"},
		},
		Education: []types.Education{
			{Degree: "Bachelor of Engineering", Institution: "State University"},
		},
		Skills: map[string][]string{
			"programming_languages": {"Go", "Python"},
			"databases":             {"Postgres", "Redis", "MySQL"},
		},
	}

	metrics := CalculatePerformanceMetrics([]types.Resume{resume})
	if len(metrics) != 1 {
		t.Fatalf("expected 1 metric row, got %d", len(metrics))
	}
	m := metrics[0]

	// 2.0 + 4 techs * 0.5
	if m.Scores["Technical"] != 4.0 {
		t.Errorf("technical: expected 4.0, got %f", m.Scores["Technical"])
	}
	// 3.0 + (1 role * 2 years) * 0.4
	if m.Scores["Experience"] != 3.8 {
		t.Errorf("experience: expected 3.8, got %f", m.Scores["Experience"])
	}
	if m.Scores["Education"] != 7.0 {
		t.Errorf("education: expected 7.0 for bachelors, got %f", m.Scores["Education"])
	}
	// 4.0 + 5 skills * 0.2
	if m.Scores["Diversity"] != 5.0 {
		t.Errorf("diversity: expected 5.0, got %f", m.Scores["Diversity"])
	}
	// (4.0 + 3.8 + 7.0 + 5.0) / 40 * 100
	if m.OverallMatch != 49.5 {
		t.Errorf("overall: expected 49.5, got %f", m.OverallMatch)
	}
}

func TestPerformanceScoresAreCapped(t *testing.T) {
	stack := make([]string, 30)
	for i := range stack {
		stack[i] = "tech"
	}
	roles := make([]types.Experience, 15)
	metrics := CalculatePerformanceMetrics([]types.Resume{{
		Name:       "Max",
		TechStack:  stack,
		Experience: roles,
		Education:  []types.Education{{Degree: "PhD in Computer Science"}},
	}})

	m := metrics[0]
	for _, label := range scoreLabels {
		if m.Scores[label] > 10.0 {
			t.Errorf("%s exceeds cap: %f", label, m.Scores[label])
		}
	}
	if m.Scores["Education"] != 10.0 {
		t.Errorf("phd must score 10, got %f", m.Scores["Education"])
	}
}

func TestEducationScoreTakesHighestDegree(t *testing.T) {
	score := educationScore([]types.Education{
		{Degree: "Bachelor of Science"},
		{Degree: "Master of Science"},
	})
	if score != 8.5 {
		t.Errorf("expected masters score 8.5, got %f", score)
	}
	if got := educationScore(nil); got != 5.0 {
		t.Errorf("expected default 5.0, got %f", got)
	}
}

func TestBuildChartData(t *testing.T) {
	metrics := []CandidateMetrics{
		{Name: "Alice", Scores: map[string]float64{
			"Technical": 4.0, "Experience": 3.8, "Education": 7.0, "Diversity": 5.0,
		}},
		{Name: "Bob", Scores: map[string]float64{
			"Technical": 6.0, "Experience": 5.0, "Education": 8.5, "Diversity": 6.2,
		}},
	}
	chart := BuildChartData(metrics)

	if chart.Type != "radar" {
		t.Errorf("expected radar chart, got %s", chart.Type)
	}
	if len(chart.Datasets) != 2 {
		t.Fatalf("expected 2 datasets, got %d", len(chart.Datasets))
	}
	want := []float64{4.0, 3.8, 7.0, 5.0}
	for i, v := range chart.Datasets[0].Data {
		if v != want[i] {
			t.Errorf("dataset 0 axis %s: expected %f, got %f", chart.Labels[i], want[i], v)
		}
	}
}
