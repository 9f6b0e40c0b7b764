package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/models"
	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/pipeline"
	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/sentiment"
)

// RenderFileName is the chart data file inside the output directory
const RenderFileName = "render.json"

// RenderData is everything a chart renderer needs: the timeline with its
// moving average, the emotion distribution, the author comparison and the
// weekly heatmap
type RenderData struct {
	Timeline         []sentiment.TimelinePoint            `json:"timeline"`
	Distribution     map[models.Label]int                 `json:"distribution"`
	AuthorComparison map[string]sentiment.AuthorSentiment `json:"author_comparison"`
	Heatmap          []sentiment.HeatmapCell              `json:"heatmap"`
	Zones            []models.BurnoutZone                 `json:"zones"`
	Window           int                                  `json:"window"`
}

// BuildRenderData extracts the renderer views from a result
func BuildRenderData(result *pipeline.Result, minCommits int) RenderData {
	return RenderData{
		Timeline:         sentiment.Timeline(result.Series),
		Distribution:     sentiment.Distribution(result.Series),
		AuthorComparison: sentiment.AuthorComparison(result.Authors, minCommits),
		Heatmap:          sentiment.WeeklyHeatmap(result.Series),
		Zones:            result.Report.Zones,
		Window:           result.Series.Window,
	}
}

// WriteRenderData writes render.json into dir and returns its path
func WriteRenderData(dir string, data RenderData) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal render data: %w", err)
	}
	path := filepath.Join(dir, RenderFileName)
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
