package llm

import (
	"PlanForge/internal/model"
	"fmt"
	"strings"
)

const defaultAnalysisPrompt = `You are a social media market analyst.
Analyze the given niche and marketing goal. Respond with a single JSON object and nothing else:
{"competitors": ["short description of a typical competitor account", ...],
 "trends": ["current content trend relevant to the niche", ...],
 "summary": "a short actionable content strategy for this niche"}
All three fields are required. 3-5 items for competitors and trends. Do not wrap the JSON in markdown fences.`

const defaultPlanPrompt = `You are a social media content planner.
Produce a content plan as a single JSON array and nothing else. Each element:
{"title": "post title", "type": "Post"|"Reels"|"Story", "content": "ready-to-publish body text",
 "script": "voiceover script, only for Reels", "day": 1-based day index,
 "imagePrompt": "English description of the visual scene for an image model, no text in the image"}
One post per day of the requested period. Titles must be unique and must not repeat any excluded title.
Do not wrap the JSON in markdown fences.`

func buildAnalysisUserPrompt(niche string, goal model.Goal, grounding string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Niche: %s\nMarketing goal: %s\n", niche, goal)
	if grounding != "" {
		b.WriteString("\nFresh web search results to ground your analysis:\n")
		b.WriteString(grounding)
	}
	return b.String()
}

func buildPlanUserPrompt(req *PlanRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Niche: %s\nPeriod: %d days\nTone of voice: %s\nMarketing goal: %s\n",
		req.Niche, req.Period.Days(), req.Tone, req.Goal)

	if req.Analysis != nil {
		fmt.Fprintf(&b, "\nMarket analysis summary: %s\n", req.Analysis.Summary)
		if len(req.Analysis.Trends) > 0 {
			fmt.Fprintf(&b, "Relevant trends: %s\n", strings.Join(req.Analysis.Trends, "; "))
		}
	}

	// 去重提示：历史标题原样嵌入，要求模型避免重复
	if len(req.ExcludeTitles) > 0 {
		b.WriteString("\nDo NOT repeat these titles already used for this niche:\n")
		for _, t := range req.ExcludeTitles {
			fmt.Fprintf(&b, "- %s\n", t)
		}
	}
	return b.String()
}

// buildImageDirective 组装图像模型的指令文本，带硬性负向约束
func buildImageDirective(req *ImageRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate a social media image for a post titled %q.\n", req.Title)
	if req.Excerpt != "" {
		fmt.Fprintf(&b, "Post excerpt: %s\n", req.Excerpt)
	}
	if req.ImagePrompt != "" {
		fmt.Fprintf(&b, "Scene: %s\n", req.ImagePrompt)
	}
	if req.Tone != "" {
		fmt.Fprintf(&b, "Visual mood: %s.\n", req.Tone)
	}
	if req.Reference != nil {
		b.WriteString("Match the color palette and mood of the attached reference image.\n")
	}
	b.WriteString("Strict constraints: no embedded text, no words, no letters, no logos, no watermarks, no distorted faces.")
	return b.String()
}
