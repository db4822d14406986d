package model

import (
	"time"
)

type Period string

const (
	PeriodWeek  Period = "WEEK"
	PeriodMonth Period = "MONTH"
)

// Days 计划周期对应的帖子天数
func (p Period) Days() int {
	if p == PeriodMonth {
		return 30
	}
	return 7
}

type Goal string

const (
	GoalEngagement Goal = "ENGAGEMENT"
	GoalSales      Goal = "SALES"
	GoalGrowth     Goal = "GROWTH"
)

// AnalysisData 赛道分析结果
type AnalysisData struct {
	Competitors []string `json:"competitors"`
	Trends      []string `json:"trends"`
	Summary     string   `json:"summary"`
}

// ContentPlan 一次生成任务产出的完整内容计划
type ContentPlan struct {
	Niche     string        `json:"niche"`
	Period    Period        `json:"period"`
	Tone      string        `json:"tone"`
	Goal      Goal          `json:"goal"`
	Analysis  *AnalysisData `json:"analysis,omitempty"`
	Posts     []Post        `json:"posts"`
	CreatedAt time.Time     `json:"created_at"`
}
