package dto

// GeneratePlanRequest 发起生成任务的入参
type GeneratePlanRequest struct {
	Niche         string   `json:"niche" binding:"required,min=2,max=100"`
	Period        string   `json:"period" binding:"required,oneof=WEEK MONTH"`
	Tone          string   `json:"tone" binding:"required,min=2,max=50"`
	Goal          string   `json:"goal" binding:"required,oneof=ENGAGEMENT SALES GROWTH"`
	ReferenceKeys []string `json:"reference_keys" binding:"max=5"`
	WithSearch    bool     `json:"with_search"`
}

// EditPostRequest 编辑帖子入参，nil 字段不改动
type EditPostRequest struct {
	Content     *string `json:"content"`
	Script      *string `json:"script"`
	ImagePrompt *string `json:"image_prompt"`
}

// RegenerateImageRequest 单帖配图重新生成入参
type RegenerateImageRequest struct {
	ReferenceKey string `json:"reference_key"`
}

type AnalysisDTO struct {
	Competitors []string `json:"competitors"`
	Trends      []string `json:"trends"`
	Summary     string   `json:"summary"`
}

type PostDTO struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Type        string `json:"type"`
	Content     string `json:"content"`
	Script      string `json:"script,omitempty"`
	Day         int    `json:"day"`
	Date        string `json:"date"`
	ImagePrompt string `json:"image_prompt"`
	ImageURL    string `json:"image_url"`
	Status      string `json:"status"`
	EditCount   int    `json:"edit_count"`
}

type PlanDTO struct {
	Niche     string       `json:"niche"`
	Period    string       `json:"period"`
	Tone      string       `json:"tone"`
	Goal      string       `json:"goal"`
	Analysis  *AnalysisDTO `json:"analysis,omitempty"`
	Posts     []*PostDTO   `json:"posts"`
	CreatedAt string       `json:"created_at"`
}

// PublishResultDTO 批量发布结果
type PublishResultDTO struct {
	Published int      `json:"published"`
	PostIDs   []string `json:"post_ids"`
}
