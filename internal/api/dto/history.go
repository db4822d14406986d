package dto

type HistoryItemDTO struct {
	Niche     string `json:"niche"`
	Title     string `json:"title"`
	CreatedAt string `json:"created_at"`
}
