package dto

// ── 物品模块 DTO ──

// CreateListingRequest 发布物品请求
type CreateListingRequest struct {
	Title       string   `json:"title"        binding:"required,min=2,max=200"`
	Description string   `json:"description"  binding:"omitempty,max=2000"`
	ListingType string   `json:"listing_type" binding:"required,oneof=swap sale donation"`
	Category    string   `json:"category"     binding:"required,oneof=uniform shoes books sports other"`
	Size        string   `json:"size"         binding:"omitempty,max=50"`
	Condition   string   `json:"condition"    binding:"required,oneof=new like_new good fair"`
	Price       *float64 `json:"price"        binding:"omitempty,gt=0"` // sale 类型必填
	ImageURL    string   `json:"image_url"    binding:"omitempty,url,max=500"`
}

// UpdateListingRequest 更新物品请求
type UpdateListingRequest struct {
	Title       *string  `json:"title"       binding:"omitempty,min=2,max=200"`
	Description *string  `json:"description" binding:"omitempty,max=2000"`
	Category    *string  `json:"category"    binding:"omitempty,oneof=uniform shoes books sports other"`
	Size        *string  `json:"size"        binding:"omitempty,max=50"`
	Condition   *string  `json:"condition"   binding:"omitempty,oneof=new like_new good fair"`
	Price       *float64 `json:"price"       binding:"omitempty,gt=0"`
	ImageURL    *string  `json:"image_url"   binding:"omitempty,url,max=500"`
	IsActive    *bool    `json:"is_active"`
}

// ListListingsRequest 物品列表查询参数
type ListListingsRequest struct {
	PaginationRequest
	ListingType string   `form:"listing_type" binding:"omitempty,oneof=swap sale donation"`
	Category    string   `form:"category"     binding:"omitempty,oneof=uniform shoes books sports other"`
	Size        string   `form:"size"`
	Condition   string   `form:"condition"    binding:"omitempty,oneof=new like_new good fair"`
	Status      string   `form:"status"`
	MaxPrice    *float64 `form:"max_price"    binding:"omitempty,gt=0"`
	Keyword     string   `form:"keyword"      binding:"omitempty,max=100"`
	OwnerID     string   `form:"owner_id"     binding:"omitempty,uuid"`
}
