package dto

// ── 认证模块响应 ──

// TokenResponse Token 对响应
type TokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in"` // Access Token 有效期（秒）
	User         UserResponse `json:"user"`
}

// UserResponse 用户信息响应（脱敏）
type UserResponse struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	Role          string  `json:"role"`
	TrustScore    float64 `json:"trust_score"`
	CreditBalance int     `json:"credit_balance"`
}

// TrustProfileResponse 信誉画像响应
type TrustProfileResponse struct {
	UserID                 string  `json:"user_id"`
	Name                   string  `json:"name"`
	TrustScore             float64 `json:"trust_score"`
	PositiveReviewCount    int     `json:"positive_review_count"`
	NegativeReviewCount    int     `json:"negative_review_count"`
	CompletedSwapCount     int     `json:"completed_swap_count"`
	CompletedSaleCount     int     `json:"completed_sale_count"`
	CompletedDonationCount int     `json:"completed_donation_count"`
	DisputeTotalCount      int     `json:"dispute_total_count"`
	DisputeLostCount       int     `json:"dispute_lost_count"`
}

// ImpactResponse 受捐机构影响力响应
type ImpactResponse struct {
	UserID                 string  `json:"user_id"`
	Name                   string  `json:"name"`
	TotalReceivedCount     int     `json:"total_received_count"`
	TotalDonationsValue    float64 `json:"total_donations_value"`
	TotalFamiliesSupported int     `json:"total_families_supported"`
}

// ── 分页 ──

// PaginationRequest 通用分页参数
type PaginationRequest struct {
	Page     int `form:"page"      binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// GetPage 获取页码（含默认值）
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetPageSize 获取每页数量（含默认值）
func (p *PaginationRequest) GetPageSize() int {
	if p.PageSize <= 0 {
		return 20
	}
	return p.PageSize
}

// GetOffset 计算偏移量
func (p *PaginationRequest) GetOffset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}

// PageResponse 通用分页响应
type PageResponse struct {
	Items    interface{} `json:"items"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}
