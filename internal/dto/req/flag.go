package req

// Enabled fields are pointers so an absent boolean binds as nil and is
// rejected, instead of silently defaulting to false.

type CreateFlagRequest struct {
	Name        string `json:"name" binding:"required"`
	Enabled     *bool  `json:"enabled" binding:"required"`
	Description string `json:"description"`
}

type EvaluateRequest struct {
	UserID      string `form:"user_id" binding:"required"`
	FeatureName string `form:"feature_name" binding:"required"`
}

type UpsertOverrideRequest struct {
	UserID      string `json:"user_id" binding:"required"`
	FeatureName string `json:"feature_name" binding:"required"`
	Enabled     *bool  `json:"enabled" binding:"required"`
}

type DeleteOverrideRequest struct {
	UserID      string `json:"user_id" binding:"required"`
	FeatureName string `json:"feature_name" binding:"required"`
}
