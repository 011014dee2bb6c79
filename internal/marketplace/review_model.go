package marketplace

// CreateRatingInput is one party rating the other after a transaction.
type CreateRatingInput struct {
	RequestID  string `json:"requestId"`
	FromUserID string `json:"fromUserId"`
	ToUserID   string `json:"toUserId"`
	Stars      int    `json:"stars"`
	Comment    string `json:"comment"`
}

// RatingSummary represents aggregated rating data for a user
type RatingSummary struct {
	UserID        string  `json:"userId"`
	UserName      string  `json:"userName"`
	TotalRatings  int     `json:"totalRatings"`
	AverageRating float64 `json:"averageRating"`
	RatingCounts  struct {
		FiveStar  int `json:"fiveStar"`
		FourStar  int `json:"fourStar"`
		ThreeStar int `json:"threeStar"`
		TwoStar   int `json:"twoStar"`
		OneStar   int `json:"oneStar"`
	} `json:"ratingCounts"`
}
