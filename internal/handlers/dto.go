package handlers

import (
	"time"

	"habbitgold/internal/models"
)

// UserDTO keeps the wire shape stable: timestamps as RFC3339 strings, the
// payment method list never null, and the redeemable balance precomputed.
type UserDTO struct {
	ID                string                 `json:"id"`
	Username          string                 `json:"username"`
	Points            int                    `json:"points"`
	DailyPoints       int                    `json:"dailyPoints"`
	DailyCap          int                    `json:"dailyCap"`
	LastActive        string                 `json:"lastActive"`
	Streak            int                    `json:"streak"`
	TotalEarned       float64                `json:"totalEarned"`
	RedeemableDollars float64                `json:"redeemableDollars"`
	PaymentMethods    []models.PaymentMethod `json:"paymentMethods"`
	Theme             models.Theme           `json:"theme"`
}

func ToUserDTO(u models.User) UserDTO {
	methods := u.PaymentMethods
	if methods == nil {
		methods = []models.PaymentMethod{}
	}
	return UserDTO{
		ID:                u.ID,
		Username:          u.Username,
		Points:            u.Points,
		DailyPoints:       u.DailyPoints,
		DailyCap:          models.DailyCap,
		LastActive:        u.LastActive.Format(time.RFC3339),
		Streak:            u.Streak,
		TotalEarned:       u.TotalEarned,
		RedeemableDollars: float64(u.Points) / models.PointsConversionRate,
		PaymentMethods:    methods,
		Theme:             u.Theme,
	}
}
