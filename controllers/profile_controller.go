package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/otica-api/config"
	"github.com/kendall-kelly/otica-api/services"
)

// UpdateProfileRequest represents the request body for updating the caller's profile.
// Omitted optional fields are left unchanged.
type UpdateProfileRequest struct {
	Name      string  `json:"name" binding:"required,min=2"`
	Phone     *string `json:"phone" binding:"omitempty,phone"`
	Address   *string `json:"address" binding:"omitempty,min=5"`
	CEP       *string `json:"cep" binding:"omitempty,cep"`
	City      *string `json:"city" binding:"omitempty,min=2"`
	State     *string `json:"state" binding:"omitempty,min=2"`
	BirthDate *string `json:"birthDate" binding:"omitempty,datetime=2006-01-02"`
}

// UpdateProfile handles PUT /api/profile
func UpdateProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	input := services.ProfileInput{
		Name:    req.Name,
		Phone:   req.Phone,
		Address: req.Address,
		CEP:     req.CEP,
		City:    req.City,
		State:   req.State,
	}
	if req.BirthDate != nil {
		birthDate, err := parseDate(*req.BirthDate)
		if err != nil {
			respondError(c, err)
			return
		}
		input.BirthDate = birthDate
	}

	user, err := services.NewProfileService(config.GetDB()).Update(c.Request.Context(), userID, input)
	if err != nil {
		respondError(c, err)
		return
	}

	respondMessage(c, http.StatusOK, gin.H{"user": user}, "Perfil atualizado com sucesso")
}
