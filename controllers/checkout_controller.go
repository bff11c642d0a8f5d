package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/otica-api/config"
	"github.com/kendall-kelly/otica-api/services"
)

// CheckoutCustomerRequest is the buyer profile sent with a checkout
type CheckoutCustomerRequest struct {
	Name      string `json:"name" binding:"required,min=2"`
	Email     string `json:"email" binding:"required,email"`
	Phone     string `json:"phone" binding:"required,phone"`
	CEP       string `json:"cep" binding:"required,cep"`
	Address   string `json:"address" binding:"required,min=5"`
	City      string `json:"city" binding:"required,min=2"`
	State     string `json:"state" binding:"required,min=2"`
	BirthDate string `json:"birthDate" binding:"omitempty,datetime=2006-01-02"`
}

// CheckoutFileRequest references a file returned by POST /api/upload
type CheckoutFileRequest struct {
	URL          string `json:"url" binding:"required"`
	OriginalName string `json:"originalName"`
	Size         int64  `json:"size"`
	Type         string `json:"type"`
}

// CheckoutFilesRequest groups the checkout documents
type CheckoutFilesRequest struct {
	GlassesPhoto      *CheckoutFileRequest `json:"glassesPhoto" binding:"required"`
	PrescriptionPhoto *CheckoutFileRequest `json:"prescriptionPhoto" binding:"required"`
	IdentityDocument  *CheckoutFileRequest `json:"identityDocument"`
}

// CompleteOrderRequest represents the request body for POST /api/complete-order
type CompleteOrderRequest struct {
	Customer       CheckoutCustomerRequest `json:"customer"`
	SelectedLenses []string                `json:"selectedLenses" binding:"required,min=1,dive,required"`
	Files          CheckoutFilesRequest    `json:"files"`
}

// CompleteOrder handles POST /api/complete-order - registers the buyer and places
// their first order in one transaction. The temporary password is returned once.
func CompleteOrder(c *gin.Context) {
	var req CompleteOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	birthDate, err := parseDate(req.Customer.BirthDate)
	if err != nil {
		respondError(c, err)
		return
	}

	input := services.CheckoutInput{
		Customer: services.CheckoutCustomer{
			Name:      req.Customer.Name,
			Email:     req.Customer.Email,
			Phone:     req.Customer.Phone,
			CEP:       req.Customer.CEP,
			Address:   req.Customer.Address,
			City:      req.Customer.City,
			State:     req.Customer.State,
			BirthDate: birthDate,
		},
		SelectedLenses: req.SelectedLenses,
		Files: services.CheckoutFiles{
			GlassesPhoto:      checkoutFile(req.Files.GlassesPhoto),
			PrescriptionPhoto: checkoutFile(req.Files.PrescriptionPhoto),
		},
	}
	if req.Files.IdentityDocument != nil && req.Files.IdentityDocument.URL != "" {
		identity := checkoutFile(req.Files.IdentityDocument)
		input.Files.IdentityDocument = &identity
	}

	result, err := services.NewCheckoutService(config.GetDB()).Complete(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	respondMessage(c, http.StatusCreated, result, result.Message)
}

func checkoutFile(f *CheckoutFileRequest) services.CheckoutFile {
	if f == nil {
		return services.CheckoutFile{}
	}
	return services.CheckoutFile{
		URL:          f.URL,
		OriginalName: f.OriginalName,
		Size:         f.Size,
		Type:         f.Type,
	}
}
