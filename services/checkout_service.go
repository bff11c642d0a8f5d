package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kendall-kelly/otica-api/metrics"
	"github.com/kendall-kelly/otica-api/models"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// CheckoutSuccessMessage is returned with the temporary password
const CheckoutSuccessMessage = "Pedido criado com sucesso! Use a senha temporária fornecida para fazer login."

// CheckoutCustomer is the profile of the buyer being registered
type CheckoutCustomer struct {
	Name      string
	Email     string
	Phone     string
	CEP       string
	Address   string
	City      string
	State     string
	BirthDate *time.Time
}

// CheckoutFile references a file already stored through the upload endpoint
type CheckoutFile struct {
	URL          string
	OriginalName string
	Size         int64
	Type         string
}

// CheckoutFiles are the documents attached to a checkout. IdentityDocument is optional.
type CheckoutFiles struct {
	GlassesPhoto      CheckoutFile
	PrescriptionPhoto CheckoutFile
	IdentityDocument  *CheckoutFile
}

// CheckoutInput is a complete anonymous order
type CheckoutInput struct {
	Customer       CheckoutCustomer
	SelectedLenses []string
	Files          CheckoutFiles
}

// CheckoutResult is returned after the order is committed
type CheckoutResult struct {
	Order        *models.Order `json:"order"`
	TempPassword string        `json:"tempPassword"`
	Message      string        `json:"message"`
}

// CheckoutService registers a new customer and places their first order in one transaction
type CheckoutService struct {
	db *gorm.DB
}

// NewCheckoutService creates a checkout service on db
func NewCheckoutService(db *gorm.DB) *CheckoutService {
	return &CheckoutService{db: db}
}

// Complete creates the user, customer, order, items, initial tracking row and attachments.
// Either everything is written or nothing is.
func (s *CheckoutService) Complete(ctx context.Context, input CheckoutInput) (*CheckoutResult, error) {
	if err := checkCheckoutInput(input); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	email := NormalizeEmail(input.Customer.Email)

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if count > 0 {
		return nil, ErrEmailExists
	}

	lenses, err := resolveLenses(db, input.SelectedLenses)
	if err != nil {
		return nil, err
	}

	tempPassword, err := GenerateTemporaryPassword()
	if err != nil {
		return nil, err
	}
	hash, err := HashPassword(tempPassword)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Customer.Name)
	var order *models.Order
	err = db.Transaction(func(tx *gorm.DB) error {
		user := models.User{Email: email, Password: hash, Name: name, Role: models.RoleCustomer}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		customer := models.Customer{
			UserID:    user.ID,
			Phone:     input.Customer.Phone,
			Address:   input.Customer.Address,
			CEP:       input.Customer.CEP,
			City:      input.Customer.City,
			State:     input.Customer.State,
			BirthDate: input.Customer.BirthDate,
		}
		if err := tx.Create(&customer).Error; err != nil {
			return err
		}

		order, err = createOrderRecords(tx, newOrder{
			CustomerID:          customer.ID,
			Lenses:              lenses,
			Notes:               "Pedido criado via formulário web. Cliente: " + name,
			TrackingDescription: "Pedido realizado com sucesso via formulário web",
			Attachments:         checkoutAttachments(input.Files),
		})
		return err
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailExists
		}
		log.Error().Err(err).Str("email", email).Msg("Checkout transaction failed")
		return nil, fmt.Errorf("failed to complete order: %w", err)
	}

	loaded, err := loadOrderGraph(db, order.ID)
	if err != nil {
		return nil, err
	}

	metrics.OrdersCreated.WithLabelValues("checkout").Inc()
	publishBestEffort(ctx, OrderEvent{
		Type:        EventOrderCreated,
		OrderID:     loaded.ID,
		CustomerID:  loaded.CustomerID,
		Status:      loaded.Status,
		TotalAmount: loaded.TotalAmount.StringFixed(2),
		Source:      "checkout",
	})

	return &CheckoutResult{Order: loaded, TempPassword: tempPassword, Message: CheckoutSuccessMessage}, nil
}

// checkCheckoutInput guards the rules the service depends on. Request schemas
// report every field violation before this is reached.
func checkCheckoutInput(input CheckoutInput) error {
	var details []string
	if strings.TrimSpace(input.Customer.Email) == "" {
		details = append(details, "customer.email is required")
	}
	if strings.TrimSpace(input.Customer.Name) == "" {
		details = append(details, "customer.name is required")
	}
	if len(input.SelectedLenses) == 0 {
		details = append(details, "selectedLenses must contain at least one lens type")
	}
	if input.Files.GlassesPhoto.URL == "" {
		details = append(details, "files.glassesPhoto.url is required")
	}
	if input.Files.PrescriptionPhoto.URL == "" {
		details = append(details, "files.prescriptionPhoto.url is required")
	}
	if len(details) > 0 {
		return NewValidationError("Invalid request", details...)
	}
	return nil
}

func checkoutAttachments(files CheckoutFiles) []models.OrderAttachment {
	attachments := []models.OrderAttachment{
		newAttachment(models.AttachmentGlassesPhoto, files.GlassesPhoto, "glasses.jpg"),
		newAttachment(models.AttachmentPrescriptionPhoto, files.PrescriptionPhoto, "prescription.jpg"),
	}
	if files.IdentityDocument != nil && files.IdentityDocument.URL != "" {
		attachments = append(attachments, newAttachment(models.AttachmentIdentityDocument, *files.IdentityDocument, "identity.jpg"))
	}
	return attachments
}

func newAttachment(kind string, file CheckoutFile, defaultName string) models.OrderAttachment {
	a := models.OrderAttachment{
		Type:     kind,
		FileName: file.OriginalName,
		FileURL:  file.URL,
		FileSize: file.Size,
		MimeType: file.Type,
	}
	if a.FileName == "" {
		a.FileName = defaultName
	}
	if a.MimeType == "" {
		a.MimeType = "image/jpeg"
	}
	return a
}
