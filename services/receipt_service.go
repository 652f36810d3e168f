package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"

	config "github.com/toofuturetechnologies/SummitSite-sub001/configs"
	"github.com/toofuturetechnologies/SummitSite-sub001/database"
	"github.com/toofuturetechnologies/SummitSite-sub001/models"
)

// GenerateBookingReceipt renders a PDF receipt for a paid booking, uploads it
// and stores the URL on the payment row. The booking must be preloaded with
// Customer, Guide, Trip and TripDate.
func GenerateBookingReceipt(booking models.Booking) {
	var payment models.Payment
	if err := database.DB.First(&payment, "booking_id = ?", booking.ID).Error; err != nil {
		log.Printf("🔥 No payment record found for booking %s, skipping receipt: %v", booking.ID, err)
		return
	}
	if payment.ReceiptURL != nil {
		return
	}

	htmlData, err := generateReceiptHTML(booking, payment)
	if err != nil {
		log.Printf("🔥 Failed to generate receipt HTML: %v", err)
		return
	}

	pdfBytes, err := generatePDFFromHTML(htmlData)
	if err != nil {
		log.Printf("🔥 Failed to generate receipt PDF: %v", err)
		return
	}

	uploadURL, err := uploadToCloudinary(pdfBytes, booking.ID.String())
	if err != nil {
		log.Printf("🔥 Failed to upload receipt to Cloudinary: %v", err)
		return
	}

	payment.ReceiptURL = &uploadURL
	if err := database.DB.Omit("Booking").Save(&payment).Error; err != nil {
		log.Printf("🔥 Failed to store receipt URL for booking %s: %v", booking.ID, err)
	} else {
		log.Printf("✅ Generated and uploaded receipt for booking %s.", booking.ID)
	}
}

func generateReceiptHTML(booking models.Booking, payment models.Payment) (string, error) {
	tmpl, err := template.ParseFiles("templates/receipt.html")
	if err != nil {
		return "", err
	}

	minor := func(cents int64) string {
		return fmt.Sprintf("%d.%02d", cents/100, cents%100)
	}

	data := struct {
		CustomerName  string
		GuideName     string
		TripTitle     string
		TripLocation  string
		DepartureDate string
		BookingID     string
		PaymentDate   string
		Currency      string
		GrossPrice    string
		HostingFee    string
	}{
		CustomerName:  booking.Customer.FullName,
		GuideName:     booking.Guide.FullName,
		TripTitle:     booking.Trip.Title,
		TripLocation:  booking.Trip.Location,
		DepartureDate: booking.TripDate.StartTime.Format("January 2, 2006"),
		BookingID:     booking.ID.String(),
		PaymentDate:   payment.UpdatedAt.Format("January 2, 2006"),
		Currency:      booking.Currency,
		GrossPrice:    minor(booking.GrossPrice),
		HostingFee:    minor(booking.HostingFee),
	}

	var renderedHTML bytes.Buffer
	if err := tmpl.Execute(&renderedHTML, data); err != nil {
		return "", err
	}
	return renderedHTML.String(), nil
}

func generatePDFFromHTML(htmlContent string) ([]byte, error) {
	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()

	var pdfBuffer []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			pdf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdfBuffer = pdf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdfBuffer, nil
}

func uploadToCloudinary(fileBytes []byte, bookingID string) (string, error) {
	cld, err := cloudinary.NewFromURL(config.Config("CLOUDINARY_URL"))
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	uploadParams := uploader.UploadParams{
		PublicID:     fmt.Sprintf("receipts/%s_%s", bookingID, uuid.New().String()),
		Folder:       "summit_receipts",
		ResourceType: "raw",
	}

	uploadResult, err := cld.Upload.Upload(ctx, bytes.NewReader(fileBytes), uploadParams)
	if err != nil {
		return "", err
	}

	return uploadResult.SecureURL, nil
}
