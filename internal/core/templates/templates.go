// Package templates renders the SMS texts sent on parcel lifecycle events.
package templates

import (
	"fmt"

	"github.com/courierpwa/courier-ops/internal/core/domain"
)

// DefaultCompanyName signs the "received" message when no company name is configured.
const DefaultCompanyName = "CourierPWA"

// MaxCustomMessageLength bounds operator-composed messages, in characters.
const MaxCustomMessageLength = 160

func Received(recipientName, trackingCode, companyName string) string {
	if companyName == "" {
		companyName = DefaultCompanyName
	}
	return fmt.Sprintf("Dear %s, your parcel %s has been received and is pending collection. - %s",
		recipientName, trackingCode, companyName)
}

func InTransit(trackingCode string) string {
	return fmt.Sprintf("Your parcel %s is now in transit and will be delivered soon.", trackingCode)
}

func Delivered(trackingCode string) string {
	return fmt.Sprintf("Your parcel %s has been delivered successfully. Thank you for using our service!", trackingCode)
}

// ForEvent picks the template for the status the parcel entered.
func ForEvent(ev domain.LifecycleEvent, companyName string) (string, bool) {
	switch ev.Status {
	case domain.StatusPending:
		return Received(ev.RecipientName, ev.TrackingCode, companyName), true
	case domain.StatusInTransit:
		return InTransit(ev.TrackingCode), true
	case domain.StatusDelivered:
		return Delivered(ev.TrackingCode), true
	default:
		return "", false
	}
}
