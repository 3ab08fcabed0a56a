// Package classifier defines the outbound contract for the document
// classification/OCR pipeline. Its model is opaque to the engine; only the
// structured extraction shape is specified.
package classifier

import (
	"context"
	"time"
)

// Container is one container entry parsed off a Bill of Lading.
type Container struct {
	Number     string
	SealNumber string
}

// CargoItem is one line item parsed off a manifest or packing list.
type CargoItem struct {
	Description   string
	HSCode        string
	QuantityNetKg float64
}

// ClassifiedDocument is the structured extraction produced for a single
// uploaded document. Fields beyond DocumentType are populated on a
// best-effort basis depending on what the classifier's model recognized.
type ClassifiedDocument struct {
	DocumentType string
	Confidence   float64

	Shipper    string
	Consignee  string
	BOLNumber  string
	Containers []Container
	CargoItems []CargoItem

	VesselName string
	VoyageNo   string
	POLCode    string
	PODCode    string

	ETD, ETA, ATD time.Time

	RawFields map[string]string
}

// DocumentClassifier is the adapter boundary consumed by the BoL parser and
// the generic document validation step. Concrete drivers (an AI/OCR vendor,
// a rules-based extractor, a stub for tests) are swappable behind this.
type DocumentClassifier interface {
	Classify(ctx context.Context, raw []byte, mime string) (ClassifiedDocument, error)
}
