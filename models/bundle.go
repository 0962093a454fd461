package models

// DocumentType is the semantic slot a document occupies inside a case bundle
type DocumentType string

const (
	DocTypePetition         DocumentType = "PETITION"
	DocTypeCounterAffidavit DocumentType = "COUNTER_AFFIDAVIT"
	DocTypeRejoinder        DocumentType = "REJOINDER"
	DocTypeAnnexure         DocumentType = "ANNEXURE"
	DocTypeInterimOrder     DocumentType = "INTERIM_ORDER"
	DocTypeDailyOrder       DocumentType = "DAILY_ORDER"
	DocTypeOther            DocumentType = "OTHER"
)

// BundleDocument pairs a document with its classified bundle slot
type BundleDocument struct {
	Document *Document    `json:"document"`
	Type     DocumentType `json:"type"`
}

// CaseBundle is the classified view of a case's completed documents. It is
// rebuilt on every request and never persisted; only analyzer outputs derived
// from it are cached.
type CaseBundle struct {
	Case      *Case             `json:"case"`
	Documents []BundleDocument  `json:"documents"`
	Petition  *BundleDocument   `json:"petition,omitempty"`
	Counter   *BundleDocument   `json:"counter,omitempty"`
	Rejoinder *BundleDocument   `json:"rejoinder,omitempty"`
	Annexures []BundleDocument  `json:"annexures"`
	Orders    []BundleDocument  `json:"orders"`
}
