// Package types provides type definitions for the submission payload and
// report documents exchanged with the workflow engine.
package types

// SubmissionPayload is the full product brief collected by the intake form.
// The shape is validated against schemas/submission_payload.schema.json
// before it is decoded into this struct.
type SubmissionPayload struct {
	SubmissionID      string           `json:"submissionId"`
	SubmittedAt       string           `json:"submittedAt"`
	TargetEnvironment string           `json:"targetEnvironment"`
	Brand             Brand            `json:"brand"`
	ProductBlueprint  ProductBlueprint `json:"productBlueprint"`
	Collaboration     Collaboration    `json:"collaboration"`
	Concept           Concept          `json:"concept"`
	Ingredients       []Ingredient     `json:"ingredients"`
	SystemMetadata    SystemMetadata   `json:"systemMetadata"`
}

// Brand describes the requesting brand's identity.
type Brand struct {
	Name   string `json:"name"`
	Voice  string `json:"voice"`
	Values string `json:"values"`
}

// ProductBlueprint is the product definition section of the brief.
type ProductBlueprint struct {
	Functions              []string          `json:"functions"`
	FormType               string            `json:"formType"`
	PackagingPrimer        PackagingPrimer   `json:"packagingPrimer"`
	Netto                  Netto             `json:"netto"`
	ColorProfile           ColorProfile      `json:"colorProfile"`
	Gender                 string            `json:"gender"`
	AgeRanges              []string          `json:"ageRanges"`
	Location               Location          `json:"location"`
	LaunchTimeline         string            `json:"launchTimeline,omitempty"`
	TargetRetailPrice      float64           `json:"targetRetailPrice,omitempty"`
	PilotBatchSize         float64           `json:"pilotBatchSize,omitempty"`
	MOQExpectation         float64           `json:"moqExpectation,omitempty"`
	DistributionFocus      string            `json:"distributionFocus"`
	SustainabilityPriority float64           `json:"sustainabilityPriority"`
	RegulatoryPriority     []string          `json:"regulatoryPriority"`
	TexturePreference      string            `json:"texturePreference,omitempty"`
	FragranceProfile       string            `json:"fragranceProfile,omitempty"`
	ClaimEmphasis          []string          `json:"claimEmphasis,omitempty"`
	AIImageStyle           string            `json:"aiImageStyle,omitempty"`
	RequiresClinicalStudy  bool              `json:"requiresClinicalStudy"`
	NeedsHalalCertification bool             `json:"needsHalalCertification"`
	ReferenceUpload        []ReferenceUpload `json:"referenceUpload,omitempty"`
}

// PackagingPrimer holds the packaging direction for the product.
type PackagingPrimer struct {
	Type          string `json:"type"`
	Finish        string `json:"finish,omitempty"`
	MaterialNotes string `json:"materialNotes,omitempty"`
}

// Netto is the declared net quantity of the product.
type Netto struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// ColorProfile describes the desired product color.
type ColorProfile struct {
	Description string `json:"description"`
	Hex         string `json:"hex,omitempty"`
}

// Location is the primary target market of the product.
type Location struct {
	Country string `json:"country"`
	Region  string `json:"region"`
	City    string `json:"city"`
}

// ReferenceUpload is a user-provided reference asset.
type ReferenceUpload struct {
	Filename  string `json:"filename"`
	URL       string `json:"url"`
	MediaType string `json:"mediaType,omitempty"`
}

// Collaboration captures how the brand wants to work with the design team.
type Collaboration struct {
	PreferredChannels     []string `json:"preferredChannels"`
	RequestedDeliverables []string `json:"requestedDeliverables"`
	NotesForDesignTeam    string   `json:"notesForDesignTeam,omitempty"`
}

// Concept is the free-form product concept section.
type Concept struct {
	FormulaNarrative string `json:"formulaNarrative"`
	Benchmark        string `json:"benchmark,omitempty"`
	AdditionalNotes  string `json:"additionalNotes,omitempty"`
}

// Ingredient is one requested formula ingredient.
type Ingredient struct {
	Name       string  `json:"name"`
	INCIName   string  `json:"inciName,omitempty"`
	Percentage float64 `json:"percentage,omitempty"`
	Purpose    string  `json:"purpose,omitempty"`
	Notes      string  `json:"notes,omitempty"`
}

// SystemMetadata records which form and app version produced the payload.
type SystemMetadata struct {
	FormVersion string `json:"formVersion"`
	AppVersion  string `json:"appVersion"`
	Language    string `json:"language"`
}
