// Package entity defines the records stored on the ledger and their byte
// codec.
//
// Entities reference each other by logical identifier (type ids, company ids,
// public keys) or by state address (company field/batch lists, batch
// provenance); there is no foreign-key mechanism, so handlers re-resolve and
// re-check every reference they touch.
package entity

// Timestamp is the transaction wall-clock stamp carried by the envelope and
// recorded on entities. Both halves zero means "unset".
type Timestamp struct {
	Seconds int64 `json:"seconds"`
	Nanos   int32 `json:"nanos,omitempty"`
}

// IsZero reports whether the timestamp is unset.
func (t Timestamp) IsZero() bool {
	return t.Seconds == 0 && t.Nanos == 0
}

// Location is an approximate geographic coordinate pair.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Typology discriminates Event Types between pure descriptions and
// transformations that consume inputs and produce an output Batch.
type Typology string

const (
	TypologyDescription    Typology = "DESCRIPTION"
	TypologyTransformation Typology = "TRANSFORMATION"
)

// Typologies lists every legal Typology value.
var Typologies = []Typology{TypologyDescription, TypologyTransformation}

// DataType tags the value kind of an Event Parameter Type or Property Type.
type DataType string

const (
	DataTypeNumber   DataType = "NUMBER"
	DataTypeString   DataType = "STRING"
	DataTypeBytes    DataType = "BYTES"
	DataTypeLocation DataType = "LOCATION"
)

// DataTypes lists every legal DataType value.
var DataTypes = []DataType{DataTypeNumber, DataTypeString, DataTypeBytes, DataTypeLocation}

// UnitOfMeasure is the measurement unit of a Product Type quantity.
type UnitOfMeasure string

const (
	UnitKilos  UnitOfMeasure = "KILOS"
	UnitLitres UnitOfMeasure = "LITRES"
	UnitMetres UnitOfMeasure = "METRES"
	UnitUnits  UnitOfMeasure = "UNITS"
)

// UnitsOfMeasure lists every legal UnitOfMeasure value.
var UnitsOfMeasure = []UnitOfMeasure{UnitKilos, UnitLitres, UnitMetres, UnitUnits}

// ProposalStatus is the lifecycle status of a Batch transfer Proposal.
type ProposalStatus string

const (
	ProposalIssued   ProposalStatus = "ISSUED"
	ProposalAccepted ProposalStatus = "ACCEPTED"
	ProposalRejected ProposalStatus = "REJECTED"
	ProposalCanceled ProposalStatus = "CANCELED"
)

// ProposalStatuses lists every legal ProposalStatus value.
var ProposalStatuses = []ProposalStatus{ProposalIssued, ProposalAccepted, ProposalRejected, ProposalCanceled}

// FinalizationReason is the cause recorded when a Batch is closed.
type FinalizationReason string

const (
	ReasonWithdrawn FinalizationReason = "WITHDRAWN"
	ReasonSold      FinalizationReason = "SOLD"
	ReasonExpired   FinalizationReason = "EXPIRED"
)

// FinalizationReasons lists every legal FinalizationReason value.
var FinalizationReasons = []FinalizationReason{ReasonWithdrawn, ReasonSold, ReasonExpired}

// SystemAdmin is the singleton root identity, stored at a fixed address.
type SystemAdmin struct {
	PublicKey string    `json:"publicKey"`
	Timestamp Timestamp `json:"timestamp"`
}

// CompanyAdmin administers exactly one Company. The Company identifier is
// permanently derived from the admin's public key.
type CompanyAdmin struct {
	PublicKey string    `json:"publicKey"`
	Company   string    `json:"company"`
	Timestamp Timestamp `json:"timestamp"`
}

// Operator is a Company worker enabled to record events for one task.
type Operator struct {
	PublicKey string    `json:"publicKey"`
	Company   string    `json:"company"`
	Task      string    `json:"task"`
	Timestamp Timestamp `json:"timestamp"`
}

// CertificationAuthority certifies Batches of its enabled Product Types.
type CertificationAuthority struct {
	PublicKey           string    `json:"publicKey"`
	Name                string    `json:"name"`
	Website             string    `json:"website"`
	EnabledProductTypes []string  `json:"enabledProductTypes"`
	Timestamp           Timestamp `json:"timestamp"`
}

// TaskType is a registry entry naming an Operator task.
type TaskType struct {
	ID   string `json:"id"`
	Task string `json:"task"`
}

// DerivedProductType links a Product Type to a product it can be transformed
// into, with the quantity conversion rate applied by the transformation.
type DerivedProductType struct {
	ProductTypeID  string  `json:"productTypeId"`
	ConversionRate float64 `json:"conversionRate"`
}

// ProductType is a registry entry describing a tradable product.
type ProductType struct {
	ID                  string               `json:"id"`
	Name                string               `json:"name"`
	Description         string               `json:"description,omitempty"`
	Measure             UnitOfMeasure        `json:"measure"`
	DerivedProductTypes []DerivedProductType `json:"derivedProductTypes"`
}

// EventParameterType is a registry entry describing a reusable event
// parameter and its value kind.
type EventParameterType struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	DataType DataType `json:"dataType"`
}

// Parameter attaches an Event Parameter Type to an Event Type together with
// the constraints a supplied value must satisfy.
type Parameter struct {
	ParameterTypeID string  `json:"parameterTypeId"`
	Required        bool    `json:"required"`
	MinValue        float64 `json:"minValue,omitempty"`
	MaxValue        float64 `json:"maxValue,omitempty"`
	MinLength       int     `json:"minLength,omitempty"`
	MaxLength       int     `json:"maxLength,omitempty"`
}

// EventType is a registry entry describing a recordable event.
type EventType struct {
	ID                         string      `json:"id"`
	Typology                   Typology    `json:"typology"`
	Name                       string      `json:"name"`
	Description                string      `json:"description"`
	EnabledTaskTypes           []string    `json:"enabledTaskTypes"`
	EnabledProductTypes        []string    `json:"enabledProductTypes"`
	Parameters                 []Parameter `json:"parameters"`
	EnabledDerivedProductTypes []string    `json:"enabledDerivedProductTypes"`
}

// PropertyType is a registry entry describing a recordable batch property.
type PropertyType struct {
	ID                  string   `json:"id"`
	Name                string   `json:"name"`
	DataType            DataType `json:"dataType"`
	EnabledTaskTypes    []string `json:"enabledTaskTypes"`
	EnabledProductTypes []string `json:"enabledProductTypes"`
}

// Company is an organization owning Fields, Operators and Batches.
// Fields and Batches are referenced by state address, Operators by public key.
type Company struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	Description         string    `json:"description"`
	Website             string    `json:"website"`
	AdminPublicKey      string    `json:"adminPublicKey"`
	EnabledProductTypes []string  `json:"enabledProductTypes"`
	Fields              []string  `json:"fields"`
	Operators           []string  `json:"operators"`
	Batches             []string  `json:"batches"`
	Timestamp           Timestamp `json:"timestamp"`
}

// Field is a production area of a Company. Its quantity only decreases, as
// transformation events consume it.
type Field struct {
	ID          string   `json:"id"`
	Description string   `json:"description"`
	Company     string   `json:"company"`
	Product     string   `json:"product"`
	Quantity    float64  `json:"quantity"`
	Location    Location `json:"location"`
	Events      []Event  `json:"events"`
}

// ParameterValue is one supplied value for an event parameter; exactly the
// member matching the parameter's data type is meaningful.
type ParameterValue struct {
	ParameterTypeID string    `json:"parameterTypeId"`
	NumberValue     float64   `json:"numberValue,omitempty"`
	StringValue     string    `json:"stringValue,omitempty"`
	BytesValue      []byte    `json:"bytesValue,omitempty"`
	LocationValue   *Location `json:"locationValue,omitempty"`
}

// PropertyValue is one recorded value of a batch property; exactly the member
// matching the Property Type's data type is meaningful.
type PropertyValue struct {
	NumberValue   float64   `json:"numberValue,omitempty"`
	StringValue   string    `json:"stringValue,omitempty"`
	BytesValue    []byte    `json:"bytesValue,omitempty"`
	LocationValue *Location `json:"locationValue,omitempty"`
	Timestamp     Timestamp `json:"timestamp"`
}

// Event is an occurrence recorded on a Field or Batch. Transformation events
// carry the consumed quantity; description events record zero.
type Event struct {
	EventType string           `json:"eventType"`
	Reporter  string           `json:"reporter"`
	Values    []ParameterValue `json:"values"`
	Quantity  float64          `json:"quantity,omitempty"`
	Timestamp Timestamp        `json:"timestamp"`
}

// Certificate is an external certification document reference recorded on a
// Batch by a Certification Authority.
type Certificate struct {
	Authority string    `json:"authority"`
	Link      string    `json:"link"`
	Hash      string    `json:"hash"`
	Timestamp Timestamp `json:"timestamp"`
}

// Property groups the recorded values of one Property Type on a Batch.
// An ordered list, not a map, so the encoding stays deterministic.
type Property struct {
	PropertyType string          `json:"propertyType"`
	Values       []PropertyValue `json:"values"`
}

// Proposal is an offer to transfer a Batch between Companies.
type Proposal struct {
	SenderCompany   string         `json:"senderCompany"`
	ReceiverCompany string         `json:"receiverCompany"`
	Status          ProposalStatus `json:"status"`
	Notes           string         `json:"notes,omitempty"`
	Motivation      string         `json:"motivation,omitempty"`
	Timestamp       Timestamp      `json:"timestamp"`
}

// Finalization closes a Batch. Set at most once; a finalized Batch accepts no
// further transformation input and no event that assumes an active batch.
type Finalization struct {
	Reason      FinalizationReason `json:"reason"`
	Reporter    string             `json:"reporter"`
	Explanation string             `json:"explanation,omitempty"`
}

// Batch is a quantity of product tracked through events, certifications,
// properties and ownership transfers.
type Batch struct {
	ID            string        `json:"id"`
	Company       string        `json:"company"`
	Product       string        `json:"product"`
	Quantity      float64       `json:"quantity"`
	ParentFields  []string      `json:"parentFields"`
	ParentBatches []string      `json:"parentBatches"`
	Events        []Event       `json:"events"`
	Certificates  []Certificate `json:"certificates"`
	Properties    []Property    `json:"properties"`
	Proposals     []Proposal    `json:"proposals"`
	Finalization  *Finalization `json:"finalization,omitempty"`
	Timestamp     Timestamp     `json:"timestamp"`
}

// HasIssuedProposal reports whether the Batch currently carries an ISSUED
// Proposal. The handlers keep at most one at any time.
func (b *Batch) HasIssuedProposal() bool {
	for i := range b.Proposals {
		if b.Proposals[i].Status == ProposalIssued {
			return true
		}
	}
	return false
}

// IssuedProposal returns the currently ISSUED Proposal, or nil.
func (b *Batch) IssuedProposal() *Proposal {
	for i := range b.Proposals {
		if b.Proposals[i].Status == ProposalIssued {
			return &b.Proposals[i]
		}
	}
	return nil
}
