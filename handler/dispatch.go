// Package handler implements the validation and transition logic of the
// ledger: one handler per action, each deriving addresses, batch-reading
// state, checking every precondition and committing its writes as one batch.
//
// Handlers either fully apply or return a *Rejection with no writes issued.
// The signer public key is assumed authenticated upstream.
package handler

import (
	"context"

	jsoniter "github.com/json-iterator/go"

	"agriledger/entity"
	"agriledger/state"
)

// Action tags the payload variant carried by an envelope.
type Action string

const (
	ActionCreateSystemAdmin              Action = "CREATE_SYSTEM_ADMIN"
	ActionUpdateSystemAdmin              Action = "UPDATE_SYSTEM_ADMIN"
	ActionCreateTaskType                 Action = "CREATE_TASK_TYPE"
	ActionCreateProductType              Action = "CREATE_PRODUCT_TYPE"
	ActionCreateEventParameterType       Action = "CREATE_EVENT_PARAMETER_TYPE"
	ActionCreateEventType                Action = "CREATE_EVENT_TYPE"
	ActionCreatePropertyType             Action = "CREATE_PROPERTY_TYPE"
	ActionCreateCertificationAuthority   Action = "CREATE_CERTIFICATION_AUTHORITY"
	ActionCreateCompany                  Action = "CREATE_COMPANY"
	ActionCreateField                    Action = "CREATE_FIELD"
	ActionCreateOperator                 Action = "CREATE_OPERATOR"
	ActionCreateDescriptionEvent         Action = "CREATE_DESCRIPTION_EVENT"
	ActionCreateTransformationEvent      Action = "CREATE_TRANSFORMATION_EVENT"
	ActionAddBatchCertificate            Action = "ADD_BATCH_CERTIFICATE"
	ActionRecordBatchProperty            Action = "RECORD_BATCH_PROPERTY"
	ActionCreateProposal                 Action = "CREATE_PROPOSAL"
	ActionAnswerProposal                 Action = "ANSWER_PROPOSAL"
	ActionFinalizeBatch                  Action = "FINALIZE_BATCH"
)

type UpdateSystemAdmin struct {
	PublicKey string `json:"publicKey"`
}

type CreateTaskType struct {
	ID   string `json:"id"`
	Task string `json:"task"`
}

type CreateProductType struct {
	ID                  string                      `json:"id"`
	Name                string                      `json:"name"`
	Description         string                      `json:"description,omitempty"`
	Measure             entity.UnitOfMeasure        `json:"measure"`
	DerivedProductTypes []entity.DerivedProductType `json:"derivedProductTypes,omitempty"`
}

type CreateEventParameterType struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	DataType entity.DataType `json:"dataType"`
}

type CreateEventType struct {
	ID                         string             `json:"id"`
	Typology                   entity.Typology    `json:"typology"`
	Name                       string             `json:"name"`
	Description                string             `json:"description"`
	EnabledTaskTypes           []string           `json:"enabledTaskTypes,omitempty"`
	EnabledProductTypes        []string           `json:"enabledProductTypes,omitempty"`
	Parameters                 []entity.Parameter `json:"parameters,omitempty"`
	EnabledDerivedProductTypes []string           `json:"enabledDerivedProductTypes,omitempty"`
}

type CreatePropertyType struct {
	ID                  string          `json:"id"`
	Name                string          `json:"name"`
	DataType            entity.DataType `json:"dataType"`
	EnabledTaskTypes    []string        `json:"enabledTaskTypes,omitempty"`
	EnabledProductTypes []string        `json:"enabledProductTypes,omitempty"`
}

type CreateCertificationAuthority struct {
	PublicKey           string   `json:"publicKey"`
	Name                string   `json:"name"`
	Website             string   `json:"website"`
	EnabledProductTypes []string `json:"enabledProductTypes,omitempty"`
}

type CreateCompany struct {
	Name                string   `json:"name"`
	Description         string   `json:"description"`
	Website             string   `json:"website"`
	Admin               string   `json:"admin"`
	EnabledProductTypes []string `json:"enabledProductTypes,omitempty"`
}

type CreateField struct {
	ID          string           `json:"id"`
	Description string           `json:"description"`
	Product     string           `json:"product"`
	Quantity    float64          `json:"quantity"`
	Location    *entity.Location `json:"location"`
}

type CreateOperator struct {
	PublicKey string `json:"publicKey"`
	Task      string `json:"task"`
}

type CreateDescriptionEvent struct {
	EventTypeID string                  `json:"eventTypeId"`
	Batch       string                  `json:"batch,omitempty"`
	Field       string                  `json:"field,omitempty"`
	Values      []entity.ParameterValue `json:"values,omitempty"`
}

type CreateTransformationEvent struct {
	EventTypeID    string    `json:"eventTypeId"`
	Batches        []string  `json:"batches,omitempty"`
	Fields         []string  `json:"fields,omitempty"`
	Quantities     []float64 `json:"quantities"`
	DerivedProduct string    `json:"derivedProduct"`
	OutputBatchID  string    `json:"outputBatchId"`
}

type AddBatchCertificate struct {
	Batch   string `json:"batch"`
	Company string `json:"company"`
	Link    string `json:"link"`
	Hash    string `json:"hash"`
}

type RecordBatchProperty struct {
	Batch          string               `json:"batch"`
	PropertyTypeID string               `json:"propertyTypeId"`
	Value          entity.PropertyValue `json:"value"`
}

type CreateProposal struct {
	Batch           string `json:"batch"`
	ReceiverCompany string `json:"receiverCompany"`
	Notes           string `json:"notes,omitempty"`
}

type AnswerProposal struct {
	Batch           string                `json:"batch"`
	SenderCompany   string                `json:"senderCompany"`
	ReceiverCompany string                `json:"receiverCompany"`
	Response        entity.ProposalStatus `json:"response"`
	Motivation      string                `json:"motivation,omitempty"`
}

type FinalizeBatch struct {
	Batch       string                    `json:"batch"`
	Reason      entity.FinalizationReason `json:"reason"`
	Explanation string                    `json:"explanation,omitempty"`
}

// Payload is the decoded transaction envelope: the action tag, the shared
// timestamp and exactly one populated sub-payload matching the action.
type Payload struct {
	Action    Action           `json:"action"`
	Timestamp entity.Timestamp `json:"timestamp"`

	UpdateSystemAdmin            *UpdateSystemAdmin            `json:"updateSystemAdmin,omitempty"`
	CreateTaskType               *CreateTaskType               `json:"createTaskType,omitempty"`
	CreateProductType            *CreateProductType            `json:"createProductType,omitempty"`
	CreateEventParameterType     *CreateEventParameterType     `json:"createEventParameterType,omitempty"`
	CreateEventType              *CreateEventType              `json:"createEventType,omitempty"`
	CreatePropertyType           *CreatePropertyType           `json:"createPropertyType,omitempty"`
	CreateCertificationAuthority *CreateCertificationAuthority `json:"createCertificationAuthority,omitempty"`
	CreateCompany                *CreateCompany                `json:"createCompany,omitempty"`
	CreateField                  *CreateField                  `json:"createField,omitempty"`
	CreateOperator               *CreateOperator               `json:"createOperator,omitempty"`
	CreateDescriptionEvent       *CreateDescriptionEvent       `json:"createDescriptionEvent,omitempty"`
	CreateTransformationEvent    *CreateTransformationEvent    `json:"createTransformationEvent,omitempty"`
	AddBatchCertificate          *AddBatchCertificate          `json:"addBatchCertificate,omitempty"`
	RecordBatchProperty          *RecordBatchProperty          `json:"recordBatchProperty,omitempty"`
	CreateProposal               *CreateProposal               `json:"createProposal,omitempty"`
	AnswerProposal               *AnswerProposal               `json:"answerProposal,omitempty"`
	FinalizeBatch                *FinalizeBatch                `json:"finalizeBatch,omitempty"`
}

var codec = jsoniter.ConfigCompatibleWithStandardLibrary

// DecodePayload decodes a serialized envelope.
func DecodePayload(b []byte) (Payload, error) {
	var p Payload
	if len(b) == 0 {
		return p, reject(CodeMalformed, "empty payload")
	}
	if err := codec.Unmarshal(b, &p); err != nil {
		return p, reject(CodeMalformed, "malformed payload: %v", err)
	}
	return p, nil
}

// EncodePayload serializes an envelope, for submitters.
func EncodePayload(p Payload) ([]byte, error) {
	return codec.Marshal(p)
}

// Apply routes a decoded envelope to its handler. Pure routing plus the
// timestamp precondition shared by every action.
func Apply(ctx context.Context, led state.Context, signer string, p Payload) error {
	if p.Timestamp.IsZero() {
		return reject(CodeMissingField, "timestamp is not set")
	}

	switch p.Action {
	case ActionCreateSystemAdmin:
		return createSystemAdmin(ctx, led, signer, p.Timestamp)
	case ActionUpdateSystemAdmin:
		if p.UpdateSystemAdmin == nil {
			return missingPayload(p.Action)
		}
		return updateSystemAdmin(ctx, led, signer, p.Timestamp, p.UpdateSystemAdmin)
	case ActionCreateTaskType:
		if p.CreateTaskType == nil {
			return missingPayload(p.Action)
		}
		return createTaskType(ctx, led, signer, p.Timestamp, p.CreateTaskType)
	case ActionCreateProductType:
		if p.CreateProductType == nil {
			return missingPayload(p.Action)
		}
		return createProductType(ctx, led, signer, p.Timestamp, p.CreateProductType)
	case ActionCreateEventParameterType:
		if p.CreateEventParameterType == nil {
			return missingPayload(p.Action)
		}
		return createEventParameterType(ctx, led, signer, p.Timestamp, p.CreateEventParameterType)
	case ActionCreateEventType:
		if p.CreateEventType == nil {
			return missingPayload(p.Action)
		}
		return createEventType(ctx, led, signer, p.Timestamp, p.CreateEventType)
	case ActionCreatePropertyType:
		if p.CreatePropertyType == nil {
			return missingPayload(p.Action)
		}
		return createPropertyType(ctx, led, signer, p.Timestamp, p.CreatePropertyType)
	case ActionCreateCertificationAuthority:
		if p.CreateCertificationAuthority == nil {
			return missingPayload(p.Action)
		}
		return createCertificationAuthority(ctx, led, signer, p.Timestamp, p.CreateCertificationAuthority)
	case ActionCreateCompany:
		if p.CreateCompany == nil {
			return missingPayload(p.Action)
		}
		return createCompany(ctx, led, signer, p.Timestamp, p.CreateCompany)
	case ActionCreateField:
		if p.CreateField == nil {
			return missingPayload(p.Action)
		}
		return createField(ctx, led, signer, p.Timestamp, p.CreateField)
	case ActionCreateOperator:
		if p.CreateOperator == nil {
			return missingPayload(p.Action)
		}
		return createOperator(ctx, led, signer, p.Timestamp, p.CreateOperator)
	case ActionCreateDescriptionEvent:
		if p.CreateDescriptionEvent == nil {
			return missingPayload(p.Action)
		}
		return createDescriptionEvent(ctx, led, signer, p.Timestamp, p.CreateDescriptionEvent)
	case ActionCreateTransformationEvent:
		if p.CreateTransformationEvent == nil {
			return missingPayload(p.Action)
		}
		return createTransformationEvent(ctx, led, signer, p.Timestamp, p.CreateTransformationEvent)
	case ActionAddBatchCertificate:
		if p.AddBatchCertificate == nil {
			return missingPayload(p.Action)
		}
		return addBatchCertificate(ctx, led, signer, p.Timestamp, p.AddBatchCertificate)
	case ActionRecordBatchProperty:
		if p.RecordBatchProperty == nil {
			return missingPayload(p.Action)
		}
		return recordBatchProperty(ctx, led, signer, p.Timestamp, p.RecordBatchProperty)
	case ActionCreateProposal:
		if p.CreateProposal == nil {
			return missingPayload(p.Action)
		}
		return createProposal(ctx, led, signer, p.Timestamp, p.CreateProposal)
	case ActionAnswerProposal:
		if p.AnswerProposal == nil {
			return missingPayload(p.Action)
		}
		return answerProposal(ctx, led, signer, p.Timestamp, p.AnswerProposal)
	case ActionFinalizeBatch:
		if p.FinalizeBatch == nil {
			return missingPayload(p.Action)
		}
		return finalizeBatch(ctx, led, signer, p.Timestamp, p.FinalizeBatch)
	default:
		return reject(CodeUnknownAction, "unknown action: %q", p.Action)
	}
}

func missingPayload(a Action) error {
	return reject(CodeMissingField, "no payload specified for action %s", a)
}
